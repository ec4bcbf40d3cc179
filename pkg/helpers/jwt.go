package helpers

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// JWTManager issues and validates HS256 access tokens.
type JWTManager struct {
	Secret   []byte
	Issuer   string
	Audience string
	TTL      time.Duration
	Now      func() time.Time
}

func NewJWTManager(secret, issuer, audience string, ttl time.Duration) *JWTManager {
	return &JWTManager{
		Secret:   []byte(secret),
		Issuer:   issuer,
		Audience: audience,
		TTL:      ttl,
		Now:      time.Now,
	}
}

// Claims carries the identity of the caller. Subject is the user id and
// ID (jti) identifies the token for revocation.
type Claims struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// TokenSubject is the identity encoded into a new token.
type TokenSubject struct {
	UserID string
	Email  string
	Name   string
	Role   string
}

func (m *JWTManager) GenerateAccessToken(sub TokenSubject) (string, time.Time, error) {
	now := m.Now()
	exp := now.Add(m.TTL)
	claims := &Claims{
		Email: sub.Email,
		Name:  sub.Name,
		Role:  sub.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub.UserID,
			ID:        uuid.NewString(),
			Issuer:    m.Issuer,
			Audience:  jwt.ClaimStrings{m.Audience},
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := t.SignedString(m.Secret)
	return s, exp, err
}

func (m *JWTManager) ParseAccessToken(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	tkn, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.Secret, nil
	},
		jwt.WithIssuer(m.Issuer),
		jwt.WithAudience(m.Audience),
		jwt.WithTimeFunc(m.Now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, err
	}
	if !tkn.Valid || claims.Subject == "" {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}
