package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/obakengshepherd/InsureClaim/internal/domain/entity"
	"github.com/obakengshepherd/InsureClaim/internal/domain/repository"
	"github.com/obakengshepherd/InsureClaim/pkg/helpers"
)

var ErrInvalidCredentials = fmt.Errorf("%w: invalid email or password", entity.ErrUnauthorized)

type AuthService struct {
	Users   repository.UserRepository
	JWT     *helpers.JWTManager
	Revoker TokenRevoker
	// AllowAdminSignup permits self-registration as Admin. When false,
	// admins come from `insurectl seed-admin`.
	AllowAdminSignup bool
	Logger           *logrus.Logger
	Now              func() time.Time
}

func NewAuthService(users repository.UserRepository, jwt *helpers.JWTManager, revoker TokenRevoker, logger *logrus.Logger) *AuthService {
	return &AuthService{Users: users, JWT: jwt, Revoker: revoker, Logger: logger, Now: time.Now}
}

type RegisterInput struct {
	FullName    string
	Email       string
	Password    string
	PhoneNumber string
	Role        entity.UserRole
}

// AuthResult is the issued token together with the authenticated user.
type AuthResult struct {
	Token     string
	ExpiresAt time.Time
	User      *entity.User
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if !in.Role.Valid() {
		return nil, fmt.Errorf("%w: unknown role", entity.ErrValidation)
	}
	if in.Role == entity.RoleAdmin && !s.AllowAdminSignup {
		return nil, fmt.Errorf("%w: admin accounts cannot self-register", entity.ErrForbidden)
	}
	if _, err := s.Users.GetByEmail(ctx, email); err == nil {
		return nil, fmt.Errorf("%w: email already registered", entity.ErrConflict)
	} else if !errors.Is(err, entity.ErrNotFound) {
		return nil, err
	}

	hash, err := helpers.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	now := s.Now().UTC()
	u := &entity.User{
		ID:           uuid.NewString(),
		FullName:     strings.TrimSpace(in.FullName),
		Email:        email,
		PasswordHash: hash,
		PhoneNumber:  in.PhoneNumber,
		Role:         in.Role,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.Users.Create(ctx, u); err != nil {
		return nil, err
	}
	s.Logger.WithFields(logrus.Fields{"user_id": u.ID, "role": u.Role.String()}).Info("user registered")
	return s.issue(u)
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	u, err := s.Users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if errors.Is(err, entity.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !helpers.CompareHashAndPassword(u.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	if !u.IsActive {
		return nil, fmt.Errorf("%w: account is inactive", entity.ErrUnauthorized)
	}
	return s.issue(u)
}

// Me returns the profile of an active user.
func (s *AuthService) Me(ctx context.Context, userID string) (*entity.User, error) {
	u, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !u.IsActive {
		return nil, fmt.Errorf("%w: user %s", entity.ErrNotFound, userID)
	}
	return u, nil
}

// Logout revokes the presented token for the rest of its lifetime.
func (s *AuthService) Logout(ctx context.Context, jti string, expiresAt time.Time) error {
	if s.Revoker == nil || jti == "" {
		return nil
	}
	return s.Revoker.Revoke(ctx, jti, expiresAt)
}

func (s *AuthService) issue(u *entity.User) (*AuthResult, error) {
	token, exp, err := s.JWT.GenerateAccessToken(helpers.TokenSubject{
		UserID: u.ID,
		Email:  u.Email,
		Name:   u.FullName,
		Role:   u.Role.String(),
	})
	if err != nil {
		s.Logger.WithError(err).WithField("user_id", u.ID).Error("generate access token failed")
		return nil, err
	}
	return &AuthResult{Token: token, ExpiresAt: exp, User: u}, nil
}
