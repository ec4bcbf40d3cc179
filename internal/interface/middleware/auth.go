package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/obakengshepherd/InsureClaim/internal/domain/access"
	"github.com/obakengshepherd/InsureClaim/internal/domain/entity"
	"github.com/obakengshepherd/InsureClaim/pkg/helpers"
	"github.com/obakengshepherd/InsureClaim/pkg/response"
)

const (
	ctxPrincipal = "principal"
	ctxClaims    = "token_claims"
	// CtxUserIDKey is read by KeyByUserID.
	CtxUserIDKey = "userID"
)

// RevocationChecker reports whether a token id was revoked at logout.
type RevocationChecker interface {
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// Auth validates the bearer token and stores the caller's principal in the
// Gin context. A nil revoked skips the denylist lookup.
func Auth(jwt *helpers.JWTManager, revoked RevocationChecker, logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" {
			response.Error[any](c, http.StatusUnauthorized, "missing access token", nil)
			return
		}
		claims, err := jwt.ParseAccessToken(token)
		if err != nil {
			response.Error[any](c, http.StatusUnauthorized, "invalid access token", nil)
			return
		}
		role, err := entity.ParseUserRoleName(claims.Role)
		if err != nil {
			response.Error[any](c, http.StatusUnauthorized, "invalid access token", nil)
			return
		}
		if revoked != nil && claims.ID != "" {
			gone, err := revoked.IsRevoked(c.Request.Context(), claims.ID)
			if err != nil {
				logger.WithError(err).Error("token denylist lookup failed")
				response.Error[any](c, http.StatusServiceUnavailable, "authentication temporarily unavailable", nil)
				return
			}
			if gone {
				response.Error[any](c, http.StatusUnauthorized, "token has been revoked", nil)
				return
			}
		}

		c.Set(ctxPrincipal, access.Principal{UserID: claims.Subject, Role: role, Email: claims.Email, Name: claims.Name})
		c.Set(ctxClaims, claims)
		c.Set(CtxUserIDKey, claims.Subject)
		c.Next()
	}
}

func bearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// RequireRole rejects callers whose role is not listed.
func RequireRole(roles ...entity.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := PrincipalFrom(c)
		if !ok {
			response.Error[any](c, http.StatusUnauthorized, "unauthorized", nil)
			return
		}
		for _, r := range roles {
			if p.Role == r {
				c.Next()
				return
			}
		}
		response.Error[any](c, http.StatusForbidden, "insufficient role", nil)
	}
}

func PrincipalFrom(c *gin.Context) (access.Principal, bool) {
	v, ok := c.Get(ctxPrincipal)
	if !ok {
		return access.Principal{}, false
	}
	p, ok := v.(access.Principal)
	return p, ok
}

// TokenClaims returns the parsed claims of the current bearer token.
func TokenClaims(c *gin.Context) (*helpers.Claims, bool) {
	v, ok := c.Get(ctxClaims)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*helpers.Claims)
	return claims, ok
}
