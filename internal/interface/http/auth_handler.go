package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/obakengshepherd/InsureClaim/internal/application"
	"github.com/obakengshepherd/InsureClaim/internal/domain/entity"
	"github.com/obakengshepherd/InsureClaim/internal/interface/middleware"
	"github.com/obakengshepherd/InsureClaim/pkg/response"
)

type AuthHandler struct {
	Svc    *application.AuthService
	Logger *logrus.Logger
}

func NewAuthHandler(svc *application.AuthService, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{Svc: svc, Logger: logger}
}

// Register POST /api/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if !bindJSON(c, &req) {
		return
	}
	role := entity.RoleCustomer
	if req.Role != 0 {
		r, err := entity.ParseUserRole(req.Role)
		if err != nil {
			writeError(c, h.Logger, err)
			return
		}
		role = r
	}
	res, err := h.Svc.Register(c.Request.Context(), application.RegisterInput{
		FullName:    req.FullName,
		Email:       req.Email,
		Password:    req.Password,
		PhoneNumber: req.PhoneNumber,
		Role:        role,
	})
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusCreated, toAuthResponse(res), "registered", nil)
}

// Login POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.Svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, toAuthResponse(res), "logged in", nil)
}

// Me GET /api/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	u, err := h.Svc.Me(c.Request.Context(), p.UserID)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, toUserResponse(u), "profile", nil)
}

// Logout POST /api/auth/logout revokes the presented token until it expires.
func (h *AuthHandler) Logout(c *gin.Context) {
	claims, ok := middleware.TokenClaims(c)
	if !ok {
		response.Error[any](c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	exp := time.Now()
	if claims.ExpiresAt != nil {
		exp = claims.ExpiresAt.Time
	}
	if err := h.Svc.Logout(c.Request.Context(), claims.ID, exp); err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.NoContent(c)
}

// Health GET /api/auth/health
func (h *AuthHandler) Health(c *gin.Context) {
	response.Success(c, http.StatusOK, gin.H{"status": "healthy", "time": time.Now().UTC()}, "ok", nil)
}
