package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/obakengshepherd/InsureClaim/internal/container"
	handlers "github.com/obakengshepherd/InsureClaim/internal/interface/http"
	"github.com/obakengshepherd/InsureClaim/internal/interface/middleware"
)

// AuthModule serves registration, login and the caller's own session.
type AuthModule struct {
	Handler     *handlers.AuthHandler
	RequireAuth gin.HandlerFunc
}

func NewAuthModule(h *handlers.AuthHandler, requireAuth gin.HandlerFunc) *AuthModule {
	return &AuthModule{Handler: h, RequireAuth: requireAuth}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	rdb := container.GetRedis()
	registerLimiter := middleware.RateLimit(rdb, 5, time.Minute, middleware.KeyByIPAndPath(), nil)
	loginLimiter := middleware.RateLimit(rdb, 10, time.Minute, middleware.KeyByIPAndPath(), nil)

	g := rg.Group("/auth")
	g.POST("/register", registerLimiter, m.Handler.Register)
	g.POST("/login", loginLimiter, m.Handler.Login)
	g.GET("/health", m.Handler.Health)

	protected := g.Group("/", m.RequireAuth)
	protected.GET("/me", m.Handler.Me)
	protected.POST("/logout", m.Handler.Logout)
}
