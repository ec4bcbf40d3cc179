package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/obakengshepherd/InsureClaim/internal/container"
	"github.com/obakengshepherd/InsureClaim/internal/domain/entity"
	handlers "github.com/obakengshepherd/InsureClaim/internal/interface/http"
	"github.com/obakengshepherd/InsureClaim/internal/interface/middleware"
)

type PolicyModule struct {
	Handler     *handlers.PolicyHandler
	RequireAuth gin.HandlerFunc
}

func NewPolicyModule(h *handlers.PolicyHandler, requireAuth gin.HandlerFunc) *PolicyModule {
	return &PolicyModule{Handler: h, RequireAuth: requireAuth}
}

func (m *PolicyModule) Register(rg *gin.RouterGroup) {
	g := rg.Group("/policy", m.RequireAuth,
		middleware.RateLimit(container.GetRedis(), 120, time.Minute, middleware.KeyByUserID(), nil))
	g.POST("", m.Handler.Create)
	g.GET("", m.Handler.List)
	g.GET("/user/:userId", m.Handler.ListByUser)
	g.GET("/:id", m.Handler.Get)

	admin := g.Group("", middleware.RequireRole(entity.RoleAdmin))
	admin.PUT("/:id", m.Handler.Update)
	admin.DELETE("/:id", m.Handler.Cancel)
}
