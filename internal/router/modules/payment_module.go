package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/obakengshepherd/InsureClaim/internal/container"
	"github.com/obakengshepherd/InsureClaim/internal/domain/entity"
	handlers "github.com/obakengshepherd/InsureClaim/internal/interface/http"
	"github.com/obakengshepherd/InsureClaim/internal/interface/middleware"
)

type PaymentModule struct {
	Handler     *handlers.PaymentHandler
	RequireAuth gin.HandlerFunc
}

func NewPaymentModule(h *handlers.PaymentHandler, requireAuth gin.HandlerFunc) *PaymentModule {
	return &PaymentModule{Handler: h, RequireAuth: requireAuth}
}

func (m *PaymentModule) Register(rg *gin.RouterGroup) {
	g := rg.Group("/payment", m.RequireAuth,
		middleware.RateLimit(container.GetRedis(), 120, time.Minute, middleware.KeyByUserID(), nil))
	g.POST("", m.Handler.Record)
	g.GET("", m.Handler.List)
	g.GET("/policy/:policyId", m.Handler.ListByPolicy)
	g.GET("/:id", m.Handler.Get)

	admin := g.Group("", middleware.RequireRole(entity.RoleAdmin))
	admin.GET("/statistics", m.Handler.Statistics)
	admin.PUT("/:id", m.Handler.UpdateStatus)
}
