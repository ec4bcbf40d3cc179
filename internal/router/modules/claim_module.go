package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/obakengshepherd/InsureClaim/internal/container"
	"github.com/obakengshepherd/InsureClaim/internal/domain/entity"
	handlers "github.com/obakengshepherd/InsureClaim/internal/interface/http"
	"github.com/obakengshepherd/InsureClaim/internal/interface/middleware"
)

type ClaimModule struct {
	Handler     *handlers.ClaimHandler
	RequireAuth gin.HandlerFunc
}

func NewClaimModule(h *handlers.ClaimHandler, requireAuth gin.HandlerFunc) *ClaimModule {
	return &ClaimModule{Handler: h, RequireAuth: requireAuth}
}

func (m *ClaimModule) Register(rg *gin.RouterGroup) {
	rdb := container.GetRedis()
	g := rg.Group("/claim", m.RequireAuth,
		middleware.RateLimit(rdb, 120, time.Minute, middleware.KeyByUserID(), nil))
	g.POST("", m.Handler.Submit)
	g.GET("", m.Handler.List)
	g.GET("/policy/:policyId", m.Handler.ListByPolicy)
	g.GET("/user/:userId", m.Handler.ListByUser)
	g.GET("/:id", m.Handler.Get)
	g.POST("/:id/document",
		middleware.RateLimit(rdb, 10, time.Minute, middleware.KeyByUserID(), nil),
		m.Handler.UploadDocument)

	admin := g.Group("", middleware.RequireRole(entity.RoleAdmin))
	admin.GET("/statistics", m.Handler.Statistics)
	admin.GET("/search", m.Handler.Search)
	admin.PUT("/:id", m.Handler.Review)
}
