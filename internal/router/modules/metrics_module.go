package modules

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/obakengshepherd/InsureClaim/internal/container"
	"github.com/obakengshepherd/InsureClaim/internal/interface/middleware"
)

// MetricsModule exposes the Prometheus scrape endpoint, rate limited per IP
// except for private-network scrapers.
type MetricsModule struct {
	Source interface{ Handler() http.Handler }
}

func NewMetricsModule(src interface{ Handler() http.Handler }) *MetricsModule {
	return &MetricsModule{Source: src}
}

func (m *MetricsModule) Register(rg *gin.RouterGroup) {
	rl := middleware.RateLimit(container.GetRedis(), 120, time.Minute, middleware.KeyByIP(), middleware.AllowPrivateIP())
	rg.GET("/metrics", rl, gin.WrapH(m.Source.Handler()))
}
