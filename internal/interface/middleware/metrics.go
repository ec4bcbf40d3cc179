package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
)

// HTTPObserver is implemented by observability.Metrics.
type HTTPObserver interface {
	ObserveHTTP(method, route string, code int, d time.Duration)
}

// Metrics records latency and status per matched route. Unmatched paths
// share one label so scanners cannot blow up cardinality.
func Metrics(obs HTTPObserver) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		obs.ObserveHTTP(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
