package middleware

import (
	"net"
	"strings"

	"github.com/gin-gonic/gin"
)

// RealIP stores the client address under "real_ip". With trustProxy set,
// CF-Connecting-IP, then the left-most X-Forwarded-For, then X-Real-IP
// take precedence over the socket peer.
func RealIP(trustProxy bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := ""
		if trustProxy {
			ip = forwardedIP(c)
		}
		if ip == "" {
			ip = c.ClientIP()
		}
		c.Set("real_ip", ip)
		c.Next()
	}
}

func forwardedIP(c *gin.Context) string {
	candidates := []string{c.GetHeader("CF-Connecting-IP")}
	if xff := c.GetHeader("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		candidates = append(candidates, first)
	}
	candidates = append(candidates, c.GetHeader("X-Real-IP"))
	for _, v := range candidates {
		if ip := net.ParseIP(strings.TrimSpace(v)); ip != nil {
			return ip.String()
		}
	}
	return ""
}
