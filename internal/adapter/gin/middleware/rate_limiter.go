package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	grpcmiddleware "user-registry/internal/adapter/grpc/middleware"
)

// RateLimiter limits requests per client, route and method with the limiter
// shared with the gRPC server. A nil limiter disables it.
func RateLimiter(limiter *grpcmiddleware.RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil {
			c.Next()
			return
		}

		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		key := fmt.Sprintf("ratelimit:http:%s:%s:%s", c.Request.Method, route, c.ClientIP())

		allowed, count := limiter.Allow(c.Request.Context(), key)
		if !allowed {
			cfg := limiter.Config()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "rate_limit_exceeded",
				"message": fmt.Sprintf("Rate limit exceeded: %d requests in %d seconds (limit: %.0f req/s)",
					count, cfg.WindowSeconds, cfg.RequestsPerSecond),
			})
			return
		}

		c.Next()
	}
}
