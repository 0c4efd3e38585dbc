package middleware

import (
	"context"
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"aeroapi.backend/pkg/logger"
	"aeroapi.backend/pkg/redis"
)

// Limiter counts hits against a per-key window
type Limiter interface {
	Hit(ctx context.Context, key string) (*redis.ThrottleResult, error)
}

// Throttle limits requests per client IP. A nil limiter disables it.
// When the limiter backend fails the request is let through.
func Throttle(limiter Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil {
			c.Next()
			return
		}

		result, err := limiter.Hit(c.Request.Context(), c.ClientIP())
		if err != nil {
			logger.Warn(c.Request.Context(), "Throttle unavailable, allowing request", zap.Error(err))
			c.Next()
			return
		}

		c.Header("X-RateLimit-Remaining", strconv.FormatInt(result.Remaining, 10))
		if !result.Allowed {
			c.Header("Retry-After", strconv.Itoa(int(math.Ceil(result.RetryAfter.Seconds()))))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "Too many requests",
			})
			return
		}

		c.Next()
	}
}
