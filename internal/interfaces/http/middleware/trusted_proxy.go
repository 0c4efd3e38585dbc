package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"aeroapi.backend/pkg/logger"
)

// InternalSecretHeader carries the shared secret of the identity proxy
const InternalSecretHeader = "X-Internal-Secret"

// TrustedProxy admits only callers presenting the shared proxy secret.
// With no secret configured the route is closed.
func TrustedProxy(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if secret == "" {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{
				"error": "Identity proxy is not configured",
			})
			return
		}

		given := c.GetHeader(InternalSecretHeader)
		if subtle.ConstantTimeCompare([]byte(given), []byte(secret)) != 1 {
			logger.Warn(c.Request.Context(), "Untrusted identity proxy call", zap.String("client_ip", c.ClientIP()))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid internal secret",
			})
			return
		}

		c.Next()
	}
}
