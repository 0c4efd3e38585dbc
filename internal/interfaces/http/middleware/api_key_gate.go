package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"aeroapi.backend/internal/domain/entities"
	"aeroapi.backend/internal/interfaces/http/response"
	"aeroapi.backend/pkg/logger"
)

const (
	// ApiKeyHeader carries the capability token on privileged routes
	ApiKeyHeader = "api-key"
	// DecisionKey is the context key for the allowed decision
	DecisionKey = "authDecision"
)

// Authorizer decides whether an API key may perform a privileged action
type Authorizer interface {
	Authorize(ctx context.Context, secret string) (*entities.Decision, error)
}

// ApiKeyGate admits only requests whose api-key header is allowed right now.
// Every denial is a 401; the body carries the deny reason and its message.
func ApiKeyGate(gate Authorizer) gin.HandlerFunc {
	return func(c *gin.Context) {
		decision, err := gate.Authorize(c.Request.Context(), c.GetHeader(ApiKeyHeader))
		if err != nil {
			logger.Error(c.Request.Context(), "Authorization failed", zap.Error(err))
			response.AbortWithError(c, err)
			return
		}
		if !decision.Allowed {
			c.AbortWithStatusJSON(http.StatusUnauthorized, decision.ValidationResult())
			return
		}

		c.Set(DecisionKey, decision)
		c.Next()
	}
}

// GetDecision returns the decision recorded by ApiKeyGate
func GetDecision(c *gin.Context) (*entities.Decision, bool) {
	v, exists := c.Get(DecisionKey)
	if !exists {
		return nil, false
	}
	d, ok := v.(*entities.Decision)
	return d, ok
}
