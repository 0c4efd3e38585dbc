package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"aeroapi.backend/internal/domain/entities"
	domainerrors "aeroapi.backend/internal/domain/errors"
	"aeroapi.backend/internal/interfaces/http/response"
)

// StatusReader reports a user's current moderation status
type StatusReader interface {
	Status(ctx context.Context, userID uuid.UUID) (*entities.ModerationStatus, error)
}

// ModerationStatusKey is the context key for the caller's moderation status
const ModerationStatusKey = "moderationStatus"

// OwnerInGoodStanding refuses key management to locked or disabled owners.
// Must run after AuthMiddleware.
func OwnerInGoodStanding(statuses StatusReader) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := GetUserID(c)
		if !ok {
			response.AbortWithError(c, domainerrors.Unauthorized("Unauthorized"))
			return
		}

		status, err := statuses.Status(c.Request.Context(), userID)
		if err != nil {
			response.AbortWithError(c, err)
			return
		}
		if status.Restricted() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"code":             domainerrors.CodeForbidden,
				"error":            "Your account is moderated",
				"message":          "Your account is moderated",
				"moderationStatus": status,
			})
			return
		}

		c.Set(ModerationStatusKey, status)
		c.Next()
	}
}
