package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"aeroapi.backend/internal/domain/entities"
	domainerrors "aeroapi.backend/internal/domain/errors"
)

// Success sends a success response
func Success(c *gin.Context, status int, data interface{}) {
	c.JSON(status, data)
}

// Error sends an error response. Bare domain sentinels map to their status;
// anything else is an internal error.
func Error(c *gin.Context, err error) {
	appErr := toAppError(err)
	c.JSON(appErr.Status, gin.H{
		"code":    appErr.Code,
		"message": appErr.Message,
		"error":   appErr.Message,
	})
}

// ErrorWithError sends an error response with a specific status and message
func ErrorWithError(c *gin.Context, status int, code string, message string) {
	c.JSON(status, gin.H{
		"code":    code,
		"message": message,
		"error":   message,
	})
}

// AbortWithError writes the error response and stops the handler chain
func AbortWithError(c *gin.Context, err error) {
	Error(c, err)
	c.Abort()
}

// DecisionStatus maps an authorization decision to its HTTP status
func DecisionStatus(d *entities.Decision) int {
	if d.Allowed {
		return http.StatusOK
	}
	switch d.Reason {
	case entities.DenyMissing:
		return http.StatusUnauthorized
	case entities.DenyLocked, entities.DenyDisabled:
		return http.StatusForbidden
	case entities.DenyRatelimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusNotFound
	}
}

// Decision writes the validation view of an authorization decision
func Decision(c *gin.Context, d *entities.Decision) {
	c.JSON(DecisionStatus(d), d.ValidationResult())
}

func toAppError(err error) *domainerrors.AppError {
	var appErr *domainerrors.AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	switch {
	case errors.Is(err, domainerrors.ErrNotFound):
		return domainerrors.NotFound(err.Error())
	case errors.Is(err, domainerrors.ErrInvalidInput):
		return domainerrors.BadRequest(err.Error())
	case errors.Is(err, domainerrors.ErrUnauthorized):
		return domainerrors.Unauthorized(err.Error())
	case errors.Is(err, domainerrors.ErrForbidden):
		return domainerrors.Forbidden(err.Error())
	case errors.Is(err, domainerrors.ErrTooManyRequests):
		return domainerrors.TooManyRequests(err.Error())
	case errors.Is(err, domainerrors.ErrUnavailable):
		return domainerrors.Unavailable(err.Error())
	}
	return domainerrors.NewAppError(http.StatusInternalServerError, domainerrors.CodeInternalError, "internal server error", err)
}
