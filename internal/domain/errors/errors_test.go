package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_Constructors(t *testing.T) {
	tests := []struct {
		name   string
		err    *AppError
		status int
		code   string
		base   error
	}{
		{"not found", NotFound("missing"), http.StatusNotFound, CodeNotFound, ErrNotFound},
		{"bad request", BadRequest("bad"), http.StatusBadRequest, CodeBadRequest, ErrInvalidInput},
		{"unauthorized", Unauthorized("who"), http.StatusUnauthorized, CodeUnauthorized, ErrUnauthorized},
		{"forbidden", Forbidden("no"), http.StatusForbidden, CodeForbidden, ErrForbidden},
		{"too many", TooManyRequests("slow"), http.StatusTooManyRequests, CodeTooManyRequests, ErrTooManyRequests},
		{"unavailable", Unavailable("down"), http.StatusServiceUnavailable, CodeUnavailable, ErrUnavailable},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.status, tc.err.Status)
			assert.Equal(t, tc.code, tc.err.Code)
			assert.ErrorIs(t, tc.err, tc.base)
		})
	}
}

func TestAppError_Error(t *testing.T) {
	assert.Equal(t, "missing", NotFound("missing").Error())

	internal := InternalError(stderrors.New("db down"))
	assert.Equal(t, http.StatusInternalServerError, internal.Status)
	assert.Equal(t, "internal server error", internal.Error())

	bare := NewAppError(http.StatusInternalServerError, CodeInternalError, "", stderrors.New("raw"))
	assert.Equal(t, "raw", bare.Error())
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, IsNotFound(ErrNotFound))
	assert.True(t, IsNotFound(fmt.Errorf("load user: %w", ErrNotFound)))
	assert.True(t, IsNotFound(NotFound("user not found")))
	assert.False(t, IsNotFound(ErrForbidden))
	assert.False(t, IsNotFound(nil))
}

func TestAppError_As(t *testing.T) {
	wrapped := fmt.Errorf("apply: %w", BadRequest("reason is required"))
	var appErr *AppError
	assert.True(t, stderrors.As(wrapped, &appErr))
	assert.Equal(t, "reason is required", appErr.Message)
}
