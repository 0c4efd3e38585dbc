package handlers

import (
	"github.com/gin-gonic/gin"

	"aeroapi.backend/internal/interfaces/http/middleware"
	"aeroapi.backend/internal/interfaces/http/response"
)

// ValidateKeyHandler lets external services check an API key
type ValidateKeyHandler struct {
	gate middleware.Authorizer
}

func NewValidateKeyHandler(gate middleware.Authorizer) *ValidateKeyHandler {
	return &ValidateKeyHandler{gate: gate}
}

// ValidateKey reports whether the key in the path may be used right now
func (h *ValidateKeyHandler) ValidateKey(c *gin.Context) {
	decision, err := h.gate.Authorize(c.Request.Context(), c.Param("apiKey"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Decision(c, decision)
}
