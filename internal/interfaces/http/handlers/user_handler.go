package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"aeroapi.backend/internal/domain/entities"
	domainerrors "aeroapi.backend/internal/domain/errors"
	"aeroapi.backend/internal/interfaces/http/middleware"
	"aeroapi.backend/internal/interfaces/http/response"
	"aeroapi.backend/internal/usecases"
)

// UserHandler serves the signed-in owner's status and keys
type UserHandler struct {
	apiKeyUsecase     *usecases.ApiKeyUsecase
	moderationUsecase *usecases.ModerationUsecase
}

func NewUserHandler(apiKeyUsecase *usecases.ApiKeyUsecase, moderationUsecase *usecases.ModerationUsecase) *UserHandler {
	return &UserHandler{
		apiKeyUsecase:     apiKeyUsecase,
		moderationUsecase: moderationUsecase,
	}
}

// Status returns the caller's current moderation status
func (h *UserHandler) Status(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		response.Error(c, domainerrors.Unauthorized("User not authenticated"))
		return
	}

	status, err := h.moderationUsecase.Status(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"moderationStatus": status})
}

// ListKeys lists the caller's API keys
func (h *UserHandler) ListKeys(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		response.Error(c, domainerrors.Unauthorized("User not authenticated"))
		return
	}

	keys, err := h.apiKeyUsecase.List(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"keys": keys})
}

// GenerateKey issues a new key. The body is optional.
func (h *UserHandler) GenerateKey(c *gin.Context) {
	var input entities.CreateApiKeyInput
	if err := c.ShouldBindJSON(&input); err != nil && !errors.Is(err, io.EOF) {
		response.Error(c, domainerrors.BadRequest("Invalid request body"))
		return
	}

	userID, exists := middleware.GetUserID(c)
	if !exists {
		response.Error(c, domainerrors.Unauthorized("User not authenticated"))
		return
	}

	key, err := h.apiKeyUsecase.Issue(c.Request.Context(), userID, input.Name)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, entities.CreateApiKeyResponse{
		Success: true,
		ApiKey:  key.Secret,
		Key:     key,
	})
}

// DeleteKey revokes one of the caller's keys. Unknown or foreign ids are a no-op.
func (h *UserHandler) DeleteKey(c *gin.Context) {
	keyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, domainerrors.BadRequest("Invalid API Key ID"))
		return
	}

	userID, exists := middleware.GetUserID(c)
	if !exists {
		response.Error(c, domainerrors.Unauthorized("User not authenticated"))
		return
	}

	if err := h.apiKeyUsecase.Revoke(c.Request.Context(), userID, keyID); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"success": true})
}
