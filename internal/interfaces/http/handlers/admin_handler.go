package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"aeroapi.backend/internal/domain/entities"
	domainerrors "aeroapi.backend/internal/domain/errors"
	"aeroapi.backend/internal/interfaces/http/middleware"
	"aeroapi.backend/internal/interfaces/http/response"
	"aeroapi.backend/internal/usecases"
	"aeroapi.backend/pkg/utils"
)

// AdminHandler serves user listings and moderation to admins
type AdminHandler struct {
	userUsecase       *usecases.UserUsecase
	moderationUsecase *usecases.ModerationUsecase
}

func NewAdminHandler(userUsecase *usecases.UserUsecase, moderationUsecase *usecases.ModerationUsecase) *AdminHandler {
	return &AdminHandler{
		userUsecase:       userUsecase,
		moderationUsecase: moderationUsecase,
	}
}

// ListUsers lists users with their moderation status, optionally filtered by search
func (h *AdminHandler) ListUsers(c *gin.Context) {
	page, _ := strconv.Atoi(c.Query("page"))
	limit, _ := strconv.Atoi(c.Query("limit"))

	users, meta, err := h.userUsecase.ListUsers(c.Request.Context(), c.Query("search"), utils.GetPaginationParams(page, limit))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"users": users, "meta": meta})
}

// ModerationHistory lists every action ever applied to a user, newest first
func (h *AdminHandler) ModerationHistory(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		response.Error(c, domainerrors.BadRequest("Invalid user ID"))
		return
	}

	history, err := h.moderationUsecase.History(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"history": history})
}

// Moderate applies an action, replacing any active one of the same kind
func (h *AdminHandler) Moderate(c *gin.Context) {
	var input entities.ApplyModerationInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest("userId and actionType are required"))
		return
	}

	moderatorID, exists := middleware.GetUserID(c)
	if !exists {
		response.Error(c, domainerrors.Unauthorized("User not authenticated"))
		return
	}

	action, err := h.moderationUsecase.Apply(c.Request.Context(), moderatorID, &input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"success": true, "action": action})
}

// Unmoderate deactivates every active action of a kind
func (h *AdminHandler) Unmoderate(c *gin.Context) {
	var input entities.RemoveModerationInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest("userId and actionType are required"))
		return
	}

	removed, err := h.moderationUsecase.Remove(c.Request.Context(), &input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"success": true, "removed": removed})
}
