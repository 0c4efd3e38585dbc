package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"aeroapi.backend/internal/domain/entities"
	domainerrors "aeroapi.backend/internal/domain/errors"
	"aeroapi.backend/internal/interfaces/http/response"
	"aeroapi.backend/internal/usecases"
)

// AuthHandler absorbs identity provider logins forwarded by the trusted proxy
type AuthHandler struct {
	userUsecase *usecases.UserUsecase
}

func NewAuthHandler(userUsecase *usecases.UserUsecase) *AuthHandler {
	return &AuthHandler{userUsecase: userUsecase}
}

// Identity upserts the profile and issues a session token
func (h *AuthHandler) Identity(c *gin.Context) {
	var input entities.UpsertUserInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest("externalId and name are required"))
		return
	}

	session, err := h.userUsecase.Login(c.Request.Context(), &input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, session)
}
