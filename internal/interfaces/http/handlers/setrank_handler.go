package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"aeroapi.backend/internal/domain/entities"
	domainerrors "aeroapi.backend/internal/domain/errors"
	"aeroapi.backend/internal/interfaces/http/middleware"
	"aeroapi.backend/internal/interfaces/http/response"
	"aeroapi.backend/pkg/logger"
)

// RankExecutor performs a rank change on the external platform
type RankExecutor interface {
	SetRank(ctx context.Context, caller *entities.User, input *entities.SetRankInput) (*entities.SetRankResult, error)
}

// SetRankHandler runs privileged rank changes behind the API key gate
type SetRankHandler struct {
	executor RankExecutor
}

// NewSetRankHandler creates the handler. A nil executor answers 503.
func NewSetRankHandler(executor RankExecutor) *SetRankHandler {
	return &SetRankHandler{executor: executor}
}

// SetRank validates the request and hands it to the executor
func (h *SetRankHandler) SetRank(c *gin.Context) {
	var input entities.SetRankInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest("groupId, targetUsername and rankId are required"))
		return
	}

	decision, ok := middleware.GetDecision(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("API key required"))
		return
	}

	if h.executor == nil {
		response.Error(c, domainerrors.Unavailable("rank executor is not configured"))
		return
	}

	result, err := h.executor.SetRank(c.Request.Context(), decision.User, &input)
	if err != nil {
		logger.Error(c.Request.Context(), "Set rank failed",
			zap.String("caller", decision.User.ExternalID),
			zap.Int64("groupId", input.GroupID),
			zap.Error(err),
		)
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"success": true, "result": result})
}
