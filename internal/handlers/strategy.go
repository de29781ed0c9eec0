package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/minachen/sproutlog-backend/internal/repos"
)

type StrategyHandler struct {
	repo repos.StrategyRepo
}

func NewStrategyHandler(repo repos.StrategyRepo) *StrategyHandler {
	return &StrategyHandler{repo: repo}
}

// GET /api/strategies
func (h *StrategyHandler) ListStrategies(c *gin.Context) {
	strategies, err := h.repo.List(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"strategies": strategies})
}
