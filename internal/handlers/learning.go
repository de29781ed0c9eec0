package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/minachen/sproutlog-backend/internal/repos"
	"github.com/minachen/sproutlog-backend/internal/services"
)

type LearningHandler struct {
	svc services.LearningService
}

func NewLearningHandler(svc services.LearningService) *LearningHandler {
	return &LearningHandler{svc: svc}
}

// POST /api/learnings
func (h *LearningHandler) CreateLearning(c *gin.Context) {
	var input services.CreateLearningInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	learning, err := h.svc.Create(c.Request.Context(), input)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	RespondOK(c, learning)
}

// GET /api/learnings
func (h *LearningHandler) ListLearnings(c *gin.Context) {
	filter := repos.LearningFilter{
		Status: c.Query("status"),
		Topic:  c.Query("topic"),
		Limit:  parseIntQuery(c, "limit", 50),
		Offset: parseIntQuery(c, "offset", 0),
	}
	learnings, err := h.svc.List(c.Request.Context(), filter)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"learnings": learnings})
}

// GET /api/learnings/:id
func (h *LearningHandler) GetLearning(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_id", errors.New("invalid learning id"))
		return
	}
	learning, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	RespondOK(c, learning)
}

// PATCH /api/learnings/:id
func (h *LearningHandler) UpdateLearning(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_id", errors.New("invalid learning id"))
		return
	}
	var input services.UpdateLearningInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	learning, err := h.svc.Update(c.Request.Context(), id, input)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	RespondOK(c, learning)
}

// DELETE /api/learnings/:id
func (h *LearningHandler) DeleteLearning(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_id", errors.New("invalid learning id"))
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		respondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"deleted": true})
}
