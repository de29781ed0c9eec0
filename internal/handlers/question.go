package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/minachen/sproutlog-backend/internal/services"
)

type QuestionHandler struct {
	svc services.QuestionService
}

func NewQuestionHandler(svc services.QuestionService) *QuestionHandler {
	return &QuestionHandler{svc: svc}
}

type createQuestionRequest struct {
	Question string `json:"question"`
}

// POST /api/questions
func (h *QuestionHandler) CreateQuestion(c *gin.Context) {
	var req createQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		RespondError(c, http.StatusBadRequest, "invalid_body", errors.New("question is required"))
		return
	}
	question, err := h.svc.Create(c.Request.Context(), req.Question)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	RespondOK(c, question)
}

// GET /api/questions
func (h *QuestionHandler) ListQuestions(c *gin.Context) {
	questions, err := h.svc.List(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"questions": questions})
}

// GET /api/questions/:id
func (h *QuestionHandler) GetQuestion(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_id", errors.New("invalid question id"))
		return
	}
	question, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	RespondOK(c, question)
}

type updateQuestionRequest struct {
	Question          *string `json:"question"`
	Stage             *string `json:"stage"`
	CurrentConclusion *string `json:"current_conclusion"`
	ConclusionSource  *string `json:"conclusion_source"`
	DisplayOrder      *int    `json:"display_order"`
}

// PATCH /api/questions/:id
func (h *QuestionHandler) UpdateQuestion(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_id", errors.New("invalid question id"))
		return
	}
	var req updateQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	question, err := h.svc.Update(c.Request.Context(), id, services.UpdateQuestionInput{
		Question:          req.Question,
		Stage:             req.Stage,
		CurrentConclusion: req.CurrentConclusion,
		ConclusionSource:  req.ConclusionSource,
		DisplayOrder:      req.DisplayOrder,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	RespondOK(c, question)
}

// DELETE /api/questions/:id
func (h *QuestionHandler) DeleteQuestion(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_id", errors.New("invalid question id"))
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		respondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"deleted": true})
}

type addObservationRequest struct {
	Content string     `json:"content"`
	EntryID *uuid.UUID `json:"entry_id"`
}

// POST /api/questions/:id/observations
func (h *QuestionHandler) AddObservation(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_id", errors.New("invalid question id"))
		return
	}
	var req addObservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		RespondError(c, http.StatusBadRequest, "invalid_body", errors.New("content is required"))
		return
	}
	result, err := h.svc.AddObservation(c.Request.Context(), id, req.Content, req.EntryID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	RespondOK(c, result)
}

type discussRequest struct {
	Message string `json:"message"`
}

// POST /api/questions/:id/discuss
func (h *QuestionHandler) Discuss(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_id", errors.New("invalid question id"))
		return
	}
	var req discussRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		RespondError(c, http.StatusBadRequest, "invalid_body", errors.New("message is required"))
		return
	}
	result, err := h.svc.Discuss(c.Request.Context(), id, req.Message)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	RespondOK(c, result)
}
