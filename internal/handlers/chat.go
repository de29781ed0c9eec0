package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/minachen/sproutlog-backend/internal/services"
	"github.com/minachen/sproutlog-backend/internal/types"
)

type ChatHandler struct {
	svc services.ChatService
}

func NewChatHandler(svc services.ChatService) *ChatHandler {
	return &ChatHandler{svc: svc}
}

type sendChatRequest struct {
	ConversationID *uuid.UUID `json:"conversation_id"`
	Message        string     `json:"message"`
}

// POST /api/chat
func (h *ChatHandler) Send(c *gin.Context) {
	var req sendChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		RespondError(c, http.StatusBadRequest, "invalid_body", errors.New("message is required"))
		return
	}
	result, err := h.svc.Send(c.Request.Context(), req.ConversationID, req.Message)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	RespondOK(c, result)
}

type conversationPreview struct {
	ID        uuid.UUID `json:"id"`
	Title     *string   `json:"title,omitempty"`
	Preview   string    `json:"preview"`
	UpdatedAt string    `json:"updated_at"`
}

// GET /api/chat
func (h *ChatHandler) ListConversations(c *gin.Context) {
	conversations, err := h.svc.ListConversations(c.Request.Context(), parseIntQuery(c, "limit", 20))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	previews := make([]conversationPreview, 0, len(conversations))
	for _, conv := range conversations {
		previews = append(previews, conversationPreview{
			ID:        conv.ID,
			Title:     conv.Title,
			Preview:   previewText(conv),
			UpdatedAt: conv.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
		})
	}
	RespondOK(c, gin.H{"conversations": previews})
}

func previewText(conv *types.Conversation) string {
	if len(conv.Messages) == 0 {
		return ""
	}
	content := conv.Messages[len(conv.Messages)-1].Content
	runes := []rune(content)
	if len(runes) > 80 {
		return string(runes[:80]) + "…"
	}
	return content
}

// GET /api/chat/:id
func (h *ChatHandler) GetConversation(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_id", errors.New("invalid conversation id"))
		return
	}
	conv, err := h.svc.GetConversation(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	RespondOK(c, conv)
}
