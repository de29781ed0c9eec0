package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/minachen/sproutlog-backend/internal/services"
)

// PromptHandler is the admin surface for agent prompt versions.
type PromptHandler struct {
	registry services.PromptRegistry
}

func NewPromptHandler(registry services.PromptRegistry) *PromptHandler {
	return &PromptHandler{registry: registry}
}

// GET /api/prompts/:agent
func (h *PromptHandler) ListVersions(c *gin.Context) {
	agent := c.Param("agent")
	versions, err := h.registry.ListVersions(c.Request.Context(), agent)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"agent_name": agent, "versions": versions})
}

type createPromptVersionRequest struct {
	Version           string  `json:"version"`
	SystemPrompt      string  `json:"system_prompt"`
	ReleaseNotes      *string `json:"release_notes"`
	EnableImmediately bool    `json:"enable_immediately"`
}

// POST /api/prompts/:agent
func (h *PromptHandler) CreateVersion(c *gin.Context) {
	var req createPromptVersionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	if strings.TrimSpace(req.Version) == "" || strings.TrimSpace(req.SystemPrompt) == "" {
		RespondError(c, http.StatusBadRequest, "invalid_body", errors.New("version and system_prompt are required"))
		return
	}
	created, err := h.registry.CreateVersion(c.Request.Context(), services.CreatePromptVersionInput{
		AgentName:         c.Param("agent"),
		Version:           req.Version,
		SystemPrompt:      req.SystemPrompt,
		ReleaseNotes:      req.ReleaseNotes,
		EnableImmediately: req.EnableImmediately,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	RespondOK(c, created)
}

type enablePromptVersionRequest struct {
	Version string `json:"version"`
}

// POST /api/prompts/:agent/enable
func (h *PromptHandler) EnableVersion(c *gin.Context) {
	var req enablePromptVersionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	if strings.TrimSpace(req.Version) == "" {
		RespondError(c, http.StatusBadRequest, "invalid_body", errors.New("version is required"))
		return
	}
	agent := c.Param("agent")
	if err := h.registry.EnableVersion(c.Request.Context(), agent, req.Version); err != nil {
		respondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"agent_name": agent, "enabled_version": req.Version})
}

// POST /api/prompts/cache/clear
func (h *PromptHandler) ClearCache(c *gin.Context) {
	agent := c.Query("agent")
	h.registry.ClearCache(agent)
	RespondOK(c, gin.H{"cleared": true})
}
