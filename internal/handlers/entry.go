package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/minachen/sproutlog-backend/internal/repos"
	"github.com/minachen/sproutlog-backend/internal/services"
)

type EntryHandler struct {
	svc services.EntryService
}

func NewEntryHandler(svc services.EntryService) *EntryHandler {
	return &EntryHandler{svc: svc}
}

type createEntryRequest struct {
	RawText   string  `json:"raw_text"`
	EntryDate string  `json:"entry_date"`
	ChildAge  *string `json:"child_age"`
}

// POST /api/entries
func (h *EntryHandler) CreateEntry(c *gin.Context) {
	var req createEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	if strings.TrimSpace(req.RawText) == "" {
		RespondError(c, http.StatusBadRequest, "invalid_body", errors.New("raw_text is required"))
		return
	}
	entryDate := time.Now().UTC()
	if req.EntryDate != "" {
		parsed, err := parseDateOrTime(req.EntryDate)
		if err != nil {
			RespondError(c, http.StatusBadRequest, "invalid_body", errors.New("entry_date must be YYYY-MM-DD or RFC 3339"))
			return
		}
		entryDate = parsed
	}

	result, err := h.svc.ProcessEntry(c.Request.Context(), req.RawText, entryDate, req.ChildAge)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	RespondOK(c, result)
}

// GET /api/entries
func (h *EntryHandler) ListEntries(c *gin.Context) {
	filter := repos.EntryFilter{
		Limit:  parseIntQuery(c, "limit", 20),
		Offset: parseIntQuery(c, "offset", 0),
	}
	if tags := c.Query("tags"); tags != "" {
		filter.Tags = splitCSV(tags)
	}
	if start := c.Query("start_date"); start != "" {
		parsed, err := parseDateOrTime(start)
		if err != nil {
			RespondError(c, http.StatusBadRequest, "invalid_query", errors.New("start_date must be YYYY-MM-DD"))
			return
		}
		filter.StartDate = &parsed
	}
	if end := c.Query("end_date"); end != "" {
		parsed, err := parseDateOrTime(end)
		if err != nil {
			RespondError(c, http.StatusBadRequest, "invalid_query", errors.New("end_date must be YYYY-MM-DD"))
			return
		}
		filter.EndDate = &parsed
	}

	entries, err := h.svc.ListEntries(c.Request.Context(), filter)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"entries": entries})
}

// GET /api/entries/:id
func (h *EntryHandler) GetEntry(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_id", errors.New("invalid entry id"))
		return
	}
	entry, err := h.svc.GetEntry(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	RespondOK(c, entry)
}

func parseDateOrTime(value string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

func parseIntQuery(c *gin.Context, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}

func splitCSV(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
