package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/minachen/sproutlog-backend/internal/services"
)

type DigestHandler struct {
	svc services.DigestService
}

func NewDigestHandler(svc services.DigestService) *DigestHandler {
	return &DigestHandler{svc: svc}
}

type digestRequest struct {
	Date   string                 `json:"date"`
	Fields services.DigestFields `json:"fields"`
}

// POST /api/digests
func (h *DigestHandler) CreateDigest(c *gin.Context) {
	var req digestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", errors.New("date must be YYYY-MM-DD"))
		return
	}
	digest, err := h.svc.Create(c.Request.Context(), date, req.Fields)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	RespondOK(c, digest)
}

// GET /api/digests
func (h *DigestHandler) ListDigests(c *gin.Context) {
	digests, err := h.svc.List(c.Request.Context(), parseIntQuery(c, "limit", 20), parseIntQuery(c, "offset", 0))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"digests": digests})
}

// GET /api/digests/:date
func (h *DigestHandler) GetDigest(c *gin.Context) {
	date, err := time.Parse("2006-01-02", c.Param("date"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_date", errors.New("date must be YYYY-MM-DD"))
		return
	}
	digest, err := h.svc.GetByDate(c.Request.Context(), date)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	RespondOK(c, digest)
}

// PUT /api/digests/:date
func (h *DigestHandler) UpdateDigest(c *gin.Context) {
	date, err := time.Parse("2006-01-02", c.Param("date"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_date", errors.New("date must be YYYY-MM-DD"))
		return
	}
	var fields services.DigestFields
	if err := c.ShouldBindJSON(&fields); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	digest, err := h.svc.UpdateByDate(c.Request.Context(), date, fields)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	RespondOK(c, digest)
}

// DELETE /api/digests/:date
func (h *DigestHandler) DeleteDigest(c *gin.Context) {
	date, err := time.Parse("2006-01-02", c.Param("date"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_date", errors.New("date must be YYYY-MM-DD"))
		return
	}
	if err := h.svc.DeleteByDate(c.Request.Context(), date); err != nil {
		respondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"deleted": true})
}
