package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nexconsult/docsync/internal/models"
	"github.com/nexconsult/docsync/internal/services"
	"github.com/nexconsult/docsync/internal/templates"
	"github.com/sirupsen/logrus"
)

// SessionHandler handles review, preview, generation and downloads of a
// processed session
type SessionHandler struct {
	reviews   *services.ReviewService
	documents *services.DocumentService
	logger    *logrus.Logger
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(reviews *services.ReviewService, documents *services.DocumentService, logger *logrus.Logger) *SessionHandler {
	return &SessionHandler{
		reviews:   reviews,
		documents: documents,
		logger:    logger,
	}
}

// Get returns the review state
// @Summary Get review state
// @Description Extracted data, validation results and whether generation is allowed
// @Tags Sessions
// @Produce json
// @Param id path string true "Session id"
// @Success 200 {object} review.State
// @Failure 404 {object} models.ErrorResponse
// @Router /sessions/{id} [get]
func (h *SessionHandler) Get(c *gin.Context) {
	state, err := h.reviews.State(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err, nil)
		return
	}
	c.JSON(http.StatusOK, state)
}

// UpdateField edits one field
// @Summary Edit a field
// @Description Validates immediately; the backend is updated after a short idle period
// @Tags Sessions
// @Accept json
// @Produce json
// @Param id path string true "Session id"
// @Param request body models.FieldUpdateRequest true "Field and value"
// @Success 200 {object} services.FieldUpdateResult
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /sessions/{id} [patch]
func (h *SessionHandler) UpdateField(c *gin.Context) {
	var req models.FieldUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Request body must contain a field path")
		return
	}
	req.Normalize()

	result, err := h.reviews.UpdateField(c.Request.Context(), c.Param("id"), req.Field, req.Value)
	if err != nil {
		respondError(c, h.logger, err, nil)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Close drops the review session
// @Summary Close review session
// @Tags Sessions
// @Param id path string true "Session id"
// @Success 204
// @Failure 404 {object} models.ErrorResponse
// @Router /sessions/{id} [delete]
func (h *SessionHandler) Close(c *gin.Context) {
	if !h.reviews.Close(c.Param("id")) {
		respondError(c, h.logger, services.ErrSessionNotFound, nil)
		return
	}
	c.Status(http.StatusNoContent)
}

// Preview renders the template with the current data
// @Summary Preview document
// @Description HTML preview with a count of placeholders still unfilled
// @Tags Sessions
// @Produce json
// @Param id path string true "Session id"
// @Success 200 {object} services.PreviewAnalysis
// @Failure 404 {object} models.ErrorResponse
// @Failure 502 {object} models.ErrorResponse
// @Router /sessions/{id}/preview [get]
func (h *SessionHandler) Preview(c *gin.Context) {
	analysis, err := h.reviews.Preview(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err, nil)
		return
	}
	c.JSON(http.StatusOK, analysis)
}

// PreviewPDF renders the preview to PDF
// @Summary Preview document as PDF
// @Tags Sessions
// @Produce application/pdf
// @Param id path string true "Session id"
// @Success 200 {file} binary
// @Failure 503 {object} models.ErrorResponse
// @Router /sessions/{id}/preview.pdf [get]
func (h *SessionHandler) PreviewPDF(c *gin.Context) {
	id := c.Param("id")
	pdf, err := h.reviews.PreviewPDF(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err, nil)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`inline; filename="preview_%s.pdf"`, templates.Slug(id)))
	c.Data(http.StatusOK, "application/pdf", pdf)
}

// Generate renders the final documents
// @Summary Generate documents
// @Description Blocked while required fields are empty or invalid; aborted after 30 seconds
// @Tags Sessions
// @Produce json
// @Param id path string true "Session id"
// @Success 200 {object} services.GenerationResult
// @Failure 409 {object} models.ErrorResponse
// @Failure 422 {object} models.ErrorResponse
// @Failure 504 {object} models.ErrorResponse
// @Router /sessions/{id}/generate [post]
func (h *SessionHandler) Generate(c *gin.Context) {
	result, err := h.documents.Generate(c.Request.Context(), c.Param("id"))
	if err != nil {
		var missing *services.MissingFieldsError
		var details interface{}
		if errors.As(err, &missing) {
			details = gin.H{"missing_fields": missing.Fields}
		}
		respondError(c, h.logger, err, details)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Downloads lists the generated artifacts
// @Summary List downloads
// @Description DOCX and PDF options with PDF availability
// @Tags Sessions
// @Produce json
// @Param id path string true "Session id"
// @Success 200 {object} services.DownloadOptions
// @Failure 409 {object} models.ErrorResponse
// @Router /sessions/{id}/downloads [get]
func (h *SessionHandler) Downloads(c *gin.Context) {
	options, err := h.documents.Options(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err, nil)
		return
	}
	c.JSON(http.StatusOK, options)
}

// Download saves one artifact locally
// @Summary Download an artifact
// @Description Saves the DOCX or PDF; a second request for the same file while one runs is rejected
// @Tags Sessions
// @Produce json
// @Param id path string true "Session id"
// @Param type path string true "docx or pdf"
// @Success 200 {object} download.Result
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Failure 422 {object} models.ErrorResponse
// @Router /sessions/{id}/downloads/{type} [post]
func (h *SessionHandler) Download(c *gin.Context) {
	id, fileType := c.Param("id"), c.Param("type")

	result, err := h.documents.Download(c.Request.Context(), id, fileType)
	if err != nil {
		respondError(c, h.logger, err, gin.H{"file_type": fileType})
		return
	}

	h.logger.WithFields(logrus.Fields{
		"request_id": c.GetString("request_id"),
		"session_id": id,
		"file_type":  fileType,
		"path":       result.Path,
		"size":       result.Size,
	}).Info("Document downloaded")
	c.JSON(http.StatusOK, result)
}
