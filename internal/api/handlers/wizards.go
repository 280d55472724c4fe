package handlers

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nexconsult/docsync/internal/models"
	"github.com/nexconsult/docsync/internal/services"
	"github.com/nexconsult/docsync/internal/wizard"
	"github.com/sirupsen/logrus"
)

// WizardHandler handles the upload wizard
type WizardHandler struct {
	wizards     *services.WizardService
	maxFileSize int64
	logger      *logrus.Logger
}

// NewWizardHandler creates a new wizard handler
func NewWizardHandler(wizards *services.WizardService, maxFileSize int64, logger *logrus.Logger) *WizardHandler {
	if maxFileSize <= 0 {
		maxFileSize = wizard.DefaultMaxFileSize
	}
	return &WizardHandler{
		wizards:     wizards,
		maxFileSize: maxFileSize,
		logger:      logger,
	}
}

// Create starts a wizard
// @Summary Start an upload wizard
// @Description Start collecting the documents required by a template
// @Tags Wizards
// @Accept json
// @Produce json
// @Param request body models.CreateWizardRequest true "Template"
// @Success 201 {object} services.WizardView
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /wizards [post]
func (h *WizardHandler) Create(c *gin.Context) {
	var req models.CreateWizardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Request body must contain template_id")
		return
	}
	req.Normalize()

	view, err := h.wizards.Create(c.Request.Context(), req.TemplateID)
	if err != nil {
		respondError(c, h.logger, err, gin.H{"template_id": req.TemplateID})
		return
	}
	c.JSON(http.StatusCreated, view)
}

// Get returns the wizard state
// @Summary Get wizard state
// @Tags Wizards
// @Produce json
// @Param id path string true "Wizard id"
// @Success 200 {object} services.WizardView
// @Failure 404 {object} models.ErrorResponse
// @Router /wizards/{id} [get]
func (h *WizardHandler) Get(c *gin.Context) {
	view, err := h.wizards.Get(c.Request.Context(), c.Param("id"))
	h.respond(c, view, err)
}

// DropFile stores the uploaded file in the current slot
// @Summary Drop a file into the current step
// @Description Accepts PDF, JPEG or PNG up to the configured size; replaces any file already in the slot
// @Tags Wizards
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Wizard id"
// @Param file formData file true "Document"
// @Success 200 {object} services.WizardView
// @Failure 400 {object} models.ErrorResponse
// @Failure 413 {object} models.ErrorResponse
// @Failure 415 {object} models.ErrorResponse
// @Router /wizards/{id}/files [post]
func (h *WizardHandler) DropFile(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		badRequest(c, "Multipart field 'file' is required")
		return
	}
	f, err := h.readFile(header)
	if err != nil {
		respondError(c, h.logger, err, gin.H{"filename": header.Filename})
		return
	}

	view, err := h.wizards.DropFile(c.Request.Context(), c.Param("id"), f)
	if err != nil {
		respondError(c, h.logger, err, gin.H{"filename": header.Filename})
		return
	}
	c.JSON(http.StatusOK, view)
}

// RemoveFile clears the current slot
// @Summary Remove the current step's file
// @Tags Wizards
// @Produce json
// @Param id path string true "Wizard id"
// @Success 200 {object} services.WizardView
// @Failure 404 {object} models.ErrorResponse
// @Router /wizards/{id}/files [delete]
func (h *WizardHandler) RemoveFile(c *gin.Context) {
	view, err := h.wizards.RemoveFile(c.Request.Context(), c.Param("id"))
	h.respond(c, view, err)
}

// Batch drops several files and assigns them to slots at once
// @Summary Drop and categorize several files
// @Description Each files[i] goes to slots[i]; the wizard is filled only when every slot has a file
// @Tags Wizards
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Wizard id"
// @Param files formData file true "Documents"
// @Param slots formData []string false "Slot id per file"
// @Success 200 {object} services.BatchResult
// @Failure 400 {object} models.ErrorResponse
// @Failure 422 {object} models.ErrorResponse
// @Router /wizards/{id}/batch [post]
func (h *WizardHandler) Batch(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil || len(form.File["files"]) == 0 {
		badRequest(c, "Multipart field 'files' is required")
		return
	}

	files := make([]wizard.UploadedFile, 0, len(form.File["files"]))
	for _, header := range form.File["files"] {
		f, err := h.readFile(header)
		if err != nil {
			respondError(c, h.logger, err, gin.H{"filename": header.Filename})
			return
		}
		files = append(files, f)
	}

	result, err := h.wizards.Batch(c.Request.Context(), c.Param("id"), files, form.Value["slots"])
	if err != nil {
		var details interface{}
		if errors.Is(err, services.ErrAssignmentIncomplete) {
			details = result
		}
		respondError(c, h.logger, err, details)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Next advances to the next step
// @Summary Next step
// @Tags Wizards
// @Produce json
// @Param id path string true "Wizard id"
// @Success 200 {object} services.WizardView
// @Failure 409 {object} models.ErrorResponse
// @Router /wizards/{id}/next [post]
func (h *WizardHandler) Next(c *gin.Context) {
	view, err := h.wizards.Next(c.Request.Context(), c.Param("id"))
	h.respond(c, view, err)
}

// Previous goes back one step, cancelling on the first
// @Summary Previous step
// @Tags Wizards
// @Produce json
// @Param id path string true "Wizard id"
// @Success 200 {object} services.WizardView
// @Failure 409 {object} models.ErrorResponse
// @Router /wizards/{id}/previous [post]
func (h *WizardHandler) Previous(c *gin.Context) {
	view, err := h.wizards.Previous(c.Request.Context(), c.Param("id"))
	h.respond(c, view, err)
}

// Cancel abandons the wizard
// @Summary Cancel wizard
// @Tags Wizards
// @Produce json
// @Param id path string true "Wizard id"
// @Success 200 {object} services.WizardView
// @Failure 409 {object} models.ErrorResponse
// @Router /wizards/{id}/cancel [post]
func (h *WizardHandler) Cancel(c *gin.Context) {
	view, err := h.wizards.Cancel(c.Request.Context(), c.Param("id"))
	h.respond(c, view, err)
}

// Finish submits the collected files for extraction
// @Summary Finish wizard
// @Description Sends every file to the backend and opens the review session
// @Tags Wizards
// @Produce json
// @Param id path string true "Wizard id"
// @Success 200 {object} services.WizardView
// @Failure 409 {object} models.ErrorResponse
// @Failure 502 {object} models.ErrorResponse
// @Failure 503 {object} models.ErrorResponse
// @Router /wizards/{id}/finish [post]
func (h *WizardHandler) Finish(c *gin.Context) {
	view, err := h.wizards.Finish(c.Request.Context(), c.Param("id"))
	h.respond(c, view, err)
}

func (h *WizardHandler) respond(c *gin.Context, view *services.WizardView, err error) {
	if err != nil {
		respondError(c, h.logger, err, nil)
		return
	}
	c.JSON(http.StatusOK, view)
}

// readFile loads an uploaded part into memory, reading at most one byte past
// the size limit, and applies the upload filter so the type is judged first
func (h *WizardHandler) readFile(header *multipart.FileHeader) (wizard.UploadedFile, error) {
	src, err := header.Open()
	if err != nil {
		return wizard.UploadedFile{}, fmt.Errorf("failed to open upload: %w", err)
	}
	defer src.Close()

	content, err := io.ReadAll(io.LimitReader(src, h.maxFileSize+1))
	if err != nil {
		return wizard.UploadedFile{}, fmt.Errorf("failed to read upload: %w", err)
	}
	file := wizard.NewUploadedFile(header.Filename, header.Header.Get("Content-Type"), content)
	if err := wizard.AcceptFile(file, h.maxFileSize); err != nil {
		return wizard.UploadedFile{}, err
	}
	return file, nil
}
