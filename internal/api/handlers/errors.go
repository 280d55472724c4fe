package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nexconsult/docsync/internal/backend"
	"github.com/nexconsult/docsync/internal/download"
	"github.com/nexconsult/docsync/internal/models"
	"github.com/nexconsult/docsync/internal/services"
	"github.com/nexconsult/docsync/internal/templates"
	"github.com/nexconsult/docsync/internal/wizard"
	"github.com/sirupsen/logrus"
)

type errorMapping struct {
	target error
	status int
	code   string
}

// Checked in order; the first match wins
var errorMappings = []errorMapping{
	{templates.ErrUnknownTemplate, http.StatusNotFound, models.ErrorCodeUnknownTemplate},
	{wizard.ErrInvalidFileType, http.StatusUnsupportedMediaType, models.ErrorCodeInvalidFileType},
	{wizard.ErrFileTooLarge, http.StatusRequestEntityTooLarge, models.ErrorCodeFileTooLarge},
	{wizard.ErrTooManyFiles, http.StatusBadRequest, models.ErrorCodeTooManyFiles},
	{wizard.ErrUnknownSlot, http.StatusBadRequest, models.ErrorCodeUnknownSlot},
	{wizard.ErrFileIndex, http.StatusBadRequest, models.ErrorCodeUnknownSlot},
	{wizard.ErrStepIncomplete, http.StatusConflict, models.ErrorCodeStepIncomplete},
	{wizard.ErrIncomplete, http.StatusConflict, models.ErrorCodeWizardIncomplete},
	{services.ErrAssignmentIncomplete, http.StatusUnprocessableEntity, models.ErrorCodeWizardIncomplete},
	{wizard.ErrBusy, http.StatusConflict, models.ErrorCodeWizardBusy},
	{wizard.ErrClosed, http.StatusConflict, models.ErrorCodeWizardClosed},
	{services.ErrWizardNotFound, http.StatusNotFound, models.ErrorCodeWizardNotFound},
	{services.ErrSessionNotFound, http.StatusNotFound, models.ErrorCodeSessionNotFound},
	{services.ErrCannotGenerate, http.StatusUnprocessableEntity, models.ErrorCodeCannotGenerate},
	{services.ErrGenerationInProgress, http.StatusConflict, models.ErrorCodeGenerationBusy},
	{backend.ErrGenerationTimeout, http.StatusGatewayTimeout, models.ErrorCodeGenerationTimeout},
	{services.ErrNotGenerated, http.StatusConflict, models.ErrorCodeNotGenerated},
	{services.ErrUnsupportedFileType, http.StatusBadRequest, models.ErrorCodeInvalidRequest},
	{download.ErrDuplicate, http.StatusConflict, models.ErrorCodeDownloadInProgress},
	{download.ErrPDFUnavailable, http.StatusNotFound, models.ErrorCodePDFUnavailable},
	{download.ErrPDFCorrupt, http.StatusUnprocessableEntity, models.ErrorCodePDFUnavailable},
	{download.ErrNotFound, http.StatusNotFound, models.ErrorCodeFileNotFound},
	{download.ErrNoURL, http.StatusNotFound, models.ErrorCodeFileNotFound},
	{services.ErrRendererDisabled, http.StatusServiceUnavailable, models.ErrorCodeRendererDisabled},
	{backend.ErrBackendUnavailable, http.StatusServiceUnavailable, models.ErrorCodeBackendUnavailable},
	{backend.ErrBackendFailure, http.StatusBadGateway, models.ErrorCodeBackendError},
	{context.DeadlineExceeded, http.StatusGatewayTimeout, models.ErrorCodeBackendError},
}

// classify maps a service error to an HTTP status and error code
func classify(err error) (int, string) {
	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			return m.status, m.code
		}
	}
	var statusErr *backend.HTTPStatusError
	if errors.As(err, &statusErr) {
		return http.StatusBadGateway, models.ErrorCodeBackendError
	}
	return http.StatusInternalServerError, models.ErrorCodeInternalError
}

// respondError writes err as a models.ErrorResponse. details is optional.
func respondError(c *gin.Context, logger *logrus.Logger, err error, details interface{}) {
	status, code := classify(err)

	message := err.Error()
	if status == http.StatusInternalServerError {
		message = "An unexpected error occurred"
	}

	entry := logger.WithFields(logrus.Fields{
		"request_id": c.GetString("request_id"),
		"code":       code,
		"error":      err.Error(),
	})
	if status >= 500 {
		entry.Error("Request failed")
	} else {
		entry.Debug("Request rejected")
	}

	_ = c.Error(err)
	c.JSON(status, models.ErrorResponse{
		Error:     http.StatusText(status),
		Message:   message,
		Code:      code,
		Details:   details,
		Timestamp: time.Now(),
		Path:      c.Request.URL.Path,
	})
}

// badRequest reports a malformed request body or parameter
func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, models.ErrorResponse{
		Error:     "Invalid request",
		Message:   message,
		Code:      models.ErrorCodeInvalidRequest,
		Timestamp: time.Now(),
		Path:      c.Request.URL.Path,
	})
}
