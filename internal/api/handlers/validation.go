package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/nexconsult/docsync/internal/models"
	"github.com/nexconsult/docsync/internal/validation"
	"github.com/sirupsen/logrus"
)

// ValidationHandler exposes the field validation engine
type ValidationHandler struct {
	recorder func(status string)
	logger   *logrus.Logger
}

// NewValidationHandler creates a new validation handler. recorder may be nil.
func NewValidationHandler(recorder func(status string), logger *logrus.Logger) *ValidationHandler {
	if recorder == nil {
		recorder = func(string) {}
	}
	return &ValidationHandler{recorder: recorder, logger: logger}
}

// ValidateField validates a single value
// @Summary Validate one field
// @Description Validate a value against the rule for its field path
// @Tags Validation
// @Accept json
// @Produce json
// @Param request body models.ValidateFieldRequest true "Field and value"
// @Success 200 {object} models.ValidationResponse
// @Failure 400 {object} models.ErrorResponse
// @Router /validate [post]
func (h *ValidationHandler) ValidateField(c *gin.Context) {
	var req models.ValidateFieldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Request body must contain a field path")
		return
	}
	field := strings.TrimSpace(req.Field)

	result := validation.ValidateField(field, req.Value)
	h.recorder(string(result.Status))

	c.JSON(http.StatusOK, models.ValidationResponse{
		Field:  field,
		Result: result,
	})
}

// ValidateBatch validates a whole extracted form
// @Summary Validate extracted data
// @Description Validate every known field present in the extracted data
// @Tags Validation
// @Accept json
// @Produce json
// @Param request body models.ValidateBatchRequest true "Extracted data"
// @Success 200 {object} models.BatchValidationResponse
// @Failure 400 {object} models.ErrorResponse
// @Router /validate/batch [post]
func (h *ValidationHandler) ValidateBatch(c *gin.Context) {
	var req models.ValidateBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Request body must contain extracted_data")
		return
	}

	results := validation.ValidateAll(req.ExtractedData)
	counts := results.Counts()

	h.logger.WithFields(logrus.Fields{
		"request_id": c.GetString("request_id"),
		"fields":     len(results),
		"invalid":    counts[validation.StatusInvalid],
	}).Debug("Batch validated")

	c.JSON(http.StatusOK, models.BatchValidationResponse{
		Results: results,
		Counts:  counts,
		Valid:   counts[validation.StatusInvalid] == 0,
	})
}
