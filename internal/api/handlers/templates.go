package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nexconsult/docsync/internal/models"
	"github.com/nexconsult/docsync/internal/templates"
	"github.com/sirupsen/logrus"
)

// TemplateHandler serves the document template catalog
type TemplateHandler struct {
	logger *logrus.Logger
}

// NewTemplateHandler creates a new template handler
func NewTemplateHandler(logger *logrus.Logger) *TemplateHandler {
	return &TemplateHandler{logger: logger}
}

// List returns every template
// @Summary List document templates
// @Description List the document templates with their upload slots and required fields
// @Tags Templates
// @Produce json
// @Success 200 {object} models.TemplateListResponse
// @Router /templates [get]
func (h *TemplateHandler) List(c *gin.Context) {
	all := templates.All()
	c.JSON(http.StatusOK, models.TemplateListResponse{
		Templates: all,
		Total:     len(all),
	})
}

// Get returns one template
// @Summary Get a document template
// @Tags Templates
// @Produce json
// @Param id path string true "Template id"
// @Success 200 {object} templates.Template
// @Failure 404 {object} models.ErrorResponse
// @Router /templates/{id} [get]
func (h *TemplateHandler) Get(c *gin.Context) {
	tpl, err := templates.MustLookup(c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err, nil)
		return
	}
	c.JSON(http.StatusOK, tpl)
}
