package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// MetricsHandler exposes the Prometheus registry
type MetricsHandler struct {
	handler http.Handler
	logger  *logrus.Logger
}

// NewMetricsHandler creates a new metrics handler around a promhttp handler
func NewMetricsHandler(handler http.Handler, logger *logrus.Logger) *MetricsHandler {
	return &MetricsHandler{
		handler: handler,
		logger:  logger,
	}
}

// GetMetrics handles metrics request
// @Summary Prometheus metrics
// @Description Request, backend, wizard, generation, validation, download and cache metrics in the Prometheus text format
// @Tags Metrics
// @Produce plain
// @Success 200 {string} string
// @Router /metrics [get]
func (h *MetricsHandler) GetMetrics(c *gin.Context) {
	h.logger.WithField("request_id", c.GetString("request_id")).Debug("Serving metrics")
	h.handler.ServeHTTP(c.Writer, c.Request)
}
