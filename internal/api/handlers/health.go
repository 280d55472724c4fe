package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nexconsult/docsync/internal/models"
	"github.com/sirupsen/logrus"
)

// Version is reported by the health endpoints
const Version = "1.0.0"

// HealthChecker reports per-dependency health. services.Container implements it.
type HealthChecker interface {
	Health() map[string]interface{}
}

// HealthHandler handles health check requests
type HealthHandler struct {
	services  HealthChecker
	logger    *logrus.Logger
	startTime time.Time
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(services HealthChecker, logger *logrus.Logger) *HealthHandler {
	return &HealthHandler{
		services:  services,
		logger:    logger,
		startTime: time.Now(),
	}
}

// GetHealth handles general health check
// @Summary Health check
// @Description Get the health status of the gateway and its dependencies
// @Tags Health
// @Produce json
// @Success 200 {object} models.HealthResponse
// @Failure 503 {object} models.HealthResponse
// @Router /health [get]
func (h *HealthHandler) GetHealth(c *gin.Context) {
	servicesHealth := h.services.Health()
	now := time.Now()

	status := "healthy"
	response := models.HealthResponse{
		Timestamp: now,
		Version:   Version,
		Services:  make(map[string]models.ServiceInfo, len(servicesHealth)),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
	}

	for name, raw := range servicesHealth {
		healthMap, ok := raw.(map[string]interface{})
		if !ok {
			continue
		}
		info := models.ServiceInfo{LastCheck: now, Details: map[string]interface{}{}}
		for key, value := range healthMap {
			switch key {
			case "status":
				info.Status, _ = value.(string)
			case "error":
				info.Error, _ = value.(string)
			default:
				info.Details[key] = value
			}
		}
		if len(info.Details) == 0 {
			info.Details = nil
		}

		switch info.Status {
		case "unhealthy":
			status = "unhealthy"
		case "degraded":
			if status == "healthy" {
				status = "degraded"
			}
		}
		response.Services[name] = info
	}
	response.Status = status

	httpStatus := http.StatusOK
	if status == "unhealthy" {
		httpStatus = http.StatusServiceUnavailable
	}
	c.JSON(httpStatus, response)
}

// readinessChecks lists the dependencies whose failure makes the gateway unready
var readinessChecks = map[string]string{
	"backend":  "extraction backend circuit is open",
	"redis":    "redis is unreachable",
	"renderer": "preview renderer is unhealthy",
}

// GetReadiness handles readiness probe
// @Summary Readiness check
// @Description Check if the gateway is ready to serve requests
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /health/ready [get]
func (h *HealthHandler) GetReadiness(c *gin.Context) {
	servicesHealth := h.services.Health()

	issues := make([]string, 0)
	for name, issue := range readinessChecks {
		healthMap, ok := servicesHealth[name].(map[string]interface{})
		if !ok {
			continue
		}
		if healthMap["status"] == "unhealthy" {
			issues = append(issues, issue)
		}
	}

	response := map[string]interface{}{
		"ready":     len(issues) == 0,
		"timestamp": time.Now(),
		"services":  servicesHealth,
	}

	httpStatus := http.StatusOK
	if len(issues) > 0 {
		response["issues"] = issues
		httpStatus = http.StatusServiceUnavailable
		h.logger.WithField("issues", issues).Warn("Readiness check failed")
	}
	c.JSON(httpStatus, response)
}

// GetLiveness handles liveness probe
// @Summary Liveness check
// @Description Check if the gateway is alive and responding
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /health/live [get]
func (h *HealthHandler) GetLiveness(c *gin.Context) {
	c.JSON(http.StatusOK, map[string]interface{}{
		"alive":     true,
		"timestamp": time.Now(),
		"uptime":    time.Since(h.startTime).Round(time.Second).String(),
		"version":   Version,
	})
}
