// Package metrics exposes Prometheus collectors for the gateway
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "docsync"

// Metrics owns a private registry and every collector registered on it
type Metrics struct {
	registry *prometheus.Registry

	httpRequests    *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
	backendCalls    *prometheus.CounterVec
	backendDuration *prometheus.HistogramVec
	wizardEvents    *prometheus.CounterVec
	generations     *prometheus.CounterVec
	generationTime  prometheus.Histogram
	validations     *prometheus.CounterVec
	downloads       *prometheus.CounterVec
	activeSessions  prometheus.Gauge
	cacheLookups    *prometheus.CounterVec
}

// New creates and registers all collectors
func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total HTTP requests by method, route and status.",
			},
			[]string{"method", "route", "status"},
		),
		httpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "HTTP request duration in seconds.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		backendCalls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "backend",
				Name:      "calls_total",
				Help:      "Backend API calls by operation and outcome.",
			},
			[]string{"operation", "outcome"},
		),
		backendDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "backend",
				Name:      "call_duration_seconds",
				Help:      "Backend API call duration in seconds.",
				Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60},
			},
			[]string{"operation"},
		),
		wizardEvents: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "wizard",
				Name:      "events_total",
				Help:      "Upload wizard transitions by template and event.",
			},
			[]string{"template", "event"},
		),
		generations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "documents",
				Name:      "generations_total",
				Help:      "Document generations by template and status.",
			},
			[]string{"template", "status"},
		),
		generationTime: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "documents",
				Name:      "generation_duration_seconds",
				Help:      "Document generation duration in seconds.",
				Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 30},
			},
		),
		validations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "review",
				Name:      "field_validations_total",
				Help:      "Field validation results by status.",
			},
			[]string{"status"},
		),
		downloads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "documents",
				Name:      "downloads_total",
				Help:      "Saved downloads by file type and outcome.",
			},
			[]string{"file_type", "outcome"},
		),
		activeSessions: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "review",
				Name:      "active_sessions",
				Help:      "Review sessions currently held in memory.",
			},
		),
		cacheLookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "cache",
				Name:      "lookups_total",
				Help:      "Cache lookups by result.",
			},
			[]string{"result"},
		),
	}

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequests, m.httpDuration,
		m.backendCalls, m.backendDuration,
		m.wizardEvents, m.generations, m.generationTime,
		m.validations, m.downloads, m.activeSessions, m.cacheLookups,
	)
	return m
}

// Registry returns the underlying registry
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Middleware records request count and latency per matched route
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.httpRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.httpDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

// ObserveBackend matches backend.Observer
func (m *Metrics) ObserveBackend(operation, outcome string, elapsed time.Duration) {
	m.backendCalls.WithLabelValues(operation, outcome).Inc()
	m.backendDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
}

// WizardEvent counts a wizard transition
func (m *Metrics) WizardEvent(template, event string) {
	m.wizardEvents.WithLabelValues(template, event).Inc()
}

// Generation records a generation attempt
func (m *Metrics) Generation(template string, elapsed time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.generations.WithLabelValues(template, status).Inc()
	m.generationTime.Observe(elapsed.Seconds())
}

// Validation counts one field validation outcome
func (m *Metrics) Validation(status string) {
	m.validations.WithLabelValues(status).Inc()
}

// Download counts a download attempt
func (m *Metrics) Download(fileType, outcome string) {
	m.downloads.WithLabelValues(fileType, outcome).Inc()
}

// SessionOpened increments the active review session gauge
func (m *Metrics) SessionOpened() { m.activeSessions.Inc() }

// SessionClosed decrements the active review session gauge
func (m *Metrics) SessionClosed() { m.activeSessions.Dec() }

// CacheLookup counts a cache hit or miss
func (m *Metrics) CacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.WithLabelValues(result).Inc()
}
