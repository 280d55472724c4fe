package services

import (
	"context"
	"time"

	"github.com/nexconsult/docsync/internal/backend"
	"github.com/nexconsult/docsync/internal/validation"
)

// BackendClient defines the extraction backend operations the services use
type BackendClient interface {
	// Process uploads the wizard files and opens a session
	Process(ctx context.Context, templateID string, files []backend.Upload) (*backend.Envelope, error)

	// GetSession loads extracted data for a session
	GetSession(ctx context.Context, sessionID string) (*backend.Envelope, error)

	// UpdateField persists one field edit
	UpdateField(ctx context.Context, sessionID string, update backend.FieldUpdate) (validation.ResultMap, error)

	// Generate renders the final documents
	Generate(ctx context.Context, sessionID string, req backend.GenerateRequest) (*backend.Envelope, error)

	// Preview renders the template with data as HTML
	Preview(ctx context.Context, templateType string, data validation.FormData) (string, error)

	// Probe checks that a URL answers 2xx to HEAD
	Probe(ctx context.Context, rawURL string) error

	// Fetch downloads a URL
	Fetch(ctx context.Context, rawURL string) ([]byte, error)

	// State reports the circuit breaker state
	State() string
}

// CacheServiceInterface defines the interface for cache service
type CacheServiceInterface interface {
	// Get retrieves a value from cache
	Get(ctx context.Context, key string) (string, error)

	// Set stores a value in cache with TTL
	Set(ctx context.Context, key string, value string) error

	// GetJSON decodes a cached JSON value
	GetJSON(ctx context.Context, key string, dst any) error

	// SetJSON stores v as JSON; a zero ttl uses the default
	SetJSON(ctx context.Context, key string, v any, ttl time.Duration) error

	// Delete removes a value from cache
	Delete(ctx context.Context, key string) error

	// Clear clears all cache entries
	Clear(ctx context.Context) error

	// Exists checks if a key exists in cache
	Exists(ctx context.Context, key string) (bool, error)

	// GetStats returns cache statistics
	GetStats(ctx context.Context) (map[string]interface{}, error)

	// Health returns cache service health status
	Health() map[string]interface{}
}

// PreviewRenderer turns preview HTML into a PDF
type PreviewRenderer interface {
	RenderPDF(ctx context.Context, html string) ([]byte, error)
	Health() map[string]interface{}
	Close() error
}

// Recorder receives workflow metrics
type Recorder interface {
	WizardEvent(template, event string)
	Generation(template string, elapsed time.Duration, err error)
	Validation(status string)
	Download(fileType, outcome string)
	SessionOpened()
	SessionClosed()
}

type nopRecorder struct{}

func (nopRecorder) WizardEvent(string, string) {}
func (nopRecorder) Generation(string, time.Duration, error) {}
func (nopRecorder) Validation(string) {}
func (nopRecorder) Download(string, string) {}
func (nopRecorder) SessionOpened() {}
func (nopRecorder) SessionClosed() {}
