// Package backend is the HTTP client for the document extraction and
// generation API. Calls are never retried; a circuit breaker makes them fail
// fast while the backend is down.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"github.com/nexconsult/docsync/internal/config"
	"github.com/nexconsult/docsync/internal/validation"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker/v2"
)

const maxErrorBody = 2048

// Upload is one file sent to the process endpoint
type Upload struct {
	Name        string
	ContentType string
	Content     []byte
}

// FieldUpdate is the PATCH body for a single field edit
type FieldUpdate struct {
	Field    string `json:"field"`
	Value    string `json:"value"`
	OldValue string `json:"oldValue"`
}

// GenerateRequest selects the output of a generation call
type GenerateRequest struct {
	FormatType   string `json:"format_type"`
	TemplateType string `json:"template_type"`
}

// Observer receives the outcome of every backend call
type Observer func(operation, outcome string, elapsed time.Duration)

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithObserver registers a call observer
func WithObserver(o Observer) Option {
	return func(c *Client) { c.observe = o }
}

// Client talks to the backend API
type Client struct {
	baseURL         string
	http            *http.Client
	generateTimeout time.Duration
	breaker         *gobreaker.CircuitBreaker[[]byte]
	observe         Observer
	logger          *logrus.Logger
}

// NewClient creates a client from configuration
func NewClient(cfg config.BackendConfig, logger *logrus.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL:         strings.TrimRight(cfg.BaseURL, "/"),
		http:            &http.Client{Timeout: cfg.RequestTimeout},
		generateTimeout: cfg.GenerateTimeout,
		logger:          logger,
	}
	if c.generateTimeout <= 0 {
		c.generateTimeout = 30 * time.Second
	}
	for _, opt := range opts {
		opt(c)
	}

	if cfg.Breaker.Enabled {
		breakerCfg := cfg.Breaker
		c.breaker = gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
			Name:        "backend",
			MaxRequests: breakerCfg.HalfOpenMaxCall,
			Timeout:     breakerCfg.OpenTimeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				if counts.Requests < breakerCfg.MinRequests {
					return false
				}
				failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
				return failureRatio >= breakerCfg.FailureRatio
			},
			IsSuccessful: func(err error) bool {
				return !countsAsFailure(err)
			},
			OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
				logger.WithFields(logrus.Fields{
					"breaker": name,
					"from":    from.String(),
					"to":      to.String(),
				}).Warn("Circuit breaker state changed")
			},
		})
	}
	return c
}

// BaseURL returns the configured backend root
func (c *Client) BaseURL() string { return c.baseURL }

// ResolveURL turns a backend-relative download path into an absolute URL
func (c *Client) ResolveURL(raw string) string {
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err == nil && u.IsAbs() {
		return raw
	}
	return c.baseURL + "/" + strings.TrimLeft(raw, "/")
}

// Process uploads the collected files for extraction and returns the new session
func (c *Client) Process(ctx context.Context, templateID string, files []Upload) (*Envelope, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := mw.WriteField("template", templateID); err != nil {
		return nil, fmt.Errorf("failed to encode template: %w", err)
	}
	for _, f := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="files"; filename="%s"`, escapeQuotes(f.Name)))
		contentType := f.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		h.Set("Content-Type", contentType)
		part, err := mw.CreatePart(h)
		if err != nil {
			return nil, fmt.Errorf("failed to create part for %s: %w", f.Name, err)
		}
		if _, err := part.Write(f.Content); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", f.Name, err)
		}
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("failed to close multipart body: %w", err)
	}

	body, err := c.call(ctx, "process", http.MethodPost, c.baseURL+"/api/documents/process", buf.Bytes(), mw.FormDataContentType())
	if err != nil {
		return nil, err
	}
	env, err := DecodeEnvelope(body)
	if err != nil {
		return nil, err
	}
	if err := env.Failure("Processing failed"); err != nil {
		return nil, err
	}
	if env.SessionID == "" {
		return nil, fmt.Errorf("%w: response has no session_id", ErrBackendFailure)
	}
	return env, nil
}

// GetSession loads a processing session
func (c *Client) GetSession(ctx context.Context, sessionID string) (*Envelope, error) {
	body, err := c.call(ctx, "get_session", http.MethodGet, c.sessionURL(sessionID), nil, "")
	if err != nil {
		return nil, err
	}
	env, err := DecodeEnvelope(body)
	if err != nil {
		return nil, err
	}
	if err := env.Failure("Falha ao carregar sessão"); err != nil {
		return nil, err
	}
	return env, nil
}

// UpdateField persists one field edit. The returned results are the backend's
// revalidation, nil when the response carries none.
func (c *Client) UpdateField(ctx context.Context, sessionID string, update FieldUpdate) (validation.ResultMap, error) {
	payload, err := json.Marshal(update)
	if err != nil {
		return nil, fmt.Errorf("failed to encode field update: %w", err)
	}
	body, err := c.call(ctx, "update_field", http.MethodPatch, c.sessionURL(sessionID), payload, "application/json")
	if err != nil {
		return nil, err
	}
	env, err := DecodeEnvelope(body)
	if err != nil {
		return nil, err
	}
	if err := env.Failure("field update rejected"); err != nil {
		return nil, err
	}
	return env.ValidationResults, nil
}

// Generate renders the final documents. It is aborted after the configured
// generation timeout with ErrGenerationTimeout.
func (c *Client) Generate(ctx context.Context, sessionID string, req GenerateRequest) (*Envelope, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode generate request: %w", err)
	}

	genCtx, cancel := context.WithTimeout(ctx, c.generateTimeout)
	defer cancel()

	endpoint := c.baseURL + "/api/documents/generate/" + url.PathEscape(sessionID)
	body, err := c.call(genCtx, "generate", http.MethodPost, endpoint, payload, "application/json")
	if err != nil {
		if errors.Is(genCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
			return nil, ErrGenerationTimeout
		}
		return nil, err
	}

	env, err := DecodeEnvelope(body)
	if err != nil {
		return nil, err
	}
	if err := env.Failure("Falha na geração do documento - resposta inválida"); err != nil {
		return nil, err
	}
	if env.DownloadURL == "" {
		return nil, fmt.Errorf("%w: Falha na geração do documento - resposta inválida", ErrBackendFailure)
	}
	if len(env.FormatsAvailable) == 0 {
		env.FormatsAvailable = []string{"docx"}
	}
	return env, nil
}

// Preview asks the backend to render the template with data and returns the HTML
func (c *Client) Preview(ctx context.Context, templateType string, data validation.FormData) (string, error) {
	if data == nil {
		data = validation.FormData{}
	}
	payload, err := json.Marshal(map[string]any{"extracted_data": data})
	if err != nil {
		return "", fmt.Errorf("failed to encode preview request: %w", err)
	}
	endpoint := c.baseURL + "/api/documents/templates/" + url.PathEscape(templateType) + "/preview"
	body, err := c.call(ctx, "preview", http.MethodPost, endpoint, payload, "application/json")
	if err != nil {
		return "", err
	}
	env, err := DecodeEnvelope(body)
	if err != nil {
		return "", err
	}
	if err := env.Failure("Falha ao gerar preview do template"); err != nil {
		return "", err
	}
	if env.HTML == "" {
		return "", fmt.Errorf("%w: Falha ao gerar preview do template", ErrBackendFailure)
	}
	return env.HTML, nil
}

// Probe issues a HEAD request and fails on any non-2xx answer
func (c *Client) Probe(ctx context.Context, rawURL string) error {
	_, err := c.call(ctx, "probe", http.MethodHead, c.ResolveURL(rawURL), nil, "")
	return err
}

// Fetch downloads rawURL. A 404 matches ErrNotFound.
func (c *Client) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	return c.call(ctx, "fetch", http.MethodGet, c.ResolveURL(rawURL), nil, "")
}

// State reports the breaker state, "disabled" when there is none
func (c *Client) State() string {
	if c.breaker == nil {
		return "disabled"
	}
	return c.breaker.State().String()
}

func (c *Client) sessionURL(sessionID string) string {
	return c.baseURL + "/api/sessions/" + url.PathEscape(sessionID)
}

func (c *Client) call(ctx context.Context, operation, method, endpoint string, payload []byte, contentType string) ([]byte, error) {
	start := time.Now()
	body, err := c.execute(ctx, operation, method, endpoint, payload, contentType)
	if c.observe != nil {
		c.observe(operation, outcome(err), time.Since(start))
	}
	if err != nil {
		c.logger.WithFields(logrus.Fields{
			"operation": operation,
			"method":    method,
			"url":       endpoint,
			"duration":  time.Since(start),
			"error":     err.Error(),
		}).Warn("Backend call failed")
	}
	return body, err
}

func (c *Client) execute(ctx context.Context, operation, method, endpoint string, payload []byte, contentType string) ([]byte, error) {
	if c.breaker == nil {
		return c.do(ctx, operation, method, endpoint, payload, contentType)
	}
	body, err := c.breaker.Execute(func() ([]byte, error) {
		return c.do(ctx, operation, method, endpoint, payload, contentType)
	})
	if IsCircuitOpen(err) {
		return nil, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	return body, err
}

func (c *Client) do(ctx context.Context, operation, method, endpoint string, payload []byte, contentType string) ([]byte, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to build %s request: %w", operation, err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("backend %s request failed: %w", operation, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &HTTPStatusError{
			Operation:  operation,
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       string(snippet),
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s response: %w", operation, err)
	}
	return body, nil
}

func outcome(err error) string {
	var statusErr *HTTPStatusError
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrBackendUnavailable):
		return "circuit_open"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.As(err, &statusErr):
		return fmt.Sprintf("http_%d", statusErr.StatusCode)
	default:
		return "error"
	}
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}
