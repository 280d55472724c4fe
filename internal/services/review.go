package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/nexconsult/docsync/internal/backend"
	"github.com/nexconsult/docsync/internal/config"
	"github.com/nexconsult/docsync/internal/logger"
	"github.com/nexconsult/docsync/internal/review"
	"github.com/nexconsult/docsync/internal/validation"
	"github.com/sirupsen/logrus"
)

// FieldUpdateResult is returned for a single review edit
type FieldUpdateResult struct {
	Field  string                           `json:"field"`
	Result validation.FieldValidationResult `json:"result"`
	State  review.State                     `json:"state"`
}

// ReviewService keeps one review controller per backend session
type ReviewService struct {
	mu       sync.RWMutex
	sessions map[string]*review.Controller

	backend  BackendClient
	analyzer *PreviewAnalyzer
	renderer PreviewRenderer
	options  review.Options
	metrics  Recorder
	logger   *logrus.Logger
}

// NewReviewService creates a new review service
func NewReviewService(client BackendClient, analyzer *PreviewAnalyzer, renderer PreviewRenderer, cfg config.ReviewConfig, metrics Recorder, logger *logrus.Logger) *ReviewService {
	if metrics == nil {
		metrics = nopRecorder{}
	}
	return &ReviewService{
		sessions: make(map[string]*review.Controller),
		backend:  client,
		analyzer: analyzer,
		renderer: renderer,
		options:  review.Options{Delay: cfg.DebounceDelay, MaxWait: cfg.DebounceMaxWait},
		metrics:  metrics,
		logger:   logger,
	}
}

// Open starts reviewing the session described by env. A controller already
// open for the same session is replaced.
func (s *ReviewService) Open(env *backend.Envelope, templateID string) *review.Controller {
	return s.install(env, templateID, true)
}

// install builds a controller for env and registers it. When replace is
// false and another caller registered the session first, the existing
// controller is kept and returned.
func (s *ReviewService) install(env *backend.Envelope, templateID string, replace bool) *review.Controller {
	if env.TemplateType != "" {
		templateID = env.TemplateType
	}
	controller := review.NewController(env.SessionID, templateID, s.persist, s.options, s.logger)
	controller.Load(env.ExtractedData)

	s.mu.Lock()
	previous := s.sessions[env.SessionID]
	if previous != nil && !replace {
		s.mu.Unlock()
		controller.Close()
		return previous
	}
	s.sessions[env.SessionID] = controller
	s.mu.Unlock()

	if previous != nil {
		previous.Close()
	} else {
		s.metrics.SessionOpened()
	}

	logger.ForSession(s.logger, env.SessionID).WithFields(logrus.Fields{
		"template_type": templateID,
		"fields":        len(env.ExtractedData),
	}).Info("Review session opened")
	return controller
}

// Session returns the controller for id, loading it from the backend when it
// is not open yet. Concurrent first loads share one controller.
func (s *ReviewService) Session(ctx context.Context, id string) (*review.Controller, error) {
	s.mu.RLock()
	controller, ok := s.sessions[id]
	s.mu.RUnlock()
	if ok {
		return controller, nil
	}

	env, err := s.backend.GetSession(ctx, id)
	if err != nil {
		if errors.Is(err, backend.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to load session %s: %w", id, err)
	}
	if env.SessionID == "" {
		env.SessionID = id
	}
	return s.install(env, env.TemplateType, false), nil
}

// State returns the review state of a session
func (s *ReviewService) State(ctx context.Context, id string) (*review.State, error) {
	controller, err := s.Session(ctx, id)
	if err != nil {
		return nil, err
	}
	state := controller.Snapshot()
	return &state, nil
}

// UpdateField applies one edit. The local result is returned at once; the
// backend update follows after the debounce window.
func (s *ReviewService) UpdateField(ctx context.Context, id, field, value string) (*FieldUpdateResult, error) {
	controller, err := s.Session(ctx, id)
	if err != nil {
		return nil, err
	}

	result := controller.SetField(field, value)
	s.metrics.Validation(string(result.Status))

	return &FieldUpdateResult{
		Field:  field,
		Result: result,
		State:  controller.Snapshot(),
	}, nil
}

// Preview asks the backend to render the session's template with the current
// data and analyses the returned HTML
func (s *ReviewService) Preview(ctx context.Context, id string) (*PreviewAnalysis, error) {
	controller, err := s.Session(ctx, id)
	if err != nil {
		return nil, err
	}

	html, err := s.backend.Preview(ctx, controller.TemplateID(), controller.Data())
	if err != nil {
		return nil, err
	}
	return s.analyzer.Analyze(html)
}

// PreviewPDF renders the preview to PDF
func (s *ReviewService) PreviewPDF(ctx context.Context, id string) ([]byte, error) {
	analysis, err := s.Preview(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.renderer.RenderPDF(ctx, PrintableDocument(analysis.HTML))
}

// Close drops the controller of a session, discarding its pending edit
func (s *ReviewService) Close(id string) bool {
	s.mu.Lock()
	controller, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()

	if !ok {
		return false
	}
	controller.Close()
	s.metrics.SessionClosed()
	return true
}

// CloseAll flushes and closes every open controller
func (s *ReviewService) CloseAll() {
	s.mu.Lock()
	sessions := s.sessions
	s.sessions = make(map[string]*review.Controller)
	s.mu.Unlock()

	for _, controller := range sessions {
		controller.Flush()
		controller.Close()
		s.metrics.SessionClosed()
	}
}

// Count returns the number of open sessions
func (s *ReviewService) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func (s *ReviewService) persist(ctx context.Context, sessionID string, change review.FieldChange) (validation.ResultMap, error) {
	return s.backend.UpdateField(ctx, sessionID, backend.FieldUpdate(change))
}
