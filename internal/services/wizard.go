package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nexconsult/docsync/internal/backend"
	"github.com/nexconsult/docsync/internal/config"
	"github.com/nexconsult/docsync/internal/templates"
	"github.com/nexconsult/docsync/internal/wizard"
	"github.com/sirupsen/logrus"
)

const wizardKeyPrefix = "wizard:"

// WizardView is the wizard state returned to clients
type WizardView struct {
	wizard.State
	TemplateName string        `json:"template_name"`
	SessionID    string        `json:"session_id,omitempty"`
	LastError    string        `json:"last_error,omitempty"`
	View         View          `json:"view"`
	Stepper      []StepperStep `json:"stepper"`
}

// BatchResult reports a bulk drop
type BatchResult struct {
	Wizard   *WizardView       `json:"wizard"`
	Rejected map[string]string `json:"rejected,omitempty"`
	Missing  []string          `json:"missing,omitempty"`
	Message  string            `json:"message,omitempty"`
}

type wizardEntry struct {
	wizard    *wizard.Wizard
	sessionID string
	lastError string
}

// WizardService owns the upload wizards in progress
type WizardService struct {
	mu      sync.RWMutex
	wizards map[string]*wizardEntry

	backend BackendClient
	reviews *ReviewService
	cache   CacheServiceInterface
	metrics Recorder
	config  config.UploadConfig
	logger  *logrus.Logger
}

// NewWizardService creates a new wizard service
func NewWizardService(client BackendClient, reviews *ReviewService, cache CacheServiceInterface, cfg config.UploadConfig, metrics Recorder, logger *logrus.Logger) *WizardService {
	if metrics == nil {
		metrics = nopRecorder{}
	}
	return &WizardService{
		wizards: make(map[string]*wizardEntry),
		backend: client,
		reviews: reviews,
		cache:   cache,
		metrics: metrics,
		config:  cfg,
		logger:  logger,
	}
}

// Create starts a wizard for templateID
func (s *WizardService) Create(ctx context.Context, templateID string) (*WizardView, error) {
	tpl, err := templates.MustLookup(templateID)
	if err != nil {
		return nil, err
	}

	id := uuid.New().String()
	w := wizard.New(id, tpl,
		wizard.WithMaxFileSize(s.config.MaxFileSize),
		wizard.WithCancelHook(func() {
			s.metrics.WizardEvent(tpl.ID, "cancel")
			s.logger.WithField("wizard_id", id).Info("Wizard cancelled")
		}),
	)
	entry := &wizardEntry{wizard: w}

	s.mu.Lock()
	s.wizards[id] = entry
	s.mu.Unlock()

	s.metrics.WizardEvent(tpl.ID, "create")
	s.logger.WithFields(logrus.Fields{
		"wizard_id":   id,
		"template_id": tpl.ID,
		"slots":       len(tpl.Slots),
	}).Info("Wizard created")

	return s.save(ctx, entry), nil
}

// Get returns a wizard. Wizards no longer held in memory are served read-only
// from the cached snapshot.
func (s *WizardService) Get(ctx context.Context, id string) (*WizardView, error) {
	if entry, ok := s.entry(id); ok {
		return s.view(entry), nil
	}

	var view WizardView
	if err := s.cache.GetJSON(ctx, wizardKeyPrefix+id, &view); err != nil {
		return nil, ErrWizardNotFound
	}
	return &view, nil
}

// DropFile stores f in the wizard's current slot
func (s *WizardService) DropFile(ctx context.Context, id string, f wizard.UploadedFile) (*WizardView, error) {
	return s.mutate(ctx, id, "drop", func(w *wizard.Wizard) error {
		return w.DropFile(f)
	})
}

// RemoveFile clears the current slot
func (s *WizardService) RemoveFile(ctx context.Context, id string) (*WizardView, error) {
	return s.mutate(ctx, id, "remove", (*wizard.Wizard).RemoveFile)
}

// Next advances the wizard
func (s *WizardService) Next(ctx context.Context, id string) (*WizardView, error) {
	return s.mutate(ctx, id, "next", (*wizard.Wizard).Next)
}

// Previous steps back, cancelling on the first step
func (s *WizardService) Previous(ctx context.Context, id string) (*WizardView, error) {
	return s.mutate(ctx, id, "previous", (*wizard.Wizard).Previous)
}

// Cancel terminates the wizard
func (s *WizardService) Cancel(ctx context.Context, id string) (*WizardView, error) {
	return s.mutate(ctx, id, "", (*wizard.Wizard).Cancel)
}

// Batch drops several files at once. slots[i] names the slot for files[i];
// an empty name leaves the file unassigned. The wizard is filled only when
// every slot ends up with a file.
func (s *WizardService) Batch(ctx context.Context, id string, files []wizard.UploadedFile, slots []string) (*BatchResult, error) {
	entry, ok := s.entry(id)
	if !ok {
		return nil, ErrWizardNotFound
	}
	tpl := entry.wizard.Template()

	assignment := wizard.NewAssignment(tpl, s.config.MaxFileSize)
	result := &BatchResult{Rejected: map[string]string{}}
	for i, f := range files {
		rejected, err := assignment.AddFiles([]wizard.UploadedFile{f})
		if err != nil {
			return nil, err
		}
		if ferr, ok := rejected[f.Name]; ok {
			result.Rejected[f.Name] = ferr.Error()
			continue
		}
		if i < len(slots) && slots[i] != "" {
			if err := assignment.Assign(len(assignment.Files())-1, slots[i]); err != nil {
				return nil, err
			}
		}
	}

	if !assignment.Complete() {
		result.Missing = assignment.Missing()
		result.Message = assignment.MissingMessage()
		result.Wizard = s.view(entry)
		s.metrics.WizardEvent(tpl.ID, "batch_incomplete")
		return result, ErrAssignmentIncomplete
	}

	if err := entry.wizard.Fill(assignment.Result()); err != nil {
		return nil, err
	}
	s.metrics.WizardEvent(tpl.ID, "batch")
	result.Wizard = s.save(ctx, entry)
	return result, nil
}

// Finish submits the wizard files to the backend and opens the review session
func (s *WizardService) Finish(ctx context.Context, id string) (*WizardView, error) {
	entry, ok := s.entry(id)
	if !ok {
		return nil, ErrWizardNotFound
	}
	tpl := entry.wizard.Template()
	log := s.logger.WithFields(logrus.Fields{
		"wizard_id":   id,
		"template_id": tpl.ID,
	})

	var sessionID string
	start := time.Now()
	err := entry.wizard.Finish(ctx, func(ctx context.Context, sub wizard.Submission) error {
		uploads := make([]backend.Upload, 0, len(sub.FilesBySlotID))
		for _, slot := range tpl.Slots {
			f, ok := sub.FilesBySlotID[slot.ID]
			if !ok {
				continue
			}
			uploads = append(uploads, backend.Upload{
				Name:        f.Name,
				ContentType: f.MimeType,
				Content:     f.Content,
			})
		}

		env, err := s.backend.Process(ctx, sub.TemplateID, uploads)
		if err != nil {
			return err
		}
		s.reviews.Open(env, sub.TemplateID)
		sessionID = env.SessionID
		return nil
	})

	s.mu.Lock()
	if err != nil {
		entry.lastError = err.Error()
	} else {
		entry.sessionID = sessionID
		entry.lastError = ""
	}
	s.mu.Unlock()

	if err != nil {
		s.metrics.WizardEvent(tpl.ID, "finish_failed")
		log.WithError(err).Warn("Wizard submission failed")
		s.save(ctx, entry)
		return nil, err
	}

	s.metrics.WizardEvent(tpl.ID, "finish")
	log.WithFields(logrus.Fields{
		"session_id":  sessionID,
		"duration_ms": time.Since(start).Milliseconds(),
	}).Info("Wizard submitted")
	return s.save(ctx, entry), nil
}

// Count returns the number of wizards held in memory
func (s *WizardService) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.wizards)
}

// StartJanitor evicts wizards idle for longer than the configured TTL
func (s *WizardService) StartJanitor(ctx context.Context, every time.Duration) {
	if s.config.WizardTTL <= 0 || every <= 0 {
		return
	}
	ticker := time.NewTicker(every)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				if n := s.evict(now); n > 0 {
					s.logger.WithField("evicted", n).Debug("Idle wizards evicted")
				}
			}
		}
	}()
}

func (s *WizardService) evict(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	evicted := 0
	for id, entry := range s.wizards {
		state := entry.wizard.Snapshot()
		if state.IsSubmitting {
			continue
		}
		if now.Sub(state.UpdatedAt) > s.config.WizardTTL {
			delete(s.wizards, id)
			evicted++
		}
	}
	return evicted
}

func (s *WizardService) entry(id string) (*wizardEntry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.wizards[id]
	return entry, ok
}

func (s *WizardService) mutate(ctx context.Context, id, event string, fn func(*wizard.Wizard) error) (*WizardView, error) {
	entry, ok := s.entry(id)
	if !ok {
		return nil, ErrWizardNotFound
	}
	templateID := entry.wizard.Template().ID

	if err := fn(entry.wizard); err != nil {
		if event == "drop" {
			s.metrics.WizardEvent(templateID, "reject")
		}
		return nil, err
	}
	if event != "" {
		s.metrics.WizardEvent(templateID, event)
	}
	return s.save(ctx, entry), nil
}

func (s *WizardService) view(entry *wizardEntry) *WizardView {
	state := entry.wizard.Snapshot()

	s.mu.RLock()
	sessionID, lastError := entry.sessionID, entry.lastError
	s.mu.RUnlock()

	view := ViewUpload
	switch {
	case state.IsSubmitting:
		view = ViewProcessing
	case state.Phase == wizard.PhaseSubmitted:
		view = ViewReview
	case state.Phase == wizard.PhaseCancelled:
		view = ViewTemplates
	}

	return &WizardView{
		State:        state,
		TemplateName: entry.wizard.Template().DisplayName,
		SessionID:    sessionID,
		LastError:    lastError,
		View:         view,
		Stepper:      StepperFor(view),
	}
}

// save snapshots the wizard into the cache and returns the view
func (s *WizardService) save(ctx context.Context, entry *wizardEntry) *WizardView {
	view := s.view(entry)
	if err := s.cache.SetJSON(ctx, wizardKeyPrefix+view.ID, view, s.config.WizardTTL); err != nil {
		s.logger.WithFields(logrus.Fields{
			"wizard_id": view.ID,
			"error":     err.Error(),
		}).Warn("Failed to cache wizard snapshot")
	}
	return view
}
