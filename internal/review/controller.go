// Package review holds the editable form state of a processing session:
// extracted data, per-field validation, debounced persistence of edits and
// the gate that decides whether a document may be generated.
package review

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/nexconsult/docsync/internal/templates"
	"github.com/nexconsult/docsync/internal/validation"
	"github.com/sirupsen/logrus"
)

// FieldChange is the body of a field update sent to the backend
type FieldChange struct {
	Field    string `json:"field"`
	Value    string `json:"value"`
	OldValue string `json:"oldValue"`
}

// PersistFunc sends one field change. A non-nil result replaces the local
// validation map.
type PersistFunc func(ctx context.Context, sessionID string, change FieldChange) (validation.ResultMap, error)

// Options tunes the debounce window
type Options struct {
	Delay   time.Duration
	MaxWait time.Duration
}

// DefaultOptions waits for 1s of idle time and at most 3s per burst
var DefaultOptions = Options{Delay: time.Second, MaxWait: 3 * time.Second}

// State is a serializable view of a controller
type State struct {
	SessionID         string                    `json:"session_id"`
	TemplateID        string                    `json:"template_type"`
	ExtractedData     validation.FormData       `json:"extracted_data"`
	ValidationResults validation.ResultMap      `json:"validation_results"`
	CanGenerate       bool                      `json:"can_generate"`
	MissingFields     []MissingField            `json:"missing_fields,omitempty"`
	PendingChanges    int                       `json:"pending_changes"`
	LastSavedAt       *time.Time                `json:"last_saved_at,omitempty"`
	Counts            map[validation.Status]int `json:"counts"`
}

// MissingField names a required field that blocks generation
type MissingField struct {
	Field  string `json:"field"`
	Label  string `json:"label"`
	Reason string `json:"reason"`
}

// Controller owns one session's form. Edits are validated synchronously and
// persisted through a single shared debounce window; edits to different
// fields inside one window are coalesced and each is sent once on flush.
type Controller struct {
	mu         sync.Mutex
	sessionID  string
	templateID string
	required   []string
	data       validation.FormData
	results    validation.ResultMap
	pending    map[string]FieldChange
	order      []string
	lastSaved  time.Time

	debouncer Debouncer
	opts      Options
	handle    *Handle
	persist   PersistFunc
	ctx       context.Context
	cancel    context.CancelFunc
	logger    *logrus.Entry
}

// NewController creates a controller for sessionID. Unknown template ids only
// require the client fields.
func NewController(sessionID, templateID string, persist PersistFunc, opts Options, logger *logrus.Logger) *Controller {
	if opts.Delay <= 0 {
		opts = DefaultOptions
	}
	required := []string{"client.name", "client.cpf", "client.rg", "client.address"}
	if tpl, ok := templates.Lookup(templateID); ok {
		required = tpl.RequiredFields
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Controller{
		sessionID:  sessionID,
		templateID: templateID,
		required:   required,
		data:       validation.FormData{},
		results:    validation.ResultMap{},
		pending:    make(map[string]FieldChange),
		opts:       opts,
		persist:    persist,
		ctx:        ctx,
		cancel:     cancel,
		logger: logger.WithFields(logrus.Fields{
			"session_id":    sessionID,
			"template_type": templateID,
		}),
	}
}

// SessionID returns the backend session id
func (c *Controller) SessionID() string { return c.sessionID }

// TemplateID returns the template type of the session
func (c *Controller) TemplateID() string { return c.templateID }

// Load replaces the form data and recomputes every validation result
func (c *Controller) Load(data validation.FormData) {
	if data == nil {
		data = validation.FormData{}
	}
	results := validation.ValidateAll(data)

	c.mu.Lock()
	c.data = data
	c.results = results
	c.mu.Unlock()
}

// SetField updates one value, revalidates it and schedules persistence.
// The returned result is the synchronous local validation.
func (c *Controller) SetField(path, value string) validation.FieldValidationResult {
	result := validation.ValidateField(path, value)

	c.mu.Lock()
	old := c.data.Get(path)
	c.data = c.data.With(path, value)
	c.results = c.results.Merge(validation.ResultMap{path: result})

	if prev, ok := c.pending[path]; ok {
		old = prev.OldValue
	} else {
		c.order = append(c.order, path)
	}
	c.pending[path] = FieldChange{Field: path, Value: value, OldValue: old}
	c.handle = c.debouncer.Schedule(c.flush, c.opts.Delay, c.opts.MaxWait)
	c.mu.Unlock()

	return result
}

// Flush sends pending changes immediately
func (c *Controller) Flush() {
	c.debouncer.Flush()
}

// flush persists every coalesced change in edit order. Failures are logged
// and dropped; nothing is retried.
func (c *Controller) flush() {
	c.mu.Lock()
	changes := make([]FieldChange, 0, len(c.order))
	for _, path := range c.order {
		changes = append(changes, c.pending[path])
	}
	c.pending = make(map[string]FieldChange)
	c.order = nil
	c.handle = nil
	c.mu.Unlock()

	for _, change := range changes {
		if c.ctx.Err() != nil {
			return
		}
		results, err := c.persist(c.ctx, c.sessionID, change)
		if err != nil {
			c.logger.WithFields(logrus.Fields{
				"field": change.Field,
				"error": err.Error(),
			}).Warn("Failed to persist field change")
			continue
		}

		c.mu.Lock()
		c.lastSaved = time.Now()
		c.results = c.results.Merge(results)
		c.mu.Unlock()

		c.logger.WithField("field", change.Field).Debug("Field change persisted")
	}
}

// Results returns the current validation map
func (c *Controller) Results() validation.ResultMap {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.results.Merge(nil)
}

// Data returns the current form data
func (c *Controller) Data() validation.FormData {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.data
}

// CanGenerate is true when every required field is non-blank and not invalid.
// Warnings do not block.
func (c *Controller) CanGenerate() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.missingLocked()) == 0
}

func (c *Controller) missingLocked() []MissingField {
	var missing []MissingField
	for _, path := range c.required {
		value := c.data.Get(path)
		switch {
		case strings.TrimSpace(value) == "":
			missing = append(missing, MissingField{Field: path, Label: templates.FieldLabel(path), Reason: "empty"})
		case c.results[path].Blocking():
			missing = append(missing, MissingField{Field: path, Label: templates.FieldLabel(path), Reason: c.results[path].Message})
		}
	}
	return missing
}

// Snapshot returns a copy of the controller state
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	missing := c.missingLocked()
	state := State{
		SessionID:         c.sessionID,
		TemplateID:        c.templateID,
		ExtractedData:     c.data,
		ValidationResults: c.results.Merge(nil),
		CanGenerate:       len(missing) == 0,
		MissingFields:     missing,
		PendingChanges:    len(c.pending),
		Counts:            c.results.Counts(),
	}
	if !c.lastSaved.IsZero() {
		saved := c.lastSaved
		state.LastSavedAt = &saved
	}
	return state
}

// Close cancels the pending debounced update and any in-flight persistence
func (c *Controller) Close() {
	c.mu.Lock()
	if c.handle != nil {
		c.handle.Cancel()
		c.handle = nil
	}
	c.pending = make(map[string]FieldChange)
	c.order = nil
	c.mu.Unlock()
	c.cancel()
}
