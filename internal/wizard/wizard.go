// Package wizard implements the step-by-step upload flow that collects one
// file per template slot and hands the completed set to a submitter.
package wizard

import (
	"context"
	"errors"
	"math"
	"sync"
	"time"

	"github.com/nexconsult/docsync/internal/templates"
)

var (
	ErrStepIncomplete = errors.New("current step has no file")
	ErrIncomplete     = errors.New("Por favor, complete todas as etapas antes de finalizar.")
	ErrBusy           = errors.New("submission in progress")
	ErrClosed         = errors.New("wizard is no longer active")
)

// Phase is the lifecycle position of a wizard
type Phase string

const (
	PhaseActive    Phase = "active"
	PhaseSubmitted Phase = "submitted"
	PhaseCancelled Phase = "cancelled"
)

// StepStatus is the indicator shown for each step
type StepStatus string

const (
	StepCompleted StepStatus = "completed"
	StepActive    StepStatus = "active"
	StepPending   StepStatus = "pending"
)

// Submission is what Finish hands to the submitter
type Submission struct {
	TemplateID    string
	FilesBySlotID map[string]UploadedFile
}

// SubmitFunc sends a completed file set to the backend
type SubmitFunc func(ctx context.Context, sub Submission) error

// StepIndicator describes one step for display
type StepIndicator struct {
	SlotID string     `json:"slot_id"`
	Title  string     `json:"title"`
	Status StepStatus `json:"status"`
}

// State is a point-in-time view of a wizard
type State struct {
	ID               string                  `json:"id"`
	TemplateID       string                  `json:"template_id"`
	Phase            Phase                   `json:"phase"`
	CurrentStepIndex int                     `json:"current_step_index"`
	CurrentSlot      templates.DocumentSlot  `json:"current_slot"`
	FilesBySlotID    map[string]UploadedFile `json:"files_by_slot_id"`
	IsSubmitting     bool                    `json:"is_submitting"`
	Progress         int                     `json:"progress"`
	Steps            []StepIndicator         `json:"steps"`
	AllStepsComplete bool                    `json:"all_steps_complete"`
	UpdatedAt        time.Time               `json:"updated_at"`
}

// Option configures a Wizard
type Option func(*Wizard)

// WithMaxFileSize overrides DefaultMaxFileSize
func WithMaxFileSize(n int64) Option {
	return func(w *Wizard) { w.maxFileSize = n }
}

// WithCancelHook registers a callback run once when the wizard is cancelled
func WithCancelHook(fn func()) Option {
	return func(w *Wizard) { w.onCancel = fn }
}

// Wizard walks the user through a template's slots. It is safe for
// concurrent use; the submitting flag rejects re-entry rather than queueing.
type Wizard struct {
	mu          sync.Mutex
	id          string
	template    templates.Template
	current     int
	files       map[string]UploadedFile
	submitting  bool
	phase       Phase
	maxFileSize int64
	onCancel    func()
	updatedAt   time.Time
}

// New creates a wizard positioned at the first slot
func New(id string, tpl templates.Template, opts ...Option) *Wizard {
	w := &Wizard{
		id:          id,
		template:    tpl,
		files:       make(map[string]UploadedFile),
		phase:       PhaseActive,
		maxFileSize: DefaultMaxFileSize,
		updatedAt:   time.Now(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// ID returns the wizard id
func (w *Wizard) ID() string { return w.id }

// Template returns the template being collected
func (w *Wizard) Template() templates.Template { return w.template }

// DropFile stores f under the current slot, replacing any previous file.
// Rejected files leave the state unchanged.
func (w *Wizard) DropFile(f UploadedFile) error {
	if err := AcceptFile(f, w.maxFileSize); err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.phase != PhaseActive {
		return ErrClosed
	}
	w.files[w.currentSlotID()] = f
	w.touch()
	return nil
}

// Fill stores a categorized batch (see Assignment) into its slots at once
func (w *Wizard) Fill(files map[string]UploadedFile) error {
	for slotID, f := range files {
		if _, ok := w.template.Slot(slotID); !ok {
			return ErrUnknownSlot
		}
		if err := AcceptFile(f, w.maxFileSize); err != nil {
			return err
		}
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.checkIdle(); err != nil {
		return err
	}
	for slotID, f := range files {
		w.files[slotID] = f
	}
	w.touch()
	return nil
}

// RemoveFile clears the current slot
func (w *Wizard) RemoveFile() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.phase != PhaseActive {
		return ErrClosed
	}
	delete(w.files, w.currentSlotID())
	w.touch()
	return nil
}

// Next advances one step. It requires a file in the current slot and is a
// no-op on the last step.
func (w *Wizard) Next() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.checkIdle(); err != nil {
		return err
	}
	if _, ok := w.files[w.currentSlotID()]; !ok {
		return ErrStepIncomplete
	}
	if w.current < len(w.template.Slots)-1 {
		w.current++
		w.touch()
	}
	return nil
}

// Previous goes back one step; on the first step it cancels the wizard
func (w *Wizard) Previous() error {
	w.mu.Lock()
	if err := w.checkIdle(); err != nil {
		w.mu.Unlock()
		return err
	}
	if w.current == 0 {
		hook := w.cancelLocked()
		w.mu.Unlock()
		if hook != nil {
			hook()
		}
		return nil
	}
	w.current--
	w.touch()
	w.mu.Unlock()
	return nil
}

// Cancel terminates the wizard and runs the cancel hook. A wizard whose
// files are being submitted cannot be cancelled.
func (w *Wizard) Cancel() error {
	w.mu.Lock()
	if err := w.checkIdle(); err != nil {
		w.mu.Unlock()
		return err
	}
	hook := w.cancelLocked()
	w.mu.Unlock()
	if hook != nil {
		hook()
	}
	return nil
}

// Finish submits every collected file exactly once. The submitting flag is
// cleared whatever the outcome and the submitter's error is returned as is.
func (w *Wizard) Finish(ctx context.Context, submit SubmitFunc) error {
	w.mu.Lock()
	if err := w.checkIdle(); err != nil {
		w.mu.Unlock()
		return err
	}
	if !w.allCompleteLocked() {
		w.mu.Unlock()
		return ErrIncomplete
	}
	files := make(map[string]UploadedFile, len(w.files))
	for k, v := range w.files {
		files[k] = v
	}
	w.submitting = true
	w.touch()
	w.mu.Unlock()

	err := submit(ctx, Submission{TemplateID: w.template.ID, FilesBySlotID: files})

	w.mu.Lock()
	w.submitting = false
	if err == nil {
		w.phase = PhaseSubmitted
	}
	w.touch()
	w.mu.Unlock()
	return err
}

// Snapshot returns the current state with derived progress and indicators
func (w *Wizard) Snapshot() State {
	w.mu.Lock()
	defer w.mu.Unlock()

	files := make(map[string]UploadedFile, len(w.files))
	for k, v := range w.files {
		files[k] = v
	}

	steps := make([]StepIndicator, len(w.template.Slots))
	for i, slot := range w.template.Slots {
		_, has := w.files[slot.ID]
		status := StepPending
		switch {
		case has || i < w.current:
			status = StepCompleted
		case i == w.current:
			status = StepActive
		}
		steps[i] = StepIndicator{SlotID: slot.ID, Title: slot.Title, Status: status}
	}

	return State{
		ID:               w.id,
		TemplateID:       w.template.ID,
		Phase:            w.phase,
		CurrentStepIndex: w.current,
		CurrentSlot:      w.template.Slots[w.current],
		FilesBySlotID:    files,
		IsSubmitting:     w.submitting,
		Progress:         w.progressLocked(),
		Steps:            steps,
		AllStepsComplete: w.allCompleteLocked(),
		UpdatedAt:        w.updatedAt,
	}
}

// Progress is the percentage of slots holding a file
func (w *Wizard) Progress() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.progressLocked()
}

func (w *Wizard) progressLocked() int {
	n := len(w.template.Slots)
	if n == 0 {
		return 0
	}
	filled := 0
	for _, slot := range w.template.Slots {
		if _, ok := w.files[slot.ID]; ok {
			filled++
		}
	}
	return int(math.Round(100 * float64(filled) / float64(n)))
}

func (w *Wizard) allCompleteLocked() bool {
	for _, slot := range w.template.Slots {
		if _, ok := w.files[slot.ID]; !ok {
			return false
		}
	}
	return true
}

func (w *Wizard) checkIdle() error {
	if w.phase != PhaseActive {
		return ErrClosed
	}
	if w.submitting {
		return ErrBusy
	}
	return nil
}

func (w *Wizard) cancelLocked() func() {
	w.phase = PhaseCancelled
	w.touch()
	hook := w.onCancel
	w.onCancel = nil
	return hook
}

func (w *Wizard) currentSlotID() string {
	return w.template.Slots[w.current].ID
}

func (w *Wizard) touch() {
	w.updatedAt = time.Now()
}
