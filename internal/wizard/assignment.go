package wizard

import (
	"errors"
	"strings"

	"github.com/nexconsult/docsync/internal/templates"
)

var (
	ErrTooManyFiles = errors.New("maximum number of files reached")
	ErrUnknownSlot  = errors.New("unknown slot")
	ErrFileIndex    = errors.New("file index out of range")
)

// Assignment maps a batch of dropped files onto a template's slots.
// Each slot holds at most one file index and each file index sits in at
// most one slot.
type Assignment struct {
	template templates.Template
	files    []UploadedFile
	slots    map[string]int
	maxSize  int64
}

// NewAssignment starts an empty assignment for tpl
func NewAssignment(tpl templates.Template, maxFileSize int64) *Assignment {
	if maxFileSize <= 0 {
		maxFileSize = DefaultMaxFileSize
	}
	return &Assignment{
		template: tpl,
		slots:    make(map[string]int),
		maxSize:  maxFileSize,
	}
}

// CanAddMoreFiles reports whether another file fits under the template limit
// while some slot is still free.
func (a *Assignment) CanAddMoreFiles() bool {
	return len(a.files) < a.template.MaxFiles && len(a.slots) < len(a.template.Slots)
}

// AddFiles appends accepted files, stopping at the template's file limit.
// Files failing the upload filter are skipped and reported in rejected.
// With a single-slot template the first file is assigned automatically.
func (a *Assignment) AddFiles(files []UploadedFile) (rejected map[string]error, err error) {
	rejected = map[string]error{}
	for _, f := range files {
		if len(a.files) >= a.template.MaxFiles {
			return rejected, ErrTooManyFiles
		}
		if ferr := AcceptFile(f, a.maxSize); ferr != nil {
			rejected[f.Name] = ferr
			continue
		}
		a.files = append(a.files, f)
		if len(a.template.Slots) == 1 && len(a.slots) == 0 {
			a.slots[a.template.Slots[0].ID] = len(a.files) - 1
		}
	}
	return rejected, nil
}

// Assign moves file fileIndex into slotID, first clearing any slot that
// already held it. An empty slotID only unassigns the file.
func (a *Assignment) Assign(fileIndex int, slotID string) error {
	if fileIndex < 0 || fileIndex >= len(a.files) {
		return ErrFileIndex
	}
	if slotID != "" {
		if _, ok := a.template.Slot(slotID); !ok {
			return ErrUnknownSlot
		}
	}

	for slot, idx := range a.slots {
		if idx == fileIndex {
			delete(a.slots, slot)
		}
	}
	if slotID != "" {
		a.slots[slotID] = fileIndex
	}
	return nil
}

// Complete is true when every slot has a file
func (a *Assignment) Complete() bool {
	return len(a.slots) == len(a.template.Slots)
}

// Missing lists the labels of slots without a file
func (a *Assignment) Missing() []string {
	var out []string
	for _, s := range a.template.Slots {
		if _, ok := a.slots[s.ID]; !ok {
			out = append(out, s.Label)
		}
	}
	return out
}

// MissingMessage is the user-facing summary of unfilled slots
func (a *Assignment) MissingMessage() string {
	m := a.Missing()
	if len(m) == 0 {
		return ""
	}
	return "Faltam os seguintes arquivos: " + strings.Join(m, ", ")
}

// SlotOf returns the slot a file index is assigned to
func (a *Assignment) SlotOf(fileIndex int) (string, bool) {
	for slot, idx := range a.slots {
		if idx == fileIndex {
			return slot, true
		}
	}
	return "", false
}

// Result returns the slot to file mapping
func (a *Assignment) Result() map[string]UploadedFile {
	out := make(map[string]UploadedFile, len(a.slots))
	for slot, idx := range a.slots {
		out[slot] = a.files[idx]
	}
	return out
}

// Files returns the files added so far
func (a *Assignment) Files() []UploadedFile {
	return append([]UploadedFile(nil), a.files...)
}
