package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/nexconsult/docsync/internal/review"
)

var (
	ErrWizardNotFound       = errors.New("wizard not found")
	ErrSessionNotFound      = errors.New("session not found")
	ErrNotGenerated         = errors.New("documents have not been generated for this session")
	ErrCannotGenerate       = errors.New("session has blocking validation errors")
	ErrGenerationInProgress = errors.New("generation already in progress")
	ErrUnsupportedFileType  = errors.New("unsupported download type")
	ErrAssignmentIncomplete = errors.New("not every document slot has a file")
)

// MissingFieldsError lists the required fields that block generation
type MissingFieldsError struct {
	Fields []review.MissingField
}

func (e *MissingFieldsError) Error() string {
	labels := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		labels[i] = f.Label
	}
	return fmt.Sprintf("%s: %s", ErrCannotGenerate.Error(), strings.Join(labels, ", "))
}

func (e *MissingFieldsError) Is(target error) bool { return target == ErrCannotGenerate }
