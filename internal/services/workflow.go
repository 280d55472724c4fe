package services

import "github.com/nexconsult/docsync/internal/wizard"

// View is a top-level screen of the document workflow
type View string

const (
	ViewTemplates  View = "templates"
	ViewUpload     View = "upload"
	ViewProcessing View = "processing"
	ViewReview     View = "review"
	ViewDownload   View = "download"
)

// StepperStep is one entry of the workflow progress indicator
type StepperStep struct {
	ID          View              `json:"id"`
	Label       string            `json:"label"`
	Description string            `json:"description"`
	Status      wizard.StepStatus `json:"status"`
}

var workflowSteps = []StepperStep{
	{ID: ViewUpload, Label: "Upload", Description: "Selecione e envie"},
	{ID: ViewProcessing, Label: "Processamento", Description: "Extraindo dados"},
	{ID: ViewReview, Label: "Revisão", Description: "Validar informações"},
	{ID: ViewDownload, Label: "Download", Description: "Documentos prontos"},
}

// StepperFor returns the four workflow steps with their status for view.
// The template picker shares the upload step.
func StepperFor(view View) []StepperStep {
	current := 0
	for i, s := range workflowSteps {
		if s.ID == view {
			current = i
		}
	}

	steps := make([]StepperStep, len(workflowSteps))
	for i, s := range workflowSteps {
		switch {
		case i < current:
			s.Status = wizard.StepCompleted
		case i == current:
			s.Status = wizard.StepActive
		default:
			s.Status = wizard.StepPending
		}
		steps[i] = s
	}
	return steps
}
