package models

import (
	"time"

	"github.com/nexconsult/docsync/internal/templates"
	"github.com/nexconsult/docsync/internal/validation"
)

// Códigos de erro padronizados
const (
	ErrorCodeInvalidRequest     = "INVALID_REQUEST"
	ErrorCodeUnknownTemplate    = "UNKNOWN_TEMPLATE"
	ErrorCodeInvalidFileType    = "INVALID_FILE_TYPE"
	ErrorCodeFileTooLarge       = "FILE_TOO_LARGE"
	ErrorCodeTooManyFiles       = "TOO_MANY_FILES"
	ErrorCodeUnknownSlot        = "UNKNOWN_SLOT"
	ErrorCodeStepIncomplete     = "STEP_INCOMPLETE"
	ErrorCodeWizardIncomplete   = "WIZARD_INCOMPLETE"
	ErrorCodeWizardBusy         = "WIZARD_BUSY"
	ErrorCodeWizardClosed       = "WIZARD_CLOSED"
	ErrorCodeWizardNotFound     = "WIZARD_NOT_FOUND"
	ErrorCodeSessionNotFound    = "SESSION_NOT_FOUND"
	ErrorCodeCannotGenerate     = "CANNOT_GENERATE"
	ErrorCodeGenerationBusy     = "GENERATION_IN_PROGRESS"
	ErrorCodeGenerationTimeout  = "GENERATION_TIMEOUT"
	ErrorCodeNotGenerated       = "NOT_GENERATED"
	ErrorCodeDownloadInProgress = "DOWNLOAD_IN_PROGRESS"
	ErrorCodePDFUnavailable     = "PDF_UNAVAILABLE"
	ErrorCodeFileNotFound       = "FILE_NOT_FOUND"
	ErrorCodeRendererDisabled   = "RENDERER_DISABLED"
	ErrorCodeBackendUnavailable = "BACKEND_UNAVAILABLE"
	ErrorCodeBackendError       = "BACKEND_ERROR"
	ErrorCodeRateLimit          = "RATE_LIMIT_EXCEEDED"
	ErrorCodeInternalError      = "INTERNAL_ERROR"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error     string      `json:"error" example:"Invalid file type"`
	Message   string      `json:"message" example:"Only PDF, JPEG and PNG files are accepted"`
	Code      string      `json:"code,omitempty" example:"INVALID_FILE_TYPE"`
	Details   interface{} `json:"details,omitempty"`
	Timestamp time.Time   `json:"timestamp" example:"2024-01-15T10:30:00Z"`
	Path      string      `json:"path" example:"/api/v1/wizards/3f1c/files"`
}

// HealthResponse represents health check response
type HealthResponse struct {
	Status    string                 `json:"status" example:"healthy"`
	Timestamp time.Time              `json:"timestamp" example:"2024-01-15T10:30:00Z"`
	Version   string                 `json:"version" example:"1.0.0"`
	Services  map[string]ServiceInfo `json:"services"`
	Uptime    string                 `json:"uptime" example:"2h30m45s"`
}

// ServiceInfo represents individual service health
type ServiceInfo struct {
	Status    string                 `json:"status" example:"healthy"`
	LastCheck time.Time              `json:"last_check" example:"2024-01-15T10:30:00Z"`
	Error     string                 `json:"error,omitempty"`
	Details   map[string]interface{} `json:"details,omitempty"`
}

// ValidationResponse representa o resultado da validação de um campo
// @Description Resultado da validação de um único campo
type ValidationResponse struct {
	// Caminho do campo validado
	// @example "client.cpf"
	Field  string                           `json:"field" example:"client.cpf"`
	Result validation.FieldValidationResult `json:"result"`
}

// BatchValidationResponse representa a validação de um formulário completo
type BatchValidationResponse struct {
	Results validation.ResultMap      `json:"results"`
	Counts  map[validation.Status]int `json:"counts"`
	// Verdadeiro quando nenhum campo está inválido
	// @example true
	Valid bool `json:"valid" example:"true"`
}

// TemplateListResponse lista os modelos de documento disponíveis
type TemplateListResponse struct {
	Templates []templates.Template `json:"templates"`
	Total     int                  `json:"total" example:"4"`
}
