package models

import (
	"strings"

	"github.com/nexconsult/docsync/internal/validation"
)

// CreateWizardRequest inicia um assistente de upload
// @Description Modelo de documento escolhido pelo usuário
type CreateWizardRequest struct {
	// Identificador do modelo
	// @example "pagamento_terceiro"
	TemplateID string `json:"template_id" binding:"required" example:"pagamento_terceiro"`
}

// Normalize remove espaços do identificador
func (r *CreateWizardRequest) Normalize() {
	r.TemplateID = strings.TrimSpace(r.TemplateID)
}

// ValidateFieldRequest valida um único campo
type ValidateFieldRequest struct {
	// Caminho do campo (seção.campo)
	// @example "client.cpf"
	Field string `json:"field" binding:"required" example:"client.cpf"`
	// Valor informado
	// @example "529.982.247-25"
	Value string `json:"value" example:"529.982.247-25"`
}

// ValidateBatchRequest valida todos os campos extraídos
type ValidateBatchRequest struct {
	ExtractedData validation.FormData `json:"extracted_data" binding:"required"`
}

// FieldUpdateRequest altera um campo na revisão
type FieldUpdateRequest struct {
	// @example "usedVehicle.plate"
	Field string `json:"field" binding:"required" example:"usedVehicle.plate"`
	// @example "ABC1D23"
	Value string `json:"value" example:"ABC1D23"`
}

// Normalize remove espaços do caminho do campo
func (r *FieldUpdateRequest) Normalize() {
	r.Field = strings.TrimSpace(r.Field)
}
