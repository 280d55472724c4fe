// Package templates holds the static catalog of document templates, the
// upload slots each one requires and the review fields that gate generation.
package templates

import (
	"errors"
	"strings"
	"unicode/utf8"
)

// ErrUnknownTemplate is returned for template ids outside the catalog
var ErrUnknownTemplate = errors.New("unknown template")

// Template ids
const (
	ResponsabilidadeVeiculo     = "responsabilidade_veiculo"
	PagamentoTerceiro           = "pagamento_terceiro"
	DeclaracaoPagamentoTerceiro = "declaracao_pagamento_terceiro"
	CessaoCredito               = "cessao_credito"
)

// Slot ids
const (
	SlotProposta             = "proposta_pdf"
	SlotCNHTerceiro          = "cnh_terceiro"
	SlotComprovantePagamento = "comprovante_pagamento"
	SlotComprovanteEndereco  = "comprovante_endereco"
)

// DocumentSlot is a named upload position requiring exactly one file
type DocumentSlot struct {
	ID              string `json:"id" example:"proposta_pdf"`
	Title           string `json:"title" example:"Selecione a Proposta"`
	Instruction     string `json:"instruction"`
	Description     string `json:"description"`
	Label           string `json:"label" example:"Proposta PDF (Documento da Proposta)"`
	AcceptsMultiple bool   `json:"accepts_multiple"`
}

// Template describes one generatable document
type Template struct {
	ID                string         `json:"id" example:"cessao_credito"`
	Name              string         `json:"name" example:"Cessão de Crédito"`
	DisplayName       string         `json:"display_name"`
	Description       string         `json:"description"`
	RequiredDocuments []string       `json:"required_documents"`
	Slots             []DocumentSlot `json:"slots"`
	MaxFiles          int            `json:"max_files"`
	RequiredFields    []string       `json:"required_fields"`
}

// SlotIDs returns the slot ids in step order
func (t Template) SlotIDs() []string {
	ids := make([]string, len(t.Slots))
	for i, s := range t.Slots {
		ids[i] = s.ID
	}
	return ids
}

// Slot finds a slot by id
func (t Template) Slot(id string) (DocumentSlot, bool) {
	for _, s := range t.Slots {
		if s.ID == id {
			return s, true
		}
	}
	return DocumentSlot{}, false
}

var (
	slotProposta = DocumentSlot{
		ID:          SlotProposta,
		Title:       "Selecione a Proposta",
		Instruction: "Faça upload ou selecione o arquivo da proposta de venda.",
		Description: "Documento com informações da proposta comercial",
		Label:       "Proposta PDF (Documento da Proposta)",
	}
	slotCNH = DocumentSlot{
		ID:          SlotCNHTerceiro,
		Title:       "Selecione a CNH",
		Instruction: "Faça upload ou selecione o arquivo da CNH do terceiro responsável.",
		Description: "Carteira Nacional de Habilitação do terceiro",
		Label:       "CNH do Terceiro (Carteira Nacional de Habilitação)",
	}
	slotPagamento = DocumentSlot{
		ID:          SlotComprovantePagamento,
		Title:       "Selecione o Comprovante de Pagamento",
		Instruction: "Faça upload ou selecione o arquivo de comprovante de pagamento.",
		Description: "Documento que comprove o pagamento realizado",
		Label:       "Comprovante de Pagamento",
	}
	slotEndereco = DocumentSlot{
		ID:          SlotComprovanteEndereco,
		Title:       "Selecione o Comprovante de Endereço do Terceiro",
		Instruction: "Faça upload ou selecione o arquivo de comprovante de endereço do terceiro.",
		Description: "Documento que comprove o endereço residencial do terceiro",
		Label:       "Comprovante de endereço do terceiro",
	}
)

var (
	clientFields      = []string{"client.name", "client.cpf", "client.rg", "client.address"}
	usedVehicleFields = []string{
		"usedVehicle.brand", "usedVehicle.model", "usedVehicle.color",
		"usedVehicle.year", "usedVehicle.plate", "usedVehicle.chassi", "usedVehicle.value",
	}
	newVehicleFields = []string{
		"newVehicle.brand", "newVehicle.model", "newVehicle.yearModel", "newVehicle.color", "newVehicle.chassi",
	}
	paymentFields = []string{
		"payment.amount", "payment.method", "payment.bank_name", "payment.agency", "payment.account",
	}
)

func join(groups ...[]string) []string {
	var out []string
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}

var catalog = []Template{
	{
		ID:                ResponsabilidadeVeiculo,
		Name:              "Termo de Responsabilidade - Veículos Usados",
		DisplayName:       "Termo de Responsabilidade - Veículos Usados",
		Description:       "Documento de responsabilidade sobre veículo usado",
		RequiredDocuments: []string{"Proposta PDF"},
		Slots:             []DocumentSlot{slotProposta},
		MaxFiles:          1,
		RequiredFields:    join(clientFields, usedVehicleFields),
	},
	{
		ID:                PagamentoTerceiro,
		Name:              "Declaração de Pagamento a Terceiro",
		DisplayName:       "Declaração de Pagamento por Conta e Ordem de Terceiro",
		Description:       "Declaração de pagamento realizado em favor de terceiro",
		RequiredDocuments: []string{"Proposta PDF", "CNH Terceiro", "Comprovante Pagamento"},
		Slots:             []DocumentSlot{slotProposta, slotCNH, slotPagamento},
		MaxFiles:          3,
		RequiredFields:    join(clientFields, []string{"third.name", "third.cpf", "third.rg"}, newVehicleFields, paymentFields),
	},
	{
		ID:                DeclaracaoPagamentoTerceiro,
		Name:              "Declaração de Pagamento por Conta e Ordem de Terceiro",
		DisplayName:       "Declaração de Pagamento por Conta e Ordem de Terceiro",
		Description:       "Declaração de pagamento efetuado por conta e ordem de terceiro",
		RequiredDocuments: []string{"Proposta PDF", "CNH Terceiro", "Comprovante Pagamento"},
		Slots:             []DocumentSlot{slotProposta, slotCNH, slotPagamento},
		MaxFiles:          3,
		RequiredFields:    join(clientFields, []string{"third.name", "third.cpf", "third.rg"}, newVehicleFields, paymentFields),
	},
	{
		ID:                CessaoCredito,
		Name:              "Cessão de Crédito",
		DisplayName:       "Termo de Declaração de Cessão de Crédito",
		Description:       "Termo de transferência de crédito entre partes",
		RequiredDocuments: []string{"Proposta PDF", "CNH Terceiro", "Comprovante de endereço do terceiro"},
		Slots:             []DocumentSlot{slotProposta, slotCNH, slotEndereco},
		MaxFiles:          3,
		RequiredFields: join(clientFields, usedVehicleFields, newVehicleFields,
			[]string{"third.name", "third.cpf", "third.rg", "third.address"}),
	},
}

// All returns the catalog in presentation order
func All() []Template {
	out := make([]Template, len(catalog))
	copy(out, catalog)
	return out
}

// Lookup finds a template by id
func Lookup(id string) (Template, bool) {
	for _, t := range catalog {
		if t.ID == id {
			return t, true
		}
	}
	return Template{}, false
}

// MustLookup is Lookup returning ErrUnknownTemplate
func MustLookup(id string) (Template, error) {
	t, ok := Lookup(id)
	if !ok {
		return Template{}, ErrUnknownTemplate
	}
	return t, nil
}

// DisplayName returns the long document title for id. Unknown ids fall back
// to fallback truncated to 20 characters, or "Documento" when empty.
func DisplayName(id, fallback string) string {
	if t, ok := Lookup(id); ok {
		return t.DisplayName
	}
	if fallback == "" {
		return "Documento"
	}
	if utf8.RuneCountInString(fallback) > 20 {
		return string([]rune(fallback)[:20]) + "..."
	}
	return fallback
}

var fieldLabels = map[string]string{
	"client.name":          "Nome",
	"client.cpf":           "CPF",
	"client.rg":            "RG",
	"client.address":       "Endereço",
	"usedVehicle.brand":    "Marca",
	"usedVehicle.model":    "Modelo",
	"usedVehicle.year":     "Ano/Modelo",
	"usedVehicle.color":    "Cor",
	"usedVehicle.plate":    "Placa",
	"usedVehicle.chassi":   "Chassi",
	"usedVehicle.value":    "Valor",
	"newVehicle.brand":     "Marca",
	"newVehicle.model":     "Modelo",
	"newVehicle.yearModel": "Ano/Modelo",
	"newVehicle.color":     "Cor",
	"newVehicle.chassi":    "Chassi",
	"third.name":           "Nome",
	"third.cpf":            "CPF",
	"third.rg":             "RG",
	"third.address":        "Endereço",
	"payment.amount":       "Valor",
	"payment.method":       "Método",
	"payment.bank_name":    "Banco",
	"payment.agency":       "Agência",
	"payment.account":      "Conta",
}

// FieldLabel returns the form label for a field path
func FieldLabel(path string) string {
	if l, ok := fieldLabels[path]; ok {
		return l
	}
	return path
}

// Slug turns a template name into a filename-safe prefix
func Slug(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return "documento"
	}
	return strings.Join(strings.Fields(name), "_")
}
