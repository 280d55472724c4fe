package validation

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/nexconsult/docsync/internal/utils"
)

var (
	nameChars      = regexp.MustCompile(`(?i)^[A-ZÀ-ÿ\s]+$`)
	modelChars     = regexp.MustCompile(`(?i)^[A-Z0-9À-ÿ\s.\-/]+$`)
	colorChars     = regexp.MustCompile(`(?i)^[A-ZÀ-ÿ\s\-]+$`)
	streetType     = regexp.MustCompile(`(?i)\b(rua|avenida|av|alameda|al|travessa|tv|largo|praça|pça|estrada|est|rodovia|rod)\b`)
	hasDigit       = regexp.MustCompile(`\d`)
	cepPattern     = regexp.MustCompile(`\d{5}[.\-]?\d{3}`)
	yearPattern    = regexp.MustCompile(`^\d{4}(/\d{2,4})?$`)
	rgStrip        = regexp.MustCompile(`[^\dA-Z]`)
	plateStrip     = regexp.MustCompile(`[^A-Z0-9]`)
	legacyPlate    = regexp.MustCompile(`^[A-Z]{3}[0-9]{4}$`)
	mercosulPlate  = regexp.MustCompile(`^[A-Z]{3}[0-9][A-Z][0-9]{2}$`)
	chassisCharset = regexp.MustCompile(`^[A-HJ-NPR-Z0-9]{17}$`)
	onlyDigits     = regexp.MustCompile(`^\d+$`)
)

var knownBrands = []string{
	"CHEVROLET", "TOYOTA", "VOLKSWAGEN", "FORD", "HONDA", "HYUNDAI",
	"NISSAN", "FIAT", "RENAULT", "PEUGEOT", "CITROËN", "BMW", "MERCEDES",
	"AUDI", "JEEP", "MITSUBISHI", "SUZUKI", "KIA",
}

var paymentMethods = []string{"PIX", "TED", "BOLETO", "DÉBITO", "CRÉDITO", "DINHEIRO"}

// now is replaced in tests that pin the current year
var now = time.Now

type rule func(value string) FieldValidationResult

func length(s string) int { return utf8.RuneCountInString(s) }

func validateName(value string) FieldValidationResult {
	if value == "" {
		return invalid("Nome é obrigatório")
	}
	v := strings.TrimSpace(value)
	switch {
	case length(v) < 2:
		return invalid("Nome deve ter pelo menos 2 caracteres")
	case length(v) > 100:
		return invalid("Nome não pode ter mais de 100 caracteres")
	case !nameChars.MatchString(v):
		return invalid("Nome deve conter apenas letras e espaços")
	case len(strings.Fields(v)) < 2:
		return warning("Recomendado incluir nome e sobrenome")
	}
	return valid("Nome válido")
}

func validateCPF(value string) FieldValidationResult {
	if value == "" {
		return invalid("CPF é obrigatório")
	}
	cpf := utils.CleanDigits(value)
	if len(cpf) != 11 {
		return invalid("CPF deve ter 11 dígitos")
	}
	if utils.IsAllSameDigit(cpf) {
		return invalid("CPF não pode ter todos os dígitos iguais")
	}
	first, second := utils.CPFCheckDigits(cpf)
	if first != int(cpf[9]-'0') {
		return invalid("CPF inválido (primeiro dígito)")
	}
	if second != int(cpf[10]-'0') {
		return invalid("CPF inválido (segundo dígito)")
	}
	return valid("CPF válido")
}

func validateRG(value string) FieldValidationResult {
	if value == "" {
		return invalid("RG é obrigatório")
	}
	rg := rgStrip.ReplaceAllString(value, "")
	switch {
	case len(rg) < 7:
		return invalid("RG deve ter pelo menos 7 caracteres")
	case len(rg) > 12:
		return invalid("RG não pode ter mais de 12 caracteres")
	}
	return valid("RG válido")
}

func validateAddress(value string) FieldValidationResult {
	if value == "" {
		return invalid("Endereço é obrigatório")
	}
	v := strings.TrimSpace(value)
	switch {
	case length(v) < 10:
		return invalid("Endereço deve ser mais detalhado")
	case length(v) > 200:
		return invalid("Endereço muito longo")
	case !streetType.MatchString(v):
		return warning("Inclua o tipo de logradouro (Rua, Avenida, etc.)")
	case !hasDigit.MatchString(v):
		return warning("Inclua o número do endereço")
	case !cepPattern.MatchString(v):
		return warning("Inclua o CEP")
	}
	return valid("Endereço válido")
}

func validateBrand(value string) FieldValidationResult {
	if value == "" {
		return invalid("Marca é obrigatória")
	}
	v := strings.ToUpper(strings.TrimSpace(value))
	switch {
	case length(v) < 2:
		return invalid("Marca deve ter pelo menos 2 caracteres")
	case length(v) > 50:
		return invalid("Marca não pode ter mais de 50 caracteres")
	}
	for _, brand := range knownBrands {
		if strings.Contains(v, brand) || strings.Contains(brand, v) {
			return valid("Marca válida")
		}
	}
	return warning("Verifique se a marca está correta")
}

func validateModel(value string) FieldValidationResult {
	if value == "" {
		return invalid("Modelo é obrigatório")
	}
	v := strings.TrimSpace(value)
	switch {
	case length(v) < 2:
		return invalid("Modelo deve ter pelo menos 2 caracteres")
	case length(v) > 100:
		return invalid("Modelo não pode ter mais de 100 caracteres")
	case !modelChars.MatchString(v):
		return invalid("Modelo contém caracteres inválidos")
	}
	return valid("Modelo válido")
}

func validateYear(value string) FieldValidationResult {
	if value == "" {
		return invalid("Ano é obrigatório")
	}
	v := strings.TrimSpace(value)
	if !yearPattern.MatchString(v) {
		return invalid("Formato deve ser YYYY ou YYYY/YYYY")
	}

	maxYear := now().Year() + 2
	fab, model, hasModel := strings.Cut(v, "/")
	fabYear, _ := strconv.Atoi(fab)
	if fabYear < 1900 || fabYear > maxYear {
		return invalid(fmt.Sprintf("Ano deve estar entre 1900 e %d", maxYear))
	}

	if hasModel {
		modelYear, _ := strconv.Atoi(model)
		if modelYear < 100 {
			if modelYear < 50 {
				modelYear += 2000
			} else {
				modelYear += 1900
			}
		}
		if modelYear < fabYear || modelYear > maxYear {
			return warning("Verifique o ano modelo")
		}
	}
	return valid("Ano válido")
}

func validateColor(value string) FieldValidationResult {
	if value == "" {
		return invalid("Cor é obrigatória")
	}
	v := strings.TrimSpace(value)
	switch {
	case length(v) < 2:
		return invalid("Cor deve ter pelo menos 2 caracteres")
	case length(v) > 30:
		return invalid("Cor não pode ter mais de 30 caracteres")
	case !colorChars.MatchString(v):
		return invalid("Cor deve conter apenas letras, espaços e hífen")
	}
	return valid("Cor válida")
}

// Plate and chassis drop anything outside A-Z0-9 before upper-casing,
// so lowercase input does not count toward the length.
func validatePlate(value string) FieldValidationResult {
	if value == "" {
		return invalid("Placa é obrigatória")
	}
	plate := strings.ToUpper(plateStrip.ReplaceAllString(value, ""))
	if len(plate) != 7 {
		return invalid("Placa deve ter 7 caracteres")
	}
	if !legacyPlate.MatchString(plate) && !mercosulPlate.MatchString(plate) {
		return invalid("Formato inválido. Use ABC1234 ou ABC1A23")
	}
	return valid("Placa válida")
}

func validateChassis(value string) FieldValidationResult {
	if value == "" {
		return invalid("Chassi é obrigatório")
	}
	chassis := strings.ToUpper(plateStrip.ReplaceAllString(value, ""))
	switch {
	case len(chassis) != 17:
		return invalid("Chassi deve ter exatamente 17 caracteres")
	case strings.ContainsAny(chassis, "IOQ"):
		return invalid("Chassi não pode conter as letras I, O ou Q")
	case !chassisCharset.MatchString(chassis):
		return invalid("Chassi contém caracteres inválidos")
	}
	return valid("Chassi válido")
}

func validateVehicleValue(value string) FieldValidationResult {
	if value == "" {
		return invalid("Valor é obrigatório")
	}
	amount, ok := ParseMoney(value)
	switch {
	case !ok:
		return invalid("Valor deve ser numérico")
	case amount <= 0:
		return invalid("Valor deve ser maior que zero")
	case amount < 1000:
		return warning("Valor parece baixo para um veículo")
	case amount > 1000000:
		return warning("Valor parece alto, verifique")
	}
	return valid("Valor válido")
}

func validatePaymentAmount(value string) FieldValidationResult {
	if value == "" {
		return invalid("Valor pago é obrigatório")
	}
	amount, ok := ParseMoney(value)
	switch {
	case !ok:
		return invalid("Valor deve ser numérico")
	case amount <= 0:
		return invalid("Valor deve ser maior que zero")
	}
	return valid("Valor pago válido")
}

func validatePaymentMethod(value string) FieldValidationResult {
	if value == "" {
		return invalid("Método de pagamento é obrigatório")
	}
	v := strings.TrimSpace(value)
	if length(v) < 2 {
		return invalid("Método deve ter pelo menos 2 caracteres")
	}
	upper := strings.ToUpper(v)
	for _, m := range paymentMethods {
		if strings.Contains(upper, m) {
			return valid("Método de pagamento válido")
		}
	}
	return warning("Verifique o método de pagamento")
}

func validateBankName(value string) FieldValidationResult {
	if value == "" {
		return invalid("Nome do banco é obrigatório")
	}
	if length(strings.TrimSpace(value)) < 2 {
		return invalid("Nome do banco deve ter pelo menos 2 caracteres")
	}
	return valid("Nome do banco válido")
}

func validateAgency(value string) FieldValidationResult {
	if value == "" {
		return invalid("Agência é obrigatória")
	}
	v := strings.TrimSpace(value)
	if v == "" {
		return invalid("Agência deve ter pelo menos 1 caractere")
	}
	if !onlyDigits.MatchString(v) {
		return warning("Agência deve conter apenas números")
	}
	return valid("Agência válida")
}

func validateAccount(value string) FieldValidationResult {
	if value == "" {
		return invalid("Conta é obrigatória")
	}
	if strings.TrimSpace(value) == "" {
		return invalid("Conta deve ter pelo menos 1 caractere")
	}
	return valid("Conta válida")
}

func validateRequired(value string) FieldValidationResult {
	if strings.TrimSpace(value) == "" {
		return invalid("Campo obrigatório")
	}
	return valid("Válido")
}
