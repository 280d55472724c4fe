package validation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pinYear(t *testing.T, year int) {
	t.Helper()
	orig := now
	now = func() time.Time { return time.Date(year, time.June, 1, 12, 0, 0, 0, time.UTC) }
	t.Cleanup(func() { now = orig })
}

func TestValidateField(t *testing.T) {
	pinYear(t, 2024)

	tests := []struct {
		name   string
		path   string
		value  string
		status Status
		msg    string
	}{
		{"cpf valid formatted", "client.cpf", "529.982.247-25", StatusValid, "CPF válido"},
		{"cpf all same digits", "client.cpf", "111.111.111-11", StatusInvalid, "CPF não pode ter todos os dígitos iguais"},
		{"cpf second digit", "third.cpf", "123.456.789-00", StatusInvalid, "CPF inválido (segundo dígito)"},
		{"cpf first digit", "client.cpf", "529.982.247-35", StatusInvalid, "CPF inválido (primeiro dígito)"},
		{"cpf short", "client.cpf", "5299822472", StatusInvalid, "CPF deve ter 11 dígitos"},
		{"cpf empty", "client.cpf", "", StatusInvalid, "CPF é obrigatório"},

		{"name full", "client.name", "João da Silva", StatusValid, "Nome válido"},
		{"name single token", "client.name", "João", StatusWarning, "Recomendado incluir nome e sobrenome"},
		{"name too short", "client.name", " J ", StatusInvalid, "Nome deve ter pelo menos 2 caracteres"},
		{"name with digits", "third.name", "João 2 Silva", StatusInvalid, "Nome deve conter apenas letras e espaços"},

		{"rg formatted", "client.rg", "12.345.678-9", StatusValid, "RG válido"},
		{"rg short", "client.rg", "12345", StatusInvalid, "RG deve ter pelo menos 7 caracteres"},
		{"rg long", "client.rg", "1234567890123", StatusInvalid, "RG não pode ter mais de 12 caracteres"},
		{"rg drops lowercase", "client.rg", "mg1234567", StatusValid, "RG válido"},

		{"address complete", "client.address", "Rua das Flores, 123, São Paulo, 01310-100", StatusValid, "Endereço válido"},
		{"address without street type", "client.address", "Casa Verde 123 01310100", StatusWarning, "Inclua o tipo de logradouro (Rua, Avenida, etc.)"},
		{"address without number", "client.address", "Avenida Paulista, centro", StatusWarning, "Inclua o número do endereço"},
		{"address without cep", "client.address", "Av. Paulista, 1000", StatusWarning, "Inclua o CEP"},
		{"address too short", "client.address", "Rua A, 1", StatusInvalid, "Endereço deve ser mais detalhado"},

		{"brand known", "usedVehicle.brand", "Chevrolet Onix", StatusValid, "Marca válida"},
		{"brand substring", "newVehicle.brand", "vw volkswagen", StatusValid, "Marca válida"},
		{"brand unknown", "usedVehicle.brand", "Lada", StatusWarning, "Verifique se a marca está correta"},
		{"brand short", "usedVehicle.brand", "X", StatusInvalid, "Marca deve ter pelo menos 2 caracteres"},

		{"model valid", "usedVehicle.model", "Onix 1.0 LT/MT", StatusValid, "Modelo válido"},
		{"model charset", "usedVehicle.model", "Onix #1", StatusInvalid, "Modelo contém caracteres inválidos"},

		{"year simple", "usedVehicle.year", "2020", StatusValid, "Ano válido"},
		{"year with short model", "usedVehicle.year", "2020/21", StatusValid, "Ano válido"},
		{"year model before fabrication", "newVehicle.yearModel", "2020/2019", StatusWarning, "Verifique o ano modelo"},
		{"year model too far", "usedVehicle.year", "2024/2030", StatusWarning, "Verifique o ano modelo"},
		{"year format", "usedVehicle.year", "20", StatusInvalid, "Formato deve ser YYYY ou YYYY/YYYY"},
		{"year range", "usedVehicle.year", "2027", StatusInvalid, "Ano deve estar entre 1900 e 2026"},
		{"year before 1900", "usedVehicle.year", "1899", StatusInvalid, "Ano deve estar entre 1900 e 2026"},

		{"color valid", "usedVehicle.color", "Azul-Marinho", StatusValid, "Cor válida"},
		{"color digits", "usedVehicle.color", "Prata 2", StatusInvalid, "Cor deve conter apenas letras, espaços e hífen"},

		{"plate legacy", "usedVehicle.plate", "ABC1234", StatusValid, "Placa válida"},
		{"plate mercosul", "usedVehicle.plate", "ABC1D23", StatusValid, "Placa válida"},
		{"plate with dash", "usedVehicle.plate", "ABC-1234", StatusValid, "Placa válida"},
		{"plate wrong shape", "usedVehicle.plate", "ABCD123", StatusInvalid, "Formato inválido. Use ABC1234 ou ABC1A23"},
		{"plate lowercase stripped", "usedVehicle.plate", "abc1234", StatusInvalid, "Placa deve ter 7 caracteres"},

		{"chassis valid", "usedVehicle.chassi", "9BWZZZ377VT004251", StatusValid, "Chassi válido"},
		{"chassis with O", "newVehicle.chassi", "9BWZZZ377VT00425O", StatusInvalid, "Chassi não pode conter as letras I, O ou Q"},
		{"chassis short", "usedVehicle.chassi", "9BWZZZ377VT0042", StatusInvalid, "Chassi deve ter exatamente 17 caracteres"},

		{"value brazilian", "usedVehicle.value", "R$ 50.000,00", StatusValid, "Valor válido"},
		{"value low", "usedVehicle.value", "500", StatusWarning, "Valor parece baixo para um veículo"},
		{"value high", "usedVehicle.value", "2.000.000,00", StatusWarning, "Valor parece alto, verifique"},
		{"value zero", "usedVehicle.value", "0,00", StatusInvalid, "Valor deve ser maior que zero"},
		{"value text", "usedVehicle.value", "abc", StatusInvalid, "Valor deve ser numérico"},

		{"payment amount", "payment.amount", "150,00", StatusValid, "Valor pago válido"},
		{"payment amount empty", "payment.amount", "", StatusInvalid, "Valor pago é obrigatório"},
		{"payment method pix", "payment.method", "Pix", StatusValid, "Método de pagamento válido"},
		{"payment method unknown", "payment.method", "Cheque", StatusWarning, "Verifique o método de pagamento"},
		{"bank name", "payment.bank_name", "Itaú", StatusValid, "Nome do banco válido"},
		{"agency digits", "payment.agency", "1234", StatusValid, "Agência válida"},
		{"agency dash", "payment.agency", "1234-5", StatusWarning, "Agência deve conter apenas números"},
		{"account", "payment.account", "12345-6", StatusValid, "Conta válida"},

		{"unknown filled", "contract.date", "2024-01-01", StatusValid, "Válido"},
		{"unknown blank", "contract.date", "   ", StatusInvalid, "Campo obrigatório"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ValidateField(tt.path, tt.value)
			assert.Equal(t, tt.status, got.Status)
			assert.Equal(t, tt.msg, got.Message)
		})
	}
}

func TestEveryResultCarriesMessage(t *testing.T) {
	for path := range fieldRules {
		for _, v := range []string{"", " ", "x", "ABC1234", "529.982.247-25", "2020"} {
			r := ValidateField(path, v)
			assert.NotEmpty(t, r.Message, "%s=%q", path, v)
			assert.Contains(t, []Status{StatusValid, StatusInvalid, StatusWarning}, r.Status)
		}
	}
}

func TestParseMoney(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"50.000,00", 50000, true},
		{"50000,00", 50000, true},
		{"50000.00", 50000, true},
		{"R$ 1.234,56", 1234.56, true},
		{"1.2.3", 1.2, true},
		{"1,2,3", 1.2, true},
		{",5", 0.5, true},
		{"", 0, false},
		{"abc", 0, false},
		{".", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseMoney(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func sampleForm() FormData {
	return FormData{
		"client": map[string]any{
			"name":    "Maria Souza",
			"cpf":     "529.982.247-25",
			"rg":      "12.345.678-9",
			"address": "Rua das Flores, 123, 01310-100",
		},
		"usedVehicle": map[string]any{
			"brand":  "Fiat",
			"model":  "Uno",
			"year":   "2015/2016",
			"color":  "Branco",
			"plate":  "ABC1D23",
			"chassi": "9BWZZZ377VT004251",
			"value":  float64(35000),
		},
	}
}

func TestValidateAll(t *testing.T) {
	data := sampleForm()

	results := ValidateAll(data)
	assert.Len(t, results, 11)
	assert.Equal(t, StatusValid, results["usedVehicle.value"].Status)
	assert.NotContains(t, results, "third.name")

	withThird := data.With("third.name", "Carlos")
	results = ValidateAll(withThird)
	assert.Len(t, results, 15)
	assert.Equal(t, StatusWarning, results["third.name"].Status)
	assert.Equal(t, StatusInvalid, results["third.cpf"].Status)
}

func TestValidateAllIsIdempotent(t *testing.T) {
	data := sampleForm().With("payment.method", "TED")
	assert.Equal(t, ValidateAll(data), ValidateAll(data))
}

func TestFormDataWithDoesNotMutate(t *testing.T) {
	data := sampleForm()

	updated := data.With("client.name", "Ana Lima")
	require.Equal(t, "Ana Lima", updated.Get("client.name"))
	assert.Equal(t, "Maria Souza", data.Get("client.name"))

	nested := data.With("newVehicle.brand", "Toyota")
	assert.True(t, nested.Has("newVehicle"))
	assert.False(t, data.Has("newVehicle"))
	assert.Equal(t, "Toyota", nested.Get("newVehicle.brand"))
	assert.Equal(t, "35000", nested.Get("usedVehicle.value"))
}

func TestResultMapMerge(t *testing.T) {
	base := ResultMap{"client.cpf": invalid("CPF é obrigatório")}
	merged := base.Merge(ResultMap{"client.cpf": valid("CPF válido")})

	assert.Equal(t, StatusValid, merged["client.cpf"].Status)
	assert.Equal(t, StatusInvalid, base["client.cpf"].Status)
	assert.Equal(t, 1, merged.Counts()[StatusValid])
}
