// Package validation implements the field rules applied to data extracted
// from uploaded documents. Every function here is pure and safe for
// concurrent use.
package validation

var fieldRules = map[string]rule{
	"client.name":    validateName,
	"client.cpf":     validateCPF,
	"client.rg":      validateRG,
	"client.address": validateAddress,
	"third.name":     validateName,
	"third.cpf":      validateCPF,
	"third.rg":       validateRG,
	"third.address":  validateAddress,

	"usedVehicle.brand":  validateBrand,
	"usedVehicle.model":  validateModel,
	"usedVehicle.year":   validateYear,
	"usedVehicle.color":  validateColor,
	"usedVehicle.plate":  validatePlate,
	"usedVehicle.chassi": validateChassis,
	"usedVehicle.value":  validateVehicleValue,

	"newVehicle.brand":     validateBrand,
	"newVehicle.model":     validateModel,
	"newVehicle.yearModel": validateYear,
	"newVehicle.color":     validateColor,
	"newVehicle.chassi":    validateChassis,

	"payment.amount":    validatePaymentAmount,
	"payment.method":    validatePaymentMethod,
	"payment.bank_name": validateBankName,
	"payment.agency":    validateAgency,
	"payment.account":   validateAccount,
}

var (
	baseFields = []string{
		"client.name", "client.cpf", "client.rg", "client.address",
		"usedVehicle.brand", "usedVehicle.model", "usedVehicle.year", "usedVehicle.color",
		"usedVehicle.plate", "usedVehicle.chassi", "usedVehicle.value",
	}
	newVehicleFields = []string{
		"newVehicle.brand", "newVehicle.model", "newVehicle.yearModel", "newVehicle.color", "newVehicle.chassi",
	}
	thirdFields   = []string{"third.name", "third.cpf", "third.rg", "third.address"}
	paymentFields = []string{
		"payment.amount", "payment.method", "payment.bank_name", "payment.agency", "payment.account",
	}
)

// ValidateField validates a single value by its dotted path.
// Unrecognized paths only need to be non-blank.
func ValidateField(path, value string) FieldValidationResult {
	if r, ok := fieldRules[path]; ok {
		return r(value)
	}
	return validateRequired(value)
}

// Known reports whether path has a dedicated rule
func Known(path string) bool {
	_, ok := fieldRules[path]
	return ok
}

// ValidateAll validates client and usedVehicle fields always, and the
// newVehicle, third and payment sections when present.
func ValidateAll(data FormData) ResultMap {
	results := make(ResultMap, len(fieldRules))
	for _, path := range FieldsFor(data) {
		results[path] = ValidateField(path, data.Get(path))
	}
	return results
}

// FieldsFor lists the paths ValidateAll checks for data, in display order
func FieldsFor(data FormData) []string {
	fields := append([]string{}, baseFields...)
	if data.Has("newVehicle") {
		fields = append(fields, newVehicleFields...)
	}
	if data.Has("third") {
		fields = append(fields, thirdFields...)
	}
	if data.Has("payment") {
		fields = append(fields, paymentFields...)
	}
	return fields
}
