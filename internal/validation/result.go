package validation

// Status is the outcome class of a field validation
type Status string

const (
	StatusValid   Status = "valid"
	StatusInvalid Status = "invalid"
	StatusWarning Status = "warning"
	StatusNeutral Status = "neutral"
)

// FieldValidationResult is the outcome of validating one field.
// Message is non-empty whenever Status is not neutral.
type FieldValidationResult struct {
	Status  Status `json:"status" example:"valid"`
	Message string `json:"message" example:"CPF válido"`
}

// ResultMap maps dotted field paths to their validation result
type ResultMap map[string]FieldValidationResult

// Blocking reports whether the result prevents document generation
func (r FieldValidationResult) Blocking() bool {
	return r.Status == StatusInvalid
}

func valid(msg string) FieldValidationResult   { return FieldValidationResult{StatusValid, msg} }
func invalid(msg string) FieldValidationResult { return FieldValidationResult{StatusInvalid, msg} }
func warning(msg string) FieldValidationResult { return FieldValidationResult{StatusWarning, msg} }

// Merge returns a copy of m with other's entries applied on top
func (m ResultMap) Merge(other ResultMap) ResultMap {
	out := make(ResultMap, len(m)+len(other))
	for k, v := range m {
		out[k] = v
	}
	for k, v := range other {
		out[k] = v
	}
	return out
}

// Counts tallies results by status
func (m ResultMap) Counts() map[Status]int {
	counts := map[Status]int{}
	for _, r := range m {
		counts[r.Status]++
	}
	return counts
}
