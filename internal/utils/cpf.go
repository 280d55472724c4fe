package utils

import (
	"regexp"
)

var nonDigit = regexp.MustCompile(`\D`)

// CleanDigits removes all non-numeric characters
func CleanDigits(s string) string {
	return nonDigit.ReplaceAllString(s, "")
}

// FormatCPF formats a CPF as XXX.XXX.XXX-XX
func FormatCPF(cpf string) string {
	cleaned := CleanDigits(cpf)
	if len(cleaned) != 11 {
		return cpf // Return original if invalid length
	}

	return cleaned[:3] + "." + cleaned[3:6] + "." + cleaned[6:9] + "-" + cleaned[9:]
}

// FormatCEP formats a CEP as XXXXX-XXX
func FormatCEP(cep string) string {
	cleaned := CleanDigits(cep)
	if len(cleaned) != 8 {
		return cep
	}
	return cleaned[:5] + "-" + cleaned[5:]
}

// CPFCheckDigits computes both CPF check digits from the first nine digits.
// digits must hold at least nine decimal characters.
func CPFCheckDigits(digits string) (first, second int) {
	d := make([]int, 10)
	for i := 0; i < 9; i++ {
		d[i] = int(digits[i] - '0')
	}

	first = checkDigit(d[:9], []int{10, 9, 8, 7, 6, 5, 4, 3, 2})
	d[9] = first
	second = checkDigit(d[:10], []int{11, 10, 9, 8, 7, 6, 5, 4, 3, 2})
	return first, second
}

// IsValidCPF validates a CPF using the official mod-11 algorithm
func IsValidCPF(cpf string) bool {
	cleaned := CleanDigits(cpf)
	if len(cleaned) != 11 || IsAllSameDigit(cleaned) {
		return false
	}

	first, second := CPFCheckDigits(cleaned)
	return first == int(cleaned[9]-'0') && second == int(cleaned[10]-'0')
}

// IsAllSameDigit checks if all characters in the string are the same
func IsAllSameDigit(s string) bool {
	if len(s) == 0 {
		return false
	}

	first := s[0]
	for i := 1; i < len(s); i++ {
		if s[i] != first {
			return false
		}
	}
	return true
}

// checkDigit calculates a mod-11 check digit using the given weights
func checkDigit(digits []int, weights []int) int {
	sum := 0
	for i, digit := range digits {
		sum += digit * weights[i]
	}

	remainder := sum % 11
	if remainder < 2 {
		return 0
	}
	return 11 - remainder
}
