package validation

import (
	"regexp"
	"strconv"
	"strings"
)

var nonMoneyChars = regexp.MustCompile(`[^\d,.]`)

// ParseMoney normalizes a Brazilian or international monetary string.
//
// Everything but digits, commas and dots is dropped. When both separators
// appear, dots are thousands separators and the first comma is the decimal
// mark; otherwise the first comma becomes a dot. The longest numeric prefix
// is then parsed, so "1.2.3" yields 1.2. ok is false when no digits lead.
func ParseMoney(raw string) (value float64, ok bool) {
	clean := nonMoneyChars.ReplaceAllString(raw, "")

	var normalized string
	if strings.Contains(clean, ",") && strings.Contains(clean, ".") {
		normalized = strings.Replace(strings.ReplaceAll(clean, ".", ""), ",", ".", 1)
	} else {
		normalized = strings.Replace(clean, ",", ".", 1)
	}

	return parseFloatPrefix(normalized)
}

// parseFloatPrefix parses digits[.digits] from the start of s
func parseFloatPrefix(s string) (float64, bool) {
	end, digits, dot := 0, 0, false
	for end < len(s) {
		c := s[end]
		if c >= '0' && c <= '9' {
			digits++
		} else if c == '.' && !dot {
			dot = true
		} else {
			break
		}
		end++
	}
	if digits == 0 {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.TrimSuffix(s[:end], "."), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
