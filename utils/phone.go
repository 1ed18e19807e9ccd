// Package utils provides utility functions for the application.
package utils

import "strings"

// NormalizePhone converts free-text phone input to an E.164-like string.
// Only US/Canada 10- and 11-digit numbers are recognized; input that already
// carries a leading + passes through untouched. An empty return value means
// the input is not a usable phone number and the row must be skipped.
func NormalizePhone(raw string) string {
	if raw == "" {
		return ""
	}

	var digits strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	cleaned := digits.String()

	if len(cleaned) == 10 {
		return "+1" + cleaned
	}
	if len(cleaned) == 11 && strings.HasPrefix(cleaned, "1") {
		return "+" + cleaned
	}
	if strings.HasPrefix(raw, "+") {
		return raw
	}

	return ""
}
