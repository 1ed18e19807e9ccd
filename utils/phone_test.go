package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "ten digit number", input: "5551234567", expected: "+15551234567"},
		{name: "formatted ten digit", input: "(555) 123-4567", expected: "+15551234567"},
		{name: "dotted ten digit", input: "555.123.4567", expected: "+15551234567"},
		{name: "eleven digit with country code", input: "15551234567", expected: "+15551234567"},
		{name: "eleven digit with plus", input: "+1 555 123 4567", expected: "+15551234567"},
		{name: "already e164 non-US", input: "+442071234567", expected: "+442071234567"},
		{name: "empty", input: "", expected: ""},
		{name: "whitespace only", input: "   ", expected: ""},
		{name: "too few digits", input: "12345", expected: ""},
		{name: "eleven digits not starting with 1", input: "25551234567", expected: ""},
		{name: "letters only", input: "call me", expected: ""},
		{name: "digits mixed with text", input: "ph: 555-123-4567 (cell)", expected: "+15551234567"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizePhone(tt.input))
		})
	}
}
