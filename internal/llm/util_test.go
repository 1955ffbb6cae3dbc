package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripFences(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"json fence", "```json\n{\"key\": \"value\"}\n```", `{"key": "value"}`},
		{"bare fence", "```\n{\"key\": \"value\"}\n```", `{"key": "value"}`},
		{"ld+json fence", "```ld+json\n{\"@type\": \"FAQPage\"}\n```", `{"@type": "FAQPage"}`},
		{"fence without newline", "```{\"a\": 1}```", `{"a": 1}`},
		{"trailing commentary after fence", "```json\n[1]\n```\nLet me know!", `[1]`},
		{"plain document", `{"key": "value"}`, `{"key": "value"}`},
		{"prose preamble", "Here is the schema:\n{\"@context\": \"https://schema.org\"}", `{"@context": "https://schema.org"}`},
		{"whitespace", "  \n[1, 2]\n  ", `[1, 2]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, StripFences(tt.input))
		})
	}
}
