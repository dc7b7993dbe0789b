package content

import (
	"testing"
)

func TestExtractText(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		expected string
	}{
		{"raw text", "  | a | b |\n", "| a | b |"},
		{"JSON string", `"H1: Tema"`, "H1: Tema"},
		{"output property", `{"output":"texto"}`, "texto"},
		{"preferred key order", `{"message":"m","text":"t"}`, "t"},
		{"array of outputs", `[{"output":"primero"},{"output":"segundo"}]`, "primero"},
		{"first string property", `{"count":1,"answer":"respuesta"}`, "respuesta"},
		{"nested preferred key", `{"output":{"text":"anidado"}}`, "anidado"},
		{"no text", `{"count":1}`, `{"count":1}`},
		{"empty array", `[]`, `[]`},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := ExtractText([]byte(test.body)); got != test.expected {
				t.Errorf("Expected %q, got %q", test.expected, got)
			}
		})
	}
}
