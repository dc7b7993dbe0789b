package content

import (
	"encoding/json"
	"strings"
)

var textKeys = []string{"output", "text", "markdown", "content", "result", "message"}

// ExtractText pulls the generated text out of a workflow response. Workflows
// answer with raw text, a JSON string, {"output": "..."} or [{"output": "..."}].
func ExtractText(body []byte) string {
	if !json.Valid(body) {
		return strings.TrimSpace(string(body))
	}

	value, err := decodeOrdered(body)
	if err != nil {
		return strings.TrimSpace(string(body))
	}

	if text, ok := textOf(value); ok {
		return strings.TrimSpace(text)
	}
	return strings.TrimSpace(string(body))
}

func textOf(value any) (string, bool) {
	switch v := value.(type) {
	case string:
		return v, true
	case []any:
		if len(v) == 0 {
			return "", false
		}
		return textOf(v[0])
	case *object:
		for _, key := range textKeys {
			if prop, ok := v.get(key); ok {
				if text, ok := textOf(prop); ok {
					return text, true
				}
			}
		}
		for _, prop := range v.values {
			if s, ok := prop.(string); ok {
				return s, true
			}
		}
	}
	return "", false
}
