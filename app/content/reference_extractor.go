package content

import (
	"bytes"
	"fmt"
	"log/slog"
	"strings"

	"codeberg.org/readeck/go-readability/v2"
)

// ReferenceExtractor pulls the readable text out of a reference article page.
type ReferenceExtractor struct{}

func NewReferenceExtractor() *ReferenceExtractor {
	return &ReferenceExtractor{}
}

func (e *ReferenceExtractor) Run(data []byte) (string, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return "", fmt.Errorf("HTML data is empty")
	}

	article, err := readability.FromReader(bytes.NewReader(data), nil)
	if err != nil {
		return "", fmt.Errorf("failed to extract content: %w", err)
	}

	var buf strings.Builder
	if err := article.RenderText(&buf); err != nil {
		return "", fmt.Errorf("failed to render article text: %w", err)
	}

	text := strings.TrimSpace(buf.String())
	if text == "" {
		return "", fmt.Errorf("no content extracted from HTML data")
	}

	slog.Debug("Reference text extracted", "text_length", len(text))

	return text, nil
}
