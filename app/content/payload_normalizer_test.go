package content

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestPayloadNormalizerShapes(t *testing.T) {
	normalizer := NewPayloadNormalizer()

	tests := []struct {
		name     string
		body     string
		strategy string
		expected []ContentItem
	}{
		{
			name:     "rows property",
			body:     `{"rows":[{"titulo":"A"}],"ideas":[{"titulo":"B"}]}`,
			strategy: "rows",
			expected: []ContentItem{{Title: "A"}},
		},
		{
			name:     "top-level array",
			body:     `[{"title":"A"},{"title":"B"}]`,
			strategy: "sequence",
			expected: []ContentItem{{Title: "A"}, {Title: "B"}},
		},
		{
			name:     "items before data",
			body:     `{"data":[{"title":"D"}],"items":[{"title":"I"}]}`,
			strategy: "list-property",
			expected: []ContentItem{{Title: "I"}},
		},
		{
			name:     "object with other array property",
			body:     `{"meta":"x","ideas_list":[{"title":"L"}]}`,
			strategy: "object",
			expected: []ContentItem{{Title: "L"}},
		},
		{
			name:     "plain object",
			body:     `{"titulo":"Solo","descripcion":"Una idea"}`,
			strategy: "object",
			expected: []ContentItem{{Title: "Solo", Description: "Una idea"}},
		},
		{
			name:     "number",
			body:     `42`,
			strategy: "scalar",
			expected: []ContentItem{{Title: "42"}},
		},
		{
			name:     "non-JSON text",
			body:     `hello`,
			strategy: "text",
			expected: []ContentItem{{Description: "hello"}},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := normalizer.Strategy([]byte(test.body)); got != test.strategy {
				t.Errorf("Expected strategy %s, got %s", test.strategy, got)
			}
			if diff := cmp.Diff(test.expected, normalizer.Run([]byte(test.body))); diff != "" {
				t.Errorf("Unexpected items (-want +got):\n%s", diff)
			}
		})
	}
}

func TestPayloadNormalizerTextStrategies(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected []ContentItem
	}{
		{
			name:     "quoted array",
			text:     `"[{"titulo":"A"}]"`,
			expected: []ContentItem{{Title: "A"}},
		},
		{
			name:     "curly quoted array",
			text:     "\u201c[{\"titulo\":\"A\"}]\u201d",
			expected: []ContentItem{{Title: "A"}},
		},
		{
			name:     "array inside prose",
			text:     "Claro, aquí están:\n```json\n[{\"titulo\":\"A\"},{\"titulo\":\"B\"}]\n```",
			expected: []ContentItem{{Title: "A"}, {Title: "B"}},
		},
		{
			name:     "broken array falls back to description",
			text:     `ideas: [{"titulo": }]`,
			expected: []ContentItem{{Description: `ideas: [{"titulo": }]`}},
		},
		{
			name:     "object inside prose",
			text:     `Respuesta: {"ideas":[{"titulo":"A"}]} fin`,
			expected: []ContentItem{{Title: "A"}},
		},
		{
			name:     "object without array falls back to description",
			text:     `Respuesta: {"titulo":"A"} fin`,
			expected: []ContentItem{{Description: `Respuesta: {"titulo":"A"} fin`}},
		},
		{
			name:     "JSON object text",
			text:     `{"titulo":"A"}`,
			expected: []ContentItem{{Title: "A"}},
		},
		{
			name:     "JSON primitive text",
			text:     `"true"`,
			expected: []ContentItem{{Description: `"true"`}},
		},
		{
			name:     "blank text",
			text:     "   ",
			expected: []ContentItem{{}},
		},
	}

	normalizer := NewPayloadNormalizer()
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if diff := cmp.Diff(test.expected, normalizer.RunValue(test.text)); diff != "" {
				t.Errorf("Unexpected items (-want +got):\n%s", diff)
			}
		})
	}
}

func TestPayloadNormalizerFieldMapping(t *testing.T) {
	normalizer := NewPayloadNormalizer()

	body := `[{
		"Fecha": "2024-05-01T10:00:00Z",
		"Título": "Guía SEO",
		"Descripción": "Cómo posicionar",
		"Palabra": "seo local",
		"Volumen": 1200,
		"Tipos": ["blog", "video"],
		"Embudo": "TOFU"
	}]`

	expected := []ContentItem{{
		Date:         "2024-05-01",
		Title:        "Guía SEO",
		Description:  "Cómo posicionar",
		Keyword:      "seo local",
		Volume:       "1200",
		ContentTypes: "blog, video",
		FunnelStage:  "TOFU",
	}}

	if diff := cmp.Diff(expected, normalizer.Run([]byte(body))); diff != "" {
		t.Errorf("Unexpected items (-want +got):\n%s", diff)
	}
}

func TestPayloadNormalizerAliasPrecedence(t *testing.T) {
	normalizer := NewPayloadNormalizer()

	items := normalizer.Run([]byte(`[{"title":"English","titulo":"Español","TITULO":"Mayúsculas","keyword":"","keywords":"fallback"}]`))
	if len(items) != 1 {
		t.Fatalf("Expected 1 item, got %d", len(items))
	}
	if items[0].Title != "Español" {
		t.Errorf("Expected titulo alias to win, got %s", items[0].Title)
	}
	if items[0].Keyword != "fallback" {
		t.Errorf("Expected empty keyword to fall through, got %q", items[0].Keyword)
	}
}

func TestPayloadNormalizerBlankBody(t *testing.T) {
	normalizer := NewPayloadNormalizer()

	for _, body := range []string{"", "   ", `"   "`} {
		t.Run(fmt.Sprintf("%q", body), func(t *testing.T) {
			if got := normalizer.Strategy([]byte(body)); got != "text" {
				t.Errorf("Expected strategy text, got %s", got)
			}
			if diff := cmp.Diff([]ContentItem{{}}, normalizer.Run([]byte(body))); diff != "" {
				t.Errorf("Expected a single empty record (-want +got):\n%s", diff)
			}
		})
	}
}

func TestPayloadNormalizerNullFields(t *testing.T) {
	normalizer := NewPayloadNormalizer()

	expected := []ContentItem{{Title: "A"}}
	if diff := cmp.Diff(expected, normalizer.Run([]byte(`[{"titulo":"A","descripcion":null}]`))); diff != "" {
		t.Errorf("Expected null field to stay empty (-want +got):\n%s", diff)
	}
}

func TestPayloadNormalizerNonObjectItems(t *testing.T) {
	normalizer := NewPayloadNormalizer()

	expected := []ContentItem{{Title: "uno"}, {Title: "2"}, {Title: "null"}, {Title: "a, b"}}
	if diff := cmp.Diff(expected, normalizer.Run([]byte(`["uno", 2, null, ["a","b"]]`))); diff != "" {
		t.Errorf("Unexpected items (-want +got):\n%s", diff)
	}
}

func TestPayloadNormalizerIdempotent(t *testing.T) {
	normalizer := NewPayloadNormalizer()

	first := normalizer.Run([]byte(`{"ideas":[
		{"fecha":"2024-06-01","titulo":"A","descripcion":"d","keyword":"k","volumen":"10","tipos":"blog","funnel":"MOFU"},
		{"titulo":"B"}
	]}`))

	second := normalizer.RunValue(map[string]any{"rows": first})
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("Expected re-normalization to be stable (-first +second):\n%s", diff)
	}
}

func TestContentItemRecord(t *testing.T) {
	item := ContentItem{
		Date:         "2024-06-01",
		Title:        "A",
		Description:  "d",
		Keyword:      "k",
		ContentTypes: "blog",
		FunnelStage:  "MOFU",
	}

	expected := Record{Date: "2024-06-01", Type: RecordTypeIdea, Format: "blog", Title: "A", Copy: "d", Hashtags: "k"}
	if diff := cmp.Diff(expected, item.Record()); diff != "" {
		t.Errorf("Unexpected record (-want +got):\n%s", diff)
	}
}
