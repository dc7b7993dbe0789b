package content

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"
)

type payloadStrategy struct {
	name    string
	resolve func(value any) ([]any, bool)
}

// payloadStrategies is the fallback order for webhook payload shapes.
// The first strategy that applies decides the raw item list.
var payloadStrategies = []payloadStrategy{
	{"rows", rowsProperty},
	{"sequence", sequenceValue},
	{"list-property", listProperty},
	{"text", textValue},
	{"object", objectValue},
	{"scalar", scalarValue},
}

type textStrategy struct {
	name    string
	resolve func(text, original string) ([]any, bool)
}

var textStrategies = []textStrategy{
	{"strict-json", strictJSON},
	{"bracket-slice", bracketSlice},
	{"brace-slice", braceSlice},
	{"plain-text", plainText},
}

type itemField struct {
	aliases []string
	assign  func(item *ContentItem, value string)
}

// itemFields lists the folded source keys per ContentItem field, in lookup order.
var itemFields = []itemField{
	{[]string{"fecha", "date", "fechaformato"}, func(it *ContentItem, v string) { it.Date = truncateRunes(v, 10) }},
	{[]string{"titulo", "title"}, func(it *ContentItem, v string) { it.Title = v }},
	{[]string{"descripcion", "description"}, func(it *ContentItem, v string) { it.Description = v }},
	{[]string{"keyword", "keywords", "palabra"}, func(it *ContentItem, v string) { it.Keyword = v }},
	{[]string{"volumen", "volume"}, func(it *ContentItem, v string) { it.Volume = v }},
	{[]string{"tipos", "tipo", "types", "contenttypes"}, func(it *ContentItem, v string) { it.ContentTypes = v }},
	{[]string{"funnel", "embudo", "funnelstage"}, func(it *ContentItem, v string) { it.FunnelStage = v }},
}

type PayloadNormalizer struct{}

func NewPayloadNormalizer() *PayloadNormalizer {
	return &PayloadNormalizer{}
}

// Run normalizes a raw webhook response body. Bodies that are not valid
// JSON are handled as text.
func (n *PayloadNormalizer) Run(body []byte) []ContentItem {
	_, raw := resolvePayload(decodeBody(body))
	return n.mapItems(raw)
}

// RunValue normalizes an already decoded value. Map keys are visited in
// lexical order since Go maps carry no document order.
func (n *PayloadNormalizer) RunValue(v any) []ContentItem {
	data, err := json.Marshal(v)
	if err != nil {
		return n.mapItems(describe(fmt.Sprint(v)))
	}
	return n.Run(data)
}

// Strategy reports which payload strategy applies to body.
func (n *PayloadNormalizer) Strategy(body []byte) string {
	name, _ := resolvePayload(decodeBody(body))
	return name
}

func (n *PayloadNormalizer) mapItems(raw []any) []ContentItem {
	items := make([]ContentItem, 0, len(raw))
	for _, value := range raw {
		items = append(items, n.mapItem(value))
	}
	return items
}

func (n *PayloadNormalizer) mapItem(value any) ContentItem {
	if value == nil {
		return ContentItem{Title: "null"}
	}
	obj, ok := value.(*object)
	if !ok {
		return ContentItem{Title: stringify(value)}
	}

	lookup := make(map[string]any, len(obj.keys))
	for i, key := range obj.keys {
		folded := foldKey(key)
		if _, seen := lookup[folded]; !seen {
			lookup[folded] = obj.values[i]
		}
	}

	var item ContentItem
	for _, field := range itemFields {
		for _, alias := range field.aliases {
			if v, ok := lookup[alias]; ok {
				if s := stringify(v); s != "" {
					field.assign(&item, s)
					break
				}
			}
		}
	}
	return item
}

func decodeBody(body []byte) any {
	if json.Valid(body) {
		if value, err := decodeOrdered(body); err == nil {
			return value
		}
	}
	return string(body)
}

func resolvePayload(value any) (string, []any) {
	for _, strategy := range payloadStrategies {
		if raw, ok := strategy.resolve(value); ok {
			return strategy.name, raw
		}
	}
	return "", nil
}

func rowsProperty(value any) ([]any, bool) {
	obj, ok := value.(*object)
	if !ok {
		return nil, false
	}
	rows, _ := obj.get("rows")
	seq, ok := rows.([]any)
	return seq, ok
}

func sequenceValue(value any) ([]any, bool) {
	seq, ok := value.([]any)
	return seq, ok
}

func listProperty(value any) ([]any, bool) {
	obj, ok := value.(*object)
	if !ok {
		return nil, false
	}
	for _, key := range []string{"ideas", "items", "data"} {
		prop, _ := obj.get(key)
		if seq, ok := prop.([]any); ok {
			return seq, true
		}
	}
	return nil, false
}

func textValue(value any) ([]any, bool) {
	s, ok := value.(string)
	if !ok {
		return nil, false
	}
	return resolveText(s), true
}

func objectValue(value any) ([]any, bool) {
	obj, ok := value.(*object)
	if !ok {
		return nil, false
	}
	if seq, ok := obj.firstSequence(); ok {
		return seq, true
	}
	return []any{obj}, true
}

func scalarValue(value any) ([]any, bool) {
	return []any{value}, true
}

func resolveText(s string) []any {
	original := strings.TrimSpace(s)
	text := stripQuotes(original)
	for _, strategy := range textStrategies {
		if raw, ok := strategy.resolve(text, original); ok {
			return raw
		}
	}
	return describe(original)
}

func strictJSON(text, original string) ([]any, bool) {
	value, err := decodeStrict(text)
	if err != nil {
		return nil, false
	}

	switch v := value.(type) {
	case []any:
		return v, true
	case *object:
		if seq, ok := v.firstSequence(); ok {
			return seq, true
		}
		return []any{v}, true
	default:
		return describe(original), true
	}
}

func bracketSlice(text, original string) ([]any, bool) {
	start := strings.Index(text, "[")
	end := strings.LastIndex(text, "]")
	if start < 0 || end < 0 || start >= end {
		return nil, false
	}

	value, err := decodeStrict(text[start : end+1])
	if err != nil {
		return describe(original), true
	}
	if seq, ok := value.([]any); ok {
		return seq, true
	}
	return describe(original), true
}

func braceSlice(text, original string) ([]any, bool) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end < 0 || start >= end {
		return nil, false
	}

	value, err := decodeStrict(text[start : end+1])
	if err != nil {
		return describe(original), true
	}
	if obj, ok := value.(*object); ok {
		if seq, ok := obj.firstSequence(); ok {
			return seq, true
		}
	}
	return describe(original), true
}

func plainText(text, original string) ([]any, bool) {
	return describe(original), true
}

func decodeStrict(text string) (any, error) {
	data := []byte(text)
	if !json.Valid(data) {
		return nil, fmt.Errorf("invalid JSON")
	}
	return decodeOrdered(data)
}

func describe(text string) []any {
	return []any{&object{keys: []string{"description"}, values: []any{text}}}
}

var quotePairs = map[rune]rune{
	'"':      '"',
	'\'':     '\'',
	'\u201c': '\u201d',
	'\u2018': '\u2019',
}

func stripQuotes(s string) string {
	first, firstSize := utf8.DecodeRuneInString(s)
	last, lastSize := utf8.DecodeLastRuneInString(s)
	if len(s) < firstSize+lastSize {
		return s
	}

	closing, ok := quotePairs[first]
	if !ok || closing != last {
		return s
	}
	return strings.TrimSpace(s[firstSize : len(s)-lastSize])
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
