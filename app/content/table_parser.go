package content

import (
	"strings"
)

type headerRule struct {
	matches func(header string) bool
	field   string
}

func containsAny(keywords ...string) func(string) bool {
	return func(header string) bool {
		for _, keyword := range keywords {
			if strings.Contains(header, keyword) {
				return true
			}
		}
		return false
	}
}

// headerRules are evaluated top to bottom and the first match wins, so the
// order here is the precedence between overlapping keywords.
var headerRules = []headerRule{
	{containsAny("fecha", "date"), FieldDate},
	{containsAny("canal", "channel"), FieldChannel},
	{containsAny("formato", "format"), FieldFormat},
	{containsAny("pilar"), FieldPillar},
	{func(h string) bool {
		return containsAny("titulo", "título", "title")(h) && strings.Contains(h, "tema")
	}, FieldTopicTitle},
	{containsAny("titulo", "título", "title"), FieldTitle},
	{containsAny("copy", "texto"), FieldCopy},
	{containsAny("hashtag"), FieldHashtags},
	{containsAny("cta"), FieldCTA},
	{containsAny("recurso", "asset"), FieldAssetRequired},
	{containsAny("duración", "duracion"), FieldDuration},
	{containsAny("instrucciones"), FieldInstructions},
	{containsAny("enlace", "utm"), FieldLinkUTM},
	{containsAny("kpi"), FieldKPI},
	{containsAny("responsable"), FieldOwner},
	{containsAny("estado"), FieldStatus},
	{containsAny("notas"), FieldNotes},
	{containsAny("dia", "día"), FieldDay},
	{containsAny("hook"), FieldHook},
	{containsAny("objetivo"), FieldObjective},
}

type TableParser struct{}

func NewTableParser() *TableParser {
	return &TableParser{}
}

func (p *TableParser) Run(markdown string) []SocialRow {
	rows := []SocialRow{}

	lines := nonBlankLines(markdown)

	start := -1
	for i, line := range lines {
		if strings.Contains(line, "|") {
			start = i
			break
		}
	}
	if start < 0 {
		return rows
	}

	headerIdx := -1
	for i := start; i < len(lines); i++ {
		if !isSeparatorLine(lines[i]) {
			headerIdx = i
			break
		}
	}
	if headerIdx < 0 {
		return rows
	}

	headers := splitCells(lines[headerIdx])
	keys := make([]string, len(headers))
	for i, header := range headers {
		keys[i] = p.fieldFor(strings.ToLower(header))
	}

	for _, line := range lines[headerIdx+1:] {
		if !strings.HasPrefix(line, "|") || isSeparatorLine(line) {
			continue
		}

		values := splitCells(line)
		row := make(SocialRow, len(keys))
		for i, key := range keys {
			if key == "" || i >= len(values) {
				continue
			}
			row[key] = values[i]
		}
		rows = append(rows, row)
	}

	return rows
}

// FieldFor returns the SocialRow key a table header maps to.
func (p *TableParser) FieldFor(header string) string {
	return p.fieldFor(strings.ToLower(strings.TrimSpace(header)))
}

func (p *TableParser) fieldFor(header string) string {
	for _, rule := range headerRules {
		if rule.matches(header) {
			return rule.field
		}
	}
	return header
}

func nonBlankLines(text string) []string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// isSeparatorLine also matches "---" inside a cell value. Tables produced by
// the generation workflows rely on this, so it stays.
func isSeparatorLine(line string) bool {
	return strings.Contains(line, "---")
}

func splitCells(line string) []string {
	line = strings.TrimSpace(line)
	line = strings.TrimPrefix(line, "|")
	line = strings.TrimSuffix(line, "|")

	cells := strings.Split(line, "|")
	for i, cell := range cells {
		cells[i] = strings.TrimSpace(cell)
	}
	return cells
}
