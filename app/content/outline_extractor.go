package content

import (
	"cmp"
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	DefaultOutlineLookahead   = 20
	DefaultOutlinePlaceholder = "Título del artículo"

	instructionMarker = "Instrucción:"
)

var faqPattern = regexp.MustCompile(`FAQ\s*\d+\s*:`)

var headingMarkers = []struct {
	marker string
	level  OutlineLevel
}{
	{"H1:", LevelH1},
	{"H2:", LevelH2},
	{"H3:", LevelH3},
}

type OutlineOptions struct {
	Lookahead   int    // lines scanned after a heading for its instruction block
	Placeholder string // H1 title of the default outline when no title is given
}

type OutlineExtractor struct {
	options OutlineOptions
}

func NewOutlineExtractor(options OutlineOptions) *OutlineExtractor {
	if options.Lookahead <= 0 {
		options.Lookahead = DefaultOutlineLookahead
	}
	if options.Placeholder == "" {
		options.Placeholder = DefaultOutlinePlaceholder
	}
	return &OutlineExtractor{options: options}
}

func (e *OutlineExtractor) Run(text, title string) []OutlineItem {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")

	var outline []OutlineItem
	for i, line := range lines {
		level, heading, ok := parseHeading(line)
		if !ok {
			continue
		}
		outline = append(outline, OutlineItem{
			Level:       level,
			Title:       heading,
			Instruction: e.extractInstruction(lines, i+1),
		})
	}

	if len(outline) == 0 {
		return e.defaultOutline(title)
	}
	return outline
}

func (e *OutlineExtractor) defaultOutline(title string) []OutlineItem {
	return []OutlineItem{
		{Level: LevelH1, Title: cmp.Or(strings.TrimSpace(title), e.options.Placeholder)},
		{Level: LevelH2, Title: "Introducción"},
		{Level: LevelH2, Title: "Conclusión"},
	}
}

// extractInstruction looks for an "Instrucción:" block in the lines that
// follow a heading, up to the lookahead window, the next heading or a rule.
func (e *OutlineExtractor) extractInstruction(lines []string, from int) string {
	end := min(from+e.options.Lookahead, len(lines))

	var b strings.Builder
	found := false
	for i := from; i < end; i++ {
		line := lines[i]
		trimmed := strings.TrimSpace(line)

		if isHeadingLine(trimmed) || isHorizontalRule(trimmed) {
			break
		}

		if !found {
			rest, ok := instructionStart(trimmed)
			if !ok {
				continue
			}
			found = true
			b.WriteString(rest)
			continue
		}

		if trimmed == "" {
			continue
		}
		if b.Len() > 0 {
			if isIndented(line) {
				b.WriteString("\n")
			} else {
				b.WriteString(" ")
			}
		}
		b.WriteString(trimmed)
	}

	instruction := strings.TrimSpace(b.String())
	if r, size := utf8.DecodeRuneInString(instruction); r == '*' || r == '•' {
		instruction = strings.TrimSpace(instruction[size:])
	}
	return instruction
}

func parseHeading(line string) (OutlineLevel, string, bool) {
	trimmed := strings.TrimSpace(line)

	for _, h := range headingMarkers {
		if idx := strings.Index(trimmed, h.marker); idx >= 0 {
			title := strings.TrimLeft(trimmed[idx+len(h.marker):], "*# \t")
			title = strings.TrimRight(title, "* \t")
			return h.level, strings.TrimSpace(title), true
		}
	}

	if faqPattern.MatchString(trimmed) {
		return LevelFAQ, trimmed, true
	}

	return "", "", false
}

func isHeadingLine(trimmed string) bool {
	_, _, ok := parseHeading(trimmed)
	return ok
}

// instructionStart matches "• Instrucción: ...", "– Instrucción: ...",
// "* Instrucción: ..." and a bare "Instrucción:" line, returning the text
// after the marker.
func instructionStart(trimmed string) (string, bool) {
	if trimmed == instructionMarker {
		return "", true
	}

	for _, bullet := range []string{"•", "–", "*"} {
		if !strings.HasPrefix(trimmed, bullet) {
			continue
		}
		rest := strings.TrimSpace(strings.TrimPrefix(trimmed, bullet))
		if strings.HasPrefix(rest, instructionMarker) {
			return strings.TrimSpace(strings.TrimPrefix(rest, instructionMarker)), true
		}
	}

	return "", false
}

func isHorizontalRule(trimmed string) bool {
	if utf8.RuneCountInString(trimmed) < 3 {
		return false
	}
	for _, r := range trimmed {
		switch r {
		case '-', '_', '=', '*', '─', '–', '—', '━', '═':
		default:
			return false
		}
	}
	return true
}

func isIndented(line string) bool {
	return strings.HasPrefix(line, " ") || strings.HasPrefix(line, "\t")
}
