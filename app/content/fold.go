package content

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// foldKey makes object keys diacritic- and case-insensitive:
// "Título" and "titulo" fold to the same key.
func foldKey(key string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)))
	folded, _, err := transform.String(t, key)
	if err != nil {
		folded = key
	}
	return strings.ToLower(strings.TrimSpace(folded))
}
