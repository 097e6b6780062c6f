// Package roster canonicalizes team names so the same club maps to one
// entity id regardless of which feed or CSV export spelled it.
package roster

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Aliases maps a normalized spelling to its canonical entity id.
type Aliases map[string]string

// Normalize lowercases, strips diacritics, collapses whitespace,
// then resolves through the alias map.
func Normalize(s string, aliases Aliases) string {
	if s == "" {
		return ""
	}
	s = stripDiacritics(s)
	s = strings.ToLower(strings.TrimSpace(s))
	s = collapseWhitespace(s)
	if canonical, ok := aliases[s]; ok {
		return canonical
	}
	return s
}

// EntityID turns a normalized name into a stable identifier.
func EntityID(name string, aliases Aliases) string {
	return strings.ReplaceAll(Normalize(name, aliases), " ", "_")
}

func stripDiacritics(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range norm.NFD.String(s) {
		if !unicode.Is(unicode.Mn, r) { // Mn = Mark, Nonspacing (combining accents)
			b.WriteRune(r)
		}
	}
	return b.String()
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
