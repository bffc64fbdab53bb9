package namekey

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Key normalizes a raw name into its full-name lookup key.
// Empty or symbol-only input yields an empty key.
func Key(name string) string {
	if strings.TrimSpace(name) == "" {
		return ""
	}
	decomposed := stripMarks(name)
	folded := cases.Fold().String(decomposed)
	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		switch {
		case r >= 'a' && r <= 'z':
			b.WriteRune(r)
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		}
	}
	return b.String()
}

// stripMarks decomposes s (NFKD) and drops combining marks so accented
// letters fall back to their base form.
func stripMarks(s string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)))
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}
