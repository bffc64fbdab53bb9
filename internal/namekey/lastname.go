package namekey

import (
	"regexp"
	"strings"
)

var (
	prefixPattern   = regexp.MustCompile(`^(.+:\s*)(.*)$`)
	nicknamePattern = regexp.MustCompile(`\([^)]*\)|"[^"]*"|“[^”]*”`)
)

var honorifics = map[string]struct{}{
	"dr": {}, "mr": {}, "mrs": {}, "ms": {}, "miss": {},
	"hon": {}, "honorable": {}, "judge": {}, "justice": {}, "rev": {},
}

var suffixes = map[string]struct{}{
	"jr": {}, "sr": {}, "ii": {}, "iii": {}, "iv": {}, "v": {},
	"phd": {}, "md": {}, "esq": {}, "cpa": {},
}

var particles = map[string]struct{}{
	"de": {}, "del": {}, "della": {}, "la": {}, "le": {}, "van": {}, "von": {},
	"der": {}, "den": {}, "da": {}, "di": {}, "du": {}, "st": {}, "bin": {}, "al": {},
}

// Parts is the structured reading of a candidate or choice name.
type Parts struct {
	// Prefix is the raw "Category: " segment, including the colon.
	Prefix string
	// Remainder is the raw text following Prefix.
	Remainder string
	Title     string
	First     string
	Middle    string
	Last      string
	Suffix    string
	Nickname  string
}

// Split parses name into its prefix and family-name components. Last is
// empty when the remainder carries no structured family name (for example a
// single word such as "Retain").
func Split(name string) Parts {
	var parts Parts
	name = strings.TrimSpace(name)
	if m := prefixPattern.FindStringSubmatch(name); m != nil {
		parts.Prefix = m[1]
		parts.Remainder = m[2]
	} else {
		parts.Remainder = name
	}
	parseHumanName(strings.TrimSpace(parts.Remainder), &parts)
	return parts
}

// LastNameKey normalizes name into its last-name lookup key.
func LastNameKey(name string) string {
	parts := Split(name)
	text := parts.Last
	if strings.TrimSpace(text) == "" {
		text = parts.Remainder
	}
	return Key(parts.Prefix + text)
}

func parseHumanName(text string, parts *Parts) {
	if text == "" {
		return
	}
	if nick := nicknamePattern.FindString(text); nick != "" {
		parts.Nickname = strings.Trim(nick, `()"“” `)
		text = strings.TrimSpace(nicknamePattern.ReplaceAllString(text, " "))
	}

	var given string
	segments := strings.Split(text, ",")
	for i := range segments {
		segments[i] = strings.TrimSpace(segments[i])
	}
	switch {
	case len(segments) == 1:
		given = segments[0]
	case allSuffixes(segments[1:]):
		given = segments[0]
		parts.Suffix = strings.Join(nonEmpty(segments[1:]), ", ")
	default:
		// "Last, First Middle[, Suffix]"
		given = segments[1]
		parts.Last = segments[0]
		if len(segments) > 2 {
			parts.Suffix = strings.Join(nonEmpty(segments[2:]), ", ")
		}
	}

	tokens := strings.Fields(given)
	if len(tokens) > 2 && isWord(tokens[0], honorifics) {
		parts.Title = tokens[0]
		tokens = tokens[1:]
	}
	if len(tokens) > 2 && isWord(tokens[len(tokens)-1], suffixes) {
		parts.Suffix = joinNonEmpty(tokens[len(tokens)-1], parts.Suffix)
		tokens = tokens[:len(tokens)-1]
	}

	if parts.Last != "" {
		if len(tokens) > 0 {
			parts.First = tokens[0]
			parts.Middle = strings.Join(tokens[1:], " ")
		}
		return
	}
	if len(tokens) < 2 {
		if len(tokens) == 1 {
			parts.First = tokens[0]
		}
		return
	}

	start := len(tokens) - 1
	for start-1 >= 1 && isWord(tokens[start-1], particles) {
		start--
	}
	parts.First = tokens[0]
	parts.Middle = strings.Join(tokens[1:start], " ")
	parts.Last = strings.Join(tokens[start:], " ")
}

func isWord(token string, set map[string]struct{}) bool {
	_, ok := set[strings.Trim(strings.ToLower(token), ".")]
	return ok
}

func allSuffixes(segments []string) bool {
	found := false
	for _, seg := range segments {
		if seg == "" {
			continue
		}
		for _, tok := range strings.Fields(seg) {
			if !isWord(tok, suffixes) {
				return false
			}
		}
		found = true
	}
	return found
}

func nonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

func joinNonEmpty(a, b string) string {
	switch {
	case a == "":
		return b
	case b == "":
		return a
	default:
		return a + ", " + b
	}
}
