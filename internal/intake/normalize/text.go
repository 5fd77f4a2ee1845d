package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

var lower = cases.Lower(language.Und)

// Text applies NFC, trims the value and collapses every whitespace run to a
// single space.
func Text(s string) string {
	return strings.Join(strings.FieldsFunc(norm.NFC.String(s), unicode.IsSpace), " ")
}

// Multiline normalizes each line like Text while keeping paragraph breaks.
// Runs of blank lines collapse to a single blank line.
func Multiline(s string) string {
	s = norm.NFC.String(s)
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")

	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	blank := false
	for _, line := range lines {
		line = Text(line)
		if line == "" {
			blank = true
			continue
		}
		if blank && len(out) > 0 {
			out = append(out, "")
		}
		blank = false
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}

// Email trims and lower-cases an address.
func Email(s string) string {
	return lower.String(Text(s))
}

// Tag lower-cases the value and replaces whitespace runs with a single hyphen.
func Tag(s string) string {
	return strings.Join(strings.FieldsFunc(lower.String(norm.NFC.String(s)), unicode.IsSpace), "-")
}

// Tags normalizes every tag, drops empty ones and removes duplicates while
// keeping the first occurrence order.
func Tags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, raw := range tags {
		tag := Tag(raw)
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}
