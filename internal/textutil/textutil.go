// Package textutil provides text normalization helpers used to build
// search keys and URL slugs. Geography records are searched by a
// lowercased, diacritic-free key so that "São Paulo" matches "sao paulo",
// and slugs follow the same normalization with hyphen separators.
package textutil

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripMarks decomposes to NFD, drops combining marks (the accents), and
// recomposes to NFC. Invalid input falls through unchanged.
var stripMarks = transform.Chain(
	norm.NFD,
	runes.Remove(runes.In(unicode.Mn)),
	norm.NFC,
)

// ClearText lowercases s and strips diacritics and punctuation, collapsing
// runs of whitespace to a single space. It is used to compute the
// search_name column of geography records.
func ClearText(s string) string {
	out, _, err := transform.String(stripMarks, s)
	if err != nil {
		out = s
	}

	var b strings.Builder
	b.Grow(len(out))
	lastSpace := true // swallow leading whitespace
	for _, r := range strings.ToLower(out) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastSpace = false
		case unicode.IsSpace(r):
			if !lastSpace {
				b.WriteByte(' ')
				lastSpace = true
			}
		default:
			// punctuation and symbols are dropped
		}
	}
	return strings.TrimRight(b.String(), " ")
}

// Slugify converts s into a URL-safe slug: ClearText normalization with
// hyphens between words. An input with no usable characters yields "".
func Slugify(s string) string {
	return strings.ReplaceAll(ClearText(s), " ", "-")
}
