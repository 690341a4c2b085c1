// Package slug normalizes display names into URL-safe identifiers.
//
// A slug is the lowercase, ASCII, hyphen-separated form of a name:
// "Café de Flore" → "cafe-de-flore". Slugs are used as the shareable path
// segment for greeting cards and as the uniqueness key in the card store.
package slug

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripMarks decomposes to NFD and removes combining marks, so that
// accented letters collapse to their ASCII base ("é" → "e").
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)))

var (
	disallowedRE = regexp.MustCompile(`[^a-z0-9\s-]`)
	whitespaceRE = regexp.MustCompile(`\s+`)
	hyphenRunRE  = regexp.MustCompile(`-+`)
)

// Make converts an arbitrary display name into its slug form.
//
// The transform is total (any input, including "", yields a defined result)
// and idempotent: Make(Make(s)) == Make(s). It never errors; characters that
// cannot be represented are dropped rather than escaped.
func Make(input string) string {
	s, _, err := transform.String(stripMarks, input)
	if err != nil {
		// Invalid UTF-8 sequences are kept as-is; the character filter
		// below removes anything that survives outside [a-z0-9\s-].
		s = input
	}
	s = strings.ToLower(s)
	s = disallowedRE.ReplaceAllString(s, "")
	s = strings.TrimSpace(s)
	s = whitespaceRE.ReplaceAllString(s, "-")
	s = hyphenRunRE.ReplaceAllString(s, "-")
	return s
}
