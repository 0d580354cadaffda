// Package textclean strips review-page UI noise from scraped review text.
package textclean

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// counterUnits are the nouns that follow profile counters ("12 reviews").
const counterUnits = `(?:reviews?|photos?|rezensionen|rezension|bewertungen|bewertung|fotos?)`

var (
	// "Local Guide · 12 reviews · 3 photos". Only the badge that opens a line
	// and stands alone up to a separator or line end is removed.
	localGuideRe = regexp.MustCompile(`(?im)^[ \t]*local[ \t]+guide[ \t]*(?:[·•|]|$)`)
	// counterRe matches a segment that is nothing but a profile counter.
	counterRe = regexp.MustCompile(`(?i)^\s*\d[\d.,]*\s+` + counterUnits + `\s*$`)
)

// metaSeparators split profile metadata segments ("12 reviews · 3 photos").
const metaSeparators = "·•|"

// uiTokens are button and label captions that show up as their own line in a
// review's visible text. Compared lowercase against whole lines only.
var uiTokens = map[string]bool{
	"more":        true,
	"mehr":        true,
	"like":        true,
	"gefällt mir": true,
	"share":       true,
	"teilen":      true,
	"review":      true,
	"reviews":     true,
	"rezension":   true,
	"rezensionen": true,
	"photo":       true,
	"photos":      true,
	"foto":        true,
	"fotos":       true,
}

// glyphs is the decorative glyph blacklist.
var glyphs = map[rune]bool{
	'·':      true,
	'•':      true,
	'★':      true,
	'☆':      true,
	'⋮':      true,
	'\u200b': true, // zero-width space
	'\u200e': true,
	'\u200f': true,
	'\ufeff': true,
}

// Clean returns s without UI boilerplate, counters, decorative glyphs and
// redundant whitespace. Newlines are collapsed along with other whitespace.
func Clean(s string) string {
	if s == "" {
		return ""
	}
	s = norm.NFC.String(s)
	s = localGuideRe.ReplaceAllString(s, " ")

	lines := strings.Split(s, "\n")
	kept := lines[:0]
	for _, line := range lines {
		trimmed := strings.TrimSpace(stripGlyphs(dropCounters(line)))
		if trimmed == "" || uiTokens[strings.ToLower(trimmed)] {
			continue
		}
		kept = append(kept, trimmed)
	}
	return CollapseWhitespace(strings.Join(kept, " "))
}

// CollapseWhitespace replaces every whitespace run with a single space and trims.
func CollapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// dropCounters removes separator-delimited segments of line that are only a
// counter. Counters inside prose ("I read 200 reviews") are kept.
func dropCounters(line string) string {
	segments := strings.FieldsFunc(line, func(r rune) bool {
		return strings.ContainsRune(metaSeparators, r)
	})
	kept := segments[:0]
	dropped := false
	for _, seg := range segments {
		if counterRe.MatchString(seg) {
			dropped = true
			continue
		}
		kept = append(kept, seg)
	}
	if !dropped {
		return line
	}
	return strings.Join(kept, " ")
}

func stripGlyphs(s string) string {
	return strings.Map(func(r rune) rune {
		if glyphs[r] {
			return ' '
		}
		// Icon fonts render from the private use area.
		if unicode.In(r, unicode.Co) {
			return -1
		}
		return r
	}, s)
}
