package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/sells-group/review-intel/internal/model"
	"github.com/sells-group/review-intel/internal/textclean"
)

// Rating patterns are tried in order; first valid match wins.
var ratingPatterns = []*regexp.Regexp{
	// "Rated 4 out of 5", "Rated 4.5 out of 5 stars"
	regexp.MustCompile(`(?i)rated\s+(\d+(?:[.,]\d+)?)\s+out\s+of\s+5(?:\s+stars?)?`),
	// "4 stars", "1 star", "4,0 Sterne", "1 Stern"
	regexp.MustCompile(`(?i)(\d+(?:[.,]\d+)?)\s*(?:stars?|sterne?)\b`),
}

var (
	// "2 months ago", "a year ago", "an hour ago"
	agoPattern = `(?:\d+|an?|one)\s+(?:seconds?|minutes?|hours?|days?|weeks?|months?|years?)\s+ago`
	// "vor 2 Monaten", "vor einem Jahr"
	vorPattern = `vor\s+(?:\d+|einer?|einem)\s+(?:sekunden?|minuten?|stunden?|tag(?:en)?|wochen?|monat(?:en)?|jahr(?:en)?)`

	dateRe       = regexp.MustCompile(`(?i)\b(?:` + agoPattern + `|` + vorPattern + `)\b`)
	dateSuffixRe = regexp.MustCompile(`(?i)\s*\b(?:` + agoPattern + `|` + vorPattern + `)\s*$`)
)

// ParseRating returns the first rating in s that lies in (0,5], or nil.
func ParseRating(s string) *float64 {
	if s == "" {
		return nil
	}
	for _, re := range ratingPatterns {
		m := re.FindStringSubmatch(s)
		if m == nil {
			continue
		}
		v, err := strconv.ParseFloat(strings.Replace(m[1], ",", ".", 1), 64)
		if err != nil || v <= 0 || v > model.MaxRating {
			continue
		}
		return &v
	}
	return nil
}

func hasRatingPhrase(s string) bool {
	for _, re := range ratingPatterns {
		if re.MatchString(s) {
			return true
		}
	}
	return false
}

// FindRelativeDate returns the first relative-date phrase in s, or "".
func FindRelativeDate(s string) string {
	return dateRe.FindString(s)
}

// stripDateSuffix removes a trailing relative date glued onto a name line.
func stripDateSuffix(s string) string {
	return strings.TrimSpace(dateSuffixRe.ReplaceAllString(s, ""))
}

// stripMetadata removes every rating and relative-date phrase from s.
func stripMetadata(s string) string {
	for _, re := range ratingPatterns {
		s = re.ReplaceAllString(s, " ")
	}
	return dateRe.ReplaceAllString(s, " ")
}

// isMetadataLine reports whether line holds nothing but rating and date
// phrases (plus glyphs and separators), e.g. "4 stars" or "★★★★ · 2 months ago".
func isMetadataLine(line string) bool {
	if !hasRatingPhrase(line) && FindRelativeDate(line) == "" {
		return false
	}
	residue := textclean.Clean(stripMetadata(line))
	return strings.Trim(residue, " -–|,.:;()") == ""
}
