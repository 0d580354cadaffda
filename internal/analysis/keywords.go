package analysis

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/sells-group/review-intel/internal/model"
)

// minKeywordLen is the shortest token, in runes, counted as a keyword.
const minKeywordLen = 3

// keywordCounter accumulates token frequencies, remembering first-seen order
// so equal counts sort deterministically.
type keywordCounter struct {
	counts map[string]int
	order  []string
}

func newKeywordCounter() *keywordCounter {
	return &keywordCounter{counts: map[string]int{}}
}

func (k *keywordCounter) add(text string) {
	for _, tok := range keywordTokens(text) {
		if _, seen := k.counts[tok]; !seen {
			k.order = append(k.order, tok)
		}
		k.counts[tok]++
	}
}

// top returns at most n keywords, most frequent first.
func (k *keywordCounter) top(n int) []model.KeywordCount {
	out := make([]model.KeywordCount, 0, len(k.order))
	for _, w := range k.order {
		out = append(out, model.KeywordCount{Word: w, Count: k.counts[w]})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	if len(out) > n {
		out = out[:n]
	}
	return out
}

// keywordTokens lowercases text, splits on non-alphanumerics and drops short
// tokens and stopwords.
func keywordTokens(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	out := fields[:0]
	for _, f := range fields {
		if utf8.RuneCountInString(f) < minKeywordLen || stopwords[f] {
			continue
		}
		out = append(out, f)
	}
	return out
}

var stopwords = func() map[string]bool {
	words := []string{
		// English
		"the", "and", "for", "are", "but", "not", "you", "all", "any", "can",
		"had", "her", "was", "one", "our", "out", "has", "him", "his", "how",
		"its", "may", "new", "now", "old", "see", "two", "way", "who", "did",
		"get", "got", "let", "say", "she", "too", "use", "this", "that", "with",
		"have", "from", "they", "will", "would", "there", "their", "what",
		"about", "which", "when", "were", "been", "than", "them", "then",
		"these", "some", "very", "just", "also", "into", "only", "your",
		"more", "most", "other", "such", "even", "much", "here", "where",
		"while", "because", "being", "could", "should", "does", "doing",
		"over", "again", "after", "before", "each", "both", "same", "own",
		"really", "went", "came", "come", "time", "place",
		// German
		"der", "die", "das", "und", "ist", "sind", "ein", "eine", "einen",
		"einem", "einer", "eines", "nicht", "mit", "auf", "für", "von", "den",
		"dem", "des", "sich", "auch", "aber", "wie", "wir", "ich", "sie",
		"man", "hier", "war", "wird", "werden", "noch", "nur", "sehr", "mal",
		"dass", "als", "bei", "aus", "nach", "zum", "zur", "oder", "wenn",
		"dann", "schon", "immer", "wieder", "alles", "haben", "hat", "hatte",
		"kann", "uns", "mir", "mich", "dort", "etwas", "diese", "dieser",
	}
	m := make(map[string]bool, len(words))
	for _, w := range words {
		m[w] = true
	}
	return m
}()
