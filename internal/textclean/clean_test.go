package textclean

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClean(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"whitespace only", "  \n\t ", ""},
		{"local guide header", "Local Guide · 12 reviews · 3 photos\nGreat place!!", "Great place!!"},
		{"local guide no counters", "Local Guide\nNice staff", "Nice staff"},
		{"bare counters", "8 reviews · 1 photo\nTasty", "Tasty"},
		{"german counters", "Local Guide · 120 Rezensionen · 45 Fotos\nSehr lecker", "Sehr lecker"},
		{"local guide in prose kept", "Our local guide Maria recommended it", "Our local guide Maria recommended it"},
		{"local guide later in line kept", "Ask for the Local Guide tour", "Ask for the Local Guide tour"},
		{"counter in prose kept", "I read 200 reviews before booking", "I read 200 reviews before booking"},
		{"counter line", "5 reviews\nSolid lunch", "Solid lunch"},
		{"counter after name", "Jane Doe · 8 reviews\nGood", "Jane Doe Good"},
		{"ui token lines", "Lovely terrace\nMore\nLike\nShare", "Lovely terrace"},
		{"ui tokens inside prose kept", "I like the more relaxed vibe", "I like the more relaxed vibe"},
		{"german ui lines", "Tolles Essen\nMehr\nGefällt mir\nTeilen", "Tolles Essen"},
		{"glyphs", "★★★★☆ Good • value ⋮", "Good value"},
		{"private use icons", "\ue838 Friendly \ue5d4", "Friendly"},
		{"collapse whitespace", "  too   many\n\n spaces  ", "too many spaces"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Clean(tt.in))
		})
	}
}

func TestClean_Idempotent(t *testing.T) {
	t.Parallel()

	in := "Local Guide · 3 reviews\nPrices are fair ★\nMore"
	once := Clean(in)
	assert.Equal(t, once, Clean(once))
}

func TestClean_NormalizesComposedForms(t *testing.T) {
	t.Parallel()

	// "Gefällt mir" with a decomposed umlaut still counts as a UI line.
	decomposed := "Prima\nGefa\u0308llt mir"
	assert.Equal(t, "Prima", Clean(decomposed))
}

func TestCollapseWhitespace(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "a b c", CollapseWhitespace(" a\n b \tc "))
	assert.Equal(t, "", CollapseWhitespace("   "))
}
