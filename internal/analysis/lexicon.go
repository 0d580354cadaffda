package analysis

import (
	"strings"
	"unicode"
)

// Scorer maps review text to a signed sentiment score.
type Scorer interface {
	Score(text string) int
}

// LexiconScorer sums word valences from a fixed dictionary. A negator within
// the two preceding tokens flips a word's sign.
type LexiconScorer struct {
	valence   map[string]int
	negators  map[string]bool
	negWindow int
}

// NewLexiconScorer creates a scorer from valence and negators. Keys must be
// lowercase without apostrophes.
func NewLexiconScorer(valence map[string]int, negators []string) *LexiconScorer {
	neg := make(map[string]bool, len(negators))
	for _, n := range negators {
		neg[n] = true
	}
	return &LexiconScorer{valence: valence, negators: neg, negWindow: 2}
}

// DefaultScorer returns the built-in English and German lexicon scorer.
func DefaultScorer() *LexiconScorer {
	return NewLexiconScorer(defaultValence, defaultNegators)
}

func (s *LexiconScorer) Score(text string) int {
	tokens := sentimentTokens(text)
	score := 0
	for i, tok := range tokens {
		v, ok := s.valence[tok]
		if !ok {
			continue
		}
		for j := max(0, i-s.negWindow); j < i; j++ {
			if s.negators[tokens[j]] {
				v = -v
				break
			}
		}
		score += v
	}
	return score
}

// sentimentTokens lowercases text, drops apostrophes so "don't" reads as
// "dont", and splits on anything that is not a letter or digit.
func sentimentTokens(text string) []string {
	text = strings.NewReplacer("'", "", "’", "").Replace(strings.ToLower(text))
	return strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

var defaultNegators = []string{
	"not", "no", "never", "dont", "doesnt", "didnt", "isnt", "wasnt", "arent",
	"werent", "cant", "couldnt", "wont", "wouldnt", "hardly", "without",
	"nicht", "kein", "keine", "keinen", "nie", "niemals", "ohne",
}

// defaultValence is an AFINN-style dictionary in [-5, 5].
var defaultValence = map[string]int{
	// English positive
	"amazing": 4, "awesome": 4, "outstanding": 5, "superb": 5, "excellent": 3,
	"fantastic": 4, "wonderful": 4, "perfect": 3, "great": 3, "good": 3,
	"nice": 3, "lovely": 3, "delicious": 3, "tasty": 2, "fresh": 1,
	"friendly": 2, "helpful": 2, "attentive": 2, "polite": 2, "welcoming": 2,
	"clean": 2, "cozy": 2, "cosy": 2, "recommend": 2, "recommended": 2,
	"love": 3, "loved": 3, "enjoy": 2, "enjoyed": 2, "happy": 3,
	"best": 3, "beautiful": 3, "pleasant": 3, "fast": 1, "quick": 1,
	"fair": 2, "affordable": 2, "worth": 2, "professional": 2, "satisfied": 2,
	"impressed": 3, "favorite": 2, "favourite": 2, "fine": 2, "ok": 1, "okay": 1,
	// English negative
	"bad": -3, "terrible": -3, "horrible": -3, "awful": -3, "worst": -3,
	"poor": -2, "rude": -2, "dirty": -2, "disgusting": -3, "cold": -1,
	"slow": -2, "expensive": -1, "overpriced": -2, "disappointing": -2,
	"disappointed": -2, "disappointment": -2, "unfriendly": -2, "noisy": -1,
	"bland": -2, "stale": -2, "wrong": -2, "broken": -1, "waste": -1,
	"avoid": -1, "hate": -3, "hated": -3, "unacceptable": -2,
	"mediocre": -1, "unprofessional": -2, "ignored": -2, "crowded": -1,
	"problem": -2, "problems": -2, "complaint": -2, "sick": -2, "scam": -3,
	// German positive
	"super": 3, "toll": 3, "gut": 3, "lecker": 3, "hervorragend": 4,
	"ausgezeichnet": 4, "freundlich": 2, "freundliches": 2, "freundliche": 2,
	"sauber": 2, "schnell": 1, "empfehlenswert": 3, "perfekt": 3,
	"wunderbar": 4, "klasse": 3, "prima": 3, "gemütlich": 2, "top": 3,
	"zufrieden": 2, "empfehlen": 2, "schön": 3, "schöne": 3, "nett": 2,
	"nette": 2, "bester": 3, "beste": 3, "gerne": 2, "gern": 2,
	// German negative
	"schlecht": -3, "schlechte": -3, "schlechter": -3, "schrecklich": -3,
	"unfreundlich": -2, "unfreundliche": -2, "langsam": -2, "teuer": -1,
	"dreckig": -2, "schmutzig": -2, "enttäuscht": -2, "enttäuschend": -2,
	"kalt": -1, "laut": -1, "katastrophe": -3, "katastrophal": -3,
	"unverschämt": -3, "miserabel": -3, "furchtbar": -3, "leider": -1,
	"überteuert": -2, "ungenießbar": -3,
}
