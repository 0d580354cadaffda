package model

// Limits applied to the ranked sections of a CompetitorAnalysis.
const (
	MaxKeywords = 15
	MaxSnippets = 5
)

// RatingBuckets lists the distribution keys in display order.
var RatingBuckets = []string{"1", "2", "3", "4", "5"}

// Sentiment is the 3-way classification of a review's text.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNeutral  Sentiment = "neutral"
	SentimentNegative Sentiment = "negative"
)

// ScoredReview is a classified review kept for snippet ranking.
// It only lives for the duration of one analysis.
type ScoredReview struct {
	Text           string
	SentimentScore int
	Rating         float64
}

// SentimentBreakdown holds integer percentages of all reviews per bucket.
// Buckets are rounded independently, so the sum may drift from 100 by one.
type SentimentBreakdown struct {
	Positive int `json:"positive" yaml:"positive"`
	Neutral  int `json:"neutral" yaml:"neutral"`
	Negative int `json:"negative" yaml:"negative"`
}

// KeywordCount is one entry of the keyword frequency table.
type KeywordCount struct {
	Word  string `json:"word" yaml:"word"`
	Count int    `json:"count" yaml:"count"`
}

// CompetitorAnalysis is the aggregate summary over all stored reviews of a
// competitor. It is derived fresh on every call.
type CompetitorAnalysis struct {
	CompetitorID        string             `json:"competitor_id" yaml:"competitor_id"`
	TotalReviews        int                `json:"total_reviews" yaml:"total_reviews"`
	AvgRating           *float64           `json:"avg_rating" yaml:"avg_rating"`
	RatingDistribution  map[string]int     `json:"rating_distribution" yaml:"rating_distribution"`
	SentimentBreakdown  SentimentBreakdown `json:"sentiment_breakdown" yaml:"sentiment_breakdown"`
	TopKeywords         []KeywordCount     `json:"top_keywords" yaml:"top_keywords"`
	TopPositiveSnippets []string           `json:"top_positive_snippets" yaml:"top_positive_snippets"`
	TopNegativeSnippets []string           `json:"top_negative_snippets" yaml:"top_negative_snippets"`
}

// NewCompetitorAnalysis returns the zero-valued analysis for a competitor:
// every bucket present and zero, every list empty, no average.
func NewCompetitorAnalysis(competitorID string) *CompetitorAnalysis {
	dist := make(map[string]int, len(RatingBuckets))
	for _, b := range RatingBuckets {
		dist[b] = 0
	}
	return &CompetitorAnalysis{
		CompetitorID:        competitorID,
		RatingDistribution:  dist,
		TopKeywords:         []KeywordCount{},
		TopPositiveSnippets: []string{},
		TopNegativeSnippets: []string{},
	}
}
