// Package analysis turns a competitor's stored reviews into a bounded, ranked
// summary of ratings, sentiment, keywords and snippets.
package analysis

import (
	"context"
	"math"
	"sort"
	"strconv"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/review-intel/internal/metrics"
	"github.com/sells-group/review-intel/internal/model"
	"github.com/sells-group/review-intel/internal/store"
	"github.com/sells-group/review-intel/internal/textclean"
)

// Sentiment thresholds: score > positiveAbove is positive, score < negativeBelow
// is negative, anything else neutral.
const (
	positiveAbove = 1
	negativeBelow = -1
)

// Analyzer computes CompetitorAnalysis values from stored reviews.
// It holds no mutable state and is safe for concurrent use.
type Analyzer struct {
	reader store.Reader
	scorer Scorer
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithScorer replaces the default lexicon scorer.
func WithScorer(s Scorer) Option {
	return func(a *Analyzer) {
		if s != nil {
			a.scorer = s
		}
	}
}

// NewAnalyzer creates an Analyzer reading from r.
func NewAnalyzer(r store.Reader, opts ...Option) *Analyzer {
	a := &Analyzer{reader: r, scorer: DefaultScorer()}
	for _, o := range opts {
		o(a)
	}
	return a
}

// Analyze loads every record for competitorID and summarizes it. Only a
// store read failure is returned as an error.
func (a *Analyzer) Analyze(ctx context.Context, competitorID string) (*model.CompetitorAnalysis, error) {
	records, err := a.reader.ListReviews(ctx, competitorID)
	if err != nil {
		metrics.Analyses.WithLabelValues(metrics.ResultError).Inc()
		return nil, eris.Wrapf(err, "analysis: load reviews for %s", competitorID)
	}
	out := a.Summarize(competitorID, records)
	metrics.Analyses.WithLabelValues(metrics.ResultOK).Inc()
	zap.L().Debug("analysis: summarized",
		zap.String("competitor_id", competitorID),
		zap.Int("total_reviews", out.TotalReviews),
	)
	return out, nil
}

// Summarize is the pure aggregation step using the default scorer.
func Summarize(competitorID string, records []model.ReviewRecord) *model.CompetitorAnalysis {
	return (&Analyzer{scorer: DefaultScorer()}).Summarize(competitorID, records)
}

// Summarize aggregates records without touching the store. The same input
// always yields identical output.
func (a *Analyzer) Summarize(competitorID string, records []model.ReviewRecord) *model.CompetitorAnalysis {
	out := model.NewCompetitorAnalysis(competitorID)
	total := len(records)
	out.TotalReviews = total
	if total == 0 {
		return out
	}

	var (
		ratingSum   float64
		ratingCount int
		positive    []model.ScoredReview
		negative    []model.ScoredReview
		neutral     int
		keywords    = newKeywordCounter()
	)

	for _, rec := range records {
		var rating float64
		if rec.Rating != nil {
			rating = *rec.Rating
		}
		if model.ValidRating(rating) {
			ratingSum += rating
			ratingCount++
			out.RatingDistribution[strconv.Itoa(int(math.Round(rating)))]++
		}

		text := textclean.Clean(rec.Text())
		score := 0
		if text != "" {
			score = a.scorer.Score(text)
			keywords.add(text)
		}
		scored := model.ScoredReview{Text: text, SentimentScore: score, Rating: rating}
		switch Classify(score) {
		case model.SentimentPositive:
			positive = append(positive, scored)
		case model.SentimentNegative:
			negative = append(negative, scored)
		default:
			neutral++
		}
	}

	if ratingCount > 0 {
		avg := round2(ratingSum / float64(ratingCount))
		out.AvgRating = &avg
	}

	out.SentimentBreakdown = model.SentimentBreakdown{
		Positive: percent(len(positive), total),
		Neutral:  percent(neutral, total),
		Negative: percent(len(negative), total),
	}
	out.TopKeywords = keywords.top(model.MaxKeywords)

	sort.SliceStable(positive, func(i, j int) bool { return positive[i].SentimentScore > positive[j].SentimentScore })
	sort.SliceStable(negative, func(i, j int) bool { return negative[i].SentimentScore < negative[j].SentimentScore })
	out.TopPositiveSnippets = snippets(positive, model.MaxSnippets)
	out.TopNegativeSnippets = snippets(negative, model.MaxSnippets)
	return out
}

// Classify maps a sentiment score to its bucket.
func Classify(score int) model.Sentiment {
	switch {
	case score > positiveAbove:
		return model.SentimentPositive
	case score < negativeBelow:
		return model.SentimentNegative
	default:
		return model.SentimentNeutral
	}
}

func snippets(reviews []model.ScoredReview, n int) []string {
	out := make([]string, 0, min(len(reviews), n))
	for _, r := range reviews {
		if len(out) == n {
			break
		}
		out = append(out, r.Text)
	}
	return out
}

func percent(count, total int) int {
	return int(math.Round(float64(count) * 100 / float64(total)))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
