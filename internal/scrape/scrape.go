// Package scrape drives one rendered review page from navigation to persisted
// review records.
package scrape

import (
	"context"
	"errors"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/review-intel/internal/extract"
	"github.com/sells-group/review-intel/internal/metrics"
	"github.com/sells-group/review-intel/internal/model"
	"github.com/sells-group/review-intel/internal/render"
	"github.com/sells-group/review-intel/internal/store"
)

// ErrNavigation is returned when the target page cannot be loaded.
var ErrNavigation = eris.New("scrape: navigation failed")

// Phase names logged as a scrape progresses.
const (
	PhaseInit              = "init"
	PhasePageLoaded        = "page_loaded"
	PhaseConsentResolved   = "consent_resolved"
	PhaseReviewsTabEnsured = "reviews_tab_ensured"
	PhaseItemsLocated      = "items_located"
	PhaseIterating         = "iterating"
	PhasePersisted         = "persisted"
	PhaseClosed            = "closed"
	PhaseFailed            = "failed"
)

// DefaultMaxReviews caps a scrape when the caller passes maxReviews <= 0.
const DefaultMaxReviews = 50

// Config tunes page handling. Zero values are replaced by DefaultConfig's.
type Config struct {
	Settle         time.Duration
	ActionDelay    time.Duration
	ScrollAttempts int
	ScrollDelay    time.Duration
	ScrollDelta    float64
	StaleScrolls   int
	ScrollForMore  bool
	MaxReviews     int
	ItemSelectors  []string
	FeedSelectors  []string
}

// DefaultConfig returns timings and selectors for Google Maps place pages.
func DefaultConfig() Config {
	return Config{
		Settle:         3 * time.Second,
		ActionDelay:    time.Second,
		ScrollAttempts: 10,
		ScrollDelay:    1500 * time.Millisecond,
		ScrollDelta:    2000,
		StaleScrolls:   2,
		MaxReviews:     DefaultMaxReviews,
		ItemSelectors:  []string{"div.jftiEf", "[data-review-id]"},
		FeedSelectors:  []string{"div.m6QErb.DxyBCb", `div[role="feed"]`, "div.m6QErb"},
	}
}

func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.Settle <= 0 {
		c.Settle = def.Settle
	}
	if c.ActionDelay <= 0 {
		c.ActionDelay = def.ActionDelay
	}
	if c.ScrollAttempts <= 0 {
		c.ScrollAttempts = def.ScrollAttempts
	}
	if c.ScrollDelay <= 0 {
		c.ScrollDelay = def.ScrollDelay
	}
	if c.ScrollDelta <= 0 {
		c.ScrollDelta = def.ScrollDelta
	}
	if c.StaleScrolls <= 0 {
		c.StaleScrolls = def.StaleScrolls
	}
	if c.MaxReviews <= 0 {
		c.MaxReviews = def.MaxReviews
	}
	if len(c.ItemSelectors) == 0 {
		c.ItemSelectors = def.ItemSelectors
	}
	if len(c.FeedSelectors) == 0 {
		c.FeedSelectors = def.FeedSelectors
	}
	return c
}

// Result summarizes one scrape call.
type Result struct {
	CompetitorID     string `json:"competitor_id"`
	URL              string `json:"url"`
	Located          int    `json:"located"`
	Parsed           int    `json:"parsed"`
	Skipped          int    `json:"skipped"`
	Failed           int    `json:"failed"`
	Persisted        int    `json:"persisted"`
	InsertFailed     int    `json:"insert_failed"`
	ConsentDismissed bool   `json:"consent_dismissed"`
	ReviewsTab       bool   `json:"reviews_tab"`
	Blocked          string `json:"blocked,omitempty"`
}

// Scraper loads review pages and persists what the parser recovers.
// It is safe for concurrent use; every call opens its own session.
type Scraper struct {
	launcher render.Launcher
	parser   *extract.Parser
	writer   store.Writer
	cfg      Config
}

// New creates a Scraper.
func New(launcher render.Launcher, parser *extract.Parser, writer store.Writer, cfg Config) *Scraper {
	return &Scraper{
		launcher: launcher,
		parser:   parser,
		writer:   writer,
		cfg:      cfg.withDefaults(),
	}
}

// Scrape returns the number of records actually persisted for competitorID.
// maxReviews <= 0 selects the configured default.
func (s *Scraper) Scrape(ctx context.Context, competitorID, targetURL string, maxReviews int) (int, error) {
	res, err := s.ScrapeDetailed(ctx, competitorID, targetURL, maxReviews)
	return res.Persisted, err
}

// ScrapeDetailed behaves like Scrape and reports per-stage counts. The
// returned Result is never nil, even on error.
func (s *Scraper) ScrapeDetailed(ctx context.Context, competitorID, targetURL string, maxReviews int) (res *Result, err error) {
	if maxReviews <= 0 {
		maxReviews = s.cfg.MaxReviews
	}
	res = &Result{CompetitorID: competitorID, URL: targetURL}
	log := zap.L().With(
		zap.String("competitor_id", competitorID),
		zap.String("url", targetURL),
		zap.String("renderer", s.launcher.Name()),
	)
	log.Info("scrape: phase", zap.String("phase", PhaseInit), zap.Int("max_reviews", maxReviews))

	defer func() {
		metrics.Scrapes.WithLabelValues(scrapeResult(err)).Inc()
	}()

	sess, err := s.launcher.Open(ctx)
	if err != nil {
		log.Error("scrape: phase", zap.String("phase", PhaseFailed), zap.Error(err))
		return res, eris.Wrap(err, "scrape: open session")
	}
	defer func() {
		if cerr := sess.Close(); cerr != nil {
			log.Warn("scrape: close session", zap.Error(cerr))
		}
		log.Info("scrape: phase", zap.String("phase", PhaseClosed))
	}()

	if err := sess.Navigate(ctx, targetURL); err != nil {
		log.Error("scrape: phase", zap.String("phase", PhaseFailed), zap.Error(err))
		return res, eris.Wrapf(ErrNavigation, "navigate %s: %v", targetURL, err)
	}
	if err := sess.Wait(ctx, s.cfg.Settle); err != nil {
		return res, eris.Wrap(err, "scrape: settle")
	}
	log.Info("scrape: phase", zap.String("phase", PhasePageLoaded))

	res.Blocked = s.detectBlock(ctx, sess, log)

	res.ConsentDismissed = s.resolveConsent(ctx, sess, log)
	log.Info("scrape: phase", zap.String("phase", PhaseConsentResolved), zap.Bool("dismissed", res.ConsentDismissed))

	res.ReviewsTab = s.ensureReviewsTab(ctx, sess, log)
	log.Info("scrape: phase", zap.String("phase", PhaseReviewsTabEnsured), zap.Bool("clicked", res.ReviewsTab))

	items := s.locateItems(ctx, sess, maxReviews, log)
	res.Located = len(items)
	metrics.AddItems(metrics.OutcomeLocated, len(items))
	log.Info("scrape: phase", zap.String("phase", PhaseItemsLocated), zap.Int("items", len(items)))

	if len(items) > maxReviews {
		items = items[:maxReviews]
	}

	log.Info("scrape: phase", zap.String("phase", PhaseIterating), zap.Int("items", len(items)))
	if err := s.iterate(ctx, competitorID, items, res, log); err != nil {
		return res, err
	}

	log.Info("scrape: phase", zap.String("phase", PhasePersisted),
		zap.Int("persisted", res.Persisted),
		zap.Int("parsed", res.Parsed),
		zap.Int("skipped", res.Skipped),
		zap.Int("failed", res.Failed),
		zap.Int("insert_failed", res.InsertFailed),
	)
	return res, nil
}

// iterate parses and stores items in source order. One bad item never stops
// the batch; only context cancellation does.
func (s *Scraper) iterate(ctx context.Context, competitorID string, items []render.Element, res *Result, log *zap.Logger) error {
	for i, el := range items {
		if err := ctx.Err(); err != nil {
			return eris.Wrap(err, "scrape: cancelled")
		}

		rec, err := s.parseItem(ctx, el)
		switch {
		case errors.Is(err, extract.ErrEmptyItem), errors.Is(err, extract.ErrNoFields):
			res.Skipped++
			metrics.AddItems(metrics.OutcomeSkipped, 1)
			log.Debug("scrape: item skipped", zap.Int("index", i), zap.Error(err))
			continue
		case err != nil:
			res.Failed++
			metrics.AddItems(metrics.OutcomeFailed, 1)
			log.Warn("scrape: item failed", zap.Int("index", i), zap.Error(err))
			continue
		}
		res.Parsed++
		metrics.AddItems(metrics.OutcomeParsed, 1)

		if err := s.writer.InsertReview(ctx, competitorID, *rec); err != nil {
			res.InsertFailed++
			metrics.AddRecords(metrics.OutcomeFailed, 1)
			log.Warn("scrape: insert review", zap.Int("index", i), zap.Error(err))
			continue
		}
		res.Persisted++
		metrics.AddRecords(metrics.OutcomePersisted, 1)
	}
	return nil
}

// parseItem runs the parser inside a failure boundary that turns a panic into
// an item error.
func (s *Scraper) parseItem(ctx context.Context, el render.Element) (rec *model.ReviewRecord, err error) {
	defer func() {
		if r := recover(); r != nil {
			rec = nil
			err = eris.Errorf("scrape: item panic: %v", r)
		}
	}()
	return s.parser.Parse(ctx, el)
}

func (s *Scraper) detectBlock(ctx context.Context, sess render.Session, log *zap.Logger) string {
	content, err := sess.Content(ctx)
	if err != nil {
		log.Debug("scrape: read page content", zap.Error(err))
		return ""
	}
	if blocked, bt := render.DetectBlockContent(content); blocked {
		log.Warn("scrape: page looks blocked", zap.String("block_type", string(bt)))
		return string(bt)
	}
	return ""
}

func scrapeResult(err error) string {
	switch {
	case err == nil:
		return metrics.ResultOK
	case errors.Is(err, ErrNavigation):
		return metrics.ResultNavigation
	default:
		return metrics.ResultError
	}
}
