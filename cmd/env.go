package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/review-intel/internal/analysis"
	"github.com/sells-group/review-intel/internal/config"
	"github.com/sells-group/review-intel/internal/extract"
	"github.com/sells-group/review-intel/internal/render"
	"github.com/sells-group/review-intel/internal/scrape"
	"github.com/sells-group/review-intel/internal/store"
)

// appEnv holds the components shared by every command.
type appEnv struct {
	Store    store.Store
	Scraper  *scrape.Scraper
	Analyzer *analysis.Analyzer
}

// Close releases the store.
func (e *appEnv) Close() {
	if e.Store == nil {
		return
	}
	if err := e.Store.Close(); err != nil {
		zap.L().Warn("close store", zap.Error(err))
	}
}

// initEnv validates cfg for mode, opens the store and builds the scraper and
// analyzer on top of it.
func initEnv(ctx context.Context, c *config.Config, mode string) (*appEnv, error) {
	if err := c.Validate(mode); err != nil {
		return nil, err
	}

	st, err := store.Open(ctx, c.Store.Driver, c.Store.DatabaseURL, &store.PoolConfig{
		MaxConns: c.Store.MaxConns,
		MinConns: c.Store.MinConns,
	})
	if err != nil {
		return nil, eris.Wrap(err, "init store")
	}

	env := &appEnv{
		Store:    st,
		Analyzer: analysis.NewAnalyzer(st),
	}
	if mode != "analyze" {
		env.Scraper = scrape.New(newLauncher(c.Browser), extract.NewParser(selectors(c.Scrape.Selectors)), st, scrapeConfig(c.Scrape))
	}

	zap.L().Debug("environment ready",
		zap.String("mode", mode),
		zap.String("store", c.Store.Driver),
		zap.String("renderer", c.Browser.Renderer),
	)
	return env, nil
}

// newLauncher picks the page renderer named in the browser config.
func newLauncher(c config.BrowserConfig) render.Launcher {
	if c.Renderer == "static" {
		var opts []render.StaticOption
		if c.UserAgent != "" {
			opts = append(opts, render.WithUserAgent(c.UserAgent))
		}
		return render.NewStaticLauncher(opts...)
	}
	return render.NewPlaywrightLauncher(render.PlaywrightOptions{
		Headless:          c.Headless,
		NavigationTimeout: time.Duration(c.NavigationTimeoutSecs) * time.Second,
		ActionTimeout:     time.Duration(c.ActionTimeoutSecs) * time.Second,
		UserAgent:         c.UserAgent,
		Locale:            c.Locale,
	})
}

func scrapeConfig(c config.ScrapeConfig) scrape.Config {
	return scrape.Config{
		Settle:         c.Settle(),
		ActionDelay:    c.ActionDelay(),
		ScrollAttempts: c.ScrollAttempts,
		ScrollDelay:    c.ScrollDelay(),
		ScrollDelta:    c.ScrollDelta,
		StaleScrolls:   c.StaleScrolls,
		ScrollForMore:  c.ScrollForMore,
		MaxReviews:     c.MaxReviews,
		ItemSelectors:  c.ItemSelectors,
		FeedSelectors:  c.FeedSelectors,
	}
}

func selectors(c config.SelectorConfig) extract.Selectors {
	return extract.Selectors{
		Rating: c.Rating,
		Name:   c.Name,
		Text:   c.Text,
		Date:   c.Date,
	}
}
