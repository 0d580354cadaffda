package main

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/review-intel/internal/config"
	"github.com/sells-group/review-intel/internal/render"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Store:   config.StoreConfig{Driver: "sqlite", DatabaseURL: filepath.Join(t.TempDir(), "reviews.db")},
		Browser: config.BrowserConfig{Renderer: "static"},
		Scrape:  config.ScrapeConfig{MaxReviews: 10},
		Batch:   config.BatchConfig{MaxConcurrent: 2},
		Server:  config.ServerConfig{Port: 8080},
	}
}

func TestInitEnv_Scrape(t *testing.T) {
	env, err := initEnv(context.Background(), testConfig(t), "scrape")
	require.NoError(t, err)
	defer env.Close()

	assert.NotNil(t, env.Store)
	assert.NotNil(t, env.Scraper)
	assert.NotNil(t, env.Analyzer)
}

func TestInitEnv_AnalyzeSkipsScraper(t *testing.T) {
	env, err := initEnv(context.Background(), testConfig(t), "analyze")
	require.NoError(t, err)
	defer env.Close()

	assert.Nil(t, env.Scraper)
	assert.NotNil(t, env.Analyzer)

	a, err := env.Analyzer.Analyze(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Zero(t, a.TotalReviews)
}

func TestInitEnv_InvalidConfig(t *testing.T) {
	c := testConfig(t)
	c.Browser.Renderer = "lynx"

	env, err := initEnv(context.Background(), c, "scrape")
	require.Error(t, err)
	assert.Nil(t, env)
	assert.Contains(t, err.Error(), "browser.renderer")
}

func TestAppEnv_CloseNilStore(t *testing.T) {
	assert.NotPanics(t, func() { (&appEnv{}).Close() })
}

func TestNewLauncher(t *testing.T) {
	static := newLauncher(config.BrowserConfig{Renderer: "static", UserAgent: "ua"})
	assert.Equal(t, "static", static.Name())
	assert.IsType(t, &render.StaticLauncher{}, static)

	pw := newLauncher(config.BrowserConfig{Renderer: "playwright", Headless: true})
	assert.Equal(t, "playwright", pw.Name())
}

func TestScrapeConfig_MapsDurations(t *testing.T) {
	sc := scrapeConfig(config.ScrapeConfig{
		SettleMS:       3000,
		ActionDelayMS:  250,
		ScrollAttempts: 4,
		ScrollDelayMS:  100,
		ScrollDelta:    800,
		ScrollForMore:  true,
		MaxReviews:     25,
		ItemSelectors:  []string{"div.review"},
	})

	assert.Equal(t, 3*time.Second, sc.Settle)
	assert.Equal(t, 250*time.Millisecond, sc.ActionDelay)
	assert.Equal(t, 100*time.Millisecond, sc.ScrollDelay)
	assert.Equal(t, 4, sc.ScrollAttempts)
	assert.InDelta(t, 800.0, sc.ScrollDelta, 1e-9)
	assert.True(t, sc.ScrollForMore)
	assert.Equal(t, 25, sc.MaxReviews)
	assert.Equal(t, []string{"div.review"}, sc.ItemSelectors)
}

func TestSelectors_Maps(t *testing.T) {
	s := selectors(config.SelectorConfig{Rating: []string{"a"}, Date: []string{"d"}})
	assert.Equal(t, []string{"a"}, s.Rating)
	assert.Equal(t, []string{"d"}, s.Date)
	assert.Empty(t, s.Name)
}
