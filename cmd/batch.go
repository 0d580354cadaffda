package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"strings"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/review-intel/internal/config"
	"github.com/sells-group/review-intel/internal/resilience"
	"github.com/sells-group/review-intel/internal/scrape"
)

var (
	batchFile  string
	batchLimit int
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Scrape reviews for every competitor listed in a YAML file",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		competitors, err := loadCompetitors(batchFile)
		if err != nil {
			return err
		}

		env, err := initEnv(ctx, cfg, "batch")
		if err != nil {
			return err
		}
		defer env.Close()

		if batchLimit > 0 && len(competitors) > batchLimit {
			competitors = competitors[:batchLimit]
		}

		_, err = processBatch(ctx, competitors, batchRunner{
			concurrency: cfg.Batch.MaxConcurrent,
			limiter:     newLimiter(cfg.Batch.RequestsPerMinute),
			breakers:    newBreakers(cfg.Batch),
			scrape:      env.Scraper.ScrapeDetailed,
		})
		return err
	},
}

func init() {
	batchCmd.Flags().StringVar(&batchFile, "file", "competitors.yaml", "YAML file listing competitors")
	batchCmd.Flags().IntVar(&batchLimit, "limit", 0, "max number of competitors to process (0 = all)")
	rootCmd.AddCommand(batchCmd)
}

// competitor is one entry of a batch file.
type competitor struct {
	ID         string `yaml:"id"`
	URL        string `yaml:"url"`
	MaxReviews int    `yaml:"max_reviews"`
}

type batchFileContents struct {
	Competitors []competitor `yaml:"competitors"`
}

// loadCompetitors reads and validates a batch file.
func loadCompetitors(path string) ([]competitor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "read batch file %s", path)
	}

	var f batchFileContents
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, eris.Wrapf(err, "parse batch file %s", path)
	}

	seen := make(map[string]bool, len(f.Competitors))
	out := make([]competitor, 0, len(f.Competitors))
	for i, c := range f.Competitors {
		c.ID = strings.TrimSpace(c.ID)
		c.URL = strings.TrimSpace(c.URL)
		if c.ID == "" || c.URL == "" {
			return nil, eris.Errorf("batch file %s: entry %d needs id and url", path, i)
		}
		if seen[c.ID] {
			return nil, eris.Errorf("batch file %s: duplicate competitor %q", path, c.ID)
		}
		seen[c.ID] = true
		out = append(out, c)
	}
	return out, nil
}

// newLimiter paces scrape starts. A non-positive rate disables pacing.
func newLimiter(perMinute int) *rate.Limiter {
	if perMinute <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), 1)
}

// errBlocked marks a scrape that landed on a bot wall or consent shell.
var errBlocked = errors.New("page blocked")

// newBreakers builds per-host breakers that trip on navigation failures and
// blocked pages.
func newBreakers(c config.BatchConfig) *resilience.HostBreakers {
	return resilience.NewHostBreakers(resilience.Config{
		Threshold: c.BreakerThreshold,
		Cooldown:  time.Duration(c.BreakerCooldownSecs) * time.Second,
		Trips: func(err error) bool {
			return errors.Is(err, scrape.ErrNavigation) || errors.Is(err, errBlocked)
		},
	})
}

// scrapeFunc is the callback signature for scraping one competitor.
type scrapeFunc func(ctx context.Context, competitorID, url string, maxReviews int) (*scrape.Result, error)

// batchRunner holds what processBatch needs besides the competitor list.
type batchRunner struct {
	concurrency int
	limiter     *rate.Limiter
	breakers    *resilience.HostBreakers
	scrape      scrapeFunc
}

// batchSummary counts batch outcomes.
type batchSummary struct {
	Succeeded int64
	Failed    int64
	Rejected  int64
	Persisted int64
}

// processBatch scrapes competitors concurrently. A failed competitor is logged
// and counted; it never aborts the rest of the batch. Competitors whose host
// breaker is open are skipped without opening a browser.
func processBatch(ctx context.Context, competitors []competitor, run batchRunner) (batchSummary, error) {
	if len(competitors) == 0 {
		zap.L().Info("no competitors to scrape")
		return batchSummary{}, nil
	}
	concurrency := max(run.concurrency, 1)
	limiter := run.limiter
	if limiter == nil {
		limiter = newLimiter(0)
	}
	breakers := run.breakers
	if breakers == nil {
		breakers = newBreakers(config.BatchConfig{})
	}

	zap.L().Info("processing batch",
		zap.Int("competitors", len(competitors)),
		zap.Int("concurrency", concurrency),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	var succeeded, failed, rejected, persisted atomic.Int64

	for _, c := range competitors {
		g.Go(func() error {
			log := zap.L().With(zap.String("competitor_id", c.ID))

			if err := limiter.Wait(gctx); err != nil {
				return eris.Wrap(err, "batch pacing")
			}

			res, err := resilience.Do(gctx, breakers.For(c.URL), func(ctx context.Context) (*scrape.Result, error) {
				res, err := run.scrape(ctx, c.ID, c.URL, c.MaxReviews)
				if err == nil && res.Blocked != "" {
					return res, eris.Wrapf(errBlocked, "%s", res.Blocked)
				}
				return res, err
			})
			if res != nil {
				persisted.Add(int64(res.Persisted))
			}
			if errors.Is(err, resilience.ErrOpen) {
				rejected.Add(1)
				log.Warn("host breaker open, skipping", zap.String("url", c.URL))
				return nil
			}
			if err != nil {
				failed.Add(1)
				log.Error("scrape failed", zap.String("url", c.URL), zap.Error(err))
				return nil // don't abort batch on individual failure
			}

			succeeded.Add(1)
			log.Info("scrape complete",
				zap.Int("located", res.Located),
				zap.Int("persisted", res.Persisted),
			)
			return nil
		})
	}

	sum := func() batchSummary {
		return batchSummary{
			Succeeded: succeeded.Load(),
			Failed:    failed.Load(),
			Rejected:  rejected.Load(),
			Persisted: persisted.Load(),
		}
	}

	if err := g.Wait(); err != nil {
		return sum(), eris.Wrap(err, "batch processing")
	}

	out := sum()
	zap.L().Info("batch complete",
		zap.Int64("succeeded", out.Succeeded),
		zap.Int64("failed", out.Failed),
		zap.Int64("rejected", out.Rejected),
		zap.Int64("persisted", out.Persisted),
	)
	return out, nil
}
