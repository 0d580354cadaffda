package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/sells-group/review-intel/internal/metrics"
	"github.com/sells-group/review-intel/internal/model"
	"github.com/sells-group/review-intel/internal/scrape"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API for scrapes and analyses",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initEnv(ctx, cfg, "serve")
		if err != nil {
			return err
		}
		defer env.Close()

		h := buildMux(api{
			scraper:       env.Scraper,
			analyzer:      env.Analyzer,
			counter:       env.Store,
			registry:      metrics.NewRegistry(),
			origins:       cfg.Server.AllowedOrigins,
			scrapeTimeout: time.Duration(cfg.Server.ScrapeTimeout) * time.Second,
			maxConcurrent: cfg.Batch.MaxConcurrent,
		})
		return startServer(ctx, h, resolvePort(servePort, cfg.Server.Port))
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}

type scraper interface {
	ScrapeDetailed(ctx context.Context, competitorID, url string, maxReviews int) (*scrape.Result, error)
}

type analyzer interface {
	Analyze(ctx context.Context, competitorID string) (*model.CompetitorAnalysis, error)
}

type reviewCounter interface {
	CountReviews(ctx context.Context, competitorID string) (int, error)
}

// api bundles the dependencies of the HTTP handlers.
type api struct {
	scraper       scraper
	analyzer      analyzer
	counter       reviewCounter
	registry      *prometheus.Registry
	origins       []string
	scrapeTimeout time.Duration
	maxConcurrent int
}

// buildMux wires the routes. Scrapes beyond maxConcurrent in flight are
// rejected with 429 instead of queueing a browser per request.
func buildMux(a api) http.Handler {
	if a.maxConcurrent < 1 {
		a.maxConcurrent = 1
	}
	if len(a.origins) == 0 {
		a.origins = []string{"*"}
	}
	sem := semaphore.NewWeighted(int64(a.maxConcurrent))

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: a.origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	if a.registry != nil {
		r.Handle("/metrics", metrics.Handler(a.registry))
	}

	r.Route("/competitors/{id}", func(r chi.Router) {
		r.Post("/scrape", func(w http.ResponseWriter, r *http.Request) {
			id := chi.URLParam(r, "id")
			var req struct {
				URL        string `json:"url"`
				MaxReviews int    `json:"max_reviews"`
			}
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				writeError(w, http.StatusBadRequest, "invalid request body")
				return
			}
			req.URL = strings.TrimSpace(req.URL)
			if req.URL == "" {
				writeError(w, http.StatusBadRequest, "url is required")
				return
			}
			if a.scraper == nil {
				writeError(w, http.StatusServiceUnavailable, "scraper not configured")
				return
			}
			if !sem.TryAcquire(1) {
				writeError(w, http.StatusTooManyRequests, "too many scrapes in flight")
				return
			}
			defer sem.Release(1)

			sctx := r.Context()
			if a.scrapeTimeout > 0 {
				var cancel context.CancelFunc
				sctx, cancel = context.WithTimeout(sctx, a.scrapeTimeout)
				defer cancel()
			}

			res, err := a.scraper.ScrapeDetailed(sctx, id, req.URL, req.MaxReviews)
			if err != nil {
				zap.L().Error("scrape request failed",
					zap.String("competitor_id", id),
					zap.String("url", req.URL),
					zap.Error(err),
				)
				status := http.StatusInternalServerError
				if errors.Is(err, scrape.ErrNavigation) {
					status = http.StatusBadGateway
				}
				writeError(w, status, err.Error())
				return
			}
			writeJSON(w, http.StatusOK, res)
		})

		r.Get("/analysis", func(w http.ResponseWriter, r *http.Request) {
			id := chi.URLParam(r, "id")
			if a.analyzer == nil {
				writeError(w, http.StatusServiceUnavailable, "analyzer not configured")
				return
			}
			out, err := a.analyzer.Analyze(r.Context(), id)
			if err != nil {
				zap.L().Error("analysis request failed", zap.String("competitor_id", id), zap.Error(err))
				writeError(w, http.StatusInternalServerError, "analysis failed")
				return
			}
			writeJSON(w, http.StatusOK, out)
		})

		r.Get("/reviews/count", func(w http.ResponseWriter, r *http.Request) {
			id := chi.URLParam(r, "id")
			if a.counter == nil {
				writeError(w, http.StatusServiceUnavailable, "store not configured")
				return
			}
			n, err := a.counter.CountReviews(r.Context(), id)
			if err != nil {
				zap.L().Error("count request failed", zap.String("competitor_id", id), zap.Error(err))
				writeError(w, http.StatusInternalServerError, "count failed")
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{"competitor_id": id, "count": n})
		})
	})

	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("encode response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// resolvePort prefers the flag value over the configured port.
func resolvePort(flag, configured int) int {
	if flag != 0 {
		return flag
	}
	return configured
}

// startServer serves h until ctx is cancelled, then shuts down gracefully.
func startServer(ctx context.Context, h http.Handler, port int) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		zap.L().Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	zap.L().Info("starting server", zap.Int("port", port))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return eris.Wrap(err, "server listen")
	}
	return nil
}
