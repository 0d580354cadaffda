// Package metrics exposes Prometheus counters for scrapes and analyses.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "reviewintel"

var (
	// Items counts review items by outcome: located|parsed|skipped|failed.
	Items = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "items_total", Help: "Review items seen by the scraper."},
		[]string{"outcome"},
	)
	// Records counts insert attempts by outcome: persisted|failed.
	Records = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "records_total", Help: "Review record inserts."},
		[]string{"outcome"},
	)
	// Scrapes counts scrape calls by result: ok|navigation_error|error.
	Scrapes = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "scrapes_total", Help: "Scrape calls."},
		[]string{"result"},
	)
	// Analyses counts analysis runs by result: ok|error.
	Analyses = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "analyses_total", Help: "Competitor analyses computed."},
		[]string{"result"},
	)
)

// Item outcomes.
const (
	OutcomeLocated   = "located"
	OutcomeParsed    = "parsed"
	OutcomeSkipped   = "skipped"
	OutcomeFailed    = "failed"
	OutcomePersisted = "persisted"
)

// Results.
const (
	ResultOK         = "ok"
	ResultNavigation = "navigation_error"
	ResultError      = "error"
)

// NewRegistry returns a registry holding every collector in this package.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(Items, Records, Scrapes, Analyses)
	return reg
}

// Handler serves reg in the Prometheus exposition format.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

// AddItems adds n to the item counter for outcome. n <= 0 is ignored.
func AddItems(outcome string, n int) {
	if n > 0 {
		Items.WithLabelValues(outcome).Add(float64(n))
	}
}

// AddRecords adds n to the record counter for outcome. n <= 0 is ignored.
func AddRecords(outcome string, n int) {
	if n > 0 {
		Records.WithLabelValues(outcome).Add(float64(n))
	}
}
