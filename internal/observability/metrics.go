// Package observability holds the Prometheus metrics of the selector service.
package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	OutcomeMatched  = "matched"
	OutcomeFallback = "fallback"
	OutcomeNone     = "none"
	OutcomeError    = "error"
)

var (
	SearchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chiller_searches_total",
			Help: "Searches by outcome",
		},
		[]string{"outcome"},
	)

	SearchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "chiller_search_duration_seconds",
			Help:    "Time taken to answer a search",
			Buckets: prometheus.DefBuckets,
		},
	)

	ToleranceUsed = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "chiller_search_tolerance_ratio",
			Help:    "Capacity tolerance that produced the first candidates",
			Buckets: []float64{0.1, 0.125, 0.15, 0.175, 0.2, 0.25},
		},
	)

	ImportRecordsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chiller_import_records_total",
			Help: "Records handled by bulk import",
		},
		[]string{"status"},
	)

	ParseWarningsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chiller_parse_warnings_total",
			Help: "Warnings raised while parsing pasted tables",
		},
	)
)

// RecordSearch counts one finished search.
func RecordSearch(outcome string, tolerance float64, duration time.Duration) {
	SearchesTotal.WithLabelValues(outcome).Inc()
	SearchDuration.Observe(duration.Seconds())
	if outcome == OutcomeMatched {
		ToleranceUsed.Observe(tolerance)
	}
}

// RecordImport counts imported, skipped and failed records.
func RecordImport(imported, skipped, failed int) {
	ImportRecordsTotal.WithLabelValues("imported").Add(float64(imported))
	ImportRecordsTotal.WithLabelValues("skipped").Add(float64(skipped))
	ImportRecordsTotal.WithLabelValues("failed").Add(float64(failed))
}

func RecordParseWarnings(n int) {
	ParseWarningsTotal.Add(float64(n))
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
