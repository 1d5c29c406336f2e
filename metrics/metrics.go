// Package metrics exposes Prometheus instrumentation for the translation
// engine, cache stores and validators.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	Translations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cloudshift_translations_total",
			Help: "Translation requests by cache outcome",
		},
		[]string{"outcome"}, // outcome: hit|miss
	)
	LLMRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cloudshift_llm_requests_total",
			Help: "External model calls by model identifier",
		},
		[]string{"model"},
	)
	CacheOps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cloudshift_cache_ops_total",
			Help: "Cache store operations performed",
		},
		[]string{"op"}, // op: lookup|put|append_edit|clear|stats
	)
	ValidationRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cloudshift_validation_runs_total",
			Help: "Validation runs by validator type and result",
		},
		[]string{"validator", "result"}, // validator: structural|semantic, result: pass|fail|error
	)
	ValidationDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cloudshift_validation_duration_seconds",
			Help:    "Duration of validation runs",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"validator"},
	)
	Errors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cloudshift_errors_total",
			Help: "Errors encountered in components",
		},
		[]string{"component", "type"},
	)
)

func init() {
	prometheus.MustRegister(
		Translations,
		LLMRequests,
		CacheOps,
		ValidationRuns,
		ValidationDurationSeconds,
		Errors,
	)
}

func IncTranslation(outcome string) {
	Translations.WithLabelValues(outcome).Inc()
}

func IncLLMRequest(model string) {
	LLMRequests.WithLabelValues(model).Inc()
}

func IncCacheOp(op string) {
	CacheOps.WithLabelValues(op).Inc()
}

func IncValidationRun(validator, result string) {
	ValidationRuns.WithLabelValues(validator, result).Inc()
}

func ObserveValidationDuration(validator string, d time.Duration) {
	ValidationDurationSeconds.WithLabelValues(validator).Observe(d.Seconds())
}

func IncError(component, typ string) {
	Errors.WithLabelValues(component, typ).Inc()
}

// Handler returns the HTTP handler serving the metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
