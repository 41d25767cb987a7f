// Package metrics exposes the pipeline's Prometheus collectors and the
// Record*/Set*/Increment* helpers each stage calls after doing its
// work, plus a lightweight Timer for stage-duration measurement.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// QueriesProcessedTotal counts every request the pipeline has
	// finished handling, regardless of outcome.
	QueriesProcessedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "queries_processed_total",
		Help: "Total number of natural-language queries processed.",
	})

	// StageDurationSeconds records how long each pipeline stage took.
	StageDurationSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "stage_duration_seconds",
		Help:    "Duration of each pipeline stage in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"stage"})

	// ExtractionMethodTotal counts which extraction path produced the
	// final entity set: regex, llm, or hybrid.
	ExtractionMethodTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "extraction_method_total",
		Help: "Total extractions by method (regex, llm, hybrid).",
	}, []string{"method"})

	// CacheHitsTotal and CacheMissesTotal track embedding cache
	// effectiveness.
	CacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cache_hits_total",
		Help: "Total embedding cache hits.",
	})
	CacheMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cache_misses_total",
		Help: "Total embedding cache misses.",
	})

	// LLMAPICallsTotal and LLMAPIErrorsTotal track gateway provider
	// traffic and failures.
	LLMAPICallsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "llm_api_calls_total",
		Help: "Total LLM provider calls.",
	}, []string{"provider"})
	LLMAPIErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "llm_api_errors_total",
		Help: "Total LLM provider call errors.",
	}, []string{"provider", "error_type"})

	// SearchDegradedTotal counts requests that fell back to a degraded
	// search path (keyword-only, or partial result on a hard timeout).
	SearchDegradedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "search_degraded_total",
		Help: "Total search requests served in a degraded mode.",
	})

	// CircuitBreakerStateGauge reflects gobreaker's state per provider:
	// 0 closed, 1 open, 2 half-open.
	CircuitBreakerStateGauge = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "circuit_breaker_state",
		Help: "Current circuit breaker state per LLM provider (0=closed, 1=open, 2=half-open).",
	}, []string{"provider"})

	// ConcurrentRequestsRunning tracks in-flight pipeline requests.
	ConcurrentRequestsRunning = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "concurrent_requests_running",
		Help: "Number of query pipeline requests currently in flight.",
	})
)

// RecordQueryProcessed increments QueriesProcessedTotal.
func RecordQueryProcessed() {
	QueriesProcessedTotal.Inc()
}

// RecordStageDuration records d against the named stage's histogram.
func RecordStageDuration(stage string, d time.Duration) {
	StageDurationSeconds.WithLabelValues(stage).Observe(d.Seconds())
}

// RecordExtractionMethod increments the counter for method.
func RecordExtractionMethod(method string) {
	ExtractionMethodTotal.WithLabelValues(method).Inc()
}

// RecordCacheHit increments CacheHitsTotal.
func RecordCacheHit() {
	CacheHitsTotal.Inc()
}

// RecordCacheMiss increments CacheMissesTotal.
func RecordCacheMiss() {
	CacheMissesTotal.Inc()
}

// RecordLLMAPICall increments the call counter for provider.
func RecordLLMAPICall(provider string) {
	LLMAPICallsTotal.WithLabelValues(provider).Inc()
}

// RecordLLMAPIError increments the error counter for provider/errorType.
func RecordLLMAPIError(provider, errorType string) {
	LLMAPIErrorsTotal.WithLabelValues(provider, errorType).Inc()
}

// RecordSearchDegraded increments SearchDegradedTotal.
func RecordSearchDegraded() {
	SearchDegradedTotal.Inc()
}

// SetCircuitBreakerState sets the gauge for provider to state.
func SetCircuitBreakerState(provider string, state float64) {
	CircuitBreakerStateGauge.WithLabelValues(provider).Set(state)
}

// IncrementConcurrentRequests increments ConcurrentRequestsRunning.
func IncrementConcurrentRequests() {
	ConcurrentRequestsRunning.Inc()
}

// DecrementConcurrentRequests decrements ConcurrentRequestsRunning.
func DecrementConcurrentRequests() {
	ConcurrentRequestsRunning.Dec()
}

// Timer measures elapsed wall time from construction to Elapsed/Record*.
type Timer struct {
	start time.Time
}

// NewTimer starts a timer.
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// Elapsed returns the time since the timer was created.
func (t *Timer) Elapsed() time.Duration {
	return time.Since(t.start)
}

// RecordStage records the elapsed duration against stage's histogram.
func (t *Timer) RecordStage(stage string) {
	RecordStageDuration(stage, t.Elapsed())
}
