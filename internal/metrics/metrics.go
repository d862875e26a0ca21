// Package metrics exposes Prometheus instrumentation for catalog traffic,
// the query cache and user-data mutations.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Catalog Metrics
	CatalogRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mediadeck_catalog_requests_total",
			Help: "Total number of catalog API requests",
		},
		[]string{"provider", "outcome"}, // outcome: "ok", "http_error", "transport_error", "breaker_open"
	)

	CatalogRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mediadeck_catalog_request_duration_seconds",
			Help:    "Catalog API request duration in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"provider"},
	)

	CatalogBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "mediadeck_catalog_breaker_state",
			Help: "Circuit breaker state per provider (0=closed, 1=half-open, 2=open)",
		},
		[]string{"provider"},
	)

	CatalogRateLimitWaits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mediadeck_catalog_rate_limit_waits_total",
			Help: "Total number of catalog requests delayed by the rate limiter",
		},
		[]string{"provider"},
	)

	// Query Cache Metrics
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mediadeck_cache_hits_total",
			Help: "Total number of query cache hits",
		},
		[]string{"bucket"},
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mediadeck_cache_misses_total",
			Help: "Total number of query cache misses",
		},
		[]string{"bucket"},
	)

	CacheInvalidations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mediadeck_cache_invalidations_total",
			Help: "Total number of query cache invalidations",
		},
		[]string{"bucket"},
	)

	// Mutation Metrics
	MutationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mediadeck_mutations_total",
			Help: "Total number of user-data mutations",
		},
		[]string{"operation", "outcome"}, // outcome: "ok", "conflict", "not_found", "error"
	)

	// Realtime Metrics
	RealtimeEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mediadeck_realtime_events_total",
			Help: "Total number of realtime change events received",
		},
		[]string{"table"},
	)
)

// RecordCatalogRequest records one catalog round-trip
func RecordCatalogRequest(provider, outcome string, duration time.Duration) {
	CatalogRequestsTotal.WithLabelValues(provider, outcome).Inc()
	CatalogRequestDuration.WithLabelValues(provider).Observe(duration.Seconds())
}

// RecordBreakerState records a circuit breaker transition
func RecordBreakerState(provider string, state int) {
	CatalogBreakerState.WithLabelValues(provider).Set(float64(state))
}

// RecordRateLimitWait records a request that had to wait for a token
func RecordRateLimitWait(provider string) {
	CatalogRateLimitWaits.WithLabelValues(provider).Inc()
}

// RecordCacheLookup records a cache hit or miss
func RecordCacheLookup(bucket string, hit bool) {
	if hit {
		CacheHits.WithLabelValues(bucket).Inc()
		return
	}
	CacheMisses.WithLabelValues(bucket).Inc()
}

// RecordCacheInvalidation records a key or prefix invalidation
func RecordCacheInvalidation(bucket string) {
	CacheInvalidations.WithLabelValues(bucket).Inc()
}

// RecordMutation records the outcome of a user-data mutation
func RecordMutation(operation, outcome string) {
	MutationsTotal.WithLabelValues(operation, outcome).Inc()
}

// RecordRealtimeEvent records a realtime change event
func RecordRealtimeEvent(table string) {
	RealtimeEvents.WithLabelValues(table).Inc()
}

// Handler returns the HTTP handler serving the default registry
func Handler() http.Handler {
	return promhttp.Handler()
}
