// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	QueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "engine_queries_total",
			Help: "Total number of queries handled, by outcome path",
		},
		[]string{"path"}, // cache_hit | computed | degraded | invalid | timeout
	)

	QueryComputeDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "engine_query_compute_seconds",
			Help: "Duration of the compute path (excludes cache lookup)",
		},
		[]string{"mode"}, // search | match | filters_only
	)

	CacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "engine_cache_hits_total",
			Help: "Total number of result cache hits",
		},
	)

	CacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "engine_cache_misses_total",
			Help: "Total number of result cache misses (including cache errors)",
		},
	)

	CacheInvalidations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "engine_cache_invalidations_total",
			Help: "Total number of cache entries invalidated by recipe mutation",
		},
		[]string{"reason"}, // recipe_indexed | recipe_removed
	)

	IndexOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "engine_index_operations_total",
			Help: "Total number of index write operations",
		},
		[]string{"op", "status"}, // op: index | remove; status: ok | error
	)

	DataIntegrityWarnings = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "engine_data_integrity_warnings_total",
			Help: "Recipes skipped mid-computation for having no countable ingredients",
		},
	)

	CandidatePoolTruncations = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "engine_candidate_pool_truncations_total",
			Help: "Match requests whose search candidates exceeded the pool cap",
		},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "engine_http_requests_in_flight",
			Help: "Number of HTTP requests currently being served",
		},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "engine_http_request_duration_seconds",
			Help: "HTTP request latency by method and status",
		},
		[]string{"method", "status"},
	)
)
