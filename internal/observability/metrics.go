package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "folio_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// RedisCommandLatency records Redis command latency by command name.
	RedisCommandLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "folio_redis_command_latency_seconds",
		Help:    "Redis command latency in seconds",
		Buckets: []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25},
	}, []string{"command"})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "folio_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// AuthorizationDenials counts access policy denials by resource kind and action.
	AuthorizationDenials = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "folio_authorization_denials_total",
		Help: "Total number of requests denied by the access policy",
	}, []string{"kind", "action"})

	// CacheLookups counts cache-aside lookups by result (hit, miss).
	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "folio_cache_lookups_total",
		Help: "Total number of cache-aside lookups by result",
	}, []string{"result"})

	// TagsCreated counts tags created through get-or-create.
	TagsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "folio_tags_created_total",
		Help: "Total number of tags created while saving posts",
	})
)

// ObserveQuery records the latency of a database query.
func ObserveQuery(operation, table string, start time.Time) {
	DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
}

// TrackQuery returns a function that records query latency when called (e.g. defer).
func TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		ObserveQuery(operation, table, start)
	}
}
