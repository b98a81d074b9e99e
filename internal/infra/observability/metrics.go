package observability

import (
	"time"

	"github.com/aitimaad/verify-admin-go/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
)

// Metrics holds all Prometheus metrics for the admin backend.
type Metrics struct {
	// Registry is the Prometheus registry that owns these metrics.
	// Exposed so the /metrics endpoint can use it.
	Registry *prometheus.Registry

	requestDuration *prometheus.HistogramVec
	storeErrors     *prometheus.CounterVec
	cacheHits       *prometheus.CounterVec
	cacheMisses     *prometheus.CounterVec
	decisions       *prometheus.CounterVec
	refetches       *prometheus.CounterVec
}

// NewMetrics creates a dedicated Prometheus registry and registers all
// application metrics in it. Using a private registry avoids "duplicate
// collector" panics when NewMetrics is called more than once (e.g. in tests).
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "admin_request_duration_seconds",
				Help:    "Duration of requests by operation.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		storeErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "admin_store_errors_total",
				Help: "Total errors from the Supabase store by table.",
			},
			[]string{"table"},
		),
		cacheHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "admin_cache_hits_total",
				Help: "Total cache hits.",
			},
			[]string{"cache"},
		),
		cacheMisses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "admin_cache_misses_total",
				Help: "Total cache misses.",
			},
			[]string{"cache"},
		),
		decisions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "admin_decisions_total",
				Help: "Total review decisions by workflow and outcome.",
			},
			[]string{"workflow", "decision"},
		),
		refetches: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "admin_stats_refetches_total",
				Help: "Total dashboard stats refetches by trigger.",
			},
			[]string{"trigger"},
		),
	}
}

// RecordRequestDuration records the duration of an operation.
func (m *Metrics) RecordRequestDuration(operation string, d time.Duration) {
	m.requestDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// IncrStoreError increments the store error counter for a table.
func (m *Metrics) IncrStoreError(table string) {
	m.storeErrors.WithLabelValues(table).Inc()
}

// IncrCacheHit increments the cache hit counter.
func (m *Metrics) IncrCacheHit(cache string) {
	m.cacheHits.WithLabelValues(cache).Inc()
}

// IncrCacheMiss increments the cache miss counter.
func (m *Metrics) IncrCacheMiss(cache string) {
	m.cacheMisses.WithLabelValues(cache).Inc()
}

// IncrDecision increments the decision counter for a workflow outcome.
func (m *Metrics) IncrDecision(workflow, decision string) {
	m.decisions.WithLabelValues(workflow, decision).Inc()
}

// IncrRefetch increments the stats refetch counter for a trigger.
func (m *Metrics) IncrRefetch(trigger string) {
	m.refetches.WithLabelValues(trigger).Inc()
}

// GetOpsSnapshot returns a snapshot of review activity suitable for the
// GET /v1/metrics/ops endpoint.
func (m *Metrics) GetOpsSnapshot() *domain.OpsMetrics {
	// Prometheus counters expose cumulative values.
	userApproved := getCounterValue(m.decisions, "user", "approved")
	userRejected := getCounterValue(m.decisions, "user", "rejected")
	bizVerified := getCounterValue(m.decisions, "business", "verified")
	bizRejected := getCounterValue(m.decisions, "business", "rejected")
	cacheHits := getCounterValue(m.cacheHits, "dashboard")
	cacheMisses := getCounterValue(m.cacheMisses, "dashboard")
	refetches := getCounterValue(m.refetches, "pull") +
		getCounterValue(m.refetches, "change")

	cacheHitRate := float64(0)
	if cacheHits+cacheMisses > 0 {
		cacheHitRate = cacheHits / (cacheHits + cacheMisses)
	}

	return &domain.OpsMetrics{
		UserApprovals:      int64(userApproved),
		UserRejections:     int64(userRejected),
		BusinessApprovals:  int64(bizVerified),
		BusinessRejections: int64(bizRejected),
		StatsRefetches:     int64(refetches),
		CacheHitRate:       cacheHitRate,
		Period:             "all_time",
	}
}

// getCounterValue extracts the current float64 value from a CounterVec for given labels.
func getCounterValue(cv *prometheus.CounterVec, labels ...string) float64 {
	counter := cv.WithLabelValues(labels...)
	m := &dto.Metric{}
	if err := counter.(prometheus.Metric).Write(m); err != nil {
		return 0
	}
	if m.Counter != nil && m.Counter.Value != nil {
		return *m.Counter.Value
	}
	return 0
}
