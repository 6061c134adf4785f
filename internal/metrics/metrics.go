// Package metrics defines the Prometheus collectors exposed on /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// ExpensesCreated counts expenses accepted into the ledger.
	ExpensesCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fairsplit_expenses_created_total",
		Help: "Number of expenses appended to the ledger.",
	})

	// ExpensesRejected counts rejected expense submissions by reason.
	ExpensesRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fairsplit_expenses_rejected_total",
		Help: "Number of rejected expense submissions.",
	}, []string{"reason"})

	// BalanceCacheHits counts balance queries served from cache.
	BalanceCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fairsplit_balance_cache_hits_total",
		Help: "Number of balance queries answered from the cache.",
	})

	// BalanceCacheMisses counts balance queries that recomputed from the log.
	BalanceCacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fairsplit_balance_cache_misses_total",
		Help: "Number of balance queries recomputed from the ledger.",
	})

	// HTTPDuration observes request latency per route and status.
	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "fairsplit_http_request_duration_seconds",
		Help:    "HTTP request latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
)

// Handler exposes the default registry for scraping.
func Handler() http.Handler {
	return promhttp.Handler()
}
