// Package metrics registers Prometheus collectors for cache behavior and
// HTTP request latency, exposed on /metrics.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	cacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inkwell_cache_hits_total",
		Help: "Response cache hits, partitioned by cache kind.",
	}, []string{"kind"})

	cacheMisses = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inkwell_cache_misses_total",
		Help: "Response cache misses, partitioned by cache kind.",
	}, []string{"kind"})

	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "inkwell_http_request_duration_seconds",
		Help:    "HTTP request duration by method and status.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "status"})
)

// CacheHit records a hit for the given cache kind ("list" or "detail").
func CacheHit(kind string) {
	cacheHits.WithLabelValues(kind).Inc()
}

// CacheMiss records a miss for the given cache kind.
func CacheMiss(kind string) {
	cacheMisses.WithLabelValues(kind).Inc()
}

// ObserveRequest records one HTTP request's duration.
func ObserveRequest(method, status string, d time.Duration) {
	httpDuration.WithLabelValues(method, status).Observe(d.Seconds())
}

// Handler returns the Prometheus scrape handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
