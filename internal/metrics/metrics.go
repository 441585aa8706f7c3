package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics bundles the collectors the HTTP layer and the cache report into.
type Metrics struct {
	Requests    *prometheus.CounterVec
	LatencyMS   *prometheus.HistogramVec
	CacheHits   *prometheus.CounterVec
	CacheMisses *prometheus.CounterVec
}

// New registers the collectors on the default registry.
func New(service string) *Metrics {
	return NewWith(prometheus.DefaultRegisterer, service)
}

// NewWith registers the collectors on reg. Tests pass a fresh registry so
// repeated router construction does not collide.
func NewWith(reg prometheus.Registerer, service string) *Metrics {
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "autozen",
		Subsystem: service,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests.",
	}, []string{"handler", "status"})
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "autozen",
		Subsystem: service,
		Name:      "http_request_duration_ms",
		Help:      "HTTP request latency in milliseconds.",
		Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
	}, []string{"handler"})
	cacheHits := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "autozen",
		Subsystem: service,
		Name:      "cache_hits_total",
		Help:      "Cache hits by entity.",
	}, []string{"entity"})
	cacheMisses := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "autozen",
		Subsystem: service,
		Name:      "cache_misses_total",
		Help:      "Cache misses by entity.",
	}, []string{"entity"})

	reg.MustRegister(requests, latency, cacheHits, cacheMisses)
	return &Metrics{
		Requests:    requests,
		LatencyMS:   latency,
		CacheHits:   cacheHits,
		CacheMisses: cacheMisses,
	}
}

// Handler exposes the default registry for scraping.
func Handler() http.Handler {
	return promhttp.Handler()
}
