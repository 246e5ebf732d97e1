// Package metrics exposes Prometheus collectors for the preview edge.
package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	previewRequestsTotal         *prometheus.CounterVec
	cacheLookupsTotal            *prometheus.CounterVec
	upstreamFetchDurationSeconds *prometheus.HistogramVec
	cardsRenderedTotal           prometheus.Counter
	cardRenderDurationSeconds    prometheus.Histogram
	httpRequestsTotal            *prometheus.CounterVec
	httpRequestDurationSeconds   *prometheus.HistogramVec

	once sync.Once
)

// Init initializes the Prometheus metrics collectors.
// It is safe to call this function multiple times.
func Init() {
	once.Do(func() {
		previewRequestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "preview_requests_total",
				Help: "Total intercepted requests, labeled by intent and outcome.",
			},
			[]string{"intent", "outcome"},
		)

		cacheLookupsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "preview_cache_lookups_total",
				Help: "Cache lookups, labeled by tier (upstream, image) and result (hit, miss).",
			},
			[]string{"tier", "result"},
		)

		upstreamFetchDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "preview_upstream_fetch_duration_seconds",
				Help:    "Histogram of upstream fetch latencies, labeled by resource.",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
			},
			[]string{"resource"},
		)

		cardsRenderedTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "preview_cards_rendered_total",
				Help: "Total PNG cards rasterized (cache misses only).",
			},
		)

		cardRenderDurationSeconds = promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "preview_card_render_duration_seconds",
				Help:    "Histogram of PNG card rasterization latencies.",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
			},
		)

		httpRequestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests, labeled by method and code.",
			},
			[]string{"method", "code"},
		)

		httpRequestDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Histogram of HTTP request latencies, labeled by method and route.",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
			},
			[]string{"method", "route"},
		)
	})
}

// Handler returns an http.Handler for exposing Prometheus metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware is a chi middleware that records HTTP request metrics. The
// route label is the chi route pattern, not the raw path, to keep
// cardinality bounded.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sr := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(sr, r)

		route := "unknown"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		ObserveHTTPRequest(r.Method, route, sr.statusCode, time.Since(start))
	})
}

// statusRecorder wraps http.ResponseWriter to capture the status code.
type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.statusCode = code
	sr.ResponseWriter.WriteHeader(code)
}

// ObserveHTTPRequest records one served HTTP request.
func ObserveHTTPRequest(method, route string, code int, d time.Duration) {
	if httpRequestsTotal == nil {
		return
	}
	httpRequestsTotal.WithLabelValues(method, strconv.Itoa(code)).Inc()
	httpRequestDurationSeconds.WithLabelValues(method, route).Observe(d.Seconds())
}

// ObserveRequest increments the intercepted-request counter.
func ObserveRequest(intent, outcome string) {
	if previewRequestsTotal == nil {
		return
	}
	previewRequestsTotal.WithLabelValues(intent, outcome).Inc()
}

// ObserveCacheLookup records a hit or miss against a cache tier.
func ObserveCacheLookup(tier string, hit bool) {
	if cacheLookupsTotal == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	cacheLookupsTotal.WithLabelValues(tier, result).Inc()
}

// ObserveUpstreamFetch records the latency of one upstream fetch.
func ObserveUpstreamFetch(resource string, d time.Duration) {
	if upstreamFetchDurationSeconds == nil {
		return
	}
	upstreamFetchDurationSeconds.WithLabelValues(resource).Observe(d.Seconds())
}

// ObserveCardRender records one rasterized card and its latency.
func ObserveCardRender(d time.Duration) {
	if cardsRenderedTotal == nil {
		return
	}
	cardsRenderedTotal.Inc()
	cardRenderDurationSeconds.Observe(d.Seconds())
}
