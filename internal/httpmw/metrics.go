package httpmw

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "handoff",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests by method, route and status code.",
	}, []string{"method", "route", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "handoff",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds. Login includes bcrypt.",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	}, []string{"method", "route"})

	httpRequestsInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "handoff",
		Subsystem: "http",
		Name:      "requests_in_flight",
		Help:      "HTTP requests currently being served.",
	})

	httpPanicsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "handoff",
		Subsystem: "http",
		Name:      "panics_total",
		Help:      "Handler panics turned into 500 responses, by route.",
	}, []string{"route"})

	// RateLimitRejections counts requests answered with 429 by RateLimit.
	RateLimitRejections = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "handoff",
		Name:      "ratelimit_rejections_total",
		Help:      "Total requests rejected by the per-client rate limiter.",
	})
)

// routeLabel folds unknown paths into "/other" so scanners cannot grow the
// label set.
func routeLabel(path string) string {
	switch path {
	case "/v1/login", "/v1/session", "/v1/support",
		"/health", "/health/ready", "/version", "/metrics":
		return path
	default:
		return "/other"
	}
}

// Metrics returns middleware that records request count, latency and
// in-flight requests per route.
func Metrics() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			route := routeLabel(r.URL.Path)

			httpRequestsInFlight.Inc()
			defer httpRequestsInFlight.Dec()

			rw := wrapResponse(w)
			next.ServeHTTP(rw, r)

			httpRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(rw.status)).Inc()
			httpRequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
		})
	}
}
