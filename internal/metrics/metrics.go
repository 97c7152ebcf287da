package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	registerOnce sync.Once

	requestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "labelkit",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	requestTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "labelkit",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	requestsInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "labelkit",
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "HTTP requests currently being served.",
		},
	)

	storageOps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "labelkit",
			Subsystem: "storage",
			Name:      "operations_total",
			Help:      "Key-value document reads and writes by key and result.",
		},
		[]string{"op", "key", "result"},
	)

	siteMatches = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "labelkit",
			Subsystem: "sites",
			Name:      "match_total",
			Help:      "URL match attempts by result.",
		},
		[]string{"result"},
	)

	printJobs = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "labelkit",
			Subsystem: "print",
			Name:      "jobs_total",
			Help:      "Print jobs by printer and result.",
		},
		[]string{"printer", "result"},
	)
)

// Match results.
const (
	MatchMatched        = "matched"
	MatchUnmatched      = "unmatched"
	MatchInvalidPattern = "invalid_pattern"
)

func register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(requestDuration, requestTotal, requestsInFlight, storageOps, siteMatches, printJobs)
	})
}

// Middleware records request metrics labelled with the chi route pattern.
func Middleware(next http.Handler) http.Handler {
	register()

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestsInFlight.Inc()
		defer requestsInFlight.Dec()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		path := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				path = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		labels := prometheus.Labels{
			"method": r.Method,
			"path":   path,
			"status": strconv.Itoa(status),
		}

		requestDuration.With(labels).Observe(time.Since(start).Seconds())
		requestTotal.With(labels).Inc()
	})
}

// Handler serves the default registry in the Prometheus text format.
func Handler() http.Handler {
	register()
	return promhttp.Handler()
}

// ObserveStorage counts one storage operation on key.
func ObserveStorage(op, key string, err error) {
	storageOps.WithLabelValues(op, key, result(err)).Inc()
}

// ObserveMatch counts one URL match attempt.
func ObserveMatch(res string) {
	siteMatches.WithLabelValues(res).Inc()
}

// ObservePrint counts one print job.
func ObservePrint(printer string, err error) {
	printJobs.WithLabelValues(printer, result(err)).Inc()
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
