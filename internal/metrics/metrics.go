// Package metrics exposes Prometheus instrumentation for the API.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moviecollections_http_requests_total",
			Help: "Total number of HTTP requests by method, route and status",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "moviecollections_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	CatalogFetchAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moviecollections_catalog_fetch_attempts_total",
			Help: "Upstream catalog requests by outcome",
		},
		[]string{"result"}, // "ok", "status", "error", "breaker_open"
	)

	CatalogSnapshots = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moviecollections_catalog_snapshots_total",
			Help: "Catalog snapshots written to object storage by outcome",
		},
		[]string{"result"},
	)

	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moviecollections_events_published_total",
			Help: "Domain events handed to the message broker by type and outcome",
		},
		[]string{"type", "result"},
	)
)

// RecordCatalogAttempt counts one upstream catalog call.
func RecordCatalogAttempt(result string) {
	CatalogFetchAttempts.WithLabelValues(result).Inc()
}

func RecordSnapshot(err error) {
	CatalogSnapshots.WithLabelValues(resultLabel(err)).Inc()
}

func RecordEvent(eventType string, err error) {
	EventsPublished.WithLabelValues(eventType, resultLabel(err)).Inc()
}

func resultLabel(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// Middleware records request count and latency labelled by chi route pattern.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}

		HTTPRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		HTTPRequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

// Handler serves the Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.Handler()
}
