// Package metrics provides Prometheus metrics for the salesdash services.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "salesdash"

// Metrics holds the collectors of one service, registered on its own registry.
type Metrics struct {
	registry *prometheus.Registry

	// FetchTotal counts analytics dataset fetches by outcome.
	FetchTotal *prometheus.CounterVec
	// FetchDuration measures analytics dataset fetch latency.
	FetchDuration *prometheus.HistogramVec
	// StitchTotal counts trend stitches by outcome.
	StitchTotal *prometheus.CounterVec
	// TrendPoints reports the size of the current merged trend per series.
	TrendPoints *prometheus.GaugeVec
	// HTTPRequestsTotal counts served requests.
	HTTPRequestsTotal *prometheus.CounterVec
	// HTTPRequestDuration measures request latency.
	HTTPRequestDuration *prometheus.HistogramVec
}

// New creates the collectors for a service on a fresh registry that also
// carries the Go runtime and process collectors.
func New(service string) *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	factory := promauto.With(reg)
	constLabels := prometheus.Labels{"service": service}

	return &Metrics{
		registry: reg,
		FetchTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   namespace,
				Name:        "analytics_fetch_total",
				Help:        "Total number of analytics dataset fetches",
				ConstLabels: constLabels,
			},
			[]string{"dataset", "status"},
		),
		FetchDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace:   namespace,
				Name:        "analytics_fetch_duration_seconds",
				Help:        "Duration of analytics dataset fetches in seconds",
				ConstLabels: constLabels,
				Buckets:     prometheus.DefBuckets,
			},
			[]string{"dataset"},
		),
		StitchTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   namespace,
				Name:        "trend_stitch_total",
				Help:        "Total number of trend stitches by outcome",
				ConstLabels: constLabels,
			},
			[]string{"outcome"},
		),
		TrendPoints: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace:   namespace,
				Name:        "trend_points",
				Help:        "Points in the current merged trend",
				ConstLabels: constLabels,
			},
			[]string{"series"},
		),
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   namespace,
				Name:        "http_requests_total",
				Help:        "Total number of HTTP requests",
				ConstLabels: constLabels,
			},
			[]string{"method", "route", "status"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace:   namespace,
				Name:        "http_request_duration_seconds",
				Help:        "Duration of HTTP requests in seconds",
				ConstLabels: constLabels,
				Buckets:     prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
	}
}

// RecordFetch records one dataset fetch.
func (m *Metrics) RecordFetch(dataset string, err error, duration time.Duration) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.FetchTotal.WithLabelValues(dataset, status).Inc()
	m.FetchDuration.WithLabelValues(dataset).Observe(duration.Seconds())
}

// RecordStitch records a stitch outcome and the resulting series sizes.
func (m *Metrics) RecordStitch(outcome string, historyPoints, forecastPoints int) {
	m.StitchTotal.WithLabelValues(outcome).Inc()
	m.TrendPoints.WithLabelValues("history").Set(float64(historyPoints))
	m.TrendPoints.WithLabelValues("forecast").Set(float64(forecastPoints))
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Middleware records request counts and latency keyed by the chi route pattern.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}

		m.HTTPRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(rec.status)).Inc()
		m.HTTPRequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}
