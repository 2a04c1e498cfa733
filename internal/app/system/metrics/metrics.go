// Package metrics exposes Prometheus counters and histograms for HTTP
// traffic, logins and guard rejections.
//
// A nil *Metrics is valid and records nothing, so callers never need to
// check whether metrics are enabled.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Login outcomes.
const (
	OutcomeSuccess        = "success"
	OutcomeInvalid        = "invalid_credentials"
	OutcomeDeviceConflict = "device_conflict"
	OutcomeLockedOut      = "locked_out"
	OutcomeError          = "error"
)

// Metrics owns a private registry so tests can create as many as they like.
type Metrics struct {
	reg             *prometheus.Registry
	requests        *prometheus.CounterVec
	duration        *prometheus.HistogramVec
	logins          *prometheus.CounterVec
	guardRejections *prometheus.CounterVec
}

// New builds and registers the collectors.
func New() *Metrics {
	m := &Metrics{
		reg: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "eventhub_http_requests_total",
			Help: "HTTP requests by method, route pattern and status code.",
		}, []string{"method", "route", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "eventhub_http_request_duration_seconds",
			Help:    "HTTP request latency by method and route pattern.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "eventhub_login_attempts_total",
			Help: "Login attempts by realm and outcome.",
		}, []string{"realm", "outcome"}),
		guardRejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "eventhub_guard_rejections_total",
			Help: "Requests rejected by the device-binding guard.",
		}, []string{"realm", "reason"}),
	}
	m.reg.MustRegister(
		m.requests, m.duration, m.logins, m.guardRejections,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// LoginAttempt counts one login attempt.
func (m *Metrics) LoginAttempt(realm, outcome string) {
	if m == nil {
		return
	}
	m.logins.WithLabelValues(realm, outcome).Inc()
}

// GuardRejected counts one guard rejection.
func (m *Metrics) GuardRejected(realm, reason string) {
	if m == nil {
		return
	}
	m.guardRejections.WithLabelValues(realm, reason).Inc()
}

// Middleware records request count and latency per chi route pattern.
// Unmatched requests are labelled "unmatched" to bound cardinality.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil {
			if p := rc.RoutePattern(); p != "" {
				route = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.requests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		m.duration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}
