package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCounters(t *testing.T) {
	m := New()
	m.LoginAttempt("user", OutcomeSuccess)
	m.LoginAttempt("user", OutcomeSuccess)
	m.LoginAttempt("admin", OutcomeInvalid)
	m.GuardRejected("user", "device_mismatch")

	if got := testutil.ToFloat64(m.logins.WithLabelValues("user", OutcomeSuccess)); got != 2 {
		t.Errorf("user success = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.logins.WithLabelValues("admin", OutcomeInvalid)); got != 1 {
		t.Errorf("admin invalid = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.guardRejections.WithLabelValues("user", "device_mismatch")); got != 1 {
		t.Errorf("guard rejections = %v, want 1", got)
	}
}

func TestMiddlewareUsesRoutePattern(t *testing.T) {
	m := New()
	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/api/events/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	for _, id := range []string{"a", "b", "c"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/events/"+id, nil))
	}

	got := testutil.ToFloat64(m.requests.WithLabelValues("GET", "/api/events/{id}", "404"))
	if got != 3 {
		t.Errorf("requests{route=/api/events/{id}} = %v, want 3", got)
	}
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := New()
	m.LoginAttempt("user", OutcomeLockedOut)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `eventhub_login_attempts_total{outcome="locked_out",realm="user"} 1`) {
		t.Error("login counter missing from exposition")
	}
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	m.LoginAttempt("user", OutcomeSuccess)
	m.GuardRejected("user", "x")

	called := false
	h := m.Middleware(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { called = true }))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	if !called {
		t.Error("nil Metrics middleware should pass through")
	}

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("nil Handler status = %d, want 404", rec.Code)
	}
}
