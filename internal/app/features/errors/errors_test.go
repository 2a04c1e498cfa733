package errors

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dalemusser/eventhub/internal/testutil"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestNotFound_Returns404JSON(t *testing.T) {
	h := NewHandler()
	rec := testutil.NewRecorder()
	h.NotFound(rec, httptest.NewRequest(http.MethodGet, "/api/nope", nil))

	rec.AssertStatus(t, http.StatusNotFound)
	rec.AssertMessage(t, "Not Found - /api/nope")
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}
}

func TestMethodNotAllowed_Returns405JSON(t *testing.T) {
	h := NewHandler()
	rec := testutil.NewRecorder()
	h.MethodNotAllowed(rec, httptest.NewRequest(http.MethodDelete, "/api/categories", nil))

	rec.AssertStatus(t, http.StatusMethodNotAllowed)
	rec.AssertMessage(t, "Method DELETE not allowed on /api/categories")
}

func TestErrorLogger_ServerError(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	e := NewErrorLogger(zap.New(core))

	rec := testutil.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/leads", nil)
	e.ServerError(rec, req, "failed to create lead", errors.New("socket closed"), zap.String("email", "a@b.io"))

	rec.AssertStatus(t, http.StatusInternalServerError)
	rec.AssertMessage(t, "Server error")
	if strings.Contains(rec.Body.String(), "socket closed") {
		t.Error("cause must not be written to the client")
	}

	entries := logs.FilterMessage("failed to create lead").All()
	if len(entries) != 1 {
		t.Fatalf("logged %d entries, want 1", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["path"] != "/api/leads" || fields["method"] != "POST" || fields["email"] != "a@b.io" {
		t.Errorf("fields = %v", fields)
	}
}
