package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/dalemusser/eventhub/internal/app/system/devicebind"
	"github.com/dalemusser/eventhub/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TestUser returns an audience user suitable for guarded handlers.
func TestUser() *models.User {
	return &models.User{
		ID:    primitive.NewObjectID(),
		Name:  "Test User",
		Email: "user@test.com",
		Role:  models.RoleAudience,
	}
}

// TestAdmin returns a super admin suitable for guarded handlers.
func TestAdmin() *models.Admin {
	return &models.Admin{
		ID:    primitive.NewObjectID(),
		Name:  "Test Admin",
		Email: "admin@test.com",
		Role:  models.AdminRoleSuperAdmin,
	}
}

// WithUser puts u in the request context the way the user guard does.
// This bypasses token verification.
func WithUser(r *http.Request, u *models.User) *http.Request {
	return r.WithContext(devicebind.WithUser(r.Context(), u))
}

// WithAdmin puts a in the request context the way the admin guard does.
func WithAdmin(r *http.Request, a *models.Admin) *http.Request {
	return r.WithContext(devicebind.WithAdmin(r.Context(), a))
}

// WithURLParams sets chi URL parameters (key, value pairs) on r so
// handlers can be called without a router.
func WithURLParams(r *http.Request, kv ...string) *http.Request {
	rctx := chi.NewRouteContext()
	for i := 0; i+1 < len(kv); i += 2 {
		rctx.URLParams.Add(kv[i], kv[i+1])
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// NewRequest creates an HTTP request for testing.
func NewRequest(method, target string) *http.Request {
	return httptest.NewRequest(method, target, nil)
}

// JSONRequest creates a request whose body is body encoded as JSON.
// A string body is sent as-is.
func JSONRequest(method, target string, body any) *http.Request {
	var raw []byte
	switch b := body.(type) {
	case nil:
	case string:
		raw = []byte(b)
	default:
		raw, _ = json.Marshal(b)
	}
	req := httptest.NewRequest(method, target, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	return req
}

// ResponseRecorder wraps httptest.ResponseRecorder with helper methods.
type ResponseRecorder struct {
	*httptest.ResponseRecorder
}

// NewRecorder creates a new ResponseRecorder.
func NewRecorder() *ResponseRecorder {
	return &ResponseRecorder{httptest.NewRecorder()}
}

// AssertStatus checks the response status code.
func (r *ResponseRecorder) AssertStatus(t interface{ Errorf(string, ...any) }, expected int) {
	if r.Code != expected {
		t.Errorf("status code: got %d, want %d (body %s)", r.Code, expected, r.Body.String())
	}
}

// AssertMessage checks the {"message": ...} field of a JSON body.
func (r *ResponseRecorder) AssertMessage(t interface{ Errorf(string, ...any) }, expected string) {
	var body struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(r.Body.Bytes(), &body); err != nil {
		t.Errorf("decode body: %v (body %s)", err, r.Body.String())
		return
	}
	if body.Message != expected {
		t.Errorf("message: got %q, want %q", body.Message, expected)
	}
}

// AssertContains checks if the response body contains the expected string.
func (r *ResponseRecorder) AssertContains(t interface{ Errorf(string, ...any) }, expected string) {
	body := r.Body.String()
	if !strings.Contains(body, expected) {
		t.Errorf("response body does not contain %q", expected)
	}
}

// Decode unmarshals the JSON body into v.
func (r *ResponseRecorder) Decode(t interface{ Fatalf(string, ...any) }, v any) {
	if err := json.Unmarshal(r.Body.Bytes(), v); err != nil {
		t.Fatalf("decode body: %v (body %s)", err, r.Body.String())
	}
}
