package profile

import (
	"net/http"
	"strings"
	"testing"
	"time"

	errorsfeature "github.com/dalemusser/eventhub/internal/app/features/errors"
	adminstore "github.com/dalemusser/eventhub/internal/app/store/admins"
	userstore "github.com/dalemusser/eventhub/internal/app/store/users"
	"github.com/dalemusser/eventhub/internal/app/system/authutil"
	"github.com/dalemusser/eventhub/internal/app/system/tokens"
	"github.com/dalemusser/eventhub/internal/domain/models"
	"github.com/dalemusser/eventhub/internal/testutil"
	"go.uber.org/zap"
)

func newHandler(t *testing.T) (*Handler, *userstore.Store, *adminstore.Store, *tokens.Issuer) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	iss := tokens.NewIssuer("0123456789abcdef0123456789abcdef", "eventhub", time.Hour)
	h := NewHandler(db, iss, nil, errorsfeature.NewErrorLogger(zap.NewNop()), zap.NewNop())
	return h, userstore.New(db), adminstore.New(db), iss
}

func TestUser_Get(t *testing.T) {
	h, users, _, _ := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	tok := "secret-device"
	u, _ := users.Create(ctx, models.User{Name: "Neha", Email: "neha@example.com", PasswordHash: "hash"})
	u.DeviceToken = &tok

	rec := testutil.NewRecorder()
	h.User(rec, testutil.WithUser(testutil.NewRequest(http.MethodGet, "/api/user/profile"), &u))
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, `"email":"neha@example.com"`)

	body := rec.Body.String()
	for _, secret := range []string{"hash", "secret-device", "password"} {
		if strings.Contains(body, secret) {
			t.Errorf("profile body leaks %q: %s", secret, body)
		}
	}
}

func TestUpdateUser(t *testing.T) {
	h, users, _, _ := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	u, _ := users.Create(ctx, models.User{Name: "Neha", Email: "neha@example.com"})

	tests := []struct {
		name       string
		body       any
		wantStatus int
		wantMsg    string
	}{
		{"bad gender", map[string]any{"gender": "robot"}, http.StatusBadRequest, msgInvalidGender},
		{"bad date", map[string]any{"dateOfBirth": "31/12/1990"}, http.StatusBadRequest, msgInvalidDOB},
		{"blank name", map[string]any{"name": "  "}, http.StatusBadRequest, msgNameEmpty},
		{"malformed", `{"bio":`, http.StatusBadRequest, msgInvalidBody},
		{"valid", map[string]any{
			"bio":         "Gig hopper",
			"gender":      "Female",
			"dateOfBirth": "1994-03-02",
			"interests":   []string{"indie", "theatre"},
			"social":      map[string]any{"instagram": "@neha"},
		}, http.StatusOK, msgProfileUpdated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.WithUser(testutil.JSONRequest(http.MethodPut, "/api/user/profile", tt.body), &u)
			rec := testutil.NewRecorder()
			h.UpdateUser(rec, req)
			rec.AssertStatus(t, tt.wantStatus)
			rec.AssertMessage(t, tt.wantMsg)
		})
	}

	got, _ := users.GetByID(ctx, u.ID)
	if got.Bio != "Gig hopper" || got.Gender != "female" || len(got.Interests) != 2 || got.Social.Instagram != "@neha" {
		t.Errorf("stored profile = %+v", got)
	}
	if got.DateOfBirth == nil || got.DateOfBirth.Year() != 1994 {
		t.Errorf("DateOfBirth = %v", got.DateOfBirth)
	}
	if got.Name != "Neha" {
		t.Errorf("Name = %q, want unchanged", got.Name)
	}
}

func seedAdmin(t *testing.T, admins *adminstore.Store, email, password string) *models.Admin {
	t.Helper()
	ctx, cancel := testutil.TestContext()
	defer cancel()
	hash, _ := authutil.HashPassword(password)
	if _, err := admins.UpsertByEmail(ctx, "Ops", email, models.AdminRoleAdmin, hash); err != nil {
		t.Fatal(err)
	}
	a, err := admins.GetByEmail(ctx, email)
	if err != nil {
		t.Fatal(err)
	}
	return a
}

func TestUpdateAdmin_Password(t *testing.T) {
	h, _, admins, iss := newHandler(t)
	a := seedAdmin(t, admins, "ops@eventhub.in", "Old#Secret1")

	tests := []struct {
		name       string
		body       map[string]any
		wantStatus int
		wantMsg    string
	}{
		{"missing current", map[string]any{"password": "New#Secret2"}, http.StatusBadRequest, msgCurrentPasswordReq},
		{"wrong current", map[string]any{"password": "New#Secret2", "currentPassword": "guess"}, http.StatusUnauthorized, msgIncorrectPassword},
		{"weak new", map[string]any{"password": "abc", "currentPassword": "Old#Secret1"}, http.StatusBadRequest, authutil.ErrPasswordTooShort.Error()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := testutil.NewRecorder()
			h.UpdateAdmin(rec, testutil.WithAdmin(testutil.JSONRequest(http.MethodPut, "/api/admin/profile", tt.body), a))
			rec.AssertStatus(t, tt.wantStatus)
			rec.AssertMessage(t, tt.wantMsg)
		})
	}

	rec := testutil.NewRecorder()
	h.UpdateAdmin(rec, testutil.WithAdmin(testutil.JSONRequest(http.MethodPut, "/api/admin/profile", map[string]any{
		"password":        "New#Secret2",
		"currentPassword": "Old#Secret1",
		"bio":             "",
		"phone":           "+91 90000 00000",
	}), a))
	rec.AssertStatus(t, http.StatusOK)

	var resp adminProfileResponse
	rec.Decode(t, &resp)
	if resp.Name != "Ops" || resp.Email != "ops@eventhub.in" || resp.Phone != "+91 90000 00000" {
		t.Errorf("response = %+v", resp)
	}
	claims, err := iss.Verify(tokens.RealmAdmin, resp.Token)
	if err != nil || claims.Subject != a.ID.Hex() {
		t.Errorf("fresh token invalid: %v", err)
	}

	ctx, cancel := testutil.TestContext()
	defer cancel()
	got, _ := admins.GetByID(ctx, a.ID)
	if !authutil.CheckPassword("New#Secret2", got.PasswordHash) {
		t.Error("password not changed")
	}
}

func TestUpdateAdmin_Email(t *testing.T) {
	h, _, admins, _ := newHandler(t)
	a := seedAdmin(t, admins, "first@eventhub.in", "Pass#Word1")
	seedAdmin(t, admins, "taken@eventhub.in", "Pass#Word1")

	rec := testutil.NewRecorder()
	h.UpdateAdmin(rec, testutil.WithAdmin(testutil.JSONRequest(http.MethodPut, "/api/admin/profile",
		map[string]any{"email": "taken@eventhub.in"}), a))
	rec.AssertStatus(t, http.StatusBadRequest)
	rec.AssertMessage(t, msgEmailInUse)

	rec = testutil.NewRecorder()
	h.UpdateAdmin(rec, testutil.WithAdmin(testutil.JSONRequest(http.MethodPut, "/api/admin/profile",
		map[string]any{"email": "not-an-email"}), a))
	rec.AssertStatus(t, http.StatusBadRequest)

	rec = testutil.NewRecorder()
	h.UpdateAdmin(rec, testutil.WithAdmin(testutil.JSONRequest(http.MethodPut, "/api/admin/profile",
		map[string]any{"name": "Renamed", "email": "New@EventHub.in"}), a))
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, `"email":"new@eventhub.in"`)
	rec.AssertContains(t, `"name":"Renamed"`)
}

func TestProfile_NoAccountInContext(t *testing.T) {
	h, _, _, _ := newHandler(t)
	handlers := map[string]http.HandlerFunc{
		"User":        h.User,
		"UpdateUser":  h.UpdateUser,
		"Admin":       h.Admin,
		"UpdateAdmin": h.UpdateAdmin,
	}
	for name, fn := range handlers {
		t.Run(name, func(t *testing.T) {
			rec := testutil.NewRecorder()
			fn(rec, testutil.JSONRequest(http.MethodPut, "/", map[string]any{}))
			rec.AssertStatus(t, http.StatusUnauthorized)
		})
	}
}
