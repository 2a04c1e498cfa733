package logout

import (
	"net/http"
	"testing"

	errorsfeature "github.com/dalemusser/eventhub/internal/app/features/errors"
	adminstore "github.com/dalemusser/eventhub/internal/app/store/admins"
	systemlogstore "github.com/dalemusser/eventhub/internal/app/store/systemlog"
	userstore "github.com/dalemusser/eventhub/internal/app/store/users"
	"github.com/dalemusser/eventhub/internal/app/system/activitylog"
	"github.com/dalemusser/eventhub/internal/domain/models"
	"github.com/dalemusser/eventhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func newHandler(t *testing.T) (*Handler, *userstore.Store, *adminstore.Store) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	activity := activitylog.New(systemlogstore.New(db), zap.NewNop(), activitylog.DestDB)
	h := NewHandler(db, activity, errorsfeature.NewErrorLogger(zap.NewNop()), zap.NewNop())
	return h, userstore.New(db), adminstore.New(db)
}

func boundUser(t *testing.T, users *userstore.Store, email string) models.User {
	t.Helper()
	ctx, cancel := testutil.TestContext()
	defer cancel()
	u, err := users.Create(ctx, models.User{Name: "Dev", Email: email, PasswordHash: "x"})
	if err != nil {
		t.Fatal(err)
	}
	if err := users.BindDevice(ctx, u.ID, "live-token", models.LastLogin{}); err != nil {
		t.Fatal(err)
	}
	return u
}

func TestUserLogout(t *testing.T) {
	h, users, _ := newHandler(t)
	u := boundUser(t, users, "dev@example.com")

	tests := []struct {
		name       string
		body       any
		wantStatus int
		wantMsg    string
	}{
		{"malformed id", map[string]any{"userId": "123"}, http.StatusBadRequest, msgInvalidUserID},
		{"missing id", map[string]any{}, http.StatusBadRequest, msgInvalidUserID},
		{"unknown user", map[string]any{"userId": primitive.NewObjectID().Hex()}, http.StatusNotFound, msgUserNotFound},
		{"bound user", map[string]any{"userId": u.ID.Hex()}, http.StatusOK, msgLoggedOut},
		{"already logged out", map[string]any{"userId": u.ID.Hex()}, http.StatusOK, msgLoggedOut},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := testutil.NewRecorder()
			h.User(rec, testutil.JSONRequest(http.MethodPost, "/api/user/logout", tt.body))
			rec.AssertStatus(t, tt.wantStatus)
			rec.AssertMessage(t, tt.wantMsg)
		})
	}

	ctx, cancel := testutil.TestContext()
	defer cancel()
	got, _ := users.GetByID(ctx, u.ID)
	if got.DeviceToken != nil {
		t.Errorf("DeviceToken = %q, want nil", *got.DeviceToken)
	}
}

func TestUserLogoutAll(t *testing.T) {
	h, users, _ := newHandler(t)
	u := boundUser(t, users, "all@example.com")

	tests := []struct {
		name       string
		body       any
		wantStatus int
		wantMsg    string
	}{
		{"missing email", map[string]any{"email": "  "}, http.StatusBadRequest, msgEmailRequired},
		{"unknown email", map[string]any{"email": "nobody@example.com"}, http.StatusNotFound, msgUserNotFound},
		{"mixed case email", map[string]any{"email": "ALL@example.com"}, http.StatusOK, msgLoggedOutAll},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := testutil.NewRecorder()
			h.UserAll(rec, testutil.JSONRequest(http.MethodPost, "/api/user/logout-all", tt.body))
			rec.AssertStatus(t, tt.wantStatus)
			rec.AssertMessage(t, tt.wantMsg)
		})
	}

	ctx, cancel := testutil.TestContext()
	defer cancel()
	got, _ := users.GetByID(ctx, u.ID)
	if got.DeviceToken != nil {
		t.Error("logout-all did not clear the device token")
	}
}

func TestAdminLogout(t *testing.T) {
	h, _, admins := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := admins.UpsertByEmail(ctx, "Ops", "ops@eventhub.in", models.AdminRoleAdmin, "x"); err != nil {
		t.Fatal(err)
	}
	a, _ := admins.GetByEmail(ctx, "ops@eventhub.in")
	_ = admins.BindDevice(ctx, a.ID, "abcd", models.LastLogin{})

	rec := testutil.NewRecorder()
	h.Admin(rec, testutil.NewRequest(http.MethodPost, "/api/admin/logout"))
	rec.AssertStatus(t, http.StatusUnauthorized)

	rec = testutil.NewRecorder()
	h.Admin(rec, testutil.WithAdmin(testutil.NewRequest(http.MethodPost, "/api/admin/logout"), a))
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertMessage(t, msgLoggedOut)

	got, _ := admins.GetByID(ctx, a.ID)
	if got.DeviceToken != nil {
		t.Error("admin device token not cleared")
	}
}
