package bootstrap

import (
	"net/http"
	"testing"
	"time"

	errorsfeature "github.com/dalemusser/eventhub/internal/app/features/errors"
	loginfeature "github.com/dalemusser/eventhub/internal/app/features/login"
	logoutfeature "github.com/dalemusser/eventhub/internal/app/features/logout"
	profilefeature "github.com/dalemusser/eventhub/internal/app/features/profile"
	registerfeature "github.com/dalemusser/eventhub/internal/app/features/register"
	adminstore "github.com/dalemusser/eventhub/internal/app/store/admins"
	loginactivitystore "github.com/dalemusser/eventhub/internal/app/store/loginactivity"
	systemlogstore "github.com/dalemusser/eventhub/internal/app/store/systemlog"
	userstore "github.com/dalemusser/eventhub/internal/app/store/users"
	"github.com/dalemusser/eventhub/internal/app/system/activitylog"
	"github.com/dalemusser/eventhub/internal/app/system/devicebind"
	"github.com/dalemusser/eventhub/internal/app/system/sessionauth"
	"github.com/dalemusser/eventhub/internal/app/system/tokens"
	"github.com/dalemusser/eventhub/internal/testutil"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// newUserRouter wires the user realm the way BuildHandler does, against
// a fresh test database.
func newUserRouter(t *testing.T) http.Handler {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()
	errLog := errorsfeature.NewErrorLogger(logger)
	activity := activitylog.New(systemlogstore.New(db), logger, activitylog.DestDB)

	issuer := tokens.NewIssuer("0123456789abcdef0123456789abcdef", "eventhub", time.Hour)
	users := userstore.New(db)
	deps := sessionauth.Deps{
		Issuer:   issuer,
		Recorder: loginactivitystore.New(db),
		Activity: activity,
		Logger:   logger,
	}
	userAuth := sessionauth.New(tokens.RealmUser, 32, sessionauth.UserAccounts(users), deps)
	adminAuth := sessionauth.New(tokens.RealmAdmin, 16, sessionauth.AdminAccounts(adminstore.New(db)), deps)

	r := chi.NewRouter()
	r.Route("/api/user", userRoutes(
		registerfeature.NewHandler(db, issuer, activity, errLog, logger),
		loginfeature.NewHandler(userAuth, adminAuth, errLog, logger),
		logoutfeature.NewHandler(db, activity, errLog, logger),
		profilefeature.NewHandler(db, issuer, activity, errLog, logger),
		devicebind.NewUserGuard(issuer, users, nil, logger).Require,
	))
	return r
}

type loginResult struct {
	ID          string `json:"id"`
	Token       string `json:"token"`
	DeviceToken string `json:"deviceToken"`
}

func login(t *testing.T, h http.Handler, email, password string) loginResult {
	t.Helper()
	rec := testutil.NewRecorder()
	h.ServeHTTP(rec, testutil.JSONRequest(http.MethodPost, "/api/user/login", map[string]string{
		"email": email, "password": password,
	}))
	rec.AssertStatus(t, http.StatusOK)
	var out loginResult
	rec.Decode(t, &out)
	if out.Token == "" || out.DeviceToken == "" {
		t.Fatalf("login response missing tokens: %+v", out)
	}
	return out
}

func getProfile(h http.Handler, token, device string) *testutil.ResponseRecorder {
	req := testutil.NewRequest(http.MethodGet, "/api/user/profile")
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set(devicebind.HeaderDeviceToken, device)
	rec := testutil.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestUserRoutes_DeviceBoundSession(t *testing.T) {
	h := newUserRouter(t)

	rec := testutil.NewRecorder()
	h.ServeHTTP(rec, testutil.JSONRequest(http.MethodPost, "/api/user/register", map[string]string{
		"name": "A", "email": "a@x.com", "password": "p1",
	}))
	rec.AssertStatus(t, http.StatusCreated)

	first := login(t, h, "a@x.com", "p1")
	profile := getProfile(h, first.Token, first.DeviceToken)
	profile.AssertStatus(t, http.StatusOK)
	profile.AssertContains(t, `"email":"a@x.com"`)

	// A second device takes over the binding.
	second := login(t, h, "a@x.com", "p1")

	tests := []struct {
		name       string
		token      string
		device     string
		wantStatus int
		wantMsg    string
	}{
		{"current device", second.Token, second.DeviceToken, http.StatusOK, ""},
		{"stale device", first.Token, first.DeviceToken, http.StatusUnauthorized, devicebind.MsgOtherDevice},
		{"no device header", second.Token, "", http.StatusUnauthorized, devicebind.MsgNoToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := getProfile(h, tt.token, tt.device)
			rec.AssertStatus(t, tt.wantStatus)
			if tt.wantMsg != "" {
				rec.AssertMessage(t, tt.wantMsg)
			}
		})
	}

	rec = testutil.NewRecorder()
	h.ServeHTTP(rec, testutil.JSONRequest(http.MethodPost, "/api/user/logout", map[string]string{
		"userId": second.ID,
	}))
	rec.AssertStatus(t, http.StatusOK)

	after := getProfile(h, second.Token, second.DeviceToken)
	after.AssertStatus(t, http.StatusUnauthorized)
	after.AssertMessage(t, devicebind.MsgOtherDevice)
}
