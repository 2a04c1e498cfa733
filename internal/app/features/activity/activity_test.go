package activity

import (
	"encoding/csv"
	"net/http"
	"strings"
	"testing"
	"time"

	errorsfeature "github.com/dalemusser/eventhub/internal/app/features/errors"
	loginactivitystore "github.com/dalemusser/eventhub/internal/app/store/loginactivity"
	"github.com/dalemusser/eventhub/internal/domain/models"
	"github.com/dalemusser/eventhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func seeded(t *testing.T, n int) (*Handler, primitive.ObjectID, time.Time) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	store := loginactivitystore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	acct := primitive.NewObjectID()
	base := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		rec := models.LoginActivity{
			Realm:     "user",
			Email:     "fan@eventhub.in",
			Success:   i%2 == 0,
			IP:        "10.0.0.1",
			ParsedUA:  models.ParsedUserAgent{Browser: "Firefox", OS: "Linux", DeviceType: "desktop"},
			CreatedAt: base.AddDate(0, 0, i),
		}
		if i%2 == 0 {
			rec.AccountID = &acct
		} else {
			rec.FailureReason = models.LoginFailureInvalidCredentials
		}
		if err := store.Record(ctx, rec); err != nil {
			t.Fatal(err)
		}
	}
	return NewHandler(db, errorsfeature.NewErrorLogger(zap.NewNop()), zap.NewNop()), acct, base
}

func TestList(t *testing.T) {
	h, acct, base := seeded(t, 25)

	tests := []struct {
		name      string
		query     string
		wantLen   int
		wantPage  int
		wantPages int64
	}{
		{"defaults", "", 20, 1, 2},
		{"second page", "?page=2", 5, 2, 2},
		{"custom limit", "?limit=10&page=3", 5, 3, 3},
		{"limit capped", "?limit=1000", 25, 1, 1},
		{"junk paging", "?page=x&limit=-4", 20, 1, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := testutil.NewRecorder()
			h.List(rec, testutil.NewRequest(http.MethodGet, "/api/admin/login-activities"+tt.query))
			rec.AssertStatus(t, http.StatusOK)

			var got activityPage
			rec.Decode(t, &got)
			if len(got.Activities) != tt.wantLen || got.Page != tt.wantPage || got.Pages != tt.wantPages || got.Total != 25 {
				t.Errorf("page = len %d page %d pages %d total %d", len(got.Activities), got.Page, got.Pages, got.Total)
			}
		})
	}

	rec := testutil.NewRecorder()
	h.List(rec, testutil.NewRequest(http.MethodGet, "/api/admin/login-activities"))
	var first activityPage
	rec.Decode(t, &first)
	if !first.Activities[0].CreatedAt.Equal(base.AddDate(0, 0, 24)) {
		t.Errorf("first = %v, want newest", first.Activities[0].CreatedAt)
	}

	rec = testutil.NewRecorder()
	h.List(rec, testutil.NewRequest(http.MethodGet, "/api/admin/login-activities?accountId="+acct.Hex()))
	rec.AssertStatus(t, http.StatusOK)
	var mine activityPage
	rec.Decode(t, &mine)
	if mine.Total != 13 {
		t.Errorf("account total = %d, want 13", mine.Total)
	}

	rec = testutil.NewRecorder()
	h.List(rec, testutil.NewRequest(http.MethodGet, "/api/admin/login-activities?accountId=nope"))
	rec.AssertStatus(t, http.StatusBadRequest)
}

func TestExportCSV(t *testing.T) {
	h, _, _ := seeded(t, 6)

	rec := testutil.NewRecorder()
	h.ExportCSV(rec, testutil.NewRequest(http.MethodGet, "/api/admin/login-activities/export.csv?start=2026-04-02&end=2026-04-04"))
	rec.AssertStatus(t, http.StatusOK)

	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "login_activity_20260402_20260404.csv") {
		t.Errorf("Content-Disposition = %q", cd)
	}
	body := strings.TrimPrefix(rec.Body.String(), "\xef\xbb\xbf")
	rows, err := csv.NewReader(strings.NewReader(body)).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if len(rows) != 4 {
		t.Fatalf("rows = %d, want header + 3", len(rows))
	}
	if rows[0][0] != "time" || rows[1][0] != "2026-04-02T09:00:00Z" {
		t.Errorf("rows = %v", rows[:2])
	}
	if rows[1][4] != "false" || rows[1][5] != models.LoginFailureInvalidCredentials {
		t.Errorf("failure row = %v", rows[1])
	}
}

func TestParseDateRange(t *testing.T) {
	now := time.Date(2026, 6, 30, 12, 0, 0, 0, time.UTC)

	start, end := parseDateRange(testutil.NewRequest(http.MethodGet, "/"), now)
	if !end.Equal(now) || !start.Equal(now.AddDate(0, 0, -30)) {
		t.Errorf("default range = %v..%v", start, end)
	}

	start, end = parseDateRange(testutil.NewRequest(http.MethodGet, "/?start=2026-01-01&end=2026-01-31&x=1"), now)
	if start.Format(time.DateOnly) != "2026-01-01" || end.Format(time.DateTime) != "2026-01-31 23:59:59" {
		t.Errorf("range = %v..%v", start, end)
	}
}

func TestSanitizeCSVField(t *testing.T) {
	tests := map[string]string{
		"":         "",
		"plain":    "plain",
		"=cmd()":   "'=cmd()",
		"@SUM(A1)": "'@SUM(A1)",
		"-2+3":     "'-2+3",
		"a=b":      "a=b",
	}
	for in, want := range tests {
		if got := sanitizeCSVField(in); got != want {
			t.Errorf("sanitizeCSVField(%q) = %q, want %q", in, got, want)
		}
	}
}
