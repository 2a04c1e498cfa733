package auditlog

import (
	"net/http"
	"testing"
	"time"

	errorsfeature "github.com/dalemusser/eventhub/internal/app/features/errors"
	systemlogstore "github.com/dalemusser/eventhub/internal/app/store/systemlog"
	"github.com/dalemusser/eventhub/internal/app/system/activitylog"
	"github.com/dalemusser/eventhub/internal/domain/models"
	"github.com/dalemusser/eventhub/internal/testutil"
	"go.uber.org/zap"
)

func TestList(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := systemlogstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 60; i++ {
		module := activitylog.ModuleEvent
		if i%4 == 0 {
			module = activitylog.ModuleCMS
		}
		err := store.Append(ctx, models.SystemLog{
			User:      "Ops",
			Role:      "Admin",
			Action:    activitylog.ActionUpdated,
			Module:    module,
			Target:    "t",
			Timestamp: base.Add(time.Duration(i) * time.Second),
		})
		if err != nil {
			t.Fatal(err)
		}
	}
	h := NewHandler(db, errorsfeature.NewErrorLogger(zap.NewNop()), zap.NewNop())

	tests := []struct {
		name      string
		query     string
		wantLen   int
		wantTotal int64
		wantPages int64
	}{
		{"default page size", "", 50, 60, 2},
		{"second page", "?page=2", 10, 60, 2},
		{"module filter", "?module=cms", 15, 15, 1},
		{"module with limit", "?module=EVENT&limit=20&page=3", 5, 45, 3},
		{"unknown module", "?module=nothing", 0, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := testutil.NewRecorder()
			h.List(rec, testutil.NewRequest(http.MethodGet, "/api/admin/system-logs"+tt.query))
			rec.AssertStatus(t, http.StatusOK)

			var got logPage
			rec.Decode(t, &got)
			if len(got.Logs) != tt.wantLen || got.Total != tt.wantTotal || got.Pages != tt.wantPages {
				t.Errorf("page = len %d total %d pages %d", len(got.Logs), got.Total, got.Pages)
			}
			for _, l := range got.Logs {
				if got.Module != "" && l.Module != got.Module {
					t.Errorf("log module %q leaked into %q filter", l.Module, got.Module)
				}
			}
		})
	}
}

func TestModules(t *testing.T) {
	h := &Handler{}
	rec := testutil.NewRecorder()
	h.Modules(rec, testutil.NewRequest(http.MethodGet, "/api/admin/system-logs/modules"))
	rec.AssertStatus(t, http.StatusOK)

	var got []moduleOption
	rec.Decode(t, &got)
	if len(got) != len(allModules()) || got[0].Value != activitylog.ModuleAuth {
		t.Errorf("modules = %+v", got)
	}
}
