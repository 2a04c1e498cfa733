package leads

import (
	"net/http"
	"testing"

	errorsfeature "github.com/dalemusser/eventhub/internal/app/features/errors"
	systemlogstore "github.com/dalemusser/eventhub/internal/app/store/systemlog"
	"github.com/dalemusser/eventhub/internal/app/system/activitylog"
	"github.com/dalemusser/eventhub/internal/domain/models"
	"github.com/dalemusser/eventhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T) (*Handler, *mongo.Database) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	act := activitylog.New(systemlogstore.New(db), zap.NewNop(), activitylog.DestDB)
	return NewHandler(db, act, errorsfeature.NewErrorLogger(zap.NewNop()), zap.NewNop()), db
}

func validLead() map[string]any {
	return map[string]any{
		"companyName": "Sunburn Events",
		"ownerName":   "Karan",
		"email":       "Karan@Sunburn.in",
		"mobile":      "+91 98000 00000",
		"notes":       "<script>alert(1)</script>Called on <b>Monday</b>",
	}
}

func TestCreate(t *testing.T) {
	h, db := newTestHandler(t)

	rec := testutil.NewRecorder()
	h.Create(rec, testutil.WithAdmin(testutil.JSONRequest(http.MethodPost, "/api/leads", validLead()), testutil.TestAdmin()))
	rec.AssertStatus(t, http.StatusCreated)

	var l models.Lead
	rec.Decode(t, &l)
	if l.Status != models.LeadProspect || l.Type != models.DefaultLeadType {
		t.Errorf("defaults = %q/%q, want Prospect/Merchant", l.Status, l.Type)
	}
	if l.Email != "karan@sunburn.in" {
		t.Errorf("Email = %q", l.Email)
	}
	if l.Notes != "Called on Monday" {
		t.Errorf("Notes = %q, want markup stripped", l.Notes)
	}

	ctx, cancel := testutil.TestContext()
	defer cancel()
	logs, _ := systemlogstore.New(db).Recent(ctx, 1)
	if len(logs) != 1 || logs[0].Module != activitylog.ModuleCRM || logs[0].Target != "Sunburn Events" {
		t.Errorf("activity = %+v", logs)
	}
	if logs[0].Details["id"] != l.ID.Hex() {
		t.Errorf("details = %v", logs[0].Details)
	}
}

func TestCreate_Validation(t *testing.T) {
	h, _ := newTestHandler(t)

	tests := []struct {
		name    string
		mutate  func(map[string]any)
		wantMsg string
	}{
		{"no company", func(m map[string]any) { delete(m, "companyName") }, "Company name is required"},
		{"no mobile", func(m map[string]any) { m["mobile"] = "  " }, "Mobile is required"},
		{"bad status", func(m map[string]any) { m["status"] = "Hot" }, "Status must be one of: Prospect, Interested, Demo Booked, Demo Completed, Follow up, Under Review, Onboarded, Not Interested"},
		{"bad link", func(m map[string]any) { m["sourceLink"] = "javascript:alert(1)" }, "Source link must start with http:// or https://"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := validLead()
			tt.mutate(body)
			rec := testutil.NewRecorder()
			h.Create(rec, testutil.JSONRequest(http.MethodPost, "/api/leads", body))
			rec.AssertStatus(t, http.StatusBadRequest)
			rec.AssertMessage(t, tt.wantMsg)
		})
	}
}

func TestUpdateAndDelete(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := testutil.NewRecorder()
	h.Create(rec, testutil.JSONRequest(http.MethodPost, "/api/leads", validLead()))
	var l models.Lead
	rec.Decode(t, &l)

	rec = testutil.NewRecorder()
	h.Update(rec, testutil.WithURLParams(testutil.JSONRequest(http.MethodPut, "/", map[string]any{
		"status": "Demo Booked", "companyName": "", "notes": "",
	}), "id", l.ID.Hex()))
	rec.AssertStatus(t, http.StatusOK)

	var got models.Lead
	rec.Decode(t, &got)
	if got.Status != models.LeadDemoBooked || got.CompanyName != "Sunburn Events" || got.Notes != "" {
		t.Errorf("updated = status %q company %q notes %q", got.Status, got.CompanyName, got.Notes)
	}

	rec = testutil.NewRecorder()
	h.Update(rec, testutil.WithURLParams(testutil.JSONRequest(http.MethodPut, "/", map[string]any{"email": "nope"}), "id", l.ID.Hex()))
	rec.AssertStatus(t, http.StatusBadRequest)

	rec = testutil.NewRecorder()
	h.Update(rec, testutil.WithURLParams(testutil.JSONRequest(http.MethodPut, "/", map[string]any{}), "id", primitive.NewObjectID().Hex()))
	rec.AssertStatus(t, http.StatusNotFound)
	rec.AssertMessage(t, msgLeadNotFound)

	rec = testutil.NewRecorder()
	h.Delete(rec, testutil.WithURLParams(testutil.NewRequest(http.MethodDelete, "/"), "id", l.ID.Hex()))
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertMessage(t, msgLeadRemoved)

	rec = testutil.NewRecorder()
	h.List(rec, testutil.NewRequest(http.MethodGet, "/api/leads"))
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, "[]")
}
