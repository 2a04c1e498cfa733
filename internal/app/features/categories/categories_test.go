package categories

import (
	"net/http"
	"testing"

	errorsfeature "github.com/dalemusser/eventhub/internal/app/features/errors"
	"github.com/dalemusser/eventhub/internal/domain/models"
	"github.com/dalemusser/eventhub/internal/testutil"
	"go.uber.org/zap"
)

func TestCreateAndList(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := NewHandler(db, nil, errorsfeature.NewErrorLogger(zap.NewNop()), zap.NewNop())

	tests := []struct {
		name       string
		body       map[string]string
		wantStatus int
		wantMsg    string
	}{
		{"created", map[string]string{"name": "Music", "icon": "music_note"}, http.StatusCreated, ""},
		{"same name other case", map[string]string{"name": "MUSIC"}, http.StatusBadRequest, msgCategoryExists},
		{"markup only", map[string]string{"name": "<b></b>"}, http.StatusBadRequest, msgNameRequired},
		{"second", map[string]string{"name": "<i>Arts</i>", "description": "Theatre"}, http.StatusCreated, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := testutil.NewRecorder()
			h.Create(rec, testutil.JSONRequest(http.MethodPost, "/api/categories", tt.body))
			rec.AssertStatus(t, tt.wantStatus)
			if tt.wantMsg != "" {
				rec.AssertMessage(t, tt.wantMsg)
			}
		})
	}

	rec := testutil.NewRecorder()
	h.List(rec, testutil.NewRequest(http.MethodGet, "/api/categories"))
	rec.AssertStatus(t, http.StatusOK)

	var got []models.Category
	rec.Decode(t, &got)
	if len(got) != 2 || got[0].Name != "Arts" || got[1].Name != "Music" {
		t.Errorf("categories = %+v, want Arts, Music", got)
	}
	if !got[0].IsActive {
		t.Error("new category should be active")
	}
}
