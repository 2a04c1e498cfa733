package cms

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	errorsfeature "github.com/dalemusser/eventhub/internal/app/features/errors"
	cmsstore "github.com/dalemusser/eventhub/internal/app/store/cms"
	"github.com/dalemusser/eventhub/internal/domain/models"
	"github.com/dalemusser/eventhub/internal/testutil"
	"github.com/dalemusser/waffle/pantry/storage"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func newHandler(t *testing.T) (*Handler, *cmsstore.Store, storage.Store) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	fs, err := storage.NewLocal(storage.LocalConfig{BasePath: t.TempDir(), BaseURL: "/files"})
	if err != nil {
		t.Fatalf("NewLocal() error = %v", err)
	}
	h := NewHandler(db, fs, nil, errorsfeature.NewErrorLogger(zap.NewNop()), zap.NewNop())
	return h, cmsstore.New(db), fs
}

func multipartRequest(t *testing.T, method string, fields map[string]string, image []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatal(err)
		}
	}
	if image != nil {
		part, err := mw.CreateFormFile("image", "Banner.PNG")
		if err != nil {
			t.Fatal(err)
		}
		part.Write(image)
	}
	mw.Close()

	req := httptest.NewRequest(method, "/api/cms", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func createPage(t *testing.T, h *Handler, body map[string]any) models.CMSPage {
	t.Helper()
	rec := testutil.NewRecorder()
	h.Create(rec, testutil.JSONRequest(http.MethodPost, "/api/cms", body))
	rec.AssertStatus(t, http.StatusCreated)
	var out struct {
		Message string         `json:"message"`
		CMS     models.CMSPage `json:"cms"`
	}
	rec.Decode(t, &out)
	if out.Message != msgCreated {
		t.Errorf("message = %q", out.Message)
	}
	return out.CMS
}

func TestCreate_JSON(t *testing.T) {
	h, _, _ := newHandler(t)

	p := createPage(t, h, map[string]any{
		"city":           "Ahmedabad",
		"category":       "Music",
		"slug":           "Music Events  Ahmedabad",
		"seoTitle":       "<b>Music</b> in Ahmedabad",
		"seoDescription": "Live <script>x()</script>gigs",
	})
	if p.Slug != "music-events-ahmedabad" {
		t.Errorf("Slug = %q", p.Slug)
	}
	if strings.Contains(p.SEOTitle, "<") || strings.Contains(p.SEODescription, "script") {
		t.Errorf("markup kept: %q / %q", p.SEOTitle, p.SEODescription)
	}
	if !p.IsActive || p.LastUpdated.IsZero() {
		t.Errorf("page = %+v, want active with lastUpdated", p)
	}
}

func TestCreate_Rejects(t *testing.T) {
	h, _, _ := newHandler(t)
	createPage(t, h, map[string]any{"slug": "taken", "seoTitle": "Taken"})

	tests := []struct {
		name string
		body any
		msg  string
	}{
		{"no slug", map[string]any{"seoTitle": "T"}, msgRequired},
		{"no title", map[string]any{"slug": "s"}, msgRequired},
		{"blank title after strip", map[string]any{"slug": "s", "seoTitle": "<i></i>"}, msgRequired},
		{"duplicate slug", map[string]any{"slug": "Taken", "seoTitle": "Again"}, msgDuplicateSlug},
		{"malformed", `{"slug":`, msgInvalidBody},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := testutil.NewRecorder()
			h.Create(rec, testutil.JSONRequest(http.MethodPost, "/api/cms", tt.body))
			rec.AssertStatus(t, http.StatusBadRequest)
			rec.AssertMessage(t, tt.msg)
		})
	}
}

func TestCreate_MultipartImage(t *testing.T) {
	h, store, fs := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	rec := testutil.NewRecorder()
	h.Create(rec, multipartRequest(t, http.MethodPost, map[string]string{
		"slug":     "arts-pune",
		"seoTitle": "Arts in Pune",
		"city":     "Pune",
		"isActive": "false",
	}, []byte("png-bytes")))
	rec.AssertStatus(t, http.StatusCreated)

	var out struct {
		CMS models.CMSPage `json:"cms"`
	}
	rec.Decode(t, &out)
	if out.CMS.IsActive {
		t.Error("isActive=false was ignored")
	}
	if !strings.Contains(out.CMS.Image, "cms/") || !strings.HasSuffix(out.CMS.Image, ".png") {
		t.Errorf("Image = %q", out.CMS.Image)
	}

	stored, err := store.GetByID(ctx, out.CMS.ID)
	if err != nil {
		t.Fatal(err)
	}
	rc, err := fs.Get(ctx, stored.ImageKey)
	if err != nil {
		t.Fatalf("stored image missing: %v", err)
	}
	rc.Close()

	// Deleting the page releases the image.
	rec = testutil.NewRecorder()
	h.Delete(rec, testutil.WithURLParams(testutil.NewRequest(http.MethodDelete, "/"), "id", out.CMS.ID.Hex()))
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertMessage(t, msgDeleted)
	if rc, err := fs.Get(ctx, stored.ImageKey); err == nil {
		rc.Close()
		t.Error("image still stored after delete")
	}
}

func TestList_And_BySlug(t *testing.T) {
	h, _, _ := newHandler(t)
	createPage(t, h, map[string]any{"slug": "music-surat", "seoTitle": "Music", "city": "Surat"})
	off := createPage(t, h, map[string]any{"slug": "tech-surat", "seoTitle": "Tech", "city": "Surat", "isActive": false})
	createPage(t, h, map[string]any{"slug": "yoga-goa", "seoTitle": "Yoga", "city": "Goa"})

	tests := []struct {
		query string
		want  int
	}{
		{"", 3},
		{"?search=surat", 2},
		{"?search=SURAT&status=inactive", 1},
		{"?status=active", 2},
		{"?search=(", 0},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			rec := testutil.NewRecorder()
			h.List(rec, testutil.NewRequest(http.MethodGet, "/api/cms"+tt.query))
			rec.AssertStatus(t, http.StatusOK)
			var got []models.CMSPage
			rec.Decode(t, &got)
			if len(got) != tt.want {
				t.Errorf("len = %d, want %d", len(got), tt.want)
			}
		})
	}

	rec := testutil.NewRecorder()
	h.BySlug(rec, testutil.WithURLParams(testutil.NewRequest(http.MethodGet, "/"), "slug", "music-surat"))
	rec.AssertStatus(t, http.StatusOK)

	rec = testutil.NewRecorder()
	h.BySlug(rec, testutil.WithURLParams(testutil.NewRequest(http.MethodGet, "/"), "slug", off.Slug))
	rec.AssertStatus(t, http.StatusNotFound)
	rec.AssertMessage(t, msgPageNotFound)
}

func TestUpdate(t *testing.T) {
	h, _, _ := newHandler(t)
	a := createPage(t, h, map[string]any{"slug": "a", "seoTitle": "A", "city": "Rajkot"})
	createPage(t, h, map[string]any{"slug": "b", "seoTitle": "B"})

	rec := testutil.NewRecorder()
	h.Update(rec, testutil.WithURLParams(testutil.JSONRequest(http.MethodPut, "/", map[string]any{
		"seoTitle": "A <em>new</em>",
	}), "id", a.ID.Hex()))
	rec.AssertStatus(t, http.StatusOK)
	var got models.CMSPage
	rec.Decode(t, &got)
	if got.SEOTitle != "A new" || got.City != "Rajkot" || got.Slug != "a" {
		t.Errorf("page = %+v", got)
	}
	if !got.LastUpdated.After(a.LastUpdated) && !got.LastUpdated.Equal(a.LastUpdated) {
		t.Errorf("LastUpdated went backwards")
	}

	rec = testutil.NewRecorder()
	h.Update(rec, testutil.WithURLParams(testutil.JSONRequest(http.MethodPut, "/", map[string]any{"slug": "b"}), "id", a.ID.Hex()))
	rec.AssertStatus(t, http.StatusBadRequest)
	rec.AssertMessage(t, msgDuplicateSlug)

	for _, id := range []string{primitive.NewObjectID().Hex(), "nope"} {
		rec = testutil.NewRecorder()
		h.Update(rec, testutil.WithURLParams(testutil.JSONRequest(http.MethodPut, "/", map[string]any{"city": "X"}), "id", id))
		rec.AssertStatus(t, http.StatusNotFound)
		rec.AssertMessage(t, msgPageNotFound)
	}
}

func TestUpdate_ReplacesImage(t *testing.T) {
	h, store, fs := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	rec := testutil.NewRecorder()
	h.Create(rec, multipartRequest(t, http.MethodPost, map[string]string{"slug": "img", "seoTitle": "Img"}, []byte("one")))
	rec.AssertStatus(t, http.StatusCreated)
	var out struct {
		CMS models.CMSPage `json:"cms"`
	}
	rec.Decode(t, &out)
	first, _ := store.GetByID(ctx, out.CMS.ID)

	rec = testutil.NewRecorder()
	req := multipartRequest(t, http.MethodPut, map[string]string{"city": "Vadodara"}, []byte("two"))
	h.Update(rec, testutil.WithURLParams(req, "id", out.CMS.ID.Hex()))
	rec.AssertStatus(t, http.StatusOK)

	second, _ := store.GetByID(ctx, out.CMS.ID)
	if second.ImageKey == first.ImageKey || second.City != "Vadodara" {
		t.Errorf("page = %+v, want new image key and city", second)
	}
	if rc, err := fs.Get(ctx, first.ImageKey); err == nil {
		rc.Close()
		t.Error("old image still stored")
	}
}

func TestToggleStatus(t *testing.T) {
	h, _, _ := newHandler(t)
	p := createPage(t, h, map[string]any{"slug": "t", "seoTitle": "T"})

	for _, want := range []bool{false, true} {
		rec := testutil.NewRecorder()
		h.ToggleStatus(rec, testutil.WithURLParams(testutil.NewRequest(http.MethodPatch, "/"), "id", p.ID.Hex()))
		rec.AssertStatus(t, http.StatusOK)
		var got struct {
			Message  string `json:"message"`
			IsActive bool   `json:"isActive"`
		}
		rec.Decode(t, &got)
		if got.Message != msgStatusUpdated || got.IsActive != want {
			t.Errorf("toggle = %+v, want isActive %v", got, want)
		}
	}

	rec := testutil.NewRecorder()
	h.ToggleStatus(rec, testutil.WithURLParams(testutil.NewRequest(http.MethodPatch, "/"), "id", primitive.NewObjectID().Hex()))
	rec.AssertStatus(t, http.StatusNotFound)
}

func TestRoutes_AdminGuard(t *testing.T) {
	h, _, _ := newHandler(t)
	denyAll := func(http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		})
	}
	router := Routes(h, denyAll)

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/"},
		{http.MethodPost, "/"},
		{http.MethodPatch, "/" + primitive.NewObjectID().Hex() + "/status"},
	} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(tc.method, tc.path, nil))
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s %s = %d, want 401", tc.method, tc.path, rec.Code)
		}
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/slug/missing", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("GET /slug/missing = %d, want 404", rec.Code)
	}
}
