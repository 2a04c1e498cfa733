// internal/app/features/cms/cms.go
package cms

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	errorsfeature "github.com/dalemusser/eventhub/internal/app/features/errors"
	cmsstore "github.com/dalemusser/eventhub/internal/app/store/cms"
	"github.com/dalemusser/eventhub/internal/app/system/activitylog"
	"github.com/dalemusser/eventhub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/eventhub/internal/app/system/jsonutil"
	"github.com/dalemusser/eventhub/internal/app/system/normalize"
	"github.com/dalemusser/eventhub/internal/app/system/timeouts"
	"github.com/dalemusser/eventhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/storage"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const (
	msgRequired      = "Slug and SEO title are required"
	msgDuplicateSlug = "Slug already exists"
	msgPageNotFound  = "CMS Page not found"
	msgInvalidBody   = "Invalid request body"
	msgImageUpload   = "Failed to upload image"
	msgCreated       = "CMS Page created successfully"
	msgDeleted       = "CMS Page deleted successfully"
	msgStatusUpdated = "Status updated"
)

const maxUploadSize = 10 << 20

// Handler serves the city/category landing pages.
type Handler struct {
	store       *cmsstore.Store
	fileStorage storage.Store
	activity    *activitylog.Logger
	errLog      *errorsfeature.ErrorLogger
	logger      *zap.Logger
}

// NewHandler creates a new CMS Handler.
func NewHandler(db *mongo.Database, fileStorage storage.Store, activity *activitylog.Logger, errLog *errorsfeature.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		store:       cmsstore.New(db),
		fileStorage: fileStorage,
		activity:    activity,
		errLog:      errLog,
		logger:      logger,
	}
}

// Routes returns a chi.Router with CMS routes mounted. Only the slug lookup
// is public.
func Routes(h *Handler, adminOnly func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/slug/{slug}", h.BySlug)

	r.Group(func(r chi.Router) {
		r.Use(adminOnly)
		r.Post("/", h.Create)
		r.Get("/", h.List)
		r.Put("/{id}", h.Update)
		r.Patch("/{id}/status", h.ToggleStatus)
		r.Delete("/{id}", h.Delete)
	})
	return r
}

// pageInput is the editable page body. Nil fields were not sent.
type pageInput struct {
	State          *string `json:"state"`
	City           *string `json:"city"`
	Category       *string `json:"category"`
	Slug           *string `json:"slug"`
	SEOTitle       *string `json:"seoTitle"`
	SEODescription *string `json:"seoDescription"`
	Keywords       *string `json:"keywords"`
	Image          *string `json:"image"`
	IsActive       *bool   `json:"isActive"`
}

// upload is an image file sent with a multipart body.
type upload struct {
	file        io.ReadCloser
	filename    string
	contentType string
}

func (u *upload) Close() {
	if u != nil {
		u.file.Close()
	}
}

func plain(p *string) *string {
	if p == nil {
		return nil
	}
	s := htmlsanitize.PlainText(*p)
	return &s
}

// clean trims the text fields and strips markup from the SEO fields.
func (in *pageInput) clean() {
	for _, p := range []*string{in.State, in.City, in.Category, in.Image} {
		if p != nil {
			*p = strings.TrimSpace(*p)
		}
	}
	if in.Slug != nil {
		s := normalize.Slug(*in.Slug)
		in.Slug = &s
	}
	in.SEOTitle = plain(in.SEOTitle)
	in.SEODescription = plain(in.SEODescription)
	in.Keywords = plain(in.Keywords)
}

func isMultipart(r *http.Request) bool {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mt == "multipart/form-data"
}

// readInput decodes a JSON or multipart body. The returned upload is nil
// unless an "image" file part was sent.
func readInput(r *http.Request) (pageInput, *upload, error) {
	var in pageInput
	if !isMultipart(r) {
		if err := jsonutil.Decode(r, &in); err != nil && !errors.Is(err, jsonutil.ErrEmptyBody) {
			return in, nil, err
		}
		in.clean()
		return in, nil, nil
	}

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		return in, nil, err
	}
	field := func(name string) *string {
		if vs, ok := r.MultipartForm.Value[name]; ok && len(vs) > 0 {
			v := vs[0]
			return &v
		}
		return nil
	}
	in.State = field("state")
	in.City = field("city")
	in.Category = field("category")
	in.Slug = field("slug")
	in.SEOTitle = field("seoTitle")
	in.SEODescription = field("seoDescription")
	in.Keywords = field("keywords")
	in.Image = field("image")
	if v := field("isActive"); v != nil {
		b, err := strconv.ParseBool(*v)
		if err != nil {
			return in, nil, fmt.Errorf("isActive: %w", err)
		}
		in.IsActive = &b
	}
	in.clean()

	file, header, err := r.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) {
		return in, nil, nil
	}
	if err != nil {
		return in, nil, err
	}
	ct := header.Header.Get("Content-Type")
	if ct == "" {
		ct = "application/octet-stream"
	}
	return in, &upload{file: file, filename: header.Filename, contentType: ct}, nil
}

// storeImage puts u under cms/YYYY/MM/ and returns its storage path and
// public URL.
func (h *Handler) storeImage(ctx context.Context, u *upload) (string, string, error) {
	now := time.Now().UTC()
	name := uuid.New().String()[:8] + strings.ToLower(filepath.Ext(u.filename))
	path := fmt.Sprintf("cms/%04d/%02d/%s", now.Year(), int(now.Month()), name)

	if err := h.fileStorage.Put(ctx, path, u.file, &storage.PutOptions{ContentType: u.contentType}); err != nil {
		return "", "", err
	}
	return path, h.fileStorage.URL(path), nil
}

// dropImage removes a stored image. Failures are logged and otherwise
// ignored.
func (h *Handler) dropImage(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := h.fileStorage.Delete(ctx, key); err != nil {
		h.logger.Warn("failed to delete cms image", zap.String("path", key), zap.Error(err))
	}
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func cityDetail(p models.CMSPage) map[string]any {
	return map[string]any{"id": p.ID.Hex(), "city": p.City}
}

// Create handles POST /api/cms.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	in, up, err := readInput(r)
	if err != nil {
		jsonutil.BadRequest(w, msgInvalidBody)
		return
	}
	defer up.Close()

	if deref(in.Slug) == "" || deref(in.SEOTitle) == "" {
		jsonutil.BadRequest(w, msgRequired)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	exists, err := h.store.SlugExists(ctx, *in.Slug)
	if err != nil {
		h.errLog.ServerError(w, r, "failed to check cms slug", err)
		return
	}
	if exists {
		jsonutil.BadRequest(w, msgDuplicateSlug)
		return
	}

	page := models.CMSPage{
		State:          deref(in.State),
		City:           deref(in.City),
		Category:       deref(in.Category),
		Slug:           *in.Slug,
		SEOTitle:       *in.SEOTitle,
		SEODescription: deref(in.SEODescription),
		Keywords:       deref(in.Keywords),
		Image:          deref(in.Image),
		IsActive:       true,
	}
	if in.IsActive != nil {
		page.IsActive = *in.IsActive
	}
	if up != nil {
		key, url, err := h.storeImage(ctx, up)
		if err != nil {
			h.errLog.ServerError(w, r, msgImageUpload, err)
			return
		}
		page.ImageKey, page.Image = key, url
	}

	created, err := h.store.Create(ctx, page)
	if err != nil {
		h.dropImage(ctx, page.ImageKey)
		if errors.Is(err, cmsstore.ErrDuplicateSlug) {
			jsonutil.BadRequest(w, msgDuplicateSlug)
			return
		}
		h.errLog.ServerError(w, r, "failed to create cms page", err)
		return
	}

	h.activity.Log(ctx, activitylog.ActionCreated, activitylog.ModuleCMS, created.Slug, cityDetail(created))
	jsonutil.Created(w, struct {
		Message string         `json:"message"`
		CMS     models.CMSPage `json:"cms"`
	}{msgCreated, created})
}

// List handles GET /api/cms?search=&status=.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	status := strings.ToLower(strings.TrimSpace(q.Get("status")))

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	pages, err := h.store.List(ctx, strings.TrimSpace(q.Get("search")), status)
	if err != nil {
		h.errLog.ServerError(w, r, "failed to list cms pages", err)
		return
	}
	jsonutil.OK(w, pages)
}

// BySlug handles GET /api/cms/slug/{slug}. Inactive pages are not found.
func (h *Handler) BySlug(w http.ResponseWriter, r *http.Request) {
	slug := normalize.Slug(chi.URLParam(r, "slug"))

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	page, err := h.store.GetActiveBySlug(ctx, slug)
	if errors.Is(err, mongo.ErrNoDocuments) {
		jsonutil.NotFound(w, msgPageNotFound)
		return
	}
	if err != nil {
		h.errLog.ServerError(w, r, "failed to load cms page", err, zap.String("slug", slug))
		return
	}
	jsonutil.OK(w, page)
}

// Update handles PUT /api/cms/{id}. A new image replaces the stored one.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		jsonutil.NotFound(w, msgPageNotFound)
		return
	}
	in, up, err := readInput(r)
	if err != nil {
		jsonutil.BadRequest(w, msgInvalidBody)
		return
	}
	defer up.Close()

	if (in.Slug != nil && *in.Slug == "") || (in.SEOTitle != nil && *in.SEOTitle == "") {
		jsonutil.BadRequest(w, msgRequired)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	old, err := h.store.GetByID(ctx, id)
	if errors.Is(err, mongo.ErrNoDocuments) {
		jsonutil.NotFound(w, msgPageNotFound)
		return
	}
	if err != nil {
		h.errLog.ServerError(w, r, "failed to load cms page", err, zap.String("cms_id", id.Hex()))
		return
	}

	upd := cmsstore.Update{
		State:          in.State,
		City:           in.City,
		Category:       in.Category,
		Slug:           in.Slug,
		SEOTitle:       in.SEOTitle,
		SEODescription: in.SEODescription,
		Keywords:       in.Keywords,
		Image:          in.Image,
		IsActive:       in.IsActive,
	}
	if in.Image != nil {
		// A plain URL detaches the page from any stored file.
		empty := ""
		upd.ImageKey = &empty
	}
	if up != nil {
		key, url, err := h.storeImage(ctx, up)
		if err != nil {
			h.errLog.ServerError(w, r, msgImageUpload, err)
			return
		}
		upd.Image, upd.ImageKey = &url, &key
	}

	page, err := h.store.Update(ctx, id, upd)
	if err != nil {
		if upd.ImageKey != nil {
			h.dropImage(ctx, *upd.ImageKey)
		}
		switch {
		case errors.Is(err, cmsstore.ErrDuplicateSlug):
			jsonutil.BadRequest(w, msgDuplicateSlug)
		case errors.Is(err, mongo.ErrNoDocuments):
			jsonutil.NotFound(w, msgPageNotFound)
		default:
			h.errLog.ServerError(w, r, "failed to update cms page", err, zap.String("cms_id", id.Hex()))
		}
		return
	}
	if upd.ImageKey != nil && old.ImageKey != *upd.ImageKey {
		h.dropImage(ctx, old.ImageKey)
	}

	h.activity.Log(ctx, activitylog.ActionUpdated, activitylog.ModuleCMS, page.Slug, cityDetail(*page))
	jsonutil.OK(w, page)
}

// ToggleStatus handles PATCH /api/cms/{id}/status.
func (h *Handler) ToggleStatus(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		jsonutil.NotFound(w, msgPageNotFound)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	active, err := h.store.ToggleStatus(ctx, id)
	if errors.Is(err, mongo.ErrNoDocuments) {
		jsonutil.NotFound(w, msgPageNotFound)
		return
	}
	if err != nil {
		h.errLog.ServerError(w, r, "failed to toggle cms status", err, zap.String("cms_id", id.Hex()))
		return
	}

	h.activity.Log(ctx, activitylog.ActionUpdatedStatus, activitylog.ModuleCMS, id.Hex(),
		map[string]any{"id": id.Hex(), "isActive": active})
	jsonutil.OK(w, struct {
		Message  string `json:"message"`
		IsActive bool   `json:"isActive"`
	}{msgStatusUpdated, active})
}

// Delete handles DELETE /api/cms/{id}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		jsonutil.NotFound(w, msgPageNotFound)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	page, err := h.store.Delete(ctx, id)
	if errors.Is(err, mongo.ErrNoDocuments) {
		jsonutil.NotFound(w, msgPageNotFound)
		return
	}
	if err != nil {
		h.errLog.ServerError(w, r, "failed to delete cms page", err, zap.String("cms_id", id.Hex()))
		return
	}
	h.dropImage(ctx, page.ImageKey)

	h.activity.Log(ctx, activitylog.ActionDeleted, activitylog.ModuleCMS, page.Slug, cityDetail(*page))
	jsonutil.Message(w, http.StatusOK, msgDeleted)
}
