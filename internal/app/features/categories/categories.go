// internal/app/features/categories/categories.go
package categories

import (
	"errors"
	"net/http"
	"strings"

	errorsfeature "github.com/dalemusser/eventhub/internal/app/features/errors"
	categorystore "github.com/dalemusser/eventhub/internal/app/store/categories"
	"github.com/dalemusser/eventhub/internal/app/system/activitylog"
	"github.com/dalemusser/eventhub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/eventhub/internal/app/system/jsonutil"
	"github.com/dalemusser/eventhub/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const (
	msgCategoryExists = "Category already exists"
	msgNameRequired   = "Name is required"
)

// Handler serves event categories.
type Handler struct {
	store    *categorystore.Store
	activity *activitylog.Logger
	errLog   *errorsfeature.ErrorLogger
	logger   *zap.Logger
}

// NewHandler creates a new categories Handler.
func NewHandler(db *mongo.Database, activity *activitylog.Logger, errLog *errorsfeature.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		store:    categorystore.New(db),
		activity: activity,
		errLog:   errLog,
		logger:   logger,
	}
}

// Routes returns a chi.Router with category routes mounted.
func Routes(h *Handler, adminOnly func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.List)
	r.With(adminOnly).Post("/", h.Create)
	return r
}

// List handles GET /api/categories.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	cats, err := h.store.ListActive(r.Context())
	if err != nil {
		h.errLog.ServerError(w, r, "failed to list categories", err)
		return
	}
	jsonutil.OK(w, cats)
}

// Create handles POST /api/categories. Names are unique ignoring case.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		Icon        string `json:"icon"`
	}
	_ = jsonutil.Decode(r, &in)

	name := htmlsanitize.PlainText(in.Name)
	if name == "" {
		jsonutil.BadRequest(w, msgNameRequired)
		return
	}

	c, err := h.store.Create(r.Context(), models.Category{
		Name:        name,
		Description: htmlsanitize.PlainText(in.Description),
		Icon:        strings.TrimSpace(in.Icon),
	})
	if errors.Is(err, categorystore.ErrDuplicateName) {
		jsonutil.BadRequest(w, msgCategoryExists)
		return
	}
	if err != nil {
		h.errLog.ServerError(w, r, "failed to create category", err, zap.String("name", name))
		return
	}

	h.activity.Log(r.Context(), activitylog.ActionCreated, activitylog.ModuleCategory, c.Name, activitylog.IDDetail(c.ID))
	jsonutil.Created(w, c)
}
