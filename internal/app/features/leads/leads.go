// internal/app/features/leads/leads.go
package leads

import (
	"errors"
	"net/http"
	"strings"

	errorsfeature "github.com/dalemusser/eventhub/internal/app/features/errors"
	leadstore "github.com/dalemusser/eventhub/internal/app/store/leads"
	"github.com/dalemusser/eventhub/internal/app/system/activitylog"
	"github.com/dalemusser/eventhub/internal/app/system/authutil"
	"github.com/dalemusser/eventhub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/eventhub/internal/app/system/inputval"
	"github.com/dalemusser/eventhub/internal/app/system/jsonutil"
	"github.com/dalemusser/eventhub/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const (
	msgLeadNotFound = "Lead not found"
	msgLeadRemoved  = "Lead removed"
	msgInvalidBody  = "Invalid request body"
	msgInvalidEmail = "A valid email address is required"
)

// Handler serves the CRM lead pipeline.
type Handler struct {
	store    *leadstore.Store
	activity *activitylog.Logger
	errLog   *errorsfeature.ErrorLogger
	logger   *zap.Logger
}

// NewHandler creates a new leads Handler.
func NewHandler(db *mongo.Database, activity *activitylog.Logger, errLog *errorsfeature.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		store:    leadstore.New(db),
		activity: activity,
		errLog:   errLog,
		logger:   logger,
	}
}

// Routes returns a chi.Router with lead routes mounted. Every route is
// admin-only.
func Routes(h *Handler, adminOnly func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(adminOnly)

	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
	return r
}

// leadInput is the create body.
type leadInput struct {
	CompanyName  string `json:"companyName" validate:"required,max=200" label:"Company name"`
	OwnerName    string `json:"ownerName" validate:"required,max=200" label:"Owner name"`
	Email        string `json:"email" validate:"required,email" label:"Email"`
	Mobile       string `json:"mobile" validate:"required,max=30" label:"Mobile"`
	Country      string `json:"country"`
	State        string `json:"state"`
	City         string `json:"city"`
	SalesManager string `json:"salesManager"`
	Status       string `json:"status" validate:"leadstatus" label:"Status"`
	Type         string `json:"type"`
	Source       string `json:"source"`
	SourceLink   string `json:"sourceLink" validate:"httpurl" label:"Source link"`
	Notes        string `json:"notes"`
}

func (in *leadInput) trim() {
	for _, p := range []*string{
		&in.CompanyName, &in.OwnerName, &in.Email, &in.Mobile, &in.Country, &in.State,
		&in.City, &in.SalesManager, &in.Status, &in.Type, &in.Source, &in.SourceLink,
	} {
		*p = strings.TrimSpace(*p)
	}
	in.Notes = htmlsanitize.PlainText(in.Notes)
}

// target names a lead in the activity log.
func target(l *models.Lead) string {
	if l.CompanyName != "" {
		return l.CompanyName
	}
	return l.OwnerName
}

// List handles GET /api/leads.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	leads, err := h.store.List(r.Context())
	if err != nil {
		h.errLog.ServerError(w, r, "failed to list leads", err)
		return
	}
	jsonutil.OK(w, leads)
}

// Create handles POST /api/leads.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var in leadInput
	if err := jsonutil.Decode(r, &in); err != nil && !errors.Is(err, jsonutil.ErrEmptyBody) {
		jsonutil.BadRequest(w, msgInvalidBody)
		return
	}
	in.trim()
	if res := inputval.Validate(in); res.HasErrors() {
		jsonutil.BadRequest(w, res.First())
		return
	}

	l, err := h.store.Create(r.Context(), models.Lead{
		CompanyName:  in.CompanyName,
		OwnerName:    in.OwnerName,
		Email:        strings.ToLower(in.Email),
		Mobile:       in.Mobile,
		Country:      in.Country,
		State:        in.State,
		City:         in.City,
		SalesManager: in.SalesManager,
		Status:       in.Status,
		Type:         in.Type,
		Source:       in.Source,
		SourceLink:   in.SourceLink,
		Notes:        in.Notes,
	})
	if err != nil {
		h.errLog.ServerError(w, r, "failed to create lead", err)
		return
	}

	h.activity.Log(r.Context(), activitylog.ActionCreated, activitylog.ModuleCRM, target(&l), activitylog.IDDetail(l.ID))
	jsonutil.Created(w, l)
}

// leadPatch is the update body; absent and empty fields leave the stored
// value alone, except notes which can be cleared.
type leadPatch struct {
	CompanyName  string  `json:"companyName" validate:"max=200" label:"Company name"`
	OwnerName    string  `json:"ownerName" validate:"max=200" label:"Owner name"`
	Email        string  `json:"email"`
	Mobile       string  `json:"mobile" validate:"max=30" label:"Mobile"`
	Country      string  `json:"country"`
	State        string  `json:"state"`
	City         string  `json:"city"`
	SalesManager string  `json:"salesManager"`
	Status       string  `json:"status" validate:"leadstatus" label:"Status"`
	Type         string  `json:"type"`
	Source       string  `json:"source"`
	SourceLink   string  `json:"sourceLink" validate:"httpurl" label:"Source link"`
	Notes        *string `json:"notes"`
}

func nonEmpty(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func (p leadPatch) toUpdate() leadstore.Update {
	upd := leadstore.Update{
		CompanyName:  nonEmpty(p.CompanyName),
		OwnerName:    nonEmpty(p.OwnerName),
		Email:        nonEmpty(strings.ToLower(p.Email)),
		Mobile:       nonEmpty(p.Mobile),
		Country:      nonEmpty(p.Country),
		State:        nonEmpty(p.State),
		City:         nonEmpty(p.City),
		SalesManager: nonEmpty(p.SalesManager),
		Status:       nonEmpty(p.Status),
		Type:         nonEmpty(p.Type),
		Source:       nonEmpty(p.Source),
		SourceLink:   nonEmpty(p.SourceLink),
	}
	if p.Notes != nil {
		notes := htmlsanitize.PlainText(*p.Notes)
		upd.Notes = &notes
	}
	return upd
}

func leadID(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		jsonutil.NotFound(w, msgLeadNotFound)
		return id, false
	}
	return id, true
}

// Update handles PUT /api/leads/{id}.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := leadID(w, r)
	if !ok {
		return
	}
	var in leadPatch
	if err := jsonutil.Decode(r, &in); err != nil && !errors.Is(err, jsonutil.ErrEmptyBody) {
		jsonutil.BadRequest(w, msgInvalidBody)
		return
	}
	if res := inputval.Validate(in); res.HasErrors() {
		jsonutil.BadRequest(w, res.First())
		return
	}
	if e := strings.TrimSpace(in.Email); e != "" && !authutil.ValidEmail(e) {
		jsonutil.BadRequest(w, msgInvalidEmail)
		return
	}

	l, err := h.store.Update(r.Context(), id, in.toUpdate())
	if errors.Is(err, mongo.ErrNoDocuments) {
		jsonutil.NotFound(w, msgLeadNotFound)
		return
	}
	if err != nil {
		h.errLog.ServerError(w, r, "failed to update lead", err, zap.String("lead_id", id.Hex()))
		return
	}

	h.activity.Log(r.Context(), activitylog.ActionUpdated, activitylog.ModuleCRM, target(l), activitylog.IDDetail(l.ID))
	jsonutil.OK(w, l)
}

// Delete handles DELETE /api/leads/{id}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := leadID(w, r)
	if !ok {
		return
	}
	l, err := h.store.Delete(r.Context(), id)
	if errors.Is(err, mongo.ErrNoDocuments) {
		jsonutil.NotFound(w, msgLeadNotFound)
		return
	}
	if err != nil {
		h.errLog.ServerError(w, r, "failed to delete lead", err, zap.String("lead_id", id.Hex()))
		return
	}

	h.activity.Log(r.Context(), activitylog.ActionDeleted, activitylog.ModuleCRM, target(l), activitylog.IDDetail(l.ID))
	jsonutil.Message(w, http.StatusOK, msgLeadRemoved)
}
