// internal/app/features/marketplace/marketplace.go
package marketplace

import (
	"errors"
	"net/http"
	"strings"

	errorsfeature "github.com/dalemusser/eventhub/internal/app/features/errors"
	servicestore "github.com/dalemusser/eventhub/internal/app/store/services"
	"github.com/dalemusser/eventhub/internal/app/system/activitylog"
	"github.com/dalemusser/eventhub/internal/app/system/inputval"
	"github.com/dalemusser/eventhub/internal/app/system/jsonutil"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const (
	msgServiceNotFound = "Service not found"
	msgInvalidBody     = "Invalid request body"
	msgNegativePrice   = "Price cannot be negative"
	msgTitleEmpty      = "Title cannot be empty"
)

// Handler serves the services marketplace.
type Handler struct {
	store    *servicestore.Store
	activity *activitylog.Logger
	errLog   *errorsfeature.ErrorLogger
	logger   *zap.Logger
}

// NewHandler creates a new marketplace Handler.
func NewHandler(db *mongo.Database, activity *activitylog.Logger, errLog *errorsfeature.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		store:    servicestore.New(db),
		activity: activity,
		errLog:   errLog,
		logger:   logger,
	}
}

// Routes returns a chi.Router with marketplace routes mounted.
func Routes(h *Handler, adminOnly func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/services", h.Services)
	r.With(adminOnly).Put("/services/{id}", h.UpdateService)
	return r
}

// Services handles GET /api/v1/marketplace/services.
func (h *Handler) Services(w http.ResponseWriter, r *http.Request) {
	services, err := h.store.ListActive(r.Context())
	if err != nil {
		h.errLog.ServerError(w, r, "failed to list services", err)
		return
	}
	jsonutil.OK(w, services)
}

type priceInput struct {
	Amount *float64 `json:"amount"`
	Type   *string  `json:"type"`
	Unit   *string  `json:"unit"`
}

type serviceInput struct {
	Title       *string     `json:"title"`
	Description *string     `json:"description"`
	Price       *priceInput `json:"price"`
	Benefits    []string    `json:"benefits"`
	Icon        *string     `json:"icon"`
	IsActive    *bool       `json:"isActive"`
}

type priceCheck struct {
	Type string `json:"type" validate:"pricetype" label:"Price type"`
}

func trimmed(p *string) *string {
	if p == nil {
		return nil
	}
	s := strings.TrimSpace(*p)
	return &s
}

// toUpdate returns the store update, or a message when in is rejected.
func (in serviceInput) toUpdate() (servicestore.Update, string) {
	upd := servicestore.Update{
		Title:       trimmed(in.Title),
		Description: in.Description,
		Icon:        trimmed(in.Icon),
		IsActive:    in.IsActive,
	}
	if upd.Title != nil && *upd.Title == "" {
		return upd, msgTitleEmpty
	}
	if in.Benefits != nil {
		upd.Benefits = make([]string, 0, len(in.Benefits))
		for _, b := range in.Benefits {
			if b = strings.TrimSpace(b); b != "" {
				upd.Benefits = append(upd.Benefits, b)
			}
		}
	}
	if p := in.Price; p != nil {
		if p.Amount != nil && *p.Amount < 0 {
			return upd, msgNegativePrice
		}
		if p.Type != nil {
			if res := inputval.Validate(priceCheck{Type: strings.TrimSpace(*p.Type)}); res.HasErrors() {
				return upd, res.First()
			}
		}
		upd.PriceAmount = p.Amount
		upd.PriceType = trimmed(p.Type)
		upd.PriceUnit = trimmed(p.Unit)
	}
	return upd, ""
}

// UpdateService handles PUT /api/v1/marketplace/services/{id}. Price parts
// are updated individually, so {"price":{"amount":9}} keeps type and unit.
func (h *Handler) UpdateService(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		jsonutil.NotFound(w, msgServiceNotFound)
		return
	}
	var in serviceInput
	if err := jsonutil.Decode(r, &in); err != nil && !errors.Is(err, jsonutil.ErrEmptyBody) {
		jsonutil.BadRequest(w, msgInvalidBody)
		return
	}
	upd, msg := in.toUpdate()
	if msg != "" {
		jsonutil.BadRequest(w, msg)
		return
	}

	svc, err := h.store.Update(r.Context(), id, upd)
	if errors.Is(err, mongo.ErrNoDocuments) {
		jsonutil.NotFound(w, msgServiceNotFound)
		return
	}
	if err != nil {
		h.errLog.ServerError(w, r, "failed to update service", err, zap.String("service_id", id.Hex()))
		return
	}

	h.activity.Log(r.Context(), activitylog.ActionUpdated, activitylog.ModuleMarketplace, svc.Title, activitylog.IDDetail(svc.ID))
	jsonutil.OK(w, svc)
}
