// internal/app/features/events/events.go
package events

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	errorsfeature "github.com/dalemusser/eventhub/internal/app/features/errors"
	categorystore "github.com/dalemusser/eventhub/internal/app/store/categories"
	eventstore "github.com/dalemusser/eventhub/internal/app/store/events"
	userstore "github.com/dalemusser/eventhub/internal/app/store/users"
	"github.com/dalemusser/eventhub/internal/app/system/activitylog"
	"github.com/dalemusser/eventhub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/eventhub/internal/app/system/inputval"
	"github.com/dalemusser/eventhub/internal/app/system/jsonutil"
	"github.com/dalemusser/eventhub/internal/app/system/timeouts"
	"github.com/dalemusser/eventhub/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const (
	listLimit = 10

	msgEventNotFound   = "Event not found"
	msgEventRemoved    = "Event removed"
	msgRequired        = "Name, date, and location are required"
	msgInvalidDate     = "Date must be YYYY-MM-DD or RFC 3339"
	msgInvalidBody     = "Invalid request body"
	msgNegativeNumbers = "Price and seats cannot be negative"
)

// Handler serves the event catalogue.
type Handler struct {
	events     *eventstore.Store
	users      *userstore.Store
	categories *categorystore.Store
	activity   *activitylog.Logger
	errLog     *errorsfeature.ErrorLogger
	logger     *zap.Logger
}

// NewHandler creates a new events Handler.
func NewHandler(
	db *mongo.Database,
	activity *activitylog.Logger,
	errLog *errorsfeature.ErrorLogger,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		events:     eventstore.New(db),
		users:      userstore.New(db),
		categories: categorystore.New(db),
		activity:   activity,
		errLog:     errLog,
		logger:     logger,
	}
}

// Routes returns a chi.Router with the event routes mounted. Reads are
// public; writes go through adminOnly.
func Routes(h *Handler, adminOnly func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.List)
	r.Get("/{id}", h.Get)

	r.Group(func(pr chi.Router) {
		pr.Use(adminOnly)
		pr.Post("/", h.Create)
		pr.Put("/{id}", h.Update)
		pr.Delete("/{id}", h.Delete)
	})
	return r
}

// eventInput is the create and update body. Pointers distinguish absent
// fields on update.
type eventInput struct {
	Name           *string  `json:"name"`
	Description    *string  `json:"description"`
	Date           *string  `json:"date"`
	Location       *string  `json:"location"`
	Organizer      *string  `json:"organizer"`
	Category       *string  `json:"category"`
	Price          *float64 `json:"price"`
	Image          *string  `json:"image"`
	AvailableSeats *int     `json:"availableSeats"`
	Capacity       *int     `json:"capacity"`
	Status         *string  `json:"status"`
}

// checked holds the ids the tags validate.
type checked struct {
	Organizer string `json:"organizer" validate:"objectid" label:"Organizer"`
	Category  string `json:"category" validate:"objectid" label:"Category"`
	Status    string `json:"status" validate:"eventstatus" label:"Status"`
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return strings.TrimSpace(*p)
}

// parseDate accepts a calendar date or a full timestamp.
func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}

func optionalID(p *string) *primitive.ObjectID {
	s := deref(p)
	if s == "" {
		return nil
	}
	id, _ := primitive.ObjectIDFromHex(s)
	return &id
}

// toUpdate validates in and converts it to a store update. The message is
// non-empty when the input is rejected.
func (in eventInput) toUpdate() (eventstore.Update, string) {
	var upd eventstore.Update

	if res := inputval.Validate(checked{
		Organizer: deref(in.Organizer),
		Category:  deref(in.Category),
		Status:    deref(in.Status),
	}); res.HasErrors() {
		return upd, res.First()
	}
	if (in.Price != nil && *in.Price < 0) ||
		(in.AvailableSeats != nil && *in.AvailableSeats < 0) ||
		(in.Capacity != nil && *in.Capacity < 0) {
		return upd, msgNegativeNumbers
	}

	if in.Date != nil {
		d, err := parseDate(*in.Date)
		if err != nil {
			return upd, msgInvalidDate
		}
		upd.Date = &d
	}
	if in.Name != nil {
		v := strings.TrimSpace(*in.Name)
		upd.Name = &v
	}
	if in.Location != nil {
		v := strings.TrimSpace(*in.Location)
		upd.Location = &v
	}
	if in.Status != nil && deref(in.Status) != "" {
		v := deref(in.Status)
		upd.Status = &v
	}
	if in.Description != nil {
		v := htmlsanitize.RichText(*in.Description)
		upd.Description = &v
	}
	upd.Image = in.Image
	upd.Price = in.Price
	upd.AvailableSeats = in.AvailableSeats
	upd.Capacity = in.Capacity
	upd.Organizer = optionalID(in.Organizer)
	upd.Category = optionalID(in.Category)
	return upd, ""
}

// List handles GET /api/events: the next events by date.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	events, err := h.events.Soonest(ctx, listLimit)
	if err != nil {
		h.errLog.ServerError(w, r, "failed to list events", err)
		return
	}
	jsonutil.OK(w, events)
}

// eventID parses {id}, writing a 404 when it cannot name an event.
func eventID(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		jsonutil.NotFound(w, msgEventNotFound)
		return id, false
	}
	return id, true
}

// Get handles GET /api/events/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := eventID(w, r)
	if !ok {
		return
	}
	e, err := h.events.GetByID(r.Context(), id)
	if errors.Is(err, mongo.ErrNoDocuments) {
		jsonutil.NotFound(w, msgEventNotFound)
		return
	}
	if err != nil {
		h.errLog.ServerError(w, r, "failed to load event", err, zap.String("event_id", id.Hex()))
		return
	}
	jsonutil.OK(w, e)
}

// Create handles POST /api/events.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var in eventInput
	if err := jsonutil.Decode(r, &in); err != nil && !errors.Is(err, jsonutil.ErrEmptyBody) {
		jsonutil.BadRequest(w, msgInvalidBody)
		return
	}
	if deref(in.Name) == "" || deref(in.Date) == "" || deref(in.Location) == "" {
		jsonutil.BadRequest(w, msgRequired)
		return
	}
	upd, msg := in.toUpdate()
	if msg != "" {
		jsonutil.BadRequest(w, msg)
		return
	}

	e := models.Event{
		Name:      *upd.Name,
		Date:      *upd.Date,
		Location:  *upd.Location,
		Organizer: upd.Organizer,
		Category:  upd.Category,
	}
	if upd.Description != nil {
		e.Description = *upd.Description
	}
	if upd.Image != nil {
		e.Image = *upd.Image
	}
	if upd.Price != nil {
		e.Price = *upd.Price
	}
	if upd.AvailableSeats != nil {
		e.AvailableSeats = *upd.AvailableSeats
	}
	if upd.Capacity != nil {
		e.Capacity = *upd.Capacity
	}
	if upd.Status != nil {
		e.Status = *upd.Status
	}

	created, err := h.events.Create(r.Context(), e)
	if err != nil {
		h.errLog.ServerError(w, r, "failed to create event", err)
		return
	}

	h.activity.Log(r.Context(), activitylog.ActionCreated, activitylog.ModuleEvent, created.Name,
		activitylog.IDDetail(created.ID))
	jsonutil.Created(w, created)
}

// Update handles PUT /api/events/{id}. Only the fields present change.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := eventID(w, r)
	if !ok {
		return
	}
	var in eventInput
	if err := jsonutil.Decode(r, &in); err != nil && !errors.Is(err, jsonutil.ErrEmptyBody) {
		jsonutil.BadRequest(w, msgInvalidBody)
		return
	}
	if (in.Name != nil && deref(in.Name) == "") || (in.Location != nil && deref(in.Location) == "") {
		jsonutil.BadRequest(w, msgRequired)
		return
	}
	upd, msg := in.toUpdate()
	if msg != "" {
		jsonutil.BadRequest(w, msg)
		return
	}

	e, err := h.events.Update(r.Context(), id, upd)
	if errors.Is(err, mongo.ErrNoDocuments) {
		jsonutil.NotFound(w, msgEventNotFound)
		return
	}
	if err != nil {
		h.errLog.ServerError(w, r, "failed to update event", err, zap.String("event_id", id.Hex()))
		return
	}

	h.activity.Log(r.Context(), activitylog.ActionUpdated, activitylog.ModuleEvent, e.Name, activitylog.IDDetail(e.ID))
	jsonutil.OK(w, e)
}

// Delete handles DELETE /api/events/{id}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := eventID(w, r)
	if !ok {
		return
	}
	found, err := h.events.Delete(r.Context(), id)
	if err != nil {
		h.errLog.ServerError(w, r, "failed to delete event", err, zap.String("event_id", id.Hex()))
		return
	}
	if !found {
		jsonutil.NotFound(w, msgEventNotFound)
		return
	}

	h.activity.Log(r.Context(), activitylog.ActionDeleted, activitylog.ModuleEvent, id.Hex(), activitylog.IDDetail(id))
	jsonutil.Message(w, http.StatusOK, msgEventRemoved)
}
