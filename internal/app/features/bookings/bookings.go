// internal/app/features/bookings/bookings.go
package bookings

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	errorsfeature "github.com/dalemusser/eventhub/internal/app/features/errors"
	bookingstore "github.com/dalemusser/eventhub/internal/app/store/bookings"
	eventstore "github.com/dalemusser/eventhub/internal/app/store/events"
	userstore "github.com/dalemusser/eventhub/internal/app/store/users"
	"github.com/dalemusser/eventhub/internal/app/system/activitylog"
	"github.com/dalemusser/eventhub/internal/app/system/devicebind"
	"github.com/dalemusser/eventhub/internal/app/system/jsonutil"
	"github.com/dalemusser/eventhub/internal/app/system/timeouts"
	"github.com/dalemusser/eventhub/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const (
	msgEventNotFound   = "Event not found"
	msgNotEnoughSeats  = "Not enough seats available"
	msgNoTickets       = "At least one ticket is required"
	msgBadQuantity     = "Ticket quantity must be at least 1"
	msgNegativeAmounts = "Amounts cannot be negative"
	msgInvalidBody     = "Invalid request body"
)

// Handler serves ticket bookings.
type Handler struct {
	bookings *bookingstore.Store
	events   *eventstore.Store
	users    *userstore.Store
	activity *activitylog.Logger
	errLog   *errorsfeature.ErrorLogger
	logger   *zap.Logger
}

// NewHandler creates a new bookings Handler.
func NewHandler(
	db *mongo.Database,
	activity *activitylog.Logger,
	errLog *errorsfeature.ErrorLogger,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		bookings: bookingstore.New(db, logger),
		events:   eventstore.New(db),
		users:    userstore.New(db),
		activity: activity,
		errLog:   errLog,
		logger:   logger,
	}
}

// Routes mounts the booking routes. Booking and the caller's own list need
// a user session; the full list needs an admin session.
func Routes(h *Handler, userOnly, adminOnly func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.With(userOnly).Post("/", h.Create)
	r.With(userOnly).Get("/mybookings", h.Mine)
	r.With(adminOnly).Get("/", h.All)
	return r
}

type bookingRequest struct {
	EventID     string          `json:"eventId"`
	Tickets     []models.Ticket `json:"tickets"`
	TotalAmount float64         `json:"totalAmount"`
	PaymentID   string          `json:"paymentId"`
}

// check returns the message for the first problem with in, or "".
func (in bookingRequest) check() string {
	if len(in.Tickets) == 0 {
		return msgNoTickets
	}
	for _, t := range in.Tickets {
		if t.Quantity < 1 {
			return msgBadQuantity
		}
		if t.Price < 0 {
			return msgNegativeAmounts
		}
	}
	if in.TotalAmount < 0 {
		return msgNegativeAmounts
	}
	return ""
}

// Create handles POST /api/bookings. Seats are reserved and the booking
// stored together; a sold-out event is reported without side effects.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := devicebind.UserFrom(r.Context())
	if !ok {
		jsonutil.Unauthorized(w, devicebind.MsgNotAuthorized)
		return
	}

	var in bookingRequest
	if err := jsonutil.Decode(r, &in); err != nil && !errors.Is(err, jsonutil.ErrEmptyBody) {
		jsonutil.BadRequest(w, msgInvalidBody)
		return
	}
	eventID, err := primitive.ObjectIDFromHex(strings.TrimSpace(in.EventID))
	if err != nil {
		jsonutil.NotFound(w, msgEventNotFound)
		return
	}
	if msg := in.check(); msg != "" {
		jsonutil.BadRequest(w, msg)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	b, err := h.bookings.Book(ctx, models.Booking{
		UserID:      user.ID,
		EventID:     eventID,
		Tickets:     in.Tickets,
		TotalAmount: in.TotalAmount,
		PaymentID:   strings.TrimSpace(in.PaymentID),
		Status:      models.BookingConfirmed,
	})
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		jsonutil.NotFound(w, msgEventNotFound)
		return
	case errors.Is(err, bookingstore.ErrInsufficientSeats):
		jsonutil.BadRequest(w, msgNotEnoughSeats)
		return
	case err != nil:
		h.errLog.ServerError(w, r, "failed to create booking", err,
			zap.String("event_id", eventID.Hex()),
			zap.String("user_id", user.ID.Hex()))
		return
	}

	h.activity.Log(r.Context(), activitylog.ActionCreated, activitylog.ModuleBooking, eventID.Hex(),
		map[string]any{"id": b.ID.Hex(), "tickets": models.TicketCount(b.Tickets), "amount": b.TotalAmount})
	jsonutil.Created(w, b)
}

type eventSummary struct {
	ID       primitive.ObjectID `json:"id"`
	Name     string             `json:"name"`
	Date     time.Time          `json:"date"`
	Location string             `json:"location,omitempty"`
	Image    string             `json:"image,omitempty"`
}

type userSummary struct {
	ID    primitive.ObjectID `json:"id"`
	Name  string             `json:"name"`
	Email string             `json:"email"`
}

// bookingRow is a booking with its references resolved. Missing documents
// are rendered as null.
type bookingRow struct {
	models.Booking
	User  any           `json:"user"`
	Event *eventSummary `json:"event"`
}

func (h *Handler) eventsFor(ctx context.Context, list []models.Booking) (map[primitive.ObjectID]models.Event, error) {
	ids := make([]primitive.ObjectID, 0, len(list))
	for _, b := range list {
		ids = append(ids, b.EventID)
	}
	return h.events.GetByIDs(ctx, ids)
}

// Mine handles GET /api/bookings/mybookings.
func (h *Handler) Mine(w http.ResponseWriter, r *http.Request) {
	user, ok := devicebind.UserFrom(r.Context())
	if !ok {
		jsonutil.Unauthorized(w, devicebind.MsgNotAuthorized)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	list, err := h.bookings.ByUser(ctx, user.ID)
	if err != nil {
		h.errLog.ServerError(w, r, "failed to list bookings", err, zap.String("user_id", user.ID.Hex()))
		return
	}
	events, err := h.eventsFor(ctx, list)
	if err != nil {
		h.errLog.ServerError(w, r, "failed to resolve booked events", err)
		return
	}

	rows := make([]bookingRow, 0, len(list))
	for _, b := range list {
		row := bookingRow{Booking: b, User: b.UserID}
		if e, ok := events[b.EventID]; ok {
			row.Event = &eventSummary{ID: e.ID, Name: e.Name, Date: e.Date, Location: e.Location, Image: e.Image}
		}
		rows = append(rows, row)
	}
	jsonutil.OK(w, rows)
}

// All handles GET /api/bookings for admins.
func (h *Handler) All(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	list, err := h.bookings.All(ctx)
	if err != nil {
		h.errLog.ServerError(w, r, "failed to list bookings", err)
		return
	}
	events, err := h.eventsFor(ctx, list)
	if err != nil {
		h.errLog.ServerError(w, r, "failed to resolve booked events", err)
		return
	}
	userIDs := make([]primitive.ObjectID, 0, len(list))
	for _, b := range list {
		userIDs = append(userIDs, b.UserID)
	}
	users, err := h.users.GetByIDs(ctx, userIDs)
	if err != nil {
		h.errLog.ServerError(w, r, "failed to resolve booking users", err)
		return
	}

	rows := make([]bookingRow, 0, len(list))
	for _, b := range list {
		row := bookingRow{Booking: b}
		if u, ok := users[b.UserID]; ok {
			row.User = &userSummary{ID: u.ID, Name: u.Name, Email: u.Email}
		}
		if e, ok := events[b.EventID]; ok {
			row.Event = &eventSummary{ID: e.ID, Name: e.Name, Date: e.Date}
		}
		rows = append(rows, row)
	}
	jsonutil.OK(w, rows)
}
