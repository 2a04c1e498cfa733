package bookings

import (
	"net/http"
	"testing"
	"time"

	errorsfeature "github.com/dalemusser/eventhub/internal/app/features/errors"
	eventstore "github.com/dalemusser/eventhub/internal/app/store/events"
	userstore "github.com/dalemusser/eventhub/internal/app/store/users"
	"github.com/dalemusser/eventhub/internal/domain/models"
	"github.com/dalemusser/eventhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type fixture struct {
	h     *Handler
	db    *mongo.Database
	user  *models.User
	event models.Event
}

func newFixture(t *testing.T, seats int) fixture {
	t.Helper()
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u, err := userstore.New(db).Create(ctx, models.User{Name: "Ravi", Email: "ravi@x.io"})
	if err != nil {
		t.Fatal(err)
	}
	e, err := eventstore.New(db).Create(ctx, models.Event{
		Name: "Comedy Night", Location: "Mumbai", Date: time.Now().Add(48 * time.Hour), AvailableSeats: seats,
	})
	if err != nil {
		t.Fatal(err)
	}
	return fixture{
		h:     NewHandler(db, nil, errorsfeature.NewErrorLogger(zap.NewNop()), zap.NewNop()),
		db:    db,
		user:  &u,
		event: e,
	}
}

func (f fixture) book(t *testing.T, body any) *testutil.ResponseRecorder {
	t.Helper()
	rec := testutil.NewRecorder()
	f.h.Create(rec, testutil.WithUser(testutil.JSONRequest(http.MethodPost, "/api/bookings", body), f.user))
	return rec
}

func TestCreate_ReservesSeats(t *testing.T) {
	f := newFixture(t, 5)

	rec := f.book(t, map[string]any{
		"eventId":     f.event.ID.Hex(),
		"tickets":     []map[string]any{{"type": "GA", "quantity": 2, "price": 300}, {"type": "VIP", "quantity": 1, "price": 900}},
		"totalAmount": 1500,
		"paymentId":   "pay_123",
	})
	rec.AssertStatus(t, http.StatusCreated)

	var b models.Booking
	rec.Decode(t, &b)
	if b.Status != models.BookingConfirmed || b.UserID != f.user.ID {
		t.Errorf("booking = %+v", b)
	}

	ctx, cancel := testutil.TestContext()
	defer cancel()
	e, _ := eventstore.New(f.db).GetByID(ctx, f.event.ID)
	if e.AvailableSeats != 2 || e.Attendees != 3 {
		t.Errorf("seats/attendees = %d/%d, want 2/3", e.AvailableSeats, e.Attendees)
	}

	rec = f.book(t, map[string]any{
		"eventId": f.event.ID.Hex(),
		"tickets": []map[string]any{{"type": "GA", "quantity": 3, "price": 300}},
	})
	rec.AssertStatus(t, http.StatusBadRequest)
	rec.AssertMessage(t, msgNotEnoughSeats)

	e, _ = eventstore.New(f.db).GetByID(ctx, f.event.ID)
	if e.AvailableSeats != 2 {
		t.Errorf("rejected booking changed seats to %d", e.AvailableSeats)
	}
}

func TestCreate_Rejects(t *testing.T) {
	f := newFixture(t, 10)

	tests := []struct {
		name       string
		body       any
		wantStatus int
		wantMsg    string
	}{
		{"unknown event", map[string]any{"eventId": primitive.NewObjectID().Hex(), "tickets": []map[string]any{{"quantity": 1}}}, http.StatusNotFound, msgEventNotFound},
		{"bad event id", map[string]any{"eventId": "xyz", "tickets": []map[string]any{{"quantity": 1}}}, http.StatusNotFound, msgEventNotFound},
		{"no tickets", map[string]any{"eventId": f.event.ID.Hex()}, http.StatusBadRequest, msgNoTickets},
		{"zero quantity", map[string]any{"eventId": f.event.ID.Hex(), "tickets": []map[string]any{{"quantity": 0}}}, http.StatusBadRequest, msgBadQuantity},
		{"negative total", map[string]any{"eventId": f.event.ID.Hex(), "tickets": []map[string]any{{"quantity": 1}}, "totalAmount": -5}, http.StatusBadRequest, msgNegativeAmounts},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.book(t, tt.body)
			rec.AssertStatus(t, tt.wantStatus)
			rec.AssertMessage(t, tt.wantMsg)
		})
	}
}

func TestCreate_NoUser(t *testing.T) {
	f := newFixture(t, 1)
	rec := testutil.NewRecorder()
	f.h.Create(rec, testutil.JSONRequest(http.MethodPost, "/api/bookings", map[string]any{}))
	rec.AssertStatus(t, http.StatusUnauthorized)
}

func TestMineAndAll(t *testing.T) {
	f := newFixture(t, 10)
	f.book(t, map[string]any{"eventId": f.event.ID.Hex(), "tickets": []map[string]any{{"quantity": 1, "price": 100}}, "totalAmount": 100})

	rec := testutil.NewRecorder()
	f.h.Mine(rec, testutil.WithUser(testutil.NewRequest(http.MethodGet, "/api/bookings/mybookings"), f.user))
	rec.AssertStatus(t, http.StatusOK)

	var mine []struct {
		Event struct {
			Name     string `json:"name"`
			Location string `json:"location"`
		} `json:"event"`
	}
	rec.Decode(t, &mine)
	if len(mine) != 1 || mine[0].Event.Name != "Comedy Night" || mine[0].Event.Location != "Mumbai" {
		t.Errorf("mine = %+v", mine)
	}

	other := testutil.TestUser()
	rec = testutil.NewRecorder()
	f.h.Mine(rec, testutil.WithUser(testutil.NewRequest(http.MethodGet, "/api/bookings/mybookings"), other))
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, "[]")

	rec = testutil.NewRecorder()
	f.h.All(rec, testutil.NewRequest(http.MethodGet, "/api/bookings"))
	rec.AssertStatus(t, http.StatusOK)

	var all []struct {
		User struct {
			Name  string `json:"name"`
			Email string `json:"email"`
		} `json:"user"`
		Event struct {
			Name string `json:"name"`
		} `json:"event"`
	}
	rec.Decode(t, &all)
	if len(all) != 1 || all[0].User.Email != "ravi@x.io" || all[0].Event.Name != "Comedy Night" {
		t.Errorf("all = %+v", all)
	}
}
