package bookingstore

import (
	"errors"
	"sync"
	"testing"
	"time"

	eventstore "github.com/dalemusser/eventhub/internal/app/store/events"
	"github.com/dalemusser/eventhub/internal/domain/models"
	"github.com/dalemusser/eventhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func tickets(n int) []models.Ticket {
	return []models.Ticket{{Type: "General", Quantity: n, Price: 100}}
}

func TestBook_DecrementsSeats(t *testing.T) {
	db := testutil.SetupTestDB(t)
	events := eventstore.New(db)
	store := New(db, zap.NewNop())
	ctx, cancel := testutil.TestContext()
	defer cancel()

	ev, _ := events.Create(ctx, models.Event{Name: "Show", Location: "X", Date: time.Now(), AvailableSeats: 10})
	user := primitive.NewObjectID()

	b, err := store.Book(ctx, models.Booking{UserID: user, EventID: ev.ID, Tickets: tickets(3), TotalAmount: 300})
	if err != nil {
		t.Fatalf("Book() error = %v", err)
	}
	if b.Status != models.BookingConfirmed {
		t.Errorf("Status = %q, want confirmed", b.Status)
	}

	got, _ := events.GetByID(ctx, ev.ID)
	if got.AvailableSeats != 7 || got.Attendees != 3 {
		t.Errorf("seats/attendees = %d/%d, want 7/3", got.AvailableSeats, got.Attendees)
	}
}

func TestBook_InsufficientSeats(t *testing.T) {
	db := testutil.SetupTestDB(t)
	events := eventstore.New(db)
	store := New(db, zap.NewNop())
	ctx, cancel := testutil.TestContext()
	defer cancel()

	ev, _ := events.Create(ctx, models.Event{Name: "Tiny", Location: "X", Date: time.Now(), AvailableSeats: 2})

	_, err := store.Book(ctx, models.Booking{UserID: primitive.NewObjectID(), EventID: ev.ID, Tickets: tickets(3)})
	if !errors.Is(err, ErrInsufficientSeats) {
		t.Fatalf("Book() error = %v, want ErrInsufficientSeats", err)
	}
	got, _ := events.GetByID(ctx, ev.ID)
	if got.AvailableSeats != 2 {
		t.Errorf("AvailableSeats = %d, want unchanged 2", got.AvailableSeats)
	}
	if all, _ := store.All(ctx); len(all) != 0 {
		t.Errorf("bookings stored = %d, want 0", len(all))
	}
}

func TestBook_UnknownEvent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db, zap.NewNop())
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_, err := store.Book(ctx, models.Booking{UserID: primitive.NewObjectID(), EventID: primitive.NewObjectID(), Tickets: tickets(1)})
	if !errors.Is(err, mongo.ErrNoDocuments) {
		t.Errorf("Book() error = %v, want ErrNoDocuments", err)
	}
}

func TestBook_ConcurrentNeverOversells(t *testing.T) {
	db := testutil.SetupTestDB(t)
	events := eventstore.New(db)
	store := New(db, zap.NewNop())
	ctx, cancel := testutil.TestContext()
	defer cancel()

	ev, _ := events.Create(ctx, models.Event{Name: "Hot", Location: "X", Date: time.Now(), AvailableSeats: 5})

	var wg sync.WaitGroup
	var mu sync.Mutex
	ok := 0
	for i := 0; i < 12; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := store.Book(ctx, models.Booking{UserID: primitive.NewObjectID(), EventID: ev.ID, Tickets: tickets(1)}); err == nil {
				mu.Lock()
				ok++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	got, _ := events.GetByID(ctx, ev.ID)
	if got.AvailableSeats < 0 {
		t.Fatalf("AvailableSeats = %d, must not go negative", got.AvailableSeats)
	}
	if ok+got.AvailableSeats != 5 {
		t.Errorf("successful bookings %d + remaining %d != 5", ok, got.AvailableSeats)
	}
}

func TestByUserNewestFirst(t *testing.T) {
	db := testutil.SetupTestDB(t)
	events := eventstore.New(db)
	store := New(db, zap.NewNop())
	ctx, cancel := testutil.TestContext()
	defer cancel()

	ev, _ := events.Create(ctx, models.Event{Name: "Show", Location: "X", Date: time.Now(), AvailableSeats: 10})
	user := primitive.NewObjectID()
	first, _ := store.Book(ctx, models.Booking{UserID: user, EventID: ev.ID, Tickets: tickets(1)})
	time.Sleep(5 * time.Millisecond)
	second, _ := store.Book(ctx, models.Booking{UserID: user, EventID: ev.ID, Tickets: tickets(1)})
	_, _ = store.Book(ctx, models.Booking{UserID: primitive.NewObjectID(), EventID: ev.ID, Tickets: tickets(1)})

	got, err := store.ByUser(ctx, user)
	if err != nil {
		t.Fatalf("ByUser() error = %v", err)
	}
	if len(got) != 2 || got[0].ID != second.ID || got[1].ID != first.ID {
		t.Errorf("ByUser() order wrong: %v", got)
	}
}

func TestRevenue(t *testing.T) {
	db := testutil.SetupTestDB(t)
	events := eventstore.New(db)
	store := New(db, zap.NewNop())
	ctx, cancel := testutil.TestContext()
	defer cancel()

	ev, _ := events.Create(ctx, models.Event{Name: "Show", Location: "X", Date: time.Now(), AvailableSeats: 10})
	_, _ = store.Book(ctx, models.Booking{UserID: primitive.NewObjectID(), EventID: ev.ID, Tickets: tickets(1), TotalAmount: 250})
	_, _ = store.Book(ctx, models.Booking{UserID: primitive.NewObjectID(), EventID: ev.ID, Tickets: tickets(1), TotalAmount: 150})
	_, _ = store.Book(ctx, models.Booking{UserID: primitive.NewObjectID(), EventID: ev.ID, Tickets: tickets(1), TotalAmount: 999, Status: models.BookingCancelled})

	total, err := store.ConfirmedRevenue(ctx)
	if err != nil {
		t.Fatalf("ConfirmedRevenue() error = %v", err)
	}
	if total != 400 {
		t.Errorf("ConfirmedRevenue() = %v, want 400", total)
	}

	months, err := store.RevenueByMonth(ctx, time.Now(), 6)
	if err != nil {
		t.Fatalf("RevenueByMonth() error = %v", err)
	}
	if len(months) != 6 {
		t.Fatalf("RevenueByMonth() len = %d, want 6", len(months))
	}
	if last := months[5]; last.Revenue != 400 || last.Month != int(time.Now().UTC().Month()) {
		t.Errorf("current month = %+v, want revenue 400", last)
	}
	if months[0].Revenue != 0 {
		t.Errorf("oldest month revenue = %v, want 0", months[0].Revenue)
	}
}
