// internal/app/store/bookings/bookingstore.go
package bookingstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/eventhub/internal/app/system/txn"
	"github.com/dalemusser/eventhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// ErrInsufficientSeats is returned when an event has fewer seats left than
// the booking asks for.
var ErrInsufficientSeats = errors.New("not enough seats available")

type Store struct {
	db     *mongo.Database
	c      *mongo.Collection
	events *mongo.Collection
	log    *zap.Logger
}

func New(db *mongo.Database, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{
		db:     db,
		c:      db.Collection("bookings"),
		events: db.Collection("events"),
		log:    log,
	}
}

// Book reserves the tickets on the event and inserts the booking as one
// unit. The seat decrement only matches while enough seats remain, so the
// count never goes negative even without transaction support. Returns
// mongo.ErrNoDocuments for an unknown event.
func (s *Store) Book(ctx context.Context, b models.Booking) (models.Booking, error) {
	seats := models.TicketCount(b.Tickets)
	now := time.Now()
	b.ID = primitive.NewObjectID()
	b.CreatedAt = now
	b.UpdatedAt = now
	if b.Status == "" {
		b.Status = models.BookingConfirmed
	}
	if b.PaymentStatus == "" {
		b.PaymentStatus = models.PaymentPending
	}

	err := txn.Run(ctx, s.db, s.log, func(ctx context.Context) error {
		if err := s.reserve(ctx, b.EventID, seats, now); err != nil {
			return err
		}
		_, err := s.c.InsertOne(ctx, b)
		return err
	})
	if err != nil {
		return models.Booking{}, err
	}
	return b, nil
}

func (s *Store) reserve(ctx context.Context, eventID primitive.ObjectID, seats int, now time.Time) error {
	res, err := s.events.UpdateOne(ctx,
		bson.M{"_id": eventID, "available_seats": bson.M{"$gte": seats}},
		bson.M{
			"$inc": bson.M{"available_seats": -seats, "attendees": seats},
			"$set": bson.M{"updated_at": now},
		},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount > 0 {
		return nil
	}
	n, err := s.events.CountDocuments(ctx, bson.M{"_id": eventID})
	if err != nil {
		return err
	}
	if n == 0 {
		return mongo.ErrNoDocuments
	}
	return ErrInsufficientSeats
}

// ByUser returns a user's bookings, newest first.
func (s *Store) ByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Booking, error) {
	return s.find(ctx, bson.M{"user_id": userID})
}

// All returns every booking, newest first.
func (s *Store) All(ctx context.Context) ([]models.Booking, error) {
	return s.find(ctx, bson.M{})
}

// ConfirmedRevenue sums total_amount over confirmed bookings.
func (s *Store) ConfirmedRevenue(ctx context.Context) (float64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"status": models.BookingConfirmed}}},
		{{Key: "$group", Value: bson.M{"_id": nil, "total": bson.M{"$sum": "$total_amount"}}}},
	}
	var rows []struct {
		Total float64 `bson:"total"`
	}
	if err := s.aggregate(ctx, pipeline, &rows); err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}
	return rows[0].Total, nil
}

// MonthRevenue is confirmed-booking revenue for one calendar month (UTC).
type MonthRevenue struct {
	Year    int     `json:"year"`
	Month   int     `json:"month"`
	Label   string  `json:"name"`
	Revenue float64 `json:"revenue"`
}

// RevenueByMonth returns one entry per month for the months calendar
// months ending with the month of now, oldest first. Months without
// bookings report zero.
func (s *Store) RevenueByMonth(ctx context.Context, now time.Time, months int) ([]MonthRevenue, error) {
	now = now.UTC()
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -(months - 1), 0)

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"status": models.BookingConfirmed, "created_at": bson.M{"$gte": start}}}},
		{{Key: "$group", Value: bson.M{
			"_id":   bson.M{"y": bson.M{"$year": "$created_at"}, "m": bson.M{"$month": "$created_at"}},
			"total": bson.M{"$sum": "$total_amount"},
		}}},
	}
	var rows []struct {
		ID struct {
			Y int `bson:"y"`
			M int `bson:"m"`
		} `bson:"_id"`
		Total float64 `bson:"total"`
	}
	if err := s.aggregate(ctx, pipeline, &rows); err != nil {
		return nil, err
	}

	totals := make(map[[2]int]float64, len(rows))
	for _, r := range rows {
		totals[[2]int{r.ID.Y, r.ID.M}] = r.Total
	}

	out := make([]MonthRevenue, 0, months)
	for i := 0; i < months; i++ {
		m := start.AddDate(0, i, 0)
		out = append(out, MonthRevenue{
			Year:    m.Year(),
			Month:   int(m.Month()),
			Label:   m.Month().String()[:3],
			Revenue: totals[[2]int{m.Year(), int(m.Month())}],
		})
	}
	return out, nil
}

func (s *Store) aggregate(ctx context.Context, pipeline mongo.Pipeline, out any) error {
	cur, err := s.c.Aggregate(ctx, pipeline)
	if err != nil {
		return err
	}
	defer cur.Close(ctx)
	return cur.All(ctx, out)
}

func (s *Store) find(ctx context.Context, filter bson.M) ([]models.Booking, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	bookings := []models.Booking{}
	if err := cur.All(ctx, &bookings); err != nil {
		return nil, err
	}
	return bookings, nil
}
