// internal/app/store/events/eventstore.go
package eventstore

import (
	"context"
	"time"

	"github.com/dalemusser/eventhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CompletionGrace is how long after its date an event stays published.
const CompletionGrace = 24 * time.Hour

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("events")}
}

// GetByID returns mongo.ErrNoDocuments if the event does not exist.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Event, error) {
	var e models.Event
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&e); err != nil {
		return nil, err
	}
	return &e, nil
}

// GetByIDs loads events keyed by id; unknown ids are absent from the map.
func (s *Store) GetByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.Event, error) {
	out := make(map[primitive.ObjectID]models.Event, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	events, err := s.find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	for _, e := range events {
		out[e.ID] = e
	}
	return out, nil
}

// Soonest returns up to limit events ordered by date ascending.
func (s *Store) Soonest(ctx context.Context, limit int64) ([]models.Event, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "date", Value: 1}, {Key: "_id", Value: 1}}).
		SetLimit(limit)
	return s.find(ctx, bson.M{}, opts)
}

// All returns every event, newest date first.
func (s *Store) All(ctx context.Context) ([]models.Event, error) {
	return s.find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "date", Value: -1}}))
}

// Create inserts e. Capacity defaults to the available seats and status to
// draft.
func (s *Store) Create(ctx context.Context, e models.Event) (models.Event, error) {
	e.ID = primitive.NewObjectID()
	if e.Capacity == 0 {
		e.Capacity = e.AvailableSeats
	}
	if e.Status == "" {
		e.Status = models.EventDraft
	}
	now := time.Now()
	e.CreatedAt = now
	e.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, e); err != nil {
		return models.Event{}, err
	}
	return e, nil
}

// Update holds the editable event fields. Nil means unchanged.
type Update struct {
	Name           *string
	Description    *string
	Date           *time.Time
	Location       *string
	Organizer      *primitive.ObjectID
	Category       *primitive.ObjectID
	Price          *float64
	Image          *string
	AvailableSeats *int
	Capacity       *int
	Status         *string
}

// Update applies upd and returns the updated event, or
// mongo.ErrNoDocuments.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, upd Update) (*models.Event, error) {
	set := bson.M{"updated_at": time.Now()}
	if upd.Name != nil {
		set["name"] = *upd.Name
	}
	if upd.Description != nil {
		set["description"] = *upd.Description
	}
	if upd.Date != nil {
		set["date"] = *upd.Date
	}
	if upd.Location != nil {
		set["location"] = *upd.Location
	}
	if upd.Organizer != nil {
		set["organizer"] = *upd.Organizer
	}
	if upd.Category != nil {
		set["category"] = *upd.Category
	}
	if upd.Price != nil {
		set["price"] = *upd.Price
	}
	if upd.Image != nil {
		set["image"] = *upd.Image
	}
	if upd.AvailableSeats != nil {
		set["available_seats"] = *upd.AvailableSeats
	}
	if upd.Capacity != nil {
		set["capacity"] = *upd.Capacity
	}
	if upd.Status != nil {
		set["status"] = *upd.Status
	}

	var e models.Event
	err := s.c.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&e)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// Delete removes an event; found is false when it did not exist.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (found bool, err error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}

// Count returns the number of events.
func (s *Store) Count(ctx context.Context) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{})
}

// CountByOrganizer counts events with the given status per organizer.
func (s *Store) CountByOrganizer(ctx context.Context, status string) (map[primitive.ObjectID]int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"status": status, "organizer": bson.M{"$ne": nil}}}},
		{{Key: "$group", Value: bson.M{"_id": "$organizer", "n": bson.M{"$sum": 1}}}},
	}
	cur, err := s.c.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var rows []struct {
		ID primitive.ObjectID `bson:"_id"`
		N  int64              `bson:"n"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}
	out := make(map[primitive.ObjectID]int64, len(rows))
	for _, r := range rows {
		out[r.ID] = r.N
	}
	return out, nil
}

// CompletePast marks published events dated more than CompletionGrace
// before now as completed.
func (s *Store) CompletePast(ctx context.Context, now time.Time) (int64, error) {
	res, err := s.c.UpdateMany(ctx,
		bson.M{"status": models.EventPublished, "date": bson.M{"$lt": now.Add(-CompletionGrace)}},
		bson.M{"$set": bson.M{"status": models.EventCompleted, "updated_at": now}},
	)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

func (s *Store) find(ctx context.Context, filter bson.M, opts ...*options.FindOptions) ([]models.Event, error) {
	cur, err := s.c.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	events := []models.Event{}
	if err := cur.All(ctx, &events); err != nil {
		return nil, err
	}
	return events, nil
}
