// internal/app/store/systemlog/store.go
package systemlogstore

import (
	"context"
	"time"

	"github.com/dalemusser/eventhub/internal/app/store/storeutil"
	"github.com/dalemusser/eventhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store holds the append-only business activity log.
type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("system_logs")}
}

// Append inserts entry, filling in id and timestamp when unset.
func (s *Store) Append(ctx context.Context, entry models.SystemLog) error {
	if entry.ID.IsZero() {
		entry.ID = primitive.NewObjectID()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}
	if entry.Details == nil {
		entry.Details = map[string]any{}
	}
	_, err := s.c.InsertOne(ctx, entry)
	return err
}

// Recent returns the newest limit entries.
func (s *Store) Recent(ctx context.Context, limit int64) ([]models.SystemLog, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetLimit(limit)
	return s.find(ctx, bson.M{}, opts)
}

// Page returns one page of entries, newest first, optionally restricted to
// a module, along with the total count.
func (s *Store) Page(ctx context.Context, module string, page, limit int64) ([]models.SystemLog, int64, error) {
	filter := bson.M{}
	if module != "" {
		filter["module"] = module
	}
	total, err := s.c.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	opts := storeutil.Paginate(limit, page).SetSort(bson.D{{Key: "timestamp", Value: -1}})
	logs, err := s.find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	return logs, total, nil
}

func (s *Store) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.SystemLog, error) {
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	logs := []models.SystemLog{}
	if err := cur.All(ctx, &logs); err != nil {
		return nil, err
	}
	return logs, nil
}
