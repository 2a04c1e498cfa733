// internal/app/store/loginactivity/store.go
package loginactivitystore

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

// Store holds one record per login attempt.
type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("login_activities")}
}

// Record inserts rec. CreatedAt defaults to now (UTC).
func (s *Store) Record(ctx context.Context, rec models.LoginActivity) error {
	if rec.ID.IsZero() {
		rec.ID = primitive.NewObjectID()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	_, err := s.c.InsertOne(ctx, rec)
	return err
}

// Page returns one page of attempts, newest first, and the total count.
func (s *Store) Page(ctx context.Context, page, limit int64) ([]models.LoginActivity, int64, error) {
	total, err := s.c.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, 0, err
	}
	opts := storeutil.Paginate(limit, page).SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := s.c.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cur.Close(ctx)

	recs := []models.LoginActivity{}
	if err := cur.All(ctx, &recs); err != nil {
		return nil, 0, err
	}
	return recs, total, nil
}

// ByAccount returns the newest attempts recorded against an account.
func (s *Store) ByAccount(ctx context.Context, accountID primitive.ObjectID, limit int64) ([]models.LoginActivity, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(limit)
	cur, err := s.c.Find(ctx, bson.M{"account_id": accountID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	recs := []models.LoginActivity{}
	if err := cur.All(ctx, &recs); err != nil {
		return nil, err
	}
	return recs, nil
}

// DeleteBefore removes attempts older than cutoff and returns how many
// were deleted.
func (s *Store) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"created_at": bson.M{"$lt": cutoff}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// Between returns the attempts recorded in [start, end], oldest first.
func (s *Store) Between(ctx context.Context, start, end time.Time) ([]models.LoginActivity, error) {
	filter := bson.M{"created_at": bson.M{"$gte": start, "$lte": end}}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	recs := []models.LoginActivity{}
	if err := cur.All(ctx, &recs); err != nil {
		return nil, err
	}
	return recs, nil
}
