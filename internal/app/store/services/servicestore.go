// internal/app/store/services/servicestore.go
package servicestore

import (
	"context"
	"time"

	"github.com/dalemusser/eventhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("services")}
}

// ListActive returns active marketplace services in creation order.
func (s *Store) ListActive(ctx context.Context) ([]models.Service, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.c.Find(ctx, bson.M{"is_active": true}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Service{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Update holds the editable service fields. Nil means unchanged; price
// parts are updated individually.
type Update struct {
	Title       *string
	Description *string
	PriceAmount *float64
	PriceType   *string
	PriceUnit   *string
	Benefits    []string
	Icon        *string
	IsActive    *bool
}

// Update applies upd and returns the updated service, or
// mongo.ErrNoDocuments.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, upd Update) (*models.Service, error) {
	set := bson.M{"updated_at": time.Now()}
	if upd.Title != nil {
		set["title"] = *upd.Title
	}
	if upd.Description != nil {
		set["description"] = *upd.Description
	}
	if upd.PriceAmount != nil {
		set["price.amount"] = *upd.PriceAmount
	}
	if upd.PriceType != nil {
		set["price.type"] = *upd.PriceType
	}
	if upd.PriceUnit != nil {
		set["price.unit"] = *upd.PriceUnit
	}
	if upd.Benefits != nil {
		set["benefits"] = upd.Benefits
	}
	if upd.Icon != nil {
		set["icon"] = *upd.Icon
	}
	if upd.IsActive != nil {
		set["is_active"] = *upd.IsActive
	}

	var svc models.Service
	err := s.c.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&svc)
	if err != nil {
		return nil, err
	}
	return &svc, nil
}

// InsertIfEmpty inserts catalog only when the collection has no services.
// It returns the number inserted.
func (s *Store) InsertIfEmpty(ctx context.Context, catalog []models.Service) (int, error) {
	n, err := s.c.CountDocuments(ctx, bson.M{}, options.Count().SetLimit(1))
	if err != nil || n > 0 || len(catalog) == 0 {
		return 0, err
	}

	now := time.Now()
	docs := make([]interface{}, len(catalog))
	for i, svc := range catalog {
		svc.ID = primitive.NewObjectID()
		if svc.Icon == "" {
			svc.Icon = models.DefaultServiceIcon
		}
		if svc.Benefits == nil {
			svc.Benefits = []string{}
		}
		// Stagger timestamps so creation order matches catalog order.
		svc.CreatedAt = now.Add(time.Duration(i) * time.Millisecond)
		svc.UpdatedAt = svc.CreatedAt
		docs[i] = svc
	}
	res, err := s.c.InsertMany(ctx, docs)
	if err != nil {
		return 0, err
	}
	return len(res.InsertedIDs), nil
}
