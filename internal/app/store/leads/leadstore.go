// internal/app/store/leads/leadstore.go
package leadstore

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
	return &Store{c: db.Collection("leads")}
}

// Create inserts l with status and type defaults applied.
func (s *Store) Create(ctx context.Context, l models.Lead) (models.Lead, error) {
	l.ID = primitive.NewObjectID()
	if l.Status == "" {
		l.Status = models.LeadProspect
	}
	if l.Type == "" {
		l.Type = models.DefaultLeadType
	}
	now := time.Now()
	l.CreatedAt = now
	l.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, l); err != nil {
		return models.Lead{}, err
	}
	return l, nil
}

// List returns all leads, newest first.
func (s *Store) List(ctx context.Context) ([]models.Lead, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := s.c.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Lead{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Update holds the editable lead fields. Nil means unchanged.
type Update struct {
	CompanyName  *string
	OwnerName    *string
	Email        *string
	Mobile       *string
	Country      *string
	State        *string
	City         *string
	SalesManager *string
	Status       *string
	Type         *string
	Source       *string
	SourceLink   *string
	Notes        *string
}

func (u Update) set() bson.M {
	set := bson.M{"updated_at": time.Now()}
	for field, v := range map[string]*string{
		"company_name":  u.CompanyName,
		"owner_name":    u.OwnerName,
		"email":         u.Email,
		"mobile":        u.Mobile,
		"country":       u.Country,
		"state":         u.State,
		"city":          u.City,
		"sales_manager": u.SalesManager,
		"status":        u.Status,
		"type":          u.Type,
		"source":        u.Source,
		"source_link":   u.SourceLink,
		"notes":         u.Notes,
	} {
		if v != nil {
			set[field] = *v
		}
	}
	return set
}

// Update applies upd and returns the updated lead, or mongo.ErrNoDocuments.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, upd Update) (*models.Lead, error) {
	var l models.Lead
	err := s.c.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": upd.set()},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&l)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// Delete removes a lead and returns it, or mongo.ErrNoDocuments.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (*models.Lead, error) {
	var l models.Lead
	if err := s.c.FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&l); err != nil {
		return nil, err
	}
	return &l, nil
}
