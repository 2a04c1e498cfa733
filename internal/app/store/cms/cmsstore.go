// internal/app/store/cms/cmsstore.go
package cmsstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/eventhub/internal/app/store/storeutil"
	"github.com/dalemusser/eventhub/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrDuplicateSlug is returned when another page already uses the slug.
var ErrDuplicateSlug = errors.New("slug already exists")

// Status filters for List.
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("cms_pages")}
}

// Create inserts p. New pages are active unless the caller set IsActive
// through Update later.
func (s *Store) Create(ctx context.Context, p models.CMSPage) (models.CMSPage, error) {
	p.ID = primitive.NewObjectID()
	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now
	p.LastUpdated = now

	if _, err := s.c.InsertOne(ctx, p); err != nil {
		if wafflemongo.IsDup(err) {
			return models.CMSPage{}, ErrDuplicateSlug
		}
		return models.CMSPage{}, err
	}
	return p, nil
}

// SlugExists reports whether any page uses slug.
func (s *Store) SlugExists(ctx context.Context, slug string) (bool, error) {
	n, err := s.c.CountDocuments(ctx, bson.M{"slug": slug}, options.Count().SetLimit(1))
	return n > 0, err
}

// GetByID returns mongo.ErrNoDocuments when missing.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.CMSPage, error) {
	var p models.CMSPage
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		return nil, err
	}
	return &p, nil
}

// GetActiveBySlug returns the active page with slug, or
// mongo.ErrNoDocuments.
func (s *Store) GetActiveBySlug(ctx context.Context, slug string) (*models.CMSPage, error) {
	var p models.CMSPage
	if err := s.c.FindOne(ctx, bson.M{"slug": slug, "is_active": true}).Decode(&p); err != nil {
		return nil, err
	}
	return &p, nil
}

// List returns pages matching search (slug, SEO title, city, category) and
// status ("", active, inactive), most recently updated first.
func (s *Store) List(ctx context.Context, search, status string) ([]models.CMSPage, error) {
	filter := storeutil.ContainsAny(search, "slug", "seo_title", "city", "category")
	switch status {
	case StatusActive:
		filter["is_active"] = true
	case StatusInactive:
		filter["is_active"] = false
	}

	opts := options.Find().SetSort(bson.D{{Key: "last_updated", Value: -1}})
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.CMSPage{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Update holds the editable page fields. Nil means unchanged.
type Update struct {
	State          *string
	City           *string
	Category       *string
	Slug           *string
	SEOTitle       *string
	SEODescription *string
	Keywords       *string
	Image          *string
	ImageKey       *string
	IsActive       *bool
}

// Update applies upd, bumps last_updated, and returns the updated page.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, upd Update) (*models.CMSPage, error) {
	now := time.Now()
	set := bson.M{"updated_at": now, "last_updated": now}
	for field, v := range map[string]*string{
		"state":           upd.State,
		"city":            upd.City,
		"category":        upd.Category,
		"slug":            upd.Slug,
		"seo_title":       upd.SEOTitle,
		"seo_description": upd.SEODescription,
		"keywords":        upd.Keywords,
		"image":           upd.Image,
		"image_key":       upd.ImageKey,
	} {
		if v != nil {
			set[field] = *v
		}
	}
	if upd.IsActive != nil {
		set["is_active"] = *upd.IsActive
	}

	var p models.CMSPage
	err := s.c.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&p)
	if err != nil {
		if wafflemongo.IsDup(err) {
			return nil, ErrDuplicateSlug
		}
		return nil, err
	}
	return &p, nil
}

// ToggleStatus flips is_active atomically and returns the new value.
func (s *Store) ToggleStatus(ctx context.Context, id primitive.ObjectID) (bool, error) {
	now := time.Now()
	pipeline := mongo.Pipeline{
		{{Key: "$set", Value: bson.M{
			"is_active":    bson.M{"$not": bson.A{"$is_active"}},
			"updated_at":   now,
			"last_updated": now,
		}}},
	}
	var p models.CMSPage
	err := s.c.FindOneAndUpdate(ctx, bson.M{"_id": id}, pipeline,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&p)
	if err != nil {
		return false, err
	}
	return p.IsActive, nil
}

// Delete removes a page and returns it so the caller can release its
// image, or mongo.ErrNoDocuments.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (*models.CMSPage, error) {
	var p models.CMSPage
	if err := s.c.FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		return nil, err
	}
	return &p, nil
}
