// internal/domain/models/cms.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CMSPage is a city/category landing page addressed by slug.
type CMSPage struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	State          string             `bson:"state" json:"state"`
	City           string             `bson:"city" json:"city"`
	Category       string             `bson:"category" json:"category"`
	Slug           string             `bson:"slug" json:"slug"`
	SEOTitle       string             `bson:"seo_title" json:"seoTitle"`
	SEODescription string             `bson:"seo_description" json:"seoDescription"`
	Keywords       string             `bson:"keywords" json:"keywords"`
	Image          string             `bson:"image" json:"image"`           // public URL
	ImageKey       string             `bson:"image_key,omitempty" json:"-"` // storage path
	IsActive       bool               `bson:"is_active" json:"isActive"`
	LastUpdated    time.Time          `bson:"last_updated" json:"lastUpdated"`
	CreatedAt      time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt      time.Time          `bson:"updated_at" json:"updatedAt"`
}
