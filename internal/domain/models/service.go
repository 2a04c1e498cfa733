// internal/domain/models/service.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Service is a marketplace offering with list pricing.
type Service struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description" json:"description"`
	Price       ServicePrice       `bson:"price" json:"price"`
	Benefits    []string           `bson:"benefits" json:"benefits"`
	Icon        string             `bson:"icon" json:"icon"`
	IsActive    bool               `bson:"is_active" json:"isActive"`
	CreatedAt   time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updatedAt"`
}

// ServicePrice describes how a service is charged.
type ServicePrice struct {
	Amount float64 `bson:"amount" json:"amount"`
	Type   string  `bson:"type" json:"type"` // fixed, variable, percentage
	Unit   string  `bson:"unit" json:"unit"` // e.g. "Per Unit", "%"
}

// Price types
const (
	PriceFixed      = "fixed"
	PriceVariable   = "variable"
	PricePercentage = "percentage"
)

// DefaultServiceIcon is the icon class given to services without one.
const DefaultServiceIcon = "bi-box-seam"

// IsValidPriceType checks if t is a known price type.
func IsValidPriceType(t string) bool {
	return t == PriceFixed || t == PriceVariable || t == PricePercentage
}
