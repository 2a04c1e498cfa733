// internal/domain/models/event.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Event is a ticketed happening.
type Event struct {
	ID             primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Name           string              `bson:"name" json:"name"`
	Description    string              `bson:"description" json:"description"`
	Date           time.Time           `bson:"date" json:"date"`
	Location       string              `bson:"location" json:"location"`
	Organizer      *primitive.ObjectID `bson:"organizer,omitempty" json:"organizer,omitempty"`
	Category       *primitive.ObjectID `bson:"category,omitempty" json:"category,omitempty"`
	Price          float64             `bson:"price" json:"price"`
	Image          string              `bson:"image" json:"image"`
	AvailableSeats int                 `bson:"available_seats" json:"availableSeats"`
	Capacity       int                 `bson:"capacity" json:"capacity"`
	Status         string              `bson:"status" json:"status"`
	Attendees      int                 `bson:"attendees" json:"attendees"`
	CreatedAt      time.Time           `bson:"created_at" json:"createdAt"`
	UpdatedAt      time.Time           `bson:"updated_at" json:"updatedAt"`
}

// Event statuses
const (
	EventDraft     = "draft"
	EventPublished = "published"
	EventCancelled = "cancelled"
	EventCompleted = "completed"
)

// IsValidEventStatus checks if s is a known event status.
func IsValidEventStatus(s string) bool {
	switch s {
	case EventDraft, EventPublished, EventCancelled, EventCompleted:
		return true
	}
	return false
}
