// internal/domain/models/systemlog.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SystemLog is an append-only audit entry for a business event.
// Details carries per-action metadata of any shape.
type SystemLog struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	User      string             `bson:"user" json:"user"`
	Role      string             `bson:"role" json:"role"`
	Action    string             `bson:"action" json:"action"`
	Module    string             `bson:"module" json:"module"`
	Target    string             `bson:"target" json:"target"`
	Details   map[string]any     `bson:"details" json:"details"`
	Timestamp time.Time          `bson:"timestamp" json:"timestamp"`
}

// Actor used when a log entry has no authenticated caller.
const (
	SystemActorName = "Guest/System"
	SystemActorRole = "System"
)
