// internal/domain/models/booking.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Booking reserves seats on an event for a user.
type Booking struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID        primitive.ObjectID `bson:"user_id" json:"user"`
	EventID       primitive.ObjectID `bson:"event_id" json:"event"`
	Tickets       []Ticket           `bson:"tickets" json:"tickets"`
	TotalAmount   float64            `bson:"total_amount" json:"totalAmount"`
	Status        string             `bson:"status" json:"status"`
	PaymentID     string             `bson:"payment_id,omitempty" json:"paymentId,omitempty"`
	PaymentStatus string             `bson:"payment_status" json:"paymentStatus"`
	CreatedAt     time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt     time.Time          `bson:"updated_at" json:"updatedAt"`
}

// Ticket is one line of a booking.
type Ticket struct {
	Type     string  `bson:"type" json:"type"`
	Quantity int     `bson:"quantity" json:"quantity"`
	Price    float64 `bson:"price" json:"price"`
}

// Booking statuses
const (
	BookingPending   = "pending"
	BookingConfirmed = "confirmed"
	BookingCancelled = "cancelled"
)

// Payment statuses
const (
	PaymentPending  = "pending"
	PaymentPaid     = "paid"
	PaymentFailed   = "failed"
	PaymentRefunded = "refunded"
)

// TicketCount sums the quantities of all tickets.
func TicketCount(tickets []Ticket) int {
	n := 0
	for _, t := range tickets {
		n += t.Quantity
	}
	return n
}
