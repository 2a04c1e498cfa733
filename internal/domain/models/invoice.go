// internal/domain/models/invoice.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Invoice is a billing document for marketplace services.
type Invoice struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	InvoiceID   string             `bson:"invoice_id" json:"invoiceId"`
	Customer    InvoiceCustomer    `bson:"user" json:"user"`
	Services    []InvoiceLine      `bson:"services" json:"services"`
	Discount    float64            `bson:"discount" json:"discount"`
	GST         float64            `bson:"gst" json:"gst"`
	TotalAmount float64            `bson:"total_amount" json:"totalAmount"`
	Status      string             `bson:"status" json:"status"`
	Date        time.Time          `bson:"date" json:"date"`
	CreatedAt   time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updatedAt"`
}

// InvoiceCustomer is the bill-to party.
type InvoiceCustomer struct {
	Name  string `bson:"name" json:"name"`
	Email string `bson:"email" json:"email"`
}

// InvoiceLine is one billed service.
type InvoiceLine struct {
	ServiceName string  `bson:"service_name" json:"serviceName"`
	UnitPrice   float64 `bson:"unit_price" json:"unitPrice"`
	Qty         float64 `bson:"qty" json:"qty"`
	Amount      float64 `bson:"amount" json:"amount"`
}

// Invoice statuses
const (
	InvoicePaid    = "PAID"
	InvoicePending = "PENDING"
	InvoiceFailed  = "FAILED"
)

// Subtotal sums the line amounts.
func (inv Invoice) Subtotal() float64 {
	var s float64
	for _, l := range inv.Services {
		s += l.Amount
	}
	return s
}
