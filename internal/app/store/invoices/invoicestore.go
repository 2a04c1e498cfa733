// internal/app/store/invoices/invoicestore.go
package invoicestore

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

// ErrDuplicateInvoiceID is returned when the invoice number is taken.
var ErrDuplicateInvoiceID = errors.New("invoice id already exists")

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("invoices")}
}

// Create inserts inv as given; the caller computes amounts and the number.
func (s *Store) Create(ctx context.Context, inv models.Invoice) (models.Invoice, error) {
	inv.ID = primitive.NewObjectID()
	now := time.Now()
	inv.CreatedAt = now
	inv.UpdatedAt = now
	if inv.Date.IsZero() {
		inv.Date = now
	}

	if _, err := s.c.InsertOne(ctx, inv); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Invoice{}, ErrDuplicateInvoiceID
		}
		return models.Invoice{}, err
	}
	return inv, nil
}

// GetByID returns mongo.ErrNoDocuments when missing.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Invoice, error) {
	var inv models.Invoice
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&inv); err != nil {
		return nil, err
	}
	return &inv, nil
}

// Page returns one page of invoices matching search over customer name and
// invoice number, newest date first, with the total match count.
func (s *Store) Page(ctx context.Context, search string, page, limit int64) ([]models.Invoice, int64, error) {
	filter := storeutil.ContainsAny(search, "user.name", "invoice_id")

	total, err := s.c.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	opts := storeutil.Paginate(limit, page).SetSort(bson.D{{Key: "date", Value: -1}, {Key: "_id", Value: -1}})
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cur.Close(ctx)

	out := []models.Invoice{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// Count returns the number of invoices.
func (s *Store) Count(ctx context.Context) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{}, options.Count())
}
