package leadstore

import (
	"errors"
	"testing"
	"time"

	"github.com/dalemusser/eventhub/internal/domain/models"
	"github.com/dalemusser/eventhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestCreateDefaults(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	l, err := store.Create(ctx, models.Lead{CompanyName: "Acme", OwnerName: "Ravi", Email: "ravi@acme.test", Mobile: "999"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if l.Status != models.LeadProspect || l.Type != models.DefaultLeadType {
		t.Errorf("defaults = (%q, %q), want (Prospect, Merchant)", l.Status, l.Type)
	}
}

func TestListNewestFirst(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	a, _ := store.Create(ctx, models.Lead{CompanyName: "A"})
	time.Sleep(5 * time.Millisecond)
	b, _ := store.Create(ctx, models.Lead{CompanyName: "B"})

	got, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(got) != 2 || got[0].ID != b.ID || got[1].ID != a.ID {
		t.Errorf("List() order = %v, want [B A]", got)
	}
}

func TestUpdateAndDelete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	l, _ := store.Create(ctx, models.Lead{CompanyName: "Acme", City: "Surat"})

	status := models.LeadDemoBooked
	got, err := store.Update(ctx, l.ID, Update{Status: &status})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if got.Status != models.LeadDemoBooked || got.City != "Surat" {
		t.Errorf("Update() = %+v, want status changed and city kept", got)
	}

	if _, err := store.Update(ctx, primitive.NewObjectID(), Update{Status: &status}); !errors.Is(err, mongo.ErrNoDocuments) {
		t.Errorf("Update(missing) error = %v, want ErrNoDocuments", err)
	}

	deleted, err := store.Delete(ctx, l.ID)
	if err != nil || deleted.CompanyName != "Acme" {
		t.Fatalf("Delete() = (%v, %v)", deleted, err)
	}
	if _, err := store.Delete(ctx, l.ID); !errors.Is(err, mongo.ErrNoDocuments) {
		t.Errorf("second Delete() error = %v, want ErrNoDocuments", err)
	}
}
