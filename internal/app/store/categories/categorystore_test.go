package categorystore

import (
	"errors"
	"testing"

	"github.com/dalemusser/eventhub/internal/domain/models"
	"github.com/dalemusser/eventhub/internal/testutil"
)

func TestCreate_CaseInsensitiveUnique(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := store.Create(ctx, models.Category{Name: "Music"}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	tests := []string{"music", "  MUSIC ", "Music"}
	for _, name := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := store.Create(ctx, models.Category{Name: name}); !errors.Is(err, ErrDuplicateName) {
				t.Errorf("Create(%q) error = %v, want ErrDuplicateName", name, err)
			}
		})
	}

	exists, err := store.ExistsByName(ctx, "mUsIc")
	if err != nil || !exists {
		t.Errorf("ExistsByName() = (%v, %v), want (true, nil)", exists, err)
	}
}

func TestListActive(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	for _, n := range []string{"Theatre", "Comedy", "art"} {
		if _, err := store.Create(ctx, models.Category{Name: n}); err != nil {
			t.Fatalf("Create(%q) error = %v", n, err)
		}
	}
	if _, err := db.Collection("categories").UpdateOne(ctx, map[string]any{"name": "Comedy"}, map[string]any{"$set": map[string]any{"is_active": false}}); err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	got, err := store.ListActive(ctx)
	if err != nil {
		t.Fatalf("ListActive() error = %v", err)
	}
	if len(got) != 2 || got[0].Name != "art" || got[1].Name != "Theatre" {
		t.Errorf("ListActive() = %v, want [art Theatre]", got)
	}
}
