package ratelimit

import (
	"testing"
	"time"

	"github.com/dalemusser/eventhub/internal/testutil"
)

func testPolicy(max int) Policy {
	return Policy{MaxAttempts: max, Window: 15 * time.Minute, Lockout: 30 * time.Minute}
}

func TestKey(t *testing.T) {
	if got := Key("user", "  Ann@Example.COM "); got != "user:ann@example.com" {
		t.Errorf("Key() = %q", got)
	}
	if Key("user", "a@b.c") == Key("admin", "a@b.c") {
		t.Error("realms must not share a key")
	}
}

func TestStore_CheckAllowed_NoRecord(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db, testPolicy(5))
	ctx, cancel := testutil.TestContext()
	defer cancel()

	allowed, remaining, lockedUntil := store.CheckAllowed(ctx, Key("user", "new@example.com"))
	if !allowed || remaining != 5 || lockedUntil != nil {
		t.Errorf("CheckAllowed() = (%v, %d, %v), want (true, 5, nil)", allowed, remaining, lockedUntil)
	}
}

func TestStore_RecordFailure_Counts(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db, testPolicy(5))
	ctx, cancel := testutil.TestContext()
	defer cancel()

	key := Key("user", "count@example.com")
	for i := 0; i < 3; i++ {
		if locked, _ := store.RecordFailure(ctx, key); locked {
			t.Fatalf("RecordFailure() #%d locked out early", i+1)
		}
	}

	allowed, remaining, _ := store.CheckAllowed(ctx, key)
	if !allowed || remaining != 2 {
		t.Errorf("CheckAllowed() = (%v, %d), want (true, 2)", allowed, remaining)
	}
}

func TestStore_LockoutAndClear(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db, testPolicy(3))
	ctx, cancel := testutil.TestContext()
	defer cancel()

	key := Key("admin", "lock@example.com")
	store.RecordFailure(ctx, key)
	store.RecordFailure(ctx, key)
	locked, until := store.RecordFailure(ctx, key)
	if !locked || until == nil {
		t.Fatal("third failure should lock the key")
	}
	if until.Before(time.Now().Add(29 * time.Minute)) {
		t.Errorf("lockedUntil = %v, want ~30m ahead", until)
	}

	allowed, remaining, lockedUntil := store.CheckAllowed(ctx, key)
	if allowed || remaining != -1 || lockedUntil == nil {
		t.Errorf("CheckAllowed() = (%v, %d, %v), want locked", allowed, remaining, lockedUntil)
	}

	if err := store.ClearOnSuccess(ctx, key); err != nil {
		t.Fatalf("ClearOnSuccess() error = %v", err)
	}
	if allowed, remaining, _ := store.CheckAllowed(ctx, key); !allowed || remaining != 3 {
		t.Errorf("after clear: (%v, %d), want (true, 3)", allowed, remaining)
	}
}

func TestStore_WindowExpiryStartsOver(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db, testPolicy(3))
	ctx, cancel := testutil.TestContext()
	defer cancel()

	base := time.Now()
	store.now = func() time.Time { return base }

	key := Key("user", "window@example.com")
	store.RecordFailure(ctx, key)
	store.RecordFailure(ctx, key)

	store.now = func() time.Time { return base.Add(16 * time.Minute) }
	if allowed, remaining, _ := store.CheckAllowed(ctx, key); !allowed || remaining != 3 {
		t.Errorf("after window: (%v, %d), want (true, 3)", allowed, remaining)
	}
	if locked, _ := store.RecordFailure(ctx, key); locked {
		t.Error("first failure of a new window should not lock")
	}
	if _, remaining, _ := store.CheckAllowed(ctx, key); remaining != 2 {
		t.Errorf("remaining = %d, want 2", remaining)
	}
}

func TestStore_LockExpires(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db, testPolicy(1))
	ctx, cancel := testutil.TestContext()
	defer cancel()

	base := time.Now()
	store.now = func() time.Time { return base }
	key := Key("user", "expire@example.com")
	if locked, _ := store.RecordFailure(ctx, key); !locked {
		t.Fatal("max=1 should lock on first failure")
	}

	store.now = func() time.Time { return base.Add(31 * time.Minute) }
	if allowed, _, _ := store.CheckAllowed(ctx, key); !allowed {
		t.Error("lock should have expired")
	}
}
