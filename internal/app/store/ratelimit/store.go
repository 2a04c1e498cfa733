// internal/app/store/ratelimit/store.go
package ratelimit

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Policy is the failed-login budget shared by every backend.
type Policy struct {
	MaxAttempts int           // failures allowed inside Window before lockout
	Window      time.Duration // counting window, starting at the first failure
	Lockout     time.Duration // how long a locked key stays locked
}

// Key scopes a throttle counter to a realm and normalized email.
func Key(realm, email string) string {
	return realm + ":" + strings.ToLower(strings.TrimSpace(email))
}

// Attempt is the Mongo document tracking one key.
type Attempt struct {
	Key         string     `bson:"key"`
	Attempts    int        `bson:"attempts"`
	WindowStart time.Time  `bson:"window_start"`
	LockedUntil *time.Time `bson:"locked_until"`
	LastAttempt time.Time  `bson:"last_attempt"` // TTL index field
}

// Store is the MongoDB throttle backend. Every method fails open: backend
// errors never block a login.
type Store struct {
	c      *mongo.Collection
	policy Policy
	now    func() time.Time
}

// New creates a Mongo-backed throttle.
func New(db *mongo.Database, policy Policy) *Store {
	return &Store{
		c:      db.Collection("login_throttle"),
		policy: policy,
		now:    time.Now,
	}
}

// CheckAllowed reports whether key may attempt a login.
//   - remaining: attempts left before lockout (-1 while locked)
//   - lockedUntil: lockout expiry, nil when not locked
func (s *Store) CheckAllowed(ctx context.Context, key string) (allowed bool, remaining int, lockedUntil *time.Time) {
	now := s.now()

	var a Attempt
	err := s.c.FindOne(ctx, bson.M{"key": key}).Decode(&a)
	if err != nil {
		return true, s.policy.MaxAttempts, nil
	}
	if a.LockedUntil != nil && now.Before(*a.LockedUntil) {
		return false, -1, a.LockedUntil
	}
	if !now.Before(a.WindowStart.Add(s.policy.Window)) {
		return true, s.policy.MaxAttempts, nil
	}
	remaining = s.policy.MaxAttempts - a.Attempts
	if remaining <= 0 {
		return false, 0, nil
	}
	return true, remaining, nil
}

// RecordFailure counts a failed attempt and locks the key once the budget
// is spent. A failure after the window has elapsed starts a new window.
func (s *Store) RecordFailure(ctx context.Context, key string) (lockedOut bool, lockedUntil *time.Time) {
	now := s.now()

	// Count inside the live window.
	var a Attempt
	err := s.c.FindOneAndUpdate(ctx,
		bson.M{"key": key, "window_start": bson.M{"$gt": now.Add(-s.policy.Window)}},
		bson.M{"$inc": bson.M{"attempts": 1}, "$set": bson.M{"last_attempt": now}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&a)

	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		// No record, or the window is over: start a fresh one.
		a = Attempt{Key: key, Attempts: 1, WindowStart: now, LastAttempt: now}
		_, err = s.c.UpdateOne(ctx, bson.M{"key": key},
			bson.M{"$set": bson.M{
				"attempts":     1,
				"window_start": now,
				"locked_until": nil,
				"last_attempt": now,
			}},
			options.Update().SetUpsert(true),
		)
		if err != nil {
			return false, nil
		}
	case err != nil:
		return false, nil
	}

	if a.Attempts < s.policy.MaxAttempts {
		return false, nil
	}
	until := now.Add(s.policy.Lockout)
	if _, err := s.c.UpdateOne(ctx, bson.M{"key": key}, bson.M{"$set": bson.M{"locked_until": until}}); err != nil {
		return false, nil
	}
	return true, &until
}

// ClearOnSuccess forgets key after a successful login.
func (s *Store) ClearOnSuccess(ctx context.Context, key string) error {
	_, err := s.c.DeleteOne(ctx, bson.M{"key": key})
	return err
}
