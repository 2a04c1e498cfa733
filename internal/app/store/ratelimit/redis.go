package ratelimit

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore is the Redis throttle backend. Counters and locks are plain
// keys with TTLs, so Redis expires them on its own.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
	policy Policy
}

// NewRedis creates a Redis-backed throttle. prefix namespaces all keys.
func NewRedis(client redis.UniversalClient, prefix string, policy Policy) *RedisStore {
	if prefix == "" {
		prefix = "eventhub:login_throttle"
	}
	return &RedisStore{client: client, prefix: prefix, policy: policy}
}

func (s *RedisStore) countKey(key string) string { return s.prefix + ":count:" + key }
func (s *RedisStore) lockKey(key string) string  { return s.prefix + ":lock:" + key }

// CheckAllowed has the same contract as Store.CheckAllowed.
func (s *RedisStore) CheckAllowed(ctx context.Context, key string) (allowed bool, remaining int, lockedUntil *time.Time) {
	ttl, err := s.client.PTTL(ctx, s.lockKey(key)).Result()
	if err != nil {
		return true, s.policy.MaxAttempts, nil
	}
	if ttl > 0 {
		until := time.Now().Add(ttl)
		return false, -1, &until
	}

	n, err := s.client.Get(ctx, s.countKey(key)).Int()
	if errors.Is(err, redis.Nil) || err != nil {
		return true, s.policy.MaxAttempts, nil
	}
	remaining = s.policy.MaxAttempts - n
	if remaining <= 0 {
		return false, 0, nil
	}
	return true, remaining, nil
}

// RecordFailure has the same contract as Store.RecordFailure.
func (s *RedisStore) RecordFailure(ctx context.Context, key string) (lockedOut bool, lockedUntil *time.Time) {
	ck := s.countKey(key)
	n, err := s.client.Incr(ctx, ck).Result()
	if err != nil {
		return false, nil
	}
	if n == 1 {
		// First failure opens the window.
		if err := s.client.PExpire(ctx, ck, s.policy.Window).Err(); err != nil {
			return false, nil
		}
	}
	if int(n) < s.policy.MaxAttempts {
		return false, nil
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.lockKey(key), "1", s.policy.Lockout)
	pipe.Del(ctx, ck)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, nil
	}
	until := time.Now().Add(s.policy.Lockout)
	return true, &until
}

// ClearOnSuccess removes both the counter and any lock.
func (s *RedisStore) ClearOnSuccess(ctx context.Context, key string) error {
	return s.client.Del(ctx, s.countKey(key), s.lockKey(key)).Err()
}
