package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Limiter allows one action per user per window using redis SETNX.
// A nil redis client disables limiting.
type Limiter struct {
	rdb *redis.Client
}

func New(rdb *redis.Client) *Limiter {
	return &Limiter{rdb: rdb}
}

func key(userID uuid.UUID, action string) string {
	return fmt.Sprintf("rate_limit:user:%s:%s", userID.String(), action)
}

// Allow reports whether the action may proceed and, if not, how long until it can.
func (l *Limiter) Allow(ctx context.Context, userID uuid.UUID, action string, window time.Duration) (bool, time.Duration, error) {
	if l == nil || l.rdb == nil || window <= 0 {
		return true, 0, nil
	}

	wasSet, err := l.rdb.SetNX(ctx, key(userID, action), "locked", window).Result()
	if err != nil {
		return false, 0, fmt.Errorf("failed to check rate limit in redis: %w", err)
	}
	if wasSet {
		return true, 0, nil
	}

	ttl, err := l.rdb.TTL(ctx, key(userID, action)).Result()
	if err != nil {
		return false, 0, nil
	}
	return false, ttl, nil
}

// Clear releases the window, used when the guarded action failed.
func (l *Limiter) Clear(ctx context.Context, userID uuid.UUID, action string) error {
	if l == nil || l.rdb == nil {
		return nil
	}
	return l.rdb.Del(ctx, key(userID, action)).Err()
}
