package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const lockTTL = 10 * time.Minute

// MonthLockCache caches per-month closure locks in Redis so the rules engine
// does not hit the store on every financial mutation.
// Key format: closed:<YYYY-MM>, value "1" (locked) or "0" (open).
type MonthLockCache struct {
	client *redis.Client
}

// NewMonthLockCache creates a MonthLockCache wrapping the given Redis client.
func NewMonthLockCache(client *redis.Client) *MonthLockCache {
	return &MonthLockCache{client: client}
}

// Get returns the cached lock state for the month. ok is false on a cache
// miss.
func (m *MonthLockCache) Get(ctx context.Context, mes string) (locked bool, ok bool, err error) {
	val, err := m.client.Get(ctx, m.key(mes)).Result()
	if err == redis.Nil {
		return false, false, nil
	}
	if err != nil {
		return false, false, fmt.Errorf("month lock get: %w", err)
	}
	return val == "1", true, nil
}

// Set caches the lock state for the month (expires after lockTTL).
func (m *MonthLockCache) Set(ctx context.Context, mes string, locked bool) error {
	val := "0"
	if locked {
		val = "1"
	}
	return m.client.Set(ctx, m.key(mes), val, lockTTL).Err()
}

// Invalidate drops the cached entry; called on every closure transition.
func (m *MonthLockCache) Invalidate(ctx context.Context, mes string) error {
	return m.client.Del(ctx, m.key(mes)).Err()
}

func (m *MonthLockCache) key(mes string) string {
	return fmt.Sprintf("closed:%s", mes)
}
