package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore is a Store backed by a shared Redis instance, for deployments
// where the counter budget must span processes. The contract is identical to
// MemoryStore: lazy expiry on read (Redis TTLs do the expiring), reset-on-hit
// on increment. Errors are returned to the caller; this package never falls
// back to a different backend on failure.
type RedisStore struct {
	client *redis.Client
	prefix string
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client, prefix: "ratelimit:"}
}

func (s *RedisStore) Get(ctx context.Context, key string) (int64, time.Time, error) {
	pipe := s.client.Pipeline()
	getCmd := pipe.Get(ctx, s.prefix+key)
	ttlCmd := pipe.PTTL(ctx, s.prefix+key)
	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		return 0, time.Time{}, fmt.Errorf("rate limit get %s: %w", key, err)
	}

	count, err := getCmd.Int64()
	if err == redis.Nil {
		return 0, time.Time{}, nil
	}
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("rate limit get %s: %w", key, err)
	}

	ttl, err := ttlCmd.Result()
	if err != nil || ttl < 0 {
		// Key exists but carries no expiry; treat as expired.
		return 0, time.Time{}, nil
	}

	return count, time.Now().Add(ttl), nil
}

func (s *RedisStore) Increment(ctx context.Context, key string, window time.Duration) (int64, time.Time, error) {
	pipe := s.client.Pipeline()
	incrCmd := pipe.Incr(ctx, s.prefix+key)
	pipe.PExpire(ctx, s.prefix+key, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, time.Time{}, fmt.Errorf("rate limit increment %s: %w", key, err)
	}

	count, err := incrCmd.Result()
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("rate limit increment %s: %w", key, err)
	}

	return count, time.Now().Add(window), nil
}
