package ratelimit

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore backs the limiter with Redis so limits hold across multiple
// server instances. INCR and the initial EXPIRE run in a pipeline; Redis
// guarantees INCR atomicity, which is all the fixed window needs.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore creates a Redis-backed counter store. Keys are namespaced
// with prefix (default "ratelimit").
func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "ratelimit"
	}
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) key(key string) string {
	return s.prefix + ":" + key
}

func (s *RedisStore) Increment(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	k := s.key(key)

	pipe := s.client.TxPipeline()
	incr := pipe.Incr(ctx, k)
	// NX keeps the original window: only the first increment sets the TTL
	pipe.ExpireNX(ctx, k, window)
	ttlCmd := pipe.TTL(ctx, k)

	if _, err := pipe.Exec(ctx); err != nil {
		return 0, 0, err
	}

	ttl := ttlCmd.Val()
	if ttl < 0 {
		ttl = window
	}
	return incr.Val(), ttl, nil
}

func (s *RedisStore) Reset(ctx context.Context, key string) error {
	return s.client.Del(ctx, s.key(key)).Err()
}
