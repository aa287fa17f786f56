package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store is a small string KV facade over Redis. Misses and transient Redis
// failures both read as absent; callers treat the cache as best effort.
type Store struct {
	client *redis.Client
}

// NewStore wraps a Redis client.
func NewStore(client *redis.Client) *Store {
	return &Store{client: client}
}

// Get fetches a key, reporting whether it was present.
func (s *Store) Get(ctx context.Context, key string) (string, bool) {
	val, err := s.client.Get(ctx, key).Result()
	if err != nil {
		return "", false
	}
	return val, true
}

// Set stores a key with a TTL.
func (s *Store) Set(ctx context.Context, key, value string, ttl time.Duration) {
	_ = s.client.Set(ctx, key, value, ttl).Err()
}

// Delete removes a key.
func (s *Store) Delete(ctx context.Context, key string) {
	_ = s.client.Del(ctx, key).Err()
}
