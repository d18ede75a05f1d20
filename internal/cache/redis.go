package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix   = "biteforecast:"
	pingTimeout = 5 * time.Second
)

// Connect parses redisURL and returns a client once the server answers a
// ping. The ping is bounded by pingTimeout even if ctx has no deadline.
func Connect(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("pinging redis at %s: %w", opts.Addr, err)
	}

	return client, nil
}

// RedisStore keeps entries in Redis; expiry is handled by Redis itself.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore wraps a connected client.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// Get retrieves and decodes the value stored under key.
func (s *RedisStore) Get(ctx context.Context, key string, dst any) (bool, error) {
	val, err := s.client.Get(ctx, keyPrefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("cache get %s: %w", key, err)
	}

	if err := json.Unmarshal(val, dst); err != nil {
		return false, fmt.Errorf("unmarshaling cached value %s: %w", key, err)
	}
	return true, nil
}

// Set stores v under key with the given TTL. Nil values are ignored.
func (s *RedisStore) Set(ctx context.Context, key string, v any, ttl time.Duration) error {
	if v == nil {
		return nil
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshaling cached value %s: %w", key, err)
	}

	if err := s.client.Set(ctx, keyPrefix+key, b, ttl).Err(); err != nil {
		return fmt.Errorf("cache set %s: %w", key, err)
	}
	return nil
}

// Delete removes the entry for key.
func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, keyPrefix+key).Err(); err != nil {
		return fmt.Errorf("cache delete %s: %w", key, err)
	}
	return nil
}

// Sweep is a no-op: Redis evicts expired keys on its own.
func (s *RedisStore) Sweep(context.Context) (int, error) { return 0, nil }

// Ping checks the connection.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
