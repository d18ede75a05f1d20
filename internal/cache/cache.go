// Package cache keeps provider responses for a limited time, in process or
// in Redis.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Store is a TTL key/value store holding JSON-encoded values.
type Store interface {
	// Get decodes the value for key into dst. A miss returns false, nil.
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	// Sweep drops expired entries and reports how many were removed.
	Sweep(ctx context.Context) (int, error)
	Ping(ctx context.Context) error
}

// MemoryStore keeps entries in process, backed by Expiring.
type MemoryStore struct {
	entries *Expiring[[]byte]
}

// NewMemoryStore constructs an empty in-process store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: NewExpiring[[]byte]()}
}

// NewMemoryStoreWithClock constructs a store reading time from now (for tests).
func NewMemoryStoreWithClock(now func() time.Time) *MemoryStore {
	return &MemoryStore{entries: NewExpiringWithClock[[]byte](now)}
}

func (s *MemoryStore) Get(_ context.Context, key string, dst any) (bool, error) {
	b, ok := s.entries.Get(key)
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(b, dst); err != nil {
		return false, fmt.Errorf("unmarshaling cached value %s: %w", key, err)
	}
	return true, nil
}

func (s *MemoryStore) Set(_ context.Context, key string, v any, ttl time.Duration) error {
	if v == nil {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshaling cached value %s: %w", key, err)
	}
	s.entries.Set(key, b, ttl)
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.entries.Delete(key)
	return nil
}

func (s *MemoryStore) Sweep(context.Context) (int, error) {
	return s.entries.Sweep(), nil
}

func (s *MemoryStore) Ping(context.Context) error { return nil }

var (
	_ Store = (*RedisStore)(nil)
	_ Store = (*MemoryStore)(nil)
)
