package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	redisclient "github.com/redis/go-redis/v9"

	"julianmorley.ca/con-plar/storefront/pkg/kv"
)

// Store keeps session state under keys of the form storefront:{key}
type Store struct {
	client *redisclient.Client
	ttl    time.Duration
}

// NewStore wraps client. A zero ttl keeps keys until they are overwritten.
func NewStore(client *redisclient.Client, ttl time.Duration) *Store {
	return &Store{client: client, ttl: ttl}
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *Store) Get(ctx context.Context, key string) (string, error) {
	value, err := s.client.Get(ctx, storeKey(key)).Result()
	if errors.Is(err, redisclient.Nil) {
		return "", kv.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to read %s from Redis: %w", key, err)
	}
	return value, nil
}

func (s *Store) Set(ctx context.Context, key, value string) error {
	if err := s.client.Set(ctx, storeKey(key), value, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write %s to Redis: %w", key, err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.client.Close()
}

func storeKey(key string) string {
	return fmt.Sprintf("storefront:%s", key)
}
