package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisOpTimeout = 3 * time.Second

// RedisStore is a [Store] backed by Redis. Keys live under
// "<namespace>:<key>" so multiple consoles can share one instance without
// colliding. Entries carry no TTL; session lifetime is the server's call
// and the client only caches.
type RedisStore struct {
	client  redis.UniversalClient
	prefix  string
	timeout time.Duration
}

// NewRedisStore creates a store over client scoped to namespace.
func NewRedisStore(client redis.UniversalClient, namespace string) *RedisStore {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	return &RedisStore{
		client:  client,
		prefix:  namespace,
		timeout: redisOpTimeout,
	}
}

func (s *RedisStore) key(key string) string {
	return s.prefix + ":" + key
}

func (s *RedisStore) opContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), s.timeout)
}

// Get returns the value stored under key, if any.
func (s *RedisStore) Get(key string) (string, bool, error) {
	ctx, cancel := s.opContext()
	defer cancel()

	value, err := s.client.Get(ctx, s.key(key)).Result()
	switch {
	case errors.Is(err, redis.Nil):
		return "", false, nil
	case err != nil:
		return "", false, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return value, true, nil
}

// Set stores value under key.
func (s *RedisStore) Set(key, value string) error {
	ctx, cancel := s.opContext()
	defer cancel()

	if err := s.client.Set(ctx, s.key(key), value, 0).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// Delete removes key. Deleting an absent key is a no-op.
func (s *RedisStore) Delete(key string) error {
	ctx, cancel := s.opContext()
	defer cancel()

	if err := s.client.Del(ctx, s.key(key)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// Clear removes every entry in the namespace.
func (s *RedisStore) Clear() error {
	ctx, cancel := s.opContext()
	defer cancel()

	iter := s.client.Scan(ctx, 0, s.prefix+":*", 64).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if len(keys) == 0 {
		return nil
	}
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}
