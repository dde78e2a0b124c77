package state

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/matzehuels/openboard/pkg/cache"
)

// DefaultRedisTTL bounds how long an abandoned token survives in Redis.
const DefaultRedisTTL = 24 * time.Hour

// RedisKeyPrefix namespaces direction tokens.
const RedisKeyPrefix = "openboard:direction:"

// RedisStore keeps direction tokens in Redis. Network failures are
// retried with [cache.RetryWithBackoff].
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore connects to the Redis server at url and verifies the
// connection. A non-positive ttl uses DefaultRedisTTL.
func NewRedisStore(ctx context.Context, url string, ttl time.Duration) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	return NewRedisStoreFromClient(client, ttl), nil
}

// NewRedisStoreFromClient wraps an existing client. The store takes
// ownership and closes the client on Close.
func NewRedisStoreFromClient(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultRedisTTL
	}
	return &RedisStore{client: client, ttl: ttl}
}

// Key returns the Redis key holding board's token.
func (s *RedisStore) Key(board string) string {
	return RedisKeyPrefix + boardKey(board)
}

func (s *RedisStore) Last(ctx context.Context, board string) (string, error) {
	var dir string
	err := cache.RetryWithBackoff(ctx, func() error {
		v, err := s.client.Get(ctx, s.Key(board)).Result()
		if errors.Is(err, redis.Nil) {
			dir = ""
			return nil
		}
		if err != nil {
			return cache.Retryable(fmt.Errorf("%w: %v", cache.ErrNetwork, err))
		}
		dir = v
		return nil
	})
	return dir, err
}

func (s *RedisStore) Save(ctx context.Context, board, direction string) error {
	return cache.RetryWithBackoff(ctx, func() error {
		if err := s.client.Set(ctx, s.Key(board), direction, s.ttl).Err(); err != nil {
			return cache.Retryable(fmt.Errorf("%w: %v", cache.ErrNetwork, err))
		}
		return nil
	})
}

func (s *RedisStore) Clear(ctx context.Context, board string) error {
	return cache.RetryWithBackoff(ctx, func() error {
		if err := s.client.Del(ctx, s.Key(board)).Err(); err != nil {
			return cache.Retryable(fmt.Errorf("%w: %v", cache.ErrNetwork, err))
		}
		return nil
	})
}

// Close closes the underlying client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

var _ DirectionStore = (*RedisStore)(nil)
