package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/craftline/backend/internal/domain/shared"
	"github.com/redis/go-redis/v9"
)

const defaultIdempotencyKeyPrefix = "event:idempotency:"

// RedisIdempotencyStore keeps processed event ids in Redis so every
// instance of the service shares one view of what has been handled.
type RedisIdempotencyStore struct {
	client    *redis.Client
	keyPrefix string
}

// RedisConfig is the connection configuration for the store.
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// NewRedisIdempotencyStore connects to Redis and verifies the connection
// with a ping before returning the store.
func NewRedisIdempotencyStore(cfg RedisConfig) (*RedisIdempotencyStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisIdempotencyStoreWithClient(client, ""), nil
}

// NewRedisIdempotencyStoreWithClient wraps an existing client, letting
// tests and callers that pool connections share one. An empty keyPrefix
// selects the default.
func NewRedisIdempotencyStoreWithClient(client *redis.Client, keyPrefix string) *RedisIdempotencyStore {
	if keyPrefix == "" {
		keyPrefix = defaultIdempotencyKeyPrefix
	}
	return &RedisIdempotencyStore{client: client, keyPrefix: keyPrefix}
}

// MarkProcessed records the event id with ttl via SETNX, so claiming an
// id is a single atomic operation. It reports true when this call won the
// claim, false when the id was already present.
func (s *RedisIdempotencyStore) MarkProcessed(ctx context.Context, eventID string, ttl time.Duration) (bool, error) {
	won, err := s.client.SetNX(ctx, s.keyPrefix+eventID, "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to mark event as processed: %w", err)
	}
	return won, nil
}

// IsProcessed reports whether the event id is still recorded.
func (s *RedisIdempotencyStore) IsProcessed(ctx context.Context, eventID string) (bool, error) {
	exists, err := s.client.Exists(ctx, s.keyPrefix+eventID).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check if event is processed: %w", err)
	}
	return exists > 0, nil
}

// Close closes the underlying Redis client.
func (s *RedisIdempotencyStore) Close() error {
	return s.client.Close()
}

// GetClient exposes the Redis client for health checks and tests.
func (s *RedisIdempotencyStore) GetClient() *redis.Client {
	return s.client
}

var _ shared.IdempotencyStore = (*RedisIdempotencyStore)(nil)
