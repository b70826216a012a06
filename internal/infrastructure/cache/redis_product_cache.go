package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	appcatalog "github.com/craftline/backend/internal/application/catalog"
)

// RedisProductCache caches single product reads in Redis. Failures degrade
// to cache misses so a Redis outage never takes the catalog down with it.
type RedisProductCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedisProductCache creates a product cache backed by an existing Redis client
func NewRedisProductCache(client *redis.Client, ttl time.Duration, logger *zap.Logger) *RedisProductCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisProductCache{
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

func (c *RedisProductCache) key(tenantID, productID uuid.UUID) string {
	return fmt.Sprintf("catalog:product:%s:%s", tenantID, productID)
}

// Get returns the cached product, or a miss when absent or unreadable
func (c *RedisProductCache) Get(ctx context.Context, tenantID, productID uuid.UUID) (*appcatalog.ProductResponse, bool) {
	data, err := c.client.Get(ctx, c.key(tenantID, productID)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("product cache read failed",
				zap.String("product_id", productID.String()),
				zap.Error(err),
			)
		}
		return nil, false
	}

	var product appcatalog.ProductResponse
	if err := json.Unmarshal(data, &product); err != nil {
		// Corrupt entry, drop it so the next read repopulates
		c.client.Del(ctx, c.key(tenantID, productID))
		return nil, false
	}

	return &product, true
}

// Set stores the product with the configured TTL
func (c *RedisProductCache) Set(ctx context.Context, tenantID uuid.UUID, product appcatalog.ProductResponse) {
	data, err := json.Marshal(product)
	if err != nil {
		return
	}

	if err := c.client.Set(ctx, c.key(tenantID, product.ID), data, c.ttl).Err(); err != nil {
		c.logger.Warn("product cache write failed",
			zap.String("product_id", product.ID.String()),
			zap.Error(err),
		)
	}
}

// Invalidate removes a product from the cache after a mutation
func (c *RedisProductCache) Invalidate(ctx context.Context, tenantID, productID uuid.UUID) {
	if err := c.client.Del(ctx, c.key(tenantID, productID)).Err(); err != nil {
		c.logger.Warn("product cache invalidation failed",
			zap.String("product_id", productID.String()),
			zap.Error(err),
		)
	}
}

// Ensure RedisProductCache implements the catalog cache port
var _ appcatalog.ProductCache = (*RedisProductCache)(nil)
