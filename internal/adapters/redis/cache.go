package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/target/storefront-web/internal/ports"
)

var _ ports.Cache = (*Cache)(nil)

// Cache implements ports.Cache using Redis.
type Cache struct {
	client redis.UniversalClient
}

// NewCache creates a new Cache with the given Redis client.
func NewCache(client redis.UniversalClient) *Cache {
	return &Cache{client: client}
}

// Set stores a value in Redis with the given key and TTL.
func (c *Cache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if key == "" {
		return errors.New("key cannot be empty")
	}
	return c.client.Set(ctx, key, value, ttl).Err()
}

// Get retrieves a value from Redis by key.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, errors.New("key cannot be empty")
	}

	result, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil // Key doesn't exist
		}
		return nil, fmt.Errorf("redis get: %w", err)
	}
	return result, nil
}

// Delete removes a key from Redis.
func (c *Cache) Delete(ctx context.Context, key string) (bool, error) {
	if key == "" {
		return false, errors.New("key cannot be empty")
	}

	result, err := c.client.Del(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("redis del: %w", err)
	}
	return result > 0, nil
}

// Health checks the health of the Redis connection.
func (c *Cache) Health(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}
