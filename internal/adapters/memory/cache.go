package memory

import (
	"context"
	"errors"
	"time"

	"github.com/target/storefront-web/internal/ports"
)

var _ ports.Cache = (*Cache)(nil)

// Cache adapts an LRU to ports.Cache. Values are copied on the way in and out.
type Cache struct {
	lru *LRU
}

// NewCache wraps lru; a nil lru gets a default-sized one.
func NewCache(lru *LRU) *Cache {
	if lru == nil {
		lru = NewLRU(LRUConfig{})
	}
	return &Cache{lru: lru}
}

func (c *Cache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if key == "" {
		return errors.New("key cannot be empty")
	}
	c.lru.Set(key, append([]byte(nil), value...), ttl)
	return nil
}

func (c *Cache) Get(_ context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, errors.New("key cannot be empty")
	}
	v, ok := c.lru.Get(key)
	if !ok {
		return nil, nil
	}
	return append([]byte(nil), v...), nil
}

func (c *Cache) Delete(_ context.Context, key string) (bool, error) {
	if key == "" {
		return false, errors.New("key cannot be empty")
	}
	return c.lru.Delete(key), nil
}

func (c *Cache) Health(context.Context) error { return nil }

// Stats exposes the underlying LRU counters.
func (c *Cache) Stats() LRUStats { return c.lru.Stats() }
