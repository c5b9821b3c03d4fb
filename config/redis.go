package config

import (
	"fmt"
	"strings"
	"time"
)

// RedisConfig contains Redis configuration. Loaded with the REDIS_ prefix.
type RedisConfig struct {
	URI                string   `env:"URI"                  envDefault:"localhost:6379"`
	Password           string   `env:"PASSWORD"             envDefault:""`
	SentinelNodes      []string `env:"SENTINEL_NODES"       envDefault:"localhost:26379"`
	SentinelMasterName string   `env:"SENTINEL_MASTER_NAME" envDefault:"mymaster"`
	SentinelPassword   string   `env:"SENTINEL_PASSWORD"    envDefault:""`
	UseSentinel        bool     `env:"USE_SENTINEL"         envDefault:"false"`
	ClusterNodes       []string `env:"CLUSTER_NODES"        envDefault:""`
	UseCluster         bool     `env:"USE_CLUSTER"          envDefault:"false"`
}

// CacheStoreKind selects the catalog cache backend.
type CacheStoreKind string

const (
	CacheStoreMemory CacheStoreKind = "memory"
	CacheStoreRedis  CacheStoreKind = "redis"
	CacheStoreNone   CacheStoreKind = "none"
)

// UnmarshalText implements encoding.TextUnmarshaler for CacheStoreKind.
func (k *CacheStoreKind) UnmarshalText(text []byte) error {
	v := strings.ToLower(strings.TrimSpace(string(text)))
	switch v {
	case "memory", "redis", "none":
		*k = CacheStoreKind(v)
		return nil
	default:
		return fmt.Errorf("invalid CacheStoreKind: %q (valid options: memory, redis, none)", v)
	}
}

// CacheConfig contains catalog cache configuration. Loaded with the CACHE_ prefix.
type CacheConfig struct {
	Store CacheStoreKind `env:"STORE" envDefault:"memory"`

	// CatalogTTL is how long the product list is served from cache.
	CatalogTTL time.Duration `env:"CATALOG_TTL" envDefault:"1m"`

	// Capacity bounds the in-memory cache.
	Capacity int `env:"CAPACITY" envDefault:"1024"`
}

// Sanitize applies defaults to zero or negative values.
func (c *CacheConfig) Sanitize() {
	if c.Store == "" {
		c.Store = CacheStoreMemory
	}
	if c.CatalogTTL <= 0 {
		c.CatalogTTL = time.Minute
	}
	if c.Capacity <= 0 {
		c.Capacity = 1024
	}
}
