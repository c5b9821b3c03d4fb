package config

import (
	"errors"
	"os"
	"strings"
)

// AppConfig is the main application configuration struct that composes
// domain-specific configuration from separate files.
//
// Configuration is loaded from environment variables using the
// github.com/caarlos0/env library. See individual domain config
// files for details on available environment variables:
//   - http.go: HTTP server and cookie configuration
//   - backend.go: REST backend location and envelope paths
//   - session.go: Visitor session store and gate configuration
//   - redis.go: Redis connection and catalog cache configuration
//   - payments.go: Payment processor keys
//   - observability.go: Logging and metrics configuration
type AppConfig struct {
	// IsDev controls development mode behavior (template reloading, text logs).
	// Set DEV=true or NODE_ENV=development for development mode.
	IsDev bool `env:"DEV" envDefault:"false"`

	HTTP    HTTPConfig
	Backend BackendConfig `envPrefix:"BACKEND_"`
	Session SessionConfig `envPrefix:"SESSION_"`

	Redis RedisConfig `envPrefix:"REDIS_"`
	Cache CacheConfig `envPrefix:"CACHE_"`

	Payments PaymentsConfig

	Observability ObservabilityConfig
}

// Sanitize applies guardrails to configuration values loaded from env.
// This should be called after loading configuration from environment variables.
func (c *AppConfig) Sanitize() {
	c.HTTP.Sanitize()
	c.Backend.Sanitize()
	c.Session.Sanitize()
	c.Cache.Sanitize()
	c.Payments.Sanitize()
	c.Observability.Sanitize()

	c.detectDevMode()
}

// Validate reports configuration that the server cannot start with.
// Call it after Sanitize.
func (c *AppConfig) Validate() error {
	var errs []error
	if err := c.HTTP.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := c.Backend.Validate(); err != nil {
		errs = append(errs, err)
	}
	if c.Session.Store == SessionStoreRedis && strings.TrimSpace(c.Redis.URI) == "" &&
		len(c.Redis.ClusterNodes) == 0 && !c.Redis.UseSentinel {
		errs = append(errs, errors.New("SESSION_STORE=redis requires REDIS_URI, REDIS_CLUSTER_NODES or REDIS_USE_SENTINEL"))
	}
	return errors.Join(errs...)
}

// UsesRedis reports whether any component needs a Redis connection.
func (c *AppConfig) UsesRedis() bool {
	return c.Session.Store == SessionStoreRedis || c.Cache.Store == CacheStoreRedis
}

// detectDevMode checks both DEV and NODE_ENV environment variables.
// This is called by Sanitize() to ensure IsDev is set correctly.
// NODE_ENV is checked as a fallback (common in frontend tooling).
func (c *AppConfig) detectDevMode() {
	if !c.IsDev {
		nodeEnv := strings.ToLower(os.Getenv("NODE_ENV"))
		c.IsDev = nodeEnv == "development" || nodeEnv == "dev"
	}
}
