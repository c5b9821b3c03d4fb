package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/target/storefront-web/config"
	"github.com/target/storefront-web/internal/adapters/backend"
	"github.com/target/storefront-web/internal/adapters/memory"
	redisstore "github.com/target/storefront-web/internal/adapters/redis"
	httpx "github.com/target/storefront-web/internal/http"
	shopfuncs "github.com/target/storefront-web/internal/http/templates/shop"
	"github.com/target/storefront-web/internal/observability/metrics"
	"github.com/target/storefront-web/internal/observability/statsd"
	"github.com/target/storefront-web/internal/ports"
	"github.com/target/storefront-web/internal/service"
)

// ServiceDeps contains the infrastructure needed to build services.
type ServiceDeps struct {
	Config *config.AppConfig
	// RedisClient is required when the session store or the cache is redis.
	RedisClient redis.UniversalClient
	Logger      *slog.Logger
}

// ServiceContainer holds everything the HTTP server and its background work need.
type ServiceContainer struct {
	Sessions  *service.SessionService
	Accounts  *service.AccountService
	Catalog   *service.CatalogService
	Carts     *service.CartService
	Checkouts *service.CheckoutService

	Metrics *metrics.Recorder
	Statsd  *statsd.Client

	// MemorySessions is set when sessions live in process; its janitor must run.
	MemorySessions *memory.SessionStore
	HealthChecks   []httpx.HealthCheck
}

type healthChecker interface {
	Health(ctx context.Context) error
}

// NewServices wires stores, the backend client and the domain services.
func NewServices(ctx context.Context, deps *ServiceDeps) (ServiceContainer, error) {
	if deps == nil || deps.Config == nil {
		return ServiceContainer{}, errors.New("service deps missing AppConfig")
	}
	cfg := deps.Config
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var out ServiceContainer
	out.Statsd = dialStatsd(ctx, cfg.Observability.Metrics, logger)
	var sink statsd.Sink
	if out.Statsd != nil {
		sink = out.Statsd
	}
	out.Metrics = metrics.New(metrics.Options{Namespace: cfg.Observability.Metrics.Namespace, Sink: sink})

	store, err := buildSessionStore(cfg.Session, deps.RedisClient)
	if err != nil {
		return ServiceContainer{}, err
	}
	if mem, ok := store.(*memory.SessionStore); ok {
		out.MemorySessions = mem
	}
	if hc, ok := store.(healthChecker); ok {
		out.HealthChecks = append(out.HealthChecks, httpx.HealthCheck{Name: "sessions", Check: hc.Health})
	}

	cache, err := buildCache(cfg.Cache, deps.RedisClient)
	if err != nil {
		return ServiceContainer{}, err
	}
	if cache != nil && cfg.Cache.Store == config.CacheStoreRedis {
		out.HealthChecks = append(out.HealthChecks, httpx.HealthCheck{Name: "cache", Check: cache.Health})
	}

	api, err := backend.New(backend.Options{
		BaseURL: cfg.Backend.BaseURL,
		Timeout: cfg.Backend.Timeout,
		Paths: backend.UserPaths{
			Current: cfg.Backend.CurrentUserPath,
			Login:   cfg.Backend.LoginUserPath,
			Signup:  cfg.Backend.SignupUserPath,
		},
		Logger:   logger,
		Observer: out.Metrics,
	})
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("backend client: %w", err)
	}

	out.Sessions = service.NewSessionService(service.SessionServiceOptions{
		Store:    store,
		Fetcher:  api,
		Dedup:    cfg.Session.FetchDedup,
		Logger:   logger,
		Observer: out.Metrics,
	})
	out.Accounts = service.NewAccountService(service.AccountServiceOptions{Client: api, Sessions: out.Sessions, Logger: logger})
	out.Catalog = service.NewCatalogService(service.CatalogServiceOptions{
		Client: api,
		Cache:  cache,
		TTL:    cfg.Cache.CatalogTTL,
		Logger: logger,
	})
	out.Carts = service.NewCartService(service.CartServiceOptions{Client: api, Logger: logger})
	out.Checkouts = service.NewCheckoutService(service.CheckoutServiceOptions{Carts: api, Payments: api, Logger: logger})

	return out, nil
}

//nolint:ireturn // the store is chosen by configuration.
func buildSessionStore(cfg config.SessionConfig, client redis.UniversalClient) (ports.SessionStore, error) {
	switch cfg.Store {
	case config.SessionStoreRedis:
		if client == nil {
			return nil, errors.New("SESSION_STORE=redis but no redis client is connected")
		}
		return redisstore.NewSessionStore(redisstore.SessionStoreOptions{Client: client, IdleTTL: cfg.IdleTTL}), nil
	default:
		return memory.NewSessionStore(memory.SessionStoreOptions{Capacity: cfg.Capacity, IdleTTL: cfg.IdleTTL}), nil
	}
}

//nolint:ireturn // the cache is chosen by configuration.
func buildCache(cfg config.CacheConfig, client redis.UniversalClient) (ports.Cache, error) {
	switch cfg.Store {
	case config.CacheStoreNone:
		return nil, nil
	case config.CacheStoreRedis:
		if client == nil {
			return nil, errors.New("CACHE_STORE=redis but no redis client is connected")
		}
		return redisstore.NewCache(client), nil
	default:
		return memory.NewCache(memory.NewLRU(memory.LRUConfig{Capacity: cfg.Capacity})), nil
	}
}

// dialStatsd returns nil when StatsD is disabled or unreachable; metrics then stay Prometheus-only.
func dialStatsd(ctx context.Context, cfg config.ObservabilityMetricsConfig, logger *slog.Logger) *statsd.Client {
	if !cfg.IsEnabled() {
		return nil
	}
	client, err := statsd.Dial(ctx, statsd.Options{
		Address: cfg.StatsdAddress,
		Prefix:  cfg.Namespace,
		Logger:  logger,
	})
	if err != nil {
		logger.WarnContext(ctx, "statsd disabled", "error", err)
		return nil
	}
	logger.InfoContext(ctx, "statsd metrics enabled", "addr", cfg.StatsdAddress)
	return client
}

// RouterServices maps the container and config onto the router's dependencies.
func (c ServiceContainer) RouterServices(cfg *config.AppConfig, logger *slog.Logger) httpx.RouterServices {
	rs := httpx.RouterServices{
		Sessions:  c.Sessions,
		Accounts:  c.Accounts,
		Catalog:   c.Catalog,
		Carts:     c.Carts,
		Checkouts: c.Checkouts,
		Cookies: httpx.CookieConfig{
			SessionName:     cfg.Session.CookieName,
			Domain:          cfg.HTTP.CookieDomain,
			Secure:          cfg.HTTP.CookieSecure,
			CredentialNames: cfg.Backend.CredentialCookies,
		},
		GateWait:        cfg.Session.GateWait,
		GateObserver:    c.Metrics,
		RequestObserver: c.Metrics,
		HealthChecks:    c.HealthChecks,
		StripeKey:       cfg.Payments.StripePublishableKey,
		Prices: shopfuncs.Options{
			Currency: cfg.Payments.Currency,
			Locale:   cfg.Payments.Locale,
			Logger:   logger,
		},
		IsDev:  cfg.IsDev,
		Logger: logger,
	}
	if cfg.Observability.Metrics.PrometheusEnabled {
		rs.Metrics = c.Metrics.Handler()
	}
	if cfg.HTTP.CompressionEnabled {
		rs.Compression = &httpx.CompressionConfig{Level: cfg.HTTP.CompressionLevel, Logger: logger}
	}
	return rs
}
