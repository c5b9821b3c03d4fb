package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	domainauth "github.com/target/storefront-web/internal/domain/auth"
	"github.com/target/storefront-web/internal/domain/catalog"
	apperrors "github.com/target/storefront-web/internal/errors"
	"github.com/target/storefront-web/internal/ports"
	"golang.org/x/sync/singleflight"
)

const (
	// ProductsCacheKey is where the product list is cached.
	ProductsCacheKey = "storefront:catalog:products"
	// DefaultCatalogTTL is used when CatalogServiceOptions.TTL is zero.
	DefaultCatalogTTL = time.Minute
)

// CatalogServiceOptions groups dependencies for CatalogService.
type CatalogServiceOptions struct {
	Client ports.CatalogClient
	// Cache is optional; without it every call reaches the backend.
	Cache  ports.Cache
	TTL    time.Duration
	Logger *slog.Logger
}

// CatalogService serves the product list with a read-through cache.
type CatalogService struct {
	client ports.CatalogClient
	cache  ports.Cache
	ttl    time.Duration
	logger *slog.Logger
	group  singleflight.Group
}

// NewCatalogService constructs a CatalogService. Client is required.
func NewCatalogService(opts CatalogServiceOptions) *CatalogService {
	if opts.Client == nil {
		panic("service: CatalogServiceOptions.Client is required")
	}
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = DefaultCatalogTTL
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &CatalogService{client: opts.Client, cache: opts.Cache, ttl: ttl, logger: logger}
}

// ListProducts returns all products, from cache when fresh.
func (c *CatalogService) ListProducts(ctx context.Context, creds domainauth.Credentials) ([]catalog.Product, error) {
	if products, ok := c.cached(ctx); ok {
		return products, nil
	}

	v, err, _ := c.group.Do(ProductsCacheKey, func() (any, error) {
		products, err := c.client.ListProducts(ctx, creds)
		if err != nil {
			return nil, err
		}
		c.store(ctx, products)
		return products, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]catalog.Product), nil
}

// Product finds one product by id.
func (c *CatalogService) Product(ctx context.Context, creds domainauth.Credentials, id string) (catalog.Product, error) {
	products, err := c.ListProducts(ctx, creds)
	if err != nil {
		return catalog.Product{}, err
	}
	for _, p := range products {
		if p.ID == id {
			return p, nil
		}
	}
	return catalog.Product{}, apperrors.NotFound("Product not found")
}

// Invalidate drops the cached product list.
func (c *CatalogService) Invalidate(ctx context.Context) error {
	if c.cache == nil {
		return nil
	}
	_, err := c.cache.Delete(ctx, ProductsCacheKey)
	return err
}

func (c *CatalogService) cached(ctx context.Context) ([]catalog.Product, bool) {
	if c.cache == nil {
		return nil, false
	}
	raw, err := c.cache.Get(ctx, ProductsCacheKey)
	if err != nil {
		c.logger.WarnContext(ctx, "catalog cache read failed", "error", err)
		return nil, false
	}
	if raw == nil {
		return nil, false
	}
	var products []catalog.Product
	if err := json.Unmarshal(raw, &products); err != nil {
		c.logger.WarnContext(ctx, "catalog cache entry unreadable", "error", err)
		return nil, false
	}
	return products, true
}

func (c *CatalogService) store(ctx context.Context, products []catalog.Product) {
	if c.cache == nil {
		return
	}
	raw, err := json.Marshal(products)
	if err != nil {
		return
	}
	if err := c.cache.Set(ctx, ProductsCacheKey, raw, c.ttl); err != nil {
		c.logger.WarnContext(ctx, "catalog cache write failed", "error", err)
	}
}
