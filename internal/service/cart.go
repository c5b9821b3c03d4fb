package service

import (
	"context"
	"log/slog"

	domainauth "github.com/target/storefront-web/internal/domain/auth"
	"github.com/target/storefront-web/internal/domain/catalog"
	apperrors "github.com/target/storefront-web/internal/errors"
	"github.com/target/storefront-web/internal/ports"
)

// AddQuantity is how many units one "Add to cart" adds.
const AddQuantity = 1

// CartServiceOptions groups dependencies for CartService.
type CartServiceOptions struct {
	Client ports.CartClient
	Logger *slog.Logger
}

// CartService reads and updates the visitor's cart on the backend.
type CartService struct {
	client ports.CartClient
	logger *slog.Logger
}

// NewCartService constructs a CartService. Client is required.
func NewCartService(opts CartServiceOptions) *CartService {
	if opts.Client == nil {
		panic("service: CartServiceOptions.Client is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &CartService{client: opts.Client, logger: logger}
}

// AddItem puts one unit of productID into the cart.
func (c *CartService) AddItem(ctx context.Context, creds domainauth.Credentials, productID string) error {
	if productID == "" {
		return apperrors.ValidationField("productId", "Product is required")
	}
	if err := c.client.AddToCart(ctx, creds, productID, AddQuantity); err != nil {
		c.logger.WarnContext(ctx, "add to cart failed", "product_id", productID, "error", err)
		return err
	}
	return nil
}

// Current returns the visitor's cart; ok is false when there is none.
func (c *CartService) Current(ctx context.Context, creds domainauth.Credentials) (catalog.Cart, bool, error) {
	return c.client.GetUserCart(ctx, creds)
}
