package ports

import (
	"context"

	domainauth "github.com/target/storefront-web/internal/domain/auth"
	"github.com/target/storefront-web/internal/domain/catalog"
)

// CatalogClient lists products.
type CatalogClient interface {
	ListProducts(ctx context.Context, creds domainauth.Credentials) ([]catalog.Product, error)
}

// CartClient reads and mutates the caller's cart.
type CartClient interface {
	AddToCart(ctx context.Context, creds domainauth.Credentials, productID string, quantity int) error
	// GetUserCart returns the caller's first cart; ok is false when the backend returned none.
	GetUserCart(ctx context.Context, creds domainauth.Credentials) (cart catalog.Cart, ok bool, err error)
}

// PaymentClient creates payment intents for a cart.
type PaymentClient interface {
	MakePayment(ctx context.Context, creds domainauth.Credentials, cartID string) (catalog.PaymentIntent, error)
}
