package service

import (
	"context"
	"log/slog"

	domainauth "github.com/target/storefront-web/internal/domain/auth"
	"github.com/target/storefront-web/internal/domain/catalog"
	apperrors "github.com/target/storefront-web/internal/errors"
	"github.com/target/storefront-web/internal/ports"
	"golang.org/x/sync/errgroup"
)

// ErrNoCart is returned by Prepare when the visitor has no cart to pay for.
var ErrNoCart = apperrors.NotFound("No cart to check out")

// CheckoutServiceOptions groups dependencies for CheckoutService.
type CheckoutServiceOptions struct {
	Carts    ports.CartClient
	Payments ports.PaymentClient
	Logger   *slog.Logger
}

// CheckoutService prepares the payment page.
type CheckoutService struct {
	carts    ports.CartClient
	payments ports.PaymentClient
	logger   *slog.Logger
}

// Checkout is everything the checkout page renders.
type Checkout struct {
	CartID string
	// Cart is the summary; HasCart is false when it could not be loaded.
	Cart    catalog.Cart
	HasCart bool
	Intent  catalog.PaymentIntent
}

// NewCheckoutService constructs a CheckoutService. Carts and Payments are required.
func NewCheckoutService(opts CheckoutServiceOptions) *CheckoutService {
	if opts.Carts == nil {
		panic("service: CheckoutServiceOptions.Carts is required")
	}
	if opts.Payments == nil {
		panic("service: CheckoutServiceOptions.Payments is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &CheckoutService{carts: opts.Carts, payments: opts.Payments, logger: logger}
}

// Prepare creates a payment intent for cartID. With no cartID it falls back to the
// visitor's cart and returns ErrNoCart when there is none. When cartID is known the
// cart summary and the intent are fetched in parallel; a failed summary is not fatal.
func (c *CheckoutService) Prepare(ctx context.Context, creds domainauth.Credentials, cartID string) (Checkout, error) {
	if cartID == "" {
		cart, ok, err := c.carts.GetUserCart(ctx, creds)
		if err != nil {
			return Checkout{}, err
		}
		if !ok || cart.ID == "" {
			return Checkout{}, ErrNoCart
		}
		intent, err := c.payments.MakePayment(ctx, creds, cart.ID)
		if err != nil {
			return Checkout{}, err
		}
		return Checkout{CartID: cart.ID, Cart: cart, HasCart: true, Intent: intent}, nil
	}

	out := Checkout{CartID: cartID}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		cart, ok, err := c.carts.GetUserCart(gctx, creds)
		if err != nil {
			c.logger.WarnContext(ctx, "checkout cart summary unavailable", "cart_id", cartID, "error", err)
			return nil
		}
		out.Cart, out.HasCart = cart, ok
		return nil
	})
	g.Go(func() error {
		intent, err := c.payments.MakePayment(gctx, creds, cartID)
		if err != nil {
			return err
		}
		out.Intent = intent
		return nil
	})
	if err := g.Wait(); err != nil {
		return Checkout{}, err
	}
	return out, nil
}
