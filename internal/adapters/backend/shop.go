package backend

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	domainauth "github.com/target/storefront-web/internal/domain/auth"
	"github.com/target/storefront-web/internal/domain/catalog"
	"github.com/target/storefront-web/internal/ports"
)

var (
	_ ports.CatalogClient = (*Client)(nil)
	_ ports.CartClient    = (*Client)(nil)
	_ ports.PaymentClient = (*Client)(nil)
)

// ListProducts returns the "data" array of GET /products/get-products.
func (c *Client) ListProducts(ctx context.Context, creds domainauth.Credentials) ([]catalog.Product, error) {
	var env struct {
		Data []catalog.Product `json:"data"`
	}
	if err := c.getJSON(ctx, "get-products", creds, &env, "products", "get-products"); err != nil {
		return nil, err
	}
	if env.Data == nil {
		env.Data = []catalog.Product{}
	}
	return env.Data, nil
}

type addToCartRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// AddToCart posts one line to /cart/add-to-cart.
func (c *Client) AddToCart(ctx context.Context, creds domainauth.Credentials, productID string, quantity int) error {
	return c.expectOK(ctx, "add-to-cart", http.MethodPost, creds,
		addToCartRequest{ProductID: productID, Quantity: quantity}, "cart", "add-to-cart")
}

// GetUserCart returns data[0] of GET /cart/get-user-cart.
func (c *Client) GetUserCart(ctx context.Context, creds domainauth.Credentials) (catalog.Cart, bool, error) {
	var env struct {
		Data []catalog.Cart `json:"data"`
	}
	if err := c.getJSON(ctx, "get-user-cart", creds, &env, "cart", "get-user-cart"); err != nil {
		return catalog.Cart{}, false, err
	}
	if len(env.Data) == 0 {
		return catalog.Cart{}, false, nil
	}
	return env.Data[0], true, nil
}

type makePaymentRequest struct {
	CartID string `json:"cartId"`
}

var errNoClientSecret = errors.New("response carried no clientSecret")

// MakePayment creates a payment intent for cartID.
func (c *Client) MakePayment(ctx context.Context, creds domainauth.Credentials, cartID string) (catalog.PaymentIntent, error) {
	const op = "make-payment"
	resp, err := c.call(ctx, op, http.MethodPost, creds, makePaymentRequest{CartID: cartID}, "payments", "make-payment")
	if err != nil {
		return catalog.PaymentIntent{}, err
	}
	if !resp.ok() {
		return catalog.PaymentIntent{}, failure(op, resp)
	}

	var env struct {
		catalog.PaymentIntent
		Data *catalog.PaymentIntent `json:"data"`
	}
	if err := json.Unmarshal(resp.body, &env); err != nil {
		return catalog.PaymentIntent{}, malformed(op, err)
	}
	intent := env.PaymentIntent
	if intent.ClientSecret == "" && env.Data != nil {
		intent = *env.Data
	}
	if strings.TrimSpace(intent.ClientSecret) == "" {
		return catalog.PaymentIntent{}, malformed(op, errNoClientSecret)
	}
	return intent, nil
}

func (c *Client) getJSON(ctx context.Context, op string, creds domainauth.Credentials, dst any, segments ...string) error {
	resp, err := c.call(ctx, op, http.MethodGet, creds, nil, segments...)
	if err != nil {
		return err
	}
	if !resp.ok() {
		return failure(op, resp)
	}
	if err := json.Unmarshal(resp.body, dst); err != nil {
		return malformed(op, err)
	}
	return nil
}
