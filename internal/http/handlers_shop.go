package httpx

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	apperrors "github.com/target/storefront-web/internal/errors"
	"github.com/target/storefront-web/internal/service"
)

const (
	productsFailedMessage = "Failed to load products"
	cartFailedMessage     = "Failed to load your cart"
	checkoutFailedMessage = "Could not start checkout. Please try again."
	addedToCartMessage    = "Added to cart!"
	addToCartFailed       = "Failed to add to cart!"
)

// Home lists the catalog.
// GET /.
func (h *UIHandlers) Home(w http.ResponseWriter, r *http.Request) {
	h.Page(w, r, PageSpec{
		Meta:         PageMeta{Title: "Home", PageTitle: "Products", CurrentPage: PageHome},
		ErrorMessage: productsFailedMessage,
		Fetch: func(ctx context.Context, data map[string]any) error {
			products, err := h.Catalog.ListProducts(ctx, CredentialsFromContext(ctx))
			if err != nil {
				return err
			}
			data["Products"] = products
			return nil
		},
	})
}

// Product shows one product with its add-to-cart form.
// GET /products/{id}.
func (h *UIHandlers) Product(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	product, err := h.Catalog.Product(r.Context(), CredentialsFromContext(r.Context()), id)
	if apperrors.IsNotFound(err) {
		h.NotFound(w, r)
		return
	}

	data := h.NewTemplateData(w, r, PageMeta{Title: "Product", CurrentPage: PageProduct}).Build()
	if err != nil {
		h.logger().WarnContext(r.Context(), "product lookup failed",
			"product_id", id,
			"error", err,
			"request_id", RequestIDFromContext(r.Context()),
		)
		markPageError(data, productsFailedMessage)
		h.toast(w, r, data, productsFailedMessage, ToastError)
		h.renderPage(w, r, data)
		return
	}

	data["Title"] = pageTitle(product.Name)
	data["PageTitle"] = product.Name
	data["Product"] = product
	h.renderPage(w, r, data)
}

// AddToCart adds one unit of the posted product. Anonymous visitors are sent
// to log in and come back to the product.
// POST /cart/items.
func (h *UIHandlers) AddToCart(w http.ResponseWriter, r *http.Request) {
	productID := strings.TrimSpace(r.PostFormValue("productId"))
	back := productPath(productID)

	if CurrentUser(r.Context()) == nil {
		redirect(w, r, loginURL(back))
		return
	}

	if err := h.Carts.AddItem(r.Context(), CredentialsFromContext(r.Context()), productID); err != nil {
		h.logger().WarnContext(r.Context(), "add to cart failed",
			"product_id", productID,
			"error", err,
			"request_id", RequestIDFromContext(r.Context()),
		)
		h.finishCartAction(w, r, back, addToCartFailed, ToastError)
		return
	}
	h.finishCartAction(w, r, back, addedToCartMessage, ToastSuccess)
}

// finishCartAction answers htmx with a toast only; plain forms go back to back.
func (h *UIHandlers) finishCartAction(w http.ResponseWriter, r *http.Request, back, message, kind string) {
	if IsHTMX(r) {
		triggerToast(w, message, kind)
		w.WriteHeader(http.StatusNoContent)
		return
	}
	h.flash(w, r, message, kind)
	http.Redirect(w, r, back, http.StatusSeeOther)
}

func productPath(id string) string {
	if id == "" {
		return "/"
	}
	return "/products/" + url.PathEscape(id)
}

// Cart shows the visitor's cart.
// GET /cart.
func (h *UIHandlers) Cart(w http.ResponseWriter, r *http.Request) {
	h.Page(w, r, PageSpec{
		Meta:         PageMeta{Title: "Cart", PageTitle: "Your Cart", CurrentPage: PageCart},
		ErrorMessage: cartFailedMessage,
		Fetch: func(ctx context.Context, data map[string]any) error {
			cart, ok, err := h.Carts.Current(ctx, CredentialsFromContext(ctx))
			if err != nil {
				return err
			}
			data["HasCart"] = ok && !cart.Empty()
			if ok {
				data["Cart"] = cart
			}
			return nil
		},
	})
}

// Checkout creates a payment intent and renders the card form.
// GET /checkout?cart_id=.
func (h *UIHandlers) Checkout(w http.ResponseWriter, r *http.Request) {
	meta := PageMeta{Title: "Checkout", PageTitle: "Checkout", CurrentPage: PageCheckout}
	cartID := strings.TrimSpace(r.URL.Query().Get("cart_id"))

	co, err := h.Checkouts.Prepare(r.Context(), CredentialsFromContext(r.Context()), cartID)
	if errors.Is(err, service.ErrNoCart) {
		redirect(w, r, "/cart")
		return
	}

	data := h.NewTemplateData(w, r, meta).
		With("StripeKey", h.StripeKey).
		With("CheckoutEnabled", h.StripeKey != "").
		Build()
	if err != nil {
		h.logger().WarnContext(r.Context(), "checkout preparation failed",
			"cart_id", cartID,
			"error", err,
			"request_id", RequestIDFromContext(r.Context()),
		)
		markPageError(data, checkoutFailedMessage)
		h.toast(w, r, data, checkoutFailedMessage, ToastError)
		h.renderPage(w, r, data)
		return
	}

	data["CartID"] = co.CartID
	data["HasCart"] = co.HasCart
	if co.HasCart {
		data["Cart"] = co.Cart
	}
	data["ClientSecret"] = co.Intent.ClientSecret
	h.renderPage(w, r, data)
}

// PaymentSuccess confirms the order.
// GET /payment-success.
func (h *UIHandlers) PaymentSuccess(w http.ResponseWriter, r *http.Request) {
	h.Page(w, r, PageSpec{Meta: PageMeta{Title: "Payment Successful", PageTitle: "Payment Successful!", CurrentPage: PagePaymentSuccess}})
}
