package httpx

import (
	"context"
	"html"
	"log/slog"
	"net/http"
	"strings"

	domainauth "github.com/target/storefront-web/internal/domain/auth"
	"github.com/target/storefront-web/internal/domain/catalog"
	"github.com/target/storefront-web/internal/http/ui/viewmodel"
	"github.com/target/storefront-web/internal/http/validation"
	"github.com/target/storefront-web/internal/ports"
	"github.com/target/storefront-web/internal/service"
)

const genericErrorMessage = "An unexpected error occurred. Please try again."

// AccountService is the part of the account flows the UI needs.
type AccountService interface {
	Login(ctx context.Context, sessionID string, creds domainauth.Credentials, in ports.LoginInput) (ports.AccountResult, error)
	Signup(ctx context.Context, sessionID string, creds domainauth.Credentials, in ports.SignupInput) (ports.AccountResult, error)
	ForgotPassword(ctx context.Context, creds domainauth.Credentials, email string) error
	ResetPassword(ctx context.Context, creds domainauth.Credentials, token, password string) error
	Logout(ctx context.Context, sessionID string) (domainauth.Credentials, error)
}

// CatalogService lists products.
type CatalogService interface {
	ListProducts(ctx context.Context, creds domainauth.Credentials) ([]catalog.Product, error)
	Product(ctx context.Context, creds domainauth.Credentials, id string) (catalog.Product, error)
}

// CartService reads and updates the visitor's cart.
type CartService interface {
	AddItem(ctx context.Context, creds domainauth.Credentials, productID string) error
	Current(ctx context.Context, creds domainauth.Credentials) (catalog.Cart, bool, error)
}

// CheckoutService prepares the payment page.
type CheckoutService interface {
	Prepare(ctx context.Context, creds domainauth.Credentials, cartID string) (service.Checkout, error)
}

var (
	_ AccountService  = (*service.AccountService)(nil)
	_ CatalogService  = (*service.CatalogService)(nil)
	_ CartService     = (*service.CartService)(nil)
	_ CheckoutService = (*service.CheckoutService)(nil)
)

// UIHandlers serves browser-facing routes.
type UIHandlers struct {
	T         *TemplateRenderer
	Accounts  AccountService
	Catalog   CatalogService
	Carts     CartService
	Checkouts CheckoutService
	Forms     *validation.Validator
	Cookies   CookieConfig
	// StripeKey is the publishable key for Stripe.js; checkout is disabled when empty.
	StripeKey string
	IsDev     bool // Development mode flag for enhanced error reporting
	Logger    *slog.Logger
}

// logger returns the configured logger or falls back to slog.Default().
func (h *UIHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

func (h *UIHandlers) forms() *validation.Validator {
	if h.Forms == nil {
		h.Forms = validation.New()
	}
	return h.Forms
}

// triggerToast sends a toast with an htmx response. Empty messages are ignored.
func triggerToast(w http.ResponseWriter, message, toastType string) {
	if w == nil || strings.TrimSpace(message) == "" {
		return
	}
	HTMX(w).Toast(message, strings.TrimSpace(toastType))
}

// toast shows message on the response being rendered: as an htmx trigger for
// partial swaps, otherwise through the layout.
func (h *UIHandlers) toast(w http.ResponseWriter, r *http.Request, data map[string]any, message, kind string) {
	if message == "" {
		return
	}
	if WantsPartial(r) {
		triggerToast(w, message, kind)
		return
	}
	data["Toast"] = &viewmodel.Toast{Message: message, Type: kind}
}

// flash shows message on the page the visitor is redirected to next.
func (h *UIHandlers) flash(w http.ResponseWriter, r *http.Request, message, kind string) {
	h.Cookies.setFlash(w, r, Flash{Message: message, Type: kind})
}

// PageMeta contains metadata for page rendering.
type PageMeta struct {
	Title       string
	PageTitle   string
	CurrentPage string
}

// buildLayout constructs shared layout metadata from the request and visit.
func (h *UIHandlers) buildLayout(w http.ResponseWriter, r *http.Request, meta PageMeta) viewmodel.Layout {
	layout := viewmodel.Layout{
		Title:       pageTitle(meta.Title),
		PageTitle:   meta.PageTitle,
		CurrentPage: meta.CurrentPage,
		CSRFToken:   GetCSRFToken(r),
	}

	if visit, ok := VisitFromContext(r.Context()); ok {
		state := visit.Session.State
		layout.IsLoadingUser = state.IsLoadingUser
		if state.User != nil {
			layout.IsAuthenticated = true
			layout.User = &viewmodel.User{ID: state.User.ID, Name: state.User.Name, Email: state.User.Email}
		}
	}

	// Partial swaps keep the flash for the next full page; htmx cannot show it from the layout.
	if !WantsPartial(r) {
		if f, ok := h.Cookies.popFlash(w, r); ok {
			layout.Toast = &viewmodel.Toast{Message: f.Message, Type: f.Type}
		}
	}
	return layout
}

// basePageData constructs the common page data map with visitor context.
func (h *UIHandlers) basePageData(w http.ResponseWriter, r *http.Request, meta PageMeta) map[string]any {
	layout := h.buildLayout(w, r, meta)
	data := map[string]any{
		"Title":           layout.Title,
		"PageTitle":       layout.PageTitle,
		"CurrentPage":     layout.CurrentPage,
		"IsAuthenticated": layout.IsAuthenticated,
		"IsLoadingUser":   layout.IsLoadingUser,
		"CSRFToken":       layout.CSRFToken,
	}
	if layout.User != nil {
		data["User"] = layout.User
	}
	if layout.Toast != nil {
		data["Toast"] = layout.Toast
	}
	return data
}

// PageSpec defines metadata and an optional fetch for page-specific data.
type PageSpec struct {
	Meta  PageMeta
	Fetch func(ctx context.Context, data map[string]any) error
	// ErrorMessage replaces the generic message when Fetch fails.
	ErrorMessage string
}

// Page builds base data, optionally fetches content data, and renders.
func (h *UIHandlers) Page(w http.ResponseWriter, r *http.Request, spec PageSpec) {
	data := h.basePageData(w, r, spec.Meta)
	if spec.Fetch != nil {
		if err := spec.Fetch(r.Context(), data); err != nil {
			h.logger().WarnContext(r.Context(), "page data fetch failed",
				"page", spec.Meta.CurrentPage,
				"error", err,
				"request_id", RequestIDFromContext(r.Context()),
			)
			msg := spec.ErrorMessage
			if msg == "" {
				msg = genericErrorMessage
			}
			markPageError(data, msg)
			h.toast(w, r, data, msg, ToastError)
		}
	}
	h.renderPage(w, r, data)
}

// renderPage renders a page, or only its content for htmx swaps.
func (h *UIHandlers) renderPage(w http.ResponseWriter, r *http.Request, data map[string]any) {
	h.renderPageStatus(w, r, data, http.StatusOK)
}

func (h *UIHandlers) renderPageStatus(w http.ResponseWriter, r *http.Request, data map[string]any, status int) {
	if !WantsPartial(r) {
		if status != http.StatusOK {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			w.WriteHeader(status)
		}
		if err := h.T.RenderFull(w, r, data); err != nil {
			h.logAndRenderTemplateError(w, r, err, "full page render")
		}
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if status != http.StatusOK {
		w.WriteHeader(status)
	}

	// Include a <title> element so htmx updates document.title on partial swaps
	title, _ := data["Title"].(string)
	if _, err := w.Write([]byte(`<title>` + html.EscapeString(title) + `</title>`)); err != nil {
		h.logger().Error("failed to write partial document title", "error", err)
		return
	}

	page, _ := data["CurrentPage"].(string)
	if err := h.T.RenderNamed(w, ContentTemplateFor(page), data); err != nil {
		h.logAndRenderTemplateError(w, r, err, "partial content render")
	}
}

func markPageError(data map[string]any, msg string) {
	data["Error"] = true
	if _, ok := data["ErrorMessage"]; ok {
		return
	}
	data["ErrorMessage"] = msg
}

// logAndRenderTemplateError logs template errors and renders them in dev mode.
func (h *UIHandlers) logAndRenderTemplateError(w http.ResponseWriter, r *http.Request, err error, context string) {
	h.logger().Error("template rendering failed",
		"error", err,
		"context", context,
		"path", r.URL.Path,
		"method", r.Method,
	)

	if h.IsDev {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		if _, writeErr := w.Write([]byte(`<div class="dev-error"><h2>Template Rendering Error</h2>` +
			`<p><strong>Context:</strong> ` + html.EscapeString(context) + `</p>` +
			`<p><strong>Path:</strong> ` + html.EscapeString(r.URL.Path) + `</p>` +
			`<pre>` + html.EscapeString(err.Error()) + `</pre></div>`)); writeErr != nil {
			h.logger().Error("failed to write template error response", "error", writeErr)
		}
		return
	}

	http.Error(w, "internal server error", http.StatusInternalServerError)
}
