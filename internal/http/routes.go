package httpx

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	storefront "github.com/target/storefront-web"
	shopfuncs "github.com/target/storefront-web/internal/http/templates/shop"
)

const csrfFailedMessage = "Your session expired. Please reload the page and try again."

// RouterServices holds all the services needed by the HTTP router.
type RouterServices struct {
	Sessions  SessionResolver
	Accounts  AccountService
	Catalog   CatalogService
	Carts     CartService
	Checkouts CheckoutService

	Cookies CookieConfig
	// GateWait bounds how long gates hold a request for an in-flight session fetch.
	GateWait time.Duration

	GateObserver    GateObserver
	RequestObserver RequestObserver
	// Metrics serves GET /metrics when non-nil.
	Metrics      http.Handler
	HealthChecks []HealthCheck

	StripeKey string
	Prices    shopfuncs.Options

	// TemplateFS and StaticFS override where templates and assets come from.
	// By default they are read from disk in dev mode and from the embedded FS otherwise.
	TemplateFS fs.FS
	StaticFS   fs.FS

	// Compression enables gzip when non-nil.
	Compression *CompressionConfig

	IsDev  bool         // Development mode flag for template reloading and error detail
	Logger *slog.Logger // Logger for template and HTTP errors (optional)
}

func (s RouterServices) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

// NewRouter creates and configures the storefront HTTP handler.
func NewRouter(services RouterServices) (http.Handler, error) {
	if services.Sessions == nil {
		return nil, errors.New("router: Sessions is required")
	}

	ui, err := setupUIHandlers(services)
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	registerUIRoutes(mux, ui, newPageChains(services, ui))
	registerMachineRoutes(mux, services)
	mux.Handle("GET /static/", staticHandler(services))

	var handler http.Handler = &notFoundHandler{mux: mux, uiHandlers: ui}
	handler = BrowserDetection()(handler)
	if services.Compression != nil {
		handler = Compression(*services.Compression)(handler)
	}
	handler = Recover(services.Logger)(handler)
	handler = Logging(services.Logger, services.RequestObserver)(handler)
	return RequestID()(handler), nil
}

// setupUIHandlers creates UI handlers with their template renderer.
// In dev mode templates are loaded from disk for hot reloading.
func setupUIHandlers(services RouterServices) (*UIHandlers, error) {
	templateFS := services.TemplateFS
	if templateFS == nil {
		var err error
		templateFS, err = defaultTemplateFS(services.IsDev)
		if err != nil {
			return nil, err
		}
	}

	tr, err := NewTemplateRenderer(TemplateRendererConfig{
		TemplateFS: templateFS,
		Prices:     services.Prices,
		Logger:     services.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("create template renderer: %w", err)
	}

	return &UIHandlers{
		T:         tr,
		Accounts:  services.Accounts,
		Catalog:   services.Catalog,
		Carts:     services.Carts,
		Checkouts: services.Checkouts,
		Cookies:   services.Cookies,
		StripeKey: services.StripeKey,
		IsDev:     services.IsDev,
		Logger:    services.Logger,
	}, nil
}

func defaultTemplateFS(isDev bool) (fs.FS, error) {
	if isDev {
		return os.DirFS(TemplatePathFromRoot), nil
	}
	sub, err := fs.Sub(storefront.TemplateFS, TemplatePathFromRoot)
	if err != nil {
		return nil, fmt.Errorf("embedded templates: %w", err)
	}
	return sub, nil
}

// pageChains wraps page handlers with the session, CSRF and gate middleware.
type pageChains struct {
	session   func(http.Handler) http.Handler
	csrf      func(http.Handler) http.Handler
	protected func(http.Handler) http.Handler
	public    func(http.Handler) http.Handler
	settle    func(http.Handler) http.Handler
}

func newPageChains(services RouterServices, ui *UIHandlers) pageChains {
	gateCfg := GateConfig{
		Sessions:    services.Sessions,
		Wait:        services.GateWait,
		Placeholder: ui.Loading,
		Observer:    services.GateObserver,
		Logger:      services.Logger,
	}
	return pageChains{
		session: SessionContext(SessionConfig{
			Sessions: services.Sessions,
			Cookies:  services.Cookies,
			Logger:   services.Logger,
		}),
		csrf: CSRFProtection(CSRFConfig{
			CookieDomain: services.Cookies.Domain,
			Secure:       services.Cookies.Secure,
			Logger:       services.Logger,
			OnFailure: func(w http.ResponseWriter, r *http.Request) {
				ui.renderErrorPage(w, r, http.StatusForbidden, csrfFailedMessage)
			},
		}),
		protected: Protected(gateCfg),
		public:    Public(gateCfg, "/"),
		settle:    Settle(gateCfg),
	}
}

// page is session context plus CSRF protection.
func (c pageChains) page(h http.HandlerFunc) http.Handler {
	return c.session(c.csrf(h))
}

func (c pageChains) withProtected(h http.HandlerFunc) http.Handler {
	return c.page(c.protected(h).ServeHTTP)
}

func (c pageChains) withPublic(h http.HandlerFunc) http.Handler {
	return c.page(c.public(h).ServeHTTP)
}

func (c pageChains) withSettle(h http.HandlerFunc) http.Handler {
	return c.page(c.settle(h).ServeHTTP)
}

func registerUIRoutes(mux *http.ServeMux, h *UIHandlers, c pageChains) {
	// Shop pages render for everyone once the session has settled.
	mux.Handle("GET /{$}", c.withSettle(h.Home))
	mux.Handle("GET /products/{id}", c.withSettle(h.Product))
	mux.Handle("POST /cart/items", c.withSettle(h.AddToCart))

	mux.Handle("GET /cart", c.withProtected(h.Cart))
	mux.Handle("GET /checkout", c.withProtected(h.Checkout))
	mux.Handle("GET /payment-success", c.withProtected(h.PaymentSuccess))

	mux.Handle("GET /login", c.withPublic(h.LoginPage))
	mux.Handle("POST /login", c.withPublic(h.Login))
	mux.Handle("GET /signup", c.withPublic(h.SignupPage))
	mux.Handle("POST /signup", c.withPublic(h.Signup))
	mux.Handle("GET /forgot-password", c.withPublic(h.ForgotPasswordPage))
	mux.Handle("POST /forgot-password", c.withPublic(h.ForgotPassword))
	mux.Handle("GET /reset-password/{token}", c.withPublic(h.ResetPasswordPage))
	mux.Handle("POST /reset-password/{token}", c.withPublic(h.ResetPassword))

	mux.Handle("POST /logout", c.page(h.Logout))
	mux.Handle("GET /auth/status", c.session(c.settle(http.HandlerFunc(h.AuthStatus))))
}

func registerMachineRoutes(mux *http.ServeMux, services RouterServices) {
	health := healthHandler(services.HealthChecks)
	mux.Handle("GET /healthz", health)
	if services.Metrics != nil {
		mux.Handle("GET /metrics", services.Metrics)
	}
}

// staticHandler serves /static/* assets.
// In dev mode they come from disk for hot reloading, otherwise from the embedded FS.
func staticHandler(services RouterServices) http.Handler {
	staticFS := services.StaticFS
	if staticFS == nil {
		if services.IsDev {
			staticFS = os.DirFS("frontend/static")
		} else {
			sub, err := fs.Sub(storefront.StaticFS, "frontend/static")
			if err != nil {
				services.logger().Error("failed to create sub-filesystem for static assets", "error", err)
				sub = os.DirFS("frontend/static")
			}
			staticFS = sub
		}
	}
	return staticWithCacheHeaders(http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))), services.IsDev)
}

// staticWithCacheHeaders wraps a static file handler to add appropriate cache headers.
func staticWithCacheHeaders(handler http.Handler, isDev bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if isDev {
			// Assets change under the developer; never cache them.
			w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
			w.Header().Set("Pragma", "no-cache")
			w.Header().Set("Expires", "0")
		} else {
			w.Header().Set("Cache-Control", "public, max-age=3600")
		}
		handler.ServeHTTP(w, r)
	})
}

// notFoundHandler wraps a ServeMux and provides custom 404 handling.
type notFoundHandler struct {
	mux        *http.ServeMux
	uiHandlers *UIHandlers
}

// ServeHTTP implements http.Handler and provides custom 404 handling.
func (h *notFoundHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	cw := newCaptureWriter(w)
	// Serve the request through the mux, capturing status, headers, and body
	h.mux.ServeHTTP(cw, r)

	// The mux records the matched pattern on r.
	if r.Pattern != "" {
		setRoute(r.Context(), r.Pattern)
	} else {
		setRoute(r.Context(), "notfound")
	}

	if cw.status == http.StatusNotFound {
		// For missing static assets, preserve the default file server response
		if strings.HasPrefix(r.URL.Path, "/static/") || h.uiHandlers == nil {
			cw.flushTo(w)
			return
		}
		if IsBrowserRequest(r) && isHTMLResponse(cw.header) {
			// Handlers already rendered their own 404 page.
			cw.flushTo(w)
			return
		}
		h.uiHandlers.NotFound(w, r)
		return
	}

	// Not a 404: write the captured response
	cw.flushTo(w)
}

func isHTMLResponse(h http.Header) bool {
	return strings.HasPrefix(h.Get("Content-Type"), "text/html")
}

// captureWriter buffers headers, status and body so we can decide post-dispatch.
type captureWriter struct {
	rw     http.ResponseWriter
	header http.Header
	status int
	buf    bytes.Buffer
}

func newCaptureWriter(w http.ResponseWriter) *captureWriter {
	return &captureWriter{rw: w, header: make(http.Header), status: http.StatusOK}
}

func (c *captureWriter) Header() http.Header         { return c.header }
func (c *captureWriter) WriteHeader(code int)        { c.status = code }
func (c *captureWriter) Write(b []byte) (int, error) { return c.buf.Write(b) }

func (c *captureWriter) flushTo(w http.ResponseWriter) {
	for k, vs := range c.header {
		for _, v := range vs {
			w.Header().Add(k, v)
		}
	}
	w.WriteHeader(c.status)
	if _, err := w.Write(c.buf.Bytes()); err != nil {
		slog.Default().Error("failed to write captured response", "error", err)
	}
}
