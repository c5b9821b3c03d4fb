package httpx

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	domainauth "github.com/target/storefront-web/internal/domain/auth"
	"github.com/target/storefront-web/internal/service"
)

// LoginPath is where the protected gate sends anonymous visitors.
const LoginPath = "/login"

// SessionResolver is the part of the session service the middleware needs.
type SessionResolver interface {
	Resolve(ctx context.Context, id string) (domainauth.Session, bool, error)
	BeginFetch(ctx context.Context, id string, creds domainauth.Credentials) (domainauth.State, <-chan struct{}, error)
	AwaitSettled(ctx context.Context, id string, done <-chan struct{}, wait time.Duration) (domainauth.State, error)
}

var _ SessionResolver = (*service.SessionService)(nil)

// GateObserver receives one event per gate decision.
type GateObserver interface {
	ObserveGateDecision(gate, decision string)
}

// SessionConfig groups dependencies for SessionContext.
type SessionConfig struct {
	Sessions SessionResolver
	Cookies  CookieConfig
	Logger   *slog.Logger
}

// SessionContext resolves the visitor session for every request, starting one
// (and setting its cookie) on first contact. The result is available through
// VisitFromContext.
func SessionContext(cfg SessionConfig) func(http.Handler) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, created, err := cfg.Sessions.Resolve(r.Context(), cfg.Cookies.sessionID(r))
			if err != nil {
				logger.ErrorContext(r.Context(), "resolve visitor session failed",
					"error", err,
					"path", r.URL.Path,
					"request_id", RequestIDFromContext(r.Context()),
				)
				http.Error(w, "Service temporarily unavailable", http.StatusServiceUnavailable)
				return
			}
			if created {
				cfg.Cookies.setSession(w, r, sess.ID)
			}

			visit := &Visit{
				Session:     sess,
				Credentials: sess.Credentials.Merge(cfg.Cookies.browserCredentials(r)),
			}
			next.ServeHTTP(w, r.WithContext(SetVisitInContext(r.Context(), visit)))
		})
	}
}

// GateConfig groups dependencies shared by the Protected and Public gates.
type GateConfig struct {
	Sessions SessionResolver
	// Wait bounds how long a gate holds the request for an in-flight fetch
	// before answering with the placeholder.
	Wait time.Duration
	// Placeholder renders the loading page. A plain fallback is used when nil.
	Placeholder http.HandlerFunc
	Observer    GateObserver
	Logger      *slog.Logger
}

func (cfg GateConfig) logger() *slog.Logger {
	if cfg.Logger != nil {
		return cfg.Logger
	}
	return slog.Default()
}

// Protected only lets visitors with a user through. Anonymous visitors are
// redirected to the login page with the requested path in "from".
func Protected(cfg GateConfig) func(http.Handler) http.Handler {
	return gate(cfg, domainauth.GateProtected, "")
}

// Public only lets anonymous visitors through. Signed-in visitors are redirected
// to the sanitised "from" value, then redirectTo, then "/".
func Public(cfg GateConfig, redirectTo string) func(http.Handler) http.Handler {
	return gate(cfg, domainauth.GatePublic, safeRedirectTarget(redirectTo))
}

func gate(cfg GateConfig, kind domainauth.GateKind, redirectTo string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			visit, ok := VisitFromContext(r.Context())
			if !ok {
				cfg.logger().ErrorContext(r.Context(), "gate used without session middleware", "path", r.URL.Path)
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				return
			}

			state, err := settleForGate(r.Context(), cfg, visit)
			if err != nil {
				if errors.Is(err, context.Canceled) {
					return
				}
				cfg.logger().WarnContext(r.Context(), "gate could not settle session",
					"gate", kind.String(),
					"error", err,
					"request_id", RequestIDFromContext(r.Context()),
				)
			}

			decision := domainauth.Decide(kind, state)
			if cfg.Observer != nil {
				cfg.Observer.ObserveGateDecision(kind.String(), decision.String())
			}

			switch decision {
			case domainauth.DecisionRender:
				settled := *visit
				settled.Session.State = state
				next.ServeHTTP(w, r.WithContext(SetVisitInContext(r.Context(), &settled)))
			case domainauth.DecisionRedirect:
				if kind == domainauth.GateProtected {
					redirect(w, r, loginURL(requestedPath(r)))
					return
				}
				redirect(w, r, domainauth.PublicRedirectTarget(fromParam(r), redirectTo))
			default:
				writePlaceholder(w, r, cfg.Placeholder)
			}
		})
	}
}

// Settle waits for the visitor's session like the gates do but never blocks the
// request: children always render, with whatever state is known by then.
func Settle(cfg GateConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			visit, ok := VisitFromContext(r.Context())
			if !ok {
				next.ServeHTTP(w, r)
				return
			}
			state, err := settleForGate(r.Context(), cfg, visit)
			if err != nil && !errors.Is(err, context.Canceled) {
				cfg.logger().WarnContext(r.Context(), "could not settle session",
					"error", err,
					"request_id", RequestIDFromContext(r.Context()),
				)
			}
			settled := *visit
			settled.Session.State = state
			next.ServeHTTP(w, r.WithContext(SetVisitInContext(r.Context(), &settled)))
		})
	}
}

// settleForGate triggers the session fetch when the visitor's state calls for one
// and waits up to cfg.Wait for it. The returned state is always usable: on error
// it is the last state known.
func settleForGate(ctx context.Context, cfg GateConfig, visit *Visit) (domainauth.State, error) {
	state := visit.Session.State
	if !domainauth.ShouldFetch(state, len(visit.Credentials) > 0) {
		return state, nil
	}

	pending, done, err := cfg.Sessions.BeginFetch(ctx, visit.Session.ID, visit.Credentials)
	if err != nil {
		return state, err
	}
	settled, err := cfg.Sessions.AwaitSettled(ctx, visit.Session.ID, done, cfg.Wait)
	if err != nil {
		return pending, err
	}
	return settled, nil
}

// writePlaceholder answers a gated request whose session is still loading.
// The children are never rendered.
func writePlaceholder(w http.ResponseWriter, r *http.Request, render http.HandlerFunc) {
	w.Header().Set("Cache-Control", "no-store")
	if render != nil {
		render(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`<!doctype html><meta http-equiv="refresh" content="1"><p>Loading...</p>`))
}

// redirect replaces the current page: 303 for plain requests, HX-Redirect for htmx.
func redirect(w http.ResponseWriter, r *http.Request, target string) {
	if IsHTMX(r) {
		HTMX(w).Redirect(target)
		return
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// loginURL builds the login entry point carrying from.
func loginURL(from string) string {
	if from == "" || from == "/" {
		return LoginPath
	}
	q := url.Values{}
	q.Set("from", from)
	return LoginPath + "?" + q.Encode()
}

// requestedPath is the page the visitor asked for. Non-GET htmx requests use the
// page they were sent from.
func requestedPath(r *http.Request) string {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		return redirectPathForRequest(r)
	}
	return safeRedirectPath(r.URL.RequestURI())
}

// fromParam returns the sanitised "from" query or form value, or "".
func fromParam(r *http.Request) string {
	raw := r.URL.Query().Get("from")
	if raw == "" && r.Method == http.MethodPost {
		raw = r.PostFormValue("from")
	}
	return safeRedirectTarget(raw)
}

// safeRedirectTarget is safeRedirectPath that keeps "" for invalid or empty input.
func safeRedirectTarget(raw string) string {
	if raw == "" {
		return ""
	}
	if safe := safeRedirectPath(raw); safe != "/" || raw == "/" {
		return safe
	}
	return ""
}
