package httpx

import (
	"context"

	domainauth "github.com/target/storefront-web/internal/domain/auth"
)

// visitKey is an unexported context key type to avoid collisions across packages.
// Centralized in this file so all handlers/middleware use the same key.
type visitKey struct{}

// Visit is what the session middleware resolved for the current request.
type Visit struct {
	Session domainauth.Session
	// Credentials are the stored backend cookies merged with the ones the browser sent.
	Credentials domainauth.Credentials
}

// SetVisitInContext returns a child context that carries v.
func SetVisitInContext(ctx context.Context, v *Visit) context.Context {
	if v == nil {
		return ctx
	}
	return context.WithValue(ctx, visitKey{}, v)
}

// VisitFromContext returns the visit from context and a boolean indicating presence.
func VisitFromContext(ctx context.Context) (*Visit, bool) {
	if v, ok := ctx.Value(visitKey{}).(*Visit); ok && v != nil {
		return v, true
	}
	return nil, false
}

// SessionIDFromContext returns the visitor session id, or "" outside the session middleware.
func SessionIDFromContext(ctx context.Context) string {
	if v, ok := VisitFromContext(ctx); ok {
		return v.Session.ID
	}
	return ""
}

// CredentialsFromContext returns the backend credentials for the current visitor.
func CredentialsFromContext(ctx context.Context) domainauth.Credentials {
	if v, ok := VisitFromContext(ctx); ok {
		return v.Credentials
	}
	return nil
}

// CurrentUser returns the signed-in user, or nil for anonymous and loading visitors.
func CurrentUser(ctx context.Context) *domainauth.User {
	v, ok := VisitFromContext(ctx)
	if !ok {
		return nil
	}
	return v.Session.State.User
}

// requestIDKey carries the id assigned by RequestID.
type requestIDKey struct{}

// RequestIDFromContext returns the request id, or "" when RequestID did not run.
func RequestIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey{}).(string); ok {
		return id
	}
	return ""
}
