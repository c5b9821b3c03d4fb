package ports

// Package ports defines interfaces (hexagonal ports) for session and account behavior.
// Implementations live in internal/adapters; orchestration in internal/service.

import (
	"context"
	"errors"
	"net/http"

	domainauth "github.com/target/storefront-web/internal/domain/auth"
)

// ErrSessionNotFound is returned by SessionStore implementations on a miss or expiry.
var ErrSessionNotFound = errors.New("session not found")

// SessionStore persists visitor sessions. Implementations apply their own idle TTL, refreshed by Get and Save.
type SessionStore interface {
	Save(ctx context.Context, sess domainauth.Session) error
	Get(ctx context.Context, id string) (domainauth.Session, error)
	Delete(ctx context.Context, id string) error
}

// ErrSessionConflict is returned by SessionUpdater when concurrent writers
// kept changing the session and the update gave up.
var ErrSessionConflict = errors.New("session update conflict")

// SessionUpdater is implemented by stores shared between processes. Update
// loads id, applies fn and saves the result as one atomic step; fn may run
// more than once and must only depend on the session it is given.
type SessionUpdater interface {
	Update(ctx context.Context, id string, fn func(*domainauth.Session)) (domainauth.Session, error)
}

// SessionFetcher asks the backend who the caller is.
// Every failure must be reported as domainauth.ErrUnauthenticated.
type SessionFetcher interface {
	FetchCurrentUser(ctx context.Context, creds domainauth.Credentials) (domainauth.User, error)
}

// LoginInput is the login form payload.
type LoginInput struct {
	Name     string `json:"name"`
	Password string `json:"password"`
}

// SignupInput is the registration form payload.
type SignupInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AccountResult is the outcome of a successful login or registration.
// Cookies are the backend's Set-Cookie headers, to be relayed to the browser.
type AccountResult struct {
	User    domainauth.User
	Message string
	Cookies []*http.Cookie
}

// Credentials converts the relayed cookies into stored credentials.
func (r AccountResult) Credentials() domainauth.Credentials {
	out := make(domainauth.Credentials, 0, len(r.Cookies))
	for _, c := range r.Cookies {
		if c == nil || c.Name == "" || c.MaxAge < 0 {
			continue
		}
		out = append(out, domainauth.Credential{Name: c.Name, Value: c.Value})
	}
	return out
}

// AccountClient performs the backend account operations.
type AccountClient interface {
	Login(ctx context.Context, creds domainauth.Credentials, in LoginInput) (AccountResult, error)
	Register(ctx context.Context, creds domainauth.Credentials, in SignupInput) (AccountResult, error)
	ForgotPassword(ctx context.Context, creds domainauth.Credentials, email string) error
	ResetPassword(ctx context.Context, creds domainauth.Credentials, token, password string) error
}
