package backend

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	domainauth "github.com/target/storefront-web/internal/domain/auth"
	apperrors "github.com/target/storefront-web/internal/errors"
	"github.com/target/storefront-web/internal/ports"
)

var (
	_ ports.SessionFetcher = (*Client)(nil)
	_ ports.AccountClient  = (*Client)(nil)
)

// FetchCurrentUser performs exactly one GET /users/get-user. Any failure,
// whatever its cause, is reported as domainauth.ErrUnauthenticated.
func (c *Client) FetchCurrentUser(ctx context.Context, creds domainauth.Credentials) (domainauth.User, error) {
	resp, err := c.call(ctx, "get-user", http.MethodGet, creds, nil, "users", "get-user")
	if err != nil {
		return domainauth.User{}, fmt.Errorf("%w: %w", domainauth.ErrUnauthenticated, err)
	}
	if !resp.ok() {
		return domainauth.User{}, fmt.Errorf("%w: %w", domainauth.ErrUnauthenticated, failure("get-user", resp))
	}
	user, err := extractUser(c.paths.current, resp.body)
	if err != nil {
		return domainauth.User{}, fmt.Errorf("%w: %w", domainauth.ErrUnauthenticated, err)
	}
	return user, nil
}

// Login posts the credentials to /users/login.
func (c *Client) Login(ctx context.Context, creds domainauth.Credentials, in ports.LoginInput) (ports.AccountResult, error) {
	return c.account(ctx, "login", creds, in, c.paths.login, "users", "login")
}

// Register posts a new account to /users/register.
func (c *Client) Register(ctx context.Context, creds domainauth.Credentials, in ports.SignupInput) (ports.AccountResult, error) {
	return c.account(ctx, "register", creds, in, c.paths.signup, "users", "register")
}

func (c *Client) account(
	ctx context.Context,
	op string,
	creds domainauth.Credentials,
	payload any,
	path searcher,
	segments ...string,
) (ports.AccountResult, error) {
	resp, err := c.call(ctx, op, http.MethodPost, creds, payload, segments...)
	if err != nil {
		return ports.AccountResult{}, err
	}
	if !resp.ok() {
		return ports.AccountResult{}, failure(op, resp)
	}
	user, err := extractUser(path, resp.body)
	if err != nil {
		return ports.AccountResult{}, malformed(op, err)
	}
	return ports.AccountResult{
		User:    user,
		Message: messageOf(resp.body),
		Cookies: resp.cookies,
	}, nil
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

// ForgotPassword asks the backend to mail a reset link.
func (c *Client) ForgotPassword(ctx context.Context, creds domainauth.Credentials, email string) error {
	return c.expectOK(ctx, "forgot-password", http.MethodPost, creds, forgotPasswordRequest{Email: email},
		"users", "forgot-password")
}

type resetPasswordRequest struct {
	Password string `json:"password"`
}

// ResetPassword submits a new password for the reset token.
func (c *Client) ResetPassword(ctx context.Context, creds domainauth.Credentials, token, password string) error {
	if token == "" {
		return apperrors.ValidationField("token", "Reset token is missing")
	}
	return c.expectOK(ctx, "reset-password", http.MethodPost, creds, resetPasswordRequest{Password: password},
		"users", "reset-password", url.PathEscape(token))
}

func (c *Client) expectOK(
	ctx context.Context,
	op, method string,
	creds domainauth.Credentials,
	payload any,
	segments ...string,
) error {
	resp, err := c.call(ctx, op, method, creds, payload, segments...)
	if err != nil {
		return err
	}
	if !resp.ok() {
		return failure(op, resp)
	}
	return nil
}
