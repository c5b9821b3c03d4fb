package service

import (
	"context"
	"log/slog"

	domainauth "github.com/target/storefront-web/internal/domain/auth"
	apperrors "github.com/target/storefront-web/internal/errors"
	"github.com/target/storefront-web/internal/ports"
)

// Fallback messages stored on the session when the backend gives none.
const (
	LoginFailedMessage  = "Login failed"
	SignupFailedMessage = "Signup failed"
)

// AccountServiceOptions groups dependencies for AccountService.
type AccountServiceOptions struct {
	Client   ports.AccountClient
	Sessions *SessionService
	Logger   *slog.Logger
}

// AccountService runs the account flows and commits their outcome to the visitor session.
type AccountService struct {
	client   ports.AccountClient
	sessions *SessionService
	logger   *slog.Logger
}

// NewAccountService constructs an AccountService. Client and Sessions are required.
func NewAccountService(opts AccountServiceOptions) *AccountService {
	if opts.Client == nil {
		panic("service: AccountServiceOptions.Client is required")
	}
	if opts.Sessions == nil {
		panic("service: AccountServiceOptions.Sessions is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &AccountService{client: opts.Client, sessions: opts.Sessions, logger: logger}
}

// Login authenticates against the backend. On success the returned cookies must be
// relayed to the browser; they are also stored on the session.
func (a *AccountService) Login(
	ctx context.Context,
	sessionID string,
	creds domainauth.Credentials,
	in ports.LoginInput,
) (ports.AccountResult, error) {
	if _, err := a.sessions.Dispatch(ctx, sessionID, domainauth.LoginPending()); err != nil {
		return ports.AccountResult{}, err
	}

	res, err := a.client.Login(ctx, creds, in)
	if err != nil {
		a.reject(ctx, sessionID, domainauth.LoginRejected(apperrors.PublicMessage(err, LoginFailedMessage)))
		return ports.AccountResult{}, err
	}

	if _, err := a.sessions.Authenticate(ctx, sessionID, domainauth.LoginFulfilled(res.User), res.Credentials()); err != nil {
		return ports.AccountResult{}, err
	}
	a.logger.InfoContext(ctx, "visitor logged in", "session", shortSessionID(sessionID), "user_id", res.User.ID)
	return res, nil
}

// Signup registers a new account and signs the visitor in.
func (a *AccountService) Signup(
	ctx context.Context,
	sessionID string,
	creds domainauth.Credentials,
	in ports.SignupInput,
) (ports.AccountResult, error) {
	if _, err := a.sessions.Dispatch(ctx, sessionID, domainauth.SignupPending()); err != nil {
		return ports.AccountResult{}, err
	}

	res, err := a.client.Register(ctx, creds, in)
	if err != nil {
		a.reject(ctx, sessionID, domainauth.SignupRejected(apperrors.PublicMessage(err, SignupFailedMessage)))
		return ports.AccountResult{}, err
	}

	if _, err := a.sessions.Authenticate(ctx, sessionID, domainauth.SignupFulfilled(res.User), res.Credentials()); err != nil {
		return ports.AccountResult{}, err
	}
	a.logger.InfoContext(ctx, "visitor signed up", "session", shortSessionID(sessionID), "user_id", res.User.ID)
	return res, nil
}

// ForgotPassword asks the backend to mail a reset link. It does not touch the session.
func (a *AccountService) ForgotPassword(ctx context.Context, creds domainauth.Credentials, email string) error {
	if email == "" {
		return apperrors.ValidationField("email", "Email is required")
	}
	return a.client.ForgotPassword(ctx, creds, email)
}

// ResetPassword sets a new password using the emailed token.
func (a *AccountService) ResetPassword(ctx context.Context, creds domainauth.Credentials, token, password string) error {
	return a.client.ResetPassword(ctx, creds, token, password)
}

// Logout clears the session locally; the backend is not called. It returns the
// credentials that were held so the caller can expire them on the browser.
func (a *AccountService) Logout(ctx context.Context, sessionID string) (domainauth.Credentials, error) {
	held, err := a.sessions.Logout(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	a.logger.InfoContext(ctx, "visitor logged out", "session", shortSessionID(sessionID))
	return held, nil
}

func (a *AccountService) reject(ctx context.Context, sessionID string, action domainauth.Action) {
	if _, err := a.sessions.Dispatch(ctx, sessionID, action); err != nil {
		a.logger.WarnContext(ctx, "commit account rejection", "session", shortSessionID(sessionID), "error", err)
	}
}
