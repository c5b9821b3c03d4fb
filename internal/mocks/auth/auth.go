package auth

// Package auth contains simple hand-written test doubles for session ports.
// These are lightweight and suitable for unit tests without codegen.

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	domainauth "github.com/target/storefront-web/internal/domain/auth"
	"github.com/target/storefront-web/internal/ports"
)

// Ensure compile-time conformance to ports.
var (
	_ ports.SessionFetcher = (*MockSessionFetcher)(nil)
	_ ports.SessionStore   = (*MemorySessionStore)(nil)
	_ ports.AccountClient  = (*MockAccountClient)(nil)
)

// MockSessionFetcher answers current-user lookups from fixed values.
// When Release is non-nil every call blocks until it is closed or ctx is done.
type MockSessionFetcher struct {
	FetchFunc func(ctx context.Context, creds domainauth.Credentials) (domainauth.User, error)

	User    domainauth.User
	Err     error
	Release chan struct{}

	// Started receives one value per call once the call begins, when non-nil.
	Started chan struct{}

	calls atomic.Int64
}

// NewMockSessionFetcher returns a fetcher that resolves to user.
func NewMockSessionFetcher(user domainauth.User) *MockSessionFetcher {
	return &MockSessionFetcher{User: user}
}

// NewRejectingSessionFetcher returns a fetcher that always rejects.
func NewRejectingSessionFetcher() *MockSessionFetcher {
	return &MockSessionFetcher{Err: domainauth.ErrUnauthenticated}
}

func (m *MockSessionFetcher) FetchCurrentUser(
	ctx context.Context,
	creds domainauth.Credentials,
) (domainauth.User, error) {
	m.calls.Add(1)
	if m.Started != nil {
		m.Started <- struct{}{}
	}
	if m.Release != nil {
		select {
		case <-m.Release:
		case <-ctx.Done():
			return domainauth.User{}, errors.Join(domainauth.ErrUnauthenticated, ctx.Err())
		}
	}
	if m.FetchFunc != nil {
		return m.FetchFunc(ctx, creds)
	}
	if m.Err != nil {
		return domainauth.User{}, m.Err
	}
	return m.User, nil
}

// Calls reports how many fetches have started.
func (m *MockSessionFetcher) Calls() int { return int(m.calls.Load()) }

// MemorySessionStore is an in-memory session store for unit tests.
type MemorySessionStore struct {
	mu       sync.Mutex
	sessions map[string]domainauth.Session
	saves    int
}

// NewMemorySessionStore creates a new in-memory session store.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{
		sessions: make(map[string]domainauth.Session),
	}
}

func (m *MemorySessionStore) Save(_ context.Context, sess domainauth.Session) error {
	if sess.ID == "" {
		return errors.New("session ID cannot be empty")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[sess.ID] = sess
	m.saves++
	return nil
}

func (m *MemorySessionStore) Get(_ context.Context, id string) (domainauth.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.sessions[id]
	if !ok {
		return domainauth.Session{}, ports.ErrSessionNotFound
	}
	return sess, nil
}

func (m *MemorySessionStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

// Saves reports how many writes the store has accepted.
func (m *MemorySessionStore) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

// MockAccountClient is a func-field double for the backend account endpoints.
type MockAccountClient struct {
	LoginFunc          func(ctx context.Context, creds domainauth.Credentials, in ports.LoginInput) (ports.AccountResult, error)
	RegisterFunc       func(ctx context.Context, creds domainauth.Credentials, in ports.SignupInput) (ports.AccountResult, error)
	ForgotPasswordFunc func(ctx context.Context, creds domainauth.Credentials, email string) error
	ResetPasswordFunc  func(ctx context.Context, creds domainauth.Credentials, token, password string) error
}

func (m *MockAccountClient) Login(
	ctx context.Context,
	creds domainauth.Credentials,
	in ports.LoginInput,
) (ports.AccountResult, error) {
	if m.LoginFunc != nil {
		return m.LoginFunc(ctx, creds, in)
	}
	return ports.AccountResult{User: domainauth.User{ID: "mock-user-1", Name: in.Name}}, nil
}

func (m *MockAccountClient) Register(
	ctx context.Context,
	creds domainauth.Credentials,
	in ports.SignupInput,
) (ports.AccountResult, error) {
	if m.RegisterFunc != nil {
		return m.RegisterFunc(ctx, creds, in)
	}
	return ports.AccountResult{User: domainauth.User{ID: "mock-user-1", Name: in.Name, Email: in.Email}}, nil
}

func (m *MockAccountClient) ForgotPassword(ctx context.Context, creds domainauth.Credentials, email string) error {
	if m.ForgotPasswordFunc != nil {
		return m.ForgotPasswordFunc(ctx, creds, email)
	}
	return nil
}

func (m *MockAccountClient) ResetPassword(
	ctx context.Context,
	creds domainauth.Credentials,
	token, password string,
) error {
	if m.ResetPasswordFunc != nil {
		return m.ResetPasswordFunc(ctx, creds, token, password)
	}
	return nil
}
