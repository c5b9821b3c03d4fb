package httpx

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/target/storefront-web/internal/domain/auth"
	mockauth "github.com/target/storefront-web/internal/mocks/auth"
	"github.com/target/storefront-web/internal/service"
)

type recordingObserver struct {
	mu        sync.Mutex
	decisions []string
}

func (o *recordingObserver) ObserveGateDecision(gate, decision string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.decisions = append(o.decisions, gate+":"+decision)
}

func (o *recordingObserver) all() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]string(nil), o.decisions...)
}

type failingSessionStore struct{ err error }

func (f failingSessionStore) Save(context.Context, domainauth.Session) error { return f.err }
func (f failingSessionStore) Get(context.Context, string) (domainauth.Session, error) {
	return domainauth.Session{}, f.err
}
func (f failingSessionStore) Delete(context.Context, string) error { return f.err }

type sessionFixture struct {
	svc   *service.SessionService
	store *mockauth.MemorySessionStore
}

func newSessionFixture(t *testing.T, fetcher *mockauth.MockSessionFetcher) sessionFixture {
	t.Helper()
	store := mockauth.NewMemorySessionStore()
	svc := service.NewSessionService(service.SessionServiceOptions{
		Store:   store,
		Fetcher: fetcher,
		Dedup:   true,
	})
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = svc.Wait(ctx)
	})
	return sessionFixture{svc: svc, store: store}
}

func (f sessionFixture) seed(t *testing.T, id string, state domainauth.State) *http.Cookie {
	t.Helper()
	require.NoError(t, f.store.Save(context.Background(), domainauth.Session{ID: id, State: state}))
	return &http.Cookie{Name: DefaultSessionCookieName, Value: id}
}

func (f sessionFixture) chain(gateFn func(GateConfig) func(http.Handler) http.Handler, cfg GateConfig, next http.Handler) http.Handler {
	cfg.Sessions = f.svc
	return SessionContext(SessionConfig{Sessions: f.svc})(gateFn(cfg)(next))
}

func visitRecorder(seen **Visit) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		v, _ := VisitFromContext(r.Context())
		*seen = v
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("children"))
	})
}

func TestSessionContext(t *testing.T) {
	t.Run("starts a session on first contact", func(t *testing.T) {
		f := newSessionFixture(t, mockauth.NewRejectingSessionFetcher())
		var seen *Visit
		h := SessionContext(SessionConfig{Sessions: f.svc})(visitRecorder(&seen))

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		require.NotNil(t, seen)
		assert.NotEmpty(t, seen.Session.ID)
		assert.True(t, seen.Session.State.IsLoadingUser)
		cookies := rec.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.Equal(t, DefaultSessionCookieName, cookies[0].Name)
		assert.Equal(t, seen.Session.ID, cookies[0].Value)
		assert.True(t, cookies[0].HttpOnly)
	})

	t.Run("reuses a known session without resetting the cookie", func(t *testing.T) {
		f := newSessionFixture(t, mockauth.NewRejectingSessionFetcher())
		cookie := f.seed(t, "known", domainauth.State{})
		var seen *Visit
		h := SessionContext(SessionConfig{Sessions: f.svc})(visitRecorder(&seen))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(cookie)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		require.NotNil(t, seen)
		assert.Equal(t, "known", seen.Session.ID)
		assert.Empty(t, rec.Result().Cookies())
	})

	t.Run("merges browser credentials over stored ones", func(t *testing.T) {
		f := newSessionFixture(t, mockauth.NewRejectingSessionFetcher())
		require.NoError(t, f.store.Save(context.Background(), domainauth.Session{
			ID:          "creds",
			Credentials: domainauth.Credentials{{Name: "token", Value: "stored"}},
		}))
		var seen *Visit
		h := SessionContext(SessionConfig{
			Sessions: f.svc,
			Cookies:  CookieConfig{CredentialNames: []string{"token"}},
		})(visitRecorder(&seen))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: DefaultSessionCookieName, Value: "creds"})
		req.AddCookie(&http.Cookie{Name: "token", Value: "fresh"})
		req.AddCookie(&http.Cookie{Name: "other", Value: "ignored"})
		h.ServeHTTP(httptest.NewRecorder(), req)

		require.NotNil(t, seen)
		assert.Equal(t, domainauth.Credentials{{Name: "token", Value: "fresh"}}, seen.Credentials)
	})

	t.Run("store outage answers 503", func(t *testing.T) {
		svc := service.NewSessionService(service.SessionServiceOptions{
			Store:   failingSessionStore{err: errors.New("redis down")},
			Fetcher: mockauth.NewRejectingSessionFetcher(),
		})
		called := false
		h := SessionContext(SessionConfig{Sessions: svc})(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
			called = true
		}))

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.False(t, called)
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})
}

func TestProtectedGate(t *testing.T) {
	t.Run("renders once the fetch finds a user", func(t *testing.T) {
		f := newSessionFixture(t, mockauth.NewMockSessionFetcher(domainauth.User{ID: "u1", Name: "Ada"}))
		obs := &recordingObserver{}
		var seen *Visit
		h := f.chain(Protected, GateConfig{Wait: 2 * time.Second, Observer: obs}, visitRecorder(&seen))

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/cart", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, seen)
		require.NotNil(t, seen.Session.State.User)
		assert.Equal(t, "u1", seen.Session.State.User.ID)
		assert.False(t, seen.Session.State.IsLoadingUser)
		assert.Equal(t, []string{"protected:render"}, obs.all())
	})

	t.Run("redirects anonymous visitors to login with from", func(t *testing.T) {
		f := newSessionFixture(t, mockauth.NewRejectingSessionFetcher())
		var seen *Visit
		h := f.chain(Protected, GateConfig{Wait: 2 * time.Second}, visitRecorder(&seen))

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/cart", nil))

		assert.Nil(t, seen)
		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/login?from=%2Fcart", rec.Header().Get("Location"))
	})

	t.Run("htmx redirects use HX-Redirect", func(t *testing.T) {
		f := newSessionFixture(t, mockauth.NewRejectingSessionFetcher())
		cookie := f.seed(t, "anon", domainauth.State{})
		var seen *Visit
		h := f.chain(Protected, GateConfig{}, visitRecorder(&seen))

		req := httptest.NewRequest(http.MethodGet, "/checkout?cart_id=c1", nil)
		req.Header.Set("HX-Request", "true")
		req.AddCookie(cookie)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Nil(t, seen)
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, "/login?from=%2Fcheckout%3Fcart_id%3Dc1", rec.Header().Get("HX-Redirect"))
	})

	t.Run("shows the placeholder while the fetch is in flight", func(t *testing.T) {
		fetcher := mockauth.NewMockSessionFetcher(domainauth.User{ID: "u1"})
		fetcher.Release = make(chan struct{})
		f := newSessionFixture(t, fetcher)
		obs := &recordingObserver{}
		var seen *Visit
		placeholder := func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("loading"))
		}
		h := f.chain(Protected, GateConfig{Wait: 10 * time.Millisecond, Placeholder: placeholder, Observer: obs}, visitRecorder(&seen))

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/cart", nil))
		close(fetcher.Release)

		assert.Nil(t, seen)
		assert.Equal(t, "loading", rec.Body.String())
		assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
		assert.Equal(t, []string{"protected:placeholder"}, obs.all())
	})

	t.Run("settled anonymous visitor without credentials skips the backend", func(t *testing.T) {
		fetcher := mockauth.NewRejectingSessionFetcher()
		f := newSessionFixture(t, fetcher)
		cookie := f.seed(t, "settled", domainauth.State{})
		var seen *Visit
		h := f.chain(Protected, GateConfig{Wait: time.Second}, visitRecorder(&seen))

		req := httptest.NewRequest(http.MethodGet, "/cart", nil)
		req.AddCookie(cookie)
		h.ServeHTTP(httptest.NewRecorder(), req)

		assert.Zero(t, fetcher.Calls())
	})

	t.Run("fails closed without the session middleware", func(t *testing.T) {
		f := newSessionFixture(t, mockauth.NewRejectingSessionFetcher())
		var seen *Visit
		h := Protected(GateConfig{Sessions: f.svc})(visitRecorder(&seen))

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/cart", nil))

		assert.Nil(t, seen)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}

func TestPublicGate(t *testing.T) {
	public := func(cfg GateConfig) func(http.Handler) http.Handler { return Public(cfg, "/") }

	t.Run("renders for anonymous visitors", func(t *testing.T) {
		f := newSessionFixture(t, mockauth.NewRejectingSessionFetcher())
		var seen *Visit
		h := f.chain(public, GateConfig{Wait: 2 * time.Second}, visitRecorder(&seen))

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/login", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, seen)
		assert.Nil(t, seen.Session.State.User)
	})

	tests := []struct {
		name     string
		target   string
		expected string
	}{
		{name: "carried from", target: "/login?from=%2Fcart", expected: "/cart"},
		{name: "no from", target: "/login", expected: "/"},
		{name: "unsafe from", target: "/login?from=%2F%2Fevil.example", expected: "/"},
	}
	for _, tt := range tests {
		t.Run("redirects signed-in visitors: "+tt.name, func(t *testing.T) {
			f := newSessionFixture(t, mockauth.NewRejectingSessionFetcher())
			cookie := f.seed(t, "signed-in", domainauth.State{User: &domainauth.User{ID: "u1"}})
			var seen *Visit
			h := f.chain(public, GateConfig{}, visitRecorder(&seen))

			req := httptest.NewRequest(http.MethodGet, tt.target, nil)
			req.AddCookie(cookie)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Nil(t, seen)
			assert.Equal(t, http.StatusSeeOther, rec.Code)
			assert.Equal(t, tt.expected, rec.Header().Get("Location"))
		})
	}
}

func TestSettle(t *testing.T) {
	t.Run("passes the settled state to children", func(t *testing.T) {
		f := newSessionFixture(t, mockauth.NewMockSessionFetcher(domainauth.User{ID: "u1"}))
		var seen *Visit
		h := f.chain(Settle, GateConfig{Wait: 2 * time.Second}, visitRecorder(&seen))

		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/auth/status", nil))

		require.NotNil(t, seen)
		require.NotNil(t, seen.Session.State.User)
		assert.Equal(t, domainauth.PhaseAuthenticated, seen.Session.State.Phase())
	})

	t.Run("renders the loading state instead of blocking", func(t *testing.T) {
		fetcher := mockauth.NewRejectingSessionFetcher()
		fetcher.Release = make(chan struct{})
		f := newSessionFixture(t, fetcher)
		var seen *Visit
		h := f.chain(Settle, GateConfig{Wait: 10 * time.Millisecond}, visitRecorder(&seen))

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/auth/status", nil))
		close(fetcher.Release)

		assert.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, seen)
		assert.Equal(t, domainauth.PhaseLoading, seen.Session.State.Phase())
	})

	t.Run("passes through without a visit", func(t *testing.T) {
		called := false
		h := Settle(GateConfig{})(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { called = true }))
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
		assert.True(t, called)
	})
}

func TestLoginURL(t *testing.T) {
	assert.Equal(t, LoginPath, loginURL(""))
	assert.Equal(t, LoginPath, loginURL("/"))
	assert.Equal(t, "/login?from=%2Fproducts%2Fp1", loginURL("/products/p1"))
}
