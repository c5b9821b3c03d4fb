package backend

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	domainauth "github.com/target/storefront-web/internal/domain/auth"
	apperrors "github.com/target/storefront-web/internal/errors"
)

type recordedRequest struct {
	Method string
	Path   string
	Body   string
	Token  string
}

type fakeBackend struct {
	t        *testing.T
	srv      *httptest.Server
	mu       sync.Mutex
	requests []recordedRequest
	hits     atomic.Int32
}

func newFakeBackend(t *testing.T, handler http.HandlerFunc) *fakeBackend {
	t.Helper()
	fb := &fakeBackend{t: t}
	fb.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fb.hits.Add(1)
		body, _ := io.ReadAll(r.Body)
		rec := recordedRequest{Method: r.Method, Path: r.URL.EscapedPath(), Body: string(body)}
		if c, err := r.Cookie("token"); err == nil {
			rec.Token = c.Value
		}
		fb.mu.Lock()
		fb.requests = append(fb.requests, rec)
		fb.mu.Unlock()
		handler(w, r)
	}))
	t.Cleanup(fb.srv.Close)
	return fb
}

func (fb *fakeBackend) client(opts ...func(*Options)) *Client {
	fb.t.Helper()
	o := Options{BaseURL: fb.srv.URL + "/api/v1"}
	for _, fn := range opts {
		fn(&o)
	}
	c, err := New(o)
	require.NoError(fb.t, err)
	return c
}

func (fb *fakeBackend) last() recordedRequest {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	require.NotEmpty(fb.t, fb.requests)
	return fb.requests[len(fb.requests)-1]
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

var tokenCreds = domainauth.Credentials{{Name: "token", Value: "abc"}}

func TestNew_Validation(t *testing.T) {
	_, err := New(Options{BaseURL: "/relative"})
	require.Error(t, err)

	_, err = New(Options{BaseURL: "http://x", Paths: UserPaths{Current: "data[["}})
	require.Error(t, err)

	c, err := New(Options{})
	require.NoError(t, err)
	assert.Equal(t, DefaultBaseURL, c.base.String())
}

func TestFetchCurrentUser_Success(t *testing.T) {
	fb := newFakeBackend(t, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, `{"data":{"_id":"u1","email":"a@b.com","name":"A"}}`)
	})

	user, err := fb.client().FetchCurrentUser(context.Background(), tokenCreds)
	require.NoError(t, err)
	assert.Equal(t, domainauth.User{ID: "u1", Email: "a@b.com", Name: "A"}, user)

	req := fb.last()
	assert.Equal(t, http.MethodGet, req.Method)
	assert.Equal(t, "/api/v1/users/get-user", req.Path)
	assert.Empty(t, req.Body)
	assert.Equal(t, "abc", req.Token)
	assert.EqualValues(t, 1, fb.hits.Load())
}

func TestFetchCurrentUser_AllFailuresCollapse(t *testing.T) {
	cases := map[string]http.HandlerFunc{
		"unauthorized": func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusUnauthorized, `{"message":"no token"}`)
		},
		"server error": func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusInternalServerError, `oops`)
		},
		"malformed json": func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, `{"data":`)
		},
		"missing user": func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, `{"data":null}`)
		},
		"user not an object": func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, `{"data":"u1"}`)
		},
	}

	for name, handler := range cases {
		t.Run(name, func(t *testing.T) {
			fb := newFakeBackend(t, handler)
			_, err := fb.client().FetchCurrentUser(context.Background(), nil)
			require.ErrorIs(t, err, domainauth.ErrUnauthenticated)
			assert.EqualValues(t, 1, fb.hits.Load(), "no retry")
		})
	}

	t.Run("transport error", func(t *testing.T) {
		fb := newFakeBackend(t, func(http.ResponseWriter, *http.Request) {})
		c := fb.client()
		fb.srv.Close()
		_, err := c.FetchCurrentUser(context.Background(), nil)
		require.ErrorIs(t, err, domainauth.ErrUnauthenticated)
	})
}

func TestFetchCurrentUser_CustomPath(t *testing.T) {
	fb := newFakeBackend(t, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, `{"result":{"profile":{"id":"u9","email":"z@z.io"}}}`)
	})
	c := fb.client(func(o *Options) { o.Paths.Current = "result.profile" })

	user, err := c.FetchCurrentUser(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "u9", user.ID)
	assert.Equal(t, "z@z.io", user.DisplayName())
}

func TestClient_TimeoutApplies(t *testing.T) {
	release := make(chan struct{})
	fb := newFakeBackend(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	t.Cleanup(func() { close(release) })

	c := fb.client(func(o *Options) { o.Timeout = 50 * time.Millisecond })
	_, err := c.FetchCurrentUser(context.Background(), nil)
	require.ErrorIs(t, err, domainauth.ErrUnauthenticated)
}

type observedCall struct {
	op     string
	status int
	err    error
}

type recordingObserver struct {
	mu    sync.Mutex
	calls []observedCall
}

func (o *recordingObserver) ObserveBackendCall(op string, status int, _ time.Duration, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.calls = append(o.calls, observedCall{op: op, status: status, err: err})
}

func TestClient_ObserverSeesEveryCall(t *testing.T) {
	fb := newFakeBackend(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/v1/users/get-user" {
			writeJSON(w, http.StatusUnauthorized, `{}`)
			return
		}
		writeJSON(w, http.StatusOK, `{"data":[]}`)
	})
	obs := &recordingObserver{}
	c := fb.client(func(o *Options) { o.Observer = obs })

	_, _ = c.FetchCurrentUser(context.Background(), nil)
	_, err := c.ListProducts(context.Background(), nil)
	require.NoError(t, err)

	require.Len(t, obs.calls, 2)
	assert.Equal(t, observedCall{op: "get-user", status: http.StatusUnauthorized}, obs.calls[0])
	assert.Equal(t, observedCall{op: "get-products", status: http.StatusOK}, obs.calls[1])
}

func TestFailure_UsesBackendMessage(t *testing.T) {
	err := failure("login", &response{status: http.StatusBadRequest, body: []byte(`{"message":" Invalid credentials "}`)})
	assert.True(t, apperrors.IsValidation(err))
	assert.Equal(t, "Invalid credentials", apperrors.PublicMessage(err, "Login failed"))

	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusBadRequest, se.Status)
}

func decodeBody(t *testing.T, raw string) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal([]byte(raw), &m))
	return m
}
