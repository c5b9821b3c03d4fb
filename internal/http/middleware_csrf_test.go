package httpx

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("success"))
	})
}

func csrfCookie(t *testing.T, rec *httptest.ResponseRecorder, name string) *http.Cookie {
	t.Helper()
	resp := rec.Result()
	t.Cleanup(func() { _ = resp.Body.Close() })
	for _, c := range resp.Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// issueCSRFToken performs a GET through handler and returns the token it set.
func issueCSRFToken(t *testing.T, handler http.Handler) string {
	t.Helper()
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/test", nil))
	c := csrfCookie(t, rec, DefaultCSRFCookieName)
	require.NotNil(t, c, "CSRF cookie not set")
	require.NotEmpty(t, c.Value)
	return c.Value
}

func TestCSRFProtection_SafeMethodsExempt(t *testing.T) {
	handler := CSRFProtection(CSRFConfig{})(okHandler())

	for _, method := range []string{http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace} {
		t.Run(method, func(t *testing.T) {
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest(method, "/test", nil))
			assert.Equal(t, http.StatusOK, rec.Code)
		})
	}
}

func TestCSRFProtection_PostValidation(t *testing.T) {
	handler := CSRFProtection(CSRFConfig{})(okHandler())
	token := issueCSRFToken(t, handler)

	formBody := func(tok string) *strings.Reader {
		return strings.NewReader(url.Values{DefaultCSRFCookieName: {tok}, "name": {"x"}}.Encode())
	}

	tests := []struct {
		name   string
		build  func() *http.Request
		status int
	}{
		{
			name:   "no token",
			build:  func() *http.Request { return httptest.NewRequest(http.MethodPost, "/test", nil) },
			status: http.StatusForbidden,
		},
		{
			name: "header token",
			build: func() *http.Request {
				r := httptest.NewRequest(http.MethodPost, "/test", nil)
				r.AddCookie(&http.Cookie{Name: DefaultCSRFCookieName, Value: token})
				r.Header.Set(DefaultCSRFHeaderName, token)
				return r
			},
			status: http.StatusOK,
		},
		{
			name: "form token",
			build: func() *http.Request {
				r := httptest.NewRequest(http.MethodPost, "/test", formBody(token))
				r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
				r.AddCookie(&http.Cookie{Name: DefaultCSRFCookieName, Value: token})
				return r
			},
			status: http.StatusOK,
		},
		{
			name: "mismatched header",
			build: func() *http.Request {
				r := httptest.NewRequest(http.MethodPost, "/test", nil)
				r.AddCookie(&http.Cookie{Name: DefaultCSRFCookieName, Value: token})
				r.Header.Set(DefaultCSRFHeaderName, "not-the-token")
				return r
			},
			status: http.StatusForbidden,
		},
		{
			name: "json body without header",
			build: func() *http.Request {
				r := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(`{"csrf_token":"`+token+`"}`))
				r.Header.Set("Content-Type", "application/json")
				r.AddCookie(&http.Cookie{Name: DefaultCSRFCookieName, Value: token})
				return r
			},
			status: http.StatusForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, tt.build())
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}

func TestCSRFProtection_TokenInContext(t *testing.T) {
	var captured string
	handler := CSRFProtection(CSRFConfig{})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = GetCSRFToken(r)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/test", nil))

	c := csrfCookie(t, rec, DefaultCSRFCookieName)
	require.NotNil(t, c)
	assert.Equal(t, c.Value, captured)
}

func TestCSRFProtection_CookieAttributes(t *testing.T) {
	tests := []struct {
		name   string
		cfg    CSRFConfig
		target string
		proto  string
	}{
		{name: "tls", target: "https://example.com/test"},
		{name: "forwarded proto", target: "http://example.com/test", proto: "http, https"},
		{name: "configured secure", target: "http://example.com/test", cfg: CSRFConfig{Secure: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.cfg.CookieDomain = "example.com"
			handler := CSRFProtection(tt.cfg)(okHandler())

			req := httptest.NewRequest(http.MethodGet, tt.target, nil)
			if tt.proto != "" {
				req.Header.Set("X-Forwarded-Proto", tt.proto)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			c := csrfCookie(t, rec, DefaultCSRFCookieName)
			require.NotNil(t, c)
			assert.True(t, c.Secure)
			assert.Equal(t, http.SameSiteStrictMode, c.SameSite)
			assert.False(t, c.HttpOnly, "htmx must be able to read the token")
			assert.Equal(t, "example.com", c.Domain)
			assert.Equal(t, "/", c.Path)
		})
	}
}

func TestCSRFProtection_CookieNotReissued(t *testing.T) {
	handler := CSRFProtection(CSRFConfig{})(okHandler())
	token := issueCSRFToken(t, handler)

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.AddCookie(&http.Cookie{Name: DefaultCSRFCookieName, Value: token})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Empty(t, rec.Header().Values("Set-Cookie"))
}

func TestCSRFProtection_OnFailure(t *testing.T) {
	called := false
	handler := CSRFProtection(CSRFConfig{
		OnFailure: func(w http.ResponseWriter, _ *http.Request) {
			called = true
			w.WriteHeader(http.StatusTeapot)
		},
	})(okHandler())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/test", nil))

	assert.True(t, called)
	assert.Equal(t, http.StatusTeapot, rec.Code)
}

func TestGetCSRFToken_NoToken(t *testing.T) {
	assert.Empty(t, GetCSRFToken(httptest.NewRequest(http.MethodGet, "/test", nil)))
}
