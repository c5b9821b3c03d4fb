package httpx

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/target/storefront-web/internal/errors"
)

func TestProcessError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		fallback    string
		expected    string
		fieldErrors map[string]string
	}{
		{name: "nil", err: nil, expected: ""},
		{name: "deadline", err: fmt.Errorf("call: %w", context.DeadlineExceeded), expected: "Request timed out. Please try again."},
		{name: "canceled", err: context.Canceled, expected: "Request was canceled."},
		{name: "upstream message passes", err: apperrors.Upstream("Email already registered"), fallback: "Signup failed", expected: "Email already registered"},
		{name: "internal uses fallback", err: apperrors.Internal("db exploded"), fallback: "Signup failed", expected: "Signup failed"},
		{name: "plain error default fallback", err: errors.New("boom"), expected: "An error occurred. Please try again."},
		{
			name:        "field validation moves to field",
			err:         apperrors.ValidationField("email", "Email is taken"),
			expected:    errMsgFixBelow,
			fieldErrors: map[string]string{"email": "Email is taken"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var fieldErrors map[string]string
			got := processError(tt.err, tt.fallback, &fieldErrors)
			assert.Equal(t, tt.expected, got)
			assert.Equal(t, tt.fieldErrors, fieldErrors)
		})
	}
}

func TestRenderError(t *testing.T) {
	t.Run("message overrides the error and toasts for htmx", func(t *testing.T) {
		h := CreateUIHandlersForTest(t)
		req := asHTMX(postForm("/forgot-password", url.Values{}))
		rec := httptest.NewRecorder()

		h.RenderError(ErrorOpts{
			W: rec, R: anonymous(req),
			Err:       apperrors.Upstream("raw backend text"),
			Message:   "Something friendlier",
			PageMeta:  forgotMeta,
			ShowToast: true,
		})

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "Something friendlier")
		assert.NotContains(t, rec.Body.String(), "raw backend text")
		assert.Contains(t, rec.Header().Get("HX-Trigger"), "Something friendlier")
	})

	t.Run("field errors only get the summary message", func(t *testing.T) {
		h := CreateUIHandlersForTest(t)
		rec := httptest.NewRecorder()

		h.RenderError(ErrorOpts{
			W: rec, R: anonymous(getPage("/signup")),
			FieldErrors: map[string]string{"email": "Please enter a valid email address"},
			PageMeta:    signupMeta,
			Data:        map[string]any{"Form": map[string]string{"email": "nope"}},
			StatusCode:  http.StatusUnprocessableEntity,
		})

		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		body := rec.Body.String()
		assert.True(t, ContainsAll(body, []string{errMsgFixBelow, "Please enter a valid email address", `value="nope"`}), body)
	})
}

func TestTemplateDataBuilder(t *testing.T) {
	h := &UIHandlers{}
	req := signedIn(httptest.NewRequest(http.MethodGet, "/cart", nil))

	data := h.NewTemplateData(httptest.NewRecorder(), req, PageMeta{Title: "Cart", PageTitle: "Your Cart", CurrentPage: PageCart}).
		WithError("nope").
		WithFieldErrors(nil).
		WithForm(map[string]string{"name": "Ada"}).
		With("HasCart", true).
		Build()

	assert.Equal(t, "Cart - Storefront", data["Title"])
	assert.Equal(t, PageCart, data["CurrentPage"])
	assert.Equal(t, true, data["IsAuthenticated"])
	assert.Equal(t, true, data["Error"])
	assert.Equal(t, "nope", data["ErrorMessage"])
	assert.Equal(t, map[string]string{"name": "Ada"}, data["Form"])
	assert.Equal(t, true, data["HasCart"])
	assert.NotContains(t, data, "Errors")
}
