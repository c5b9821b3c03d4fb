package httpx

import (
	"bytes"
	"net/http"

	apperrors "github.com/target/storefront-web/internal/errors"
)

const notFoundMessage = "Oops! The page you are looking for does not exist."

// NotFound handles 404 errors.
// For browser requests, it renders an HTML error page.
// For API requests, it returns a JSON error response.
func (h *UIHandlers) NotFound(w http.ResponseWriter, r *http.Request) {
	if IsBrowserRequest(r) {
		h.renderErrorPage(w, r, http.StatusNotFound, notFoundMessage)
		return
	}
	WriteError(w, apperrors.NotFound("not found"))
}

// renderErrorPage renders the standalone error layout with status.
func (h *UIHandlers) renderErrorPage(w http.ResponseWriter, r *http.Request, status int, message string) {
	data := map[string]any{
		"Title":           pageTitle(http.StatusText(status)),
		"Code":            status,
		"Message":         message,
		"IsAuthenticated": CurrentUser(r.Context()) != nil,
	}

	if h.T == nil {
		http.Error(w, message, status)
		return
	}

	// Buffer so a template failure can still fall back to plain text.
	var buf bytes.Buffer
	rec := &bufferedWriter{header: w.Header(), buf: &buf}
	if err := h.T.RenderError(rec, r, data); err != nil {
		http.Error(w, message, status)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		h.logger().Error("failed to write error page", "error", err)
	}
}

// bufferedWriter collects a body while sharing the real header map.
type bufferedWriter struct {
	header http.Header
	buf    *bytes.Buffer
}

func (b *bufferedWriter) Header() http.Header         { return b.header }
func (b *bufferedWriter) Write(p []byte) (int, error) { return b.buf.Write(p) }
func (b *bufferedWriter) WriteHeader(int)             {}
