package httpx

import (
	"net/http"
)

// ToastEvent is the client-side event app.js listens for.
const ToastEvent = "showToast"

// Toast types understood by the stylesheet.
const (
	ToastSuccess = "success"
	ToastError   = "error"
	ToastInfo    = "info"
)

// HTMXResponse provides a fluent API for building HTMX responses.
type HTMXResponse struct {
	w http.ResponseWriter
}

// HTMX creates a new HTMXResponse for fluent response building.
func HTMX(w http.ResponseWriter) *HTMXResponse {
	return &HTMXResponse{w: w}
}

// Redirect instructs htmx to redirect the browser to the given URL.
// It sets the HX-Redirect header and returns a 204 No Content status.
// The handler should return immediately after calling this method.
func (h *HTMXResponse) Redirect(url string) {
	SetHXRedirect(h.w, url)
	h.w.WriteHeader(http.StatusNoContent)
}

// Trigger triggers a client-side event after swap with optional payload.
func (h *HTMXResponse) Trigger(event string, payload any) *HTMXResponse {
	SetHXTrigger(h.w, event, payload)
	return h
}

// Toast asks the page to show a toast once the swap settles.
func (h *HTMXResponse) Toast(message, kind string) *HTMXResponse {
	return h.Trigger(ToastEvent, Flash{Message: message, Type: kind})
}

// PushURL pushes the given URL into the browser history for the new content.
func (h *HTMXResponse) PushURL(url string) *HTMXResponse {
	SetHXPushURL(h.w, url)
	return h
}
