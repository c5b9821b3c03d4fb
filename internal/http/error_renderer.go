package httpx

import (
	"context"
	"errors"
	"net/http"

	apperrors "github.com/target/storefront-web/internal/errors"
)

const errMsgFixBelow = "Please fix the errors below."

// ErrorOpts contains all options needed to re-render a page after a failed action.
type ErrorOpts struct {
	// W is the HTTP response writer
	W http.ResponseWriter
	// R is the HTTP request
	R *http.Request
	// Err is the error that occurred (optional, can be nil if only field errors)
	Err error
	// FieldErrors contains field-level validation errors (field name → error message)
	FieldErrors map[string]string
	// Fallback is shown when Err carries no message a visitor may see.
	Fallback string
	// Message, when set, replaces whatever general message Err would produce.
	Message string
	// PageMeta contains page metadata (title, current page, etc.)
	PageMeta PageMeta
	// Data contains additional template data, such as echoed form values.
	Data map[string]any
	// StatusCode is the HTTP status code to set (optional, defaults to 200 for htmx compatibility)
	StatusCode int
	// ShowToast also shows the general message as a toast.
	ShowToast bool
}

// RenderError re-renders the page in opts with field errors and a general message.
// Backend validation errors naming a field are attached to that field.
func (h *UIHandlers) RenderError(opts ErrorOpts) {
	builder := h.NewTemplateData(opts.W, opts.R, opts.PageMeta)

	generalError := processError(opts.Err, opts.Fallback, &opts.FieldErrors)
	if opts.Message != "" {
		generalError = opts.Message
	}
	builder.WithFieldErrors(opts.FieldErrors)

	if generalError != "" {
		builder.WithError(generalError)
	} else if len(opts.FieldErrors) > 0 {
		builder.WithError(errMsgFixBelow)
	}

	for k, v := range opts.Data {
		builder.With(k, v)
	}
	data := builder.Build()

	if opts.ShowToast && generalError != "" {
		h.toast(opts.W, opts.R, data, generalError, ToastError)
	}

	status := opts.StatusCode
	if status == 0 {
		status = http.StatusOK
	}
	h.renderPageStatus(opts.W, opts.R, data, status)
}

// processError returns the visitor-facing message for err, moving field-scoped
// validation errors into fieldErrors. Returns "" when err is nil.
func processError(err error, fallback string, fieldErrors *map[string]string) string {
	if err == nil {
		return ""
	}
	if fallback == "" {
		fallback = "An error occurred. Please try again."
	}

	if errors.Is(err, context.DeadlineExceeded) || apperrors.IsTimeout(err) {
		return "Request timed out. Please try again."
	}
	if errors.Is(err, context.Canceled) || apperrors.IsCanceled(err) {
		return "Request was canceled."
	}

	msg := apperrors.PublicMessage(err, fallback)
	if field := apperrors.GetField(err); field != "" && apperrors.IsValidation(err) && fieldErrors != nil {
		if *fieldErrors == nil {
			*fieldErrors = make(map[string]string)
		}
		(*fieldErrors)[field] = msg
		return errMsgFixBelow
	}
	return msg
}
