package errors

import (
	"context"
	"errors"
	"net/http"
)

// FromStatus maps a non-2xx backend status to an AppError.
// message is the backend's "message" field and may be empty.
func FromStatus(status int, message string, cause error) *AppError {
	code := ErrCodeUpstream
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		code = ErrCodeUnauthenticated
	case status == http.StatusNotFound:
		code = ErrCodeNotFound
	case status == http.StatusBadRequest || status == http.StatusUnprocessableEntity:
		code = ErrCodeValidation
	case status >= http.StatusInternalServerError:
		code = ErrCodeUnavailable
	}
	if message == "" {
		message = http.StatusText(status)
	}
	return &AppError{Code: code, Message: message, Cause: cause}
}

// FromTransport maps a failed round-trip (no response) to an AppError.
func FromTransport(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &AppError{
			Code:    ErrCodeTimeout,
			Message: "Request timed out. Please try again.",
			Cause:   err,
		}
	}
	if errors.Is(err, context.Canceled) {
		return &AppError{
			Code:    ErrCodeCanceled,
			Message: "Request was canceled.",
			Cause:   err,
		}
	}
	return &AppError{
		Code:    ErrCodeUnavailable,
		Message: "Service unavailable",
		Cause:   err,
	}
}

// HTTPStatus returns the status a JSON handler should answer with for err.
func HTTPStatus(err error) int {
	switch GetCode(err) {
	case ErrCodeNotFound:
		return http.StatusNotFound
	case ErrCodeValidation:
		return http.StatusBadRequest
	case ErrCodeUnauthenticated:
		return http.StatusUnauthorized
	case ErrCodeUpstream, ErrCodeUnavailable:
		return http.StatusBadGateway
	case ErrCodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
