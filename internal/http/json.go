package httpx

import (
	"bytes"
	"encoding/json"
	"net/http"

	apperrors "github.com/target/storefront-web/internal/errors"
)

// WriteJSON writes a JSON response with the given status code and data.
func WriteJSON(w http.ResponseWriter, code int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	// Client disconnects can't be recovered from here.
	_, _ = buf.WriteTo(w)
}

// WriteError writes err as {"error": code, "message": msg}. The status and code
// come from the AppError classification; other errors are reported as internal.
func WriteError(w http.ResponseWriter, err error) {
	code := apperrors.GetCode(err)
	if code == "" {
		code = apperrors.ErrCodeInternal
	}
	WriteJSON(w, apperrors.HTTPStatus(err), map[string]string{
		"error":   string(code),
		"message": apperrors.PublicMessage(err, http.StatusText(apperrors.HTTPStatus(err))),
	})
}
