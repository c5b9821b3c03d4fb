package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthHandlerGET(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()

	healthHandler(nil)(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestHealthHandlerHEAD(t *testing.T) {
	req := httptest.NewRequest(http.MethodHead, "/healthz", nil)
	rec := httptest.NewRecorder()

	healthHandler(nil)(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestHealthHandlerChecks(t *testing.T) {
	tests := []struct {
		name       string
		checks     []HealthCheck
		wantStatus int
		wantReport healthReport
	}{
		{
			name: "all healthy",
			checks: []HealthCheck{
				{Name: "redis", Check: func(context.Context) error { return nil }},
			},
			wantStatus: http.StatusOK,
			wantReport: healthReport{Status: "ok", Checks: map[string]string{"redis": "ok"}},
		},
		{
			name: "one failing",
			checks: []HealthCheck{
				{Name: "redis", Check: func(context.Context) error { return errors.New("connection refused") }},
				{Name: "sessions", Check: func(context.Context) error { return nil }},
			},
			wantStatus: http.StatusServiceUnavailable,
			wantReport: healthReport{
				Status: "degraded",
				Checks: map[string]string{"redis": "connection refused", "sessions": "ok"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			healthHandler(tt.checks)(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

			assert.Equal(t, tt.wantStatus, rec.Code)
			var got healthReport
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
			assert.Equal(t, tt.wantReport, got)
		})
	}
}
