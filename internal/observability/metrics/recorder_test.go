package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	apperrors "github.com/target/storefront-web/internal/errors"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, c.Write(&m))
	return m.GetCounter().GetValue()
}

type recordingSink struct {
	mu      sync.Mutex
	counts  map[string][]map[string]string
	timings []string
}

func (s *recordingSink) Count(name string, _ int64, tags map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.counts == nil {
		s.counts = map[string][]map[string]string{}
	}
	s.counts[name] = append(s.counts[name], tags)
}

func (s *recordingSink) Timing(name string, _ time.Duration, _ map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.timings = append(s.timings, name)
}

func TestRecorder_BackendCalls(t *testing.T) {
	sink := &recordingSink{}
	r := New(Options{Sink: sink, SkipRuntime: true})

	r.ObserveBackendCall("get_user", http.StatusOK, 5*time.Millisecond, nil)
	r.ObserveBackendCall("get_user", http.StatusUnauthorized, time.Millisecond, apperrors.Unauthenticated("no"))

	assert.Equal(t, 1.0, counterValue(t, r.backendCalls.WithLabelValues("get_user", "200", ResultSuccess)))
	assert.Equal(t, 1.0, counterValue(t, r.backendCalls.WithLabelValues("get_user", "401", ResultError)))

	require.Len(t, sink.counts["backend.call"], 2)
	assert.Equal(t, "unauthenticated", sink.counts["backend.call"][1]["error_class"])
	assert.Equal(t, []string{"backend.duration", "backend.duration"}, sink.timings)
}

func TestRecorder_SessionAndGate(t *testing.T) {
	r := New(Options{SkipRuntime: true})

	r.ObserveSessionStarted()
	r.ObserveSessionFetch("rejected")
	r.ObserveSessionFetch("rejected")
	r.ObserveGateDecision("protected", "redirect")

	assert.Equal(t, 1.0, counterValue(t, r.sessionsStarted))
	assert.Equal(t, 2.0, counterValue(t, r.sessionFetches.WithLabelValues("rejected")))
	assert.Equal(t, 1.0, counterValue(t, r.gateDecisions.WithLabelValues("protected", "redirect")))
}

func TestRecorder_HandlerExposesMetrics(t *testing.T) {
	r := New(Options{Namespace: "sf", SkipRuntime: true})
	r.ObserveHTTPRequest(http.MethodGet, "", http.StatusOK, time.Millisecond)

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `sf_http_requests_total{code="200",method="GET",route="unmatched"} 1`), body)
}

func TestRecorder_NilIsSafe(t *testing.T) {
	var r *Recorder
	r.ObserveHTTPRequest(http.MethodGet, "/", http.StatusOK, time.Millisecond)
	r.ObserveBackendCall("x", 0, 0, errors.New("boom"))
	r.ObserveSessionStarted()
	r.ObserveSessionFetch("fulfilled")
	r.ObserveGateDecision("public", "render")

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCloneTags(t *testing.T) {
	assert.Nil(t, CloneTags(nil))
	src := map[string]string{"a": "1"}
	cp := CloneTags(src)
	cp["a"] = "2"
	assert.Equal(t, "1", src["a"])
}
