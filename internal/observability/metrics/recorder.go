// Package metrics records storefront request, backend and session metrics in a
// Prometheus registry and mirrors the counters to an optional StatsD sink.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	obserrors "github.com/target/storefront-web/internal/observability/errors"
	"github.com/target/storefront-web/internal/observability/statsd"
)

// Result constants for metric tagging.
const (
	ResultSuccess = "success"
	ResultError   = "error"
)

// Options configures New.
type Options struct {
	Namespace string
	// Sink mirrors counters and timings when non-nil.
	Sink statsd.Sink
	// SkipRuntime leaves out the Go and process collectors.
	SkipRuntime bool
}

// Recorder implements the observer interfaces used by the backend client, the
// session service and the HTTP layer. A nil *Recorder records nothing.
type Recorder struct {
	registry *prometheus.Registry
	sink     statsd.Sink

	httpRequests    *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
	backendCalls    *prometheus.CounterVec
	backendDuration *prometheus.HistogramVec
	sessionsStarted prometheus.Counter
	sessionFetches  *prometheus.CounterVec
	gateDecisions   *prometheus.CounterVec
}

// New builds a Recorder with its own registry.
func New(opts Options) *Recorder {
	ns := opts.Namespace
	if ns == "" {
		ns = "storefront"
	}
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		sink:     opts.Sink,
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns, Subsystem: "http", Name: "requests_total",
			Help: "HTTP requests served, by route pattern and status code.",
		}, []string{"method", "route", "code"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: ns, Subsystem: "http", Name: "request_duration_seconds",
			Help:    "HTTP request latency by route pattern.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		backendCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns, Subsystem: "backend", Name: "calls_total",
			Help: "Backend API round-trips by operation and result.",
		}, []string{"op", "code", "result"}),
		backendDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: ns, Subsystem: "backend", Name: "call_duration_seconds",
			Help:    "Backend API latency by operation.",
			Buckets: prometheus.DefBuckets,
		}, []string{"op"}),
		sessionsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: ns, Subsystem: "session", Name: "started_total",
			Help: "Visitor sessions created.",
		}),
		sessionFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns, Subsystem: "session", Name: "fetches_total",
			Help: "Settled current-user fetches by outcome.",
		}, []string{"outcome"}),
		gateDecisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns, Subsystem: "gate", Name: "decisions_total",
			Help: "Auth gate decisions by gate kind.",
		}, []string{"gate", "decision"}),
	}

	r.registry.MustRegister(
		r.httpRequests, r.httpDuration,
		r.backendCalls, r.backendDuration,
		r.sessionsStarted, r.sessionFetches, r.gateDecisions,
	)
	if !opts.SkipRuntime {
		r.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	return r
}

// Registry exposes the underlying registry, mainly for tests.
func (r *Recorder) Registry() *prometheus.Registry { return r.registry }

// Handler serves the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// ObserveHTTPRequest records one served request. route is the mux pattern, never the raw path.
func (r *Recorder) ObserveHTTPRequest(method, route string, status int, elapsed time.Duration) {
	if r == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	code := strconv.Itoa(status)
	r.httpRequests.WithLabelValues(method, route, code).Inc()
	r.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())

	if r.sink != nil {
		tags := map[string]string{"method": method, "route": route, "code": code}
		r.sink.Count("http.request", 1, tags)
		r.sink.Timing("http.duration", elapsed, CloneTags(tags))
	}
}

// ObserveBackendCall records one backend round-trip. status is 0 when no response arrived.
func (r *Recorder) ObserveBackendCall(op string, status int, elapsed time.Duration, err error) {
	if r == nil {
		return
	}
	result := ResultSuccess
	if err != nil {
		result = ResultError
	}
	code := strconv.Itoa(status)
	r.backendCalls.WithLabelValues(op, code, result).Inc()
	r.backendDuration.WithLabelValues(op).Observe(elapsed.Seconds())

	if r.sink != nil {
		tags := map[string]string{"op": op, "code": code, "result": result}
		if err != nil {
			tags["error_class"] = obserrors.Classify(err)
		}
		r.sink.Count("backend.call", 1, tags)
		r.sink.Timing("backend.duration", elapsed, map[string]string{"op": op})
	}
}

// ObserveSessionStarted counts a new visitor session.
func (r *Recorder) ObserveSessionStarted() {
	if r == nil {
		return
	}
	r.sessionsStarted.Inc()
	if r.sink != nil {
		r.sink.Count("session.started", 1, nil)
	}
}

// ObserveSessionFetch counts a settled current-user fetch.
func (r *Recorder) ObserveSessionFetch(outcome string) {
	if r == nil {
		return
	}
	r.sessionFetches.WithLabelValues(outcome).Inc()
	if r.sink != nil {
		r.sink.Count("session.fetch", 1, map[string]string{"outcome": outcome})
	}
}

// ObserveGateDecision counts what a gate did with a request.
func (r *Recorder) ObserveGateDecision(gate, decision string) {
	if r == nil {
		return
	}
	r.gateDecisions.WithLabelValues(gate, decision).Inc()
	if r.sink != nil {
		r.sink.Count("gate.decision", 1, map[string]string{"gate": gate, "decision": decision})
	}
}

// CloneTags creates a shallow copy of a tag map.
func CloneTags(src map[string]string) map[string]string {
	if len(src) == 0 {
		return nil
	}
	out := make(map[string]string, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}
