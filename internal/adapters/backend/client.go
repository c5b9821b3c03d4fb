// Package backend is the HTTP adapter for the storefront's remote REST API.
// Every call forwards the visitor's backend credentials as cookies.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	domainauth "github.com/target/storefront-web/internal/domain/auth"
	apperrors "github.com/target/storefront-web/internal/errors"
)

const maxResponseBodyBytes = 1 << 20

// DefaultBaseURL is the backend's local development address.
const DefaultBaseURL = "http://localhost:8000/api/v1"

// Observer receives one callback per backend round-trip.
type Observer interface {
	ObserveBackendCall(op string, status int, elapsed time.Duration, err error)
}

// Options configures a Client.
type Options struct {
	// BaseURL is the API root, e.g. "http://localhost:8000/api/v1".
	BaseURL string
	// HTTPClient overrides the transport. Timeout is applied only when HTTPClient is nil.
	HTTPClient *http.Client
	// Timeout bounds each call. Zero means no timeout.
	Timeout time.Duration
	// Paths are the JMESPath expressions locating the user in each envelope.
	Paths    UserPaths
	Logger   *slog.Logger
	Observer Observer
}

// Client talks to the backend REST API.
type Client struct {
	base     *url.URL
	http     *http.Client
	logger   *slog.Logger
	observer Observer
	paths    compiledPaths
}

// StatusError records a non-2xx backend reply. It is the Cause of the AppError
// returned to callers.
type StatusError struct {
	Op     string
	Status int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: backend returned %d", e.Op, e.Status)
}

// New builds a Client. BaseURL must be absolute.
func New(opts Options) (*Client, error) {
	raw := strings.TrimSpace(opts.BaseURL)
	if raw == "" {
		raw = DefaultBaseURL
	}
	base, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse backend base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("backend base url must be absolute: %q", raw)
	}

	paths, err := compilePaths(opts.Paths)
	if err != nil {
		return nil, err
	}

	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: opts.Timeout}
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		base:     base,
		http:     hc,
		logger:   logger.With("component", "backend"),
		observer: opts.Observer,
		paths:    paths,
	}, nil
}

type response struct {
	status  int
	body    []byte
	cookies []*http.Cookie
}

func (r *response) ok() bool { return r.status >= 200 && r.status < 300 }

// call performs one round-trip. It only fails on transport errors; callers
// inspect the status themselves.
func (c *Client) call(
	ctx context.Context,
	op, method string,
	creds domainauth.Credentials,
	payload any,
	segments ...string,
) (*response, error) {
	start := time.Now()
	resp, err := c.roundTrip(ctx, method, creds, payload, segments)

	status := 0
	if resp != nil {
		status = resp.status
	}
	if c.observer != nil {
		c.observer.ObserveBackendCall(op, status, time.Since(start), err)
	}
	if err != nil {
		c.logger.DebugContext(ctx, "backend call failed", "op", op, "error", err)
		return nil, apperrors.FromTransport(err)
	}
	c.logger.DebugContext(ctx, "backend call", "op", op, "status", status,
		"duration_ms", time.Since(start).Milliseconds())
	return resp, nil
}

func (c *Client) roundTrip(
	ctx context.Context,
	method string,
	creds domainauth.Credentials,
	payload any,
	segments []string,
) (*response, error) {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base.JoinPath(segments...).String(), body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, cred := range creds {
		req.AddCookie(&http.Cookie{Name: cred.Name, Value: cred.Value})
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}

	data, readErr := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodyBytes))
	closeErr := resp.Body.Close()
	if readErr != nil {
		return nil, errors.Join(fmt.Errorf("read response body: %w", readErr), closeErr)
	}

	return &response{
		status:  resp.StatusCode,
		body:    data,
		cookies: resp.Cookies(),
	}, nil
}

type messageEnvelope struct {
	Message string `json:"message"`
}

// failure converts a non-2xx reply into an AppError carrying the backend's message.
func failure(op string, resp *response) error {
	var env messageEnvelope
	_ = json.Unmarshal(resp.body, &env)
	return apperrors.FromStatus(resp.status, strings.TrimSpace(env.Message), &StatusError{Op: op, Status: resp.status})
}

func messageOf(body []byte) string {
	var env messageEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return ""
	}
	return env.Message
}

func malformed(op string, err error) error {
	return apperrors.Wrapf(err, apperrors.ErrCodeUnavailable, "unexpected %s response", op)
}
