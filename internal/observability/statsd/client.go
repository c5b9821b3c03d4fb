// Package statsd emits storefront counters and timings over UDP in the
// DogStatsD line format (name:value|type|#tag:value).
package statsd

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Sink is what the metrics recorder needs from a StatsD client.
type Sink interface {
	Count(name string, value int64, tags map[string]string)
	Timing(name string, value time.Duration, tags map[string]string)
}

// Options configures Dial.
type Options struct {
	Address string
	// Prefix is joined to every metric name with a dot, e.g. "storefront".
	Prefix string
	Tags   map[string]string
	Logger *slog.Logger
}

// Client writes one datagram per metric. It is safe for concurrent use and a
// nil *Client drops everything.
type Client struct {
	prefix string
	tags   map[string]string
	logger *slog.Logger

	mu   sync.Mutex
	conn net.Conn
}

var _ Sink = (*Client)(nil)

// Dial connects to opts.Address. UDP dialing never waits for a peer, so an
// error here means the address itself is unusable.
func Dial(ctx context.Context, opts Options) (*Client, error) {
	address := strings.TrimSpace(opts.Address)
	if address == "" {
		return nil, fmt.Errorf("statsd: address is required")
	}
	conn, err := (&net.Dialer{}).DialContext(ctx, "udp", address)
	if err != nil {
		return nil, fmt.Errorf("statsd dial %s: %w", address, err)
	}
	return newClient(conn, opts), nil
}

func newClient(conn net.Conn, opts Options) *Client {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		prefix: strings.Trim(strings.TrimSpace(opts.Prefix), "."),
		tags:   opts.Tags,
		logger: logger,
		conn:   conn,
	}
}

// Count adds value to a counter.
func (c *Client) Count(name string, value int64, tags map[string]string) {
	c.send(name, strconv.FormatInt(value, 10), "c", tags)
}

// Timing records a duration in milliseconds.
func (c *Client) Timing(name string, value time.Duration, tags map[string]string) {
	ms := float64(value) / float64(time.Millisecond)
	c.send(name, strconv.FormatFloat(ms, 'f', -1, 64), "ms", tags)
}

// Close releases the socket. Further writes are dropped.
func (c *Client) Close() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	return err
}

func (c *Client) send(name, value, kind string, tags map[string]string) {
	if c == nil {
		return
	}
	line := c.line(name, value, kind, tags)
	if line == "" {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return
	}
	if _, err := c.conn.Write([]byte(line)); err != nil {
		c.logger.Debug("statsd write failed", "metric", name, "error", err)
	}
}

func (c *Client) line(name, value, kind string, tags map[string]string) string {
	metric := metricName(c.prefix, name)
	if metric == "" {
		return ""
	}
	var b strings.Builder
	b.WriteString(metric)
	b.WriteByte(':')
	b.WriteString(value)
	b.WriteByte('|')
	b.WriteString(kind)
	writeTags(&b, c.tags, tags)
	return b.String()
}

// metricName joins prefix and name and maps characters StatsD servers reject.
func metricName(prefix, name string) string {
	name = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '/', ':', '|', '@', '#':
			return '_'
		}
		return r
	}, strings.TrimSpace(name))
	for strings.Contains(name, "..") {
		name = strings.ReplaceAll(name, "..", ".")
	}
	name = strings.Trim(name, ".")
	if name == "" {
		return ""
	}
	if prefix == "" {
		return name
	}
	return prefix + "." + name
}

// writeTags appends "|#k:v,..." with local tags overriding global ones, keys sorted.
func writeTags(b *strings.Builder, global, local map[string]string) {
	merged := make(map[string]string, len(global)+len(local))
	for _, src := range []map[string]string{global, local} {
		for k, v := range src {
			if k = strings.TrimSpace(k); k != "" {
				merged[k] = strings.TrimSpace(v)
			}
		}
	}
	if len(merged) == 0 {
		return
	}

	keys := make([]string, 0, len(merged))
	for k := range merged {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	b.WriteString("|#")
	for i, k := range keys {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(k)
		b.WriteByte(':')
		b.WriteString(merged[k])
	}
}
