package backend

import (
	"log/slog"
	"net/http"
	"time"
)

// DefaultTimeout bounds every request when no timeout is configured.
const DefaultTimeout = 15 * time.Second

// RetryPolicy controls retries of idempotent requests. Only GET is retried,
// and only on network and server errors.
type RetryPolicy struct {
	// MaxAttempts is the total number of tries, including the first.
	// Values below 1 mean a single try.
	MaxAttempts int
	// BaseDelay is the delay before the first retry; it doubles per retry.
	BaseDelay time.Duration
	// MaxDelay caps a single delay.
	MaxDelay time.Duration
}

// DefaultRetryPolicy is three tries starting at 200ms.
var DefaultRetryPolicy = RetryPolicy{
	MaxAttempts: 3,
	BaseDelay:   200 * time.Millisecond,
	MaxDelay:    2 * time.Second,
}

// Option is a functional option for configuring a Client.
type Option func(*Client)

// WithHTTPClient sets the http.Client used for requests. Its Transport is
// wrapped, never replaced, so proxies and test transports keep working.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.base = hc
	}
}

// WithTimeout sets the per-request timeout. If not set, defaults to 15 seconds.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithMetrics records request metrics into m.
func WithMetrics(m *Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// WithRetry sets the retry policy for GET requests.
func WithRetry(p RetryPolicy) Option {
	return func(c *Client) {
		c.retry = p
	}
}

// WithInvalidator sets what is invalidated on a 401. By default the token
// source is used when it implements Invalidator.
func WithInvalidator(inv Invalidator) Option {
	return func(c *Client) {
		c.invalidator = inv
	}
}

// WithDefaultHeaders adds headers sent with every request unless the request
// already carries them.
func WithDefaultHeaders(h http.Header) Option {
	return func(c *Client) {
		for k, vs := range h {
			for _, v := range vs {
				c.defaultHeaders.Add(k, v)
			}
		}
	}
}
