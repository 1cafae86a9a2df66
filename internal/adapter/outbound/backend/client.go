package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/reusemart/reusemart-mobile/internal/domain/market"
)

// maxBodySize caps how much of a response body is read.
const maxBodySize = 10 << 20

// validate checks decoded projections. It caches struct metadata and is safe
// for concurrent use.
var validate = validator.New()

// Client is an authenticated HTTP client bound to one backend area.
type Client struct {
	area           Area
	baseURL        string
	tokens         TokenSource
	invalidator    Invalidator
	base           *http.Client
	http           *http.Client
	timeout        time.Duration
	retry          RetryPolicy
	logger         *slog.Logger
	metrics        *Metrics
	defaultHeaders http.Header

	// sleep waits between retries; replaced in tests.
	sleep func(ctx context.Context, d time.Duration) error
}

// noTokens is the TokenSource for clients built without a session cache.
type noTokens struct{}

func (noTokens) Get() string { return "" }

// New creates a Client for area rooted at baseURL. tokens is read on every
// request; when it also implements Invalidator it is invalidated on 401.
func New(area Area, baseURL string, tokens TokenSource, opts ...Option) *Client {
	if tokens == nil {
		tokens = noTokens{}
	}
	c := &Client{
		area:    area,
		baseURL: strings.TrimRight(baseURL, "/"),
		tokens:  tokens,
		timeout: DefaultTimeout,
		retry:   DefaultRetryPolicy,
		logger:  slog.Default(),
		defaultHeaders: http.Header{
			"Accept": {"application/json"},
		},
		sleep: sleepContext,
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.invalidator == nil {
		if inv, ok := tokens.(Invalidator); ok {
			c.invalidator = inv
		}
	}
	if c.timeout <= 0 {
		c.timeout = DefaultTimeout
	}

	var inner http.RoundTripper = http.DefaultTransport
	hc := &http.Client{}
	if c.base != nil {
		*hc = *c.base
		if c.base.Transport != nil {
			inner = c.base.Transport
		}
	}
	hc.Timeout = c.timeout
	hc.Transport = &authTransport{base: inner, tokens: c.tokens, defaults: c.defaultHeaders}
	c.http = hc
	c.logger = c.logger.With("area", string(area))

	return c
}

// Area returns the area this client serves.
func (c *Client) Area() Area {
	return c.area
}

// BaseURL returns the configured base address.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// request describes one typed operation's HTTP call.
type request struct {
	method string
	path   string
	query  url.Values
	body   any
	header http.Header
	// anonymous requests (login) do not invalidate the session on 401.
	anonymous bool
}

// call sends r and decodes the normalised payload into out (when non-nil).
func (c *Client) call(ctx context.Context, r request, out any) error {
	data, err := c.send(ctx, r)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if len(data) == 0 {
		data = null
	}
	if err := json.Unmarshal(data, out); err != nil {
		return c.shapeError(r, err)
	}
	return nil
}

// shapeError is the ErrServer for a 2xx payload that did not decode or validate.
func (c *Client) shapeError(r request, err error) error {
	c.logger.Warn("unexpected response shape", "method", r.method, "path", r.path, "error", err)
	return &market.Error{
		Kind:    market.ErrServer,
		Area:    string(c.area),
		Message: errUnexpectedShape.Error(),
		Err:     err,
	}
}

// check validates decoded projections at the client boundary.
func check[T any](c *Client, r request, items ...T) error {
	for i := range items {
		if err := validate.Struct(items[i]); err != nil {
			return c.shapeError(r, err)
		}
	}
	return nil
}

// send performs r with retries and returns the unwrapped payload.
func (c *Client) send(ctx context.Context, r request) (json.RawMessage, error) {
	var payload []byte
	if r.body != nil {
		var err error
		if payload, err = json.Marshal(r.body); err != nil {
			return nil, fmt.Errorf("marshal %s %s body: %w", r.method, r.path, err)
		}
	}

	attempts := 1
	if r.method == http.MethodGet && c.retry.MaxAttempts > 1 {
		attempts = c.retry.MaxAttempts
	}

	start := time.Now()
	var (
		data json.RawMessage
		err  error
	)
	for attempt := 1; ; attempt++ {
		data, err = c.attempt(ctx, r, payload)
		if err == nil || attempt >= attempts || !retryable(err) || ctx.Err() != nil {
			break
		}
		delay := c.backoff(attempt)
		c.logger.Debug("retrying request", "method", r.method, "path", r.path, "attempt", attempt+1, "delay", delay, "error", err)
		if c.metrics != nil {
			c.metrics.RetriesTotal.WithLabelValues(string(c.area)).Inc()
		}
		if sleepErr := c.sleep(ctx, delay); sleepErr != nil {
			break
		}
	}

	if c.metrics != nil {
		c.metrics.RequestsTotal.WithLabelValues(string(c.area), r.method, outcome(err)).Inc()
		c.metrics.RequestDuration.WithLabelValues(string(c.area)).Observe(time.Since(start).Seconds())
	}
	return data, err
}

// attempt performs a single round trip.
func (c *Client) attempt(ctx context.Context, r request, payload []byte) (json.RawMessage, error) {
	target := c.baseURL + r.path
	if len(r.query) > 0 {
		target += "?" + r.query.Encode()
	}

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	ctx, stamped := withTokenStamp(ctx)
	req, err := http.NewRequestWithContext(ctx, r.method, target, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	for k, vs := range r.header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if payload != nil && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, c.networkError(err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, c.networkError(fmt.Errorf("read response body: %w", err))
	}

	requestID := ""
	if resp.Request != nil {
		requestID = resp.Request.Header.Get("X-Request-ID")
	}
	c.logger.Debug("backend response",
		"method", r.method,
		"path", r.path,
		"status", resp.StatusCode,
		"request_id", requestID,
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		e := statusError(c.area, resp.StatusCode, respBody)
		if resp.StatusCode == http.StatusUnauthorized && !r.anonymous {
			c.invalidate(*stamped)
		}
		return nil, e
	}

	data, err := unwrap(respBody)
	if err != nil {
		var me *market.Error
		if errors.As(err, &me) {
			me.Area = string(c.area)
			me.Status = resp.StatusCode
			return nil, me
		}
		return nil, c.shapeError(r, err)
	}
	return data, nil
}

// invalidate drops the session after a 401 for token. A rejection of a token
// that has since been replaced leaves the newer session in place.
func (c *Client) invalidate(token string) {
	if ti, ok := c.invalidator.(TokenInvalidator); ok {
		if !ti.InvalidateIf(token) {
			c.logger.Debug("ignoring 401 for a replaced session token", "area", c.area)
			return
		}
	} else if c.invalidator != nil {
		c.invalidator.Invalidate()
	}
	c.logger.Info("backend rejected the session token, session invalidated", "area", c.area)
	if c.metrics != nil {
		c.metrics.SessionInvalidations.Inc()
	}
}

func (c *Client) networkError(err error) *market.Error {
	msg := "request failed"
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		msg = "request timed out"
	}
	return &market.Error{
		Kind:    market.ErrNetwork,
		Area:    string(c.area),
		Message: msg,
		Err:     err,
	}
}

// backoff returns the delay before retry number attempt (1-based):
// BaseDelay doubled per attempt, capped at MaxDelay, with up to 50% jitter.
func (c *Client) backoff(attempt int) time.Duration {
	d := c.retry.BaseDelay
	if d <= 0 {
		return 0
	}
	for i := 1; i < attempt; i++ {
		d *= 2
		if c.retry.MaxDelay > 0 && d >= c.retry.MaxDelay {
			d = c.retry.MaxDelay
			break
		}
	}
	if c.retry.MaxDelay > 0 && d > c.retry.MaxDelay {
		d = c.retry.MaxDelay
	}
	half := d / 2
	return half + rand.N(half+1)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// retryable reports whether a failed attempt may be repeated. A 2xx body that
// did not parse will not parse the next time either.
func retryable(err error) bool {
	return market.Retryable(err) && !errors.Is(err, errUnexpectedShape)
}

// outcome is the metrics label for err.
func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, market.ErrNetwork):
		return "network"
	case errors.Is(err, market.ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, market.ErrInvalidCredentials):
		return "invalid_credentials"
	case errors.Is(err, market.ErrNotFound):
		return "not_found"
	case errors.Is(err, market.ErrValidation):
		return "validation"
	case errors.Is(err, market.ErrServer):
		return "server"
	default:
		return "error"
	}
}

// pathf builds a path with escaped segments.
func pathf(format string, args ...any) string {
	escaped := make([]any, len(args))
	for i, a := range args {
		escaped[i] = url.PathEscape(fmt.Sprint(a))
	}
	return fmt.Sprintf(format, escaped...)
}

// rangeQuery encodes r with the given parameter names. An all-time range
// sends no parameters.
func rangeQuery(r market.DateRange, startKey, endKey string) url.Values {
	q := url.Values{}
	if s := r.StartParam(); s != "" {
		q.Set(startKey, s)
	}
	if e := r.EndParam(); e != "" {
		q.Set(endKey, e)
	}
	return q
}
