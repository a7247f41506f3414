package cosigner

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"panoplia-wallet/internal/observability"
)

// Default configuration values.
const (
	DefaultTimeout = 30 * time.Second
	DefaultRetries = 3
)

// TokenSource supplies the current bearer token; "" means unauthenticated.
type TokenSource func() string

// SleepFunc waits for d or until ctx is done; injectable so retry backoff is
// testable without real waits.
type SleepFunc func(ctx context.Context, d time.Duration) error

// DefaultSleep waits for d or until ctx is done.
func DefaultSleep(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

// Client implements API over HTTP.
type Client struct {
	baseURL string
	http    *http.Client
	timeout time.Duration
	retries int
	sleep   SleepFunc
	token   TokenSource
	logger  *zap.Logger
	metrics *observability.Metrics
	newKey  func() string
}

// ClientOption configures Client.
type ClientOption func(*Client)

// WithTimeout sets the default per-attempt timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithRetries sets the default retry budget (attempts beyond the first).
func WithRetries(n int) ClientOption {
	return func(c *Client) {
		c.retries = n
	}
}

// WithHTTPClient sets a custom http.Client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		c.http = client
	}
}

// WithSleep sets the backoff sleep function.
func WithSleep(sleep SleepFunc) ClientOption {
	return func(c *Client) {
		c.sleep = sleep
	}
}

// WithTokenSource sets where the Authorization bearer token comes from.
func WithTokenSource(token TokenSource) ClientOption {
	return func(c *Client) {
		c.token = token
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithMetrics enables request metrics.
func WithMetrics(m *observability.Metrics) ClientOption {
	return func(c *Client) {
		c.metrics = m
	}
}

// NewClient creates a co-signer HTTP client.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: baseURL,
		http:    &http.Client{},
		timeout: DefaultTimeout,
		retries: DefaultRetries,
		sleep:   DefaultSleep,
		logger:  zap.NewNop(),
		newKey:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// RequestConfig overrides pipeline defaults for a single logical request.
type RequestConfig struct {
	Timeout time.Duration     // 0 = client default
	Retries *int              // nil = client default; 0 disables retries
	Headers map[string]string // merged over the standard headers
}

// request performs one logical request: up to retries+1 attempts, each with
// its own wall-clock timeout, exponential backoff between attempts, and the
// server envelope unwrapped into out. Transport failures and timeouts are
// retried; a well-formed server response is always terminal.
//
// The retry policy does not distinguish verbs, so every non-GET request
// carries an Idempotency-Key header (one UUID per logical request, reused
// across attempts) letting the server deduplicate replayed side effects.
func (c *Client) request(ctx context.Context, method, path string, body, out interface{}, cfg *RequestConfig) error {
	timeout := c.timeout
	retries := c.retries
	var extra map[string]string
	if cfg != nil {
		if cfg.Timeout > 0 {
			timeout = cfg.Timeout
		}
		if cfg.Retries != nil {
			retries = *cfg.Retries
		}
		extra = cfg.Headers
	}

	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
	}

	var idemKey string
	if method != http.MethodGet {
		idemKey = c.newKey()
	}

	start := time.Now()
	if c.metrics != nil {
		c.metrics.RequestsInFlight.Inc()
		defer c.metrics.RequestsInFlight.Dec()
		defer func() {
			c.metrics.RequestDuration.WithLabelValues(method).Observe(time.Since(start).Seconds())
		}()
	}

	var lastErr error
	for attempt := 0; attempt <= retries; attempt++ {
		if attempt > 0 {
			if c.metrics != nil {
				c.metrics.RequestRetries.Inc()
			}
			// Attempt n waits 2^n seconds before the next try.
			if err := c.sleep(ctx, time.Duration(1<<(attempt-1))*time.Second); err != nil {
				return err
			}
		}

		err := c.attempt(ctx, method, path, payload, out, timeout, idemKey, extra)
		if err == nil {
			c.observe(method, "ok")
			return nil
		}
		if !retryable(err) {
			c.observe(method, "http_error")
			return err
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			// Caller-owned context expired; not ours to retry.
			return err
		}

		lastErr = err
		c.logger.Debug("request attempt failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("attempt", attempt),
			zap.Error(err))
	}

	if errors.Is(lastErr, ErrTimeout) {
		c.observe(method, "timeout")
	} else {
		c.observe(method, "network_error")
	}
	return fmt.Errorf("%s %s failed after %d attempts: %w", method, path, retries+1, lastErr)
}

// attempt performs a single HTTP exchange with its own timeout context. A
// response arriving after that context expires is dropped with the
// connection; it can never reach the caller.
func (c *Client) attempt(ctx context.Context, method, path string, payload []byte, out interface{}, timeout time.Duration, idemKey string, extra map[string]string) error {
	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(attemptCtx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if c.token != nil {
		if t := c.token(); t != "" {
			req.Header.Set("Authorization", "Bearer "+t)
		}
	}
	if idemKey != "" {
		req.Header.Set("Idempotency-Key", idemKey)
	}
	for k, v := range extra {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return c.classifyTransport(attemptCtx, ctx, err, timeout)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return c.classifyTransport(attemptCtx, ctx, err, timeout)
	}

	if resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{Status: resp.StatusCode, Message: errorMessage(raw, resp.StatusCode)}
	}
	return decodeBody(raw, out)
}

// classifyTransport maps a transport failure to the error taxonomy. Caller
// cancellation propagates as-is; an expired attempt deadline is a timeout;
// everything else is a retryable network error.
func (c *Client) classifyTransport(attemptCtx, ctx context.Context, err error, timeout time.Duration) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if errors.Is(attemptCtx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w after %s", ErrTimeout, timeout)
	}
	return &NetworkError{Err: err}
}

// errorMessage extracts message/error from a non-2xx JSON body.
func errorMessage(raw []byte, status int) string {
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(raw, &body); err == nil {
		if body.Message != "" {
			return body.Message
		}
		if body.Error != "" {
			return body.Error
		}
	}
	return fmt.Sprintf("request failed with status %d", status)
}

// decodeBody parses a 2xx body into out, unwrapping the {success, data}
// envelope when the server uses it and propagating an inner failure as an
// APIError.
func decodeBody(raw []byte, out interface{}) error {
	var env struct {
		Success *bool           `json:"success"`
		Data    json.RawMessage `json:"data"`
		Error   string          `json:"error"`
		Message string          `json:"message"`
	}
	if err := json.Unmarshal(raw, &env); err == nil && env.Success != nil {
		if !*env.Success {
			msg := env.Error
			if msg == "" {
				msg = env.Message
			}
			if msg == "" {
				msg = "request failed"
			}
			return &APIError{Status: http.StatusOK, Message: msg}
		}
		if out == nil || env.Data == nil {
			return nil
		}
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
		}
		return nil
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return nil
}

func (c *Client) observe(method, outcome string) {
	if c.metrics != nil {
		c.metrics.RequestsTotal.WithLabelValues(method, outcome).Inc()
	}
}
