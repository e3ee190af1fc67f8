// Package ramekin is a typed client for the Ramekin recipe backend.
//
// The bearer credential is read from a TokenSource on every request, so a
// logout applies to the next call without invalidating the client.
package ramekin

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/ramekin/ramekin-web/internal/errors"
	"github.com/ramekin/ramekin-web/internal/ratelimit"
)

const (
	defaultTimeout = 30 * time.Second
	defaultRPS     = 5.0
	defaultBurst   = 10

	// Error bodies larger than this are not worth decoding.
	maxErrorBody = 64 << 10
)

// TokenSource supplies the bearer credential at call time.
type TokenSource interface {
	Token() (string, bool)
}

// Options tunes a Client. Zero values use the defaults.
type Options struct {
	HTTPClient *http.Client
	Timeout    time.Duration
	RPS        float64
	Burst      int
	UserAgent  string
}

// Client is a rate-limited Ramekin API client.
type Client struct {
	base      *url.URL
	http      *http.Client
	tokens    TokenSource
	limiter   *ratelimit.KeyedRateLimiter
	logger    *slog.Logger
	userAgent string
}

// New creates a client for the backend at baseURL.
// tokens may be nil for unauthenticated use (login, signup).
func New(baseURL string, tokens TokenSource, logger *slog.Logger, opts ...Options) (*Client, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, errors.Validationf("base url %q must be absolute", baseURL)
	}

	var o Options
	if len(opts) > 0 {
		o = opts[0]
	}
	if o.HTTPClient == nil {
		timeout := o.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		o.HTTPClient = &http.Client{Timeout: timeout}
	}
	if o.RPS <= 0 {
		o.RPS = defaultRPS
	}
	if o.Burst <= 0 {
		o.Burst = defaultBurst
	}
	if o.UserAgent == "" {
		o.UserAgent = "ramekin-web/1.0"
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		base:      base,
		http:      o.HTTPClient,
		tokens:    tokens,
		limiter:   ratelimit.New(o.RPS, o.Burst),
		logger:    logger,
		userAgent: o.UserAgent,
	}, nil
}

// WithTokens returns a client sharing c's transport and limiter but reading
// credentials from tokens.
func (c *Client) WithTokens(tokens TokenSource) *Client {
	cp := *c
	cp.tokens = tokens
	return &cp
}

// BaseURL returns the backend origin.
func (c *Client) BaseURL() string {
	return c.base.String()
}

// Close releases resources held by the client.
func (c *Client) Close() {
	c.limiter.Stop()
}

// request describes one backend call.
type request struct {
	method string
	path   string
	query  url.Values
	body   any
	// public requests never send the credential.
	public bool
}

// do executes req and decodes a 2xx JSON response into out (if non-nil).
func (c *Client) do(ctx context.Context, req request, out any) error {
	if err := c.limiter.Wait(ctx, c.base.Host); err != nil {
		return errors.Network("rate limit wait", err)
	}

	u := c.base.JoinPath(req.path)
	if len(req.query) > 0 {
		u.RawQuery = req.query.Encode()
	}

	var body io.Reader
	if req.body != nil {
		data, err := json.Marshal(req.body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, u.String(), body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", c.userAgent)
	if req.body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if !req.public && c.tokens != nil {
		if token, ok := c.tokens.Token(); ok {
			httpReq.Header.Set("Authorization", "Bearer "+token)
		}
	}

	c.logger.Debug("ramekin request", "method", req.method, "path", req.path)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return errors.Network("request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newAPIError(resp)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Network("decode response", err)
	}
	return nil
}
