// Package client talks to an admin backend over REST. Responses may arrive
// bare or wrapped in a {data, error} envelope; callers always see the
// unwrapped payload. Authentication is bearer-token with a one-shot refresh:
// a 401 on a non-login request triggers at most one token refresh and one
// retry before the failure is surfaced.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const defaultTimeout = 30 * time.Second

// Client is safe for concurrent use by multiple goroutines.
type Client struct {
	baseURL   string
	http      *http.Client
	tokens    TokenStore
	log       *zap.Logger
	userAgent string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.http = h
		}
	}
}

// WithTokenStore replaces the default in-memory store.
func WithTokenStore(s TokenStore) Option {
	return func(c *Client) {
		if s != nil {
			c.tokens = s
		}
	}
}

// WithLogger attaches a structured logger. Defaults to a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// New creates a client for the API rooted at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, fmt.Errorf("client: base URL is required")
	}
	c := &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		http:      &http.Client{Timeout: defaultTimeout},
		tokens:    NewMemoryTokenStore(),
		log:       zap.NewNop(),
		userAgent: "adminkit",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Tokens exposes the store so callers can seed or inspect the session.
func (c *Client) Tokens() TokenStore { return c.tokens }

type requestOpts struct {
	// noAuth skips the bearer header for endpoints that accept anonymous
	// callers, such as site info and password reset.
	noAuth bool
	// noRefresh marks requests whose 401 means "bad credentials", not
	// "stale token", so the refresh path must not run.
	noRefresh bool
	// retried is set on the single post-refresh attempt.
	retried bool
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any, opts requestOpts) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var payload io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("client: encode request body: %w", err)
		}
		payload = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, payload)
	if err != nil {
		return fmt.Errorf("client: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-ID", uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if !opts.noAuth {
		// Re-read on every attempt so a pair refreshed by a concurrent
		// request, or by another process sharing the store, is used.
		if access := c.tokens.Access(); access != "" {
			req.Header.Set("Authorization", "Bearer "+access)
		}
	}

	c.log.Debug("request", zap.String("method", method), zap.String("path", path))

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("client: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("client: read response: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized && !opts.noRefresh && !opts.retried {
		if c.tokens.Refresh() == "" {
			c.tokens.Clear()
			return c.failure(resp.StatusCode, raw)
		}
		if c.refresh(ctx) {
			opts.retried = true
			return c.do(ctx, method, path, query, body, out, opts)
		}
		return c.failure(resp.StatusCode, raw)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return c.failure(resp.StatusCode, raw)
	}

	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	data := unwrapEnvelope(raw)
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("client: decode response: %w", err)
	}
	return nil
}

// Refresh proactively exchanges the refresh token for a new pair, e.g. when
// ExpiresWithin reports the access token is about to lapse. Reports whether
// a new pair was stored.
func (c *Client) Refresh(ctx context.Context) bool {
	return c.refresh(ctx)
}

// refresh exchanges the refresh token for a new pair. A 401 or 403 means the
// session is unrecoverable and both tokens are cleared.
func (c *Client) refresh(ctx context.Context) bool {
	refresh := c.tokens.Refresh()
	if refresh == "" {
		return false
	}
	c.log.Debug("refreshing access token")

	var result struct {
		Access  string `json:"access"`
		Refresh string `json:"refresh"`
	}
	err := c.do(ctx, http.MethodPost, "/auth/refresh/", nil,
		map[string]string{"refresh": refresh}, &result,
		requestOpts{noAuth: true, noRefresh: true})
	if err != nil {
		var aerr *APIError
		if errors.As(err, &aerr) && (aerr.Status == http.StatusUnauthorized || aerr.Status == http.StatusForbidden) {
			c.tokens.Clear()
		}
		c.log.Debug("token refresh failed", zap.Error(err))
		return false
	}
	if result.Access == "" {
		return false
	}
	next := result.Refresh
	if next == "" {
		next = refresh
	}
	c.tokens.SetPair(result.Access, next)
	return true
}

func (c *Client) failure(status int, raw []byte) error {
	msg, details := parseFailure(raw)
	if status == http.StatusBadRequest && len(details) > 0 {
		return &ValidationError{Message: msg, Details: details}
	}
	if msg == "" {
		msg = fallbackMessage
	}
	return &APIError{Status: status, Message: msg}
}

// unwrapEnvelope returns the inner data when raw is a {data, ...} envelope,
// otherwise raw unchanged.
func unwrapEnvelope(raw []byte) json.RawMessage {
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(raw, &envelope); err == nil && len(envelope.Data) > 0 {
		return envelope.Data
	}
	return raw
}

// parseFailure digs the human message and field details out of the error
// body. Backends emit either a flat {"error": "..."} / {"message": "..."}
// shape or a nested {"error": {"message": ..., "details": ...}} one; field
// details may also sit at the top level.
func parseFailure(raw []byte) (string, map[string][]string) {
	var body struct {
		Message string              `json:"message"`
		Detail  string              `json:"detail"`
		Details map[string][]string `json:"details"`
		Error   json.RawMessage     `json:"error"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return "", nil
	}
	msg := body.Message
	if msg == "" {
		msg = body.Detail
	}
	details := body.Details

	if len(body.Error) > 0 {
		var flat string
		if err := json.Unmarshal(body.Error, &flat); err == nil {
			if msg == "" {
				msg = flat
			}
		} else {
			var nested struct {
				Message string              `json:"message"`
				Details map[string][]string `json:"details"`
			}
			if err := json.Unmarshal(body.Error, &nested); err == nil {
				if msg == "" {
					msg = nested.Message
				}
				if details == nil {
					details = nested.Details
				}
			}
		}
	}
	return msg, details
}
