// Package remote issues authenticated JSON calls against the classroom REST API.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/and161185/classroom/internal/errs"
	"github.com/and161185/classroom/internal/metrics"
)

// APIKeyHeader carries the static application key on every request.
const APIKeyHeader = "x-api-key"

// TokenSource yields the current bearer token, or "" when there is no session.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// Caller is the request surface the endpoint adapters depend on.
type Caller interface {
	Do(ctx context.Context, method, path string, body, out any) error
}

// Client implements Caller over net/http.
type Client struct {
	base    string
	apiKey  string
	tokens  TokenSource
	httpc   *http.Client
	limiter *rate.Limiter
	log     *zap.Logger
	met     *metrics.Metrics
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option { return func(c *Client) { c.httpc = h } }

// WithLogger sets the logger and wraps the transport with request logging.
func WithLogger(l *zap.Logger) Option { return func(c *Client) { c.log = l } }

// WithMetrics counts requests by method and status.
func WithMetrics(m *metrics.Metrics) Option { return func(c *Client) { c.met = m } }

// WithRateLimit paces outbound requests. r <= 0 disables pacing.
func WithRateLimit(r rate.Limit, burst int) Option {
	return func(c *Client) {
		if r <= 0 {
			c.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(r, burst)
	}
}

// WithTimeout bounds each request.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		hc := *c.httpc
		hc.Timeout = d
		c.httpc = &hc
	}
}

// New constructs a Client for baseURL. tokens may be nil for anonymous use.
func New(baseURL, apiKey string, tokens TokenSource, opts ...Option) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("remote: empty base URL")
	}
	c := &Client{
		base:   baseURL,
		apiKey: apiKey,
		tokens: tokens,
		httpc:  &http.Client{Timeout: 30 * time.Second},
		log:    zap.NewNop(),
	}
	for _, o := range opts {
		o(c)
	}
	hc := *c.httpc
	hc.Transport = LoggingTransport(c.log, hc.Transport)
	c.httpc = &hc
	return c, nil
}

// Get issues GET path and decodes the payload into out.
func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.Do(ctx, http.MethodGet, path, nil, out)
}

// Post issues POST path with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPost, path, body, out)
}

// Patch issues PATCH path with a JSON body.
func (c *Client) Patch(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPatch, path, body, out)
}

// Delete issues DELETE path; body may be nil.
func (c *Client) Delete(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodDelete, path, body, out)
}

// Do sends one request. out may be nil when the payload is ignored.
func (c *Client) Do(ctx context.Context, method, path string, body, out any) error {
	op := method + " " + path
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return &errs.NetworkError{Op: op, Err: err}
		}
	}

	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("remote: encode %s: %w", op, err)
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, rd)
	if err != nil {
		return fmt.Errorf("remote: build %s: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set(APIKeyHeader, c.apiKey)
	}
	if c.tokens != nil {
		tok, err := c.tokens.Token(ctx)
		if err != nil {
			return &errs.AuthError{Reason: "read session", Err: err}
		}
		if tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		c.met.Request(method, 0)
		return &errs.NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()
	c.met.Request(method, resp.StatusCode)

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &errs.NetworkError{Op: op, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		se := &errs.ServerError{Status: resp.StatusCode, Message: errorMessage(raw)}
		if resp.StatusCode == http.StatusUnauthorized {
			return &errs.AuthError{Reason: "session rejected", Err: se}
		}
		return se
	}
	if out == nil {
		return nil
	}
	if err := decodeEnvelope(raw, out); err != nil {
		return fmt.Errorf("remote: decode %s: %w", op, err)
	}
	return nil
}

// decodeEnvelope accepts both {"data": T} and a bare T.
func decodeEnvelope(raw []byte, out any) error {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil
	}
	if raw[0] == '{' {
		var env map[string]json.RawMessage
		if err := json.Unmarshal(raw, &env); err == nil {
			if data, ok := env["data"]; ok {
				return json.Unmarshal(data, out)
			}
		}
	}
	return json.Unmarshal(raw, out)
}

func errorMessage(raw []byte) string {
	var body struct {
		Message any `json:"message"`
		Error   any `json:"error"`
	}
	if json.Unmarshal(raw, &body) != nil {
		return ""
	}
	for _, v := range []any{body.Message, body.Error} {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	return ""
}
