package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Default tracer name for upstream spans.
const defaultTracerName = "scribe-web/upstream"

// maxResponseBody caps how much of an API response is buffered for
// relaying. The API serves small JSON documents; anything bigger is
// a bug on its side.
const maxResponseBody = 4 << 20

// Client talks to the Scribe API. All methods take the session token
// explicitly; injection happens through Transport so the destination
// rule is applied uniformly.
type Client struct {
	base      *url.URL
	transport http.RoundTripper
	rule      DestinationRule
	tracer    trace.Tracer
	logger    *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithTransport sets the RoundTripper the credential injector wraps.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) {
		if rt != nil {
			c.transport = rt
		}
	}
}

// WithLogger sets the client logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithProxyPrefix overrides the local proxy prefix in the destination
// rule (default "/api/").
func WithProxyPrefix(prefix string) Option {
	return func(c *Client) {
		c.rule.ProxyPrefix = prefix
	}
}

// New creates a client for the API at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("upstream: parse base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("upstream: base url %q must be absolute", baseURL)
	}

	c := &Client{
		base:      base,
		transport: http.DefaultTransport,
		rule:      DestinationRule{Host: base.Hostname(), ProxyPrefix: "/api/"},
		tracer:    otel.Tracer(defaultTracerName),
		logger:    slog.Default().With("component", "upstream"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Rule returns the destination rule the client injects credentials by.
func (c *Client) Rule() DestinationRule {
	return c.rule
}

// Response is the relayed result of a forwarded API call. Status may be
// any code the API returned; Body is its raw JSON.
type Response struct {
	Status int
	Body   []byte
}

// OK reports whether the status is in the 2xx range.
func (r *Response) OK() bool {
	return r.Status >= 200 && r.Status < 300
}

// Forward sends one request to the API and buffers the response,
// whatever its status. Transport failures and unreadable bodies return
// an error wrapping ErrUnavailable.
func (c *Client) Forward(ctx context.Context, token, method, path string, body io.Reader) (*Response, error) {
	ctx, span := c.tracer.Start(ctx, "upstream."+method+" "+path,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.method", method),
			attribute.String("http.path", path),
		),
	)
	defer span.End()

	u := c.base.JoinPath(path)
	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("upstream: build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := NewTransport(token, c.rule, c.transport).RoundTrip(req)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		c.logger.Warn("api call failed", "method", method, "path", path, "err", err)
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("%w: read body: %v", ErrUnavailable, err)
	}

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	if resp.StatusCode >= 500 {
		span.SetStatus(codes.Error, resp.Status)
	}
	return &Response{Status: resp.StatusCode, Body: data}, nil
}

// get issues a bearer-authenticated GET and decodes a 2xx body into v.
func (c *Client) get(ctx context.Context, token, path string, v any) error {
	resp, err := c.Forward(ctx, token, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	if !resp.OK() {
		return &StatusError{Status: resp.Status, Body: resp.Body}
	}
	if err := json.Unmarshal(resp.Body, v); err != nil {
		return fmt.Errorf("%w: decode %s: %v", ErrUnavailable, path, err)
	}
	return nil
}

// Me resolves the profile behind a token via GET /users/me. The body is
// decoded defensively: both the {"user": ...} envelope and a bare user
// object are accepted.
func (c *Client) Me(ctx context.Context, token string) (*User, error) {
	resp, err := c.Forward(ctx, token, http.MethodGet, "/users/me", nil)
	if err != nil {
		return nil, err
	}
	if !resp.OK() {
		return nil, &StatusError{Status: resp.Status, Body: resp.Body}
	}
	user, err := decodeUser(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: decode /users/me: %v", ErrUnavailable, err)
	}
	return user, nil
}

// Authenticate exchanges credentials for an opaque bearer token via
// POST /tokens/authentication.
func (c *Client) Authenticate(ctx context.Context, username, password string) (string, error) {
	payload, err := json.Marshal(map[string]string{
		"username": username,
		"password": password,
	})
	if err != nil {
		return "", fmt.Errorf("upstream: encode credentials: %w", err)
	}

	resp, err := c.Forward(ctx, "", http.MethodPost, "/tokens/authentication", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	if !resp.OK() {
		return "", &StatusError{Status: resp.Status, Body: resp.Body}
	}

	var out struct {
		AuthToken string `json:"auth_token"`
	}
	if err := json.Unmarshal(resp.Body, &out); err != nil {
		return "", fmt.Errorf("%w: decode token response: %v", ErrUnavailable, err)
	}
	if out.AuthToken == "" {
		return "", fmt.Errorf("%w: empty auth_token", ErrUnavailable)
	}
	return out.AuthToken, nil
}

// Revoke invalidates a token server-side via the API's revocation
// endpoint. Logout works without it; callers treat failure as
// best-effort.
func (c *Client) Revoke(ctx context.Context, token string) error {
	resp, err := c.Forward(ctx, token, http.MethodDelete, "/tokens/authentication", nil)
	if err != nil {
		return err
	}
	if !resp.OK() {
		return &StatusError{Status: resp.Status, Body: resp.Body}
	}
	return nil
}

// NotesForUser lists a user's notes via GET /user-notes/{id}.
func (c *Client) NotesForUser(ctx context.Context, token string, userID int64) ([]Note, error) {
	var out struct {
		Notes []Note `json:"notes"`
	}
	if err := c.get(ctx, token, fmt.Sprintf("/user-notes/%d", userID), &out); err != nil {
		return nil, err
	}
	return out.Notes, nil
}

// FoldersForUser lists a user's folders via GET /user-folders/{id}.
func (c *Client) FoldersForUser(ctx context.Context, token string, userID int64) ([]Folder, error) {
	var out struct {
		Folders []Folder `json:"folders"`
	}
	if err := c.get(ctx, token, fmt.Sprintf("/user-folders/%d", userID), &out); err != nil {
		return nil, err
	}
	return out.Folders, nil
}
