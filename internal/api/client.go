// Package api is the HTTP client for the narration service.
package api

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

	"github.com/google/uuid"
)

// RequestIDHeader carries a per-request id for correlating client and
// server logs.
const RequestIDHeader = "X-Request-ID"

// Client is a pre-configured HTTP client with a fixed base address.
// It does not retry.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout sets a per-request timeout. Zero keeps the transport default.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient = &http.Client{Transport: c.httpClient.Transport, Timeout: d}
		}
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

// New creates a client for the API rooted at baseURL, which must be absolute.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", baseURL, err)
	}

	if !u.IsAbs() {
		return nil, fmt.Errorf("base URL %q must be absolute", baseURL)
	}

	c := &Client{
		baseURL:    u,
		httpClient: &http.Client{},
		logger:     slog.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// BaseURL returns the configured base address.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// ResolveURL joins path onto the base address. Absolute URLs are returned
// unchanged.
func (c *Client) ResolveURL(path string) (string, error) {
	ref, err := url.Parse(path)
	if err != nil {
		return "", fmt.Errorf("invalid path %q: %w", path, err)
	}

	if ref.IsAbs() {
		return ref.String(), nil
	}

	u := *c.baseURL
	u.Path = strings.TrimRight(u.Path, "/") + "/" + strings.TrimLeft(ref.Path, "/")
	u.RawQuery = ref.RawQuery

	return u.String(), nil
}

// NewRequest builds a request for path relative to the base address. A
// non-empty token is sent as a bearer Authorization header.
func (c *Client) NewRequest(
	ctx context.Context,
	method, path, token string,
	body io.Reader,
) (*http.Request, error) {
	target, err := c.ResolveURL(path)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set(RequestIDHeader, uuid.NewString())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return req, nil
}

// Do sends req untouched and returns the raw response. The caller closes
// the body.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	start := time.Now()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("api request failed",
			"method", req.Method,
			"url", req.URL.String(),
			"request_id", req.Header.Get(RequestIDHeader),
			"error", err,
		)

		return nil, fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}

	c.logger.Debug("api request",
		"method", req.Method,
		"url", req.URL.String(),
		"request_id", req.Header.Get(RequestIDHeader),
		"status", resp.StatusCode,
		"elapsed", time.Since(start),
	)

	return resp, nil
}

// send performs req, turns non-2xx responses into *Error and decodes a
// JSON body into out when out is non-nil.
func (c *Client) send(req *http.Request, out any) error {
	resp, err := c.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := checkResponse(resp); err != nil {
		return err
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

// Get fetches path and decodes the JSON response into out.
func (c *Client) Get(ctx context.Context, path, token string, out any) error {
	req, err := c.NewRequest(ctx, http.MethodGet, path, token, nil)
	if err != nil {
		return err
	}

	req.Header.Set("Accept", "application/json")

	return c.send(req, out)
}

// PostJSON posts body as JSON and decodes the JSON response into out.
func (c *Client) PostJSON(ctx context.Context, path, token string, body, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := c.NewRequest(ctx, http.MethodPost, path, token, bytes.NewReader(data))
	if err != nil {
		return err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	return c.send(req, out)
}

// PostMultipart posts a prepared multipart body with its content type.
func (c *Client) PostMultipart(
	ctx context.Context,
	path, token, contentType string,
	body io.Reader,
	out any,
) error {
	req, err := c.NewRequest(ctx, http.MethodPost, path, token, body)
	if err != nil {
		return err
	}

	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	return c.send(req, out)
}

// GetBytes fetches binary content and returns it with its content type.
func (c *Client) GetBytes(ctx context.Context, path, token string) ([]byte, string, error) {
	req, err := c.NewRequest(ctx, http.MethodGet, path, token, nil)
	if err != nil {
		return nil, "", err
	}

	resp, err := c.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	if err := checkResponse(resp); err != nil {
		return nil, "", err
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read response body: %w", err)
	}

	return data, resp.Header.Get("Content-Type"), nil
}

func checkResponse(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil && !errors.Is(err, io.EOF) {
		body = nil
	}

	return &Error{StatusCode: resp.StatusCode, Detail: parseDetail(body)}
}
