// Package client talks to the read and write endpoints of a jsondesk server.
package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

const (
	ReadPrefix = "/data/"
	SavePrefix = "/admin/save/"
)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the HTTP client used for requests.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.httpClient = h
		}
	}
}

// WithHeaders assigns default headers added to every request.
func WithHeaders(h http.Header) Option {
	return func(c *Client) {
		for k, values := range h {
			for _, v := range values {
				c.headers.Add(k, v)
			}
		}
	}
}

// Client performs single-shot requests; nothing is retried.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	headers    http.Header
}

func New(baseURL string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, errors.New("client: base URL is required")
	}
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("client: invalid base URL: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("client: base URL %q needs scheme and host", baseURL)
	}

	c := &Client{
		baseURL: parsed,
		// No timeout by default: a silent server leaves the call pending
		// until ctx is cancelled.
		httpClient: &http.Client{},
		headers:    make(http.Header),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the server root this client targets.
func (c *Client) BaseURL() string { return c.baseURL.String() }

// ReadFile fetches the raw text of name. The body is returned verbatim.
func (c *Client) ReadFile(ctx context.Context, name string) (string, error) {
	req, err := c.newRequest(ctx, http.MethodGet, ReadPrefix, name, nil)
	if err != nil {
		return "", err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &NetworkError{Op: "read", File: name, Err: err}
	}
	defer closeBody(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(resp.Body)
		return "", &HTTPStatusError{Code: resp.StatusCode, Body: string(body)}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &NetworkError{Op: "read", File: name, Err: err}
	}
	return string(data), nil
}

// SaveFile posts body as the new content of name. The body is sent as-is,
// whether or not it parses as JSON.
func (c *Client) SaveFile(ctx context.Context, name, body string) error {
	req, err := c.newRequest(ctx, http.MethodPost, SavePrefix, name, strings.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &NetworkError{Op: "save", File: name, Err: err}
	}
	defer closeBody(resp.Body)

	if resp.StatusCode >= 200 && resp.StatusCode <= 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	text, err := io.ReadAll(resp.Body)
	if err != nil {
		return &NetworkError{Op: "save", File: name, Err: fmt.Errorf("read error body: %w", err)}
	}
	return &HTTPStatusError{Code: resp.StatusCode, Body: string(text)}
}

func (c *Client) newRequest(ctx context.Context, method, prefix, name string, body io.Reader) (*http.Request, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	full := c.buildURL(prefix, name)
	req, err := http.NewRequestWithContext(ctx, method, full, body)
	if err != nil {
		return nil, err
	}
	for k, values := range c.headers {
		for _, v := range values {
			req.Header.Add(k, v)
		}
	}
	return req, nil
}

// buildURL escapes each segment of name so "a b.json" stays one path element.
func (c *Client) buildURL(prefix, name string) string {
	segs := strings.Split(strings.TrimPrefix(name, "/"), "/")
	for i, s := range segs {
		segs[i] = url.PathEscape(s)
	}
	base := strings.TrimSuffix(c.baseURL.String(), "/")
	return base + prefix + strings.Join(segs, "/")
}

func closeBody(rc io.ReadCloser) {
	if rc != nil {
		_ = rc.Close()
	}
}
