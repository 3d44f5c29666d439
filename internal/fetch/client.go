package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Common errors.
var (
	ErrNotFound     = errors.New("fetch: resource not found")
	ErrForbidden    = errors.New("fetch: access forbidden")
	ErrUnauthorized = errors.New("fetch: unauthorized")
	ErrServerError  = errors.New("fetch: server error")
)

// Options configures the HTTP client.
type Options struct {
	// MaxIdleConnsPerHost sets the maximum idle connections per host.
	// Default: 32
	MaxIdleConnsPerHost int

	// Timeout for individual requests. Zero means no timeout: tile servers
	// are left on the transport's defaults unless the caller opts in.
	Timeout time.Duration

	// UserAgent is sent with every request. Some tile servers refuse
	// non-browser agents, so the default impersonates one.
	UserAgent string

	// Referer is sent with every request.
	Referer string
}

// DefaultOptions returns options with sensible defaults.
func DefaultOptions() Options {
	return Options{
		MaxIdleConnsPerHost: 32,
		UserAgent: "Mozilla/5.0 (Windows; U; Windows NT 5.1; en-US) " +
			"AppleWebKit/525.13 (KHTML, like Gecko) Chrome/0.A.B.C Safari/525.13",
		Referer: "http://google.com",
	}
}

// Client fetches tiles and metadata documents over HTTP.
//
// There is deliberately no retry logic: a tile that fails once is excluded
// from the composite, and the caller degrades gracefully instead.
type Client struct {
	client *http.Client
	opts   Options
}

// NewClient creates a new HTTP client with the given options.
func NewClient(opts Options) *Client {
	if opts.MaxIdleConnsPerHost <= 0 {
		opts.MaxIdleConnsPerHost = 32
	}

	transport := &http.Transport{
		MaxIdleConnsPerHost: opts.MaxIdleConnsPerHost,
		MaxIdleConns:        opts.MaxIdleConnsPerHost * 2,
		IdleConnTimeout:     90 * time.Second,
	}

	return &Client{
		client: &http.Client{
			Transport: transport,
			Timeout:   opts.Timeout,
		},
		opts: opts,
	}
}

// Get performs a GET request and returns the response body. The caller must
// close it. Non-success status codes are mapped to sentinel errors.
func (c *Client) Get(ctx context.Context, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if c.opts.UserAgent != "" {
		req.Header.Set("User-Agent", c.opts.UserAgent)
	}
	if c.opts.Referer != "" {
		req.Header.Set("Referer", c.opts.Referer)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}

	if err := checkStatusCode(resp.StatusCode); err != nil {
		resp.Body.Close()
		return nil, err
	}

	return resp.Body, nil
}

// GetBytes performs a GET request and reads the whole body.
func (c *Client) GetBytes(ctx context.Context, url string) ([]byte, error) {
	body, err := c.Get(ctx, url)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", url, err)
	}
	return data, nil
}

// checkStatusCode returns an appropriate error for non-success status codes.
func checkStatusCode(code int) error {
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusNotFound:
		return ErrNotFound
	case code == http.StatusForbidden:
		return ErrForbidden
	case code == http.StatusUnauthorized:
		return ErrUnauthorized
	case code >= 500:
		return fmt.Errorf("%w: %d", ErrServerError, code)
	default:
		return fmt.Errorf("unexpected status code: %d", code)
	}
}
