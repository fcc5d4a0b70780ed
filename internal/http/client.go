package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// DefaultUserAgent is sent when ClientConfig.UserAgent is empty.
const DefaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64; rv:128.0) Gecko/20100101 Firefox/128.0"

const defaultTimeout = 60 * time.Second

// ErrTransport marks every failure that happened while talking to a remote
// host: connection errors, protocol errors and non-2xx responses.
//
// Transport errors are recoverable by retrying at the caller's discretion;
// this package never retries on its own.
var ErrTransport = errors.New("transport error")

// StatusError is returned when the server answers with a non-2xx status.
// It unwraps to ErrTransport.
type StatusError struct {
	URL        string
	StatusCode int
	Status     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d: %s (%s)", e.StatusCode, e.Status, e.URL)
}

// Unwrap lets errors.Is(err, ErrTransport) match status failures.
func (e *StatusError) Unwrap() error { return ErrTransport }

// ClientConfig holds optional tuning for NewClient. Zero values select defaults.
type ClientConfig struct {
	// UserAgent sent with every request. SoundCloud serves a stripped-down
	// page to unknown agents, so the default mimics a desktop browser.
	UserAgent string

	// Timeout bounds a single request including the body read.
	Timeout time.Duration

	// RequestsPerSecond throttles all requests issued through the client.
	// Zero or negative disables throttling.
	RequestsPerSecond float64

	// HTTPClient overrides the underlying client (tests use httptest clients).
	HTTPClient *http.Client
}

// Client wraps HTTP operations for the SoundCloud web and API hosts.
//
// Client provides:
//   - Browser-like User-Agent header
//   - Timeout handling
//   - Optional request throttling shared by all goroutines
//   - Byte retrieval for pages, scripts, JSON documents and media segments
//
// A Client holds no per-request state and is safe for concurrent use.
//
// Example usage:
//
//	client := NewClient(ClientConfig{})
//
//	// Fetch a page
//	html, err := client.Get(ctx, "https://soundcloud.com/artist/track")
//
//	// Fetch a media segment
//	segment, err := client.Get(ctx, segmentURL)
type Client struct {
	httpClient *http.Client
	userAgent  string
	limiter    *rate.Limiter
}

// NewClient creates a new HTTP client.
//
// The client is configured with:
//   - 60 second timeout unless cfg.Timeout is set
//   - a desktop browser User-Agent unless cfg.UserAgent is set
//   - a token bucket limiter when cfg.RequestsPerSecond > 0
func NewClient(cfg ClientConfig) *Client {
	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}

	var limiter *rate.Limiter
	if cfg.RequestsPerSecond > 0 {
		burst := int(cfg.RequestsPerSecond)
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}

	return &Client{
		httpClient: httpClient,
		userAgent:  userAgent,
		limiter:    limiter,
	}
}

// Get performs a GET request and returns the response body as bytes.
//
// Returns an error wrapping ErrTransport if:
//   - The request cannot be sent or the connection fails
//   - The response status is not 2xx (a *StatusError)
//   - Reading the body fails
//
// An empty body is not an error.
//
// Example:
//
//	data, err := client.Get(ctx, "https://i1.sndcdn.com/artworks-000-t500x500.jpg")
func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	resp, err := c.do(ctx, http.MethodGet, url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{URL: url, StatusCode: resp.StatusCode, Status: resp.Status}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read body of %s: %w", ErrTransport, url, err)
	}
	return body, nil
}

func (c *Client) do(ctx context.Context, method, url string) (*http.Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%w: throttle %s: %w", ErrTransport, url, err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request for %s: %w", ErrTransport, url, err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTransport, err)
	}
	return resp, nil
}
