package release

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Error variables for HTTP client errors
var (
	// ErrMaxRetriesExceeded is returned when all retry attempts have failed
	ErrMaxRetriesExceeded = errors.New("max retries exceeded")
)

// RetryConfig holds configuration for retry behavior.
type RetryConfig struct {
	// MaxRetries is the maximum number of retry attempts
	MaxRetries int
	// BaseDelay is the initial delay before the first retry
	BaseDelay time.Duration
	// MaxDelay is the maximum delay between retries
	MaxDelay time.Duration
	// Timeout is the timeout for each individual request
	Timeout time.Duration
}

// DefaultRetryConfig returns the retry configuration for explicit,
// user-initiated operations (install, upgrade, uninstall): the user is
// actively waiting, so it retries with exponential backoff.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries: 3,
		BaseDelay:  1 * time.Second,
		MaxDelay:   4 * time.Second,
		Timeout:    60 * time.Second,
	}
}

// BackgroundRetryConfig returns the configuration for the best-effort
// background update check: one attempt with a short bound, so a slow
// network never noticeably delays the user's underlying command.
func BackgroundRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries: 0,
		Timeout:    3 * time.Second,
	}
}

// Client wraps an HTTP client with retry logic and exponential backoff.
type Client struct {
	httpClient *http.Client
	config     RetryConfig
	// delayFunc allows overriding the backoff sleep for testing
	delayFunc func(time.Duration)
}

// NewClient creates a client with the given retry configuration.
func NewClient(config RetryConfig) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: config.Timeout},
		config:     config,
		delayFunc:  time.Sleep,
	}
}

// SetDelayFunc sets a custom delay function (useful for testing).
func (c *Client) SetDelayFunc(fn func(time.Duration)) {
	c.delayFunc = fn
}

// Get performs an HTTP GET with retry on network errors, 5xx responses,
// and 429 responses.
func (c *Client) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	return c.Do(req)
}

// Do executes a request with retry logic.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	var lastErr error

	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		if attempt > 0 {
			c.delayFunc(c.backoff(attempt))
		}

		resp, err := c.httpClient.Do(req.Clone(ctx))
		if err != nil {
			lastErr = err
			continue
		}

		if shouldRetry(resp.StatusCode) {
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			lastErr = fmt.Errorf("server error: status %d", resp.StatusCode)
			continue
		}

		return resp, nil
	}

	return nil, fmt.Errorf("%w: %v", ErrMaxRetriesExceeded, lastErr)
}

// backoff calculates the delay for a retry attempt: baseDelay * 2^(attempt-1),
// capped at MaxDelay.
func (c *Client) backoff(attempt int) time.Duration {
	delay := c.config.BaseDelay * time.Duration(1<<(attempt-1))
	if delay > c.config.MaxDelay {
		delay = c.config.MaxDelay
	}
	return delay
}

// shouldRetry reports whether a status code warrants another attempt.
func shouldRetry(statusCode int) bool {
	if statusCode >= 500 && statusCode < 600 {
		return true
	}
	return statusCode == http.StatusTooManyRequests
}
