// Package fetch wraps HTTP retrieval for the scrapers: a shared
// User-Agent and a bounded retry policy with backoff, so transient
// failures at the source site never bubble past this layer until the
// retry budget is exhausted.
package fetch

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// DefaultUserAgent identifies the project to agency webmasters.
const DefaultUserAgent = "Big Local News (biglocalnews.org)"

const (
	defaultRetries      = 3
	defaultRetryWait    = 15 * time.Second
	defaultRetryMaxWait = 60 * time.Second
	defaultTimeout      = 30 * time.Second
)

// Client retrieves pages over HTTP with retries.
type Client struct {
	http *resty.Client
}

// Option adjusts a Client at construction time.
type Option func(*resty.Client)

// WithUserAgent overrides the default User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *resty.Client) { c.SetHeader("User-Agent", ua) }
}

// WithHeader sets an extra header sent with every request, e.g. an API
// token for sites that grant authenticated access to embargoed pages.
func WithHeader(key, value string) Option {
	return func(c *resty.Client) { c.SetHeader(key, value) }
}

// WithTimeout overrides the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *resty.Client) { c.SetTimeout(d) }
}

// WithRetryWait overrides the initial and maximum retry waits. Tests use
// this to avoid real backoff sleeps.
func WithRetryWait(wait, max time.Duration) Option {
	return func(c *resty.Client) {
		c.SetRetryWaitTime(wait)
		c.SetRetryMaxWaitTime(max)
	}
}

// New creates a Client. Non-2xx responses and transport errors are
// retried up to the retry budget with exponential backoff.
func New(opts ...Option) *Client {
	c := resty.New()
	c.SetHeader("User-Agent", DefaultUserAgent)
	c.SetTimeout(defaultTimeout)
	c.SetRetryCount(defaultRetries - 1)
	c.SetRetryWaitTime(defaultRetryWait)
	c.SetRetryMaxWaitTime(defaultRetryMaxWait)
	c.AddRetryCondition(func(r *resty.Response, err error) bool {
		return err != nil || r.IsError()
	})
	for _, opt := range opts {
		opt(c)
	}
	return &Client{http: c}
}

// Get requests the URL and returns the response body. A non-2xx status
// after all retries is an error; callers treat it as fatal for the run.
func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	res, err := c.http.R().SetContext(ctx).Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	if res.IsError() {
		return nil, fmt.Errorf("failed to fetch %s: HTTP %d", url, res.StatusCode())
	}
	return res.Body(), nil
}
