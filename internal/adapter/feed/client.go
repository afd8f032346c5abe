// Package feed implements adapter.Adapter for bookmakers exposing a JSON
// feed with /leagues, /fixtures and /odds endpoints.
package feed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"odds-aggregator/internal/adapter"
	"odds-aggregator/internal/observability"
)

// Default configuration values.
const (
	DefaultTimeout     = 30 * time.Second
	DefaultMaxRetries  = 2
	DefaultRetryDelay  = 1 * time.Second
	DefaultMaxDelay    = 10 * time.Second
	DefaultBackoffMult = 2.0
)

// Client fetches a bookmaker feed over HTTP, rotating through proxies
// when a request cannot reach the feed.
type Client struct {
	name        string
	baseURL     string
	timeout     time.Duration
	maxRetries  int
	retryDelay  time.Duration
	maxDelay    time.Duration
	backoffMult float64
	proxies     []string
	clients     []*http.Client // one per proxy, or one direct
	next        atomic.Uint64
	logger      *zap.Logger
}

// Option configures Client.
type Option func(*Client)

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithMaxRetries sets maximum retry attempts. Negative values mean no retries.
func WithMaxRetries(n int) Option {
	return func(c *Client) {
		c.maxRetries = n
	}
}

// WithRetryDelay sets initial retry delay.
func WithRetryDelay(d time.Duration) Option {
	return func(c *Client) {
		c.retryDelay = d
	}
}

// WithMaxDelay sets maximum retry delay.
func WithMaxDelay(d time.Duration) Option {
	return func(c *Client) {
		c.maxDelay = d
	}
}

// WithProxies sets the proxy URLs requests rotate through.
func WithProxies(proxies ...string) Option {
	return func(c *Client) {
		c.proxies = proxies
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

// New creates a feed adapter for the source name at baseURL.
func New(name, baseURL string, opts ...Option) (*Client, error) {
	c := &Client{
		name:        name,
		baseURL:     strings.TrimRight(baseURL, "/"),
		timeout:     DefaultTimeout,
		maxRetries:  DefaultMaxRetries,
		retryDelay:  DefaultRetryDelay,
		maxDelay:    DefaultMaxDelay,
		backoffMult: DefaultBackoffMult,
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.maxRetries < 0 {
		c.maxRetries = 0
	}

	if _, err := url.ParseRequestURI(c.baseURL); err != nil {
		return nil, fmt.Errorf("feed %s: base url: %w", name, err)
	}

	if len(c.proxies) == 0 {
		c.clients = []*http.Client{{Timeout: c.timeout}}
		return c, nil
	}
	for _, p := range c.proxies {
		proxyURL, err := url.Parse(p)
		if err != nil {
			return nil, fmt.Errorf("feed %s: proxy %q: %w", name, p, err)
		}
		transport := http.DefaultTransport.(*http.Transport).Clone()
		transport.Proxy = http.ProxyURL(proxyURL)
		c.clients = append(c.clients, &http.Client{Timeout: c.timeout, Transport: transport})
	}
	return c, nil
}

// Name returns the source name.
func (c *Client) Name() string {
	return c.name
}

// statusError is a non-200 response.
type statusError struct {
	code int
	body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.code, e.body)
}

func (e *statusError) retryable() bool {
	return e.code == http.StatusTooManyRequests || e.code >= 500
}

// get fetches path and decodes the JSON body into result, with retries
// and exponential backoff. Unreachable feeds rotate to the next proxy.
func (c *Client) get(ctx context.Context, path string, result interface{}) error {
	endpoint := c.baseURL + path
	delay := c.retryDelay
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
			delay = time.Duration(float64(delay) * c.backoffMult)
			if delay > c.maxDelay {
				delay = c.maxDelay
			}
		}

		idx := int(c.next.Load() % uint64(len(c.clients)))
		body, err := c.do(ctx, idx, endpoint)
		if err == nil {
			if err := json.Unmarshal(body, result); err != nil {
				return fmt.Errorf("decode %s: %w", endpoint, err)
			}
			return nil
		}

		if ctx.Err() != nil {
			return ctx.Err()
		}

		var se *statusError
		if errors.As(err, &se) {
			if !se.retryable() {
				return fmt.Errorf("get %s: %w", endpoint, err)
			}
			lastErr = fmt.Errorf("get %s: %w", endpoint, err)
		} else {
			lastErr = &adapter.NetworkError{URL: endpoint, Proxy: c.proxyAt(idx), Err: err}
			c.next.Add(1)
		}

		c.logger.Warn("feed request failed",
			zap.String("source", c.name),
			zap.String("url", endpoint),
			zap.Int("attempt", attempt+1),
			zap.Error(err))
	}

	return fmt.Errorf("max retries exceeded: %w", lastErr)
}

func (c *Client) do(ctx context.Context, idx int, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.clients[idx].Do(req)
	if err != nil {
		observability.RecordAdapterRequest(c.name, "error", time.Since(start).Seconds())
		return nil, err
	}
	defer resp.Body.Close()
	observability.RecordAdapterRequest(c.name, strconv.Itoa(resp.StatusCode), time.Since(start).Seconds())

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		if len(body) > 256 {
			body = body[:256]
		}
		return nil, &statusError{code: resp.StatusCode, body: string(body)}
	}
	return body, nil
}

func (c *Client) proxyAt(idx int) string {
	if idx < len(c.proxies) {
		return c.proxies[idx]
	}
	return ""
}
