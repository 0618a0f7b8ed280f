// Package aur is a client for the AUR RPC interface (aurweb /rpc/v5).
package aur

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenk/backoff"
	"github.com/rs/dnscache"

	"github.com/obentoo/qmaur/internal/common/logger"
)

const (
	DefaultBaseURL = "https://aur.archlinux.org"
	// DefaultChunkSize bounds the number of names per info request
	DefaultChunkSize  = 150
	DefaultTimeout    = 30 * time.Second
	DefaultMaxRetries = 2

	maxErrorBody = 4096
)

// Lookup defines the remote queries used by qmaur.
// This interface allows for mocking the AUR in tests.
type Lookup interface {
	// Info fetches full metadata for the given package names.
	// Names unknown to the AUR are simply absent from the result.
	Info(ctx context.Context, names []string) ([]Package, error)

	// Search runs a keyword search against the given field
	Search(ctx context.Context, query string, by SearchBy) ([]Package, error)
}

// Client handles communication with the AUR RPC interface
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	maxRetries int
	chunkSize  int
	newBackOff func() backoff.BackOff
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at another aurweb instance
func WithBaseURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.baseURL = strings.TrimRight(u, "/")
		}
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithTimeout sets the per-request timeout. Zero disables it.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithMaxRetries sets how often a retryable failure is retried.
func WithMaxRetries(n int) Option {
	return func(c *Client) {
		if n >= 0 {
			c.maxRetries = n
		}
	}
}

// WithChunkSize sets the number of names per info request.
func WithChunkSize(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.chunkSize = n
		}
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithBackOff sets the delay policy between retries.
func WithBackOff(fn func() backoff.BackOff) Option {
	return func(c *Client) {
		c.newBackOff = fn
	}
}

// NewClient creates a new AUR client with the given options.
func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL:   DefaultBaseURL,
		userAgent: "qmaur",
		httpClient: &http.Client{
			Timeout:   DefaultTimeout,
			Transport: newTransport(),
		},
		maxRetries: DefaultMaxRetries,
		chunkSize:  DefaultChunkSize,
		newBackOff: defaultBackOff,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the aurweb root the client talks to
func (c *Client) BaseURL() string {
	return c.baseURL
}

func defaultBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxInterval = 5 * time.Second
	b.Multiplier = 2.0
	b.MaxElapsedTime = 30 * time.Second
	return b
}

// newTransport returns an HTTP transport resolving hosts through a DNS cache.
// Info lookups for large inventories issue several requests to one host.
func newTransport() *http.Transport {
	resolver := &dnscache.Resolver{}
	dialer := &net.Dialer{
		Timeout:   15 * time.Second,
		KeepAlive: 30 * time.Second,
	}

	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
			host, port, err := net.SplitHostPort(addr)
			if err != nil {
				return nil, err
			}
			ips, err := resolver.LookupHost(ctx, host)
			if err != nil {
				return nil, err
			}
			var lastErr error
			for _, ip := range ips {
				conn, err := dialer.DialContext(ctx, network, net.JoinHostPort(ip, port))
				if err == nil {
					return conn, nil
				}
				lastErr = err
			}
			if lastErr == nil {
				lastErr = fmt.Errorf("no addresses for %s", host)
			}
			return nil, lastErr
		},
		MaxIdleConns:          10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
}

// Info fetches metadata for names, splitting them into sequential
// requests of at most chunkSize names each.
func (c *Client) Info(ctx context.Context, names []string) ([]Package, error) {
	var results []Package

	for start := 0; start < len(names); start += c.chunkSize {
		end := min(start+c.chunkSize, len(names))

		query := url.Values{}
		for _, name := range names[start:end] {
			query.Add("arg[]", name)
		}
		reqURL := c.baseURL + "/rpc/v5/info?" + query.Encode()

		logger.Debug("querying AUR for %d packages (%d-%d of %d)", end-start, start+1, end, len(names))
		resp, err := c.get(ctx, reqURL)
		if err != nil {
			return nil, err
		}
		results = append(results, resp.Results...)
	}

	return results, nil
}

// Search runs a search query. by defaults to name-desc.
func (c *Client) Search(ctx context.Context, query string, by SearchBy) ([]Package, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}
	if by == "" {
		by = ByNameDesc
	}
	if !by.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidSearchField, by)
	}

	reqURL := fmt.Sprintf("%s/rpc/v5/search/%s?by=%s", c.baseURL, url.PathEscape(query), url.QueryEscape(string(by)))

	logger.Debug("searching AUR for %q by %s", query, by)
	resp, err := c.get(ctx, reqURL)
	if err != nil {
		return nil, err
	}
	return resp.Results, nil
}

// get performs a request, retrying transient failures with backoff
func (c *Client) get(ctx context.Context, reqURL string) (*response, error) {
	b := c.newBackOff()
	b.Reset()

	for attempt := 0; ; attempt++ {
		resp, err := c.fetch(ctx, reqURL)
		if err == nil {
			return resp, nil
		}
		if attempt >= c.maxRetries || !isRetryable(err) {
			return nil, err
		}

		delay := b.NextBackOff()
		if delay == backoff.Stop {
			return nil, err
		}
		logger.Debug("AUR request failed (%v), retrying in %s", err, delay)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}
}

// fetch performs a single request and decodes the RPC envelope
func (c *Client) fetch(ctx context.Context, reqURL string) (*response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	logger.Trace("GET %s", reqURL)
	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &transportError{err: err}
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(httpResp.Body, maxErrorBody))
		var env response
		if json.Unmarshal(body, &env) == nil && env.Type == "error" && env.Error != "" {
			return nil, &ServiceError{StatusCode: httpResp.StatusCode, Message: env.Error}
		}
		return nil, &HTTPError{StatusCode: httpResp.StatusCode, URL: reqURL, Body: string(body)}
	}

	var env response
	if err := json.NewDecoder(httpResp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if env.Type == "error" {
		return nil, &ServiceError{StatusCode: httpResp.StatusCode, Message: env.Error}
	}
	logger.Trace("AUR answered %d results (type %s, version %d)", env.ResultCount, env.Type, env.Version)

	return &env, nil
}

var _ Lookup = (*Client)(nil)
