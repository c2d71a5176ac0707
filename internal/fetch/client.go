package fetch

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/proxy"
)

const (
	// DefaultUserAgent is the browser identification sent with every request.
	// Some portals reject clients that do not look like a desktop browser.
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

	// DefaultHeadTimeout bounds reachability probes.
	DefaultHeadTimeout = 10 * time.Second

	// DefaultGetTimeout bounds full page fetches.
	DefaultGetTimeout = 15 * time.Second

	// DefaultMaxBodySize caps the decoded size of a page body (10MB).
	DefaultMaxBodySize int64 = 10 * 1024 * 1024

	// maxRedirects is the number of redirects followed before giving up.
	maxRedirects = 10
)

// Response is the part of an HTTP response the crawler cares about.
type Response struct {
	// StatusCode is the status of the final response after redirects.
	StatusCode int

	// FinalURL is the URL of the final response after redirects.
	FinalURL string

	// ContentType is the Content-Type header of the final response.
	ContentType string

	// Body is the decoded response body. It is empty for HEAD requests.
	Body []byte
}

// OK reports whether the final status is 200.
func (r *Response) OK() bool {
	return r != nil && r.StatusCode == http.StatusOK
}

// Client performs HEAD and GET requests.
// A Client is safe for concurrent use.
type Client struct {
	httpClient  *http.Client
	userAgent   string
	headers     map[string]string
	headTimeout time.Duration
	getTimeout  time.Duration
	maxBodySize int64
	proxyAddr   string
	limiter     *HostLimiter
	logger      *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithUserAgent overrides the browser User-Agent.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithHeaders adds headers sent with every request.
// A "User-Agent" entry is ignored; use WithUserAgent instead.
func WithHeaders(headers map[string]string) Option {
	return func(c *Client) {
		for k, v := range headers {
			if strings.EqualFold(k, "User-Agent") {
				continue
			}
			c.headers[k] = v
		}
	}
}

// WithHeadTimeout sets the timeout for HEAD probes.
func WithHeadTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.headTimeout = d
		}
	}
}

// WithGetTimeout sets the timeout for GET fetches.
func WithGetTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.getTimeout = d
		}
	}
}

// WithMaxBodySize sets the maximum decoded body size.
func WithMaxBodySize(size int64) Option {
	return func(c *Client) {
		if size > 0 {
			c.maxBodySize = size
		}
	}
}

// WithProxy routes all connections through a SOCKS5 proxy at addr ("host:port").
func WithProxy(addr string) Option {
	return func(c *Client) {
		c.proxyAddr = addr
	}
}

// WithLimiter makes the client wait on a shared HostLimiter before each request.
func WithLimiter(l *HostLimiter) Option {
	return func(c *Client) {
		c.limiter = l
	}
}

// WithHTTPClient replaces the underlying http.Client.
// The redirect policy of the given client is replaced with the default one.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient creates a Client with browser defaults.
func NewClient(opts ...Option) (*Client, error) {
	c := &Client{
		userAgent:   DefaultUserAgent,
		headers:     make(map[string]string),
		headTimeout: DefaultHeadTimeout,
		getTimeout:  DefaultGetTimeout,
		maxBodySize: DefaultMaxBodySize,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.httpClient == nil {
		transport := &http.Transport{
			Proxy:                 http.ProxyFromEnvironment,
			DialContext:           (&net.Dialer{Timeout: 10 * time.Second, KeepAlive: 30 * time.Second}).DialContext,
			TLSHandshakeTimeout:   10 * time.Second,
			MaxIdleConns:          100,
			IdleConnTimeout:       90 * time.Second,
			ExpectContinueTimeout: 1 * time.Second,
		}
		if c.proxyAddr != "" {
			dialer, err := socksDialer(c.proxyAddr)
			if err != nil {
				return nil, err
			}
			transport.Proxy = nil
			transport.DialContext = dialer.DialContext
		}
		c.httpClient = &http.Client{Transport: transport}
	} else {
		// Copy so the caller's client keeps its own redirect policy.
		hc := *c.httpClient
		c.httpClient = &hc
	}
	c.httpClient.CheckRedirect = checkRedirect

	return c, nil
}

// socksDialer builds a SOCKS5 dialer for addr.
func socksDialer(addr string) (proxy.ContextDialer, error) {
	host, port, err := net.SplitHostPort(addr)
	if err != nil || host == "" || port == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidProxyAddress, addr)
	}
	d, err := proxy.SOCKS5("tcp", addr, nil, proxy.Direct)
	if err != nil {
		return nil, fmt.Errorf("failed to create SOCKS5 dialer: %w", err)
	}
	cd, ok := d.(proxy.ContextDialer)
	if !ok {
		return nil, errors.New("SOCKS5 dialer does not support contexts")
	}
	return cd, nil
}

func checkRedirect(_ *http.Request, via []*http.Request) error {
	if len(via) >= maxRedirects {
		return fmt.Errorf("stopped after %d redirects", maxRedirects)
	}
	return nil
}

// UserAgent returns the User-Agent the client sends.
func (c *Client) UserAgent() string {
	return c.userAgent
}

// Head probes rawURL with a HEAD request, following redirects.
func (c *Client) Head(ctx context.Context, rawURL string) (*Response, error) {
	ctx, cancel := context.WithTimeout(ctx, c.headTimeout)
	defer cancel()

	resp, err := c.do(ctx, http.MethodHead, rawURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	return &Response{
		StatusCode:  resp.StatusCode,
		FinalURL:    finalURL(resp, rawURL),
		ContentType: resp.Header.Get("Content-Type"),
	}, nil
}

// Get fetches rawURL with a GET request and returns the decoded body.
func (c *Client) Get(ctx context.Context, rawURL string) (*Response, error) {
	ctx, cancel := context.WithTimeout(ctx, c.getTimeout)
	defer cancel()

	resp, err := c.do(ctx, http.MethodGet, rawURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := readBody(resp, c.maxBodySize)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrFetchFailed, rawURL, err)
	}

	return &Response{
		StatusCode:  resp.StatusCode,
		FinalURL:    finalURL(resp, rawURL),
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
	}, nil
}

func (c *Client) do(ctx context.Context, method, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %w", ErrFetchFailed, err)
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx, req.URL.Host); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrFetchFailed, rawURL, err)
		}
	}

	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Encoding", "gzip, deflate, br")
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("request failed", "method", method, "url", rawURL, "error", err)
		if isTLSError(err) {
			return nil, fmt.Errorf("%w: %s: %w", ErrTLS, rawURL, err)
		}
		return nil, fmt.Errorf("%w: %s: %w", ErrFetchFailed, rawURL, err)
	}
	c.logger.Debug("request done", "method", method, "url", rawURL, "status", resp.StatusCode)
	return resp, nil
}

// finalURL returns the URL of the last request in the redirect chain.
func finalURL(resp *http.Response, fallback string) string {
	if resp.Request != nil && resp.Request.URL != nil {
		return resp.Request.URL.String()
	}
	return fallback
}

// isTLSError reports whether err stems from the TLS layer.
func isTLSError(err error) bool {
	var (
		verifyErr  *tls.CertificateVerificationError
		recordErr  tls.RecordHeaderError
		alertErr   tls.AlertError
		authErr    x509.UnknownAuthorityError
		hostErr    x509.HostnameError
		invalidErr x509.CertificateInvalidError
	)
	switch {
	case errors.As(err, &verifyErr),
		errors.As(err, &recordErr),
		errors.As(err, &alertErr),
		errors.As(err, &authErr),
		errors.As(err, &hostErr),
		errors.As(err, &invalidErr):
		return true
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		msg := urlErr.Err.Error()
		return strings.Contains(msg, "tls: ") || strings.Contains(msg, plainHTTPResponse)
	}
	return false
}

// plainHTTPResponse is the transport's error text when an https:// request is
// answered by a plain HTTP server. The handshake failed, so it counts as TLS.
const plainHTTPResponse = "server gave HTTP response to HTTPS client"
