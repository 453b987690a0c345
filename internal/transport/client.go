package transport

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/net/proxy"
)

// Options configures NewClient.
type Options struct {
	// Timeout bounds each request, including reading the body.
	Timeout time.Duration

	// PoolSize sizes the idle connection pool so a wave can reuse the
	// connections of the previous one.
	PoolSize int

	// ProxyAddress is a SOCKS5 proxy in "host:port" format. Empty dials directly.
	ProxyAddress string

	// UserAgent is set on requests that do not carry one.
	UserAgent string

	// Headers are set on every request.
	Headers map[string]string
}

// NewClient creates an HTTP client for load generation.
//
// Redirects are not followed: a redirect response is itself a completed
// request, and following it would send extra requests the wave did not ask for.
func NewClient(opts Options) (*http.Client, error) {
	dialer := &net.Dialer{
		Timeout:   opts.Timeout,
		KeepAlive: 30 * time.Second,
	}

	t := &http.Transport{
		Proxy:               nil,
		DialContext:         dialer.DialContext,
		MaxIdleConns:        opts.PoolSize,
		MaxIdleConnsPerHost: opts.PoolSize,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: opts.Timeout,
		ForceAttemptHTTP2:   true,
	}

	if opts.ProxyAddress != "" {
		if !IsValidProxyAddress(opts.ProxyAddress) {
			return nil, ErrInvalidProxyAddress
		}
		socks, err := proxy.SOCKS5("tcp", opts.ProxyAddress, nil, dialer)
		if err != nil {
			return nil, fmt.Errorf("failed to create SOCKS5 dialer: %w", err)
		}
		t.DialContext = contextDialer(socks)
	}

	var rt http.RoundTripper = t
	if opts.UserAgent != "" || len(opts.Headers) > 0 {
		rt = &headerTransport{
			base:      t,
			userAgent: opts.UserAgent,
			headers:   opts.Headers,
		}
	}

	return &http.Client{
		Transport: rt,
		Timeout:   opts.Timeout,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}, nil
}

// contextDialer adapts a proxy.Dialer to the DialContext signature.
// The dialers returned by proxy.SOCKS5 implement proxy.ContextDialer;
// others fall back to a plain Dial that ignores ctx.
func contextDialer(d proxy.Dialer) func(ctx context.Context, network, addr string) (net.Conn, error) {
	if cd, ok := d.(proxy.ContextDialer); ok {
		return cd.DialContext
	}
	return func(_ context.Context, network, addr string) (net.Conn, error) {
		return d.Dial(network, addr)
	}
}

// IsValidProxyAddress reports whether address is "host:port" with a
// non-empty host and a port in 1..65535.
func IsValidProxyAddress(address string) bool {
	host, port, err := net.SplitHostPort(address)
	if err != nil || host == "" {
		return false
	}
	n, err := strconv.Atoi(port)
	if err != nil {
		return false
	}
	return n >= 1 && n <= 65535
}

// headerTransport injects static headers into every request.
type headerTransport struct {
	base      http.RoundTripper
	userAgent string
	headers   map[string]string
}

// RoundTrip implements http.RoundTripper.
func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())
	for k, v := range t.headers {
		clone.Header.Set(k, v)
	}
	if t.userAgent != "" && clone.Header.Get("User-Agent") == "" {
		clone.Header.Set("User-Agent", t.userAgent)
	}
	return t.base.RoundTrip(clone)
}
