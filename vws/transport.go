package vws

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"
)

// DefaultTimeout bounds a whole exchange when no timeout is configured.
const DefaultTimeout = 30 * time.Second

// Transport sends a signed Request and returns the raw response. It never
// retries and never interprets status codes.
//
// Implementations return *NetworkError when no response was received, or
// the context error when ctx was cancelled by the caller.
type Transport interface {
	Do(ctx context.Context, req *Request) (*Response, error)
}

// Timeouts configures an HTTPTransport. Either Total bounds the whole
// exchange, or Connect and Read bound the two phases separately. When both
// forms are set the phase limits apply inside the total.
//
// Without Total the exchange is still bounded by Connect plus Read, where an
// unset phase counts as DefaultTimeout. Read covers waiting for the headers
// and reading the body.
type Timeouts struct {
	Total   time.Duration
	Connect time.Duration
	Read    time.Duration
}

func (t Timeouts) budget() time.Duration {
	if t.Total > 0 {
		return t.Total
	}
	if t.Connect <= 0 && t.Read <= 0 {
		return DefaultTimeout
	}
	return orDefault(t.Connect) + orDefault(t.Read)
}

func orDefault(d time.Duration) time.Duration {
	if d > 0 {
		return d
	}
	return DefaultTimeout
}

// HTTPTransport is the net/http backed Transport.
type HTTPTransport struct {
	client   *http.Client
	timeouts Timeouts
}

var _ Transport = (*HTTPTransport)(nil)

// NewHTTPTransport builds a transport with the given timeouts. skipVerify
// disables TLS certificate verification and is only meant for test doubles.
func NewHTTPTransport(timeouts Timeouts, skipVerify bool) *HTTPTransport {
	base := http.DefaultTransport.(*http.Transport).Clone()
	if timeouts.Connect > 0 {
		base.DialContext = (&net.Dialer{Timeout: timeouts.Connect, KeepAlive: 30 * time.Second}).DialContext
		base.TLSHandshakeTimeout = timeouts.Connect
	}
	if timeouts.Read > 0 {
		base.ResponseHeaderTimeout = timeouts.Read
	}
	if skipVerify {
		base.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // opt-in for local fakes
	}

	client := &http.Client{
		Transport: base,
		Timeout:   timeouts.budget(),
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	return &HTTPTransport{client: client, timeouts: timeouts}
}

// Do sends req and reads the full response body.
func (t *HTTPTransport) Do(ctx context.Context, req *Request) (*Response, error) {
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, bytes.NewReader(req.Body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	for key, values := range req.Header {
		for _, v := range values {
			httpReq.Header.Add(key, v)
		}
	}
	httpReq.ContentLength = int64(len(req.Body))

	resp, err := t.client.Do(httpReq)
	if err != nil {
		return nil, t.classify(ctx, req, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, t.classify(ctx, req, err)
	}

	return &Response{
		StatusCode:  resp.StatusCode,
		Header:      resp.Header.Clone(),
		Body:        body,
		Method:      req.Method,
		URL:         req.URL,
		APIPath:     req.Path,
		RequestBody: req.Body,
	}, nil
}

// classify maps a failed exchange onto the two transport error kinds. A
// context cancelled by the caller is returned as is.
func (t *HTTPTransport) classify(ctx context.Context, req *Request, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(ctxErr, context.Canceled) {
		return fmt.Errorf("%s %s: %w", req.Method, req.Path, ctxErr)
	}
	netErr := &NetworkError{
		Kind:    KindConnectionFailure,
		Method:  req.Method,
		URL:     req.URL,
		Host:    hostOf(req.URL),
		Budget:  t.timeouts.budget(),
		Err:     err,
	}
	if isTimeout(err) {
		netErr.Kind = KindRequestTimeout
	}
	return netErr
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

func hostOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	return u.Host
}

// RateLimit throttles outgoing requests on the client side. A zero Limit
// disables throttling.
type RateLimit struct {
	// Limit is the sustained number of requests per second.
	Limit float64
	// Burst is the number of requests allowed at once. Defaults to 1.
	Burst int
}

// limitedTransport waits for a token before each request. It never retries:
// a 429 from the service still surfaces as TooManyRequests.
type limitedTransport struct {
	next    Transport
	limiter *rate.Limiter
}

// WithRateLimit wraps next so it sends at most rl.Limit requests per second.
func WithRateLimit(next Transport, rl RateLimit) Transport {
	if rl.Limit <= 0 {
		return next
	}
	burst := rl.Burst
	if burst < 1 {
		burst = 1
	}
	return &limitedTransport{next: next, limiter: rate.NewLimiter(rate.Limit(rl.Limit), burst)}
}

func (t *limitedTransport) Do(ctx context.Context, req *Request) (*Response, error) {
	if err := t.limiter.Wait(ctx); err != nil {
		if errors.Is(ctx.Err(), context.Canceled) {
			return nil, fmt.Errorf("%s %s: %w", req.Method, req.Path, ctx.Err())
		}
		// Wait fails early when the deadline would pass before a token is free.
		var budget time.Duration
		if deadline, ok := ctx.Deadline(); ok {
			budget = max(time.Until(deadline), 0)
		}
		return nil, &NetworkError{
			Kind:   KindRequestTimeout,
			Method: req.Method,
			URL:    req.URL,
			Host:   hostOf(req.URL),
			Budget: budget,
			Err:    fmt.Errorf("wait for rate limiter: %w", err),
		}
	}
	return t.next.Do(ctx, req)
}
