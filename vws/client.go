package vws

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/five82/vws/vws/auth"
)

// Default service endpoints.
const (
	DefaultBaseURL      = "https://vws.vuforia.com"
	DefaultCloudRecoURL = "https://cloudreco.vuforia.com"
)

// Config configures a Client or a CloudRecoClient. The management client is
// given the server key pair and the query client the client key pair; the
// two are independent.
type Config struct {
	AccessKey string
	SecretKey string

	// BaseURL overrides the service endpoint. A bare host is treated as https.
	BaseURL string

	// Timeouts bounds each HTTP exchange. Ignored when Transport is set.
	Timeouts Timeouts
	// SkipVerify disables TLS verification. Ignored when Transport is set.
	SkipVerify bool
	// RateLimit throttles requests client side. Applied on top of Transport.
	RateLimit RateLimit

	// Transport replaces the default net/http transport.
	Transport Transport
	// Logger receives debug records for every exchange. Nil discards them.
	Logger *slog.Logger
	// Now supplies the request date. Defaults to time.Now.
	Now func() time.Time
}

// conn is the machinery shared by both clients: build, sign, send.
type conn struct {
	builder   requestBuilder
	transport Transport
	logger    *slog.Logger
}

func newConn(cfg Config, defaultURL, group string) (*conn, error) {
	creds := auth.Credentials{AccessKey: cfg.AccessKey, SecretKey: cfg.SecretKey}
	if err := creds.Validate(); err != nil {
		return nil, fmt.Errorf("credentials: %w", err)
	}
	base, err := parseBaseURL(cfg.BaseURL, defaultURL)
	if err != nil {
		return nil, fmt.Errorf("base url: %w", err)
	}
	transport := cfg.Transport
	if transport == nil {
		transport = NewHTTPTransport(cfg.Timeouts, cfg.SkipVerify)
	}
	transport = WithRateLimit(transport, cfg.RateLimit)

	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &conn{
		builder:   requestBuilder{baseURL: base, creds: creds, now: now},
		transport: transport,
		logger:    logger.WithGroup(group),
	}, nil
}

// send hands req to the transport and stamps the operation name on
// transport errors.
func (c *conn) send(ctx context.Context, op string, req *Request) (*Response, error) {
	start := time.Now()
	resp, err := c.transport.Do(ctx, req)
	if err != nil {
		var netErr *NetworkError
		if errors.As(err, &netErr) && netErr.Op == "" {
			netErr.Op = op
		}
		c.logger.Warn("request failed",
			slog.String("op", op),
			slog.String("method", req.Method),
			slog.String("path", req.Path),
			slog.Duration("duration", time.Since(start)),
			slog.String("error", err.Error()),
		)
		return nil, err
	}
	if resp.APIPath == "" {
		resp.APIPath = req.Path
	}
	c.logger.Debug("request complete",
		slog.String("op", op),
		slog.String("method", req.Method),
		slog.String("path", req.Path),
		slog.Int("status_code", resp.StatusCode),
		slog.Duration("duration", time.Since(start)),
	)
	return resp, nil
}

func (c *conn) get(ctx context.Context, op, path string, extra http.Header) (*Response, error) {
	return c.send(ctx, op, c.builder.build(http.MethodGet, path, "", nil, extra))
}

func (c *conn) delete(ctx context.Context, op, path string) (*Response, error) {
	return c.send(ctx, op, c.builder.build(http.MethodDelete, path, "", nil, nil))
}

func (c *conn) sendJSON(ctx context.Context, op, method, path string, payload any, extra http.Header) (*Response, error) {
	req, err := c.builder.buildJSON(method, path, payload)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	for key, values := range extra {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}
	return c.send(ctx, op, req)
}

// Client talks to the target management API.
type Client struct {
	conn *conn
}

// NewClient returns a management client for the server key pair in cfg.
func NewClient(cfg Config) (*Client, error) {
	c, err := newConn(cfg, DefaultBaseURL, "vws_client")
	if err != nil {
		return nil, err
	}
	return &Client{conn: c}, nil
}

// validateTargetID rejects ids that cannot be placed in a path segment.
func validateTargetID(op, id string) error {
	if id == "" {
		return invalid(op, "target_id", "must not be empty")
	}
	if strings.ContainsAny(id, "/?# \t\r\n") {
		return invalid(op, "target_id", "must not contain '/', '?', '#' or whitespace")
	}
	return nil
}
