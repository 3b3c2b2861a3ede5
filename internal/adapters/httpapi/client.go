package httpapi

// Package httpapi is the outbound request pipeline to the backend API. It owns two
// http.Clients sharing one cookie jar: a public client for unauthenticated endpoints and an
// authorized client that attaches the session token as a bearer credential.

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/publicsuffix"
)

const (
	defaultTimeout  = 15 * time.Second
	maxResponseSize = 1 << 20
)

// ErrMalformedResponse is returned when a successful response does not carry a data envelope.
var ErrMalformedResponse = errors.New("malformed response envelope")

// StatusError is returned for every non-2xx response. Body holds the raw payload, if any.
type StatusError struct {
	Status int
	Body   []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("api responded with status %d", e.Status)
}

// Options configures a Client.
type Options struct {
	BaseURL string
	Timeout time.Duration
	// Tokens supplies the bearer credential of the authorized client. Required.
	Tokens TokenReader
	// Transport is the base RoundTripper; defaults to http.DefaultTransport.
	Transport http.RoundTripper
	// Middleware wraps both clients, outermost first, after the built-in request id,
	// accept and logging middlewares.
	Middleware []Middleware
	Logger     *slog.Logger
}

// Client issues JSON requests against the backend API.
type Client struct {
	base       *url.URL
	public     *http.Client
	authorized *http.Client
}

// New builds a Client.
func New(opts Options) (*Client, error) {
	if strings.TrimSpace(opts.BaseURL) == "" {
		return nil, errors.New("api base url is required")
	}
	if opts.Tokens == nil {
		return nil, errors.New("token reader is required")
	}
	base, err := url.Parse(strings.TrimSuffix(opts.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse api base url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("api base url %q must be http or https", opts.BaseURL)
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	transport := opts.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}

	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}

	mws := append([]Middleware{
		RequestID(),
		AcceptJSON(),
		Logging(logger.With("component", "api_client")),
	}, opts.Middleware...)
	pipeline := Chain(transport, mws...)

	return &Client{
		base: base,
		public: &http.Client{
			Timeout:   timeout,
			Transport: pipeline,
			Jar:       jar,
		},
		authorized: &http.Client{
			Timeout:   timeout,
			Transport: &bearerTransport{tokens: opts.Tokens, base: pipeline},
			Jar:       jar,
		},
	}, nil
}

// Public sends a request without credentials and decodes the response data into out.
func (c *Client) Public(ctx context.Context, method, path string, body, out any) error {
	return c.do(ctx, c.public, method, path, body, out)
}

// Authorized sends a request carrying the session token and decodes the response data into out.
func (c *Client) Authorized(ctx context.Context, method, path string, body, out any) error {
	return c.do(ctx, c.authorized, method, path, body, out)
}

// URL resolves path against the base URL.
func (c *Client) URL(path string) string {
	return c.base.String() + "/" + strings.TrimPrefix(path, "/")
}

func (c *Client) do(ctx context.Context, hc *http.Client, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.URL(path), reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := hc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Status: resp.StatusCode, Body: payload}
	}
	if out == nil {
		return nil
	}
	return decodeEnvelope(payload, out)
}

func decodeEnvelope(payload []byte, out any) error {
	var env struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(payload, &env); err != nil {
		return fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return ErrMalformedResponse
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}
	return nil
}
