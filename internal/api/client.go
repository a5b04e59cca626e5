// Package api is the JSON-over-HTTP transport shared by every backend client.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/jrsteele09/estate-client/internal/errors"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
)

const (
	RequestIDHeader = "X-Request-ID"
	CSRFHeader      = "X-CSRF-Token"
)

// CSRFSource supplies the anti-forgery token sent on mutating authenticated calls.
type CSRFSource interface {
	CSRFToken() string
}

// Client sends requests to the backend. Anonymous calls go out without
// credentials; authenticated calls get their bearer header from the token
// source through an oauth2.Transport.
type Client struct {
	baseURL string
	tokens  oauth2.TokenSource
	csrf    CSRFSource
	anon    *http.Client
	authed  *http.Client
	log     zerolog.Logger

	newRequestID func() string
}

// Option configures a Client.
type Option func(*Client)

func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.log = l }
}

// WithCSRF sets where the anti-forgery token is read from.
func WithCSRF(src CSRFSource) Option {
	return func(c *Client) { c.csrf = src }
}

// WithBaseTransport replaces the underlying round tripper (primarily for testing)
func WithBaseTransport(rt http.RoundTripper) Option {
	return func(c *Client) {
		c.anon.Transport = rt
		c.authed.Transport = &oauth2.Transport{Source: c.tokens, Base: rt}
	}
}

// WithRequestID replaces the request id generator (primarily for testing)
func WithRequestID(gen func() string) Option {
	return func(c *Client) { c.newRequestID = gen }
}

// New creates a client for baseURL. Every call is bounded by timeout.
func New(baseURL string, timeout time.Duration, tokens oauth2.TokenSource, options ...Option) *Client {
	c := &Client{
		baseURL:      baseURL,
		tokens:       tokens,
		anon:         &http.Client{Timeout: timeout},
		authed:       &http.Client{Timeout: timeout, Transport: &oauth2.Transport{Source: tokens}},
		log:          zerolog.Nop(),
		newRequestID: uuid.NewString,
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

// Request describes one call. Body is JSON encoded when set.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Body   any
	Auth   bool
}

// Do sends req and decodes a JSON response into result (if non-nil).
func (c *Client) Do(ctx context.Context, req Request, result any) error {
	var body io.Reader
	contentType := ""
	if req.Body != nil {
		b, err := json.Marshal(req.Body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(b)
		contentType = "application/json"
	}
	return c.send(ctx, req, body, contentType, result)
}

// Upload posts a single file as multipart form data under field.
func (c *Client) Upload(ctx context.Context, path, field, filename string, content io.Reader, result any) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile(field, filename)
	if err != nil {
		return fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return fmt.Errorf("read %s: %w", filename, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close form: %w", err)
	}
	return c.send(ctx, Request{Method: http.MethodPost, Path: path, Auth: true}, &buf, w.FormDataContentType(), result)
}

func (c *Client) send(ctx context.Context, req Request, body io.Reader, contentType string, result any) error {
	httpClient := c.anon
	if req.Auth {
		if c.tokens == nil {
			return errors.ErrNotAuthenticated
		}
		// Fail before the request is built so a stale pair never leaves the process.
		if _, err := c.tokens.Token(); err != nil {
			return err
		}
		httpClient = c.authed
	}

	u := c.baseURL + req.Path
	if len(req.Query) > 0 {
		u += "?" + req.Query.Encode()
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, u, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	httpReq.Header.Set("Accept", "application/json")
	requestID := c.newRequestID()
	httpReq.Header.Set(RequestIDHeader, requestID)
	if req.Auth && req.Method != http.MethodGet && c.csrf != nil {
		if csrf := c.csrf.CSRFToken(); csrf != "" {
			httpReq.Header.Set(CSRFHeader, csrf)
		}
	}

	started := time.Now()
	resp, err := httpClient.Do(httpReq)
	if err != nil {
		c.log.Debug().Err(err).Str("method", req.Method).Str("path", req.Path).Str("request_id", requestID).Msg("request failed")
		return fmt.Errorf("%w: %w", errors.ErrNetwork, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read response: %w", errors.ErrNetwork, err)
	}

	c.log.Debug().
		Str("method", req.Method).
		Str("path", req.Path).
		Int("status", resp.StatusCode).
		Dur("took", time.Since(started)).
		Str("request_id", requestID).
		Msg("request completed")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newError(resp.StatusCode, respBody)
	}

	if result != nil && len(bytes.TrimSpace(respBody)) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("%w: unmarshal response: %w", errors.ErrServer, err)
		}
	}
	return nil
}
