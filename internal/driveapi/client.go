// Package driveapi is a thin bearer-authenticated client for the Google Drive
// v3 REST API. Each call makes exactly one request: there is no retry and no
// backoff.
package driveapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
)

// Default endpoints.
const (
	DefaultAPIBaseURL = "https://www.googleapis.com/drive/v3"
	DefaultUploadURL  = "https://www.googleapis.com/upload/drive/v3/files"
	DefaultUserAgent  = "gopener/0.1"
)

// TokenSource provides OAuth2 bearer tokens. Defined at the consumer per Go
// convention "accept interfaces, return structs"; auth.Manager satisfies it.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// StaticToken is a TokenSource that always returns the same token.
type StaticToken string

// Token implements TokenSource.
func (s StaticToken) Token(context.Context) (string, error) {
	return string(s), nil
}

// Config holds the endpoints the client talks to.
type Config struct {
	APIBaseURL string
	UploadURL  string
	UserAgent  string
}

// Client is an HTTP client for the Drive v3 API.
type Client struct {
	cfg        Config
	httpClient *http.Client
	token      TokenSource
	logger     *slog.Logger
}

// NewClient creates a Drive client. Empty Config fields use the defaults.
func NewClient(cfg Config, httpClient *http.Client, token TokenSource, logger *slog.Logger) *Client {
	if cfg.APIBaseURL == "" {
		cfg.APIBaseURL = DefaultAPIBaseURL
	}

	if cfg.UploadURL == "" {
		cfg.UploadURL = DefaultUploadURL
	}

	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}

	if logger == nil {
		logger = slog.Default()
	}

	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &Client{
		cfg:        cfg,
		httpClient: httpClient,
		token:      token,
		logger:     logger,
	}
}

// WithToken returns a copy of c that sends tok instead of asking its
// TokenSource. Used when the caller has already validated a token.
func (c *Client) WithToken(tok string) *Client {
	clone := *c
	clone.token = StaticToken(tok)

	return &clone
}

// Get issues GET {APIBaseURL}{path}?{query} and decodes the JSON response into out.
func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	return c.do(ctx, http.MethodGet, c.cfg.APIBaseURL+path, query, "", nil, -1, out)
}

// Post issues POST {APIBaseURL}{path}?{query} with body encoded as JSON and
// decodes the JSON response into out.
func (c *Client) Post(ctx context.Context, path string, query url.Values, body, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("driveapi: encoding request body: %w", err)
	}

	return c.do(ctx, http.MethodPost, c.cfg.APIBaseURL+path, query,
		"application/json; charset=UTF-8", bytes.NewReader(data), int64(len(data)), out)
}

// PostMultipart sends a multipart/related body to the upload endpoint. size
// is the exact body length and becomes Content-Length.
func (c *Client) PostMultipart(
	ctx context.Context,
	query url.Values,
	boundary string,
	body io.Reader,
	size int64,
	out any,
) error {
	return c.do(ctx, http.MethodPost, c.cfg.UploadURL, query,
		"multipart/related; boundary="+boundary, body, size, out)
}

// do executes a single authenticated request. size < 0 means unknown length.
func (c *Client) do(
	ctx context.Context,
	method, rawURL string,
	query url.Values,
	contentType string,
	body io.Reader,
	size int64,
	out any,
) error {
	if len(query) > 0 {
		rawURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return fmt.Errorf("driveapi: creating request: %w", err)
	}

	if size >= 0 {
		req.ContentLength = size
	}

	tok, err := c.token.Token(ctx)
	if err != nil {
		return fmt.Errorf("driveapi: obtaining token: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+tok)
	req.Header.Set("User-Agent", c.cfg.UserAgent)

	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("driveapi: request canceled: %w", ctx.Err())
		}

		return fmt.Errorf("driveapi: %s %s: %w", method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	if err := checkResponse(resp); err != nil {
		c.logger.Debug("request failed",
			slog.String("method", method),
			slog.String("path", req.URL.Path),
			slog.Int("status", resp.StatusCode),
		)

		return err
	}

	c.logger.Debug("request succeeded",
		slog.String("method", method),
		slog.String("path", req.URL.Path),
		slog.Int("status", resp.StatusCode),
	)

	if out == nil {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("driveapi: decoding %s response: %w", req.URL.Path, err)
	}

	return nil
}
