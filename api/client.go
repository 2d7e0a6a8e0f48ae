// Package api is the HTTP client for the unified chatbot backend.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"path"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultBaseURL = "http://localhost:5000"
	DefaultTimeout = 120 * time.Second

	// maxBodySize caps how much of a response body is read.
	maxBodySize = 16 * 1024 * 1024
)

// StatusError is returned when the backend answers with a non-2xx status and
// no JSON error envelope.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("API error (status %d): %s", e.Code, e.Body)
}

type Client struct {
	baseURL string
	http    *http.Client
	log     *zap.Logger
	verbose bool
}

type Option func(*Client)

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// WithVerbose logs every request and response body at debug level.
func WithVerbose(v bool) Option {
	return func(c *Client) { c.verbose = v }
}

// New returns a client for the backend at baseURL. The client keeps a cookie
// jar: the backend keys conversation history by its session cookie.
func New(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("invalid base url %q: %w", baseURL, err)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}

	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http:    &http.Client{Jar: jar, Timeout: DefaultTimeout},
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.verbose {
		c.http.Transport = &loggingTransport{log: c.log}
	}

	return c, nil
}

func (c *Client) BaseURL() string { return c.baseURL }

func urlJoin(base, rel string) (string, error) {
	baseURL, err := url.Parse(base)
	if err != nil {
		return "", err
	}

	relURL, err := url.Parse(rel)
	if err != nil {
		return "", err
	}

	if relURL.Scheme != "" && relURL.Host != "" {
		return rel, nil
	}

	result := &url.URL{
		Scheme: baseURL.Scheme,
		User:   baseURL.User,
		Host:   baseURL.Host,
		Path:   path.Join(baseURL.Path, relURL.Path),
	}

	return result.String(), nil
}

// Providers lists every provider the backend knows, configured or not.
func (c *Client) Providers(ctx context.Context) ([]Provider, error) {
	var providers []Provider
	if err := c.do(ctx, http.MethodGet, "/api/providers", nil, &providers); err != nil {
		return nil, fmt.Errorf("load providers: %w", err)
	}
	return providers, nil
}

func (c *Client) Chat(ctx context.Context, req ChatRequest) (*Reply, error) {
	var reply Reply
	if err := c.do(ctx, http.MethodPost, "/api/chat", req, &reply); err != nil {
		return nil, err
	}
	return &reply, nil
}

func (c *Client) Code(ctx context.Context, req CodeRequest) (*Reply, error) {
	var reply Reply
	if err := c.do(ctx, http.MethodPost, "/api/code", req, &reply); err != nil {
		return nil, err
	}
	return &reply, nil
}

func (c *Client) Image(ctx context.Context, req ImageRequest) (*ImageReply, error) {
	var reply ImageReply
	if err := c.do(ctx, http.MethodPost, "/api/image", req, &reply); err != nil {
		return nil, err
	}
	return &reply, nil
}

// Clear asks the backend to drop the server-side conversation.
func (c *Client) Clear(ctx context.Context) (*Ack, error) {
	var ack Ack
	if err := c.do(ctx, http.MethodPost, "/api/clear", nil, &ack); err != nil {
		return nil, err
	}
	return &ack, nil
}

func (c *Client) Configure(ctx context.Context, creds Credentials) (*Ack, error) {
	var ack Ack
	if err := c.do(ctx, http.MethodPost, "/api/configure", creds, &ack); err != nil {
		return nil, err
	}
	return &ack, nil
}

// History returns the conversation the backend holds for this client's
// session cookie.
func (c *Client) History(ctx context.Context) ([]HistoryMessage, error) {
	var msgs []HistoryMessage
	if err := c.do(ctx, http.MethodGet, "/api/history", nil, &msgs); err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	return msgs, nil
}

func (c *Client) do(ctx context.Context, method, endpoint string, body, out interface{}) error {
	target, err := urlJoin(c.baseURL, endpoint)
	if err != nil {
		return err
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn("backend request failed",
			zap.String("method", method),
			zap.String("endpoint", endpoint),
			zap.Error(err))
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return err
	}

	c.log.Debug("backend request",
		zap.String("method", method),
		zap.String("endpoint", endpoint),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Flask error handlers may still answer with the {"error": ...}
		// envelope; surface it as an application-level failure.
		var envelope struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(data, &envelope) == nil && envelope.Error != "" {
			return json.Unmarshal(data, out)
		}
		return &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(data))}
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s response: %w", endpoint, err)
	}
	return nil
}
