// Package backend is the client for the learning backend HTTP API, which
// serves adaptive quiz questions, evaluates answers and generates
// roadmaps.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/nayidisha/disha/internal/logging"
	"github.com/nayidisha/disha/internal/sessionstore"
)

const (
	DefaultTimeout    = 30 * time.Second
	maxBodyBytes      = 1 << 20
	maxErrorBodyBytes = 512
)

// APIError is a non-2xx response or an envelope with success=false.
type APIError struct {
	Operation  string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("%s: %s", e.Operation, e.Message)
	}
	return fmt.Sprintf("%s: HTTP %d: %s", e.Operation, e.StatusCode, e.Message)
}

// IsNotFound reports whether err is a 404 from the API.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// envelope is the API's response wrapper.
type envelope struct {
	Success *bool           `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

// Client calls the backend API. The backend keys its per-learner state by
// a session id persisted in the session store.
type Client struct {
	baseURL  string
	http     *http.Client
	sessions sessionstore.Store
	log      *logging.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout bounds each request.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

func WithLogger(log *logging.Logger) Option {
	return func(c *Client) { c.log = logging.OrNop(log).With("component", "backend") }
}

// New returns a client for the API rooted at baseURL, for example
// "http://localhost:5000/api".
func New(baseURL string, sessions sessionstore.Store, opts ...Option) *Client {
	c := &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		http:     &http.Client{Timeout: DefaultTimeout},
		sessions: sessions,
		log:      logging.Nop(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// SessionID returns the persisted backend session id, creating it on
// first use.
func (c *Client) SessionID(ctx context.Context) (string, error) {
	return sessionstore.SessionID(ctx, c.sessions)
}

// Health reports whether the backend answers its health check.
func (c *Client) Health(ctx context.Context) bool {
	err := c.do(ctx, "health", http.MethodGet, "/health", nil, nil)
	if err != nil {
		c.log.Warn("backend health check failed", "error", err)
		return false
	}
	return true
}

// do sends in as JSON and decodes the envelope's data into out. When the
// envelope has no data field the whole body is decoded instead.
func (c *Client) do(ctx context.Context, op, method, path string, in, out any) error {
	data, err := c.call(ctx, op, method, path, in)
	if err != nil {
		return err
	}
	if out == nil || len(data) == 0 || string(data) == "null" {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%s: decode response: %w", op, err)
	}
	return nil
}

func (c *Client) call(ctx context.Context, op, method, path string, in any) (json.RawMessage, error) {
	var body io.Reader
	if in != nil {
		var buf bytes.Buffer
		if err := json.NewEncoder(&buf).Encode(in); err != nil {
			return nil, fmt.Errorf("%s: encode request: %w", op, err)
		}
		body = &buf
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("%s: build request: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn("backend request failed", "op", op, "error", err, "timeout", isTimeout(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%s: read response: %w", op, err)
	}
	c.log.Debug("backend request",
		"op", op,
		"status", resp.StatusCode,
		"latency_ms", time.Since(start).Milliseconds(),
	)

	var env envelope
	decodeErr := json.Unmarshal(raw, &env)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := env.Error
		if decodeErr != nil || msg == "" {
			msg = truncate(raw)
		}
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return nil, &APIError{Operation: op, StatusCode: resp.StatusCode, Message: msg}
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("%s: decode envelope: %w", op, decodeErr)
	}
	if env.Success != nil && !*env.Success {
		msg := env.Error
		if msg == "" {
			msg = "request failed"
		}
		return nil, &APIError{Operation: op, StatusCode: resp.StatusCode, Message: msg}
	}
	if len(env.Data) == 0 {
		return raw, nil
	}
	return env.Data, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func truncate(raw []byte) string {
	s := strings.TrimSpace(string(raw))
	if len(s) > maxErrorBodyBytes {
		return s[:maxErrorBodyBytes] + "..."
	}
	return s
}
