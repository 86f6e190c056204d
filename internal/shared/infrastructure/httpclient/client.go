// Package httpclient is the JSON HTTP client used for the lingua licensing
// and history APIs. Every call carries a deadline and runs behind a circuit
// breaker, so an unreachable backend fails fast instead of stalling callers.
package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"
)

// DefaultTimeout bounds every remote call when no timeout is configured.
const DefaultTimeout = 10 * time.Second

// DefaultMaxBodySize caps how much of a response body is read when no limit is configured.
const DefaultMaxBodySize = 4 << 20

// NoBodyLimit disables the response size cap.
const NoBodyLimit = -1

// ErrCircuitOpen is returned when the breaker rejects a call without trying it.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// ErrResponseTooLarge is returned when a response body exceeds the configured limit.
var ErrResponseTooLarge = errors.New("response body too large")

// StatusError reports a 5xx response. The breaker counts it as a failure.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("server error (HTTP %d)", e.StatusCode)
}

// Response is a fully read HTTP response.
type Response struct {
	StatusCode int
	Body       []byte
}

// OK reports whether the status code is 2xx.
func (r *Response) OK() bool {
	return r != nil && r.StatusCode >= 200 && r.StatusCode < 300
}

// Decode unmarshals the body into dst.
func (r *Response) Decode(dst any) error {
	if len(r.Body) == 0 {
		return errors.New("empty response body")
	}
	return json.Unmarshal(r.Body, dst)
}

// ErrorMessage extracts an "error" or "message" field from a JSON body.
func (r *Response) ErrorMessage() string {
	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(r.Body, &body); err != nil {
		return ""
	}
	if body.Error != "" {
		return body.Error
	}
	return body.Message
}

// Config configures a Client.
type Config struct {
	Name             string
	BaseURL          string
	Timeout          time.Duration
	FailureThreshold uint32
	OpenTimeout      time.Duration
	// MaxBodySize caps response bodies. Zero means DefaultMaxBodySize,
	// NoBodyLimit reads bodies of any size.
	MaxBodySize      int64
}

// Client sends JSON requests to a single base URL.
type Client struct {
	baseURL string
	maxBody int64
	http    *http.Client
	breaker *gobreaker.CircuitBreaker[*Response]
	logger  *slog.Logger
}

// New creates a client with its own circuit breaker.
func New(cfg Config, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = 5
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = 30 * time.Second
	}
	if cfg.Name == "" {
		cfg.Name = "lingua-api"
	}
	if cfg.MaxBodySize == 0 {
		cfg.MaxBodySize = DefaultMaxBodySize
	}

	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: 1,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		// An oversized body says nothing about backend health.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrResponseTooLarge)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Info("circuit breaker state changed",
				"breaker", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		maxBody: cfg.MaxBodySize,
		http:    &http.Client{Timeout: cfg.Timeout},
		breaker: gobreaker.NewCircuitBreaker[*Response](settings),
		logger:  logger,
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func (c *Client) WithHTTPClient(h *http.Client) *Client {
	if h != nil {
		c.http = h
	}
	return c
}

// BaseURL returns the configured base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// PostJSON sends body as JSON to path.
func (c *Client) PostJSON(ctx context.Context, path string, body any) (*Response, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	return c.do(ctx, http.MethodPost, path, nil, payload)
}

// Get sends a GET request to path with the given query.
func (c *Client) Get(ctx context.Context, path string, query url.Values) (*Response, error) {
	return c.do(ctx, http.MethodGet, path, query, nil)
}

// do runs the request behind the breaker. A 4xx response is returned without
// error; a 5xx response is returned together with a *StatusError.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, payload []byte) (*Response, error) {
	resp, err := c.breaker.Execute(func() (*Response, error) {
		return c.send(ctx, method, path, query, payload)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, ErrCircuitOpen
	}
	return resp, err
}

func (c *Client) send(ctx context.Context, method, path string, query url.Values, payload []byte) (*Response, error) {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	data, err := c.readBody(res.Body)
	if err != nil {
		return nil, err
	}

	out := &Response{StatusCode: res.StatusCode, Body: data}
	if res.StatusCode >= 500 {
		c.logger.Warn("remote server error", "method", method, "path", path, "status", res.StatusCode)
		return out, &StatusError{StatusCode: res.StatusCode}
	}
	return out, nil
}

// readBody reads one byte past the limit so truncation is reported instead of
// surfacing later as a decode error.
func (c *Client) readBody(body io.Reader) ([]byte, error) {
	if c.maxBody < 0 {
		data, err := io.ReadAll(body)
		if err != nil {
			return nil, fmt.Errorf("read response: %w", err)
		}
		return data, nil
	}

	data, err := io.ReadAll(io.LimitReader(body, c.maxBody+1))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if int64(len(data)) > c.maxBody {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrResponseTooLarge, c.maxBody)
	}
	return data, nil
}
