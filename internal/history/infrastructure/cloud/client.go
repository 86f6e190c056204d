package cloud

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/felixgeelhaar/lingua/internal/history/domain"
	"github.com/felixgeelhaar/lingua/internal/shared/infrastructure/httpclient"
)

// API paths of the remote history service.
const (
	SyncPath  = "/api/history/sync"
	FetchPath = "/api/history"
)

type syncRequest struct {
	LicenseKey string        `json:"licenseKey"`
	Items      []domain.Item `json:"items"`
}

type syncResponse struct {
	Success     bool   `json:"success"`
	SyncedCount int    `json:"syncedCount"`
	Error       string `json:"error,omitempty"`
}

type fetchResponse struct {
	Success bool          `json:"success"`
	Items   []domain.Item `json:"items"`
	Error   string        `json:"error,omitempty"`
}

// Client implements domain.CloudClient over HTTP.
type Client struct {
	http *httpclient.Client
}

// NewHTTPClient builds the transport for the history API. Premium history is
// unbounded, so fetch responses are read without a size cap.
func NewHTTPClient(baseURL string, timeout time.Duration, logger *slog.Logger) *httpclient.Client {
	return httpclient.New(httpclient.Config{
		Name:        "history",
		BaseURL:     baseURL,
		Timeout:     timeout,
		MaxBodySize: httpclient.NoBodyLimit,
	}, logger)
}

// NewClient creates a history cloud client.
func NewClient(http *httpclient.Client) *Client {
	return &Client{http: http}
}

// Sync uploads items in one request.
func (c *Client) Sync(ctx context.Context, licenseKey string, items []domain.Item) (int, error) {
	resp, err := c.http.PostJSON(ctx, SyncPath, syncRequest{LicenseKey: licenseKey, Items: items})
	if err != nil {
		return 0, remoteError("History sync", resp, err)
	}
	if !resp.OK() {
		return 0, remoteError("History sync", resp, nil)
	}

	var body syncResponse
	if err := resp.Decode(&body); err != nil {
		return 0, fmt.Errorf("decode sync response: %w", err)
	}
	if !body.Success {
		if body.Error != "" {
			return 0, errors.New(body.Error)
		}
		return 0, errors.New("History sync failed")
	}
	return body.SyncedCount, nil
}

// Fetch downloads the remote history.
func (c *Client) Fetch(ctx context.Context, licenseKey string) ([]domain.Item, error) {
	resp, err := c.http.Get(ctx, FetchPath, url.Values{"licenseKey": {licenseKey}})
	if err != nil {
		return nil, remoteError("History fetch", resp, err)
	}
	if !resp.OK() {
		return nil, remoteError("History fetch", resp, nil)
	}

	var body fetchResponse
	if err := resp.Decode(&body); err != nil {
		return nil, fmt.Errorf("decode fetch response: %w", err)
	}
	if !body.Success {
		if body.Error != "" {
			return nil, errors.New(body.Error)
		}
		return nil, errors.New("History fetch failed")
	}
	return body.Items, nil
}

// remoteError prefers the server's message, then the status code, then err.
func remoteError(op string, resp *httpclient.Response, err error) error {
	if resp != nil {
		if msg := resp.ErrorMessage(); msg != "" {
			return errors.New(msg)
		}
		return fmt.Errorf("%s failed (HTTP %d)", op, resp.StatusCode)
	}
	return err
}
