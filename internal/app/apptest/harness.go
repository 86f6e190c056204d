// Package apptest provides a fake lingua cloud and a fully wired container
// for adapter tests.
//
// Example usage:
//
//	func TestTranslate(t *testing.T) {
//		cloud := apptest.NewCloud(t)
//		c := apptest.NewContainer(t, cloud)
//
//		_, _, err := c.LicenseManager.Activate(ctx, apptest.ValidKey)
//		require.NoError(t, err)
//	}
package apptest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/felixgeelhaar/lingua/internal/app"
	featuresDomain "github.com/felixgeelhaar/lingua/internal/features/domain"
	historyDomain "github.com/felixgeelhaar/lingua/internal/history/domain"
	historyCloud "github.com/felixgeelhaar/lingua/internal/history/infrastructure/cloud"
	licensingDomain "github.com/felixgeelhaar/lingua/internal/licensing/domain"
	"github.com/felixgeelhaar/lingua/internal/licensing/infrastructure/remote"
	translationDomain "github.com/felixgeelhaar/lingua/internal/translation/domain"
	"github.com/felixgeelhaar/lingua/pkg/config"
	"github.com/stretchr/testify/require"
)

// ValidKey is accepted by every Cloud.
const ValidKey = "LINGUA-PRO-KEY-0001"

// Cloud fakes the licensing and history API.
type Cloud struct {
	Server *httptest.Server

	mu       sync.Mutex
	licenses map[string]licensingDomain.LicenseInfo
	synced   map[string][]historyDomain.Item
	remote   map[string][]historyDomain.Item

	offline     atomic.Bool
	validations atomic.Int32
}

// NewCloud starts a fake cloud that accepts ValidKey.
func NewCloud(t testing.TB) *Cloud {
	t.Helper()

	expires := time.Now().Add(365 * 24 * time.Hour).UTC().Truncate(time.Second)
	c := &Cloud{
		licenses: map[string]licensingDomain.LicenseInfo{
			ValidKey: {Email: "pro@example.com", Plan: "pro", ExpiresAt: &expires},
		},
		synced: make(map[string][]historyDomain.Item),
		remote: make(map[string][]historyDomain.Item),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST "+remote.ValidatePath, c.handleValidate)
	mux.HandleFunc("POST "+historyCloud.SyncPath, c.handleSync)
	mux.HandleFunc("GET "+historyCloud.FetchPath, c.handleFetch)

	c.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if c.offline.Load() {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		mux.ServeHTTP(w, r)
	}))
	t.Cleanup(c.Server.Close)
	return c
}

// URL returns the base URL of the fake cloud.
func (c *Cloud) URL() string {
	return c.Server.URL
}

// AddLicense makes key valid.
func (c *Cloud) AddLicense(key string, info licensingDomain.LicenseInfo) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.licenses[key] = info
}

// RevokeLicense makes key invalid.
func (c *Cloud) RevokeLicense(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.licenses, key)
}

// AddRemoteItems seeds the remote history for key.
func (c *Cloud) AddRemoteItems(key string, items ...historyDomain.Item) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.remote[key] = append(c.remote[key], items...)
}

// Synced returns every item uploaded for key.
func (c *Cloud) Synced(key string) []historyDomain.Item {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]historyDomain.Item(nil), c.synced[key]...)
}

// SetOffline makes every request fail with 503.
func (c *Cloud) SetOffline(offline bool) {
	c.offline.Store(offline)
}

// Validations returns the number of validation requests served.
func (c *Cloud) Validations() int {
	return int(c.validations.Load())
}

func (c *Cloud) handleValidate(w http.ResponseWriter, r *http.Request) {
	c.validations.Add(1)

	var req struct {
		LicenseKey string `json:"licenseKey"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"valid": false, "error": "Malformed request"})
		return
	}

	c.mu.Lock()
	info, ok := c.licenses[req.LicenseKey]
	c.mu.Unlock()
	if !ok {
		writeJSON(w, http.StatusOK, map[string]any{"valid": false, "error": "Invalid license key"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"valid": true, "license": info})
}

func (c *Cloud) handleSync(w http.ResponseWriter, r *http.Request) {
	var req struct {
		LicenseKey string               `json:"licenseKey"`
		Items      []historyDomain.Item `json:"items"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "error": "Malformed request"})
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.licenses[req.LicenseKey]; !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"success": false, "error": "Invalid license key"})
		return
	}
	c.synced[req.LicenseKey] = append(c.synced[req.LicenseKey], req.Items...)
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "syncedCount": len(req.Items)})
}

func (c *Cloud) handleFetch(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Query().Get("licenseKey")

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.licenses[key]; !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"success": false, "error": "Invalid license key"})
		return
	}
	items := append([]historyDomain.Item{}, c.remote[key]...)
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "items": items})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// EchoProvider returns "[<target>] <text>" without calling any API.
type EchoProvider struct {
	id string
}

// ID returns the provider id.
func (p EchoProvider) ID() string { return p.id }

// Translate echoes the request.
func (p EchoProvider) Translate(_ context.Context, req translationDomain.Request) (string, error) {
	return fmt.Sprintf("[%s] %s", req.TargetLang, req.Text), nil
}

// Config returns a container configuration pointed at cloud.
func Config(t testing.TB, cloud *Cloud) *config.Config {
	t.Helper()
	return &config.Config{
		AppEnv:         "test",
		APIURL:         cloud.URL(),
		HTTPTimeout:    2 * time.Second,
		StoreDriver:    "memory",
		StoreNamespace: "test",
		SyncDispatch:   config.SyncDispatchLocal,
		SyncTimeout:    2 * time.Second,
	}
}

// NewContainer wires a container against cloud with echo providers
// registered for every catalog provider.
func NewContainer(t testing.TB, cloud *Cloud) *app.Container {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	c, err := app.NewContainer(context.Background(), Config(t, cloud), logger)
	require.NoError(t, err)
	t.Cleanup(c.Close)

	for _, entry := range featuresDomain.Providers() {
		id := entry.ID
		c.Providers.Register(id, func(translationDomain.ProviderConfig) (translationDomain.Provider, error) {
			return EchoProvider{id: id}, nil
		})
	}
	return c
}
