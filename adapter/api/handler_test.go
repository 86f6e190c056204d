package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/felixgeelhaar/lingua/internal/app"
	"github.com/felixgeelhaar/lingua/internal/app/apptest"
	historyDomain "github.com/felixgeelhaar/lingua/internal/history/domain"
	licensingDomain "github.com/felixgeelhaar/lingua/internal/licensing/domain"
	translationApp "github.com/felixgeelhaar/lingua/internal/translation/application"
	"github.com/felixgeelhaar/lingua/pkg/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	container *app.Container
	cloud     *apptest.Cloud
	handler   http.Handler
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	cloud := apptest.NewCloud(t)
	c := apptest.NewContainer(t, cloud)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	handler := NewHandler(HandlerConfig{
		Translation: c.Translation,
		License:     c.LicenseManager,
		History:     c.History,
		Logger:      logger,
	})
	server := NewServer(DefaultServerConfig(), handler, nil, logger)
	return &testServer{container: c, cloud: cloud, handler: server.Handler()}
}

func (s *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) activate(t *testing.T) {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/api/v1/license/activate", ActivateRequest{LicenseKey: apptest.ValidKey})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v))
	return v
}

func TestServer_Health(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", decode[map[string]string](t, rec)["status"])
}

func TestServer_HealthRegistry(t *testing.T) {
	health := observability.NewHealthRegistry()
	health.Register("store", observability.PingChecker("store", true, func(ctx context.Context) error {
		return assert.AnError
	}))
	server := NewServer(DefaultServerConfig(), NewHandler(HandlerConfig{}), health, nil)

	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestServer_CorrelationID(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/trust", nil)
	req.Header.Set(CorrelationHeader, "corr-123")
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	assert.Equal(t, "corr-123", rec.Header().Get(CorrelationHeader))

	rec = s.do(t, http.MethodGet, "/api/v1/trust", nil)
	assert.NotEmpty(t, rec.Header().Get(CorrelationHeader))
}

func TestHandler_GetTrust(t *testing.T) {
	s := newTestServer(t)

	trust := decode[translationApp.Trust](t, s.do(t, http.MethodGet, "/api/v1/trust", nil))
	assert.False(t, trust.IsPremium)
	assert.Equal(t, licensingDomain.TrustStateFreemium, trust.State)

	s.activate(t)
	trust = decode[translationApp.Trust](t, s.do(t, http.MethodGet, "/api/v1/trust", nil))
	assert.True(t, trust.IsPremium)
	assert.Equal(t, licensingDomain.TrustStatePremiumTrusted, trust.State)
	assert.Equal(t, "pro@example.com", trust.Email)
	assert.Equal(t, "LING***********0001", trust.MaskedKey)
}

func TestHandler_CheckAccess(t *testing.T) {
	tests := []struct {
		name       string
		body       any
		expectCode int
		allowed    bool
	}{
		{"free provider", AccessRequest{Provider: "openai", Tone: "formal"}, http.StatusOK, true},
		{"premium provider", AccessRequest{Provider: "claude"}, http.StatusOK, false},
		{"premium tone", AccessRequest{Provider: "deepseek", Tone: "creative"}, http.StatusOK, false},
		{"unknown provider", AccessRequest{Provider: "bing"}, http.StatusBadRequest, false},
		{"unknown field", map[string]string{"engine": "openai"}, http.StatusBadRequest, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t)
			rec := s.do(t, http.MethodPost, "/api/v1/access", tt.body)
			require.Equal(t, tt.expectCode, rec.Code, rec.Body.String())
			if tt.expectCode == http.StatusOK {
				decision := decode[translationApp.AccessDecision](t, rec)
				assert.Equal(t, tt.allowed, decision.Allowed)
			}
		})
	}
}

func TestHandler_ListFeatures(t *testing.T) {
	s := newTestServer(t)

	features := decode[translationApp.FeatureSet](t, s.do(t, http.MethodGet, "/api/v1/features", nil))
	assert.False(t, features.IsPremium)
	assert.Equal(t, 5, features.HistoryLimit)
	assert.Len(t, features.Providers, 5)
	assert.Len(t, features.Tones, 6)
}

func TestHandler_Translate(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/api/v1/translations", translationApp.TranslateRequest{
		Provider:   "openai",
		Text:       "Good morning",
		TargetLang: "de",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	result := decode[translationApp.Result](t, rec)
	assert.Equal(t, "[de] Good morning", result.Translation)
	assert.Equal(t, "auto", result.SourceLang)
	assert.Equal(t, "neutral", result.Tone)
	require.NotNil(t, result.HistoryItem)

	history := decode[HistoryResponse](t, s.do(t, http.MethodGet, "/api/v1/history", nil))
	require.Len(t, history.Items, 1)
	assert.Equal(t, "Good morning", history.Items[0].Original)
	assert.Equal(t, 0, history.Pending)
}

func TestHandler_Translate_Errors(t *testing.T) {
	tests := []struct {
		name       string
		req        translationApp.TranslateRequest
		expectCode int
		expectErr  string
	}{
		{"missing text", translationApp.TranslateRequest{Provider: "openai", TargetLang: "de"}, http.StatusBadRequest, "bad_request"},
		{"unknown provider", translationApp.TranslateRequest{Provider: "bing", Text: "Hi", TargetLang: "de"}, http.StatusBadRequest, "bad_request"},
		{"premium provider", translationApp.TranslateRequest{Provider: "gemini", Text: "Hi", TargetLang: "de"}, http.StatusForbidden, "premium_required"},
		{"premium tone", translationApp.TranslateRequest{Provider: "openai", Text: "Hi", TargetLang: "de", Tone: "academic"}, http.StatusForbidden, "premium_required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t)
			rec := s.do(t, http.MethodPost, "/api/v1/translations", tt.req)
			require.Equal(t, tt.expectCode, rec.Code, rec.Body.String())
			assert.Equal(t, tt.expectErr, decode[APIError](t, rec).Code)
		})
	}
}

func TestHandler_History_FreemiumLimit(t *testing.T) {
	s := newTestServer(t)

	for i := 0; i < 7; i++ {
		rec := s.do(t, http.MethodPost, "/api/v1/translations", translationApp.TranslateRequest{
			Provider:   "deepseek",
			Text:       "Hello",
			TargetLang: "fr",
		})
		require.Equal(t, http.StatusOK, rec.Code)
	}

	history := decode[HistoryResponse](t, s.do(t, http.MethodGet, "/api/v1/history", nil))
	assert.Len(t, history.Items, 5)

	rec := s.do(t, http.MethodDelete, "/api/v1/history", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	history = decode[HistoryResponse](t, s.do(t, http.MethodGet, "/api/v1/history", nil))
	assert.Empty(t, history.Items)
}

func TestHandler_History_PremiumSync(t *testing.T) {
	s := newTestServer(t)
	s.activate(t)

	rec := s.do(t, http.MethodPost, "/api/v1/translations", translationApp.TranslateRequest{
		Provider:   "claude",
		Text:       "Thank you",
		TargetLang: "ja",
		Tone:       "formal",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	s.container.WaitForBackgroundSync()

	synced := s.cloud.Synced(apptest.ValidKey)
	require.Len(t, synced, 1)
	assert.Equal(t, "Thank you", synced[0].Original)

	result := decode[historyDomain.SyncResult](t, s.do(t, http.MethodPost, "/api/v1/history/sync", nil))
	assert.True(t, result.Success)
	assert.Equal(t, 0, result.SyncedCount)
}

func TestHandler_History_Fetch(t *testing.T) {
	s := newTestServer(t)
	s.activate(t)
	s.cloud.AddRemoteItems(apptest.ValidKey, historyDomain.Item{
		ID:          "remote-1",
		Original:    "Cheers",
		Translation: "Prost",
		SourceLang:  "en",
		TargetLang:  "de",
		Engine:      "openai",
		Timestamp:   time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	})

	rec := s.do(t, http.MethodPost, "/api/v1/history/fetch", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	result := decode[historyDomain.FetchResult](t, rec)
	assert.Equal(t, 1, result.Added)

	rec = s.do(t, http.MethodPost, "/api/v1/history/fetch", nil)
	assert.Equal(t, 0, decode[historyDomain.FetchResult](t, rec).Added)
}

func TestHandler_History_CloudRequiresPremium(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/api/v1/history/sync", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	result := decode[historyDomain.SyncResult](t, rec)
	assert.False(t, result.Success)
	assert.Equal(t, historyDomain.FailureAccess, result.Kind)

	rec = s.do(t, http.MethodPost, "/api/v1/history/fetch", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestHandler_History_CloudOffline(t *testing.T) {
	s := newTestServer(t)
	s.activate(t)
	s.cloud.SetOffline(true)

	rec := s.do(t, http.MethodPost, "/api/v1/history/fetch", nil)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	result := decode[historyDomain.FetchResult](t, rec)
	assert.False(t, result.Success)
	assert.Equal(t, historyDomain.FailureRemote, result.Kind)
}

func TestCloudStatus(t *testing.T) {
	tests := []struct {
		name    string
		success bool
		kind    historyDomain.FailureKind
		want    int
	}{
		{"success", true, "", http.StatusOK},
		{"access", false, historyDomain.FailureAccess, http.StatusForbidden},
		{"not configured", false, historyDomain.FailureNotConfigured, http.StatusPreconditionFailed},
		{"local storage", false, historyDomain.FailureStorage, http.StatusInternalServerError},
		{"remote", false, historyDomain.FailureRemote, http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cloudStatus(tt.success, tt.kind))
		})
	}
}

func TestHandler_ActivateLicense_Failures(t *testing.T) {
	tests := []struct {
		name       string
		key        string
		offline    bool
		expectCode int
	}{
		{"empty key", "  ", false, http.StatusBadRequest},
		{"unknown key", "NOPE-NOPE", false, http.StatusUnprocessableEntity},
		{"service offline", apptest.ValidKey, true, http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t)
			s.cloud.SetOffline(tt.offline)

			rec := s.do(t, http.MethodPost, "/api/v1/license/activate", ActivateRequest{LicenseKey: tt.key})
			require.Equal(t, tt.expectCode, rec.Code, rec.Body.String())

			resp := decode[ActivateResponse](t, rec)
			assert.False(t, resp.Success)
			assert.NotEmpty(t, resp.Error)
			assert.False(t, s.container.LicenseManager.GetStatus(context.Background()).IsPremium)
		})
	}
}

func TestHandler_DeactivateLicense(t *testing.T) {
	s := newTestServer(t)
	s.activate(t)

	rec := s.do(t, http.MethodDelete, "/api/v1/license", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	trust := decode[translationApp.Trust](t, s.do(t, http.MethodGet, "/api/v1/trust", nil))
	assert.False(t, trust.IsPremium)
}

func TestServer_UnknownRoute(t *testing.T) {
	s := newTestServer(t)

	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, "/api/v1/unknown", nil).Code)
	assert.Equal(t, http.StatusMethodNotAllowed, s.do(t, http.MethodPut, "/api/v1/history", nil).Code)
}
