package openaicompat

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/felixgeelhaar/lingua/internal/translation/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chatServer(t *testing.T, content string, check func(body map[string]any)) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		if check != nil {
			check(body)
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":     "chatcmpl-1",
			"object": "chat.completion",
			"choices": []map[string]any{
				{"index": 0, "message": map[string]any{"role": "assistant", "content": content}, "finish_reason": "stop"},
			},
		})
	}))
	t.Cleanup(server.Close)
	return server
}

func TestProvider_Translate(t *testing.T) {
	server := chatServer(t, " Guten Morgen \n", func(body map[string]any) {
		assert.Equal(t, "deepseek-chat", body["model"])
		messages := body["messages"].([]any)
		require.Len(t, messages, 2)
		system := messages[0].(map[string]any)
		assert.Equal(t, "system", system["role"])
		assert.Contains(t, system["content"], "from en to de")
		user := messages[1].(map[string]any)
		assert.Equal(t, "Good morning", user["content"])
	})

	p, err := New("deepseek", domain.ProviderConfig{APIKey: "sk-test", BaseURL: server.URL + "/v1/"})
	require.NoError(t, err)
	assert.Equal(t, "deepseek", p.ID())
	assert.Equal(t, "deepseek-chat", p.Model())

	text, err := p.Translate(context.Background(), domain.Request{Text: "Good morning", SourceLang: "en", TargetLang: "de"})
	require.NoError(t, err)
	assert.Equal(t, "Guten Morgen", text)
}

func TestProvider_EmptyTranslation(t *testing.T) {
	server := chatServer(t, "  ", nil)

	p, err := New("openai", domain.ProviderConfig{APIKey: "sk-test", BaseURL: server.URL + "/v1"})
	require.NoError(t, err)

	_, err = p.Translate(context.Background(), domain.Request{Text: "x", SourceLang: "en", TargetLang: "de"})
	assert.ErrorIs(t, err, domain.ErrEmptyTranslation)
}

func TestProvider_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"bad key","type":"invalid_request_error"}}`))
	}))
	defer server.Close()

	p, err := New("groq", domain.ProviderConfig{APIKey: "sk-test", BaseURL: server.URL})
	require.NoError(t, err)

	_, err = p.Translate(context.Background(), domain.Request{Text: "x", SourceLang: "en", TargetLang: "de"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "groq API call failed")
}

func TestNew_RequiresAPIKey(t *testing.T) {
	_, err := New("openai", domain.ProviderConfig{})
	assert.ErrorIs(t, err, domain.ErrProviderNotConfigured)
}

func TestNew_UnknownEndpointNeedsBaseURL(t *testing.T) {
	_, err := New("custom", domain.ProviderConfig{APIKey: "k"})
	assert.ErrorIs(t, err, domain.ErrProviderNotConfigured)

	p, err := New("custom", domain.ProviderConfig{APIKey: "k", BaseURL: "http://localhost:1234/v1", Model: "local"})
	require.NoError(t, err)
	assert.Equal(t, "local", p.Model())
}

func TestRegister(t *testing.T) {
	reg := domain.NewRegistry()
	Register(reg)

	assert.Equal(t, []string{"claude", "deepseek", "gemini", "groq", "openai"}, reg.IDs())

	p, err := reg.Build("gemini", domain.ProviderConfig{APIKey: "k"})
	require.NoError(t, err)
	assert.Equal(t, "gemini", p.ID())
}
