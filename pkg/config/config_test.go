package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnvVars clears all lingua-related environment variables.
func clearEnvVars(t *testing.T) {
	t.Helper()
	envVars := []string{
		"APP_ENV", "LOG_LEVEL", "LOG_FORMAT",
		"LINGUA_API_URL", "LINGUA_HTTP_TIMEOUT",
		"LINGUA_STORE_DRIVER", "LINGUA_STORE_PATH", "LINGUA_STORE_NAMESPACE",
		"DATABASE_URL", "REDIS_URL",
		"LINGUA_SYNC_DISPATCH", "RABBITMQ_URL", "LINGUA_SYNC_TIMEOUT",
		"LINGUA_API_ADDR", "LINGUA_WORKER_HEALTH_ADDR", "MCP_ADDR", "LINGUA_MCP_AUTH_TOKEN",
		"LINGUA_PROVIDER_PLUGIN_DIR", "LINGUA_PROVIDER_PLUGIN_INSECURE",
	}
	for _, id := range ProviderIDs {
		for _, suffix := range []string{"API_KEY", "MODEL", "BASE_URL"} {
			envVars = append(envVars, "LINGUA_"+strings.ToUpper(id)+"_"+suffix)
		}
	}
	for _, v := range envVars {
		t.Setenv(v, "")
		os.Unsetenv(v)
	}
}

func TestLoad_DefaultValues(t *testing.T) {
	clearEnvVars(t)

	cfg, err := Load()
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "development", cfg.AppEnv)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, "https://api.lingua.dev", cfg.APIURL)
	assert.Equal(t, 10*time.Second, cfg.HTTPTimeout)
	assert.Empty(t, cfg.StoreDriver)
	assert.Equal(t, "default", cfg.StoreNamespace)
	assert.Equal(t, SyncDispatchLocal, cfg.SyncDispatch)
	assert.Equal(t, 30*time.Second, cfg.SyncTimeout)
	assert.Equal(t, "127.0.0.1:7878", cfg.APIAddr)
	assert.Equal(t, "0.0.0.0:8081", cfg.WorkerHealthAddr)
	assert.Equal(t, "127.0.0.1:8090", cfg.MCPAddr)
	assert.Empty(t, cfg.MCPAuthToken)
	assert.False(t, cfg.PluginInsecure)
	assert.True(t, strings.HasSuffix(cfg.PluginDir, filepath.Join(".lingua", "providers")))

	require.Len(t, cfg.Providers, len(ProviderIDs))
	assert.Empty(t, cfg.Providers["openai"].APIKey)

	assert.True(t, cfg.IsDevelopment())
	assert.False(t, cfg.IsProduction())
}

func TestLoad_CustomValues(t *testing.T) {
	clearEnvVars(t)

	t.Setenv("APP_ENV", "production")
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("LINGUA_API_URL", "https://licensing.example.com/")
	t.Setenv("LINGUA_HTTP_TIMEOUT", "3s")
	t.Setenv("LINGUA_STORE_DRIVER", "redis")
	t.Setenv("REDIS_URL", "redis://cache:6379/2")
	t.Setenv("LINGUA_SYNC_DISPATCH", "rabbitmq")
	t.Setenv("LINGUA_PROVIDER_PLUGIN_INSECURE", "true")
	t.Setenv("LINGUA_GEMINI_API_KEY", "sk-gemini")
	t.Setenv("LINGUA_GEMINI_MODEL", "gemini-2.5-pro")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "https://licensing.example.com", cfg.APIURL)
	assert.Equal(t, 3*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, "redis://cache:6379/2", cfg.StoreURL())
	assert.Equal(t, SyncDispatchRabbitMQ, cfg.SyncDispatch)
	assert.True(t, cfg.PluginInsecure)
	assert.Equal(t, ProviderCredentials{APIKey: "sk-gemini", Model: "gemini-2.5-pro"}, cfg.Providers["gemini"])
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	clearEnvVars(t)

	t.Setenv("LINGUA_HTTP_TIMEOUT", "soon")
	t.Setenv("LINGUA_PROVIDER_PLUGIN_INSECURE", "maybe")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 10*time.Second, cfg.HTTPTimeout)
	assert.False(t, cfg.PluginInsecure)
}

func TestConfig_StoreURL(t *testing.T) {
	tests := []struct {
		name     string
		cfg      Config
		expected string
	}{
		{"postgres driver", Config{StoreDriver: "postgres", DatabaseURL: "postgres://db", RedisURL: "redis://r"}, "postgres://db"},
		{"redis driver", Config{StoreDriver: "redis", DatabaseURL: "postgres://db", RedisURL: "redis://r"}, "redis://r"},
		{"auto prefers database", Config{DatabaseURL: "postgres://db", RedisURL: "redis://r"}, "postgres://db"},
		{"auto falls back to redis", Config{RedisURL: "redis://r"}, "redis://r"},
		{"sqlite has no url", Config{StoreDriver: "sqlite", DatabaseURL: "postgres://db"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.cfg.StoreURL())
		})
	}
}
