package plugin

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"

	"github.com/felixgeelhaar/lingua/internal/translation/domain"
	"github.com/hashicorp/go-plugin"
)

// Loader starts provider plugins and keeps their processes alive.
type Loader struct {
	logger *slog.Logger

	mu      sync.Mutex
	clients map[string]*plugin.Client
}

// NewLoader creates a new plugin loader.
func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		logger:  logger,
		clients: make(map[string]*plugin.Client),
	}
}

// Load starts the plugin binary described by manifest and returns its client.
func (l *Loader) Load(ctx context.Context, manifest *Manifest, secure bool) (*GRPCClient, error) {
	if manifest == nil {
		return nil, fmt.Errorf("manifest is required")
	}

	binaryPath, err := validateBinaryPath(manifest.BinaryAbsPath())
	if err != nil {
		return nil, fmt.Errorf("plugin %s: %w", manifest.ID, err)
	}

	info, err := os.Stat(binaryPath)
	if err != nil {
		return nil, fmt.Errorf("plugin %s: binary not found: %w", manifest.ID, err)
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("plugin %s: binary path is not a regular file", manifest.ID)
	}

	if secure && manifest.Checksum != "" {
		if err := verifyChecksum(binaryPath, manifest.Checksum); err != nil {
			return nil, fmt.Errorf("plugin %s: %w", manifest.ID, err)
		}
	}

	l.logger.Info("loading provider plugin", "provider", manifest.ID, "binary", binaryPath)

	// #nosec G204 -- binary path is validated by validateBinaryPath
	client := plugin.NewClient(&plugin.ClientConfig{
		HandshakeConfig:  HandshakeConfig,
		Plugins:          PluginMap,
		Cmd:              exec.Command(binaryPath),
		Logger:           newHclogAdapter(l.logger),
		AllowedProtocols: []plugin.Protocol{plugin.ProtocolGRPC},
	})

	rpcClient, err := client.Client()
	if err != nil {
		client.Kill()
		return nil, fmt.Errorf("plugin %s: failed to connect: %w", manifest.ID, err)
	}

	raw, err := rpcClient.Dispense(PluginName)
	if err != nil {
		client.Kill()
		return nil, fmt.Errorf("plugin %s: failed to dispense: %w", manifest.ID, err)
	}

	provider, ok := raw.(*GRPCClient)
	if !ok {
		client.Kill()
		return nil, fmt.Errorf("plugin %s: unexpected client type %T", manifest.ID, raw)
	}

	id, err := provider.Describe(ctx)
	if err != nil {
		client.Kill()
		return nil, fmt.Errorf("plugin %s: describe failed: %w", manifest.ID, err)
	}
	if id != manifest.ID {
		client.Kill()
		return nil, fmt.Errorf("plugin %s: binary serves provider %q", manifest.ID, id)
	}

	l.mu.Lock()
	if previous, exists := l.clients[manifest.ID]; exists {
		previous.Kill()
	}
	l.clients[manifest.ID] = client
	l.mu.Unlock()

	l.logger.Info("provider plugin loaded", "provider", manifest.ID)
	return provider, nil
}

// LoadDir discovers plugins under dir and registers each in reg, replacing
// the built-in factory for that provider. It returns the loaded ids.
func (l *Loader) LoadDir(ctx context.Context, dir string, reg *domain.Registry, secure bool) []string {
	manifests, errs := Discover(dir)
	for _, err := range errs {
		l.logger.Warn("skipping provider plugin", "error", err)
	}

	var loaded []string
	for _, manifest := range manifests {
		client, err := l.Load(ctx, manifest, secure)
		if err != nil {
			l.logger.Warn("failed to load provider plugin", "provider", manifest.ID, "error", err)
			continue
		}
		reg.Register(manifest.ID, Factory(manifest.ID, client))
		loaded = append(loaded, manifest.ID)
	}
	return loaded
}

// IsLoaded checks if a plugin is currently loaded.
func (l *Loader) IsLoaded(id string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, exists := l.clients[id]
	return exists
}

// UnloadAll stops every plugin process.
func (l *Loader) UnloadAll() {
	l.mu.Lock()
	defer l.mu.Unlock()
	for id, client := range l.clients {
		client.Kill()
		l.logger.Info("provider plugin unloaded", "provider", id)
	}
	l.clients = make(map[string]*plugin.Client)
}

// Factory binds a plugin client to the registry's factory signature.
func Factory(id string, client *GRPCClient) domain.Factory {
	return func(cfg domain.ProviderConfig) (domain.Provider, error) {
		return &remoteProvider{id: id, cfg: cfg, client: client}, nil
	}
}

// remoteProvider forwards translations to a plugin process.
type remoteProvider struct {
	id     string
	cfg    domain.ProviderConfig
	client *GRPCClient
}

func (p *remoteProvider) ID() string { return p.id }

func (p *remoteProvider) Translate(ctx context.Context, req domain.Request) (string, error) {
	return p.client.Translate(ctx, p.cfg, req)
}

// validateBinaryPath rejects relative paths and shell metacharacters and
// resolves symlinks.
func validateBinaryPath(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("binary path cannot be empty")
	}

	cleanPath := filepath.Clean(path)
	if !filepath.IsAbs(cleanPath) {
		return "", fmt.Errorf("binary path must be absolute: %s", path)
	}

	dangerousChars := []string{";", "&", "|", "$", "`", "(", ")", "{", "}", "<", ">", "!", "\n", "\r", "\\", "'", "\""}
	for _, char := range dangerousChars {
		if strings.Contains(cleanPath, char) {
			return "", fmt.Errorf("binary path contains forbidden character %q: %s", char, path)
		}
	}

	resolved, err := filepath.EvalSymlinks(cleanPath)
	if err != nil {
		if os.IsNotExist(err) {
			return cleanPath, nil
		}
		return "", fmt.Errorf("failed to resolve binary path: %w", err)
	}
	return resolved, nil
}

// verifyChecksum verifies the SHA256 checksum of a file.
// Expected format: "sha256:HEXHASH" or just "HEXHASH".
func verifyChecksum(path, expected string) error {
	algorithm := "sha256"
	hash := expected
	if strings.Contains(expected, ":") {
		parts := strings.SplitN(expected, ":", 2)
		algorithm = strings.ToLower(parts[0])
		hash = parts[1]
	}
	if algorithm != "sha256" {
		return fmt.Errorf("unsupported checksum algorithm: %s", algorithm)
	}

	// #nosec G304 - path is validated by validateBinaryPath
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	hasher := sha256.New()
	if _, err := io.Copy(hasher, file); err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	computed := hex.EncodeToString(hasher.Sum(nil))
	if !strings.EqualFold(computed, hash) {
		return fmt.Errorf("checksum mismatch: expected %s, got %s", hash, computed)
	}
	return nil
}
