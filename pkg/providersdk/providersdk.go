// Package providersdk lets third parties ship a translation provider as a
// separate binary that lingua loads at startup.
//
// A plugin binary lives in its own directory under the provider plugin
// directory, next to a provider.json manifest:
//
//	{"id": "claude", "name": "Claude via proxy", "version": "1.0.0", "binary_path": "claude-proxy"}
//
// and serves its implementation from main:
//
//	func main() {
//		providersdk.Serve(providersdk.Func("claude", translate))
//	}
package providersdk

import (
	"context"

	"github.com/felixgeelhaar/lingua/internal/translation/domain"
	"github.com/felixgeelhaar/lingua/internal/translation/infrastructure/plugin"
	goplugin "github.com/hashicorp/go-plugin"
)

// Request is the text to translate.
type Request = domain.Request

// Config carries the host's credentials for the call.
type Config = domain.ProviderConfig

// TranslateFunc translates one request with the host-supplied credentials.
type TranslateFunc func(ctx context.Context, cfg Config, req Request) (string, error)

// Provider is what a plugin binary serves.
type Provider = plugin.ConfigurableProvider

// Func adapts a function to a Provider.
func Func(id string, fn TranslateFunc) Provider {
	return &funcProvider{id: id, fn: fn}
}

type funcProvider struct {
	id string
	fn TranslateFunc
}

func (p *funcProvider) ID() string { return p.id }

func (p *funcProvider) Translate(ctx context.Context, req Request) (string, error) {
	return p.fn(ctx, Config{}, req)
}

func (p *funcProvider) TranslateWith(ctx context.Context, cfg Config, req Request) (string, error) {
	return p.fn(ctx, cfg, req)
}

// Serve runs the plugin server. It blocks until the host disconnects.
func Serve(provider Provider) {
	goplugin.Serve(&goplugin.ServeConfig{
		HandshakeConfig: plugin.HandshakeConfig,
		Plugins: map[string]goplugin.Plugin{
			plugin.PluginName: &plugin.ProviderPlugin{Impl: provider},
		},
		GRPCServer: goplugin.DefaultGRPCServer,
	})
}

// SystemPrompt returns the instructions lingua's built-in providers send,
// so plugins can translate with the same tone handling.
func SystemPrompt(req Request) string {
	return domain.SystemPrompt(req)
}
