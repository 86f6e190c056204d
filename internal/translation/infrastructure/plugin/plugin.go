// Package plugin runs translation providers as separate processes using
// HashiCorp's go-plugin over gRPC.
package plugin

import (
	"context"

	"github.com/felixgeelhaar/lingua/internal/translation/domain"
	"github.com/hashicorp/go-plugin"
	"google.golang.org/grpc"
)

// HandshakeConfig is used to verify that the plugin is compatible.
// Both the host and plugins must use the same handshake configuration.
var HandshakeConfig = plugin.HandshakeConfig{
	ProtocolVersion:  1,
	MagicCookieKey:   "LINGUA_PROVIDER_PLUGIN",
	MagicCookieValue: "lingua-provider-v1",
}

// PluginName is the key providers are dispensed under.
const PluginName = "provider"

// PluginMap is the map of plugins we can dispense.
var PluginMap = map[string]plugin.Plugin{
	PluginName: &ProviderPlugin{},
}

// TranslateRequest is the wire form of a translation call.
type TranslateRequest struct {
	Request domain.Request `json:"request"`
	APIKey  string         `json:"apiKey,omitempty"`
	Model   string         `json:"model,omitempty"`
	BaseURL string         `json:"baseUrl,omitempty"`
}

// TranslateResponse is the wire form of a translation result.
type TranslateResponse struct {
	Text string `json:"text"`
}

// DescribeRequest asks the plugin for its identity.
type DescribeRequest struct{}

// DescribeResponse carries the plugin's provider id.
type DescribeResponse struct {
	ID string `json:"id"`
}

// ConfigurableProvider is implemented by plugin providers that accept
// per-call credentials from the host.
type ConfigurableProvider interface {
	domain.Provider
	TranslateWith(ctx context.Context, cfg domain.ProviderConfig, req domain.Request) (string, error)
}

// ProviderPlugin is the plugin.Plugin implementation for translation providers.
type ProviderPlugin struct {
	plugin.Plugin
	// Impl is the concrete implementation (plugin-side).
	Impl domain.Provider
}

// GRPCServer registers the provider service on the plugin side.
func (p *ProviderPlugin) GRPCServer(broker *plugin.GRPCBroker, s *grpc.Server) error {
	s.RegisterService(&serviceDesc, &grpcServer{impl: p.Impl})
	return nil
}

// GRPCClient returns the host-side client.
func (p *ProviderPlugin) GRPCClient(ctx context.Context, broker *plugin.GRPCBroker, c *grpc.ClientConn) (interface{}, error) {
	return &GRPCClient{conn: c}, nil
}

// grpcServer adapts a domain.Provider to the provider service.
type grpcServer struct {
	impl domain.Provider
}

func (s *grpcServer) Translate(ctx context.Context, in *TranslateRequest) (*TranslateResponse, error) {
	var (
		text string
		err  error
	)
	if cp, ok := s.impl.(ConfigurableProvider); ok {
		text, err = cp.TranslateWith(ctx, domain.ProviderConfig{APIKey: in.APIKey, Model: in.Model, BaseURL: in.BaseURL}, in.Request)
	} else {
		text, err = s.impl.Translate(ctx, in.Request)
	}
	if err != nil {
		return nil, err
	}
	return &TranslateResponse{Text: text}, nil
}

func (s *grpcServer) Describe(ctx context.Context, in *DescribeRequest) (*DescribeResponse, error) {
	return &DescribeResponse{ID: s.impl.ID()}, nil
}

// GRPCClient is the host-side view of a provider plugin.
type GRPCClient struct {
	conn *grpc.ClientConn
}

// Translate calls the plugin with the given credentials.
func (c *GRPCClient) Translate(ctx context.Context, cfg domain.ProviderConfig, req domain.Request) (string, error) {
	out := new(TranslateResponse)
	in := &TranslateRequest{Request: req, APIKey: cfg.APIKey, Model: cfg.Model, BaseURL: cfg.BaseURL}
	if err := c.conn.Invoke(ctx, methodTranslate, in, out, grpc.CallContentSubtype(codecName)); err != nil {
		return "", err
	}
	return out.Text, nil
}

// Describe returns the provider id the plugin serves.
func (c *GRPCClient) Describe(ctx context.Context) (string, error) {
	out := new(DescribeResponse)
	if err := c.conn.Invoke(ctx, methodDescribe, &DescribeRequest{}, out, grpc.CallContentSubtype(codecName)); err != nil {
		return "", err
	}
	return out.ID, nil
}
