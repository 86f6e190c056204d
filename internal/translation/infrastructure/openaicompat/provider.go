// Package openaicompat adapts the OpenAI-compatible chat completion APIs exposed by
// every catalog provider to the translation Provider interface.
package openaicompat

import (
	"context"
	"fmt"
	"strings"

	featuresDomain "github.com/felixgeelhaar/lingua/internal/features/domain"
	"github.com/felixgeelhaar/lingua/internal/translation/domain"
	"github.com/sashabaranov/go-openai"
)

// Endpoint is the default base URL and model of a provider.
type Endpoint struct {
	BaseURL string
	Model   string
}

// Endpoints lists the OpenAI-compatible endpoint of each catalog provider.
var Endpoints = map[string]Endpoint{
	featuresDomain.ProviderOpenAI:   {BaseURL: "https://api.openai.com/v1", Model: "gpt-4o-mini"},
	featuresDomain.ProviderDeepSeek: {BaseURL: "https://api.deepseek.com/v1", Model: "deepseek-chat"},
	featuresDomain.ProviderGemini:   {BaseURL: "https://generativelanguage.googleapis.com/v1beta/openai", Model: "gemini-2.0-flash"},
	featuresDomain.ProviderClaude:   {BaseURL: "https://api.anthropic.com/v1", Model: "claude-3-5-haiku-latest"},
	featuresDomain.ProviderGroq:     {BaseURL: "https://api.groq.com/openai/v1", Model: "llama-3.3-70b-versatile"},
}

// Provider translates with a chat completion call.
type Provider struct {
	id     string
	model  string
	client *openai.Client
}

// New creates a provider for id, filling BaseURL and Model from Endpoints.
func New(id string, cfg domain.ProviderConfig) (*Provider, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("%w: missing API key for %s", domain.ErrProviderNotConfigured, id)
	}

	endpoint := Endpoints[id]
	if cfg.BaseURL == "" {
		cfg.BaseURL = endpoint.BaseURL
	}
	if cfg.Model == "" {
		cfg.Model = endpoint.Model
	}
	if cfg.BaseURL == "" || cfg.Model == "" {
		return nil, fmt.Errorf("%w: no endpoint for %s", domain.ErrProviderNotConfigured, id)
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	clientCfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	return &Provider{
		id:     id,
		model:  cfg.Model,
		client: openai.NewClientWithConfig(clientCfg),
	}, nil
}

// Factory returns a registry factory for id.
func Factory(id string) domain.Factory {
	return func(cfg domain.ProviderConfig) (domain.Provider, error) {
		return New(id, cfg)
	}
}

// Register adds every endpoint to the registry.
func Register(reg *domain.Registry) {
	for id := range Endpoints {
		reg.Register(id, Factory(id))
	}
}

// ID returns the provider id.
func (p *Provider) ID() string {
	return p.id
}

// Model returns the model in use.
func (p *Provider) Model() string {
	return p.model
}

// Translate sends the text with a tone-specific system prompt.
func (p *Provider) Translate(ctx context.Context, req domain.Request) (string, error) {
	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: domain.SystemPrompt(req)},
			{Role: openai.ChatMessageRoleUser, Content: req.Text},
		},
		Temperature: 0.3,
	})
	if err != nil {
		return "", fmt.Errorf("%s API call failed: %w", p.id, err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%s: %w", p.id, domain.ErrEmptyTranslation)
	}
	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", fmt.Errorf("%s: %w", p.id, domain.ErrEmptyTranslation)
	}
	return text, nil
}
