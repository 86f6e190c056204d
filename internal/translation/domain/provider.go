package domain

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Request is the text to translate and how to translate it.
type Request struct {
	Text       string `json:"text" validate:"required"`
	SourceLang string `json:"sourceLang" validate:"required"`
	TargetLang string `json:"targetLang" validate:"required"`
	Tone       string `json:"tone,omitempty"`
}

// Provider translates text through a third-party AI API.
type Provider interface {
	ID() string
	Translate(ctx context.Context, req Request) (string, error)
}

// ProviderConfig carries the credentials and model for one provider.
type ProviderConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

// Factory builds a provider from its configuration.
type Factory func(cfg ProviderConfig) (Provider, error)

// Registry maps provider ids to factories.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register adds or replaces the factory for id.
func (r *Registry) Register(id string, factory Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[id] = factory
}

// Has reports whether a factory is registered for id.
func (r *Registry) Has(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.factories[id]
	return ok
}

// IDs returns the registered ids in sorted order.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.factories))
	for id := range r.factories {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Build creates the provider for id.
func (r *Registry) Build(id string, cfg ProviderConfig) (Provider, error) {
	r.mu.RLock()
	factory, ok := r.factories[id]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, id)
	}
	return factory(cfg)
}
