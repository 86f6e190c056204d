package eventbus

import (
	"context"
	"encoding/json"
	"log/slog"
)

// InProcessBus delivers published events synchronously to local handlers.
// It backs the inline sync dispatch mode.
type InProcessBus struct {
	registry *Registry
	logger   *slog.Logger
}

// NewInProcessBus creates an in-process bus.
func NewInProcessBus(logger *slog.Logger) *InProcessBus {
	if logger == nil {
		logger = slog.Default()
	}
	return &InProcessBus{
		registry: NewRegistry(logger),
		logger:   logger,
	}
}

// RegisterHandler registers handler with the bus.
func (b *InProcessBus) RegisterHandler(handler Handler) {
	b.registry.Register(handler)
}

// Publish decodes payload and dispatches it. Handler failures are logged,
// not returned, mirroring a broker that has accepted the message.
func (b *InProcessBus) Publish(ctx context.Context, routingKey string, payload []byte) error {
	event := &Event{}
	if err := json.Unmarshal(payload, event); err != nil {
		b.logger.Error("discarding undecodable event", "routing_key", routingKey, "error", err)
		return nil
	}
	if event.RoutingKey == "" {
		event.RoutingKey = routingKey
	}

	if err := b.registry.Dispatch(ctx, event); err != nil {
		b.logger.Warn("in-process dispatch failed", "routing_key", routingKey, "error", err)
	}
	return nil
}

// Close is a no-op.
func (b *InProcessBus) Close() error {
	return nil
}
