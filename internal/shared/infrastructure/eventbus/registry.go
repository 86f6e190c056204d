package eventbus

import (
	"context"
	"errors"
	"log/slog"
	"sync"
)

// Registry routes events to the handlers registered for their routing key.
type Registry struct {
	handlers map[string][]Handler
	mu       sync.RWMutex
	logger   *slog.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		handlers: make(map[string][]Handler),
		logger:   logger,
	}
}

// Register adds a handler for each of its event types.
func (r *Registry) Register(handler Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, eventType := range handler.EventTypes() {
		r.handlers[eventType] = append(r.handlers[eventType], handler)
		r.logger.Debug("registered event handler", "event_type", eventType)
	}
}

// Handlers returns the handlers registered for eventType.
func (r *Registry) Handlers(eventType string) []Handler {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.handlers[eventType]
}

// EventTypes returns every routing key with at least one handler.
func (r *Registry) EventTypes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]string, 0, len(r.handlers))
	for t := range r.handlers {
		types = append(types, t)
	}
	return types
}

// Dispatch delivers event to every matching handler. All handlers run even
// when one fails; the errors are joined.
func (r *Registry) Dispatch(ctx context.Context, event *Event) error {
	handlers := r.Handlers(event.RoutingKey)
	if len(handlers) == 0 {
		r.logger.Debug("no handlers for event", "routing_key", event.RoutingKey)
		return nil
	}

	var errs []error
	for _, h := range handlers {
		if err := h.Handle(ctx, event); err != nil {
			r.logger.Error("event handler failed",
				"routing_key", event.RoutingKey,
				"event_id", event.EventID,
				"error", err,
			)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
