// Package eventbus carries background job requests between lingua processes.
package eventbus

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Event is the envelope published on the bus.
type Event struct {
	EventID       uuid.UUID       `json:"event_id"`
	RoutingKey    string          `json:"routing_key"`
	OccurredAt    time.Time       `json:"occurred_at"`
	CorrelationID string          `json:"correlation_id,omitempty"`
	Payload       json.RawMessage `json:"payload,omitempty"`
}

// NewEvent wraps payload in an envelope for routingKey.
func NewEvent(routingKey string, payload any, now time.Time) (*Event, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("generate event id: %w", err)
	}

	var raw json.RawMessage
	if payload != nil {
		raw, err = json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshal event payload: %w", err)
		}
	}

	return &Event{
		EventID:    id,
		RoutingKey: routingKey,
		OccurredAt: now.UTC(),
		Payload:    raw,
	}, nil
}

// Decode unmarshals the payload into dst.
func (e *Event) Decode(dst any) error {
	if len(e.Payload) == 0 {
		return nil
	}
	return json.Unmarshal(e.Payload, dst)
}

// Handler processes events for the routing keys it declares.
type Handler interface {
	// EventTypes returns the routing keys this handler accepts.
	EventTypes() []string

	// Handle processes the event.
	Handle(ctx context.Context, event *Event) error
}

// Publisher sends events to a message broker.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, payload []byte) error
	Close() error
}

// Consumer receives events from a message broker.
type Consumer interface {
	// Start consumes until ctx is cancelled or Close is called.
	Start(ctx context.Context) error
	RegisterHandler(handler Handler)
	Close() error
}

// PublishEvent marshals event and publishes it under its routing key.
func PublishEvent(ctx context.Context, publisher Publisher, event *Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	return publisher.Publish(ctx, event.RoutingKey, body)
}
