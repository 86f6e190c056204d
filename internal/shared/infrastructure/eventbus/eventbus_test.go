package eventbus_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/felixgeelhaar/lingua/internal/shared/infrastructure/eventbus"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockHandler struct {
	eventTypes []string
	events     []*eventbus.Event
	err        error
}

func (m *mockHandler) EventTypes() []string {
	return m.eventTypes
}

func (m *mockHandler) Handle(_ context.Context, event *eventbus.Event) error {
	m.events = append(m.events, event)
	return m.err
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type syncPayload struct {
	Reason string `json:"reason"`
}

func TestNewEvent(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	event, err := eventbus.NewEvent("history.sync.requested", syncPayload{Reason: "append"}, now)
	require.NoError(t, err)

	assert.Equal(t, "history.sync.requested", event.RoutingKey)
	assert.True(t, now.Equal(event.OccurredAt))
	assert.NotEqual(t, uuid.Nil, event.EventID)

	var decoded syncPayload
	require.NoError(t, event.Decode(&decoded))
	assert.Equal(t, "append", decoded.Reason)
}

func TestEvent_DecodeEmptyPayload(t *testing.T) {
	event, err := eventbus.NewEvent("history.sync.requested", nil, time.Now())
	require.NoError(t, err)

	var decoded syncPayload
	assert.NoError(t, event.Decode(&decoded))
	assert.Empty(t, decoded.Reason)
}

func TestRegistry_Dispatch(t *testing.T) {
	registry := eventbus.NewRegistry(testLogger())

	first := &mockHandler{eventTypes: []string{"history.sync.requested"}}
	second := &mockHandler{eventTypes: []string{"history.sync.requested", "license.changed"}, err: errors.New("boom")}
	registry.Register(first)
	registry.Register(second)

	assert.Len(t, registry.Handlers("history.sync.requested"), 2)
	assert.Len(t, registry.Handlers("license.changed"), 1)
	assert.Empty(t, registry.Handlers("unknown"))
	assert.ElementsMatch(t, []string{"history.sync.requested", "license.changed"}, registry.EventTypes())

	err := registry.Dispatch(context.Background(), &eventbus.Event{RoutingKey: "history.sync.requested"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
	assert.Len(t, first.events, 1, "a failing handler must not stop the others")
	assert.Len(t, second.events, 1)

	assert.NoError(t, registry.Dispatch(context.Background(), &eventbus.Event{RoutingKey: "unknown"}))
}

func TestInProcessBus_Publish(t *testing.T) {
	bus := eventbus.NewInProcessBus(testLogger())
	handler := &mockHandler{eventTypes: []string{"history.sync.requested"}}
	bus.RegisterHandler(handler)

	event, err := eventbus.NewEvent("history.sync.requested", syncPayload{Reason: "manual"}, time.Now())
	require.NoError(t, err)

	require.NoError(t, eventbus.PublishEvent(context.Background(), bus, event))

	require.Len(t, handler.events, 1)
	assert.Equal(t, event.EventID, handler.events[0].EventID)
}

func TestInProcessBus_RoutingKeyFallback(t *testing.T) {
	bus := eventbus.NewInProcessBus(testLogger())
	handler := &mockHandler{eventTypes: []string{"history.sync.requested"}}
	bus.RegisterHandler(handler)

	body, err := json.Marshal(map[string]any{"occurred_at": time.Now()})
	require.NoError(t, err)

	require.NoError(t, bus.Publish(context.Background(), "history.sync.requested", body))
	assert.Len(t, handler.events, 1)
}

func TestInProcessBus_SwallowsFailures(t *testing.T) {
	bus := eventbus.NewInProcessBus(testLogger())
	bus.RegisterHandler(&mockHandler{eventTypes: []string{"history.sync.requested"}, err: errors.New("boom")})

	assert.NoError(t, bus.Publish(context.Background(), "history.sync.requested", []byte(`{}`)))
	assert.NoError(t, bus.Publish(context.Background(), "history.sync.requested", []byte(`not json`)))
	assert.NoError(t, bus.Close())
}
