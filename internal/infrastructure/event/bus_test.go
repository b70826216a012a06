package event

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/craftline/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// testEvent is the domain event used across the package's tests.
type testEvent struct {
	shared.BaseDomainEvent
	Data string `json:"data"`
}

func newTestEvent(eventType string, tenantID uuid.UUID) *testEvent {
	return &testEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, "TestAggregate", uuid.New(), tenantID),
		Data:            "test data",
	}
}

// testHandler records every event it sees and fails with err when set.
type testHandler struct {
	eventTypes []string
	handled    []shared.DomainEvent
	err        error
	mu         sync.Mutex
}

func newTestHandler(eventTypes ...string) *testHandler {
	return &testHandler{eventTypes: eventTypes}
}

func (h *testHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.handled = append(h.handled, event)
	return h.err
}

func (h *testHandler) EventTypes() []string {
	return h.eventTypes
}

func (h *testHandler) setError(err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.err = err
}

func (h *testHandler) getHandled() []shared.DomainEvent {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]shared.DomainEvent(nil), h.handled...)
}

func TestInMemoryEventBus_Publish(t *testing.T) {
	t.Run("delivers to the subscribed handler", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		handler := newTestHandler("order.confirmed")
		bus.Subscribe(handler, "order.confirmed")

		evt := newTestEvent("order.confirmed", uuid.New())
		require.NoError(t, bus.Publish(context.Background(), evt))

		handled := handler.getHandled()
		require.Len(t, handled, 1)
		assert.Equal(t, evt, handled[0])
	})

	t.Run("delivers a batch in one call", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		handler := newTestHandler("inventory.stock_adjusted")
		bus.Subscribe(handler, "inventory.stock_adjusted")

		err := bus.Publish(context.Background(),
			newTestEvent("inventory.stock_adjusted", uuid.New()),
			newTestEvent("inventory.stock_adjusted", uuid.New()),
		)

		require.NoError(t, err)
		assert.Len(t, handler.getHandled(), 2)
	})

	t.Run("fans out to every matching handler", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		first := newTestHandler("order.confirmed")
		second := newTestHandler("order.confirmed")
		bus.Subscribe(first, "order.confirmed")
		bus.Subscribe(second, "order.confirmed")

		require.NoError(t, bus.Publish(context.Background(), newTestEvent("order.confirmed", uuid.New())))

		assert.Len(t, first.getHandled(), 1)
		assert.Len(t, second.getHandled(), 1)
	})

	t.Run("wildcard subscription sees every type", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		wildcard := newTestHandler()
		bus.Subscribe(wildcard)

		require.NoError(t, bus.Publish(context.Background(), newTestEvent("gatepass.issued", uuid.New())))

		assert.Len(t, wildcard.getHandled(), 1)
	})

	t.Run("one failing handler does not block the rest", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		failing := newTestHandler("order.confirmed")
		failing.setError(errors.New("projection out of date"))
		healthy := newTestHandler("order.confirmed")
		bus.Subscribe(failing, "order.confirmed")
		bus.Subscribe(healthy, "order.confirmed")

		require.NoError(t, bus.Publish(context.Background(), newTestEvent("order.confirmed", uuid.New())))

		assert.Len(t, failing.getHandled(), 1)
		assert.Len(t, healthy.getHandled(), 1)
	})

	t.Run("no matching handler is a no-op", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		handler := newTestHandler("payment.captured")
		bus.Subscribe(handler, "payment.captured")

		require.NoError(t, bus.Publish(context.Background(), newTestEvent("order.confirmed", uuid.New())))

		assert.Empty(t, handler.getHandled())
	})
}

func TestInMemoryEventBus_Unsubscribe(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	handler := newTestHandler("order.confirmed")
	bus.Subscribe(handler, "order.confirmed")

	_ = bus.Publish(context.Background(), newTestEvent("order.confirmed", uuid.New()))
	require.Len(t, handler.getHandled(), 1)

	bus.Unsubscribe(handler)

	_ = bus.Publish(context.Background(), newTestEvent("order.confirmed", uuid.New()))
	assert.Len(t, handler.getHandled(), 1)
}

func TestInMemoryEventBus_StartStop(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())

	require.NoError(t, bus.Start(context.Background()))

	handler := newTestHandler("order.confirmed")
	bus.Subscribe(handler, "order.confirmed")
	require.NoError(t, bus.Publish(context.Background(), newTestEvent("order.confirmed", uuid.New())))
	assert.Len(t, handler.getHandled(), 1)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, bus.Stop(ctx))
}
