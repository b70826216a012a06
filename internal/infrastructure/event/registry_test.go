package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHandlerRegistry_TypedSubscription(t *testing.T) {
	registry := NewHandlerRegistry()
	handler := newTestHandler("order.confirmed", "order.cancelled")

	registry.Register(handler, "order.confirmed", "order.cancelled")

	for _, eventType := range []string{"order.confirmed", "order.cancelled"} {
		handlers := registry.GetHandlers(eventType)
		assert.Len(t, handlers, 1, "event type %s", eventType)
		assert.Equal(t, handler, handlers[0])
	}

	assert.Empty(t, registry.GetHandlers("payment.captured"))
}

func TestHandlerRegistry_WildcardSubscription(t *testing.T) {
	registry := NewHandlerRegistry()
	handler := newTestHandler()

	registry.Register(handler)

	for _, eventType := range []string{"order.confirmed", "gatepass.issued"} {
		handlers := registry.GetHandlers(eventType)
		assert.Len(t, handlers, 1, "event type %s", eventType)
		assert.Equal(t, handler, handlers[0])
	}
}

func TestHandlerRegistry_TypedAndWildcardCombine(t *testing.T) {
	registry := NewHandlerRegistry()
	typed := newTestHandler("order.confirmed")
	wildcard := newTestHandler()

	registry.Register(typed, "order.confirmed")
	registry.Register(wildcard)

	assert.Len(t, registry.GetHandlers("order.confirmed"), 2)

	others := registry.GetHandlers("refund.processed")
	assert.Len(t, others, 1)
	assert.Equal(t, wildcard, others[0])
}

func TestHandlerRegistry_Unregister(t *testing.T) {
	t.Run("typed handler", func(t *testing.T) {
		registry := NewHandlerRegistry()
		first := newTestHandler("order.confirmed")
		second := newTestHandler("order.confirmed")

		registry.Register(first, "order.confirmed")
		registry.Register(second, "order.confirmed")
		assert.Len(t, registry.GetHandlers("order.confirmed"), 2)

		registry.Unregister(first)

		handlers := registry.GetHandlers("order.confirmed")
		assert.Len(t, handlers, 1)
		assert.Equal(t, second, handlers[0])
	})

	t.Run("wildcard handler", func(t *testing.T) {
		registry := NewHandlerRegistry()
		handler := newTestHandler()

		registry.Register(handler)
		assert.Len(t, registry.GetHandlers("inventory.stock_adjusted"), 1)

		registry.Unregister(handler)
		assert.Empty(t, registry.GetHandlers("inventory.stock_adjusted"))
	})
}

func TestHandlerRegistry_GetAllHandlers(t *testing.T) {
	t.Run("counts each handler", func(t *testing.T) {
		registry := NewHandlerRegistry()
		registry.Register(newTestHandler("order.confirmed"), "order.confirmed")
		registry.Register(newTestHandler("payment.captured"), "payment.captured")
		registry.Register(newTestHandler())

		assert.Len(t, registry.GetAllHandlers(), 3)
	})

	t.Run("multi-type handler appears once", func(t *testing.T) {
		registry := NewHandlerRegistry()
		handler := newTestHandler("order.confirmed", "order.cancelled")

		registry.Register(handler, "order.confirmed", "order.cancelled")

		assert.Len(t, registry.GetAllHandlers(), 1)
	})
}
