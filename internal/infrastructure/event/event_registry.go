package event

import (
	"github.com/craftline/backend/internal/domain/catalog"
	"github.com/craftline/backend/internal/domain/inventory"
	"github.com/craftline/backend/internal/domain/order"
	"github.com/craftline/backend/internal/domain/payment"
)

// RegisterAllEvents registers all domain event types with the serializer
// This is required for the OutboxProcessor to deserialize events from the outbox table
func RegisterAllEvents(serializer *EventSerializer) {
	// Catalog domain events
	serializer.Register(catalog.EventTypeProductCreated, &catalog.ProductCreatedEvent{})
	serializer.Register(catalog.EventTypeProductUpdated, &catalog.ProductUpdatedEvent{})

	// Inventory domain events
	serializer.Register(inventory.EventTypeStockMoved, &inventory.StockMovedEvent{})
	serializer.Register(inventory.EventTypeLowStock, &inventory.LowStockEvent{})

	// Order domain events
	serializer.Register(order.EventTypeOrderCreated, &order.OrderCreatedEvent{})
	serializer.Register(order.EventTypeOrderStatusChanged, &order.OrderStatusChangedEvent{})
	serializer.Register(order.EventTypeOrderPaymentStatusChanged, &order.OrderPaymentStatusChangedEvent{})

	// Payment domain events
	serializer.Register(payment.EventTypePaymentCaptured, &payment.PaymentCapturedEvent{})
	serializer.Register(payment.EventTypePaymentFailed, &payment.PaymentFailedEvent{})
	serializer.Register(payment.EventTypePaymentRefunded, &payment.PaymentRefundedEvent{})
}
