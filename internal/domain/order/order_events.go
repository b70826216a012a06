package order

import (
	"github.com/craftline/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Aggregate type constant
const AggregateTypeOrder = "Order"

// Event type constants
const (
	EventTypeOrderCreated              = "OrderCreated"
	EventTypeOrderStatusChanged        = "OrderStatusChanged"
	EventTypeOrderPaymentStatusChanged = "OrderPaymentStatusChanged"
)

// OrderCreatedEvent is published when a cart is materialized into an order
type OrderCreatedEvent struct {
	shared.BaseDomainEvent
	OrderID     uuid.UUID       `json:"order_id"`
	OrderNumber string          `json:"order_number"`
	UserID      uuid.UUID       `json:"user_id"`
	ItemCount   int             `json:"item_count"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

// NewOrderCreatedEvent creates a new OrderCreatedEvent
func NewOrderCreatedEvent(o *Order) *OrderCreatedEvent {
	return &OrderCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderCreated, AggregateTypeOrder, o.ID, o.TenantID),
		OrderID:         o.ID,
		OrderNumber:     o.OrderNumber,
		UserID:          o.UserID,
		ItemCount:       len(o.Items),
		TotalAmount:     o.TotalAmount,
	}
}

// OrderStatusChangedEvent is published on every fulfilment transition
type OrderStatusChangedEvent struct {
	shared.BaseDomainEvent
	OrderID     uuid.UUID   `json:"order_id"`
	OrderNumber string      `json:"order_number"`
	FromStatus  OrderStatus `json:"from_status"`
	ToStatus    OrderStatus `json:"to_status"`
}

// NewOrderStatusChangedEvent creates a new OrderStatusChangedEvent
func NewOrderStatusChangedEvent(o *Order, from OrderStatus) *OrderStatusChangedEvent {
	return &OrderStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderStatusChanged, AggregateTypeOrder, o.ID, o.TenantID),
		OrderID:         o.ID,
		OrderNumber:     o.OrderNumber,
		FromStatus:      from,
		ToStatus:        o.Status,
	}
}

// OrderPaymentStatusChangedEvent is published when reconciliation moves the
// settlement state of an order
type OrderPaymentStatusChangedEvent struct {
	shared.BaseDomainEvent
	OrderID       uuid.UUID     `json:"order_id"`
	OrderNumber   string        `json:"order_number"`
	PaymentStatus PaymentStatus `json:"payment_status"`
}

// NewOrderPaymentStatusChangedEvent creates a new OrderPaymentStatusChangedEvent
func NewOrderPaymentStatusChangedEvent(o *Order) *OrderPaymentStatusChangedEvent {
	return &OrderPaymentStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderPaymentStatusChanged, AggregateTypeOrder, o.ID, o.TenantID),
		OrderID:         o.ID,
		OrderNumber:     o.OrderNumber,
		PaymentStatus:   o.PaymentStatus,
	}
}
