package payment

import (
	"github.com/craftline/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Aggregate type constant
const AggregateTypePayment = "Payment"

// Event type constants
const (
	EventTypePaymentCaptured = "PaymentCaptured"
	EventTypePaymentFailed   = "PaymentFailed"
	EventTypePaymentRefunded = "PaymentRefunded"
)

// PaymentCapturedEvent is published when a payment is captured
type PaymentCapturedEvent struct {
	shared.BaseDomainEvent
	PaymentID        uuid.UUID       `json:"payment_id"`
	OrderID          *uuid.UUID      `json:"order_id,omitempty"`
	Gateway          Gateway         `json:"gateway"`
	GatewayPaymentID string          `json:"gateway_payment_id"`
	Amount           decimal.Decimal `json:"amount"`
}

// NewPaymentCapturedEvent creates a new PaymentCapturedEvent
func NewPaymentCapturedEvent(p *Payment) *PaymentCapturedEvent {
	return &PaymentCapturedEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent(EventTypePaymentCaptured, AggregateTypePayment, p.ID, p.TenantID),
		PaymentID:        p.ID,
		OrderID:          p.OrderID,
		Gateway:          p.Gateway,
		GatewayPaymentID: p.GatewayPaymentID,
		Amount:           p.Amount,
	}
}

// PaymentFailedEvent is published when a collection attempt fails
type PaymentFailedEvent struct {
	shared.BaseDomainEvent
	PaymentID    uuid.UUID  `json:"payment_id"`
	OrderID      *uuid.UUID `json:"order_id,omitempty"`
	ErrorCode    string     `json:"error_code"`
	ErrorMessage string     `json:"error_message"`
}

// NewPaymentFailedEvent creates a new PaymentFailedEvent
func NewPaymentFailedEvent(p *Payment) *PaymentFailedEvent {
	return &PaymentFailedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePaymentFailed, AggregateTypePayment, p.ID, p.TenantID),
		PaymentID:       p.ID,
		OrderID:         p.OrderID,
		ErrorCode:       p.ErrorCode,
		ErrorMessage:    p.ErrorMessage,
	}
}

// PaymentRefundedEvent is published for every refund applied to a payment
type PaymentRefundedEvent struct {
	shared.BaseDomainEvent
	PaymentID      uuid.UUID       `json:"payment_id"`
	OrderID        *uuid.UUID      `json:"order_id,omitempty"`
	RefundAmount   decimal.Decimal `json:"refund_amount"`
	RefundedAmount decimal.Decimal `json:"refunded_amount"`
	FullyRefunded  bool            `json:"fully_refunded"`
}

// NewPaymentRefundedEvent creates a new PaymentRefundedEvent
func NewPaymentRefundedEvent(p *Payment, refundAmount decimal.Decimal, full bool) *PaymentRefundedEvent {
	return &PaymentRefundedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePaymentRefunded, AggregateTypePayment, p.ID, p.TenantID),
		PaymentID:       p.ID,
		OrderID:         p.OrderID,
		RefundAmount:    refundAmount,
		RefundedAmount:  p.RefundedAmount,
		FullyRefunded:   full,
	}
}
