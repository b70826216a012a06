package order

import (
	"fmt"
	"strings"
	"time"

	"github.com/craftline/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderStatus represents the fulfilment state of an order
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// PaymentStatus represents the settlement state of an order
type PaymentStatus string

const (
	PaymentStatusPending       PaymentStatus = "pending"
	PaymentStatusPaid          PaymentStatus = "paid"
	PaymentStatusFailed        PaymentStatus = "failed"
	PaymentStatusRefunded      PaymentStatus = "refunded"
	PaymentStatusPartiallyPaid PaymentStatus = "partially_paid"
)

// orderTransitions defines the allowed fulfilment transitions
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:    {OrderStatusProcessing, OrderStatusCancelled},
	OrderStatusProcessing: {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped:    {OrderStatusDelivered},
	OrderStatusDelivered:  {},
	OrderStatusCancelled:  {},
}

// CanTransitionTo checks whether the fulfilment status may move to target
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// LineSpec is the priced input for one order line. Price and tax rate are
// re-read from the catalog at order time, never taken from the cart.
type LineSpec struct {
	ProductID   uuid.UUID
	ProductName string
	Quantity    int
	UnitPrice   decimal.Decimal
	TaxRate     decimal.Decimal
}

// OrderItem is an immutable price snapshot of one order line
type OrderItem struct {
	shared.BaseEntity
	OrderID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductName string          `gorm:"type:varchar(200);not null"`
	Quantity    int             `gorm:"not null"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	TaxRate     decimal.Decimal `gorm:"type:decimal(5,2);not null"`
	TaxAmount   decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	LineTotal   decimal.Decimal `gorm:"type:decimal(18,2);not null"`
}

// TableName returns the table name for GORM
func (OrderItem) TableName() string {
	return "order_items"
}

// Order is the aggregate root for a placed order and its financial snapshot
type Order struct {
	shared.TenantAggregateRoot
	OrderNumber       string          `gorm:"type:varchar(20);not null;uniqueIndex"`
	UserID            uuid.UUID       `gorm:"type:uuid;not null;index"`
	Status            OrderStatus     `gorm:"type:varchar(20);not null;default:'pending'"`
	PaymentStatus     PaymentStatus   `gorm:"type:varchar(20);not null;default:'pending'"`
	SubtotalAmount    decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	TaxAmount         decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	ShippingAmount    decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	TotalAmount       decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	ShippingAddressID uuid.UUID       `gorm:"type:uuid;not null"`
	ShippingMethodID  uuid.UUID       `gorm:"type:uuid;not null"`
	PaymentMethodID   uuid.UUID       `gorm:"type:uuid;not null"`
	Items             []OrderItem     `gorm:"foreignKey:OrderID"`
	CancelledAt       *time.Time
}

// TableName returns the table name for GORM
func (Order) TableName() string {
	return "orders"
}

// NewOrderNumber generates a human-facing order number, e.g. ORD-3FA85F64
func NewOrderNumber() string {
	hex := strings.ReplaceAll(uuid.New().String(), "-", "")
	return fmt.Sprintf("ORD-%s", strings.ToUpper(hex[:8]))
}

// NewOrder materializes priced cart lines into an order. Per-line tax is
// unitPrice*quantity*taxRate/100 rounded to 2 decimals; the order totals are
// the sums over lines plus the shipping amount.
func NewOrder(
	tenantID, userID uuid.UUID,
	lines []LineSpec,
	shippingAddressID, shippingMethodID, paymentMethodID uuid.UUID,
	shippingAmount decimal.Decimal,
) (*Order, error) {
	if len(lines) == 0 {
		return nil, shared.NewDomainError("INVALID_INPUT", "Cannot create an order from an empty cart")
	}
	if shippingAddressID == uuid.Nil || shippingMethodID == uuid.Nil || paymentMethodID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Shipping address, shipping method and payment method are required")
	}
	if shippingAmount.IsNegative() {
		return nil, shared.NewDomainError("INVALID_INPUT", "Shipping amount cannot be negative")
	}

	order := &Order{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		OrderNumber:         NewOrderNumber(),
		UserID:              userID,
		Status:              OrderStatusPending,
		PaymentStatus:       PaymentStatusPending,
		ShippingAddressID:   shippingAddressID,
		ShippingMethodID:    shippingMethodID,
		PaymentMethodID:     paymentMethodID,
		ShippingAmount:      shippingAmount,
		SubtotalAmount:      decimal.Zero,
		TaxAmount:           decimal.Zero,
	}

	for _, line := range lines {
		if line.Quantity <= 0 {
			return nil, shared.NewDomainError("INVALID_INPUT", "Order line quantity must be positive")
		}
		if line.UnitPrice.IsNegative() {
			return nil, shared.NewDomainError("INVALID_INPUT", "Order line price cannot be negative")
		}

		lineTotal := line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity)))
		lineTax := lineTotal.Mul(line.TaxRate).Div(decimal.NewFromInt(100)).Round(2)

		order.Items = append(order.Items, OrderItem{
			BaseEntity:  shared.NewBaseEntity(),
			OrderID:     order.ID,
			ProductID:   line.ProductID,
			ProductName: line.ProductName,
			Quantity:    line.Quantity,
			UnitPrice:   line.UnitPrice,
			TaxRate:     line.TaxRate,
			TaxAmount:   lineTax,
			LineTotal:   lineTotal,
		})

		order.SubtotalAmount = order.SubtotalAmount.Add(lineTotal)
		order.TaxAmount = order.TaxAmount.Add(lineTax)
	}

	order.TotalAmount = order.SubtotalAmount.Add(order.TaxAmount).Add(order.ShippingAmount)

	order.AddDomainEvent(NewOrderCreatedEvent(order))

	return order, nil
}

// UpdateStatus moves the fulfilment status along the allowed transitions
func (o *Order) UpdateStatus(target OrderStatus) error {
	if o.Status == target {
		return nil
	}
	if !o.Status.CanTransitionTo(target) {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Cannot transition order from %s to %s", o.Status, target))
	}

	previous := o.Status
	o.Status = target
	if target == OrderStatusCancelled {
		now := time.Now()
		o.CancelledAt = &now
	}
	o.UpdatedAt = time.Now()
	o.IncrementVersion()

	o.AddDomainEvent(NewOrderStatusChangedEvent(o, previous))

	return nil
}

// Cancel cancels the order. Only pending and processing orders can be cancelled.
func (o *Order) Cancel() error {
	if o.Status != OrderStatusPending && o.Status != OrderStatusProcessing {
		return shared.NewDomainError("INVALID_STATE", "Only pending or processing orders can be cancelled")
	}
	return o.UpdateStatus(OrderStatusCancelled)
}

// MarkPaid records a successful capture: payment status becomes paid and a
// pending order advances to processing
func (o *Order) MarkPaid() {
	if o.PaymentStatus == PaymentStatusPaid {
		return
	}
	o.PaymentStatus = PaymentStatusPaid
	o.UpdatedAt = time.Now()
	o.IncrementVersion()
	o.AddDomainEvent(NewOrderPaymentStatusChangedEvent(o))

	if o.Status == OrderStatusPending {
		// Transition failure cannot happen from pending
		_ = o.UpdateStatus(OrderStatusProcessing)
	}
}

// MarkPaymentFailed records a failed capture attempt
func (o *Order) MarkPaymentFailed() {
	if o.PaymentStatus != PaymentStatusPending {
		return
	}
	o.PaymentStatus = PaymentStatusFailed
	o.UpdatedAt = time.Now()
	o.IncrementVersion()
	o.AddDomainEvent(NewOrderPaymentStatusChangedEvent(o))
}

// MarkRefunded records refund progress against the order
func (o *Order) MarkRefunded(full bool) {
	target := PaymentStatusPartiallyPaid
	if full {
		target = PaymentStatusRefunded
	}
	if o.PaymentStatus == target {
		return
	}
	o.PaymentStatus = target
	o.UpdatedAt = time.Now()
	o.IncrementVersion()
	o.AddDomainEvent(NewOrderPaymentStatusChangedEvent(o))
}

// TotalQuantityByProduct returns the ordered quantity per product, used to
// restore catalog stock on cancellation
func (o *Order) TotalQuantityByProduct() map[uuid.UUID]int {
	quantities := make(map[uuid.UUID]int, len(o.Items))
	for _, item := range o.Items {
		quantities[item.ProductID] += item.Quantity
	}
	return quantities
}
