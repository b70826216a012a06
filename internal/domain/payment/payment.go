package payment

import (
	"fmt"
	"strings"
	"time"

	"github.com/craftline/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Gateway identifies a payment provider
type Gateway string

const (
	GatewayRazorpay Gateway = "razorpay"
	GatewayCOD      Gateway = "cod"
)

// Status represents the settlement state of a payment
type Status string

const (
	StatusPending  Status = "pending"
	StatusPaid     Status = "paid"
	StatusFailed   Status = "failed"
	StatusRefunded Status = "refunded"
)

// Payment tracks one attempt to collect money, usually against an order.
// The pair (Gateway, GatewayPaymentID) is the idempotency key for webhook
// reconciliation: every delivery is matched against it before any state change.
type Payment struct {
	shared.TenantAggregateRoot
	OrderID          *uuid.UUID      `gorm:"type:uuid;index"`
	Gateway          Gateway         `gorm:"type:varchar(20);not null;uniqueIndex:idx_payment_gateway_ref,priority:1"`
	GatewayPaymentID string          `gorm:"type:varchar(100);uniqueIndex:idx_payment_gateway_ref,priority:2"`
	GatewayOrderID   string          `gorm:"type:varchar(100);index"`
	Amount           decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	RefundedAmount   decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	Currency         string          `gorm:"type:varchar(3);not null;default:'INR'"`
	Method           string          `gorm:"type:varchar(30)"`
	Status           Status          `gorm:"type:varchar(20);not null;default:'pending'"`
	ErrorCode        string          `gorm:"type:varchar(100)"`
	ErrorMessage     string          `gorm:"type:text"`
	CapturedAt       *time.Time
}

// TableName returns the table name for GORM
func (Payment) TableName() string {
	return "payments"
}

// NewPayment creates a pending payment
func NewPayment(tenantID uuid.UUID, orderID *uuid.UUID, gateway Gateway, amount decimal.Decimal) (*Payment, error) {
	if gateway == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Payment gateway is required")
	}
	if !amount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_INPUT", "Payment amount must be positive")
	}

	return &Payment{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		OrderID:             orderID,
		Gateway:             gateway,
		Amount:              amount,
		RefundedAmount:      decimal.Zero,
		Currency:            "INR",
		Status:              StatusPending,
	}, nil
}

// AttachGatewayRefs records the gateway-side identifiers once known
func (p *Payment) AttachGatewayRefs(gatewayOrderID, gatewayPaymentID, method string) {
	changed := false
	if gatewayOrderID != "" && p.GatewayOrderID != gatewayOrderID {
		p.GatewayOrderID = gatewayOrderID
		changed = true
	}
	if gatewayPaymentID != "" && p.GatewayPaymentID != gatewayPaymentID {
		p.GatewayPaymentID = gatewayPaymentID
		changed = true
	}
	if method != "" && p.Method != method {
		p.Method = method
		changed = true
	}
	if changed {
		p.UpdatedAt = time.Now()
		p.IncrementVersion()
	}
}

// Capture marks the payment as collected. Returns false when the payment was
// already paid, which makes webhook replays a no-op.
func (p *Payment) Capture() (bool, error) {
	switch p.Status {
	case StatusPaid:
		return false, nil
	case StatusPending, StatusFailed:
		// A capture after a recorded failure can happen when the gateway
		// retried the charge; the capture wins.
		now := time.Now()
		p.Status = StatusPaid
		p.CapturedAt = &now
		p.ErrorCode = ""
		p.ErrorMessage = ""
		p.UpdatedAt = now
		p.IncrementVersion()
		p.AddDomainEvent(NewPaymentCapturedEvent(p))
		return true, nil
	default:
		return false, shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Cannot capture a %s payment", p.Status))
	}
}

// Fail records a failed collection attempt. Failures after a successful
// capture are ignored, as the gateway delivers events at least once and
// out of order.
func (p *Payment) Fail(code, message string) bool {
	if p.Status != StatusPending {
		return false
	}
	p.Status = StatusFailed
	p.ErrorCode = code
	p.ErrorMessage = message
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	p.AddDomainEvent(NewPaymentFailedEvent(p))
	return true
}

// ApplyRefund accumulates a refund against the captured amount. The second
// return value reports whether the payment is now fully refunded.
func (p *Payment) ApplyRefund(amount decimal.Decimal) (bool, error) {
	if p.Status != StatusPaid && p.Status != StatusRefunded {
		return false, shared.NewDomainError("INVALID_STATE", "Only captured payments can be refunded")
	}
	if !amount.IsPositive() {
		return false, shared.NewDomainError("INVALID_INPUT", "Refund amount must be positive")
	}
	if p.RefundedAmount.Add(amount).GreaterThan(p.Amount) {
		return false, shared.NewDomainError("INVALID_INPUT", "Refund exceeds captured amount")
	}

	p.RefundedAmount = p.RefundedAmount.Add(amount)
	full := p.RefundedAmount.GreaterThanOrEqual(p.Amount)
	if full {
		p.Status = StatusRefunded
	}
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	p.AddDomainEvent(NewPaymentRefundedEvent(p, amount, full))

	return full, nil
}

// IsPaid reports whether the payment has been captured (including fully
// refunded payments, which were captured first)
func (p *Payment) IsPaid() bool {
	return p.Status == StatusPaid || p.Status == StatusRefunded
}

// NewTransactionReference generates a ledger reference, e.g. TXN-1735200000-3fa85f64
func NewTransactionReference() string {
	hex := strings.ReplaceAll(uuid.New().String(), "-", "")
	return fmt.Sprintf("TXN-%d-%s", time.Now().Unix(), hex[:8])
}

// TransactionType classifies a ledger entry
type TransactionType string

const (
	TransactionTypePayment    TransactionType = "payment"
	TransactionTypeRefund     TransactionType = "refund"
	TransactionTypeChargeback TransactionType = "chargeback"
)

// Transaction is an append-only ledger row recording one money movement.
// Rows are never mutated or merged after creation.
type Transaction struct {
	shared.BaseEntity
	TenantID             uuid.UUID       `gorm:"type:uuid;not null;index"`
	PaymentID            uuid.UUID       `gorm:"type:uuid;not null;index"`
	OrderID              *uuid.UUID      `gorm:"type:uuid;index"`
	Reference            string          `gorm:"type:varchar(40);not null;uniqueIndex"`
	Type                 TransactionType `gorm:"type:varchar(20);not null"`
	Amount               decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Currency             string          `gorm:"type:varchar(3);not null;default:'INR'"`
	GatewayTransactionID string          `gorm:"type:varchar(100);index"`
	Note                 string          `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (Transaction) TableName() string {
	return "transactions"
}

// NewTransaction appends a ledger row for a payment state change that moved money
func NewTransaction(p *Payment, txType TransactionType, amount decimal.Decimal, gatewayTxnID string) *Transaction {
	return &Transaction{
		BaseEntity:           shared.NewBaseEntity(),
		TenantID:             p.TenantID,
		PaymentID:            p.ID,
		OrderID:              p.OrderID,
		Reference:            NewTransactionReference(),
		Type:                 txType,
		Amount:               amount,
		Currency:             p.Currency,
		GatewayTransactionID: gatewayTxnID,
	}
}
