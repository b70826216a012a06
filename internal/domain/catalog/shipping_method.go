package catalog

import (
	"strings"
	"time"

	"github.com/craftline/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ShippingMethod represents a selectable delivery option with a flat fee
type ShippingMethod struct {
	shared.TenantAggregateRoot
	Name         string          `gorm:"type:varchar(100);not null"`
	Description  string          `gorm:"type:text"`
	Amount       decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	DeliveryDays int             `gorm:"not null;default:0"`
	IsActive     bool            `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (ShippingMethod) TableName() string {
	return "shipping_methods"
}

// NewShippingMethod creates a new shipping method
func NewShippingMethod(tenantID uuid.UUID, name string, amount decimal.Decimal, deliveryDays int) (*ShippingMethod, error) {
	if strings.TrimSpace(name) == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Shipping method name is required")
	}
	if amount.IsNegative() {
		return nil, shared.NewDomainError("INVALID_INPUT", "Shipping amount cannot be negative")
	}

	return &ShippingMethod{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Name:                name,
		Amount:              amount,
		DeliveryDays:        deliveryDays,
		IsActive:            true,
	}, nil
}

// Deactivate removes the method from checkout options
func (m *ShippingMethod) Deactivate() {
	m.IsActive = false
	m.UpdatedAt = time.Now()
	m.IncrementVersion()
}

// Activate makes the method selectable at checkout
func (m *ShippingMethod) Activate() {
	m.IsActive = true
	m.UpdatedAt = time.Now()
	m.IncrementVersion()
}

// PaymentMethod represents a checkout payment option (gateway, COD, ...)
type PaymentMethod struct {
	shared.TenantAggregateRoot
	Name        string `gorm:"type:varchar(100);not null"`
	GatewayCode string `gorm:"type:varchar(50);not null"` // e.g. "razorpay", "cod"
	IsActive    bool   `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (PaymentMethod) TableName() string {
	return "payment_methods"
}

// NewPaymentMethod creates a new payment method
func NewPaymentMethod(tenantID uuid.UUID, name, gatewayCode string) (*PaymentMethod, error) {
	if strings.TrimSpace(name) == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Payment method name is required")
	}
	if strings.TrimSpace(gatewayCode) == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Gateway code is required")
	}

	return &PaymentMethod{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Name:                name,
		GatewayCode:         strings.ToLower(gatewayCode),
		IsActive:            true,
	}, nil
}

// Deactivate removes the method from checkout options
func (m *PaymentMethod) Deactivate() {
	m.IsActive = false
	m.UpdatedAt = time.Now()
	m.IncrementVersion()
}

// Activate makes the method selectable at checkout
func (m *PaymentMethod) Activate() {
	m.IsActive = true
	m.UpdatedAt = time.Now()
	m.IncrementVersion()
}
