package catalog

import (
	"github.com/craftline/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Aggregate type constant
const AggregateTypeProduct = "Product"

// Event type constants
const (
	EventTypeProductCreated = "ProductCreated"
	EventTypeProductUpdated = "ProductUpdated"
)

// ProductCreatedEvent is published when a new product is created
type ProductCreatedEvent struct {
	shared.BaseDomainEvent
	ProductID uuid.UUID       `json:"product_id"`
	SKU       string          `json:"sku"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	TaxRate   decimal.Decimal `json:"tax_rate"`
}

// NewProductCreatedEvent creates a new ProductCreatedEvent
func NewProductCreatedEvent(product *Product) *ProductCreatedEvent {
	return &ProductCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeProductCreated, AggregateTypeProduct, product.ID, product.TenantID),
		ProductID:       product.ID,
		SKU:             product.SKU,
		Name:            product.Name,
		Price:           product.Price,
		TaxRate:         product.TaxRate,
	}
}

// ProductUpdatedEvent is published when a product is updated
// Cache invalidation for catalog listings subscribes to this event
type ProductUpdatedEvent struct {
	shared.BaseDomainEvent
	ProductID uuid.UUID     `json:"product_id"`
	SKU       string        `json:"sku"`
	Name      string        `json:"name"`
	Status    ProductStatus `json:"status"`
}

// NewProductUpdatedEvent creates a new ProductUpdatedEvent
func NewProductUpdatedEvent(product *Product) *ProductUpdatedEvent {
	return &ProductUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeProductUpdated, AggregateTypeProduct, product.ID, product.TenantID),
		ProductID:       product.ID,
		SKU:             product.SKU,
		Name:            product.Name,
		Status:          product.Status,
	}
}
