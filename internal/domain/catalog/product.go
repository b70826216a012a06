package catalog

import (
	"strings"
	"time"

	"github.com/craftline/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductStatus represents the status of a product
type ProductStatus string

const (
	ProductStatusActive       ProductStatus = "active"
	ProductStatusInactive     ProductStatus = "inactive"
	ProductStatusDiscontinued ProductStatus = "discontinued"
)

// Product represents a sellable catalog item
// It is the aggregate root for storefront pricing and stock
type Product struct {
	shared.TenantAggregateRoot
	SKU           string          `gorm:"type:varchar(50);not null;uniqueIndex:idx_product_tenant_sku,priority:2"`
	Name          string          `gorm:"type:varchar(200);not null"`
	Description   string          `gorm:"type:text"`
	HSNCode       string          `gorm:"type:varchar(20);index"`
	Price         decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	TaxRate       decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0"` // GST percentage, e.g. 18.00
	StockQuantity int             `gorm:"not null;default:0"`
	Status        ProductStatus   `gorm:"type:varchar(20);not null;default:'active'"`
}

// TableName returns the table name for GORM
func (Product) TableName() string {
	return "products"
}

// NewProduct creates a new product
func NewProduct(tenantID uuid.UUID, sku, name string, price, taxRate decimal.Decimal) (*Product, error) {
	if err := validateSKU(sku); err != nil {
		return nil, err
	}
	if err := validateProductName(name); err != nil {
		return nil, err
	}
	if price.IsNegative() {
		return nil, shared.NewDomainError("INVALID_INPUT", "Price cannot be negative")
	}
	if taxRate.IsNegative() || taxRate.GreaterThan(decimal.NewFromInt(100)) {
		return nil, shared.NewDomainError("INVALID_INPUT", "Tax rate must be between 0 and 100")
	}

	product := &Product{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		SKU:                 strings.ToUpper(sku),
		Name:                name,
		Price:               price,
		TaxRate:             taxRate,
		Status:              ProductStatusActive,
	}

	product.AddDomainEvent(NewProductCreatedEvent(product))

	return product, nil
}

// Update updates the product's basic information
func (p *Product) Update(name, description, hsnCode string) error {
	if err := validateProductName(name); err != nil {
		return err
	}

	p.Name = name
	p.Description = description
	p.HSNCode = hsnCode
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	p.AddDomainEvent(NewProductUpdatedEvent(p))

	return nil
}

// SetPricing updates the selling price and tax rate
func (p *Product) SetPricing(price, taxRate decimal.Decimal) error {
	if price.IsNegative() {
		return shared.NewDomainError("INVALID_INPUT", "Price cannot be negative")
	}
	if taxRate.IsNegative() || taxRate.GreaterThan(decimal.NewFromInt(100)) {
		return shared.NewDomainError("INVALID_INPUT", "Tax rate must be between 0 and 100")
	}

	p.Price = price
	p.TaxRate = taxRate
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	p.AddDomainEvent(NewProductUpdatedEvent(p))

	return nil
}

// ReserveStock decrements the catalog stock for an order line
func (p *Product) ReserveStock(quantity int) error {
	if quantity <= 0 {
		return shared.NewDomainError("INVALID_INPUT", "Quantity must be positive")
	}
	if p.Status != ProductStatusActive {
		return shared.NewDomainError("INVALID_STATE", "Product is not active")
	}
	if p.StockQuantity < quantity {
		return shared.ErrInsufficientStock
	}

	p.StockQuantity -= quantity
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	return nil
}

// ReleaseStock returns previously reserved stock, e.g. on order cancellation
func (p *Product) ReleaseStock(quantity int) error {
	if quantity <= 0 {
		return shared.NewDomainError("INVALID_INPUT", "Quantity must be positive")
	}

	p.StockQuantity += quantity
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	return nil
}

// SetStock replaces the catalog stock level directly (admin correction)
func (p *Product) SetStock(quantity int) error {
	if quantity < 0 {
		return shared.NewDomainError("INVALID_INPUT", "Stock quantity cannot be negative")
	}

	p.StockQuantity = quantity
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	return nil
}

// Activate makes the product purchasable
func (p *Product) Activate() {
	if p.Status == ProductStatusActive {
		return
	}
	p.Status = ProductStatusActive
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	p.AddDomainEvent(NewProductUpdatedEvent(p))
}

// Deactivate hides the product from the storefront
func (p *Product) Deactivate() {
	if p.Status == ProductStatusInactive {
		return
	}
	p.Status = ProductStatusInactive
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	p.AddDomainEvent(NewProductUpdatedEvent(p))
}

// IsActive returns true if the product can be ordered
func (p *Product) IsActive() bool {
	return p.Status == ProductStatusActive
}

func validateSKU(sku string) error {
	sku = strings.TrimSpace(sku)
	if sku == "" {
		return shared.NewDomainError("INVALID_INPUT", "Product SKU is required")
	}
	if len(sku) > 50 {
		return shared.NewDomainError("INVALID_INPUT", "Product SKU must not exceed 50 characters")
	}
	return nil
}

func validateProductName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_INPUT", "Product name is required")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_INPUT", "Product name must not exceed 200 characters")
	}
	return nil
}
