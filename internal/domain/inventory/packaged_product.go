package inventory

import (
	"strings"
	"time"

	"github.com/craftline/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// PackagingSize is the retail pack size of a packaged product
type PackagingSize string

const (
	PackagingSize100G PackagingSize = "100g"
	PackagingSize250G PackagingSize = "250g"
	PackagingSize500G PackagingSize = "500g"
	PackagingSize1KG  PackagingSize = "1kg"
	PackagingSize5KG  PackagingSize = "5kg"
)

// IsValid returns true if the packaging size is known
func (s PackagingSize) IsValid() bool {
	switch s {
	case PackagingSize100G, PackagingSize250G, PackagingSize500G, PackagingSize1KG, PackagingSize5KG:
		return true
	}
	return false
}

// PackagedProduct represents a finished, countable retail unit derived from a
// catalog product. Stock is tracked in whole units.
type PackagedProduct struct {
	shared.TenantAggregateRoot
	ProductID     uuid.UUID     `gorm:"type:uuid;not null;index"`
	Name          string        `gorm:"type:varchar(200);not null"`
	PackagingSize PackagingSize `gorm:"type:varchar(10);not null"`
	StockQuantity int           `gorm:"not null;default:0"`
	ReorderLevel  int           `gorm:"not null;default:0"`
	IsActive      bool          `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (PackagedProduct) TableName() string {
	return "packaged_products"
}

// NewPackagedProduct creates a new packaged product
func NewPackagedProduct(tenantID, productID uuid.UUID, name string, size PackagingSize) (*PackagedProduct, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Parent product is required")
	}
	if strings.TrimSpace(name) == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Packaged product name is required")
	}
	if !size.IsValid() {
		return nil, shared.NewDomainError("INVALID_INPUT", "Unknown packaging size")
	}

	return &PackagedProduct{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		ProductID:           productID,
		Name:                name,
		PackagingSize:       size,
		IsActive:            true,
	}, nil
}

// ApplyMovement applies a whole-unit delta to the balance and returns the
// matching audit row. Semantics mirror InventoryItem.ApplyMovement.
func (p *PackagedProduct) ApplyMovement(movementType MovementType, direction Direction, magnitude int, ref MovementRef) (*PackagedProductMovement, error) {
	if !p.IsActive {
		return nil, shared.NewDomainError("INVALID_STATE", "Packaged product is deactivated")
	}
	if magnitude <= 0 {
		return nil, shared.NewDomainError("INVALID_INPUT", "Movement quantity must be positive")
	}
	resolved, err := ResolveDirection(movementType, direction)
	if err != nil {
		return nil, err
	}

	if resolved == DirectionOut && p.StockQuantity < magnitude {
		return nil, shared.ErrInsufficientStock
	}

	signed := magnitude
	if resolved == DirectionOut {
		signed = -magnitude
	}

	p.StockQuantity += signed
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	return newPackagedProductMovement(p, movementType, signed, ref), nil
}

// Deactivate soft-deletes the packaged product
func (p *PackagedProduct) Deactivate() {
	if !p.IsActive {
		return
	}
	p.IsActive = false
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
}
