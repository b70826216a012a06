package inventory

import (
	"strings"
	"time"

	"github.com/craftline/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// UnitOfMeasure is the measurement unit for a raw material
type UnitOfMeasure string

const (
	UnitKilogram UnitOfMeasure = "kg"
	UnitGram     UnitOfMeasure = "g"
	UnitLitre    UnitOfMeasure = "l"
	UnitMillilit UnitOfMeasure = "ml"
	UnitMetre    UnitOfMeasure = "m"
	UnitPiece    UnitOfMeasure = "pcs"
	UnitBox      UnitOfMeasure = "box"
	UnitBag      UnitOfMeasure = "bag"
)

// IsValid returns true if the unit is known
func (u UnitOfMeasure) IsValid() bool {
	switch u {
	case UnitKilogram, UnitGram, UnitLitre, UnitMillilit, UnitMetre, UnitPiece, UnitBox, UnitBag:
		return true
	}
	return false
}

// InventoryItem represents a raw material with a running stock balance.
// The balance supports fractional quantities (e.g. 0.5 kg). Items are never
// deleted once referenced by a movement; they are deactivated instead.
type InventoryItem struct {
	shared.TenantAggregateRoot
	Code          string          `gorm:"type:varchar(50);not null;uniqueIndex:idx_inventory_tenant_code,priority:2"`
	Name          string          `gorm:"type:varchar(200);not null"`
	Unit          UnitOfMeasure   `gorm:"type:varchar(10);not null"`
	CurrentStock  decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	MinStockLevel decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	ReorderLevel  decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	UnitCost      decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	IsActive      bool            `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (InventoryItem) TableName() string {
	return "inventory_items"
}

// NewInventoryItem creates a new raw material
func NewInventoryItem(tenantID uuid.UUID, code, name string, unit UnitOfMeasure) (*InventoryItem, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Inventory item code is required")
	}
	if strings.TrimSpace(name) == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Inventory item name is required")
	}
	if !unit.IsValid() {
		return nil, shared.NewDomainError("INVALID_INPUT", "Unknown unit of measure")
	}

	return &InventoryItem{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Code:                strings.ToUpper(code),
		Name:                name,
		Unit:                unit,
		CurrentStock:        decimal.Zero,
		IsActive:            true,
	}, nil
}

// ApplyMovement applies a quantity delta to the balance and returns the
// matching audit row. Magnitude must be positive; the direction decides the
// sign. An outbound movement that exceeds the current balance fails with
// ErrInsufficientStock and leaves the item untouched.
func (i *InventoryItem) ApplyMovement(movementType MovementType, direction Direction, magnitude decimal.Decimal, ref MovementRef) (*StockMovement, error) {
	if !i.IsActive {
		return nil, shared.NewDomainError("INVALID_STATE", "Inventory item is deactivated")
	}
	if !magnitude.IsPositive() {
		return nil, shared.NewDomainError("INVALID_INPUT", "Movement quantity must be positive")
	}
	resolved, err := ResolveDirection(movementType, direction)
	if err != nil {
		return nil, err
	}

	if resolved == DirectionOut && i.CurrentStock.LessThan(magnitude) {
		return nil, shared.ErrInsufficientStock
	}

	signed := magnitude
	if resolved == DirectionOut {
		signed = magnitude.Neg()
	}

	previous := i.CurrentStock
	i.CurrentStock = i.CurrentStock.Add(signed)
	i.UpdatedAt = time.Now()
	i.IncrementVersion()

	movement := newStockMovement(i, movementType, signed, ref)

	i.AddDomainEvent(NewStockMovedEvent(i, movement, previous))
	if resolved == DirectionOut && i.isBelowReorderLevel() {
		i.AddDomainEvent(NewLowStockEvent(i))
	}

	return movement, nil
}

// HasSufficientStock reports whether an outbound movement of the given
// magnitude would succeed
func (i *InventoryItem) HasSufficientStock(magnitude decimal.Decimal) bool {
	return i.CurrentStock.GreaterThanOrEqual(magnitude)
}

// SetLevels updates the alerting thresholds
func (i *InventoryItem) SetLevels(minStock, reorder decimal.Decimal) error {
	if minStock.IsNegative() || reorder.IsNegative() {
		return shared.NewDomainError("INVALID_INPUT", "Stock levels cannot be negative")
	}
	i.MinStockLevel = minStock
	i.ReorderLevel = reorder
	i.UpdatedAt = time.Now()
	i.IncrementVersion()
	return nil
}

// SetUnitCost updates the average unit cost
func (i *InventoryItem) SetUnitCost(cost decimal.Decimal) error {
	if cost.IsNegative() {
		return shared.NewDomainError("INVALID_INPUT", "Unit cost cannot be negative")
	}
	i.UnitCost = cost
	i.UpdatedAt = time.Now()
	i.IncrementVersion()
	return nil
}

// Deactivate soft-deletes the item while preserving its movement history
func (i *InventoryItem) Deactivate() {
	if !i.IsActive {
		return
	}
	i.IsActive = false
	i.UpdatedAt = time.Now()
	i.IncrementVersion()
}

// Activate restores a deactivated item
func (i *InventoryItem) Activate() {
	if i.IsActive {
		return
	}
	i.IsActive = true
	i.UpdatedAt = time.Now()
	i.IncrementVersion()
}

func (i *InventoryItem) isBelowReorderLevel() bool {
	return i.ReorderLevel.IsPositive() && i.CurrentStock.LessThanOrEqual(i.ReorderLevel)
}
