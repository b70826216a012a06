package inventory

import (
	"github.com/craftline/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MovementType classifies a stock movement
type MovementType string

const (
	MovementTypePurchase   MovementType = "purchase"
	MovementTypeProduction MovementType = "production"
	MovementTypeSales      MovementType = "sales"
	MovementTypeReturn     MovementType = "return"
	MovementTypeAdjustment MovementType = "adjustment"
	MovementTypeTransfer   MovementType = "transfer"
	MovementTypeWastage    MovementType = "wastage"
)

// IsValid returns true if the movement type is known
func (t MovementType) IsValid() bool {
	switch t {
	case MovementTypePurchase, MovementTypeProduction, MovementTypeSales,
		MovementTypeReturn, MovementTypeAdjustment, MovementTypeTransfer, MovementTypeWastage:
		return true
	}
	return false
}

// Direction is the sign a movement applies to a balance
type Direction int

const (
	// DirectionIn increases the balance
	DirectionIn Direction = 1
	// DirectionOut decreases the balance
	DirectionOut Direction = -1
)

// IsValid returns true for In or Out
func (d Direction) IsValid() bool {
	return d == DirectionIn || d == DirectionOut
}

// fixedDirections holds movement types whose direction never depends on context.
// Production, adjustment and transfer movements carry an explicit direction from
// the caller: production consumes raw materials and produces packaged goods,
// adjustments correct in either direction, transfers have a sending and a
// receiving side.
var fixedDirections = map[MovementType]Direction{
	MovementTypePurchase: DirectionIn,
	MovementTypeReturn:   DirectionIn,
	MovementTypeSales:    DirectionOut,
	MovementTypeWastage:  DirectionOut,
}

// DirectionOf returns the fixed direction for a movement type.
// The second return value is false when the direction is context-dependent
// and must be supplied by the caller.
func DirectionOf(t MovementType) (Direction, bool) {
	d, ok := fixedDirections[t]
	return d, ok
}

// ResolveDirection validates the caller-supplied direction against the
// movement type's fixed direction, if it has one
func ResolveDirection(t MovementType, requested Direction) (Direction, error) {
	if !t.IsValid() {
		return 0, shared.NewDomainError("INVALID_INPUT", "Unknown movement type")
	}
	if !requested.IsValid() {
		return 0, shared.NewDomainError("INVALID_INPUT", "Movement direction must be in or out")
	}
	if fixed, ok := DirectionOf(t); ok {
		if requested != fixed {
			return 0, shared.NewDomainError("INVALID_INPUT", "Movement direction conflicts with movement type")
		}
		return fixed, nil
	}
	return requested, nil
}

// ReferenceType identifies the business document that caused a movement
type ReferenceType string

const (
	ReferenceTypePurchaseReceipt ReferenceType = "purchase_receipt"
	ReferenceTypeProductionBatch ReferenceType = "production_batch"
	ReferenceTypeGatePass        ReferenceType = "gate_pass"
	ReferenceTypeOrder           ReferenceType = "order"
	ReferenceTypeAdjustment      ReferenceType = "manual_adjustment"
)

// MovementRef links a movement to its originating document
type MovementRef struct {
	Type ReferenceType
	ID   uuid.UUID
	Note string
}

// StockMovement is an immutable audit row for a raw material balance change.
// Quantity is stored signed: positive for inbound, negative for outbound.
type StockMovement struct {
	shared.BaseEntity
	TenantID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	InventoryItemID uuid.UUID       `gorm:"type:uuid;not null;index:idx_stock_movement_item"`
	MovementType    MovementType    `gorm:"type:varchar(20);not null"`
	Quantity        decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	BalanceAfter    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	ReferenceType   ReferenceType   `gorm:"type:varchar(30);not null"`
	ReferenceID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	Note            string          `gorm:"type:text"`
	CreatedBy       *uuid.UUID      `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (StockMovement) TableName() string {
	return "stock_movements"
}

// newStockMovement records a signed delta against a raw material.
// Only the inventory item's movement methods create these rows, so the
// signed quantity always matches the balance change actually applied.
func newStockMovement(item *InventoryItem, movementType MovementType, signedQuantity decimal.Decimal, ref MovementRef) *StockMovement {
	return &StockMovement{
		BaseEntity:      shared.NewBaseEntity(),
		TenantID:        item.TenantID,
		InventoryItemID: item.ID,
		MovementType:    movementType,
		Quantity:        signedQuantity,
		BalanceAfter:    item.CurrentStock,
		ReferenceType:   ref.Type,
		ReferenceID:     ref.ID,
		Note:            ref.Note,
	}
}

// PackagedProductMovement is an immutable audit row for a packaged product
// balance change. Quantity is stored signed, in whole units.
type PackagedProductMovement struct {
	shared.BaseEntity
	TenantID          uuid.UUID     `gorm:"type:uuid;not null;index"`
	PackagedProductID uuid.UUID     `gorm:"type:uuid;not null;index:idx_packaged_movement_product"`
	MovementType      MovementType  `gorm:"type:varchar(20);not null"`
	Quantity          int           `gorm:"not null"`
	BalanceAfter      int           `gorm:"not null"`
	ReferenceType     ReferenceType `gorm:"type:varchar(30);not null"`
	ReferenceID       uuid.UUID     `gorm:"type:uuid;not null;index"`
	Note              string        `gorm:"type:text"`
	CreatedBy         *uuid.UUID    `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (PackagedProductMovement) TableName() string {
	return "packaged_product_movements"
}

func newPackagedProductMovement(product *PackagedProduct, movementType MovementType, signedQuantity int, ref MovementRef) *PackagedProductMovement {
	return &PackagedProductMovement{
		BaseEntity:        shared.NewBaseEntity(),
		TenantID:          product.TenantID,
		PackagedProductID: product.ID,
		MovementType:      movementType,
		Quantity:          signedQuantity,
		BalanceAfter:      product.StockQuantity,
		ReferenceType:     ref.Type,
		ReferenceID:       ref.ID,
		Note:              ref.Note,
	}
}
