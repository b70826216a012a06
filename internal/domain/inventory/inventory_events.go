package inventory

import (
	"github.com/craftline/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Aggregate type constants
const (
	AggregateTypeInventoryItem = "InventoryItem"
)

// Event type constants
const (
	EventTypeStockMoved = "StockMoved"
	EventTypeLowStock   = "LowStock"
)

// StockMovedEvent is published whenever a movement changes a raw material balance
type StockMovedEvent struct {
	shared.BaseDomainEvent
	InventoryItemID uuid.UUID       `json:"inventory_item_id"`
	MovementID      uuid.UUID       `json:"movement_id"`
	MovementType    MovementType    `json:"movement_type"`
	Quantity        decimal.Decimal `json:"quantity"`
	BalanceBefore   decimal.Decimal `json:"balance_before"`
	BalanceAfter    decimal.Decimal `json:"balance_after"`
	ReferenceType   ReferenceType   `json:"reference_type"`
	ReferenceID     uuid.UUID       `json:"reference_id"`
}

// NewStockMovedEvent creates a new StockMovedEvent
func NewStockMovedEvent(item *InventoryItem, movement *StockMovement, balanceBefore decimal.Decimal) *StockMovedEvent {
	return &StockMovedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockMoved, AggregateTypeInventoryItem, item.ID, item.TenantID),
		InventoryItemID: item.ID,
		MovementID:      movement.ID,
		MovementType:    movement.MovementType,
		Quantity:        movement.Quantity,
		BalanceBefore:   balanceBefore,
		BalanceAfter:    movement.BalanceAfter,
		ReferenceType:   movement.ReferenceType,
		ReferenceID:     movement.ReferenceID,
	}
}

// LowStockEvent is published when an outbound movement drops a raw material
// to or below its reorder level
type LowStockEvent struct {
	shared.BaseDomainEvent
	InventoryItemID uuid.UUID       `json:"inventory_item_id"`
	Code            string          `json:"code"`
	Name            string          `json:"name"`
	CurrentStock    decimal.Decimal `json:"current_stock"`
	ReorderLevel    decimal.Decimal `json:"reorder_level"`
}

// NewLowStockEvent creates a new LowStockEvent
func NewLowStockEvent(item *InventoryItem) *LowStockEvent {
	return &LowStockEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeLowStock, AggregateTypeInventoryItem, item.ID, item.TenantID),
		InventoryItemID: item.ID,
		Code:            item.Code,
		Name:            item.Name,
		CurrentStock:    item.CurrentStock,
		ReorderLevel:    item.ReorderLevel,
	}
}
