package inventory

import (
	"context"

	"github.com/craftline/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InventoryItemRepository defines the interface for raw material persistence
type InventoryItemRepository interface {
	// FindByID finds an inventory item by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*InventoryItem, error)

	// FindByIDForTenant finds an inventory item by ID within a tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*InventoryItem, error)

	// FindByCode finds an inventory item by its code within a tenant
	FindByCode(ctx context.Context, tenantID uuid.UUID, code string) (*InventoryItem, error)

	// FindByIDs loads multiple items by ID within a tenant
	FindByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]InventoryItem, error)

	// FindAllForTenant finds all inventory items for a tenant
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]InventoryItem, error)

	// FindBelowReorderLevel finds active items at or below their reorder level
	FindBelowReorderLevel(ctx context.Context, tenantID uuid.UUID) ([]InventoryItem, error)

	// Save creates or updates an inventory item
	Save(ctx context.Context, item *InventoryItem) error

	// SaveWithLock updates an item with optimistic concurrency control.
	// Returns shared.ErrConcurrencyConflict when the stored version differs.
	SaveWithLock(ctx context.Context, item *InventoryItem) error

	// CountForTenant counts items for a tenant matching the filter
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error)
}

// StockMovementRepository persists raw material audit rows
type StockMovementRepository interface {
	// Save persists one or more movements
	Save(ctx context.Context, movements ...*StockMovement) error

	// FindByItem returns the movement history of an item, newest first
	FindByItem(ctx context.Context, tenantID, itemID uuid.UUID, filter shared.Filter) ([]StockMovement, int64, error)

	// FindByReference returns all movements caused by a business document
	FindByReference(ctx context.Context, tenantID uuid.UUID, refType ReferenceType, refID uuid.UUID) ([]StockMovement, error)

	// SumByItem returns the signed sum of all movement quantities for an item
	SumByItem(ctx context.Context, tenantID, itemID uuid.UUID) (decimal.Decimal, error)
}

// PackagedProductRepository defines the interface for packaged product persistence
type PackagedProductRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*PackagedProduct, error)
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*PackagedProduct, error)
	FindByProduct(ctx context.Context, tenantID, productID uuid.UUID) ([]PackagedProduct, error)
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]PackagedProduct, error)
	Save(ctx context.Context, product *PackagedProduct) error
	SaveWithLock(ctx context.Context, product *PackagedProduct) error
}

// PackagedProductMovementRepository persists packaged product audit rows
type PackagedProductMovementRepository interface {
	Save(ctx context.Context, movements ...*PackagedProductMovement) error
	FindByProduct(ctx context.Context, tenantID, productID uuid.UUID, filter shared.Filter) ([]PackagedProductMovement, int64, error)
	FindByReference(ctx context.Context, tenantID uuid.UUID, refType ReferenceType, refID uuid.UUID) ([]PackagedProductMovement, error)
}
