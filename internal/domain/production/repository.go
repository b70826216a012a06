package production

import (
	"context"

	"github.com/craftline/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// BillOfMaterialRepository defines the interface for BOM persistence
type BillOfMaterialRepository interface {
	// FindByIDForTenant loads a BOM with its items
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*BillOfMaterial, error)

	// FindActiveByProduct returns the single active BOM revision for a product
	FindActiveByProduct(ctx context.Context, tenantID, productID uuid.UUID) (*BillOfMaterial, error)

	// FindByProduct lists all BOM revisions of a product
	FindByProduct(ctx context.Context, tenantID, productID uuid.UUID) ([]BillOfMaterial, error)

	// Save creates or updates a BOM with its items
	Save(ctx context.Context, bom *BillOfMaterial) error

	// DeactivateSiblings deactivates every other BOM revision of the product
	DeactivateSiblings(ctx context.Context, tenantID, productID, keepID uuid.UUID) error
}

// ProductionBatchRepository defines the interface for batch persistence
type ProductionBatchRepository interface {
	// FindByIDForTenant loads a batch with materials and packaging lines
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*ProductionBatch, error)

	// FindByNumber finds a batch by its document number
	FindByNumber(ctx context.Context, tenantID uuid.UUID, number string) (*ProductionBatch, error)

	// FindAllForTenant lists batches for a tenant
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]ProductionBatch, int64, error)

	// Save creates or updates a batch with its lines
	Save(ctx context.Context, batch *ProductionBatch) error

	// SaveWithLock updates a batch with optimistic concurrency control
	SaveWithLock(ctx context.Context, batch *ProductionBatch) error
}
