package procurement

import (
	"context"

	"github.com/craftline/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// IndentRepository defines the interface for indent persistence
type IndentRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Indent, error)
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Indent, int64, error)
	Save(ctx context.Context, indent *Indent) error
}

// PurchaseOrderRepository defines the interface for PO persistence
type PurchaseOrderRepository interface {
	// FindByIDForTenant loads a PO with its items
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*PurchaseOrder, error)

	// FindByNumber finds a PO by its document number
	FindByNumber(ctx context.Context, tenantID uuid.UUID, number string) (*PurchaseOrder, error)

	// FindAllForTenant lists POs for a tenant
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]PurchaseOrder, int64, error)

	// Save creates or updates a PO with its items
	Save(ctx context.Context, po *PurchaseOrder) error

	// SaveWithLock updates a PO with optimistic concurrency control
	SaveWithLock(ctx context.Context, po *PurchaseOrder) error
}

// PurchaseReceiptRepository defines the interface for GRN persistence
type PurchaseReceiptRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*PurchaseReceipt, error)
	FindByPurchaseOrder(ctx context.Context, tenantID, purchaseOrderID uuid.UUID) ([]PurchaseReceipt, error)
	Save(ctx context.Context, receipt *PurchaseReceipt) error
}
