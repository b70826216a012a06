package catalog

import (
	"context"

	"github.com/craftline/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ProductRepository defines the interface for product persistence
type ProductRepository interface {
	// FindByID finds a product by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)

	// FindByIDForTenant finds a product by ID within a tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Product, error)

	// FindBySKU finds a product by its SKU within a tenant
	FindBySKU(ctx context.Context, tenantID uuid.UUID, sku string) (*Product, error)

	// FindAllForTenant finds all products for a tenant
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Product, error)

	// FindActive finds all active products for a tenant
	FindActive(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Product, error)

	// Save creates or updates a product
	Save(ctx context.Context, product *Product) error

	// SaveWithLock updates a product with optimistic concurrency control
	SaveWithLock(ctx context.Context, product *Product) error

	// CountForTenant counts products for a tenant matching the filter
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error)
}

// ShippingMethodRepository defines the interface for shipping method persistence
type ShippingMethodRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*ShippingMethod, error)
	FindActiveForTenant(ctx context.Context, tenantID uuid.UUID) ([]ShippingMethod, error)
	Save(ctx context.Context, method *ShippingMethod) error
}

// PaymentMethodRepository defines the interface for payment method persistence
type PaymentMethodRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*PaymentMethod, error)
	FindActiveForTenant(ctx context.Context, tenantID uuid.UUID) ([]PaymentMethod, error)
	Save(ctx context.Context, method *PaymentMethod) error
}
