package order

import (
	"context"

	"github.com/craftline/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// OrderRepository defines the interface for order persistence
type OrderRepository interface {
	// FindByID finds an order with its items
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)

	// FindByIDForTenant finds an order by ID within a tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Order, error)

	// FindByOrderNumber finds an order by its human-facing number
	FindByOrderNumber(ctx context.Context, tenantID uuid.UUID, orderNumber string) (*Order, error)

	// FindByUser lists a user's orders, newest first
	FindByUser(ctx context.Context, tenantID, userID uuid.UUID, filter shared.Filter) ([]Order, int64, error)

	// FindAllForTenant lists all orders for a tenant
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Order, int64, error)

	// Save creates or updates an order with its items
	Save(ctx context.Context, order *Order) error

	// SaveWithLock updates an order with optimistic concurrency control
	SaveWithLock(ctx context.Context, order *Order) error
}

// CartRepository defines the interface for cart persistence
type CartRepository interface {
	// FindByUser returns the user's cart, or shared.ErrNotFound when absent
	FindByUser(ctx context.Context, tenantID, userID uuid.UUID) (*Cart, error)

	// Save creates or updates a cart with its items
	Save(ctx context.Context, cart *Cart) error
}

// AddressRepository defines the interface for shipping address persistence
type AddressRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Address, error)
	FindByUser(ctx context.Context, tenantID, userID uuid.UUID) ([]Address, error)
	Save(ctx context.Context, address *Address) error
}
