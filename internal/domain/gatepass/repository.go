package gatepass

import (
	"context"

	"github.com/craftline/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// GatePassRepository defines the interface for gate pass persistence
type GatePassRepository interface {
	// FindByIDForTenant loads a gate pass with its items
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*GatePass, error)

	// FindByNumber finds a gate pass by its document number
	FindByNumber(ctx context.Context, tenantID uuid.UUID, number string) (*GatePass, error)

	// FindAllForTenant lists gate passes for a tenant
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]GatePass, int64, error)

	// Save creates or updates a gate pass with its items
	Save(ctx context.Context, pass *GatePass) error

	// SaveWithLock updates a gate pass with optimistic concurrency control
	SaveWithLock(ctx context.Context, pass *GatePass) error
}
