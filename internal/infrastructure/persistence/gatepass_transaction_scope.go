package persistence

import (
	"context"

	appgatepass "github.com/craftline/backend/internal/application/gatepass"
	"github.com/craftline/backend/internal/domain/gatepass"
	"github.com/craftline/backend/internal/domain/inventory"
	"gorm.io/gorm"
)

// GormGatePassTransactionScope implements the gate pass TransactionScope
// using GORM transactions. Approval applies every line's stock movement and
// the pass status change atomically.
type GormGatePassTransactionScope struct {
	db *gorm.DB
}

// NewGormGatePassTransactionScope creates a new GormGatePassTransactionScope
func NewGormGatePassTransactionScope(db *gorm.DB) *GormGatePassTransactionScope {
	return &GormGatePassTransactionScope{db: db}
}

// Execute runs the given function within a database transaction
func (s *GormGatePassTransactionScope) Execute(ctx context.Context, fn func(repos appgatepass.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormGatePassRepositories{tx: tx})
	})
}

type gormGatePassRepositories struct {
	tx *gorm.DB
}

// GatePassRepo returns the gate pass repository scoped to the transaction
func (r *gormGatePassRepositories) GatePassRepo() gatepass.GatePassRepository {
	return NewGormGatePassRepository(r.tx)
}

// ItemRepo returns the raw material repository scoped to the transaction
func (r *gormGatePassRepositories) ItemRepo() inventory.InventoryItemRepository {
	return NewGormInventoryItemRepository(r.tx)
}

// MovementRepo returns the audit row repository scoped to the transaction
func (r *gormGatePassRepositories) MovementRepo() inventory.StockMovementRepository {
	return NewGormStockMovementRepository(r.tx)
}

// PackagedProductRepo returns the packaged product repository scoped to the transaction
func (r *gormGatePassRepositories) PackagedProductRepo() inventory.PackagedProductRepository {
	return NewGormPackagedProductRepository(r.tx)
}

// PackagedMovementRepo returns the packaged audit row repository scoped to the transaction
func (r *gormGatePassRepositories) PackagedMovementRepo() inventory.PackagedProductMovementRepository {
	return NewGormPackagedProductMovementRepository(r.tx)
}

// Ensure the scope implements the application interfaces
var _ appgatepass.TransactionScope = (*GormGatePassTransactionScope)(nil)
var _ appgatepass.TransactionalRepositories = (*gormGatePassRepositories)(nil)
