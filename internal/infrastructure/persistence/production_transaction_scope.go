package persistence

import (
	"context"

	appproduction "github.com/craftline/backend/internal/application/production"
	"github.com/craftline/backend/internal/domain/catalog"
	"github.com/craftline/backend/internal/domain/inventory"
	"github.com/craftline/backend/internal/domain/production"
	"gorm.io/gorm"
)

// GormProductionTransactionScope implements the production TransactionScope
// using GORM transactions. Starting a batch draws every raw material in one
// transaction; completing one books every packaged output in one.
type GormProductionTransactionScope struct {
	db *gorm.DB
}

// NewGormProductionTransactionScope creates a new GormProductionTransactionScope
func NewGormProductionTransactionScope(db *gorm.DB) *GormProductionTransactionScope {
	return &GormProductionTransactionScope{db: db}
}

// Execute runs the given function within a database transaction
func (s *GormProductionTransactionScope) Execute(ctx context.Context, fn func(repos appproduction.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormProductionRepositories{tx: tx})
	})
}

type gormProductionRepositories struct {
	tx *gorm.DB
}

// BOMRepo returns the BOM repository scoped to the transaction
func (r *gormProductionRepositories) BOMRepo() production.BillOfMaterialRepository {
	return NewGormBillOfMaterialRepository(r.tx)
}

// BatchRepo returns the batch repository scoped to the transaction
func (r *gormProductionRepositories) BatchRepo() production.ProductionBatchRepository {
	return NewGormProductionBatchRepository(r.tx)
}

// ProductRepo returns the product repository scoped to the transaction
func (r *gormProductionRepositories) ProductRepo() catalog.ProductRepository {
	return NewGormProductRepository(r.tx)
}

// ItemRepo returns the raw material repository scoped to the transaction
func (r *gormProductionRepositories) ItemRepo() inventory.InventoryItemRepository {
	return NewGormInventoryItemRepository(r.tx)
}

// MovementRepo returns the audit row repository scoped to the transaction
func (r *gormProductionRepositories) MovementRepo() inventory.StockMovementRepository {
	return NewGormStockMovementRepository(r.tx)
}

// PackagedProductRepo returns the packaged product repository scoped to the transaction
func (r *gormProductionRepositories) PackagedProductRepo() inventory.PackagedProductRepository {
	return NewGormPackagedProductRepository(r.tx)
}

// PackagedMovementRepo returns the packaged audit row repository scoped to the transaction
func (r *gormProductionRepositories) PackagedMovementRepo() inventory.PackagedProductMovementRepository {
	return NewGormPackagedProductMovementRepository(r.tx)
}

// Ensure the scope implements the application interfaces
var _ appproduction.TransactionScope = (*GormProductionTransactionScope)(nil)
var _ appproduction.TransactionalRepositories = (*gormProductionRepositories)(nil)
