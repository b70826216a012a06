package persistence

import (
	"context"

	appinventory "github.com/craftline/backend/internal/application/inventory"
	"github.com/craftline/backend/internal/domain/inventory"
	"gorm.io/gorm"
)

// GormInventoryTransactionScope implements the inventory TransactionScope
// using GORM transactions. A balance change and its audit row always commit
// or roll back together.
type GormInventoryTransactionScope struct {
	db *gorm.DB
}

// NewGormInventoryTransactionScope creates a new GormInventoryTransactionScope
func NewGormInventoryTransactionScope(db *gorm.DB) *GormInventoryTransactionScope {
	return &GormInventoryTransactionScope{db: db}
}

// Execute runs the given function within a database transaction
func (s *GormInventoryTransactionScope) Execute(ctx context.Context, fn func(repos appinventory.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormInventoryRepositories{tx: tx})
	})
}

type gormInventoryRepositories struct {
	tx *gorm.DB
}

// ItemRepo returns the raw material repository scoped to the transaction
func (r *gormInventoryRepositories) ItemRepo() inventory.InventoryItemRepository {
	return NewGormInventoryItemRepository(r.tx)
}

// MovementRepo returns the raw material audit row repository scoped to the transaction
func (r *gormInventoryRepositories) MovementRepo() inventory.StockMovementRepository {
	return NewGormStockMovementRepository(r.tx)
}

// PackagedProductRepo returns the packaged product repository scoped to the transaction
func (r *gormInventoryRepositories) PackagedProductRepo() inventory.PackagedProductRepository {
	return NewGormPackagedProductRepository(r.tx)
}

// PackagedMovementRepo returns the packaged audit row repository scoped to the transaction
func (r *gormInventoryRepositories) PackagedMovementRepo() inventory.PackagedProductMovementRepository {
	return NewGormPackagedProductMovementRepository(r.tx)
}

// Ensure the scope implements the application interfaces
var _ appinventory.TransactionScope = (*GormInventoryTransactionScope)(nil)
var _ appinventory.TransactionalRepositories = (*gormInventoryRepositories)(nil)
