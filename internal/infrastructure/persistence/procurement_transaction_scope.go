package persistence

import (
	"context"

	appprocurement "github.com/craftline/backend/internal/application/procurement"
	"github.com/craftline/backend/internal/domain/inventory"
	"github.com/craftline/backend/internal/domain/procurement"
	"gorm.io/gorm"
)

// GormProcurementTransactionScope implements the procurement TransactionScope
// using GORM transactions. Applying a receipt touches the PO, the GRN and the
// raw material balances in one transaction.
type GormProcurementTransactionScope struct {
	db *gorm.DB
}

// NewGormProcurementTransactionScope creates a new GormProcurementTransactionScope
func NewGormProcurementTransactionScope(db *gorm.DB) *GormProcurementTransactionScope {
	return &GormProcurementTransactionScope{db: db}
}

// Execute runs the given function within a database transaction
func (s *GormProcurementTransactionScope) Execute(ctx context.Context, fn func(repos appprocurement.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormProcurementRepositories{tx: tx})
	})
}

type gormProcurementRepositories struct {
	tx *gorm.DB
}

// IndentRepo returns the indent repository scoped to the transaction
func (r *gormProcurementRepositories) IndentRepo() procurement.IndentRepository {
	return NewGormIndentRepository(r.tx)
}

// PurchaseOrderRepo returns the PO repository scoped to the transaction
func (r *gormProcurementRepositories) PurchaseOrderRepo() procurement.PurchaseOrderRepository {
	return NewGormPurchaseOrderRepository(r.tx)
}

// ReceiptRepo returns the GRN repository scoped to the transaction
func (r *gormProcurementRepositories) ReceiptRepo() procurement.PurchaseReceiptRepository {
	return NewGormPurchaseReceiptRepository(r.tx)
}

// ItemRepo returns the raw material repository scoped to the transaction
func (r *gormProcurementRepositories) ItemRepo() inventory.InventoryItemRepository {
	return NewGormInventoryItemRepository(r.tx)
}

// MovementRepo returns the audit row repository scoped to the transaction
func (r *gormProcurementRepositories) MovementRepo() inventory.StockMovementRepository {
	return NewGormStockMovementRepository(r.tx)
}

// Ensure the scope implements the application interfaces
var _ appprocurement.TransactionScope = (*GormProcurementTransactionScope)(nil)
var _ appprocurement.TransactionalRepositories = (*gormProcurementRepositories)(nil)
