package procurement

import (
	"context"

	"github.com/craftline/backend/internal/domain/inventory"
	"github.com/craftline/backend/internal/domain/procurement"
)

// TransactionScope provides transactional access to the procurement
// repositories. Applying a receipt touches the PO, the GRN and the raw
// material balances in one transaction.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides the procurement repositories scoped to
// the current transaction
type TransactionalRepositories interface {
	IndentRepo() procurement.IndentRepository
	PurchaseOrderRepo() procurement.PurchaseOrderRepository
	ReceiptRepo() procurement.PurchaseReceiptRepository
	ItemRepo() inventory.InventoryItemRepository
	MovementRepo() inventory.StockMovementRepository
}

// NoOpTransactionScope runs the function without a real transaction.
// Used in unit tests with in-memory repositories.
type NoOpTransactionScope struct {
	indentRepo        procurement.IndentRepository
	purchaseOrderRepo procurement.PurchaseOrderRepository
	receiptRepo       procurement.PurchaseReceiptRepository
	itemRepo          inventory.InventoryItemRepository
	movementRepo      inventory.StockMovementRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories
func NewNoOpTransactionScope(
	indentRepo procurement.IndentRepository,
	purchaseOrderRepo procurement.PurchaseOrderRepository,
	receiptRepo procurement.PurchaseReceiptRepository,
	itemRepo inventory.InventoryItemRepository,
	movementRepo inventory.StockMovementRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		indentRepo:        indentRepo,
		purchaseOrderRepo: purchaseOrderRepo,
		receiptRepo:       receiptRepo,
		itemRepo:          itemRepo,
		movementRepo:      movementRepo,
	}
}

// Execute runs the function without a transaction
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// IndentRepo returns the indent repository
func (s *NoOpTransactionScope) IndentRepo() procurement.IndentRepository { return s.indentRepo }

// PurchaseOrderRepo returns the PO repository
func (s *NoOpTransactionScope) PurchaseOrderRepo() procurement.PurchaseOrderRepository {
	return s.purchaseOrderRepo
}

// ReceiptRepo returns the GRN repository
func (s *NoOpTransactionScope) ReceiptRepo() procurement.PurchaseReceiptRepository {
	return s.receiptRepo
}

// ItemRepo returns the raw material repository
func (s *NoOpTransactionScope) ItemRepo() inventory.InventoryItemRepository { return s.itemRepo }

// MovementRepo returns the raw material audit row repository
func (s *NoOpTransactionScope) MovementRepo() inventory.StockMovementRepository {
	return s.movementRepo
}

// Ensure NoOpTransactionScope implements both interfaces
var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
