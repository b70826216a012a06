package inventory

import (
	"context"

	"github.com/craftline/backend/internal/domain/inventory"
)

// TransactionScope provides transactional access to the inventory repositories.
// All repository operations inside Execute share one database transaction and
// commit or roll back atomically.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides the inventory repositories scoped to the
// current transaction. A balance change and its audit row always persist
// through the same scope.
type TransactionalRepositories interface {
	// ItemRepo returns the raw material repository
	ItemRepo() inventory.InventoryItemRepository
	// MovementRepo returns the raw material audit row repository
	MovementRepo() inventory.StockMovementRepository
	// PackagedProductRepo returns the packaged product repository
	PackagedProductRepo() inventory.PackagedProductRepository
	// PackagedMovementRepo returns the packaged product audit row repository
	PackagedMovementRepo() inventory.PackagedProductMovementRepository
}

// NoOpTransactionScope runs the function without a real transaction.
// Used in unit tests with in-memory repositories.
type NoOpTransactionScope struct {
	itemRepo             inventory.InventoryItemRepository
	movementRepo         inventory.StockMovementRepository
	packagedProductRepo  inventory.PackagedProductRepository
	packagedMovementRepo inventory.PackagedProductMovementRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories
func NewNoOpTransactionScope(
	itemRepo inventory.InventoryItemRepository,
	movementRepo inventory.StockMovementRepository,
	packagedProductRepo inventory.PackagedProductRepository,
	packagedMovementRepo inventory.PackagedProductMovementRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		itemRepo:             itemRepo,
		movementRepo:         movementRepo,
		packagedProductRepo:  packagedProductRepo,
		packagedMovementRepo: packagedMovementRepo,
	}
}

// Execute runs the function without a transaction
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// ItemRepo returns the raw material repository
func (s *NoOpTransactionScope) ItemRepo() inventory.InventoryItemRepository {
	return s.itemRepo
}

// MovementRepo returns the raw material audit row repository
func (s *NoOpTransactionScope) MovementRepo() inventory.StockMovementRepository {
	return s.movementRepo
}

// PackagedProductRepo returns the packaged product repository
func (s *NoOpTransactionScope) PackagedProductRepo() inventory.PackagedProductRepository {
	return s.packagedProductRepo
}

// PackagedMovementRepo returns the packaged product audit row repository
func (s *NoOpTransactionScope) PackagedMovementRepo() inventory.PackagedProductMovementRepository {
	return s.packagedMovementRepo
}

// Ensure NoOpTransactionScope implements both interfaces
var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
