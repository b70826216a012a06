package production

import (
	"context"

	"github.com/craftline/backend/internal/domain/catalog"
	"github.com/craftline/backend/internal/domain/inventory"
	"github.com/craftline/backend/internal/domain/production"
)

// TransactionScope provides transactional access to the production
// repositories. Starting a batch draws every raw material in one
// transaction; completing one books every packaged output in one.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides the production repositories scoped to
// the current transaction
type TransactionalRepositories interface {
	BOMRepo() production.BillOfMaterialRepository
	BatchRepo() production.ProductionBatchRepository
	ProductRepo() catalog.ProductRepository
	ItemRepo() inventory.InventoryItemRepository
	MovementRepo() inventory.StockMovementRepository
	PackagedProductRepo() inventory.PackagedProductRepository
	PackagedMovementRepo() inventory.PackagedProductMovementRepository
}

// NoOpTransactionScope runs the function without a real transaction.
// Used in unit tests with in-memory repositories.
type NoOpTransactionScope struct {
	bomRepo              production.BillOfMaterialRepository
	batchRepo            production.ProductionBatchRepository
	productRepo          catalog.ProductRepository
	itemRepo             inventory.InventoryItemRepository
	movementRepo         inventory.StockMovementRepository
	packagedRepo         inventory.PackagedProductRepository
	packagedMovementRepo inventory.PackagedProductMovementRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories
func NewNoOpTransactionScope(
	bomRepo production.BillOfMaterialRepository,
	batchRepo production.ProductionBatchRepository,
	productRepo catalog.ProductRepository,
	itemRepo inventory.InventoryItemRepository,
	movementRepo inventory.StockMovementRepository,
	packagedRepo inventory.PackagedProductRepository,
	packagedMovementRepo inventory.PackagedProductMovementRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		bomRepo:              bomRepo,
		batchRepo:            batchRepo,
		productRepo:          productRepo,
		itemRepo:             itemRepo,
		movementRepo:         movementRepo,
		packagedRepo:         packagedRepo,
		packagedMovementRepo: packagedMovementRepo,
	}
}

// Execute runs the function without a transaction
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// BOMRepo returns the bill of material repository
func (s *NoOpTransactionScope) BOMRepo() production.BillOfMaterialRepository { return s.bomRepo }

// BatchRepo returns the production batch repository
func (s *NoOpTransactionScope) BatchRepo() production.ProductionBatchRepository { return s.batchRepo }

// ProductRepo returns the catalog product repository
func (s *NoOpTransactionScope) ProductRepo() catalog.ProductRepository { return s.productRepo }

// ItemRepo returns the raw material repository
func (s *NoOpTransactionScope) ItemRepo() inventory.InventoryItemRepository { return s.itemRepo }

// MovementRepo returns the raw material audit row repository
func (s *NoOpTransactionScope) MovementRepo() inventory.StockMovementRepository {
	return s.movementRepo
}

// PackagedProductRepo returns the packaged product repository
func (s *NoOpTransactionScope) PackagedProductRepo() inventory.PackagedProductRepository {
	return s.packagedRepo
}

// PackagedMovementRepo returns the packaged product audit row repository
func (s *NoOpTransactionScope) PackagedMovementRepo() inventory.PackagedProductMovementRepository {
	return s.packagedMovementRepo
}

// Ensure NoOpTransactionScope implements both interfaces
var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
