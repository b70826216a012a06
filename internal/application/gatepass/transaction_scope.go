package gatepass

import (
	"context"

	"github.com/craftline/backend/internal/domain/gatepass"
	"github.com/craftline/backend/internal/domain/inventory"
)

// TransactionScope provides transactional access to the gate pass
// repositories. Approving a pass applies every stock movement and the
// status flip in one transaction.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides the gate pass repositories scoped to
// the current transaction
type TransactionalRepositories interface {
	GatePassRepo() gatepass.GatePassRepository
	ItemRepo() inventory.InventoryItemRepository
	MovementRepo() inventory.StockMovementRepository
	PackagedProductRepo() inventory.PackagedProductRepository
	PackagedMovementRepo() inventory.PackagedProductMovementRepository
}

// NoOpTransactionScope runs the function without a real transaction.
// Used in unit tests with in-memory repositories.
type NoOpTransactionScope struct {
	passRepo             gatepass.GatePassRepository
	itemRepo             inventory.InventoryItemRepository
	movementRepo         inventory.StockMovementRepository
	packagedRepo         inventory.PackagedProductRepository
	packagedMovementRepo inventory.PackagedProductMovementRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories
func NewNoOpTransactionScope(
	passRepo gatepass.GatePassRepository,
	itemRepo inventory.InventoryItemRepository,
	movementRepo inventory.StockMovementRepository,
	packagedRepo inventory.PackagedProductRepository,
	packagedMovementRepo inventory.PackagedProductMovementRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		passRepo:             passRepo,
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

// GatePassRepo returns the gate pass repository
func (s *NoOpTransactionScope) GatePassRepo() gatepass.GatePassRepository { return s.passRepo }

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
