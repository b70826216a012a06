package payment

import (
	"context"

	"github.com/craftline/backend/internal/domain/order"
	"github.com/craftline/backend/internal/domain/payment"
)

// TransactionScope provides transactional access to the reconciliation
// repositories. A payment state change, its ledger row and the order status
// mirror commit or roll back as one unit.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides the reconciliation repositories scoped
// to the current transaction
type TransactionalRepositories interface {
	PaymentRepo() payment.PaymentRepository
	TransactionRepo() payment.TransactionRepository
	OrderRepo() order.OrderRepository
}

// NoOpTransactionScope runs the function without a real transaction.
// Used in unit tests with in-memory repositories.
type NoOpTransactionScope struct {
	paymentRepo     payment.PaymentRepository
	transactionRepo payment.TransactionRepository
	orderRepo       order.OrderRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories
func NewNoOpTransactionScope(
	paymentRepo payment.PaymentRepository,
	transactionRepo payment.TransactionRepository,
	orderRepo order.OrderRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		paymentRepo:     paymentRepo,
		transactionRepo: transactionRepo,
		orderRepo:       orderRepo,
	}
}

// Execute runs the function without a transaction
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// PaymentRepo returns the payment repository
func (s *NoOpTransactionScope) PaymentRepo() payment.PaymentRepository { return s.paymentRepo }

// TransactionRepo returns the ledger repository
func (s *NoOpTransactionScope) TransactionRepo() payment.TransactionRepository {
	return s.transactionRepo
}

// OrderRepo returns the order repository
func (s *NoOpTransactionScope) OrderRepo() order.OrderRepository { return s.orderRepo }

// Ensure NoOpTransactionScope implements both interfaces
var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
