package catalog

import (
	"context"

	"github.com/craftline/backend/internal/domain/catalog"
)

// TransactionScope provides transactional access to the catalog repositories
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides the catalog repositories scoped to
// the current transaction
type TransactionalRepositories interface {
	ProductRepo() catalog.ProductRepository
	ShippingMethodRepo() catalog.ShippingMethodRepository
	PaymentMethodRepo() catalog.PaymentMethodRepository
}

// NoOpTransactionScope runs the function without a real transaction.
// Used in unit tests with in-memory repositories.
type NoOpTransactionScope struct {
	productRepo        catalog.ProductRepository
	shippingMethodRepo catalog.ShippingMethodRepository
	paymentMethodRepo  catalog.PaymentMethodRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories
func NewNoOpTransactionScope(
	productRepo catalog.ProductRepository,
	shippingMethodRepo catalog.ShippingMethodRepository,
	paymentMethodRepo catalog.PaymentMethodRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		productRepo:        productRepo,
		shippingMethodRepo: shippingMethodRepo,
		paymentMethodRepo:  paymentMethodRepo,
	}
}

// Execute runs the function without a transaction
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// ProductRepo returns the product repository
func (s *NoOpTransactionScope) ProductRepo() catalog.ProductRepository { return s.productRepo }

// ShippingMethodRepo returns the shipping method repository
func (s *NoOpTransactionScope) ShippingMethodRepo() catalog.ShippingMethodRepository {
	return s.shippingMethodRepo
}

// PaymentMethodRepo returns the payment method repository
func (s *NoOpTransactionScope) PaymentMethodRepo() catalog.PaymentMethodRepository {
	return s.paymentMethodRepo
}

// Ensure NoOpTransactionScope implements both interfaces
var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
