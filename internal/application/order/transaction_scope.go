package order

import (
	"context"

	"github.com/craftline/backend/internal/domain/catalog"
	"github.com/craftline/backend/internal/domain/order"
)

// TransactionScope provides transactional access to the repositories the
// checkout flow touches. Reserving catalog stock, writing the order and
// clearing the cart commit or roll back as one unit.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides the checkout repositories scoped to the
// current transaction
type TransactionalRepositories interface {
	OrderRepo() order.OrderRepository
	CartRepo() order.CartRepository
	AddressRepo() order.AddressRepository
	ProductRepo() catalog.ProductRepository
	ShippingMethodRepo() catalog.ShippingMethodRepository
	PaymentMethodRepo() catalog.PaymentMethodRepository
}

// NoOpTransactionScope runs the function without a real transaction.
// Used in unit tests with in-memory repositories.
type NoOpTransactionScope struct {
	orderRepo          order.OrderRepository
	cartRepo           order.CartRepository
	addressRepo        order.AddressRepository
	productRepo        catalog.ProductRepository
	shippingMethodRepo catalog.ShippingMethodRepository
	paymentMethodRepo  catalog.PaymentMethodRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories
func NewNoOpTransactionScope(
	orderRepo order.OrderRepository,
	cartRepo order.CartRepository,
	addressRepo order.AddressRepository,
	productRepo catalog.ProductRepository,
	shippingMethodRepo catalog.ShippingMethodRepository,
	paymentMethodRepo catalog.PaymentMethodRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		orderRepo:          orderRepo,
		cartRepo:           cartRepo,
		addressRepo:        addressRepo,
		productRepo:        productRepo,
		shippingMethodRepo: shippingMethodRepo,
		paymentMethodRepo:  paymentMethodRepo,
	}
}

// Execute runs the function without a transaction
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// OrderRepo returns the order repository
func (s *NoOpTransactionScope) OrderRepo() order.OrderRepository { return s.orderRepo }

// CartRepo returns the cart repository
func (s *NoOpTransactionScope) CartRepo() order.CartRepository { return s.cartRepo }

// AddressRepo returns the address repository
func (s *NoOpTransactionScope) AddressRepo() order.AddressRepository { return s.addressRepo }

// ProductRepo returns the catalog product repository
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
