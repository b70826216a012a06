package persistence

import (
	"context"

	apporder "github.com/craftline/backend/internal/application/order"
	"github.com/craftline/backend/internal/domain/catalog"
	"github.com/craftline/backend/internal/domain/order"
	"gorm.io/gorm"
)

// GormOrderTransactionScope implements the checkout TransactionScope using
// GORM transactions. Reserving catalog stock, writing the order and clearing
// the cart commit or roll back as one unit.
type GormOrderTransactionScope struct {
	db *gorm.DB
}

// NewGormOrderTransactionScope creates a new GormOrderTransactionScope
func NewGormOrderTransactionScope(db *gorm.DB) *GormOrderTransactionScope {
	return &GormOrderTransactionScope{db: db}
}

// Execute runs the given function within a database transaction
func (s *GormOrderTransactionScope) Execute(ctx context.Context, fn func(repos apporder.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormOrderRepositories{tx: tx})
	})
}

type gormOrderRepositories struct {
	tx *gorm.DB
}

// OrderRepo returns the order repository scoped to the transaction
func (r *gormOrderRepositories) OrderRepo() order.OrderRepository {
	return NewGormOrderRepository(r.tx)
}

// CartRepo returns the cart repository scoped to the transaction
func (r *gormOrderRepositories) CartRepo() order.CartRepository {
	return NewGormCartRepository(r.tx)
}

// AddressRepo returns the address repository scoped to the transaction
func (r *gormOrderRepositories) AddressRepo() order.AddressRepository {
	return NewGormAddressRepository(r.tx)
}

// ProductRepo returns the product repository scoped to the transaction
func (r *gormOrderRepositories) ProductRepo() catalog.ProductRepository {
	return NewGormProductRepository(r.tx)
}

// ShippingMethodRepo returns the shipping method repository scoped to the transaction
func (r *gormOrderRepositories) ShippingMethodRepo() catalog.ShippingMethodRepository {
	return NewGormShippingMethodRepository(r.tx)
}

// PaymentMethodRepo returns the payment method repository scoped to the transaction
func (r *gormOrderRepositories) PaymentMethodRepo() catalog.PaymentMethodRepository {
	return NewGormPaymentMethodRepository(r.tx)
}

// Ensure the scope implements the application interfaces
var _ apporder.TransactionScope = (*GormOrderTransactionScope)(nil)
var _ apporder.TransactionalRepositories = (*gormOrderRepositories)(nil)
