package persistence

import (
	"context"

	appcatalog "github.com/craftline/backend/internal/application/catalog"
	"github.com/craftline/backend/internal/domain/catalog"
	"gorm.io/gorm"
)

// GormCatalogTransactionScope implements the catalog TransactionScope using
// GORM transactions
type GormCatalogTransactionScope struct {
	db *gorm.DB
}

// NewGormCatalogTransactionScope creates a new GormCatalogTransactionScope
func NewGormCatalogTransactionScope(db *gorm.DB) *GormCatalogTransactionScope {
	return &GormCatalogTransactionScope{db: db}
}

// Execute runs the given function within a database transaction
func (s *GormCatalogTransactionScope) Execute(ctx context.Context, fn func(repos appcatalog.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormCatalogRepositories{tx: tx})
	})
}

type gormCatalogRepositories struct {
	tx *gorm.DB
}

// ProductRepo returns the product repository scoped to the transaction
func (r *gormCatalogRepositories) ProductRepo() catalog.ProductRepository {
	return NewGormProductRepository(r.tx)
}

// ShippingMethodRepo returns the shipping method repository scoped to the transaction
func (r *gormCatalogRepositories) ShippingMethodRepo() catalog.ShippingMethodRepository {
	return NewGormShippingMethodRepository(r.tx)
}

// PaymentMethodRepo returns the payment method repository scoped to the transaction
func (r *gormCatalogRepositories) PaymentMethodRepo() catalog.PaymentMethodRepository {
	return NewGormPaymentMethodRepository(r.tx)
}

// Ensure the scope implements the application interfaces
var _ appcatalog.TransactionScope = (*GormCatalogTransactionScope)(nil)
var _ appcatalog.TransactionalRepositories = (*gormCatalogRepositories)(nil)
