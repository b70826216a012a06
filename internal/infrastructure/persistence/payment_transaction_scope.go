package persistence

import (
	"context"

	apppayment "github.com/craftline/backend/internal/application/payment"
	"github.com/craftline/backend/internal/domain/order"
	"github.com/craftline/backend/internal/domain/payment"
	"gorm.io/gorm"
)

// GormPaymentTransactionScope implements the reconciliation TransactionScope
// using GORM transactions. A payment state change, its ledger row and the
// order status mirror commit or roll back as one unit.
type GormPaymentTransactionScope struct {
	db *gorm.DB
}

// NewGormPaymentTransactionScope creates a new GormPaymentTransactionScope
func NewGormPaymentTransactionScope(db *gorm.DB) *GormPaymentTransactionScope {
	return &GormPaymentTransactionScope{db: db}
}

// Execute runs the given function within a database transaction
func (s *GormPaymentTransactionScope) Execute(ctx context.Context, fn func(repos apppayment.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormPaymentRepositories{tx: tx})
	})
}

type gormPaymentRepositories struct {
	tx *gorm.DB
}

// PaymentRepo returns the payment repository scoped to the transaction
func (r *gormPaymentRepositories) PaymentRepo() payment.PaymentRepository {
	return NewGormPaymentRepository(r.tx)
}

// TransactionRepo returns the ledger repository scoped to the transaction
func (r *gormPaymentRepositories) TransactionRepo() payment.TransactionRepository {
	return NewGormTransactionRepository(r.tx)
}

// OrderRepo returns the order repository scoped to the transaction
func (r *gormPaymentRepositories) OrderRepo() order.OrderRepository {
	return NewGormOrderRepository(r.tx)
}

// Ensure the scope implements the application interfaces
var _ apppayment.TransactionScope = (*GormPaymentTransactionScope)(nil)
var _ apppayment.TransactionalRepositories = (*gormPaymentRepositories)(nil)
