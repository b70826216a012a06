package persistence

import (
	"context"
	"errors"

	"github.com/craftline/backend/internal/domain/payment"
	"github.com/craftline/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormPaymentRepository implements PaymentRepository using GORM
type GormPaymentRepository struct {
	db *gorm.DB
}

// NewGormPaymentRepository creates a new GormPaymentRepository
func NewGormPaymentRepository(db *gorm.DB) *GormPaymentRepository {
	return &GormPaymentRepository{db: db}
}

// FindByID finds a payment by its ID
func (r *GormPaymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*payment.Payment, error) {
	var p payment.Payment
	if err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// FindByGatewayRef finds a payment by its webhook idempotency key
func (r *GormPaymentRepository) FindByGatewayRef(ctx context.Context, gateway payment.Gateway, gatewayPaymentID string) (*payment.Payment, error) {
	var p payment.Payment
	if err := r.db.WithContext(ctx).
		Where("gateway = ? AND gateway_payment_id = ?", gateway, gatewayPaymentID).
		First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// FindByGatewayOrderID finds a payment by the gateway-side order id
func (r *GormPaymentRepository) FindByGatewayOrderID(ctx context.Context, gateway payment.Gateway, gatewayOrderID string) (*payment.Payment, error) {
	var p payment.Payment
	if err := r.db.WithContext(ctx).
		Where("gateway = ? AND gateway_order_id = ?", gateway, gatewayOrderID).
		First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// FindByOrder lists all payments against an order
func (r *GormPaymentRepository) FindByOrder(ctx context.Context, tenantID, orderID uuid.UUID) ([]payment.Payment, error) {
	var payments []payment.Payment
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND order_id = ?", tenantID, orderID).
		Order("created_at ASC").
		Find(&payments).Error; err != nil {
		return nil, err
	}
	return payments, nil
}

// FindAllForTenant lists payments for a tenant
func (r *GormPaymentRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]payment.Payment, int64, error) {
	base := r.db.WithContext(ctx).Model(&payment.Payment{}).Where("tenant_id = ?", tenantID)

	if status, ok := filter.Filters["status"]; ok {
		base = base.Where("status = ?", status)
	}
	if gateway, ok := filter.Filters["gateway"]; ok {
		base = base.Where("gateway = ?", gateway)
	}

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	orderBy := ValidateSortField(filter.OrderBy, CommonSortFields, "created_at")
	query := base.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))
	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	var payments []payment.Payment
	if err := query.Find(&payments).Error; err != nil {
		return nil, 0, err
	}
	return payments, total, nil
}

// Save creates or updates a payment
func (r *GormPaymentRepository) Save(ctx context.Context, p *payment.Payment) error {
	return r.db.WithContext(ctx).Save(p).Error
}

// SaveWithLock saves with optimistic locking
func (r *GormPaymentRepository) SaveWithLock(ctx context.Context, p *payment.Payment) error {
	result := r.db.WithContext(ctx).
		Model(p).
		Where("id = ? AND version = ?", p.ID, p.Version-1).
		Updates(map[string]interface{}{
			"order_id":           p.OrderID,
			"gateway_payment_id": p.GatewayPaymentID,
			"gateway_order_id":   p.GatewayOrderID,
			"refunded_amount":    p.RefundedAmount,
			"method":             p.Method,
			"status":             p.Status,
			"error_code":         p.ErrorCode,
			"error_message":      p.ErrorMessage,
			"captured_at":        p.CapturedAt,
			"version":            p.Version,
			"updated_at":         p.UpdatedAt,
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// Ensure GormPaymentRepository implements PaymentRepository
var _ payment.PaymentRepository = (*GormPaymentRepository)(nil)

// GormTransactionRepository implements the append-only money movement ledger
type GormTransactionRepository struct {
	db *gorm.DB
}

// NewGormTransactionRepository creates a new GormTransactionRepository
func NewGormTransactionRepository(db *gorm.DB) *GormTransactionRepository {
	return &GormTransactionRepository{db: db}
}

// Save appends ledger rows; existing rows are never updated
func (r *GormTransactionRepository) Save(ctx context.Context, transactions ...*payment.Transaction) error {
	if len(transactions) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(transactions).Error
}

// FindByPayment lists the ledger rows of one payment, oldest first
func (r *GormTransactionRepository) FindByPayment(ctx context.Context, paymentID uuid.UUID) ([]payment.Transaction, error) {
	var transactions []payment.Transaction
	if err := r.db.WithContext(ctx).
		Where("payment_id = ?", paymentID).
		Order("created_at ASC").
		Find(&transactions).Error; err != nil {
		return nil, err
	}
	return transactions, nil
}

// FindByOrder lists the ledger rows of one order, oldest first
func (r *GormTransactionRepository) FindByOrder(ctx context.Context, orderID uuid.UUID) ([]payment.Transaction, error) {
	var transactions []payment.Transaction
	if err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at ASC").
		Find(&transactions).Error; err != nil {
		return nil, err
	}
	return transactions, nil
}

// CountByPaymentAndType counts ledger rows of a given type for a payment
func (r *GormTransactionRepository) CountByPaymentAndType(ctx context.Context, paymentID uuid.UUID, txType payment.TransactionType) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&payment.Transaction{}).
		Where("payment_id = ? AND type = ?", paymentID, txType).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Ensure GormTransactionRepository implements TransactionRepository
var _ payment.TransactionRepository = (*GormTransactionRepository)(nil)
