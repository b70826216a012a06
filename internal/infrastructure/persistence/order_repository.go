package persistence

import (
	"context"
	"errors"

	"github.com/craftline/backend/internal/domain/order"
	"github.com/craftline/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormOrderRepository implements OrderRepository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// FindByID finds an order with its items
func (r *GormOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	var o order.Order
	if err := r.db.WithContext(ctx).
		Preload("Items").
		First(&o, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &o, nil
}

// FindByIDForTenant finds an order by ID within a tenant
func (r *GormOrderRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*order.Order, error) {
	var o order.Order
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&o).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &o, nil
}

// FindByOrderNumber finds an order by its human-facing number
func (r *GormOrderRepository) FindByOrderNumber(ctx context.Context, tenantID uuid.UUID, orderNumber string) (*order.Order, error) {
	var o order.Order
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("tenant_id = ? AND order_number = ?", tenantID, orderNumber).
		First(&o).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &o, nil
}

// FindByUser lists a user's orders, newest first
func (r *GormOrderRepository) FindByUser(ctx context.Context, tenantID, userID uuid.UUID, filter shared.Filter) ([]order.Order, int64, error) {
	return r.list(ctx, r.db.WithContext(ctx).Model(&order.Order{}).
		Where("tenant_id = ? AND user_id = ?", tenantID, userID), filter)
}

// FindAllForTenant lists all orders for a tenant
func (r *GormOrderRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]order.Order, int64, error) {
	return r.list(ctx, r.db.WithContext(ctx).Model(&order.Order{}).
		Where("tenant_id = ?", tenantID), filter)
}

func (r *GormOrderRepository) list(_ context.Context, base *gorm.DB, filter shared.Filter) ([]order.Order, int64, error) {
	if status, ok := filter.Filters["status"]; ok {
		base = base.Where("status = ?", status)
	}
	if paymentStatus, ok := filter.Filters["payment_status"]; ok {
		base = base.Where("payment_status = ?", paymentStatus)
	}
	if filter.Search != "" {
		base = base.Where("order_number ILIKE ?", "%"+filter.Search+"%")
	}

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	orderBy := ValidateSortField(filter.OrderBy, OrderSortFields, "created_at")
	query := base.Preload("Items").Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))
	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	var orders []order.Order
	if err := query.Find(&orders).Error; err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// Save creates or updates an order with its items
func (r *GormOrderRepository) Save(ctx context.Context, o *order.Order) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Items").Save(o).Error; err != nil {
			return err
		}
		return saveOrderItems(tx, o)
	})
}

// SaveWithLock saves with optimistic locking. Order lines are immutable after
// creation, so only the header row is updated.
func (r *GormOrderRepository) SaveWithLock(ctx context.Context, o *order.Order) error {
	result := r.db.WithContext(ctx).
		Model(o).
		Where("id = ? AND version = ?", o.ID, o.Version-1).
		Updates(map[string]interface{}{
			"status":         o.Status,
			"payment_status": o.PaymentStatus,
			"cancelled_at":   o.CancelledAt,
			"version":        o.Version,
			"updated_at":     o.UpdatedAt,
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

func saveOrderItems(tx *gorm.DB, o *order.Order) error {
	for i := range o.Items {
		o.Items[i].OrderID = o.ID
		if err := tx.Save(&o.Items[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

// Ensure GormOrderRepository implements OrderRepository
var _ order.OrderRepository = (*GormOrderRepository)(nil)
