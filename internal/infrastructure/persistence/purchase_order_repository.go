package persistence

import (
	"context"
	"errors"

	"github.com/craftline/backend/internal/domain/procurement"
	"github.com/craftline/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormPurchaseOrderRepository implements PurchaseOrderRepository using GORM
type GormPurchaseOrderRepository struct {
	db *gorm.DB
}

// NewGormPurchaseOrderRepository creates a new GormPurchaseOrderRepository
func NewGormPurchaseOrderRepository(db *gorm.DB) *GormPurchaseOrderRepository {
	return &GormPurchaseOrderRepository{db: db}
}

// FindByIDForTenant loads a PO with its items
func (r *GormPurchaseOrderRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*procurement.PurchaseOrder, error) {
	var po procurement.PurchaseOrder
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&po).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &po, nil
}

// FindByNumber finds a PO by its document number
func (r *GormPurchaseOrderRepository) FindByNumber(ctx context.Context, tenantID uuid.UUID, number string) (*procurement.PurchaseOrder, error) {
	var po procurement.PurchaseOrder
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("tenant_id = ? AND number = ?", tenantID, number).
		First(&po).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &po, nil
}

// FindAllForTenant lists POs for a tenant
func (r *GormPurchaseOrderRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]procurement.PurchaseOrder, int64, error) {
	base := r.db.WithContext(ctx).Model(&procurement.PurchaseOrder{}).
		Where("tenant_id = ?", tenantID)

	if status, ok := filter.Filters["status"]; ok {
		base = base.Where("status = ?", status)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		base = base.Where("number ILIKE ? OR supplier_name ILIKE ?", pattern, pattern)
	}

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	orderBy := ValidateSortField(filter.OrderBy, DocumentSortFields, "created_at")
	query := base.Preload("Items").Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))
	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	var orders []procurement.PurchaseOrder
	if err := query.Find(&orders).Error; err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// Save creates or updates a PO with its items
func (r *GormPurchaseOrderRepository) Save(ctx context.Context, po *procurement.PurchaseOrder) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Items").Save(po).Error; err != nil {
			return err
		}
		for i := range po.Items {
			po.Items[i].PurchaseOrderID = po.ID
			if err := tx.Save(&po.Items[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// SaveWithLock saves with optimistic locking. Receipts update the received
// quantities on the lines, so items are written alongside the header.
func (r *GormPurchaseOrderRepository) SaveWithLock(ctx context.Context, po *procurement.PurchaseOrder) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(po).
			Where("id = ? AND version = ?", po.ID, po.Version-1).
			Updates(map[string]interface{}{
				"supplier_name": po.SupplierName,
				"status":        po.Status,
				"expected_at":   po.ExpectedAt,
				"approved_by":   po.ApprovedBy,
				"approved_at":   po.ApprovedAt,
				"version":       po.Version,
				"updated_at":    po.UpdatedAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrConcurrencyConflict
		}

		for i := range po.Items {
			po.Items[i].PurchaseOrderID = po.ID
			if err := tx.Save(&po.Items[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// Ensure GormPurchaseOrderRepository implements PurchaseOrderRepository
var _ procurement.PurchaseOrderRepository = (*GormPurchaseOrderRepository)(nil)
