package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/craftline/backend/internal/domain/inventory"
	"github.com/craftline/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormInventoryItemRepository implements InventoryItemRepository using GORM
type GormInventoryItemRepository struct {
	db *gorm.DB
}

// NewGormInventoryItemRepository creates a new GormInventoryItemRepository
func NewGormInventoryItemRepository(db *gorm.DB) *GormInventoryItemRepository {
	return &GormInventoryItemRepository{db: db}
}

// FindByID finds an inventory item by its ID
func (r *GormInventoryItemRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.InventoryItem, error) {
	var item inventory.InventoryItem
	if err := r.db.WithContext(ctx).First(&item, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &item, nil
}

// FindByIDForTenant finds an inventory item by ID within a tenant
func (r *GormInventoryItemRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*inventory.InventoryItem, error) {
	var item inventory.InventoryItem
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &item, nil
}

// FindByCode finds an inventory item by its code within a tenant
func (r *GormInventoryItemRepository) FindByCode(ctx context.Context, tenantID uuid.UUID, code string) (*inventory.InventoryItem, error) {
	var item inventory.InventoryItem
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND code = ?", tenantID, strings.ToUpper(code)).
		First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &item, nil
}

// FindByIDs finds multiple inventory items by their IDs
func (r *GormInventoryItemRepository) FindByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]inventory.InventoryItem, error) {
	if len(ids) == 0 {
		return []inventory.InventoryItem{}, nil
	}

	var items []inventory.InventoryItem
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id IN ?", tenantID, ids).
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// FindAllForTenant finds all inventory items for a tenant
func (r *GormInventoryItemRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]inventory.InventoryItem, error) {
	var items []inventory.InventoryItem
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&inventory.InventoryItem{}).
			Where("tenant_id = ?", tenantID),
		filter,
	)

	if err := query.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// FindBelowReorderLevel finds active items at or below their reorder level
func (r *GormInventoryItemRepository) FindBelowReorderLevel(ctx context.Context, tenantID uuid.UUID) ([]inventory.InventoryItem, error) {
	var items []inventory.InventoryItem
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND is_active = ? AND reorder_level > 0 AND current_stock <= reorder_level", tenantID, true).
		Order("code ASC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// Save creates or updates an inventory item
func (r *GormInventoryItemRepository) Save(ctx context.Context, item *inventory.InventoryItem) error {
	return r.db.WithContext(ctx).Save(item).Error
}

// SaveWithLock saves with optimistic locking. The domain already incremented
// the version, so the row must still carry the previous one.
func (r *GormInventoryItemRepository) SaveWithLock(ctx context.Context, item *inventory.InventoryItem) error {
	result := r.db.WithContext(ctx).
		Model(item).
		Where("id = ? AND version = ?", item.ID, item.Version-1).
		Updates(map[string]interface{}{
			"name":            item.Name,
			"current_stock":   item.CurrentStock,
			"min_stock_level": item.MinStockLevel,
			"reorder_level":   item.ReorderLevel,
			"unit_cost":       item.UnitCost,
			"is_active":       item.IsActive,
			"version":         item.Version,
			"updated_at":      item.UpdatedAt,
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// CountForTenant counts inventory items for a tenant
func (r *GormInventoryItemRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(
		r.db.WithContext(ctx).Model(&inventory.InventoryItem{}).Where("tenant_id = ?", tenantID),
		filter,
	)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *GormInventoryItemRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	orderBy := ValidateSortField(filter.OrderBy, InventoryItemSortFields, "code")
	return query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))
}

func (r *GormInventoryItemRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("code ILIKE ? OR name ILIKE ?", pattern, pattern)
	}

	for key, value := range filter.Filters {
		switch key {
		case "is_active":
			query = query.Where("is_active = ?", value)
		case "unit":
			query = query.Where("unit = ?", value)
		case "below_reorder":
			if value == true {
				query = query.Where("reorder_level > 0 AND current_stock <= reorder_level")
			}
		}
	}

	return query
}

// Ensure GormInventoryItemRepository implements InventoryItemRepository
var _ inventory.InventoryItemRepository = (*GormInventoryItemRepository)(nil)
