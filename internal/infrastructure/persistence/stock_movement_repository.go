package persistence

import (
	"context"

	"github.com/craftline/backend/internal/domain/inventory"
	"github.com/craftline/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormStockMovementRepository implements StockMovementRepository using GORM.
// Movement rows are append-only; there is no update path.
type GormStockMovementRepository struct {
	db *gorm.DB
}

// NewGormStockMovementRepository creates a new GormStockMovementRepository
func NewGormStockMovementRepository(db *gorm.DB) *GormStockMovementRepository {
	return &GormStockMovementRepository{db: db}
}

// Save persists one or more movements
func (r *GormStockMovementRepository) Save(ctx context.Context, movements ...*inventory.StockMovement) error {
	if len(movements) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(movements).Error
}

// FindByItem returns the movement history of an item, newest first
func (r *GormStockMovementRepository) FindByItem(ctx context.Context, tenantID, itemID uuid.UUID, filter shared.Filter) ([]inventory.StockMovement, int64, error) {
	base := r.db.WithContext(ctx).Model(&inventory.StockMovement{}).
		Where("tenant_id = ? AND inventory_item_id = ?", tenantID, itemID)

	if movementType, ok := filter.Filters["movement_type"]; ok {
		base = base.Where("movement_type = ?", movementType)
	}

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query := base.Order("created_at DESC")
	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	var movements []inventory.StockMovement
	if err := query.Find(&movements).Error; err != nil {
		return nil, 0, err
	}
	return movements, total, nil
}

// FindByReference returns all movements caused by a business document
func (r *GormStockMovementRepository) FindByReference(ctx context.Context, tenantID uuid.UUID, refType inventory.ReferenceType, refID uuid.UUID) ([]inventory.StockMovement, error) {
	var movements []inventory.StockMovement
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND reference_type = ? AND reference_id = ?", tenantID, refType, refID).
		Order("created_at ASC").
		Find(&movements).Error; err != nil {
		return nil, err
	}
	return movements, nil
}

// SumByItem returns the signed sum of all movement quantities for an item.
// The sum must always equal the item's current balance.
func (r *GormStockMovementRepository) SumByItem(ctx context.Context, tenantID, itemID uuid.UUID) (decimal.Decimal, error) {
	var result struct {
		Total decimal.Decimal
	}
	if err := r.db.WithContext(ctx).
		Model(&inventory.StockMovement{}).
		Select("COALESCE(SUM(quantity), 0) as total").
		Where("tenant_id = ? AND inventory_item_id = ?", tenantID, itemID).
		Scan(&result).Error; err != nil {
		return decimal.Zero, err
	}
	return result.Total, nil
}

// Ensure GormStockMovementRepository implements StockMovementRepository
var _ inventory.StockMovementRepository = (*GormStockMovementRepository)(nil)
