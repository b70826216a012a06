package persistence

import (
	"context"
	"errors"

	"github.com/craftline/backend/internal/domain/production"
	"github.com/craftline/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormProductionBatchRepository implements ProductionBatchRepository using GORM
type GormProductionBatchRepository struct {
	db *gorm.DB
}

// NewGormProductionBatchRepository creates a new GormProductionBatchRepository
func NewGormProductionBatchRepository(db *gorm.DB) *GormProductionBatchRepository {
	return &GormProductionBatchRepository{db: db}
}

// FindByIDForTenant loads a batch with materials and packaging lines
func (r *GormProductionBatchRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*production.ProductionBatch, error) {
	var batch production.ProductionBatch
	if err := r.db.WithContext(ctx).
		Preload("Materials").
		Preload("Packaging").
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&batch).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &batch, nil
}

// FindByNumber finds a batch by its document number
func (r *GormProductionBatchRepository) FindByNumber(ctx context.Context, tenantID uuid.UUID, number string) (*production.ProductionBatch, error) {
	var batch production.ProductionBatch
	if err := r.db.WithContext(ctx).
		Preload("Materials").
		Preload("Packaging").
		Where("tenant_id = ? AND number = ?", tenantID, number).
		First(&batch).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &batch, nil
}

// FindAllForTenant lists batches for a tenant
func (r *GormProductionBatchRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]production.ProductionBatch, int64, error) {
	base := r.db.WithContext(ctx).Model(&production.ProductionBatch{}).
		Where("tenant_id = ?", tenantID)

	if status, ok := filter.Filters["status"]; ok {
		base = base.Where("status = ?", status)
	}
	if productID, ok := filter.Filters["product_id"]; ok {
		base = base.Where("product_id = ?", productID)
	}
	if filter.Search != "" {
		base = base.Where("number ILIKE ?", "%"+filter.Search+"%")
	}

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	orderBy := ValidateSortField(filter.OrderBy, DocumentSortFields, "created_at")
	query := base.Preload("Materials").Preload("Packaging").
		Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))
	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	var batches []production.ProductionBatch
	if err := query.Find(&batches).Error; err != nil {
		return nil, 0, err
	}
	return batches, total, nil
}

// Save creates or updates a batch with its lines
func (r *GormProductionBatchRepository) Save(ctx context.Context, batch *production.ProductionBatch) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Materials", "Packaging").Save(batch).Error; err != nil {
			return err
		}
		return saveBatchLines(tx, batch)
	})
}

// SaveWithLock saves with optimistic locking. Material consumption and
// packaging output live on the lines, so they are written with the header.
func (r *GormProductionBatchRepository) SaveWithLock(ctx context.Context, batch *production.ProductionBatch) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(batch).
			Where("id = ? AND version = ?", batch.ID, batch.Version-1).
			Updates(map[string]interface{}{
				"status":            batch.Status,
				"produced_quantity": batch.ProducedQuantity,
				"started_at":        batch.StartedAt,
				"completed_at":      batch.CompletedAt,
				"version":           batch.Version,
				"updated_at":        batch.UpdatedAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrConcurrencyConflict
		}
		return saveBatchLines(tx, batch)
	})
}

func saveBatchLines(tx *gorm.DB, batch *production.ProductionBatch) error {
	for i := range batch.Materials {
		batch.Materials[i].ProductionBatchID = batch.ID
		if err := tx.Save(&batch.Materials[i]).Error; err != nil {
			return err
		}
	}
	for i := range batch.Packaging {
		batch.Packaging[i].ProductionBatchID = batch.ID
		if err := tx.Save(&batch.Packaging[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

// Ensure GormProductionBatchRepository implements ProductionBatchRepository
var _ production.ProductionBatchRepository = (*GormProductionBatchRepository)(nil)
