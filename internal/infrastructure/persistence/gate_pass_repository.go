package persistence

import (
	"context"
	"errors"

	"github.com/craftline/backend/internal/domain/gatepass"
	"github.com/craftline/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormGatePassRepository implements GatePassRepository using GORM
type GormGatePassRepository struct {
	db *gorm.DB
}

// NewGormGatePassRepository creates a new GormGatePassRepository
func NewGormGatePassRepository(db *gorm.DB) *GormGatePassRepository {
	return &GormGatePassRepository{db: db}
}

// FindByIDForTenant loads a gate pass with its items
func (r *GormGatePassRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*gatepass.GatePass, error) {
	var pass gatepass.GatePass
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&pass).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &pass, nil
}

// FindByNumber finds a gate pass by its document number
func (r *GormGatePassRepository) FindByNumber(ctx context.Context, tenantID uuid.UUID, number string) (*gatepass.GatePass, error) {
	var pass gatepass.GatePass
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("tenant_id = ? AND number = ?", tenantID, number).
		First(&pass).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &pass, nil
}

// FindAllForTenant lists gate passes for a tenant
func (r *GormGatePassRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]gatepass.GatePass, int64, error) {
	base := r.db.WithContext(ctx).Model(&gatepass.GatePass{}).
		Where("tenant_id = ?", tenantID)

	if passType, ok := filter.Filters["type"]; ok {
		base = base.Where("type = ?", passType)
	}
	if status, ok := filter.Filters["status"]; ok {
		base = base.Where("status = ?", status)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		base = base.Where("number ILIKE ? OR issued_to ILIKE ?", pattern, pattern)
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

	var passes []gatepass.GatePass
	if err := query.Find(&passes).Error; err != nil {
		return nil, 0, err
	}
	return passes, total, nil
}

// Save creates or updates a gate pass with its items
func (r *GormGatePassRepository) Save(ctx context.Context, pass *gatepass.GatePass) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Items").Save(pass).Error; err != nil {
			return err
		}
		for i := range pass.Items {
			pass.Items[i].GatePassID = pass.ID
			if err := tx.Save(&pass.Items[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// SaveWithLock saves with optimistic locking. Items are immutable once the
// pass leaves draft, so only the header row is updated.
func (r *GormGatePassRepository) SaveWithLock(ctx context.Context, pass *gatepass.GatePass) error {
	result := r.db.WithContext(ctx).
		Model(pass).
		Where("id = ? AND version = ?", pass.ID, pass.Version-1).
		Updates(map[string]interface{}{
			"status":      pass.Status,
			"approved_by": pass.ApprovedBy,
			"approved_at": pass.ApprovedAt,
			"version":     pass.Version,
			"updated_at":  pass.UpdatedAt,
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// Ensure GormGatePassRepository implements GatePassRepository
var _ gatepass.GatePassRepository = (*GormGatePassRepository)(nil)
