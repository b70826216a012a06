package persistence

import (
	"context"
	"errors"

	"github.com/craftline/backend/internal/domain/procurement"
	"github.com/craftline/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormIndentRepository implements IndentRepository using GORM
type GormIndentRepository struct {
	db *gorm.DB
}

// NewGormIndentRepository creates a new GormIndentRepository
func NewGormIndentRepository(db *gorm.DB) *GormIndentRepository {
	return &GormIndentRepository{db: db}
}

// FindByIDForTenant loads an indent with its items
func (r *GormIndentRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*procurement.Indent, error) {
	var indent procurement.Indent
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&indent).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &indent, nil
}

// FindAllForTenant lists indents for a tenant
func (r *GormIndentRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]procurement.Indent, int64, error) {
	base := r.db.WithContext(ctx).Model(&procurement.Indent{}).
		Where("tenant_id = ?", tenantID)

	if status, ok := filter.Filters["status"]; ok {
		base = base.Where("status = ?", status)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		base = base.Where("number ILIKE ? OR purpose ILIKE ?", pattern, pattern)
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

	var indents []procurement.Indent
	if err := query.Find(&indents).Error; err != nil {
		return nil, 0, err
	}
	return indents, total, nil
}

// Save creates or updates an indent with its items
func (r *GormIndentRepository) Save(ctx context.Context, indent *procurement.Indent) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Items").Save(indent).Error; err != nil {
			return err
		}

		currentItemIDs := make([]uuid.UUID, len(indent.Items))
		for i, item := range indent.Items {
			currentItemIDs[i] = item.ID
		}

		if len(currentItemIDs) > 0 {
			if err := tx.Where("indent_id = ? AND id NOT IN ?", indent.ID, currentItemIDs).
				Delete(&procurement.IndentItem{}).Error; err != nil {
				return err
			}
		} else {
			if err := tx.Where("indent_id = ?", indent.ID).
				Delete(&procurement.IndentItem{}).Error; err != nil {
				return err
			}
		}

		for i := range indent.Items {
			indent.Items[i].IndentID = indent.ID
			if err := tx.Save(&indent.Items[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// Ensure GormIndentRepository implements IndentRepository
var _ procurement.IndentRepository = (*GormIndentRepository)(nil)
