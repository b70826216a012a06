package persistence

import (
	"context"
	"errors"

	"github.com/craftline/backend/internal/domain/production"
	"github.com/craftline/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormBillOfMaterialRepository implements BillOfMaterialRepository using GORM
type GormBillOfMaterialRepository struct {
	db *gorm.DB
}

// NewGormBillOfMaterialRepository creates a new GormBillOfMaterialRepository
func NewGormBillOfMaterialRepository(db *gorm.DB) *GormBillOfMaterialRepository {
	return &GormBillOfMaterialRepository{db: db}
}

// FindByIDForTenant loads a BOM with its items
func (r *GormBillOfMaterialRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*production.BillOfMaterial, error) {
	var bom production.BillOfMaterial
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&bom).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &bom, nil
}

// FindActiveByProduct returns the single active BOM revision for a product
func (r *GormBillOfMaterialRepository) FindActiveByProduct(ctx context.Context, tenantID, productID uuid.UUID) (*production.BillOfMaterial, error) {
	var bom production.BillOfMaterial
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("tenant_id = ? AND product_id = ? AND is_active = ?", tenantID, productID, true).
		First(&bom).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &bom, nil
}

// FindByProduct lists all BOM revisions of a product, newest revision first
func (r *GormBillOfMaterialRepository) FindByProduct(ctx context.Context, tenantID, productID uuid.UUID) ([]production.BillOfMaterial, error) {
	var boms []production.BillOfMaterial
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("tenant_id = ? AND product_id = ?", tenantID, productID).
		Order("revision DESC").
		Find(&boms).Error; err != nil {
		return nil, err
	}
	return boms, nil
}

// Save creates or updates a BOM with its items
func (r *GormBillOfMaterialRepository) Save(ctx context.Context, bom *production.BillOfMaterial) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Items").Save(bom).Error; err != nil {
			return err
		}

		currentItemIDs := make([]uuid.UUID, len(bom.Items))
		for i, item := range bom.Items {
			currentItemIDs[i] = item.ID
		}

		if len(currentItemIDs) > 0 {
			if err := tx.Where("bill_of_material_id = ? AND id NOT IN ?", bom.ID, currentItemIDs).
				Delete(&production.BOMItem{}).Error; err != nil {
				return err
			}
		} else {
			if err := tx.Where("bill_of_material_id = ?", bom.ID).
				Delete(&production.BOMItem{}).Error; err != nil {
				return err
			}
		}

		for i := range bom.Items {
			bom.Items[i].BillOfMaterialID = bom.ID
			if err := tx.Save(&bom.Items[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// DeactivateSiblings deactivates every other BOM revision of the product
func (r *GormBillOfMaterialRepository) DeactivateSiblings(ctx context.Context, tenantID, productID, keepID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&production.BillOfMaterial{}).
		Where("tenant_id = ? AND product_id = ? AND id <> ? AND is_active = ?", tenantID, productID, keepID, true).
		Update("is_active", false).Error
}

// Ensure GormBillOfMaterialRepository implements BillOfMaterialRepository
var _ production.BillOfMaterialRepository = (*GormBillOfMaterialRepository)(nil)
