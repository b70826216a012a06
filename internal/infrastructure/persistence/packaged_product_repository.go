package persistence

import (
	"context"
	"errors"

	"github.com/craftline/backend/internal/domain/inventory"
	"github.com/craftline/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormPackagedProductRepository implements PackagedProductRepository using GORM
type GormPackagedProductRepository struct {
	db *gorm.DB
}

// NewGormPackagedProductRepository creates a new GormPackagedProductRepository
func NewGormPackagedProductRepository(db *gorm.DB) *GormPackagedProductRepository {
	return &GormPackagedProductRepository{db: db}
}

// FindByID finds a packaged product by its ID
func (r *GormPackagedProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.PackagedProduct, error) {
	var product inventory.PackagedProduct
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &product, nil
}

// FindByIDForTenant finds a packaged product by ID within a tenant
func (r *GormPackagedProductRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*inventory.PackagedProduct, error) {
	var product inventory.PackagedProduct
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &product, nil
}

// FindByProduct lists the packaged variants of a catalog product
func (r *GormPackagedProductRepository) FindByProduct(ctx context.Context, tenantID, productID uuid.UUID) ([]inventory.PackagedProduct, error) {
	var products []inventory.PackagedProduct
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND product_id = ?", tenantID, productID).
		Order("packaging_size ASC").
		Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// FindAllForTenant finds all packaged products for a tenant
func (r *GormPackagedProductRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]inventory.PackagedProduct, error) {
	query := r.db.WithContext(ctx).Model(&inventory.PackagedProduct{}).
		Where("tenant_id = ?", tenantID)

	if filter.Search != "" {
		query = query.Where("name ILIKE ?", "%"+filter.Search+"%")
	}
	if isActive, ok := filter.Filters["is_active"]; ok {
		query = query.Where("is_active = ?", isActive)
	}
	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}
	orderBy := ValidateSortField(filter.OrderBy, PackagedProductSortFields, "name")
	query = query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))

	var products []inventory.PackagedProduct
	if err := query.Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// Save creates or updates a packaged product
func (r *GormPackagedProductRepository) Save(ctx context.Context, product *inventory.PackagedProduct) error {
	return r.db.WithContext(ctx).Save(product).Error
}

// SaveWithLock saves with optimistic locking
func (r *GormPackagedProductRepository) SaveWithLock(ctx context.Context, product *inventory.PackagedProduct) error {
	result := r.db.WithContext(ctx).
		Model(product).
		Where("id = ? AND version = ?", product.ID, product.Version-1).
		Updates(map[string]interface{}{
			"name":           product.Name,
			"stock_quantity": product.StockQuantity,
			"reorder_level":  product.ReorderLevel,
			"is_active":      product.IsActive,
			"version":        product.Version,
			"updated_at":     product.UpdatedAt,
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// Ensure GormPackagedProductRepository implements PackagedProductRepository
var _ inventory.PackagedProductRepository = (*GormPackagedProductRepository)(nil)

// GormPackagedProductMovementRepository implements PackagedProductMovementRepository
type GormPackagedProductMovementRepository struct {
	db *gorm.DB
}

// NewGormPackagedProductMovementRepository creates a new repository
func NewGormPackagedProductMovementRepository(db *gorm.DB) *GormPackagedProductMovementRepository {
	return &GormPackagedProductMovementRepository{db: db}
}

// Save persists one or more movements
func (r *GormPackagedProductMovementRepository) Save(ctx context.Context, movements ...*inventory.PackagedProductMovement) error {
	if len(movements) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(movements).Error
}

// FindByProduct returns the movement history of a packaged product, newest first
func (r *GormPackagedProductMovementRepository) FindByProduct(ctx context.Context, tenantID, productID uuid.UUID, filter shared.Filter) ([]inventory.PackagedProductMovement, int64, error) {
	base := r.db.WithContext(ctx).Model(&inventory.PackagedProductMovement{}).
		Where("tenant_id = ? AND packaged_product_id = ?", tenantID, productID)

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query := base.Order("created_at DESC")
	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	var movements []inventory.PackagedProductMovement
	if err := query.Find(&movements).Error; err != nil {
		return nil, 0, err
	}
	return movements, total, nil
}

// FindByReference returns all movements caused by a business document
func (r *GormPackagedProductMovementRepository) FindByReference(ctx context.Context, tenantID uuid.UUID, refType inventory.ReferenceType, refID uuid.UUID) ([]inventory.PackagedProductMovement, error) {
	var movements []inventory.PackagedProductMovement
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND reference_type = ? AND reference_id = ?", tenantID, refType, refID).
		Order("created_at ASC").
		Find(&movements).Error; err != nil {
		return nil, err
	}
	return movements, nil
}

// Ensure GormPackagedProductMovementRepository implements the interface
var _ inventory.PackagedProductMovementRepository = (*GormPackagedProductMovementRepository)(nil)
