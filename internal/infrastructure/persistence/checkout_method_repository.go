package persistence

import (
	"context"
	"errors"

	"github.com/craftline/backend/internal/domain/catalog"
	"github.com/craftline/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormShippingMethodRepository implements ShippingMethodRepository using GORM
type GormShippingMethodRepository struct {
	db *gorm.DB
}

// NewGormShippingMethodRepository creates a new GormShippingMethodRepository
func NewGormShippingMethodRepository(db *gorm.DB) *GormShippingMethodRepository {
	return &GormShippingMethodRepository{db: db}
}

// FindByIDForTenant finds a shipping method by ID within a tenant
func (r *GormShippingMethodRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*catalog.ShippingMethod, error) {
	var method catalog.ShippingMethod
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&method).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &method, nil
}

// FindActiveForTenant lists the active shipping methods for a tenant
func (r *GormShippingMethodRepository) FindActiveForTenant(ctx context.Context, tenantID uuid.UUID) ([]catalog.ShippingMethod, error) {
	var methods []catalog.ShippingMethod
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND is_active = ?", tenantID, true).
		Order("amount ASC").
		Find(&methods).Error; err != nil {
		return nil, err
	}
	return methods, nil
}

// Save creates or updates a shipping method
func (r *GormShippingMethodRepository) Save(ctx context.Context, method *catalog.ShippingMethod) error {
	return r.db.WithContext(ctx).Save(method).Error
}

// Ensure GormShippingMethodRepository implements ShippingMethodRepository
var _ catalog.ShippingMethodRepository = (*GormShippingMethodRepository)(nil)

// GormPaymentMethodRepository implements PaymentMethodRepository using GORM
type GormPaymentMethodRepository struct {
	db *gorm.DB
}

// NewGormPaymentMethodRepository creates a new GormPaymentMethodRepository
func NewGormPaymentMethodRepository(db *gorm.DB) *GormPaymentMethodRepository {
	return &GormPaymentMethodRepository{db: db}
}

// FindByIDForTenant finds a payment method by ID within a tenant
func (r *GormPaymentMethodRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*catalog.PaymentMethod, error) {
	var method catalog.PaymentMethod
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&method).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &method, nil
}

// FindActiveForTenant lists the active payment methods for a tenant
func (r *GormPaymentMethodRepository) FindActiveForTenant(ctx context.Context, tenantID uuid.UUID) ([]catalog.PaymentMethod, error) {
	var methods []catalog.PaymentMethod
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND is_active = ?", tenantID, true).
		Order("name ASC").
		Find(&methods).Error; err != nil {
		return nil, err
	}
	return methods, nil
}

// Save creates or updates a payment method
func (r *GormPaymentMethodRepository) Save(ctx context.Context, method *catalog.PaymentMethod) error {
	return r.db.WithContext(ctx).Save(method).Error
}

// Ensure GormPaymentMethodRepository implements PaymentMethodRepository
var _ catalog.PaymentMethodRepository = (*GormPaymentMethodRepository)(nil)
