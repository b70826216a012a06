package persistence

import (
	"context"
	"errors"

	"github.com/craftline/backend/internal/domain/order"
	"github.com/craftline/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormCartRepository implements CartRepository using GORM
type GormCartRepository struct {
	db *gorm.DB
}

// NewGormCartRepository creates a new GormCartRepository
func NewGormCartRepository(db *gorm.DB) *GormCartRepository {
	return &GormCartRepository{db: db}
}

// FindByUser returns the user's cart with its lines
func (r *GormCartRepository) FindByUser(ctx context.Context, tenantID, userID uuid.UUID) (*order.Cart, error) {
	var cart order.Cart
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("tenant_id = ? AND user_id = ?", tenantID, userID).
		First(&cart).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &cart, nil
}

// Save creates or updates a cart with its lines. Lines removed from the
// aggregate are deleted so clearing the cart at checkout empties the table.
func (r *GormCartRepository) Save(ctx context.Context, cart *order.Cart) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Items").Save(cart).Error; err != nil {
			return err
		}

		currentItemIDs := make([]uuid.UUID, len(cart.Items))
		for i, item := range cart.Items {
			currentItemIDs[i] = item.ID
		}

		if len(currentItemIDs) > 0 {
			if err := tx.Where("cart_id = ? AND id NOT IN ?", cart.ID, currentItemIDs).
				Delete(&order.CartItem{}).Error; err != nil {
				return err
			}
		} else {
			if err := tx.Where("cart_id = ?", cart.ID).
				Delete(&order.CartItem{}).Error; err != nil {
				return err
			}
		}

		for i := range cart.Items {
			cart.Items[i].CartID = cart.ID
			if err := tx.Save(&cart.Items[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// Ensure GormCartRepository implements CartRepository
var _ order.CartRepository = (*GormCartRepository)(nil)

// GormAddressRepository implements AddressRepository using GORM
type GormAddressRepository struct {
	db *gorm.DB
}

// NewGormAddressRepository creates a new GormAddressRepository
func NewGormAddressRepository(db *gorm.DB) *GormAddressRepository {
	return &GormAddressRepository{db: db}
}

// FindByID finds an address by its ID
func (r *GormAddressRepository) FindByID(ctx context.Context, id uuid.UUID) (*order.Address, error) {
	var address order.Address
	if err := r.db.WithContext(ctx).First(&address, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &address, nil
}

// FindByUser lists a user's addresses, default first
func (r *GormAddressRepository) FindByUser(ctx context.Context, tenantID, userID uuid.UUID) ([]order.Address, error) {
	var addresses []order.Address
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND user_id = ?", tenantID, userID).
		Order("is_default DESC, created_at DESC").
		Find(&addresses).Error; err != nil {
		return nil, err
	}
	return addresses, nil
}

// Save creates or updates an address
func (r *GormAddressRepository) Save(ctx context.Context, address *order.Address) error {
	return r.db.WithContext(ctx).Save(address).Error
}

// Ensure GormAddressRepository implements AddressRepository
var _ order.AddressRepository = (*GormAddressRepository)(nil)
