package order

import (
	"time"

	"github.com/craftline/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// CartItem is one product line in a user's cart. Quantity is the only
// mutable field; prices are resolved at checkout, not here.
type CartItem struct {
	shared.BaseEntity
	CartID    uuid.UUID `gorm:"type:uuid;not null;index"`
	ProductID uuid.UUID `gorm:"type:uuid;not null;index"`
	Quantity  int       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (CartItem) TableName() string {
	return "cart_items"
}

// Cart is the aggregate root for a user's pending purchases.
// One cart exists per (tenant, user).
type Cart struct {
	shared.TenantAggregateRoot
	UserID uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_cart_tenant_user,priority:2"`
	Items  []CartItem `gorm:"foreignKey:CartID"`
}

// TableName returns the table name for GORM
func (Cart) TableName() string {
	return "carts"
}

// NewCart creates an empty cart for a user
func NewCart(tenantID, userID uuid.UUID) (*Cart, error) {
	if userID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "User ID is required")
	}
	return &Cart{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		UserID:              userID,
	}, nil
}

// AddItem adds a product to the cart or bumps the quantity of an existing line
func (c *Cart) AddItem(productID uuid.UUID, quantity int) error {
	if productID == uuid.Nil {
		return shared.NewDomainError("INVALID_INPUT", "Product ID is required")
	}
	if quantity <= 0 {
		return shared.NewDomainError("INVALID_INPUT", "Quantity must be positive")
	}

	for idx := range c.Items {
		if c.Items[idx].ProductID == productID {
			c.Items[idx].Quantity += quantity
			c.Items[idx].UpdatedAt = time.Now()
			c.touch()
			return nil
		}
	}

	c.Items = append(c.Items, CartItem{
		BaseEntity: shared.NewBaseEntity(),
		CartID:     c.ID,
		ProductID:  productID,
		Quantity:   quantity,
	})
	c.touch()
	return nil
}

// UpdateItemQuantity sets the quantity of an existing line; zero removes it
func (c *Cart) UpdateItemQuantity(productID uuid.UUID, quantity int) error {
	if quantity < 0 {
		return shared.NewDomainError("INVALID_INPUT", "Quantity cannot be negative")
	}
	for idx := range c.Items {
		if c.Items[idx].ProductID == productID {
			if quantity == 0 {
				c.Items = append(c.Items[:idx], c.Items[idx+1:]...)
			} else {
				c.Items[idx].Quantity = quantity
				c.Items[idx].UpdatedAt = time.Now()
			}
			c.touch()
			return nil
		}
	}
	return shared.ErrNotFound
}

// RemoveItem deletes a product line from the cart
func (c *Cart) RemoveItem(productID uuid.UUID) error {
	return c.UpdateItemQuantity(productID, 0)
}

// Clear empties the cart, typically after checkout
func (c *Cart) Clear() {
	c.Items = nil
	c.touch()
}

// IsEmpty returns true when the cart has no lines
func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

func (c *Cart) touch() {
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
}
