package order

import (
	"strings"
	"time"

	"github.com/craftline/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Address is a user-owned shipping destination
type Address struct {
	shared.TenantAggregateRoot
	UserID     uuid.UUID `gorm:"type:uuid;not null;index"`
	Recipient  string    `gorm:"type:varchar(100);not null"`
	Phone      string    `gorm:"type:varchar(20);not null"`
	Line1      string    `gorm:"type:varchar(200);not null"`
	Line2      string    `gorm:"type:varchar(200)"`
	City       string    `gorm:"type:varchar(100);not null"`
	State      string    `gorm:"type:varchar(100);not null"`
	PostalCode string    `gorm:"type:varchar(20);not null"`
	Country    string    `gorm:"type:varchar(100);not null;default:'India'"`
	IsDefault  bool      `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (Address) TableName() string {
	return "addresses"
}

// NewAddress creates a shipping address for a user
func NewAddress(tenantID, userID uuid.UUID, recipient, phone, line1, city, state, postalCode string) (*Address, error) {
	if userID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "User ID is required")
	}
	for _, field := range []string{recipient, phone, line1, city, state, postalCode} {
		if strings.TrimSpace(field) == "" {
			return nil, shared.NewDomainError("INVALID_INPUT", "All address fields are required")
		}
	}

	return &Address{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		UserID:              userID,
		Recipient:           recipient,
		Phone:               phone,
		Line1:               line1,
		City:                city,
		State:               state,
		PostalCode:          postalCode,
		Country:             "India",
	}, nil
}

// BelongsTo checks address ownership
func (a *Address) BelongsTo(userID uuid.UUID) bool {
	return a.UserID == userID
}

// MarkDefault flags the address as the user's default destination
func (a *Address) MarkDefault() {
	a.IsDefault = true
	a.UpdatedAt = time.Now()
	a.IncrementVersion()
}
