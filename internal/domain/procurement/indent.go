package procurement

import (
	"strings"
	"time"

	"github.com/craftline/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// IndentStatus represents the approval state of a material indent
type IndentStatus string

const (
	IndentStatusDraft    IndentStatus = "draft"
	IndentStatusPending  IndentStatus = "pending"
	IndentStatusApproved IndentStatus = "approved"
	IndentStatusRejected IndentStatus = "rejected"
)

// IndentItem is one requested raw material line
type IndentItem struct {
	shared.BaseEntity
	IndentID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	InventoryItemID uuid.UUID       `gorm:"type:uuid;not null"`
	Quantity        decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Note            string          `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (IndentItem) TableName() string {
	return "indent_items"
}

// Indent is an internal request for raw materials that precedes a purchase order
type Indent struct {
	shared.TenantAggregateRoot
	Number      string       `gorm:"type:varchar(20);not null;uniqueIndex"`
	Status      IndentStatus `gorm:"type:varchar(20);not null;default:'draft'"`
	RequestedBy uuid.UUID    `gorm:"type:uuid;not null"`
	Purpose     string       `gorm:"type:text"`
	Items       []IndentItem `gorm:"foreignKey:IndentID"`
	ApprovedBy  *uuid.UUID   `gorm:"type:uuid"`
	ApprovedAt  *time.Time
	RejectedReason string `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (Indent) TableName() string {
	return "indents"
}

// NewIndent creates a draft indent
func NewIndent(tenantID, requestedBy uuid.UUID, purpose string) (*Indent, error) {
	if requestedBy == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Requesting user is required")
	}
	return &Indent{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Number:              NewDocumentNumber("IND"),
		Status:              IndentStatusDraft,
		RequestedBy:         requestedBy,
		Purpose:             purpose,
	}, nil
}

// AddItem adds a requested material line while the indent is a draft
func (i *Indent) AddItem(inventoryItemID uuid.UUID, quantity decimal.Decimal, note string) error {
	if i.Status != IndentStatusDraft {
		return shared.NewDomainError("INVALID_STATE", "Items can only be added to draft indents")
	}
	if inventoryItemID == uuid.Nil {
		return shared.NewDomainError("INVALID_INPUT", "Inventory item is required")
	}
	if !quantity.IsPositive() {
		return shared.NewDomainError("INVALID_INPUT", "Quantity must be positive")
	}

	i.Items = append(i.Items, IndentItem{
		BaseEntity:      shared.NewBaseEntity(),
		IndentID:        i.ID,
		InventoryItemID: inventoryItemID,
		Quantity:        quantity,
		Note:            note,
	})
	i.touch()
	return nil
}

// Submit moves a draft indent into the approval queue
func (i *Indent) Submit() error {
	if i.Status != IndentStatusDraft {
		return shared.NewDomainError("INVALID_STATE", "Only draft indents can be submitted")
	}
	if len(i.Items) == 0 {
		return shared.NewDomainError("INVALID_INPUT", "Cannot submit an indent without items")
	}
	i.Status = IndentStatusPending
	i.touch()
	return nil
}

// Approve approves a pending indent
func (i *Indent) Approve(approverID uuid.UUID) error {
	if i.Status != IndentStatusPending {
		return shared.NewDomainError("INVALID_STATE", "Only pending indents can be approved")
	}
	now := time.Now()
	i.Status = IndentStatusApproved
	i.ApprovedBy = &approverID
	i.ApprovedAt = &now
	i.touch()
	return nil
}

// Reject rejects a pending indent with a reason
func (i *Indent) Reject(reason string) error {
	if i.Status != IndentStatusPending {
		return shared.NewDomainError("INVALID_STATE", "Only pending indents can be rejected")
	}
	if strings.TrimSpace(reason) == "" {
		return shared.NewDomainError("INVALID_INPUT", "Rejection reason is required")
	}
	i.Status = IndentStatusRejected
	i.RejectedReason = reason
	i.touch()
	return nil
}

func (i *Indent) touch() {
	i.UpdatedAt = time.Now()
	i.IncrementVersion()
}
