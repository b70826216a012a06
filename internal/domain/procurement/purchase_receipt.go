package procurement

import (
	"time"

	"github.com/craftline/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PurchaseReceiptItem documents one physically received PO line.
// ReceivedQuantity is what arrived; AcceptedQuantity is what passed inspection
// and entered stock. Rejected goods are the difference.
type PurchaseReceiptItem struct {
	shared.BaseEntity
	PurchaseReceiptID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	PurchaseOrderItemID uuid.UUID       `gorm:"type:uuid;not null"`
	InventoryItemID     uuid.UUID       `gorm:"type:uuid;not null"`
	ReceivedQuantity    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	AcceptedQuantity    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Note                string          `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (PurchaseReceiptItem) TableName() string {
	return "purchase_receipt_items"
}

// RejectedQuantity returns the received goods that failed inspection
func (i *PurchaseReceiptItem) RejectedQuantity() decimal.Decimal {
	return i.ReceivedQuantity.Sub(i.AcceptedQuantity)
}

// PurchaseReceipt (GRN) documents one delivery against a purchase order.
// Receipts are immutable once created; a PO can have many.
type PurchaseReceipt struct {
	shared.TenantAggregateRoot
	Number          string                `gorm:"type:varchar(20);not null;uniqueIndex"`
	PurchaseOrderID uuid.UUID             `gorm:"type:uuid;not null;index"`
	ReceivedBy      uuid.UUID             `gorm:"type:uuid;not null"`
	ReceivedAt      time.Time             `gorm:"not null"`
	Note            string                `gorm:"type:text"`
	Items           []PurchaseReceiptItem `gorm:"foreignKey:PurchaseReceiptID"`
}

// TableName returns the table name for GORM
func (PurchaseReceipt) TableName() string {
	return "purchase_receipts"
}

// ReceiptItemSpec is the input for one receipt line
type ReceiptItemSpec struct {
	PurchaseOrderItemID uuid.UUID
	InventoryItemID     uuid.UUID
	ReceivedQuantity    decimal.Decimal
	AcceptedQuantity    decimal.Decimal
	Note                string
}

// NewPurchaseReceipt creates a GRN for a delivery. Accepted quantity must not
// exceed received quantity on any line.
func NewPurchaseReceipt(tenantID, purchaseOrderID, receivedBy uuid.UUID, specs []ReceiptItemSpec, note string) (*PurchaseReceipt, error) {
	if purchaseOrderID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Purchase order is required")
	}
	if len(specs) == 0 {
		return nil, shared.NewDomainError("INVALID_INPUT", "Receipt must have at least one line")
	}

	receipt := &PurchaseReceipt{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Number:              NewDocumentNumber("GRN"),
		PurchaseOrderID:     purchaseOrderID,
		ReceivedBy:          receivedBy,
		ReceivedAt:          time.Now(),
		Note:                note,
	}

	for _, spec := range specs {
		if !spec.ReceivedQuantity.IsPositive() {
			return nil, shared.NewDomainError("INVALID_INPUT", "Received quantity must be positive")
		}
		if spec.AcceptedQuantity.IsNegative() || spec.AcceptedQuantity.GreaterThan(spec.ReceivedQuantity) {
			return nil, shared.NewDomainError("INVALID_INPUT", "Accepted quantity must be between 0 and the received quantity")
		}

		receipt.Items = append(receipt.Items, PurchaseReceiptItem{
			BaseEntity:          shared.NewBaseEntity(),
			PurchaseReceiptID:   receipt.ID,
			PurchaseOrderItemID: spec.PurchaseOrderItemID,
			InventoryItemID:     spec.InventoryItemID,
			ReceivedQuantity:    spec.ReceivedQuantity,
			AcceptedQuantity:    spec.AcceptedQuantity,
			Note:                spec.Note,
		})
	}

	return receipt, nil
}

// AcceptedLines returns the receipt lines that actually entered stock,
// shaped for applying against the purchase order
func (r *PurchaseReceipt) AcceptedLines() []ReceiptLine {
	lines := make([]ReceiptLine, 0, len(r.Items))
	for _, item := range r.Items {
		if item.AcceptedQuantity.IsPositive() {
			lines = append(lines, ReceiptLine{
				PurchaseOrderItemID: item.PurchaseOrderItemID,
				AcceptedQuantity:    item.AcceptedQuantity,
			})
		}
	}
	return lines
}
