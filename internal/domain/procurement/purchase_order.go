package procurement

import (
	"fmt"
	"strings"
	"time"

	"github.com/craftline/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PurchaseOrderStatus represents the procurement state of a PO
type PurchaseOrderStatus string

const (
	POStatusDraft             PurchaseOrderStatus = "draft"
	POStatusPending           PurchaseOrderStatus = "pending"
	POStatusApproved          PurchaseOrderStatus = "approved"
	POStatusPartiallyReceived PurchaseOrderStatus = "partially_received"
	POStatusReceived          PurchaseOrderStatus = "received"
	POStatusCancelled         PurchaseOrderStatus = "cancelled"
)

// poTransitions defines the allowed status transitions
var poTransitions = map[PurchaseOrderStatus][]PurchaseOrderStatus{
	POStatusDraft:             {POStatusPending, POStatusCancelled},
	POStatusPending:           {POStatusApproved, POStatusCancelled},
	POStatusApproved:          {POStatusPartiallyReceived, POStatusReceived, POStatusCancelled},
	POStatusPartiallyReceived: {POStatusPartiallyReceived, POStatusReceived},
	POStatusReceived:          {},
	POStatusCancelled:         {},
}

// CanTransitionTo checks whether the status may move to target
func (s PurchaseOrderStatus) CanTransitionTo(target PurchaseOrderStatus) bool {
	for _, allowed := range poTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// PurchaseOrderItem is one ordered raw material line. ReceivedQuantity
// accumulates across receipts and never exceeds Quantity.
type PurchaseOrderItem struct {
	shared.BaseEntity
	PurchaseOrderID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	InventoryItemID  uuid.UUID       `gorm:"type:uuid;not null"`
	Quantity         decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	ReceivedQuantity decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	UnitPrice        decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
}

// TableName returns the table name for GORM
func (PurchaseOrderItem) TableName() string {
	return "purchase_order_items"
}

// RemainingQuantity returns the quantity still to be received
func (i *PurchaseOrderItem) RemainingQuantity() decimal.Decimal {
	return i.Quantity.Sub(i.ReceivedQuantity)
}

// IsFullyReceived returns true when the whole ordered quantity has arrived
func (i *PurchaseOrderItem) IsFullyReceived() bool {
	return i.ReceivedQuantity.GreaterThanOrEqual(i.Quantity)
}

// addReceivedQuantity accumulates accepted goods against the line
func (i *PurchaseOrderItem) addReceivedQuantity(quantity decimal.Decimal) error {
	if !quantity.IsPositive() {
		return shared.NewDomainError("INVALID_INPUT", "Received quantity must be positive")
	}
	if i.ReceivedQuantity.Add(quantity).GreaterThan(i.Quantity) {
		return shared.NewDomainError("INVALID_INPUT",
			fmt.Sprintf("Receiving %s would exceed the ordered quantity %s", quantity, i.Quantity))
	}
	i.ReceivedQuantity = i.ReceivedQuantity.Add(quantity)
	i.UpdatedAt = time.Now()
	return nil
}

// PurchaseOrder is the aggregate root for ordering raw materials from a supplier
type PurchaseOrder struct {
	shared.TenantAggregateRoot
	Number       string              `gorm:"type:varchar(20);not null;uniqueIndex"`
	SupplierName string              `gorm:"type:varchar(200);not null"`
	IndentID     *uuid.UUID          `gorm:"type:uuid;index"`
	Status       PurchaseOrderStatus `gorm:"type:varchar(20);not null;default:'draft'"`
	ExpectedAt   *time.Time
	Items        []PurchaseOrderItem `gorm:"foreignKey:PurchaseOrderID"`
	ApprovedBy   *uuid.UUID          `gorm:"type:uuid"`
	ApprovedAt   *time.Time
}

// TableName returns the table name for GORM
func (PurchaseOrder) TableName() string {
	return "purchase_orders"
}

// NewPurchaseOrder creates a draft PO
func NewPurchaseOrder(tenantID uuid.UUID, supplierName string, indentID *uuid.UUID) (*PurchaseOrder, error) {
	if strings.TrimSpace(supplierName) == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Supplier name is required")
	}
	return &PurchaseOrder{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Number:              NewDocumentNumber("PO"),
		SupplierName:        supplierName,
		IndentID:            indentID,
		Status:              POStatusDraft,
	}, nil
}

// AddItem adds an ordered line while the PO is a draft
func (po *PurchaseOrder) AddItem(inventoryItemID uuid.UUID, quantity, unitPrice decimal.Decimal) error {
	if po.Status != POStatusDraft {
		return shared.NewDomainError("INVALID_STATE", "Items can only be added to draft purchase orders")
	}
	if inventoryItemID == uuid.Nil {
		return shared.NewDomainError("INVALID_INPUT", "Inventory item is required")
	}
	if !quantity.IsPositive() {
		return shared.NewDomainError("INVALID_INPUT", "Quantity must be positive")
	}
	if unitPrice.IsNegative() {
		return shared.NewDomainError("INVALID_INPUT", "Unit price cannot be negative")
	}

	po.Items = append(po.Items, PurchaseOrderItem{
		BaseEntity:       shared.NewBaseEntity(),
		PurchaseOrderID:  po.ID,
		InventoryItemID:  inventoryItemID,
		Quantity:         quantity,
		ReceivedQuantity: decimal.Zero,
		UnitPrice:        unitPrice,
	})
	po.touch()
	return nil
}

// Submit moves a draft PO into the approval queue
func (po *PurchaseOrder) Submit() error {
	if po.Status != POStatusDraft {
		return shared.NewDomainError("INVALID_STATE", "Only draft purchase orders can be submitted")
	}
	if len(po.Items) == 0 {
		return shared.NewDomainError("INVALID_INPUT", "Cannot submit a purchase order without items")
	}
	po.Status = POStatusPending
	po.touch()
	return nil
}

// Approve approves a pending PO for receiving
func (po *PurchaseOrder) Approve(approverID uuid.UUID) error {
	if po.Status != POStatusPending {
		return shared.NewDomainError("INVALID_STATE", "Only pending purchase orders can be approved")
	}
	now := time.Now()
	po.Status = POStatusApproved
	po.ApprovedBy = &approverID
	po.ApprovedAt = &now
	po.touch()
	return nil
}

// Cancel cancels the PO. Cancellation is blocked once any goods have been received.
func (po *PurchaseOrder) Cancel() error {
	if !po.Status.CanTransitionTo(POStatusCancelled) {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Cannot cancel a %s purchase order", po.Status))
	}
	if po.HasReceivedGoods() {
		return shared.NewDomainError("INVALID_STATE", "Cannot cancel a purchase order after goods have been received")
	}
	po.Status = POStatusCancelled
	po.touch()
	return nil
}

// HasReceivedGoods returns true if any line has received quantity
func (po *PurchaseOrder) HasReceivedGoods() bool {
	for _, item := range po.Items {
		if item.ReceivedQuantity.IsPositive() {
			return true
		}
	}
	return false
}

// CanReceive reports whether the PO accepts receipts
func (po *PurchaseOrder) CanReceive() bool {
	return po.Status == POStatusApproved || po.Status == POStatusPartiallyReceived
}

// ReceiptLine is one accepted quantity applied against a PO line
type ReceiptLine struct {
	PurchaseOrderItemID uuid.UUID
	AcceptedQuantity    decimal.Decimal
}

// ReceivedItemInfo describes the stock effect of one applied receipt line
type ReceivedItemInfo struct {
	InventoryItemID  uuid.UUID
	AcceptedQuantity decimal.Decimal
}

// ApplyReceipt accumulates accepted quantities against the PO lines and
// recomputes the status: received when every line is full, otherwise
// partially received. All lines are validated before any is mutated.
func (po *PurchaseOrder) ApplyReceipt(lines []ReceiptLine) ([]ReceivedItemInfo, error) {
	if !po.CanReceive() {
		return nil, shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Cannot receive goods against a %s purchase order", po.Status))
	}
	if len(lines) == 0 {
		return nil, shared.NewDomainError("INVALID_INPUT", "Receipt has no lines")
	}

	index := make(map[uuid.UUID]*PurchaseOrderItem, len(po.Items))
	for idx := range po.Items {
		index[po.Items[idx].ID] = &po.Items[idx]
	}

	for _, line := range lines {
		item, ok := index[line.PurchaseOrderItemID]
		if !ok {
			return nil, shared.NewDomainError("NOT_FOUND", "Receipt line does not match any purchase order item")
		}
		if !line.AcceptedQuantity.IsPositive() {
			return nil, shared.NewDomainError("INVALID_INPUT", "Accepted quantity must be positive")
		}
		if item.ReceivedQuantity.Add(line.AcceptedQuantity).GreaterThan(item.Quantity) {
			return nil, shared.NewDomainError("INVALID_INPUT",
				fmt.Sprintf("Receiving %s against item %s would exceed the ordered quantity", line.AcceptedQuantity, item.ID))
		}
	}

	received := make([]ReceivedItemInfo, 0, len(lines))
	for _, line := range lines {
		item := index[line.PurchaseOrderItemID]
		if err := item.addReceivedQuantity(line.AcceptedQuantity); err != nil {
			return nil, err
		}
		received = append(received, ReceivedItemInfo{
			InventoryItemID:  item.InventoryItemID,
			AcceptedQuantity: line.AcceptedQuantity,
		})
	}

	po.recomputeReceivingStatus()
	po.touch()

	return received, nil
}

func (po *PurchaseOrder) recomputeReceivingStatus() {
	allFull := true
	anyReceived := false
	for _, item := range po.Items {
		if !item.IsFullyReceived() {
			allFull = false
		}
		if item.ReceivedQuantity.IsPositive() {
			anyReceived = true
		}
	}
	if allFull {
		po.Status = POStatusReceived
	} else if anyReceived {
		po.Status = POStatusPartiallyReceived
	}
}

func (po *PurchaseOrder) touch() {
	po.UpdatedAt = time.Now()
	po.IncrementVersion()
}
