package procurement

import (
	"time"

	"github.com/craftline/backend/internal/domain/procurement"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// IndentItemRequest is one requested material line
type IndentItemRequest struct {
	InventoryItemID uuid.UUID       `json:"inventory_item_id" binding:"required"`
	Quantity        decimal.Decimal `json:"quantity" binding:"required"`
	Note            string          `json:"note" binding:"omitempty,max=500"`
}

// CreateIndentRequest creates a material indent with its lines
type CreateIndentRequest struct {
	Purpose string              `json:"purpose" binding:"omitempty,max=500"`
	Items   []IndentItemRequest `json:"items" binding:"required,min=1,dive"`
	Submit  bool                `json:"submit"`
}

// IndentListFilter represents filter options for the indent list
type IndentListFilter struct {
	Status   string `form:"status" binding:"omitempty,oneof=draft pending approved rejected"`
	Search   string `form:"search"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// RejectIndentRequest carries the rejection reason
type RejectIndentRequest struct {
	Reason string `json:"reason" binding:"required,min=1,max=500"`
}

// IndentItemResponse represents a requested line
type IndentItemResponse struct {
	InventoryItemID uuid.UUID       `json:"inventory_item_id"`
	Quantity        decimal.Decimal `json:"quantity"`
	Note            string          `json:"note,omitempty"`
}

// IndentResponse represents an indent in API responses
type IndentResponse struct {
	ID             uuid.UUID            `json:"id"`
	Number         string               `json:"number"`
	Status         string               `json:"status"`
	RequestedBy    uuid.UUID            `json:"requested_by"`
	Purpose        string               `json:"purpose,omitempty"`
	Items          []IndentItemResponse `json:"items"`
	ApprovedBy     *uuid.UUID           `json:"approved_by,omitempty"`
	ApprovedAt     *time.Time           `json:"approved_at,omitempty"`
	RejectedReason string               `json:"rejected_reason,omitempty"`
	CreatedAt      time.Time            `json:"created_at"`
}

// ToIndentResponse converts a domain indent to a response DTO
func ToIndentResponse(i *procurement.Indent) IndentResponse {
	items := make([]IndentItemResponse, len(i.Items))
	for idx, item := range i.Items {
		items[idx] = IndentItemResponse{
			InventoryItemID: item.InventoryItemID,
			Quantity:        item.Quantity,
			Note:            item.Note,
		}
	}
	return IndentResponse{
		ID:             i.ID,
		Number:         i.Number,
		Status:         string(i.Status),
		RequestedBy:    i.RequestedBy,
		Purpose:        i.Purpose,
		Items:          items,
		ApprovedBy:     i.ApprovedBy,
		ApprovedAt:     i.ApprovedAt,
		RejectedReason: i.RejectedReason,
		CreatedAt:      i.CreatedAt,
	}
}

// ToIndentResponses converts domain indents to response DTOs
func ToIndentResponses(indents []procurement.Indent) []IndentResponse {
	responses := make([]IndentResponse, len(indents))
	for i := range indents {
		responses[i] = ToIndentResponse(&indents[i])
	}
	return responses
}

// PurchaseOrderItemRequest is one ordered line
type PurchaseOrderItemRequest struct {
	InventoryItemID uuid.UUID       `json:"inventory_item_id" binding:"required"`
	Quantity        decimal.Decimal `json:"quantity" binding:"required"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
}

// CreatePurchaseOrderRequest creates a PO with its lines
type CreatePurchaseOrderRequest struct {
	SupplierName string                     `json:"supplier_name" binding:"required,min=1,max=200"`
	IndentID     *uuid.UUID                 `json:"indent_id"`
	ExpectedAt   *time.Time                 `json:"expected_at"`
	Items        []PurchaseOrderItemRequest `json:"items" binding:"required,min=1,dive"`
	Submit       bool                       `json:"submit"`
}

// PurchaseOrderListFilter represents filter options for the PO list
type PurchaseOrderListFilter struct {
	Status   string `form:"status" binding:"omitempty,oneof=draft pending approved partially_received received cancelled"`
	Search   string `form:"search"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// PurchaseOrderItemResponse represents an ordered line
type PurchaseOrderItemResponse struct {
	ID                uuid.UUID       `json:"id"`
	InventoryItemID   uuid.UUID       `json:"inventory_item_id"`
	Quantity          decimal.Decimal `json:"quantity"`
	ReceivedQuantity  decimal.Decimal `json:"received_quantity"`
	RemainingQuantity decimal.Decimal `json:"remaining_quantity"`
	UnitPrice         decimal.Decimal `json:"unit_price"`
}

// PurchaseOrderResponse represents a PO in API responses
type PurchaseOrderResponse struct {
	ID           uuid.UUID                   `json:"id"`
	Number       string                      `json:"number"`
	SupplierName string                      `json:"supplier_name"`
	IndentID     *uuid.UUID                  `json:"indent_id,omitempty"`
	Status       string                      `json:"status"`
	ExpectedAt   *time.Time                  `json:"expected_at,omitempty"`
	Items        []PurchaseOrderItemResponse `json:"items"`
	ApprovedBy   *uuid.UUID                  `json:"approved_by,omitempty"`
	ApprovedAt   *time.Time                  `json:"approved_at,omitempty"`
	CreatedAt    time.Time                   `json:"created_at"`
	Version      int                         `json:"version"`
}

// ToPurchaseOrderResponse converts a domain PO to a response DTO
func ToPurchaseOrderResponse(po *procurement.PurchaseOrder) PurchaseOrderResponse {
	items := make([]PurchaseOrderItemResponse, len(po.Items))
	for i, item := range po.Items {
		items[i] = PurchaseOrderItemResponse{
			ID:                item.ID,
			InventoryItemID:   item.InventoryItemID,
			Quantity:          item.Quantity,
			ReceivedQuantity:  item.ReceivedQuantity,
			RemainingQuantity: item.RemainingQuantity(),
			UnitPrice:         item.UnitPrice,
		}
	}
	return PurchaseOrderResponse{
		ID:           po.ID,
		Number:       po.Number,
		SupplierName: po.SupplierName,
		IndentID:     po.IndentID,
		Status:       string(po.Status),
		ExpectedAt:   po.ExpectedAt,
		Items:        items,
		ApprovedBy:   po.ApprovedBy,
		ApprovedAt:   po.ApprovedAt,
		CreatedAt:    po.CreatedAt,
		Version:      po.Version,
	}
}

// ToPurchaseOrderResponses converts domain POs to response DTOs
func ToPurchaseOrderResponses(pos []procurement.PurchaseOrder) []PurchaseOrderResponse {
	responses := make([]PurchaseOrderResponse, len(pos))
	for i := range pos {
		responses[i] = ToPurchaseOrderResponse(&pos[i])
	}
	return responses
}

// ReceiptLineRequest is one delivered line of a GRN. AcceptedQuantity left
// out means everything that arrived passed inspection.
type ReceiptLineRequest struct {
	PurchaseOrderItemID uuid.UUID        `json:"purchase_order_item_id" binding:"required"`
	ReceivedQuantity    decimal.Decimal  `json:"received_quantity" binding:"required"`
	AcceptedQuantity    *decimal.Decimal `json:"accepted_quantity"`
	Note                string           `json:"note" binding:"omitempty,max=500"`
}

// ReceiveGoodsRequest records one delivery against an approved PO
type ReceiveGoodsRequest struct {
	Lines []ReceiptLineRequest `json:"lines" binding:"required,min=1,dive"`
	Note  string               `json:"note" binding:"omitempty,max=500"`
}

// ReceiptItemResponse represents one GRN line
type ReceiptItemResponse struct {
	PurchaseOrderItemID uuid.UUID       `json:"purchase_order_item_id"`
	InventoryItemID     uuid.UUID       `json:"inventory_item_id"`
	ReceivedQuantity    decimal.Decimal `json:"received_quantity"`
	AcceptedQuantity    decimal.Decimal `json:"accepted_quantity"`
	RejectedQuantity    decimal.Decimal `json:"rejected_quantity"`
	Note                string          `json:"note,omitempty"`
}

// ReceiptResponse represents a GRN in API responses
type ReceiptResponse struct {
	ID              uuid.UUID             `json:"id"`
	Number          string                `json:"number"`
	PurchaseOrderID uuid.UUID             `json:"purchase_order_id"`
	ReceivedBy      uuid.UUID             `json:"received_by"`
	ReceivedAt      time.Time             `json:"received_at"`
	Note            string                `json:"note,omitempty"`
	Items           []ReceiptItemResponse `json:"items"`
	PurchaseOrder   PurchaseOrderResponse `json:"purchase_order"`
}

// ToReceiptResponse converts a GRN and its updated PO to a response DTO
func ToReceiptResponse(r *procurement.PurchaseReceipt, po *procurement.PurchaseOrder) ReceiptResponse {
	items := make([]ReceiptItemResponse, len(r.Items))
	for i, item := range r.Items {
		items[i] = ReceiptItemResponse{
			PurchaseOrderItemID: item.PurchaseOrderItemID,
			InventoryItemID:     item.InventoryItemID,
			ReceivedQuantity:    item.ReceivedQuantity,
			AcceptedQuantity:    item.AcceptedQuantity,
			RejectedQuantity:    item.RejectedQuantity(),
			Note:                item.Note,
		}
	}
	return ReceiptResponse{
		ID:              r.ID,
		Number:          r.Number,
		PurchaseOrderID: r.PurchaseOrderID,
		ReceivedBy:      r.ReceivedBy,
		ReceivedAt:      r.ReceivedAt,
		Note:            r.Note,
		Items:           items,
		PurchaseOrder:   ToPurchaseOrderResponse(po),
	}
}
