package gatepass

import (
	"time"

	"github.com/craftline/backend/internal/domain/gatepass"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// GatePassItemRequest is one goods line. RefKind selects whether RefID
// names a raw material or a packaged product.
type GatePassItemRequest struct {
	RefKind     string          `json:"ref_kind" binding:"required,oneof=raw_material packaged_product"`
	RefID       uuid.UUID       `json:"ref_id" binding:"required"`
	Quantity    decimal.Decimal `json:"quantity" binding:"required"`
	Description string          `json:"description" binding:"omitempty,max=500"`
}

// CreateGatePassRequest creates a draft gate pass with its goods lines
type CreateGatePassRequest struct {
	Type      string                `json:"type" binding:"required,oneof=inward outward return"`
	IssuedTo  string                `json:"issued_to" binding:"required,min=1,max=200"`
	Purpose   string                `json:"purpose" binding:"omitempty,max=500"`
	VehicleNo string                `json:"vehicle_no" binding:"omitempty,max=20"`
	Items     []GatePassItemRequest `json:"items" binding:"required,min=1,dive"`
}

// GatePassListFilter represents filter options for the gate pass list
type GatePassListFilter struct {
	Type     string `form:"type" binding:"omitempty,oneof=inward outward return"`
	Status   string `form:"status" binding:"omitempty,oneof=draft approved rejected"`
	Search   string `form:"search"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// GatePassItemResponse represents one goods line
type GatePassItemResponse struct {
	RefKind     string          `json:"ref_kind"`
	RefID       uuid.UUID       `json:"ref_id"`
	Quantity    decimal.Decimal `json:"quantity"`
	Description string          `json:"description,omitempty"`
}

// GatePassResponse represents a gate pass in API responses
type GatePassResponse struct {
	ID         uuid.UUID              `json:"id"`
	Number     string                 `json:"number"`
	Type       string                 `json:"type"`
	Status     string                 `json:"status"`
	IssuedTo   string                 `json:"issued_to"`
	Purpose    string                 `json:"purpose,omitempty"`
	VehicleNo  string                 `json:"vehicle_no,omitempty"`
	Items      []GatePassItemResponse `json:"items"`
	ApprovedBy *uuid.UUID             `json:"approved_by,omitempty"`
	ApprovedAt *time.Time             `json:"approved_at,omitempty"`
	CreatedAt  time.Time              `json:"created_at"`
	Version    int                    `json:"version"`
}

// ToGatePassResponse converts a domain gate pass to a response DTO
func ToGatePassResponse(g *gatepass.GatePass) GatePassResponse {
	items := make([]GatePassItemResponse, len(g.Items))
	for i, item := range g.Items {
		items[i] = GatePassItemResponse{
			RefKind:     string(item.RefKind),
			RefID:       item.RefID,
			Quantity:    item.Quantity,
			Description: item.Description,
		}
	}
	return GatePassResponse{
		ID:         g.ID,
		Number:     g.Number,
		Type:       string(g.Type),
		Status:     string(g.Status),
		IssuedTo:   g.IssuedTo,
		Purpose:    g.Purpose,
		VehicleNo:  g.VehicleNo,
		Items:      items,
		ApprovedBy: g.ApprovedBy,
		ApprovedAt: g.ApprovedAt,
		CreatedAt:  g.CreatedAt,
		Version:    g.Version,
	}
}

// ToGatePassResponses converts domain gate passes to response DTOs
func ToGatePassResponses(passes []gatepass.GatePass) []GatePassResponse {
	responses := make([]GatePassResponse, len(passes))
	for i := range passes {
		responses[i] = ToGatePassResponse(&passes[i])
	}
	return responses
}
