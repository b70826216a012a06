package production

import (
	"time"

	"github.com/craftline/backend/internal/domain/production"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BOMItemRequest is one raw material requirement per finished unit
type BOMItemRequest struct {
	InventoryItemID uuid.UUID       `json:"inventory_item_id" binding:"required"`
	QuantityPerUnit decimal.Decimal `json:"quantity_per_unit" binding:"required"`
}

// CreateBOMRequest creates a new BOM revision for a product. With Activate
// set it becomes the active revision and retires its siblings.
type CreateBOMRequest struct {
	ProductID uuid.UUID        `json:"product_id" binding:"required"`
	Name      string           `json:"name" binding:"required,min=1,max=200"`
	Items     []BOMItemRequest `json:"items" binding:"required,min=1,dive"`
	Activate  bool             `json:"activate"`
}

// BOMItemResponse represents one recipe line
type BOMItemResponse struct {
	InventoryItemID uuid.UUID       `json:"inventory_item_id"`
	QuantityPerUnit decimal.Decimal `json:"quantity_per_unit"`
}

// BOMResponse represents a BOM revision in API responses
type BOMResponse struct {
	ID        uuid.UUID         `json:"id"`
	ProductID uuid.UUID         `json:"product_id"`
	Name      string            `json:"name"`
	Revision  int               `json:"revision"`
	IsActive  bool              `json:"is_active"`
	Items     []BOMItemResponse `json:"items"`
	CreatedAt time.Time         `json:"created_at"`
}

// ToBOMResponse converts a domain BOM to a response DTO
func ToBOMResponse(b *production.BillOfMaterial) BOMResponse {
	items := make([]BOMItemResponse, len(b.Items))
	for i, item := range b.Items {
		items[i] = BOMItemResponse{
			InventoryItemID: item.InventoryItemID,
			QuantityPerUnit: item.Quantity,
		}
	}
	return BOMResponse{
		ID:        b.ID,
		ProductID: b.ProductID,
		Name:      b.Name,
		Revision:  b.Revision,
		IsActive:  b.IsActive,
		Items:     items,
		CreatedAt: b.CreatedAt,
	}
}

// ToBOMResponses converts domain BOMs to response DTOs
func ToBOMResponses(boms []production.BillOfMaterial) []BOMResponse {
	responses := make([]BOMResponse, len(boms))
	for i := range boms {
		responses[i] = ToBOMResponse(&boms[i])
	}
	return responses
}

// PackagingSpecRequest is one planned packaged output line
type PackagingSpecRequest struct {
	PackagedProductID uuid.UUID `json:"packaged_product_id" binding:"required"`
	PlannedUnits      int       `json:"planned_units" binding:"required,min=1"`
}

// CreateBatchRequest plans a production batch against the product's
// active BOM revision
type CreateBatchRequest struct {
	ProductID       uuid.UUID              `json:"product_id" binding:"required"`
	PlannedQuantity int                    `json:"planned_quantity" binding:"required,min=1"`
	Packaging       []PackagingSpecRequest `json:"packaging" binding:"required,min=1,dive"`
}

// CompleteBatchRequest finishes a batch with the actually produced quantity
type CompleteBatchRequest struct {
	ProducedQuantity int `json:"produced_quantity" binding:"required,min=1"`
}

// BatchListFilter represents filter options for the batch list
type BatchListFilter struct {
	Status   string `form:"status" binding:"omitempty,oneof=planned in_progress completed cancelled"`
	Search   string `form:"search"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// BatchMaterialResponse represents one raw material requirement of a batch
type BatchMaterialResponse struct {
	InventoryItemID  uuid.UUID       `json:"inventory_item_id"`
	RequiredQuantity decimal.Decimal `json:"required_quantity"`
	ConsumedQuantity decimal.Decimal `json:"consumed_quantity"`
}

// BatchPackagingResponse represents one planned packaged output line
type BatchPackagingResponse struct {
	PackagedProductID uuid.UUID `json:"packaged_product_id"`
	PlannedUnits      int       `json:"planned_units"`
	ProducedUnits     int       `json:"produced_units"`
}

// BatchResponse represents a production batch in API responses
type BatchResponse struct {
	ID               uuid.UUID                `json:"id"`
	Number           string                   `json:"number"`
	BillOfMaterialID uuid.UUID                `json:"bill_of_material_id"`
	ProductID        uuid.UUID                `json:"product_id"`
	Status           string                   `json:"status"`
	PlannedQuantity  int                      `json:"planned_quantity"`
	ProducedQuantity int                      `json:"produced_quantity"`
	Materials        []BatchMaterialResponse  `json:"materials"`
	Packaging        []BatchPackagingResponse `json:"packaging"`
	StartedAt        *time.Time               `json:"started_at,omitempty"`
	CompletedAt      *time.Time               `json:"completed_at,omitempty"`
	CreatedAt        time.Time                `json:"created_at"`
	Version          int                      `json:"version"`
}

// ToBatchResponse converts a domain batch to a response DTO
func ToBatchResponse(b *production.ProductionBatch) BatchResponse {
	materials := make([]BatchMaterialResponse, len(b.Materials))
	for i, m := range b.Materials {
		materials[i] = BatchMaterialResponse{
			InventoryItemID:  m.InventoryItemID,
			RequiredQuantity: m.RequiredQuantity,
			ConsumedQuantity: m.ConsumedQuantity,
		}
	}
	packaging := make([]BatchPackagingResponse, len(b.Packaging))
	for i, p := range b.Packaging {
		packaging[i] = BatchPackagingResponse{
			PackagedProductID: p.PackagedProductID,
			PlannedUnits:      p.PlannedUnits,
			ProducedUnits:     p.ProducedUnits,
		}
	}
	return BatchResponse{
		ID:               b.ID,
		Number:           b.Number,
		BillOfMaterialID: b.BillOfMaterialID,
		ProductID:        b.ProductID,
		Status:           string(b.Status),
		PlannedQuantity:  b.PlannedQuantity,
		ProducedQuantity: b.ProducedQuantity,
		Materials:        materials,
		Packaging:        packaging,
		StartedAt:        b.StartedAt,
		CompletedAt:      b.CompletedAt,
		CreatedAt:        b.CreatedAt,
		Version:          b.Version,
	}
}

// ToBatchResponses converts domain batches to response DTOs
func ToBatchResponses(batches []production.ProductionBatch) []BatchResponse {
	responses := make([]BatchResponse, len(batches))
	for i := range batches {
		responses[i] = ToBatchResponse(&batches[i])
	}
	return responses
}

// MaterialRequirementResponse compares a batch requirement against the
// current stock of the raw material
type MaterialRequirementResponse struct {
	InventoryItemID  uuid.UUID       `json:"inventory_item_id"`
	Code             string          `json:"code"`
	Name             string          `json:"name"`
	RequiredQuantity decimal.Decimal `json:"required_quantity"`
	AvailableStock   decimal.Decimal `json:"available_stock"`
	Shortfall        decimal.Decimal `json:"shortfall"`
	Sufficient       bool            `json:"sufficient"`
}
