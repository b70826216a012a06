package inventory

import (
	"time"

	"github.com/craftline/backend/internal/domain/inventory"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateItemRequest represents a request to register a raw material
type CreateItemRequest struct {
	Code          string          `json:"code" binding:"required,min=1,max=50"`
	Name          string          `json:"name" binding:"required,min=1,max=200"`
	Unit          string          `json:"unit" binding:"required"`
	MinStockLevel decimal.Decimal `json:"min_stock_level"`
	ReorderLevel  decimal.Decimal `json:"reorder_level"`
	UnitCost      decimal.Decimal `json:"unit_cost"`
}

// UpdateLevelsRequest represents a request to change alerting thresholds
type UpdateLevelsRequest struct {
	MinStockLevel decimal.Decimal `json:"min_stock_level"`
	ReorderLevel  decimal.Decimal `json:"reorder_level"`
}

// AdjustStockRequest represents a manual stock correction
type AdjustStockRequest struct {
	ItemID    uuid.UUID       `json:"item_id" binding:"required"`
	Direction string          `json:"direction" binding:"required,oneof=in out"`
	Quantity  decimal.Decimal `json:"quantity" binding:"required"`
	Reason    string          `json:"reason" binding:"required,min=1,max=255"`
}

// ItemListFilter represents filter options for the raw material list
type ItemListFilter struct {
	Search   string `form:"search"`
	OnlyLow  bool   `form:"only_low"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ItemResponse represents a raw material in API responses
type ItemResponse struct {
	ID            uuid.UUID       `json:"id"`
	Code          string          `json:"code"`
	Name          string          `json:"name"`
	Unit          string          `json:"unit"`
	CurrentStock  decimal.Decimal `json:"current_stock"`
	MinStockLevel decimal.Decimal `json:"min_stock_level"`
	ReorderLevel  decimal.Decimal `json:"reorder_level"`
	UnitCost      decimal.Decimal `json:"unit_cost"`
	IsActive      bool            `json:"is_active"`
	IsLowStock    bool            `json:"is_low_stock"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
	Version       int             `json:"version"`
}

// ToItemResponse converts a domain item to a response DTO
func ToItemResponse(item *inventory.InventoryItem) ItemResponse {
	return ItemResponse{
		ID:            item.ID,
		Code:          item.Code,
		Name:          item.Name,
		Unit:          string(item.Unit),
		CurrentStock:  item.CurrentStock,
		MinStockLevel: item.MinStockLevel,
		ReorderLevel:  item.ReorderLevel,
		UnitCost:      item.UnitCost,
		IsActive:      item.IsActive,
		IsLowStock:    item.ReorderLevel.IsPositive() && item.CurrentStock.LessThanOrEqual(item.ReorderLevel),
		CreatedAt:     item.CreatedAt,
		UpdatedAt:     item.UpdatedAt,
		Version:       item.Version,
	}
}

// ToItemResponses converts a slice of domain items to response DTOs
func ToItemResponses(items []inventory.InventoryItem) []ItemResponse {
	responses := make([]ItemResponse, len(items))
	for i := range items {
		responses[i] = ToItemResponse(&items[i])
	}
	return responses
}

// MovementResponse represents an audit row in API responses
type MovementResponse struct {
	ID            uuid.UUID       `json:"id"`
	MovementType  string          `json:"movement_type"`
	Quantity      decimal.Decimal `json:"quantity"`
	BalanceAfter  decimal.Decimal `json:"balance_after"`
	ReferenceType string          `json:"reference_type"`
	ReferenceID   uuid.UUID       `json:"reference_id"`
	Note          string          `json:"note,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

// ToMovementResponses converts domain movements to response DTOs
func ToMovementResponses(movements []inventory.StockMovement) []MovementResponse {
	responses := make([]MovementResponse, len(movements))
	for i, m := range movements {
		responses[i] = MovementResponse{
			ID:            m.ID,
			MovementType:  string(m.MovementType),
			Quantity:      m.Quantity,
			BalanceAfter:  m.BalanceAfter,
			ReferenceType: string(m.ReferenceType),
			ReferenceID:   m.ReferenceID,
			Note:          m.Note,
			CreatedAt:     m.CreatedAt,
		}
	}
	return responses
}

// CreatePackagedProductRequest represents a request to register a packaged product
type CreatePackagedProductRequest struct {
	ProductID     uuid.UUID `json:"product_id" binding:"required"`
	Name          string    `json:"name" binding:"required,min=1,max=200"`
	PackagingSize string    `json:"packaging_size" binding:"required"`
	ReorderLevel  int       `json:"reorder_level" binding:"omitempty,min=0"`
}

// AdjustPackagedStockRequest represents a manual packaged stock correction
type AdjustPackagedStockRequest struct {
	PackagedProductID uuid.UUID `json:"packaged_product_id" binding:"required"`
	Direction         string    `json:"direction" binding:"required,oneof=in out"`
	Quantity          int       `json:"quantity" binding:"required,min=1"`
	Reason            string    `json:"reason" binding:"required,min=1,max=255"`
}

// PackagedProductResponse represents a packaged product in API responses
type PackagedProductResponse struct {
	ID            uuid.UUID `json:"id"`
	ProductID     uuid.UUID `json:"product_id"`
	Name          string    `json:"name"`
	PackagingSize string    `json:"packaging_size"`
	StockQuantity int       `json:"stock_quantity"`
	ReorderLevel  int       `json:"reorder_level"`
	IsActive      bool      `json:"is_active"`
	UpdatedAt     time.Time `json:"updated_at"`
	Version       int       `json:"version"`
}

// ToPackagedProductResponse converts a domain packaged product to a response DTO
func ToPackagedProductResponse(p *inventory.PackagedProduct) PackagedProductResponse {
	return PackagedProductResponse{
		ID:            p.ID,
		ProductID:     p.ProductID,
		Name:          p.Name,
		PackagingSize: string(p.PackagingSize),
		StockQuantity: p.StockQuantity,
		ReorderLevel:  p.ReorderLevel,
		IsActive:      p.IsActive,
		UpdatedAt:     p.UpdatedAt,
		Version:       p.Version,
	}
}

// ToPackagedProductResponses converts a slice of packaged products to response DTOs
func ToPackagedProductResponses(products []inventory.PackagedProduct) []PackagedProductResponse {
	responses := make([]PackagedProductResponse, len(products))
	for i := range products {
		responses[i] = ToPackagedProductResponse(&products[i])
	}
	return responses
}

// PackagedMovementResponse represents a packaged product audit row
type PackagedMovementResponse struct {
	ID            uuid.UUID `json:"id"`
	MovementType  string    `json:"movement_type"`
	Quantity      int       `json:"quantity"`
	BalanceAfter  int       `json:"balance_after"`
	ReferenceType string    `json:"reference_type"`
	ReferenceID   uuid.UUID `json:"reference_id"`
	Note          string    `json:"note,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// ToPackagedMovementResponses converts packaged movements to response DTOs
func ToPackagedMovementResponses(movements []inventory.PackagedProductMovement) []PackagedMovementResponse {
	responses := make([]PackagedMovementResponse, len(movements))
	for i, m := range movements {
		responses[i] = PackagedMovementResponse{
			ID:            m.ID,
			MovementType:  string(m.MovementType),
			Quantity:      m.Quantity,
			BalanceAfter:  m.BalanceAfter,
			ReferenceType: string(m.ReferenceType),
			ReferenceID:   m.ReferenceID,
			Note:          m.Note,
			CreatedAt:     m.CreatedAt,
		}
	}
	return responses
}

// ConsistencyCheckResult reports whether an item's balance matches its movement history
type ConsistencyCheckResult struct {
	InventoryItemID uuid.UUID       `json:"inventory_item_id"`
	Code            string          `json:"code"`
	CurrentStock    decimal.Decimal `json:"current_stock"`
	MovementSum     decimal.Decimal `json:"movement_sum"`
	Consistent      bool            `json:"consistent"`
}
