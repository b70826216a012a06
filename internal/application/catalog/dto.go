package catalog

import (
	"time"

	"github.com/craftline/backend/internal/domain/catalog"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateProductRequest creates a catalog product
type CreateProductRequest struct {
	SKU         string          `json:"sku" binding:"required,min=1,max=50"`
	Name        string          `json:"name" binding:"required,min=1,max=200"`
	Description string          `json:"description" binding:"omitempty,max=2000"`
	HSNCode     string          `json:"hsn_code" binding:"omitempty,max=20"`
	Price       decimal.Decimal `json:"price" binding:"required"`
	TaxRate     decimal.Decimal `json:"tax_rate"`
	Stock       int             `json:"stock" binding:"omitempty,min=0"`
}

// UpdateProductRequest updates a product's basic information
type UpdateProductRequest struct {
	Name        string `json:"name" binding:"required,min=1,max=200"`
	Description string `json:"description" binding:"omitempty,max=2000"`
	HSNCode     string `json:"hsn_code" binding:"omitempty,max=20"`
}

// SetPricingRequest updates the selling price and tax rate
type SetPricingRequest struct {
	Price   decimal.Decimal `json:"price" binding:"required"`
	TaxRate decimal.Decimal `json:"tax_rate"`
}

// SetStockRequest replaces the catalog stock level directly
type SetStockRequest struct {
	Quantity int `json:"quantity" binding:"min=0"`
}

// ProductListFilter represents filter options for the product list
type ProductListFilter struct {
	Search     string `form:"search"`
	OnlyActive bool   `form:"only_active"`
	Page       int    `form:"page" binding:"omitempty,min=1"`
	PageSize   int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy    string `form:"order_by"`
	OrderDir   string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ProductResponse represents a product in API responses
type ProductResponse struct {
	ID            uuid.UUID       `json:"id"`
	SKU           string          `json:"sku"`
	Name          string          `json:"name"`
	Description   string          `json:"description,omitempty"`
	HSNCode       string          `json:"hsn_code,omitempty"`
	Price         decimal.Decimal `json:"price"`
	TaxRate       decimal.Decimal `json:"tax_rate"`
	StockQuantity int             `json:"stock_quantity"`
	Status        string          `json:"status"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
	Version       int             `json:"version"`
}

// ToProductResponse converts a domain product to a response DTO
func ToProductResponse(p *catalog.Product) ProductResponse {
	return ProductResponse{
		ID:            p.ID,
		SKU:           p.SKU,
		Name:          p.Name,
		Description:   p.Description,
		HSNCode:       p.HSNCode,
		Price:         p.Price,
		TaxRate:       p.TaxRate,
		StockQuantity: p.StockQuantity,
		Status:        string(p.Status),
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
		Version:       p.Version,
	}
}

// ToProductResponses converts domain products to response DTOs
func ToProductResponses(products []catalog.Product) []ProductResponse {
	responses := make([]ProductResponse, len(products))
	for i := range products {
		responses[i] = ToProductResponse(&products[i])
	}
	return responses
}

// CreateShippingMethodRequest creates a checkout delivery option
type CreateShippingMethodRequest struct {
	Name         string          `json:"name" binding:"required,min=1,max=100"`
	Description  string          `json:"description" binding:"omitempty,max=500"`
	Amount       decimal.Decimal `json:"amount"`
	DeliveryDays int             `json:"delivery_days" binding:"omitempty,min=0"`
}

// ShippingMethodResponse represents a shipping method in API responses
type ShippingMethodResponse struct {
	ID           uuid.UUID       `json:"id"`
	Name         string          `json:"name"`
	Description  string          `json:"description,omitempty"`
	Amount       decimal.Decimal `json:"amount"`
	DeliveryDays int             `json:"delivery_days"`
	IsActive     bool            `json:"is_active"`
}

// ToShippingMethodResponse converts a domain shipping method to a response DTO
func ToShippingMethodResponse(m *catalog.ShippingMethod) ShippingMethodResponse {
	return ShippingMethodResponse{
		ID:           m.ID,
		Name:         m.Name,
		Description:  m.Description,
		Amount:       m.Amount,
		DeliveryDays: m.DeliveryDays,
		IsActive:     m.IsActive,
	}
}

// CreatePaymentMethodRequest creates a checkout payment option
type CreatePaymentMethodRequest struct {
	Name        string `json:"name" binding:"required,min=1,max=100"`
	GatewayCode string `json:"gateway_code" binding:"required,min=1,max=50"`
}

// PaymentMethodResponse represents a payment method in API responses
type PaymentMethodResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	GatewayCode string    `json:"gateway_code"`
	IsActive    bool      `json:"is_active"`
}

// ToPaymentMethodResponse converts a domain payment method to a response DTO
func ToPaymentMethodResponse(m *catalog.PaymentMethod) PaymentMethodResponse {
	return PaymentMethodResponse{
		ID:          m.ID,
		Name:        m.Name,
		GatewayCode: m.GatewayCode,
		IsActive:    m.IsActive,
	}
}
