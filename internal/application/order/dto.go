package order

import (
	"time"

	"github.com/craftline/backend/internal/domain/order"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AddToCartRequest represents a request to add a product to the cart
type AddToCartRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Quantity  int       `json:"quantity" binding:"required,min=1"`
}

// UpdateCartItemRequest represents a request to change a cart line quantity.
// Zero removes the line.
type UpdateCartItemRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Quantity  int       `json:"quantity" binding:"min=0"`
}

// CartItemResponse represents one cart line in API responses
type CartItemResponse struct {
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	LineTotal   decimal.Decimal `json:"line_total"`
	InStock     bool            `json:"in_stock"`
}

// CartResponse represents the user's cart
type CartResponse struct {
	ID       uuid.UUID          `json:"id"`
	Items    []CartItemResponse `json:"items"`
	Subtotal decimal.Decimal    `json:"subtotal"`
}

// CreateOrderRequest represents a checkout request. Prices are never taken
// from the client; they are re-read from the catalog inside the checkout
// transaction.
type CreateOrderRequest struct {
	ShippingAddressID uuid.UUID `json:"shipping_address_id" binding:"required"`
	ShippingMethodID  uuid.UUID `json:"shipping_method_id" binding:"required"`
	PaymentMethodID   uuid.UUID `json:"payment_method_id" binding:"required"`
}

// UpdateOrderStatusRequest represents an admin fulfilment transition
type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=pending processing shipped delivered cancelled"`
}

// CreateAddressRequest represents a request to add a shipping address
type CreateAddressRequest struct {
	Recipient  string `json:"recipient" binding:"required,min=1,max=100"`
	Phone      string `json:"phone" binding:"required,min=6,max=20"`
	Line1      string `json:"line1" binding:"required,min=1,max=200"`
	Line2      string `json:"line2" binding:"omitempty,max=200"`
	City       string `json:"city" binding:"required,min=1,max=100"`
	State      string `json:"state" binding:"required,min=1,max=100"`
	PostalCode string `json:"postal_code" binding:"required,min=3,max=20"`
	IsDefault  bool   `json:"is_default"`
}

// OrderItemResponse represents one order line in API responses
type OrderItemResponse struct {
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	TaxRate     decimal.Decimal `json:"tax_rate"`
	TaxAmount   decimal.Decimal `json:"tax_amount"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

// OrderResponse represents an order in API responses
type OrderResponse struct {
	ID                uuid.UUID           `json:"id"`
	OrderNumber       string              `json:"order_number"`
	UserID            uuid.UUID           `json:"user_id"`
	Status            string              `json:"status"`
	PaymentStatus     string              `json:"payment_status"`
	SubtotalAmount    decimal.Decimal     `json:"subtotal_amount"`
	TaxAmount         decimal.Decimal     `json:"tax_amount"`
	ShippingAmount    decimal.Decimal     `json:"shipping_amount"`
	TotalAmount       decimal.Decimal     `json:"total_amount"`
	ShippingAddressID uuid.UUID           `json:"shipping_address_id"`
	ShippingMethodID  uuid.UUID           `json:"shipping_method_id"`
	PaymentMethodID   uuid.UUID           `json:"payment_method_id"`
	Items             []OrderItemResponse `json:"items"`
	CreatedAt         time.Time           `json:"created_at"`
	UpdatedAt         time.Time           `json:"updated_at"`
	CancelledAt       *time.Time          `json:"cancelled_at,omitempty"`
}

// ToOrderResponse converts a domain order to a response DTO
func ToOrderResponse(o *order.Order) OrderResponse {
	items := make([]OrderItemResponse, len(o.Items))
	for i, item := range o.Items {
		items[i] = OrderItemResponse{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			TaxRate:     item.TaxRate,
			TaxAmount:   item.TaxAmount,
			LineTotal:   item.LineTotal,
		}
	}
	return OrderResponse{
		ID:                o.ID,
		OrderNumber:       o.OrderNumber,
		UserID:            o.UserID,
		Status:            string(o.Status),
		PaymentStatus:     string(o.PaymentStatus),
		SubtotalAmount:    o.SubtotalAmount,
		TaxAmount:         o.TaxAmount,
		ShippingAmount:    o.ShippingAmount,
		TotalAmount:       o.TotalAmount,
		ShippingAddressID: o.ShippingAddressID,
		ShippingMethodID:  o.ShippingMethodID,
		PaymentMethodID:   o.PaymentMethodID,
		Items:             items,
		CreatedAt:         o.CreatedAt,
		UpdatedAt:         o.UpdatedAt,
		CancelledAt:       o.CancelledAt,
	}
}

// ToOrderResponses converts a slice of domain orders to response DTOs
func ToOrderResponses(orders []order.Order) []OrderResponse {
	responses := make([]OrderResponse, len(orders))
	for i := range orders {
		responses[i] = ToOrderResponse(&orders[i])
	}
	return responses
}

// AddressResponse represents a shipping address in API responses
type AddressResponse struct {
	ID         uuid.UUID `json:"id"`
	Recipient  string    `json:"recipient"`
	Phone      string    `json:"phone"`
	Line1      string    `json:"line1"`
	Line2      string    `json:"line2,omitempty"`
	City       string    `json:"city"`
	State      string    `json:"state"`
	PostalCode string    `json:"postal_code"`
	Country    string    `json:"country"`
	IsDefault  bool      `json:"is_default"`
}

// ToAddressResponse converts a domain address to a response DTO
func ToAddressResponse(a *order.Address) AddressResponse {
	return AddressResponse{
		ID:         a.ID,
		Recipient:  a.Recipient,
		Phone:      a.Phone,
		Line1:      a.Line1,
		Line2:      a.Line2,
		City:       a.City,
		State:      a.State,
		PostalCode: a.PostalCode,
		Country:    a.Country,
		IsDefault:  a.IsDefault,
	}
}
