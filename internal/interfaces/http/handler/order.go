package handler

import (
	orderapp "github.com/craftline/backend/internal/application/order"
	"github.com/craftline/backend/internal/domain/shared"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// OrderHandler handles cart, checkout and order API endpoints
type OrderHandler struct {
	BaseHandler
	orderService *orderapp.OrderService
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(orderService *orderapp.OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

// GetCart godoc
// @Summary      Get the current user's cart
// @Tags         orders
// @Produce      json
// @Success      200 {object} APIResponse[orderapp.CartResponse]
// @Security     BearerAuth
// @Router       /orders/cart [get]
func (h *OrderHandler) GetCart(c *gin.Context) {
	tenantID, userID, ok := h.identify(c)
	if !ok {
		return
	}

	cart, err := h.orderService.GetCart(c.Request.Context(), tenantID, userID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, cart)
}

// AddToCart godoc
// @Summary      Add a product to the cart
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        request body orderapp.AddToCartRequest true "Add to cart request"
// @Success      200 {object} APIResponse[orderapp.CartResponse]
// @Security     BearerAuth
// @Router       /orders/cart/items [post]
func (h *OrderHandler) AddToCart(c *gin.Context) {
	tenantID, userID, ok := h.identify(c)
	if !ok {
		return
	}

	var req orderapp.AddToCartRequest
	if !bindJSON(h.BaseHandler, c, &req) {
		return
	}

	cart, err := h.orderService.AddToCart(c.Request.Context(), tenantID, userID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, cart)
}

// UpdateCartItem godoc
// @Summary      Change a cart line quantity (zero removes the line)
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        request body orderapp.UpdateCartItemRequest true "Update cart item request"
// @Success      200 {object} APIResponse[orderapp.CartResponse]
// @Security     BearerAuth
// @Router       /orders/cart/items [put]
func (h *OrderHandler) UpdateCartItem(c *gin.Context) {
	tenantID, userID, ok := h.identify(c)
	if !ok {
		return
	}

	var req orderapp.UpdateCartItemRequest
	if !bindJSON(h.BaseHandler, c, &req) {
		return
	}

	cart, err := h.orderService.UpdateCartItem(c.Request.Context(), tenantID, userID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, cart)
}

// Checkout godoc
// @Summary      Create an order from the cart
// @Description  Prices are re-read from the catalog and stock is reserved
// @Description  atomically; the cart is cleared on success.
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        request body orderapp.CreateOrderRequest true "Checkout request"
// @Success      201 {object} APIResponse[orderapp.OrderResponse]
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /orders [post]
func (h *OrderHandler) Checkout(c *gin.Context) {
	tenantID, userID, ok := h.identify(c)
	if !ok {
		return
	}

	var req orderapp.CreateOrderRequest
	if !bindJSON(h.BaseHandler, c, &req) {
		return
	}

	order, err := h.orderService.CreateOrder(c.Request.Context(), tenantID, userID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, order)
}

// Get godoc
// @Summary      Get an order by ID
// @Tags         orders
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Success      200 {object} APIResponse[orderapp.OrderResponse]
// @Security     BearerAuth
// @Router       /orders/{id} [get]
func (h *OrderHandler) Get(c *gin.Context) {
	tenantID, userID, ok := h.identify(c)
	if !ok {
		return
	}

	orderID, ok := pathID(h.BaseHandler, c, "order ID")
	if !ok {
		return
	}

	order, err := h.orderService.GetOrder(c.Request.Context(), tenantID, userID, orderID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, order)
}

// GetByNumber godoc
// @Summary      Get an order by its order number
// @Tags         orders
// @Produce      json
// @Param        number path string true "Order number"
// @Success      200 {object} APIResponse[orderapp.OrderResponse]
// @Router       /orders/by-number/{number} [get]
func (h *OrderHandler) GetByNumber(c *gin.Context) {
	tenantID, ok := requireTenant(h.BaseHandler, c)
	if !ok {
		return
	}

	number := c.Param("number")
	if number == "" {
		h.BadRequest(c, "Order number is required")
		return
	}

	order, err := h.orderService.GetOrderByNumber(c.Request.Context(), tenantID, number)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, order)
}

// ListMine godoc
// @Summary      List the current user's orders
// @Tags         orders
// @Produce      json
// @Success      200 {object} APIResponse[[]orderapp.OrderResponse]
// @Security     BearerAuth
// @Router       /orders/mine [get]
func (h *OrderHandler) ListMine(c *gin.Context) {
	tenantID, userID, ok := h.identify(c)
	if !ok {
		return
	}

	filter, ok := h.bindFilter(c)
	if !ok {
		return
	}

	orders, total, err := h.orderService.ListUserOrders(c.Request.Context(), tenantID, userID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, orders, total, filter.Page, filter.PageSize)
}

// List godoc
// @Summary      List all orders in the tenant
// @Tags         orders
// @Produce      json
// @Success      200 {object} APIResponse[[]orderapp.OrderResponse]
// @Security     BearerAuth
// @Router       /orders [get]
func (h *OrderHandler) List(c *gin.Context) {
	tenantID, ok := requireTenant(h.BaseHandler, c)
	if !ok {
		return
	}

	filter, ok := h.bindFilter(c)
	if !ok {
		return
	}

	orders, total, err := h.orderService.ListOrders(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, orders, total, filter.Page, filter.PageSize)
}

// UpdateStatus godoc
// @Summary      Transition an order's fulfilment status
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Param        request body orderapp.UpdateOrderStatusRequest true "Status transition request"
// @Success      200 {object} APIResponse[orderapp.OrderResponse]
// @Failure      422 {object} ErrorResponse
// @Router       /orders/{id}/status [put]
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	tenantID, ok := requireTenant(h.BaseHandler, c)
	if !ok {
		return
	}

	orderID, ok := pathID(h.BaseHandler, c, "order ID")
	if !ok {
		return
	}

	var req orderapp.UpdateOrderStatusRequest
	if !bindJSON(h.BaseHandler, c, &req) {
		return
	}

	order, err := h.orderService.UpdateOrderStatus(c.Request.Context(), tenantID, orderID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, order)
}

// Cancel godoc
// @Summary      Cancel an order and restore reserved stock
// @Tags         orders
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Success      200 {object} APIResponse[orderapp.OrderResponse]
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /orders/{id}/cancel [post]
func (h *OrderHandler) Cancel(c *gin.Context) {
	tenantID, userID, ok := h.identify(c)
	if !ok {
		return
	}

	orderID, ok := pathID(h.BaseHandler, c, "order ID")
	if !ok {
		return
	}

	order, err := h.orderService.CancelOrder(c.Request.Context(), tenantID, userID, orderID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, order)
}

// CreateAddress godoc
// @Summary      Add a shipping address
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        request body orderapp.CreateAddressRequest true "Address request"
// @Success      201 {object} APIResponse[orderapp.AddressResponse]
// @Security     BearerAuth
// @Router       /orders/addresses [post]
func (h *OrderHandler) CreateAddress(c *gin.Context) {
	tenantID, userID, ok := h.identify(c)
	if !ok {
		return
	}

	var req orderapp.CreateAddressRequest
	if !bindJSON(h.BaseHandler, c, &req) {
		return
	}

	address, err := h.orderService.CreateAddress(c.Request.Context(), tenantID, userID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, address)
}

// ListAddresses godoc
// @Summary      List the current user's shipping addresses
// @Tags         orders
// @Produce      json
// @Success      200 {object} APIResponse[[]orderapp.AddressResponse]
// @Security     BearerAuth
// @Router       /orders/addresses [get]
func (h *OrderHandler) ListAddresses(c *gin.Context) {
	tenantID, userID, ok := h.identify(c)
	if !ok {
		return
	}

	addresses, err := h.orderService.ListAddresses(c.Request.Context(), tenantID, userID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, addresses)
}

// identify resolves both tenant and user; cart and order ownership always
// needs the acting user.
func (h *OrderHandler) identify(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	tenantID, ok := requireTenant(h.BaseHandler, c)
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return uuid.Nil, uuid.Nil, false
	}
	return tenantID, userID, true
}

func (h *OrderHandler) bindFilter(c *gin.Context) (shared.Filter, bool) {
	return bindSharedFilter(h.BaseHandler, c)
}
