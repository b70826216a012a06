package handler

import (
	"context"

	catalogapp "github.com/craftline/backend/internal/application/catalog"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CheckoutMethodHandler handles shipping and payment method API endpoints
type CheckoutMethodHandler struct {
	BaseHandler
	methodService *catalogapp.MethodService
}

// NewCheckoutMethodHandler creates a new CheckoutMethodHandler
func NewCheckoutMethodHandler(methodService *catalogapp.MethodService) *CheckoutMethodHandler {
	return &CheckoutMethodHandler{methodService: methodService}
}

// CreateShippingMethod godoc
// @Summary      Create a shipping method
// @Tags         checkout-methods
// @Accept       json
// @Produce      json
// @Param        request body catalogapp.CreateShippingMethodRequest true "Shipping method request"
// @Success      201 {object} APIResponse[catalogapp.ShippingMethodResponse]
// @Router       /catalog/shipping-methods [post]
func (h *CheckoutMethodHandler) CreateShippingMethod(c *gin.Context) {
	tenantID, ok := requireTenant(h.BaseHandler, c)
	if !ok {
		return
	}

	var req catalogapp.CreateShippingMethodRequest
	if !bindJSON(h.BaseHandler, c, &req) {
		return
	}

	method, err := h.methodService.CreateShippingMethod(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, method)
}

// ListShippingMethods godoc
// @Summary      List active shipping methods
// @Tags         checkout-methods
// @Produce      json
// @Success      200 {object} APIResponse[[]catalogapp.ShippingMethodResponse]
// @Router       /catalog/shipping-methods [get]
func (h *CheckoutMethodHandler) ListShippingMethods(c *gin.Context) {
	tenantID, ok := requireTenant(h.BaseHandler, c)
	if !ok {
		return
	}

	methods, err := h.methodService.ListShippingMethods(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, methods)
}

// ActivateShippingMethod activates a shipping method
func (h *CheckoutMethodHandler) ActivateShippingMethod(c *gin.Context) {
	h.toggle(c, h.methodService.ActivateShippingMethod)
}

// DeactivateShippingMethod removes a shipping method from checkout
func (h *CheckoutMethodHandler) DeactivateShippingMethod(c *gin.Context) {
	h.toggle(c, h.methodService.DeactivateShippingMethod)
}

// CreatePaymentMethod godoc
// @Summary      Create a payment method
// @Tags         checkout-methods
// @Accept       json
// @Produce      json
// @Param        request body catalogapp.CreatePaymentMethodRequest true "Payment method request"
// @Success      201 {object} APIResponse[catalogapp.PaymentMethodResponse]
// @Router       /catalog/payment-methods [post]
func (h *CheckoutMethodHandler) CreatePaymentMethod(c *gin.Context) {
	tenantID, ok := requireTenant(h.BaseHandler, c)
	if !ok {
		return
	}

	var req catalogapp.CreatePaymentMethodRequest
	if !bindJSON(h.BaseHandler, c, &req) {
		return
	}

	method, err := h.methodService.CreatePaymentMethod(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, method)
}

// ListPaymentMethods godoc
// @Summary      List active payment methods
// @Tags         checkout-methods
// @Produce      json
// @Success      200 {object} APIResponse[[]catalogapp.PaymentMethodResponse]
// @Router       /catalog/payment-methods [get]
func (h *CheckoutMethodHandler) ListPaymentMethods(c *gin.Context) {
	tenantID, ok := requireTenant(h.BaseHandler, c)
	if !ok {
		return
	}

	methods, err := h.methodService.ListPaymentMethods(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, methods)
}

// ActivatePaymentMethod activates a payment method
func (h *CheckoutMethodHandler) ActivatePaymentMethod(c *gin.Context) {
	h.toggle(c, h.methodService.ActivatePaymentMethod)
}

// DeactivatePaymentMethod removes a payment method from checkout
func (h *CheckoutMethodHandler) DeactivatePaymentMethod(c *gin.Context) {
	h.toggle(c, h.methodService.DeactivatePaymentMethod)
}

func (h *CheckoutMethodHandler) toggle(c *gin.Context, fn func(ctx context.Context, tenantID, methodID uuid.UUID) error) {
	tenantID, ok := requireTenant(h.BaseHandler, c)
	if !ok {
		return
	}

	methodID, ok := pathID(h.BaseHandler, c, "method ID")
	if !ok {
		return
	}

	if err := fn(c.Request.Context(), tenantID, methodID); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}
