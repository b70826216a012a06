package handler

import (
	"strconv"

	paymentapp "github.com/craftline/backend/internal/application/payment"
	"github.com/gin-gonic/gin"
)

// PaymentHandler handles payment API endpoints
type PaymentHandler struct {
	BaseHandler
	paymentService *paymentapp.PaymentService
	processor      *paymentapp.WebhookProcessorService
}

// NewPaymentHandler creates a new PaymentHandler
func NewPaymentHandler(paymentService *paymentapp.PaymentService, processor *paymentapp.WebhookProcessorService) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
		processor:      processor,
	}
}

// Create godoc
// @Summary      Create a gateway collection order for an order
// @Description  Returns the gateway order id the storefront needs to open
// @Description  the payment widget.
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        request body paymentapp.CreatePaymentRequest true "Payment creation request"
// @Success      201 {object} APIResponse[paymentapp.CreatePaymentResponse]
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /payments [post]
func (h *PaymentHandler) Create(c *gin.Context) {
	tenantID, ok := requireTenant(h.BaseHandler, c)
	if !ok {
		return
	}
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req paymentapp.CreatePaymentRequest
	if !bindJSON(h.BaseHandler, c, &req) {
		return
	}

	result, err := h.paymentService.CreatePayment(c.Request.Context(), tenantID, userID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, result)
}

// Get godoc
// @Summary      Get a payment by ID
// @Tags         payments
// @Produce      json
// @Param        id path string true "Payment ID" format(uuid)
// @Success      200 {object} APIResponse[paymentapp.PaymentResponse]
// @Router       /payments/{id} [get]
func (h *PaymentHandler) Get(c *gin.Context) {
	tenantID, ok := requireTenant(h.BaseHandler, c)
	if !ok {
		return
	}

	paymentID, ok := pathID(h.BaseHandler, c, "payment ID")
	if !ok {
		return
	}

	payment, err := h.paymentService.GetPayment(c.Request.Context(), tenantID, paymentID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, payment)
}

// List godoc
// @Summary      List payments
// @Tags         payments
// @Produce      json
// @Success      200 {object} APIResponse[[]paymentapp.PaymentResponse]
// @Router       /payments [get]
func (h *PaymentHandler) List(c *gin.Context) {
	tenantID, ok := requireTenant(h.BaseHandler, c)
	if !ok {
		return
	}

	filter, ok := bindSharedFilter(h.BaseHandler, c)
	if !ok {
		return
	}

	payments, total, err := h.paymentService.ListPayments(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, payments, total, filter.Page, filter.PageSize)
}

// ListByOrder godoc
// @Summary      List payments for an order
// @Tags         payments
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Success      200 {object} APIResponse[[]paymentapp.PaymentResponse]
// @Router       /payments/by-order/{id} [get]
func (h *PaymentHandler) ListByOrder(c *gin.Context) {
	tenantID, ok := requireTenant(h.BaseHandler, c)
	if !ok {
		return
	}

	orderID, ok := pathID(h.BaseHandler, c, "order ID")
	if !ok {
		return
	}

	payments, err := h.paymentService.ListPaymentsByOrder(c.Request.Context(), tenantID, orderID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, payments)
}

// ListTransactions godoc
// @Summary      List the ledger rows of a payment
// @Tags         payments
// @Produce      json
// @Param        id path string true "Payment ID" format(uuid)
// @Success      200 {object} APIResponse[[]paymentapp.TransactionResponse]
// @Router       /payments/{id}/transactions [get]
func (h *PaymentHandler) ListTransactions(c *gin.Context) {
	tenantID, ok := requireTenant(h.BaseHandler, c)
	if !ok {
		return
	}

	paymentID, ok := pathID(h.BaseHandler, c, "payment ID")
	if !ok {
		return
	}

	transactions, err := h.paymentService.ListTransactions(c.Request.Context(), tenantID, paymentID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, transactions)
}

// Refund godoc
// @Summary      Initiate a refund against a captured payment
// @Description  The refund is requested at the gateway; the payment settles
// @Description  to refunded state when the gateway confirms via webhook.
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        id path string true "Payment ID" format(uuid)
// @Param        request body paymentapp.RefundRequest true "Refund request"
// @Success      200 {object} APIResponse[paymentapp.PaymentResponse]
// @Failure      422 {object} ErrorResponse
// @Router       /payments/{id}/refund [post]
func (h *PaymentHandler) Refund(c *gin.Context) {
	tenantID, ok := requireTenant(h.BaseHandler, c)
	if !ok {
		return
	}

	paymentID, ok := pathID(h.BaseHandler, c, "payment ID")
	if !ok {
		return
	}

	var req paymentapp.RefundRequest
	if !bindJSON(h.BaseHandler, c, &req) {
		return
	}

	payment, err := h.paymentService.InitiateRefund(c.Request.Context(), tenantID, paymentID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, payment)
}

// QueueStats godoc
// @Summary      Report webhook queue depth per status
// @Tags         payments
// @Produce      json
// @Success      200 {object} APIResponse[paymentapp.WebhookQueueStats]
// @Router       /payments/webhooks/stats [get]
func (h *PaymentHandler) QueueStats(c *gin.Context) {
	stats, err := h.processor.QueueStats(c.Request.Context())
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, stats)
}

// ListDeadLetters godoc
// @Summary      List webhook events that exhausted their retries
// @Tags         payments
// @Produce      json
// @Success      200 {object} APIResponse[[]paymentapp.WebhookEventResponse]
// @Router       /payments/webhooks/dead-letters [get]
func (h *PaymentHandler) ListDeadLetters(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	events, total, err := h.processor.ListDeadLetters(c.Request.Context(), page, pageSize)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, events, total, page, pageSize)
}

// RequeueDeadLetter godoc
// @Summary      Put a dead-lettered webhook event back on the queue
// @Tags         payments
// @Param        id path string true "Webhook event ID" format(uuid)
// @Success      204
// @Router       /payments/webhooks/dead-letters/{id}/requeue [post]
func (h *PaymentHandler) RequeueDeadLetter(c *gin.Context) {
	eventID, ok := pathID(h.BaseHandler, c, "event ID")
	if !ok {
		return
	}

	if err := h.processor.RequeueDeadLetter(c.Request.Context(), eventID); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}
