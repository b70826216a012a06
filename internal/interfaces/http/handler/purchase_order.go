package handler

import (
	procurementapp "github.com/craftline/backend/internal/application/procurement"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// PurchaseOrderHandler exposes the purchase order and goods receipt
// endpoints.
type PurchaseOrderHandler struct {
	BaseHandler
	poService *procurementapp.PurchaseOrderService
}

func NewPurchaseOrderHandler(poService *procurementapp.PurchaseOrderService) *PurchaseOrderHandler {
	return &PurchaseOrderHandler{poService: poService}
}

// Create godoc
// @Summary      Create a purchase order
// @Tags         procurement
// @Accept       json
// @Produce      json
// @Param        request body procurementapp.CreatePurchaseOrderRequest true "PO creation request"
// @Success      201 {object} APIResponse[procurementapp.PurchaseOrderResponse]
// @Router       /procurement/purchase-orders [post]
func (h *PurchaseOrderHandler) Create(c *gin.Context) {
	tenantID, ok := requireTenant(h.BaseHandler, c)
	if !ok {
		return
	}

	var req procurementapp.CreatePurchaseOrderRequest
	if !bindJSON(h.BaseHandler, c, &req) {
		return
	}

	po, err := h.poService.CreatePurchaseOrder(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Created(c, po)
}

// Get returns a purchase order by id.
func (h *PurchaseOrderHandler) Get(c *gin.Context) {
	tenantID, poID, ok := h.resolve(c)
	if !ok {
		return
	}

	po, err := h.poService.GetPurchaseOrder(c.Request.Context(), tenantID, poID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, po)
}

// GetByNumber returns a purchase order by its document number.
func (h *PurchaseOrderHandler) GetByNumber(c *gin.Context) {
	tenantID, ok := requireTenant(h.BaseHandler, c)
	if !ok {
		return
	}
	number := c.Param("number")
	if number == "" {
		h.BadRequest(c, "Purchase order number is required")
		return
	}

	po, err := h.poService.GetPurchaseOrderByNumber(c.Request.Context(), tenantID, number)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, po)
}

// List godoc
// @Summary      List purchase orders
// @Tags         procurement
// @Produce      json
// @Param        status query string false "Filter by status"
// @Success      200 {object} APIResponse[[]procurementapp.PurchaseOrderResponse]
// @Router       /procurement/purchase-orders [get]
func (h *PurchaseOrderHandler) List(c *gin.Context) {
	tenantID, ok := requireTenant(h.BaseHandler, c)
	if !ok {
		return
	}

	var filter procurementapp.PurchaseOrderListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	if filter.Page == 0 {
		filter.Page = 1
	}
	if filter.PageSize == 0 {
		filter.PageSize = 20
	}

	orders, total, err := h.poService.ListPurchaseOrders(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.SuccessWithMeta(c, orders, total, filter.Page, filter.PageSize)
}

// Submit moves a draft purchase order to pending approval.
func (h *PurchaseOrderHandler) Submit(c *gin.Context) {
	tenantID, poID, ok := h.resolve(c)
	if !ok {
		return
	}

	po, err := h.poService.SubmitPurchaseOrder(c.Request.Context(), tenantID, poID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, po)
}

// Approve approves a pending purchase order. The approver comes from the
// authenticated caller.
func (h *PurchaseOrderHandler) Approve(c *gin.Context) {
	tenantID, poID, ok := h.resolve(c)
	if !ok {
		return
	}
	approverID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	po, err := h.poService.ApprovePurchaseOrder(c.Request.Context(), tenantID, poID, approverID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, po)
}

// Cancel cancels a purchase order that has not yet received goods.
func (h *PurchaseOrderHandler) Cancel(c *gin.Context) {
	tenantID, poID, ok := h.resolve(c)
	if !ok {
		return
	}

	po, err := h.poService.CancelPurchaseOrder(c.Request.Context(), tenantID, poID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, po)
}

// ReceiveGoods godoc
// @Summary      Record a goods receipt against an approved purchase order
// @Description  Accepted quantities land in raw material stock with signed
// @Description  movement rows in the same transaction.
// @Tags         procurement
// @Accept       json
// @Produce      json
// @Param        id path string true "Purchase order ID" format(uuid)
// @Param        request body procurementapp.ReceiveGoodsRequest true "Goods receipt request"
// @Success      201 {object} APIResponse[procurementapp.ReceiptResponse]
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /procurement/purchase-orders/{id}/receipts [post]
func (h *PurchaseOrderHandler) ReceiveGoods(c *gin.Context) {
	tenantID, poID, ok := h.resolve(c)
	if !ok {
		return
	}
	receiverID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req procurementapp.ReceiveGoodsRequest
	if !bindJSON(h.BaseHandler, c, &req) {
		return
	}

	receipt, err := h.poService.ReceiveGoods(c.Request.Context(), tenantID, poID, receiverID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Created(c, receipt)
}

// GetReceipt returns a goods receipt by id.
func (h *PurchaseOrderHandler) GetReceipt(c *gin.Context) {
	tenantID, ok := requireTenant(h.BaseHandler, c)
	if !ok {
		return
	}
	receiptID, ok := pathID(h.BaseHandler, c, "receipt ID")
	if !ok {
		return
	}

	receipt, err := h.poService.GetReceipt(c.Request.Context(), tenantID, receiptID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, receipt)
}

// ListReceipts lists the receipts recorded against a purchase order.
func (h *PurchaseOrderHandler) ListReceipts(c *gin.Context) {
	tenantID, poID, ok := h.resolve(c)
	if !ok {
		return
	}

	receipts, err := h.poService.ListReceipts(c.Request.Context(), tenantID, poID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, receipts)
}

// resolve reads the tenant plus the purchase order id from the path.
func (h *PurchaseOrderHandler) resolve(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	tenantID, ok := requireTenant(h.BaseHandler, c)
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	poID, ok := pathID(h.BaseHandler, c, "purchase order ID")
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	return tenantID, poID, true
}
