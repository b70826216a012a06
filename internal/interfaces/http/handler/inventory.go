package handler

import (
	inventoryapp "github.com/craftline/backend/internal/application/inventory"
	"github.com/gin-gonic/gin"
)

// InventoryHandler exposes raw material and packaged product endpoints.
type InventoryHandler struct {
	BaseHandler
	stockService *inventoryapp.StockMovementService
}

func NewInventoryHandler(stockService *inventoryapp.StockMovementService) *InventoryHandler {
	return &InventoryHandler{stockService: stockService}
}

// CreateItem godoc
// @Summary      Register a raw material
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        request body inventoryapp.CreateItemRequest true "Item creation request"
// @Success      201 {object} APIResponse[inventoryapp.ItemResponse]
// @Router       /inventory/items [post]
func (h *InventoryHandler) CreateItem(c *gin.Context) {
	tenantID, ok := requireTenant(h.BaseHandler, c)
	if !ok {
		return
	}

	var req inventoryapp.CreateItemRequest
	if !bindJSON(h.BaseHandler, c, &req) {
		return
	}

	item, err := h.stockService.CreateItem(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Created(c, item)
}

// GetItem godoc
// @Summary      Get a raw material by ID
// @Tags         inventory
// @Produce      json
// @Param        id path string true "Item ID" format(uuid)
// @Success      200 {object} APIResponse[inventoryapp.ItemResponse]
// @Router       /inventory/items/{id} [get]
func (h *InventoryHandler) GetItem(c *gin.Context) {
	tenantID, ok := requireTenant(h.BaseHandler, c)
	if !ok {
		return
	}
	itemID, ok := pathID(h.BaseHandler, c, "item ID")
	if !ok {
		return
	}

	item, err := h.stockService.GetItem(c.Request.Context(), tenantID, itemID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, item)
}

// ListItems godoc
// @Summary      List raw materials
// @Tags         inventory
// @Produce      json
// @Param        search query string false "Search by code or name"
// @Param        only_low query bool false "Only items at or below reorder level"
// @Success      200 {object} APIResponse[[]inventoryapp.ItemResponse]
// @Router       /inventory/items [get]
func (h *InventoryHandler) ListItems(c *gin.Context) {
	tenantID, ok := requireTenant(h.BaseHandler, c)
	if !ok {
		return
	}

	var filter inventoryapp.ItemListFilter
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

	items, total, err := h.stockService.ListItems(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.SuccessWithMeta(c, items, total, filter.Page, filter.PageSize)
}

// UpdateLevels godoc
// @Summary      Update alerting thresholds for a raw material
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        id path string true "Item ID" format(uuid)
// @Param        request body inventoryapp.UpdateLevelsRequest true "Levels request"
// @Success      200 {object} APIResponse[inventoryapp.ItemResponse]
// @Router       /inventory/items/{id}/levels [put]
func (h *InventoryHandler) UpdateLevels(c *gin.Context) {
	tenantID, ok := requireTenant(h.BaseHandler, c)
	if !ok {
		return
	}
	itemID, ok := pathID(h.BaseHandler, c, "item ID")
	if !ok {
		return
	}

	var req inventoryapp.UpdateLevelsRequest
	if !bindJSON(h.BaseHandler, c, &req) {
		return
	}

	item, err := h.stockService.UpdateLevels(c.Request.Context(), tenantID, itemID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, item)
}

// DeactivateItem godoc
// @Summary      Deactivate a raw material
// @Tags         inventory
// @Param        id path string true "Item ID" format(uuid)
// @Success      204
// @Router       /inventory/items/{id} [delete]
func (h *InventoryHandler) DeactivateItem(c *gin.Context) {
	tenantID, ok := requireTenant(h.BaseHandler, c)
	if !ok {
		return
	}
	itemID, ok := pathID(h.BaseHandler, c, "item ID")
	if !ok {
		return
	}

	if err := h.stockService.DeactivateItem(c.Request.Context(), tenantID, itemID); err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.NoContent(c)
}

// AdjustStock godoc
// @Summary      Manually adjust raw material stock
// @Description  Writes a signed movement row alongside the balance change.
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        request body inventoryapp.AdjustStockRequest true "Adjustment request"
// @Success      200 {object} APIResponse[inventoryapp.ItemResponse]
// @Failure      422 {object} ErrorResponse
// @Router       /inventory/adjustments [post]
func (h *InventoryHandler) AdjustStock(c *gin.Context) {
	tenantID, ok := requireTenant(h.BaseHandler, c)
	if !ok {
		return
	}

	var req inventoryapp.AdjustStockRequest
	if !bindJSON(h.BaseHandler, c, &req) {
		return
	}

	item, err := h.stockService.AdjustStock(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, item)
}

// ListMovements godoc
// @Summary      List stock movements for a raw material
// @Tags         inventory
// @Produce      json
// @Param        id path string true "Item ID" format(uuid)
// @Success      200 {object} APIResponse[[]inventoryapp.MovementResponse]
// @Router       /inventory/items/{id}/movements [get]
func (h *InventoryHandler) ListMovements(c *gin.Context) {
	tenantID, ok := requireTenant(h.BaseHandler, c)
	if !ok {
		return
	}
	itemID, ok := pathID(h.BaseHandler, c, "item ID")
	if !ok {
		return
	}
	filter, ok := bindSharedFilter(h.BaseHandler, c)
	if !ok {
		return
	}

	movements, total, err := h.stockService.ListMovements(c.Request.Context(), tenantID, itemID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.SuccessWithMeta(c, movements, total, filter.Page, filter.PageSize)
}

// LowStock godoc
// @Summary      List raw materials at or below their reorder level
// @Tags         inventory
// @Produce      json
// @Success      200 {object} APIResponse[[]inventoryapp.ItemResponse]
// @Router       /inventory/low-stock [get]
func (h *InventoryHandler) LowStock(c *gin.Context) {
	tenantID, ok := requireTenant(h.BaseHandler, c)
	if !ok {
		return
	}

	items, err := h.stockService.LowStockReport(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, items)
}

// CheckConsistency godoc
// @Summary      Verify an item's balance against its movement history
// @Tags         inventory
// @Produce      json
// @Param        id path string true "Item ID" format(uuid)
// @Success      200 {object} APIResponse[inventoryapp.ConsistencyCheckResult]
// @Router       /inventory/items/{id}/consistency [get]
func (h *InventoryHandler) CheckConsistency(c *gin.Context) {
	tenantID, ok := requireTenant(h.BaseHandler, c)
	if !ok {
		return
	}
	itemID, ok := pathID(h.BaseHandler, c, "item ID")
	if !ok {
		return
	}

	result, err := h.stockService.CheckConsistency(c.Request.Context(), tenantID, itemID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, result)
}

// CreatePackagedProduct godoc
// @Summary      Register a packaged product
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        request body inventoryapp.CreatePackagedProductRequest true "Packaged product request"
// @Success      201 {object} APIResponse[inventoryapp.PackagedProductResponse]
// @Router       /inventory/packaged-products [post]
func (h *InventoryHandler) CreatePackagedProduct(c *gin.Context) {
	tenantID, ok := requireTenant(h.BaseHandler, c)
	if !ok {
		return
	}

	var req inventoryapp.CreatePackagedProductRequest
	if !bindJSON(h.BaseHandler, c, &req) {
		return
	}

	product, err := h.stockService.CreatePackagedProduct(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Created(c, product)
}

// GetPackagedProduct returns a single packaged product.
func (h *InventoryHandler) GetPackagedProduct(c *gin.Context) {
	tenantID, ok := requireTenant(h.BaseHandler, c)
	if !ok {
		return
	}
	productID, ok := pathID(h.BaseHandler, c, "packaged product ID")
	if !ok {
		return
	}

	product, err := h.stockService.GetPackagedProduct(c.Request.Context(), tenantID, productID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, product)
}

// ListPackagedProducts lists packaged products for the tenant.
func (h *InventoryHandler) ListPackagedProducts(c *gin.Context) {
	tenantID, ok := requireTenant(h.BaseHandler, c)
	if !ok {
		return
	}
	filter, ok := bindSharedFilter(h.BaseHandler, c)
	if !ok {
		return
	}

	products, err := h.stockService.ListPackagedProducts(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, products)
}

// AdjustPackagedStock godoc
// @Summary      Manually adjust packaged product stock
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        request body inventoryapp.AdjustPackagedStockRequest true "Adjustment request"
// @Success      200 {object} APIResponse[inventoryapp.PackagedProductResponse]
// @Failure      422 {object} ErrorResponse
// @Router       /inventory/packaged-adjustments [post]
func (h *InventoryHandler) AdjustPackagedStock(c *gin.Context) {
	tenantID, ok := requireTenant(h.BaseHandler, c)
	if !ok {
		return
	}

	var req inventoryapp.AdjustPackagedStockRequest
	if !bindJSON(h.BaseHandler, c, &req) {
		return
	}

	product, err := h.stockService.AdjustPackagedStock(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, product)
}

// ListPackagedMovements lists stock movements for a packaged product.
func (h *InventoryHandler) ListPackagedMovements(c *gin.Context) {
	tenantID, ok := requireTenant(h.BaseHandler, c)
	if !ok {
		return
	}
	productID, ok := pathID(h.BaseHandler, c, "packaged product ID")
	if !ok {
		return
	}
	filter, ok := bindSharedFilter(h.BaseHandler, c)
	if !ok {
		return
	}

	movements, total, err := h.stockService.ListPackagedMovements(c.Request.Context(), tenantID, productID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.SuccessWithMeta(c, movements, total, filter.Page, filter.PageSize)
}
