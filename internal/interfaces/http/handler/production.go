package handler

import (
	"strconv"

	productionapp "github.com/craftline/backend/internal/application/production"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ProductionHandler handles BOM and production batch API endpoints
type ProductionHandler struct {
	BaseHandler
	bomService   *productionapp.BOMService
	batchService *productionapp.BatchService
}

// NewProductionHandler creates a new ProductionHandler
func NewProductionHandler(bomService *productionapp.BOMService, batchService *productionapp.BatchService) *ProductionHandler {
	return &ProductionHandler{
		bomService:   bomService,
		batchService: batchService,
	}
}

// CreateBOM godoc
// @Summary      Create a bill of materials for a product
// @Tags         production
// @Accept       json
// @Produce      json
// @Param        request body productionapp.CreateBOMRequest true "BOM creation request"
// @Success      201 {object} APIResponse[productionapp.BOMResponse]
// @Router       /production/boms [post]
func (h *ProductionHandler) CreateBOM(c *gin.Context) {
	tenantID, ok := requireTenant(h.BaseHandler, c)
	if !ok {
		return
	}

	var req productionapp.CreateBOMRequest
	if !bindJSON(h.BaseHandler, c, &req) {
		return
	}

	bom, err := h.bomService.CreateBOM(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, bom)
}

// GetBOM retrieves a BOM by ID
func (h *ProductionHandler) GetBOM(c *gin.Context) {
	tenantID, ok := requireTenant(h.BaseHandler, c)
	if !ok {
		return
	}

	bomID, ok := pathID(h.BaseHandler, c, "BOM ID")
	if !ok {
		return
	}

	bom, err := h.bomService.GetBOM(c.Request.Context(), tenantID, bomID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, bom)
}

// ListBOMs lists the BOM versions of a product
func (h *ProductionHandler) ListBOMs(c *gin.Context) {
	tenantID, ok := requireTenant(h.BaseHandler, c)
	if !ok {
		return
	}

	productID, err := uuid.Parse(c.Param("productId"))
	if err != nil {
		h.BadRequest(c, "Invalid product ID format")
		return
	}

	boms, err := h.bomService.ListBOMsByProduct(c.Request.Context(), tenantID, productID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, boms)
}

// ActivateBOM godoc
// @Summary      Activate a BOM version
// @Description  Only one BOM per product is active at a time; activating
// @Description  one deactivates the previous.
// @Tags         production
// @Produce      json
// @Param        id path string true "BOM ID" format(uuid)
// @Success      200 {object} APIResponse[productionapp.BOMResponse]
// @Router       /production/boms/{id}/activate [post]
func (h *ProductionHandler) ActivateBOM(c *gin.Context) {
	tenantID, ok := requireTenant(h.BaseHandler, c)
	if !ok {
		return
	}

	bomID, ok := pathID(h.BaseHandler, c, "BOM ID")
	if !ok {
		return
	}

	bom, err := h.bomService.ActivateBOM(c.Request.Context(), tenantID, bomID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, bom)
}

// ActiveBOM retrieves the active BOM for a product
func (h *ProductionHandler) ActiveBOM(c *gin.Context) {
	tenantID, ok := requireTenant(h.BaseHandler, c)
	if !ok {
		return
	}

	productID, err := uuid.Parse(c.Param("productId"))
	if err != nil {
		h.BadRequest(c, "Invalid product ID format")
		return
	}

	bom, err := h.bomService.ActiveBOMForProduct(c.Request.Context(), tenantID, productID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, bom)
}

// CreateBatch godoc
// @Summary      Plan a production batch
// @Tags         production
// @Accept       json
// @Produce      json
// @Param        request body productionapp.CreateBatchRequest true "Batch creation request"
// @Success      201 {object} APIResponse[productionapp.BatchResponse]
// @Router       /production/batches [post]
func (h *ProductionHandler) CreateBatch(c *gin.Context) {
	tenantID, ok := requireTenant(h.BaseHandler, c)
	if !ok {
		return
	}

	var req productionapp.CreateBatchRequest
	if !bindJSON(h.BaseHandler, c, &req) {
		return
	}

	batch, err := h.batchService.CreateBatch(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, batch)
}

// GetBatch retrieves a production batch by ID
func (h *ProductionHandler) GetBatch(c *gin.Context) {
	tenantID, batchID, ok := h.resolveBatch(c)
	if !ok {
		return
	}

	batch, err := h.batchService.GetBatch(c.Request.Context(), tenantID, batchID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, batch)
}

// ListBatches godoc
// @Summary      List production batches
// @Tags         production
// @Produce      json
// @Param        status query string false "Filter by status" Enums(planned, in_progress, completed, cancelled)
// @Success      200 {object} APIResponse[[]productionapp.BatchResponse]
// @Router       /production/batches [get]
func (h *ProductionHandler) ListBatches(c *gin.Context) {
	tenantID, ok := requireTenant(h.BaseHandler, c)
	if !ok {
		return
	}

	var filter productionapp.BatchListFilter
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

	batches, total, err := h.batchService.ListBatches(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, batches, total, filter.Page, filter.PageSize)
}

// MaterialRequirements godoc
// @Summary      Preview material requirements for a planned quantity
// @Tags         production
// @Produce      json
// @Param        productId path string true "Product ID" format(uuid)
// @Param        quantity query int true "Planned quantity"
// @Success      200 {object} APIResponse[[]productionapp.MaterialRequirementResponse]
// @Router       /production/products/{productId}/requirements [get]
func (h *ProductionHandler) MaterialRequirements(c *gin.Context) {
	tenantID, ok := requireTenant(h.BaseHandler, c)
	if !ok {
		return
	}

	productID, err := uuid.Parse(c.Param("productId"))
	if err != nil {
		h.BadRequest(c, "Invalid product ID format")
		return
	}

	quantity, err := strconv.Atoi(c.Query("quantity"))
	if err != nil || quantity < 1 {
		h.BadRequest(c, "Quantity must be a positive integer")
		return
	}

	requirements, err := h.batchService.MaterialRequirements(c.Request.Context(), tenantID, productID, quantity)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, requirements)
}

// StartBatch godoc
// @Summary      Start a planned batch
// @Description  Consumes BOM materials atomically and writes outbound
// @Description  movement rows.
// @Tags         production
// @Produce      json
// @Param        id path string true "Batch ID" format(uuid)
// @Success      200 {object} APIResponse[productionapp.BatchResponse]
// @Failure      422 {object} ErrorResponse
// @Router       /production/batches/{id}/start [post]
func (h *ProductionHandler) StartBatch(c *gin.Context) {
	tenantID, batchID, ok := h.resolveBatch(c)
	if !ok {
		return
	}

	batch, err := h.batchService.StartBatch(c.Request.Context(), tenantID, batchID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, batch)
}

// CompleteBatch godoc
// @Summary      Complete a running batch
// @Description  Packs produced units into packaged product stock using
// @Description  floor division per packaging spec.
// @Tags         production
// @Accept       json
// @Produce      json
// @Param        id path string true "Batch ID" format(uuid)
// @Param        request body productionapp.CompleteBatchRequest true "Completion request"
// @Success      200 {object} APIResponse[productionapp.BatchResponse]
// @Failure      422 {object} ErrorResponse
// @Router       /production/batches/{id}/complete [post]
func (h *ProductionHandler) CompleteBatch(c *gin.Context) {
	tenantID, batchID, ok := h.resolveBatch(c)
	if !ok {
		return
	}

	var req productionapp.CompleteBatchRequest
	if !bindJSON(h.BaseHandler, c, &req) {
		return
	}

	batch, err := h.batchService.CompleteBatch(c.Request.Context(), tenantID, batchID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, batch)
}

// CancelBatch godoc
// @Summary      Cancel a batch
// @Description  A started batch returns its consumed materials with exact
// @Description  reversal movement rows.
// @Tags         production
// @Produce      json
// @Param        id path string true "Batch ID" format(uuid)
// @Success      200 {object} APIResponse[productionapp.BatchResponse]
// @Failure      422 {object} ErrorResponse
// @Router       /production/batches/{id}/cancel [post]
func (h *ProductionHandler) CancelBatch(c *gin.Context) {
	tenantID, batchID, ok := h.resolveBatch(c)
	if !ok {
		return
	}

	batch, err := h.batchService.CancelBatch(c.Request.Context(), tenantID, batchID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, batch)
}

func (h *ProductionHandler) resolveBatch(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	tenantID, ok := requireTenant(h.BaseHandler, c)
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	batchID, ok := pathID(h.BaseHandler, c, "batch ID")
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	return tenantID, batchID, true
}
