package handler

import (
	"context"

	catalogapp "github.com/craftline/backend/internal/application/catalog"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ProductHandler exposes the catalog product endpoints.
type ProductHandler struct {
	BaseHandler
	productService *catalogapp.ProductService
}

func NewProductHandler(productService *catalogapp.ProductService) *ProductHandler {
	return &ProductHandler{productService: productService}
}

// Create godoc
// @Summary      Create a product
// @Tags         catalog
// @Accept       json
// @Produce      json
// @Param        request body catalogapp.CreateProductRequest true "Product creation request"
// @Success      201 {object} APIResponse[catalogapp.ProductResponse]
// @Failure      400 {object} ErrorResponse
// @Router       /catalog/products [post]
func (h *ProductHandler) Create(c *gin.Context) {
	tenantID, ok := requireTenant(h.BaseHandler, c)
	if !ok {
		return
	}

	var req catalogapp.CreateProductRequest
	if !bindJSON(h.BaseHandler, c, &req) {
		return
	}

	product, err := h.productService.CreateProduct(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Created(c, product)
}

// Get godoc
// @Summary      Get product by ID
// @Tags         catalog
// @Produce      json
// @Param        id path string true "Product ID" format(uuid)
// @Success      200 {object} APIResponse[catalogapp.ProductResponse]
// @Failure      404 {object} ErrorResponse
// @Router       /catalog/products/{id} [get]
func (h *ProductHandler) Get(c *gin.Context) {
	tenantID, ok := requireTenant(h.BaseHandler, c)
	if !ok {
		return
	}
	productID, ok := pathID(h.BaseHandler, c, "product ID")
	if !ok {
		return
	}

	product, err := h.productService.GetProduct(c.Request.Context(), tenantID, productID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, product)
}

// List godoc
// @Summary      List products
// @Tags         catalog
// @Produce      json
// @Param        search query string false "Search by SKU or name"
// @Param        only_active query bool false "Only active products"
// @Success      200 {object} APIResponse[[]catalogapp.ProductResponse]
// @Router       /catalog/products [get]
func (h *ProductHandler) List(c *gin.Context) {
	tenantID, ok := requireTenant(h.BaseHandler, c)
	if !ok {
		return
	}

	var filter catalogapp.ProductListFilter
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

	products, total, err := h.productService.ListProducts(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.SuccessWithMeta(c, products, total, filter.Page, filter.PageSize)
}

// Update godoc
// @Summary      Update a product's basic information
// @Tags         catalog
// @Accept       json
// @Produce      json
// @Param        id path string true "Product ID" format(uuid)
// @Param        request body catalogapp.UpdateProductRequest true "Product update request"
// @Success      200 {object} APIResponse[catalogapp.ProductResponse]
// @Router       /catalog/products/{id} [put]
func (h *ProductHandler) Update(c *gin.Context) {
	tenantID, ok := requireTenant(h.BaseHandler, c)
	if !ok {
		return
	}
	productID, ok := pathID(h.BaseHandler, c, "product ID")
	if !ok {
		return
	}

	var req catalogapp.UpdateProductRequest
	if !bindJSON(h.BaseHandler, c, &req) {
		return
	}

	product, err := h.productService.UpdateProduct(c.Request.Context(), tenantID, productID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, product)
}

// SetPricing godoc
// @Summary      Set product price and tax rate
// @Tags         catalog
// @Accept       json
// @Produce      json
// @Param        id path string true "Product ID" format(uuid)
// @Param        request body catalogapp.SetPricingRequest true "Pricing request"
// @Success      200 {object} APIResponse[catalogapp.ProductResponse]
// @Router       /catalog/products/{id}/pricing [put]
func (h *ProductHandler) SetPricing(c *gin.Context) {
	tenantID, ok := requireTenant(h.BaseHandler, c)
	if !ok {
		return
	}
	productID, ok := pathID(h.BaseHandler, c, "product ID")
	if !ok {
		return
	}

	var req catalogapp.SetPricingRequest
	if !bindJSON(h.BaseHandler, c, &req) {
		return
	}

	product, err := h.productService.SetPricing(c.Request.Context(), tenantID, productID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, product)
}

// SetStock godoc
// @Summary      Replace the catalog stock level
// @Tags         catalog
// @Accept       json
// @Produce      json
// @Param        id path string true "Product ID" format(uuid)
// @Param        request body catalogapp.SetStockRequest true "Stock request"
// @Success      200 {object} APIResponse[catalogapp.ProductResponse]
// @Router       /catalog/products/{id}/stock [put]
func (h *ProductHandler) SetStock(c *gin.Context) {
	tenantID, ok := requireTenant(h.BaseHandler, c)
	if !ok {
		return
	}
	productID, ok := pathID(h.BaseHandler, c, "product ID")
	if !ok {
		return
	}

	var req catalogapp.SetStockRequest
	if !bindJSON(h.BaseHandler, c, &req) {
		return
	}

	product, err := h.productService.SetStock(c.Request.Context(), tenantID, productID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, product)
}

// Activate godoc
// @Summary      Activate a product
// @Tags         catalog
// @Produce      json
// @Param        id path string true "Product ID" format(uuid)
// @Success      200 {object} APIResponse[catalogapp.ProductResponse]
// @Router       /catalog/products/{id}/activate [post]
func (h *ProductHandler) Activate(c *gin.Context) {
	h.transition(c, h.productService.ActivateProduct)
}

// Deactivate godoc
// @Summary      Deactivate a product
// @Tags         catalog
// @Produce      json
// @Param        id path string true "Product ID" format(uuid)
// @Success      200 {object} APIResponse[catalogapp.ProductResponse]
// @Router       /catalog/products/{id}/deactivate [post]
func (h *ProductHandler) Deactivate(c *gin.Context) {
	h.transition(c, h.productService.DeactivateProduct)
}

// transition runs an activate/deactivate style state change keyed only by
// the product id.
func (h *ProductHandler) transition(c *gin.Context, fn func(ctx context.Context, tenantID, productID uuid.UUID) (*catalogapp.ProductResponse, error)) {
	tenantID, ok := requireTenant(h.BaseHandler, c)
	if !ok {
		return
	}
	productID, ok := pathID(h.BaseHandler, c, "product ID")
	if !ok {
		return
	}

	product, err := fn(c.Request.Context(), tenantID, productID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, product)
}
