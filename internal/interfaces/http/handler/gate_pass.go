package handler

import (
	gatepassapp "github.com/craftline/backend/internal/application/gatepass"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// GatePassHandler handles gate pass API endpoints
type GatePassHandler struct {
	BaseHandler
	gatePassService *gatepassapp.GatePassService
}

// NewGatePassHandler creates a new GatePassHandler
func NewGatePassHandler(gatePassService *gatepassapp.GatePassService) *GatePassHandler {
	return &GatePassHandler{gatePassService: gatePassService}
}

// Create godoc
// @Summary      Create a gate pass
// @Tags         gate-passes
// @Accept       json
// @Produce      json
// @Param        request body gatepassapp.CreateGatePassRequest true "Gate pass creation request"
// @Success      201 {object} APIResponse[gatepassapp.GatePassResponse]
// @Router       /gate-passes [post]
func (h *GatePassHandler) Create(c *gin.Context) {
	tenantID, ok := requireTenant(h.BaseHandler, c)
	if !ok {
		return
	}

	var req gatepassapp.CreateGatePassRequest
	if !bindJSON(h.BaseHandler, c, &req) {
		return
	}

	pass, err := h.gatePassService.CreateGatePass(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, pass)
}

// Get retrieves a gate pass by ID
func (h *GatePassHandler) Get(c *gin.Context) {
	tenantID, passID, ok := h.resolve(c)
	if !ok {
		return
	}

	pass, err := h.gatePassService.GetGatePass(c.Request.Context(), tenantID, passID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, pass)
}

// List godoc
// @Summary      List gate passes
// @Tags         gate-passes
// @Produce      json
// @Param        type query string false "Filter by type" Enums(inward, outward, return)
// @Param        status query string false "Filter by status" Enums(draft, approved, rejected)
// @Success      200 {object} APIResponse[[]gatepassapp.GatePassResponse]
// @Router       /gate-passes [get]
func (h *GatePassHandler) List(c *gin.Context) {
	tenantID, ok := requireTenant(h.BaseHandler, c)
	if !ok {
		return
	}

	var filter gatepassapp.GatePassListFilter
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

	passes, total, err := h.gatePassService.ListGatePasses(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, passes, total, filter.Page, filter.PageSize)
}

// Approve godoc
// @Summary      Approve a gate pass and move its stock
// @Description  Outward passes deduct stock, inward and return passes add
// @Description  it, per goods line against the referenced raw material or
// @Description  packaged product.
// @Tags         gate-passes
// @Produce      json
// @Param        id path string true "Gate pass ID" format(uuid)
// @Success      200 {object} APIResponse[gatepassapp.GatePassResponse]
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /gate-passes/{id}/approve [post]
func (h *GatePassHandler) Approve(c *gin.Context) {
	tenantID, passID, ok := h.resolve(c)
	if !ok {
		return
	}
	approverID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	pass, err := h.gatePassService.ApproveGatePass(c.Request.Context(), tenantID, passID, approverID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, pass)
}

// Reject rejects a draft gate pass without touching stock
func (h *GatePassHandler) Reject(c *gin.Context) {
	tenantID, passID, ok := h.resolve(c)
	if !ok {
		return
	}

	pass, err := h.gatePassService.RejectGatePass(c.Request.Context(), tenantID, passID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, pass)
}

func (h *GatePassHandler) resolve(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	tenantID, ok := requireTenant(h.BaseHandler, c)
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	passID, ok := pathID(h.BaseHandler, c, "gate pass ID")
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	return tenantID, passID, true
}
