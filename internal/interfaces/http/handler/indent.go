package handler

import (
	procurementapp "github.com/craftline/backend/internal/application/procurement"
	"github.com/gin-gonic/gin"
)

// IndentHandler handles material indent API endpoints
type IndentHandler struct {
	BaseHandler
	indentService *procurementapp.IndentService
}

// NewIndentHandler creates a new IndentHandler
func NewIndentHandler(indentService *procurementapp.IndentService) *IndentHandler {
	return &IndentHandler{indentService: indentService}
}

// Create godoc
// @Summary      Create a material indent
// @Tags         procurement
// @Accept       json
// @Produce      json
// @Param        request body procurementapp.CreateIndentRequest true "Indent creation request"
// @Success      201 {object} APIResponse[procurementapp.IndentResponse]
// @Security     BearerAuth
// @Router       /procurement/indents [post]
func (h *IndentHandler) Create(c *gin.Context) {
	tenantID, ok := requireTenant(h.BaseHandler, c)
	if !ok {
		return
	}
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req procurementapp.CreateIndentRequest
	if !bindJSON(h.BaseHandler, c, &req) {
		return
	}

	indent, err := h.indentService.CreateIndent(c.Request.Context(), tenantID, userID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, indent)
}

// Get retrieves an indent by ID
func (h *IndentHandler) Get(c *gin.Context) {
	tenantID, ok := requireTenant(h.BaseHandler, c)
	if !ok {
		return
	}

	indentID, ok := pathID(h.BaseHandler, c, "indent ID")
	if !ok {
		return
	}

	indent, err := h.indentService.GetIndent(c.Request.Context(), tenantID, indentID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, indent)
}

// List godoc
// @Summary      List material indents
// @Tags         procurement
// @Produce      json
// @Param        status query string false "Filter by status" Enums(draft, pending, approved, rejected)
// @Success      200 {object} APIResponse[[]procurementapp.IndentResponse]
// @Router       /procurement/indents [get]
func (h *IndentHandler) List(c *gin.Context) {
	tenantID, ok := requireTenant(h.BaseHandler, c)
	if !ok {
		return
	}

	var filter procurementapp.IndentListFilter
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

	indents, total, err := h.indentService.ListIndents(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, indents, total, filter.Page, filter.PageSize)
}

// Submit moves a draft indent to pending approval
func (h *IndentHandler) Submit(c *gin.Context) {
	tenantID, ok := requireTenant(h.BaseHandler, c)
	if !ok {
		return
	}

	indentID, ok := pathID(h.BaseHandler, c, "indent ID")
	if !ok {
		return
	}

	indent, err := h.indentService.SubmitIndent(c.Request.Context(), tenantID, indentID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, indent)
}

// Approve godoc
// @Summary      Approve a pending indent
// @Tags         procurement
// @Produce      json
// @Param        id path string true "Indent ID" format(uuid)
// @Success      200 {object} APIResponse[procurementapp.IndentResponse]
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /procurement/indents/{id}/approve [post]
func (h *IndentHandler) Approve(c *gin.Context) {
	tenantID, ok := requireTenant(h.BaseHandler, c)
	if !ok {
		return
	}
	approverID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	indentID, ok := pathID(h.BaseHandler, c, "indent ID")
	if !ok {
		return
	}

	indent, err := h.indentService.ApproveIndent(c.Request.Context(), tenantID, indentID, approverID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, indent)
}

// Reject rejects a pending indent with a reason
func (h *IndentHandler) Reject(c *gin.Context) {
	tenantID, ok := requireTenant(h.BaseHandler, c)
	if !ok {
		return
	}

	indentID, ok := pathID(h.BaseHandler, c, "indent ID")
	if !ok {
		return
	}

	var req procurementapp.RejectIndentRequest
	if !bindJSON(h.BaseHandler, c, &req) {
		return
	}

	indent, err := h.indentService.RejectIndent(c.Request.Context(), tenantID, indentID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, indent)
}
