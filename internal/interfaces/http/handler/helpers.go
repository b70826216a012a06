package handler

import (
	"github.com/craftline/backend/internal/domain/shared"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ListQuery represents common list query parameters
type ListQuery struct {
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
	Search   string `form:"search"`
}

// DefaultListQuery returns a list query with defaults applied
func DefaultListQuery() ListQuery {
	return ListQuery{Page: 1, PageSize: 20, OrderBy: "created_at", OrderDir: "desc"}
}

// bindSharedFilter binds common list query parameters into a domain filter.
// On binding failure it writes the error response and returns false.
func bindSharedFilter(h BaseHandler, c *gin.Context) (shared.Filter, bool) {
	req := DefaultListQuery()
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return shared.Filter{}, false
	}
	return shared.Filter{
		Page:     req.Page,
		PageSize: req.PageSize,
		OrderBy:  req.OrderBy,
		OrderDir: req.OrderDir,
		Search:   req.Search,
	}, true
}

// requireTenant resolves the request tenant. On failure it writes a 400
// and returns false.
func requireTenant(h BaseHandler, c *gin.Context) (uuid.UUID, bool) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return uuid.Nil, false
	}
	return tenantID, true
}

// pathID parses the :id path parameter as a uuid. label names the entity
// in the 400 written on failure, e.g. "item ID".
func pathID(h BaseHandler, c *gin.Context, label string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid "+label+" format")
		return uuid.Nil, false
	}
	return id, true
}

// bindJSON binds the request body into req, writing a 400 on failure.
func bindJSON(h BaseHandler, c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		h.BadRequest(c, err.Error())
		return false
	}
	return true
}
