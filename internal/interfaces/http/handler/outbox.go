package handler

import (
	eventapp "github.com/craftline/backend/internal/application/event"
	"github.com/gin-gonic/gin"
)

// OutboxHandler exposes the operational endpoints for inspecting and
// requeueing outbox entries.
type OutboxHandler struct {
	BaseHandler
	outboxService *eventapp.OutboxService
}

func NewOutboxHandler(outboxService *eventapp.OutboxService) *OutboxHandler {
	return &OutboxHandler{outboxService: outboxService}
}

// GetStats godoc
// @Summary      Get outbox statistics
// @Tags         outbox
// @Produce      json
// @Success      200 {object} APIResponse[eventapp.OutboxStatsDTO]
// @Security     BearerAuth
// @Router       /system/outbox/stats [get]
func (h *OutboxHandler) GetStats(c *gin.Context) {
	stats, err := h.outboxService.GetStats(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, stats)
}

// GetDeadLetterEntries godoc
// @Summary      List dead letter entries
// @Tags         outbox
// @Produce      json
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Items per page" default(20) maximum(100)
// @Success      200 {object} APIResponse[eventapp.OutboxListResult]
// @Security     BearerAuth
// @Router       /system/outbox/dead [get]
func (h *OutboxHandler) GetDeadLetterEntries(c *gin.Context) {
	var filter eventapp.OutboxFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, "Invalid query parameters")
		return
	}

	result, err := h.outboxService.GetDeadLetterEntries(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// GetEntry returns a single outbox entry.
func (h *OutboxHandler) GetEntry(c *gin.Context) {
	id, ok := pathID(h.BaseHandler, c, "entry ID")
	if !ok {
		return
	}

	entry, err := h.outboxService.GetEntry(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, entry)
}

// RetryDeadEntry godoc
// @Summary      Retry a dead letter entry
// @Tags         outbox
// @Produce      json
// @Param        id path string true "Outbox Entry ID" format(uuid)
// @Success      200 {object} APIResponse[eventapp.OutboxEntryDTO]
// @Security     BearerAuth
// @Router       /system/outbox/{id}/retry [post]
func (h *OutboxHandler) RetryDeadEntry(c *gin.Context) {
	id, ok := pathID(h.BaseHandler, c, "entry ID")
	if !ok {
		return
	}

	entry, err := h.outboxService.RetryDeadEntry(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, entry)
}

// RetryAllDeadEntries requeues every dead letter entry.
func (h *OutboxHandler) RetryAllDeadEntries(c *gin.Context) {
	count, err := h.outboxService.RetryAllDeadEntries(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"retried": count})
}
