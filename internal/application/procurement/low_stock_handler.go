package procurement

import (
	"context"
	"fmt"

	"github.com/craftline/backend/internal/domain/inventory"
	"github.com/craftline/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// LowStockAlertHandler handles LowStockEvent and surfaces reorder signals
// for indent planning. It only logs today; the indent itself stays a human
// decision because reorder quantities depend on supplier MOQs.
type LowStockAlertHandler struct {
	logger *zap.Logger
}

// NewLowStockAlertHandler creates a new handler for low stock events
func NewLowStockAlertHandler(logger *zap.Logger) *LowStockAlertHandler {
	return &LowStockAlertHandler{logger: logger}
}

// EventTypes returns the event types this handler is interested in
func (h *LowStockAlertHandler) EventTypes() []string {
	return []string{inventory.EventTypeLowStock}
}

// Handle processes a LowStockEvent
func (h *LowStockAlertHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	lowStock, ok := event.(*inventory.LowStockEvent)
	if !ok {
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			inventory.EventTypeLowStock, event.EventType())
	}

	h.logger.Warn("raw material below reorder level",
		zap.String("tenant_id", lowStock.TenantID().String()),
		zap.String("inventory_item_id", lowStock.InventoryItemID.String()),
		zap.String("code", lowStock.Code),
		zap.String("name", lowStock.Name),
		zap.String("current_stock", lowStock.CurrentStock.String()),
		zap.String("reorder_level", lowStock.ReorderLevel.String()),
	)

	return nil
}
