package event

import (
	"context"
	"sync/atomic"

	"github.com/craftline/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// IdempotencyMetrics counts how deliveries were classified.
type IdempotencyMetrics struct {
	EventsProcessed atomic.Int64
	EventsDuplicate atomic.Int64
	EventsFailed    atomic.Int64
}

// Stats snapshots the counters.
func (m *IdempotencyMetrics) Stats() IdempotencyStats {
	return IdempotencyStats{
		EventsProcessed: m.EventsProcessed.Load(),
		EventsDuplicate: m.EventsDuplicate.Load(),
		EventsFailed:    m.EventsFailed.Load(),
	}
}

// IdempotencyStats is a point-in-time copy of the metrics.
type IdempotencyStats struct {
	EventsProcessed int64 `json:"events_processed"`
	EventsDuplicate int64 `json:"events_duplicate"`
	EventsFailed    int64 `json:"events_failed"`
}

// IdempotentHandler wraps an EventHandler so redelivered events are
// acknowledged without running the inner handler again.
type IdempotentHandler struct {
	handler shared.EventHandler
	store   shared.IdempotencyStore
	config  shared.IdempotencyConfig
	logger  *zap.Logger
	metrics *IdempotencyMetrics
}

// IdempotentHandlerOption customizes an IdempotentHandler.
type IdempotentHandlerOption func(*IdempotentHandler)

// WithIdempotencyConfig overrides the default idempotency settings.
func WithIdempotencyConfig(config shared.IdempotencyConfig) IdempotentHandlerOption {
	return func(h *IdempotentHandler) { h.config = config }
}

// WithIdempotencyMetrics records outcomes into a caller-owned collector,
// letting several handlers share one.
func WithIdempotencyMetrics(metrics *IdempotencyMetrics) IdempotentHandlerOption {
	return func(h *IdempotentHandler) { h.metrics = metrics }
}

// NewIdempotentHandler wraps handler with duplicate detection backed by store.
func NewIdempotentHandler(
	handler shared.EventHandler,
	store shared.IdempotencyStore,
	logger *zap.Logger,
	opts ...IdempotentHandlerOption,
) *IdempotentHandler {
	h := &IdempotentHandler{
		handler: handler,
		store:   store,
		config:  shared.DefaultIdempotencyConfig(),
		logger:  logger,
		metrics: &IdempotencyMetrics{},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// EventTypes delegates to the wrapped handler.
func (h *IdempotentHandler) EventTypes() []string {
	return h.handler.EventTypes()
}

// Handle marks the event id in the store before running the inner handler.
// A duplicate id returns nil immediately. When the store itself errors the
// event is processed anyway: a possible duplicate beats a dropped event.
// The mark is kept on handler failure so retries wait out the TTL instead
// of hammering the handler.
func (h *IdempotentHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	if !h.config.Enabled {
		return h.handler.Handle(ctx, event)
	}

	eventID := event.EventID().String()

	isNew, err := h.store.MarkProcessed(ctx, eventID, h.config.TTL)
	switch {
	case err != nil:
		h.logger.Warn("failed to check idempotency, processing anyway",
			zap.String("event_id", eventID),
			zap.String("event_type", event.EventType()),
			zap.Error(err),
		)
	case !isNew:
		h.metrics.EventsDuplicate.Add(1)
		h.logger.Debug("duplicate event detected, skipping",
			zap.String("event_id", eventID),
			zap.String("event_type", event.EventType()),
		)
		return nil
	}

	if err := h.handler.Handle(ctx, event); err != nil {
		h.metrics.EventsFailed.Add(1)
		h.logger.Error("event handler failed",
			zap.String("event_id", eventID),
			zap.String("event_type", event.EventType()),
			zap.Error(err),
		)
		return err
	}

	h.metrics.EventsProcessed.Add(1)
	h.logger.Debug("event processed",
		zap.String("event_id", eventID),
		zap.String("event_type", event.EventType()),
	)
	return nil
}

// GetMetrics exposes the handler's counters.
func (h *IdempotentHandler) GetMetrics() *IdempotencyMetrics {
	return h.metrics
}

// GetWrappedHandler returns the inner handler.
func (h *IdempotentHandler) GetWrappedHandler() shared.EventHandler {
	return h.handler
}

var _ shared.EventHandler = (*IdempotentHandler)(nil)

// WrapHandlersWithIdempotency wraps each handler in the slice, sharing the
// same store and options.
func WrapHandlersWithIdempotency(
	handlers []shared.EventHandler,
	store shared.IdempotencyStore,
	logger *zap.Logger,
	opts ...IdempotentHandlerOption,
) []shared.EventHandler {
	wrapped := make([]shared.EventHandler, len(handlers))
	for i, h := range handlers {
		wrapped[i] = NewIdempotentHandler(h, store, logger, opts...)
	}
	return wrapped
}

// GlobalIdempotencyMetrics aggregates outcomes across every handler that
// opts into it via WithIdempotencyMetrics.
var GlobalIdempotencyMetrics = &IdempotencyMetrics{}
