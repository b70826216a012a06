package event

import (
	"context"
	"sync"
	"time"

	"github.com/craftline/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// OutboxProcessorConfig tunes the background outbox relay.
type OutboxProcessorConfig struct {
	BatchSize        int
	PollInterval     time.Duration
	CleanupEnabled   bool
	CleanupRetention time.Duration
	CleanupInterval  time.Duration
}

// DefaultOutboxProcessorConfig polls every 5s in batches of 100 and prunes
// sent entries after a week.
func DefaultOutboxProcessorConfig() OutboxProcessorConfig {
	return OutboxProcessorConfig{
		BatchSize:        100,
		PollInterval:     5 * time.Second,
		CleanupEnabled:   true,
		CleanupRetention: 7 * 24 * time.Hour,
		CleanupInterval:  1 * time.Hour,
	}
}

// OutboxProcessor relays stored outbox entries onto the event bus.
type OutboxProcessor struct {
	repo       shared.OutboxRepository
	eventBus   shared.EventBus
	serializer *EventSerializer
	config     OutboxProcessorConfig
	logger     *zap.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewOutboxProcessor builds a processor; call Start to begin relaying.
func NewOutboxProcessor(
	repo shared.OutboxRepository,
	eventBus shared.EventBus,
	serializer *EventSerializer,
	config OutboxProcessorConfig,
	logger *zap.Logger,
) *OutboxProcessor {
	return &OutboxProcessor{
		repo:       repo,
		eventBus:   eventBus,
		serializer: serializer,
		config:     config,
		logger:     logger,
	}
}

// Start launches the polling goroutine, plus the cleanup goroutine when
// enabled.
func (p *OutboxProcessor) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel

	p.wg.Add(1)
	go p.pollLoop(ctx)

	if p.config.CleanupEnabled {
		p.wg.Add(1)
		go p.cleanupLoop(ctx)
	}

	p.logger.Info("outbox processor started",
		zap.Int("batch_size", p.config.BatchSize),
		zap.Duration("poll_interval", p.config.PollInterval),
	)
	return nil
}

// Stop cancels the loops and waits for them, bounded by ctx.
func (p *OutboxProcessor) Stop(ctx context.Context) error {
	if p.cancel != nil {
		p.cancel()
	}

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.logger.Info("outbox processor stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *OutboxProcessor) pollLoop(ctx context.Context) {
	defer p.wg.Done()

	ticker := time.NewTicker(p.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.processBatch(ctx)
		}
	}
}

// processBatch drains one batch of pending entries, then one batch of
// entries whose retry backoff has elapsed.
func (p *OutboxProcessor) processBatch(ctx context.Context) {
	pending, err := p.repo.FindPending(ctx, p.config.BatchSize)
	if err != nil {
		p.logger.Error("failed to find pending entries", zap.Error(err))
		return
	}
	if len(pending) > 0 {
		p.deliverEntries(ctx, pending)
	}

	retryable, err := p.repo.FindRetryable(ctx, time.Now(), p.config.BatchSize)
	if err != nil {
		p.logger.Error("failed to find retryable entries", zap.Error(err))
		return
	}
	if len(retryable) > 0 {
		p.deliverEntries(ctx, retryable)
	}
}

// deliverEntries claims the entries, then relays each claimed one. Claiming
// is atomic so concurrent processors never double-deliver.
func (p *OutboxProcessor) deliverEntries(ctx context.Context, entries []*shared.OutboxEntry) {
	ids := make([]uuid.UUID, len(entries))
	for i, e := range entries {
		ids[i] = e.ID
	}

	claimed, err := p.repo.MarkProcessing(ctx, ids)
	if err != nil {
		p.logger.Error("failed to mark entries as processing", zap.Error(err))
		return
	}

	for _, entry := range claimed {
		p.deliver(ctx, entry)
	}
}

// deliver deserializes one entry and publishes it, recording the outcome.
func (p *OutboxProcessor) deliver(ctx context.Context, entry *shared.OutboxEntry) {
	evt, err := p.serializer.Deserialize(entry.EventType, entry.Payload)
	if err != nil {
		p.recordFailure(ctx, entry, "failed to deserialize event", err)
		return
	}

	if err := p.eventBus.Publish(ctx, evt); err != nil {
		p.recordFailure(ctx, entry, "failed to publish event", err)
		return
	}

	entry.MarkSent()
	if err := p.repo.Update(ctx, entry); err != nil {
		p.logger.Error("failed to mark entry as sent",
			zap.String("event_id", entry.EventID.String()),
			zap.Error(err),
		)
		return
	}
	p.logger.Debug("outbox entry delivered",
		zap.String("event_id", entry.EventID.String()),
		zap.String("event_type", entry.EventType),
	)
}

// recordFailure bumps the entry's retry state and persists it, flagging
// entries that have exhausted their retries.
func (p *OutboxProcessor) recordFailure(ctx context.Context, entry *shared.OutboxEntry, msg string, cause error) {
	p.logger.Error(msg,
		zap.String("event_id", entry.EventID.String()),
		zap.String("event_type", entry.EventType),
		zap.Error(cause),
	)

	entry.MarkFailed(cause.Error())
	if entry.IsDead() {
		p.logger.Warn("event moved to dead letter queue",
			zap.String("event_id", entry.EventID.String()),
			zap.String("event_type", entry.EventType),
			zap.String("aggregate_type", entry.AggregateType),
			zap.String("aggregate_id", entry.AggregateID.String()),
			zap.Int("retry_count", entry.RetryCount),
			zap.String("last_error", entry.LastError),
		)
	}

	if err := p.repo.Update(ctx, entry); err != nil {
		p.logger.Error("failed to update entry", zap.Error(err))
	}
}

func (p *OutboxProcessor) cleanupLoop(ctx context.Context) {
	defer p.wg.Done()

	ticker := time.NewTicker(p.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.cleanup(ctx)
		}
	}
}

func (p *OutboxProcessor) cleanup(ctx context.Context) {
	cutoff := time.Now().Add(-p.config.CleanupRetention)
	deleted, err := p.repo.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		p.logger.Error("failed to cleanup old entries", zap.Error(err))
		return
	}
	if deleted > 0 {
		p.logger.Info("cleaned up old outbox entries",
			zap.Int64("deleted", deleted),
			zap.Time("cutoff", cutoff),
		)
	}
}
