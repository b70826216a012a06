package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// WebhookProcessor is the slice of the reconciliation service the worker
// drives. It claims due webhook events and applies them.
type WebhookProcessor interface {
	ProcessDue(ctx context.Context, limit int) (int, error)
}

// WebhookCleaner removes processed webhook events past their retention
type WebhookCleaner interface {
	DeleteProcessedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// WebhookWorkerConfig holds configuration for the webhook retry worker
type WebhookWorkerConfig struct {
	PollInterval     time.Duration
	BatchSize        int
	CleanupEnabled   bool
	CleanupRetention time.Duration
	CleanupInterval  time.Duration
}

// DefaultWebhookWorkerConfig returns default configuration
func DefaultWebhookWorkerConfig() WebhookWorkerConfig {
	return WebhookWorkerConfig{
		PollInterval:     10 * time.Second,
		BatchSize:        20,
		CleanupEnabled:   true,
		CleanupRetention: 30 * 24 * time.Hour,
		CleanupInterval:  1 * time.Hour,
	}
}

// WebhookWorker polls the stored webhook queue in the background. The HTTP
// ingest path only persists deliveries; this worker is the single place
// where queued events get applied and retried.
type WebhookWorker struct {
	processor WebhookProcessor
	cleaner   WebhookCleaner
	config    WebhookWorkerConfig
	logger    *zap.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewWebhookWorker creates a new webhook worker
func NewWebhookWorker(processor WebhookProcessor, cleaner WebhookCleaner, config WebhookWorkerConfig, logger *zap.Logger) *WebhookWorker {
	return &WebhookWorker{
		processor: processor,
		cleaner:   cleaner,
		config:    config,
		logger:    logger,
	}
}

// Start starts the background processing
func (w *WebhookWorker) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	w.wg.Add(1)
	go w.processLoop(ctx)

	if w.config.CleanupEnabled && w.cleaner != nil {
		w.wg.Add(1)
		go w.cleanupLoop(ctx)
	}

	w.logger.Info("webhook worker started",
		zap.Int("batch_size", w.config.BatchSize),
		zap.Duration("poll_interval", w.config.PollInterval),
	)

	return nil
}

// Stop gracefully stops the worker
func (w *WebhookWorker) Stop(ctx context.Context) error {
	if w.cancel != nil {
		w.cancel()
	}

	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		w.logger.Info("webhook worker stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// processLoop is the main processing loop
func (w *WebhookWorker) processLoop(ctx context.Context) {
	defer w.wg.Done()

	ticker := time.NewTicker(w.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.processBatch(ctx)
		}
	}
}

// processBatch drains one batch of due webhook events
func (w *WebhookWorker) processBatch(ctx context.Context) {
	processed, err := w.processor.ProcessDue(ctx, w.config.BatchSize)
	if err != nil {
		w.logger.Error("webhook batch failed", zap.Error(err))
		return
	}
	if processed > 0 {
		w.logger.Debug("webhook batch processed", zap.Int("count", processed))
	}
}

// cleanupLoop periodically removes processed events past retention
func (w *WebhookWorker) cleanupLoop(ctx context.Context) {
	defer w.wg.Done()

	ticker := time.NewTicker(w.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.cleanup(ctx)
		}
	}
}

// cleanup removes processed webhook events older than the retention window
func (w *WebhookWorker) cleanup(ctx context.Context) {
	cutoff := time.Now().Add(-w.config.CleanupRetention)
	deleted, err := w.cleaner.DeleteProcessedBefore(ctx, cutoff)
	if err != nil {
		w.logger.Error("webhook cleanup failed", zap.Error(err))
		return
	}

	if deleted > 0 {
		w.logger.Info("cleaned up processed webhook events",
			zap.Int64("deleted", deleted),
			zap.Time("cutoff", cutoff),
		)
	}
}
