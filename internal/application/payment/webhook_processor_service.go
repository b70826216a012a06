package payment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/craftline/backend/internal/domain/payment"
	"github.com/craftline/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Razorpay webhook event types the processor reconciles
const (
	eventPaymentAuthorized = "payment.authorized"
	eventPaymentCaptured   = "payment.captured"
	eventPaymentFailed     = "payment.failed"
	eventRefundProcessed   = "refund.processed"
)

// WebhookProcessorService drains the stored webhook queue and applies each
// delivery to the payment ledger. Every handler is idempotent: the gateway
// delivers at least once and out of order, so replays must not double-count
// money.
type WebhookProcessorService struct {
	txScope        TransactionScope
	webhookRepo    payment.WebhookEventRepository
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewWebhookProcessorService creates a new WebhookProcessorService
func NewWebhookProcessorService(txScope TransactionScope, webhookRepo payment.WebhookEventRepository, logger *zap.Logger) *WebhookProcessorService {
	return &WebhookProcessorService{
		txScope:     txScope,
		webhookRepo: webhookRepo,
		logger:      logger,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *WebhookProcessorService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

func (s *WebhookProcessorService) publishDomainEvents(ctx context.Context, p *payment.Payment) {
	if s.eventPublisher == nil || p == nil {
		return
	}
	events := p.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	_ = s.eventPublisher.Publish(ctx, events...)
	p.ClearDomainEvents()
}

// ProcessDue claims due webhook events and applies them. Returns the number
// of events that were processed successfully.
func (s *WebhookProcessorService) ProcessDue(ctx context.Context, limit int) (int, error) {
	due, err := s.webhookRepo.FindDue(ctx, time.Now(), limit)
	if err != nil {
		return 0, err
	}
	if len(due) == 0 {
		return 0, nil
	}

	ids := make([]uuid.UUID, len(due))
	for i, e := range due {
		ids[i] = e.ID
	}
	claimed, err := s.webhookRepo.MarkProcessing(ctx, ids)
	if err != nil {
		return 0, err
	}

	processed := 0
	for _, event := range claimed {
		if err := s.apply(ctx, event); err != nil {
			event.MarkFailed(err.Error())
			if event.IsDead() {
				s.logger.Error("Webhook event moved to dead letter",
					zap.String("event_id", event.ID.String()),
					zap.String("event_type", event.EventType),
					zap.String("last_error", event.LastError))
			} else {
				s.logger.Warn("Webhook event processing failed, will retry",
					zap.String("event_id", event.ID.String()),
					zap.Int("retry_count", event.RetryCount),
					zap.Error(err))
			}
		} else {
			event.MarkProcessed()
			processed++
		}
		if err := s.webhookRepo.Update(ctx, event); err != nil {
			s.logger.Error("Failed to persist webhook event state",
				zap.String("event_id", event.ID.String()),
				zap.Error(err))
		}
	}
	return processed, nil
}

// apply reconciles one stored delivery against the payment ledger
func (s *WebhookProcessorService) apply(ctx context.Context, event *payment.WebhookEvent) error {
	parsed, err := parseRazorpayEvent(event.Payload)
	if err != nil {
		return fmt.Errorf("malformed webhook payload: %w", err)
	}

	switch parsed.Event {
	case eventPaymentAuthorized:
		return s.handlePaymentAuthorized(ctx, parsed)
	case eventPaymentCaptured:
		return s.handlePaymentCaptured(ctx, parsed)
	case eventPaymentFailed:
		return s.handlePaymentFailed(ctx, parsed)
	case eventRefundProcessed:
		return s.handleRefundProcessed(ctx, parsed)
	default:
		// Unsubscribed event types are acknowledged without action
		s.logger.Debug("Ignoring unhandled webhook event type",
			zap.String("event_type", parsed.Event))
		return nil
	}
}

// findPayment locates the payment a webhook refers to: first by the
// idempotency key (gateway, payment id), then by the gateway order id set at
// checkout time.
func (s *WebhookProcessorService) findPayment(ctx context.Context, repos TransactionalRepositories, entity *razorpayPaymentEntity) (*payment.Payment, error) {
	p, err := repos.PaymentRepo().FindByGatewayRef(ctx, payment.GatewayRazorpay, entity.ID)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	if entity.OrderID == "" {
		return nil, shared.ErrNotFound
	}
	return repos.PaymentRepo().FindByGatewayOrderID(ctx, payment.GatewayRazorpay, entity.OrderID)
}

// handlePaymentAuthorized attaches gateway identifiers to the pending
// payment. No money moved yet, so no ledger row and no status change.
func (s *WebhookProcessorService) handlePaymentAuthorized(ctx context.Context, parsed *razorpayEvent) error {
	if parsed.Payload.Payment == nil {
		return errors.New("payment.authorized payload missing payment entity")
	}
	entity := parsed.Payload.Payment.Entity

	return s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		p, err := s.findPayment(ctx, repos, &entity)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				// Authorization for a payment we never registered; captured
				// will create it lazily if it carries an order note
				return nil
			}
			return err
		}
		p.AttachGatewayRefs(entity.OrderID, entity.ID, entity.Method)
		return repos.PaymentRepo().SaveWithLock(ctx, p)
	})
}

// handlePaymentCaptured marks the payment paid, appends exactly one payment
// ledger row and mirrors the order. A capture for an unknown payment that
// carries notes.order_id creates the payment record on the spot.
func (s *WebhookProcessorService) handlePaymentCaptured(ctx context.Context, parsed *razorpayEvent) error {
	if parsed.Payload.Payment == nil {
		return errors.New("payment.captured payload missing payment entity")
	}
	entity := parsed.Payload.Payment.Entity

	var captured *payment.Payment
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		p, err := s.findPayment(ctx, repos, &entity)
		if err != nil {
			if !errors.Is(err, shared.ErrNotFound) {
				return err
			}
			p, err = s.createPaymentFromCapture(ctx, repos, &entity)
			if err != nil {
				return err
			}
		}

		p.AttachGatewayRefs(entity.OrderID, entity.ID, entity.Method)
		changed, err := p.Capture()
		if err != nil {
			return err
		}
		if err := repos.PaymentRepo().SaveWithLock(ctx, p); err != nil {
			return err
		}
		if !changed {
			// Replay: refs may have been attached, but no money moved again
			return nil
		}

		txn := payment.NewTransaction(p, payment.TransactionTypePayment, p.Amount, entity.ID)
		if err := repos.TransactionRepo().Save(ctx, txn); err != nil {
			return err
		}

		if p.OrderID != nil {
			o, err := repos.OrderRepo().FindByID(ctx, *p.OrderID)
			if err != nil {
				if errors.Is(err, shared.ErrNotFound) {
					return nil
				}
				return err
			}
			o.MarkPaid()
			if err := repos.OrderRepo().SaveWithLock(ctx, o); err != nil {
				return err
			}
		}
		captured = p
		return nil
	})
	if err != nil {
		return err
	}

	s.publishDomainEvents(ctx, captured)
	return nil
}

// createPaymentFromCapture lazily creates the payment record for a capture
// we have no prior record of, using notes.order_id to locate the order
func (s *WebhookProcessorService) createPaymentFromCapture(ctx context.Context, repos TransactionalRepositories, entity *razorpayPaymentEntity) (*payment.Payment, error) {
	noteOrderID, ok := entity.Notes["order_id"]
	if !ok || noteOrderID == "" {
		return nil, errors.New("captured payment is unknown and carries no order note")
	}
	orderID, err := uuid.Parse(noteOrderID)
	if err != nil {
		return nil, fmt.Errorf("captured payment carries malformed order note: %w", err)
	}

	o, err := repos.OrderRepo().FindByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("captured payment references unknown order %s", noteOrderID)
	}

	p, err := payment.NewPayment(o.TenantID, &o.ID, payment.GatewayRazorpay, paiseToRupees(entity.Amount))
	if err != nil {
		return nil, err
	}
	if err := repos.PaymentRepo().Save(ctx, p); err != nil {
		return nil, err
	}

	s.logger.Info("Payment created lazily from capture webhook",
		zap.String("payment_id", p.ID.String()),
		zap.String("order_id", o.ID.String()),
		zap.String("gateway_payment_id", entity.ID))
	return p, nil
}

// handlePaymentFailed records the failure and mirrors the order. Failures
// arriving after a capture are ignored; no ledger row is written because no
// money moved.
func (s *WebhookProcessorService) handlePaymentFailed(ctx context.Context, parsed *razorpayEvent) error {
	if parsed.Payload.Payment == nil {
		return errors.New("payment.failed payload missing payment entity")
	}
	entity := parsed.Payload.Payment.Entity

	var failed *payment.Payment
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		p, err := s.findPayment(ctx, repos, &entity)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return nil
			}
			return err
		}

		p.AttachGatewayRefs(entity.OrderID, entity.ID, entity.Method)
		if !p.Fail(entity.ErrorCode, entity.ErrorDescription) {
			return repos.PaymentRepo().SaveWithLock(ctx, p)
		}
		if err := repos.PaymentRepo().SaveWithLock(ctx, p); err != nil {
			return err
		}

		if p.OrderID != nil {
			o, err := repos.OrderRepo().FindByID(ctx, *p.OrderID)
			if err != nil {
				if errors.Is(err, shared.ErrNotFound) {
					return nil
				}
				return err
			}
			o.MarkPaymentFailed()
			if err := repos.OrderRepo().SaveWithLock(ctx, o); err != nil {
				return err
			}
		}
		failed = p
		return nil
	})
	if err != nil {
		return err
	}

	s.publishDomainEvents(ctx, failed)
	return nil
}

// handleRefundProcessed accumulates the refund against the captured payment,
// appends exactly one refund ledger row per refund id and mirrors the order
func (s *WebhookProcessorService) handleRefundProcessed(ctx context.Context, parsed *razorpayEvent) error {
	if parsed.Payload.Refund == nil {
		return errors.New("refund.processed payload missing refund entity")
	}
	refund := parsed.Payload.Refund.Entity

	var refunded *payment.Payment
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		p, err := repos.PaymentRepo().FindByGatewayRef(ctx, payment.GatewayRazorpay, refund.PaymentID)
		if err != nil {
			return err
		}

		// Dedupe by gateway refund id: one ledger row per refund, ever
		existing, err := repos.TransactionRepo().FindByPayment(ctx, p.ID)
		if err != nil {
			return err
		}
		for _, txn := range existing {
			if txn.Type == payment.TransactionTypeRefund && txn.GatewayTransactionID == refund.ID {
				return nil
			}
		}

		amount := paiseToRupees(refund.Amount)
		full, err := p.ApplyRefund(amount)
		if err != nil {
			return err
		}
		if err := repos.PaymentRepo().SaveWithLock(ctx, p); err != nil {
			return err
		}

		txn := payment.NewTransaction(p, payment.TransactionTypeRefund, amount, refund.ID)
		if err := repos.TransactionRepo().Save(ctx, txn); err != nil {
			return err
		}

		if p.OrderID != nil {
			o, err := repos.OrderRepo().FindByID(ctx, *p.OrderID)
			if err != nil {
				if errors.Is(err, shared.ErrNotFound) {
					return nil
				}
				return err
			}
			o.MarkRefunded(full)
			if err := repos.OrderRepo().SaveWithLock(ctx, o); err != nil {
				return err
			}
		}
		refunded = p
		return nil
	})
	if err != nil {
		return err
	}

	s.publishDomainEvents(ctx, refunded)
	return nil
}

// QueueStats reports the webhook queue depth per status
func (s *WebhookProcessorService) QueueStats(ctx context.Context) (*WebhookQueueStats, error) {
	counts, err := s.webhookRepo.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	return &WebhookQueueStats{
		Pending:    counts[payment.WebhookStatusPending],
		Processing: counts[payment.WebhookStatusProcessing],
		Processed:  counts[payment.WebhookStatusProcessed],
		Failed:     counts[payment.WebhookStatusFailed],
		Dead:       counts[payment.WebhookStatusDead],
	}, nil
}

// ListDeadLetters lists webhook events that exhausted their retries
func (s *WebhookProcessorService) ListDeadLetters(ctx context.Context, page, pageSize int) ([]WebhookEventResponse, int64, error) {
	events, total, err := s.webhookRepo.FindDead(ctx, page, pageSize)
	if err != nil {
		return nil, 0, err
	}
	responses := make([]WebhookEventResponse, len(events))
	for i, e := range events {
		responses[i] = ToWebhookEventResponse(e)
	}
	return responses, total, nil
}

// RequeueDeadLetter puts a dead letter event back on the queue
func (s *WebhookProcessorService) RequeueDeadLetter(ctx context.Context, eventID uuid.UUID) error {
	event, err := s.webhookRepo.FindByID(ctx, eventID)
	if err != nil {
		return err
	}
	if err := event.ResetForRetry(); err != nil {
		return err
	}
	if err := s.webhookRepo.Update(ctx, event); err != nil {
		return err
	}
	s.logger.Info("Dead letter webhook event requeued",
		zap.String("event_id", eventID.String()))
	return nil
}
