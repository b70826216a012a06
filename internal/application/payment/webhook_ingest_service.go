package payment

import (
	"context"
	"errors"

	"github.com/craftline/backend/internal/domain/payment"
	"github.com/craftline/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// WebhookIngestService is the synchronous half of webhook handling: verify
// the signature, persist the delivery, acknowledge. All reconciliation work
// happens asynchronously in WebhookProcessorService, so the gateway gets its
// 200 even when processing would fail.
type WebhookIngestService struct {
	webhookRepo payment.WebhookEventRepository
	verifier    payment.SignatureVerifier
	logger      *zap.Logger
}

// NewWebhookIngestService creates a new WebhookIngestService
func NewWebhookIngestService(webhookRepo payment.WebhookEventRepository, verifier payment.SignatureVerifier, logger *zap.Logger) *WebhookIngestService {
	return &WebhookIngestService{
		webhookRepo: webhookRepo,
		verifier:    verifier,
		logger:      logger,
	}
}

// Ingest verifies and stores one gateway delivery. An invalid signature
// returns shared.ErrSignatureInvalid and changes nothing. Redelivery of an
// already stored event id is acknowledged without storing a duplicate.
func (s *WebhookIngestService) Ingest(ctx context.Context, gatewayEventID, eventType string, body []byte, signature string) error {
	if err := s.verifier.VerifyWebhookSignature(body, signature); err != nil {
		s.logger.Warn("Webhook signature verification failed",
			zap.String("gateway_event_id", gatewayEventID))
		return shared.ErrSignatureInvalid
	}

	if gatewayEventID != "" {
		existing, err := s.webhookRepo.FindByGatewayEventID(ctx, payment.GatewayRazorpay, gatewayEventID)
		if err != nil && !errors.Is(err, shared.ErrNotFound) {
			return err
		}
		if existing != nil {
			s.logger.Debug("Webhook event already stored, acknowledging redelivery",
				zap.String("gateway_event_id", gatewayEventID))
			return nil
		}
	}

	event := payment.NewWebhookEvent(payment.GatewayRazorpay, gatewayEventID, eventType, body)
	if err := s.webhookRepo.Save(ctx, event); err != nil {
		return err
	}

	s.logger.Info("Webhook event stored",
		zap.String("event_id", event.ID.String()),
		zap.String("event_type", eventType))
	return nil
}
