package payment

import (
	"time"

	"github.com/craftline/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// WebhookEventStatus represents the processing state of a stored webhook delivery
type WebhookEventStatus string

const (
	WebhookStatusPending    WebhookEventStatus = "PENDING"
	WebhookStatusProcessing WebhookEventStatus = "PROCESSING"
	WebhookStatusProcessed  WebhookEventStatus = "PROCESSED"
	WebhookStatusFailed     WebhookEventStatus = "FAILED"
	WebhookStatusDead       WebhookEventStatus = "DEAD"
)

// Retry configuration for webhook processing
const (
	DefaultWebhookMaxRetries  = 5
	DefaultWebhookBaseBackoff = time.Second
)

// WebhookEvent is a durably stored gateway delivery. The HTTP endpoint only
// verifies the signature and persists this row before acknowledging; a
// background dispatcher applies the reconciliation with retries, so a
// processing failure is retried instead of silently dropped.
type WebhookEvent struct {
	ID             uuid.UUID
	Gateway        Gateway
	GatewayEventID string
	EventType      string
	Payload        []byte
	Status         WebhookEventStatus
	RetryCount     int
	MaxRetries     int
	LastError      string
	NextRetryAt    *time.Time
	ProcessedAt    *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// NewWebhookEvent stores a verified gateway delivery for asynchronous processing
func NewWebhookEvent(gateway Gateway, gatewayEventID, eventType string, payload []byte) *WebhookEvent {
	now := time.Now()
	return &WebhookEvent{
		ID:             uuid.New(),
		Gateway:        gateway,
		GatewayEventID: gatewayEventID,
		EventType:      eventType,
		Payload:        payload,
		Status:         WebhookStatusPending,
		MaxRetries:     DefaultWebhookMaxRetries,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// MarkProcessing marks the event as being processed
func (e *WebhookEvent) MarkProcessing() error {
	if e.Status != WebhookStatusPending && e.Status != WebhookStatusFailed {
		return shared.NewDomainError("INVALID_STATE", "Only pending or failed webhook events can be processed")
	}
	e.Status = WebhookStatusProcessing
	e.UpdatedAt = time.Now()
	return nil
}

// MarkProcessed marks the event as successfully applied
func (e *WebhookEvent) MarkProcessed() {
	now := time.Now()
	e.Status = WebhookStatusProcessed
	e.ProcessedAt = &now
	e.UpdatedAt = now
}

// MarkFailed records a processing failure and schedules the next retry with
// exponential backoff (1s, 2s, 4s, ...). After MaxRetries the event moves to
// the dead letter state and requires manual intervention.
func (e *WebhookEvent) MarkFailed(errMsg string) {
	e.RetryCount++
	e.LastError = errMsg
	e.UpdatedAt = time.Now()

	if e.RetryCount >= e.MaxRetries {
		e.Status = WebhookStatusDead
		e.NextRetryAt = nil
		return
	}

	e.Status = WebhookStatusFailed
	backoff := DefaultWebhookBaseBackoff * time.Duration(1<<uint(e.RetryCount-1))
	nextRetry := time.Now().Add(backoff)
	e.NextRetryAt = &nextRetry
}

// ResetForRetry requeues a dead letter event
func (e *WebhookEvent) ResetForRetry() error {
	if e.Status != WebhookStatusDead {
		return shared.NewDomainError("INVALID_STATE", "Only dead letter events can be requeued")
	}
	e.Status = WebhookStatusPending
	e.RetryCount = 0
	e.LastError = ""
	e.NextRetryAt = nil
	e.UpdatedAt = time.Now()
	return nil
}

// IsDead returns true when the event exhausted its retries
func (e *WebhookEvent) IsDead() bool {
	return e.Status == WebhookStatusDead
}
