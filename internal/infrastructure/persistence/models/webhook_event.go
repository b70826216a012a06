package models

import (
	"time"

	"github.com/craftline/backend/internal/domain/payment"
	"github.com/google/uuid"
)

// WebhookEventModel is the persistence model for stored gateway deliveries.
// The unique (gateway, gateway_event_id) index makes duplicate deliveries a
// constraint violation instead of a duplicate row.
type WebhookEventModel struct {
	ID             uuid.UUID                  `gorm:"type:uuid;primaryKey"`
	Gateway        payment.Gateway            `gorm:"type:varchar(20);not null;uniqueIndex:idx_webhook_gateway_event,priority:1"`
	GatewayEventID string                     `gorm:"type:varchar(100);not null;uniqueIndex:idx_webhook_gateway_event,priority:2"`
	EventType      string                     `gorm:"type:varchar(100);not null"`
	Payload        []byte                     `gorm:"type:jsonb;not null"`
	Status         payment.WebhookEventStatus `gorm:"type:varchar(20);not null;default:PENDING;index:idx_webhook_status_retry,priority:1"`
	RetryCount     int                        `gorm:"not null;default:0"`
	MaxRetries     int                        `gorm:"not null;default:5"`
	LastError      string                     `gorm:"type:text"`
	NextRetryAt    *time.Time                 `gorm:"index:idx_webhook_status_retry,priority:2"`
	ProcessedAt    *time.Time
	CreatedAt      time.Time `gorm:"not null;default:now()"`
	UpdatedAt      time.Time `gorm:"not null;default:now()"`
}

// TableName returns the table name for GORM
func (WebhookEventModel) TableName() string {
	return "webhook_events"
}

// ToDomain converts the persistence model to a domain WebhookEvent
func (m *WebhookEventModel) ToDomain() *payment.WebhookEvent {
	return &payment.WebhookEvent{
		ID:             m.ID,
		Gateway:        m.Gateway,
		GatewayEventID: m.GatewayEventID,
		EventType:      m.EventType,
		Payload:        m.Payload,
		Status:         m.Status,
		RetryCount:     m.RetryCount,
		MaxRetries:     m.MaxRetries,
		LastError:      m.LastError,
		NextRetryAt:    m.NextRetryAt,
		ProcessedAt:    m.ProcessedAt,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

// FromDomain populates the persistence model from a domain WebhookEvent
func (m *WebhookEventModel) FromDomain(e *payment.WebhookEvent) {
	m.ID = e.ID
	m.Gateway = e.Gateway
	m.GatewayEventID = e.GatewayEventID
	m.EventType = e.EventType
	m.Payload = e.Payload
	m.Status = e.Status
	m.RetryCount = e.RetryCount
	m.MaxRetries = e.MaxRetries
	m.LastError = e.LastError
	m.NextRetryAt = e.NextRetryAt
	m.ProcessedAt = e.ProcessedAt
	m.CreatedAt = e.CreatedAt
	m.UpdatedAt = e.UpdatedAt
}

// WebhookEventModelFromDomain creates a new persistence model from a domain WebhookEvent
func WebhookEventModelFromDomain(e *payment.WebhookEvent) *WebhookEventModel {
	m := &WebhookEventModel{}
	m.FromDomain(e)
	return m
}
