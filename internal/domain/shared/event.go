package shared

import (
	"time"

	"github.com/google/uuid"
)

// DomainEvent describes something that happened to an aggregate.
type DomainEvent interface {
	EventID() uuid.UUID
	EventType() string
	OccurredAt() time.Time
	AggregateID() uuid.UUID
	AggregateType() string
	TenantID() uuid.UUID
}

// BaseDomainEvent carries the envelope fields every event shares. Concrete
// events embed it and add their payload fields.
type BaseDomainEvent struct {
	ID            uuid.UUID `json:"id"`
	Type          string    `json:"type"`
	Timestamp     time.Time `json:"timestamp"`
	AggID         uuid.UUID `json:"aggregate_id"`
	AggType       string    `json:"aggregate_type"`
	TenantIDValue uuid.UUID `json:"tenant_id"`
}

// NewBaseDomainEvent stamps a fresh envelope with a new event id and the
// current time.
func NewBaseDomainEvent(eventType, aggType string, aggID, tenantID uuid.UUID) BaseDomainEvent {
	return BaseDomainEvent{
		ID:            uuid.New(),
		Type:          eventType,
		Timestamp:     time.Now(),
		AggID:         aggID,
		AggType:       aggType,
		TenantIDValue: tenantID,
	}
}

func (e *BaseDomainEvent) EventID() uuid.UUID { return e.ID }

func (e *BaseDomainEvent) EventType() string { return e.Type }

func (e *BaseDomainEvent) OccurredAt() time.Time { return e.Timestamp }

func (e *BaseDomainEvent) AggregateID() uuid.UUID { return e.AggID }

func (e *BaseDomainEvent) AggregateType() string { return e.AggType }

func (e *BaseDomainEvent) TenantID() uuid.UUID { return e.TenantIDValue }
