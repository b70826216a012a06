package shared

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// OutboxStatus is the delivery state of an outbox entry.
type OutboxStatus string

const (
	OutboxStatusPending    OutboxStatus = "PENDING"
	OutboxStatusProcessing OutboxStatus = "PROCESSING"
	OutboxStatusSent       OutboxStatus = "SENT"
	OutboxStatusFailed     OutboxStatus = "FAILED"
	OutboxStatusDead       OutboxStatus = "DEAD"
)

// Retry defaults applied to every new entry.
const (
	DefaultMaxRetries  = 5
	DefaultBaseBackoff = time.Second
)

// OutboxEntry is a domain event persisted alongside the business write so
// delivery survives a crash between commit and publish.
type OutboxEntry struct {
	ID            uuid.UUID
	TenantID      uuid.UUID
	EventID       uuid.UUID
	EventType     string
	AggregateID   uuid.UUID
	AggregateType string
	Payload       []byte
	Status        OutboxStatus
	RetryCount    int
	MaxRetries    int
	LastError     string
	NextRetryAt   *time.Time
	ProcessedAt   *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// NewOutboxEntry wraps a serialized domain event in a pending entry.
func NewOutboxEntry(tenantID uuid.UUID, event DomainEvent, payload []byte) *OutboxEntry {
	now := time.Now()
	return &OutboxEntry{
		ID:            uuid.New(),
		TenantID:      tenantID,
		EventID:       event.EventID(),
		EventType:     event.EventType(),
		AggregateID:   event.AggregateID(),
		AggregateType: event.AggregateType(),
		Payload:       payload,
		Status:        OutboxStatusPending,
		MaxRetries:    DefaultMaxRetries,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// CanRetry reports whether the entry failed with attempts left.
func (e *OutboxEntry) CanRetry() bool {
	return e.Status == OutboxStatusFailed && e.RetryCount < e.MaxRetries
}

// IsDead reports whether the entry exhausted its retries.
func (e *OutboxEntry) IsDead() bool {
	return e.Status == OutboxStatusDead
}

// MarkProcessing claims the entry for delivery. Only pending and failed
// entries may be claimed.
func (e *OutboxEntry) MarkProcessing() error {
	if e.Status != OutboxStatusPending && e.Status != OutboxStatusFailed {
		return errors.New("can only mark pending or failed entries as processing")
	}
	e.Status = OutboxStatusProcessing
	e.UpdatedAt = time.Now()
	return nil
}

// MarkSent records a successful delivery.
func (e *OutboxEntry) MarkSent() {
	now := time.Now()
	e.Status = OutboxStatusSent
	e.ProcessedAt = &now
	e.UpdatedAt = now
}

// MarkFailed records a delivery failure. The entry goes dead once retries
// are exhausted; otherwise the next attempt is scheduled with exponential
// backoff (1s, 2s, 4s, ...).
func (e *OutboxEntry) MarkFailed(errMsg string) {
	e.RetryCount++
	e.LastError = errMsg
	e.UpdatedAt = time.Now()

	if e.RetryCount >= e.MaxRetries {
		e.Status = OutboxStatusDead
		return
	}

	e.Status = OutboxStatusFailed
	nextRetry := time.Now().Add(DefaultBaseBackoff << uint(e.RetryCount-1))
	e.NextRetryAt = &nextRetry
}

// ResetForRetry requeues a dead letter entry with a fresh retry budget.
func (e *OutboxEntry) ResetForRetry() error {
	if e.Status != OutboxStatusDead {
		return errors.New("can only retry dead letter entries")
	}
	e.Status = OutboxStatusPending
	e.RetryCount = 0
	e.LastError = ""
	e.NextRetryAt = nil
	e.UpdatedAt = time.Now()
	return nil
}

// OutboxRepository persists outbox entries.
type OutboxRepository interface {
	// Save persists one or more entries.
	Save(ctx context.Context, entries ...*OutboxEntry) error
	// FindPending returns up to limit pending entries, oldest first.
	FindPending(ctx context.Context, limit int) ([]*OutboxEntry, error)
	// FindRetryable returns failed entries whose next retry is due before
	// the given time.
	FindRetryable(ctx context.Context, before time.Time, limit int) ([]*OutboxEntry, error)
	// FindDead returns dead letter entries with pagination.
	FindDead(ctx context.Context, page, pageSize int) ([]*OutboxEntry, int64, error)
	// FindByID returns a single entry.
	FindByID(ctx context.Context, id uuid.UUID) (*OutboxEntry, error)
	// MarkProcessing atomically claims the entries and returns the claimed
	// set, which may be smaller when another worker got there first.
	MarkProcessing(ctx context.Context, ids []uuid.UUID) ([]*OutboxEntry, error)
	// Update persists a changed entry.
	Update(ctx context.Context, entry *OutboxEntry) error
	// DeleteOlderThan removes entries created before the given time.
	DeleteOlderThan(ctx context.Context, before time.Time) (int64, error)
	// CountByStatus tallies entries per status.
	CountByStatus(ctx context.Context) (map[OutboxStatus]int64, error)
}
