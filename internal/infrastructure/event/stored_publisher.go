package event

import (
	"context"

	"github.com/craftline/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// StoredEventPublisher implements shared.EventPublisher by appending events
// to the outbox table. Delivery to subscribers happens asynchronously through
// the OutboxProcessor, which survives process restarts.
type StoredEventPublisher struct {
	db        *gorm.DB
	publisher *OutboxPublisher
}

// NewStoredEventPublisher creates a publisher backed by the outbox table
func NewStoredEventPublisher(db *gorm.DB, serializer *EventSerializer) *StoredEventPublisher {
	return &StoredEventPublisher{
		db:        db,
		publisher: NewOutboxPublisher(serializer),
	}
}

// Publish stores the events in the outbox for asynchronous delivery
func (p *StoredEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	return p.publisher.PublishWithTx(ctx, p.db, events...)
}

var _ shared.EventPublisher = (*StoredEventPublisher)(nil)
