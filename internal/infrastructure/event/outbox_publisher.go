package event

import (
	"context"

	"github.com/craftline/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// OutboxPublisher writes domain events into the outbox table inside the
// caller's transaction, so an event row commits or rolls back with the
// business change that raised it.
type OutboxPublisher struct {
	serializer *EventSerializer
}

func NewOutboxPublisher(serializer *EventSerializer) *OutboxPublisher {
	return &OutboxPublisher{serializer: serializer}
}

// PublishWithTx serializes the events and inserts them through tx. An
// empty event list is a no-op.
func (p *OutboxPublisher) PublishWithTx(ctx context.Context, tx *gorm.DB, events ...shared.DomainEvent) error {
	if len(events) == 0 {
		return nil
	}

	entries := make([]*shared.OutboxEntry, 0, len(events))
	for _, event := range events {
		payload, err := p.serializer.Serialize(event)
		if err != nil {
			return err
		}
		entries = append(entries, shared.NewOutboxEntry(event.TenantID(), event, payload))
	}

	return NewGormOutboxRepository(tx).Save(ctx, entries...)
}
