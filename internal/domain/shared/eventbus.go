package shared

import "context"

// EventHandler consumes domain events.
type EventHandler interface {
	Handle(ctx context.Context, event DomainEvent) error
	// EventTypes lists the event types the handler wants. An empty slice
	// subscribes it to everything.
	EventTypes() []string
}

// EventPublisher fans domain events out to subscribed handlers.
type EventPublisher interface {
	Publish(ctx context.Context, events ...DomainEvent) error
}

// EventSubscriber manages handler registrations.
type EventSubscriber interface {
	// Subscribe registers a handler for the given event types, or for all
	// events when none are given.
	Subscribe(handler EventHandler, eventTypes ...string)
	Unsubscribe(handler EventHandler)
}

// EventBus is the full publish/subscribe surface plus lifecycle control
// for any background delivery machinery.
type EventBus interface {
	EventPublisher
	EventSubscriber
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}
