package event

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sync"

	"github.com/craftline/backend/internal/domain/shared"
)

// EventSerializer turns domain events into JSON and back. Deserialization
// needs the concrete Go type, so every event type must be registered
// before its payloads can be decoded.
type EventSerializer struct {
	mu       sync.RWMutex
	registry map[string]reflect.Type
}

func NewEventSerializer() *EventSerializer {
	return &EventSerializer{registry: make(map[string]reflect.Type)}
}

// Register binds an event type string to the concrete type of
// eventInstance. The string must match what EventType() returns on the
// event.
func (s *EventSerializer) Register(eventType string, eventInstance shared.DomainEvent) {
	t := reflect.TypeOf(eventInstance)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	s.mu.Lock()
	s.registry[eventType] = t
	s.mu.Unlock()
}

// Serialize encodes the event as JSON.
func (s *EventSerializer) Serialize(event shared.DomainEvent) ([]byte, error) {
	return json.Marshal(event)
}

// Deserialize decodes data into a fresh instance of the type registered
// for eventType.
func (s *EventSerializer) Deserialize(eventType string, data []byte) (shared.DomainEvent, error) {
	s.mu.RLock()
	t, ok := s.registry[eventType]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown event type: %s", eventType)
	}

	eventPtr := reflect.New(t).Interface()
	if err := json.Unmarshal(data, eventPtr); err != nil {
		return nil, fmt.Errorf("failed to unmarshal event: %w", err)
	}

	event, ok := eventPtr.(shared.DomainEvent)
	if !ok {
		return nil, fmt.Errorf("deserialized object does not implement DomainEvent")
	}
	return event, nil
}

// IsRegistered reports whether eventType has a registered Go type.
func (s *EventSerializer) IsRegistered(eventType string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.registry[eventType]
	return ok
}

// RegisteredTypes lists every registered event type, in no fixed order.
func (s *EventSerializer) RegisteredTypes() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	types := make([]string, 0, len(s.registry))
	for t := range s.registry {
		types = append(types, t)
	}
	return types
}
