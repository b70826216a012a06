package cache

import (
	"context"
	"sync"
	"time"

	"github.com/craftline/backend/internal/domain/shared"
)

// InMemoryIdempotencyStore tracks processed event ids in a map. It serves
// single-instance deployments and tests; multi-instance deployments use the
// Redis-backed store so all instances share one view.
type InMemoryIdempotencyStore struct {
	mu        sync.RWMutex
	expiries  map[string]time.Time
	done      chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewInMemoryIdempotencyStore builds the store and starts a goroutine that
// sweeps out expired ids every few minutes. Call Close to stop it.
func NewInMemoryIdempotencyStore() *InMemoryIdempotencyStore {
	store := &InMemoryIdempotencyStore{
		expiries: make(map[string]time.Time),
		done:     make(chan struct{}),
	}

	store.wg.Add(1)
	go store.sweepLoop()

	return store
}

// MarkProcessed records the event id for ttl. It reports true when the id
// was not yet present (or had expired), false for a live duplicate.
func (s *InMemoryIdempotencyStore) MarkProcessed(ctx context.Context, eventID string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if expiresAt, exists := s.expiries[eventID]; exists && time.Now().Before(expiresAt) {
		return false, nil
	}

	s.expiries[eventID] = time.Now().Add(ttl)
	return true, nil
}

// IsProcessed reports whether the event id is present and still live.
func (s *InMemoryIdempotencyStore) IsProcessed(ctx context.Context, eventID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	expiresAt, exists := s.expiries[eventID]
	return exists && time.Now().Before(expiresAt), nil
}

// Close stops the sweep goroutine. Safe to call more than once.
func (s *InMemoryIdempotencyStore) Close() error {
	s.closeOnce.Do(func() {
		close(s.done)
		s.wg.Wait()
	})
	return nil
}

func (s *InMemoryIdempotencyStore) sweepLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			s.sweep()
		}
	}
}

// sweep drops every expired id.
func (s *InMemoryIdempotencyStore) sweep() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for eventID, expiresAt := range s.expiries {
		if now.After(expiresAt) {
			delete(s.expiries, eventID)
		}
	}
}

// Size reports the number of tracked ids, expired ones included until the
// next sweep.
func (s *InMemoryIdempotencyStore) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.expiries)
}

var _ shared.IdempotencyStore = (*InMemoryIdempotencyStore)(nil)
