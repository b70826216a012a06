package shared

import (
	"context"
	"time"
)

// IdempotencyStore remembers processed event ids so redelivered events
// are dropped instead of handled twice.
type IdempotencyStore interface {
	// MarkProcessed records the event id for ttl. It reports true when
	// the id was newly recorded, false for a duplicate.
	MarkProcessed(ctx context.Context, eventID string, ttl time.Duration) (bool, error)

	// IsProcessed reports whether the event id is already recorded.
	IsProcessed(ctx context.Context, eventID string) (bool, error)

	Close() error
}

// IdempotencyConfig controls duplicate suppression on event handlers.
type IdempotencyConfig struct {
	// TTL bounds how long a processed id is remembered. After it lapses
	// the same event id would be handled again.
	TTL time.Duration

	// Enabled turns the duplicate check off entirely when false.
	Enabled bool
}

// DefaultIdempotencyConfig remembers ids for a day.
func DefaultIdempotencyConfig() IdempotencyConfig {
	return IdempotencyConfig{
		TTL:     24 * time.Hour,
		Enabled: true,
	}
}
