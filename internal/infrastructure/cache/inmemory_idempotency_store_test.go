package cache

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *InMemoryIdempotencyStore {
	t.Helper()
	store := NewInMemoryIdempotencyStore()
	t.Cleanup(func() { store.Close() })
	return store
}

func TestInMemoryIdempotencyStore_MarkProcessed(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	t.Run("first delivery is new", func(t *testing.T) {
		isNew, err := store.MarkProcessed(ctx, "evt-payment-001", time.Hour)
		require.NoError(t, err)
		assert.True(t, isNew)
	})

	t.Run("redelivery is a duplicate", func(t *testing.T) {
		_, err := store.MarkProcessed(ctx, "evt-payment-002", time.Hour)
		require.NoError(t, err)

		isNew, err := store.MarkProcessed(ctx, "evt-payment-002", time.Hour)
		require.NoError(t, err)
		assert.False(t, isNew)
	})

	t.Run("expired id can be marked again", func(t *testing.T) {
		_, err := store.MarkProcessed(ctx, "evt-payment-003", 10*time.Millisecond)
		require.NoError(t, err)

		time.Sleep(20 * time.Millisecond)

		isNew, err := store.MarkProcessed(ctx, "evt-payment-003", time.Hour)
		require.NoError(t, err)
		assert.True(t, isNew)
	})
}

func TestInMemoryIdempotencyStore_IsProcessed(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	t.Run("unknown id", func(t *testing.T) {
		processed, err := store.IsProcessed(ctx, "evt-never-seen")
		require.NoError(t, err)
		assert.False(t, processed)
	})

	t.Run("live id", func(t *testing.T) {
		_, err := store.MarkProcessed(ctx, "evt-order-001", time.Hour)
		require.NoError(t, err)

		processed, err := store.IsProcessed(ctx, "evt-order-001")
		require.NoError(t, err)
		assert.True(t, processed)
	})

	t.Run("expired id reads as unprocessed", func(t *testing.T) {
		_, err := store.MarkProcessed(ctx, "evt-order-002", 10*time.Millisecond)
		require.NoError(t, err)

		time.Sleep(20 * time.Millisecond)

		processed, err := store.IsProcessed(ctx, "evt-order-002")
		require.NoError(t, err)
		assert.False(t, processed)
	})
}

func TestInMemoryIdempotencyStore_Size(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	assert.Equal(t, 0, store.Size())

	_, _ = store.MarkProcessed(ctx, "evt-1", time.Hour)
	_, _ = store.MarkProcessed(ctx, "evt-2", time.Hour)
	assert.Equal(t, 2, store.Size())

	// A duplicate does not grow the store.
	_, _ = store.MarkProcessed(ctx, "evt-1", time.Hour)
	assert.Equal(t, 2, store.Size())
}

func TestInMemoryIdempotencyStore_Sweep(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, _ = store.MarkProcessed(ctx, "evt-short-1", 10*time.Millisecond)
	_, _ = store.MarkProcessed(ctx, "evt-short-2", 10*time.Millisecond)
	_, _ = store.MarkProcessed(ctx, "evt-durable", time.Hour)
	require.Equal(t, 3, store.Size())

	time.Sleep(20 * time.Millisecond)
	store.sweep()

	assert.Equal(t, 1, store.Size())

	processed, err := store.IsProcessed(ctx, "evt-durable")
	require.NoError(t, err)
	assert.True(t, processed)
}

func TestInMemoryIdempotencyStore_ConcurrentMarking(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	const attempts = 100
	results := make(chan bool, attempts)
	for i := 0; i < attempts; i++ {
		go func() {
			isNew, err := store.MarkProcessed(ctx, "evt-contended", time.Hour)
			results <- err == nil && isNew
		}()
	}

	var wins int
	for i := 0; i < attempts; i++ {
		if <-results {
			wins++
		}
	}

	assert.Equal(t, 1, wins, "only one delivery may win")
}

func TestInMemoryIdempotencyStore_Close(t *testing.T) {
	store := NewInMemoryIdempotencyStore()

	require.NoError(t, store.Close())
	require.NoError(t, store.Close())
}

func BenchmarkInMemoryIdempotencyStore_MarkProcessed(b *testing.B) {
	store := NewInMemoryIdempotencyStore()
	defer store.Close()
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = store.MarkProcessed(ctx, fmt.Sprintf("evt-%d", i), time.Hour)
	}
}
