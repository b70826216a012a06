package shared

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutboxEntry_MarkProcessing(t *testing.T) {
	t.Run("claims pending and failed entries", func(t *testing.T) {
		for _, status := range []OutboxStatus{OutboxStatusPending, OutboxStatusFailed} {
			entry := &OutboxEntry{ID: uuid.New(), Status: status}
			require.NoError(t, entry.MarkProcessing())
			assert.Equal(t, OutboxStatusProcessing, entry.Status)
		}
	})

	t.Run("rejects other states", func(t *testing.T) {
		for _, status := range []OutboxStatus{OutboxStatusProcessing, OutboxStatusSent, OutboxStatusDead} {
			entry := &OutboxEntry{ID: uuid.New(), Status: status}
			assert.Error(t, entry.MarkProcessing(), "status %s", status)
		}
	})
}

func TestOutboxEntry_MarkSent(t *testing.T) {
	entry := &OutboxEntry{ID: uuid.New(), Status: OutboxStatusProcessing}

	entry.MarkSent()

	assert.Equal(t, OutboxStatusSent, entry.Status)
	require.NotNil(t, entry.ProcessedAt)
	assert.WithinDuration(t, time.Now(), *entry.ProcessedAt, time.Second)
}

func TestOutboxEntry_MarkFailed(t *testing.T) {
	t.Run("goes dead once retries are exhausted", func(t *testing.T) {
		entry := &OutboxEntry{
			ID:         uuid.New(),
			Status:     OutboxStatusProcessing,
			RetryCount: 4,
			MaxRetries: 5,
		}

		entry.MarkFailed("razorpay: connection refused")

		assert.Equal(t, OutboxStatusDead, entry.Status)
		assert.Equal(t, 5, entry.RetryCount)
		assert.Equal(t, "razorpay: connection refused", entry.LastError)
		assert.True(t, entry.IsDead())
		assert.False(t, entry.CanRetry())
	})

	t.Run("backoff doubles per attempt", func(t *testing.T) {
		entry := &OutboxEntry{
			ID:         uuid.New(),
			Status:     OutboxStatusProcessing,
			MaxRetries: 5,
		}

		// Attempt 1 schedules ~1s out, attempt 2 ~2s, attempt 3 ~4s.
		windows := []struct{ min, max time.Duration }{
			{0, 2 * time.Second},
			{time.Second, 3 * time.Second},
			{3 * time.Second, 5 * time.Second},
		}

		for i, w := range windows {
			entry.Status = OutboxStatusProcessing
			entry.MarkFailed("delivery timed out")

			assert.Equal(t, OutboxStatusFailed, entry.Status)
			assert.Equal(t, i+1, entry.RetryCount)
			assert.True(t, entry.CanRetry())
			require.NotNil(t, entry.NextRetryAt)
			backoff := time.Until(*entry.NextRetryAt)
			assert.Greater(t, backoff, w.min, "attempt %d", i+1)
			assert.LessOrEqual(t, backoff, w.max, "attempt %d", i+1)
		}
	})
}

func TestOutboxEntry_ResetForRetry(t *testing.T) {
	t.Run("requeues a dead letter entry", func(t *testing.T) {
		entry := &OutboxEntry{
			ID:          uuid.New(),
			TenantID:    uuid.New(),
			EventID:     uuid.New(),
			EventType:   "payment.captured",
			AggregateID: uuid.New(),
			Status:      OutboxStatusDead,
			RetryCount:  5,
			MaxRetries:  5,
			LastError:   "razorpay: connection refused",
			CreatedAt:   time.Now().Add(-time.Hour),
			UpdatedAt:   time.Now().Add(-time.Minute),
		}

		require.NoError(t, entry.ResetForRetry())

		assert.Equal(t, OutboxStatusPending, entry.Status)
		assert.Zero(t, entry.RetryCount)
		assert.Empty(t, entry.LastError)
		assert.Nil(t, entry.NextRetryAt)
		assert.WithinDuration(t, time.Now(), entry.UpdatedAt, time.Second)
	})

	t.Run("rejects entries that are not dead", func(t *testing.T) {
		for _, status := range []OutboxStatus{
			OutboxStatusPending, OutboxStatusProcessing, OutboxStatusSent, OutboxStatusFailed,
		} {
			entry := &OutboxEntry{ID: uuid.New(), Status: status}
			err := entry.ResetForRetry()
			require.Error(t, err)
			assert.Contains(t, err.Error(), "can only retry dead letter entries")
		}
	})
}

func TestOutboxEntry_IsDead(t *testing.T) {
	assert.True(t, (&OutboxEntry{Status: OutboxStatusDead}).IsDead())

	for _, status := range []OutboxStatus{
		OutboxStatusPending, OutboxStatusProcessing, OutboxStatusSent, OutboxStatusFailed,
	} {
		assert.False(t, (&OutboxEntry{Status: status}).IsDead(), "status %s", status)
	}
}
