package event

import (
	"context"
	"time"

	"github.com/craftline/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormOutboxRepository persists outbox entries in Postgres via GORM.
type GormOutboxRepository struct {
	db *gorm.DB
}

func NewGormOutboxRepository(db *gorm.DB) *GormOutboxRepository {
	return &GormOutboxRepository{db: db}
}

// WithTx binds the repository to an open transaction so entries commit
// together with the aggregate change that produced them.
func (r *GormOutboxRepository) WithTx(tx *gorm.DB) *GormOutboxRepository {
	return &GormOutboxRepository{db: tx}
}

// Save inserts the entries; a no-op for an empty slice.
func (r *GormOutboxRepository) Save(ctx context.Context, entries ...*shared.OutboxEntry) error {
	if len(entries) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(entries).Error
}

// FindPending returns up to limit pending entries, oldest first.
func (r *GormOutboxRepository) FindPending(ctx context.Context, limit int) ([]*shared.OutboxEntry, error) {
	var entries []*shared.OutboxEntry
	err := r.db.WithContext(ctx).
		Where("status = ?", shared.OutboxStatusPending).
		Order("created_at ASC").
		Limit(limit).
		Find(&entries).Error
	return entries, err
}

// FindRetryable returns failed entries whose backoff elapsed before the
// given time.
func (r *GormOutboxRepository) FindRetryable(ctx context.Context, before time.Time, limit int) ([]*shared.OutboxEntry, error) {
	var entries []*shared.OutboxEntry
	err := r.db.WithContext(ctx).
		Where("status = ? AND next_retry_at <= ?", shared.OutboxStatusFailed, before).
		Order("next_retry_at ASC").
		Limit(limit).
		Find(&entries).Error
	return entries, err
}

// MarkProcessing claims the given entries for this processor. Rows are
// locked with FOR UPDATE SKIP LOCKED, so entries already claimed by a
// concurrent processor are silently excluded from the result.
func (r *GormOutboxRepository) MarkProcessing(ctx context.Context, ids []uuid.UUID) ([]*shared.OutboxEntry, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var entries []*shared.OutboxEntry
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
			Where("id IN ? AND status IN ?", ids, []shared.OutboxStatus{
				shared.OutboxStatusPending,
				shared.OutboxStatusFailed,
			}).
			Find(&entries).Error; err != nil {
			return err
		}
		if len(entries) == 0 {
			return nil
		}

		claimed := make([]uuid.UUID, len(entries))
		for i, e := range entries {
			claimed[i] = e.ID
		}

		now := time.Now()
		if err := tx.Model(&shared.OutboxEntry{}).
			Where("id IN ?", claimed).
			Updates(map[string]interface{}{
				"status":     shared.OutboxStatusProcessing,
				"updated_at": now,
			}).Error; err != nil {
			return err
		}

		for _, e := range entries {
			e.Status = shared.OutboxStatusProcessing
			e.UpdatedAt = now
		}
		return nil
	})

	return entries, err
}

// Update writes the entry back, refreshing its updated_at.
func (r *GormOutboxRepository) Update(ctx context.Context, entry *shared.OutboxEntry) error {
	entry.UpdatedAt = time.Now()
	return r.db.WithContext(ctx).Save(entry).Error
}

// DeleteOlderThan removes sent entries processed before the cutoff and
// reports how many went.
func (r *GormOutboxRepository) DeleteOlderThan(ctx context.Context, before time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("status = ? AND processed_at < ?", shared.OutboxStatusSent, before).
		Delete(&shared.OutboxEntry{})
	return result.RowsAffected, result.Error
}

// FindDead pages through dead-lettered entries, most recently failed first.
func (r *GormOutboxRepository) FindDead(ctx context.Context, page, pageSize int) ([]*shared.OutboxEntry, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).
		Model(&shared.OutboxEntry{}).
		Where("status = ?", shared.OutboxStatusDead).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var entries []*shared.OutboxEntry
	if err := r.db.WithContext(ctx).
		Where("status = ?", shared.OutboxStatusDead).
		Order("updated_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&entries).Error; err != nil {
		return nil, 0, err
	}

	return entries, total, nil
}

// FindByID loads one entry.
func (r *GormOutboxRepository) FindByID(ctx context.Context, id uuid.UUID) (*shared.OutboxEntry, error) {
	var entry shared.OutboxEntry
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&entry).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

// CountByStatus tallies entries per status, for the outbox stats endpoint.
func (r *GormOutboxRepository) CountByStatus(ctx context.Context) (map[shared.OutboxStatus]int64, error) {
	var rows []struct {
		Status shared.OutboxStatus
		Count  int64
	}
	err := r.db.WithContext(ctx).
		Model(&shared.OutboxEntry{}).
		Select("status, count(*) as count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[shared.OutboxStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

var _ shared.OutboxRepository = (*GormOutboxRepository)(nil)
