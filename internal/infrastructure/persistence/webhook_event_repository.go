package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/craftline/backend/internal/domain/payment"
	"github.com/craftline/backend/internal/domain/shared"
	"github.com/craftline/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormWebhookEventRepository implements WebhookEventRepository using GORM
type GormWebhookEventRepository struct {
	db *gorm.DB
}

// NewGormWebhookEventRepository creates a new GormWebhookEventRepository
func NewGormWebhookEventRepository(db *gorm.DB) *GormWebhookEventRepository {
	return &GormWebhookEventRepository{db: db}
}

// Save persists a new webhook event
func (r *GormWebhookEventRepository) Save(ctx context.Context, event *payment.WebhookEvent) error {
	model := models.WebhookEventModelFromDomain(event)
	return r.db.WithContext(ctx).Create(model).Error
}

// FindByID finds a stored delivery by its ID
func (r *GormWebhookEventRepository) FindByID(ctx context.Context, id uuid.UUID) (*payment.WebhookEvent, error) {
	var model models.WebhookEventModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByGatewayEventID finds a stored delivery by the gateway's event id
func (r *GormWebhookEventRepository) FindByGatewayEventID(ctx context.Context, gateway payment.Gateway, gatewayEventID string) (*payment.WebhookEvent, error) {
	var model models.WebhookEventModel
	if err := r.db.WithContext(ctx).
		Where("gateway = ? AND gateway_event_id = ?", gateway, gatewayEventID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindDue returns pending events plus failed events whose retry time has
// passed, oldest first
func (r *GormWebhookEventRepository) FindDue(ctx context.Context, now time.Time, limit int) ([]*payment.WebhookEvent, error) {
	var rows []models.WebhookEventModel
	if err := r.db.WithContext(ctx).
		Where("status = ? OR (status = ? AND next_retry_at <= ?)",
			payment.WebhookStatusPending, payment.WebhookStatusFailed, now).
		Order("created_at ASC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return toDomainWebhookEvents(rows), nil
}

// MarkProcessing atomically claims the given events for processing. Rows are
// locked with FOR UPDATE SKIP LOCKED so concurrent dispatchers never claim
// the same delivery twice.
func (r *GormWebhookEventRepository) MarkProcessing(ctx context.Context, ids []uuid.UUID) ([]*payment.WebhookEvent, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var claimed []models.WebhookEventModel
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
			Where("id IN ? AND status IN ?", ids,
				[]payment.WebhookEventStatus{payment.WebhookStatusPending, payment.WebhookStatusFailed}).
			Find(&claimed).Error; err != nil {
			return err
		}
		if len(claimed) == 0 {
			return nil
		}

		claimedIDs := make([]uuid.UUID, len(claimed))
		now := time.Now()
		for i := range claimed {
			claimedIDs[i] = claimed[i].ID
			claimed[i].Status = payment.WebhookStatusProcessing
			claimed[i].UpdatedAt = now
		}
		return tx.Model(&models.WebhookEventModel{}).
			Where("id IN ?", claimedIDs).
			Updates(map[string]interface{}{
				"status":     payment.WebhookStatusProcessing,
				"updated_at": now,
			}).Error
	})
	if err != nil {
		return nil, err
	}
	return toDomainWebhookEvents(claimed), nil
}

// Update persists processing state changes
func (r *GormWebhookEventRepository) Update(ctx context.Context, event *payment.WebhookEvent) error {
	model := models.WebhookEventModelFromDomain(event)
	return r.db.WithContext(ctx).
		Model(&models.WebhookEventModel{}).
		Where("id = ?", event.ID).
		Updates(map[string]interface{}{
			"status":        model.Status,
			"retry_count":   model.RetryCount,
			"last_error":    model.LastError,
			"next_retry_at": model.NextRetryAt,
			"processed_at":  model.ProcessedAt,
			"updated_at":    model.UpdatedAt,
		}).Error
}

// FindDead lists dead letter events with pagination
func (r *GormWebhookEventRepository) FindDead(ctx context.Context, page, pageSize int) ([]*payment.WebhookEvent, int64, error) {
	base := r.db.WithContext(ctx).Model(&models.WebhookEventModel{}).
		Where("status = ?", payment.WebhookStatusDead)

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query := base.Order("updated_at DESC")
	if page > 0 && pageSize > 0 {
		query = query.Offset((page - 1) * pageSize).Limit(pageSize)
	}

	var rows []models.WebhookEventModel
	if err := query.Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return toDomainWebhookEvents(rows), total, nil
}

// CountByStatus returns the number of events per status
func (r *GormWebhookEventRepository) CountByStatus(ctx context.Context) (map[payment.WebhookEventStatus]int64, error) {
	var rows []struct {
		Status payment.WebhookEventStatus
		Count  int64
	}
	if err := r.db.WithContext(ctx).
		Model(&models.WebhookEventModel{}).
		Select("status, COUNT(*) as count").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	counts := make(map[payment.WebhookEventStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

// DeleteProcessedBefore removes processed events older than the cutoff
func (r *GormWebhookEventRepository) DeleteProcessedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("status = ? AND processed_at < ?", payment.WebhookStatusProcessed, cutoff).
		Delete(&models.WebhookEventModel{})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

func toDomainWebhookEvents(rows []models.WebhookEventModel) []*payment.WebhookEvent {
	events := make([]*payment.WebhookEvent, len(rows))
	for i := range rows {
		events[i] = rows[i].ToDomain()
	}
	return events
}

// Ensure GormWebhookEventRepository implements WebhookEventRepository
var _ payment.WebhookEventRepository = (*GormWebhookEventRepository)(nil)
