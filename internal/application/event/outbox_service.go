package event

import (
	"context"
	"time"

	"github.com/craftline/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// OutboxService exposes the outbox to operators: inspect dead letters,
// push them back into rotation, and read delivery stats.
type OutboxService struct {
	repo   shared.OutboxRepository
	logger *zap.Logger
}

func NewOutboxService(
	repo shared.OutboxRepository,
	logger *zap.Logger,
) *OutboxService {
	return &OutboxService{
		repo:   repo,
		logger: logger,
	}
}

// OutboxEntryDTO is the read model for one outbox entry.
type OutboxEntryDTO struct {
	ID            uuid.UUID  `json:"id"`
	TenantID      uuid.UUID  `json:"tenant_id"`
	EventID       uuid.UUID  `json:"event_id"`
	EventType     string     `json:"event_type"`
	AggregateID   uuid.UUID  `json:"aggregate_id"`
	AggregateType string     `json:"aggregate_type"`
	Status        string     `json:"status"`
	RetryCount    int        `json:"retry_count"`
	MaxRetries    int        `json:"max_retries"`
	LastError     string     `json:"last_error,omitempty"`
	NextRetryAt   *time.Time `json:"next_retry_at,omitempty"`
	ProcessedAt   *time.Time `json:"processed_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// OutboxFilter carries pagination for outbox listings.
type OutboxFilter struct {
	Page     int `form:"page,omitempty" binding:"omitempty,min=1"`
	PageSize int `form:"page_size,omitempty" binding:"omitempty,min=1,max=100"`
}

// OutboxListResult is one page of outbox entries.
type OutboxListResult struct {
	Entries    []OutboxEntryDTO `json:"entries"`
	Total      int64            `json:"total"`
	Page       int              `json:"page"`
	PageSize   int              `json:"page_size"`
	TotalPages int              `json:"total_pages"`
}

// OutboxStatsDTO tallies entries per delivery status.
type OutboxStatsDTO struct {
	Pending    int64 `json:"pending"`
	Processing int64 `json:"processing"`
	Sent       int64 `json:"sent"`
	Failed     int64 `json:"failed"`
	Dead       int64 `json:"dead"`
	Total      int64 `json:"total"`
}

const (
	defaultOutboxPageSize = 20
	maxOutboxPageSize     = 100
)

// GetDeadLetterEntries pages through dead-lettered entries.
func (s *OutboxService) GetDeadLetterEntries(ctx context.Context, filter OutboxFilter) (*OutboxListResult, error) {
	page, pageSize := clampPagination(filter)

	entries, total, err := s.repo.FindDead(ctx, page, pageSize)
	if err != nil {
		s.logger.Error("dead letter lookup failed", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to retrieve dead letter entries")
	}

	dtos := make([]OutboxEntryDTO, len(entries))
	for i, entry := range entries {
		dtos[i] = toOutboxEntryDTO(entry)
	}

	totalPages := int(total) / pageSize
	if int(total)%pageSize > 0 {
		totalPages++
	}

	return &OutboxListResult{
		Entries:    dtos,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}, nil
}

// GetEntry loads a single outbox entry.
func (s *OutboxService) GetEntry(ctx context.Context, id uuid.UUID) (*OutboxEntryDTO, error) {
	entry, err := s.loadEntry(ctx, id)
	if err != nil {
		return nil, err
	}

	dto := toOutboxEntryDTO(entry)
	return &dto, nil
}

// RetryDeadEntry puts one dead-lettered entry back into the pending queue.
func (s *OutboxService) RetryDeadEntry(ctx context.Context, id uuid.UUID) (*OutboxEntryDTO, error) {
	entry, err := s.loadEntry(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := entry.ResetForRetry(); err != nil {
		return nil, shared.NewDomainError("INVALID_STATUS", err.Error())
	}

	if err := s.repo.Update(ctx, entry); err != nil {
		s.logger.Error("outbox entry update failed", zap.Error(err), zap.String("id", id.String()))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to retry entry")
	}

	s.logger.Info("dead letter entry requeued",
		zap.String("id", id.String()),
		zap.String("event_type", entry.EventType),
	)

	dto := toOutboxEntryDTO(entry)
	return &dto, nil
}

// RetryAllDeadEntries requeues every dead-lettered entry and reports how
// many were reset. Entries that fail to reset or persist are skipped so one
// bad row does not block the rest.
func (s *OutboxService) RetryAllDeadEntries(ctx context.Context) (int64, error) {
	var requeued int64

	for page := 1; ; page++ {
		entries, _, err := s.repo.FindDead(ctx, page, maxOutboxPageSize)
		if err != nil {
			s.logger.Error("dead letter lookup failed", zap.Error(err))
			return requeued, shared.NewDomainError("INTERNAL_ERROR", "Failed to retrieve dead letter entries")
		}
		if len(entries) == 0 {
			break
		}

		for _, entry := range entries {
			if err := entry.ResetForRetry(); err != nil {
				continue
			}
			if err := s.repo.Update(ctx, entry); err != nil {
				s.logger.Error("outbox entry update failed", zap.Error(err), zap.String("id", entry.ID.String()))
				continue
			}
			requeued++
		}

		if len(entries) < maxOutboxPageSize {
			break
		}
	}

	s.logger.Info("dead letter entries requeued", zap.Int64("count", requeued))
	return requeued, nil
}

// GetStats reports per-status entry counts.
func (s *OutboxService) GetStats(ctx context.Context) (*OutboxStatsDTO, error) {
	counts, err := s.repo.CountByStatus(ctx)
	if err != nil {
		s.logger.Error("outbox stats query failed", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to get outbox stats")
	}

	var total int64
	for _, count := range counts {
		total += count
	}

	return &OutboxStatsDTO{
		Pending:    counts[shared.OutboxStatusPending],
		Processing: counts[shared.OutboxStatusProcessing],
		Sent:       counts[shared.OutboxStatusSent],
		Failed:     counts[shared.OutboxStatusFailed],
		Dead:       counts[shared.OutboxStatusDead],
		Total:      total,
	}, nil
}

func (s *OutboxService) loadEntry(ctx context.Context, id uuid.UUID) (*shared.OutboxEntry, error) {
	entry, err := s.repo.FindByID(ctx, id)
	if err != nil {
		s.logger.Error("outbox entry lookup failed", zap.Error(err), zap.String("id", id.String()))
		return nil, shared.NewDomainError("ENTRY_NOT_FOUND", "Outbox entry not found")
	}
	if entry == nil {
		return nil, shared.NewDomainError("ENTRY_NOT_FOUND", "Outbox entry not found")
	}
	return entry, nil
}

func clampPagination(filter OutboxFilter) (page, pageSize int) {
	page = filter.Page
	if page < 1 {
		page = 1
	}
	pageSize = filter.PageSize
	switch {
	case pageSize < 1:
		pageSize = defaultOutboxPageSize
	case pageSize > maxOutboxPageSize:
		pageSize = maxOutboxPageSize
	}
	return page, pageSize
}

func toOutboxEntryDTO(entry *shared.OutboxEntry) OutboxEntryDTO {
	return OutboxEntryDTO{
		ID:            entry.ID,
		TenantID:      entry.TenantID,
		EventID:       entry.EventID,
		EventType:     entry.EventType,
		AggregateID:   entry.AggregateID,
		AggregateType: entry.AggregateType,
		Status:        string(entry.Status),
		RetryCount:    entry.RetryCount,
		MaxRetries:    entry.MaxRetries,
		LastError:     entry.LastError,
		NextRetryAt:   entry.NextRetryAt,
		ProcessedAt:   entry.ProcessedAt,
		CreatedAt:     entry.CreatedAt,
		UpdatedAt:     entry.UpdatedAt,
	}
}
