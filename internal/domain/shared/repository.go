package shared

import (
	"context"

	"github.com/google/uuid"
)

// Repository is the generic persistence contract shared by every
// aggregate repository.
type Repository[T any] interface {
	FindByID(ctx context.Context, id uuid.UUID) (*T, error)
	FindAll(ctx context.Context, filter Filter) ([]T, error)
	Save(ctx context.Context, entity *T) error
	Delete(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context, filter Filter) (int64, error)
}

// TenantRepository adds tenant-scoped lookups on top of Repository.
type TenantRepository[T any] interface {
	Repository[T]
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*T, error)
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter Filter) ([]T, error)
}

// Filter carries list query options: pagination, ordering, free-text
// search, and arbitrary column filters.
type Filter struct {
	Page     int
	PageSize int
	OrderBy  string
	OrderDir string
	Search   string
	Filters  map[string]interface{}
}

// DefaultFilter returns page 1 of 20, newest first.
func DefaultFilter() Filter {
	return Filter{
		Page:     1,
		PageSize: 20,
		OrderBy:  "created_at",
		OrderDir: "desc",
		Filters:  make(map[string]interface{}),
	}
}

// Paginated is one page of results plus the totals needed to render
// pagination controls.
type Paginated[T any] struct {
	Items      []T   `json:"items"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalPages int   `json:"total_pages"`
}

// NewPaginated wraps items with pagination metadata, rounding the page
// count up for a partial last page.
func NewPaginated[T any](items []T, total int64, page, pageSize int) Paginated[T] {
	totalPages := int(total) / pageSize
	if int(total)%pageSize > 0 {
		totalPages++
	}
	return Paginated[T]{
		Items:      items,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}
}
