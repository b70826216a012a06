package shared

import (
	"github.com/google/uuid"
)

// AggregateRoot is an entity that records domain events and carries a
// version for optimistic locking.
type AggregateRoot interface {
	Entity
	GetVersion() int
	IncrementVersion()
	AddDomainEvent(event DomainEvent)
	GetDomainEvents() []DomainEvent
	ClearDomainEvents()
}

// BaseAggregateRoot supplies the version counter and the in-memory event
// buffer. Events accumulate until the repository drains them into the
// outbox on save.
type BaseAggregateRoot struct {
	BaseEntity
	Version      int           `gorm:"not null;default:1"`
	domainEvents []DomainEvent `gorm:"-"`
}

// NewBaseAggregateRoot returns an aggregate at version 1 with no pending
// events.
func NewBaseAggregateRoot() BaseAggregateRoot {
	return BaseAggregateRoot{
		BaseEntity: NewBaseEntity(),
		Version:    1,
	}
}

// GetVersion returns the optimistic locking version.
func (a *BaseAggregateRoot) GetVersion() int { return a.Version }

// IncrementVersion bumps the optimistic locking version.
func (a *BaseAggregateRoot) IncrementVersion() { a.Version++ }

// AddDomainEvent buffers an event for publication.
func (a *BaseAggregateRoot) AddDomainEvent(event DomainEvent) {
	a.domainEvents = append(a.domainEvents, event)
}

// GetDomainEvents returns the buffered events.
func (a *BaseAggregateRoot) GetDomainEvents() []DomainEvent {
	return a.domainEvents
}

// ClearDomainEvents drops the buffered events.
func (a *BaseAggregateRoot) ClearDomainEvents() {
	a.domainEvents = nil
}

// TenantAggregateRoot scopes an aggregate to a tenant and optionally
// records who created it, which data scope filtering keys on.
type TenantAggregateRoot struct {
	BaseAggregateRoot
	TenantID  uuid.UUID  `gorm:"type:uuid;not null;index"`
	CreatedBy *uuid.UUID `gorm:"type:uuid;index"`
}

// NewTenantAggregateRoot returns a fresh aggregate owned by the tenant.
func NewTenantAggregateRoot(tenantID uuid.UUID) TenantAggregateRoot {
	return TenantAggregateRoot{
		BaseAggregateRoot: NewBaseAggregateRoot(),
		TenantID:          tenantID,
	}
}

// NewTenantAggregateRootWithCreator also records the creating user.
func NewTenantAggregateRootWithCreator(tenantID, createdBy uuid.UUID) TenantAggregateRoot {
	root := NewTenantAggregateRoot(tenantID)
	root.CreatedBy = &createdBy
	return root
}

// SetCreatedBy records the creating user.
func (t *TenantAggregateRoot) SetCreatedBy(userID uuid.UUID) {
	t.CreatedBy = &userID
}

// GetCreatedBy returns the creating user, nil when unknown.
func (t *TenantAggregateRoot) GetCreatedBy() *uuid.UUID {
	return t.CreatedBy
}
