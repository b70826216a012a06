package payment

import (
	"context"
	"time"

	"github.com/craftline/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// PaymentRepository defines the interface for payment persistence
type PaymentRepository interface {
	// FindByID finds a payment by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Payment, error)

	// FindByGatewayRef finds a payment by its webhook idempotency key
	FindByGatewayRef(ctx context.Context, gateway Gateway, gatewayPaymentID string) (*Payment, error)

	// FindByGatewayOrderID finds a payment by the gateway-side order id
	FindByGatewayOrderID(ctx context.Context, gateway Gateway, gatewayOrderID string) (*Payment, error)

	// FindByOrder lists all payments against an order
	FindByOrder(ctx context.Context, tenantID, orderID uuid.UUID) ([]Payment, error)

	// FindAllForTenant lists payments for a tenant
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Payment, int64, error)

	// Save creates or updates a payment
	Save(ctx context.Context, payment *Payment) error

	// SaveWithLock updates a payment with optimistic concurrency control
	SaveWithLock(ctx context.Context, payment *Payment) error
}

// TransactionRepository persists the append-only money movement ledger
type TransactionRepository interface {
	// Save appends ledger rows; existing rows are never updated
	Save(ctx context.Context, transactions ...*Transaction) error

	// FindByPayment lists the ledger rows of one payment, oldest first
	FindByPayment(ctx context.Context, paymentID uuid.UUID) ([]Transaction, error)

	// FindByOrder lists the ledger rows of one order, oldest first
	FindByOrder(ctx context.Context, orderID uuid.UUID) ([]Transaction, error)

	// CountByPaymentAndType counts ledger rows of a given type for a payment
	CountByPaymentAndType(ctx context.Context, paymentID uuid.UUID, txType TransactionType) (int64, error)
}

// WebhookEventRepository persists stored gateway deliveries for the dispatcher
type WebhookEventRepository interface {
	// Save persists a new webhook event
	Save(ctx context.Context, event *WebhookEvent) error

	// FindByID finds a stored delivery by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*WebhookEvent, error)

	// FindByGatewayEventID finds a stored delivery by the gateway's event id
	FindByGatewayEventID(ctx context.Context, gateway Gateway, gatewayEventID string) (*WebhookEvent, error)

	// FindDue returns pending events plus failed events whose retry time has
	// passed, oldest first
	FindDue(ctx context.Context, now time.Time, limit int) ([]*WebhookEvent, error)

	// MarkProcessing atomically claims the given events for processing
	MarkProcessing(ctx context.Context, ids []uuid.UUID) ([]*WebhookEvent, error)

	// Update persists processing state changes
	Update(ctx context.Context, event *WebhookEvent) error

	// FindDead lists dead letter events with pagination
	FindDead(ctx context.Context, page, pageSize int) ([]*WebhookEvent, int64, error)

	// CountByStatus returns the number of events per status
	CountByStatus(ctx context.Context) (map[WebhookEventStatus]int64, error)

	// DeleteProcessedBefore removes processed events older than the cutoff
	DeleteProcessedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
