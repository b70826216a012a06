package payment

import (
	"context"

	"github.com/craftline/backend/internal/domain/order"
	"github.com/craftline/backend/internal/domain/payment"
	"github.com/craftline/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PaymentService handles checkout-side payment operations: registering a
// gateway collection order and merchant-initiated refunds. Webhook
// reconciliation lives in WebhookProcessorService.
type PaymentService struct {
	txScope        TransactionScope
	gateway        payment.GatewayClient
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewPaymentService creates a new PaymentService
func NewPaymentService(txScope TransactionScope, gateway payment.GatewayClient, logger *zap.Logger) *PaymentService {
	return &PaymentService{
		txScope: txScope,
		gateway: gateway,
		logger:  logger,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *PaymentService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

func (s *PaymentService) publishDomainEvents(ctx context.Context, p *payment.Payment) {
	if s.eventPublisher == nil || p == nil {
		return
	}
	events := p.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	_ = s.eventPublisher.Publish(ctx, events...)
	p.ClearDomainEvents()
}

// CreatePayment registers a gateway collection order for a pending order and
// records the payment attempt. The storefront uses the returned gateway order
// id to open the payment widget; the webhook completes the cycle.
func (s *PaymentService) CreatePayment(ctx context.Context, tenantID, userID uuid.UUID, req CreatePaymentRequest) (*CreatePaymentResponse, error) {
	var (
		created     *payment.Payment
		orderNumber string
	)
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		o, err := repos.OrderRepo().FindByIDForTenant(ctx, tenantID, req.OrderID)
		if err != nil {
			return err
		}
		if o.UserID != userID {
			return shared.ErrNotFound
		}
		if o.PaymentStatus != order.PaymentStatusPending {
			return shared.NewDomainError("INVALID_STATE", "Order is not awaiting payment")
		}

		orderID := o.ID
		created, err = payment.NewPayment(tenantID, &orderID, payment.GatewayRazorpay, o.TotalAmount)
		if err != nil {
			return err
		}
		orderNumber = o.OrderNumber
		return repos.PaymentRepo().Save(ctx, created)
	})
	if err != nil {
		return nil, err
	}

	gatewayOrder, err := s.gateway.CreateOrder(ctx, created.Amount, created.Currency, orderNumber)
	if err != nil {
		s.logger.Error("Gateway order registration failed",
			zap.String("payment_id", created.ID.String()),
			zap.Error(err))
		return nil, err
	}

	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		created.AttachGatewayRefs(gatewayOrder.ID, "", "")
		return repos.PaymentRepo().SaveWithLock(ctx, created)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Payment registered with gateway",
		zap.String("payment_id", created.ID.String()),
		zap.String("gateway_order_id", gatewayOrder.ID))

	return &CreatePaymentResponse{
		Payment:        ToPaymentResponse(created),
		GatewayOrderID: gatewayOrder.ID,
		GatewayKeyHint: string(created.Gateway),
	}, nil
}

// GetPayment retrieves a payment by ID within a tenant
func (s *PaymentService) GetPayment(ctx context.Context, tenantID, paymentID uuid.UUID) (*PaymentResponse, error) {
	var response PaymentResponse
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		p, err := repos.PaymentRepo().FindByID(ctx, paymentID)
		if err != nil {
			return err
		}
		if p.TenantID != tenantID {
			return shared.ErrNotFound
		}
		response = ToPaymentResponse(p)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &response, nil
}

// ListPaymentsByOrder lists all payment attempts against an order
func (s *PaymentService) ListPaymentsByOrder(ctx context.Context, tenantID, orderID uuid.UUID) ([]PaymentResponse, error) {
	var payments []payment.Payment
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		payments, err = repos.PaymentRepo().FindByOrder(ctx, tenantID, orderID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return ToPaymentResponses(payments), nil
}

// ListPayments lists payments for a tenant with pagination
func (s *PaymentService) ListPayments(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]PaymentResponse, int64, error) {
	var (
		payments []payment.Payment
		total    int64
	)
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		payments, total, err = repos.PaymentRepo().FindAllForTenant(ctx, tenantID, filter)
		return err
	})
	if err != nil {
		return nil, 0, err
	}
	return ToPaymentResponses(payments), total, nil
}

// ListTransactions lists the ledger rows of a payment, oldest first
func (s *PaymentService) ListTransactions(ctx context.Context, tenantID, paymentID uuid.UUID) ([]TransactionResponse, error) {
	var transactions []payment.Transaction
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		p, err := repos.PaymentRepo().FindByID(ctx, paymentID)
		if err != nil {
			return err
		}
		if p.TenantID != tenantID {
			return shared.ErrNotFound
		}
		transactions, err = repos.TransactionRepo().FindByPayment(ctx, paymentID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return ToTransactionResponses(transactions), nil
}

// InitiateRefund executes a merchant-side refund through the gateway and
// applies it to the payment. The gateway's refund.processed webhook for a
// merchant-initiated refund is deduplicated by the refund transaction id.
func (s *PaymentService) InitiateRefund(ctx context.Context, tenantID, paymentID uuid.UUID, req RefundRequest) (*PaymentResponse, error) {
	var target *payment.Payment
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		p, err := repos.PaymentRepo().FindByID(ctx, paymentID)
		if err != nil {
			return err
		}
		if p.TenantID != tenantID {
			return shared.ErrNotFound
		}
		if !p.IsPaid() {
			return shared.NewDomainError("INVALID_STATE", "Only captured payments can be refunded")
		}
		if p.GatewayPaymentID == "" {
			return shared.NewDomainError("INVALID_STATE", "Payment has no gateway reference to refund against")
		}
		target = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	refund, err := s.gateway.CreateRefund(ctx, target.GatewayPaymentID, req.Amount)
	if err != nil {
		s.logger.Error("Gateway refund failed",
			zap.String("payment_id", paymentID.String()),
			zap.Error(err))
		return nil, err
	}

	var response PaymentResponse
	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		p, err := repos.PaymentRepo().FindByID(ctx, paymentID)
		if err != nil {
			return err
		}

		full, err := p.ApplyRefund(req.Amount)
		if err != nil {
			return err
		}
		if err := repos.PaymentRepo().SaveWithLock(ctx, p); err != nil {
			return err
		}

		txn := payment.NewTransaction(p, payment.TransactionTypeRefund, req.Amount, refund.ID)
		txn.Note = req.Note
		if err := repos.TransactionRepo().Save(ctx, txn); err != nil {
			return err
		}

		if p.OrderID != nil {
			o, err := repos.OrderRepo().FindByID(ctx, *p.OrderID)
			if err == nil {
				o.MarkRefunded(full)
				if err := repos.OrderRepo().SaveWithLock(ctx, o); err != nil {
					return err
				}
			}
		}

		target = p
		response = ToPaymentResponse(p)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishDomainEvents(ctx, target)

	s.logger.Info("Refund applied",
		zap.String("payment_id", paymentID.String()),
		zap.String("amount", req.Amount.String()),
		zap.String("gateway_refund_id", refund.ID))

	return &response, nil
}
