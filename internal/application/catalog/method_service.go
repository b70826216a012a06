package catalog

import (
	"context"

	"github.com/craftline/backend/internal/domain/catalog"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MethodService manages the checkout options: shipping methods and
// payment methods
type MethodService struct {
	txScope TransactionScope
	logger  *zap.Logger
}

// NewMethodService creates a new method service
func NewMethodService(txScope TransactionScope, logger *zap.Logger) *MethodService {
	return &MethodService{
		txScope: txScope,
		logger:  logger,
	}
}

// CreateShippingMethod adds a delivery option with a flat fee
func (s *MethodService) CreateShippingMethod(ctx context.Context, tenantID uuid.UUID, req CreateShippingMethodRequest) (*ShippingMethodResponse, error) {
	method, err := catalog.NewShippingMethod(tenantID, req.Name, req.Amount, req.DeliveryDays)
	if err != nil {
		return nil, err
	}
	method.Description = req.Description

	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		return repos.ShippingMethodRepo().Save(ctx, method)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Shipping method created",
		zap.String("name", method.Name),
		zap.String("amount", method.Amount.String()))

	response := ToShippingMethodResponse(method)
	return &response, nil
}

// ListShippingMethods returns the active delivery options
func (s *MethodService) ListShippingMethods(ctx context.Context, tenantID uuid.UUID) ([]ShippingMethodResponse, error) {
	var methods []catalog.ShippingMethod
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		methods, err = repos.ShippingMethodRepo().FindActiveForTenant(ctx, tenantID)
		return err
	})
	if err != nil {
		return nil, err
	}

	responses := make([]ShippingMethodResponse, len(methods))
	for i := range methods {
		responses[i] = ToShippingMethodResponse(&methods[i])
	}
	return responses, nil
}

// DeactivateShippingMethod removes a delivery option from checkout
func (s *MethodService) DeactivateShippingMethod(ctx context.Context, tenantID, methodID uuid.UUID) error {
	return s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		method, err := repos.ShippingMethodRepo().FindByIDForTenant(ctx, tenantID, methodID)
		if err != nil {
			return err
		}
		method.Deactivate()
		return repos.ShippingMethodRepo().Save(ctx, method)
	})
}

// ActivateShippingMethod restores a delivery option
func (s *MethodService) ActivateShippingMethod(ctx context.Context, tenantID, methodID uuid.UUID) error {
	return s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		method, err := repos.ShippingMethodRepo().FindByIDForTenant(ctx, tenantID, methodID)
		if err != nil {
			return err
		}
		method.Activate()
		return repos.ShippingMethodRepo().Save(ctx, method)
	})
}

// CreatePaymentMethod adds a payment option. The gateway code is the key
// payment reconciliation matches webhook events against.
func (s *MethodService) CreatePaymentMethod(ctx context.Context, tenantID uuid.UUID, req CreatePaymentMethodRequest) (*PaymentMethodResponse, error) {
	method, err := catalog.NewPaymentMethod(tenantID, req.Name, req.GatewayCode)
	if err != nil {
		return nil, err
	}

	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		return repos.PaymentMethodRepo().Save(ctx, method)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Payment method created",
		zap.String("name", method.Name),
		zap.String("gateway_code", method.GatewayCode))

	response := ToPaymentMethodResponse(method)
	return &response, nil
}

// ListPaymentMethods returns the active payment options
func (s *MethodService) ListPaymentMethods(ctx context.Context, tenantID uuid.UUID) ([]PaymentMethodResponse, error) {
	var methods []catalog.PaymentMethod
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		methods, err = repos.PaymentMethodRepo().FindActiveForTenant(ctx, tenantID)
		return err
	})
	if err != nil {
		return nil, err
	}

	responses := make([]PaymentMethodResponse, len(methods))
	for i := range methods {
		responses[i] = ToPaymentMethodResponse(&methods[i])
	}
	return responses, nil
}

// DeactivatePaymentMethod removes a payment option from checkout
func (s *MethodService) DeactivatePaymentMethod(ctx context.Context, tenantID, methodID uuid.UUID) error {
	return s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		method, err := repos.PaymentMethodRepo().FindByIDForTenant(ctx, tenantID, methodID)
		if err != nil {
			return err
		}
		method.Deactivate()
		return repos.PaymentMethodRepo().Save(ctx, method)
	})
}

// ActivatePaymentMethod restores a payment option
func (s *MethodService) ActivatePaymentMethod(ctx context.Context, tenantID, methodID uuid.UUID) error {
	return s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		method, err := repos.PaymentMethodRepo().FindByIDForTenant(ctx, tenantID, methodID)
		if err != nil {
			return err
		}
		method.Activate()
		return repos.PaymentMethodRepo().Save(ctx, method)
	})
}
