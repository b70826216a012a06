package order

import (
	"context"
	"errors"

	"github.com/craftline/backend/internal/domain/order"
	"github.com/craftline/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// OrderService handles cart and order lifecycle operations. Checkout reserves
// catalog stock, snapshots prices and clears the cart inside one transaction,
// so a failed reservation leaves no partial order behind.
type OrderService struct {
	txScope        TransactionScope
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewOrderService creates a new OrderService
func NewOrderService(txScope TransactionScope, logger *zap.Logger) *OrderService {
	return &OrderService{
		txScope: txScope,
		logger:  logger,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *OrderService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

func (s *OrderService) publishDomainEvents(ctx context.Context, o *order.Order) {
	if s.eventPublisher == nil || o == nil {
		return
	}
	events := o.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	_ = s.eventPublisher.Publish(ctx, events...)
	o.ClearDomainEvents()
}

// GetCart returns the user's cart with resolved product names and prices.
// A user without a cart gets an empty one.
func (s *OrderService) GetCart(ctx context.Context, tenantID, userID uuid.UUID) (*CartResponse, error) {
	var response CartResponse
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		cart, err := repos.CartRepo().FindByUser(ctx, tenantID, userID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				response = CartResponse{Subtotal: decimal.Zero, Items: []CartItemResponse{}}
				return nil
			}
			return err
		}

		built, err := s.buildCartResponse(ctx, repos, tenantID, cart)
		if err != nil {
			return err
		}
		response = *built
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &response, nil
}

func (s *OrderService) buildCartResponse(ctx context.Context, repos TransactionalRepositories, tenantID uuid.UUID, cart *order.Cart) (*CartResponse, error) {
	response := CartResponse{
		ID:       cart.ID,
		Items:    make([]CartItemResponse, 0, len(cart.Items)),
		Subtotal: decimal.Zero,
	}
	for _, item := range cart.Items {
		product, err := repos.ProductRepo().FindByIDForTenant(ctx, tenantID, item.ProductID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				// Product removed from the catalog after it was carted
				continue
			}
			return nil, err
		}
		lineTotal := product.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))
		response.Items = append(response.Items, CartItemResponse{
			ProductID:   product.ID,
			ProductName: product.Name,
			Quantity:    item.Quantity,
			UnitPrice:   product.Price,
			LineTotal:   lineTotal,
			InStock:     product.IsActive() && product.StockQuantity >= item.Quantity,
		})
		response.Subtotal = response.Subtotal.Add(lineTotal)
	}
	return &response, nil
}

// AddToCart adds a product to the user's cart, creating the cart on first use
func (s *OrderService) AddToCart(ctx context.Context, tenantID, userID uuid.UUID, req AddToCartRequest) (*CartResponse, error) {
	var response CartResponse
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		product, err := repos.ProductRepo().FindByIDForTenant(ctx, tenantID, req.ProductID)
		if err != nil {
			return err
		}
		if !product.IsActive() {
			return shared.NewDomainError("INVALID_STATE", "Product is not available for purchase")
		}

		cart, err := repos.CartRepo().FindByUser(ctx, tenantID, userID)
		if err != nil {
			if !errors.Is(err, shared.ErrNotFound) {
				return err
			}
			cart, err = order.NewCart(tenantID, userID)
			if err != nil {
				return err
			}
		}

		if err := cart.AddItem(req.ProductID, req.Quantity); err != nil {
			return err
		}
		if err := repos.CartRepo().Save(ctx, cart); err != nil {
			return err
		}

		built, err := s.buildCartResponse(ctx, repos, tenantID, cart)
		if err != nil {
			return err
		}
		response = *built
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &response, nil
}

// UpdateCartItem changes a cart line quantity; zero removes the line
func (s *OrderService) UpdateCartItem(ctx context.Context, tenantID, userID uuid.UUID, req UpdateCartItemRequest) (*CartResponse, error) {
	var response CartResponse
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		cart, err := repos.CartRepo().FindByUser(ctx, tenantID, userID)
		if err != nil {
			return err
		}
		if err := cart.UpdateItemQuantity(req.ProductID, req.Quantity); err != nil {
			return err
		}
		if err := repos.CartRepo().Save(ctx, cart); err != nil {
			return err
		}

		built, err := s.buildCartResponse(ctx, repos, tenantID, cart)
		if err != nil {
			return err
		}
		response = *built
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &response, nil
}

// CreateOrder converts the user's cart into an order. Inside one transaction
// it re-reads catalog prices, reserves stock per line, snapshots the priced
// lines into the order and clears the cart. Any failure rolls everything back.
func (s *OrderService) CreateOrder(ctx context.Context, tenantID, userID uuid.UUID, req CreateOrderRequest) (*OrderResponse, error) {
	var created *order.Order
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		cart, err := repos.CartRepo().FindByUser(ctx, tenantID, userID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return shared.NewDomainError("INVALID_INPUT", "Cannot create an order from an empty cart")
			}
			return err
		}
		if cart.IsEmpty() {
			return shared.NewDomainError("INVALID_INPUT", "Cannot create an order from an empty cart")
		}

		address, err := repos.AddressRepo().FindByID(ctx, req.ShippingAddressID)
		if err != nil {
			return err
		}
		if address.TenantID != tenantID || !address.BelongsTo(userID) {
			return shared.ErrForbidden
		}

		shippingMethod, err := repos.ShippingMethodRepo().FindByIDForTenant(ctx, tenantID, req.ShippingMethodID)
		if err != nil {
			return err
		}
		if !shippingMethod.IsActive {
			return shared.NewDomainError("INVALID_STATE", "Shipping method is not available")
		}

		paymentMethod, err := repos.PaymentMethodRepo().FindByIDForTenant(ctx, tenantID, req.PaymentMethodID)
		if err != nil {
			return err
		}
		if !paymentMethod.IsActive {
			return shared.NewDomainError("INVALID_STATE", "Payment method is not available")
		}

		lines := make([]order.LineSpec, 0, len(cart.Items))
		for _, item := range cart.Items {
			product, err := repos.ProductRepo().FindByIDForTenant(ctx, tenantID, item.ProductID)
			if err != nil {
				return err
			}
			if err := product.ReserveStock(item.Quantity); err != nil {
				return err
			}
			if err := repos.ProductRepo().SaveWithLock(ctx, product); err != nil {
				return err
			}
			lines = append(lines, order.LineSpec{
				ProductID:   product.ID,
				ProductName: product.Name,
				Quantity:    item.Quantity,
				UnitPrice:   product.Price,
				TaxRate:     product.TaxRate,
			})
		}

		created, err = order.NewOrder(tenantID, userID, lines,
			req.ShippingAddressID, req.ShippingMethodID, req.PaymentMethodID,
			shippingMethod.Amount)
		if err != nil {
			return err
		}
		if err := repos.OrderRepo().Save(ctx, created); err != nil {
			return err
		}

		cart.Clear()
		return repos.CartRepo().Save(ctx, cart)
	})
	if err != nil {
		return nil, err
	}

	s.publishDomainEvents(ctx, created)

	s.logger.Info("Order created",
		zap.String("order_number", created.OrderNumber),
		zap.String("user_id", userID.String()),
		zap.String("total", created.TotalAmount.String()))

	response := ToOrderResponse(created)
	return &response, nil
}

// GetOrder retrieves an order owned by the given user
func (s *OrderService) GetOrder(ctx context.Context, tenantID, userID, orderID uuid.UUID) (*OrderResponse, error) {
	var response OrderResponse
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		o, err := repos.OrderRepo().FindByIDForTenant(ctx, tenantID, orderID)
		if err != nil {
			return err
		}
		if o.UserID != userID {
			return shared.ErrNotFound
		}
		response = ToOrderResponse(o)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &response, nil
}

// GetOrderByNumber retrieves an order by its human-facing number (admin)
func (s *OrderService) GetOrderByNumber(ctx context.Context, tenantID uuid.UUID, orderNumber string) (*OrderResponse, error) {
	var response OrderResponse
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		o, err := repos.OrderRepo().FindByOrderNumber(ctx, tenantID, orderNumber)
		if err != nil {
			return err
		}
		response = ToOrderResponse(o)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &response, nil
}

// ListUserOrders lists a user's orders, newest first
func (s *OrderService) ListUserOrders(ctx context.Context, tenantID, userID uuid.UUID, filter shared.Filter) ([]OrderResponse, int64, error) {
	var (
		orders []order.Order
		total  int64
	)
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		orders, total, err = repos.OrderRepo().FindByUser(ctx, tenantID, userID, filter)
		return err
	})
	if err != nil {
		return nil, 0, err
	}
	return ToOrderResponses(orders), total, nil
}

// ListOrders lists all orders for a tenant (admin)
func (s *OrderService) ListOrders(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]OrderResponse, int64, error) {
	var (
		orders []order.Order
		total  int64
	)
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		orders, total, err = repos.OrderRepo().FindAllForTenant(ctx, tenantID, filter)
		return err
	})
	if err != nil {
		return nil, 0, err
	}
	return ToOrderResponses(orders), total, nil
}

// UpdateOrderStatus moves an order along the fulfilment transitions (admin).
// Cancelling through this path restores the reserved catalog stock.
func (s *OrderService) UpdateOrderStatus(ctx context.Context, tenantID, orderID uuid.UUID, req UpdateOrderStatusRequest) (*OrderResponse, error) {
	target := order.OrderStatus(req.Status)
	var updated *order.Order
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		o, err := repos.OrderRepo().FindByIDForTenant(ctx, tenantID, orderID)
		if err != nil {
			return err
		}

		if target == order.OrderStatusCancelled {
			if err := s.cancelWithStockRestore(ctx, repos, tenantID, o); err != nil {
				return err
			}
		} else if err := o.UpdateStatus(target); err != nil {
			return err
		}

		if err := repos.OrderRepo().SaveWithLock(ctx, o); err != nil {
			return err
		}
		updated = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishDomainEvents(ctx, updated)

	response := ToOrderResponse(updated)
	return &response, nil
}

// CancelOrder cancels a user's own order and restores the reserved stock
func (s *OrderService) CancelOrder(ctx context.Context, tenantID, userID, orderID uuid.UUID) (*OrderResponse, error) {
	var cancelled *order.Order
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		o, err := repos.OrderRepo().FindByIDForTenant(ctx, tenantID, orderID)
		if err != nil {
			return err
		}
		if o.UserID != userID {
			return shared.ErrNotFound
		}

		if err := s.cancelWithStockRestore(ctx, repos, tenantID, o); err != nil {
			return err
		}
		if err := repos.OrderRepo().SaveWithLock(ctx, o); err != nil {
			return err
		}
		cancelled = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishDomainEvents(ctx, cancelled)

	s.logger.Info("Order cancelled",
		zap.String("order_number", cancelled.OrderNumber),
		zap.String("user_id", userID.String()))

	response := ToOrderResponse(cancelled)
	return &response, nil
}

// cancelWithStockRestore cancels the order and returns each line's quantity
// to the catalog. Must run inside the caller's transaction.
func (s *OrderService) cancelWithStockRestore(ctx context.Context, repos TransactionalRepositories, tenantID uuid.UUID, o *order.Order) error {
	if err := o.Cancel(); err != nil {
		return err
	}
	for productID, quantity := range o.TotalQuantityByProduct() {
		product, err := repos.ProductRepo().FindByIDForTenant(ctx, tenantID, productID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				// Product deleted since ordering; nothing to restore
				continue
			}
			return err
		}
		if err := product.ReleaseStock(quantity); err != nil {
			return err
		}
		if err := repos.ProductRepo().SaveWithLock(ctx, product); err != nil {
			return err
		}
	}
	return nil
}

// CreateAddress adds a shipping address for a user
func (s *OrderService) CreateAddress(ctx context.Context, tenantID, userID uuid.UUID, req CreateAddressRequest) (*AddressResponse, error) {
	address, err := order.NewAddress(tenantID, userID, req.Recipient, req.Phone, req.Line1, req.City, req.State, req.PostalCode)
	if err != nil {
		return nil, err
	}
	address.Line2 = req.Line2
	if req.IsDefault {
		address.MarkDefault()
	}

	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		return repos.AddressRepo().Save(ctx, address)
	})
	if err != nil {
		return nil, err
	}

	response := ToAddressResponse(address)
	return &response, nil
}

// ListAddresses lists a user's shipping addresses
func (s *OrderService) ListAddresses(ctx context.Context, tenantID, userID uuid.UUID) ([]AddressResponse, error) {
	var addresses []order.Address
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		addresses, err = repos.AddressRepo().FindByUser(ctx, tenantID, userID)
		return err
	})
	if err != nil {
		return nil, err
	}
	responses := make([]AddressResponse, len(addresses))
	for i := range addresses {
		responses[i] = ToAddressResponse(&addresses[i])
	}
	return responses, nil
}
