package inventory

import (
	"context"
	"errors"

	"github.com/craftline/backend/internal/domain/inventory"
	"github.com/craftline/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// StockMovementService is the application surface for raw material and
// packaged product balances. Every balance change goes through a domain
// ApplyMovement call inside a transaction scope, so the audit row and the
// new balance commit together.
type StockMovementService struct {
	txScope        TransactionScope
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewStockMovementService creates a new StockMovementService
func NewStockMovementService(txScope TransactionScope, logger *zap.Logger) *StockMovementService {
	return &StockMovementService{
		txScope: txScope,
		logger:  logger,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *StockMovementService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

func (s *StockMovementService) publishDomainEvents(ctx context.Context, aggregate interface {
	GetDomainEvents() []shared.DomainEvent
	ClearDomainEvents()
}) {
	if s.eventPublisher == nil {
		return
	}
	events := aggregate.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	_ = s.eventPublisher.Publish(ctx, events...)
	aggregate.ClearDomainEvents()
}

func parseDirection(raw string) (inventory.Direction, error) {
	switch raw {
	case "in":
		return inventory.DirectionIn, nil
	case "out":
		return inventory.DirectionOut, nil
	}
	return 0, shared.NewDomainError("INVALID_INPUT", "Direction must be in or out")
}

// CreateItem registers a new raw material
func (s *StockMovementService) CreateItem(ctx context.Context, tenantID uuid.UUID, req CreateItemRequest) (*ItemResponse, error) {
	item, err := inventory.NewInventoryItem(tenantID, req.Code, req.Name, inventory.UnitOfMeasure(req.Unit))
	if err != nil {
		return nil, err
	}
	if err := item.SetLevels(req.MinStockLevel, req.ReorderLevel); err != nil {
		return nil, err
	}
	if err := item.SetUnitCost(req.UnitCost); err != nil {
		return nil, err
	}

	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		existing, err := repos.ItemRepo().FindByCode(ctx, tenantID, item.Code)
		if err != nil && !errors.Is(err, shared.ErrNotFound) {
			return err
		}
		if existing != nil {
			return shared.NewDomainError("ALREADY_EXISTS", "An item with this code already exists")
		}
		return repos.ItemRepo().Save(ctx, item)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Inventory item created",
		zap.String("item_id", item.ID.String()),
		zap.String("code", item.Code))

	response := ToItemResponse(item)
	return &response, nil
}

// GetItem retrieves a raw material by ID
func (s *StockMovementService) GetItem(ctx context.Context, tenantID, itemID uuid.UUID) (*ItemResponse, error) {
	var response ItemResponse
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		item, err := repos.ItemRepo().FindByIDForTenant(ctx, tenantID, itemID)
		if err != nil {
			return err
		}
		response = ToItemResponse(item)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &response, nil
}

// ListItems retrieves raw materials with filtering and pagination
func (s *StockMovementService) ListItems(ctx context.Context, tenantID uuid.UUID, filter ItemListFilter) ([]ItemResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "code"
	}
	if filter.OrderDir == "" {
		filter.OrderDir = "asc"
	}

	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Search:   filter.Search,
		Filters:  make(map[string]interface{}),
	}
	if filter.OnlyLow {
		domainFilter.Filters["below_reorder"] = true
	}

	var (
		items []inventory.InventoryItem
		total int64
	)
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		items, err = repos.ItemRepo().FindAllForTenant(ctx, tenantID, domainFilter)
		if err != nil {
			return err
		}
		total, err = repos.ItemRepo().CountForTenant(ctx, tenantID, domainFilter)
		return err
	})
	if err != nil {
		return nil, 0, err
	}
	return ToItemResponses(items), total, nil
}

// UpdateLevels changes the alerting thresholds of a raw material
func (s *StockMovementService) UpdateLevels(ctx context.Context, tenantID, itemID uuid.UUID, req UpdateLevelsRequest) (*ItemResponse, error) {
	var response ItemResponse
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		item, err := repos.ItemRepo().FindByIDForTenant(ctx, tenantID, itemID)
		if err != nil {
			return err
		}
		if err := item.SetLevels(req.MinStockLevel, req.ReorderLevel); err != nil {
			return err
		}
		if err := repos.ItemRepo().SaveWithLock(ctx, item); err != nil {
			return err
		}
		response = ToItemResponse(item)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &response, nil
}

// DeactivateItem soft-deletes a raw material while preserving its history
func (s *StockMovementService) DeactivateItem(ctx context.Context, tenantID, itemID uuid.UUID) error {
	return s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		item, err := repos.ItemRepo().FindByIDForTenant(ctx, tenantID, itemID)
		if err != nil {
			return err
		}
		item.Deactivate()
		return repos.ItemRepo().SaveWithLock(ctx, item)
	})
}

// AdjustStock applies a manual correction to a raw material balance.
// The balance update and its audit row commit in one transaction; a
// concurrent writer surfaces as a concurrency conflict for the caller
// to retry.
func (s *StockMovementService) AdjustStock(ctx context.Context, tenantID uuid.UUID, req AdjustStockRequest) (*ItemResponse, error) {
	direction, err := parseDirection(req.Direction)
	if err != nil {
		return nil, err
	}

	var (
		item     *inventory.InventoryItem
		response ItemResponse
	)
	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		item, err = repos.ItemRepo().FindByIDForTenant(ctx, tenantID, req.ItemID)
		if err != nil {
			return err
		}

		movement, err := item.ApplyMovement(inventory.MovementTypeAdjustment, direction, req.Quantity, inventory.MovementRef{
			Type: inventory.ReferenceTypeAdjustment,
			ID:   uuid.New(),
			Note: req.Reason,
		})
		if err != nil {
			return err
		}

		if err := repos.ItemRepo().SaveWithLock(ctx, item); err != nil {
			return err
		}
		if err := repos.MovementRepo().Save(ctx, movement); err != nil {
			return err
		}
		response = ToItemResponse(item)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishDomainEvents(ctx, item)

	s.logger.Info("Stock adjusted",
		zap.String("item_id", req.ItemID.String()),
		zap.String("direction", req.Direction),
		zap.String("quantity", req.Quantity.String()))

	return &response, nil
}

// ListMovements returns the movement history of a raw material, newest first
func (s *StockMovementService) ListMovements(ctx context.Context, tenantID, itemID uuid.UUID, filter shared.Filter) ([]MovementResponse, int64, error) {
	var (
		movements []inventory.StockMovement
		total     int64
	)
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		if _, err := repos.ItemRepo().FindByIDForTenant(ctx, tenantID, itemID); err != nil {
			return err
		}
		var err error
		movements, total, err = repos.MovementRepo().FindByItem(ctx, tenantID, itemID, filter)
		return err
	})
	if err != nil {
		return nil, 0, err
	}
	return ToMovementResponses(movements), total, nil
}

// LowStockReport lists active raw materials at or below their reorder level
func (s *StockMovementService) LowStockReport(ctx context.Context, tenantID uuid.UUID) ([]ItemResponse, error) {
	var items []inventory.InventoryItem
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		items, err = repos.ItemRepo().FindBelowReorderLevel(ctx, tenantID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return ToItemResponses(items), nil
}

// CheckConsistency verifies that an item's balance equals the signed sum of
// its movement history. Audit rows are only ever written alongside the
// balance change that produced them, so a mismatch means data corruption.
func (s *StockMovementService) CheckConsistency(ctx context.Context, tenantID, itemID uuid.UUID) (*ConsistencyCheckResult, error) {
	var result ConsistencyCheckResult
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		item, err := repos.ItemRepo().FindByIDForTenant(ctx, tenantID, itemID)
		if err != nil {
			return err
		}
		sum, err := repos.MovementRepo().SumByItem(ctx, tenantID, itemID)
		if err != nil {
			return err
		}
		result = ConsistencyCheckResult{
			InventoryItemID: item.ID,
			Code:            item.Code,
			CurrentStock:    item.CurrentStock,
			MovementSum:     sum,
			Consistent:      item.CurrentStock.Equal(sum),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if !result.Consistent {
		s.logger.Error("Inventory balance diverges from movement history",
			zap.String("item_id", itemID.String()),
			zap.String("current_stock", result.CurrentStock.String()),
			zap.String("movement_sum", result.MovementSum.String()))
	}

	return &result, nil
}

// CreatePackagedProduct registers a new packaged product
func (s *StockMovementService) CreatePackagedProduct(ctx context.Context, tenantID uuid.UUID, req CreatePackagedProductRequest) (*PackagedProductResponse, error) {
	product, err := inventory.NewPackagedProduct(tenantID, req.ProductID, req.Name, inventory.PackagingSize(req.PackagingSize))
	if err != nil {
		return nil, err
	}
	product.ReorderLevel = req.ReorderLevel

	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		return repos.PackagedProductRepo().Save(ctx, product)
	})
	if err != nil {
		return nil, err
	}

	response := ToPackagedProductResponse(product)
	return &response, nil
}

// GetPackagedProduct retrieves a packaged product by ID
func (s *StockMovementService) GetPackagedProduct(ctx context.Context, tenantID, productID uuid.UUID) (*PackagedProductResponse, error) {
	var response PackagedProductResponse
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		product, err := repos.PackagedProductRepo().FindByIDForTenant(ctx, tenantID, productID)
		if err != nil {
			return err
		}
		response = ToPackagedProductResponse(product)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &response, nil
}

// ListPackagedProducts lists packaged products for a tenant
func (s *StockMovementService) ListPackagedProducts(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]PackagedProductResponse, error) {
	var products []inventory.PackagedProduct
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		products, err = repos.PackagedProductRepo().FindAllForTenant(ctx, tenantID, filter)
		return err
	})
	if err != nil {
		return nil, err
	}
	return ToPackagedProductResponses(products), nil
}

// AdjustPackagedStock applies a manual correction to a packaged product balance
func (s *StockMovementService) AdjustPackagedStock(ctx context.Context, tenantID uuid.UUID, req AdjustPackagedStockRequest) (*PackagedProductResponse, error) {
	direction, err := parseDirection(req.Direction)
	if err != nil {
		return nil, err
	}

	var response PackagedProductResponse
	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		product, err := repos.PackagedProductRepo().FindByIDForTenant(ctx, tenantID, req.PackagedProductID)
		if err != nil {
			return err
		}

		movement, err := product.ApplyMovement(inventory.MovementTypeAdjustment, direction, req.Quantity, inventory.MovementRef{
			Type: inventory.ReferenceTypeAdjustment,
			ID:   uuid.New(),
			Note: req.Reason,
		})
		if err != nil {
			return err
		}

		if err := repos.PackagedProductRepo().SaveWithLock(ctx, product); err != nil {
			return err
		}
		if err := repos.PackagedMovementRepo().Save(ctx, movement); err != nil {
			return err
		}
		response = ToPackagedProductResponse(product)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Packaged stock adjusted",
		zap.String("packaged_product_id", req.PackagedProductID.String()),
		zap.String("direction", req.Direction),
		zap.Int("quantity", req.Quantity))

	return &response, nil
}

// ListPackagedMovements returns the movement history of a packaged product
func (s *StockMovementService) ListPackagedMovements(ctx context.Context, tenantID, productID uuid.UUID, filter shared.Filter) ([]PackagedMovementResponse, int64, error) {
	var (
		movements []inventory.PackagedProductMovement
		total     int64
	)
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		if _, err := repos.PackagedProductRepo().FindByIDForTenant(ctx, tenantID, productID); err != nil {
			return err
		}
		var err error
		movements, total, err = repos.PackagedMovementRepo().FindByProduct(ctx, tenantID, productID, filter)
		return err
	})
	if err != nil {
		return nil, 0, err
	}
	return ToPackagedMovementResponses(movements), total, nil
}
