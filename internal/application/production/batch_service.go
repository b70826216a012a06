package production

import (
	"context"

	"github.com/craftline/backend/internal/domain/inventory"
	"github.com/craftline/backend/internal/domain/production"
	"github.com/craftline/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// BatchService manages production batches: planning against the active BOM,
// drawing raw materials at start, booking packaged output at completion and
// reversing consumption on cancellation.
type BatchService struct {
	txScope        TransactionScope
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewBatchService creates a new batch service
func NewBatchService(txScope TransactionScope, logger *zap.Logger) *BatchService {
	return &BatchService{
		txScope: txScope,
		logger:  logger,
	}
}

// SetEventPublisher sets the event publisher for domain events
func (s *BatchService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

func (s *BatchService) publishDomainEvents(ctx context.Context, aggregate interface {
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

// CreateBatch plans a batch against the product's active BOM revision.
// Every packaging line must name an active packaged variant of the product.
func (s *BatchService) CreateBatch(ctx context.Context, tenantID uuid.UUID, req CreateBatchRequest) (*BatchResponse, error) {
	var batch *production.ProductionBatch

	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		bom, err := repos.BOMRepo().FindActiveByProduct(ctx, tenantID, req.ProductID)
		if err != nil {
			return err
		}

		specs := make([]production.PackagingSpec, 0, len(req.Packaging))
		for _, line := range req.Packaging {
			packaged, err := repos.PackagedProductRepo().FindByIDForTenant(ctx, tenantID, line.PackagedProductID)
			if err != nil {
				return err
			}
			if packaged.ProductID != req.ProductID {
				return shared.NewDomainError("INVALID_INPUT", "Packaged product belongs to a different product")
			}
			if !packaged.IsActive {
				return shared.NewDomainError("INVALID_INPUT", "Cannot plan output into a deactivated packaged product")
			}
			specs = append(specs, production.PackagingSpec{
				PackagedProductID: line.PackagedProductID,
				PlannedUnits:      line.PlannedUnits,
			})
		}

		batch, err = production.NewProductionBatch(tenantID, bom, req.PlannedQuantity, specs)
		if err != nil {
			return err
		}
		return repos.BatchRepo().Save(ctx, batch)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Production batch planned",
		zap.String("batch_number", batch.Number),
		zap.String("product_id", batch.ProductID.String()),
		zap.Int("planned_quantity", batch.PlannedQuantity))

	response := ToBatchResponse(batch)
	return &response, nil
}

// GetBatch returns a batch with its materials and packaging lines
func (s *BatchService) GetBatch(ctx context.Context, tenantID, batchID uuid.UUID) (*BatchResponse, error) {
	var batch *production.ProductionBatch
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		batch, err = repos.BatchRepo().FindByIDForTenant(ctx, tenantID, batchID)
		return err
	})
	if err != nil {
		return nil, err
	}
	response := ToBatchResponse(batch)
	return &response, nil
}

// ListBatches returns the tenant's production batches
func (s *BatchService) ListBatches(ctx context.Context, tenantID uuid.UUID, filter BatchListFilter) ([]BatchResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "created_at"
	}
	if filter.OrderDir == "" {
		filter.OrderDir = "desc"
	}

	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Search:   filter.Search,
		Filters:  make(map[string]interface{}),
	}
	if filter.Status != "" {
		domainFilter.Filters["status"] = filter.Status
	}

	var (
		batches []production.ProductionBatch
		total   int64
	)
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		batches, total, err = repos.BatchRepo().FindAllForTenant(ctx, tenantID, domainFilter)
		return err
	})
	if err != nil {
		return nil, 0, err
	}
	return ToBatchResponses(batches), total, nil
}

// MaterialRequirements previews the raw material need of a planned quantity
// against current stock, without touching anything
func (s *BatchService) MaterialRequirements(ctx context.Context, tenantID, productID uuid.UUID, plannedQuantity int) ([]MaterialRequirementResponse, error) {
	var out []MaterialRequirementResponse
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		bom, err := repos.BOMRepo().FindActiveByProduct(ctx, tenantID, productID)
		if err != nil {
			return err
		}
		requirements, err := bom.RequirementsFor(plannedQuantity)
		if err != nil {
			return err
		}
		for _, req := range requirements {
			item, err := repos.ItemRepo().FindByIDForTenant(ctx, tenantID, req.InventoryItemID)
			if err != nil {
				return err
			}
			shortfall := req.RequiredQuantity.Sub(item.CurrentStock)
			if shortfall.IsNegative() {
				shortfall = decimal.Zero
			}
			out = append(out, MaterialRequirementResponse{
				InventoryItemID:  item.ID,
				Code:             item.Code,
				Name:             item.Name,
				RequiredQuantity: req.RequiredQuantity,
				AvailableStock:   item.CurrentStock,
				Shortfall:        shortfall,
				Sufficient:       item.CurrentStock.GreaterThanOrEqual(req.RequiredQuantity),
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// StartBatch draws every required raw material from stock and moves the
// batch into progress. Sufficiency of all materials is checked before any
// stock is touched, so a shortage on the last line draws nothing.
func (s *BatchService) StartBatch(ctx context.Context, tenantID, batchID uuid.UUID) (*BatchResponse, error) {
	var (
		batch        *production.ProductionBatch
		touchedItems []*inventory.InventoryItem
	)

	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		batch, err = repos.BatchRepo().FindByIDForTenant(ctx, tenantID, batchID)
		if err != nil {
			return err
		}
		if batch.Status != production.BatchStatusPlanned {
			return shared.NewDomainError("INVALID_STATE", "Only planned batches can be started")
		}

		items := make([]*inventory.InventoryItem, len(batch.Materials))
		for i, material := range batch.Materials {
			item, err := repos.ItemRepo().FindByIDForTenant(ctx, tenantID, material.InventoryItemID)
			if err != nil {
				return err
			}
			if item.CurrentStock.LessThan(material.RequiredQuantity) {
				return shared.NewDomainError("INSUFFICIENT_STOCK",
					"Insufficient stock of "+item.Code+" to start the batch")
			}
			items[i] = item
		}

		ref := inventory.MovementRef{
			Type: inventory.ReferenceTypeProductionBatch,
			ID:   batch.ID,
			Note: batch.Number,
		}
		for i, material := range batch.Materials {
			item := items[i]
			movement, err := item.ApplyMovement(inventory.MovementTypeProduction, inventory.DirectionOut, material.RequiredQuantity, ref)
			if err != nil {
				return err
			}
			if err := repos.ItemRepo().SaveWithLock(ctx, item); err != nil {
				return err
			}
			if err := repos.MovementRepo().Save(ctx, movement); err != nil {
				return err
			}
			touchedItems = append(touchedItems, item)
		}

		if err := batch.Start(); err != nil {
			return err
		}
		return repos.BatchRepo().SaveWithLock(ctx, batch)
	})
	if err != nil {
		return nil, err
	}

	for _, item := range touchedItems {
		s.publishDomainEvents(ctx, item)
	}

	s.logger.Info("Production batch started",
		zap.String("batch_number", batch.Number),
		zap.Int("materials", len(batch.Materials)))

	response := ToBatchResponse(batch)
	return &response, nil
}

// CompleteBatch finishes the batch with the actually produced quantity and
// books the packaged output. Partial production scales each packaging line
// down by floor division; the remainder stays unbooked as bulk product.
func (s *BatchService) CompleteBatch(ctx context.Context, tenantID, batchID uuid.UUID, req CompleteBatchRequest) (*BatchResponse, error) {
	var batch *production.ProductionBatch

	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		batch, err = repos.BatchRepo().FindByIDForTenant(ctx, tenantID, batchID)
		if err != nil {
			return err
		}

		outputs, err := batch.Complete(req.ProducedQuantity)
		if err != nil {
			return err
		}

		ref := inventory.MovementRef{
			Type: inventory.ReferenceTypeProductionBatch,
			ID:   batch.ID,
			Note: batch.Number,
		}
		for _, output := range outputs {
			packaged, err := repos.PackagedProductRepo().FindByIDForTenant(ctx, tenantID, output.PackagedProductID)
			if err != nil {
				return err
			}
			movement, err := packaged.ApplyMovement(inventory.MovementTypeProduction, inventory.DirectionIn, output.Units, ref)
			if err != nil {
				return err
			}
			if err := repos.PackagedProductRepo().SaveWithLock(ctx, packaged); err != nil {
				return err
			}
			if err := repos.PackagedMovementRepo().Save(ctx, movement); err != nil {
				return err
			}
		}

		return repos.BatchRepo().SaveWithLock(ctx, batch)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Production batch completed",
		zap.String("batch_number", batch.Number),
		zap.Int("produced_quantity", batch.ProducedQuantity),
		zap.Int("planned_quantity", batch.PlannedQuantity))

	response := ToBatchResponse(batch)
	return &response, nil
}

// CancelBatch aborts the batch. For an in-progress batch the recorded
// consumed quantities go back to stock as inbound adjustments, reversing
// the start exactly.
func (s *BatchService) CancelBatch(ctx context.Context, tenantID, batchID uuid.UUID) (*BatchResponse, error) {
	var (
		batch        *production.ProductionBatch
		touchedItems []*inventory.InventoryItem
	)

	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		batch, err = repos.BatchRepo().FindByIDForTenant(ctx, tenantID, batchID)
		if err != nil {
			return err
		}

		restore, err := batch.Cancel()
		if err != nil {
			return err
		}

		ref := inventory.MovementRef{
			Type: inventory.ReferenceTypeProductionBatch,
			ID:   batch.ID,
			Note: batch.Number + " cancelled",
		}
		for _, material := range restore {
			item, err := repos.ItemRepo().FindByIDForTenant(ctx, tenantID, material.InventoryItemID)
			if err != nil {
				return err
			}
			movement, err := item.ApplyMovement(inventory.MovementTypeAdjustment, inventory.DirectionIn, material.Quantity, ref)
			if err != nil {
				return err
			}
			if err := repos.ItemRepo().SaveWithLock(ctx, item); err != nil {
				return err
			}
			if err := repos.MovementRepo().Save(ctx, movement); err != nil {
				return err
			}
			touchedItems = append(touchedItems, item)
		}

		return repos.BatchRepo().SaveWithLock(ctx, batch)
	})
	if err != nil {
		return nil, err
	}

	for _, item := range touchedItems {
		s.publishDomainEvents(ctx, item)
	}

	s.logger.Info("Production batch cancelled",
		zap.String("batch_number", batch.Number),
		zap.Int("restored_materials", len(touchedItems)))

	response := ToBatchResponse(batch)
	return &response, nil
}
