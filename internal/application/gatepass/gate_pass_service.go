package gatepass

import (
	"context"

	"github.com/craftline/backend/internal/domain/gatepass"
	"github.com/craftline/backend/internal/domain/inventory"
	"github.com/craftline/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// GatePassService manages gate passes. Approval is the only operation that
// touches stock: outward passes consume, inward and return passes add, one
// transfer movement per goods line referencing the pass.
type GatePassService struct {
	txScope        TransactionScope
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewGatePassService creates a new gate pass service
func NewGatePassService(txScope TransactionScope, logger *zap.Logger) *GatePassService {
	return &GatePassService{
		txScope: txScope,
		logger:  logger,
	}
}

// SetEventPublisher sets the event publisher for domain events
func (s *GatePassService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

func (s *GatePassService) publishDomainEvents(ctx context.Context, aggregate interface {
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

func parseStockRef(kind string, id uuid.UUID) (gatepass.StockRef, error) {
	switch kind {
	case string(gatepass.StockRefRawMaterial):
		return gatepass.RawMaterialRef(id), nil
	case string(gatepass.StockRefPackagedProduct):
		return gatepass.PackagedProductRef(id), nil
	default:
		return gatepass.StockRef{}, shared.NewDomainError("INVALID_INPUT", "Unknown stock reference kind")
	}
}

// CreateGatePass creates a draft pass. Every line is resolved against the
// referenced raw material or packaged product so dangling references are
// rejected at creation, not at approval.
func (s *GatePassService) CreateGatePass(ctx context.Context, tenantID uuid.UUID, req CreateGatePassRequest) (*GatePassResponse, error) {
	pass, err := gatepass.NewGatePass(tenantID, gatepass.GatePassType(req.Type), req.IssuedTo, req.Purpose)
	if err != nil {
		return nil, err
	}
	pass.VehicleNo = req.VehicleNo

	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		for _, line := range req.Items {
			ref, err := parseStockRef(line.RefKind, line.RefID)
			if err != nil {
				return err
			}
			switch ref.Kind {
			case gatepass.StockRefRawMaterial:
				if _, err := repos.ItemRepo().FindByIDForTenant(ctx, tenantID, ref.ID); err != nil {
					return err
				}
			case gatepass.StockRefPackagedProduct:
				if _, err := repos.PackagedProductRepo().FindByIDForTenant(ctx, tenantID, ref.ID); err != nil {
					return err
				}
			}
			if err := pass.AddItem(ref, line.Quantity, line.Description); err != nil {
				return err
			}
		}
		return repos.GatePassRepo().Save(ctx, pass)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Gate pass created",
		zap.String("gate_pass_number", pass.Number),
		zap.String("type", string(pass.Type)),
		zap.Int("items", len(pass.Items)))

	response := ToGatePassResponse(pass)
	return &response, nil
}

// GetGatePass returns a gate pass with its lines
func (s *GatePassService) GetGatePass(ctx context.Context, tenantID, passID uuid.UUID) (*GatePassResponse, error) {
	var pass *gatepass.GatePass
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		pass, err = repos.GatePassRepo().FindByIDForTenant(ctx, tenantID, passID)
		return err
	})
	if err != nil {
		return nil, err
	}
	response := ToGatePassResponse(pass)
	return &response, nil
}

// ListGatePasses returns the tenant's gate passes
func (s *GatePassService) ListGatePasses(ctx context.Context, tenantID uuid.UUID, filter GatePassListFilter) ([]GatePassResponse, int64, error) {
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
	if filter.Type != "" {
		domainFilter.Filters["type"] = filter.Type
	}
	if filter.Status != "" {
		domainFilter.Filters["status"] = filter.Status
	}

	var (
		passes []gatepass.GatePass
		total  int64
	)
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		passes, total, err = repos.GatePassRepo().FindAllForTenant(ctx, tenantID, domainFilter)
		return err
	})
	if err != nil {
		return nil, 0, err
	}
	return ToGatePassResponses(passes), total, nil
}

// ApproveGatePass approves a draft pass and applies its stock effect: one
// transfer movement per line, outbound for outward passes, inbound for
// inward and return passes. Either every line applies or none does.
func (s *GatePassService) ApproveGatePass(ctx context.Context, tenantID, passID, approverID uuid.UUID) (*GatePassResponse, error) {
	var pass *gatepass.GatePass
	touched := make([]interface {
		GetDomainEvents() []shared.DomainEvent
		ClearDomainEvents()
	}, 0)

	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		pass, err = repos.GatePassRepo().FindByIDForTenant(ctx, tenantID, passID)
		if err != nil {
			return err
		}
		if err := pass.Approve(approverID); err != nil {
			return err
		}

		direction := inventory.DirectionIn
		if pass.IsOutbound() {
			direction = inventory.DirectionOut
		}
		ref := inventory.MovementRef{
			Type: inventory.ReferenceTypeGatePass,
			ID:   pass.ID,
			Note: pass.Number,
		}

		for _, item := range pass.Items {
			switch item.RefKind {
			case gatepass.StockRefRawMaterial:
				material, err := repos.ItemRepo().FindByIDForTenant(ctx, tenantID, item.RefID)
				if err != nil {
					return err
				}
				movement, err := material.ApplyMovement(inventory.MovementTypeTransfer, direction, item.Quantity, ref)
				if err != nil {
					return err
				}
				if err := repos.ItemRepo().SaveWithLock(ctx, material); err != nil {
					return err
				}
				if err := repos.MovementRepo().Save(ctx, movement); err != nil {
					return err
				}
				touched = append(touched, material)
			case gatepass.StockRefPackagedProduct:
				packaged, err := repos.PackagedProductRepo().FindByIDForTenant(ctx, tenantID, item.RefID)
				if err != nil {
					return err
				}
				movement, err := packaged.ApplyMovement(inventory.MovementTypeTransfer, direction, int(item.Quantity.IntPart()), ref)
				if err != nil {
					return err
				}
				if err := repos.PackagedProductRepo().SaveWithLock(ctx, packaged); err != nil {
					return err
				}
				if err := repos.PackagedMovementRepo().Save(ctx, movement); err != nil {
					return err
				}
				touched = append(touched, packaged)
			default:
				return shared.NewDomainError("INVALID_INPUT", "Unknown stock reference kind")
			}
		}

		return repos.GatePassRepo().SaveWithLock(ctx, pass)
	})
	if err != nil {
		return nil, err
	}

	for _, aggregate := range touched {
		s.publishDomainEvents(ctx, aggregate)
	}

	s.logger.Info("Gate pass approved",
		zap.String("gate_pass_number", pass.Number),
		zap.String("type", string(pass.Type)),
		zap.String("approver_id", approverID.String()))

	response := ToGatePassResponse(pass)
	return &response, nil
}

// RejectGatePass declines a draft pass without touching stock
func (s *GatePassService) RejectGatePass(ctx context.Context, tenantID, passID uuid.UUID) (*GatePassResponse, error) {
	var pass *gatepass.GatePass
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		pass, err = repos.GatePassRepo().FindByIDForTenant(ctx, tenantID, passID)
		if err != nil {
			return err
		}
		if err := pass.Reject(); err != nil {
			return err
		}
		return repos.GatePassRepo().SaveWithLock(ctx, pass)
	})
	if err != nil {
		return nil, err
	}
	response := ToGatePassResponse(pass)
	return &response, nil
}
