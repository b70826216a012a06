package procurement

import (
	"context"

	"github.com/craftline/backend/internal/domain/inventory"
	"github.com/craftline/backend/internal/domain/procurement"
	"github.com/craftline/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PurchaseOrderService handles purchase orders and goods receipts.
// Receiving goods is the only path that moves purchased raw material
// into stock: each accepted receipt line becomes an inbound movement.
type PurchaseOrderService struct {
	txScope        TransactionScope
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewPurchaseOrderService creates a new purchase order service
func NewPurchaseOrderService(txScope TransactionScope, logger *zap.Logger) *PurchaseOrderService {
	return &PurchaseOrderService{
		txScope: txScope,
		logger:  logger,
	}
}

// SetEventPublisher sets the event publisher for domain events
func (s *PurchaseOrderService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

func (s *PurchaseOrderService) publishDomainEvents(ctx context.Context, aggregate interface {
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

// CreatePurchaseOrder creates a PO. When an indent is referenced it must be
// approved; with Submit set the PO goes straight into the approval queue.
func (s *PurchaseOrderService) CreatePurchaseOrder(ctx context.Context, tenantID uuid.UUID, req CreatePurchaseOrderRequest) (*PurchaseOrderResponse, error) {
	po, err := procurement.NewPurchaseOrder(tenantID, req.SupplierName, req.IndentID)
	if err != nil {
		return nil, err
	}
	po.ExpectedAt = req.ExpectedAt

	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		if req.IndentID != nil {
			indent, err := repos.IndentRepo().FindByIDForTenant(ctx, tenantID, *req.IndentID)
			if err != nil {
				return err
			}
			if indent.Status != procurement.IndentStatusApproved {
				return shared.NewDomainError("INVALID_STATE", "Purchase orders can only reference approved indents")
			}
		}
		for _, line := range req.Items {
			item, err := repos.ItemRepo().FindByIDForTenant(ctx, tenantID, line.InventoryItemID)
			if err != nil {
				return err
			}
			if !item.IsActive {
				return shared.NewDomainError("INVALID_INPUT", "Cannot order a deactivated raw material")
			}
			if err := po.AddItem(item.ID, line.Quantity, line.UnitPrice); err != nil {
				return err
			}
		}
		if req.Submit {
			if err := po.Submit(); err != nil {
				return err
			}
		}
		return repos.PurchaseOrderRepo().Save(ctx, po)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Purchase order created",
		zap.String("po_number", po.Number),
		zap.String("supplier", po.SupplierName),
		zap.String("status", string(po.Status)))

	response := ToPurchaseOrderResponse(po)
	return &response, nil
}

// GetPurchaseOrder returns a PO with its lines
func (s *PurchaseOrderService) GetPurchaseOrder(ctx context.Context, tenantID, poID uuid.UUID) (*PurchaseOrderResponse, error) {
	var po *procurement.PurchaseOrder
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		po, err = repos.PurchaseOrderRepo().FindByIDForTenant(ctx, tenantID, poID)
		return err
	})
	if err != nil {
		return nil, err
	}
	response := ToPurchaseOrderResponse(po)
	return &response, nil
}

// GetPurchaseOrderByNumber returns a PO by its document number
func (s *PurchaseOrderService) GetPurchaseOrderByNumber(ctx context.Context, tenantID uuid.UUID, number string) (*PurchaseOrderResponse, error) {
	var po *procurement.PurchaseOrder
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		po, err = repos.PurchaseOrderRepo().FindByNumber(ctx, tenantID, number)
		return err
	})
	if err != nil {
		return nil, err
	}
	response := ToPurchaseOrderResponse(po)
	return &response, nil
}

// ListPurchaseOrders returns the tenant's purchase orders
func (s *PurchaseOrderService) ListPurchaseOrders(ctx context.Context, tenantID uuid.UUID, filter PurchaseOrderListFilter) ([]PurchaseOrderResponse, int64, error) {
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
		pos   []procurement.PurchaseOrder
		total int64
	)
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		pos, total, err = repos.PurchaseOrderRepo().FindAllForTenant(ctx, tenantID, domainFilter)
		return err
	})
	if err != nil {
		return nil, 0, err
	}
	return ToPurchaseOrderResponses(pos), total, nil
}

// SubmitPurchaseOrder moves a draft PO into the approval queue
func (s *PurchaseOrderService) SubmitPurchaseOrder(ctx context.Context, tenantID, poID uuid.UUID) (*PurchaseOrderResponse, error) {
	return s.mutatePurchaseOrder(ctx, tenantID, poID, func(po *procurement.PurchaseOrder) error {
		return po.Submit()
	})
}

// ApprovePurchaseOrder approves a pending PO for receiving
func (s *PurchaseOrderService) ApprovePurchaseOrder(ctx context.Context, tenantID, poID, approverID uuid.UUID) (*PurchaseOrderResponse, error) {
	resp, err := s.mutatePurchaseOrder(ctx, tenantID, poID, func(po *procurement.PurchaseOrder) error {
		return po.Approve(approverID)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("Purchase order approved",
		zap.String("po_number", resp.Number),
		zap.String("approver_id", approverID.String()))
	return resp, nil
}

// CancelPurchaseOrder cancels a PO. Cancellation is blocked once any
// goods have been received against it.
func (s *PurchaseOrderService) CancelPurchaseOrder(ctx context.Context, tenantID, poID uuid.UUID) (*PurchaseOrderResponse, error) {
	return s.mutatePurchaseOrder(ctx, tenantID, poID, func(po *procurement.PurchaseOrder) error {
		return po.Cancel()
	})
}

// ReceiveGoods records a delivery against an approved PO. In one
// transaction it creates the GRN, accumulates accepted quantities on the PO
// lines, and books an inbound movement for every accepted line. Rejected
// goods never touch stock.
func (s *PurchaseOrderService) ReceiveGoods(ctx context.Context, tenantID, poID, receiverID uuid.UUID, req ReceiveGoodsRequest) (*ReceiptResponse, error) {
	var (
		receipt       *procurement.PurchaseReceipt
		po            *procurement.PurchaseOrder
		touchedItems  []*inventory.InventoryItem
		acceptedLines int
	)

	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		po, err = repos.PurchaseOrderRepo().FindByIDForTenant(ctx, tenantID, poID)
		if err != nil {
			return err
		}

		lineIndex := make(map[uuid.UUID]uuid.UUID, len(po.Items))
		for _, item := range po.Items {
			lineIndex[item.ID] = item.InventoryItemID
		}

		specs := make([]procurement.ReceiptItemSpec, 0, len(req.Lines))
		for _, line := range req.Lines {
			inventoryItemID, ok := lineIndex[line.PurchaseOrderItemID]
			if !ok {
				return shared.NewDomainError("NOT_FOUND", "Receipt line does not match any purchase order item")
			}
			accepted := line.ReceivedQuantity
			if line.AcceptedQuantity != nil {
				accepted = *line.AcceptedQuantity
			}
			specs = append(specs, procurement.ReceiptItemSpec{
				PurchaseOrderItemID: line.PurchaseOrderItemID,
				InventoryItemID:     inventoryItemID,
				ReceivedQuantity:    line.ReceivedQuantity,
				AcceptedQuantity:    accepted,
				Note:                line.Note,
			})
		}

		receipt, err = procurement.NewPurchaseReceipt(tenantID, po.ID, receiverID, specs, req.Note)
		if err != nil {
			return err
		}

		// a fully rejected delivery is still documented as a GRN but
		// leaves the PO lines and stock untouched
		var received []procurement.ReceivedItemInfo
		if accepted := receipt.AcceptedLines(); len(accepted) > 0 {
			received, err = po.ApplyReceipt(accepted)
			if err != nil {
				return err
			}
		} else if !po.CanReceive() {
			return shared.NewDomainError("INVALID_STATE", "Cannot receive goods against this purchase order")
		}
		acceptedLines = len(received)

		ref := inventory.MovementRef{
			Type: inventory.ReferenceTypePurchaseReceipt,
			ID:   receipt.ID,
			Note: receipt.Number,
		}
		for _, info := range received {
			item, err := repos.ItemRepo().FindByIDForTenant(ctx, tenantID, info.InventoryItemID)
			if err != nil {
				return err
			}
			movement, err := item.ApplyMovement(inventory.MovementTypePurchase, inventory.DirectionIn, info.AcceptedQuantity, ref)
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

		if err := repos.ReceiptRepo().Save(ctx, receipt); err != nil {
			return err
		}
		if acceptedLines == 0 {
			return nil
		}
		return repos.PurchaseOrderRepo().SaveWithLock(ctx, po)
	})
	if err != nil {
		return nil, err
	}

	for _, item := range touchedItems {
		s.publishDomainEvents(ctx, item)
	}

	s.logger.Info("Goods received",
		zap.String("grn_number", receipt.Number),
		zap.String("po_number", po.Number),
		zap.Int("accepted_lines", acceptedLines),
		zap.String("po_status", string(po.Status)))

	response := ToReceiptResponse(receipt, po)
	return &response, nil
}

// GetReceipt returns a GRN with its lines and the current state of its PO
func (s *PurchaseOrderService) GetReceipt(ctx context.Context, tenantID, receiptID uuid.UUID) (*ReceiptResponse, error) {
	var (
		receipt *procurement.PurchaseReceipt
		po      *procurement.PurchaseOrder
	)
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		receipt, err = repos.ReceiptRepo().FindByIDForTenant(ctx, tenantID, receiptID)
		if err != nil {
			return err
		}
		po, err = repos.PurchaseOrderRepo().FindByIDForTenant(ctx, tenantID, receipt.PurchaseOrderID)
		return err
	})
	if err != nil {
		return nil, err
	}
	response := ToReceiptResponse(receipt, po)
	return &response, nil
}

// ListReceipts returns the GRNs recorded against a PO
func (s *PurchaseOrderService) ListReceipts(ctx context.Context, tenantID, poID uuid.UUID) ([]ReceiptResponse, error) {
	var (
		receipts []procurement.PurchaseReceipt
		po       *procurement.PurchaseOrder
	)
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		po, err = repos.PurchaseOrderRepo().FindByIDForTenant(ctx, tenantID, poID)
		if err != nil {
			return err
		}
		receipts, err = repos.ReceiptRepo().FindByPurchaseOrder(ctx, tenantID, poID)
		return err
	})
	if err != nil {
		return nil, err
	}

	responses := make([]ReceiptResponse, len(receipts))
	for i := range receipts {
		responses[i] = ToReceiptResponse(&receipts[i], po)
	}
	return responses, nil
}

func (s *PurchaseOrderService) mutatePurchaseOrder(ctx context.Context, tenantID, poID uuid.UUID, mutate func(*procurement.PurchaseOrder) error) (*PurchaseOrderResponse, error) {
	var po *procurement.PurchaseOrder
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		po, err = repos.PurchaseOrderRepo().FindByIDForTenant(ctx, tenantID, poID)
		if err != nil {
			return err
		}
		if err := mutate(po); err != nil {
			return err
		}
		return repos.PurchaseOrderRepo().SaveWithLock(ctx, po)
	})
	if err != nil {
		return nil, err
	}
	response := ToPurchaseOrderResponse(po)
	return &response, nil
}
