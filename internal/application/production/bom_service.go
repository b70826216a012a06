package production

import (
	"context"
	"errors"

	"github.com/craftline/backend/internal/domain/production"
	"github.com/craftline/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// BOMService manages bill of material revisions
type BOMService struct {
	txScope TransactionScope
	logger  *zap.Logger
}

// NewBOMService creates a new BOM service
func NewBOMService(txScope TransactionScope, logger *zap.Logger) *BOMService {
	return &BOMService{
		txScope: txScope,
		logger:  logger,
	}
}

// CreateBOM creates a new BOM revision for a product. The revision number
// follows the existing revisions of the product. With Activate set the new
// revision replaces the active one.
func (s *BOMService) CreateBOM(ctx context.Context, tenantID uuid.UUID, req CreateBOMRequest) (*BOMResponse, error) {
	var bom *production.BillOfMaterial

	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		if _, err := repos.ProductRepo().FindByIDForTenant(ctx, tenantID, req.ProductID); err != nil {
			return err
		}

		existing, err := repos.BOMRepo().FindByProduct(ctx, tenantID, req.ProductID)
		if err != nil {
			return err
		}

		bom, err = production.NewBillOfMaterial(tenantID, req.ProductID, req.Name, len(existing)+1)
		if err != nil {
			return err
		}

		for _, line := range req.Items {
			item, err := repos.ItemRepo().FindByIDForTenant(ctx, tenantID, line.InventoryItemID)
			if err != nil {
				return err
			}
			if !item.IsActive {
				return shared.NewDomainError("INVALID_INPUT", "Cannot put a deactivated raw material on a BOM")
			}
			if err := bom.AddItem(item.ID, line.QuantityPerUnit); err != nil {
				return err
			}
		}

		if req.Activate {
			if err := bom.Activate(); err != nil {
				return err
			}
		}
		if err := repos.BOMRepo().Save(ctx, bom); err != nil {
			return err
		}
		if req.Activate {
			return repos.BOMRepo().DeactivateSiblings(ctx, tenantID, req.ProductID, bom.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("BOM revision created",
		zap.String("product_id", req.ProductID.String()),
		zap.Int("revision", bom.Revision),
		zap.Bool("active", bom.IsActive))

	response := ToBOMResponse(bom)
	return &response, nil
}

// GetBOM returns a BOM revision with its items
func (s *BOMService) GetBOM(ctx context.Context, tenantID, bomID uuid.UUID) (*BOMResponse, error) {
	var bom *production.BillOfMaterial
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		bom, err = repos.BOMRepo().FindByIDForTenant(ctx, tenantID, bomID)
		return err
	})
	if err != nil {
		return nil, err
	}
	response := ToBOMResponse(bom)
	return &response, nil
}

// ListBOMsByProduct returns every BOM revision of a product
func (s *BOMService) ListBOMsByProduct(ctx context.Context, tenantID, productID uuid.UUID) ([]BOMResponse, error) {
	var boms []production.BillOfMaterial
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		boms, err = repos.BOMRepo().FindByProduct(ctx, tenantID, productID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return ToBOMResponses(boms), nil
}

// ActivateBOM makes a revision the active one and retires its siblings
// in the same transaction
func (s *BOMService) ActivateBOM(ctx context.Context, tenantID, bomID uuid.UUID) (*BOMResponse, error) {
	var bom *production.BillOfMaterial
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		bom, err = repos.BOMRepo().FindByIDForTenant(ctx, tenantID, bomID)
		if err != nil {
			return err
		}
		if err := bom.Activate(); err != nil {
			return err
		}
		if err := repos.BOMRepo().Save(ctx, bom); err != nil {
			return err
		}
		return repos.BOMRepo().DeactivateSiblings(ctx, tenantID, bom.ProductID, bom.ID)
	})
	if err != nil {
		return nil, err
	}
	response := ToBOMResponse(bom)
	return &response, nil
}

// ActiveBOMForProduct returns the active revision for a product, or
// NOT_FOUND when the product has none
func (s *BOMService) ActiveBOMForProduct(ctx context.Context, tenantID, productID uuid.UUID) (*BOMResponse, error) {
	var bom *production.BillOfMaterial
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		bom, err = repos.BOMRepo().FindActiveByProduct(ctx, tenantID, productID)
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NewDomainError("NOT_FOUND", "Product has no active BOM revision")
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	response := ToBOMResponse(bom)
	return &response, nil
}
