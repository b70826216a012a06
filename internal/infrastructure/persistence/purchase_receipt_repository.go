package persistence

import (
	"context"
	"errors"

	"github.com/craftline/backend/internal/domain/procurement"
	"github.com/craftline/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormPurchaseReceiptRepository implements PurchaseReceiptRepository using GORM.
// Receipts are immutable; Save is only ever called for new rows.
type GormPurchaseReceiptRepository struct {
	db *gorm.DB
}

// NewGormPurchaseReceiptRepository creates a new GormPurchaseReceiptRepository
func NewGormPurchaseReceiptRepository(db *gorm.DB) *GormPurchaseReceiptRepository {
	return &GormPurchaseReceiptRepository{db: db}
}

// FindByIDForTenant loads a receipt with its lines
func (r *GormPurchaseReceiptRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*procurement.PurchaseReceipt, error) {
	var receipt procurement.PurchaseReceipt
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&receipt).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &receipt, nil
}

// FindByPurchaseOrder lists the receipts recorded against a PO, oldest first
func (r *GormPurchaseReceiptRepository) FindByPurchaseOrder(ctx context.Context, tenantID, purchaseOrderID uuid.UUID) ([]procurement.PurchaseReceipt, error) {
	var receipts []procurement.PurchaseReceipt
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("tenant_id = ? AND purchase_order_id = ?", tenantID, purchaseOrderID).
		Order("received_at ASC").
		Find(&receipts).Error; err != nil {
		return nil, err
	}
	return receipts, nil
}

// Save persists a receipt with its lines
func (r *GormPurchaseReceiptRepository) Save(ctx context.Context, receipt *procurement.PurchaseReceipt) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Items").Create(receipt).Error; err != nil {
			return err
		}
		for i := range receipt.Items {
			receipt.Items[i].PurchaseReceiptID = receipt.ID
			if err := tx.Create(&receipt.Items[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// Ensure GormPurchaseReceiptRepository implements PurchaseReceiptRepository
var _ procurement.PurchaseReceiptRepository = (*GormPurchaseReceiptRepository)(nil)
