package production

import (
	"time"

	"github.com/craftline/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BOMItem maps one raw material to the quantity needed per finished unit
type BOMItem struct {
	shared.BaseEntity
	BillOfMaterialID uuid.UUID       `gorm:"type:uuid;not null;index"`
	InventoryItemID  uuid.UUID       `gorm:"type:uuid;not null"`
	Quantity         decimal.Decimal `gorm:"type:decimal(18,4);not null"` // per finished unit
}

// TableName returns the table name for GORM
func (BOMItem) TableName() string {
	return "bill_of_material_items"
}

// BillOfMaterial is the recipe for producing one unit of a product.
// BOMs are versioned per product and at most one version is active at a time;
// activating a version deactivates its siblings.
type BillOfMaterial struct {
	shared.TenantAggregateRoot
	ProductID uuid.UUID `gorm:"type:uuid;not null;index:idx_bom_product"`
	Name      string    `gorm:"type:varchar(200);not null"`
	Revision  int       `gorm:"not null;default:1"`
	IsActive  bool      `gorm:"not null;default:false"`
	Items     []BOMItem `gorm:"foreignKey:BillOfMaterialID"`
}

// TableName returns the table name for GORM
func (BillOfMaterial) TableName() string {
	return "bill_of_materials"
}

// NewBillOfMaterial creates an inactive BOM revision for a product
func NewBillOfMaterial(tenantID, productID uuid.UUID, name string, revision int) (*BillOfMaterial, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Product is required")
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "BOM name is required")
	}
	if revision < 1 {
		revision = 1
	}

	return &BillOfMaterial{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		ProductID:           productID,
		Name:                name,
		Revision:            revision,
	}, nil
}

// AddItem adds a raw material requirement to the recipe
func (b *BillOfMaterial) AddItem(inventoryItemID uuid.UUID, quantityPerUnit decimal.Decimal) error {
	if inventoryItemID == uuid.Nil {
		return shared.NewDomainError("INVALID_INPUT", "Inventory item is required")
	}
	if !quantityPerUnit.IsPositive() {
		return shared.NewDomainError("INVALID_INPUT", "Quantity per unit must be positive")
	}
	for _, item := range b.Items {
		if item.InventoryItemID == inventoryItemID {
			return shared.NewDomainError("ALREADY_EXISTS", "Raw material already on the BOM")
		}
	}

	b.Items = append(b.Items, BOMItem{
		BaseEntity:       shared.NewBaseEntity(),
		BillOfMaterialID: b.ID,
		InventoryItemID:  inventoryItemID,
		Quantity:         quantityPerUnit,
	})
	b.UpdatedAt = time.Now()
	b.IncrementVersion()
	return nil
}

// Activate marks this revision as the one production uses. The application
// layer deactivates sibling revisions of the same product in the same
// transaction.
func (b *BillOfMaterial) Activate() error {
	if len(b.Items) == 0 {
		return shared.NewDomainError("INVALID_INPUT", "Cannot activate a BOM without items")
	}
	if b.IsActive {
		return nil
	}
	b.IsActive = true
	b.UpdatedAt = time.Now()
	b.IncrementVersion()
	return nil
}

// Deactivate retires this revision
func (b *BillOfMaterial) Deactivate() {
	if !b.IsActive {
		return
	}
	b.IsActive = false
	b.UpdatedAt = time.Now()
	b.IncrementVersion()
}

// MaterialRequirement is the total raw material need for a planned batch size
type MaterialRequirement struct {
	InventoryItemID  uuid.UUID
	RequiredQuantity decimal.Decimal
}

// RequirementsFor scales the recipe to a planned quantity of finished units
func (b *BillOfMaterial) RequirementsFor(plannedQuantity int) ([]MaterialRequirement, error) {
	if plannedQuantity <= 0 {
		return nil, shared.NewDomainError("INVALID_INPUT", "Planned quantity must be positive")
	}

	planned := decimal.NewFromInt(int64(plannedQuantity))
	requirements := make([]MaterialRequirement, 0, len(b.Items))
	for _, item := range b.Items {
		requirements = append(requirements, MaterialRequirement{
			InventoryItemID:  item.InventoryItemID,
			RequiredQuantity: item.Quantity.Mul(planned),
		})
	}
	return requirements, nil
}
