package production

import (
	"fmt"
	"strings"
	"time"

	"github.com/craftline/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BatchStatus represents the lifecycle state of a production batch
type BatchStatus string

const (
	BatchStatusPlanned    BatchStatus = "planned"
	BatchStatusInProgress BatchStatus = "in_progress"
	BatchStatusCompleted  BatchStatus = "completed"
	BatchStatusCancelled  BatchStatus = "cancelled"
)

// BatchMaterial is one raw material requirement of a batch. ConsumedQuantity
// records what was actually drawn from stock at start time, so cancellation
// can reverse exactly what was consumed.
type BatchMaterial struct {
	shared.BaseEntity
	ProductionBatchID uuid.UUID       `gorm:"type:uuid;not null;index"`
	InventoryItemID   uuid.UUID       `gorm:"type:uuid;not null"`
	RequiredQuantity  decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	ConsumedQuantity  decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
}

// TableName returns the table name for GORM
func (BatchMaterial) TableName() string {
	return "production_batch_materials"
}

// BatchPackaging is one planned packaged output line of a batch.
// PlannedUnits is the package count for the full planned quantity; the
// produced count scales down proportionally on partial completion.
type BatchPackaging struct {
	shared.BaseEntity
	ProductionBatchID uuid.UUID `gorm:"type:uuid;not null;index"`
	PackagedProductID uuid.UUID `gorm:"type:uuid;not null"`
	PlannedUnits      int       `gorm:"not null"`
	ProducedUnits     int       `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (BatchPackaging) TableName() string {
	return "production_batch_packaging"
}

// ProductionBatch is the aggregate root for one manufacturing run: it consumes
// raw materials per the BOM at start and produces packaged units on completion.
type ProductionBatch struct {
	shared.TenantAggregateRoot
	Number           string           `gorm:"type:varchar(20);not null;uniqueIndex"`
	BillOfMaterialID uuid.UUID        `gorm:"type:uuid;not null;index"`
	ProductID        uuid.UUID        `gorm:"type:uuid;not null;index"`
	Status           BatchStatus      `gorm:"type:varchar(20);not null;default:'planned'"`
	PlannedQuantity  int              `gorm:"not null"`
	ProducedQuantity int              `gorm:"not null;default:0"`
	Materials        []BatchMaterial  `gorm:"foreignKey:ProductionBatchID"`
	Packaging        []BatchPackaging `gorm:"foreignKey:ProductionBatchID"`
	StartedAt        *time.Time
	CompletedAt      *time.Time
}

// TableName returns the table name for GORM
func (ProductionBatch) TableName() string {
	return "production_batches"
}

// NewBatchNumber generates a batch document number, e.g. BATCH-3FA85F64
func NewBatchNumber() string {
	hex := strings.ReplaceAll(uuid.New().String(), "-", "")
	return fmt.Sprintf("BATCH-%s", strings.ToUpper(hex[:8]))
}

// PackagingSpec is the planned packaged output input for a new batch
type PackagingSpec struct {
	PackagedProductID uuid.UUID
	PlannedUnits      int
}

// NewProductionBatch plans a batch from an active BOM. Material requirements
// are the BOM quantities scaled by the planned quantity.
func NewProductionBatch(tenantID uuid.UUID, bom *BillOfMaterial, plannedQuantity int, packaging []PackagingSpec) (*ProductionBatch, error) {
	if bom == nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Bill of material is required")
	}
	if !bom.IsActive {
		return nil, shared.NewDomainError("INVALID_STATE", "Production requires an active BOM revision")
	}
	if plannedQuantity <= 0 {
		return nil, shared.NewDomainError("INVALID_INPUT", "Planned quantity must be positive")
	}
	if len(packaging) == 0 {
		return nil, shared.NewDomainError("INVALID_INPUT", "At least one packaging line is required")
	}

	requirements, err := bom.RequirementsFor(plannedQuantity)
	if err != nil {
		return nil, err
	}

	batch := &ProductionBatch{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Number:              NewBatchNumber(),
		BillOfMaterialID:    bom.ID,
		ProductID:           bom.ProductID,
		Status:              BatchStatusPlanned,
		PlannedQuantity:     plannedQuantity,
	}

	for _, req := range requirements {
		batch.Materials = append(batch.Materials, BatchMaterial{
			BaseEntity:        shared.NewBaseEntity(),
			ProductionBatchID: batch.ID,
			InventoryItemID:   req.InventoryItemID,
			RequiredQuantity:  req.RequiredQuantity,
			ConsumedQuantity:  decimal.Zero,
		})
	}

	for _, spec := range packaging {
		if spec.PackagedProductID == uuid.Nil {
			return nil, shared.NewDomainError("INVALID_INPUT", "Packaged product is required on every packaging line")
		}
		if spec.PlannedUnits <= 0 {
			return nil, shared.NewDomainError("INVALID_INPUT", "Planned packaging units must be positive")
		}
		batch.Packaging = append(batch.Packaging, BatchPackaging{
			BaseEntity:        shared.NewBaseEntity(),
			ProductionBatchID: batch.ID,
			PackagedProductID: spec.PackagedProductID,
			PlannedUnits:      spec.PlannedUnits,
		})
	}

	return batch, nil
}

// Start moves the batch into progress and records the consumed quantities.
// The caller has already drawn the required quantities from stock; the batch
// keeps them so a later cancellation reverses exactly what was consumed.
func (b *ProductionBatch) Start() error {
	if b.Status != BatchStatusPlanned {
		return shared.NewDomainError("INVALID_STATE", "Only planned batches can be started")
	}

	now := time.Now()
	for idx := range b.Materials {
		b.Materials[idx].ConsumedQuantity = b.Materials[idx].RequiredQuantity
		b.Materials[idx].UpdatedAt = now
	}
	b.Status = BatchStatusInProgress
	b.StartedAt = &now
	b.UpdatedAt = now
	b.IncrementVersion()

	return nil
}

// PackagingOutput is the produced unit count for one packaging line
type PackagingOutput struct {
	PackagedProductID uuid.UUID
	Units             int
}

// Complete finishes the batch with the actually produced quantity and returns
// the packaged output per line: floor(plannedUnits * produced / planned).
// Fractional splits round down; remainders stay as bulk product.
func (b *ProductionBatch) Complete(producedQuantity int) ([]PackagingOutput, error) {
	if b.Status != BatchStatusInProgress {
		return nil, shared.NewDomainError("INVALID_STATE", "Only in-progress batches can be completed")
	}
	if producedQuantity < 1 || producedQuantity > b.PlannedQuantity {
		return nil, shared.NewDomainError("INVALID_INPUT",
			fmt.Sprintf("Produced quantity must be between 1 and the planned quantity %d", b.PlannedQuantity))
	}

	now := time.Now()
	outputs := make([]PackagingOutput, 0, len(b.Packaging))
	for idx := range b.Packaging {
		units := b.Packaging[idx].PlannedUnits * producedQuantity / b.PlannedQuantity
		b.Packaging[idx].ProducedUnits = units
		b.Packaging[idx].UpdatedAt = now
		if units > 0 {
			outputs = append(outputs, PackagingOutput{
				PackagedProductID: b.Packaging[idx].PackagedProductID,
				Units:             units,
			})
		}
	}

	b.ProducedQuantity = producedQuantity
	b.Status = BatchStatusCompleted
	b.CompletedAt = &now
	b.UpdatedAt = now
	b.IncrementVersion()

	return outputs, nil
}

// ConsumedMaterial is a raw material quantity to return to stock on cancellation
type ConsumedMaterial struct {
	InventoryItemID uuid.UUID
	Quantity        decimal.Decimal
}

// Cancel aborts the batch. For an in-progress batch it returns the recorded
// consumed quantities so the caller can restore stock exactly.
func (b *ProductionBatch) Cancel() ([]ConsumedMaterial, error) {
	switch b.Status {
	case BatchStatusPlanned:
		b.Status = BatchStatusCancelled
		b.UpdatedAt = time.Now()
		b.IncrementVersion()
		return nil, nil
	case BatchStatusInProgress:
		restore := make([]ConsumedMaterial, 0, len(b.Materials))
		for _, material := range b.Materials {
			if material.ConsumedQuantity.IsPositive() {
				restore = append(restore, ConsumedMaterial{
					InventoryItemID: material.InventoryItemID,
					Quantity:        material.ConsumedQuantity,
				})
			}
		}
		b.Status = BatchStatusCancelled
		b.UpdatedAt = time.Now()
		b.IncrementVersion()
		return restore, nil
	default:
		return nil, shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Cannot cancel a %s batch", b.Status))
	}
}
