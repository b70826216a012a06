package gatepass

import (
	"fmt"
	"strings"
	"time"

	"github.com/craftline/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// GatePassType classifies the physical movement direction across the facility boundary
type GatePassType string

const (
	GatePassTypeInward  GatePassType = "inward"
	GatePassTypeOutward GatePassType = "outward"
	GatePassTypeReturn  GatePassType = "return"
)

// IsValid returns true if the gate pass type is known
func (t GatePassType) IsValid() bool {
	switch t {
	case GatePassTypeInward, GatePassTypeOutward, GatePassTypeReturn:
		return true
	}
	return false
}

// GatePassStatus represents the approval state of a gate pass
type GatePassStatus string

const (
	GatePassStatusDraft    GatePassStatus = "draft"
	GatePassStatusApproved GatePassStatus = "approved"
	GatePassStatusRejected GatePassStatus = "rejected"
)

// StockRefKind tags which balance-holding entity a gate pass item points at
type StockRefKind string

const (
	StockRefRawMaterial     StockRefKind = "raw_material"
	StockRefPackagedProduct StockRefKind = "packaged_product"
)

// StockRef is a typed reference to either a raw material or a packaged
// product. It is resolved once at validation time and carried as a value,
// instead of re-dispatching on a string tag at every use site.
type StockRef struct {
	Kind StockRefKind
	ID   uuid.UUID
}

// RawMaterialRef builds a reference to an inventory item
func RawMaterialRef(id uuid.UUID) StockRef {
	return StockRef{Kind: StockRefRawMaterial, ID: id}
}

// PackagedProductRef builds a reference to a packaged product
func PackagedProductRef(id uuid.UUID) StockRef {
	return StockRef{Kind: StockRefPackagedProduct, ID: id}
}

// Validate checks the reference is well formed
func (r StockRef) Validate() error {
	if r.Kind != StockRefRawMaterial && r.Kind != StockRefPackagedProduct {
		return shared.NewDomainError("INVALID_INPUT", "Unknown stock reference kind")
	}
	if r.ID == uuid.Nil {
		return shared.NewDomainError("INVALID_INPUT", "Stock reference ID is required")
	}
	return nil
}

// GatePassItem is one line of goods moving through the gate
type GatePassItem struct {
	shared.BaseEntity
	GatePassID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	RefKind     StockRefKind    `gorm:"type:varchar(20);not null"`
	RefID       uuid.UUID       `gorm:"type:uuid;not null"`
	Quantity    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Description string          `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (GatePassItem) TableName() string {
	return "gate_pass_items"
}

// Ref returns the typed stock reference of the line
func (i *GatePassItem) Ref() StockRef {
	return StockRef{Kind: i.RefKind, ID: i.RefID}
}

// GatePass authorizes physical movement of goods across the facility
// boundary. Approval applies the stock movements exactly once.
type GatePass struct {
	shared.TenantAggregateRoot
	Number     string         `gorm:"type:varchar(20);not null;uniqueIndex"`
	Type       GatePassType   `gorm:"type:varchar(10);not null"`
	Status     GatePassStatus `gorm:"type:varchar(10);not null;default:'draft'"`
	IssuedTo   string         `gorm:"type:varchar(200);not null"`
	Purpose    string         `gorm:"type:text"`
	VehicleNo  string         `gorm:"type:varchar(20)"`
	Items      []GatePassItem `gorm:"foreignKey:GatePassID"`
	ApprovedBy *uuid.UUID     `gorm:"type:uuid"`
	ApprovedAt *time.Time
}

// TableName returns the table name for GORM
func (GatePass) TableName() string {
	return "gate_passes"
}

// NewGatePassNumber generates a gate pass document number, e.g. GP-3FA85F64
func NewGatePassNumber() string {
	hex := strings.ReplaceAll(uuid.New().String(), "-", "")
	return fmt.Sprintf("GP-%s", strings.ToUpper(hex[:8]))
}

// NewGatePass creates a draft gate pass
func NewGatePass(tenantID uuid.UUID, passType GatePassType, issuedTo, purpose string) (*GatePass, error) {
	if !passType.IsValid() {
		return nil, shared.NewDomainError("INVALID_INPUT", "Unknown gate pass type")
	}
	if strings.TrimSpace(issuedTo) == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Gate pass recipient is required")
	}

	return &GatePass{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Number:              NewGatePassNumber(),
		Type:                passType,
		Status:              GatePassStatusDraft,
		IssuedTo:            issuedTo,
		Purpose:             purpose,
	}, nil
}

// AddItem adds a goods line while the pass is a draft. Packaged product
// quantities must be whole units.
func (g *GatePass) AddItem(ref StockRef, quantity decimal.Decimal, description string) error {
	if g.Status != GatePassStatusDraft {
		return shared.NewDomainError("INVALID_STATE", "Items can only be added to draft gate passes")
	}
	if err := ref.Validate(); err != nil {
		return err
	}
	if !quantity.IsPositive() {
		return shared.NewDomainError("INVALID_INPUT", "Quantity must be positive")
	}
	if ref.Kind == StockRefPackagedProduct && !quantity.IsInteger() {
		return shared.NewDomainError("INVALID_INPUT", "Packaged product quantities must be whole units")
	}

	g.Items = append(g.Items, GatePassItem{
		BaseEntity:  shared.NewBaseEntity(),
		GatePassID:  g.ID,
		RefKind:     ref.Kind,
		RefID:       ref.ID,
		Quantity:    quantity,
		Description: description,
	})
	g.touch()
	return nil
}

// IsOutbound reports whether approval decreases stock
func (g *GatePass) IsOutbound() bool {
	return g.Type == GatePassTypeOutward
}

// Approve marks the pass approved. A pass can be approved exactly once; the
// caller applies the stock movements in the same transaction.
func (g *GatePass) Approve(approverID uuid.UUID) error {
	if g.Status != GatePassStatusDraft {
		return shared.NewDomainError("INVALID_STATE", "Gate pass has already been processed")
	}
	if len(g.Items) == 0 {
		return shared.NewDomainError("INVALID_INPUT", "Cannot approve a gate pass without items")
	}

	now := time.Now()
	g.Status = GatePassStatusApproved
	g.ApprovedBy = &approverID
	g.ApprovedAt = &now
	g.touch()
	return nil
}

// Reject declines a draft gate pass
func (g *GatePass) Reject() error {
	if g.Status != GatePassStatusDraft {
		return shared.NewDomainError("INVALID_STATE", "Gate pass has already been processed")
	}
	g.Status = GatePassStatusRejected
	g.touch()
	return nil
}

func (g *GatePass) touch() {
	g.UpdatedAt = time.Now()
	g.IncrementVersion()
}
