package gatepass

import (
	"context"
	"testing"

	domain "github.com/craftline/backend/internal/domain/gatepass"
	"github.com/craftline/backend/internal/domain/inventory"
	"github.com/craftline/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// --- in-memory repositories ---

type memGatePassRepo struct {
	passes map[uuid.UUID]*domain.GatePass
}

func newMemGatePassRepo() *memGatePassRepo {
	return &memGatePassRepo{passes: make(map[uuid.UUID]*domain.GatePass)}
}

func copyPass(g *domain.GatePass) *domain.GatePass {
	copied := *g
	copied.Items = append([]domain.GatePassItem(nil), g.Items...)
	return &copied
}

func (r *memGatePassRepo) FindByIDForTenant(_ context.Context, tenantID, id uuid.UUID) (*domain.GatePass, error) {
	pass, ok := r.passes[id]
	if !ok || pass.TenantID != tenantID {
		return nil, shared.ErrNotFound
	}
	return copyPass(pass), nil
}

func (r *memGatePassRepo) FindByNumber(_ context.Context, tenantID uuid.UUID, number string) (*domain.GatePass, error) {
	for _, pass := range r.passes {
		if pass.TenantID == tenantID && pass.Number == number {
			return copyPass(pass), nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memGatePassRepo) FindAllForTenant(_ context.Context, tenantID uuid.UUID, filter shared.Filter) ([]domain.GatePass, int64, error) {
	var out []domain.GatePass
	for _, pass := range r.passes {
		if pass.TenantID != tenantID {
			continue
		}
		if passType, ok := filter.Filters["type"]; ok && string(pass.Type) != passType {
			continue
		}
		if status, ok := filter.Filters["status"]; ok && string(pass.Status) != status {
			continue
		}
		out = append(out, *copyPass(pass))
	}
	return out, int64(len(out)), nil
}

func (r *memGatePassRepo) Save(_ context.Context, pass *domain.GatePass) error {
	r.passes[pass.ID] = copyPass(pass)
	return nil
}

func (r *memGatePassRepo) SaveWithLock(_ context.Context, pass *domain.GatePass) error {
	stored, ok := r.passes[pass.ID]
	if !ok {
		return shared.ErrNotFound
	}
	if stored.Version != pass.Version-1 {
		return shared.ErrConcurrencyConflict
	}
	r.passes[pass.ID] = copyPass(pass)
	return nil
}

type memItemRepo struct {
	items map[uuid.UUID]*inventory.InventoryItem
}

func newMemItemRepo() *memItemRepo {
	return &memItemRepo{items: make(map[uuid.UUID]*inventory.InventoryItem)}
}

func (r *memItemRepo) FindByID(_ context.Context, id uuid.UUID) (*inventory.InventoryItem, error) {
	item, ok := r.items[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	copied := *item
	return &copied, nil
}

func (r *memItemRepo) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*inventory.InventoryItem, error) {
	item, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if item.TenantID != tenantID {
		return nil, shared.ErrNotFound
	}
	return item, nil
}

func (r *memItemRepo) FindByCode(_ context.Context, tenantID uuid.UUID, code string) (*inventory.InventoryItem, error) {
	for _, item := range r.items {
		if item.TenantID == tenantID && item.Code == code {
			copied := *item
			return &copied, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memItemRepo) FindByIDs(_ context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]inventory.InventoryItem, error) {
	var out []inventory.InventoryItem
	for _, id := range ids {
		if item, ok := r.items[id]; ok && item.TenantID == tenantID {
			out = append(out, *item)
		}
	}
	return out, nil
}

func (r *memItemRepo) FindAllForTenant(_ context.Context, tenantID uuid.UUID, _ shared.Filter) ([]inventory.InventoryItem, error) {
	var out []inventory.InventoryItem
	for _, item := range r.items {
		if item.TenantID == tenantID {
			out = append(out, *item)
		}
	}
	return out, nil
}

func (r *memItemRepo) FindBelowReorderLevel(_ context.Context, tenantID uuid.UUID) ([]inventory.InventoryItem, error) {
	var out []inventory.InventoryItem
	for _, item := range r.items {
		if item.TenantID == tenantID && item.IsActive &&
			item.ReorderLevel.IsPositive() && item.CurrentStock.LessThanOrEqual(item.ReorderLevel) {
			out = append(out, *item)
		}
	}
	return out, nil
}

func (r *memItemRepo) Save(_ context.Context, item *inventory.InventoryItem) error {
	copied := *item
	r.items[item.ID] = &copied
	return nil
}

func (r *memItemRepo) SaveWithLock(_ context.Context, item *inventory.InventoryItem) error {
	stored, ok := r.items[item.ID]
	if !ok {
		return shared.ErrNotFound
	}
	if stored.Version != item.Version-1 {
		return shared.ErrConcurrencyConflict
	}
	copied := *item
	r.items[item.ID] = &copied
	return nil
}

func (r *memItemRepo) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	items, _ := r.FindAllForTenant(ctx, tenantID, filter)
	return int64(len(items)), nil
}

type memMovementRepo struct {
	movements []inventory.StockMovement
}

func (r *memMovementRepo) Save(_ context.Context, movements ...*inventory.StockMovement) error {
	for _, m := range movements {
		r.movements = append(r.movements, *m)
	}
	return nil
}

func (r *memMovementRepo) FindByItem(_ context.Context, tenantID, itemID uuid.UUID, _ shared.Filter) ([]inventory.StockMovement, int64, error) {
	var out []inventory.StockMovement
	for _, m := range r.movements {
		if m.TenantID == tenantID && m.InventoryItemID == itemID {
			out = append(out, m)
		}
	}
	return out, int64(len(out)), nil
}

func (r *memMovementRepo) FindByReference(_ context.Context, tenantID uuid.UUID, refType inventory.ReferenceType, refID uuid.UUID) ([]inventory.StockMovement, error) {
	var out []inventory.StockMovement
	for _, m := range r.movements {
		if m.TenantID == tenantID && m.ReferenceType == refType && m.ReferenceID == refID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *memMovementRepo) SumByItem(_ context.Context, tenantID, itemID uuid.UUID) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, m := range r.movements {
		if m.TenantID == tenantID && m.InventoryItemID == itemID {
			sum = sum.Add(m.Quantity)
		}
	}
	return sum, nil
}

type memPackagedRepo struct {
	products map[uuid.UUID]*inventory.PackagedProduct
}

func newMemPackagedRepo() *memPackagedRepo {
	return &memPackagedRepo{products: make(map[uuid.UUID]*inventory.PackagedProduct)}
}

func (r *memPackagedRepo) FindByID(_ context.Context, id uuid.UUID) (*inventory.PackagedProduct, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	copied := *p
	return &copied, nil
}

func (r *memPackagedRepo) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*inventory.PackagedProduct, error) {
	p, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.TenantID != tenantID {
		return nil, shared.ErrNotFound
	}
	return p, nil
}

func (r *memPackagedRepo) FindByProduct(_ context.Context, tenantID, productID uuid.UUID) ([]inventory.PackagedProduct, error) {
	var out []inventory.PackagedProduct
	for _, p := range r.products {
		if p.TenantID == tenantID && p.ProductID == productID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *memPackagedRepo) FindAllForTenant(_ context.Context, tenantID uuid.UUID, _ shared.Filter) ([]inventory.PackagedProduct, error) {
	var out []inventory.PackagedProduct
	for _, p := range r.products {
		if p.TenantID == tenantID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *memPackagedRepo) Save(_ context.Context, p *inventory.PackagedProduct) error {
	copied := *p
	r.products[p.ID] = &copied
	return nil
}

func (r *memPackagedRepo) SaveWithLock(_ context.Context, p *inventory.PackagedProduct) error {
	stored, ok := r.products[p.ID]
	if !ok {
		return shared.ErrNotFound
	}
	if stored.Version != p.Version-1 {
		return shared.ErrConcurrencyConflict
	}
	copied := *p
	r.products[p.ID] = &copied
	return nil
}

type memPackagedMovementRepo struct {
	movements []inventory.PackagedProductMovement
}

func (r *memPackagedMovementRepo) Save(_ context.Context, movements ...*inventory.PackagedProductMovement) error {
	for _, m := range movements {
		r.movements = append(r.movements, *m)
	}
	return nil
}

func (r *memPackagedMovementRepo) FindByProduct(_ context.Context, tenantID, productID uuid.UUID, _ shared.Filter) ([]inventory.PackagedProductMovement, int64, error) {
	var out []inventory.PackagedProductMovement
	for _, m := range r.movements {
		if m.TenantID == tenantID && m.PackagedProductID == productID {
			out = append(out, m)
		}
	}
	return out, int64(len(out)), nil
}

func (r *memPackagedMovementRepo) FindByReference(_ context.Context, tenantID uuid.UUID, refType inventory.ReferenceType, refID uuid.UUID) ([]inventory.PackagedProductMovement, error) {
	var out []inventory.PackagedProductMovement
	for _, m := range r.movements {
		if m.TenantID == tenantID && m.ReferenceType == refType && m.ReferenceID == refID {
			out = append(out, m)
		}
	}
	return out, nil
}

// --- fixtures ---

type gatePassFixture struct {
	tenantID     uuid.UUID
	passRepo     *memGatePassRepo
	itemRepo     *memItemRepo
	movementRepo *memMovementRepo
	packagedRepo *memPackagedRepo
	packagedMov  *memPackagedMovementRepo
}

func newGatePassFixture() (*GatePassService, *gatePassFixture) {
	f := &gatePassFixture{
		tenantID:     uuid.New(),
		passRepo:     newMemGatePassRepo(),
		itemRepo:     newMemItemRepo(),
		movementRepo: &memMovementRepo{},
		packagedRepo: newMemPackagedRepo(),
		packagedMov:  &memPackagedMovementRepo{},
	}
	scope := NewNoOpTransactionScope(f.passRepo, f.itemRepo, f.movementRepo, f.packagedRepo, f.packagedMov)
	return NewGatePassService(scope, zap.NewNop()), f
}

func (f *gatePassFixture) seedItem(t *testing.T, code string, stock int64) *inventory.InventoryItem {
	t.Helper()
	item, err := inventory.NewInventoryItem(f.tenantID, code, "Material "+code, inventory.UnitKilogram)
	require.NoError(t, err)
	if stock > 0 {
		_, err = item.ApplyMovement(inventory.MovementTypePurchase, inventory.DirectionIn, decimal.NewFromInt(stock), inventory.MovementRef{
			Type: inventory.ReferenceTypeAdjustment,
			ID:   uuid.New(),
		})
		require.NoError(t, err)
		item.ClearDomainEvents()
	}
	require.NoError(t, f.itemRepo.Save(context.Background(), item))
	return item
}

func (f *gatePassFixture) seedPackaged(t *testing.T, stock int) *inventory.PackagedProduct {
	t.Helper()
	packaged, err := inventory.NewPackagedProduct(f.tenantID, uuid.New(), "Masala chai 250g", inventory.PackagingSize250G)
	require.NoError(t, err)
	if stock > 0 {
		_, err = packaged.ApplyMovement(inventory.MovementTypeProduction, inventory.DirectionIn, stock, inventory.MovementRef{
			Type: inventory.ReferenceTypeAdjustment,
			ID:   uuid.New(),
		})
		require.NoError(t, err)
		packaged.ClearDomainEvents()
	}
	require.NoError(t, f.packagedRepo.Save(context.Background(), packaged))
	return packaged
}

// --- tests ---

func TestGatePassService_Create(t *testing.T) {
	t.Run("mixed raw material and packaged lines", func(t *testing.T) {
		service, f := newGatePassFixture()
		item := f.seedItem(t, "COT-A", 50)
		packaged := f.seedPackaged(t, 30)

		pass, err := service.CreateGatePass(context.Background(), f.tenantID, CreateGatePassRequest{
			Type:     "outward",
			IssuedTo: "Mehta Transport",
			Purpose:  "wholesale delivery",
			Items: []GatePassItemRequest{
				{RefKind: "raw_material", RefID: item.ID, Quantity: decimal.NewFromInt(10)},
				{RefKind: "packaged_product", RefID: packaged.ID, Quantity: decimal.NewFromInt(20)},
			},
		})

		require.NoError(t, err)
		assert.Contains(t, pass.Number, "GP-")
		assert.Equal(t, "draft", pass.Status)
		assert.Len(t, pass.Items, 2)
	})

	t.Run("dangling stock reference is rejected", func(t *testing.T) {
		service, f := newGatePassFixture()

		_, err := service.CreateGatePass(context.Background(), f.tenantID, CreateGatePassRequest{
			Type:     "outward",
			IssuedTo: "Mehta Transport",
			Items: []GatePassItemRequest{
				{RefKind: "raw_material", RefID: uuid.New(), Quantity: decimal.NewFromInt(10)},
			},
		})

		require.ErrorIs(t, err, shared.ErrNotFound)
		assert.Empty(t, f.passRepo.passes)
	})

	t.Run("fractional packaged quantity is rejected", func(t *testing.T) {
		service, f := newGatePassFixture()
		packaged := f.seedPackaged(t, 30)

		_, err := service.CreateGatePass(context.Background(), f.tenantID, CreateGatePassRequest{
			Type:     "outward",
			IssuedTo: "Mehta Transport",
			Items: []GatePassItemRequest{
				{RefKind: "packaged_product", RefID: packaged.ID, Quantity: decimal.NewFromFloat(2.5)},
			},
		})

		require.Error(t, err)
	})
}

func TestGatePassService_Approve(t *testing.T) {
	create := func(t *testing.T, service *GatePassService, f *gatePassFixture, passType string, items []GatePassItemRequest) *GatePassResponse {
		t.Helper()
		pass, err := service.CreateGatePass(context.Background(), f.tenantID, CreateGatePassRequest{
			Type:     passType,
			IssuedTo: "Mehta Transport",
			Items:    items,
		})
		require.NoError(t, err)
		return pass
	}

	t.Run("outward pass consumes both stock kinds", func(t *testing.T) {
		service, f := newGatePassFixture()
		ctx := context.Background()
		item := f.seedItem(t, "COT-A", 50)
		packaged := f.seedPackaged(t, 30)
		pass := create(t, service, f, "outward", []GatePassItemRequest{
			{RefKind: "raw_material", RefID: item.ID, Quantity: decimal.NewFromInt(10)},
			{RefKind: "packaged_product", RefID: packaged.ID, Quantity: decimal.NewFromInt(20)},
		})

		approved, err := service.ApproveGatePass(ctx, f.tenantID, pass.ID, uuid.New())

		require.NoError(t, err)
		assert.Equal(t, "approved", approved.Status)
		assert.NotNil(t, approved.ApprovedAt)

		storedItem, err := f.itemRepo.FindByID(ctx, item.ID)
		require.NoError(t, err)
		assert.True(t, storedItem.CurrentStock.Equal(decimal.NewFromInt(40)))
		storedPackaged, err := f.packagedRepo.FindByID(ctx, packaged.ID)
		require.NoError(t, err)
		assert.Equal(t, 10, storedPackaged.StockQuantity)

		rawMovements, err := f.movementRepo.FindByReference(ctx, f.tenantID, inventory.ReferenceTypeGatePass, pass.ID)
		require.NoError(t, err)
		require.Len(t, rawMovements, 1)
		assert.Equal(t, inventory.MovementTypeTransfer, rawMovements[0].MovementType)
		assert.True(t, rawMovements[0].Quantity.Equal(decimal.NewFromInt(-10)))

		packagedMovements, err := f.packagedMov.FindByReference(ctx, f.tenantID, inventory.ReferenceTypeGatePass, pass.ID)
		require.NoError(t, err)
		require.Len(t, packagedMovements, 1)
		assert.Equal(t, -20, packagedMovements[0].Quantity)
	})

	t.Run("inward pass adds stock", func(t *testing.T) {
		service, f := newGatePassFixture()
		ctx := context.Background()
		item := f.seedItem(t, "COT-A", 5)
		pass := create(t, service, f, "inward", []GatePassItemRequest{
			{RefKind: "raw_material", RefID: item.ID, Quantity: decimal.NewFromInt(10)},
		})

		_, err := service.ApproveGatePass(ctx, f.tenantID, pass.ID, uuid.New())

		require.NoError(t, err)
		stored, err := f.itemRepo.FindByID(ctx, item.ID)
		require.NoError(t, err)
		assert.True(t, stored.CurrentStock.Equal(decimal.NewFromInt(15)))
	})

	t.Run("return pass adds stock back", func(t *testing.T) {
		service, f := newGatePassFixture()
		ctx := context.Background()
		packaged := f.seedPackaged(t, 3)
		pass := create(t, service, f, "return", []GatePassItemRequest{
			{RefKind: "packaged_product", RefID: packaged.ID, Quantity: decimal.NewFromInt(7)},
		})

		_, err := service.ApproveGatePass(ctx, f.tenantID, pass.ID, uuid.New())

		require.NoError(t, err)
		stored, err := f.packagedRepo.FindByID(ctx, packaged.ID)
		require.NoError(t, err)
		assert.Equal(t, 10, stored.StockQuantity)
	})

	t.Run("insufficient stock applies nothing", func(t *testing.T) {
		service, f := newGatePassFixture()
		ctx := context.Background()
		item := f.seedItem(t, "COT-A", 5)
		pass := create(t, service, f, "outward", []GatePassItemRequest{
			{RefKind: "raw_material", RefID: item.ID, Quantity: decimal.NewFromInt(10)},
		})

		_, err := service.ApproveGatePass(ctx, f.tenantID, pass.ID, uuid.New())

		require.ErrorIs(t, err, shared.ErrInsufficientStock)
		stored, findErr := f.itemRepo.FindByID(ctx, item.ID)
		require.NoError(t, findErr)
		assert.True(t, stored.CurrentStock.Equal(decimal.NewFromInt(5)))
		assert.Empty(t, f.movementRepo.movements)

		storedPass, findErr := f.passRepo.FindByIDForTenant(ctx, f.tenantID, pass.ID)
		require.NoError(t, findErr)
		assert.Equal(t, domain.GatePassStatusDraft, storedPass.Status)
	})

	t.Run("approving twice fails", func(t *testing.T) {
		service, f := newGatePassFixture()
		ctx := context.Background()
		item := f.seedItem(t, "COT-A", 50)
		pass := create(t, service, f, "outward", []GatePassItemRequest{
			{RefKind: "raw_material", RefID: item.ID, Quantity: decimal.NewFromInt(10)},
		})
		_, err := service.ApproveGatePass(ctx, f.tenantID, pass.ID, uuid.New())
		require.NoError(t, err)

		_, err = service.ApproveGatePass(ctx, f.tenantID, pass.ID, uuid.New())

		require.Error(t, err)
		stored, findErr := f.itemRepo.FindByID(ctx, item.ID)
		require.NoError(t, findErr)
		assert.True(t, stored.CurrentStock.Equal(decimal.NewFromInt(40)))
	})
}

func TestGatePassService_Reject(t *testing.T) {
	t.Run("rejection leaves stock untouched", func(t *testing.T) {
		service, f := newGatePassFixture()
		ctx := context.Background()
		item := f.seedItem(t, "COT-A", 50)
		pass, err := service.CreateGatePass(ctx, f.tenantID, CreateGatePassRequest{
			Type:     "outward",
			IssuedTo: "Mehta Transport",
			Items: []GatePassItemRequest{
				{RefKind: "raw_material", RefID: item.ID, Quantity: decimal.NewFromInt(10)},
			},
		})
		require.NoError(t, err)

		rejected, err := service.RejectGatePass(ctx, f.tenantID, pass.ID)

		require.NoError(t, err)
		assert.Equal(t, "rejected", rejected.Status)
		assert.Empty(t, f.movementRepo.movements)

		_, err = service.ApproveGatePass(ctx, f.tenantID, pass.ID, uuid.New())
		require.Error(t, err)
	})
}
