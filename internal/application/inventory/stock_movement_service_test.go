package inventory

import (
	"context"
	"testing"

	domain "github.com/craftline/backend/internal/domain/inventory"
	"github.com/craftline/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// --- in-memory repositories ---

type memItemRepo struct {
	items map[uuid.UUID]*domain.InventoryItem
}

func newMemItemRepo() *memItemRepo {
	return &memItemRepo{items: make(map[uuid.UUID]*domain.InventoryItem)}
}

func (r *memItemRepo) FindByID(_ context.Context, id uuid.UUID) (*domain.InventoryItem, error) {
	item, ok := r.items[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	copied := *item
	return &copied, nil
}

func (r *memItemRepo) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*domain.InventoryItem, error) {
	item, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if item.TenantID != tenantID {
		return nil, shared.ErrNotFound
	}
	return item, nil
}

func (r *memItemRepo) FindByCode(_ context.Context, tenantID uuid.UUID, code string) (*domain.InventoryItem, error) {
	for _, item := range r.items {
		if item.TenantID == tenantID && item.Code == code {
			copied := *item
			return &copied, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memItemRepo) FindByIDs(_ context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]domain.InventoryItem, error) {
	var out []domain.InventoryItem
	for _, id := range ids {
		if item, ok := r.items[id]; ok && item.TenantID == tenantID {
			out = append(out, *item)
		}
	}
	return out, nil
}

func (r *memItemRepo) FindAllForTenant(_ context.Context, tenantID uuid.UUID, _ shared.Filter) ([]domain.InventoryItem, error) {
	var out []domain.InventoryItem
	for _, item := range r.items {
		if item.TenantID == tenantID {
			out = append(out, *item)
		}
	}
	return out, nil
}

func (r *memItemRepo) FindBelowReorderLevel(_ context.Context, tenantID uuid.UUID) ([]domain.InventoryItem, error) {
	var out []domain.InventoryItem
	for _, item := range r.items {
		if item.TenantID == tenantID && item.IsActive &&
			item.ReorderLevel.IsPositive() && item.CurrentStock.LessThanOrEqual(item.ReorderLevel) {
			out = append(out, *item)
		}
	}
	return out, nil
}

func (r *memItemRepo) Save(_ context.Context, item *domain.InventoryItem) error {
	copied := *item
	r.items[item.ID] = &copied
	return nil
}

func (r *memItemRepo) SaveWithLock(_ context.Context, item *domain.InventoryItem) error {
	stored, ok := r.items[item.ID]
	if !ok {
		return shared.ErrNotFound
	}
	// The caller incremented the version before saving
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
	movements []domain.StockMovement
}

func (r *memMovementRepo) Save(_ context.Context, movements ...*domain.StockMovement) error {
	for _, m := range movements {
		r.movements = append(r.movements, *m)
	}
	return nil
}

func (r *memMovementRepo) FindByItem(_ context.Context, tenantID, itemID uuid.UUID, _ shared.Filter) ([]domain.StockMovement, int64, error) {
	var out []domain.StockMovement
	for _, m := range r.movements {
		if m.TenantID == tenantID && m.InventoryItemID == itemID {
			out = append(out, m)
		}
	}
	return out, int64(len(out)), nil
}

func (r *memMovementRepo) FindByReference(_ context.Context, tenantID uuid.UUID, refType domain.ReferenceType, refID uuid.UUID) ([]domain.StockMovement, error) {
	var out []domain.StockMovement
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
	products map[uuid.UUID]*domain.PackagedProduct
}

func newMemPackagedRepo() *memPackagedRepo {
	return &memPackagedRepo{products: make(map[uuid.UUID]*domain.PackagedProduct)}
}

func (r *memPackagedRepo) FindByID(_ context.Context, id uuid.UUID) (*domain.PackagedProduct, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	copied := *p
	return &copied, nil
}

func (r *memPackagedRepo) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*domain.PackagedProduct, error) {
	p, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.TenantID != tenantID {
		return nil, shared.ErrNotFound
	}
	return p, nil
}

func (r *memPackagedRepo) FindByProduct(_ context.Context, tenantID, productID uuid.UUID) ([]domain.PackagedProduct, error) {
	var out []domain.PackagedProduct
	for _, p := range r.products {
		if p.TenantID == tenantID && p.ProductID == productID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *memPackagedRepo) FindAllForTenant(_ context.Context, tenantID uuid.UUID, _ shared.Filter) ([]domain.PackagedProduct, error) {
	var out []domain.PackagedProduct
	for _, p := range r.products {
		if p.TenantID == tenantID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *memPackagedRepo) Save(_ context.Context, p *domain.PackagedProduct) error {
	copied := *p
	r.products[p.ID] = &copied
	return nil
}

func (r *memPackagedRepo) SaveWithLock(_ context.Context, p *domain.PackagedProduct) error {
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
	movements []domain.PackagedProductMovement
}

func (r *memPackagedMovementRepo) Save(_ context.Context, movements ...*domain.PackagedProductMovement) error {
	for _, m := range movements {
		r.movements = append(r.movements, *m)
	}
	return nil
}

func (r *memPackagedMovementRepo) FindByProduct(_ context.Context, tenantID, productID uuid.UUID, _ shared.Filter) ([]domain.PackagedProductMovement, int64, error) {
	var out []domain.PackagedProductMovement
	for _, m := range r.movements {
		if m.TenantID == tenantID && m.PackagedProductID == productID {
			out = append(out, m)
		}
	}
	return out, int64(len(out)), nil
}

func (r *memPackagedMovementRepo) FindByReference(_ context.Context, tenantID uuid.UUID, refType domain.ReferenceType, refID uuid.UUID) ([]domain.PackagedProductMovement, error) {
	var out []domain.PackagedProductMovement
	for _, m := range r.movements {
		if m.TenantID == tenantID && m.ReferenceType == refType && m.ReferenceID == refID {
			out = append(out, m)
		}
	}
	return out, nil
}

// --- harness ---

type serviceFixture struct {
	service      *StockMovementService
	itemRepo     *memItemRepo
	movementRepo *memMovementRepo
	packagedRepo *memPackagedRepo
	packagedMov  *memPackagedMovementRepo
	tenantID     uuid.UUID
}

func newServiceFixture() *serviceFixture {
	itemRepo := newMemItemRepo()
	movementRepo := &memMovementRepo{}
	packagedRepo := newMemPackagedRepo()
	packagedMov := &memPackagedMovementRepo{}
	scope := NewNoOpTransactionScope(itemRepo, movementRepo, packagedRepo, packagedMov)
	return &serviceFixture{
		service:      NewStockMovementService(scope, zap.NewNop()),
		itemRepo:     itemRepo,
		movementRepo: movementRepo,
		packagedRepo: packagedRepo,
		packagedMov:  packagedMov,
		tenantID:     uuid.New(),
	}
}

func (f *serviceFixture) seedItem(t *testing.T, stock decimal.Decimal) uuid.UUID {
	t.Helper()
	ctx := context.Background()
	resp, err := f.service.CreateItem(ctx, f.tenantID, CreateItemRequest{
		Code: "TUR-001",
		Name: "Turmeric",
		Unit: "kg",
	})
	require.NoError(t, err)
	if stock.IsPositive() {
		_, err = f.service.AdjustStock(ctx, f.tenantID, AdjustStockRequest{
			ItemID:    resp.ID,
			Direction: "in",
			Quantity:  stock,
			Reason:    "opening balance",
		})
		require.NoError(t, err)
	}
	return resp.ID
}

func TestStockMovementService_CreateItem(t *testing.T) {
	f := newServiceFixture()
	ctx := context.Background()

	t.Run("creates item with uppercased code", func(t *testing.T) {
		resp, err := f.service.CreateItem(ctx, f.tenantID, CreateItemRequest{
			Code: "chl-001",
			Name: "Chilli",
			Unit: "kg",
		})

		require.NoError(t, err)
		assert.Equal(t, "CHL-001", resp.Code)
		assert.True(t, resp.CurrentStock.IsZero())
	})

	t.Run("duplicate code rejected", func(t *testing.T) {
		_, err := f.service.CreateItem(ctx, f.tenantID, CreateItemRequest{
			Code: "CHL-001",
			Name: "Chilli again",
			Unit: "kg",
		})

		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "ALREADY_EXISTS", domainErr.Code)
	})
}

func TestStockMovementService_AdjustStock(t *testing.T) {
	t.Run("inbound adjustment writes balance and audit row together", func(t *testing.T) {
		f := newServiceFixture()
		itemID := f.seedItem(t, decimal.Zero)

		resp, err := f.service.AdjustStock(context.Background(), f.tenantID, AdjustStockRequest{
			ItemID:    itemID,
			Direction: "in",
			Quantity:  decimal.NewFromFloat(12.5),
			Reason:    "stock take surplus",
		})

		require.NoError(t, err)
		assert.True(t, resp.CurrentStock.Equal(decimal.NewFromFloat(12.5)))
		require.Len(t, f.movementRepo.movements, 1)
		m := f.movementRepo.movements[0]
		assert.True(t, m.Quantity.Equal(decimal.NewFromFloat(12.5)))
		assert.True(t, m.BalanceAfter.Equal(decimal.NewFromFloat(12.5)))
		assert.Equal(t, domain.ReferenceTypeAdjustment, m.ReferenceType)
	})

	t.Run("outbound beyond balance fails and writes nothing", func(t *testing.T) {
		f := newServiceFixture()
		itemID := f.seedItem(t, decimal.NewFromInt(5))
		before := len(f.movementRepo.movements)

		_, err := f.service.AdjustStock(context.Background(), f.tenantID, AdjustStockRequest{
			ItemID:    itemID,
			Direction: "out",
			Quantity:  decimal.NewFromInt(6),
			Reason:    "damaged",
		})

		require.ErrorIs(t, err, shared.ErrInsufficientStock)
		assert.Len(t, f.movementRepo.movements, before)
		item, err := f.itemRepo.FindByIDForTenant(context.Background(), f.tenantID, itemID)
		require.NoError(t, err)
		assert.True(t, item.CurrentStock.Equal(decimal.NewFromInt(5)))
	})

	t.Run("unknown direction rejected", func(t *testing.T) {
		f := newServiceFixture()
		itemID := f.seedItem(t, decimal.Zero)

		_, err := f.service.AdjustStock(context.Background(), f.tenantID, AdjustStockRequest{
			ItemID:    itemID,
			Direction: "sideways",
			Quantity:  decimal.NewFromInt(1),
			Reason:    "test",
		})

		require.Error(t, err)
	})
}

func TestStockMovementService_CheckConsistency(t *testing.T) {
	t.Run("balance matches movement sum", func(t *testing.T) {
		f := newServiceFixture()
		itemID := f.seedItem(t, decimal.NewFromInt(10))
		ctx := context.Background()

		_, err := f.service.AdjustStock(ctx, f.tenantID, AdjustStockRequest{
			ItemID: itemID, Direction: "out", Quantity: decimal.NewFromInt(3), Reason: "wastage",
		})
		require.NoError(t, err)

		result, err := f.service.CheckConsistency(ctx, f.tenantID, itemID)

		require.NoError(t, err)
		assert.True(t, result.Consistent)
		assert.True(t, result.CurrentStock.Equal(decimal.NewFromInt(7)))
		assert.True(t, result.MovementSum.Equal(decimal.NewFromInt(7)))
	})

	t.Run("detects divergence", func(t *testing.T) {
		f := newServiceFixture()
		itemID := f.seedItem(t, decimal.NewFromInt(10))
		ctx := context.Background()

		// Simulate a corrupt write that bypassed the movement methods
		stored := f.itemRepo.items[itemID]
		stored.CurrentStock = decimal.NewFromInt(99)

		result, err := f.service.CheckConsistency(ctx, f.tenantID, itemID)

		require.NoError(t, err)
		assert.False(t, result.Consistent)
	})
}

func TestStockMovementService_LowStockReport(t *testing.T) {
	f := newServiceFixture()
	ctx := context.Background()

	low, err := f.service.CreateItem(ctx, f.tenantID, CreateItemRequest{
		Code: "LOW-001", Name: "Cumin", Unit: "kg",
		ReorderLevel: decimal.NewFromInt(10),
	})
	require.NoError(t, err)
	_, err = f.service.AdjustStock(ctx, f.tenantID, AdjustStockRequest{
		ItemID: low.ID, Direction: "in", Quantity: decimal.NewFromInt(4), Reason: "opening",
	})
	require.NoError(t, err)

	ok, err := f.service.CreateItem(ctx, f.tenantID, CreateItemRequest{
		Code: "OK-001", Name: "Pepper", Unit: "kg",
		ReorderLevel: decimal.NewFromInt(2),
	})
	require.NoError(t, err)
	_, err = f.service.AdjustStock(ctx, f.tenantID, AdjustStockRequest{
		ItemID: ok.ID, Direction: "in", Quantity: decimal.NewFromInt(50), Reason: "opening",
	})
	require.NoError(t, err)

	report, err := f.service.LowStockReport(ctx, f.tenantID)

	require.NoError(t, err)
	require.Len(t, report, 1)
	assert.Equal(t, "LOW-001", report[0].Code)
}

func TestStockMovementService_PackagedStock(t *testing.T) {
	f := newServiceFixture()
	ctx := context.Background()

	created, err := f.service.CreatePackagedProduct(ctx, f.tenantID, CreatePackagedProductRequest{
		ProductID:     uuid.New(),
		Name:          "Turmeric Powder 250g",
		PackagingSize: "250g",
	})
	require.NoError(t, err)

	t.Run("inbound adjustment", func(t *testing.T) {
		resp, err := f.service.AdjustPackagedStock(ctx, f.tenantID, AdjustPackagedStockRequest{
			PackagedProductID: created.ID,
			Direction:         "in",
			Quantity:          40,
			Reason:            "production handover",
		})

		require.NoError(t, err)
		assert.Equal(t, 40, resp.StockQuantity)
		require.Len(t, f.packagedMov.movements, 1)
		assert.Equal(t, 40, f.packagedMov.movements[0].Quantity)
	})

	t.Run("outbound beyond balance rejected", func(t *testing.T) {
		_, err := f.service.AdjustPackagedStock(ctx, f.tenantID, AdjustPackagedStockRequest{
			PackagedProductID: created.ID,
			Direction:         "out",
			Quantity:          41,
			Reason:            "oversell",
		})

		require.ErrorIs(t, err, shared.ErrInsufficientStock)
	})
}
