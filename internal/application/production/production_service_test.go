package production

import (
	"context"
	"testing"

	"github.com/craftline/backend/internal/domain/catalog"
	"github.com/craftline/backend/internal/domain/inventory"
	domain "github.com/craftline/backend/internal/domain/production"
	"github.com/craftline/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// --- in-memory repositories ---

type memBOMRepo struct {
	boms map[uuid.UUID]*domain.BillOfMaterial
}

func newMemBOMRepo() *memBOMRepo {
	return &memBOMRepo{boms: make(map[uuid.UUID]*domain.BillOfMaterial)}
}

func copyBOM(b *domain.BillOfMaterial) *domain.BillOfMaterial {
	copied := *b
	copied.Items = append([]domain.BOMItem(nil), b.Items...)
	return &copied
}

func (r *memBOMRepo) FindByIDForTenant(_ context.Context, tenantID, id uuid.UUID) (*domain.BillOfMaterial, error) {
	bom, ok := r.boms[id]
	if !ok || bom.TenantID != tenantID {
		return nil, shared.ErrNotFound
	}
	return copyBOM(bom), nil
}

func (r *memBOMRepo) FindActiveByProduct(_ context.Context, tenantID, productID uuid.UUID) (*domain.BillOfMaterial, error) {
	for _, bom := range r.boms {
		if bom.TenantID == tenantID && bom.ProductID == productID && bom.IsActive {
			return copyBOM(bom), nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memBOMRepo) FindByProduct(_ context.Context, tenantID, productID uuid.UUID) ([]domain.BillOfMaterial, error) {
	var out []domain.BillOfMaterial
	for _, bom := range r.boms {
		if bom.TenantID == tenantID && bom.ProductID == productID {
			out = append(out, *copyBOM(bom))
		}
	}
	return out, nil
}

func (r *memBOMRepo) Save(_ context.Context, bom *domain.BillOfMaterial) error {
	r.boms[bom.ID] = copyBOM(bom)
	return nil
}

func (r *memBOMRepo) DeactivateSiblings(_ context.Context, tenantID, productID, keepID uuid.UUID) error {
	for _, bom := range r.boms {
		if bom.TenantID == tenantID && bom.ProductID == productID && bom.ID != keepID {
			bom.Deactivate()
		}
	}
	return nil
}

type memBatchRepo struct {
	batches map[uuid.UUID]*domain.ProductionBatch
}

func newMemBatchRepo() *memBatchRepo {
	return &memBatchRepo{batches: make(map[uuid.UUID]*domain.ProductionBatch)}
}

func copyBatch(b *domain.ProductionBatch) *domain.ProductionBatch {
	copied := *b
	copied.Materials = append([]domain.BatchMaterial(nil), b.Materials...)
	copied.Packaging = append([]domain.BatchPackaging(nil), b.Packaging...)
	return &copied
}

func (r *memBatchRepo) FindByIDForTenant(_ context.Context, tenantID, id uuid.UUID) (*domain.ProductionBatch, error) {
	batch, ok := r.batches[id]
	if !ok || batch.TenantID != tenantID {
		return nil, shared.ErrNotFound
	}
	return copyBatch(batch), nil
}

func (r *memBatchRepo) FindByNumber(_ context.Context, tenantID uuid.UUID, number string) (*domain.ProductionBatch, error) {
	for _, batch := range r.batches {
		if batch.TenantID == tenantID && batch.Number == number {
			return copyBatch(batch), nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memBatchRepo) FindAllForTenant(_ context.Context, tenantID uuid.UUID, filter shared.Filter) ([]domain.ProductionBatch, int64, error) {
	var out []domain.ProductionBatch
	for _, batch := range r.batches {
		if batch.TenantID != tenantID {
			continue
		}
		if status, ok := filter.Filters["status"]; ok && string(batch.Status) != status {
			continue
		}
		out = append(out, *copyBatch(batch))
	}
	return out, int64(len(out)), nil
}

func (r *memBatchRepo) Save(_ context.Context, batch *domain.ProductionBatch) error {
	r.batches[batch.ID] = copyBatch(batch)
	return nil
}

func (r *memBatchRepo) SaveWithLock(_ context.Context, batch *domain.ProductionBatch) error {
	stored, ok := r.batches[batch.ID]
	if !ok {
		return shared.ErrNotFound
	}
	if stored.Version != batch.Version-1 {
		return shared.ErrConcurrencyConflict
	}
	r.batches[batch.ID] = copyBatch(batch)
	return nil
}

type memProductRepo struct {
	products map[uuid.UUID]*catalog.Product
}

func newMemProductRepo() *memProductRepo {
	return &memProductRepo{products: make(map[uuid.UUID]*catalog.Product)}
}

func (r *memProductRepo) FindByID(_ context.Context, id uuid.UUID) (*catalog.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	copied := *p
	return &copied, nil
}

func (r *memProductRepo) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*catalog.Product, error) {
	p, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.TenantID != tenantID {
		return nil, shared.ErrNotFound
	}
	return p, nil
}

func (r *memProductRepo) FindBySKU(_ context.Context, tenantID uuid.UUID, sku string) (*catalog.Product, error) {
	for _, p := range r.products {
		if p.TenantID == tenantID && p.SKU == sku {
			copied := *p
			return &copied, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memProductRepo) FindAllForTenant(_ context.Context, tenantID uuid.UUID, _ shared.Filter) ([]catalog.Product, error) {
	var out []catalog.Product
	for _, p := range r.products {
		if p.TenantID == tenantID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *memProductRepo) FindActive(_ context.Context, tenantID uuid.UUID, _ shared.Filter) ([]catalog.Product, error) {
	var out []catalog.Product
	for _, p := range r.products {
		if p.TenantID == tenantID && p.IsActive() {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *memProductRepo) Save(_ context.Context, p *catalog.Product) error {
	copied := *p
	r.products[p.ID] = &copied
	return nil
}

func (r *memProductRepo) SaveWithLock(_ context.Context, p *catalog.Product) error {
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

func (r *memProductRepo) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	products, _ := r.FindAllForTenant(ctx, tenantID, filter)
	return int64(len(products)), nil
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

type productionFixture struct {
	tenantID     uuid.UUID
	bomRepo      *memBOMRepo
	batchRepo    *memBatchRepo
	productRepo  *memProductRepo
	itemRepo     *memItemRepo
	movementRepo *memMovementRepo
	packagedRepo *memPackagedRepo
	packagedMov  *memPackagedMovementRepo
}

func newProductionFixture() (*BOMService, *BatchService, *productionFixture) {
	f := &productionFixture{
		tenantID:     uuid.New(),
		bomRepo:      newMemBOMRepo(),
		batchRepo:    newMemBatchRepo(),
		productRepo:  newMemProductRepo(),
		itemRepo:     newMemItemRepo(),
		movementRepo: &memMovementRepo{},
		packagedRepo: newMemPackagedRepo(),
		packagedMov:  &memPackagedMovementRepo{},
	}
	scope := NewNoOpTransactionScope(f.bomRepo, f.batchRepo, f.productRepo, f.itemRepo, f.movementRepo, f.packagedRepo, f.packagedMov)
	return NewBOMService(scope, zap.NewNop()), NewBatchService(scope, zap.NewNop()), f
}

func (f *productionFixture) seedProduct(t *testing.T) uuid.UUID {
	t.Helper()
	product, err := catalog.NewProduct(f.tenantID, "TEA-MASALA", "Masala chai blend", decimal.NewFromInt(320), decimal.NewFromInt(5))
	require.NoError(t, err)
	require.NoError(t, f.productRepo.Save(context.Background(), product))
	return product.ID
}

func (f *productionFixture) seedItem(t *testing.T, code string, stock int64) *inventory.InventoryItem {
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

func (f *productionFixture) seedPackaged(t *testing.T, productID uuid.UUID, size inventory.PackagingSize) *inventory.PackagedProduct {
	t.Helper()
	packaged, err := inventory.NewPackagedProduct(f.tenantID, productID, "Masala chai "+string(size), size)
	require.NoError(t, err)
	require.NoError(t, f.packagedRepo.Save(context.Background(), packaged))
	return packaged
}

// seedActiveBOM creates product + materials + an active BOM:
// 0.5 kg tea and 0.1 kg spice per finished kg.
func (f *productionFixture) seedActiveBOM(t *testing.T, bomService *BOMService) (uuid.UUID, *inventory.InventoryItem, *inventory.InventoryItem) {
	t.Helper()
	productID := f.seedProduct(t)
	tea := f.seedItem(t, "TEA-RAW", 100)
	spice := f.seedItem(t, "SPICE-MIX", 20)

	_, err := bomService.CreateBOM(context.Background(), f.tenantID, CreateBOMRequest{
		ProductID: productID,
		Name:      "Masala chai recipe",
		Items: []BOMItemRequest{
			{InventoryItemID: tea.ID, QuantityPerUnit: decimal.NewFromFloat(0.5)},
			{InventoryItemID: spice.ID, QuantityPerUnit: decimal.NewFromFloat(0.1)},
		},
		Activate: true,
	})
	require.NoError(t, err)
	return productID, tea, spice
}

// --- BOM tests ---

func TestBOMService_Revisions(t *testing.T) {
	t.Run("activating a new revision retires the old one", func(t *testing.T) {
		bomService, _, f := newProductionFixture()
		ctx := context.Background()
		productID, tea, _ := f.seedActiveBOM(t, bomService)

		second, err := bomService.CreateBOM(ctx, f.tenantID, CreateBOMRequest{
			ProductID: productID,
			Name:      "Masala chai recipe v2",
			Items: []BOMItemRequest{
				{InventoryItemID: tea.ID, QuantityPerUnit: decimal.NewFromFloat(0.6)},
			},
			Activate: true,
		})
		require.NoError(t, err)
		assert.Equal(t, 2, second.Revision)
		assert.True(t, second.IsActive)

		active, err := bomService.ActiveBOMForProduct(ctx, f.tenantID, productID)
		require.NoError(t, err)
		assert.Equal(t, second.ID, active.ID)

		all, err := bomService.ListBOMsByProduct(ctx, f.tenantID, productID)
		require.NoError(t, err)
		activeCount := 0
		for _, bom := range all {
			if bom.IsActive {
				activeCount++
			}
		}
		assert.Equal(t, 1, activeCount)
	})

	t.Run("unknown product is rejected", func(t *testing.T) {
		bomService, _, f := newProductionFixture()
		item := f.seedItem(t, "TEA-RAW", 10)

		_, err := bomService.CreateBOM(context.Background(), f.tenantID, CreateBOMRequest{
			ProductID: uuid.New(),
			Name:      "orphan recipe",
			Items:     []BOMItemRequest{{InventoryItemID: item.ID, QuantityPerUnit: decimal.NewFromInt(1)}},
		})

		require.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("duplicate material on a BOM is rejected", func(t *testing.T) {
		bomService, _, f := newProductionFixture()
		productID := f.seedProduct(t)
		item := f.seedItem(t, "TEA-RAW", 10)

		_, err := bomService.CreateBOM(context.Background(), f.tenantID, CreateBOMRequest{
			ProductID: productID,
			Name:      "doubled recipe",
			Items: []BOMItemRequest{
				{InventoryItemID: item.ID, QuantityPerUnit: decimal.NewFromInt(1)},
				{InventoryItemID: item.ID, QuantityPerUnit: decimal.NewFromInt(2)},
			},
		})

		require.Error(t, err)
	})
}

// --- batch tests ---

func TestBatchService_CreateBatch(t *testing.T) {
	t.Run("plans materials from the active BOM", func(t *testing.T) {
		bomService, batchService, f := newProductionFixture()
		ctx := context.Background()
		productID, tea, spice := f.seedActiveBOM(t, bomService)
		packaged := f.seedPackaged(t, productID, inventory.PackagingSize250G)

		batch, err := batchService.CreateBatch(ctx, f.tenantID, CreateBatchRequest{
			ProductID:       productID,
			PlannedQuantity: 10,
			Packaging: []PackagingSpecRequest{
				{PackagedProductID: packaged.ID, PlannedUnits: 40},
			},
		})

		require.NoError(t, err)
		assert.Contains(t, batch.Number, "BATCH-")
		assert.Equal(t, "planned", batch.Status)
		require.Len(t, batch.Materials, 2)
		for _, m := range batch.Materials {
			switch m.InventoryItemID {
			case tea.ID:
				assert.True(t, m.RequiredQuantity.Equal(decimal.NewFromInt(5)))
			case spice.ID:
				assert.True(t, m.RequiredQuantity.Equal(decimal.NewFromInt(1)))
			default:
				t.Fatalf("unexpected material %s", m.InventoryItemID)
			}
		}
	})

	t.Run("rejects packaging of a different product", func(t *testing.T) {
		bomService, batchService, f := newProductionFixture()
		productID, _, _ := f.seedActiveBOM(t, bomService)
		foreign := f.seedPackaged(t, uuid.New(), inventory.PackagingSize1KG)

		_, err := batchService.CreateBatch(context.Background(), f.tenantID, CreateBatchRequest{
			ProductID:       productID,
			PlannedQuantity: 10,
			Packaging: []PackagingSpecRequest{
				{PackagedProductID: foreign.ID, PlannedUnits: 10},
			},
		})

		require.Error(t, err)
	})

	t.Run("requires an active BOM", func(t *testing.T) {
		_, batchService, f := newProductionFixture()
		productID := f.seedProduct(t)
		packaged := f.seedPackaged(t, productID, inventory.PackagingSize500G)

		_, err := batchService.CreateBatch(context.Background(), f.tenantID, CreateBatchRequest{
			ProductID:       productID,
			PlannedQuantity: 10,
			Packaging: []PackagingSpecRequest{
				{PackagedProductID: packaged.ID, PlannedUnits: 10},
			},
		})

		require.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestBatchService_MaterialRequirements(t *testing.T) {
	t.Run("reports shortfall against current stock", func(t *testing.T) {
		bomService, batchService, f := newProductionFixture()
		productID, tea, spice := f.seedActiveBOM(t, bomService)

		// 300 units need 150 tea (have 100) and 30 spice (have 20)
		requirements, err := batchService.MaterialRequirements(context.Background(), f.tenantID, productID, 300)

		require.NoError(t, err)
		require.Len(t, requirements, 2)
		for _, req := range requirements {
			assert.False(t, req.Sufficient)
			switch req.InventoryItemID {
			case tea.ID:
				assert.True(t, req.Shortfall.Equal(decimal.NewFromInt(50)))
			case spice.ID:
				assert.True(t, req.Shortfall.Equal(decimal.NewFromInt(10)))
			}
		}
	})
}

func TestBatchService_StartBatch(t *testing.T) {
	plan := func(t *testing.T, quantity, plannedUnits int) (*BatchService, *productionFixture, *BatchResponse, *inventory.InventoryItem, *inventory.InventoryItem, *inventory.PackagedProduct) {
		t.Helper()
		bomService, batchService, f := newProductionFixture()
		productID, tea, spice := f.seedActiveBOM(t, bomService)
		packaged := f.seedPackaged(t, productID, inventory.PackagingSize250G)
		batch, err := batchService.CreateBatch(context.Background(), f.tenantID, CreateBatchRequest{
			ProductID:       productID,
			PlannedQuantity: quantity,
			Packaging: []PackagingSpecRequest{
				{PackagedProductID: packaged.ID, PlannedUnits: plannedUnits},
			},
		})
		require.NoError(t, err)
		return batchService, f, batch, tea, spice, packaged
	}

	t.Run("draws every material and records consumption", func(t *testing.T) {
		batchService, f, batch, tea, spice, _ := plan(t, 10, 40)
		ctx := context.Background()

		started, err := batchService.StartBatch(ctx, f.tenantID, batch.ID)

		require.NoError(t, err)
		assert.Equal(t, "in_progress", started.Status)
		for _, m := range started.Materials {
			assert.True(t, m.ConsumedQuantity.Equal(m.RequiredQuantity))
		}

		storedTea, err := f.itemRepo.FindByID(ctx, tea.ID)
		require.NoError(t, err)
		assert.True(t, storedTea.CurrentStock.Equal(decimal.NewFromInt(95)))
		storedSpice, err := f.itemRepo.FindByID(ctx, spice.ID)
		require.NoError(t, err)
		assert.True(t, storedSpice.CurrentStock.Equal(decimal.NewFromInt(19)))

		movements, err := f.movementRepo.FindByReference(ctx, f.tenantID, inventory.ReferenceTypeProductionBatch, batch.ID)
		require.NoError(t, err)
		assert.Len(t, movements, 2)
		for _, m := range movements {
			assert.Equal(t, inventory.MovementTypeProduction, m.MovementType)
			assert.True(t, m.Quantity.IsNegative())
		}
	})

	t.Run("a shortage on any material draws nothing", func(t *testing.T) {
		// 100 units need 50 tea (have 100) and 10 spice, but spice stock
		// is drained first
		batchService, f, batch, tea, spice, _ := plan(t, 100, 400)
		ctx := context.Background()
		storedSpice := f.itemRepo.items[spice.ID]
		_, err := storedSpice.ApplyMovement(inventory.MovementTypeWastage, inventory.DirectionOut, decimal.NewFromInt(15), inventory.MovementRef{
			Type: inventory.ReferenceTypeAdjustment,
			ID:   uuid.New(),
		})
		require.NoError(t, err)

		_, err = batchService.StartBatch(ctx, f.tenantID, batch.ID)

		require.Error(t, err)
		storedTea, findErr := f.itemRepo.FindByID(ctx, tea.ID)
		require.NoError(t, findErr)
		assert.True(t, storedTea.CurrentStock.Equal(decimal.NewFromInt(100)))
		assert.Empty(t, f.movementRepo.movements)

		stored, findErr := f.batchRepo.FindByIDForTenant(ctx, f.tenantID, batch.ID)
		require.NoError(t, findErr)
		assert.Equal(t, domain.BatchStatusPlanned, stored.Status)
	})

	t.Run("starting twice fails", func(t *testing.T) {
		batchService, f, batch, _, _, _ := plan(t, 10, 40)
		ctx := context.Background()
		_, err := batchService.StartBatch(ctx, f.tenantID, batch.ID)
		require.NoError(t, err)

		_, err = batchService.StartBatch(ctx, f.tenantID, batch.ID)

		require.Error(t, err)
	})
}

func TestBatchService_CompleteBatch(t *testing.T) {
	started := func(t *testing.T, quantity, plannedUnits int) (*BatchService, *productionFixture, *BatchResponse, *inventory.PackagedProduct) {
		t.Helper()
		bomService, batchService, f := newProductionFixture()
		productID, _, _ := f.seedActiveBOM(t, bomService)
		packaged := f.seedPackaged(t, productID, inventory.PackagingSize250G)
		batch, err := batchService.CreateBatch(context.Background(), f.tenantID, CreateBatchRequest{
			ProductID:       productID,
			PlannedQuantity: quantity,
			Packaging: []PackagingSpecRequest{
				{PackagedProductID: packaged.ID, PlannedUnits: plannedUnits},
			},
		})
		require.NoError(t, err)
		_, err = batchService.StartBatch(context.Background(), f.tenantID, batch.ID)
		require.NoError(t, err)
		return batchService, f, batch, packaged
	}

	t.Run("full completion books the planned packaged units", func(t *testing.T) {
		batchService, f, batch, packaged := started(t, 10, 40)
		ctx := context.Background()

		completed, err := batchService.CompleteBatch(ctx, f.tenantID, batch.ID, CompleteBatchRequest{ProducedQuantity: 10})

		require.NoError(t, err)
		assert.Equal(t, "completed", completed.Status)
		assert.Equal(t, 10, completed.ProducedQuantity)
		require.Len(t, completed.Packaging, 1)
		assert.Equal(t, 40, completed.Packaging[0].ProducedUnits)

		stored, err := f.packagedRepo.FindByID(ctx, packaged.ID)
		require.NoError(t, err)
		assert.Equal(t, 40, stored.StockQuantity)

		movements, err := f.packagedMov.FindByReference(ctx, f.tenantID, inventory.ReferenceTypeProductionBatch, batch.ID)
		require.NoError(t, err)
		require.Len(t, movements, 1)
		assert.Equal(t, 40, movements[0].Quantity)
	})

	t.Run("partial completion floors the packaged units", func(t *testing.T) {
		batchService, f, batch, packaged := started(t, 10, 45)
		ctx := context.Background()

		// 45 * 7 / 10 = 31.5 -> 31 units, the remainder stays bulk
		completed, err := batchService.CompleteBatch(ctx, f.tenantID, batch.ID, CompleteBatchRequest{ProducedQuantity: 7})

		require.NoError(t, err)
		assert.Equal(t, 31, completed.Packaging[0].ProducedUnits)

		stored, err := f.packagedRepo.FindByID(ctx, packaged.ID)
		require.NoError(t, err)
		assert.Equal(t, 31, stored.StockQuantity)
	})

	t.Run("producing beyond the plan is rejected", func(t *testing.T) {
		batchService, f, batch, _ := started(t, 10, 40)

		_, err := batchService.CompleteBatch(context.Background(), f.tenantID, batch.ID, CompleteBatchRequest{ProducedQuantity: 11})

		require.Error(t, err)
	})

	t.Run("completing a planned batch fails", func(t *testing.T) {
		bomService, batchService, f := newProductionFixture()
		productID, _, _ := f.seedActiveBOM(t, bomService)
		packaged := f.seedPackaged(t, productID, inventory.PackagingSize250G)
		batch, err := batchService.CreateBatch(context.Background(), f.tenantID, CreateBatchRequest{
			ProductID:       productID,
			PlannedQuantity: 10,
			Packaging:       []PackagingSpecRequest{{PackagedProductID: packaged.ID, PlannedUnits: 40}},
		})
		require.NoError(t, err)

		_, err = batchService.CompleteBatch(context.Background(), f.tenantID, batch.ID, CompleteBatchRequest{ProducedQuantity: 5})

		require.Error(t, err)
	})
}

func TestBatchService_CancelBatch(t *testing.T) {
	t.Run("cancelling a planned batch touches no stock", func(t *testing.T) {
		bomService, batchService, f := newProductionFixture()
		ctx := context.Background()
		productID, _, _ := f.seedActiveBOM(t, bomService)
		packaged := f.seedPackaged(t, productID, inventory.PackagingSize250G)
		batch, err := batchService.CreateBatch(ctx, f.tenantID, CreateBatchRequest{
			ProductID:       productID,
			PlannedQuantity: 10,
			Packaging:       []PackagingSpecRequest{{PackagedProductID: packaged.ID, PlannedUnits: 40}},
		})
		require.NoError(t, err)

		cancelled, err := batchService.CancelBatch(ctx, f.tenantID, batch.ID)

		require.NoError(t, err)
		assert.Equal(t, "cancelled", cancelled.Status)
		assert.Empty(t, f.movementRepo.movements)
	})

	t.Run("cancelling an in-progress batch restores consumption exactly", func(t *testing.T) {
		bomService, batchService, f := newProductionFixture()
		ctx := context.Background()
		productID, tea, spice := f.seedActiveBOM(t, bomService)
		packaged := f.seedPackaged(t, productID, inventory.PackagingSize250G)
		batch, err := batchService.CreateBatch(ctx, f.tenantID, CreateBatchRequest{
			ProductID:       productID,
			PlannedQuantity: 10,
			Packaging:       []PackagingSpecRequest{{PackagedProductID: packaged.ID, PlannedUnits: 40}},
		})
		require.NoError(t, err)
		_, err = batchService.StartBatch(ctx, f.tenantID, batch.ID)
		require.NoError(t, err)

		cancelled, err := batchService.CancelBatch(ctx, f.tenantID, batch.ID)

		require.NoError(t, err)
		assert.Equal(t, "cancelled", cancelled.Status)

		storedTea, err := f.itemRepo.FindByID(ctx, tea.ID)
		require.NoError(t, err)
		assert.True(t, storedTea.CurrentStock.Equal(decimal.NewFromInt(100)))
		storedSpice, err := f.itemRepo.FindByID(ctx, spice.ID)
		require.NoError(t, err)
		assert.True(t, storedSpice.CurrentStock.Equal(decimal.NewFromInt(20)))

		sum, err := f.movementRepo.SumByItem(ctx, f.tenantID, tea.ID)
		require.NoError(t, err)
		assert.True(t, sum.IsZero())
	})

	t.Run("completed batches cannot be cancelled", func(t *testing.T) {
		bomService, batchService, f := newProductionFixture()
		ctx := context.Background()
		productID, _, _ := f.seedActiveBOM(t, bomService)
		packaged := f.seedPackaged(t, productID, inventory.PackagingSize250G)
		batch, err := batchService.CreateBatch(ctx, f.tenantID, CreateBatchRequest{
			ProductID:       productID,
			PlannedQuantity: 10,
			Packaging:       []PackagingSpecRequest{{PackagedProductID: packaged.ID, PlannedUnits: 40}},
		})
		require.NoError(t, err)
		_, err = batchService.StartBatch(ctx, f.tenantID, batch.ID)
		require.NoError(t, err)
		_, err = batchService.CompleteBatch(ctx, f.tenantID, batch.ID, CompleteBatchRequest{ProducedQuantity: 10})
		require.NoError(t, err)

		_, err = batchService.CancelBatch(ctx, f.tenantID, batch.ID)

		require.Error(t, err)
	})
}
