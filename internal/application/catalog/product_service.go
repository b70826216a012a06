package catalog

import (
	"context"
	"errors"

	"github.com/craftline/backend/internal/domain/catalog"
	"github.com/craftline/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ProductCache is a read-through cache for single product lookups.
// Implementations must tolerate being down: a miss is always safe.
type ProductCache interface {
	Get(ctx context.Context, tenantID, productID uuid.UUID) (*ProductResponse, bool)
	Set(ctx context.Context, tenantID uuid.UUID, product ProductResponse)
	Invalidate(ctx context.Context, tenantID, productID uuid.UUID)
}

// ProductService manages the sellable catalog
type ProductService struct {
	txScope        TransactionScope
	cache          ProductCache
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewProductService creates a new product service
func NewProductService(txScope TransactionScope, logger *zap.Logger) *ProductService {
	return &ProductService{
		txScope: txScope,
		logger:  logger,
	}
}

// SetEventPublisher sets the event publisher for domain events
func (s *ProductService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetCache installs the product lookup cache
func (s *ProductService) SetCache(cache ProductCache) {
	s.cache = cache
}

func (s *ProductService) publishDomainEvents(ctx context.Context, aggregate interface {
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

func (s *ProductService) invalidate(ctx context.Context, tenantID, productID uuid.UUID) {
	if s.cache != nil {
		s.cache.Invalidate(ctx, tenantID, productID)
	}
}

// CreateProduct creates a product. SKUs are unique per tenant.
func (s *ProductService) CreateProduct(ctx context.Context, tenantID uuid.UUID, req CreateProductRequest) (*ProductResponse, error) {
	product, err := catalog.NewProduct(tenantID, req.SKU, req.Name, req.Price, req.TaxRate)
	if err != nil {
		return nil, err
	}
	product.Description = req.Description
	product.HSNCode = req.HSNCode
	if req.Stock > 0 {
		if err := product.SetStock(req.Stock); err != nil {
			return nil, err
		}
	}

	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		existing, err := repos.ProductRepo().FindBySKU(ctx, tenantID, product.SKU)
		if err != nil && !errors.Is(err, shared.ErrNotFound) {
			return err
		}
		if existing != nil {
			return shared.NewDomainError("ALREADY_EXISTS", "A product with this SKU already exists")
		}
		return repos.ProductRepo().Save(ctx, product)
	})
	if err != nil {
		return nil, err
	}

	s.publishDomainEvents(ctx, product)

	s.logger.Info("Product created",
		zap.String("sku", product.SKU),
		zap.String("product_id", product.ID.String()))

	response := ToProductResponse(product)
	return &response, nil
}

// GetProduct returns a product, served from the cache when possible
func (s *ProductService) GetProduct(ctx context.Context, tenantID, productID uuid.UUID) (*ProductResponse, error) {
	if s.cache != nil {
		if cached, ok := s.cache.Get(ctx, tenantID, productID); ok {
			return cached, nil
		}
	}

	var product *catalog.Product
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		product, err = repos.ProductRepo().FindByIDForTenant(ctx, tenantID, productID)
		return err
	})
	if err != nil {
		return nil, err
	}

	response := ToProductResponse(product)
	if s.cache != nil {
		s.cache.Set(ctx, tenantID, response)
	}
	return &response, nil
}

// ListProducts returns the tenant's products
func (s *ProductService) ListProducts(ctx context.Context, tenantID uuid.UUID, filter ProductListFilter) ([]ProductResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "name"
	}
	if filter.OrderDir == "" {
		filter.OrderDir = "asc"
	}

	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Search:   filter.Search,
		Filters:  make(map[string]interface{}),
	}

	var (
		products []catalog.Product
		total    int64
	)
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		if filter.OnlyActive {
			products, err = repos.ProductRepo().FindActive(ctx, tenantID, domainFilter)
		} else {
			products, err = repos.ProductRepo().FindAllForTenant(ctx, tenantID, domainFilter)
		}
		if err != nil {
			return err
		}
		total, err = repos.ProductRepo().CountForTenant(ctx, tenantID, domainFilter)
		return err
	})
	if err != nil {
		return nil, 0, err
	}
	return ToProductResponses(products), total, nil
}

// UpdateProduct updates name, description and HSN code
func (s *ProductService) UpdateProduct(ctx context.Context, tenantID, productID uuid.UUID, req UpdateProductRequest) (*ProductResponse, error) {
	return s.mutateProduct(ctx, tenantID, productID, func(p *catalog.Product) error {
		return p.Update(req.Name, req.Description, req.HSNCode)
	})
}

// SetPricing updates the selling price and tax rate
func (s *ProductService) SetPricing(ctx context.Context, tenantID, productID uuid.UUID, req SetPricingRequest) (*ProductResponse, error) {
	return s.mutateProduct(ctx, tenantID, productID, func(p *catalog.Product) error {
		return p.SetPricing(req.Price, req.TaxRate)
	})
}

// SetStock replaces the catalog stock level directly
func (s *ProductService) SetStock(ctx context.Context, tenantID, productID uuid.UUID, req SetStockRequest) (*ProductResponse, error) {
	return s.mutateProduct(ctx, tenantID, productID, func(p *catalog.Product) error {
		return p.SetStock(req.Quantity)
	})
}

// ActivateProduct makes the product purchasable again
func (s *ProductService) ActivateProduct(ctx context.Context, tenantID, productID uuid.UUID) (*ProductResponse, error) {
	return s.mutateProduct(ctx, tenantID, productID, func(p *catalog.Product) error {
		p.Activate()
		return nil
	})
}

// DeactivateProduct hides the product from the storefront
func (s *ProductService) DeactivateProduct(ctx context.Context, tenantID, productID uuid.UUID) (*ProductResponse, error) {
	return s.mutateProduct(ctx, tenantID, productID, func(p *catalog.Product) error {
		p.Deactivate()
		return nil
	})
}

func (s *ProductService) mutateProduct(ctx context.Context, tenantID, productID uuid.UUID, mutate func(*catalog.Product) error) (*ProductResponse, error) {
	var product *catalog.Product
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		product, err = repos.ProductRepo().FindByIDForTenant(ctx, tenantID, productID)
		if err != nil {
			return err
		}
		if err := mutate(product); err != nil {
			return err
		}
		return repos.ProductRepo().SaveWithLock(ctx, product)
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, tenantID, productID)
	s.publishDomainEvents(ctx, product)

	response := ToProductResponse(product)
	return &response, nil
}
