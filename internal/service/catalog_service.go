package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"storefront/internal/entity"
	"storefront/internal/events"
	"storefront/internal/repository"
)

const defaultMinStockLevel = 10

// maxPrice is the first value a DECIMAL(12,2) column cannot hold.
var maxPrice = decimal.New(1, 10)

// ProductInput carries the editable fields of a product. InitialStock is only read on create.
type ProductInput struct {
	Name          string
	Description   string
	Price         decimal.Decimal
	InitialStock  int
	MinStockLevel *int
	CategoryID    int
	SKU           string
	Status        entity.ProductStatus
}

func (in ProductInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidProduct)
	}
	if in.Price.IsNegative() {
		return fmt.Errorf("%w: price must not be negative", ErrInvalidProduct)
	}
	if !in.Price.Equal(in.Price.Round(2)) {
		return fmt.Errorf("%w: price has more than two decimal places", ErrInvalidProduct)
	}
	if in.Price.GreaterThanOrEqual(maxPrice) {
		return fmt.Errorf("%w: price must be below %s", ErrInvalidProduct, maxPrice)
	}
	if in.InitialStock < 0 || in.InitialStock > entity.MaxStockQuantity {
		return fmt.Errorf("%w: initial stock must be between 0 and %d", ErrInvalidProduct, entity.MaxStockQuantity)
	}
	if in.MinStockLevel != nil && *in.MinStockLevel < 0 {
		return fmt.Errorf("%w: min stock level must not be negative", ErrInvalidProduct)
	}
	if in.Status != "" && !in.Status.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidProduct, in.Status)
	}
	return nil
}

type CatalogService struct {
	store     repository.Store
	cache     ProductCache
	publisher events.Publisher
}

// NewCatalogService creates a new instance of CatalogService. cache may be nil.
func NewCatalogService(store repository.Store, cache ProductCache, publisher events.Publisher) *CatalogService {
	return &CatalogService{store: store, cache: cache, publisher: publisher}
}

func (s *CatalogService) ListProducts(ctx context.Context, filter repository.ProductFilter) ([]*entity.Product, error) {
	products, err := s.store.Products().ListProducts(ctx, filter)
	if err != nil {
		return nil, persistence("list products", err)
	}
	return products, nil
}

// GetProduct reads through the product cache. A cache failure falls back to the store.
func (s *CatalogService) GetProduct(ctx context.Context, id int) (*entity.Product, error) {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, id)
		if err != nil {
			logger.Warn().Err(err).Int("product_id", id).Msg("Error getting product from cache")
		} else if cached != nil {
			return cached, nil
		}
	}

	product, err := s.store.Products().GetProduct(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, persistence("load product", err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, product); err != nil {
			logger.Warn().Err(err).Int("product_id", id).Msg("Error setting product in cache")
		}
	}
	return product, nil
}

// CreateProduct inserts the product with zero stock and books any initial stock as a purchase.
func (s *CatalogService) CreateProduct(ctx context.Context, in ProductInput) (*entity.Product, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	product := &entity.Product{
		Name:          strings.TrimSpace(in.Name),
		Description:   in.Description,
		Price:         in.Price,
		MinStockLevel: defaultMinStockLevel,
		CategoryID:    in.CategoryID,
		SKU:           in.SKU,
		Status:        in.Status,
	}
	if in.MinStockLevel != nil {
		product.MinStockLevel = *in.MinStockLevel
	}
	if product.Status == "" {
		product.Status = entity.ProductStatusActive
	}

	var txn *entity.InventoryTransaction
	err := repository.WithTx(ctx, s.store, func(tx repository.Tx) error {
		if err := tx.Products().CreateProduct(ctx, product); err != nil {
			return err
		}
		if in.InitialStock == 0 {
			return nil
		}
		locked, t, err := adjustStock(ctx, tx, product.ID, stockChange{
			delta:         in.InitialStock,
			txnType:       entity.TransactionPurchase,
			referenceType: entity.ReferenceManual,
			notes:         "initial stock",
		})
		if err != nil {
			return err
		}
		product.StockQuantity = locked.StockQuantity
		txn = t
		return nil
	})
	if err != nil {
		err = classify("create product", err)
		logFailure(err, "Error creating product")
		return nil, err
	}

	logger.Info().Int("product_id", product.ID).Str("name", product.Name).Int("stock", product.StockQuantity).Msg("Product created")

	if txn != nil {
		if e, err := events.New(events.StockAdjusted, product.ID, events.StockAdjustedPayload{
			TransactionID: txn.ID,
			Type:          txn.Type,
			Notes:         txn.Notes,
			Lines:         []events.StockLine{stockLine(product, in.InitialStock)},
		}); err == nil {
			publish(ctx, s.publisher, e)
		}
	}
	return product, nil
}

// UpdateProduct replaces the descriptive fields. Stock only moves through stock adjustments.
func (s *CatalogService) UpdateProduct(ctx context.Context, id int, in ProductInput) (*entity.Product, error) {
	in.InitialStock = 0
	if err := in.validate(); err != nil {
		return nil, err
	}

	product, err := s.store.Products().GetProduct(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, persistence("load product", err)
	}

	product.Name = strings.TrimSpace(in.Name)
	product.Description = in.Description
	product.Price = in.Price
	product.CategoryID = in.CategoryID
	product.SKU = in.SKU
	if in.MinStockLevel != nil {
		product.MinStockLevel = *in.MinStockLevel
	}
	if in.Status != "" {
		product.Status = in.Status
	}

	if err := s.store.Products().UpdateProduct(ctx, product); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		err = persistence("update product", err)
		logFailure(err, "Error updating product")
		return nil, err
	}

	invalidateProducts(ctx, s.cache, product.ID)
	return product, nil
}

func (s *CatalogService) ListCategories(ctx context.Context) ([]*entity.Category, error) {
	categories, err := s.store.Categories().ListCategories(ctx)
	if err != nil {
		return nil, persistence("list categories", err)
	}
	return categories, nil
}

func (s *CatalogService) CreateCategory(ctx context.Context, name, description string) (*entity.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: category name is required", ErrInvalidProduct)
	}
	category := &entity.Category{Name: name, Description: description}
	if err := s.store.Categories().CreateCategory(ctx, category); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrCategoryExists
		}
		return nil, persistence("create category", err)
	}
	return category, nil
}
