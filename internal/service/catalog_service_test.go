package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/entity"
	"storefront/internal/events"
	"storefront/internal/repository"
)

func TestCreateProduct_BooksInitialStock(t *testing.T) {
	f := newFixture(t)

	product, err := f.catalog.CreateProduct(context.Background(), ProductInput{
		Name:         "  Kettle ",
		Price:        dec("35.00"),
		InitialStock: 12,
	})
	require.NoError(t, err)

	assert.Equal(t, "Kettle", product.Name)
	assert.Equal(t, entity.ProductStatusActive, product.Status)
	assert.Equal(t, defaultMinStockLevel, product.MinStockLevel)
	assert.Equal(t, 12, product.StockQuantity)
	assert.Equal(t, 12, f.stockOf(t, product.ID))

	txns := f.ledger(t, product.ID)
	require.Len(t, txns, 1)
	assert.Equal(t, entity.TransactionPurchase, txns[0].Type)
	assert.Equal(t, 0, txns[0].StockBefore)
	assert.Equal(t, 12, txns[0].StockAfter)
	assert.Len(t, f.publisher.ofType(events.StockAdjusted), 1)
}

func TestCreateProduct_WithoutStockHasNoLedgerRow(t *testing.T) {
	f := newFixture(t)
	level := 0

	product, err := f.catalog.CreateProduct(context.Background(), ProductInput{Name: "Kettle", Price: dec("35"), MinStockLevel: &level})
	require.NoError(t, err)

	assert.Equal(t, 0, product.MinStockLevel)
	assert.Empty(t, f.ledger(t, product.ID))
	assert.Empty(t, f.publisher.events)
}

func TestCreateProduct_Invalid(t *testing.T) {
	negative := -1
	tests := []struct {
		name string
		in   ProductInput
	}{
		{name: "blank name", in: ProductInput{Name: " ", Price: dec("1")}},
		{name: "negative price", in: ProductInput{Name: "Kettle", Price: dec("-0.01")}},
		{name: "negative stock", in: ProductInput{Name: "Kettle", Price: dec("1"), InitialStock: -3}},
		{name: "negative min level", in: ProductInput{Name: "Kettle", Price: dec("1"), MinStockLevel: &negative}},
		{name: "unknown status", in: ProductInput{Name: "Kettle", Price: dec("1"), Status: "archived"}},
		{name: "sub-cent price", in: ProductInput{Name: "Kettle", Price: dec("9.999")}},
		{name: "price too large", in: ProductInput{Name: "Kettle", Price: dec("10000000000")}},
		{name: "stock above column range", in: ProductInput{Name: "Kettle", Price: dec("1"), InitialStock: entity.MaxStockQuantity + 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			_, err := f.catalog.CreateProduct(context.Background(), tt.in)
			assert.ErrorIs(t, err, ErrInvalidProduct)
		})
	}
}

func TestCreateProduct_AcceptsTrailingZeroPrice(t *testing.T) {
	f := newFixture(t)
	p, err := f.catalog.CreateProduct(context.Background(), ProductInput{Name: "Kettle", Price: dec("9.990")})
	require.NoError(t, err)
	assert.True(t, dec("9.99").Equal(p.Price))
}

func TestGetProduct_ReadsThroughCache(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.product(t, "Kettle", "35", 3)

	got, err := f.catalog.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Kettle", got.Name)
	require.Contains(t, f.cache.products, p.ID)

	// a write that skips the service is invisible until the entry is evicted
	renamed := *p
	renamed.Name = "Teapot"
	require.NoError(t, f.store.Products().UpdateProduct(ctx, &renamed))
	got, err = f.catalog.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Kettle", got.Name)

	updated, err := f.catalog.UpdateProduct(ctx, p.ID, ProductInput{Name: "Teapot", Price: dec("30")})
	require.NoError(t, err)
	assert.Equal(t, 3, updated.StockQuantity)
	assert.NotContains(t, f.cache.products, p.ID)

	got, err = f.catalog.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Teapot", got.Name)
	assert.True(t, dec("30").Equal(got.Price))

	_, err = f.catalog.GetProduct(ctx, 999)
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestUpdateProduct_UnknownProduct(t *testing.T) {
	f := newFixture(t)
	_, err := f.catalog.UpdateProduct(context.Background(), 999, ProductInput{Name: "Teapot", Price: dec("30")})
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestListProducts_HidesUnavailable(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.product(t, "Kettle", "35", 3)
	f.product(t, "Toaster", "20", 0)

	visible, err := f.catalog.ListProducts(ctx, repository.ProductFilter{})
	require.NoError(t, err)
	require.Len(t, visible, 1)
	assert.Equal(t, "Kettle", visible[0].Name)

	all, err := f.catalog.ListProducts(ctx, repository.ProductFilter{IncludeUnavailable: true})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestCategories(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	category, err := f.catalog.CreateCategory(ctx, "Kitchen", "pots and pans")
	require.NoError(t, err)
	assert.NotZero(t, category.ID)

	_, err = f.catalog.CreateCategory(ctx, "Kitchen", "")
	assert.ErrorIs(t, err, ErrCategoryExists)
	_, err = f.catalog.CreateCategory(ctx, "", "")
	assert.ErrorIs(t, err, ErrInvalidProduct)

	categories, err := f.catalog.ListCategories(ctx)
	require.NoError(t, err)
	assert.Len(t, categories, 1)
}
