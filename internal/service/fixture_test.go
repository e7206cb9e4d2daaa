package service

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"storefront/internal/entity"
	"storefront/internal/events"
	"storefront/internal/repository/memory"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
	err    error
}

func (p *recordingPublisher) Publish(ctx context.Context, evts ...events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, evts...)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) ofType(t events.Type) []events.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []events.Event
	for _, e := range p.events {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

type fakeCache struct {
	mu          sync.Mutex
	products    map[int]*entity.Product
	invalidated []int
	gets        int
}

func newFakeCache() *fakeCache {
	return &fakeCache{products: map[int]*entity.Product{}}
}

func (c *fakeCache) Get(ctx context.Context, productID int) (*entity.Product, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	p, ok := c.products[productID]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (c *fakeCache) Set(ctx context.Context, product *entity.Product) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	cp := *product
	c.products[product.ID] = &cp
	return nil
}

func (c *fakeCache) Invalidate(ctx context.Context, productIDs ...int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, id := range productIDs {
		delete(c.products, id)
		c.invalidated = append(c.invalidated, id)
	}
	return nil
}

// fakeIdempotency keeps keys in memory; -1 marks a pending checkout.
type fakeIdempotency struct {
	mu   sync.Mutex
	keys map[string]int
}

func newFakeIdempotency() *fakeIdempotency {
	return &fakeIdempotency{keys: map[string]int{}}
}

func (f *fakeIdempotency) Reserve(ctx context.Context, key string) (int, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if v, ok := f.keys[key]; ok {
		if v < 0 {
			return 0, false, nil
		}
		return v, false, nil
	}
	f.keys[key] = -1
	return 0, true, nil
}

func (f *fakeIdempotency) Complete(ctx context.Context, key string, orderID int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.keys[key] = orderID
	return nil
}

func (f *fakeIdempotency) Release(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.keys, key)
	return nil
}

type fixture struct {
	store       *memory.Store
	publisher   *recordingPublisher
	cache       *fakeCache
	idempotency *fakeIdempotency
	checkout    *CheckoutService
	stock       *StockService
	carts       *CartService
	orders      *OrderService
	reviews     *ReviewService
	wishlist    *WishlistService
	catalog     *CatalogService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store:       memory.NewStore(),
		publisher:   &recordingPublisher{},
		cache:       newFakeCache(),
		idempotency: newFakeIdempotency(),
	}
	f.checkout = NewCheckoutService(f.store, f.publisher, f.cache, f.idempotency, 0)
	f.stock = NewStockService(f.store, f.publisher, f.cache)
	f.carts = NewCartService(f.store)
	f.orders = NewOrderService(f.store, f.publisher, f.cache)
	f.reviews = NewReviewService(f.store)
	f.wishlist = NewWishlistService(f.store)
	f.catalog = NewCatalogService(f.store, f.cache, f.publisher)
	return f
}

func (f *fixture) customer(t *testing.T, email string) *entity.Customer {
	t.Helper()
	c := &entity.Customer{Name: "Test Customer", Email: email, Role: entity.RoleCustomer}
	require.NoError(t, f.store.Customers().CreateCustomer(context.Background(), c))
	return c
}

func (f *fixture) product(t *testing.T, name, price string, stock int) *entity.Product {
	t.Helper()
	p := &entity.Product{
		Name:          name,
		Price:         decimal.RequireFromString(price),
		StockQuantity: stock,
		MinStockLevel: 1,
		Status:        entity.ProductStatusActive,
	}
	require.NoError(t, f.store.Products().CreateProduct(context.Background(), p))
	return p
}

func (f *fixture) addToCart(t *testing.T, customerID, productID, quantity int) {
	t.Helper()
	_, err := f.carts.AddItem(context.Background(), customerID, productID, quantity)
	require.NoError(t, err)
}

func (f *fixture) stockOf(t *testing.T, productID int) int {
	t.Helper()
	p, err := f.store.Products().GetProduct(context.Background(), productID)
	require.NoError(t, err)
	return p.StockQuantity
}

func (f *fixture) cartItems(t *testing.T, customerID int) []entity.CartItem {
	t.Helper()
	cart, err := f.store.Carts().GetCart(context.Background(), customerID)
	require.NoError(t, err)
	return cart.Items
}

func (f *fixture) ledger(t *testing.T, productID int) []*entity.InventoryTransaction {
	t.Helper()
	txns, err := f.store.Inventory().ListTransactions(context.Background(), productID, 0)
	require.NoError(t, err)
	return txns
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
