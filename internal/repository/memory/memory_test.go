package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/entity"
	"storefront/internal/repository"
)

func seedProduct(t *testing.T, s *Store, stock int) *entity.Product {
	t.Helper()
	p := &entity.Product{Name: "Kettle", Price: decimal.NewFromInt(30), StockQuantity: stock, Status: entity.ProductStatusActive}
	require.NoError(t, s.Products().CreateProduct(context.Background(), p))
	return p
}

func TestStore_CommitPublishesWork(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	p := seedProduct(t, s, 5)

	tx, err := s.BeginTx(ctx)
	require.NoError(t, err)
	require.NoError(t, tx.Products().SetStock(ctx, p.ID, 2))

	// outside readers wait for the transaction to finish
	done := make(chan int)
	go func() {
		got, _ := s.Products().GetProduct(ctx, p.ID)
		done <- got.StockQuantity
	}()

	require.NoError(t, tx.Commit())
	assert.Equal(t, 2, <-done)
	assert.NoError(t, tx.Rollback())
}

func TestStore_RollbackDiscardsWork(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	p := seedProduct(t, s, 5)

	err := repository.WithTx(ctx, s, func(tx repository.Tx) error {
		require.NoError(t, tx.Products().SetStock(ctx, p.ID, 0))
		require.NoError(t, tx.Inventory().AppendTransaction(ctx, &entity.InventoryTransaction{ProductID: p.ID}))
		return errors.New("abort")
	})
	require.Error(t, err)

	got, err := s.Products().GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, got.StockQuantity)
	txns, err := s.Inventory().ListTransactions(ctx, 0, 0)
	require.NoError(t, err)
	assert.Empty(t, txns)
}

func TestStore_RejectsNegativeStock(t *testing.T) {
	s := NewStore()
	p := seedProduct(t, s, 5)
	assert.Error(t, s.Products().SetStock(context.Background(), p.ID, -1))
}

func TestStore_FailOn(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	boom := errors.New("boom")

	s.FailOn("store.BeginTx", boom)
	_, err := s.BeginTx(ctx)
	assert.ErrorIs(t, err, boom)
	s.ClearFaults()

	s.FailOn("store.Commit", boom)
	tx, err := s.BeginTx(ctx)
	require.NoError(t, err)
	assert.ErrorIs(t, tx.Commit(), boom)
	s.ClearFaults()

	// a failed commit still frees the store
	tx, err = s.BeginTx(ctx)
	require.NoError(t, err)
	require.NoError(t, tx.Commit())
}

func TestStore_BeginTxHonoursContext(t *testing.T) {
	s := NewStore()
	holder, err := s.BeginTx(context.Background())
	require.NoError(t, err)
	defer holder.Rollback()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = s.BeginTx(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestStore_ReadsHonourContext(t *testing.T) {
	s := NewStore()
	p := seedProduct(t, s, 4)
	holder, err := s.BeginTx(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = s.Products().GetProduct(ctx, p.ID)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	err = s.Carts().ClearCart(ctx, 1)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	require.NoError(t, holder.Rollback())
	got, err := s.Products().GetProduct(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, got.StockQuantity)
}

func TestStore_UpdateCustomer(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	ana := &entity.Customer{Name: "Ana", Email: "ana@example.com", PasswordHash: "hash", Role: entity.RoleCustomer}
	require.NoError(t, s.Customers().CreateCustomer(ctx, ana))
	require.NoError(t, s.Customers().CreateCustomer(ctx, &entity.Customer{Email: "bo@example.com"}))

	err := s.Customers().UpdateCustomer(ctx, &entity.Customer{ID: ana.ID, Name: "Ana", Email: "Bo@example.com"})
	assert.ErrorIs(t, err, repository.ErrDuplicate)
	err = s.Customers().UpdateCustomer(ctx, &entity.Customer{ID: 999, Email: "x@example.com"})
	assert.ErrorIs(t, err, repository.ErrNotFound)

	require.NoError(t, s.Customers().UpdateCustomer(ctx, &entity.Customer{ID: ana.ID, Name: "Ana S", Email: "ana@example.com", City: "Porto"}))
	got, err := s.Customers().GetCustomer(ctx, ana.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ana S", got.Name)
	assert.Equal(t, "Porto", got.City)
	assert.Equal(t, "hash", got.PasswordHash)
	assert.Equal(t, entity.RoleCustomer, got.Role)
}

func TestStore_OrderStats(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	cust := &entity.Customer{Email: "ana@example.com"}
	require.NoError(t, s.Customers().CreateCustomer(ctx, cust))

	stats, err := s.Orders().OrderStats(ctx, cust.ID)
	require.NoError(t, err)
	assert.Zero(t, stats.OrderCount)
	assert.Nil(t, stats.LastOrderAt)

	first := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	for i, total := range []string{"10.50", "4.25"} {
		order := &entity.Order{CustomerID: cust.ID, OrderDate: first.AddDate(0, 0, i), TotalAmount: decimal.RequireFromString(total)}
		require.NoError(t, s.Orders().CreateOrder(ctx, order))
	}

	stats, err = s.Orders().OrderStats(ctx, cust.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.OrderCount)
	assert.True(t, decimal.RequireFromString("14.75").Equal(stats.TotalSpent))
	require.NotNil(t, stats.LastOrderAt)
	assert.Equal(t, first.AddDate(0, 0, 1), *stats.LastOrderAt)
}

func TestStore_UniqueConstraints(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	require.NoError(t, s.Customers().CreateCustomer(ctx, &entity.Customer{Email: "ana@example.com"}))
	err := s.Customers().CreateCustomer(ctx, &entity.Customer{Email: "ANA@example.com"})
	assert.ErrorIs(t, err, repository.ErrDuplicate)

	require.NoError(t, s.Categories().CreateCategory(ctx, &entity.Category{Name: "Kitchen"}))
	err = s.Categories().CreateCategory(ctx, &entity.Category{Name: "Kitchen"})
	assert.ErrorIs(t, err, repository.ErrDuplicate)

	_, err = s.Carts().CreateCart(ctx, 1)
	require.NoError(t, err)
	_, err = s.Carts().CreateCart(ctx, 1)
	assert.ErrorIs(t, err, repository.ErrDuplicate)
}

func TestStore_OrdersAreCopied(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	p := seedProduct(t, s, 5)
	customer := &entity.Customer{Email: "ana@example.com"}
	require.NoError(t, s.Customers().CreateCustomer(ctx, customer))

	orphan := entity.NewOrder(customer.ID+100, "1 Main St", entity.DefaultPaymentMethod, nil, time.Now())
	assert.Error(t, s.Orders().CreateOrder(ctx, orphan))

	order := entity.NewOrder(customer.ID, "1 Main St", entity.DefaultPaymentMethod, []entity.OrderItem{
		entity.NewOrderItem(p.ID, 1, decimal.NewFromInt(10)),
	}, time.Now())
	require.NoError(t, s.Orders().CreateOrder(ctx, order))
	require.NotZero(t, order.Items[0].ID)

	got, err := s.Orders().GetOrder(ctx, order.ID)
	require.NoError(t, err)
	got.Items[0].Quantity = 99

	again, err := s.Orders().GetOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, again.Items[0].Quantity)
}
