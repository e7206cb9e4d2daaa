package mysqlrepo

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/entity"
	"storefront/internal/repository"
)

var fixedNow = time.Date(2026, 4, 1, 9, 30, 0, 0, time.UTC)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)

	restore := nowUTC
	nowUTC = func() time.Time { return fixedNow }
	t.Cleanup(func() {
		nowUTC = restore
		assert.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})
	return NewStore(db), mock
}

var productRowColumns = []string{"id", "name", "description", "price", "stock_quantity", "min_stock_level", "category_id", "sku", "status", "created_at", "updated_at"}

func TestProductRepository_GetProduct(t *testing.T) {
	store, mock := newMockStore(t)
	ctx := context.Background()

	mock.ExpectQuery(getProductQuery).WithArgs(3).WillReturnRows(
		sqlmock.NewRows(productRowColumns).AddRow(3, "Kettle", "steel", "35.50", 8, 2, nil, "KT-1", "active", fixedNow, fixedNow))
	mock.ExpectQuery(getProductQuery).WithArgs(4).WillReturnError(sql.ErrNoRows)

	product, err := store.Products().GetProduct(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, "Kettle", product.Name)
	assert.True(t, decimal.RequireFromString("35.50").Equal(product.Price))
	assert.Equal(t, 8, product.StockQuantity)
	assert.Equal(t, 0, product.CategoryID)
	assert.Equal(t, entity.ProductStatusActive, product.Status)

	_, err = store.Products().GetProduct(ctx, 4)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestProductRepository_SetStockInsideTx(t *testing.T) {
	store, mock := newMockStore(t)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectQuery(getProductForUpdateQuery).WithArgs(3).WillReturnRows(
		sqlmock.NewRows(productRowColumns).AddRow(3, "Kettle", "", "35.50", 8, 2, 1, "", "active", fixedNow, fixedNow))
	mock.ExpectExec(setStockQuery).WithArgs(5, fixedNow, 3).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repository.WithTx(ctx, store, func(tx repository.Tx) error {
		product, err := tx.Products().GetProductForUpdate(ctx, 3)
		if err != nil {
			return err
		}
		assert.Equal(t, 1, product.CategoryID)
		return tx.Products().SetStock(ctx, product.ID, product.StockQuantity-3)
	})
	require.NoError(t, err)
}

func TestStore_RollbackOnError(t *testing.T) {
	store, mock := newMockStore(t)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectExec(setStockQuery).WithArgs(1, fixedNow, 99).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repository.WithTx(ctx, store, func(tx repository.Tx) error {
		return tx.Products().SetStock(ctx, 99, 1)
	})
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestOrderRepository_CreateOrder(t *testing.T) {
	store, mock := newMockStore(t)

	order := entity.NewOrder(7, "1 Main St", entity.DefaultPaymentMethod, []entity.OrderItem{
		entity.NewOrderItem(1, 2, decimal.RequireFromString("100")),
		entity.NewOrderItem(2, 1, decimal.RequireFromString("50")),
	}, fixedNow)

	mock.ExpectExec(createOrderQuery).
		WithArgs(7, fixedNow, sqlmock.AnyArg(), "pending", "pending", entity.DefaultPaymentMethod, "1 Main St", fixedNow).
		WillReturnResult(sqlmock.NewResult(40, 1))
	mock.ExpectExec(createOrderItemQuery).WithArgs(40, 1, 2, sqlmock.AnyArg(), sqlmock.AnyArg()).WillReturnResult(sqlmock.NewResult(400, 1))
	mock.ExpectExec(createOrderItemQuery).WithArgs(40, 2, 1, sqlmock.AnyArg(), sqlmock.AnyArg()).WillReturnResult(sqlmock.NewResult(401, 1))

	require.NoError(t, store.Orders().CreateOrder(context.Background(), order))
	assert.Equal(t, 40, order.ID)
	assert.Equal(t, 400, order.Items[0].ID)
	assert.Equal(t, 401, order.Items[1].ID)
	assert.Equal(t, 40, order.Items[1].OrderID)
}

func TestOrderRepository_GetOrderLoadsItems(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(getOrderQuery).WithArgs(40).WillReturnRows(
		sqlmock.NewRows([]string{"id", "customer_id", "order_date", "total_amount", "status", "payment_status", "payment_method", "shipping_address", "updated_at"}).
			AddRow(40, 7, fixedNow, "250.00", "shipped", "paid", "cash_on_delivery", "1 Main St", fixedNow))
	mock.ExpectQuery(listOrderItemsQuery).WithArgs(40).WillReturnRows(
		sqlmock.NewRows([]string{"id", "order_id", "product_id", "quantity", "price_at_purchase", "subtotal"}).
			AddRow(400, 40, 1, 2, "100.00", "200.00").
			AddRow(401, 40, 2, 1, "50.00", "50.00"))

	order, err := store.Orders().GetOrder(context.Background(), 40)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusShipped, order.Status)
	assert.Equal(t, entity.PaymentStatusPaid, order.PaymentStatus)
	require.Len(t, order.Items, 2)
	assert.True(t, order.TotalAmount.Equal(order.ItemsTotal()))
}

func TestOrderRepository_HasDeliveredOrder(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectQuery(hasDeliveredOrderQuery).WithArgs(7, 1).WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	ok, err := store.Orders().HasDeliveredOrder(context.Background(), 7, 1)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestInventoryRepository(t *testing.T) {
	store, mock := newMockStore(t)
	ctx := context.Background()
	orderID := 40

	mock.ExpectExec(appendInventoryTxnQuery).
		WithArgs(1, "sale", -2, 10, 8, entity.ReferenceOrder, int64(orderID), "", fixedNow).
		WillReturnResult(sqlmock.NewResult(900, 1))
	txn := &entity.InventoryTransaction{
		ProductID:      1,
		Type:           entity.TransactionSale,
		QuantityChange: -2,
		StockBefore:    10,
		StockAfter:     8,
		ReferenceType:  entity.ReferenceOrder,
		ReferenceID:    &orderID,
	}
	require.NoError(t, store.Inventory().AppendTransaction(ctx, txn))
	assert.Equal(t, 900, txn.ID)

	columns := []string{"id", "product_id", "transaction_type", "quantity_change", "stock_before", "stock_after", "reference_type", "reference_id", "notes", "created_at"}
	mock.ExpectQuery(listInventoryTxnQuery+` LIMIT ?`).WithArgs(1, 1, 10).WillReturnRows(
		sqlmock.NewRows(columns).
			AddRow(901, 1, "purchase", 5, 8, 13, "manual", nil, "restock", fixedNow).
			AddRow(900, 1, "sale", -2, 10, 8, "order", 40, "", fixedNow))
	mock.ExpectQuery(listInventoryTxnQuery).WithArgs(0, 0).WillReturnRows(sqlmock.NewRows(columns))

	txns, err := store.Inventory().ListTransactions(ctx, 1, 10)
	require.NoError(t, err)
	require.Len(t, txns, 2)
	assert.Nil(t, txns[0].ReferenceID)
	require.NotNil(t, txns[1].ReferenceID)
	assert.Equal(t, 40, *txns[1].ReferenceID)

	all, err := store.Inventory().ListTransactions(ctx, 0, 0)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestCustomerRepository_DuplicateEmail(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectExec(createCustomerQuery).
		WillReturnError(&mysql.MySQLError{Number: errDuplicateEntry, Message: "Duplicate entry 'ana@example.com' for key 'email'"})

	err := store.Customers().CreateCustomer(context.Background(), &entity.Customer{Name: "Ana", Email: "ana@example.com", Role: entity.RoleCustomer})
	assert.ErrorIs(t, err, repository.ErrDuplicate)
}

func TestCustomerRepository_UpdateCustomer(t *testing.T) {
	store, mock := newMockStore(t)
	ctx := context.Background()
	customer := &entity.Customer{ID: 3, Name: "Ana", Email: "ana@example.com", Phone: "555", City: "Porto", State: "PT", Pin: "4000", Address: "1 Main St"}

	mock.ExpectExec(updateCustomerQuery).WithArgs("Ana", "ana@example.com", "555", "Porto", "PT", "4000", "1 Main St", 3).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(updateCustomerQuery).WithArgs("Ana", "ana@example.com", "555", "Porto", "PT", "4000", "1 Main St", 3).
		WillReturnError(&mysql.MySQLError{Number: errDuplicateEntry, Message: "Duplicate entry"})
	mock.ExpectExec(updateCustomerQuery).WithArgs("Ana", "ana@example.com", "555", "Porto", "PT", "4000", "1 Main St", 3).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, store.Customers().UpdateCustomer(ctx, customer))
	assert.ErrorIs(t, store.Customers().UpdateCustomer(ctx, customer), repository.ErrDuplicate)
	assert.ErrorIs(t, store.Customers().UpdateCustomer(ctx, customer), repository.ErrNotFound)
}

func TestOrderRepository_OrderStats(t *testing.T) {
	store, mock := newMockStore(t)
	ctx := context.Background()
	columns := []string{"count", "sum", "max"}
	mock.ExpectQuery(orderStatsQuery).WithArgs(7).WillReturnRows(sqlmock.NewRows(columns).AddRow(2, "14.75", fixedNow))
	mock.ExpectQuery(orderStatsQuery).WithArgs(8).WillReturnRows(sqlmock.NewRows(columns).AddRow(0, "0", nil))

	stats, err := store.Orders().OrderStats(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.OrderCount)
	assert.True(t, decimal.RequireFromString("14.75").Equal(stats.TotalSpent))
	require.NotNil(t, stats.LastOrderAt)
	assert.Equal(t, fixedNow, *stats.LastOrderAt)

	stats, err = store.Orders().OrderStats(ctx, 8)
	require.NoError(t, err)
	assert.Zero(t, stats.OrderCount)
	assert.Nil(t, stats.LastOrderAt)
}

func TestCartRepository_SetItemQuantity(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectExec(setCartItemQuery).WithArgs(5, 1, 3, fixedNow).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(touchCartQuery).WithArgs(fixedNow, 5).WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, store.Carts().SetItemQuantity(context.Background(), 5, 1, 3))
}

func TestMapError(t *testing.T) {
	assert.Nil(t, mapError(nil))
	assert.ErrorIs(t, mapError(sql.ErrNoRows), repository.ErrNotFound)
	assert.ErrorIs(t, mapError(&mysql.MySQLError{Number: errDuplicateEntry}), repository.ErrDuplicate)

	other := errors.New("bad connection")
	assert.Equal(t, other, mapError(other))
}
