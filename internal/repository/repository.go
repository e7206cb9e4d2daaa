package repository

import (
	"context"
	"errors"

	"storefront/internal/entity"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
)

type ProductFilter struct {
	CategoryID int
	Search     string
	// IncludeUnavailable also returns inactive and out-of-stock products.
	IncludeUnavailable bool
}

type ProductRepository interface {
	GetProduct(ctx context.Context, id int) (*entity.Product, error)
	// GetProductForUpdate reads the product and holds its row lock until the transaction ends.
	GetProductForUpdate(ctx context.Context, id int) (*entity.Product, error)
	ListProducts(ctx context.Context, filter ProductFilter) ([]*entity.Product, error)
	ListLowStock(ctx context.Context) ([]*entity.Product, error)
	InventoryOverview(ctx context.Context) (*entity.InventoryOverview, error)
	CreateProduct(ctx context.Context, product *entity.Product) error
	// UpdateProduct writes every field except the stock quantity.
	UpdateProduct(ctx context.Context, product *entity.Product) error
	SetStock(ctx context.Context, id int, quantity int) error
}

type CategoryRepository interface {
	ListCategories(ctx context.Context) ([]*entity.Category, error)
	CreateCategory(ctx context.Context, category *entity.Category) error
}

type OrderRepository interface {
	// CreateOrder inserts the order and its line items, filling in their ids.
	CreateOrder(ctx context.Context, order *entity.Order) error
	GetOrder(ctx context.Context, id int) (*entity.Order, error)
	GetOrderForUpdate(ctx context.Context, id int) (*entity.Order, error)
	ListOrdersByCustomer(ctx context.Context, customerID int) ([]*entity.Order, error)
	ListOrders(ctx context.Context, status entity.OrderStatus) ([]*entity.Order, error)
	UpdateOrderStatus(ctx context.Context, id int, status entity.OrderStatus, paymentStatus entity.PaymentStatus) error
	// HasDeliveredOrder reports whether the customer has a delivered order containing the product.
	HasDeliveredOrder(ctx context.Context, customerID, productID int) (bool, error)
	OrderStats(ctx context.Context, customerID int) (*entity.OrderStats, error)
}

type CartRepository interface {
	// GetCart returns ErrNotFound when the customer never had a cart.
	GetCart(ctx context.Context, customerID int) (*entity.Cart, error)
	GetCartForUpdate(ctx context.Context, customerID int) (*entity.Cart, error)
	CreateCart(ctx context.Context, customerID int) (*entity.Cart, error)
	// SetItemQuantity inserts the line or overwrites its quantity.
	SetItemQuantity(ctx context.Context, cartID, productID, quantity int) error
	RemoveItem(ctx context.Context, cartID, productID int) error
	ClearCart(ctx context.Context, cartID int) error
}

type InventoryRepository interface {
	AppendTransaction(ctx context.Context, txn *entity.InventoryTransaction) error
	// ListTransactions returns the newest rows first. productID 0 matches every product and
	// a limit of 0 returns every row.
	ListTransactions(ctx context.Context, productID int, limit int) ([]*entity.InventoryTransaction, error)
}

type ReviewRepository interface {
	GetReview(ctx context.Context, customerID, productID int) (*entity.Review, error)
	CreateReview(ctx context.Context, review *entity.Review) error
	ListProductReviews(ctx context.Context, productID int) ([]*entity.Review, error)
}

type WishlistRepository interface {
	ListItems(ctx context.Context, customerID int) ([]*entity.WishlistItem, error)
	GetItem(ctx context.Context, customerID, productID int) (*entity.WishlistItem, error)
	AddItem(ctx context.Context, item *entity.WishlistItem) error
	RemoveItem(ctx context.Context, customerID, productID int) error
}

type CustomerRepository interface {
	GetCustomer(ctx context.Context, id int) (*entity.Customer, error)
	GetCustomerByEmail(ctx context.Context, email string) (*entity.Customer, error)
	CreateCustomer(ctx context.Context, customer *entity.Customer) error
	// UpdateCustomer rewrites the profile fields. The password hash, role and created_at are kept.
	UpdateCustomer(ctx context.Context, customer *entity.Customer) error
}

// Repositories groups every repository bound to the same connection or transaction.
type Repositories interface {
	Products() ProductRepository
	Categories() CategoryRepository
	Orders() OrderRepository
	Carts() CartRepository
	Inventory() InventoryRepository
	Reviews() ReviewRepository
	Wishlist() WishlistRepository
	Customers() CustomerRepository
}

// Tx is a unit of work. Rollback after Commit is a no-op, so callers may always defer it.
type Tx interface {
	Repositories
	Commit() error
	Rollback() error
}

// Store hands out auto-commit repositories and opens transactions.
type Store interface {
	Repositories
	BeginTx(ctx context.Context) (Tx, error)
}

// WithTx runs fn inside a transaction, committing when it returns nil and rolling back otherwise.
func WithTx(ctx context.Context, store Store, fn func(tx Tx) error) error {
	tx, err := store.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}
