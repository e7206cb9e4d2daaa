package mysqlrepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"

	"storefront/internal/repository"
)

const errDuplicateEntry = 1062

var nowUTC = func() time.Time { return time.Now().UTC() }

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

type repos struct {
	q querier
}

func (r repos) Products() repository.ProductRepository    { return &productRepository{q: r.q} }
func (r repos) Categories() repository.CategoryRepository { return &categoryRepository{q: r.q} }
func (r repos) Orders() repository.OrderRepository        { return &orderRepository{q: r.q} }
func (r repos) Carts() repository.CartRepository          { return &cartRepository{q: r.q} }
func (r repos) Inventory() repository.InventoryRepository { return &inventoryRepository{q: r.q} }
func (r repos) Reviews() repository.ReviewRepository      { return &reviewRepository{q: r.q} }
func (r repos) Wishlist() repository.WishlistRepository   { return &wishlistRepository{q: r.q} }
func (r repos) Customers() repository.CustomerRepository  { return &customerRepository{q: r.q} }

// Store is the MySQL implementation of repository.Store.
type Store struct {
	repos
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{repos: repos{q: db}, db: db}
}

// BeginTx opens a READ COMMITTED transaction; row locks taken with FOR UPDATE are held until it ends.
func (s *Store) BeginTx(ctx context.Context) (repository.Tx, error) {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return nil, err
	}
	return &storeTx{repos: repos{q: tx}, tx: tx}, nil
}

type storeTx struct {
	repos
	tx *sql.Tx
}

func (t *storeTx) Commit() error {
	return t.tx.Commit()
}

func (t *storeTx) Rollback() error {
	err := t.tx.Rollback()
	if errors.Is(err, sql.ErrTxDone) {
		return nil
	}
	return err
}

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return repository.ErrNotFound
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) && myErr.Number == errDuplicateEntry {
		return fmt.Errorf("%w: %s", repository.ErrDuplicate, myErr.Message)
	}
	return err
}

func nullInt(v int) sql.NullInt64 {
	return sql.NullInt64{Int64: int64(v), Valid: v != 0}
}

func expectAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}
