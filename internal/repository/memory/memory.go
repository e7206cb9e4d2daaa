// Package memory is an in-process implementation of repository.Store.
//
// A transaction holds the store lock for its whole lifetime and works on a private copy of the
// data, which replaces the shared copy on Commit. Transactions are therefore serializable.
package memory

import (
	"context"
	"errors"
	"sync"
	"time"

	"storefront/internal/entity"
	"storefront/internal/repository"
)

type state struct {
	seq        int
	products   map[int]*entity.Product
	categories map[int]*entity.Category
	customers  map[int]*entity.Customer
	carts      map[int]*entity.Cart // keyed by customer id
	orders     map[int]*entity.Order
	inventory  []*entity.InventoryTransaction
	reviews    []*entity.Review
	wishlist   []*entity.WishlistItem
}

func newState() *state {
	return &state{
		products:   map[int]*entity.Product{},
		categories: map[int]*entity.Category{},
		customers:  map[int]*entity.Customer{},
		carts:      map[int]*entity.Cart{},
		orders:     map[int]*entity.Order{},
	}
}

func (s *state) nextID() int {
	s.seq++
	return s.seq
}

func (s *state) clone() *state {
	c := &state{
		seq:        s.seq,
		products:   make(map[int]*entity.Product, len(s.products)),
		categories: make(map[int]*entity.Category, len(s.categories)),
		customers:  make(map[int]*entity.Customer, len(s.customers)),
		carts:      make(map[int]*entity.Cart, len(s.carts)),
		orders:     make(map[int]*entity.Order, len(s.orders)),
		inventory:  append([]*entity.InventoryTransaction(nil), s.inventory...),
		reviews:    append([]*entity.Review(nil), s.reviews...),
		wishlist:   append([]*entity.WishlistItem(nil), s.wishlist...),
	}
	for id, p := range s.products {
		c.products[id] = copyProduct(p)
	}
	for id, cat := range s.categories {
		cp := *cat
		c.categories[id] = &cp
	}
	for id, cust := range s.customers {
		cp := *cust
		c.customers[id] = &cp
	}
	for id, cart := range s.carts {
		c.carts[id] = copyCart(cart)
	}
	for id, o := range s.orders {
		c.orders[id] = copyOrder(o)
	}
	return c
}

func copyProduct(p *entity.Product) *entity.Product {
	cp := *p
	return &cp
}

func copyCart(c *entity.Cart) *entity.Cart {
	cp := *c
	cp.Items = append([]entity.CartItem(nil), c.Items...)
	return &cp
}

func copyOrder(o *entity.Order) *entity.Order {
	cp := *o
	cp.Items = append([]entity.OrderItem(nil), o.Items...)
	return &cp
}

var (
	errTxDone          = errors.New("memory: transaction already finished")
	errNegativeStock   = errors.New("memory: stock_quantity check constraint violated")
	errInvalidQuantity = errors.New("memory: quantity check constraint violated")
	errForeignKey      = errors.New("memory: foreign key constraint violated")
)

// Store is safe for concurrent use.
type Store struct {
	sem    chan struct{}
	data   *state
	faults sync.Map // op name -> error
}

func NewStore() *Store {
	return &Store{sem: make(chan struct{}, 1), data: newState()}
}

// FailOn makes every later call of op return err until ClearFaults is called.
// Op names are "<repository>.<method>", for example "inventory.AppendTransaction".
func (s *Store) FailOn(op string, err error) {
	s.faults.Store(op, err)
}

func (s *Store) ClearFaults() {
	s.faults.Range(func(key, _ interface{}) bool {
		s.faults.Delete(key)
		return true
	})
}

func (s *Store) fault(op string) error {
	if err, ok := s.faults.Load(op); ok {
		return err.(error)
	}
	return nil
}

func (s *Store) acquire(ctx context.Context) error {
	select {
	case s.sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Store) release() {
	<-s.sem
}

func (s *Store) BeginTx(ctx context.Context) (repository.Tx, error) {
	if err := s.fault("store.BeginTx"); err != nil {
		return nil, err
	}
	if err := s.acquire(ctx); err != nil {
		return nil, err
	}
	t := &tx{store: s, work: s.data.clone()}
	t.view = view{store: s, st: t.work}
	return t, nil
}

type tx struct {
	view
	store *Store
	work  *state
	done  bool
	mu    sync.Mutex
}

func (t *tx) Commit() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.done {
		return errTxDone
	}
	if err := t.store.fault("store.Commit"); err != nil {
		t.done = true
		t.store.release()
		return err
	}
	t.store.data = t.work
	t.done = true
	t.store.release()
	return nil
}

func (t *tx) Rollback() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.done {
		return nil
	}
	t.done = true
	t.store.release()
	return nil
}

// view runs repository calls either against a transaction's working copy or, when st is nil,
// against the shared data under the store lock.
type view struct {
	store *Store
	st    *state
}

func (v view) with(ctx context.Context, op string, fn func(st *state) error) error {
	if err := v.store.fault(op); err != nil {
		return err
	}
	if v.st != nil {
		return fn(v.st)
	}
	if err := v.store.acquire(ctx); err != nil {
		return err
	}
	defer v.store.release()
	return fn(v.store.data)
}

func (s *Store) Products() repository.ProductRepository    { return productRepo{view{store: s}} }
func (s *Store) Categories() repository.CategoryRepository { return categoryRepo{view{store: s}} }
func (s *Store) Orders() repository.OrderRepository        { return orderRepo{view{store: s}} }
func (s *Store) Carts() repository.CartRepository          { return cartRepo{view{store: s}} }
func (s *Store) Inventory() repository.InventoryRepository { return inventoryRepo{view{store: s}} }
func (s *Store) Reviews() repository.ReviewRepository      { return reviewRepo{view{store: s}} }
func (s *Store) Wishlist() repository.WishlistRepository   { return wishlistRepo{view{store: s}} }
func (s *Store) Customers() repository.CustomerRepository  { return customerRepo{view{store: s}} }

func (v view) Products() repository.ProductRepository    { return productRepo{v} }
func (v view) Categories() repository.CategoryRepository { return categoryRepo{v} }
func (v view) Orders() repository.OrderRepository        { return orderRepo{v} }
func (v view) Carts() repository.CartRepository          { return cartRepo{v} }
func (v view) Inventory() repository.InventoryRepository { return inventoryRepo{v} }
func (v view) Reviews() repository.ReviewRepository      { return reviewRepo{v} }
func (v view) Wishlist() repository.WishlistRepository   { return wishlistRepo{v} }
func (v view) Customers() repository.CustomerRepository  { return customerRepo{v} }

func now() time.Time {
	return time.Now().UTC()
}
