package service

import (
	"context"
	"errors"
	"fmt"

	"storefront/internal/entity"
	"storefront/internal/events"
	"storefront/internal/metrics"
	"storefront/internal/repository"
)

const (
	defaultTransactionLimit = 50
	maxTransactionLimit     = 500
)

type stockChange struct {
	delta         int
	txnType       entity.TransactionType
	referenceType string
	referenceID   *int
	notes         string
}

// adjustLockedStock is the only code that moves stock. The product must have been read with
// GetProductForUpdate inside tx. It writes the new level and the matching ledger row.
func adjustLockedStock(ctx context.Context, tx repository.Tx, product *entity.Product, change stockChange) (*entity.InventoryTransaction, error) {
	before := product.StockQuantity
	if change.delta > entity.MaxStockQuantity-before || change.delta < -entity.MaxStockQuantity {
		return nil, fmt.Errorf("%w: stock change %d is out of range", ErrInvalidQuantity, change.delta)
	}
	after := before + change.delta
	if after < 0 {
		return nil, &InsufficientStockError{ProductID: product.ID, Requested: -change.delta, Available: before}
	}

	if err := tx.Products().SetStock(ctx, product.ID, after); err != nil {
		return nil, persistence("set stock", err)
	}

	txn := &entity.InventoryTransaction{
		ProductID:      product.ID,
		Type:           change.txnType,
		QuantityChange: change.delta,
		StockBefore:    before,
		StockAfter:     after,
		ReferenceType:  change.referenceType,
		ReferenceID:    change.referenceID,
		Notes:          change.notes,
	}
	if err := tx.Inventory().AppendTransaction(ctx, txn); err != nil {
		return nil, persistence("append inventory transaction", err)
	}

	product.StockQuantity = after
	return txn, nil
}

// adjustStock locks the product row and applies the change.
func adjustStock(ctx context.Context, tx repository.Tx, productID int, change stockChange) (*entity.Product, *entity.InventoryTransaction, error) {
	product, err := lockProduct(ctx, tx, productID)
	if err != nil {
		return nil, nil, err
	}
	txn, err := adjustLockedStock(ctx, tx, product, change)
	if err != nil {
		return nil, nil, err
	}
	return product, txn, nil
}

func lockProduct(ctx context.Context, tx repository.Tx, productID int) (*entity.Product, error) {
	product, err := tx.Products().GetProductForUpdate(ctx, productID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, persistence("lock product", err)
	}
	return product, nil
}

func stockLine(product *entity.Product, delta int) events.StockLine {
	return events.StockLine{
		ProductID:      product.ID,
		QuantityChange: delta,
		StockAfter:     product.StockQuantity,
		MinStockLevel:  product.MinStockLevel,
	}
}

type StockAdjustment struct {
	ProductID int
	Type      entity.TransactionType
	// Quantity is a positive amount for purchase, sale, return and damage, and a signed
	// non-zero change for adjustment.
	Quantity int
	Notes    string
}

// StockService is the manual inventory path: receiving goods, write-offs, corrections.
type StockService struct {
	store     repository.Store
	publisher events.Publisher
	cache     ProductCache
}

func NewStockService(store repository.Store, publisher events.Publisher, cache ProductCache) *StockService {
	return &StockService{store: store, publisher: publisher, cache: cache}
}

// AdjustStock applies one manual stock change and records it in the inventory ledger.
func (s *StockService) AdjustStock(ctx context.Context, req StockAdjustment) (*entity.InventoryTransaction, error) {
	if !req.Type.Valid() {
		return nil, ErrInvalidTransactionType
	}
	delta, err := req.Type.SignedDelta(req.Quantity)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidQuantity, err)
	}

	tx, err := s.store.BeginTx(ctx)
	if err != nil {
		return nil, persistence("begin transaction", err)
	}
	defer tx.Rollback()

	product, txn, err := adjustStock(ctx, tx, req.ProductID, stockChange{
		delta:         delta,
		txnType:       req.Type,
		referenceType: entity.ReferenceManual,
		notes:         req.Notes,
	})
	if err != nil {
		logFailure(err, "Error adjusting stock")
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		err = persistence("commit stock adjustment", err)
		logFailure(err, "Error adjusting stock")
		return nil, err
	}

	metrics.RecordStockAdjustment(string(req.Type))
	logger.Info().Int("product_id", product.ID).Str("type", string(req.Type)).
		Int("stock_before", txn.StockBefore).Int("stock_after", txn.StockAfter).Msg("Stock adjusted")

	invalidateProducts(ctx, s.cache, product.ID)
	if e, err := events.New(events.StockAdjusted, product.ID, events.StockAdjustedPayload{
		TransactionID: txn.ID,
		Type:          txn.Type,
		Notes:         txn.Notes,
		Lines:         []events.StockLine{stockLine(product, delta)},
	}); err == nil {
		publish(ctx, s.publisher, e)
	}

	return txn, nil
}

// ListTransactions returns the newest ledger rows first; productID 0 means every product.
// A limit of 0 means the default page size and larger limits are capped.
func (s *StockService) ListTransactions(ctx context.Context, productID, limit int) ([]*entity.InventoryTransaction, error) {
	if limit <= 0 {
		limit = defaultTransactionLimit
	}
	if limit > maxTransactionLimit {
		limit = maxTransactionLimit
	}
	txns, err := s.store.Inventory().ListTransactions(ctx, productID, limit)
	if err != nil {
		return nil, persistence("list inventory transactions", err)
	}
	return txns, nil
}

func (s *StockService) InventoryOverview(ctx context.Context) (*entity.InventoryOverview, error) {
	overview, err := s.store.Products().InventoryOverview(ctx)
	if err != nil {
		return nil, persistence("inventory overview", err)
	}
	return overview, nil
}

func (s *StockService) LowStockProducts(ctx context.Context) ([]*entity.Product, error) {
	products, err := s.store.Products().ListLowStock(ctx)
	if err != nil {
		return nil, persistence("list low stock", err)
	}
	return products, nil
}
