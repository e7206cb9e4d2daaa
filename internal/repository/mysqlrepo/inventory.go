package mysqlrepo

import (
	"context"
	"database/sql"

	"storefront/internal/entity"
)

const (
	appendInventoryTxnQuery = `INSERT INTO inventory_transactions (product_id, transaction_type, quantity_change, stock_before, stock_after, reference_type, reference_id, notes, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	listInventoryTxnQuery   = `SELECT id, product_id, transaction_type, quantity_change, stock_before, stock_after, reference_type, reference_id, notes, created_at FROM inventory_transactions WHERE (? = 0 OR product_id = ?) ORDER BY id DESC`
)

type inventoryRepository struct {
	q querier
}

func (r *inventoryRepository) AppendTransaction(ctx context.Context, txn *entity.InventoryTransaction) error {
	var referenceID sql.NullInt64
	if txn.ReferenceID != nil {
		referenceID = sql.NullInt64{Int64: int64(*txn.ReferenceID), Valid: true}
	}
	if txn.CreatedAt.IsZero() {
		txn.CreatedAt = nowUTC()
	}

	res, err := r.q.ExecContext(ctx, appendInventoryTxnQuery, txn.ProductID, txn.Type, txn.QuantityChange, txn.StockBefore,
		txn.StockAfter, txn.ReferenceType, referenceID, txn.Notes, txn.CreatedAt)
	if err != nil {
		return err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	txn.ID = int(id)
	return nil
}

func (r *inventoryRepository) ListTransactions(ctx context.Context, productID int, limit int) ([]*entity.InventoryTransaction, error) {
	query := listInventoryTxnQuery
	args := []interface{}{productID, productID}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var txns []*entity.InventoryTransaction
	for rows.Next() {
		txn := &entity.InventoryTransaction{}
		var referenceID sql.NullInt64
		err := rows.Scan(&txn.ID, &txn.ProductID, &txn.Type, &txn.QuantityChange, &txn.StockBefore, &txn.StockAfter,
			&txn.ReferenceType, &referenceID, &txn.Notes, &txn.CreatedAt)
		if err != nil {
			return nil, err
		}
		if referenceID.Valid {
			id := int(referenceID.Int64)
			txn.ReferenceID = &id
		}
		txns = append(txns, txn)
	}
	return txns, rows.Err()
}
