package mysqlrepo

import (
	"context"

	"storefront/internal/entity"
)

const (
	listWishlistQuery       = `SELECT id, customer_id, product_id, added_at FROM wishlist_items WHERE customer_id = ? ORDER BY added_at DESC, id DESC`
	getWishlistItemQuery    = `SELECT id, customer_id, product_id, added_at FROM wishlist_items WHERE customer_id = ? AND product_id = ?`
	addWishlistItemQuery    = `INSERT INTO wishlist_items (customer_id, product_id, added_at) VALUES (?, ?, ?)`
	removeWishlistItemQuery = `DELETE FROM wishlist_items WHERE customer_id = ? AND product_id = ?`
)

type wishlistRepository struct {
	q querier
}

func (r *wishlistRepository) ListItems(ctx context.Context, customerID int) ([]*entity.WishlistItem, error) {
	rows, err := r.q.QueryContext(ctx, listWishlistQuery, customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*entity.WishlistItem
	for rows.Next() {
		item := &entity.WishlistItem{}
		if err := rows.Scan(&item.ID, &item.CustomerID, &item.ProductID, &item.AddedAt); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *wishlistRepository) GetItem(ctx context.Context, customerID, productID int) (*entity.WishlistItem, error) {
	item := &entity.WishlistItem{}
	err := r.q.QueryRowContext(ctx, getWishlistItemQuery, customerID, productID).Scan(&item.ID, &item.CustomerID, &item.ProductID, &item.AddedAt)
	if err != nil {
		return nil, mapError(err)
	}
	return item, nil
}

func (r *wishlistRepository) AddItem(ctx context.Context, item *entity.WishlistItem) error {
	if item.AddedAt.IsZero() {
		item.AddedAt = nowUTC()
	}
	res, err := r.q.ExecContext(ctx, addWishlistItemQuery, item.CustomerID, item.ProductID, item.AddedAt)
	if err != nil {
		return mapError(err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	item.ID = int(id)
	return nil
}

func (r *wishlistRepository) RemoveItem(ctx context.Context, customerID, productID int) error {
	res, err := r.q.ExecContext(ctx, removeWishlistItemQuery, customerID, productID)
	if err != nil {
		return err
	}
	return expectAffected(res)
}
