package mysqlrepo

import (
	"context"

	"storefront/internal/entity"
)

const (
	getCartQuery          = `SELECT id, customer_id, created_at, updated_at FROM carts WHERE customer_id = ?`
	getCartForUpdateQuery = getCartQuery + ` FOR UPDATE`
	listCartItemsQuery    = `SELECT id, cart_id, product_id, quantity, added_at FROM cart_items WHERE cart_id = ? ORDER BY id`
	lockCartItemsQuery    = listCartItemsQuery + ` FOR UPDATE`
	createCartQuery       = `INSERT INTO carts (customer_id, created_at, updated_at) VALUES (?, ?, ?)`
	setCartItemQuery      = `INSERT INTO cart_items (cart_id, product_id, quantity, added_at) VALUES (?, ?, ?, ?) ON DUPLICATE KEY UPDATE quantity = VALUES(quantity)`
	removeCartItemQuery   = `DELETE FROM cart_items WHERE cart_id = ? AND product_id = ?`
	clearCartQuery        = `DELETE FROM cart_items WHERE cart_id = ?`
	touchCartQuery        = `UPDATE carts SET updated_at = ? WHERE id = ?`
)

type cartRepository struct {
	q querier
}

func (r *cartRepository) GetCart(ctx context.Context, customerID int) (*entity.Cart, error) {
	return r.getCart(ctx, getCartQuery, listCartItemsQuery, customerID)
}

func (r *cartRepository) GetCartForUpdate(ctx context.Context, customerID int) (*entity.Cart, error) {
	return r.getCart(ctx, getCartForUpdateQuery, lockCartItemsQuery, customerID)
}

func (r *cartRepository) getCart(ctx context.Context, cartQuery, itemsQuery string, customerID int) (*entity.Cart, error) {
	cart := &entity.Cart{}
	err := r.q.QueryRowContext(ctx, cartQuery, customerID).Scan(&cart.ID, &cart.CustomerID, &cart.CreatedAt, &cart.UpdatedAt)
	if err != nil {
		return nil, mapError(err)
	}

	rows, err := r.q.QueryContext(ctx, itemsQuery, cart.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		item := entity.CartItem{}
		if err := rows.Scan(&item.ID, &item.CartID, &item.ProductID, &item.Quantity, &item.AddedAt); err != nil {
			return nil, err
		}
		cart.Items = append(cart.Items, item)
	}
	return cart, rows.Err()
}

func (r *cartRepository) CreateCart(ctx context.Context, customerID int) (*entity.Cart, error) {
	now := nowUTC()
	res, err := r.q.ExecContext(ctx, createCartQuery, customerID, now, now)
	if err != nil {
		return nil, mapError(err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}

	return &entity.Cart{ID: int(id), CustomerID: customerID, CreatedAt: now, UpdatedAt: now}, nil
}

func (r *cartRepository) SetItemQuantity(ctx context.Context, cartID, productID, quantity int) error {
	now := nowUTC()
	if _, err := r.q.ExecContext(ctx, setCartItemQuery, cartID, productID, quantity, now); err != nil {
		return mapError(err)
	}
	_, err := r.q.ExecContext(ctx, touchCartQuery, now, cartID)
	return err
}

func (r *cartRepository) RemoveItem(ctx context.Context, cartID, productID int) error {
	res, err := r.q.ExecContext(ctx, removeCartItemQuery, cartID, productID)
	if err != nil {
		return err
	}
	return expectAffected(res)
}

func (r *cartRepository) ClearCart(ctx context.Context, cartID int) error {
	_, err := r.q.ExecContext(ctx, clearCartQuery, cartID)
	return err
}
