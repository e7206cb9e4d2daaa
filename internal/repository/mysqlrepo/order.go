package mysqlrepo

import (
	"context"
	"database/sql"

	"storefront/internal/entity"
)

const orderColumns = `id, customer_id, order_date, total_amount, status, payment_status, payment_method, shipping_address, updated_at`

const (
	createOrderQuery        = `INSERT INTO orders (customer_id, order_date, total_amount, status, payment_status, payment_method, shipping_address, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	createOrderItemQuery    = `INSERT INTO order_items (order_id, product_id, quantity, price_at_purchase, subtotal) VALUES (?, ?, ?, ?, ?)`
	getOrderQuery           = `SELECT ` + orderColumns + ` FROM orders WHERE id = ?`
	getOrderForUpdateQuery  = getOrderQuery + ` FOR UPDATE`
	listOrderItemsQuery     = `SELECT id, order_id, product_id, quantity, price_at_purchase, subtotal FROM order_items WHERE order_id = ? ORDER BY id`
	listCustomerOrdersQuery = `SELECT ` + orderColumns + ` FROM orders WHERE customer_id = ? ORDER BY order_date DESC, id DESC`
	listOrdersQuery         = `SELECT ` + orderColumns + ` FROM orders ORDER BY order_date DESC, id DESC`
	listOrdersByStatusQuery = `SELECT ` + orderColumns + ` FROM orders WHERE status = ? ORDER BY order_date DESC, id DESC`
	updateOrderStatusQuery  = `UPDATE orders SET status = ?, payment_status = ?, updated_at = ? WHERE id = ?`
)

const hasDeliveredOrderQuery = `
	SELECT EXISTS (
		SELECT 1 FROM orders o
		JOIN order_items oi ON oi.order_id = o.id
		WHERE o.customer_id = ? AND oi.product_id = ? AND o.status = 'delivered'
	)`

const orderStatsQuery = `SELECT COUNT(*), COALESCE(SUM(total_amount), 0), MAX(order_date) FROM orders WHERE customer_id = ?`

type orderRepository struct {
	q querier
}

func scanOrder(row rowScanner) (*entity.Order, error) {
	order := &entity.Order{}
	err := row.Scan(&order.ID, &order.CustomerID, &order.OrderDate, &order.TotalAmount, &order.Status,
		&order.PaymentStatus, &order.PaymentMethod, &order.ShippingAddress, &order.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (r *orderRepository) CreateOrder(ctx context.Context, order *entity.Order) error {
	res, err := r.q.ExecContext(ctx, createOrderQuery, order.CustomerID, order.OrderDate, order.TotalAmount, order.Status,
		order.PaymentStatus, order.PaymentMethod, order.ShippingAddress, order.UpdatedAt)
	if err != nil {
		return mapError(err)
	}

	orderID, err := res.LastInsertId()
	if err != nil {
		return err
	}
	order.ID = int(orderID)

	for i := range order.Items {
		item := &order.Items[i]
		item.OrderID = order.ID
		res, err := r.q.ExecContext(ctx, createOrderItemQuery, item.OrderID, item.ProductID, item.Quantity, item.PriceAtPurchase, item.Subtotal)
		if err != nil {
			return mapError(err)
		}
		itemID, err := res.LastInsertId()
		if err != nil {
			return err
		}
		item.ID = int(itemID)
	}

	return nil
}

func (r *orderRepository) GetOrder(ctx context.Context, id int) (*entity.Order, error) {
	return r.getOrder(ctx, getOrderQuery, id)
}

func (r *orderRepository) GetOrderForUpdate(ctx context.Context, id int) (*entity.Order, error) {
	return r.getOrder(ctx, getOrderForUpdateQuery, id)
}

func (r *orderRepository) getOrder(ctx context.Context, query string, id int) (*entity.Order, error) {
	order, err := scanOrder(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, mapError(err)
	}
	if err := r.loadItems(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

func (r *orderRepository) loadItems(ctx context.Context, order *entity.Order) error {
	rows, err := r.q.QueryContext(ctx, listOrderItemsQuery, order.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	order.Items = nil
	for rows.Next() {
		item := entity.OrderItem{}
		err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.Quantity, &item.PriceAtPurchase, &item.Subtotal)
		if err != nil {
			return err
		}
		order.Items = append(order.Items, item)
	}
	return rows.Err()
}

func (r *orderRepository) ListOrdersByCustomer(ctx context.Context, customerID int) ([]*entity.Order, error) {
	return r.listOrders(ctx, listCustomerOrdersQuery, customerID)
}

func (r *orderRepository) ListOrders(ctx context.Context, status entity.OrderStatus) ([]*entity.Order, error) {
	if status == "" {
		return r.listOrders(ctx, listOrdersQuery)
	}
	return r.listOrders(ctx, listOrdersByStatusQuery, status)
}

func (r *orderRepository) listOrders(ctx context.Context, query string, args ...interface{}) ([]*entity.Order, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	var orders []*entity.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	// the connection must be free before the item queries run inside a transaction
	rows.Close()

	for _, order := range orders {
		if err := r.loadItems(ctx, order); err != nil {
			return nil, err
		}
	}
	return orders, nil
}

func (r *orderRepository) UpdateOrderStatus(ctx context.Context, id int, status entity.OrderStatus, paymentStatus entity.PaymentStatus) error {
	res, err := r.q.ExecContext(ctx, updateOrderStatusQuery, status, paymentStatus, nowUTC(), id)
	if err != nil {
		return err
	}
	return expectAffected(res)
}

func (r *orderRepository) HasDeliveredOrder(ctx context.Context, customerID, productID int) (bool, error) {
	var exists bool
	err := r.q.QueryRowContext(ctx, hasDeliveredOrderQuery, customerID, productID).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

func (r *orderRepository) OrderStats(ctx context.Context, customerID int) (*entity.OrderStats, error) {
	stats := &entity.OrderStats{}
	var last sql.NullTime
	err := r.q.QueryRowContext(ctx, orderStatsQuery, customerID).Scan(&stats.OrderCount, &stats.TotalSpent, &last)
	if err != nil {
		return nil, err
	}
	if last.Valid {
		t := last.Time
		stats.LastOrderAt = &t
	}
	return stats, nil
}
