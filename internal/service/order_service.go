package service

import (
	"context"
	"errors"
	"fmt"

	"storefront/internal/entity"
	"storefront/internal/events"
	"storefront/internal/repository"
)

type OrderService struct {
	store     repository.Store
	publisher events.Publisher
	cache     ProductCache
}

func NewOrderService(store repository.Store, publisher events.Publisher, cache ProductCache) *OrderService {
	return &OrderService{store: store, publisher: publisher, cache: cache}
}

func (s *OrderService) ListCustomerOrders(ctx context.Context, customerID int) ([]*entity.Order, error) {
	orders, err := s.store.Orders().ListOrdersByCustomer(ctx, customerID)
	if err != nil {
		return nil, persistence("list orders", err)
	}
	return orders, nil
}

// GetCustomerOrder hides orders of other customers behind ErrOrderNotFound.
func (s *OrderService) GetCustomerOrder(ctx context.Context, customerID, orderID int) (*entity.Order, error) {
	order, err := s.store.Orders().GetOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, persistence("load order", err)
	}
	if order.CustomerID != customerID {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// ListOrders lists every order, optionally filtered by status.
func (s *OrderService) ListOrders(ctx context.Context, status entity.OrderStatus) ([]*entity.Order, error) {
	if status != "" && !status.Valid() {
		return nil, ErrInvalidStatus
	}
	orders, err := s.store.Orders().ListOrders(ctx, status)
	if err != nil {
		return nil, persistence("list orders", err)
	}
	return orders, nil
}

// UpdateOrderStatus moves an order along its lifecycle. Cancelling returns every line to stock.
// An empty paymentStatus keeps the current one.
func (s *OrderService) UpdateOrderStatus(ctx context.Context, orderID int, status entity.OrderStatus, paymentStatus entity.PaymentStatus) (*entity.Order, error) {
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}
	if paymentStatus != "" && !paymentStatus.Valid() {
		return nil, ErrInvalidStatus
	}

	var (
		order *entity.Order
		from  entity.OrderStatus
		lines []events.StockLine
	)
	err := repository.WithTx(ctx, s.store, func(tx repository.Tx) error {
		var err error
		order, err = tx.Orders().GetOrderForUpdate(ctx, orderID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrOrderNotFound
			}
			return err
		}
		from = order.Status
		if !from.CanTransitionTo(status) {
			return fmt.Errorf("%w: %s to %s", ErrInvalidStatusTransition, from, status)
		}

		payment := order.PaymentStatus
		if paymentStatus != "" {
			payment = paymentStatus
		}

		if status == entity.OrderStatusCancelled {
			if payment == entity.PaymentStatusPaid {
				payment = entity.PaymentStatusRefunded
			}
			id := order.ID
			for _, item := range order.Items {
				product, _, err := adjustStock(ctx, tx, item.ProductID, stockChange{
					delta:         item.Quantity,
					txnType:       entity.TransactionReturn,
					referenceType: entity.ReferenceOrder,
					referenceID:   &id,
					notes:         fmt.Sprintf("cancellation of order %d", id),
				})
				if err != nil {
					return err
				}
				lines = append(lines, stockLine(product, item.Quantity))
			}
		}

		if err := tx.Orders().UpdateOrderStatus(ctx, order.ID, status, payment); err != nil {
			return err
		}
		order.Status = status
		order.PaymentStatus = payment
		return nil
	})
	if err != nil {
		err = classify("update order status", err)
		logFailure(err, "Error updating order status")
		return nil, err
	}

	logger.Info().Int("order_id", order.ID).Str("from", string(from)).Str("to", string(status)).
		Str("payment_status", string(order.PaymentStatus)).Msg("Order status updated")

	productIDs := make([]int, 0, len(lines))
	for _, line := range lines {
		productIDs = append(productIDs, line.ProductID)
	}
	invalidateProducts(ctx, s.cache, productIDs...)

	if e, err := events.New(events.OrderStatusChanged, order.ID, events.OrderStatusChangedPayload{
		OrderID:       order.ID,
		CustomerID:    order.CustomerID,
		From:          from,
		To:            status,
		PaymentStatus: order.PaymentStatus,
		Lines:         lines,
	}); err == nil {
		publish(ctx, s.publisher, e)
	}
	return order, nil
}
