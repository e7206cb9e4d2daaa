package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"storefront/internal/entity"
	"storefront/internal/events"
	"storefront/internal/metrics"
	"storefront/internal/repository"
)

const DefaultCheckoutTimeout = 10 * time.Second

type CheckoutRequest struct {
	CustomerID      int
	ShippingAddress string
	PaymentMethod   string
	// IdempotencyKey is optional. A repeated key returns the order created by the first attempt.
	IdempotencyKey string
}

// CheckoutService turns a customer's cart into an order in one transaction.
type CheckoutService struct {
	store       repository.Store
	publisher   events.Publisher
	cache       ProductCache
	idempotency IdempotencyStore
	timeout     time.Duration
	now         func() time.Time
}

// NewCheckoutService creates a new instance of CheckoutService. cache and idempotency may be nil.
func NewCheckoutService(store repository.Store, publisher events.Publisher, cache ProductCache, idempotency IdempotencyStore, timeout time.Duration) *CheckoutService {
	if timeout <= 0 {
		timeout = DefaultCheckoutTimeout
	}
	return &CheckoutService{
		store:       store,
		publisher:   publisher,
		cache:       cache,
		idempotency: idempotency,
		timeout:     timeout,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Checkout places an order for everything in the customer's cart. On any error nothing was
// written: the cart, stock levels and ledger are as they were before the call.
func (s *CheckoutService) Checkout(ctx context.Context, req CheckoutRequest) (*entity.Order, error) {
	start := time.Now()
	order, replayed, err := s.checkoutOnce(ctx, req)
	metrics.RecordCheckout(checkoutResult(err, replayed), time.Since(start).Seconds())
	if err != nil {
		logFailure(err, "Error during checkout")
		logger.Warn().Err(err).Int("customer_id", req.CustomerID).Msg("Checkout failed")
		return nil, err
	}
	return order, nil
}

func (s *CheckoutService) checkoutOnce(ctx context.Context, req CheckoutRequest) (*entity.Order, bool, error) {
	req.ShippingAddress = strings.TrimSpace(req.ShippingAddress)
	if req.ShippingAddress == "" {
		addr, err := s.profileAddress(ctx, req.CustomerID)
		if err != nil {
			return nil, false, err
		}
		req.ShippingAddress = addr
	}
	if req.ShippingAddress == "" {
		return nil, false, ErrInvalidAddress
	}
	req.PaymentMethod = strings.TrimSpace(req.PaymentMethod)
	if req.PaymentMethod == "" {
		req.PaymentMethod = entity.DefaultPaymentMethod
	}

	if s.idempotency == nil || req.IdempotencyKey == "" {
		order, err := s.checkout(ctx, req)
		return order, false, err
	}

	key := fmt.Sprintf("%d:%s", req.CustomerID, req.IdempotencyKey)
	orderID, reserved, err := s.idempotency.Reserve(ctx, key)
	if err != nil {
		return nil, false, persistence("reserve idempotency key", err)
	}
	if !reserved {
		if orderID == 0 {
			return nil, false, ErrCheckoutInProgress
		}
		order, err := s.store.Orders().GetOrder(ctx, orderID)
		if err != nil {
			return nil, false, persistence("load replayed order", err)
		}
		return order, true, nil
	}

	order, err := s.checkout(ctx, req)
	if err != nil {
		// nothing was committed, so the key is free for a retry
		if relErr := s.idempotency.Release(ctx, key); relErr != nil {
			logger.Warn().Err(relErr).Str("key", key).Msg("Error releasing idempotency key")
		}
		return nil, false, err
	}
	if err := s.idempotency.Complete(ctx, key, order.ID); err != nil {
		logger.Warn().Err(err).Str("key", key).Int("order_id", order.ID).Msg("Error storing idempotency key")
	}
	return order, false, nil
}

// profileAddress is the fallback for a blank shipping address. An unknown customer has none.
func (s *CheckoutService) profileAddress(ctx context.Context, customerID int) (string, error) {
	customer, err := s.store.Customers().GetCustomer(ctx, customerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", nil
		}
		return "", persistence("load customer", err)
	}
	return customer.DeliveryAddress(), nil
}

func (s *CheckoutService) checkout(ctx context.Context, req CheckoutRequest) (*entity.Order, error) {
	txCtx, cancel := context.WithTimeout(ctx, s.timeout)
	order, lines, err := s.placeOrder(txCtx, req)
	cancel()
	if err != nil {
		return nil, err
	}

	logger.Info().Int("order_id", order.ID).Int("customer_id", order.CustomerID).
		Str("total_amount", order.TotalAmount.StringFixed(2)).Int("items", len(order.Items)).Msg("Order placed")

	productIDs := make([]int, 0, len(lines))
	for _, line := range lines {
		productIDs = append(productIDs, line.ProductID)
	}
	invalidateProducts(ctx, s.cache, productIDs...)

	if e, err := events.NewOrderCreated(order, lines); err == nil {
		publish(ctx, s.publisher, e)
	}
	return order, nil
}

// placeOrder runs the transaction. The deferred rollback releases it on every early return.
func (s *CheckoutService) placeOrder(ctx context.Context, req CheckoutRequest) (*entity.Order, []events.StockLine, error) {
	tx, err := s.store.BeginTx(ctx)
	if err != nil {
		return nil, nil, persistence("begin transaction", err)
	}
	defer tx.Rollback()

	if _, err := tx.Customers().GetCustomer(ctx, req.CustomerID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, ErrCustomerNotFound
		}
		return nil, nil, persistence("load customer", err)
	}

	cart, err := tx.Carts().GetCartForUpdate(ctx, req.CustomerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, ErrEmptyCart
		}
		return nil, nil, persistence("lock cart", err)
	}
	if cart.Empty() {
		return nil, nil, ErrEmptyCart
	}

	// ascending product id is the global lock order, so two carts sharing products cannot deadlock
	items := append([]entity.CartItem(nil), cart.Items...)
	sort.Slice(items, func(i, j int) bool { return items[i].ProductID < items[j].ProductID })

	products := make([]*entity.Product, len(items))
	orderItems := make([]entity.OrderItem, len(items))
	for i, item := range items {
		product, err := lockProduct(ctx, tx, item.ProductID)
		if err != nil {
			return nil, nil, err
		}
		if product.Status != entity.ProductStatusActive {
			return nil, nil, fmt.Errorf("%w: product %d", ErrProductUnavailable, product.ID)
		}
		if !product.CanFulfil(item.Quantity) {
			return nil, nil, &InsufficientStockError{ProductID: product.ID, Requested: item.Quantity, Available: product.StockQuantity}
		}
		products[i] = product
		orderItems[i] = entity.NewOrderItem(product.ID, item.Quantity, product.Price)
	}

	order := entity.NewOrder(req.CustomerID, req.ShippingAddress, req.PaymentMethod, orderItems, s.now())
	if err := tx.Orders().CreateOrder(ctx, order); err != nil {
		return nil, nil, persistence("create order", err)
	}

	orderID := order.ID
	lines := make([]events.StockLine, len(items))
	for i, item := range items {
		_, err := adjustLockedStock(ctx, tx, products[i], stockChange{
			delta:         -item.Quantity,
			txnType:       entity.TransactionSale,
			referenceType: entity.ReferenceOrder,
			referenceID:   &orderID,
			notes:         fmt.Sprintf("checkout of order %d", orderID),
		})
		if err != nil {
			return nil, nil, err
		}
		lines[i] = stockLine(products[i], -item.Quantity)
	}

	if err := tx.Carts().ClearCart(ctx, cart.ID); err != nil {
		return nil, nil, persistence("clear cart", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, persistence("commit checkout", err)
	}
	return order, lines, nil
}

func checkoutResult(err error, replayed bool) string {
	switch {
	case err == nil && replayed:
		return "replayed"
	case err == nil:
		return "success"
	case errors.Is(err, ErrEmptyCart):
		return "empty_cart"
	case errors.Is(err, ErrInvalidAddress):
		return "invalid_address"
	case errors.Is(err, ErrInsufficientStock):
		return "insufficient_stock"
	case errors.Is(err, ErrPersistence):
		return "persistence_failure"
	}
	return "rejected"
}
