package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// rank orders the forward flow; cancelled sits outside it.
var orderStatusRank = map[OrderStatus]int{
	OrderStatusPending:    1,
	OrderStatusProcessing: 2,
	OrderStatusShipped:    3,
	OrderStatusDelivered:  4,
}

func (s OrderStatus) Valid() bool {
	_, ok := orderStatusRank[s]
	return ok || s == OrderStatusCancelled
}

func (s OrderStatus) Terminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

// CanTransitionTo allows forward moves through pending, processing, shipped, delivered
// and cancellation before the order ships.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	if s.Terminal() || !next.Valid() || s == next {
		return false
	}
	if next == OrderStatusCancelled {
		return s == OrderStatusPending || s == OrderStatusProcessing
	}
	return orderStatusRank[next] > orderStatusRank[s]
}

type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusFailed   PaymentStatus = "failed"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusPaid, PaymentStatusFailed, PaymentStatusRefunded:
		return true
	}
	return false
}

const DefaultPaymentMethod = "cash_on_delivery"

type Order struct {
	ID              int             `json:"id"`
	CustomerID      int             `json:"customer_id"`
	OrderDate       time.Time       `json:"order_date"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	Status          OrderStatus     `json:"status"`
	PaymentStatus   PaymentStatus   `json:"payment_status"`
	PaymentMethod   string          `json:"payment_method"`
	ShippingAddress string          `json:"shipping_address"`
	Items           []OrderItem     `json:"items"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

type OrderItem struct {
	ID              int             `json:"id"`
	OrderID         int             `json:"order_id"`
	ProductID       int             `json:"product_id"`
	Quantity        int             `json:"quantity"`
	PriceAtPurchase decimal.Decimal `json:"price_at_purchase"`
	Subtotal        decimal.Decimal `json:"subtotal"`
}

// NewOrderItem snapshots the unit price and derives the subtotal from it.
func NewOrderItem(productID, quantity int, price decimal.Decimal) OrderItem {
	return OrderItem{
		ProductID:       productID,
		Quantity:        quantity,
		PriceAtPurchase: price,
		Subtotal:        price.Mul(decimal.NewFromInt(int64(quantity))),
	}
}

// NewOrder builds a pending order whose total is the sum of its line subtotals.
func NewOrder(customerID int, shippingAddress, paymentMethod string, items []OrderItem, now time.Time) *Order {
	order := &Order{
		CustomerID:      customerID,
		OrderDate:       now,
		Status:          OrderStatusPending,
		PaymentStatus:   PaymentStatusPending,
		PaymentMethod:   paymentMethod,
		ShippingAddress: shippingAddress,
		Items:           items,
		UpdatedAt:       now,
	}
	order.TotalAmount = order.ItemsTotal()
	return order
}

func (o *Order) ItemsTotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.Subtotal)
	}
	return total
}

func (o *Order) Contains(productID int) bool {
	for _, item := range o.Items {
		if item.ProductID == productID {
			return true
		}
	}
	return false
}
