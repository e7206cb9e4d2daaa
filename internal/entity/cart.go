package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Cart is the server-side staging area of a single customer. One cart per customer.
type Cart struct {
	ID         int        `json:"id"`
	CustomerID int        `json:"customer_id"`
	Items      []CartItem `json:"items"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

type CartItem struct {
	ID        int       `json:"id"`
	CartID    int       `json:"cart_id"`
	ProductID int       `json:"product_id"`
	Quantity  int       `json:"quantity"`
	AddedAt   time.Time `json:"added_at"`
}

func (c *Cart) Empty() bool {
	return c == nil || len(c.Items) == 0
}

// Item returns the line for productID, or nil.
func (c *Cart) Item(productID int) *CartItem {
	if c == nil {
		return nil
	}
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return &c.Items[i]
		}
	}
	return nil
}

// CartLine is a cart item joined with the current catalog state, for display.
type CartLine struct {
	ProductID         int             `json:"product_id"`
	Name              string          `json:"name"`
	Quantity          int             `json:"quantity"`
	UnitPrice         decimal.Decimal `json:"unit_price"`
	Subtotal          decimal.Decimal `json:"subtotal"`
	StockQuantity     int             `json:"stock_quantity"`
	InsufficientStock bool            `json:"insufficient_stock"`
	Available         bool            `json:"available"`
}

type CartSummary struct {
	CustomerID  int             `json:"customer_id"`
	Lines       []CartLine      `json:"lines"`
	TotalItems  int             `json:"total_items"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}
