package entity

import (
	"fmt"
	"time"
)

type TransactionType string

const (
	TransactionPurchase   TransactionType = "purchase"
	TransactionSale       TransactionType = "sale"
	TransactionAdjustment TransactionType = "adjustment"
	TransactionReturn     TransactionType = "return"
	TransactionDamage     TransactionType = "damage"
)

const (
	ReferenceManual = "manual"
	ReferenceOrder  = "order"
)

func (t TransactionType) Valid() bool {
	switch t {
	case TransactionPurchase, TransactionSale, TransactionAdjustment, TransactionReturn, TransactionDamage:
		return true
	}
	return false
}

// SignedDelta turns a requested quantity into a stock change. Purchases and returns add stock,
// sales and damage remove it; an adjustment carries its own sign.
func (t TransactionType) SignedDelta(quantity int) (int, error) {
	switch t {
	case TransactionPurchase, TransactionReturn:
		if quantity <= 0 {
			return 0, fmt.Errorf("%s quantity must be positive, got %d", t, quantity)
		}
		return quantity, nil
	case TransactionSale, TransactionDamage:
		if quantity <= 0 {
			return 0, fmt.Errorf("%s quantity must be positive, got %d", t, quantity)
		}
		return -quantity, nil
	case TransactionAdjustment:
		if quantity == 0 {
			return 0, fmt.Errorf("adjustment quantity must not be zero")
		}
		return quantity, nil
	}
	return 0, fmt.Errorf("unknown transaction type %q", t)
}

// InventoryTransaction is an append-only audit row. StockAfter always equals StockBefore + QuantityChange.
type InventoryTransaction struct {
	ID             int             `json:"id"`
	ProductID      int             `json:"product_id"`
	Type           TransactionType `json:"transaction_type"`
	QuantityChange int             `json:"quantity_change"`
	StockBefore    int             `json:"stock_before"`
	StockAfter     int             `json:"stock_after"`
	ReferenceType  string          `json:"reference_type"`
	ReferenceID    *int            `json:"reference_id,omitempty"`
	Notes          string          `json:"notes,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
}

type InventoryOverview struct {
	TotalProducts int `json:"total_products"`
	TotalStock    int `json:"total_stock"`
	LowStock      int `json:"low_stock"`
	OutOfStock    int `json:"out_of_stock"`
}
