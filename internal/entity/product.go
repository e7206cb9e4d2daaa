package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

type ProductStatus string

const (
	ProductStatusActive       ProductStatus = "active"
	ProductStatusInactive     ProductStatus = "inactive"
	ProductStatusDiscontinued ProductStatus = "discontinued"
)

func (s ProductStatus) Valid() bool {
	switch s {
	case ProductStatusActive, ProductStatusInactive, ProductStatusDiscontinued:
		return true
	}
	return false
}

// MaxStockQuantity matches the signed INT stock_quantity column.
const MaxStockQuantity = 1<<31 - 1

type Product struct {
	ID            int             `json:"id"`
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	Price         decimal.Decimal `json:"price"`
	StockQuantity int             `json:"stock_quantity"`
	MinStockLevel int             `json:"min_stock_level"`
	CategoryID    int             `json:"category_id,omitempty"`
	SKU           string          `json:"sku,omitempty"`
	Status        ProductStatus   `json:"status"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// Purchasable reports whether the product can be put into a cart right now.
func (p *Product) Purchasable() bool {
	return p.Status == ProductStatusActive && p.StockQuantity > 0
}

func (p *Product) LowStock() bool {
	return p.StockQuantity <= p.MinStockLevel
}

// CanFulfil checks a requested quantity against the stock held by this copy of the product.
func (p *Product) CanFulfil(quantity int) bool {
	return quantity > 0 && quantity <= p.StockQuantity
}

type Category struct {
	ID          int       `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

/*
Schema MySQL for products table:
CREATE TABLE `products` (
  `id` int NOT NULL AUTO_INCREMENT,
  `name` varchar(255) NOT NULL,
  `price` decimal(12,2) NOT NULL,
  `stock_quantity` int NOT NULL DEFAULT 0 CHECK (`stock_quantity` >= 0),
  `min_stock_level` int NOT NULL DEFAULT 10,
  ...
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;
*/
