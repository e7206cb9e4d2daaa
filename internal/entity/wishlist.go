package entity

import "time"

type WishlistItem struct {
	ID         int       `json:"id"`
	CustomerID int       `json:"customer_id"`
	ProductID  int       `json:"product_id"`
	AddedAt    time.Time `json:"added_at"`
	Product    *Product  `json:"product,omitempty"`
}
