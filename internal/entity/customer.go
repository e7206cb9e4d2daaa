package entity

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
)

type Customer struct {
	ID           int       `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone,omitempty"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	City         string    `json:"city,omitempty"`
	State        string    `json:"state,omitempty"`
	Pin          string    `json:"pin,omitempty"`
	Address      string    `json:"address,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

func (c *Customer) IsAdmin() bool {
	return c.Role == RoleAdmin
}

// DeliveryAddress joins the profile's address lines, skipping blank parts.
func (c *Customer) DeliveryAddress() string {
	var parts []string
	for _, p := range []string{c.Address, c.City, c.State, c.Pin} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

// OrderStats summarises every order a customer has placed.
type OrderStats struct {
	OrderCount  int             `json:"order_count"`
	TotalSpent  decimal.Decimal `json:"total_spent"`
	LastOrderAt *time.Time      `json:"last_order_at,omitempty"`
}

type Profile struct {
	Customer *Customer  `json:"customer"`
	Stats    OrderStats `json:"order_stats"`
}
