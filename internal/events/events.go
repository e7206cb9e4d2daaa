package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"storefront/internal/entity"
)

type Type string

const (
	OrderCreated       Type = "order.created"
	OrderStatusChanged Type = "order.status_changed"
	StockAdjusted      Type = "stock.adjusted"
)

const (
	PriorityNormal uint8 = 0
	PriorityHigh   uint8 = 9
)

var highValueOrder = decimal.NewFromInt(1000)

type Event struct {
	ID          string          `json:"id"`
	Type        Type            `json:"type"`
	AggregateID int             `json:"aggregate_id"`
	OccurredAt  time.Time       `json:"occurred_at"`
	Payload     json.RawMessage `json:"payload"`
	Priority    uint8           `json:"-"`
}

func New(eventType Type, aggregateID int, payload interface{}) (Event, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return Event{}, fmt.Errorf("marshal %s payload: %w", eventType, err)
	}
	return Event{
		ID:          uuid.NewString(),
		Type:        eventType,
		AggregateID: aggregateID,
		OccurredAt:  time.Now().UTC(),
		Payload:     body,
	}, nil
}

// Key is used as the message key, e.g. "order.created.42".
func (e Event) Key() string {
	return fmt.Sprintf("%s.%d", e.Type, e.AggregateID)
}

func (e Event) Decode(v interface{}) error {
	return json.Unmarshal(e.Payload, v)
}

// StockLine describes the stock level of one product after a change.
type StockLine struct {
	ProductID      int `json:"product_id"`
	QuantityChange int `json:"quantity_change"`
	StockAfter     int `json:"stock_after"`
	MinStockLevel  int `json:"min_stock_level"`
}

func (l StockLine) LowStock() bool {
	return l.StockAfter <= l.MinStockLevel
}

type OrderCreatedPayload struct {
	OrderID     int             `json:"order_id"`
	CustomerID  int             `json:"customer_id"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Lines       []StockLine     `json:"lines"`
}

type OrderStatusChangedPayload struct {
	OrderID       int                  `json:"order_id"`
	CustomerID    int                  `json:"customer_id"`
	From          entity.OrderStatus   `json:"from"`
	To            entity.OrderStatus   `json:"to"`
	PaymentStatus entity.PaymentStatus `json:"payment_status"`
	Lines         []StockLine          `json:"lines,omitempty"`
}

type StockAdjustedPayload struct {
	TransactionID int                    `json:"transaction_id"`
	Type          entity.TransactionType `json:"transaction_type"`
	Notes         string                 `json:"notes,omitempty"`
	Lines         []StockLine            `json:"lines"`
}

// NewOrderCreated builds the event for a committed checkout; high value orders jump the queue.
func NewOrderCreated(order *entity.Order, lines []StockLine) (Event, error) {
	e, err := New(OrderCreated, order.ID, OrderCreatedPayload{
		OrderID:     order.ID,
		CustomerID:  order.CustomerID,
		TotalAmount: order.TotalAmount,
		Lines:       lines,
	})
	if err != nil {
		return Event{}, err
	}
	if order.TotalAmount.GreaterThanOrEqual(highValueOrder) {
		e.Priority = PriorityHigh
	}
	return e, nil
}

type Publisher interface {
	Publish(ctx context.Context, events ...Event) error
	Close() error
}

// Discard drops every event.
var Discard Publisher = discard{}

type discard struct{}

func (discard) Publish(ctx context.Context, events ...Event) error { return nil }
func (discard) Close() error                                       { return nil }
