package consumer

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"

	"storefront/internal/events"
	"storefront/internal/metrics"
)

type messageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

type cacheInvalidator interface {
	Invalidate(ctx context.Context, productIDs ...int) error
}

// Consumer follows the storefront event topic and reacts to stock movements.
type Consumer struct {
	reader messageReader
	cache  cacheInvalidator
}

// NewConsumer creates a consumer. cache may be nil.
func NewConsumer(reader messageReader, cache cacheInvalidator) *Consumer {
	return &Consumer{reader: reader, cache: cache}
}

// Run reads until ctx is cancelled, then closes the reader.
func (c *Consumer) Run(ctx context.Context) {
	defer c.reader.Close()

	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				log.Info().Msg("Event consumer stopped")
				return
			}
			log.Error().Msgf("Error reading message: %v", err)
			continue
		}

		c.processMessage(ctx, msg)
	}
}

// processMessage handles one event. Unknown event types are skipped.
func (c *Consumer) processMessage(ctx context.Context, msg kafka.Message) {
	e, err := events.FromKafkaMessage(msg)
	if err != nil {
		log.Error().Msgf("Error unmarshalling message: %v", err)
		return
	}

	var lines []events.StockLine
	switch e.Type {
	case events.OrderCreated:
		var payload events.OrderCreatedPayload
		if err := e.Decode(&payload); err != nil {
			log.Error().Str("event_id", e.ID).Msgf("Error decoding order payload: %v", err)
			return
		}
		lines = payload.Lines
	case events.StockAdjusted:
		var payload events.StockAdjustedPayload
		if err := e.Decode(&payload); err != nil {
			log.Error().Str("event_id", e.ID).Msgf("Error decoding stock payload: %v", err)
			return
		}
		lines = payload.Lines
	case events.OrderStatusChanged:
		var payload events.OrderStatusChangedPayload
		if err := e.Decode(&payload); err != nil {
			log.Error().Str("event_id", e.ID).Msgf("Error decoding status payload: %v", err)
			return
		}
		lines = payload.Lines
	default:
		log.Debug().Msgf("Skipping event type %s", e.Type)
		return
	}

	c.handleStockLines(ctx, e, lines)
}

func (c *Consumer) handleStockLines(ctx context.Context, e events.Event, lines []events.StockLine) {
	if len(lines) == 0 {
		return
	}

	productIDs := make([]int, 0, len(lines))
	for _, line := range lines {
		productIDs = append(productIDs, line.ProductID)
		if line.LowStock() {
			metrics.RecordLowStockAlert()
			log.Warn().Str("event_id", e.ID).Int("product_id", line.ProductID).
				Int("stock", line.StockAfter).Int("min_stock_level", line.MinStockLevel).Msg("Product stock is low")
		}
	}

	if c.cache != nil {
		if err := c.cache.Invalidate(ctx, productIDs...); err != nil {
			log.Error().Msgf("Error evicting products %v from cache: %v", productIDs, err)
		}
	}
}
