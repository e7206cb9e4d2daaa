package service

import (
	"context"
	"errors"
	"os"

	"github.com/rs/zerolog"

	"storefront/internal/entity"
	"storefront/internal/events"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Logger()

// ProductCache is a read-through cache for catalog reads. Checkout and stock changes never read it.
type ProductCache interface {
	// Get returns nil, nil on a miss.
	Get(ctx context.Context, productID int) (*entity.Product, error)
	Set(ctx context.Context, product *entity.Product) error
	Invalidate(ctx context.Context, productIDs ...int) error
}

// IdempotencyStore remembers which order a checkout key produced.
type IdempotencyStore interface {
	// Reserve claims key. When the key is already taken it returns reserved=false and the
	// order id stored for it, or 0 while the first attempt is still running.
	Reserve(ctx context.Context, key string) (orderID int, reserved bool, err error)
	Complete(ctx context.Context, key string, orderID int) error
	Release(ctx context.Context, key string) error
}

func invalidateProducts(ctx context.Context, cache ProductCache, productIDs ...int) {
	if cache == nil || len(productIDs) == 0 {
		return
	}
	if err := cache.Invalidate(ctx, productIDs...); err != nil {
		logger.Warn().Err(err).Ints("product_ids", productIDs).Msg("Error invalidating cached products")
	}
}

// publish runs after commit, so a broker failure is logged and never reported to the caller.
func publish(ctx context.Context, publisher events.Publisher, evts ...events.Event) {
	if publisher == nil || len(evts) == 0 {
		return
	}
	if err := publisher.Publish(ctx, evts...); err != nil {
		for _, e := range evts {
			logger.Error().Err(err).Str("event_id", e.ID).Str("event_type", string(e.Type)).Msg("Error publishing event")
		}
	}
}

func logFailure(err error, msg string) {
	if errors.Is(err, ErrPersistence) {
		logger.Error().Err(err).Msg(msg)
	}
}
