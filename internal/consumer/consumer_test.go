package consumer

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/events"
)

// fakeReader hands out queued messages and then blocks until the context ends.
type fakeReader struct {
	mu       sync.Mutex
	messages []kafka.Message
	errs     []error
	closed   bool
}

func (r *fakeReader) ReadMessage(ctx context.Context) (kafka.Message, error) {
	r.mu.Lock()
	if len(r.errs) > 0 {
		err := r.errs[0]
		r.errs = r.errs[1:]
		r.mu.Unlock()
		return kafka.Message{}, err
	}
	if len(r.messages) > 0 {
		msg := r.messages[0]
		r.messages = r.messages[1:]
		r.mu.Unlock()
		return msg, nil
	}
	r.mu.Unlock()
	<-ctx.Done()
	return kafka.Message{}, ctx.Err()
}

func (r *fakeReader) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}

type recordingCache struct {
	mu      sync.Mutex
	evicted []int
	err     error
}

func (c *recordingCache) Invalidate(ctx context.Context, productIDs ...int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.evicted = append(c.evicted, productIDs...)
	return c.err
}

func (c *recordingCache) ids() []int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]int(nil), c.evicted...)
}

func message(t *testing.T, eventType events.Type, payload interface{}) kafka.Message {
	t.Helper()
	e, err := events.New(eventType, 1, payload)
	require.NoError(t, err)
	msg, err := events.ToKafkaMessage(e)
	require.NoError(t, err)
	return msg
}

func TestConsumer_EvictsProductsFromStockEvents(t *testing.T) {
	reader := &fakeReader{
		errs: []error{errors.New("broker unavailable")},
		messages: []kafka.Message{
			message(t, events.OrderCreated, events.OrderCreatedPayload{OrderID: 1, Lines: []events.StockLine{
				{ProductID: 10, QuantityChange: -2, StockAfter: 1, MinStockLevel: 5},
				{ProductID: 11, QuantityChange: -1, StockAfter: 40, MinStockLevel: 5},
			}}),
			{Value: []byte("{garbage")},
			message(t, events.StockAdjusted, events.StockAdjustedPayload{Lines: []events.StockLine{{ProductID: 12, StockAfter: 3}}}),
			message(t, "customer.renamed", map[string]string{"name": "x"}),
			message(t, events.OrderStatusChanged, events.OrderStatusChangedPayload{OrderID: 1}),
		},
	}
	cache := &recordingCache{}
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		NewConsumer(reader, cache).Run(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool { return len(cache.ids()) == 3 }, time.Second, 5*time.Millisecond)
	cancel()
	<-done

	assert.Equal(t, []int{10, 11, 12}, cache.ids())
	assert.True(t, reader.closed)
}

func TestConsumer_CacheErrorsAreLogged(t *testing.T) {
	cache := &recordingCache{err: errors.New("redis down")}
	c := NewConsumer(&fakeReader{}, cache)

	c.processMessage(context.Background(), message(t, events.StockAdjusted, events.StockAdjustedPayload{
		Lines: []events.StockLine{{ProductID: 3, StockAfter: 0, MinStockLevel: 1}},
	}))
	assert.Equal(t, []int{3}, cache.ids())
}

func TestConsumer_WithoutCache(t *testing.T) {
	c := NewConsumer(&fakeReader{}, nil)
	assert.NotPanics(t, func() {
		c.processMessage(context.Background(), message(t, events.StockAdjusted, events.StockAdjustedPayload{
			Lines: []events.StockLine{{ProductID: 3}},
		}))
	})
}
