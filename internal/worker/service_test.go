package worker

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corregomitas/storefront/internal/catalog"
	kafkax "github.com/corregomitas/storefront/internal/kafka"
	"github.com/corregomitas/storefront/internal/orders"
	"github.com/corregomitas/storefront/internal/redisx"
)

type memCache struct {
	entries map[string]redisx.StatusEntry
	sets    int
}

func (m *memCache) Set(_ context.Context, orderID string, e redisx.StatusEntry) error {
	m.entries[orderID] = e
	m.sets++
	return nil
}

type memDedup struct{ seen map[string]bool }

func (m *memDedup) Seen(_ context.Context, eventID string) (bool, error) {
	if m.seen[eventID] {
		return true, nil
	}
	m.seen[eventID] = true
	return false, nil
}

type memStock map[string]catalog.Product

func (m memStock) Get(_ context.Context, id string) (catalog.Product, error) {
	p, ok := m[id]
	if !ok {
		return catalog.Product{}, catalog.ErrNotFound
	}
	return p, nil
}

func newService() (*Service, *memCache, *memDedup) {
	cache := &memCache{entries: map[string]redisx.StatusEntry{}}
	dedup := &memDedup{seen: map[string]bool{}}
	svc := &Service{
		Cache:             cache,
		Dedup:             dedup,
		Products:          memStock{"P1": {ID: "P1", Name: "Gomitas clasicas", Stock: 2}},
		LowStockThreshold: 3,
	}
	return svc, cache, dedup
}

func message(eventType string, payload any) kafkago.Message {
	env := orders.Envelope{
		EventID:      uuid.NewString(),
		EventType:    eventType,
		EventVersion: 1,
		OccurredAt:   time.Now().UTC(),
		Producer:     "test",
		Payload:      kafkax.MustMarshal(payload),
	}
	return kafkago.Message{Value: kafkax.MustMarshal(env)}
}

func TestHandleEvent_OrderCreated_PrimesStatusCache(t *testing.T) {
	svc, cache, _ := newService()

	m := message(orders.EventOrderCreated, orders.OrderCreatedPayload{
		OrderID: "o1", UserID: "u1",
		Items: []orders.ItemQty{{ProductID: "P1", Qty: 1}},
		Total: "2.50",
	})
	require.NoError(t, svc.HandleEvent(context.Background(), m))

	e, ok := cache.entries["o1"]
	require.True(t, ok)
	assert.Equal(t, "pending", e.Status)
	assert.Equal(t, "u1", e.UserID)
}

func TestHandleEvent_StatusChanged_UpdatesCache(t *testing.T) {
	svc, cache, _ := newService()

	m := message(orders.EventOrderStatusChanged, orders.OrderStatusChangedPayload{
		OrderID: "o1", UserID: "u1", Status: "prepared",
	})
	require.NoError(t, svc.HandleEvent(context.Background(), m))

	assert.Equal(t, "prepared", cache.entries["o1"].Status)
}

func TestHandleEvent_RedeliveryIsDeduplicated(t *testing.T) {
	svc, cache, _ := newService()

	m := message(orders.EventOrderStatusChanged, orders.OrderStatusChangedPayload{
		OrderID: "o1", UserID: "u1", Status: "delivered",
	})
	require.NoError(t, svc.HandleEvent(context.Background(), m))
	require.NoError(t, svc.HandleEvent(context.Background(), m))

	assert.Equal(t, 1, cache.sets, "second delivery must be a no-op")
}

func TestHandleEvent_UnknownAndBrokenMessagesAreCommitted(t *testing.T) {
	svc, cache, _ := newService()

	assert.NoError(t, svc.HandleEvent(context.Background(), kafkago.Message{Value: []byte("not json")}))
	assert.NoError(t, svc.HandleEvent(context.Background(), message("SomethingElse", struct{}{})))
	assert.Equal(t, 0, cache.sets)
}
