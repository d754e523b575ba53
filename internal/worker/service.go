package worker

import (
	"context"
	"encoding/json"
	"log"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/corregomitas/storefront/internal/catalog"
	kafkax "github.com/corregomitas/storefront/internal/kafka"
	"github.com/corregomitas/storefront/internal/orders"
	"github.com/corregomitas/storefront/internal/redisx"
)

type StatusSetter interface {
	Set(ctx context.Context, orderID string, e redisx.StatusEntry) error
}

type EventDedup interface {
	Seen(ctx context.Context, eventID string) (bool, error)
}

type StockReader interface {
	Get(ctx context.Context, id string) (catalog.Product, error)
}

// Service consumes order events off Kafka: it keeps the Redis status
// cache warm and flags products running low on stock.
type Service struct {
	Cache             StatusSetter
	Dedup             EventDedup
	Products          StockReader
	LowStockThreshold int
}

// HandleEvent is installed as the consumer handler. Returning nil
// commits the offset.
func (s *Service) HandleEvent(ctx context.Context, m kafkago.Message) error {
	var env orders.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		// poison message; commit and move on
		log.Printf("skip undecodable event: %v", err)
		return nil
	}

	seen, err := s.Dedup.Seen(ctx, env.EventID)
	if err != nil {
		return err
	}
	if seen {
		return nil
	}

	switch env.EventType {
	case orders.EventOrderCreated:
		p, err := kafkax.UnwrapPayload[orders.OrderCreatedPayload](env.Payload)
		if err != nil {
			return err
		}
		if err := s.Cache.Set(ctx, p.OrderID, redisx.StatusEntry{
			Status: string(orders.StatusPending), UserID: p.UserID,
		}); err != nil {
			return err
		}
		s.checkLowStock(ctx, p.Items)
		return nil

	case orders.EventOrderStatusChanged:
		p, err := kafkax.UnwrapPayload[orders.OrderStatusChangedPayload](env.Payload)
		if err != nil {
			return err
		}
		return s.Cache.Set(ctx, p.OrderID, redisx.StatusEntry{
			Status: p.Status, UserID: p.UserID,
		})
	}
	return nil
}

func (s *Service) checkLowStock(ctx context.Context, items []orders.ItemQty) {
	for _, it := range items {
		p, err := s.Products.Get(ctx, it.ProductID)
		if err != nil {
			log.Printf("low-stock check for %s: %v", it.ProductID, err)
			continue
		}
		if p.Stock <= s.LowStockThreshold {
			log.Printf("low stock: product=%s name=%q remaining=%d", p.ID, p.Name, p.Stock)
		}
	}
}
