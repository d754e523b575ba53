package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/corregomitas/storefront/internal/catalog"
	"github.com/corregomitas/storefront/internal/config"
	kafkax "github.com/corregomitas/storefront/internal/kafka"
	"github.com/corregomitas/storefront/internal/orders"
	"github.com/corregomitas/storefront/internal/postgres"
	"github.com/corregomitas/storefront/internal/redisx"
	"github.com/corregomitas/storefront/internal/worker"
)

func atoiOr(s string, def int) int {
	if s == "" {
		return def
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		log.Printf("invalid integer %q, using %d", s, def)
		return def
	}
	return i
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer db.Close()

	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	svc := &worker.Service{
		Cache:             &redisx.StatusCache{RDB: rdb},
		Dedup:             &redisx.Dedup{RDB: rdb, Service: cfg.ServiceName + "-worker"},
		Products:          &catalog.Repo{DB: db},
		LowStockThreshold: atoiOr(os.Getenv("LOW_STOCK_THRESHOLD"), 3),
	}

	group := getenv("WORKER_GROUP", "storefront-worker")
	workers := atoiOr(os.Getenv("WORKER_CONCURRENCY"), 8)

	for _, topic := range []string{orders.TopicOrderCreated, orders.TopicOrderStatusChanged} {
		cons := kafkax.NewConsumer(cfg.KafkaBrokers, group, topic, workers)
		go func(topic string) {
			log.Printf("consumer started: group=%s topic=%s workers=%d", group, topic, workers)
			if err := cons.Start(ctx, svc.HandleEvent); err != nil {
				log.Printf("consumer %s exit: %v", topic, err)
				cancel()
			}
		}(topic)
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sig:
		log.Println("shutting down consumers...")
		cancel()
	case <-ctx.Done():
	}
}
