package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/corregomitas/storefront/internal/auth"
	"github.com/corregomitas/storefront/internal/catalog"
	"github.com/corregomitas/storefront/internal/config"
	"github.com/corregomitas/storefront/internal/httpx"
	kafkax "github.com/corregomitas/storefront/internal/kafka"
	"github.com/corregomitas/storefront/internal/orders"
	"github.com/corregomitas/storefront/internal/postgres"
	"github.com/corregomitas/storefront/internal/redisx"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer db.Close()

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Kafka producers
	pCreated := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicOrderCreated, 1024)
	pCreated.Start(ctx)
	pChanged := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicOrderStatusChanged, 1024)
	pChanged.Start(ctx)

	// Stores & services
	products := &catalog.Repo{DB: db}
	orderSvc := &orders.Service{Products: products, Orders: &orders.Repo{DB: db}}
	tokens := &auth.RedisTokens{RDB: rdb}
	authSvc := &auth.Service{Users: &auth.Repo{DB: db}, Tokens: tokens}

	// Router & handlers
	router := httpx.NewRouter(cfg.AllowedOrigins)
	authn := auth.Authenticate(tokens)
	admin := auth.RequireAdmin

	(&httpx.AuthHandler{Auth: authSvc}).Register(router, authn)
	(&httpx.ProductsHandler{Catalog: products}).Register(router, authn, admin)
	(&httpx.OrdersHandler{
		Svc:     orderSvc,
		Cache:   &redisx.StatusCache{RDB: rdb},
		Created: pCreated,
		Changed: pChanged,
		Service: cfg.ServiceName,
	}).Register(router, authn, admin)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	go func() {
		log.Printf("HTTP listening at %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Println("shutting down...")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	pCreated.Close()
	pChanged.Close()
	cancel()
	pCreated.WaitClosed()
	pChanged.WaitClosed()
}
