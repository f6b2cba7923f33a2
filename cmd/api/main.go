package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"

	"github.com/biterush/campusgrub/internal/auth"
	"github.com/biterush/campusgrub/internal/cart"
	"github.com/biterush/campusgrub/internal/catalog"
	"github.com/biterush/campusgrub/internal/checkout"
	"github.com/biterush/campusgrub/internal/config"
	"github.com/biterush/campusgrub/internal/httpx"
	kafkax "github.com/biterush/campusgrub/internal/kafka"
	"github.com/biterush/campusgrub/internal/mongodb"
	"github.com/biterush/campusgrub/internal/orders"
	"github.com/biterush/campusgrub/internal/payment"
	"github.com/biterush/campusgrub/internal/postgres"
	"github.com/biterush/campusgrub/internal/redisx"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Postgres (order ledger)
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer db.Close()

	// Mongo (users + catalog)
	mc, err := mongodb.Connect(ctx, cfg.MongoURI)
	if err != nil {
		log.Fatalf("mongo connect: %v", err)
	}
	defer func() { _ = mc.Disconnect(context.Background()) }()
	mdb := mc.Database(cfg.MongoDB)

	// Redis (sessions, carts, snapshots)
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Kafka producers
	placed := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicOrderPlaced, 1024)
	placed.Start(ctx)
	cancelled := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicOrderCancelled, 1024)
	cancelled.Start(ctx)

	// Auth
	userRepo, err := auth.NewMongoRepo(mdb)
	if err != nil {
		log.Fatalf("users repo: %v", err)
	}
	authSvc := &auth.Service{
		Repo:     userRepo,
		Sessions: &auth.SessionStore{RDB: rdb},
	}
	if err := authSvc.Seed(ctx); err != nil {
		log.Printf("seed users: %v", err)
	}

	// Catalog
	catalogRepo := catalog.NewMongoRepo(mdb)
	if err := catalog.Seed(ctx, catalogRepo); err != nil {
		log.Printf("seed catalog: %v", err)
	}
	catalogSvc := &catalog.Service{Repo: catalogRepo}

	// Orders
	orderRepo := &orders.Repo{DB: db}

	// Per-session runtimes
	runtimes := httpx.NewRuntimes()
	runtimes.Persister = &cart.RedisPersister{RDB: rdb}
	runtimes.QR = payment.NewSimulator()
	runtimes.Clock = checkout.RealClock()
	runtimes.Orders = orderRepo
	runtimes.Producer = placed
	runtimes.Service = cfg.ServiceName

	// Router
	router := httpx.NewRouter()
	(&httpx.AuthHandler{Auth: authSvc, Runtimes: runtimes}).Register(router)
	(&httpx.CatalogHandler{Catalog: catalogSvc}).Register(router)

	admin := &httpx.AdminHandler{
		Orders:   orderRepo,
		Catalog:  catalogSvc,
		Producer: cancelled,
		Service:  cfg.ServiceName,
	}
	router.Group(func(r chi.Router) {
		r.Use(httpx.RequireSession(authSvc.Sessions))
		(&httpx.CartHandler{Catalog: catalogSvc, Runtimes: runtimes}).Register(r)
		(&httpx.CheckoutHandler{Runtimes: runtimes, Redis: rdb}).Register(r)
		(&httpx.OrdersHandler{Repo: orderRepo}).Register(r)

		r.Group(func(r chi.Router) {
			r.Use(httpx.RequireRole(auth.RoleVendor))
			admin.RegisterVendor(r)
		})
		r.Group(func(r chi.Router) {
			r.Use(httpx.RequireRole(auth.RoleAdmin, auth.RoleSuperAdmin))
			admin.RegisterAdmin(r)
		})
	})

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
	placed.Close()
	cancelled.Close()
	placed.WaitClosed()
	cancelled.WaitClosed()
}
