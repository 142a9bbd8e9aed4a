// cmd/api/main.go
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/cart"
	"github.com/your-org/storefront-backend/internal/domain/order"
	"github.com/your-org/storefront-backend/internal/domain/product"
	"github.com/your-org/storefront-backend/internal/domain/user"
	"github.com/your-org/storefront-backend/internal/infrastructure/database/postgres"
	"github.com/your-org/storefront-backend/internal/infrastructure/database/redis"
	"github.com/your-org/storefront-backend/internal/interfaces/http"
	"github.com/your-org/storefront-backend/internal/interfaces/http/routes"
	"github.com/your-org/storefront-backend/internal/pkg/logger"
	"github.com/your-org/storefront-backend/internal/pkg/pdf"
	"github.com/your-org/storefront-backend/internal/store"
)

type tables struct {
	products store.Table[product.Product]
	orders   store.Table[order.Order]
	items    store.Table[order.OrderItem]
	users    store.Table[user.User]
}

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLog := logger.New(cfg)
	log.Printf("🚀 Starting %s v%s in %s mode", cfg.App.Name, cfg.App.Version, cfg.App.Environment)

	checks := make(map[string]http.HealthCheck)

	var rows tables
	switch cfg.Store.Driver {
	case "memory":
		rows = memoryTables(cfg)
		appLog.Warn("Using in-memory store; products and orders are lost on restart")
	default:
		db, err := postgres.NewConnection(cfg)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()

		migrate(cfg, db)
		checks["database"] = db.Health
		rows = tables{
			products: postgres.NewTable[product.Product](db.GetDB()),
			orders:   postgres.NewTable[order.Order](db.GetDB()),
			items:    postgres.NewTable[order.OrderItem](db.GetDB()),
			users:    postgres.NewTable[user.User](db.GetDB()),
		}
	}

	// Carts live in Redis. Without it the memory driver keeps them in process.
	var persister cart.Persister
	var limiter *goredis.Client
	redisClient, err := redis.NewConnection(cfg)
	switch {
	case err == nil:
		defer redisClient.Close()
		checks["redis"] = redisClient.Health
		limiter = redisClient.GetClient()
		persister = redis.NewCartPersister(limiter, cfg.Cart.TTL)
	case cfg.Store.Driver == "memory":
		appLog.WithError(err).Warn("Redis unavailable, keeping carts in memory")
		persister = cart.NewMemoryPersister()
	default:
		log.Fatalf("Failed to connect to Redis: %v", err)
	}

	services := &routes.Services{
		Products: product.NewService(rows.products, appLog),
		Carts:    cart.NewService(persister, cfg, appLog),
		Orders:   order.NewService(rows.orders, rows.items, appLog),
		Users:    user.NewService(rows.users, cfg, appLog),
		Receipts: pdf.NewService(cfg),
	}

	log.Println("✅ All systems operational!")

	server := http.NewServer(cfg, services, limiter, checks, appLog)

	// Start server in a goroutine
	go func() {
		if err := server.Start(); err != nil {
			log.Fatalf("Failed to start HTTP server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("👋 Shutting down gracefully...")

	// Give server 30 seconds to shutdown gracefully
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Stop(ctx); err != nil {
		appLog.WithError(err).Error("Failed to shutdown HTTP server gracefully")
	}

	log.Println("✅ Server shutdown completed")
}

func migrate(cfg *config.Config, db *postgres.DB) {
	migration := postgres.NewMigration(db.GetDB())

	if err := migration.RunAutoMigrations(); err != nil {
		log.Fatalf("Database migration failed: %v", err)
	}

	if err := migration.CreateIndexes(); err != nil {
		log.Printf("Warning: Index creation failed: %v", err)
	}

	if cfg.Database.SeedProducts {
		if err := migration.SeedProducts(); err != nil {
			log.Printf("Warning: Product seeding failed: %v", err)
		}
	}
}

func memoryTables(cfg *config.Config) tables {
	products := store.NewMemoryTable[product.Product]()
	if cfg.Database.SeedProducts {
		products.Seed(product.StarterCatalogue(time.Now().UTC())...)
	}
	return tables{
		products: products,
		orders:   store.NewMemoryTable[order.Order](),
		items:    store.NewMemoryTable[order.OrderItem](),
		users:    store.NewMemoryTable[user.User]().Unique("email"),
	}
}
