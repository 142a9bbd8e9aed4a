// internal/infrastructure/database/redis/connection.go
package redis

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/your-org/storefront-backend/internal/config"
)

// Client wraps the Redis client
type Client struct {
	Redis *redis.Client
}

// NewConnection creates a new Redis connection
func NewConnection(cfg *config.Config) (*Client, error) {
	rdb := redis.NewClient(options(cfg))

	// Test the connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	log.Println("✅ Redis connection established successfully")

	return &Client{
		Redis: rdb,
	}, nil
}

func options(cfg *config.Config) *redis.Options {
	return &redis.Options{
		Addr:         cfg.GetRedisAddr(),
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,

		// Connection timeouts
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,

		// Pool timeouts
		PoolTimeout: 4 * time.Second,
	}
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.Redis.Close()
}

// GetClient returns the Redis client instance
func (c *Client) GetClient() *redis.Client {
	return c.Redis
}

// Health checks the Redis connection health
func (c *Client) Health(ctx context.Context) error {
	return c.Redis.Ping(ctx).Err()
}
