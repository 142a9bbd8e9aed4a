// internal/infrastructure/database/redis/cart_persister.go
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/your-org/storefront-backend/internal/domain/cart"
)

// CartPersister stores cart snapshots as JSON strings with a sliding TTL
type CartPersister struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCartPersister creates a cart persister backed by client
func NewCartPersister(client *redis.Client, ttl time.Duration) *CartPersister {
	return &CartPersister{client: client, ttl: ttl}
}

// Load returns the snapshot under key, or cart.ErrNoSnapshot
func (p *CartPersister) Load(ctx context.Context, key string) ([]byte, error) {
	data, err := p.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, cart.ErrNoSnapshot
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load cart %s: %w", key, err)
	}
	return data, nil
}

// Save overwrites the snapshot under key and refreshes its expiry
func (p *CartPersister) Save(ctx context.Context, key string, data []byte) error {
	if err := p.client.Set(ctx, key, data, p.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save cart %s: %w", key, err)
	}
	return nil
}
