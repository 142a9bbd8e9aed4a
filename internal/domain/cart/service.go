// internal/domain/cart/service.go
package cart

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-backend/internal/config"
)

// Service opens session carts against the configured persister
type Service struct {
	persister Persister
	config    *config.Config
	log       logrus.FieldLogger
}

// NewService creates a new cart service
func NewService(persister Persister, cfg *config.Config, log logrus.FieldLogger) *Service {
	return &Service{
		persister: persister,
		config:    cfg,
		log:       log.WithField("component", "cart"),
	}
}

// Open loads the cart belonging to sessionID
func (s *Service) Open(ctx context.Context, sessionID string) *Store {
	return NewStore(ctx, s.persister, s.config.CartKey(sessionID), s.log)
}

// MemoryPersister keeps snapshots in process memory
type MemoryPersister struct {
	mu      sync.Mutex
	data    map[string][]byte
	saveErr error
}

// NewMemoryPersister creates an empty in-memory persister
func NewMemoryPersister() *MemoryPersister {
	return &MemoryPersister{data: make(map[string][]byte)}
}

// Load returns the snapshot stored under key
func (m *MemoryPersister) Load(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, ok := m.data[key]
	if !ok {
		return nil, ErrNoSnapshot
	}
	return append([]byte(nil), data...), nil
}

// Save stores data under key
func (m *MemoryPersister) Save(ctx context.Context, key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.saveErr != nil {
		return m.saveErr
	}
	m.data[key] = append([]byte(nil), data...)
	return nil
}

// Put stores raw bytes under key, bypassing any injected failure
func (m *MemoryPersister) Put(key string, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = append([]byte(nil), data...)
}

// FailSaves makes every later Save return err. A nil err clears it.
func (m *MemoryPersister) FailSaves(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saveErr = err
}
