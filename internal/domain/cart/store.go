// internal/domain/cart/store.go
package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-backend/internal/domain/product"
	"github.com/your-org/storefront-backend/internal/pkg/ident"
)

// ErrNoSnapshot is returned by a Persister when nothing is stored under a key
var ErrNoSnapshot = errors.New("no cart snapshot")

// Persister reads and writes serialized cart snapshots
type Persister interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, data []byte) error
}

// Store holds the lines of one session's cart. Every mutation rewrites the
// persisted snapshot; the in-memory change stands even if that write fails.
type Store struct {
	mu        sync.Mutex
	lines     []Line
	key       string
	persister Persister
	log       logrus.FieldLogger
	now       func() time.Time
}

// NewStore creates a store for key and restores its persisted snapshot.
// A missing or unreadable snapshot yields an empty cart.
func NewStore(ctx context.Context, persister Persister, key string, log logrus.FieldLogger) *Store {
	s := &Store{
		key:       key,
		persister: persister,
		log:       log.WithField("cart_key", key),
		now:       func() time.Time { return time.Now().UTC() },
	}
	s.load(ctx)
	return s
}

func (s *Store) load(ctx context.Context) {
	data, err := s.persister.Load(ctx, s.key)
	if errors.Is(err, ErrNoSnapshot) {
		return
	}
	if err != nil {
		s.log.WithError(err).Error("Failed to load cart, starting empty")
		return
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		s.log.WithError(err).Error("Failed to parse cart snapshot, starting empty")
		return
	}
	s.lines = s.restore(snap.Items)
}

// restore keeps the lines AddToCart would have accepted and merges lines
// that share a key. Snapshots written without a size are small.
func (s *Store) restore(items []Line) []Line {
	var lines []Line
	index := make(map[Key]int, len(items))

	for _, line := range items {
		if line.Size == "" {
			line.Size = SizeSmall
		}
		if err := line.Validate(); err != nil {
			s.log.WithError(err).WithFields(logrus.Fields{
				"product_id": line.Product.ID,
				"quantity":   line.Quantity,
				"size":       line.Size,
			}).Warn("Dropping invalid line from cart snapshot")
			continue
		}
		if i, ok := index[line.Key()]; ok {
			lines[i].Quantity += line.Quantity
			continue
		}
		index[line.Key()] = len(lines)
		lines = append(lines, line)
	}
	return lines
}

// AddToCart adds quantity of product in size, merging with an existing line
func (s *Store) AddToCart(ctx context.Context, p product.Product, quantity int, size CupSize) error {
	if !ident.IsCanonical(p.ID) {
		s.log.WithField("product_id", p.ID).Warn("Refusing to add product with non-canonical id")
		return nil
	}
	if quantity < 1 {
		s.log.WithFields(logrus.Fields{"product_id": p.ID, "quantity": quantity}).Warn("Refusing to add non-positive quantity")
		return nil
	}
	if !size.Valid() {
		s.log.WithFields(logrus.Fields{"product_id": p.ID, "size": size}).Warn("Refusing to add unknown cup size")
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := Key{ProductID: p.ID, Size: size}
	if i := s.indexOf(key); i >= 0 {
		s.lines[i].Quantity += quantity
	} else {
		s.lines = append(s.lines, Line{
			Product:  p,
			Quantity: quantity,
			Size:     size,
			AddedAt:  s.now(),
		})
	}
	return s.persist(ctx)
}

// RemoveFromCart removes the line for productID and size, if present
func (s *Store) RemoveFromCart(ctx context.Context, productID string, size CupSize) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(Key{ProductID: productID, Size: size})
	if i < 0 {
		return nil
	}
	s.lines = append(s.lines[:i], s.lines[i+1:]...)
	return s.persist(ctx)
}

// UpdateQuantity sets the quantity of a line. Zero or less removes it.
func (s *Store) UpdateQuantity(ctx context.Context, productID string, quantity int, size CupSize) error {
	if quantity <= 0 {
		return s.RemoveFromCart(ctx, productID, size)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(Key{ProductID: productID, Size: size})
	if i < 0 {
		return nil
	}
	s.lines[i].Quantity = quantity
	return s.persist(ctx)
}

// ClearCart empties the cart
func (s *Store) ClearCart(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lines = nil
	return s.persist(ctx)
}

// Lines returns a copy of the cart lines in insertion order
func (s *Store) Lines() []Line {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]Line{}, s.lines...)
}

// IsEmpty reports whether the cart has no lines
func (s *Store) IsEmpty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.lines) == 0
}

// Total sums unit price times quantity, without size modifiers
func (s *Store) Total() decimal.Decimal {
	return s.Totals().SubTotal
}

// ChargedTotal sums the size-adjusted unit price times quantity
func (s *Store) ChargedTotal() decimal.Decimal {
	return s.Totals().Total
}

// ItemCount sums the quantities of every line
func (s *Store) ItemCount() int {
	return s.Totals().ItemCount
}

// Totals calculates every cart total in one pass
func (s *Store) Totals() Totals {
	s.mu.Lock()
	defer s.mu.Unlock()

	totals := Totals{
		LineCount:     len(s.lines),
		SubTotal:      decimal.Zero,
		SizeSurcharge: decimal.Zero,
	}
	for _, line := range s.lines {
		qty := decimal.NewFromInt(int64(line.Quantity))
		totals.ItemCount += line.Quantity
		totals.SubTotal = totals.SubTotal.Add(line.UnitPrice().Mul(qty))
		totals.SizeSurcharge = totals.SizeSurcharge.Add(line.Size.Modifier().Mul(qty))
	}
	totals.Total = totals.SubTotal.Add(totals.SizeSurcharge)
	return totals
}

func (s *Store) indexOf(key Key) int {
	for i := range s.lines {
		if s.lines[i].Key() == key {
			return i
		}
	}
	return -1
}

// persist must be called with s.mu held
func (s *Store) persist(ctx context.Context) error {
	data, err := json.Marshal(Snapshot{
		Items:     s.lines,
		UpdatedAt: s.now(),
	})
	if err != nil {
		return fmt.Errorf("failed to encode cart: %w", err)
	}

	if err := s.persister.Save(ctx, s.key, data); err != nil {
		s.log.WithError(err).Error("Failed to save cart")
		return fmt.Errorf("failed to save cart: %w", err)
	}
	return nil
}
