// internal/domain/order/history.go
package order

import (
	"context"
	"errors"
	"fmt"

	"github.com/your-org/storefront-backend/internal/pkg/ident"
	"github.com/your-org/storefront-backend/internal/store"
)

// History returns the user's orders, newest first, each with its items.
// An order whose items are missing comes back with an empty item list.
func (s *Service) History(ctx context.Context, userID string) ([]WithItems, error) {
	if !ident.IsCanonical(userID) {
		return []WithItems{}, ErrInvalidUser
	}

	orders, err := s.orders.Select(ctx, store.Where(store.Eq("user_id", userID)).Order("created_at", true))
	if err != nil {
		return []WithItems{}, fmt.Errorf("failed to retrieve orders: %w", err)
	}
	return s.attachItems(ctx, orders), nil
}

// Get returns one order with its items. Non-admin callers only see their own orders.
func (s *Service) Get(ctx context.Context, userID, orderID string, isAdmin bool) (*WithItems, error) {
	if !ident.IsCanonical(orderID) {
		return nil, ErrOrderNotFound
	}

	q := store.ByID(orderID)
	if !isAdmin {
		q = store.Where(store.Eq("id", orderID), store.Eq("user_id", userID))
	}

	o, err := s.orders.SelectOne(ctx, q)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to retrieve order: %w", err)
	}

	joined := s.attachItems(ctx, []Order{o})
	return &joined[0], nil
}

// attachItems fetches the items of every order in one query and joins them
// in memory. An items fetch failure degrades to empty item lists.
func (s *Service) attachItems(ctx context.Context, orders []Order) []WithItems {
	out := make([]WithItems, len(orders))
	if len(orders) == 0 {
		return out
	}

	ids := make([]string, len(orders))
	byOrder := make(map[string]int, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
		byOrder[o.ID] = i
		out[i] = WithItems{Order: o, Items: []OrderItem{}}
	}

	items, err := s.items.Select(ctx, store.Where(store.In("order_id", ids...)).Order("created_at", false))
	if err != nil {
		s.log.WithError(err).WithField("orders", len(orders)).Warn("Failed to fetch order items, returning orders without items")
		return out
	}

	for _, item := range items {
		if i, ok := byOrder[item.OrderID]; ok {
			out[i].Items = append(out[i].Items, item)
		}
	}
	return out
}
