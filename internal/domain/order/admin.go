// internal/domain/order/admin.go
package order

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-backend/internal/pkg/ident"
	"github.com/your-org/storefront-backend/internal/store"
)

// ListAll returns every order, newest first, with items attached
func (s *Service) ListAll(ctx context.Context) ([]WithItems, error) {
	orders, err := s.orders.Select(ctx, store.All().Order("created_at", true))
	if err != nil {
		return []WithItems{}, fmt.Errorf("failed to retrieve orders: %w", err)
	}
	return s.attachItems(ctx, orders), nil
}

// UpdateStatus sets the status of an order. Any non-empty status is accepted.
func (s *Service) UpdateStatus(ctx context.Context, orderID string, status Status) (*Order, error) {
	status = Status(strings.TrimSpace(string(status)))
	if status == "" {
		return nil, ErrInvalidStatus
	}
	if !ident.IsCanonical(orderID) {
		return nil, ErrOrderNotFound
	}

	updated, err := s.orders.Update(ctx, orderID, store.Patch{"status": string(status)})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"order_id": orderID,
		"status":   status,
	}).Info("Order status updated")

	return &updated, nil
}
