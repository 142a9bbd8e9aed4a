// internal/domain/order/service.go
package order

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-backend/internal/store"
)

var (
	ErrEmptyCart      = errors.New("cart is empty")
	ErrInvalidUser    = errors.New("invalid user id")
	ErrInvalidCart    = errors.New("cart has lines that cannot be ordered")
	ErrOrderNotFound  = errors.New("order not found")
	ErrInvalidStatus  = errors.New("order status cannot be empty")
	errNoItemsWritten = errors.New("no items written")
)

// PartialOrderError reports an order row that was written while its items
// were not. The order stays in the store without items.
type PartialOrderError struct {
	OrderID string
	Err     error
}

func (e *PartialOrderError) Error() string {
	return fmt.Sprintf("order %s was created but its items could not be saved: %v", e.OrderID, e.Err)
}

func (e *PartialOrderError) Unwrap() error {
	return e.Err
}

// Service handles order submission, history and administration
type Service struct {
	orders   store.Table[Order]
	items    store.Table[OrderItem]
	log      logrus.FieldLogger
	validate *validator.Validate
}

// NewService creates a new order service
func NewService(orders store.Table[Order], items store.Table[OrderItem], log logrus.FieldLogger) *Service {
	return &Service{
		orders:   orders,
		items:    items,
		log:      log.WithField("component", "orders"),
		validate: newValidator(),
	}
}
