// internal/domain/order/pipeline.go
package order

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-backend/internal/domain/cart"
	"github.com/your-org/storefront-backend/internal/pkg/ident"
)

// Cart is the part of a cart store that checkout consumes
type Cart interface {
	Lines() []cart.Line
	ClearCart(ctx context.Context) error
}

// Draft is the checkout form. Card fields are checked for shape only and
// never stored.
type Draft struct {
	FirstName     string        `json:"first_name" validate:"required"`
	LastName      string        `json:"last_name" validate:"required"`
	Email         string        `json:"email" validate:"required,email"`
	Address       string        `json:"address" validate:"required"`
	City          string        `json:"city" validate:"required"`
	State         string        `json:"state" validate:"required"`
	Zip           string        `json:"zip" validate:"required"`
	Country       string        `json:"country" validate:"required"`
	Phone         string        `json:"phone" validate:"required"`
	PaymentMethod PaymentMethod `json:"payment_method" validate:"required,oneof=credit_card paypal gcash"`
	CardNumber    string        `json:"card_number" validate:"required_if=PaymentMethod credit_card"`
	CardExpiry    string        `json:"card_expiry" validate:"required_if=PaymentMethod credit_card"`
	CardCVC       string        `json:"card_cvc" validate:"required_if=PaymentMethod credit_card"`
}

// ValidationError maps draft fields to what is wrong with them
type ValidationError struct {
	Fields map[string]string `json:"fields"`
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return "invalid checkout details: " + strings.Join(names, ", ")
}

var (
	cardExpiryPattern = regexp.MustCompile(`^(0[1-9]|1[0-2])/\d{2}$`)
	cvcPattern        = regexp.MustCompile(`^\d{3,4}$`)
)

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ValidateDraft checks the checkout form without touching the store
func (s *Service) ValidateDraft(d *Draft) error {
	fields := make(map[string]string)

	if err := s.validate.Struct(d); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return fmt.Errorf("failed to validate checkout details: %w", err)
		}
		for _, fe := range verrs {
			fields[fe.Field()] = fieldMessage(fe)
		}
	}

	if d.PaymentMethod == PaymentCreditCard {
		if _, bad := fields["card_number"]; !bad && !validCardNumber(d.CardNumber) {
			fields["card_number"] = "must be 12 to 19 digits"
		}
		if _, bad := fields["card_expiry"]; !bad && !cardExpiryPattern.MatchString(strings.TrimSpace(d.CardExpiry)) {
			fields["card_expiry"] = "must look like MM/YY"
		}
		if _, bad := fields["card_cvc"]; !bad && !cvcPattern.MatchString(strings.TrimSpace(d.CardCVC)) {
			fields["card_cvc"] = "must be 3 or 4 digits"
		}
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "required_if":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	}
	return "is invalid"
}

func validCardNumber(number string) bool {
	digits := 0
	for _, r := range number {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case r == ' ' || r == '-':
		default:
			return false
		}
	}
	return digits >= 12 && digits <= 19
}

// Submit turns the cart into an order row plus one item row per line.
//
// The two inserts are not atomic. When the items insert fails the order
// row is left in place and a *PartialOrderError names it; the cart is only
// cleared after both writes succeed. Once the order row exists the
// remaining steps ignore cancellation of ctx.
func (s *Service) Submit(ctx context.Context, userID string, draft *Draft, c Cart) (*WithItems, error) {
	if !ident.IsCanonical(userID) {
		return nil, ErrInvalidUser
	}
	if err := s.ValidateDraft(draft); err != nil {
		return nil, err
	}

	lines := c.Lines()
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}
	for _, line := range lines {
		if err := line.Validate(); err != nil {
			return nil, fmt.Errorf("%w: product %q: %v", ErrInvalidCart, line.Product.ID, err)
		}
	}

	total := decimal.Zero
	for _, line := range lines {
		total = total.Add(line.ChargedUnitPrice().Mul(decimal.NewFromInt(int64(line.Quantity))))
	}

	created, err := s.orders.Insert(ctx, Order{
		UserID:             userID,
		Status:             StatusPending,
		Total:              total,
		PaymentMethod:      draft.PaymentMethod,
		ShippingName:       strings.TrimSpace(draft.FirstName + " " + draft.LastName),
		ShippingEmail:      strings.ToLower(strings.TrimSpace(draft.Email)),
		ShippingAddress:    draft.Address,
		ShippingCity:       draft.City,
		ShippingState:      draft.State,
		ShippingPostalCode: draft.Zip,
		ShippingCountry:    draft.Country,
		ShippingPhone:      draft.Phone,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}
	placed := created[0]

	ctx = context.WithoutCancel(ctx)
	log := s.log.WithFields(logrus.Fields{"order_id": placed.ID, "user_id": userID})

	rows := make([]OrderItem, len(lines))
	for i, line := range lines {
		rows[i] = OrderItem{
			OrderID:   placed.ID,
			ProductID: line.Product.ID,
			Quantity:  line.Quantity,
			Price:     line.ChargedUnitPrice(),
			Size:      string(line.Size),
		}
	}

	items, err := s.items.Insert(ctx, rows...)
	if err == nil && len(items) != len(rows) {
		err = errNoItemsWritten
	}
	if err != nil {
		log.WithError(err).Error("Order created without items")
		return nil, &PartialOrderError{OrderID: placed.ID, Err: err}
	}

	if err := c.ClearCart(ctx); err != nil {
		log.WithError(err).Warn("Order placed but cart could not be cleared")
	}

	log.WithFields(logrus.Fields{
		"total": placed.Total.StringFixed(2),
		"items": len(items),
	}).Info("Order placed")

	return &WithItems{Order: placed, Items: items}, nil
}
