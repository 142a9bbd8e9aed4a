// internal/domain/order/entity.go
package order

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"github.com/your-org/storefront-backend/internal/pkg/ident"
)

// Status represents the order status. Values outside the known set are
// kept as-is.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
)

// PaymentMethod is the payment option chosen at checkout
type PaymentMethod string

const (
	PaymentCreditCard PaymentMethod = "credit_card"
	PaymentPayPal     PaymentMethod = "paypal"
	PaymentGCash      PaymentMethod = "gcash"
)

// Valid reports whether m is a supported payment method
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCreditCard, PaymentPayPal, PaymentGCash:
		return true
	}
	return false
}

// Order represents the order entity
type Order struct {
	ID            string          `gorm:"type:uuid;primaryKey" json:"id"`
	UserID        string          `gorm:"type:uuid;not null;index" json:"user_id"`
	Status        Status          `gorm:"not null;size:50;index" json:"status"`
	Total         decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"total"` // Fixed at submission
	PaymentMethod PaymentMethod   `gorm:"not null;size:20" json:"payment_method"`

	// Shipping contact
	ShippingName       string `gorm:"size:200" json:"shipping_name"`
	ShippingEmail      string `gorm:"size:255" json:"shipping_email"`
	ShippingAddress    string `gorm:"size:255" json:"shipping_address"`
	ShippingCity       string `gorm:"size:100" json:"shipping_city"`
	ShippingState      string `gorm:"size:100" json:"shipping_state"`
	ShippingPostalCode string `gorm:"size:20" json:"shipping_postal_code"`
	ShippingCountry    string `gorm:"size:100" json:"shipping_country"`
	ShippingPhone      string `gorm:"size:50" json:"shipping_phone"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName overrides the table name
func (Order) TableName() string { return "orders" }

// PrimaryKey returns the order identifier
func (o Order) PrimaryKey() string { return o.ID }

// Field exposes columns for filtering and ordering
func (o Order) Field(column string) (any, bool) {
	switch column {
	case "id":
		return o.ID, true
	case "user_id":
		return o.UserID, true
	case "status":
		return string(o.Status), true
	case "total":
		return o.Total, true
	case "payment_method":
		return string(o.PaymentMethod), true
	case "created_at":
		return o.CreatedAt, true
	case "updated_at":
		return o.UpdatedAt, true
	}
	return nil, false
}

// Validate checks a row read from the store
func (o Order) Validate() error {
	if !ident.IsCanonical(o.ID) {
		return errors.New("id is not canonical")
	}
	if !ident.IsCanonical(o.UserID) {
		return errors.New("user_id is not canonical")
	}
	if o.Status == "" {
		return errors.New("status is empty")
	}
	if o.Total.IsNegative() {
		return errors.New("total is negative")
	}
	return nil
}

// PrepareInsert assigns an id and timestamps to a new row
func (o *Order) PrepareInsert(now time.Time) {
	if o.ID == "" {
		o.ID = ident.New()
	}
	if o.CreatedAt.IsZero() {
		o.CreatedAt = now
	}
	o.UpdatedAt = now
}

// PrepareUpdate stamps the modification time
func (o *Order) PrepareUpdate(now time.Time) {
	o.UpdatedAt = now
}

// OrderItem represents one purchased line of an order
type OrderItem struct {
	ID        string          `gorm:"type:uuid;primaryKey" json:"id"`
	OrderID   string          `gorm:"type:uuid;not null;index" json:"order_id"`
	ProductID string          `gorm:"type:uuid;not null;index" json:"product_id"`
	Quantity  int             `gorm:"not null" json:"quantity"`
	Price     decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"price"` // Charged unit price
	Size      string          `gorm:"size:20" json:"size"`
	CreatedAt time.Time       `json:"created_at"`
}

// TableName overrides the table name
func (OrderItem) TableName() string { return "order_items" }

// PrimaryKey returns the item identifier
func (i OrderItem) PrimaryKey() string { return i.ID }

// Field exposes columns for filtering and ordering
func (i OrderItem) Field(column string) (any, bool) {
	switch column {
	case "id":
		return i.ID, true
	case "order_id":
		return i.OrderID, true
	case "product_id":
		return i.ProductID, true
	case "quantity":
		return i.Quantity, true
	case "price":
		return i.Price, true
	case "size":
		return i.Size, true
	case "created_at":
		return i.CreatedAt, true
	}
	return nil, false
}

// Validate checks a row read from the store
func (i OrderItem) Validate() error {
	if !ident.IsCanonical(i.ID) {
		return errors.New("id is not canonical")
	}
	if !ident.IsCanonical(i.OrderID) {
		return errors.New("order_id is not canonical")
	}
	if !ident.IsCanonical(i.ProductID) {
		return errors.New("product_id is not canonical")
	}
	if i.Quantity < 1 {
		return errors.New("quantity must be at least 1")
	}
	if i.Price.IsNegative() {
		return errors.New("price is negative")
	}
	return nil
}

// PrepareInsert assigns an id and creation time to a new row
func (i *OrderItem) PrepareInsert(now time.Time) {
	if i.ID == "" {
		i.ID = ident.New()
	}
	if i.CreatedAt.IsZero() {
		i.CreatedAt = now
	}
}

// LineTotal is the charged unit price times quantity
func (i OrderItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// WithItems is an order joined with its item rows
type WithItems struct {
	Order
	Items []OrderItem `json:"items"`
}
