// internal/domain/cart/entity.go
package cart

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"github.com/your-org/storefront-backend/internal/domain/product"
	"github.com/your-org/storefront-backend/internal/pkg/ident"
)

// CupSize is the drink size of a cart line. It is part of the line's identity.
type CupSize string

const (
	SizeSmall  CupSize = "small"
	SizeMedium CupSize = "medium"
	SizeLarge  CupSize = "large"
)

var sizeModifiers = map[CupSize]decimal.Decimal{
	SizeSmall:  decimal.Zero,
	SizeMedium: decimal.NewFromInt(20),
	SizeLarge:  decimal.NewFromInt(40),
}

// Sizes lists every cup size in menu order
func Sizes() []CupSize {
	return []CupSize{SizeSmall, SizeMedium, SizeLarge}
}

// Valid reports whether s is a known size
func (s CupSize) Valid() bool {
	_, ok := sizeModifiers[s]
	return ok
}

// Modifier returns the amount added to the unit price for this size
func (s CupSize) Modifier() decimal.Decimal {
	return sizeModifiers[s]
}

// ParseSize converts a request value to a CupSize. Empty means small.
func ParseSize(v string) (CupSize, bool) {
	if v == "" {
		return SizeSmall, true
	}
	s := CupSize(v)
	return s, s.Valid()
}

// Line is one (product, size) combination with a quantity
type Line struct {
	Product  product.Product `json:"product"` // Snapshot taken when the line was added
	Quantity int             `json:"quantity"`
	Size     CupSize         `json:"size"`
	AddedAt  time.Time       `json:"added_at"`
}

// Key identifies a line within a cart
type Key struct {
	ProductID string
	Size      CupSize
}

// Key returns the line's uniqueness key
func (l Line) Key() Key {
	return Key{ProductID: l.Product.ID, Size: l.Size}
}

// Validate reports the first reason the line could not have been added to a cart
func (l Line) Validate() error {
	switch {
	case !ident.IsCanonical(l.Product.ID):
		return errors.New("product id is not canonical")
	case l.Quantity < 1:
		return errors.New("quantity must be at least 1")
	case !l.Size.Valid():
		return errors.New("unknown cup size")
	case l.Product.Price.IsNegative():
		return errors.New("price is negative")
	}
	return nil
}

// UnitPrice is the product price held in the cart, without the size modifier
func (l Line) UnitPrice() decimal.Decimal {
	return l.Product.Price
}

// ChargedUnitPrice is the unit price plus the size modifier
func (l Line) ChargedUnitPrice() decimal.Decimal {
	return l.Product.Price.Add(l.Size.Modifier())
}

// Snapshot is the persisted form of a cart
type Snapshot struct {
	Items     []Line    `json:"items"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Totals represents calculated cart totals
type Totals struct {
	LineCount     int             `json:"line_count"` // Number of distinct lines
	ItemCount     int             `json:"item_count"` // Sum of all quantities
	SubTotal      decimal.Decimal `json:"sub_total"`  // Unit prices only
	SizeSurcharge decimal.Decimal `json:"size_surcharge"`
	Total         decimal.Decimal `json:"total"` // Charged at checkout
}
