// internal/domain/product/entity.go
package product

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"github.com/your-org/storefront-backend/internal/pkg/ident"
)

// Product represents a catalog product
type Product struct {
	ID          string          `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string          `gorm:"not null;size:255" json:"name"`
	Category    string          `gorm:"not null;size:100;index" json:"category"` // Matched case-sensitively
	Price       decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"price"`
	Description *string         `gorm:"type:text" json:"description"`
	ImageURL    *string         `gorm:"size:500" json:"image_url"`
	Featured    bool            `gorm:"not null" json:"featured"`
	InStock     bool            `gorm:"not null" json:"in_stock"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// TableName overrides the table name
func (Product) TableName() string { return "products" }

// PrimaryKey returns the product identifier
func (p Product) PrimaryKey() string { return p.ID }

// Field exposes columns for filtering and ordering
func (p Product) Field(column string) (any, bool) {
	switch column {
	case "id":
		return p.ID, true
	case "name":
		return p.Name, true
	case "category":
		return p.Category, true
	case "price":
		return p.Price, true
	case "description":
		return p.Description, true
	case "image_url":
		return p.ImageURL, true
	case "featured":
		return p.Featured, true
	case "in_stock":
		return p.InStock, true
	case "created_at":
		return p.CreatedAt, true
	case "updated_at":
		return p.UpdatedAt, true
	}
	return nil, false
}

// Validate checks a row read from the store
func (p Product) Validate() error {
	if !ident.IsCanonical(p.ID) {
		return errors.New("id is not canonical")
	}
	if p.Name == "" {
		return errors.New("name is empty")
	}
	if p.Price.IsNegative() {
		return errors.New("price is negative")
	}
	return nil
}

// PrepareInsert assigns an id and timestamps to a new row
func (p *Product) PrepareInsert(now time.Time) {
	if p.ID == "" {
		p.ID = ident.New()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
}

// PrepareUpdate stamps the modification time
func (p *Product) PrepareUpdate(now time.Time) {
	p.UpdatedAt = now
}

// HasDescription reports whether the product carries description text
func (p *Product) HasDescription() bool {
	return p.Description != nil && *p.Description != ""
}
