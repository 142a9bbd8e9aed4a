// internal/domain/product/service.go
package product

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-backend/internal/pkg/ident"
	"github.com/your-org/storefront-backend/internal/store"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrInvalidProduct  = errors.New("invalid product")
)

// Service is the catalog accessor. Reads never fail: a backend fault
// degrades to an empty result and a logged warning.
type Service struct {
	products store.Table[Product]
	log      logrus.FieldLogger
}

// NewService creates a new product service
func NewService(products store.Table[Product], log logrus.FieldLogger) *Service {
	return &Service{
		products: products,
		log:      log.WithField("component", "catalog"),
	}
}

// CreateRequest represents product creation data
type CreateRequest struct {
	Name        string           `json:"name" binding:"required"`
	Category    string           `json:"category" binding:"required"`
	Price       *decimal.Decimal `json:"price" binding:"required"`
	Description string           `json:"description"`
	ImageURL    string           `json:"image_url"`
	Featured    bool             `json:"featured"`
	InStock     *bool            `json:"in_stock"`
}

// UpdateRequest represents a partial product update
type UpdateRequest struct {
	Name        *string          `json:"name"`
	Category    *string          `json:"category"`
	Price       *decimal.Decimal `json:"price"`
	Description *string          `json:"description"`
	ImageURL    *string          `json:"image_url"`
	Featured    *bool            `json:"featured"`
	InStock     *bool            `json:"in_stock"`
}

// GetAll returns every product, newest first
func (s *Service) GetAll(ctx context.Context) []Product {
	return s.list(ctx, "get_all", store.All())
}

// GetByID returns the product with the given id. Not found and fetch
// failures both report false.
func (s *Service) GetByID(ctx context.Context, id string) (Product, bool) {
	if !ident.IsCanonical(id) {
		return Product{}, false
	}

	p, err := s.products.SelectOne(ctx, store.ByID(id))
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			s.log.WithError(err).WithField("product_id", id).Warn("Failed to fetch product")
		}
		return Product{}, false
	}
	return p, true
}

// GetByCategory returns products whose category equals category exactly
func (s *Service) GetByCategory(ctx context.Context, category string) []Product {
	return s.list(ctx, "get_by_category", store.Where(store.Eq("category", category)))
}

// Search matches query against name or description, ignoring case
func (s *Service) Search(ctx context.Context, query string) []Product {
	query = strings.TrimSpace(query)
	if query == "" {
		return s.GetAll(ctx)
	}
	return s.list(ctx, "search", store.Where(store.Any(
		store.ILike("name", query),
		store.ILike("description", query),
	)))
}

// GetFeatured returns featured products
func (s *Service) GetFeatured(ctx context.Context) []Product {
	return s.list(ctx, "get_featured", store.Where(store.Eq("featured", true)))
}

func (s *Service) list(ctx context.Context, op string, q store.Query) []Product {
	products, err := s.products.Select(ctx, q.Order("created_at", true))
	if err != nil {
		s.log.WithError(err).WithField("operation", op).Warn("Failed to fetch products")
		return []Product{}
	}
	return products
}

// Create adds a product to the catalog
func (s *Service) Create(ctx context.Context, req *CreateRequest) (*Product, error) {
	name := strings.TrimSpace(req.Name)
	category := strings.TrimSpace(req.Category)
	if name == "" || category == "" {
		return nil, fmt.Errorf("%w: name and category are required", ErrInvalidProduct)
	}
	if req.Price == nil || req.Price.IsNegative() {
		return nil, fmt.Errorf("%w: price must be zero or greater", ErrInvalidProduct)
	}

	inStock := true
	if req.InStock != nil {
		inStock = *req.InStock
	}

	row := Product{
		Name:        name,
		Category:    category,
		Price:       *req.Price,
		Description: nullIfEmpty(req.Description),
		ImageURL:    nullIfEmpty(req.ImageURL),
		Featured:    req.Featured,
		InStock:     inStock,
	}

	created, err := s.products.Insert(ctx, row)
	if err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	s.log.WithField("product_id", created[0].ID).Info("Product created")
	return &created[0], nil
}

// Update applies the non-nil fields of req to a product
func (s *Service) Update(ctx context.Context, id string, req *UpdateRequest) (*Product, error) {
	if !ident.IsCanonical(id) {
		return nil, ErrProductNotFound
	}

	patch := store.Patch{}
	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			return nil, fmt.Errorf("%w: name cannot be empty", ErrInvalidProduct)
		}
		patch["name"] = strings.TrimSpace(*req.Name)
	}
	if req.Category != nil {
		if strings.TrimSpace(*req.Category) == "" {
			return nil, fmt.Errorf("%w: category cannot be empty", ErrInvalidProduct)
		}
		patch["category"] = strings.TrimSpace(*req.Category)
	}
	if req.Price != nil {
		if req.Price.IsNegative() {
			return nil, fmt.Errorf("%w: price must be zero or greater", ErrInvalidProduct)
		}
		patch["price"] = *req.Price
	}
	if req.Description != nil {
		patch["description"] = nullIfEmpty(*req.Description)
	}
	if req.ImageURL != nil {
		patch["image_url"] = nullIfEmpty(*req.ImageURL)
	}
	if req.Featured != nil {
		patch["featured"] = *req.Featured
	}
	if req.InStock != nil {
		patch["in_stock"] = *req.InStock
	}
	if len(patch) == 0 {
		return nil, fmt.Errorf("%w: nothing to update", ErrInvalidProduct)
	}

	updated, err := s.products.Update(ctx, id, patch)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to update product: %w", err)
	}
	return &updated, nil
}

// Delete removes a product from the catalog
func (s *Service) Delete(ctx context.Context, id string) error {
	if !ident.IsCanonical(id) {
		return ErrProductNotFound
	}

	if err := s.products.Delete(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrProductNotFound
		}
		return fmt.Errorf("failed to delete product: %w", err)
	}

	s.log.WithField("product_id", id).Info("Product deleted")
	return nil
}

func nullIfEmpty(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
