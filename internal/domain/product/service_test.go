package product

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/storefront-backend/internal/pkg/logger"
	"github.com/your-org/storefront-backend/internal/store"
)

const (
	ethiopiaID = "2f1c6b1e-8a34-4c55-9d2a-0b7f4e1a9c01"
	coldBrewID = "2f1c6b1e-8a34-4c55-9d2a-0b7f4e1a9c02"
	grinderID  = "2f1c6b1e-8a34-4c55-9d2a-0b7f4e1a9c03"
)

func strptr(s string) *string { return &s }

func seededCatalog(t *testing.T) (*Service, *store.MemoryTable[Product]) {
	t.Helper()

	base := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	table := store.NewMemoryTable[Product]()
	table.Seed(
		Product{
			ID:          ethiopiaID,
			Name:        "Ethiopian Yirgacheffe",
			Category:    "beans",
			Price:       decimal.RequireFromString("24.99"),
			Description: strptr("Bright and floral with notes of bergamot"),
			Featured:    true,
			InStock:     true,
			CreatedAt:   base,
		},
		Product{
			ID:          coldBrewID,
			Name:        "Cold Brew Classic",
			Category:    "ready-to-drink",
			Price:       decimal.RequireFromString("4.50"),
			Description: strptr("Smooth, low-acid Arabica cold brew"),
			InStock:     true,
			CreatedAt:   base.Add(time.Hour),
		},
		Product{
			ID:        grinderID,
			Name:      "Burr Grinder",
			Category:  "equipment",
			Price:     decimal.RequireFromString("89.00"),
			Featured:  true,
			CreatedAt: base.Add(2 * time.Hour),
		},
	)
	return NewService(table, logger.Discard()), table
}

func ids(products []Product) []string {
	out := make([]string, len(products))
	for i, p := range products {
		out[i] = p.ID
	}
	return out
}

func TestGetAllNewestFirst(t *testing.T) {
	svc, _ := seededCatalog(t)

	got := svc.GetAll(context.Background())
	assert.Equal(t, []string{grinderID, coldBrewID, ethiopiaID}, ids(got))
}

func TestGetByCategoryIsExact(t *testing.T) {
	svc, _ := seededCatalog(t)
	ctx := context.Background()

	assert.Equal(t, []string{ethiopiaID}, ids(svc.GetByCategory(ctx, "beans")))
	assert.Empty(t, svc.GetByCategory(ctx, "Beans"))
	assert.Empty(t, svc.GetByCategory(ctx, "bean"))
}

func TestSearch(t *testing.T) {
	svc, _ := seededCatalog(t)

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{name: "name match ignores case", query: "GRINDER", want: []string{grinderID}},
		{name: "description match", query: "arabica", want: []string{coldBrewID}},
		{name: "name or description", query: "br", want: []string{coldBrewID, ethiopiaID}},
		{name: "blank query returns everything", query: "  ", want: []string{grinderID, coldBrewID, ethiopiaID}},
		{name: "no match", query: "matcha", want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := svc.Search(context.Background(), tt.query)
			assert.Equal(t, tt.want, ids(got))
		})
	}
}

func TestGetFeatured(t *testing.T) {
	svc, _ := seededCatalog(t)

	got := svc.GetFeatured(context.Background())
	assert.Equal(t, []string{grinderID, ethiopiaID}, ids(got))
}

func TestGetByID(t *testing.T) {
	svc, table := seededCatalog(t)
	ctx := context.Background()

	p, ok := svc.GetByID(ctx, coldBrewID)
	require.True(t, ok)
	assert.Equal(t, "Cold Brew Classic", p.Name)

	_, ok = svc.GetByID(ctx, "2f1c6b1e-8a34-4c55-9d2a-0b7f4e1a9cff")
	assert.False(t, ok)

	calls := table.Calls(store.OperationSelect)
	_, ok = svc.GetByID(ctx, "42")
	assert.False(t, ok)
	assert.Equal(t, calls, table.Calls(store.OperationSelect), "non-canonical ids never reach the store")
}

func TestReadsDegradeOnBackendFailure(t *testing.T) {
	svc, table := seededCatalog(t)
	ctx := context.Background()
	table.FailOn(store.OperationSelect, errors.New("connection reset"))

	assert.NotNil(t, svc.GetAll(ctx))
	assert.Empty(t, svc.GetAll(ctx))
	assert.Empty(t, svc.GetByCategory(ctx, "beans"))
	assert.Empty(t, svc.Search(ctx, "cold"))
	assert.Empty(t, svc.GetFeatured(ctx))

	_, ok := svc.GetByID(ctx, ethiopiaID)
	assert.False(t, ok)
}

func TestMalformedRowsAreRejected(t *testing.T) {
	svc, table := seededCatalog(t)
	table.Seed(Product{ID: "not-a-uuid", Name: "Mystery", Category: "beans"})

	assert.Empty(t, svc.GetByCategory(context.Background(), "beans"))
}

func TestCreate(t *testing.T) {
	svc, table := seededCatalog(t)
	price := decimal.RequireFromString("12.00")

	created, err := svc.Create(context.Background(), &CreateRequest{
		Name:        " House Blend ",
		Category:    "beans",
		Price:       &price,
		Description: "",
		ImageURL:    "   ",
	})
	require.NoError(t, err)

	assert.Len(t, created.ID, 36)
	assert.Equal(t, "House Blend", created.Name)
	assert.Nil(t, created.Description)
	assert.Nil(t, created.ImageURL)
	assert.True(t, created.InStock)
	assert.False(t, created.CreatedAt.IsZero())
	assert.Len(t, table.Rows(), 4)
}

func TestCreateRejectsInvalidInput(t *testing.T) {
	svc, _ := seededCatalog(t)
	negative := decimal.NewFromInt(-1)

	_, err := svc.Create(context.Background(), &CreateRequest{Name: "x", Category: "beans", Price: &negative})
	assert.ErrorIs(t, err, ErrInvalidProduct)

	_, err = svc.Create(context.Background(), &CreateRequest{Name: "x", Category: " "})
	assert.ErrorIs(t, err, ErrInvalidProduct)
}

func TestUpdate(t *testing.T) {
	svc, _ := seededCatalog(t)
	ctx := context.Background()
	price := decimal.RequireFromString("26.50")
	outOfStock := false
	empty := ""

	updated, err := svc.Update(ctx, ethiopiaID, &UpdateRequest{
		Price:       &price,
		InStock:     &outOfStock,
		Description: &empty,
	})
	require.NoError(t, err)

	assert.True(t, price.Equal(updated.Price))
	assert.False(t, updated.InStock)
	assert.Nil(t, updated.Description)
	assert.Equal(t, "Ethiopian Yirgacheffe", updated.Name)

	_, err = svc.Update(ctx, "2f1c6b1e-8a34-4c55-9d2a-0b7f4e1a9cff", &UpdateRequest{Price: &price})
	assert.ErrorIs(t, err, ErrProductNotFound)

	_, err = svc.Update(ctx, ethiopiaID, &UpdateRequest{})
	assert.ErrorIs(t, err, ErrInvalidProduct)
}

func TestDelete(t *testing.T) {
	svc, table := seededCatalog(t)
	ctx := context.Background()

	require.NoError(t, svc.Delete(ctx, grinderID))
	assert.Len(t, table.Rows(), 2)

	assert.ErrorIs(t, svc.Delete(ctx, grinderID), ErrProductNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, "bogus"), ErrProductNotFound)
}

func TestStarterCatalogueIsValid(t *testing.T) {
	now := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	catalogue := StarterCatalogue(now)
	require.NotEmpty(t, catalogue)

	seen := make(map[string]bool)
	for _, p := range catalogue {
		require.NoError(t, p.Validate(), p.Name)
		assert.False(t, seen[p.ID], "duplicate id for %s", p.Name)
		seen[p.ID] = true
	}

	products := store.NewMemoryTable[Product]()
	products.Seed(catalogue...)
	svc := NewService(products, logger.Discard())

	all := svc.GetAll(context.Background())
	require.Len(t, all, len(catalogue))
	assert.Equal(t, catalogue[0].ID, all[0].ID)
	assert.NotEmpty(t, svc.GetFeatured(context.Background()))
}
