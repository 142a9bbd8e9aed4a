// internal/domain/product/seed.go
package product

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/your-org/storefront-backend/internal/pkg/ident"
)

type seedProduct struct {
	name, category, price, description, image string
	featured                                  bool
}

var starterCatalogue = []seedProduct{
	{"Signature Blend Coffee", "beans", "14.99", "House blend of Ethiopian and Colombian Arabica with chocolate, caramel and citrus notes.", "https://images.pexels.com/photos/4920603/pexels-photo-4920603.jpeg", true},
	{"Ethiopia Yirgacheffe", "beans", "16.99", "Bright single origin with bergamot, jasmine and lemon zest.", "https://images.pexels.com/photos/894695/pexels-photo-894695.jpeg", true},
	{"Cold Brew Concentrate", "ready-to-drink", "12.99", "Steeped for 18 hours. Add water or milk to taste.", "https://images.pexels.com/photos/2615323/pexels-photo-2615323.jpeg", false},
	{"Ceramic Pour Over Set", "equipment", "42.99", "Dripper, server and reusable filter.", "https://images.pexels.com/photos/6542554/pexels-photo-6542554.jpeg", true},
	{"Guatemala Antigua", "beans", "15.99", "Full bodied with chocolate, spice and a smoky finish.", "https://images.pexels.com/photos/2074122/pexels-photo-2074122.jpeg", false},
	{"Espresso Blend", "beans", "15.99", "Roasted for crema, with dark chocolate and hazelnut notes.", "https://images.pexels.com/photos/2299028/pexels-photo-2299028.jpeg", false},
	{"Hand Grinder", "equipment", "34.99", "Ceramic conical burrs with adjustable grind settings.", "https://images.pexels.com/photos/3020919/pexels-photo-3020919.jpeg", false},
	{"Colombia Supremo", "beans", "14.99", "Huila grown, with caramel, apple and honey sweetness.", "https://images.pexels.com/photos/1695052/pexels-photo-1695052.jpeg", false},
	{"Travel Tumbler", "equipment", "29.99", "Vacuum insulated steel with a leak-proof lid.", "https://images.pexels.com/photos/1793035/pexels-photo-1793035.jpeg", false},
}

// StarterCatalogue returns the products a fresh store is seeded with.
// Creation times are staggered so newest-first listings keep this order.
func StarterCatalogue(now time.Time) []Product {
	out := make([]Product, len(starterCatalogue))
	for i, s := range starterCatalogue {
		created := now.Add(-time.Duration(i) * time.Minute)
		out[i] = Product{
			ID:          ident.New(),
			Name:        s.name,
			Category:    s.category,
			Price:       decimal.RequireFromString(s.price),
			Description: nullIfEmpty(s.description),
			ImageURL:    nullIfEmpty(s.image),
			Featured:    s.featured,
			InStock:     true,
			CreatedAt:   created,
			UpdatedAt:   created,
		}
	}
	return out
}
