// internal/interfaces/http/server_test.go
package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/cart"
	"github.com/your-org/storefront-backend/internal/domain/order"
	"github.com/your-org/storefront-backend/internal/domain/product"
	"github.com/your-org/storefront-backend/internal/domain/user"
	"github.com/your-org/storefront-backend/internal/interfaces/http/handlers"
	"github.com/your-org/storefront-backend/internal/interfaces/http/routes"
	"github.com/your-org/storefront-backend/internal/pkg/ident"
	"github.com/your-org/storefront-backend/internal/pkg/logger"
	"github.com/your-org/storefront-backend/internal/store"
	"golang.org/x/crypto/bcrypt"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

type stubReceipts struct {
	names map[string]string
}

func (s *stubReceipts) GenerateReceipt(o *order.WithItems, names map[string]string) (*bytes.Buffer, error) {
	s.names = names
	return bytes.NewBufferString("%PDF-1.4 " + o.ID), nil
}

type fixture struct {
	handler  http.Handler
	products *store.MemoryTable[product.Product]
	orders   *store.MemoryTable[order.Order]
	items    *store.MemoryTable[order.OrderItem]
	receipts *stubReceipts

	coldBrewID string
	soldOutID  string
}

func testConfig() *config.Config {
	return &config.Config{
		App:    config.AppConfig{Name: "Storefront Test", Version: "test", Environment: "test"},
		Server: config.ServerConfig{RequestTimeout: 5 * time.Second},
		Cart: config.CartConfig{
			KeyPrefix:     "cart:session:",
			TTL:           time.Hour,
			SessionCookie: "session_id",
			SessionMaxAge: 3600,
		},
		JWT: config.JWTConfig{
			Secret:            strings.Repeat("k", 32),
			AccessTokenExpiry: time.Hour,
		},
		Security: config.SecurityConfig{
			BcryptCost:         bcrypt.MinCost,
			RateLimitPerMinute: 100,
			CORSAllowedOrigins: []string{"http://localhost:5173"},
			CORSAllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			CORSAllowedHeaders: []string{"Content-Type", "Authorization"},
			AdminEmails:        []string{"admin@example.com"},
		},
	}
}

func newFixture(t *testing.T, checks map[string]HealthCheck) *fixture {
	t.Helper()

	cfg := testConfig()
	log := logger.Discard()

	f := &fixture{
		products:   store.NewMemoryTable[product.Product](),
		orders:     store.NewMemoryTable[order.Order](),
		items:      store.NewMemoryTable[order.OrderItem](),
		receipts:   &stubReceipts{},
		coldBrewID: ident.New(),
		soldOutID:  ident.New(),
	}

	now := time.Now()
	f.products.Seed(
		product.Product{ID: f.coldBrewID, Name: "Cold Brew Bottle", Category: "ready-to-drink", Price: decimal.NewFromInt(120), InStock: true, CreatedAt: now, UpdatedAt: now},
		product.Product{ID: f.soldOutID, Name: "Geisha Lot 7", Category: "beans", Price: decimal.NewFromInt(900), InStock: false, CreatedAt: now, UpdatedAt: now},
	)

	services := &routes.Services{
		Products: product.NewService(f.products, log),
		Carts:    cart.NewService(cart.NewMemoryPersister(), cfg, log),
		Orders:   order.NewService(f.orders, f.items, log),
		Users:    user.NewService(store.NewMemoryTable[user.User]().Unique("email"), cfg, log),
		Receipts: f.receipts,
	}

	f.handler = NewServer(cfg, services, nil, checks, log).Handler()
	return f
}

type request struct {
	method  string
	path    string
	body    any
	token   string
	cookies []*http.Cookie
}

func (f *fixture) do(t *testing.T, r request) *httptest.ResponseRecorder {
	t.Helper()

	var body bytes.Buffer
	if r.body != nil {
		require.NoError(t, json.NewEncoder(&body).Encode(r.body))
	}

	req := httptest.NewRequest(r.method, r.path, &body)
	req.Header.Set("Content-Type", "application/json")
	if r.token != "" {
		req.Header.Set("Authorization", "Bearer "+r.token)
	}
	for _, c := range r.cookies {
		req.AddCookie(c)
	}

	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

type envelope[T any] struct {
	Message string `json:"message"`
	Error   string `json:"error"`
	Data    T      `json:"data"`
}

func (f *fixture) register(t *testing.T, email string) string {
	t.Helper()

	rec := f.do(t, request{method: http.MethodPost, path: "/api/v1/auth/register", body: gin.H{
		"name":     "Test Customer",
		"email":    email,
		"password": "espresso42",
	}})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	return decode[envelope[user.AuthResponse]](t, rec).Data.AccessToken
}

// addColdBrew puts two medium cold brews in a fresh cart and returns its session cookie
func (f *fixture) addColdBrew(t *testing.T) *http.Cookie {
	t.Helper()

	rec := f.do(t, request{method: http.MethodPost, path: "/api/v1/cart/items", body: gin.H{
		"product_id": f.coldBrewID,
		"quantity":   2,
		"size":       "medium",
	}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	for _, c := range rec.Result().Cookies() {
		if c.Name == "session_id" {
			return c
		}
	}
	t.Fatal("no session cookie issued")
	return nil
}

func validDraft() gin.H {
	return gin.H{
		"first_name":     "Ada",
		"last_name":      "Reyes",
		"email":          "Ada@Example.com",
		"address":        "12 Roast St",
		"city":           "Quezon City",
		"state":          "Metro Manila",
		"zip":            "1100",
		"country":        "PH",
		"phone":          "+63 900 000 0000",
		"payment_method": "gcash",
	}
}

func TestHealth(t *testing.T) {
	f := newFixture(t, map[string]HealthCheck{
		"redis": func(ctx context.Context) error { return nil },
	})
	rec := f.do(t, request{method: http.MethodGet, path: "/health"})
	assert.Equal(t, http.StatusOK, rec.Code)

	f = newFixture(t, map[string]HealthCheck{
		"redis": func(ctx context.Context) error { return errors.New("connection refused") },
	})
	rec = f.do(t, request{method: http.MethodGet, path: "/health"})
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "redis ping failed")
}

func TestProductsByCategory(t *testing.T) {
	f := newFixture(t, nil)

	rec := f.do(t, request{method: http.MethodGet, path: "/api/v1/products?category=beans"})
	require.Equal(t, http.StatusOK, rec.Code)

	got := decode[envelope[[]product.Product]](t, rec).Data
	require.Len(t, got, 1)
	assert.Equal(t, f.soldOutID, got[0].ID)

	rec = f.do(t, request{method: http.MethodGet, path: "/api/v1/products/not-an-id"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCartRoundTrip(t *testing.T) {
	f := newFixture(t, nil)
	session := f.addColdBrew(t)

	rec := f.do(t, request{method: http.MethodGet, path: "/api/v1/cart", cookies: []*http.Cookie{session}})
	require.Equal(t, http.StatusOK, rec.Code)

	got := decode[envelope[handlers.CartResponse]](t, rec).Data
	require.Len(t, got.Items, 1)
	assert.Equal(t, cart.SizeMedium, got.Items[0].Size)
	assert.Equal(t, 2, got.Totals.ItemCount)
	assert.True(t, got.Totals.SubTotal.Equal(decimal.NewFromInt(240)), got.Totals.SubTotal.String())
	assert.True(t, got.Totals.Total.Equal(decimal.NewFromInt(280)), got.Totals.Total.String())

	// Sizes are part of the line key, so a large update misses the medium line
	rec = f.do(t, request{method: http.MethodPut, path: "/api/v1/cart/items/" + f.coldBrewID + "?size=large", body: gin.H{"quantity": 3}, cookies: []*http.Cookie{session}})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[envelope[handlers.CartResponse]](t, rec).Data.Items, 1)

	rec = f.do(t, request{method: http.MethodPut, path: "/api/v1/cart/items/" + f.coldBrewID + "?size=medium", body: gin.H{"quantity": 0}, cookies: []*http.Cookie{session}})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[envelope[handlers.CartResponse]](t, rec).Data.Items)

	// A fresh visitor gets a different, empty cart
	rec = f.do(t, request{method: http.MethodGet, path: "/api/v1/cart"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[envelope[handlers.CartResponse]](t, rec).Data.Items)
}

func TestAddToCartRejections(t *testing.T) {
	f := newFixture(t, nil)

	tests := []struct {
		name string
		body gin.H
		code int
	}{
		{"unknown product", gin.H{"product_id": ident.New()}, http.StatusNotFound},
		{"out of stock", gin.H{"product_id": f.soldOutID}, http.StatusConflict},
		{"bad size", gin.H{"product_id": f.coldBrewID, "size": "venti"}, http.StatusBadRequest},
		{"zero quantity", gin.H{"product_id": f.coldBrewID, "quantity": 0}, http.StatusBadRequest},
		{"missing product", gin.H{"quantity": 1}, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.do(t, request{method: http.MethodPost, path: "/api/v1/cart/items", body: tt.body})
			assert.Equal(t, tt.code, rec.Code, rec.Body.String())
		})
	}
}

func TestCheckoutRequiresLogin(t *testing.T) {
	f := newFixture(t, nil)
	session := f.addColdBrew(t)

	rec := f.do(t, request{method: http.MethodPost, path: "/api/v1/checkout", body: validDraft(), cookies: []*http.Cookie{session}})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Zero(t, f.orders.Calls(store.OperationInsert))
}

func TestCheckoutPlacesOrder(t *testing.T) {
	f := newFixture(t, nil)
	token := f.register(t, "ada@example.com")
	session := f.addColdBrew(t)

	rec := f.do(t, request{method: http.MethodPost, path: "/api/v1/checkout", body: validDraft(), token: token, cookies: []*http.Cookie{session}})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	placed := decode[envelope[order.WithItems]](t, rec).Data
	assert.Equal(t, order.StatusPending, placed.Status)
	assert.True(t, placed.Total.Equal(decimal.NewFromInt(280)), placed.Total.String())
	assert.Equal(t, "ada@example.com", placed.ShippingEmail)
	require.Len(t, placed.Items, 1)
	assert.True(t, placed.Items[0].Price.Equal(decimal.NewFromInt(140)))

	rec = f.do(t, request{method: http.MethodGet, path: "/api/v1/cart", cookies: []*http.Cookie{session}})
	assert.Empty(t, decode[envelope[handlers.CartResponse]](t, rec).Data.Items)

	rec = f.do(t, request{method: http.MethodGet, path: "/api/v1/orders", token: token})
	require.Equal(t, http.StatusOK, rec.Code)
	history := decode[envelope[[]order.WithItems]](t, rec).Data
	require.Len(t, history, 1)
	assert.Equal(t, placed.ID, history[0].ID)
	assert.Len(t, history[0].Items, 1)

	rec = f.do(t, request{method: http.MethodGet, path: "/api/v1/orders/" + placed.ID + "/receipt", token: token})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Equal(t, map[string]string{f.coldBrewID: "Cold Brew Bottle"}, f.receipts.names)

	// Another customer cannot see it
	other := f.register(t, "bea@example.com")
	rec = f.do(t, request{method: http.MethodGet, path: "/api/v1/orders/" + placed.ID, token: other})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCheckoutRejectsInvalidDraft(t *testing.T) {
	f := newFixture(t, nil)
	token := f.register(t, "ada@example.com")
	session := f.addColdBrew(t)

	draft := validDraft()
	draft["email"] = "not-an-email"
	draft["payment_method"] = "credit_card"

	rec := f.do(t, request{method: http.MethodPost, path: "/api/v1/checkout", body: draft, token: token, cookies: []*http.Cookie{session}})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	body := decode[struct {
		Fields map[string]string `json:"fields"`
	}](t, rec)
	assert.Contains(t, body.Fields, "email")
	assert.Contains(t, body.Fields, "card_number")
	assert.Zero(t, f.orders.Calls(store.OperationInsert))
}

func TestCheckoutEmptyCart(t *testing.T) {
	f := newFixture(t, nil)
	token := f.register(t, "ada@example.com")

	rec := f.do(t, request{method: http.MethodPost, path: "/api/v1/checkout", body: validDraft(), token: token})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCheckoutReportsPartialOrder(t *testing.T) {
	f := newFixture(t, nil)
	token := f.register(t, "ada@example.com")
	session := f.addColdBrew(t)
	f.items.FailOn(store.OperationInsert, errors.New("connection reset"))

	rec := f.do(t, request{method: http.MethodPost, path: "/api/v1/checkout", body: validDraft(), token: token, cookies: []*http.Cookie{session}})
	require.Equal(t, http.StatusBadGateway, rec.Code)

	body := decode[struct {
		OrderID string `json:"order_id"`
	}](t, rec)
	require.Len(t, f.orders.Rows(), 1)
	assert.Equal(t, f.orders.Rows()[0].ID, body.OrderID)

	// The cart survives for another attempt
	rec = f.do(t, request{method: http.MethodGet, path: "/api/v1/cart", cookies: []*http.Cookie{session}})
	assert.Len(t, decode[envelope[handlers.CartResponse]](t, rec).Data.Items, 1)
}

func TestAdminRoutes(t *testing.T) {
	f := newFixture(t, nil)
	customer := f.register(t, "ada@example.com")
	admin := f.register(t, "admin@example.com")
	session := f.addColdBrew(t)

	rec := f.do(t, request{method: http.MethodPost, path: "/api/v1/checkout", body: validDraft(), token: customer, cookies: []*http.Cookie{session}})
	require.Equal(t, http.StatusCreated, rec.Code)
	orderID := decode[envelope[order.WithItems]](t, rec).Data.ID

	rec = f.do(t, request{method: http.MethodGet, path: "/api/v1/admin/orders", token: customer})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = f.do(t, request{method: http.MethodGet, path: "/api/v1/admin/orders", token: admin})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[envelope[[]order.WithItems]](t, rec).Data, 1)

	rec = f.do(t, request{method: http.MethodPut, path: "/api/v1/admin/orders/" + orderID + "/status", body: gin.H{"status": "shipped"}, token: admin})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, order.StatusShipped, f.orders.Rows()[0].Status)

	rec = f.do(t, request{method: http.MethodPost, path: "/api/v1/admin/products", body: gin.H{
		"name":     "Hario V60",
		"category": "equipment",
		"price":    "950.00",
	}, token: admin})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Len(t, f.products.Rows(), 3)
}

func TestRequestID(t *testing.T) {
	f := newFixture(t, nil)

	rec := f.do(t, request{method: http.MethodGet, path: "/ready"})
	assert.True(t, ident.IsCanonical(rec.Header().Get("X-Request-ID")))
}
