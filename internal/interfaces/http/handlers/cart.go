// internal/interfaces/http/handlers/cart.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/cart"
	"github.com/your-org/storefront-backend/internal/domain/product"
)

// CartHandler handles cart endpoints
type CartHandler struct {
	cartService    *cart.Service
	productService *product.Service
	config         *config.Config
}

// NewCartHandler creates a new cart handler
func NewCartHandler(carts *cart.Service, products *product.Service, cfg *config.Config) *CartHandler {
	return &CartHandler{
		cartService:    carts,
		productService: products,
		config:         cfg,
	}
}

// AddToCartRequest is the body of POST /cart/items
type AddToCartRequest struct {
	ProductID string `json:"product_id" binding:"required"`
	Quantity  *int   `json:"quantity"`
	Size      string `json:"size"`
}

// UpdateCartItemRequest is the body of PUT /cart/items/:id
type UpdateCartItemRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

// CartResponse is the cart as returned to clients
type CartResponse struct {
	Items  []cart.Line `json:"items"`
	Totals cart.Totals `json:"totals"`
}

func newCartResponse(s *cart.Store) CartResponse {
	return CartResponse{Items: s.Lines(), Totals: s.Totals()}
}

// GetCart handles GET /cart
func (h *CartHandler) GetCart(c *gin.Context) {
	store := h.open(c)

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart retrieved successfully",
		"data":    newCartResponse(store),
	})
}

// AddToCart handles POST /cart/items
func (h *CartHandler) AddToCart(c *gin.Context) {
	var req AddToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	quantity := 1
	if req.Quantity != nil {
		quantity = *req.Quantity
	}
	if quantity < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Quantity must be at least 1"})
		return
	}

	size, ok := cart.ParseSize(req.Size)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid size"})
		return
	}

	p, found := h.productService.GetByID(c.Request.Context(), req.ProductID)
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}
	if !p.InStock {
		c.JSON(http.StatusConflict, gin.H{"error": "Product is out of stock"})
		return
	}

	store := h.open(c)
	if err := store.AddToCart(c.Request.Context(), p, quantity, size); err != nil {
		h.saveFailed(c, store)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Item added to cart successfully",
		"data":    newCartResponse(store),
	})
}

// UpdateCartItem handles PUT /cart/items/:id?size=
func (h *CartHandler) UpdateCartItem(c *gin.Context) {
	size, ok := cart.ParseSize(c.Query("size"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid size"})
		return
	}

	var req UpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	store := h.open(c)
	if err := store.UpdateQuantity(c.Request.Context(), c.Param("id"), *req.Quantity, size); err != nil {
		h.saveFailed(c, store)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart item updated successfully",
		"data":    newCartResponse(store),
	})
}

// RemoveFromCart handles DELETE /cart/items/:id?size=
func (h *CartHandler) RemoveFromCart(c *gin.Context) {
	size, ok := cart.ParseSize(c.Query("size"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid size"})
		return
	}

	store := h.open(c)
	if err := store.RemoveFromCart(c.Request.Context(), c.Param("id"), size); err != nil {
		h.saveFailed(c, store)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Item removed from cart successfully",
		"data":    newCartResponse(store),
	})
}

// ClearCart handles DELETE /cart
func (h *CartHandler) ClearCart(c *gin.Context) {
	store := h.open(c)
	if err := store.ClearCart(c.Request.Context()); err != nil {
		h.saveFailed(c, store)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart cleared successfully",
		"data":    newCartResponse(store),
	})
}

func (h *CartHandler) open(c *gin.Context) *cart.Store {
	return h.cartService.Open(c.Request.Context(), getOrCreateSessionID(c, h.config))
}

// saveFailed reports a mutation that applied in memory but was not persisted
func (h *CartHandler) saveFailed(c *gin.Context, store *cart.Store) {
	c.JSON(http.StatusServiceUnavailable, gin.H{
		"error": "Cart could not be saved",
		"data":  newCartResponse(store),
	})
}
