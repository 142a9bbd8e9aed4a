// internal/interfaces/http/handlers/checkout.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/cart"
	"github.com/your-org/storefront-backend/internal/domain/order"
	"github.com/your-org/storefront-backend/internal/interfaces/http/middleware"
)

// CheckoutHandler turns the session cart into an order
type CheckoutHandler struct {
	orderService *order.Service
	cartService  *cart.Service
	config       *config.Config
}

// NewCheckoutHandler creates a new checkout handler
func NewCheckoutHandler(orders *order.Service, carts *cart.Service, cfg *config.Config) *CheckoutHandler {
	return &CheckoutHandler{
		orderService: orders,
		cartService:  carts,
		config:       cfg,
	}
}

// Checkout handles POST /checkout
func (h *CheckoutHandler) Checkout(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var draft order.Draft
	if err := c.ShouldBindJSON(&draft); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	ctx := c.Request.Context()
	store := h.cartService.Open(ctx, getOrCreateSessionID(c, h.config))

	placed, err := h.orderService.Submit(ctx, userID, &draft, store)
	if err != nil {
		var invalid *order.ValidationError
		var partial *order.PartialOrderError

		switch {
		case errors.As(err, &invalid):
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error":  "Invalid checkout details",
				"fields": invalid.Fields,
			})
		case errors.Is(err, order.ErrInvalidUser):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		case errors.Is(err, order.ErrEmptyCart):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Cart is empty"})
		case errors.Is(err, order.ErrInvalidCart):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Cart contains items that cannot be ordered"})
		case errors.As(err, &partial):
			c.JSON(http.StatusBadGateway, gin.H{
				"error":    "Order was created but its items could not be saved",
				"order_id": partial.OrderID,
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to place order"})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Order placed successfully",
		"data":    placed,
	})
}
