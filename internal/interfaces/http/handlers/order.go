// internal/interfaces/http/handlers/order.go
package handlers

import (
	"bytes"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/your-org/storefront-backend/internal/domain/order"
	"github.com/your-org/storefront-backend/internal/domain/product"
	"github.com/your-org/storefront-backend/internal/interfaces/http/middleware"
	"github.com/your-org/storefront-backend/internal/pkg/pdf"
)

// ReceiptGenerator renders an order receipt as a PDF
type ReceiptGenerator interface {
	GenerateReceipt(o *order.WithItems, productNames map[string]string) (*bytes.Buffer, error)
}

// OrderHandler handles order endpoints
type OrderHandler struct {
	orderService   *order.Service
	productService *product.Service
	receipts       ReceiptGenerator
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(orders *order.Service, products *product.Service, receipts ReceiptGenerator) *OrderHandler {
	return &OrderHandler{
		orderService:   orders,
		productService: products,
		receipts:       receipts,
	}
}

// UpdateStatusRequest is the body of PUT /admin/orders/:id/status
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// GetOrders handles GET /orders
func (h *OrderHandler) GetOrders(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)

	orders, err := h.orderService.History(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to retrieve orders",
			"data":  orders,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Orders retrieved successfully",
		"data":    orders,
	})
}

// GetOrder handles GET /orders/:id
func (h *OrderHandler) GetOrder(c *gin.Context) {
	o, ok := h.lookup(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Order retrieved successfully",
		"data":    o,
	})
}

// DownloadReceipt handles GET /orders/:id/receipt
func (h *OrderHandler) DownloadReceipt(c *gin.Context) {
	o, ok := h.lookup(c)
	if !ok {
		return
	}

	names := make(map[string]string, len(o.Items))
	for _, item := range o.Items {
		if _, seen := names[item.ProductID]; seen {
			continue
		}
		if p, found := h.productService.GetByID(c.Request.Context(), item.ProductID); found {
			names[item.ProductID] = p.Name
		}
	}

	buf, err := h.receipts.GenerateReceipt(o, names)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate receipt"})
		return
	}

	filename := pdf.ReceiptNumber(o.ID) + ".pdf"
	c.Header("Content-Disposition", "attachment; filename="+strconv.Quote(filename))
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}

// AdminGetOrders handles GET /admin/orders
func (h *OrderHandler) AdminGetOrders(c *gin.Context) {
	orders, err := h.orderService.ListAll(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to retrieve orders",
			"data":  orders,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Orders retrieved successfully",
		"data":    orders,
	})
}

// AdminUpdateOrderStatus handles PUT /admin/orders/:id/status
func (h *OrderHandler) AdminUpdateOrderStatus(c *gin.Context) {
	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	updated, err := h.orderService.UpdateStatus(c.Request.Context(), c.Param("id"), order.Status(req.Status))
	if err != nil {
		switch {
		case errors.Is(err, order.ErrInvalidStatus):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, order.ErrOrderNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update order status"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Order status updated successfully",
		"data":    updated,
	})
}

// lookup loads the order named by :id, writing the error response itself
func (h *OrderHandler) lookup(c *gin.Context) (*order.WithItems, bool) {
	userID, _ := middleware.GetUserIDFromContext(c)

	o, err := h.orderService.Get(c.Request.Context(), userID, c.Param("id"), middleware.IsAdminFromContext(c))
	if err != nil {
		if errors.Is(err, order.ErrOrderNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve order"})
		}
		return nil, false
	}
	return o, true
}
