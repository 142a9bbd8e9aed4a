// internal/interfaces/http/handlers/product.go
package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/your-org/storefront-backend/internal/domain/product"
)

// ProductHandler handles product endpoints
type ProductHandler struct {
	productService *product.Service
}

// NewProductHandler creates a new product handler
func NewProductHandler(products *product.Service) *ProductHandler {
	return &ProductHandler{productService: products}
}

// GetProducts handles GET /products with optional ?featured=true, ?category= or ?q=
func (h *ProductHandler) GetProducts(c *gin.Context) {
	ctx := c.Request.Context()

	var products []product.Product
	featured, _ := strconv.ParseBool(c.Query("featured"))
	switch {
	case featured:
		products = h.productService.GetFeatured(ctx)
	case c.Query("category") != "":
		products = h.productService.GetByCategory(ctx, c.Query("category"))
	case c.Query("q") != "":
		products = h.productService.Search(ctx, c.Query("q"))
	default:
		products = h.productService.GetAll(ctx)
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Products retrieved successfully",
		"data":    products,
	})
}

// GetProduct handles GET /products/:id
func (h *ProductHandler) GetProduct(c *gin.Context) {
	p, found := h.productService.GetByID(c.Request.Context(), c.Param("id"))
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Product retrieved successfully",
		"data":    p,
	})
}

// AdminCreateProduct handles POST /admin/products
func (h *ProductHandler) AdminCreateProduct(c *gin.Context) {
	var req product.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	p, err := h.productService.Create(c.Request.Context(), &req)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Product created successfully",
		"data":    p,
	})
}

// AdminUpdateProduct handles PUT /admin/products/:id
func (h *ProductHandler) AdminUpdateProduct(c *gin.Context) {
	var req product.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	p, err := h.productService.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Product updated successfully",
		"data":    p,
	})
}

// AdminDeleteProduct handles DELETE /admin/products/:id
func (h *ProductHandler) AdminDeleteProduct(c *gin.Context) {
	if err := h.productService.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Product deleted successfully"})
}

func (h *ProductHandler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, product.ErrInvalidProduct):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, product.ErrProductNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save product"})
	}
}
