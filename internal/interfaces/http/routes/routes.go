// internal/interfaces/http/routes/routes.go
package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/cart"
	"github.com/your-org/storefront-backend/internal/domain/order"
	"github.com/your-org/storefront-backend/internal/domain/product"
	"github.com/your-org/storefront-backend/internal/domain/user"
	"github.com/your-org/storefront-backend/internal/interfaces/http/handlers"
	"github.com/your-org/storefront-backend/internal/interfaces/http/middleware"
)

// Services are the domain services the API exposes
type Services struct {
	Products *product.Service
	Carts    *cart.Service
	Orders   *order.Service
	Users    *user.Service
	Receipts handlers.ReceiptGenerator
}

// SetupRoutes registers every API route on rg
func SetupRoutes(rg *gin.RouterGroup, svc *Services, cfg *config.Config) {
	SetupAuthRoutes(rg, svc, cfg)
	SetupProductRoutes(rg, svc)
	SetupCartRoutes(rg, svc, cfg)
	SetupOrderRoutes(rg, svc, cfg)
	SetupAdminRoutes(rg, svc, cfg)
}

// SetupAuthRoutes sets up authentication related routes
func SetupAuthRoutes(rg *gin.RouterGroup, svc *Services, cfg *config.Config) {
	authHandler := handlers.NewAuthHandler(svc.Users)

	auth := rg.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)

		protected := auth.Group("")
		protected.Use(middleware.AuthMiddleware(cfg))
		{
			protected.POST("/logout", authHandler.Logout)
			protected.GET("/me", authHandler.Me)
		}
	}
}

// SetupProductRoutes sets up the public catalogue routes
func SetupProductRoutes(rg *gin.RouterGroup, svc *Services) {
	productHandler := handlers.NewProductHandler(svc.Products)

	products := rg.Group("/products")
	{
		products.GET("", productHandler.GetProducts)
		products.GET("/:id", productHandler.GetProduct)
	}
}

// SetupCartRoutes sets up the session cart routes. No login is needed.
func SetupCartRoutes(rg *gin.RouterGroup, svc *Services, cfg *config.Config) {
	cartHandler := handlers.NewCartHandler(svc.Carts, svc.Products, cfg)

	carts := rg.Group("/cart")
	{
		carts.GET("", cartHandler.GetCart)
		carts.DELETE("", cartHandler.ClearCart)
		carts.POST("/items", cartHandler.AddToCart)
		carts.PUT("/items/:id", cartHandler.UpdateCartItem)
		carts.DELETE("/items/:id", cartHandler.RemoveFromCart)
	}
}

// SetupOrderRoutes sets up checkout and order history routes
func SetupOrderRoutes(rg *gin.RouterGroup, svc *Services, cfg *config.Config) {
	checkoutHandler := handlers.NewCheckoutHandler(svc.Orders, svc.Carts, cfg)
	orderHandler := handlers.NewOrderHandler(svc.Orders, svc.Products, svc.Receipts)

	rg.POST("/checkout", middleware.AuthMiddleware(cfg), checkoutHandler.Checkout)

	orders := rg.Group("/orders")
	orders.Use(middleware.AuthMiddleware(cfg))
	{
		orders.GET("", orderHandler.GetOrders)
		orders.GET("/:id", orderHandler.GetOrder)
		orders.GET("/:id/receipt", orderHandler.DownloadReceipt)
	}
}

// SetupAdminRoutes sets up admin routes
func SetupAdminRoutes(rg *gin.RouterGroup, svc *Services, cfg *config.Config) {
	productHandler := handlers.NewProductHandler(svc.Products)
	orderHandler := handlers.NewOrderHandler(svc.Orders, svc.Products, svc.Receipts)

	admin := rg.Group("/admin")
	admin.Use(middleware.AuthMiddleware(cfg)) // Require authentication
	admin.Use(middleware.AdminMiddleware())   // Require admin privileges
	{
		products := admin.Group("/products")
		{
			products.POST("", productHandler.AdminCreateProduct)
			products.PUT("/:id", productHandler.AdminUpdateProduct)
			products.DELETE("/:id", productHandler.AdminDeleteProduct)
		}

		orders := admin.Group("/orders")
		{
			orders.GET("", orderHandler.AdminGetOrders)
			orders.PUT("/:id/status", orderHandler.AdminUpdateOrderStatus)
		}
	}
}
