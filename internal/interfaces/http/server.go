// internal/interfaces/http/server.go
package http

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/interfaces/http/middleware"
	"github.com/your-org/storefront-backend/internal/interfaces/http/routes"
)

// HealthCheck reports whether a backing service is reachable
type HealthCheck func(ctx context.Context) error

// Server represents the HTTP server
type Server struct {
	config      *config.Config
	gin         *gin.Engine
	httpServer  *http.Server
	services    *routes.Services
	redisClient *redis.Client
	checks      map[string]HealthCheck
	logger      *logrus.Logger
	startedAt   time.Time
}

// NewServer creates a new HTTP server instance. redisClient may be nil, in
// which case requests are not rate limited.
func NewServer(cfg *config.Config, services *routes.Services, redisClient *redis.Client, checks map[string]HealthCheck, logger *logrus.Logger) *Server {
	return &Server{
		config:      cfg,
		services:    services,
		redisClient: redisClient,
		checks:      checks,
		logger:      logger,
		startedAt:   time.Now(),
	}
}

// Handler returns the configured router
func (s *Server) Handler() http.Handler {
	if s.gin == nil {
		s.gin = gin.New()
		if err := s.gin.SetTrustedProxies(s.config.Security.TrustedProxies); err != nil {
			s.logger.WithError(err).Warn("Ignoring invalid trusted proxies")
		}
		s.setupMiddleware()
		s.setupRoutes()
	}
	return s.gin
}

// Start starts the HTTP server
func (s *Server) Start() error {
	// Set Gin mode based on environment
	if s.config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	s.httpServer = &http.Server{
		Addr:         ":" + s.config.Server.Port,
		Handler:      s.Handler(),
		ReadTimeout:  s.config.Server.ReadTimeout,
		WriteTimeout: s.config.Server.WriteTimeout,
		IdleTimeout:  s.config.Server.IdleTimeout,
	}

	log.Printf("🚀 HTTP Server starting on port %s", s.config.Server.Port)
	log.Printf("🌐 API Base URL: http://localhost:%s/api/v1", s.config.Server.Port)
	log.Printf("📊 Health Check: http://localhost:%s/health", s.config.Server.Port)

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}

	return nil
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	log.Println("🛑 Shutting down HTTP server...")

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown HTTP server: %w", err)
	}

	log.Println("✅ HTTP server stopped gracefully")
	return nil
}

// setupMiddleware configures all middleware for the server
func (s *Server) setupMiddleware() {
	s.gin.Use(gin.Recovery())
	s.gin.Use(middleware.RequestID())
	s.gin.Use(middleware.Logger(s.logger))
	s.gin.Use(middleware.CORS(s.config))
	s.gin.Use(middleware.SecurityHeaders(s.config))
	s.gin.Use(middleware.RateLimit(s.config, s.redisClient, s.logger))
	s.gin.Use(middleware.RequestSizeLimit(1 << 20))
	s.gin.Use(middleware.Timeout(s.config.Server.RequestTimeout))
}

// setupRoutes configures all routes for the server
func (s *Server) setupRoutes() {
	s.gin.GET("/health", s.healthCheck)
	s.gin.GET("/ready", s.readinessCheck)

	apiV1 := s.gin.Group("/api/v1")
	routes.SetupRoutes(apiV1, s.services, s.config)

	s.gin.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message":     s.config.App.Name,
			"version":     s.config.App.Version,
			"environment": s.config.App.Environment,
			"health":      "/health",
			"endpoints": gin.H{
				"auth":     "/api/v1/auth",
				"products": "/api/v1/products",
				"cart":     "/api/v1/cart",
				"checkout": "/api/v1/checkout",
				"orders":   "/api/v1/orders",
				"admin":    "/api/v1/admin",
			},
		})
	})
}

// healthCheck handles health check requests
func (s *Server) healthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	for name, check := range s.checks {
		if err := check(ctx); err != nil {
			s.logger.WithError(err).WithField("dependency", name).Warn("Health check failed")
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "unhealthy",
				"error":  name + " ping failed",
			})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"status":      "healthy",
		"timestamp":   time.Now().UTC(),
		"version":     s.config.App.Version,
		"environment": s.config.App.Environment,
	})
}

// readinessCheck handles readiness check requests
func (s *Server) readinessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ready",
		"timestamp": time.Now().UTC(),
		"uptime":    time.Since(s.startedAt).String(),
	})
}
