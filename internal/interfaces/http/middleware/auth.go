// internal/interfaces/http/middleware/auth.go
package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/pkg/auth"
)

const (
	contextUserID  = "user_id"
	contextEmail   = "user_email"
	contextIsAdmin = "is_admin"
)

// AuthMiddleware creates JWT authentication middleware
func AuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	jwtManager := auth.NewJWTManager(cfg)

	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Authorization header required",
			})
			return
		}

		tokenString := auth.ExtractTokenFromHeader(authHeader)
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid authorization header format",
			})
			return
		}

		claims, err := jwtManager.ValidateAccessToken(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid or expired token",
			})
			return
		}

		// Store user information in context
		c.Set(contextUserID, claims.UserID)
		c.Set(contextEmail, claims.Email)
		c.Set(contextIsAdmin, claims.IsAdmin)

		c.Next()
	}
}

// AdminMiddleware ensures the user is an admin
func AdminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := GetUserIDFromContext(c); !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Authentication required",
			})
			return
		}

		if !IsAdminFromContext(c) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": "Admin access required",
			})
			return
		}

		c.Next()
	}
}

// GetUserIDFromContext extracts user ID from gin context
func GetUserIDFromContext(c *gin.Context) (string, bool) {
	userID := c.GetString(contextUserID)
	return userID, userID != ""
}

// IsAdminFromContext checks if user is admin from gin context
func IsAdminFromContext(c *gin.Context) bool {
	return c.GetBool(contextIsAdmin)
}
