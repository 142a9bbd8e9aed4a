// internal/interfaces/http/middleware/cors.go
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/your-org/storefront-backend/internal/config"
)

// CORS returns a middleware that handles Cross-Origin Resource Sharing
func CORS(cfg *config.Config) gin.HandlerFunc {
	methods := strings.Join(cfg.Security.CORSAllowedMethods, ", ")
	headers := strings.Join(cfg.Security.CORSAllowedHeaders, ", ")

	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")

		c.Header("Vary", "Origin")
		if origin != "" && isOriginAllowed(origin, cfg.Security.CORSAllowedOrigins) {
			c.Header("Access-Control-Allow-Origin", origin)
			// The storefront relies on the session cookie
			c.Header("Access-Control-Allow-Credentials", "true")
		}

		c.Header("Access-Control-Allow-Methods", methods)
		c.Header("Access-Control-Allow-Headers", headers)
		c.Header("Access-Control-Max-Age", "86400")

		// Handle preflight requests
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// isOriginAllowed checks if the origin is in the allowed list
func isOriginAllowed(origin string, allowedOrigins []string) bool {
	for _, allowed := range allowedOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
		// *.example.com matches subdomains only
		if domain, ok := strings.CutPrefix(allowed, "*"); ok && strings.HasPrefix(domain, ".") {
			if strings.HasSuffix(origin, domain) {
				return true
			}
		}
	}
	return false
}
