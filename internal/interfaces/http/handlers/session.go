// internal/interfaces/http/handlers/session.go
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/pkg/ident"
)

// getOrCreateSessionID returns the cart session of the caller, issuing a
// new cookie when the request has none or carries a malformed one
func getOrCreateSessionID(c *gin.Context, cfg *config.Config) string {
	if sessionID, err := c.Cookie(cfg.Cart.SessionCookie); err == nil && ident.IsCanonical(sessionID) {
		return sessionID
	}

	sessionID := uuid.New().String()
	c.SetCookie(cfg.Cart.SessionCookie, sessionID, cfg.Cart.SessionMaxAge, "/", "", cfg.Cart.SecureCookie, true)
	return sessionID
}
