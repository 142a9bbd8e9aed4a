// internal/interfaces/http/middleware/request_id.go
package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	requestIDKey    = "request_id"
	requestIDHeader = "X-Request-ID"
)

// RequestID tags every request with an id, reusing a well-formed incoming one
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}

		c.Set(requestIDKey, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}
