package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
)

var clientIPKey = contextKey{"client_ip"}

// ClientIP stores gin's resolved client IP on the request context so
// non-HTTP layers (audit, services) can read it without a *gin.Context.
func ClientIP() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := context.WithValue(c.Request.Context(), clientIPKey, c.ClientIP())
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// GetClientIP returns the client IP from context, or "" if not set.
func GetClientIP(ctx context.Context) string {
	v, _ := ctx.Value(clientIPKey).(string)
	return v
}
