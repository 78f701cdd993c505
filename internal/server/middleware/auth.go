package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"webstack-ceo/backend/internal/security"
)

const bearerPrefix = "bearer "

// Identity validates the Bearer (access) token from the Authorization header
// and sets user_id and session_id on the request context. Requests without a
// valid token pass through un-identified; use RequireAuth behind this to
// reject them on protected routes. Public routes (track, places, sitemeta)
// read the identity opportunistically.
func Identity(tokens *security.TokenProvider) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractBearer(c.GetHeader("Authorization"))
		if token == "" || tokens == nil {
			c.Next()
			return
		}
		sessionID, userID, err := tokens.ValidateAccess(token)
		if err != nil {
			c.Next()
			return
		}
		c.Request = c.Request.WithContext(WithIdentity(c.Request.Context(), userID, sessionID))
		c.Next()
	}
}

// RequireAuth aborts with 401 when no identity was set by Identity.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := GetUserID(c.Request.Context()); !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid authorization"})
			return
		}
		c.Next()
	}
}

// extractBearer returns the Bearer token from the Authorization header value,
// or "" if missing or malformed.
func extractBearer(header string) string {
	v := strings.TrimSpace(header)
	if len(v) < len(bearerPrefix) {
		return ""
	}
	if !strings.EqualFold(v[:len(bearerPrefix)], bearerPrefix) {
		return ""
	}
	return strings.TrimSpace(v[len(bearerPrefix):])
}
