package api

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/dyluth/pixellar/internal/auth"
	"github.com/gin-gonic/gin"
)

// BearerToken copies an "Authorization: Bearer <token>" header onto the request
// context. It never rejects a request: the store's authorizer decides whether the
// token proves anything.
func BearerToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		if token, ok := extractToken(c.GetHeader("Authorization")); ok {
			c.Request = c.Request.WithContext(auth.WithToken(c.Request.Context(), token))
		}
		c.Next()
	}
}

// AdminToken guards deployment-time routes. An empty token disables the check.
func AdminToken(token string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token == "" {
			c.Next()
			return
		}

		got, _ := extractToken(c.GetHeader("Authorization"))
		if subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
			ErrorResponse(c, http.StatusUnauthorized, "unauthorized", "admin token required")
			c.Abort()
			return
		}
		c.Next()
	}
}

func extractToken(header string) (string, bool) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}
