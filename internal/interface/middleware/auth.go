package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/danuarta/identity-service/pkg/helpers"
	"github.com/danuarta/identity-service/pkg/response"
)

// CtxUserIDKey is the Gin context key carrying the authenticated user id.
const CtxUserIDKey = "userID"

// Auth reads the token from the Authorization header, validates signature and
// expiry, and injects the identity id into the context. Clients send the raw
// token; a "Bearer " prefix is tolerated.
func Auth(jwt *helpers.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := strings.TrimSpace(c.GetHeader("Authorization"))
		token = strings.TrimPrefix(token, "Bearer ")
		if token == "" {
			response.Error[any](c, http.StatusUnauthorized, "access denied, no token provided", nil)
			c.Abort()
			return
		}
		claims, err := jwt.ParseToken(token)
		if err != nil {
			response.Error[any](c, http.StatusUnauthorized, "invalid token", nil)
			c.Abort()
			return
		}
		c.Set(CtxUserIDKey, claims.UserID)
		c.Next()
	}
}
