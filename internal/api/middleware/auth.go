package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rbxbridge/rbxbridge/internal/crypto"
	"github.com/rbxbridge/rbxbridge/internal/wire"
)

const editorKey = "editor"

// AuthMiddleware validates editor JWTs. A nil manager disables auth.
//
// The token is read from "Authorization: Bearer <token>", or from the token
// query parameter for websocket clients that cannot set headers.
func AuthMiddleware(jwtManager *crypto.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if jwtManager == nil {
			c.Next()
			return
		}

		token := c.Query("token")
		if authHeader := c.GetHeader("Authorization"); authHeader != "" {
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || parts[0] != "Bearer" {
				c.AbortWithStatusJSON(http.StatusUnauthorized, wire.ErrorResponse{Error: "invalid authorization header format"})
				return
			}
			token = parts[1]
		}
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, wire.ErrorResponse{Error: "missing authorization header"})
			return
		}

		claims, err := jwtManager.VerifyToken(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, wire.ErrorResponse{Error: "invalid token"})
			return
		}

		c.Set(editorKey, claims.Editor)
		c.Next()
	}
}

// GetEditor returns the editor name from a verified token.
func GetEditor(c *gin.Context) (string, bool) {
	editor, exists := c.Get(editorKey)
	if !exists {
		return "", false
	}
	name, ok := editor.(string)
	return name, ok
}
