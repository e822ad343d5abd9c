package middleware

import (
	"net/http"
	"strings"

	"settisfy/utils"

	"github.com/gin-gonic/gin"
)

// AuthMiddleware validates the bearer token and installs the session
// identity (userID, role) on the request context. Every lifecycle action
// reads the acting user from here, never from the request body.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			utils.JSONError(c, http.StatusUnauthorized, "Missing Authorization header", "")
			c.Abort()
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			utils.JSONError(c, http.StatusUnauthorized, "Invalid Authorization header format", "")
			c.Abort()
			return
		}

		userID, role, err := utils.ExtractSessionFromToken(tokenString)
		if err != nil {
			utils.JSONError(c, http.StatusUnauthorized, "Invalid or expired token", err.Error())
			c.Abort()
			return
		}

		c.Set("userID", userID)
		c.Set("role", role)
		c.Next()
	}
}

// RequireRole aborts unless the session carries one of the given roles.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString("role")
		for _, r := range roles {
			if role == r {
				c.Next()
				return
			}
		}
		utils.JSONError(c, http.StatusForbidden, "Insufficient permissions", "")
		c.Abort()
	}
}
