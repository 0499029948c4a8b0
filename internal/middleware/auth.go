package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/pasetolabs/paseto-api/internal/paseto"
)

const (
	ContextUserID   = "user_id"
	ContextUsername = "username"
	ContextRole     = "role"

	// RoleUser is the single capability bound to every authenticated caller.
	RoleUser = "user"
)

// AuthRequired validates the Bearer access token and binds the caller's
// identity into the request context. Every failure answers 401 with a short
// generic message and leaves no identity values behind.
func AuthRequired(tokens *paseto.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			unauthorized(c, "authentication token is missing, please login")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			unauthorized(c, "invalid authorization header format")
			return
		}

		claims, err := tokens.ValidateAccessToken(parts[1])
		if err != nil {
			unauthorized(c, "invalid or expired token, please login again")
			return
		}

		userID, err := strconv.ParseUint(claims.Subject, 10, 32)
		if err != nil {
			unauthorized(c, "invalid or expired token, please login again")
			return
		}

		c.Set(ContextUserID, uint(userID))
		c.Set(ContextUsername, claims.Username)
		c.Set(ContextRole, RoleUser)

		c.Next()
	}
}

func unauthorized(c *gin.Context, msg string) {
	c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": msg})
	c.Abort()
}

// GetUserID gets the current user ID from context
func GetUserID(c *gin.Context) uint {
	if id, exists := c.Get(ContextUserID); exists {
		return id.(uint)
	}
	return 0
}

// GetUsername gets the current username from context
func GetUsername(c *gin.Context) string {
	if username, exists := c.Get(ContextUsername); exists {
		return username.(string)
	}
	return ""
}
