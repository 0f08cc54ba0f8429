package middleware

import "github.com/gin-gonic/gin"

const (
	// userIDKey holds the authenticated subject.
	userIDKey = contextKey("userID")
	// roleKey holds the role claim of the token.
	roleKey = contextKey("role")
)

// RoleAdmin is the role claim allowed to change the commission schedule and adjust balances.
const RoleAdmin = "admin"

// GetUserIDFromContext retrieves the authenticated user ID from the request context.
func GetUserIDFromContext(c *gin.Context) (string, bool) {
	userID, ok := c.Request.Context().Value(userIDKey).(string)
	if !ok || userID == "" {
		return "", false
	}
	return userID, true
}

// GetRoleFromContext retrieves the role claim of the authenticated caller.
func GetRoleFromContext(c *gin.Context) string {
	role, _ := c.Request.Context().Value(roleKey).(string)
	return role
}
