package middleware

import (
	"net/http" // HTTP status codes

	"github.com/gin-gonic/gin" // Gin web framework
)

// AdminOnlyMiddleware requires the authenticated user to hold the admin role.
// The response body mirrors the original client contract, so a role failure
// is a 400 with an explanatory message rather than a 403.
func AdminOnlyMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c) // Read the identity attached by BasicAuthMiddleware
		// Check if an identity is attached
		if !ok {
			// If not, abort with unauthorized status
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		// Check if user role is admin
		if user.Role != "admin" {
			// If not admin, abort with the contract's bad-request message
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "please login as admin."})
			return
		}
		// If admin, proceed to the next handler
		c.Next()
	}
}
