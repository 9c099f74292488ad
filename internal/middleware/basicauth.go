package middleware

import (
	"course_market/internal/domain" // Importing domain models
	"net/http"                      // HTTP status codes

	"github.com/gin-gonic/gin"   // Gin web framework
	"golang.org/x/crypto/bcrypt" // Password hash comparison
	"gorm.io/gorm"               // GORM ORM library
)

// UserContextKey is the context key under which the authenticated user is stored
const UserContextKey = "user"

// BasicAuthMiddleware re-authenticates every request from the Basic credential header
// and attaches the resolved user to the request context
func BasicAuthMiddleware(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		username, password, ok := c.Request.BasicAuth() // Decode the Authorization: Basic header
		// Check if the header was present and well-formed
		if !ok {
			// If not, abort with unauthorized status
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
			return
		}
		var user domain.User // Fetch user from database by username
		if err := db.WithContext(c.Request.Context()).Where("username = ?", username).First(&user).Error; err != nil {
			// Unknown username: same response as a bad password so callers cannot tell which was wrong
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
			return
		}
		// Compare the supplied password with the stored hash
		if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
			return
		}
		c.Set(UserContextKey, &user) // Attach the resolved user to the request context
		c.Next()                     // Proceed to the next handler
	}
}

// CurrentUser returns the authenticated user attached by BasicAuthMiddleware
func CurrentUser(c *gin.Context) (*domain.User, bool) {
	v, exists := c.Get(UserContextKey) // Get the stored identity from context
	if !exists {
		return nil, false // No identity attached
	}
	user, ok := v.(*domain.User) // Typed identity, never an untyped map entry
	return user, ok
}
