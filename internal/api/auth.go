package api

import (
	"net/http" // HTTP status codes
	"strconv"  // String conversion

	"course_market/internal/domain" // Importing domain models

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
	"golang.org/x/crypto/bcrypt" // Password hashing
	"gorm.io/gorm"               // GORM ORM library
)

// SignupRequest represents a signup request
type SignupRequest struct {
	Username string `json:"username" binding:"required"` // Username must be provided
	Password string `json:"password" binding:"required"` // Password must be provided
}

// LoginRequest represents a login request
type LoginRequest struct {
	Username string `json:"username" binding:"required"` // Username must be provided
	Password string `json:"password" binding:"required"` // Password must be provided
}

// SignupHandler creates a new user account
func SignupHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req SignupRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		var existing domain.User // Check whether the username is already taken
		if err := db.WithContext(c.Request.Context()).Where("username = ?", req.Username).First(&existing).Error; err == nil {
			// Duplicate username is checked before anything else, matching the original contract
			c.JSON(http.StatusBadRequest, gin.H{"error": "Username already exists. Please log in."})
			return
		}
		// Hash the password before storing it
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			// If hashing fails, return internal server error
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
			return
		}
		user := domain.User{Username: req.Username, Password: string(hash)} // New user, role defaults to "user"
		// Attempt to create the user in the database
		if err := db.WithContext(c.Request.Context()).Create(&user).Error; err != nil {
			// Log the error with context
			logrus.WithFields(logrus.Fields{
				"username": req.Username, // Requested username
				"error":    err.Error(),  // Error message
			}).Error("Signup failed") // Log signup failure
			// A race on the unique index surfaces here as well
			c.JSON(http.StatusBadRequest, gin.H{"error": "Username already exists. Please log in."})
			return
		}
		// Log successful signup
		logrus.WithFields(logrus.Fields{
			"user_id":  user.ID,       // New user ID
			"username": user.Username, // Username
		}).Info("User signed up") // Log signup success
		c.Header("Location", "/user/"+strconv.Itoa(int(user.ID))) // Location of the created user
		c.JSON(http.StatusCreated, user)                          // Return the created user, password omitted by the model
	}
}

// LoginHandler validates a credential pair and returns the account summary
func LoginHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		var user domain.User // Fetch user from database
		if err := db.WithContext(c.Request.Context()).Where("username = ?", req.Username).First(&user).Error; err != nil {
			// Unknown username: same message as a password mismatch
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid username or password."})
			return
		}
		// Compare provided password with stored hash
		if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid username or password."})
			return
		}
		// Return the account summary, no token and no session: every request re-authenticates
		c.JSON(http.StatusOK, gin.H{
			"message":  "Login successful", // Success message
			"username": user.Username,      // Username
			"role":     user.Role,          // User role
		})
	}
}
