package api

import (
	"fmt"      // Response message formatting
	"net/http" // HTTP status codes
	"strconv"  // String conversion
	"strings"  // Blank-field checks

	"course_market/internal/domain" // Importing domain models
	"course_market/internal/utils"  // Cache helpers

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logging library
	"gorm.io/gorm"                 // GORM ORM library
	"gorm.io/gorm/clause"          // Association-aware deletes
)

// UserAdminResponse represents the user data returned to admin
type UserAdminResponse struct {
	ID       uint   `json:"id"`       // User ID
	Username string `json:"username"` // Username
	Role     string `json:"role"`     // User role
}

// CourseRequest represents a course create/update payload
type CourseRequest struct {
	Title       string  `json:"title"`       // Course title
	Description string  `json:"description"` // Course description
	Price       float64 `json:"price"`       // Course price
}

// ListUsersHandler returns all users without credential material
func ListUsersHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context() // Request context for store and cache calls
		var resp []UserAdminResponse
		// Try the cached listing first
		found, err := utils.GetCache(ctx, rdb, utils.UserListCacheKey, &resp)
		if err == nil && found {
			c.JSON(http.StatusOK, resp) // Return the cached listing
			return
		}
		var users []domain.User // Fetch all users
		if err := db.WithContext(ctx).Find(&users).Error; err != nil {
			// If fetching fails, return internal server error
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch users"})
			return
		}
		// Map users to the admin response shape
		resp = make([]UserAdminResponse, len(users))
		for i, u := range users {
			resp[i] = UserAdminResponse{
				ID:       u.ID,       // User ID
				Username: u.Username, // Username
				Role:     u.Role,     // User role
			}
		}
		// Cache the listing, invalidated by user deletes
		_ = utils.SetCache(ctx, rdb, utils.UserListCacheKey, resp, utils.CacheTTL)
		c.JSON(http.StatusOK, resp) // Return the listing
	}
}

// CreateCourseHandler inserts a new course into the catalog
func CreateCourseHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CourseRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		ctx := c.Request.Context() // Request context for store and cache calls
		// The duplicate-title check runs before field validation, and a
		// duplicate is a success-shaped message rather than an error.
		var existing domain.Course
		if err := db.WithContext(ctx).Where("title = ?", req.Title).First(&existing).Error; err == nil {
			c.JSON(http.StatusOK, gin.H{"message": "Course Already exists"})
			return
		}
		// Title and description must be non-blank
		if strings.TrimSpace(req.Title) == "" || strings.TrimSpace(req.Description) == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Title and Description are required."})
			return
		}
		// Price must be strictly positive
		if req.Price <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Price must be a positive value."})
			return
		}
		course := domain.Course{Title: req.Title, Description: req.Description, Price: req.Price}
		// Insert the course into the catalog
		if err := db.WithContext(ctx).Create(&course).Error; err != nil {
			// Log the error with context
			logrus.WithFields(logrus.Fields{
				"title": req.Title,   // Requested course title
				"error": err.Error(), // Error message
			}).Error("Course creation failed") // Log creation failure
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create course"})
			return
		}
		// Log successful creation
		logrus.WithFields(logrus.Fields{
			"course_id": course.ID,    // New course ID
			"title":     course.Title, // Course title
		}).Info("Course created") // Log creation success
		_ = utils.DeleteCache(ctx, rdb, utils.CourseListCacheKey)      // Invalidate the catalog cache
		c.Header("Location", "/courses/"+strconv.Itoa(int(course.ID))) // Location of the created course
		c.JSON(http.StatusCreated, course)                             // Return the created course
	}
}

// UpdateCourseHandler applies field updates to an existing course
func UpdateCourseHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Parse the course id path parameter
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			// If the id is not numeric, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid course id"})
			return
		}
		var req CourseRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		ctx := c.Request.Context() // Request context for store and cache calls
		var existing domain.Course // Find the course by id
		if err := db.WithContext(ctx).First(&existing, id).Error; err != nil {
			// If the course does not exist, return not found
			c.JSON(http.StatusNotFound, gin.H{"message": "Course not found."})
			return
		}
		// Title and description must be non-blank
		if strings.TrimSpace(req.Title) == "" || strings.TrimSpace(req.Description) == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Title and Description are required."})
			return
		}
		// Price must be strictly positive
		if req.Price <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Price must be a positive value."})
			return
		}
		// A changed title must stay unique across the catalog. Unlike the
		// create path this duplicate is a plain bad request.
		if req.Title != existing.Title {
			var count int64
			if err := db.WithContext(ctx).Model(&domain.Course{}).Where("title = ?", req.Title).Count(&count).Error; err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check course title"})
				return
			}
			if count > 0 {
				c.JSON(http.StatusBadRequest, gin.H{"message": "Course with this title already exists."})
				return
			}
		}
		// Apply field updates in place
		existing.Title = req.Title
		existing.Description = req.Description
		existing.Price = req.Price
		// Commit the update
		if err := db.WithContext(ctx).Save(&existing).Error; err != nil {
			// Log the error with context
			logrus.WithFields(logrus.Fields{
				"course_id": id,          // Target course ID
				"error":     err.Error(), // Error message
			}).Error("Course update failed") // Log update failure
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update course"})
			return
		}
		// Log successful update
		logrus.WithFields(logrus.Fields{
			"course_id": existing.ID,    // Updated course ID
			"title":     existing.Title, // Course title
		}).Info("Course updated") // Log update success
		_ = utils.DeleteCache(ctx, rdb, utils.CourseListCacheKey) // Invalidate the catalog cache
		c.JSON(http.StatusOK, existing)                           // Return the updated course
	}
}

// DeleteAllCoursesHandler removes every course from the catalog
func DeleteAllCoursesHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()  // Request context for store and cache calls
		var courses []domain.Course // Fetch all courses
		if err := db.WithContext(ctx).Find(&courses).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch courses"})
			return
		}
		// Check that the catalog is non-empty
		if len(courses) == 0 {
			// If empty, return not found
			c.JSON(http.StatusNotFound, gin.H{"error": "No courses found to delete."})
			return
		}
		// Remove every course, clearing its purchase links as well
		for _, course := range courses {
			if err := db.WithContext(ctx).Select(clause.Associations).Delete(&course).Error; err != nil {
				// Log the error with context
				logrus.WithFields(logrus.Fields{
					"course_id": course.ID,   // Course ID being removed
					"error":     err.Error(), // Error message
				}).Error("Course deletion failed") // Log deletion failure
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete courses"})
				return
			}
		}
		// Log successful bulk deletion
		logrus.WithField("count", len(courses)).Info("All courses deleted")
		_ = utils.DeleteCache(ctx, rdb, utils.CourseListCacheKey) // Invalidate the catalog cache
		// Return success response
		c.JSON(http.StatusOK, gin.H{"message": "All courses have been deleted successfully."})
	}
}

// DeleteCourseHandler removes a single course by id
func DeleteCourseHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Parse the course id path parameter
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			// If the id is not numeric, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid course id"})
			return
		}
		ctx := c.Request.Context() // Request context for store and cache calls
		var course domain.Course   // Find the course by id
		if err := db.WithContext(ctx).First(&course, id).Error; err != nil {
			// If the course does not exist, return not found
			c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("Course with ID %d not found.", id)})
			return
		}
		// Remove the course, clearing its purchase links as well
		if err := db.WithContext(ctx).Select(clause.Associations).Delete(&course).Error; err != nil {
			// Log the error with context
			logrus.WithFields(logrus.Fields{
				"course_id": id,          // Course ID being removed
				"error":     err.Error(), // Error message
			}).Error("Course deletion failed") // Log deletion failure
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete course"})
			return
		}
		// Log successful deletion
		logrus.WithField("course_id", id).Info("Course deleted")
		_ = utils.DeleteCache(ctx, rdb, utils.CourseListCacheKey) // Invalidate the catalog cache
		// Return the contract's deletion message
		c.JSON(http.StatusOK, gin.H{"message": fmt.Sprintf("Course with ID %d has been deleted.", id)})
	}
}

// DeleteAllUsersHandler removes every user account
func DeleteAllUsersHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context() // Request context for store and cache calls
		var users []domain.User    // Fetch all users
		if err := db.WithContext(ctx).Find(&users).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch users"})
			return
		}
		// Check that there are users to delete
		if len(users) == 0 {
			// If none, return not found
			c.JSON(http.StatusNotFound, gin.H{"error": "No users found to delete."})
			return
		}
		// Remove every user, clearing their purchase links as well
		for _, user := range users {
			if err := db.WithContext(ctx).Select(clause.Associations).Delete(&user).Error; err != nil {
				// Log the error with context
				logrus.WithFields(logrus.Fields{
					"user_id": user.ID,     // User ID being removed
					"error":   err.Error(), // Error message
				}).Error("User deletion failed") // Log deletion failure
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete users"})
				return
			}
		}
		// Log successful bulk deletion
		logrus.WithField("count", len(users)).Info("All users deleted")
		_ = utils.DeleteCache(ctx, rdb, utils.UserListCacheKey) // Invalidate the user listing cache
		// Return success response
		c.JSON(http.StatusOK, gin.H{"message": "All users have been deleted."})
	}
}

// DeleteUserHandler removes a single user by id
func DeleteUserHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Parse the user id path parameter
		id, err := strconv.Atoi(c.Param("userId"))
		if err != nil {
			// If the id is not numeric, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user id"})
			return
		}
		ctx := c.Request.Context() // Request context for store and cache calls
		var user domain.User       // Find the user by id
		if err := db.WithContext(ctx).First(&user, id).Error; err != nil {
			// If the user does not exist, return not found
			c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("User with ID %d not found.", id)})
			return
		}
		// Remove the user, clearing their purchase links as well
		if err := db.WithContext(ctx).Select(clause.Associations).Delete(&user).Error; err != nil {
			// Log the error with context
			logrus.WithFields(logrus.Fields{
				"user_id": id,          // User ID being removed
				"error":   err.Error(), // Error message
			}).Error("User deletion failed") // Log deletion failure
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete user"})
			return
		}
		// Log successful deletion
		logrus.WithField("user_id", id).Info("User deleted")
		_ = utils.DeleteCache(ctx, rdb, utils.UserListCacheKey) // Invalidate the user listing cache
		// Return the contract's deletion message
		c.JSON(http.StatusOK, gin.H{"message": fmt.Sprintf("User with ID %d has been deleted.", id)})
	}
}
