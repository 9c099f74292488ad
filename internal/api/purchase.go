package api

import (
	"fmt"      // Response message formatting
	"net/http" // HTTP status codes
	"strconv"  // String conversion

	"course_market/internal/domain"     // Importing domain models
	"course_market/internal/middleware" // Request identity accessor

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
	"gorm.io/gorm"               // GORM ORM library
)

// CoursePurchaseRequest represents a single purchase request
type CoursePurchaseRequest struct {
	CourseID uint `json:"CourseId" binding:"required"` // Target course id
}

// ListPurchasesHandler returns the authenticated user's purchased courses
func ListPurchasesHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := middleware.CurrentUser(c) // Identity attached by BasicAuthMiddleware
		// Check if an identity is attached
		if !ok {
			// If not, return a generic problem response
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Invalid credentials"})
			return
		}
		var dbUser domain.User // Re-fetch the user with purchases preloaded
		if err := db.WithContext(c.Request.Context()).Preload("PurchasedCourses").First(&dbUser, user.ID).Error; err != nil {
			// If the user record is gone, return not found
			c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("User with ID %d not found.", user.ID)})
			return
		}
		// An empty purchase list serializes as [], never null
		if dbUser.PurchasedCourses == nil {
			dbUser.PurchasedCourses = []domain.Course{}
		}
		c.JSON(http.StatusOK, dbUser.PurchasedCourses) // Return the purchased-course list
	}
}

// AddPurchaseHandler records a single course purchase for the authenticated user
func AddPurchaseHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := middleware.CurrentUser(c) // Identity attached by BasicAuthMiddleware
		// Check if an identity is attached
		if !ok {
			// If not, return a generic problem response
			c.JSON(http.StatusInternalServerError, gin.H{"error": "User not authenticated."})
			return
		}
		var req CoursePurchaseRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		var dbUser domain.User // Re-fetch the user with purchases preloaded
		if err := db.WithContext(c.Request.Context()).Preload("PurchasedCourses").First(&dbUser, user.ID).Error; err != nil {
			// If the user record is gone, return not found
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found."})
			return
		}
		// The duplicate-link check runs before the course-existence check.
		// A conflict on an unknown course id is therefore impossible, but a
		// duplicate is reported even when the catalog row has since vanished.
		for _, owned := range dbUser.PurchasedCourses {
			if owned.ID == req.CourseID {
				c.JSON(http.StatusConflict, gin.H{"error": "Course already purchased."})
				return
			}
		}
		var course domain.Course // Fetch the course from the catalog
		if err := db.WithContext(c.Request.Context()).First(&course, req.CourseID).Error; err != nil {
			// If the course does not exist, return not found
			c.JSON(http.StatusNotFound, gin.H{"error": "Course not found."})
			return
		}
		// Append the course to the purchase relationship and commit
		if err := db.WithContext(c.Request.Context()).Model(&dbUser).Association("PurchasedCourses").Append(&course); err != nil {
			// Log the error with context
			logrus.WithFields(logrus.Fields{
				"user_id":   dbUser.ID,   // Purchasing user ID
				"course_id": course.ID,   // Target course ID
				"error":     err.Error(), // Error message
			}).Error("Purchase failed") // Log purchase failure
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to purchase course"})
			return
		}
		// Log successful purchase
		logrus.WithFields(logrus.Fields{
			"user_id":   dbUser.ID, // Purchasing user ID
			"course_id": course.ID, // Purchased course ID
		}).Info("Course purchased") // Log purchase success
		c.JSON(http.StatusOK, gin.H{"message": "Course purchased successfully"}) // Return success response
	}
}

// BulkPurchaseHandler appends a batch of courses to the authenticated user's
// purchases. With dedup disabled the batch is appended without a duplicate
// check, so an already-owned course is accepted silently where the single-add
// path would report a conflict. With dedup enabled such a batch is rejected
// with the same conflict as single-add.
func BulkPurchaseHandler(db *gorm.DB, dedup bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := middleware.CurrentUser(c) // Identity attached by BasicAuthMiddleware
		// Check if an identity is attached
		if !ok {
			// If not, return the contract's context-missing message
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found in context. Please ensure you are authenticated."})
			return
		}
		var courseIDs []uint // Bind the bare JSON list of course ids
		if err := c.ShouldBindJSON(&courseIDs); err != nil {
			// If binding fails, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		var dbUser domain.User // Re-fetch the user with purchases preloaded
		if err := db.WithContext(c.Request.Context()).Preload("PurchasedCourses").First(&dbUser, user.ID).Error; err != nil {
			// If the user record is gone, return not found
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found."})
			return
		}
		var courses []domain.Course // Resolve all requested courses
		if err := db.WithContext(c.Request.Context()).Where("id IN ?", courseIDs).Find(&courses).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch courses"})
			return
		}
		// Any unknown (or repeated) id invalidates the whole batch, nothing is written
		if len(courses) != len(courseIDs) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Some of the provided courses are invalid."})
			return
		}
		// With dedup enabled, an owned course in the batch is a conflict
		if dedup {
			owned := make(map[uint]bool, len(dbUser.PurchasedCourses))
			for _, oc := range dbUser.PurchasedCourses {
				owned[oc.ID] = true
			}
			for _, course := range courses {
				if owned[course.ID] {
					c.JSON(http.StatusConflict, gin.H{"error": "Course already purchased."})
					return
				}
			}
		}
		// Append the whole batch to the purchase relationship and commit
		if err := db.WithContext(c.Request.Context()).Model(&dbUser).Association("PurchasedCourses").Append(&courses); err != nil {
			// Log the error with context
			logrus.WithFields(logrus.Fields{
				"user_id":    dbUser.ID,   // Purchasing user ID
				"course_ids": courseIDs,   // Requested course IDs
				"error":      err.Error(), // Error message
			}).Error("Bulk purchase failed") // Log bulk purchase failure
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to purchase courses"})
			return
		}
		// Log successful bulk purchase
		logrus.WithFields(logrus.Fields{
			"user_id":    dbUser.ID, // Purchasing user ID
			"course_ids": courseIDs, // Purchased course IDs
		}).Info("Courses purchased") // Log bulk purchase success
		// Refresh the purchase list before returning the user body
		if err := db.WithContext(c.Request.Context()).Preload("PurchasedCourses").First(&dbUser, dbUser.ID).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch user"})
			return
		}
		c.JSON(http.StatusOK, dbUser) // Return the refreshed user
	}
}

// RemovePurchaseHandler removes a single course from the authenticated user's purchases
func RemovePurchaseHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := middleware.CurrentUser(c) // Identity attached by BasicAuthMiddleware
		// Check if an identity is attached
		if !ok {
			// If not, return unauthorized
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		// Parse the course id path parameter
		courseID, err := strconv.Atoi(c.Param("courseId"))
		if err != nil {
			// If the id is not numeric, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid course id"})
			return
		}
		var dbUser domain.User // Re-fetch the user with purchases preloaded
		if err := db.WithContext(c.Request.Context()).Preload("PurchasedCourses").First(&dbUser, user.ID).Error; err != nil {
			// If the user record is gone, return not found
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found."})
			return
		}
		var target *domain.Course // Find the course in the owned list, removal needs an existing link
		for i := range dbUser.PurchasedCourses {
			if dbUser.PurchasedCourses[i].ID == uint(courseID) {
				target = &dbUser.PurchasedCourses[i]
				break
			}
		}
		// Check if the link exists
		if target == nil {
			// If not, return not found
			c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("Course with ID %d not found in the user's purchased courses.", courseID)})
			return
		}
		// Remove the link from the purchase relationship and commit
		if err := db.WithContext(c.Request.Context()).Model(&dbUser).Association("PurchasedCourses").Delete(target); err != nil {
			// Log the error with context
			logrus.WithFields(logrus.Fields{
				"user_id":   dbUser.ID,   // User ID
				"course_id": courseID,    // Course ID being removed
				"error":     err.Error(), // Error message
			}).Error("Purchase removal failed") // Log removal failure
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove purchase"})
			return
		}
		// Log successful removal
		logrus.WithFields(logrus.Fields{
			"user_id":   dbUser.ID, // User ID
			"course_id": courseID,  // Removed course ID
		}).Info("Purchase removed") // Log removal success
		// Return the contract's removal message
		c.JSON(http.StatusOK, gin.H{"message": fmt.Sprintf("Course with ID %d has been removed from the user's purchased courses.", courseID)})
	}
}
