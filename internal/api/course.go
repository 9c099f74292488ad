package api

import (
	"net/http" // HTTP status codes

	"course_market/internal/domain" // Importing domain models
	"course_market/internal/utils"  // Cache helpers

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"gorm.io/gorm"                 // GORM ORM library
)

// ListCoursesHandler returns the full public course catalog
func ListCoursesHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context() // Request context for store and cache calls
		var courses []domain.Course
		// Try the cached catalog first
		found, err := utils.GetCache(ctx, rdb, utils.CourseListCacheKey, &courses)
		if err == nil && found {
			c.JSON(http.StatusOK, courses) // Return the cached catalog
			return
		}
		// Not cached, fetch the catalog from the database
		if err := db.WithContext(ctx).Find(&courses).Error; err != nil {
			// If fetching fails, return internal server error
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch courses"})
			return
		}
		// An empty catalog serializes as [], never null
		if courses == nil {
			courses = []domain.Course{}
		}
		// Cache the catalog, invalidated by every admin catalog write
		_ = utils.SetCache(ctx, rdb, utils.CourseListCacheKey, courses, utils.CacheTTL)
		c.JSON(http.StatusOK, courses) // Return the catalog
	}
}
