package api

import (
	"course_market/internal/config"     // Application configuration
	"course_market/internal/middleware" // Auth middlewares

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"gorm.io/gorm"                 // GORM ORM library
)

// NewRouter builds the Gin engine with all routes registered.
// The /users/purchase and /admin prefixes sit behind the basic-auth gate;
// the admin role is enforced per route because the delete endpoints are
// role-ungated unless cfg.StrictAdminDeletes is set.
func NewRouter(cfg *config.Config, db *gorm.DB, rdb *redis.Client) *gin.Engine {
	r := gin.Default() // Gin router instance

	// Public auth routes
	r.POST("/user/signup", SignupHandler(db)) // Signup endpoint
	r.POST("/user/login", LoginHandler(db))   // Login endpoint

	// Public catalog route
	r.GET("/courses", ListCoursesHandler(db, rdb)) // Course catalog endpoint

	// Purchase routes (protected prefix: every request re-authenticates)
	purchaseGroup := r.Group("/users/purchase")
	purchaseGroup.Use(middleware.BasicAuthMiddleware(db))
	purchaseGroup.GET("", ListPurchasesHandler(db))                        // List purchases endpoint
	purchaseGroup.POST("", AddPurchaseHandler(db))                         // Add purchase endpoint
	purchaseGroup.PUT("", BulkPurchaseHandler(db, cfg.DedupBulkPurchases)) // Bulk purchase endpoint
	purchaseGroup.DELETE("/:courseId", RemovePurchaseHandler(db))          // Remove purchase endpoint

	// Admin routes (protected prefix)
	adminGroup := r.Group("/admin")
	adminGroup.Use(middleware.BasicAuthMiddleware(db))
	adminOnly := middleware.AdminOnlyMiddleware() // Role gate for the admin mutations

	adminGroup.GET("/user", adminOnly, ListUsersHandler(db, rdb))           // List users endpoint
	adminGroup.POST("/courses", adminOnly, CreateCourseHandler(db, rdb))    // Create course endpoint
	adminGroup.PUT("/courses/:id", adminOnly, UpdateCourseHandler(db, rdb)) // Update course endpoint

	// The delete endpoints carry no role check by default, passing only the
	// prefix gate. StrictAdminDeletes closes that gap.
	deleteGuard := func(h gin.HandlerFunc) []gin.HandlerFunc {
		if cfg.StrictAdminDeletes {
			return []gin.HandlerFunc{adminOnly, h}
		}
		return []gin.HandlerFunc{h}
	}
	adminGroup.DELETE("/courses", deleteGuard(DeleteAllCoursesHandler(db, rdb))...) // Delete all courses endpoint
	adminGroup.DELETE("/courses/:id", deleteGuard(DeleteCourseHandler(db, rdb))...) // Delete course endpoint
	adminGroup.DELETE("/user", deleteGuard(DeleteAllUsersHandler(db, rdb))...)      // Delete all users endpoint
	adminGroup.DELETE("/user/:userId", deleteGuard(DeleteUserHandler(db, rdb))...)  // Delete user endpoint

	return r
}
