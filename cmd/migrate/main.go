package main

import (
	"course_market/internal/config" // Custom import path (Config)
	"course_market/internal/db"     // Custom import path (Database)

	"github.com/sirupsen/logrus" // Logging library
	"gorm.io/driver/mysql"       // MySQL driver for GORM
	"gorm.io/gorm"               // GORM ORM library
)

// Main entry point for migration
func main() {
	cfg := config.LoadConfig() // Load configuration

	// Database Source Name (DSN) for MySQL connection
	dsn := cfg.DBUser + ":" + cfg.DBPassword + "@tcp(" + cfg.DBHost + ":" + cfg.DBPort + ")/" + cfg.DBName + "?parseTime=true"
	db.Migrate(dsn)

	// Seed the configured admin account after migration
	conn, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		logrus.Fatalf("failed to connect database: %v", err) // Log fatal error if connection fails
	}
	if err := db.SeedAdmin(conn, cfg.AdminUser, cfg.AdminPass); err != nil {
		logrus.Fatalf("admin seeding failed: %v", err) // Log fatal error if seeding fails
	}
}
