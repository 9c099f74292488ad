package db

import (
	"course_market/internal/domain" // Importing domain models

	"github.com/sirupsen/logrus" // Logging library

	"golang.org/x/crypto/bcrypt" // Seed password hashing
	"gorm.io/driver/mysql"       // MySQL driver for GORM
	"gorm.io/gorm"               // GORM ORM library
)

// Migrate performs automatic migration for the database schema
func Migrate(dsn string) {
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{}) // Open a connection to the database
	if err != nil {
		logrus.Fatalf("failed to connect database: %v", err) // Log fatal error if connection fails
	}
	// AutoMigrate will create tables, the purchased_courses join table, constraints and indexes
	err = db.AutoMigrate(&domain.User{}, &domain.Course{})
	if err != nil {
		logrus.Fatalf("migration failed: %v", err) // Log fatal error if migration fails
	}
	logrus.Info("Migration completed.") // Log successful migration
}

// SeedAdmin creates an admin account when none exists under the given
// username, so a fresh deployment can manage the catalog
func SeedAdmin(db *gorm.DB, username, password string) error {
	if username == "" || password == "" {
		return nil // No seed configured
	}
	var existing domain.User
	// Skip seeding when the account already exists
	if err := db.Where("username = ?", username).First(&existing).Error; err == nil {
		return nil
	}
	// Hash the seed password
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	admin := domain.User{Username: username, Password: string(hash), Role: "admin"} // Seed admin account
	if err := db.Create(&admin).Error; err != nil {
		return err // Return error if creation fails
	}
	logrus.WithField("username", username).Info("Admin account seeded") // Log successful seed
	return nil
}
