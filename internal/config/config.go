package config

import (
	"os"      // For environment variables
	"strconv" // For string to int conversion

	"github.com/joho/godotenv" // For loading .env files
)

// Config holds the application configuration
type Config struct {
	AppPort            string // Application port
	DBUser             string // Database user
	DBPassword         string // Database password
	DBHost             string // Database host
	DBPort             string // Database port
	DBName             string // Database name
	RedisAddr          string // Redis server address
	RedisPass          string // Redis password
	RedisDB            int    // Redis database number
	AdminUser          string // Seed admin username (migration only)
	AdminPass          string // Seed admin password (migration only)
	StrictAdminDeletes bool   // Require the admin role on the bulk/single delete endpoints
	DedupBulkPurchases bool   // Skip already-owned courses on the bulk purchase path
	IsProd             bool   // Is production environment
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	_ = godotenv.Load() // Load .env file if present
	redisDB, _ := strconv.Atoi(os.Getenv("REDIS_DB"))
	return &Config{
		AppPort:            os.Getenv("APP_PORT"),                       // Application port
		DBUser:             os.Getenv("DB_USER"),                        // Database user
		DBPassword:         os.Getenv("DB_PASSWORD"),                    // Database password
		DBHost:             os.Getenv("DB_HOST"),                        // Database host
		DBPort:             os.Getenv("DB_PORT"),                        // Database port
		DBName:             os.Getenv("DB_NAME"),                        // Database name
		RedisAddr:          os.Getenv("REDIS_ADDR"),                     // Redis server address
		RedisPass:          os.Getenv("REDIS_PASS"),                     // Redis password
		RedisDB:            redisDB,                                     // Redis database number
		AdminUser:          os.Getenv("ADMIN_USER"),                     // Seed admin username
		AdminPass:          os.Getenv("ADMIN_PASS"),                     // Seed admin password
		StrictAdminDeletes: os.Getenv("STRICT_ADMIN_DELETES") == "true", // Gate delete endpoints behind the admin role
		DedupBulkPurchases: os.Getenv("DEDUP_BULK_PURCHASES") == "true", // Deduplicate bulk purchases
		IsProd:             os.Getenv("IS_PROD") == "true",              // Is production environment
	}
}
