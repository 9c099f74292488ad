package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"course_market/internal/config"
	"course_market/internal/domain"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB opens a per-test in-memory sqlite database with the schema migrated
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	// A named shared-cache DSN keeps the in-memory database alive across pool connections
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err, "failed to open test database")
	require.NoError(t, db.AutoMigrate(&domain.User{}, &domain.Course{}), "failed to migrate test schema")
	return db
}

// setupTestRedis starts an in-process redis and returns a client bound to it
func setupTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	return redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

// setupRouter assembles the full engine over fresh test stores
func setupRouter(t *testing.T, cfg *config.Config) (*gin.Engine, *gorm.DB, *redis.Client) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	if cfg == nil {
		cfg = &config.Config{}
	}
	db := setupTestDB(t)
	rdb := setupTestRedis(t)
	return NewRouter(cfg, db, rdb), db, rdb
}

// createUser inserts a user with a bcrypt-hashed password
func createUser(t *testing.T, db *gorm.DB, username, password, role string) domain.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	require.NoError(t, err)
	user := domain.User{Username: username, Password: string(hash), Role: role}
	require.NoError(t, db.Create(&user).Error)
	return user
}

// createCourse inserts a catalog course directly
func createCourse(t *testing.T, db *gorm.DB, title, description string, price float64) domain.Course {
	t.Helper()
	course := domain.Course{Title: title, Description: description, Price: price}
	require.NoError(t, db.Create(&course).Error)
	return course
}

// doJSON performs a request with an optional JSON body and optional basic-auth credentials
func doJSON(t *testing.T, r *gin.Engine, method, path string, body any, username, password string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if username != "" {
		req.SetBasicAuth(username, password)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}
