// internal/services/service_test.go
package services

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/bizzyhq/bizzy-backend/internal/config"
	"github.com/bizzyhq/bizzy-backend/internal/database"
	"github.com/bizzyhq/bizzy-backend/internal/models"
)

// setupTestDB opens a throwaway SQLite database with the full schema.
// A file-backed database (not :memory:) so concurrent goroutines in the
// stock tests share one store; busy_timeout makes writers queue instead
// of failing.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)",
		filepath.Join(t.TempDir(), "test.db"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, database.RunMigrations(db))
	return db
}

func createTestUser(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	user := &models.User{
		Name:         "Test Owner",
		Email:        email,
		BusinessName: "Warung Tester",
		Currency:     "IDR",
		Status:       models.UserStatusActive,
	}
	require.NoError(t, user.SetPassword("rahasia-sekali"))
	require.NoError(t, db.Create(user).Error)
	return user
}

func testConfig() *config.Config {
	return &config.Config{
		Environment: "test",
		JWT: config.JWTConfig{
			SecretKey:       "test-secret",
			AccessTokenTTL:  1,
			RefreshTokenTTL: 24,
		},
		Payment: config.PaymentConfig{
			Currency: "IDR",
		},
		Frontend: config.FrontendConfig{
			BaseURL: "http://localhost:3000",
		},
	}
}
