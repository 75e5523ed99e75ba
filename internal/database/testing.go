package database

import (
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/sharanagouda/app-release-tracker/internal/models"
)

// SetupTestDB swaps the global DB for an in-memory sqlite instance and
// returns a cleanup func that restores the previous connection.
func SetupTestDB(t *testing.T) func() {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := db.AutoMigrate(&models.User{}, &models.Release{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	prev := DB
	DB = db

	return func() {
		sqlDB, err := db.DB()
		if err == nil {
			sqlDB.Close()
		}
		DB = prev
	}
}
