package testutils

import (
	"context"
	"testing"
	"time"

	"github.com/nfrund/propdesk/internal/domain"
	"github.com/nfrund/propdesk/internal/sqlstore"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewRepositories returns repositories backed by a fresh in-memory SQLite
// database that is closed when the test ends.
func NewRepositories(t *testing.T) *domain.Repositories {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sqlite handle: %v", err)
	}
	// Every connection to :memory: is a separate database.
	sqlDB.SetMaxOpenConns(1)

	if err := sqlstore.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	repos := sqlstore.NewRepositories(db, 5*time.Second, 5*time.Second)
	t.Cleanup(func() { _ = repos.Close(context.Background()) })
	return repos
}
