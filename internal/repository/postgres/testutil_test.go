package postgres

import (
	"errors"
	"os"
	"sync"
	"testing"

	"aiImageStudio/domain"
	"aiImageStudio/pkg/database"

	pgdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

var errMissingDSN = errors.New("missing TEST_POSTGRES_DSN")

var (
	dbOnce sync.Once
	testDB *gorm.DB
	dbErr  error
)

func openTestDB(tb testing.TB) *gorm.DB {
	tb.Helper()

	dbOnce.Do(func() {
		dsn := os.Getenv("TEST_POSTGRES_DSN")
		if dsn == "" {
			dbErr = errMissingDSN
			return
		}

		var err error
		testDB, err = gorm.Open(pgdriver.Open(dsn), &gorm.Config{
			Logger: gormLogger.Default.LogMode(gormLogger.Silent),
		})
		if err != nil {
			dbErr = err
			return
		}
		dbErr = database.Migrate(testDB)
	})

	if errors.Is(dbErr, errMissingDSN) {
		tb.Skip("set TEST_POSTGRES_DSN to run repo integration tests")
	}
	if dbErr != nil {
		tb.Fatalf("failed to init test db: %v", dbErr)
	}
	return testDB
}

// testTx runs each test inside a transaction that is rolled back afterwards.
func testTx(tb testing.TB) *gorm.DB {
	tb.Helper()
	tx := openTestDB(tb).Begin()
	if tx.Error != nil {
		tb.Fatalf("begin tx: %v", tx.Error)
	}
	tb.Cleanup(func() {
		_ = tx.Rollback().Error
	})
	return tx
}

func seedCandidate(tb testing.TB, db *gorm.DB, c *domain.Candidate) {
	tb.Helper()
	if err := db.Create(c).Error; err != nil {
		tb.Fatalf("seed candidate: %v", err)
	}
}

// recentEvents returns a user's audit rows, newest first.
func recentEvents(tb testing.TB, db *gorm.DB, userID uint, limit int) []domain.InteractionEvent {
	tb.Helper()
	var events []domain.InteractionEvent
	err := db.Where("user_id = ?", userID).
		Order("occurred_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&events).Error
	if err != nil {
		tb.Fatalf("list events: %v", err)
	}
	return events
}
