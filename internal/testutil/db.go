// Package testutil holds fixtures shared by the service and handler tests.
package testutil

import (
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/your-org/storefront-backend/internal/infrastructure/database/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// NewDB opens a private in-memory sqlite database and applies the
// production migration and identity indexes to it.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:storefront_" + uuid.NewString() + "?mode=memory&cache=shared&_foreign_keys=on"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql handle: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })

	migration := postgres.NewMigration(db, NullLogger())
	if err := migration.RunAutoMigrations(); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := migration.CreateIndexes(); err != nil {
		t.Fatalf("indexes: %v", err)
	}
	return db
}

// NullLogger returns a logger that drops everything.
func NullLogger() *logrus.Logger {
	logger, _ := test.NewNullLogger()
	return logger
}

// FailInserts makes the next times inserts into table fail with
// gorm.ErrDuplicatedKey, as if a concurrent writer had won the race. When
// winner is set it runs once against db right before the next read of table
// that follows a failed insert, standing in for that writer.
func FailInserts(t *testing.T, db *gorm.DB, table string, times int, winner func(*gorm.DB) error) {
	t.Helper()

	failed, pending := 0, false
	err := db.Callback().Create().Before("gorm:create").Register("testutil:fail_insert_"+table, func(tx *gorm.DB) {
		if tx.Statement.Table != table || failed >= times {
			return
		}
		failed++
		pending = true
		_ = tx.AddError(gorm.ErrDuplicatedKey)
	})
	if err != nil {
		t.Fatalf("register create callback: %v", err)
	}

	err = db.Callback().Query().Before("gorm:query").Register("testutil:insert_winner_"+table, func(tx *gorm.DB) {
		if !pending || winner == nil || tx.Statement.Table != table {
			return
		}
		pending = false
		if err := winner(db.Session(&gorm.Session{NewDB: true, Context: tx.Statement.Context})); err != nil {
			_ = tx.AddError(err)
		}
	})
	if err != nil {
		t.Fatalf("register query callback: %v", err)
	}
}
