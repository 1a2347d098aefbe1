// Package dbtest opens throwaway sqlite databases for package tests.
package dbtest

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"table-order-api/config"
	"table-order-api/seed"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	AdminPassword = "Password123!"
	StaffPassword = "CafeStaff123!"
)

// Open returns a migrated database in a temp dir. A single connection keeps
// concurrent test goroutines from tripping over sqlite's writer lock.
func Open(t testing.TB) *gorm.DB {
	t.Helper()
	dsn := "file:" + filepath.Join(t.TempDir(), "test.db") + "?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
	db, err := config.OpenDB(config.DBConfig{
		Driver:          "sqlite",
		DSN:             dsn,
		MaxOpenConns:    1,
		MaxIdleConns:    1,
		ConnMaxLifetime: time.Hour,
	}, zap.NewNop())
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

// Seeded returns a database loaded with the demo catalog.
func Seeded(t testing.TB) *gorm.DB {
	t.Helper()
	db := Open(t)
	err := seed.Run(context.Background(), db, seed.Options{
		FrontendURL:   "http://localhost:13000",
		AdminPassword: AdminPassword,
		StaffPassword: StaffPassword,
		PasswordCost:  bcrypt.MinCost,
	})
	if err != nil {
		t.Fatalf("seed test db: %v", err)
	}
	return db
}
