// Package dbtest opens migrated in-memory databases for tests.
package dbtest

import (
	"path/filepath"
	"testing"

	"folio/internal/database"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// New returns a migrated in-memory SQLite database. The pool is limited to
// one connection so every query sees the same in-memory schema.
func New(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := database.Open(sqlite.Open(":memory:"))
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

// NewFile returns a migrated SQLite database backed by a temporary file. Unlike
// New it allows several connections, so a transaction and a concurrent reader
// can be open at the same time.
func NewFile(t testing.TB) *gorm.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "folio.db")
	db, err := database.Open(sqlite.Open(path + "?_busy_timeout=5000"))
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}
