// Package dbtest provides migrated SQLite databases for tests.
package dbtest

import (
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/pressly/goose/v3"
	"github.com/templui/downloadzone/internal/db"
)

// New opens a fresh file-backed SQLite database in t.TempDir, runs all
// migrations and closes it when the test ends.
func New(t testing.TB) *sqlx.DB {
	t.Helper()

	goose.SetLogger(goose.NopLogger())

	path := filepath.Join(t.TempDir(), "test.db")
	database, err := db.Init("sqlite", "file:"+path+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_time_format=sqlite")
	if err != nil {
		t.Fatalf("dbtest: open: %v", err)
	}
	t.Cleanup(func() { _ = database.Close() })

	err = db.RunMigrations(database.DB, "sqlite")
	if err != nil {
		t.Fatalf("dbtest: migrate: %v", err)
	}
	return database
}
