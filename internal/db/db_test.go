package db

import (
	"path/filepath"
	"testing"

	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSqliteDir(t *testing.T) {
	assert.Equal(t, "data", sqliteDir("./data/downloadzone.db?_pragma=foreign_keys(1)"))
	assert.Equal(t, "/tmp/x", sqliteDir("file:/tmp/x/test.db?_time_format=sqlite"))
	assert.Equal(t, "", sqliteDir(":memory:"))
}

func TestGetDialect(t *testing.T) {
	assert.Equal(t, "sqlite3", getDialect("sqlite"))
	assert.Equal(t, "postgres", getDialect("pgx"))
	assert.Equal(t, "mysql", getDialect("mysql"))
}

func TestMigrateUpAndDown(t *testing.T) {
	goose.SetLogger(goose.NopLogger())

	path := filepath.Join(t.TempDir(), "nested", "test.db")
	database, err := Init("sqlite", "file:"+path+"?_pragma=foreign_keys(1)")
	require.NoError(t, err)
	defer func() { _ = Close(database) }()

	require.NoError(t, RunMigrations(database.DB, "sqlite"))

	var count int
	require.NoError(t, database.Get(&count, `SELECT COUNT(*) FROM downloads`))
	assert.Zero(t, count)

	require.NoError(t, MigrateDown(database.DB, "sqlite"))
	_, err = database.Exec(`SELECT COUNT(*) FROM downloads`)
	assert.Error(t, err)
}
