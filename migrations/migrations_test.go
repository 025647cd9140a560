package migrations

import (
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	// Ensure single connection to avoid separate in-memory DBs per connection.
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestReadMigrations(t *testing.T) {
	for _, dialect := range []Dialect{Postgres, SQLite} {
		migrations, err := ReadMigrations(dialect)
		require.NoError(t, err)
		require.Len(t, migrations, 2)
		assert.Equal(t, 1, migrations[0].Version)
		assert.Equal(t, "create_kv_store", migrations[0].Name)
		assert.Equal(t, 2, migrations[1].Version)
	}

	_, err := ReadMigrations(Dialect("mysql"))
	assert.Error(t, err)
}

func TestRunMigrationsIsIdempotent(t *testing.T) {
	db := setupTestDB(t)

	require.NoError(t, RunMigrations(db, SQLite, nil))
	require.NoError(t, RunMigrations(db, SQLite, nil))

	var count int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM schema_migrations`).Scan(&count))
	assert.Equal(t, 2, count)

	_, err := db.Exec(`INSERT INTO kv_store (key, value) VALUES ('k', 'v')`)
	assert.NoError(t, err)
}

func TestPlaceholder(t *testing.T) {
	assert.Equal(t, "$2", Postgres.Placeholder(2))
	assert.Equal(t, "?", SQLite.Placeholder(2))
}
