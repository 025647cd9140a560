package datastore

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/color-game/contest/migrations"
)

// SQLStore keeps values in the kv_store table of a Postgres or SQLite database
type SQLStore struct {
	database *sql.DB
	dialect  migrations.Dialect
}

// NewSQLStore runs pending migrations and wraps db
func NewSQLStore(db *sql.DB, dialect migrations.Dialect, logger *slog.Logger) (*SQLStore, error) {
	if err := migrations.RunMigrations(db, dialect, logger); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return &SQLStore{database: db, dialect: dialect}, nil
}

// NewPostgresStore connects to Postgres and prepares the kv_store table
func NewPostgresStore(connStr string, logger *slog.Logger) (*SQLStore, error) {
	db, err := NewDB("postgres", connStr)
	if err != nil {
		return nil, err
	}
	store, err := NewSQLStore(db, migrations.Postgres, logger)
	if err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// NewSQLiteStore opens (or creates) a SQLite database file. ":memory:" is
// accepted for tests.
func NewSQLiteStore(path string, logger *slog.Logger) (*SQLStore, error) {
	db, err := NewDB("sqlite3", path)
	if err != nil {
		return nil, err
	}
	// SQLite allows a single writer; one connection also keeps ":memory:"
	// databases from splitting per connection.
	db.SetMaxOpenConns(1)
	store, err := NewSQLStore(db, migrations.SQLite, logger)
	if err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

func (ss *SQLStore) p(n int) string {
	return ss.dialect.Placeholder(n)
}

func (ss *SQLStore) Get(ctx context.Context, key string) ([]byte, error) {
	db := ss.database

	sqlStatement := fmt.Sprintf(`
		SELECT value
		FROM kv_store
		WHERE key = %s`, ss.p(1))

	var value string
	err := db.QueryRowContext(ctx, sqlStatement, key).Scan(&value)

	switch err {
	case sql.ErrNoRows:
		return nil, NoRowsError{true, err}
	case nil:
		return []byte(value), nil
	default:
		return nil, fmt.Errorf("failed to read key %s: %w", key, err)
	}
}

func (ss *SQLStore) Set(ctx context.Context, key string, value []byte) error {
	db := ss.database

	sqlStatement := fmt.Sprintf(`
		INSERT INTO kv_store (key, value, updated_at)
		VALUES (%s, %s, %s)
		ON CONFLICT (key)
		DO UPDATE SET
			value = EXCLUDED.value,
			updated_at = EXCLUDED.updated_at`, ss.p(1), ss.p(2), ss.p(3))

	_, err := db.ExecContext(ctx, sqlStatement, key, string(value), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to write key %s: %w", key, err)
	}
	return nil
}

func (ss *SQLStore) Delete(ctx context.Context, key string) error {
	db := ss.database

	sqlStatement := fmt.Sprintf(`DELETE FROM kv_store WHERE key = %s`, ss.p(1))
	if _, err := db.ExecContext(ctx, sqlStatement, key); err != nil {
		return fmt.Errorf("failed to delete key %s: %w", key, err)
	}
	return nil
}

func (ss *SQLStore) Close() error {
	return ss.database.Close()
}
