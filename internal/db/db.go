// Package db keeps the task payload in a small SQLite key-value table.
package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrations embed.FS

// DB is the on-disk key-value store. Statements are prepared once in Open.
type DB struct {
	sql     *sql.DB
	version int64

	get     *sql.Stmt
	set     *sql.Stmt
	updated *sql.Stmt
}

// Open opens the SQLite file at path, brings the kv schema up to date and
// prepares the kv statements
func Open(ctx context.Context, path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL&_busy_timeout=5000", path)
	sqlDB, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One connection serializes every write
	sqlDB.SetMaxOpenConns(1)

	db := &DB{sql: sqlDB}
	if err := db.init(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func (db *DB) init(ctx context.Context) error {
	if err := db.sql.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	version, err := migrate(ctx, db.sql)
	if err != nil {
		return err
	}
	db.version = version

	for _, s := range []struct {
		stmt  **sql.Stmt
		query string
	}{
		{&db.get, `SELECT value FROM kv WHERE key = ?`},
		{&db.set, `INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
			ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`},
		{&db.updated, `SELECT updated_at FROM kv WHERE key = ?`},
	} {
		stmt, err := db.sql.PrepareContext(ctx, s.query)
		if err != nil {
			return fmt.Errorf("failed to prepare kv statement: %w", err)
		}
		*s.stmt = stmt
	}
	return nil
}

// migrate applies pending migrations and returns the resulting schema
// version. A database written by a newer build is refused.
func migrate(ctx context.Context, sqlDB *sql.DB) (int64, error) {
	fsys, err := fs.Sub(migrations, "migrations")
	if err != nil {
		return 0, err
	}
	provider, err := goose.NewProvider(goose.DialectSQLite3, sqlDB, fsys)
	if err != nil {
		return 0, fmt.Errorf("failed to load migrations: %w", err)
	}

	if _, err := provider.Up(ctx); err != nil {
		return 0, fmt.Errorf("failed to run migrations: %w", err)
	}

	version, err := provider.GetDBVersion(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	if latest := SchemaVersion(provider); version > latest {
		return 0, fmt.Errorf("database schema version %d is newer than supported version %d", version, latest)
	}
	return version, nil
}

// SchemaVersion returns the highest migration version known to provider
func SchemaVersion(provider *goose.Provider) int64 {
	var latest int64
	for _, src := range provider.ListSources() {
		latest = max(latest, src.Version)
	}
	return latest
}

// Version returns the schema version the database was opened at
func (db *DB) Version() int64 {
	return db.version
}

// Close releases the prepared statements and the connection
func (db *DB) Close() error {
	for _, stmt := range []*sql.Stmt{db.get, db.set, db.updated} {
		if stmt != nil {
			stmt.Close()
		}
	}
	return db.sql.Close()
}
