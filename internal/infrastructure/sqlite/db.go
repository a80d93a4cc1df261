// Package sqlite persists the registry index in a SQLite database, so a
// fresh process can resume from the reference table without re-scanning
// every asset file.
package sqlite

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4"
	sqlitemigrate "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/ncruces/go-sqlite3/driver" // registers the sqlite3 driver
	_ "github.com/ncruces/go-sqlite3/embed"  // embeds the sqlite wasm binary

	"github.com/vehement/assetdb/internal/log"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// DB wraps the SQLite connection behind the index store.
type DB struct {
	conn *sql.DB
}

// NewDB opens (or creates) the index database at path and brings its schema
// up to date. Parent directories are created with owner-only permissions.
func NewDB(path string) (*DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return nil, fmt.Errorf("create index directory: %w", err)
		}
	}

	conn, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open index database: %w", err)
	}
	// One writer; the registry serializes access anyway.
	conn.SetMaxOpenConns(1)

	if err := runMigrations(conn); err != nil {
		_ = conn.Close()
		return nil, err
	}

	log.Info(log.CatIndex, "opened index database", "path", path)
	return &DB{conn: conn}, nil
}

// runMigrations applies the embedded schema migrations.
func runMigrations(conn *sql.DB) error {
	driver, err := sqlitemigrate.WithInstance(conn, &sqlitemigrate.Config{})
	if err != nil {
		return fmt.Errorf("create migration driver: %w", err)
	}

	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("load embedded migrations: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "sqlite3", driver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

// References returns the reference repository backed by this database.
func (d *DB) References() *ReferenceRepository {
	return newReferenceRepository(d.conn)
}

// Close closes the underlying connection.
func (d *DB) Close() error {
	return d.conn.Close()
}
