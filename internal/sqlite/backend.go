// Package sqlite implements the default Backend on an embedded SQLite
// database file.
package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/kvconf/pkg/types"
)

var _ types.Backend = (*Backend)(nil)

// DBFileName is the database file created inside the data directory.
const DBFileName = "config.db"

// MemoryDataDir opens a private in-memory database instead of a file.
const MemoryDataDir = ":memory:"

// Backend stores rows in the config table of a SQLite database.
type Backend struct {
	db     *sql.DB
	path   string
	logger zerolog.Logger
}

// Open opens (or creates) config.db in dataDir. Pass MemoryDataDir for an
// in-memory database. The schema is not created until EnsureSchema.
func Open(dataDir string, logger zerolog.Logger) (*Backend, error) {
	var dsn string
	if dataDir == MemoryDataDir {
		dsn = MemoryDataDir
	} else {
		if dataDir == "" {
			dataDir = "."
		}
		if err := os.MkdirAll(dataDir, 0o755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
		dsn = filepath.Join(dataDir, DBFileName)
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	// One connection: the store is the only writer, and an in-memory
	// database lives exactly as long as its connection.
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)

	// Wait briefly on a locked file instead of failing immediately.
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	logger.Debug().Str("path", dsn).Msg("opened sqlite database")
	return &Backend{db: db, path: dsn, logger: logger}, nil
}

// Path returns the database file path, or MemoryDataDir.
func (b *Backend) Path() string {
	return b.path
}

// EnsureSchema creates the config table if it does not exist.
func (b *Backend) EnsureSchema() error {
	if _, err := b.db.Exec(createConfig); err != nil {
		return fmt.Errorf("creating config table: %w", err)
	}
	return nil
}

// Upsert inserts or replaces the row for key. The statement commits on its
// own; no transaction spans more than one call.
func (b *Backend) Upsert(key, value string, dataType types.Tag) error {
	if _, err := b.db.Exec(upsertConfig, key, value, string(dataType)); err != nil {
		return fmt.Errorf("upserting %q: %w", key, err)
	}
	return nil
}

// Fetch reads the row for key. A NULL value column reads as the empty
// string.
func (b *Backend) Fetch(key string) (types.Row, bool, error) {
	var value sql.NullString
	var dataType string
	err := b.db.QueryRow(selectConfig, key).Scan(&value, &dataType)
	if errors.Is(err, sql.ErrNoRows) {
		return types.Row{}, false, nil
	}
	if err != nil {
		return types.Row{}, false, fmt.Errorf("fetching %q: %w", key, err)
	}
	return types.Row{Key: key, Value: value.String, DataType: types.Tag(dataType)}, true, nil
}

// Remove deletes the row for key if present.
func (b *Backend) Remove(key string) error {
	if _, err := b.db.Exec(deleteConfig, key); err != nil {
		return fmt.Errorf("deleting %q: %w", key, err)
	}
	return nil
}

// Close closes the underlying database connection.
func (b *Backend) Close() error {
	return b.db.Close()
}
