package backing

import (
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"uhb/trade-ledger/internal/fileutils"
)

const schema = `
CREATE TABLE IF NOT EXISTS kv (
	key   TEXT PRIMARY KEY,
	value BLOB NOT NULL
);`

type kvRow struct {
	Key   string `db:"key"`
	Value []byte `db:"value"`
}

// SQLite stores every key as a row of a single kv table.
type SQLite struct {
	db       *sqlx.DB
	path     string
	capacity int64
}

// OpenSQLite opens (creating if needed) the database at path.
// Use ":memory:" for a throwaway database.
func OpenSQLite(path string, capacity int64) (*SQLite, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite backend needs a database path")
	}
	if path != ":memory:" {
		if err := fileutils.EnsureDirectoryExists(filepath.Dir(path)); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	db, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One connection keeps ":memory:" databases alive and serializes writers.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return &SQLite{db: db, path: path, capacity: capacity}, nil
}

// Path returns the database location.
func (s *SQLite) Path() string {
	return s.path
}

// Get implements Backend.
func (s *SQLite) Get(key string) ([]byte, bool, error) {
	var row kvRow
	err := s.db.Get(&row, `SELECT key, value FROM kv WHERE key = ?`, key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return row.Value, true, nil
}

// Set implements Backend.
func (s *SQLite) Set(key string, value []byte) error {
	if err := validateKey(key); err != nil {
		return err
	}
	if s.capacity > 0 {
		var used int64
		err := s.db.Get(&used, `SELECT COALESCE(SUM(LENGTH(value)), 0) FROM kv WHERE key <> ?`, key)
		if err != nil {
			return fmt.Errorf("failed to measure usage: %w", err)
		}
		if used+int64(len(value)) > s.capacity {
			return quotaError(key, used, int64(len(value)), s.capacity)
		}
	}

	query := `
		INSERT INTO kv (key, value) VALUES (:key, :value)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`
	if _, err := s.db.NamedExec(query, kvRow{Key: key, Value: value}); err != nil {
		if isFull(err) {
			return fmt.Errorf("writing %s: %v: %w", key, err, ErrQuotaExceeded)
		}
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

// Delete implements Backend.
func (s *SQLite) Delete(key string) error {
	if _, err := s.db.Exec(`DELETE FROM kv WHERE key = ?`, key); err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

// Keys implements Backend.
func (s *SQLite) Keys() ([]string, error) {
	keys := []string{}
	if err := s.db.Select(&keys, `SELECT key FROM kv ORDER BY key`); err != nil {
		return nil, fmt.Errorf("failed to list keys: %w", err)
	}
	return keys, nil
}

// Close implements Backend.
func (s *SQLite) Close() error {
	return s.db.Close()
}

func isFull(err error) bool {
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code()&0xff == sqlite3.SQLITE_FULL
	}
	return false
}
