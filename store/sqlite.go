package store

import (
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteBlobs stores blobs in a single-table SQLite database.
type SQLiteBlobs struct {
	db *sql.DB
}

// OpenSQLite opens (and if needed creates) the blob database at path.
func OpenSQLite(path string) (*SQLiteBlobs, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open blob store: %w", err)
	}

	const schema = `CREATE TABLE IF NOT EXISTS kv (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	)`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create blob table: %w", err)
	}
	return &SQLiteBlobs{db: db}, nil
}

// Get implements Blobs.
func (s *SQLiteBlobs) Get(key string) (string, bool, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("read blob %s: %w", key, err)
	}
	return value, true, nil
}

// Set implements Blobs.
func (s *SQLiteBlobs) Set(key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO kv (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("write blob %s: %w", key, err)
	}
	return nil
}

// Close closes the underlying database.
func (s *SQLiteBlobs) Close() error {
	return s.db.Close()
}
