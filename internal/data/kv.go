package data

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// KV is the sqlite-backed key-value store. Values are JSON text; the
// updated_at column drives prefix-scoped cleanup.
type KV struct {
	db *sql.DB
}

// NewKV opens (creating if needed) the store at dbPath.
func NewKV(dbPath string) (*KV, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS kv (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at INTEGER NOT NULL
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	_, err = db.Exec(`CREATE INDEX IF NOT EXISTS idx_kv_updated_at ON kv(updated_at)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create index: %w", err)
	}

	return &KV{db: db}, nil
}

// Get unmarshals the value stored under key into out and reports
// whether the key exists.
func (s *KV) Get(ctx context.Context, key string, out any) (bool, error) {
	row := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key)

	var raw string
	err := row.Scan(&raw)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to query key %s: %w", key, err)
	}

	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return false, fmt.Errorf("failed to decode value for %s: %w", key, err)
	}
	return true, nil
}

// Put stores the JSON encoding of value under key.
func (s *KV) Put(ctx context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode value for %s: %w", key, err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO kv (key, value, updated_at) VALUES (?, ?, ?)
	`, key, string(raw), time.Now().Unix())
	if err != nil {
		return fmt.Errorf("failed to put key %s: %w", key, err)
	}
	return nil
}

// DeletePrefixOlderThan removes keys with the given prefix whose last
// write precedes before.
func (s *KV) DeletePrefixOlderThan(ctx context.Context, prefix string, before time.Time) (int64, error) {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM kv WHERE key LIKE ? || '%' AND updated_at < ?
	`, prefix, before.Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to cleanup prefix %s: %w", prefix, err)
	}
	return result.RowsAffected()
}

// Close closes the database connection.
func (s *KV) Close() error {
	return s.db.Close()
}
