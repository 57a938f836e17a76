package store

import (
	"database/sql"
	"log"
	"strings"
)

const sqliteKVSchema = `
CREATE TABLE IF NOT EXISTS tracker_kv (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
`

// SQLiteKV is the durable KV backend for single-node deployments.
type SQLiteKV struct {
	db *sql.DB
}

// NewSQLiteKV prepares the tracker_kv table on an open SQLite handle.
func NewSQLiteKV(db *sql.DB) (*SQLiteKV, error) {
	if _, err := db.Exec(sqliteKVSchema); err != nil {
		return nil, err
	}
	return &SQLiteKV{db: db}, nil
}

func (s *SQLiteKV) Get(key string) (string, bool) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM tracker_kv WHERE key = ?`, key).Scan(&value)
	if err != nil {
		if err != sql.ErrNoRows {
			log.Printf("SQLiteKV get %q: %v", key, err)
		}
		return "", false
	}
	return value, true
}

func (s *SQLiteKV) Set(key, value string) {
	_, err := s.db.Exec(`
		INSERT INTO tracker_kv (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		log.Printf("SQLiteKV set %q: %v", key, err)
	}
}

func (s *SQLiteKV) Delete(key string) {
	if _, err := s.db.Exec(`DELETE FROM tracker_kv WHERE key = ?`, key); err != nil {
		log.Printf("SQLiteKV delete %q: %v", key, err)
	}
}

func (s *SQLiteKV) Clear() {
	if _, err := s.db.Exec(`DELETE FROM tracker_kv`); err != nil {
		log.Printf("SQLiteKV clear: %v", err)
	}
}

// ClearPrefix removes all keys under the given prefix, supporting scoped
// views over the shared backend.
func (s *SQLiteKV) ClearPrefix(prefix string) {
	pattern := strings.ReplaceAll(strings.ReplaceAll(prefix, "%", `\%`), "_", `\_`) + "%"
	if _, err := s.db.Exec(`DELETE FROM tracker_kv WHERE key LIKE ? ESCAPE '\'`, pattern); err != nil {
		log.Printf("SQLiteKV clear prefix %q: %v", prefix, err)
	}
}
