package store

import (
	"database/sql"
	"log"
	"strings"
)

const postgresKVSchema = `
CREATE TABLE IF NOT EXISTS tracker_kv (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
`

// PostgresKV is the durable KV backend for deployments that already run the
// dashboard user database and prefer one durable store.
type PostgresKV struct {
	db *sql.DB
}

// NewPostgresKV prepares the tracker_kv table on an open Postgres handle.
func NewPostgresKV(db *sql.DB) (*PostgresKV, error) {
	if _, err := db.Exec(postgresKVSchema); err != nil {
		return nil, err
	}
	return &PostgresKV{db: db}, nil
}

func (s *PostgresKV) Get(key string) (string, bool) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM tracker_kv WHERE key = $1`, key).Scan(&value)
	if err != nil {
		if err != sql.ErrNoRows {
			log.Printf("PostgresKV get %q: %v", key, err)
		}
		return "", false
	}
	return value, true
}

func (s *PostgresKV) Set(key, value string) {
	_, err := s.db.Exec(`
		INSERT INTO tracker_kv (key, value) VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value
	`, key, value)
	if err != nil {
		log.Printf("PostgresKV set %q: %v", key, err)
	}
}

func (s *PostgresKV) Delete(key string) {
	if _, err := s.db.Exec(`DELETE FROM tracker_kv WHERE key = $1`, key); err != nil {
		log.Printf("PostgresKV delete %q: %v", key, err)
	}
}

func (s *PostgresKV) Clear() {
	if _, err := s.db.Exec(`DELETE FROM tracker_kv`); err != nil {
		log.Printf("PostgresKV clear: %v", err)
	}
}

// ClearPrefix removes all keys under the given prefix.
func (s *PostgresKV) ClearPrefix(prefix string) {
	pattern := strings.ReplaceAll(strings.ReplaceAll(prefix, "%", `\%`), "_", `\_`) + "%"
	if _, err := s.db.Exec(`DELETE FROM tracker_kv WHERE key LIKE $1 ESCAPE '\'`, pattern); err != nil {
		log.Printf("PostgresKV clear prefix %q: %v", prefix, err)
	}
}
