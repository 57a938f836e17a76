package database

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

type SQLiteClient struct {
	DB *sql.DB
}

// NewSQLiteDB opens (creating directories as needed) the SQLite database
// backing the durable visitor KV store.
func NewSQLiteDB() (*SQLiteClient, error) {
	dsn := os.Getenv("SQLITE_DSN")
	if dsn == "" {
		dsn = "data/tracker.db"
	}

	dir := filepath.Dir(dsn)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("error opening SQLite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("error connecting to SQLite database (ping failed): %w", err)
	}

	log.Printf("Successfully opened SQLite database at %s", dsn)
	return &SQLiteClient{DB: db}, nil
}

func (c *SQLiteClient) Close() {
	if c.DB != nil {
		if err := c.DB.Close(); err != nil {
			log.Printf("Error closing SQLite database: %v", err)
		} else {
			log.Println("SQLite database closed.")
		}
	}
}
