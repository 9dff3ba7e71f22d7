package db

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

const memoryPath = ":memory:"

// Open opens the session database, sets its pragmas and validates
// connectivity. An in-memory database is pinned to a single connection so
// every query sees the same data.
func Open(dbPath string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	journal := "WAL"
	if dbPath == memoryPath {
		db.SetMaxOpenConns(1)
		journal = "MEMORY"
	}

	if _, err := db.Exec(`
		PRAGMA journal_mode = ` + journal + `;
		PRAGMA foreign_keys = ON;
		PRAGMA busy_timeout = 5000;
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("set sqlite pragmas: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite database: %w", err)
	}

	return db, nil
}
