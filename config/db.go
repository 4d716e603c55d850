package config

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// migrations are applied in order, each in its own transaction, and
// recorded in schema_migrations. Version 2 is the expense column that
// older installations gained through an ad hoc ALTER TABLE at launch.
var migrations = []string{
	// v1: base schema
	`CREATE TABLE IF NOT EXISTS inventory (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		quantity INTEGER NOT NULL DEFAULT 0,
		unit_price TEXT NOT NULL DEFAULT '0',
		total_value TEXT NOT NULL DEFAULT '0',
		category TEXT NOT NULL DEFAULT '',
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE TABLE IF NOT EXISTS ledger_entries (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		salesman TEXT NOT NULL,
		product TEXT NOT NULL,
		issued INTEGER NOT NULL DEFAULT 0,
		returned INTEGER NOT NULL DEFAULT 0,
		payment TEXT NOT NULL DEFAULT '0',
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE TABLE IF NOT EXISTS ledger_transactions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		salesman TEXT NOT NULL,
		product TEXT NOT NULL,
		kind TEXT NOT NULL CHECK(kind IN ('issue','return')),
		quantity INTEGER NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);`,

	// v2: salesman-level expense, denormalized per entry
	`ALTER TABLE ledger_entries ADD COLUMN expense TEXT NOT NULL DEFAULT '0';`,
}

// OpenDB opens the SQLite database at path and brings the schema up to
// the current version.
func OpenDB(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// SQLite allows one writer; a single connection keeps every
	// command on the same handle and makes :memory: databases safe
	// to use in tests.
	db.SetMaxOpenConns(1)

	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func migrate(db *sql.DB) error {
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (
		version INTEGER PRIMARY KEY,
		applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`); err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}

	var current int
	if err := db.QueryRow(`SELECT COALESCE(MAX(version), 0) FROM schema_migrations`).Scan(&current); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}

	for i := current; i < len(migrations); i++ {
		version := i + 1
		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("begin migration %d: %w", version, err)
		}
		if _, err := tx.Exec(migrations[i]); err != nil {
			tx.Rollback()
			return fmt.Errorf("apply migration %d: %w", version, err)
		}
		if _, err := tx.Exec(`INSERT INTO schema_migrations (version) VALUES (?)`, version); err != nil {
			tx.Rollback()
			return fmt.Errorf("record migration %d: %w", version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %d: %w", version, err)
		}
	}
	return nil
}
