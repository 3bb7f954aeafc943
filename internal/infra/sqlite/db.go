// Package sqlite keeps the point journal in an in-memory SQLite database.
// Nothing is written to disk: the journal lives exactly as long as the
// process, like the rest of the session state.
package sqlite

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// DB wraps the journal database.
type DB struct {
	db *sql.DB
}

// Open creates a fresh in-memory database and applies the schema.
func Open() (*DB, error) {
	sqlDB, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// Every connection to ":memory:" is a separate database, so pin to one.
	sqlDB.SetMaxOpenConns(1)

	db := &DB{db: sqlDB}
	if err := db.migrate(); err != nil {
		sqlDB.Close()
		return nil, err
	}
	return db, nil
}

// Close releases the database; the journal is gone afterwards.
func (db *DB) Close() error {
	return db.db.Close()
}

func (db *DB) migrate() error {
	for _, stmt := range Migrations() {
		if _, err := db.db.Exec(stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
