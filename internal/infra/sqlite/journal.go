package sqlite

import (
	"fmt"
	"time"

	"github.com/pickuppal/pickuppal/internal/domain"
)

// ─── Schema ─────────────────────────────────────────────────────────────────

// Migrations returns the journal schema statements.
// Each string is a single SQL statement (SQLite executes one at a time).
func Migrations() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS point_journal (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp   TEXT NOT NULL,
			type        TEXT NOT NULL,
			entry_type  TEXT NOT NULL CHECK (entry_type IN ('CREDIT', 'DEBIT')),
			account     TEXT NOT NULL,
			amount      INTEGER NOT NULL CHECK (amount > 0),
			description TEXT NOT NULL DEFAULT '',
			balance     INTEGER NOT NULL CHECK (balance >= 0)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_journal_account ON point_journal(account, id)`,
	}
}

// ─── Journal Operations ─────────────────────────────────────────────────────

// Append inserts one journal row. Implements domain.PointJournal.
func (db *DB) Append(e domain.LedgerEntry) error {
	ts := e.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	_, err := db.db.Exec(`
		INSERT INTO point_journal (timestamp, type, entry_type, account, amount, description, balance)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, ts.UTC().Format(time.RFC3339Nano), string(e.Type), string(e.EntryType),
		e.Account, e.Amount, e.Description, e.Balance)
	if err != nil {
		return fmt.Errorf("append journal entry: %w", err)
	}
	return nil
}

// Entries returns an account's rows, newest first. limit <= 0 means all.
func (db *DB) Entries(account string, limit int) ([]domain.LedgerEntry, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := db.db.Query(`
		SELECT id, timestamp, type, entry_type, account, amount, description, balance
		FROM point_journal WHERE account = ?
		ORDER BY id DESC LIMIT ?
	`, account, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.LedgerEntry
	for rows.Next() {
		var (
			e       domain.LedgerEntry
			ts      string
			tx, sid string
		)
		if err := rows.Scan(&e.ID, &ts, &tx, &sid, &e.Account, &e.Amount, &e.Description, &e.Balance); err != nil {
			return nil, err
		}
		e.Type = domain.TransactionType(tx)
		e.EntryType = domain.EntryType(sid)
		if e.Timestamp, err = time.Parse(time.RFC3339Nano, ts); err != nil {
			return nil, fmt.Errorf("journal row %d: parse timestamp: %w", e.ID, err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Totals sums an account's credits and debits.
func (db *DB) Totals(account string) (earned, spent int64, err error) {
	err = db.db.QueryRow(`
		SELECT
			COALESCE(SUM(CASE WHEN entry_type = 'CREDIT' THEN amount END), 0),
			COALESCE(SUM(CASE WHEN entry_type = 'DEBIT'  THEN amount END), 0)
		FROM point_journal WHERE account = ?
	`, account).Scan(&earned, &spent)
	return
}
