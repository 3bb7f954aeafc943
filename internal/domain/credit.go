package domain

import "time"

// ─── Point Journal Types ────────────────────────────────────────────────────
// Every committed change to the spendable balance produces one journal row.
// The journal is an audit trail; the ledger store stays the source of truth.

// EntryType represents the accounting side of a ledger entry.
type EntryType string

const (
	EntryDebit  EntryType = "DEBIT"
	EntryCredit EntryType = "CREDIT"
)

// TransactionType represents the business reason for a balance change.
type TransactionType string

const (
	TxEarn  TransactionType = "EARN"  // points from a pickup/delivery
	TxSpend TransactionType = "SPEND" // coupons, roulette, checkout
	TxBonus TransactionType = "BONUS" // roulette refunds, step rewards
)

// LedgerEntry is a single row in the point journal.
type LedgerEntry struct {
	ID          int64           `json:"id"`
	Timestamp   time.Time       `json:"timestamp"`
	Type        TransactionType `json:"type"`
	EntryType   EntryType       `json:"entry_type"`
	Account     string          `json:"account"`
	Amount      int64           `json:"amount"`
	Description string          `json:"description,omitempty"`
	Balance     int64           `json:"balance"`
}
