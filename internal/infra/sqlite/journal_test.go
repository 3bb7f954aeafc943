package sqlite

import (
	"strings"
	"testing"
	"time"

	"github.com/pickuppal/pickuppal/internal/domain"
)

// ─── Helpers ────────────────────────────────────────────────────────────────

func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open()
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func entry(side domain.EntryType, tx domain.TransactionType, amount, balance int64) domain.LedgerEntry {
	return domain.LedgerEntry{
		Timestamp: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		Type:      tx,
		EntryType: side,
		Account:   "user_1",
		Amount:    amount,
		Balance:   balance,
	}
}

// ─── Journal ────────────────────────────────────────────────────────────────

func TestJournal_AppendAndEntries(t *testing.T) {
	db := newTestDB(t)

	rows := []domain.LedgerEntry{
		entry(domain.EntryCredit, domain.TxEarn, 83, 5083),
		entry(domain.EntryDebit, domain.TxSpend, 1000, 4083),
		entry(domain.EntryCredit, domain.TxBonus, 43, 4126),
	}
	for _, r := range rows {
		if err := db.Append(r); err != nil {
			t.Fatalf("Append() error: %v", err)
		}
	}

	got, err := db.Entries("user_1", 0)
	if err != nil {
		t.Fatalf("Entries() error: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("Entries() returned %d, want 3", len(got))
	}
	if got[0].Amount != 43 || got[0].Type != domain.TxBonus {
		t.Errorf("newest = %+v, want the 43 BONUS credit", got[0])
	}
	if got[2].Balance != 5083 || got[2].EntryType != domain.EntryCredit {
		t.Errorf("oldest = %+v, want balance 5083 CREDIT", got[2])
	}
	if !got[2].Timestamp.Equal(rows[0].Timestamp) {
		t.Errorf("Timestamp = %v, want %v", got[2].Timestamp, rows[0].Timestamp)
	}
	if got[0].ID <= got[1].ID {
		t.Errorf("ids not descending: %d, %d", got[0].ID, got[1].ID)
	}
}

func TestJournal_EntriesLimitAndAccount(t *testing.T) {
	db := newTestDB(t)
	for i := int64(1); i <= 5; i++ {
		db.Append(entry(domain.EntryCredit, domain.TxEarn, i, 5000+i))
	}
	other := entry(domain.EntryCredit, domain.TxEarn, 7, 7)
	other.Account = "user_2"
	db.Append(other)

	got, err := db.Entries("user_1", 2)
	if err != nil {
		t.Fatalf("Entries() error: %v", err)
	}
	if len(got) != 2 || got[0].Amount != 5 {
		t.Errorf("Entries(limit 2) = %+v", got)
	}

	none, _ := db.Entries("ghost", 10)
	if len(none) != 0 {
		t.Errorf("Entries(ghost) = %d rows, want 0", len(none))
	}
}

func TestJournal_RejectsInvalidRows(t *testing.T) {
	db := newTestDB(t)

	if err := db.Append(entry(domain.EntryCredit, domain.TxEarn, 0, 10)); err == nil {
		t.Error("zero amount should violate the CHECK constraint")
	}
	if err := db.Append(entry(domain.EntryDebit, domain.TxSpend, 10, -1)); err == nil {
		t.Error("negative balance should violate the CHECK constraint")
	}
	if err := db.Append(entry(domain.EntryType("REFUND"), domain.TxSpend, 10, 1)); err == nil {
		t.Error("unknown entry type should violate the CHECK constraint")
	}
}

func TestJournal_Totals(t *testing.T) {
	db := newTestDB(t)
	db.Append(entry(domain.EntryCredit, domain.TxEarn, 83, 5083))
	db.Append(entry(domain.EntryCredit, domain.TxEarn, 112, 5195))
	db.Append(entry(domain.EntryDebit, domain.TxSpend, 1000, 4195))

	earned, spent, err := db.Totals("user_1")
	if err != nil {
		t.Fatalf("Totals() error: %v", err)
	}
	if earned != 195 || spent != 1000 {
		t.Errorf("Totals() = %d/%d, want 195/1000", earned, spent)
	}
}

func TestOpen_IsolatedDatabases(t *testing.T) {
	a := newTestDB(t)
	b := newTestDB(t)
	a.Append(entry(domain.EntryCredit, domain.TxEarn, 1, 1))

	got, _ := b.Entries("user_1", 0)
	if len(got) != 0 {
		t.Errorf("second in-memory DB sees %d rows, want 0", len(got))
	}
}

func TestJournal_EntriesBadTimestamp(t *testing.T) {
	db := newTestDB(t)
	if err := db.Append(entry(domain.EntryCredit, domain.TxEarn, 10, 10)); err != nil {
		t.Fatalf("Append() error: %v", err)
	}
	if _, err := db.db.Exec(`UPDATE point_journal SET timestamp = 'yesterday'`); err != nil {
		t.Fatal(err)
	}

	rows, err := db.Entries("user_1", 0)
	if err == nil {
		t.Fatalf("Entries() = %+v, want timestamp parse error", rows)
	}
	if !strings.Contains(err.Error(), "parse timestamp") {
		t.Errorf("error = %v, want parse timestamp", err)
	}
}
