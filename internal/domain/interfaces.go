package domain

// ─── Service Interfaces ─────────────────────────────────────────────────────
// These interfaces define boundaries between layers.
// Infrastructure implements them; application layer depends on them.

// PointJournal records committed balance changes (sqlite in-memory journal).
type PointJournal interface {
	Append(entry LedgerEntry) error
	Entries(account string, limit int) ([]LedgerEntry, error)
}

// Shuffler reorders leaderboard entries in place. Injected so that the
// weekly board's randomness stays outside the ranking logic.
type Shuffler interface {
	Shuffle(n int, swap func(i, j int))
}

// Picker chooses an index in [0, n). Used by the roulette.
type Picker interface {
	IntN(n int) int
}
