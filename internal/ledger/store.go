// Package ledger is the single source of truth for the session's user.
//
// The store owns the profile (with its embedded character and coupon box),
// the activity history, the friend set and the read-only roster. Every read
// returns a copy; every write goes through Update, which applies a mutation
// to a clone and commits it only if the mutation succeeds. Nothing outside
// this package ever holds a live pointer into the committed state.
package ledger

import (
	"fmt"
	"log"
	"slices"
	"sync"
	"time"

	"github.com/pickuppal/pickuppal/internal/domain"
)

// State is the mutable view handed to Update callbacks.
// Activities are ordered most-recent-first.
type State struct {
	Profile    domain.UserProfile
	Activities []domain.Activity
	Roster     []domain.UserProfile
	FriendIDs  []string

	// pending journal rows, flushed after commit
	journal []domain.LedgerEntry
}

func (s *State) clone() *State {
	out := &State{
		Profile:    s.Profile.Clone(),
		Activities: slices.Clone(s.Activities),
		FriendIDs:  slices.Clone(s.FriendIDs),
		// roster is never mutated after New
		Roster: s.Roster,
	}
	return out
}

// Credit adds amount to the spendable balance and records a CREDIT row.
func (s *State) Credit(tx domain.TransactionType, amount int, description string) {
	s.Profile.SpendableBalance += amount
	s.record(tx, domain.EntryCredit, amount, description)
}

// Debit removes amount from the spendable balance and records a DEBIT row.
// Callers must have checked sufficiency; Debit refuses to go negative.
func (s *State) Debit(tx domain.TransactionType, amount int, description string) error {
	if amount > s.Profile.SpendableBalance {
		return fmt.Errorf("debit %d exceeds balance %d", amount, s.Profile.SpendableBalance)
	}
	s.Profile.SpendableBalance -= amount
	s.record(tx, domain.EntryDebit, amount, description)
	return nil
}

func (s *State) record(tx domain.TransactionType, side domain.EntryType, amount int, description string) {
	if amount == 0 {
		return
	}
	s.journal = append(s.journal, domain.LedgerEntry{
		Type:        tx,
		EntryType:   side,
		Account:     s.Profile.ID,
		Amount:      int64(amount),
		Description: description,
		Balance:     int64(s.Profile.SpendableBalance),
	})
}

// IsFriend reports whether userID is in the friend set.
func (s *State) IsFriend(userID string) bool {
	return slices.Contains(s.FriendIDs, userID)
}

// FindByName looks up a roster user by exact display name.
func (s *State) FindByName(name string) (domain.UserProfile, bool) {
	for _, u := range s.Roster {
		if u.Name == name {
			return u, true
		}
	}
	return domain.UserProfile{}, false
}

// Store guards the committed State.
type Store struct {
	mu      sync.RWMutex
	state   *State
	journal domain.PointJournal
	now     func() time.Time
}

// New creates a store seeded with the given data.
func New(seed Seed) *Store {
	roster := make([]domain.UserProfile, len(seed.Roster))
	for i, u := range seed.Roster {
		roster[i] = u.Clone()
	}
	return &Store{
		state: &State{
			Profile:    seed.User.Clone(),
			Activities: slices.Clone(seed.Activities),
			Roster:     roster,
			FriendIDs:  slices.Clone(seed.FriendIDs),
		},
		now: time.Now,
	}
}

// SetJournal attaches a point journal. Committed balance changes are
// appended to it after each successful Update.
func (s *Store) SetJournal(j domain.PointJournal) {
	s.mu.Lock()
	s.journal = j
	s.mu.Unlock()
}

// Update runs fn against a clone of the state and commits the clone only if
// fn returns nil. On error the committed state is untouched.
func (s *Store) Update(fn func(st *State) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.state.clone()
	if err := fn(next); err != nil {
		return err
	}

	rows := next.journal
	next.journal = nil
	s.state = next

	if s.journal != nil {
		ts := s.now()
		for _, row := range rows {
			row.Timestamp = ts
			if err := s.journal.Append(row); err != nil {
				log.Printf("[ledger] journal append failed: %v", err)
			}
		}
	}
	return nil
}

// View runs fn against the committed state under a read lock.
// fn must not retain or mutate anything it is given.
func (s *Store) View(fn func(st *State)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(s.state)
}

// Profile returns a copy of the user's profile.
func (s *Store) Profile() domain.UserProfile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Profile.Clone()
}

// Character returns a copy of the user's character.
func (s *Store) Character() domain.Character {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Profile.Character.Clone()
}

// Activities returns the history, most recent first.
func (s *Store) Activities() []domain.Activity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.state.Activities)
}

// Roster returns copies of the other users.
func (s *Store) Roster() []domain.UserProfile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.UserProfile, len(s.state.Roster))
	for i, u := range s.state.Roster {
		out[i] = u.Clone()
	}
	return out
}

// FriendIDs returns the ids in the friend set.
func (s *Store) FriendIDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.state.FriendIDs)
}

// Friends returns roster users in the friend set, in friend-add order.
func (s *Store) Friends() []domain.UserProfile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.UserProfile
	for _, id := range s.state.FriendIDs {
		for _, u := range s.state.Roster {
			if u.ID == id {
				out = append(out, u.Clone())
			}
		}
	}
	return out
}

// Journal returns the most recent journal rows for the user, newest first.
func (s *Store) Journal(limit int) ([]domain.LedgerEntry, error) {
	s.mu.RLock()
	j, account := s.journal, s.state.Profile.ID
	s.mu.RUnlock()
	if j == nil {
		return nil, nil
	}
	return j.Entries(account, limit)
}
