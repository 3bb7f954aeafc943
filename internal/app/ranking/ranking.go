// Package ranking projects the roster and the current user into leaderboards.
//
// Local is a stable sort by experience (ties keep roster order, with the
// current user last). Friends filters Local. Weekly carries Local's entries
// and ranks in a shuffled order; it is not windowed by time.
package ranking

import (
	"cmp"
	"math/rand/v2"
	"slices"

	"github.com/pickuppal/pickuppal/internal/domain"
)

// RandomShuffler shuffles with the global math/rand/v2 source.
type RandomShuffler struct{}

// Shuffle implements domain.Shuffler.
func (RandomShuffler) Shuffle(n int, swap func(i, j int)) { rand.Shuffle(n, swap) }

// Compute builds all three leaderboards. It never mutates its inputs.
// A nil shuffler leaves Weekly in Local's order.
func Compute(user domain.UserProfile, roster []domain.UserProfile, friendIDs []string, shuffler domain.Shuffler) domain.Rankings {
	all := make([]domain.UserProfile, 0, len(roster)+1)
	all = append(all, roster...)
	all = append(all, user)

	slices.SortStableFunc(all, func(a, b domain.UserProfile) int {
		return cmp.Compare(b.Experience, a.Experience)
	})

	local := make([]domain.RankEntry, len(all))
	for i, u := range all {
		local[i] = domain.RankEntry{
			Rank:   i + 1,
			UserID: u.ID,
			Name:   u.Name,
			Level:  u.Level,
			Score:  u.Experience,
		}
	}

	friends := make([]domain.RankEntry, 0, len(friendIDs)+1)
	for _, e := range local {
		if e.UserID == user.ID || slices.Contains(friendIDs, e.UserID) {
			friends = append(friends, e)
		}
	}

	weekly := slices.Clone(local)
	if shuffler != nil {
		shuffler.Shuffle(len(weekly), func(i, j int) {
			weekly[i], weekly[j] = weekly[j], weekly[i]
		})
	}

	return domain.Rankings{Local: local, Friends: friends, Weekly: weekly}
}

// RankOf returns the user's 1-based position on a board, or 0 if absent.
func RankOf(board []domain.RankEntry, userID string) int {
	for _, e := range board {
		if e.UserID == userID {
			return e.Rank
		}
	}
	return 0
}
