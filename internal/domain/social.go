package domain

// ─── Leaderboard Types ──────────────────────────────────────────────────────

// LeaderboardType defines the scope of a leaderboard.
type LeaderboardType string

const (
	LeaderboardLocal   LeaderboardType = "local"
	LeaderboardFriends LeaderboardType = "friends"
	LeaderboardWeekly  LeaderboardType = "weekly"
)

// RankEntry is a user's position on a leaderboard. Derived, never stored.
type RankEntry struct {
	Rank   int    `json:"rank"`
	UserID string `json:"user_id"`
	Name   string `json:"name"`
	Level  int    `json:"level"`
	Score  int    `json:"score"`
}

// Rankings groups the three leaderboards shown on the home tab.
// Weekly carries the same entries as Local in a shuffled order; it is not
// a time-windowed board.
type Rankings struct {
	Local   []RankEntry `json:"local"`
	Friends []RankEntry `json:"friends"`
	Weekly  []RankEntry `json:"weekly"`
}

// Board returns the leaderboard for the given scope, or nil.
func (r Rankings) Board(t LeaderboardType) []RankEntry {
	switch t {
	case LeaderboardLocal:
		return r.Local
	case LeaderboardFriends:
		return r.Friends
	case LeaderboardWeekly:
		return r.Weekly
	default:
		return nil
	}
}

// ─── Friend Types ───────────────────────────────────────────────────────────

// AddFriendResult is the human-readable outcome of a friend request.
// A failed lookup is a normal result, not an error.
type AddFriendResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
