package domain

// RankingEntry is a derived leaderboard row. It is never stored; the ledger is
// the single source of truth and totals are recomputed by summation.
type RankingEntry struct {
	UserID      uint   `json:"id"`
	Name        string `json:"name"`
	Avatar      string `json:"avatar"`
	TotalPoints int    `json:"totalPoints"`
	Rank        int    `json:"rank"` // 1-based, ties are not collapsed
}
