package domain

// LeaderboardEntry is one backend-aggregated row: a buyer address with its
// ticket total and optional social identity. Entries are read-only snapshots
// and are never merged with on-chain state.
type LeaderboardEntry struct {
	Buyer     string `json:"buyer"`
	Total     int64  `json:"total"`
	Username  string `json:"username"`
	AvatarURL string `json:"pfp_url,omitempty"`
}

// Leaderboard groups the three backend tabs.
type Leaderboard struct {
	Today   []LeaderboardEntry `json:"today"`
	Week    []LeaderboardEntry `json:"week"`
	AllTime []LeaderboardEntry `json:"allTime"`
}

// Winner identifies a drawn winner for one history day.
type Winner struct {
	Username  string `json:"username"`
	AvatarURL string `json:"pfp_url,omitempty"`
	Address   string `json:"address"`
}

// HistoryDay is one per-day record of the caller's participation as served by
// the backend aggregate endpoint.
type HistoryDay struct {
	Day             string   `json:"normalDay"`
	LuckyNumber     uint64   `json:"luckyNumber"`
	PotEth          string   `json:"potEth"`
	UserTickets     []uint64 `json:"userTickets"`
	UserTicketCount int      `json:"userTicketCount"`
	TotalTickets    int      `json:"totalTickets"`
	Winners         []Winner `json:"winners"`
}
