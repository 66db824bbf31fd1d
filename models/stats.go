package models

// PlayerStats is derived on demand from sessions and hands; nothing here is stored.
type PlayerStats struct {
	PlayerID       string  `json:"player_id"`
	DisplayName    string  `json:"display_name,omitempty"`
	TotalHands     int64   `json:"total_hands"`
	Wins           int64   `json:"wins"`
	Losses         int64   `json:"losses"`
	Pushes         int64   `json:"pushes"`
	Blackjacks     int64   `json:"blackjacks"`
	WinRate        float64 `json:"win_rate"`
	TotalProfit    int64   `json:"total_profit"`
	SessionsPlayed int64   `json:"sessions_played"`
}

// LeaderboardRow is one line of the global leaderboard.
type LeaderboardRow struct {
	PlayerID       string  `json:"player_id"`
	DisplayName    string  `json:"display_name"`
	TotalProfit    int64   `json:"total_profit"`
	TotalHands     int64   `json:"total_hands"`
	SessionsPlayed int64   `json:"sessions_played"`
	WinRate        float64 `json:"win_rate"`
}
