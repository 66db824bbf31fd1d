package models

import "time"

// TournamentEntry is a single player's participation in a tournament.
type TournamentEntry struct {
	ID           int64      `json:"id" db:"id"`
	TournamentID int64      `json:"tournament_id" db:"tournament_id"`
	PlayerID     string     `json:"player_id" db:"player_id"`
	JoinedAt     time.Time  `json:"joined_at" db:"joined_at"`
	FinalBalance *int       `json:"final_balance" db:"final_balance"`
	HandsPlayed  *int       `json:"hands_played" db:"hands_played"`
	IsSubmitted  bool       `json:"is_submitted" db:"is_submitted"`
	SubmittedAt  *time.Time `json:"submitted_at,omitempty" db:"submitted_at"`
	Rank         *int       `json:"rank" db:"rank"` // nil until submitted

	DisplayName string `json:"display_name,omitempty" db:"-"`
	Profit      int    `json:"profit" db:"-"`
}

// ComputeProfit returns final_balance - startingBalance, or 0 when nothing was submitted.
func (e TournamentEntry) ComputeProfit(startingBalance int) int {
	if !e.IsSubmitted || e.FinalBalance == nil {
		return 0
	}
	return *e.FinalBalance - startingBalance
}
