package models

import "time"

type HandOutcome string

const (
	OutcomeWin       HandOutcome = "win"
	OutcomeLoss      HandOutcome = "loss"
	OutcomePush      HandOutcome = "push"
	OutcomeBlackjack HandOutcome = "blackjack"
)

func (o HandOutcome) IsValid() bool {
	switch o {
	case OutcomeWin, OutcomeLoss, OutcomePush, OutcomeBlackjack:
		return true
	}
	return false
}

// IsWin counts blackjacks as wins.
func (o HandOutcome) IsWin() bool {
	return o == OutcomeWin || o == OutcomeBlackjack
}

// GameSession is one sitting at the table, solo or on behalf of a tournament entry.
type GameSession struct {
	ID              int64      `json:"id" db:"id"`
	PlayerID        string     `json:"player_id" db:"player_id"`
	TournamentID    *int64     `json:"tournament_id,omitempty" db:"tournament_id"`
	EntryID         *int64     `json:"entry_id,omitempty" db:"entry_id"`
	StartedAt       time.Time  `json:"started_at" db:"started_at"`
	EndedAt         *time.Time `json:"ended_at,omitempty" db:"ended_at"`
	StartingBalance int        `json:"starting_balance" db:"starting_balance"`
	FinalBalance    *int       `json:"final_balance" db:"final_balance"`
	HandsPlayed     int        `json:"hands_played" db:"hands_played"`
	NumDecks        int        `json:"num_decks" db:"num_decks"`
	IsComplete      bool       `json:"is_complete" db:"is_complete"`

	Hands []HandResult `json:"hands,omitempty" db:"-"`
}

// Profit is zero for sessions that have not reported a final balance.
func (s GameSession) Profit() int {
	if s.FinalBalance == nil {
		return 0
	}
	return *s.FinalBalance - s.StartingBalance
}

// HandResult is an immutable record of one resolved hand.
type HandResult struct {
	ID         int64       `json:"id" db:"id"`
	SessionID  int64       `json:"session_id" db:"session_id"`
	PlayerID   string      `json:"player_id" db:"player_id"`
	HandNumber int         `json:"hand_number" db:"hand_number"`
	Bet        int         `json:"bet" db:"bet"`
	Payout     int         `json:"payout" db:"payout"`
	Outcome    HandOutcome `json:"outcome" db:"outcome"`
	CreatedAt  time.Time   `json:"created_at" db:"created_at"`
}
