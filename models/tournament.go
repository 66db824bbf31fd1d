package models

import "time"

// TournamentFormat mirrors the tournament_format ENUM in the database.
type TournamentFormat string

const (
	FormatBankrollChallenge TournamentFormat = "bankroll_challenge"
	FormatTimedRounds       TournamentFormat = "timed_rounds"
)

func (f TournamentFormat) IsValid() bool {
	return f == FormatBankrollChallenge || f == FormatTimedRounds
}

// TournamentStatus mirrors the tournament_status ENUM in the database.
type TournamentStatus string

const (
	StatusUpcoming  TournamentStatus = "upcoming"
	StatusActive    TournamentStatus = "active"
	StatusCompleted TournamentStatus = "completed"
)

func (s TournamentStatus) IsValid() bool {
	return s == StatusUpcoming || s == StatusActive || s == StatusCompleted
}

// AcceptsEntries reports whether players may still join.
func (s TournamentStatus) AcceptsEntries() bool {
	return s == StatusUpcoming || s == StatusActive
}

// CanTransitionTo allows only forward moves: upcoming -> active -> completed, upcoming -> completed.
func (s TournamentStatus) CanTransitionTo(next TournamentStatus) bool {
	if s == next {
		return true
	}
	switch s {
	case StatusUpcoming:
		return next == StatusActive || next == StatusCompleted
	case StatusActive:
		return next == StatusCompleted
	default:
		return false
	}
}

// Tournament is a bankroll competition between players.
type Tournament struct {
	ID               int64            `json:"id" db:"id"`
	Name             string           `json:"name" db:"name"`
	CreatorID        string           `json:"creator_id" db:"creator_id"`
	Format           TournamentFormat `json:"format" db:"format"`
	Status           TournamentStatus `json:"status" db:"status"`
	StartingBalance  int              `json:"starting_balance" db:"starting_balance"`
	HandLimit        *int             `json:"hand_limit,omitempty" db:"hand_limit"`
	TimeLimitMinutes *int             `json:"time_limit_minutes,omitempty" db:"time_limit_minutes"`
	NumDecks         int              `json:"num_decks" db:"num_decks"`
	MaxPlayers       int              `json:"max_players" db:"max_players"`
	StartTime        time.Time        `json:"start_time" db:"start_time"`
	CreatedAt        time.Time        `json:"created_at" db:"created_at"`

	// Populated by the service layer, not stored.
	PlayerCount int               `json:"player_count" db:"-"`
	Entries     []TournamentEntry `json:"entries,omitempty" db:"-"`
}
