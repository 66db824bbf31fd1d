package models

import "time"

type TournamentEventType string

const (
	EventEntryJoined         TournamentEventType = "entry_joined"
	EventResultSubmitted     TournamentEventType = "result_submitted"
	EventTournamentCompleted TournamentEventType = "tournament_completed"
	EventTournamentActivated TournamentEventType = "tournament_activated"
)

// TournamentEvent is a read-only notification about a committed change.
type TournamentEvent struct {
	ID           string              `json:"id"`
	Type         TournamentEventType `json:"type"`
	TournamentID int64               `json:"tournament_id"`
	OccurredAt   time.Time           `json:"occurred_at"`
	Entry        *TournamentEntry    `json:"entry,omitempty"`
	Leaderboard  []TournamentEntry   `json:"leaderboard,omitempty"`
	Status       TournamentStatus    `json:"status,omitempty"`
}
