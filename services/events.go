package services

import (
	"context"
	"time"

	"github.com/Dosada05/blackjack-arena/models"
	"github.com/google/uuid"
)

// EventPublisher receives notifications after a change has been committed.
// Implementations must not block.
type EventPublisher interface {
	Publish(event models.TournamentEvent)
}

// StandingsArchiver keeps the final standings of completed tournaments.
type StandingsArchiver interface {
	// ArchiveStandings returns where the standings ended up.
	ArchiveStandings(ctx context.Context, tournament models.Tournament, standings []models.TournamentEntry) (string, error)
	RemoveStandings(ctx context.Context, tournament models.Tournament) error
}

type noopPublisher struct{}

func (noopPublisher) Publish(models.TournamentEvent) {}

func newTournamentEvent(typ models.TournamentEventType, tournamentID int64, at time.Time) models.TournamentEvent {
	return models.TournamentEvent{
		ID:           uuid.NewString(),
		Type:         typ,
		TournamentID: tournamentID,
		OccurredAt:   at,
	}
}
