package repositories

import (
	"context"
	"time"

	"github.com/Dosada05/blackjack-arena/models"
)

type ListTournamentsFilter struct {
	Status       *models.TournamentStatus
	CreatorID    *string
	StartsBefore *time.Time
	Limit        int
	Offset       int
}

type TournamentRepository interface {
	Create(ctx context.Context, t *models.Tournament) error
	GetByID(ctx context.Context, id int64) (*models.Tournament, error)
	// GetForUpdate reads the tournament and holds it exclusively until the
	// surrounding Atomic unit ends. Every join and submission goes through it first.
	GetForUpdate(ctx context.Context, id int64) (*models.Tournament, error)
	List(ctx context.Context, filter ListTournamentsFilter) ([]models.Tournament, error)
	UpdateStatus(ctx context.Context, id int64, status models.TournamentStatus) error
	Delete(ctx context.Context, id int64) error
}

type EntryRepository interface {
	Create(ctx context.Context, e *models.TournamentEntry) error
	GetByTournamentAndPlayer(ctx context.Context, tournamentID int64, playerID string) (*models.TournamentEntry, error)
	CountByTournament(ctx context.Context, tournamentID int64) (int, error)
	// ListByTournament returns entries ordered by joined_at, then id.
	ListByTournament(ctx context.Context, tournamentID int64, submittedOnly bool) ([]models.TournamentEntry, error)
	MarkSubmitted(ctx context.Context, tournamentID, entryID int64, finalBalance, handsPlayed int, at time.Time) error
	UpdateRanks(ctx context.Context, tournamentID int64, ranks map[int64]int) error
}

// SessionTotals sums a player's completed sessions.
type SessionTotals struct {
	PlayerID    string
	Sessions    int64
	TotalProfit int64
	TotalHands  int64
}

// HandCounts tallies a player's recorded hands by outcome.
type HandCounts struct {
	Total      int64
	Wins       int64 // win + blackjack
	Losses     int64
	Pushes     int64
	Blackjacks int64
}

type SessionRepository interface {
	Create(ctx context.Context, s *models.GameSession) error
	GetByID(ctx context.Context, id int64) (*models.GameSession, error)
	GetForUpdate(ctx context.Context, id int64) (*models.GameSession, error)
	Complete(ctx context.Context, id int64, finalBalance int, endedAt time.Time) error
	// AddHand stores the hand and refreshes the session's hands_played.
	AddHand(ctx context.Context, h *models.HandResult) error
	ListHands(ctx context.Context, sessionID int64) ([]models.HandResult, error)
	CompletedTotals(ctx context.Context, playerID string) (SessionTotals, error)
	// TopCompletedTotals returns players with at least one completed session,
	// ordered by total profit descending, then player id.
	TopCompletedTotals(ctx context.Context, limit int) ([]SessionTotals, error)
	HandCounts(ctx context.Context, playerID string) (HandCounts, error)
	HandCountsByPlayer(ctx context.Context, playerIDs []string) (map[string]HandCounts, error)
}

type PlayerRepository interface {
	Upsert(ctx context.Context, p models.Player) error
	GetByID(ctx context.Context, id string) (*models.Player, error)
	DisplayNames(ctx context.Context, ids []string) (map[string]string, error)
}

// Store is the entity store shared by every service.
type Store interface {
	Tournaments() TournamentRepository
	Entries() EntryRepository
	Sessions() SessionRepository
	Players() PlayerRepository
	// Atomic runs fn as a single unit: either everything fn wrote is committed or
	// nothing is. The Store handed to fn is bound to that unit.
	Atomic(ctx context.Context, fn func(tx Store) error) error
	Close() error
}
