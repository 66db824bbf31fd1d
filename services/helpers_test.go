package services

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/Dosada05/blackjack-arena/models"
	"github.com/Dosada05/blackjack-arena/repositories"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func openTestStore(t *testing.T) repositories.Store {
	t.Helper()
	store, err := repositories.NewBoltStore(filepath.Join(t.TempDir(), "arena.db"))
	if err != nil {
		t.Fatalf("open bolt store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

// stepClock returns a strictly increasing time on every call.
type stepClock struct {
	mu  sync.Mutex
	cur time.Time
}

func newStepClock() *stepClock {
	return &stepClock{cur: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cur = c.cur.Add(time.Second)
	return c.cur
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []models.TournamentEvent
}

func (p *recordingPublisher) Publish(e models.TournamentEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
}

func (p *recordingPublisher) count(typ models.TournamentEventType) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, e := range p.events {
		if e.Type == typ {
			n++
		}
	}
	return n
}

type recordingArchiver struct {
	mu       sync.Mutex
	archived map[int64][]models.TournamentEntry
	removed  []int64
}

func (a *recordingArchiver) ArchiveStandings(_ context.Context, t models.Tournament, standings []models.TournamentEntry) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.archived == nil {
		a.archived = make(map[int64][]models.TournamentEntry)
	}
	a.archived[t.ID] = standings
	return StandingsKey(t), nil
}

func (a *recordingArchiver) RemoveStandings(_ context.Context, t models.Tournament) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.removed = append(a.removed, t.ID)
	return nil
}

type fixture struct {
	store    repositories.Store
	clock    *stepClock
	events   *recordingPublisher
	archiver *recordingArchiver
	ts       *TournamentService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store:    openTestStore(t),
		clock:    newStepClock(),
		events:   &recordingPublisher{},
		archiver: &recordingArchiver{},
	}
	f.ts = NewTournamentService(f.store, f.events, f.archiver, f.options(), discardLogger())
	return f
}

func (f *fixture) options() TournamentServiceOptions {
	return TournamentServiceOptions{
		Retry: RetryOptions{MaxAttempts: 3, Min: time.Millisecond, Max: time.Millisecond},
		Now:   f.clock.Now,
	}
}

func intPtr(v int) *int { return &v }

func (f *fixture) createTournament(t *testing.T, maxPlayers int) *models.Tournament {
	t.Helper()
	start := f.clock.Now().Add(time.Hour)
	tournament, err := f.ts.CreateTournament(context.Background(), "host", CreateTournamentInput{
		Name:       "Friday Night Felt",
		Format:     models.FormatBankrollChallenge,
		MaxPlayers: intPtr(maxPlayers),
		StartTime:  &start,
	})
	if err != nil {
		t.Fatalf("create tournament: %v", err)
	}
	return tournament
}

func (f *fixture) join(t *testing.T, tournamentID int64, playerID string) *models.TournamentEntry {
	t.Helper()
	entry, err := f.ts.JoinTournament(context.Background(), tournamentID, playerID)
	if err != nil {
		t.Fatalf("join %s: %v", playerID, err)
	}
	return entry
}

func (f *fixture) submit(t *testing.T, tournamentID int64, playerID string, balance int) *models.TournamentEntry {
	t.Helper()
	entry, err := f.ts.SubmitResult(context.Background(), tournamentID, playerID, SubmitResultInput{
		FinalBalance: intPtr(balance),
		HandsPlayed:  intPtr(10),
	})
	if err != nil {
		t.Fatalf("submit %s: %v", playerID, err)
	}
	return entry
}

func rankOf(e models.TournamentEntry) int {
	if e.Rank == nil {
		return 0
	}
	return *e.Rank
}
