package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Dosada05/blackjack-arena/repositories"
)

// conflictingStore fails the first `failures` Atomic calls the way a
// serialization failure would.
type conflictingStore struct {
	repositories.Store
	failures int32
	calls    atomic.Int32
}

func (s *conflictingStore) Atomic(ctx context.Context, fn func(tx repositories.Store) error) error {
	if s.calls.Add(1) <= s.failures {
		return repositories.ErrConcurrencyConflict
	}
	return s.Store.Atomic(ctx, fn)
}

func TestRetryOptions(t *testing.T) {
	var o RetryOptions
	o.FillDefaults()
	if o.MaxAttempts != 5 || o.Min != 5*time.Millisecond || o.Max != 200*time.Millisecond || o.Jitter != 1.5 {
		t.Fatalf("unexpected defaults: %+v", o)
	}
	if err := o.Validate(); err != nil {
		t.Fatalf("defaults must validate: %v", err)
	}

	bad := RetryOptions{Jitter: 0.5}
	if err := bad.Validate(); err == nil {
		t.Fatal("jitter below 1 must be rejected")
	}
}

func TestJoinRetriesConflicts(t *testing.T) {
	f := newFixture(t)
	tournament := f.createTournament(t, 4)

	store := &conflictingStore{Store: f.store, failures: 2}
	ts := NewTournamentService(store, nil, nil, f.options(), discardLogger())

	entry, err := ts.JoinTournament(context.Background(), tournament.ID, "A")
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	if entry.PlayerID != "A" {
		t.Fatalf("unexpected entry: %+v", entry)
	}
	if got := store.calls.Load(); got != 3 {
		t.Fatalf("expected 3 attempts, got %d", got)
	}
}

func TestSubmitGivesUpAsTransient(t *testing.T) {
	f := newFixture(t)
	tournament := f.createTournament(t, 4)
	f.join(t, tournament.ID, "A")

	store := &conflictingStore{Store: f.store, failures: 100}
	ts := NewTournamentService(store, nil, nil, f.options(), discardLogger())

	_, err := ts.SubmitResult(context.Background(), tournament.ID, "A", SubmitResultInput{
		FinalBalance: intPtr(1300), HandsPlayed: intPtr(5),
	})
	if !errors.Is(err, ErrTransient) {
		t.Fatalf("expected transient, got %v", err)
	}
	if ErrorCode(err) != CodeTransient {
		t.Fatalf("expected code %s, got %s", CodeTransient, ErrorCode(err))
	}
	if got := store.calls.Load(); got != 3 {
		t.Fatalf("expected the retry budget of 3 to be used, got %d", got)
	}

	entry, err := f.store.Entries().GetByTournamentAndPlayer(context.Background(), tournament.ID, "A")
	if err != nil {
		t.Fatalf("get entry: %v", err)
	}
	if entry.IsSubmitted {
		t.Fatal("nothing may be committed when every attempt conflicted")
	}
}

func TestRetryStopsOnCancelledContext(t *testing.T) {
	f := newFixture(t)
	store := &conflictingStore{Store: f.store, failures: 100}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := atomicWithRetry(ctx, store, RetryOptions{MaxAttempts: 10, Min: time.Second, Max: time.Second}, discardLogger(), "test",
		func(repositories.Store) error { return nil })
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context cancellation, got %v", err)
	}
	if got := store.calls.Load(); got != 1 {
		t.Fatalf("expected a single attempt, got %d", got)
	}
}
