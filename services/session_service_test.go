package services

import (
	"context"
	"errors"
	"testing"

	"github.com/Dosada05/blackjack-arena/models"
)

func TestSoloSessionLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ss := NewSessionService(f.store, f.options(), discardLogger())

	session, err := ss.StartSession(ctx, "alice", StartSessionInput{})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if session.StartingBalance != 1000 || session.NumDecks != 6 || session.TournamentID != nil {
		t.Fatalf("unexpected session defaults: %+v", session)
	}

	first, err := ss.RecordHand(ctx, session.ID, "alice", RecordHandInput{Bet: 50, Payout: 100, Outcome: models.OutcomeWin})
	if err != nil {
		t.Fatalf("record first hand: %v", err)
	}
	second, err := ss.RecordHand(ctx, session.ID, "alice", RecordHandInput{Bet: 50, Outcome: models.OutcomeLoss})
	if err != nil {
		t.Fatalf("record second hand: %v", err)
	}
	if first.HandNumber != 1 || second.HandNumber != 2 {
		t.Fatalf("expected hand numbers 1 and 2, got %d and %d", first.HandNumber, second.HandNumber)
	}

	_, err = ss.RecordHand(ctx, session.ID, "alice", RecordHandInput{HandNumber: intPtr(2), Bet: 10, Outcome: models.OutcomePush})
	if !errors.Is(err, ErrHandAlreadyRecorded) || ErrorCode(err) != CodeConflict {
		t.Fatalf("expected duplicate hand conflict, got %v", err)
	}

	done, err := ss.CompleteSession(ctx, session.ID, "alice", intPtr(1000))
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if !done.IsComplete || done.HandsPlayed != 2 || done.Profit() != 0 || done.EndedAt == nil {
		t.Fatalf("unexpected completed session: %+v", done)
	}

	if _, err := ss.CompleteSession(ctx, session.ID, "alice", intPtr(2000)); !errors.Is(err, ErrSessionComplete) {
		t.Fatalf("expected session complete, got %v", err)
	}
	if _, err := ss.RecordHand(ctx, session.ID, "alice", RecordHandInput{Bet: 10, Outcome: models.OutcomeWin}); !errors.Is(err, ErrSessionComplete) {
		t.Fatalf("expected session complete, got %v", err)
	}

	got, err := ss.GetSession(ctx, session.ID, "alice")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got.Hands) != 2 || got.Hands[0].HandNumber != 1 || got.Hands[1].Outcome != models.OutcomeLoss {
		t.Fatalf("unexpected hands: %+v", got.Hands)
	}
	if got.FinalBalance == nil || *got.FinalBalance != 1000 {
		t.Fatalf("final balance changed by the second completion: %v", got.FinalBalance)
	}
}

func TestSessionValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ss := NewSessionService(f.store, f.options(), discardLogger())

	if _, err := ss.StartSession(ctx, "alice", StartSessionInput{StartingBalance: intPtr(-5)}); !errors.Is(err, ErrValidationFailed) {
		t.Fatalf("expected validation error, got %v", err)
	}

	session, err := ss.StartSession(ctx, "alice", StartSessionInput{})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	_, err = ss.RecordHand(ctx, session.ID, "alice", RecordHandInput{Bet: 0, Outcome: "surrender"})
	var v *ValidationError
	if !errors.As(err, &v) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, ok := v.Fields["bet"]; !ok {
		t.Fatalf("expected bet problem, got %v", v.Fields)
	}
	if _, ok := v.Fields["outcome"]; !ok {
		t.Fatalf("expected outcome problem, got %v", v.Fields)
	}
	if _, err := ss.CompleteSession(ctx, session.ID, "alice", nil); !errors.Is(err, ErrValidationFailed) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestSessionsOfOtherPlayersAreHidden(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ss := NewSessionService(f.store, f.options(), discardLogger())

	session, err := ss.StartSession(ctx, "alice", StartSessionInput{})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := ss.GetSession(ctx, session.ID, "mallory"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := ss.RecordHand(ctx, session.ID, "mallory", RecordHandInput{Bet: 5, Outcome: models.OutcomeWin}); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := ss.CompleteSession(ctx, session.ID, "mallory", intPtr(1)); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := ss.GetSession(ctx, 12345, "alice"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestTournamentSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ss := NewSessionService(f.store, f.options(), discardLogger())

	start := f.clock.Now()
	tournament, err := f.ts.CreateTournament(ctx, "host", CreateTournamentInput{
		Name:            "Deep Stack",
		Format:          models.FormatBankrollChallenge,
		StartingBalance: intPtr(5000),
		NumDecks:        intPtr(2),
		StartTime:       &start,
	})
	if err != nil {
		t.Fatalf("create tournament: %v", err)
	}

	if _, err := ss.StartSession(ctx, "alice", StartSessionInput{TournamentID: &tournament.ID}); !errors.Is(err, ErrEntryNotFound) {
		t.Fatalf("expected entry not found before joining, got %v", err)
	}
	missing := int64(999)
	if _, err := ss.StartSession(ctx, "alice", StartSessionInput{TournamentID: &missing}); !errors.Is(err, ErrTournamentNotFound) {
		t.Fatalf("expected tournament not found, got %v", err)
	}

	entry := f.join(t, tournament.ID, "alice")
	f.join(t, tournament.ID, "bob")

	session, err := ss.StartSession(ctx, "alice", StartSessionInput{TournamentID: &tournament.ID, StartingBalance: intPtr(1)})
	if err != nil {
		t.Fatalf("start tournament session: %v", err)
	}
	if session.StartingBalance != 5000 || session.NumDecks != 2 {
		t.Fatalf("tournament session must use the tournament bankroll and shoe: %+v", session)
	}
	if session.EntryID == nil || *session.EntryID != entry.ID {
		t.Fatalf("expected entry %d, got %v", entry.ID, session.EntryID)
	}

	f.submit(t, tournament.ID, "alice", 5500)
	if _, err := ss.StartSession(ctx, "alice", StartSessionInput{TournamentID: &tournament.ID}); !errors.Is(err, ErrAlreadySubmitted) {
		t.Fatalf("expected already submitted, got %v", err)
	}
}
