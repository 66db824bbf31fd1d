package services

import (
	"context"
	"testing"
	"time"

	"github.com/Dosada05/blackjack-arena/models"
)

func TestActivationSchedulerRunsImmediately(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	past := f.clock.Now().Add(-time.Hour)
	tournament, err := f.ts.CreateTournament(ctx, "host", CreateTournamentInput{
		Name: "Morning Shoe", Format: models.FormatTimedRounds, StartTime: &past,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	sched, err := f.ts.StartActivationScheduler(time.Hour)
	if err != nil {
		t.Fatalf("start scheduler: %v", err)
	}
	defer func() {
		if err := sched.Shutdown(); err != nil {
			t.Errorf("shutdown: %v", err)
		}
	}()

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		got, err := f.ts.GetTournament(ctx, tournament.ID)
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if got.Status == models.StatusActive {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatal("tournament was not activated by the scheduler")
}
