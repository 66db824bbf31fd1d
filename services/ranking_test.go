package services

import (
	"fmt"
	"testing"
	"time"

	"github.com/Dosada05/blackjack-arena/models"
)

func submittedEntry(id int64, balance int, joined time.Time) models.TournamentEntry {
	return models.TournamentEntry{
		ID:           id,
		PlayerID:     fmt.Sprintf("p%d", id),
		JoinedAt:     joined,
		FinalBalance: &balance,
		IsSubmitted:  true,
	}
}

func TestAssignRanksOrdersByBalanceThenJoinTime(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	entries := []models.TournamentEntry{
		submittedEntry(1, 1500, base.Add(2*time.Minute)),
		submittedEntry(2, 2000, base.Add(3*time.Minute)),
		submittedEntry(3, 1500, base.Add(1*time.Minute)),
		submittedEntry(4, 1500, base.Add(1*time.Minute)),
		submittedEntry(5, 0, base),
	}

	ranks := assignRanks(entries)

	wantOrder := []int64{2, 3, 4, 1, 5}
	for i, id := range wantOrder {
		if entries[i].ID != id {
			t.Fatalf("position %d: expected entry %d, got %d", i, id, entries[i].ID)
		}
		if rankOf(entries[i]) != i+1 {
			t.Fatalf("entry %d: expected rank %d, got %d", id, i+1, rankOf(entries[i]))
		}
		if ranks[id] != i+1 {
			t.Fatalf("assignment for entry %d: expected %d, got %d", id, i+1, ranks[id])
		}
	}
	if len(ranks) != len(entries) {
		t.Fatalf("expected %d assignments, got %d", len(entries), len(ranks))
	}
}

func TestAssignRanksEmpty(t *testing.T) {
	if ranks := assignRanks(nil); len(ranks) != 0 {
		t.Fatalf("expected no assignments, got %v", ranks)
	}
}

func TestAllSubmitted(t *testing.T) {
	now := time.Now()
	if allSubmitted(nil) {
		t.Fatal("a tournament without entries must never count as fully submitted")
	}

	entries := []models.TournamentEntry{submittedEntry(1, 100, now), {ID: 2, JoinedAt: now}}
	if allSubmitted(entries) {
		t.Fatal("unsubmitted entry ignored")
	}
	entries[1] = submittedEntry(2, 50, now)
	if !allSubmitted(entries) {
		t.Fatal("expected all submitted")
	}
}

func TestSortForDetailPutsRankedFirst(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	r1, r2 := 1, 2
	entries := []models.TournamentEntry{
		{ID: 1, JoinedAt: base},
		{ID: 2, JoinedAt: base.Add(time.Second), Rank: &r2, IsSubmitted: true, FinalBalance: intPtr(900)},
		{ID: 3, JoinedAt: base.Add(2 * time.Second)},
		{ID: 4, JoinedAt: base.Add(3 * time.Second), Rank: &r1, IsSubmitted: true, FinalBalance: intPtr(1100)},
	}

	sortForDetail(entries)

	want := []int64{4, 2, 1, 3}
	for i, id := range want {
		if entries[i].ID != id {
			t.Fatalf("position %d: expected entry %d, got %d", i, id, entries[i].ID)
		}
	}
}
