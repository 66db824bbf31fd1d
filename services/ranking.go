package services

import (
	"context"
	"sort"

	"github.com/Dosada05/blackjack-arena/models"
	"github.com/Dosada05/blackjack-arena/repositories"
)

func balanceOf(e models.TournamentEntry) int {
	if e.FinalBalance == nil {
		return 0
	}
	return *e.FinalBalance
}

// sortStandings orders entries by final balance descending. Equal balances
// keep the earlier joiner first, then the lower entry id.
func sortStandings(entries []models.TournamentEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if balanceOf(a) != balanceOf(b) {
			return balanceOf(a) > balanceOf(b)
		}
		if !a.JoinedAt.Equal(b.JoinedAt) {
			return a.JoinedAt.Before(b.JoinedAt)
		}
		return a.ID < b.ID
	})
}

// assignRanks sorts the submitted entries in place, sets Rank on each and
// returns the entry id -> rank assignment. Unsubmitted entries must not be passed.
func assignRanks(submitted []models.TournamentEntry) map[int64]int {
	sortStandings(submitted)
	ranks := make(map[int64]int, len(submitted))
	for i := range submitted {
		rank := i + 1
		submitted[i].Rank = &rank
		ranks[submitted[i].ID] = rank
	}
	return ranks
}

// allSubmitted reports whether the tournament has entries and every one of
// them has been submitted.
func allSubmitted(entries []models.TournamentEntry) bool {
	if len(entries) == 0 {
		return false
	}
	for _, e := range entries {
		if !e.IsSubmitted {
			return false
		}
	}
	return true
}

// sortForDetail puts ranked entries first by rank, then the rest by balance and join time.
func sortForDetail(entries []models.TournamentEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		switch {
		case a.Rank != nil && b.Rank != nil:
			if *a.Rank != *b.Rank {
				return *a.Rank < *b.Rank
			}
		case a.Rank != nil:
			return true
		case b.Rank != nil:
			return false
		}
		if balanceOf(a) != balanceOf(b) {
			return balanceOf(a) > balanceOf(b)
		}
		if !a.JoinedAt.Equal(b.JoinedAt) {
			return a.JoinedAt.Before(b.JoinedAt)
		}
		return a.ID < b.ID
	})
}

type recalculation struct {
	standings []models.TournamentEntry
	completed bool // the tournament flipped to completed in this unit
}

// recalculate reranks every submitted entry of t and completes the
// tournament once all entries are in. It must run inside an Atomic unit that
// holds t via GetForUpdate.
func recalculate(ctx context.Context, tx repositories.Store, t *models.Tournament) (recalculation, error) {
	all, err := tx.Entries().ListByTournament(ctx, t.ID, false)
	if err != nil {
		return recalculation{}, err
	}

	submitted := make([]models.TournamentEntry, 0, len(all))
	for _, e := range all {
		if e.IsSubmitted {
			submitted = append(submitted, e)
		}
	}

	ranks := assignRanks(submitted)
	if err := tx.Entries().UpdateRanks(ctx, t.ID, ranks); err != nil {
		return recalculation{}, err
	}

	res := recalculation{standings: submitted}
	if allSubmitted(all) && t.Status != models.StatusCompleted && t.Status.CanTransitionTo(models.StatusCompleted) {
		if err := tx.Tournaments().UpdateStatus(ctx, t.ID, models.StatusCompleted); err != nil {
			return recalculation{}, err
		}
		t.Status = models.StatusCompleted
		res.completed = true
	}
	return res, nil
}
