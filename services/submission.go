package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Dosada05/blackjack-arena/models"
	"github.com/Dosada05/blackjack-arena/repositories"
)

const archiveTimeout = 10 * time.Second

type SubmitResultInput struct {
	FinalBalance *int `json:"final_balance"`
	HandsPlayed  *int `json:"hands_played"`
}

func (in SubmitResultInput) validate() error {
	v := newValidationError()
	if in.FinalBalance == nil {
		v.Add("final_balance", "is required")
	} else if *in.FinalBalance < 0 {
		v.Add("final_balance", "must not be negative")
	}
	if in.HandsPlayed == nil {
		v.Add("hands_played", "is required")
	} else if *in.HandsPlayed < 0 {
		v.Add("hands_played", "must not be negative")
	}
	return v.orNil()
}

// SubmitResult фиксирует итог игрока, пересчитывает места всех сдавших и
// завершает турнир, когда сдали все. Всё это одна атомарная единица.
func (s *TournamentService) SubmitResult(ctx context.Context, tournamentID int64, playerID string, in SubmitResultInput) (*models.TournamentEntry, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	var (
		tournament models.Tournament
		result     recalculation
		submitted  models.TournamentEntry
	)
	err := atomicWithRetry(ctx, s.store, s.retry, s.logger, "submit result", func(tx repositories.Store) error {
		t, err := tx.Tournaments().GetForUpdate(ctx, tournamentID)
		if err != nil {
			return err
		}
		entry, err := tx.Entries().GetByTournamentAndPlayer(ctx, tournamentID, playerID)
		if err != nil {
			return err
		}
		if entry.IsSubmitted {
			return ErrAlreadySubmitted
		}

		if err := tx.Entries().MarkSubmitted(ctx, tournamentID, entry.ID, *in.FinalBalance, *in.HandsPlayed, s.now()); err != nil {
			return err
		}
		res, err := recalculate(ctx, tx, t)
		if err != nil {
			return err
		}

		found := false
		for _, e := range res.standings {
			if e.ID == entry.ID {
				submitted = e
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("submitted entry %d missing from standings", entry.ID)
		}
		tournament = *t
		result = res
		return nil
	})
	if err != nil {
		return nil, handleRepositoryError(err)
	}

	if err := decorateEntries(ctx, s.store, tournament.StartingBalance, result.standings); err != nil {
		s.logger.WarnContext(ctx, "failed to decorate standings", slog.Int64("tournament_id", tournamentID), slog.Any("error", err))
	}
	for _, e := range result.standings {
		if e.ID == submitted.ID {
			submitted = e
			break
		}
	}

	s.logger.InfoContext(ctx, "result submitted",
		slog.Int64("tournament_id", tournamentID),
		slog.String("player_id", playerID),
		slog.Int("final_balance", *in.FinalBalance),
		slog.Int("rank", *submitted.Rank),
		slog.Bool("completed", result.completed))

	s.publishSubmission(tournament, submitted, result)
	if result.completed {
		s.archiveStandings(ctx, tournament, result.standings)
	}
	return &submitted, nil
}

// RecalculateRanks reruns ranking and completion detection for a tournament.
// Running it twice without a new submission leaves the ranks unchanged.
func (s *TournamentService) RecalculateRanks(ctx context.Context, tournamentID int64) ([]models.TournamentEntry, error) {
	var (
		tournament models.Tournament
		result     recalculation
	)
	err := atomicWithRetry(ctx, s.store, s.retry, s.logger, "recalculate ranks", func(tx repositories.Store) error {
		t, err := tx.Tournaments().GetForUpdate(ctx, tournamentID)
		if err != nil {
			return err
		}
		res, err := recalculate(ctx, tx, t)
		if err != nil {
			return err
		}
		tournament = *t
		result = res
		return nil
	})
	if err != nil {
		return nil, handleRepositoryError(err)
	}

	if err := decorateEntries(ctx, s.store, tournament.StartingBalance, result.standings); err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "ranks recalculated",
		slog.Int64("tournament_id", tournamentID),
		slog.Int("ranked_entries", len(result.standings)),
		slog.Bool("completed", result.completed))

	if result.completed {
		event := newTournamentEvent(models.EventTournamentCompleted, tournamentID, s.now())
		event.Status = models.StatusCompleted
		event.Leaderboard = result.standings
		s.events.Publish(event)
		s.archiveStandings(ctx, tournament, result.standings)
	}
	return result.standings, nil
}

func (s *TournamentService) publishSubmission(t models.Tournament, entry models.TournamentEntry, res recalculation) {
	at := s.now()

	event := newTournamentEvent(models.EventResultSubmitted, t.ID, at)
	event.Entry = &entry
	event.Leaderboard = append([]models.TournamentEntry(nil), res.standings...)
	event.Status = t.Status
	s.events.Publish(event)

	if res.completed {
		done := newTournamentEvent(models.EventTournamentCompleted, t.ID, at)
		done.Status = models.StatusCompleted
		done.Leaderboard = event.Leaderboard
		s.events.Publish(done)
	}
}

// archiveStandings is best effort: the submission is already committed.
func (s *TournamentService) archiveStandings(ctx context.Context, t models.Tournament, standings []models.TournamentEntry) {
	if s.archiver == nil {
		return
	}
	archiveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), archiveTimeout)
	defer cancel()

	location, err := s.archiver.ArchiveStandings(archiveCtx, t, standings)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to archive standings",
			slog.Int64("tournament_id", t.ID), slog.Any("error", err))
		return
	}
	s.logger.InfoContext(ctx, "standings archived",
		slog.Int64("tournament_id", t.ID), slog.String("location", location))
}
