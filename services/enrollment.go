package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/Dosada05/blackjack-arena/models"
	"github.com/Dosada05/blackjack-arena/repositories"
)

// JoinTournament записывает игрока в турнир. Проверки и вставка выполняются
// в одной атомарной единице, поэтому число записей никогда не превышает max_players.
func (s *TournamentService) JoinTournament(ctx context.Context, tournamentID int64, playerID string) (*models.TournamentEntry, error) {
	var (
		entry           *models.TournamentEntry
		startingBalance int
	)
	err := atomicWithRetry(ctx, s.store, s.retry, s.logger, "join tournament", func(tx repositories.Store) error {
		entry = nil
		t, err := tx.Tournaments().GetForUpdate(ctx, tournamentID)
		if err != nil {
			return err
		}
		if !t.Status.AcceptsEntries() {
			return ErrTournamentClosed
		}

		// A repeat join is reported as such even when the tournament has filled up since.
		_, err = tx.Entries().GetByTournamentAndPlayer(ctx, tournamentID, playerID)
		switch {
		case err == nil:
			return ErrAlreadyJoined
		case !errors.Is(err, repositories.ErrEntryNotFound):
			return err
		}

		count, err := tx.Entries().CountByTournament(ctx, tournamentID)
		if err != nil {
			return err
		}
		if count >= t.MaxPlayers {
			return ErrTournamentFull
		}

		e := &models.TournamentEntry{
			TournamentID: tournamentID,
			PlayerID:     playerID,
			JoinedAt:     s.now(),
		}
		if err := tx.Entries().Create(ctx, e); err != nil {
			return err
		}
		entry = e
		startingBalance = t.StartingBalance
		return nil
	})
	if err != nil {
		return nil, handleRepositoryError(err)
	}

	decorated := []models.TournamentEntry{*entry}
	if err := decorateEntries(ctx, s.store, startingBalance, decorated); err != nil {
		s.logger.WarnContext(ctx, "failed to decorate joined entry", slog.Int64("entry_id", entry.ID), slog.Any("error", err))
	} else {
		entry = &decorated[0]
	}

	s.logger.InfoContext(ctx, "player joined tournament",
		slog.Int64("tournament_id", tournamentID), slog.String("player_id", playerID), slog.Int64("entry_id", entry.ID))

	event := newTournamentEvent(models.EventEntryJoined, tournamentID, entry.JoinedAt)
	joined := *entry
	event.Entry = &joined
	s.events.Publish(event)

	return entry, nil
}
