package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Dosada05/blackjack-arena/models"
	"github.com/lib/pq"
)

type postgresSessionRepository struct {
	exec SQLExecutor
}

const sessionColumns = `
	id, player_id, tournament_id, entry_id, started_at, ended_at,
	starting_balance, final_balance, hands_played, num_decks, is_complete`

func scanSession(row rowScanner) (*models.GameSession, error) {
	s := &models.GameSession{}
	err := row.Scan(
		&s.ID, &s.PlayerID, &s.TournamentID, &s.EntryID, &s.StartedAt, &s.EndedAt,
		&s.StartingBalance, &s.FinalBalance, &s.HandsPlayed, &s.NumDecks, &s.IsComplete,
	)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (r *postgresSessionRepository) Create(ctx context.Context, s *models.GameSession) error {
	query := `
		INSERT INTO game_sessions (
			player_id, tournament_id, entry_id, started_at, starting_balance, num_decks
		) VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`

	err := r.exec.QueryRowContext(ctx, query,
		s.PlayerID, s.TournamentID, s.EntryID, s.StartedAt, s.StartingBalance, s.NumDecks,
	).Scan(&s.ID)
	if err != nil {
		if _, ok := isPgCode(err, pgForeignKeyViolation); ok {
			return ErrEntryTournamentInvalid
		}
		return wrapPgError("create session", err)
	}
	return nil
}

func (r *postgresSessionRepository) getOne(ctx context.Context, query string, id int64) (*models.GameSession, error) {
	s, err := scanSession(r.exec.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, wrapPgError("get session", err)
	}
	return s, nil
}

func (r *postgresSessionRepository) GetByID(ctx context.Context, id int64) (*models.GameSession, error) {
	return r.getOne(ctx, `SELECT`+sessionColumns+` FROM game_sessions WHERE id = $1`, id)
}

func (r *postgresSessionRepository) GetForUpdate(ctx context.Context, id int64) (*models.GameSession, error) {
	return r.getOne(ctx, `SELECT`+sessionColumns+` FROM game_sessions WHERE id = $1 FOR UPDATE`, id)
}

func (r *postgresSessionRepository) Complete(ctx context.Context, id int64, finalBalance int, endedAt time.Time) error {
	query := `
		UPDATE game_sessions
		SET final_balance = $1, ended_at = $2, is_complete = TRUE
		WHERE id = $3 AND NOT is_complete`
	result, err := r.exec.ExecContext(ctx, query, finalBalance, endedAt, id)
	if err != nil {
		return wrapPgError("complete session", err)
	}
	return checkAffectedRows(result, ErrSessionAlreadyComplete)
}

func (r *postgresSessionRepository) AddHand(ctx context.Context, h *models.HandResult) error {
	query := `
		INSERT INTO hand_results (session_id, player_id, hand_number, bet, payout, outcome, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`
	err := r.exec.QueryRowContext(ctx, query,
		h.SessionID, h.PlayerID, h.HandNumber, h.Bet, h.Payout, h.Outcome, h.CreatedAt,
	).Scan(&h.ID)
	if err != nil {
		if _, ok := isPgCode(err, pgUniqueViolation); ok {
			return ErrHandConflict
		}
		if _, ok := isPgCode(err, pgForeignKeyViolation); ok {
			return ErrSessionNotFound
		}
		return wrapPgError("add hand", err)
	}

	_, err = r.exec.ExecContext(ctx, `
		UPDATE game_sessions
		SET hands_played = (SELECT COUNT(*) FROM hand_results WHERE session_id = $1)
		WHERE id = $1`, h.SessionID)
	return wrapPgError("refresh hands played", err)
}

func (r *postgresSessionRepository) ListHands(ctx context.Context, sessionID int64) ([]models.HandResult, error) {
	query := `
		SELECT id, session_id, player_id, hand_number, bet, payout, outcome, created_at
		FROM hand_results
		WHERE session_id = $1
		ORDER BY hand_number ASC`
	rows, err := r.exec.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, wrapPgError("list hands", err)
	}
	defer rows.Close()

	hands := make([]models.HandResult, 0)
	for rows.Next() {
		var h models.HandResult
		if err := rows.Scan(&h.ID, &h.SessionID, &h.PlayerID, &h.HandNumber, &h.Bet, &h.Payout, &h.Outcome, &h.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan hand row: %w", err)
		}
		hands = append(hands, h)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapPgError("iterate hand rows", err)
	}
	return hands, nil
}

func (r *postgresSessionRepository) CompletedTotals(ctx context.Context, playerID string) (SessionTotals, error) {
	totals := SessionTotals{PlayerID: playerID}
	query := `
		SELECT COUNT(*),
		       COALESCE(SUM(final_balance - starting_balance), 0),
		       COALESCE(SUM(hands_played), 0)
		FROM game_sessions
		WHERE player_id = $1 AND is_complete`
	err := r.exec.QueryRowContext(ctx, query, playerID).Scan(&totals.Sessions, &totals.TotalProfit, &totals.TotalHands)
	if err != nil {
		return SessionTotals{}, wrapPgError("completed totals", err)
	}
	return totals, nil
}

func (r *postgresSessionRepository) TopCompletedTotals(ctx context.Context, limit int) ([]SessionTotals, error) {
	query := `
		SELECT player_id,
		       COUNT(*),
		       COALESCE(SUM(final_balance - starting_balance), 0) AS profit,
		       COALESCE(SUM(hands_played), 0)
		FROM game_sessions
		WHERE is_complete
		GROUP BY player_id
		ORDER BY profit DESC, player_id ASC
		LIMIT $1`
	rows, err := r.exec.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, wrapPgError("top completed totals", err)
	}
	defer rows.Close()

	out := make([]SessionTotals, 0, limit)
	for rows.Next() {
		var t SessionTotals
		if err := rows.Scan(&t.PlayerID, &t.Sessions, &t.TotalProfit, &t.TotalHands); err != nil {
			return nil, fmt.Errorf("failed to scan totals row: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapPgError("iterate totals rows", err)
	}
	return out, nil
}

const handCountColumns = `
	COUNT(*),
	COUNT(*) FILTER (WHERE outcome IN ('win', 'blackjack')),
	COUNT(*) FILTER (WHERE outcome = 'loss'),
	COUNT(*) FILTER (WHERE outcome = 'push'),
	COUNT(*) FILTER (WHERE outcome = 'blackjack')`

func (r *postgresSessionRepository) HandCounts(ctx context.Context, playerID string) (HandCounts, error) {
	var c HandCounts
	query := `SELECT` + handCountColumns + ` FROM hand_results WHERE player_id = $1`
	err := r.exec.QueryRowContext(ctx, query, playerID).Scan(&c.Total, &c.Wins, &c.Losses, &c.Pushes, &c.Blackjacks)
	if err != nil {
		return HandCounts{}, wrapPgError("hand counts", err)
	}
	return c, nil
}

func (r *postgresSessionRepository) HandCountsByPlayer(ctx context.Context, playerIDs []string) (map[string]HandCounts, error) {
	out := make(map[string]HandCounts, len(playerIDs))
	if len(playerIDs) == 0 {
		return out, nil
	}
	query := `SELECT player_id,` + handCountColumns + `
		FROM hand_results
		WHERE player_id = ANY($1)
		GROUP BY player_id`
	rows, err := r.exec.QueryContext(ctx, query, pq.Array(playerIDs))
	if err != nil {
		return nil, wrapPgError("hand counts by player", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		var c HandCounts
		if err := rows.Scan(&id, &c.Total, &c.Wins, &c.Losses, &c.Pushes, &c.Blackjacks); err != nil {
			return nil, fmt.Errorf("failed to scan hand count row: %w", err)
		}
		out[id] = c
	}
	if err := rows.Err(); err != nil {
		return nil, wrapPgError("iterate hand count rows", err)
	}
	return out, nil
}
