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

type postgresEntryRepository struct {
	exec SQLExecutor
}

const entryColumns = `
	id, tournament_id, player_id, joined_at, final_balance, hands_played,
	is_submitted, submitted_at, rank`

func scanEntry(row rowScanner) (*models.TournamentEntry, error) {
	e := &models.TournamentEntry{}
	err := row.Scan(
		&e.ID, &e.TournamentID, &e.PlayerID, &e.JoinedAt, &e.FinalBalance, &e.HandsPlayed,
		&e.IsSubmitted, &e.SubmittedAt, &e.Rank,
	)
	if err != nil {
		return nil, err
	}
	return e, nil
}

func (r *postgresEntryRepository) Create(ctx context.Context, e *models.TournamentEntry) error {
	query := `
		INSERT INTO tournament_entries (tournament_id, player_id, joined_at)
		VALUES ($1, $2, $3)
		RETURNING id`

	err := r.exec.QueryRowContext(ctx, query, e.TournamentID, e.PlayerID, e.JoinedAt).Scan(&e.ID)
	if err != nil {
		if pqErr, ok := isPgCode(err, pgUniqueViolation); ok &&
			pqErr.Constraint == "tournament_entries_tournament_id_player_id_key" {
			return ErrEntryConflict
		}
		if _, ok := isPgCode(err, pgForeignKeyViolation); ok {
			return ErrEntryTournamentInvalid
		}
		return wrapPgError("create entry", err)
	}
	return nil
}

func (r *postgresEntryRepository) GetByTournamentAndPlayer(ctx context.Context, tournamentID int64, playerID string) (*models.TournamentEntry, error) {
	query := `SELECT` + entryColumns + ` FROM tournament_entries WHERE tournament_id = $1 AND player_id = $2`
	e, err := scanEntry(r.exec.QueryRowContext(ctx, query, tournamentID, playerID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEntryNotFound
		}
		return nil, wrapPgError("get entry", err)
	}
	return e, nil
}

func (r *postgresEntryRepository) CountByTournament(ctx context.Context, tournamentID int64) (int, error) {
	var n int
	err := r.exec.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM tournament_entries WHERE tournament_id = $1`, tournamentID,
	).Scan(&n)
	if err != nil {
		return 0, wrapPgError("count entries", err)
	}
	return n, nil
}

func (r *postgresEntryRepository) ListByTournament(ctx context.Context, tournamentID int64, submittedOnly bool) ([]models.TournamentEntry, error) {
	query := `SELECT` + entryColumns + ` FROM tournament_entries WHERE tournament_id = $1`
	if submittedOnly {
		query += " AND is_submitted"
	}
	query += " ORDER BY joined_at ASC, id ASC"

	rows, err := r.exec.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, wrapPgError("list entries", err)
	}
	defer rows.Close()

	entries := make([]models.TournamentEntry, 0)
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan entry row: %w", err)
		}
		entries = append(entries, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapPgError("iterate entry rows", err)
	}
	return entries, nil
}

// MarkSubmitted only touches unsubmitted entries, so a lost race surfaces as
// ErrEntryAlreadySubmitted instead of overwriting the first result.
func (r *postgresEntryRepository) MarkSubmitted(ctx context.Context, tournamentID, entryID int64, finalBalance, handsPlayed int, at time.Time) error {
	query := `
		UPDATE tournament_entries
		SET final_balance = $1, hands_played = $2, is_submitted = TRUE, submitted_at = $3
		WHERE id = $4 AND tournament_id = $5 AND NOT is_submitted`
	result, err := r.exec.ExecContext(ctx, query, finalBalance, handsPlayed, at, entryID, tournamentID)
	if err != nil {
		return wrapPgError("mark entry submitted", err)
	}
	return checkAffectedRows(result, ErrEntryAlreadySubmitted)
}

func (r *postgresEntryRepository) UpdateRanks(ctx context.Context, tournamentID int64, ranks map[int64]int) error {
	if len(ranks) == 0 {
		return nil
	}
	ids := make([]int64, 0, len(ranks))
	values := make([]int64, 0, len(ranks))
	for id, rank := range ranks {
		ids = append(ids, id)
		values = append(values, int64(rank))
	}

	query := `
		UPDATE tournament_entries AS e
		SET rank = v.rank
		FROM (SELECT unnest($2::bigint[]) AS id, unnest($3::int[]) AS rank) AS v
		WHERE e.id = v.id AND e.tournament_id = $1 AND e.is_submitted`
	result, err := r.exec.ExecContext(ctx, query, tournamentID, pq.Array(ids), pq.Array(values))
	if err != nil {
		return wrapPgError("update ranks", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if int(affected) != len(ranks) {
		return fmt.Errorf("update ranks: %d of %d entries updated: %w", affected, len(ranks), ErrEntryNotFound)
	}
	return nil
}
