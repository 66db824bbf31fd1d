package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/blackjack-arena/models"
)

type postgresTournamentRepository struct {
	exec SQLExecutor
}

const tournamentColumns = `
	id, name, creator_id, format, status, starting_balance, hand_limit,
	time_limit_minutes, num_decks, max_players, start_time, created_at`

func scanTournament(row rowScanner) (*models.Tournament, error) {
	t := &models.Tournament{}
	err := row.Scan(
		&t.ID, &t.Name, &t.CreatorID, &t.Format, &t.Status, &t.StartingBalance, &t.HandLimit,
		&t.TimeLimitMinutes, &t.NumDecks, &t.MaxPlayers, &t.StartTime, &t.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (r *postgresTournamentRepository) Create(ctx context.Context, t *models.Tournament) error {
	query := `
		INSERT INTO tournaments (
			name, creator_id, format, status, starting_balance, hand_limit,
			time_limit_minutes, num_decks, max_players, start_time, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id`

	err := r.exec.QueryRowContext(ctx, query,
		t.Name, t.CreatorID, t.Format, t.Status, t.StartingBalance, t.HandLimit,
		t.TimeLimitMinutes, t.NumDecks, t.MaxPlayers, t.StartTime, t.CreatedAt,
	).Scan(&t.ID)
	return wrapPgError("create tournament", err)
}

func (r *postgresTournamentRepository) getOne(ctx context.Context, query string, id int64) (*models.Tournament, error) {
	t, err := scanTournament(r.exec.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTournamentNotFound
		}
		return nil, wrapPgError("get tournament", err)
	}
	return t, nil
}

func (r *postgresTournamentRepository) GetByID(ctx context.Context, id int64) (*models.Tournament, error) {
	query := `SELECT` + tournamentColumns + ` FROM tournaments WHERE id = $1`
	return r.getOne(ctx, query, id)
}

func (r *postgresTournamentRepository) GetForUpdate(ctx context.Context, id int64) (*models.Tournament, error) {
	query := `SELECT` + tournamentColumns + ` FROM tournaments WHERE id = $1 FOR UPDATE`
	return r.getOne(ctx, query, id)
}

func (r *postgresTournamentRepository) List(ctx context.Context, filter ListTournamentsFilter) ([]models.Tournament, error) {
	query := `SELECT` + tournamentColumns + ` FROM tournaments WHERE 1=1`

	args := []interface{}{}
	argID := 1

	if filter.Status != nil {
		query += fmt.Sprintf(" AND status = $%d", argID)
		args = append(args, *filter.Status)
		argID++
	}
	if filter.CreatorID != nil {
		query += fmt.Sprintf(" AND creator_id = $%d", argID)
		args = append(args, *filter.CreatorID)
		argID++
	}
	if filter.StartsBefore != nil {
		query += fmt.Sprintf(" AND start_time <= $%d", argID)
		args = append(args, *filter.StartsBefore)
		argID++
	}

	query += " ORDER BY created_at DESC, id DESC"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argID)
		args = append(args, filter.Limit)
		argID++
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argID)
		args = append(args, filter.Offset)
	}

	rows, err := r.exec.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrapPgError("list tournaments", err)
	}
	defer rows.Close()

	tournaments := make([]models.Tournament, 0)
	for rows.Next() {
		t, err := scanTournament(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan tournament row: %w", err)
		}
		tournaments = append(tournaments, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapPgError("iterate tournament rows", err)
	}
	return tournaments, nil
}

func (r *postgresTournamentRepository) UpdateStatus(ctx context.Context, id int64, status models.TournamentStatus) error {
	result, err := r.exec.ExecContext(ctx, `UPDATE tournaments SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return wrapPgError("update tournament status", err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

// Delete removes the tournament; entries go with it via ON DELETE CASCADE.
func (r *postgresTournamentRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.exec.ExecContext(ctx, `DELETE FROM tournaments WHERE id = $1`, id)
	if err != nil {
		return wrapPgError("delete tournament", err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}
