package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/blackjack-arena/models"
	"github.com/lib/pq"
)

type postgresPlayerRepository struct {
	exec SQLExecutor
}

// Upsert keeps the directory in step with the identity provider: the latest
// display name wins.
func (r *postgresPlayerRepository) Upsert(ctx context.Context, p models.Player) error {
	query := `
		INSERT INTO players (id, display_name, last_seen_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE
		SET display_name = EXCLUDED.display_name, last_seen_at = EXCLUDED.last_seen_at`
	_, err := r.exec.ExecContext(ctx, query, p.ID, p.DisplayName, p.LastSeenAt)
	return wrapPgError("upsert player", err)
}

func (r *postgresPlayerRepository) GetByID(ctx context.Context, id string) (*models.Player, error) {
	p := &models.Player{}
	err := r.exec.QueryRowContext(ctx,
		`SELECT id, display_name, last_seen_at FROM players WHERE id = $1`, id,
	).Scan(&p.ID, &p.DisplayName, &p.LastSeenAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPlayerNotFound
		}
		return nil, wrapPgError("get player", err)
	}
	return p, nil
}

func (r *postgresPlayerRepository) DisplayNames(ctx context.Context, ids []string) (map[string]string, error) {
	names := make(map[string]string, len(ids))
	if len(ids) == 0 {
		return names, nil
	}
	rows, err := r.exec.QueryContext(ctx,
		`SELECT id, display_name FROM players WHERE id = ANY($1)`, pq.Array(ids))
	if err != nil {
		return nil, wrapPgError("display names", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id, name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, fmt.Errorf("failed to scan player row: %w", err)
		}
		names[id] = name
	}
	if err := rows.Err(); err != nil {
		return nil, wrapPgError("iterate player rows", err)
	}
	return names, nil
}
