package repositories

import (
	"context"
	"database/sql"
	"fmt"
)

type postgresStore struct {
	db   *sql.DB
	exec SQLExecutor
}

// NewPostgresStore returns a Store over db. Tournament rows are locked with
// SELECT ... FOR UPDATE inside Atomic, so units touching the same tournament
// serialize while different tournaments proceed in parallel.
func NewPostgresStore(db *sql.DB) Store {
	return &postgresStore{db: db, exec: db}
}

func (s *postgresStore) Tournaments() TournamentRepository {
	return &postgresTournamentRepository{exec: s.exec}
}

func (s *postgresStore) Entries() EntryRepository {
	return &postgresEntryRepository{exec: s.exec}
}

func (s *postgresStore) Sessions() SessionRepository {
	return &postgresSessionRepository{exec: s.exec}
}

func (s *postgresStore) Players() PlayerRepository {
	return &postgresPlayerRepository{exec: s.exec}
}

func (s *postgresStore) Atomic(ctx context.Context, fn func(tx Store) error) error {
	if _, inTx := s.exec.(*sql.Tx); inTx {
		return fn(s)
	}

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return wrapPgError("begin transaction", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(&postgresStore{db: s.db, exec: tx}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("%w (rollback failed: %v)", err, rbErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return wrapPgError("commit transaction", err)
	}
	return nil
}

func (s *postgresStore) Close() error {
	if _, inTx := s.exec.(*sql.Tx); inTx {
		return nil
	}
	return s.db.Close()
}
