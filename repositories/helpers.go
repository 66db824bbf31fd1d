package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
)

// SQLExecutor is satisfied by both *sql.DB and *sql.Tx.
type SQLExecutor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func checkAffectedRows(result sql.Result, notFoundError error) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if rowsAffected == 0 {
		return notFoundError
	}
	return nil
}

// Postgres error codes we react to.
const (
	pgUniqueViolation      = "23505"
	pgForeignKeyViolation  = "23503"
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
)

func isPgCode(err error, code string) (*pq.Error, bool) {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && string(pqErr.Code) == code {
		return pqErr, true
	}
	return nil, false
}

// wrapPgError turns retryable transaction failures into ErrConcurrencyConflict
// and otherwise wraps err with the failed operation.
func wrapPgError(op string, err error) error {
	if err == nil {
		return nil
	}
	if _, ok := isPgCode(err, pgSerializationFailure); ok {
		return fmt.Errorf("%s: %w: %v", op, ErrConcurrencyConflict, err)
	}
	if _, ok := isPgCode(err, pgDeadlockDetected); ok {
		return fmt.Errorf("%s: %w: %v", op, ErrConcurrencyConflict, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
