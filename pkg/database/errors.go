package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/civicledger/disclosure-engine/pkg/apperrors"
)

// MapError converts pgx/pgconn errors to application sentinels.
// context.DeadlineExceeded and context.Canceled pass through unmapped.
func MapError(err error, entity string) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s: %w", entity, err)
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s: %w", entity, apperrors.ErrNotFound)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			return fmt.Errorf("%s: %w", entity, apperrors.ErrConflict)
		case "23503": // foreign_key_violation
			return fmt.Errorf("%s: %w", entity, apperrors.ErrConflict)
		case "23514": // check_violation
			return fmt.Errorf("%s: %w", entity, apperrors.ErrInvalidInput)
		}
	}

	return fmt.Errorf("%s: %w", entity, err)
}
