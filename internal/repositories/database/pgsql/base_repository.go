package pgsql

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/SscSPs/rewards_ledger/internal/apperrors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	uniqueViolationCode = "23505"
	checkViolationCode  = "23514"
)

// convertErr maps pgx errors onto the apperrors taxonomy. Anything unrecognised is
// wrapped in an AppError so callers can still errors.Is the original cause.
func convertErr(err error, format string, formatArgs ...any) error {
	if err == nil {
		return nil
	}
	msg := fmt.Sprintf(format, formatArgs...)

	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%w: %s", apperrors.ErrNotFound, msg)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case uniqueViolationCode:
			return fmt.Errorf("%w: %s: %s", apperrors.ErrDuplicate, msg, pgErr.ConstraintName)
		case checkViolationCode:
			return fmt.Errorf("%w: %s: %s", apperrors.ErrInsufficientBalance, msg, pgErr.ConstraintName)
		}
	}
	return apperrors.NewAppError(http.StatusInternalServerError, msg, err)
}
