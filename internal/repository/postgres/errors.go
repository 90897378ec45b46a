package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"meshwork/internal/domain"
)

// SQLSTATE codes the repositories translate
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
)

func pgErrorOf(err error) *pgconn.PgError {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr
	}
	return nil
}

// IsPgDuplicateError checks if error is a unique constraint violation
func IsPgDuplicateError(err error) bool {
	pgErr := pgErrorOf(err)
	return pgErr != nil && pgErr.Code == codeUniqueViolation
}

// IsPgNoRowsError checks if error is a "no rows" error
func IsPgNoRowsError(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// IsPgForeignKeyError checks if error is a foreign key violation
func IsPgForeignKeyError(err error) bool {
	pgErr := pgErrorOf(err)
	return pgErr != nil && pgErr.Code == codeForeignKeyViolation
}

// ConstraintName returns the violated constraint, or "" for other errors
func ConstraintName(err error) string {
	if pgErr := pgErrorOf(err); pgErr != nil {
		return pgErr.ConstraintName
	}
	return ""
}

// WrapReferenceError turns a foreign key violation on a write into
// domain.ErrNotFound for the referenced row. Anything else is wrapped with op.
func WrapReferenceError(err error, op, referenced string, id *int64) error {
	if IsPgForeignKeyError(err) {
		if id != nil {
			return fmt.Errorf("%s %d: %w", referenced, *id, domain.ErrNotFound)
		}
		return fmt.Errorf("%s: %w", referenced, domain.ErrNotFound)
	}
	return fmt.Errorf("%s: %w", op, err)
}
