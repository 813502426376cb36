package db

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

const (
	codeForeignKeyViolation = "23503"
	codeCheckViolation      = "23514"
)

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// IsForeignKeyViolation reports a PostgreSQL foreign key violation (23503),
// raised when a chat references a room that does not exist.
func IsForeignKeyViolation(err error) bool {
	return pgCode(err) == codeForeignKeyViolation
}

// IsCheckViolation reports a PostgreSQL check constraint violation (23514).
func IsCheckViolation(err error) bool {
	return pgCode(err) == codeCheckViolation
}
