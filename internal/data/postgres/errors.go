// Package postgres provides PostgreSQL implementations of the domain repositories.
// Every repository can be bound to a transaction with WithTx so the booking engine
// can compose several of them under one commit.
package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

// isUniqueViolation reports whether err is a unique constraint violation, optionally on a named constraint
func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != uniqueViolation {
		return false
	}
	return constraint == "" || pgErr.ConstraintName == constraint
}

type rowScanner interface {
	Scan(dest ...any) error
}
