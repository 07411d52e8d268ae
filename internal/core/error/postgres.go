package errx

import (
	"errors"
	"net/http"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// pgUniqueViolation is the SQLSTATE code for unique-constraint violations.
const pgUniqueViolation = "23505"

// WrapPostgres maps PostgreSQL errors to the unified Error type. Unique
// violations surface ErrDuplicateBusinessNumber so callers can treat the
// duplicate business key as a business condition rather than an infra failure.
func WrapPostgres(err error) *Error {
	if err == nil {
		return nil
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return New(ErrRegistrationNotFound, http.StatusNotFound, PostgresErrorMessage)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return New(ErrDuplicateBusinessNumber, http.StatusConflict, PostgresErrorMessage)
	}

	return New(err, http.StatusBadGateway, PostgresErrorMessage)
}
