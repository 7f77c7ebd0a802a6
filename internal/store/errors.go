package store

import (
	"errors"
	"net/http"

	"github.com/jackc/pgx/v5/pgconn"
)

// ErrNotFound marks a missing entity. Flows treat it as fatal for the
// flow instance; there is no sensible default user or workout.
var ErrNotFound = errors.New("not found")

// persistence error causes we classify explicitly
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgNotNullViolation    = "23502"
)

// HTTPStatus maps a persistence error to a stable status/message pair.
// Anything unrecognized maps to a generic server error.
func HTTPStatus(err error) (int, string) {
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound, "not found"
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return http.StatusConflict, "data already exists"
		case pgForeignKeyViolation:
			return http.StatusBadRequest, "invalid reference data"
		case pgNotNullViolation:
			return http.StatusBadRequest, "required field missing"
		}
	}

	return http.StatusInternalServerError, "internal server error"
}
