package db

import (
	"database/sql"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

var (
	// ErrNotFound is returned when a query matches no rows.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateKey is returned on unique constraint violations.
	ErrDuplicateKey = errors.New("duplicate key")
)

const pgUniqueViolation = "23505"

// MapError translates driver errors into the package sentinels, wrapping
// the original so it stays visible to errors.As. Unknown errors pass through.
func MapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrDuplicateKey) {
		return err
	}
	if errors.Is(err, sql.ErrNoRows) {
		return wrap(ErrNotFound, err)
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) && string(pqErr.Code) == pgUniqueViolation {
		return wrap(ErrDuplicateKey, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return wrap(ErrDuplicateKey, err)
	}

	// sqlite does not export typed errors without cgo imports
	if strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return wrap(ErrDuplicateKey, err)
	}

	return err
}

type mappedError struct {
	sentinel error
	cause    error
}

func wrap(sentinel, cause error) error {
	return &mappedError{sentinel: sentinel, cause: cause}
}

func (e *mappedError) Error() string {
	return e.sentinel.Error() + ": " + e.cause.Error()
}

func (e *mappedError) Is(target error) bool { return target == e.sentinel }
func (e *mappedError) Unwrap() error        { return e.cause }
