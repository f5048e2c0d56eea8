package repository

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var ErrNotFound = errors.New("record not found")

// DuplicateError reports a unique constraint violation on Field.
type DuplicateError struct {
	Field string
	Err   error
}

func (e *DuplicateError) Error() string {
	return "duplicate " + e.Field
}

func (e *DuplicateError) Unwrap() error {
	return e.Err
}

const uniqueViolation = "23505"

// translate maps driver errors onto the package sentinels.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return &DuplicateError{Field: fieldFromConstraint(pgErr.ConstraintName), Err: err}
	}
	if errors.As(err, &pgErr) && pgErr.Code == "22P02" {
		// malformed uuid in a lookup
		return ErrNotFound
	}
	return err
}

// fieldFromConstraint turns "admins_email_key" into "email".
func fieldFromConstraint(name string) string {
	name = strings.TrimSuffix(name, "_key")
	if i := strings.Index(name, "_"); i >= 0 {
		return name[i+1:]
	}
	if name == "" {
		return "field"
	}
	return name
}
