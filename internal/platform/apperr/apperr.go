// Package apperr defines the error kinds shared by all domain services.
// Every domain operation fails with exactly one kind; handlers map kinds
// to HTTP status codes with errors.Is.
package apperr

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrValidation marks caller-fixable input failures.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound marks a reference that does not resolve.
	ErrNotFound = errors.New("not found")
	// ErrConflict marks a slot-uniqueness violation.
	ErrConflict = errors.New("conflict")
)

// Validationf wraps ErrValidation with a formatted message.
func Validationf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: "+format, append([]interface{}{ErrValidation}, args...)...)
}

// NotFoundf wraps ErrNotFound with a formatted message.
func NotFoundf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: "+format, append([]interface{}{ErrNotFound}, args...)...)
}

// Conflictf wraps ErrConflict with a formatted message.
func Conflictf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: "+format, append([]interface{}{ErrConflict}, args...)...)
}

// FromStorage translates pgx-level failures into the taxonomy. Row absence
// becomes ErrNotFound, unique/exclusion violations become ErrConflict, and
// anything else passes through as a storage error.
func FromStorage(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505", "23P01": // unique_violation, exclusion_violation
			return fmt.Errorf("%w: %v", ErrConflict, err)
		}
	}
	return err
}

// HTTPStatus returns the transport status code for an error kind.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
