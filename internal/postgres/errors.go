package postgres

import (
	"database/sql"
	"errors"

	ierr "github.com/flexprice/ticketing/internal/errors"
	"github.com/lib/pq"
)

// uniqueViolation is the SQLSTATE of a unique constraint violation
const uniqueViolation pq.ErrorCode = "23505"

// IsUniqueViolation reports whether err is postgres rejecting a duplicate key
func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

// WrapError classifies a driver error for the given entity
func WrapError(err error, entity string, details map[string]any) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sql.ErrNoRows):
		return ierr.WithError(err).
			WithHintf("%s not found", entity).
			WithReportableDetails(details).
			Mark(ierr.ErrNotFound)
	case IsUniqueViolation(err):
		return ierr.WithError(err).
			WithHintf("%s already exists", entity).
			WithReportableDetails(details).
			Mark(ierr.ErrAlreadyExists)
	default:
		return ierr.WithError(err).
			WithMessagef("%s query failed", entity).
			WithReportableDetails(details).
			Mark(ierr.ErrDatabase)
	}
}
