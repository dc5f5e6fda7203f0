package postgres

import (
	"errors"

	"github.com/lib/pq"

	"bookledger/internal/domain"
)

// PostgreSQL error codes the store translates into domain errors.
const (
	codeUniqueViolation      = "23505"
	codeCheckViolation       = "23514"
	codeNumericOutOfRange    = "22003"
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
)

// mapError turns constraint and conflict-class driver errors into domain errors and
// passes everything else through.
func mapError(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}
	switch pqErr.Code {
	case codeSerializationFailure:
		return domain.NewConflictError("serialization failure", err)
	case codeDeadlockDetected:
		return domain.NewConflictError("deadlock detected", err)
	case codeUniqueViolation:
		return domain.NewConflictError("duplicate key", err)
	case codeCheckViolation:
		return domain.NewInvalidInputError(pqErr.Constraint, "violates check constraint", nil)
	case codeNumericOutOfRange:
		field := pqErr.Column
		if field == "" {
			field = "value"
		}
		return domain.NewInvalidInputError(field, "out of range", nil)
	}
	return err
}
