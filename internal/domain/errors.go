package domain

import (
	"errors"
	"fmt"
)

// Kind classifies an error for callers that must react to it, such as the HTTP layer.
type Kind int

const (
	KindInternal Kind = iota
	KindInvalidInput
	KindNotFound
	KindInsufficientStock
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindInvalidInput:
		return "invalid_input"
	case KindNotFound:
		return "not_found"
	case KindInsufficientStock:
		return "insufficient_stock"
	case KindConflict:
		return "conflict"
	default:
		return "internal"
	}
}

// InvalidInputError is returned when a field is malformed or out of range.
type InvalidInputError struct {
	Field  string
	Reason string
	Value  interface{}
}

func (e *InvalidInputError) Error() string {
	if e.Value == nil {
		return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid %s: %s (got %v)", e.Field, e.Reason, e.Value)
}

// Is allows errors.Is to match any InvalidInputError.
func (e *InvalidInputError) Is(target error) bool {
	_, ok := target.(*InvalidInputError)
	return ok
}

// NotFoundError is returned when a referenced entity is missing, or when an empty
// result set is treated as an error (search, per-book totals, top sellers).
type NotFoundError struct {
	Entity string
	ID     interface{}
}

func (e *NotFoundError) Error() string {
	if e.ID == nil {
		return fmt.Sprintf("no %s found", e.Entity)
	}
	return fmt.Sprintf("%s %v not found", e.Entity, e.ID)
}

// Is allows errors.Is to match any NotFoundError.
func (e *NotFoundError) Is(target error) bool {
	_, ok := target.(*NotFoundError)
	return ok
}

// InsufficientStockError is returned when a sale or adjustment would take stock below zero.
// Available is the stock observed under lock, so callers can react without re-querying.
type InsufficientStockError struct {
	BookID    int64
	Available int
	Requested int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for book %d: available %d, requested %d", e.BookID, e.Available, e.Requested)
}

// Is allows errors.Is to match any InsufficientStockError.
func (e *InsufficientStockError) Is(target error) bool {
	_, ok := target.(*InsufficientStockError)
	return ok
}

// ConflictError is returned when the storage layer aborts a transaction because of a
// concurrent update (serialization failure, deadlock, duplicate key).
type ConflictError struct {
	Reason string
	Cause  error
}

func (e *ConflictError) Error() string {
	return "conflict: " + e.Reason
}

func (e *ConflictError) Unwrap() error {
	return e.Cause
}

// Is allows errors.Is to match any ConflictError.
func (e *ConflictError) Is(target error) bool {
	_, ok := target.(*ConflictError)
	return ok
}

// NewInvalidInputError creates a new InvalidInputError
func NewInvalidInputError(field, reason string, value interface{}) error {
	return &InvalidInputError{Field: field, Reason: reason, Value: value}
}

// NewNotFoundError creates a new NotFoundError for a single entity.
func NewNotFoundError(entity string, id interface{}) error {
	return &NotFoundError{Entity: entity, ID: id}
}

// NewEmptyResultError creates a NotFoundError for a query that matched nothing.
func NewEmptyResultError(entity string) error {
	return &NotFoundError{Entity: entity}
}

// NewInsufficientStockError creates a new InsufficientStockError
func NewInsufficientStockError(bookID int64, available, requested int) error {
	return &InsufficientStockError{BookID: bookID, Available: available, Requested: requested}
}

// NewConflictError creates a new ConflictError
func NewConflictError(reason string, cause error) error {
	return &ConflictError{Reason: reason, Cause: cause}
}

// IsInvalidInputError checks if an error is an InvalidInputError
func IsInvalidInputError(err error) bool {
	var e *InvalidInputError
	return errors.As(err, &e)
}

// IsNotFoundError checks if an error is a NotFoundError
func IsNotFoundError(err error) bool {
	var e *NotFoundError
	return errors.As(err, &e)
}

// IsInsufficientStockError checks if an error is an InsufficientStockError
func IsInsufficientStockError(err error) bool {
	var e *InsufficientStockError
	return errors.As(err, &e)
}

// IsConflictError checks if an error is a ConflictError
func IsConflictError(err error) bool {
	var e *ConflictError
	return errors.As(err, &e)
}

// KindOf reports the Kind of err. Errors that are not one of the domain errors are internal.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return KindInternal
	case IsInvalidInputError(err):
		return KindInvalidInput
	case IsNotFoundError(err):
		return KindNotFound
	case IsInsufficientStockError(err):
		return KindInsufficientStock
	case IsConflictError(err):
		return KindConflict
	default:
		return KindInternal
	}
}
