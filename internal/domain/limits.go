package domain

import (
	"math"

	"github.com/shopspring/decimal"
)

// Storage limits shared by every backend. Counts fit a Postgres INT and money fits
// NUMERIC(12,2).
const (
	MaxCount    = math.MaxInt32
	AmountScale = 2
)

// MaxAmount is the first money value that no longer fits.
var MaxAmount = decimal.New(1, 10)

// ValidateAmount accepts non-negative money with at most two decimal places below
// MaxAmount, so a stored value always equals what the caller sent.
func ValidateAmount(field string, d decimal.Decimal) error {
	switch {
	case d.IsNegative():
		return NewInvalidInputError(field, "must be non-negative", d.String())
	case !d.Equal(d.Truncate(AmountScale)):
		return NewInvalidInputError(field, "must have at most 2 decimal places", d.String())
	case d.GreaterThanOrEqual(MaxAmount):
		return NewInvalidInputError(field, "must be less than 10000000000", d.String())
	}
	return nil
}

// ValidateDelta bounds a stock adjustment to the range a stock level can take.
func ValidateDelta(delta int) error {
	if delta > MaxCount || delta < -MaxCount {
		return NewInvalidInputError("delta", "out of range", delta)
	}
	return nil
}

// ApplyDelta returns stock+delta, rejecting a result above MaxCount as invalid input and
// a negative result as insufficient stock.
func ApplyDelta(bookID int64, stock, delta int) (int, error) {
	if err := ValidateDelta(delta); err != nil {
		return stock, err
	}
	next := stock + delta
	if next > MaxCount {
		return stock, NewInvalidInputError("delta", "would take stock above the maximum", delta)
	}
	if next < 0 {
		return stock, NewInsufficientStockError(bookID, stock, -delta)
	}
	return next, nil
}
