package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Sale is one immutable row of the sales ledger. ID is assigned by the ledger on
// append and orders sales by insertion.
type Sale struct {
	ID          int64           `json:"sale_id" db:"sale_id"`
	BookID      int64           `json:"book_id" db:"book_id"`
	CustomerID  int64           `json:"customer_id" db:"customer_id"`
	SaleDate    Date            `json:"sale_date" db:"sale_date"`
	Quantity    int             `json:"quantity" db:"quantity"`
	TotalAmount decimal.Decimal `json:"total_amount" db:"total_amount"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
}

// Validate checks the sale fields that do not need the catalog.
// TotalAmount is taken as given: it is not derived from price * quantity.
func (s *Sale) Validate() error {
	if s.Quantity <= 0 {
		return NewInvalidInputError("quantity", "must be greater than zero", s.Quantity)
	}
	if s.Quantity > MaxCount {
		return NewInvalidInputError("quantity", "out of range", s.Quantity)
	}
	if err := ValidateAmount("total_amount", s.TotalAmount); err != nil {
		return err
	}
	if s.SaleDate.IsZero() {
		return NewInvalidInputError("sale_date", "is required", nil)
	}
	return nil
}

// GenreRevenue is the summed sale amount for one genre.
type GenreRevenue struct {
	Genre   string          `json:"genre" db:"genre"`
	Revenue decimal.Decimal `json:"revenue" db:"revenue"`
}

// BookTotals is the summed quantity and amount of every sale of one book.
type BookTotals struct {
	BookID   int64           `json:"book_id" db:"book_id"`
	Quantity int             `json:"quantity" db:"quantity"`
	Revenue  decimal.Decimal `json:"revenue" db:"revenue"`
}

// BookSales ranks a book by the quantity sold.
type BookSales struct {
	BookID   int64  `json:"book_id" db:"book_id"`
	Title    string `json:"title" db:"title"`
	Author   string `json:"author" db:"author"`
	Quantity int    `json:"quantity" db:"quantity"`
}
