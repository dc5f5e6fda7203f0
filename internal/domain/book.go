// Package domain holds the canonical Book, Customer and Sale shapes and the error
// taxonomy shared by the stores, the services and the HTTP layer.
package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Prices and amounts travel as JSON numbers, matching what POS clients send.
	decimal.MarshalJSONWithoutQuotes = true
}

// Book is a catalog entry together with its on-hand stock.
type Book struct {
	ID        int64           `json:"book_id" db:"book_id"`
	Title     string          `json:"title" db:"title"`
	Author    string          `json:"author" db:"author"`
	Genre     string          `json:"genre" db:"genre"`
	Price     decimal.Decimal `json:"price" db:"price"`
	Stock     int             `json:"stock" db:"stock"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt time.Time       `json:"updated_at" db:"updated_at"`
}

// Validate checks the field constraints enforced on every catalog write.
func (b *Book) Validate() error {
	if strings.TrimSpace(b.Title) == "" {
		return NewInvalidInputError("title", "cannot be empty", nil)
	}
	if strings.TrimSpace(b.Author) == "" {
		return NewInvalidInputError("author", "cannot be empty", nil)
	}
	if err := ValidateAmount("price", b.Price); err != nil {
		return err
	}
	if b.Stock < 0 {
		return NewInvalidInputError("stock", "must be non-negative", b.Stock)
	}
	if b.Stock > MaxCount {
		return NewInvalidInputError("stock", "out of range", b.Stock)
	}
	return nil
}
