// Package reporting derives aggregate views from the sales ledger joined with the
// catalog. Sales whose book has since been deleted are left out of genre and
// best-seller reports.
package reporting

import (
	"context"

	"bookledger/internal/domain"
	"bookledger/internal/store"
)

// service implements the Service interface.
type service struct {
	ledger store.Ledger
}

// NewService creates a new reporting service instance.
func NewService(ledger store.Ledger) Service {
	return &service{ledger: ledger}
}

func (s *service) RevenueByGenre(ctx context.Context) ([]domain.GenreRevenue, error) {
	return s.ledger.RevenueByGenre(ctx)
}

// TotalsForBook reports a book with no sales as not found.
func (s *service) TotalsForBook(ctx context.Context, bookID int64) (*domain.BookTotals, error) {
	totals, count, err := s.ledger.TotalsForBook(ctx, bookID)
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, domain.NewNotFoundError("sales for book", bookID)
	}
	return &totals, nil
}

// TopSellingBooks reports an empty ledger as not found.
func (s *service) TopSellingBooks(ctx context.Context, limit int) ([]domain.BookSales, error) {
	if limit <= 0 {
		return nil, domain.NewInvalidInputError("limit", "must be positive", limit)
	}
	top, err := s.ledger.TopSellingBooks(ctx, limit)
	if err != nil {
		return nil, err
	}
	if len(top) == 0 {
		return nil, domain.NewEmptyResultError("sales")
	}
	return top, nil
}

func (s *service) ListSales(ctx context.Context, afterID int64, limit int) ([]*domain.Sale, error) {
	if afterID < 0 {
		return nil, domain.NewInvalidInputError("after", "must be non-negative", afterID)
	}
	limit, _, err := store.NormalizePage(limit, 0)
	if err != nil {
		return nil, err
	}
	return s.ledger.ListSales(ctx, afterID, limit)
}
