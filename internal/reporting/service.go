// internal/reporting/service.go
package reporting

import (
	"context"

	"bookledger/internal/domain"
)

// Service defines the read-only aggregations over the sales ledger.
type Service interface {
	RevenueByGenre(ctx context.Context) ([]domain.GenreRevenue, error)
	TotalsForBook(ctx context.Context, bookID int64) (*domain.BookTotals, error)
	TopSellingBooks(ctx context.Context, limit int) ([]domain.BookSales, error)
	ListSales(ctx context.Context, afterID int64, limit int) ([]*domain.Sale, error)
}
