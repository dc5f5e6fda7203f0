package postgres

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"bookledger/internal/domain"
)

// RevenueByGenre only covers sales whose book still exists.
func (s *Store) RevenueByGenre(ctx context.Context) ([]domain.GenreRevenue, error) {
	ctx, span := s.tracer.Start(ctx, "store.revenue_by_genre")
	defer span.End()

	out := make([]domain.GenreRevenue, 0)
	err := s.db.SelectContext(ctx, &out, `
		SELECT b.genre AS genre, SUM(s.total_amount) AS revenue
		FROM sales s
		JOIN books b ON b.book_id = s.book_id
		GROUP BY b.genre
		ORDER BY b.genre
	`)
	if err != nil {
		return nil, fmt.Errorf("query revenue by genre: %w", err)
	}
	span.SetAttributes(attribute.Int("genres", len(out)))
	return out, nil
}

func (s *Store) TotalsForBook(ctx context.Context, bookID int64) (domain.BookTotals, int, error) {
	ctx, span := s.tracer.Start(ctx, "store.totals_for_book",
		trace.WithAttributes(attribute.Int64("book.id", bookID)))
	defer span.End()

	var row struct {
		domain.BookTotals
		Count int `db:"sale_count"`
	}
	err := s.db.GetContext(ctx, &row, `
		SELECT $1::BIGINT AS book_id,
		       COALESCE(SUM(quantity), 0) AS quantity,
		       COALESCE(SUM(total_amount), 0) AS revenue,
		       COUNT(*) AS sale_count
		FROM sales
		WHERE book_id = $1
	`, bookID)
	if err != nil {
		return domain.BookTotals{BookID: bookID}, 0, fmt.Errorf("query totals for book: %w", err)
	}
	span.SetAttributes(attribute.Int("sales.count", row.Count))
	return row.BookTotals, row.Count, nil
}

// TopSellingBooks ranks by units sold, ties broken by ascending book_id.
func (s *Store) TopSellingBooks(ctx context.Context, limit int) ([]domain.BookSales, error) {
	ctx, span := s.tracer.Start(ctx, "store.top_selling_books",
		trace.WithAttributes(attribute.Int("limit", limit)))
	defer span.End()

	out := make([]domain.BookSales, 0)
	err := s.db.SelectContext(ctx, &out, `
		SELECT b.book_id AS book_id, b.title AS title, b.author AS author, SUM(s.quantity) AS quantity
		FROM sales s
		JOIN books b ON b.book_id = s.book_id
		GROUP BY b.book_id, b.title, b.author
		ORDER BY quantity DESC, b.book_id ASC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query top selling books: %w", err)
	}
	return out, nil
}

func (s *Store) CountNegativeStock(ctx context.Context) (int, error) {
	var n int
	if err := s.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM books WHERE stock < 0`); err != nil {
		return 0, fmt.Errorf("count negative stock: %w", err)
	}
	return n, nil
}

func (s *Store) CountInvalidSales(ctx context.Context) (int, error) {
	var n int
	err := s.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM sales WHERE quantity <= 0 OR total_amount < 0`)
	if err != nil {
		return 0, fmt.Errorf("count invalid sales: %w", err)
	}
	return n, nil
}
