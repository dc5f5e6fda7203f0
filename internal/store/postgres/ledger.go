package postgres

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"bookledger/internal/domain"
)

// ListSales is a cursor over the ledger in sale_id order.
func (s *Store) ListSales(ctx context.Context, afterID int64, limit int) ([]*domain.Sale, error) {
	ctx, span := s.tracer.Start(ctx, "store.list_sales",
		trace.WithAttributes(
			attribute.Int64("from.id", afterID),
			attribute.Int("batch.size", limit),
		),
	)
	defer span.End()

	rows, err := s.db.QueryContext(ctx, `
		SELECT sale_id, book_id, customer_id, sale_date, quantity, total_amount, created_at
		FROM sales
		WHERE sale_id > $1
		ORDER BY sale_id ASC
		LIMIT $2
	`, afterID, limit)
	if err != nil {
		return nil, fmt.Errorf("query sales: %w", err)
	}
	defer rows.Close()

	sales := make([]*domain.Sale, 0)
	for rows.Next() {
		var sale domain.Sale
		err := rows.Scan(
			&sale.ID,
			&sale.BookID,
			&sale.CustomerID,
			&sale.SaleDate,
			&sale.Quantity,
			&sale.TotalAmount,
			&sale.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan sale: %w", err)
		}
		sales = append(sales, &sale)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sales: %w", err)
	}

	span.SetAttributes(attribute.Int("sales.streamed", len(sales)))
	return sales, nil
}
