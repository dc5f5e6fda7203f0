package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"bookledger/internal/domain"
	"bookledger/internal/store"
)

type tx struct {
	tx   *sql.Tx
	span trace.Span
}

// WithinTx runs fn in a READ COMMITTED transaction. Books are serialized through
// LockBook's row lock rather than the isolation level, so a concurrent sale of the same
// title waits instead of failing.
func (s *Store) WithinTx(ctx context.Context, fn func(store.Tx) error) error {
	ctx, span := s.tracer.Start(ctx, "store.unit_of_work")
	defer span.End()

	sqlTx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", mapError(err))
	}
	defer sqlTx.Rollback()

	if err := fn(&tx{tx: sqlTx, span: span}); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	if err := sqlTx.Commit(); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("commit transaction: %w", mapError(err))
	}
	span.SetAttributes(attribute.Bool("commit.success", true))
	return nil
}

func (t *tx) LockBook(ctx context.Context, id int64) (*domain.Book, error) {
	b, err := scanBook(t.tx.QueryRowContext(ctx, selectBookSQL+` WHERE book_id = $1 FOR UPDATE`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NewNotFoundError("book", id)
	}
	if err != nil {
		return nil, fmt.Errorf("lock book: %w", mapError(err))
	}
	t.span.AddEvent("book.locked", trace.WithAttributes(
		attribute.Int64("book.id", id),
		attribute.Int("book.stock", b.Stock),
	))
	return b, nil
}

// AdjustStock keeps stock within [0, MaxCount]. The guard lives in the UPDATE, computed
// in BIGINT so it cannot overflow, and the transaction stays usable when the change is
// rejected.
func (t *tx) AdjustStock(ctx context.Context, id int64, delta int) (int, error) {
	if err := domain.ValidateDelta(delta); err != nil {
		return 0, err
	}
	var stock int
	err := t.tx.QueryRowContext(ctx, `
		UPDATE books SET stock = (stock::BIGINT + $1::BIGINT)::INT, updated_at = $2
		WHERE book_id = $3 AND stock::BIGINT + $1::BIGINT BETWEEN 0 AND $4::BIGINT
		RETURNING stock
	`, delta, time.Now().UTC(), id, domain.MaxCount).Scan(&stock)
	if errors.Is(err, sql.ErrNoRows) {
		var available int
		err := t.tx.QueryRowContext(ctx, `SELECT stock FROM books WHERE book_id = $1`, id).Scan(&available)
		if errors.Is(err, sql.ErrNoRows) {
			return 0, domain.NewNotFoundError("book", id)
		}
		if err != nil {
			return 0, fmt.Errorf("read stock: %w", mapError(err))
		}
		if _, err := domain.ApplyDelta(id, available, delta); err != nil {
			return available, err
		}
		return available, domain.NewConflictError("stock changed concurrently", nil)
	}
	if err != nil {
		return 0, fmt.Errorf("adjust stock: %w", mapError(err))
	}
	t.span.AddEvent("stock.adjusted", trace.WithAttributes(
		attribute.Int64("book.id", id),
		attribute.Int("stock.delta", delta),
		attribute.Int("stock.after", stock),
	))
	return stock, nil
}

func (t *tx) AppendSale(ctx context.Context, sale *domain.Sale) error {
	if err := sale.Validate(); err != nil {
		return err
	}
	err := t.tx.QueryRowContext(ctx, `
		INSERT INTO sales (book_id, customer_id, sale_date, quantity, total_amount, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING sale_id, total_amount, created_at
	`, sale.BookID, sale.CustomerID, sale.SaleDate, sale.Quantity, sale.TotalAmount, time.Now().UTC()).
		Scan(&sale.ID, &sale.TotalAmount, &sale.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert sale: %w", mapError(err))
	}
	t.span.AddEvent("sale.appended", trace.WithAttributes(
		attribute.Int64("sale.id", sale.ID),
		attribute.Int64("book.id", sale.BookID),
		attribute.Int("sale.quantity", sale.Quantity),
	))
	return nil
}
