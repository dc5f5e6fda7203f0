package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"bookledger/internal/domain"
)

const selectBookSQL = `
	SELECT book_id, title, author, genre, price, stock, created_at, updated_at
	FROM books`

type rowScanner interface{ Scan(dest ...interface{}) error }

func scanBook(row rowScanner) (*domain.Book, error) {
	b := &domain.Book{}
	err := row.Scan(&b.ID, &b.Title, &b.Author, &b.Genre, &b.Price, &b.Stock, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return b, nil
}

func scanBooks(rows *sql.Rows) ([]*domain.Book, error) {
	defer rows.Close()
	books := make([]*domain.Book, 0)
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, fmt.Errorf("scan book: %w", err)
		}
		books = append(books, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate books: %w", err)
	}
	return books, nil
}

func (s *Store) GetBook(ctx context.Context, id int64) (*domain.Book, error) {
	ctx, span := s.tracer.Start(ctx, "store.get_book",
		trace.WithAttributes(attribute.Int64("book.id", id)))
	defer span.End()

	b, err := scanBook(s.db.QueryRowContext(ctx, selectBookSQL+` WHERE book_id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NewNotFoundError("book", id)
	}
	if err != nil {
		return nil, fmt.Errorf("query book: %w", err)
	}
	return b, nil
}

func (s *Store) ListBooks(ctx context.Context, limit, offset int) ([]*domain.Book, error) {
	ctx, span := s.tracer.Start(ctx, "store.list_books")
	defer span.End()

	rows, err := s.db.QueryContext(ctx, selectBookSQL+` ORDER BY book_id LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("query books: %w", err)
	}
	return scanBooks(rows)
}

func (s *Store) CreateBook(ctx context.Context, b *domain.Book) error {
	if err := b.Validate(); err != nil {
		return err
	}
	ctx, span := s.tracer.Start(ctx, "store.create_book")
	defer span.End()

	now := time.Now().UTC()
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO books (title, author, genre, price, stock, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
		RETURNING book_id, price
	`, b.Title, b.Author, b.Genre, b.Price, b.Stock, now).Scan(&b.ID, &b.Price)
	if err != nil {
		return fmt.Errorf("insert book: %w", mapError(err))
	}
	b.CreatedAt, b.UpdatedAt = now, now
	span.SetAttributes(attribute.Int64("book.id", b.ID))
	return nil
}

func (s *Store) UpdateBook(ctx context.Context, b *domain.Book) error {
	if err := b.Validate(); err != nil {
		return err
	}
	ctx, span := s.tracer.Start(ctx, "store.update_book",
		trace.WithAttributes(attribute.Int64("book.id", b.ID)))
	defer span.End()

	err := s.db.QueryRowContext(ctx, `
		UPDATE books
		SET title = $1, author = $2, genre = $3, price = $4, stock = $5, updated_at = $6
		WHERE book_id = $7
		RETURNING created_at, updated_at
	`, b.Title, b.Author, b.Genre, b.Price, b.Stock, time.Now().UTC(), b.ID).Scan(&b.CreatedAt, &b.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.NewNotFoundError("book", b.ID)
	}
	if err != nil {
		return fmt.Errorf("update book: %w", mapError(err))
	}
	return nil
}

func (s *Store) DeleteBook(ctx context.Context, id int64) error {
	ctx, span := s.tracer.Start(ctx, "store.delete_book",
		trace.WithAttributes(attribute.Int64("book.id", id)))
	defer span.End()

	if _, err := s.db.ExecContext(ctx, `DELETE FROM books WHERE book_id = $1`, id); err != nil {
		return fmt.Errorf("delete book: %w", mapError(err))
	}
	return nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func (s *Store) SearchBooks(ctx context.Context, query string) ([]*domain.Book, error) {
	ctx, span := s.tracer.Start(ctx, "store.search_books",
		trace.WithAttributes(attribute.String("search.query", query)))
	defer span.End()

	pattern := "%" + likeEscaper.Replace(query) + "%"
	rows, err := s.db.QueryContext(ctx, selectBookSQL+`
		WHERE title ILIKE $1 ESCAPE '\' OR author ILIKE $1 ESCAPE '\'
		ORDER BY book_id`, pattern)
	if err != nil {
		return nil, fmt.Errorf("search books: %w", err)
	}
	books, err := scanBooks(rows)
	span.SetAttributes(attribute.Int("search.results", len(books)))
	return books, err
}

func (s *Store) BooksByGenre(ctx context.Context, genre string) ([]*domain.Book, error) {
	ctx, span := s.tracer.Start(ctx, "store.books_by_genre",
		trace.WithAttributes(attribute.String("book.genre", genre)))
	defer span.End()

	rows, err := s.db.QueryContext(ctx, selectBookSQL+` WHERE genre = $1 ORDER BY book_id`, genre)
	if err != nil {
		return nil, fmt.Errorf("query books by genre: %w", err)
	}
	return scanBooks(rows)
}

func (s *Store) RandomBook(ctx context.Context) (*domain.Book, error) {
	ctx, span := s.tracer.Start(ctx, "store.random_book")
	defer span.End()

	b, err := scanBook(s.db.QueryRowContext(ctx, selectBookSQL+` ORDER BY random() LIMIT 1`))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NewEmptyResultError("books")
	}
	if err != nil {
		return nil, fmt.Errorf("query random book: %w", err)
	}
	return b, nil
}
