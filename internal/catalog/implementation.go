// internal/catalog/implementation.go
package catalog

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"bookledger/internal/domain"
	"bookledger/internal/store"
)

// service implements the Service interface.
type service struct {
	books  Store
	uow    store.UnitOfWork
	logger *zap.Logger
}

// NewService creates a new catalog service instance.
func NewService(books Store, uow store.UnitOfWork, logger *zap.Logger) Service {
	return &service{
		books:  books,
		uow:    uow,
		logger: logger,
	}
}

// AddBook creates a new book in the catalog.
func (s *service) AddBook(ctx context.Context, b *domain.Book) (*domain.Book, error) {
	normalize(b)
	if err := s.books.CreateBook(ctx, b); err != nil {
		return nil, err
	}
	s.logger.Info("book added", zap.Int64("book_id", b.ID), zap.Int("stock", b.Stock))
	return b, nil
}

// GetBook retrieves a book from the catalog by its ID.
func (s *service) GetBook(ctx context.Context, id int64) (*domain.Book, error) {
	return s.books.GetBook(ctx, id)
}

func (s *service) ListBooks(ctx context.Context, limit, offset int) ([]*domain.Book, error) {
	limit, offset, err := store.NormalizePage(limit, offset)
	if err != nil {
		return nil, err
	}
	return s.books.ListBooks(ctx, limit, offset)
}

// UpdateBook replaces every mutable field of an existing book.
func (s *service) UpdateBook(ctx context.Context, b *domain.Book) (*domain.Book, error) {
	normalize(b)
	if err := s.books.UpdateBook(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

// RemoveBook deletes a book. Deleting a book that does not exist is not an error, and
// the book's sales stay in the ledger.
func (s *service) RemoveBook(ctx context.Context, id int64) error {
	if err := s.books.DeleteBook(ctx, id); err != nil {
		return err
	}
	s.logger.Info("book removed", zap.Int64("book_id", id))
	return nil
}

func (s *service) AdjustStock(ctx context.Context, id int64, delta int) (int, error) {
	var stock int
	err := s.uow.WithinTx(ctx, func(tx store.Tx) error {
		var err error
		stock, err = tx.AdjustStock(ctx, id, delta)
		return err
	})
	if err != nil {
		return 0, err
	}
	s.logger.Info("stock adjusted", zap.Int64("book_id", id), zap.Int("delta", delta), zap.Int("stock", stock))
	return stock, nil
}

// Search matches query, as given, against title or author, ignoring case. A blank
// query or no match is reported as not found.
func (s *service) Search(ctx context.Context, query string) ([]*domain.Book, error) {
	if strings.TrimSpace(query) == "" {
		return nil, domain.NewEmptyResultError("books")
	}
	books, err := s.books.SearchBooks(ctx, query)
	if err != nil {
		return nil, err
	}
	if len(books) == 0 {
		return nil, domain.NewEmptyResultError("books")
	}
	return books, nil
}

func (s *service) ByGenre(ctx context.Context, genre string) ([]*domain.Book, error) {
	return s.books.BooksByGenre(ctx, genre)
}

func (s *service) Recommend(ctx context.Context) (*domain.Book, error) {
	return s.books.RandomBook(ctx)
}

func normalize(b *domain.Book) {
	b.Title = strings.TrimSpace(b.Title)
	b.Author = strings.TrimSpace(b.Author)
	b.Genre = strings.TrimSpace(b.Genre)
}
