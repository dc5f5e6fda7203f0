// internal/catalog/service.go
package catalog

import (
	"context"

	"bookledger/internal/domain"
)

// Service defines the interface for the catalog service.
type Service interface {
	AddBook(ctx context.Context, b *domain.Book) (*domain.Book, error)
	GetBook(ctx context.Context, id int64) (*domain.Book, error)
	ListBooks(ctx context.Context, limit, offset int) ([]*domain.Book, error)
	UpdateBook(ctx context.Context, b *domain.Book) (*domain.Book, error)
	RemoveBook(ctx context.Context, id int64) error
	// AdjustStock adds delta to a book's stock under the same lock a sale takes.
	AdjustStock(ctx context.Context, id int64, delta int) (int, error)
	Search(ctx context.Context, query string) ([]*domain.Book, error)
	ByGenre(ctx context.Context, genre string) ([]*domain.Book, error)
	Recommend(ctx context.Context) (*domain.Book, error)
}

// Store is what the catalog service needs from persistence.
type Store interface {
	GetBook(ctx context.Context, id int64) (*domain.Book, error)
	ListBooks(ctx context.Context, limit, offset int) ([]*domain.Book, error)
	CreateBook(ctx context.Context, b *domain.Book) error
	UpdateBook(ctx context.Context, b *domain.Book) error
	DeleteBook(ctx context.Context, id int64) error
	SearchBooks(ctx context.Context, query string) ([]*domain.Book, error)
	BooksByGenre(ctx context.Context, genre string) ([]*domain.Book, error)
	RandomBook(ctx context.Context) (*domain.Book, error)
}
