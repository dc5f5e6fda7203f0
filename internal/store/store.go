// Package store defines the persistence contracts of the catalog, the customer table and
// the sales ledger. Implementations live in store/postgres and store/memory.
package store

import (
	"context"

	"bookledger/internal/domain"
)

// Catalog is the Book table. Writes outside a unit of work are plain CRUD.
type Catalog interface {
	GetBook(ctx context.Context, id int64) (*domain.Book, error)
	ListBooks(ctx context.Context, limit, offset int) ([]*domain.Book, error)
	CreateBook(ctx context.Context, b *domain.Book) error
	UpdateBook(ctx context.Context, b *domain.Book) error
	DeleteBook(ctx context.Context, id int64) error
	SearchBooks(ctx context.Context, query string) ([]*domain.Book, error)
	BooksByGenre(ctx context.Context, genre string) ([]*domain.Book, error)
	RandomBook(ctx context.Context) (*domain.Book, error)
}

// Customers is the Customer table.
type Customers interface {
	GetCustomer(ctx context.Context, id int64) (*domain.Customer, error)
	ListCustomers(ctx context.Context, limit, offset int) ([]*domain.Customer, error)
	CreateCustomer(ctx context.Context, c *domain.Customer) error
	UpdateCustomer(ctx context.Context, c *domain.Customer) error
	DeleteCustomer(ctx context.Context, id int64) error
}

// Ledger is the read side of the append-only sales table. Appends only happen
// through Tx.AppendSale.
type Ledger interface {
	// ListSales returns up to limit sales with an ID greater than afterID, in insertion order.
	ListSales(ctx context.Context, afterID int64, limit int) ([]*domain.Sale, error)
	RevenueByGenre(ctx context.Context) ([]domain.GenreRevenue, error)
	// TotalsForBook returns the totals and the number of sales they cover.
	TotalsForBook(ctx context.Context, bookID int64) (domain.BookTotals, int, error)
	TopSellingBooks(ctx context.Context, limit int) ([]domain.BookSales, error)
}

// Tx is the unit of work shared by the catalog and the ledger. Every change made through
// a Tx commits together or not at all.
type Tx interface {
	// LockBook reads a book and holds it exclusively until the unit of work ends.
	LockBook(ctx context.Context, id int64) (*domain.Book, error)
	// AdjustStock adds delta to the book's stock and returns the new value.
	AdjustStock(ctx context.Context, id int64, delta int) (int, error)
	// AppendSale writes s to the ledger and sets s.ID.
	AppendSale(ctx context.Context, s *domain.Sale) error
}

// UnitOfWork runs fn inside a transaction. If fn returns an error nothing it did is kept.
type UnitOfWork interface {
	WithinTx(ctx context.Context, fn func(tx Tx) error) error
}

// Inspector counts rows that break the stock and ledger invariants.
type Inspector interface {
	CountNegativeStock(ctx context.Context) (int, error)
	CountInvalidSales(ctx context.Context) (int, error)
}

// Store is the process-wide handle opened once at startup.
type Store interface {
	Catalog
	Customers
	Ledger
	UnitOfWork
	Inspector
	Close() error
}

// Paging defaults shared by list endpoints.
const (
	DefaultPageSize = 50
	MaxPageSize     = 500
)

// NormalizePage clamps limit and offset to the supported range.
func NormalizePage(limit, offset int) (int, int, error) {
	if limit < 0 {
		return 0, 0, domain.NewInvalidInputError("limit", "must be non-negative", limit)
	}
	if offset < 0 {
		return 0, 0, domain.NewInvalidInputError("offset", "must be non-negative", offset)
	}
	if limit == 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	return limit, offset, nil
}
