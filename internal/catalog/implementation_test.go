package catalog

import (
	"context"
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"bookledger/internal/domain"
	"bookledger/internal/store/memory"
)

func newTestService(t *testing.T) (Service, *memory.Store) {
	t.Helper()
	st := memory.New()
	return NewService(st, st, zap.NewNop()), st
}

func book(title, author, genre string, stock int) *domain.Book {
	return &domain.Book{Title: title, Author: author, Genre: genre, Price: decimal.RequireFromString("9.99"), Stock: stock}
}

func TestAddBookTrimsAndValidates(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	b, err := svc.AddBook(ctx, book("  Dune ", " Frank Herbert", "sci-fi ", 3))
	require.NoError(t, err)
	assert.Equal(t, "Dune", b.Title)
	assert.Equal(t, "Frank Herbert", b.Author)
	assert.Equal(t, "sci-fi", b.Genre)

	_, err = svc.AddBook(ctx, book("   ", "Nobody", "g", 1))
	assert.True(t, domain.IsInvalidInputError(err))

	neg := book("Title", "Author", "g", 1)
	neg.Price = decimal.NewFromInt(-1)
	_, err = svc.AddBook(ctx, neg)
	assert.True(t, domain.IsInvalidInputError(err))
}

func TestUpdateBook(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	b, err := svc.AddBook(ctx, book("Dune", "Frank Herbert", "sci-fi", 3))
	require.NoError(t, err)

	changed := book("Dune Messiah", "Frank Herbert", "sci-fi", 4)
	changed.ID = b.ID
	updated, err := svc.UpdateBook(ctx, changed)
	require.NoError(t, err)
	assert.Equal(t, "Dune Messiah", updated.Title)

	missing := book("Ghost", "Nobody", "g", 1)
	missing.ID = 404
	_, err = svc.UpdateBook(ctx, missing)
	assert.True(t, domain.IsNotFoundError(err))
}

func TestListBooksRejectsNegativePaging(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.ListBooks(context.Background(), -1, 0)
	assert.True(t, domain.IsInvalidInputError(err))
}

func TestSearch(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	_, err := svc.AddBook(ctx, book("The Hobbit", "J.R.R. Tolkien", "fantasy", 1))
	require.NoError(t, err)
	_, err = svc.AddBook(ctx, book("Emma", "Jane Austen", "classic", 1))
	require.NoError(t, err)

	books, err := svc.Search(ctx, "tolk")
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, "The Hobbit", books[0].Title)

	books, err = svc.Search(ctx, "EMMA")
	require.NoError(t, err)
	require.Len(t, books, 1)

	for _, q := range []string{"", "   ", "pratchett"} {
		_, err := svc.Search(ctx, q)
		assert.True(t, domain.IsNotFoundError(err), "query %q", q)
	}
}

func TestSearchKeepsSurroundingSpaces(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	_, err := svc.AddBook(ctx, book("Dune Messiah", "Frank Herbert", "sci-fi", 1))
	require.NoError(t, err)

	_, err = svc.Search(ctx, " Dune")
	assert.True(t, domain.IsNotFoundError(err), "got %v", err)

	books, err := svc.Search(ctx, "Dune ")
	require.NoError(t, err)
	assert.Len(t, books, 1)
}

func TestByGenreAndRecommend(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Recommend(ctx)
	assert.True(t, domain.IsNotFoundError(err))

	b, err := svc.AddBook(ctx, book("Emma", "Jane Austen", "classic", 1))
	require.NoError(t, err)

	books, err := svc.ByGenre(ctx, "classic")
	require.NoError(t, err)
	assert.Len(t, books, 1)

	none, err := svc.ByGenre(ctx, "horror")
	require.NoError(t, err)
	assert.Empty(t, none)

	rec, err := svc.Recommend(ctx)
	require.NoError(t, err)
	assert.Equal(t, b.ID, rec.ID)
}

func TestAdjustStock(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	b, err := svc.AddBook(ctx, book("Emma", "Jane Austen", "classic", 2))
	require.NoError(t, err)

	stock, err := svc.AdjustStock(ctx, b.ID, 5)
	require.NoError(t, err)
	assert.Equal(t, 7, stock)

	_, err = svc.AdjustStock(ctx, b.ID, -8)
	var ise *domain.InsufficientStockError
	require.ErrorAs(t, err, &ise)
	assert.Equal(t, 7, ise.Available)

	got, err := svc.GetBook(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, 7, got.Stock)

	_, err = svc.AdjustStock(ctx, 404, 1)
	assert.True(t, domain.IsNotFoundError(err))
}

func TestRemoveBookIsIdempotent(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	b, err := svc.AddBook(ctx, book("Emma", "Jane Austen", "classic", 2))
	require.NoError(t, err)

	require.NoError(t, svc.RemoveBook(ctx, b.ID))
	require.NoError(t, svc.RemoveBook(ctx, b.ID))
	_, err = svc.GetBook(ctx, b.ID)
	assert.True(t, domain.IsNotFoundError(err))
}

func TestNumericLimits(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	books := []struct {
		name  string
		price string
		stock int
	}{
		{"stock beyond int32", "9.99", math.MaxInt32 + 1},
		{"sub-cent price", "9.999", 1},
		{"price too large", "10000000000", 1},
	}
	for _, tc := range books {
		t.Run(tc.name, func(t *testing.T) {
			b := book("Dune", "Frank Herbert", "sci-fi", tc.stock)
			b.Price = decimal.RequireFromString(tc.price)
			_, err := svc.AddBook(ctx, b)
			assert.True(t, domain.IsInvalidInputError(err), "got %v", err)
		})
	}

	b, err := svc.AddBook(ctx, book("Emma", "Jane Austen", "classic", 5))
	require.NoError(t, err)

	for _, delta := range []int{math.MaxInt, math.MinInt, math.MaxInt32} {
		_, err := svc.AdjustStock(ctx, b.ID, delta)
		assert.True(t, domain.IsInvalidInputError(err), "delta %d: got %v", delta, err)
	}

	got, err := svc.GetBook(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, got.Stock)

	stock, err := svc.AdjustStock(ctx, b.ID, math.MaxInt32-5)
	require.NoError(t, err)
	assert.Equal(t, math.MaxInt32, stock)
}
