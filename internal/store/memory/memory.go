// Package memory provides a thread-safe in-memory store.Store. It backs tests and the
// "memory" store mode, and serializes sales per book with a lock held for the whole
// unit of work.
package memory

import (
	"context"
	"math/rand/v2"
	"sort"
	"strings"
	"sync"
	"time"

	"bookledger/internal/domain"
	"bookledger/internal/store"
)

// Store is an in-memory implementation of store.Store.
type Store struct {
	mu           sync.RWMutex
	books        map[int64]domain.Book
	customers    map[int64]domain.Customer
	sales        []domain.Sale
	nextBook     int64
	nextCustomer int64
	nextSale     int64

	locksMu   sync.Mutex
	bookLocks map[int64]*bookLock
}

// bookLock is dropped from bookLocks once nobody holds or waits for it.
type bookLock struct {
	ch   chan struct{}
	refs int
}

// compile-time assertion that Store implements store.Store
var _ store.Store = (*Store)(nil)

// New constructs an empty Store.
func New() *Store {
	return &Store{
		books:     make(map[int64]domain.Book),
		customers: make(map[int64]domain.Customer),
		bookLocks: make(map[int64]*bookLock),
	}
}

func (s *Store) Close() error { return nil }

// lockBook acquires the per-book lock, giving up when ctx is done.
func (s *Store) lockBook(ctx context.Context, id int64) (release func(), err error) {
	s.locksMu.Lock()
	l, ok := s.bookLocks[id]
	if !ok {
		l = &bookLock{ch: make(chan struct{}, 1)}
		s.bookLocks[id] = l
	}
	l.refs++
	s.locksMu.Unlock()

	select {
	case l.ch <- struct{}{}:
		return func() {
			<-l.ch
			s.unref(id, l)
		}, nil
	case <-ctx.Done():
		s.unref(id, l)
		return nil, ctx.Err()
	}
}

func (s *Store) unref(id int64, l *bookLock) {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()
	l.refs--
	if l.refs == 0 {
		delete(s.bookLocks, id)
	}
}

// ── catalog ───────────────────────────────────────────────────────────────────

func (s *Store) GetBook(ctx context.Context, id int64) (*domain.Book, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.books[id]
	if !ok {
		return nil, domain.NewNotFoundError("book", id)
	}
	return &b, nil
}

func (s *Store) ListBooks(ctx context.Context, limit, offset int) ([]*domain.Book, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return page(s.sortedBooks(func(domain.Book) bool { return true }), limit, offset), nil
}

func (s *Store) CreateBook(ctx context.Context, b *domain.Book) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := b.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextBook++
	now := time.Now().UTC()
	b.ID = s.nextBook
	b.CreatedAt, b.UpdatedAt = now, now
	s.books[b.ID] = *b
	return nil
}

func (s *Store) UpdateBook(ctx context.Context, b *domain.Book) error {
	if err := b.Validate(); err != nil {
		return err
	}
	release, err := s.lockBook(ctx, b.ID)
	if err != nil {
		return err
	}
	defer release()

	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.books[b.ID]
	if !ok {
		return domain.NewNotFoundError("book", b.ID)
	}
	b.CreatedAt = existing.CreatedAt
	b.UpdatedAt = time.Now().UTC()
	s.books[b.ID] = *b
	return nil
}

func (s *Store) DeleteBook(ctx context.Context, id int64) error {
	release, err := s.lockBook(ctx, id)
	if err != nil {
		return err
	}
	defer release()

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.books, id)
	return nil
}

func (s *Store) SearchBooks(ctx context.Context, query string) ([]*domain.Book, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	q := strings.ToLower(query)
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sortedBooks(func(b domain.Book) bool {
		return strings.Contains(strings.ToLower(b.Title), q) || strings.Contains(strings.ToLower(b.Author), q)
	}), nil
}

func (s *Store) BooksByGenre(ctx context.Context, genre string) ([]*domain.Book, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sortedBooks(func(b domain.Book) bool { return b.Genre == genre }), nil
}

func (s *Store) RandomBook(ctx context.Context) (*domain.Book, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	books := s.sortedBooks(func(domain.Book) bool { return true })
	if len(books) == 0 {
		return nil, domain.NewEmptyResultError("books")
	}
	return books[rand.IntN(len(books))], nil
}

// sortedBooks must be called with s.mu held.
func (s *Store) sortedBooks(keep func(domain.Book) bool) []*domain.Book {
	out := make([]*domain.Book, 0, len(s.books))
	for _, b := range s.books {
		if keep(b) {
			b := b
			out = append(out, &b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// ── customers ─────────────────────────────────────────────────────────────────

func (s *Store) GetCustomer(ctx context.Context, id int64) (*domain.Customer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.customers[id]
	if !ok {
		return nil, domain.NewNotFoundError("customer", id)
	}
	return &c, nil
}

func (s *Store) ListCustomers(ctx context.Context, limit, offset int) ([]*domain.Customer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*domain.Customer, 0, len(s.customers))
	for _, c := range s.customers {
		c := c
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return page(out, limit, offset), nil
}

func (s *Store) CreateCustomer(ctx context.Context, c *domain.Customer) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := c.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextCustomer++
	now := time.Now().UTC()
	c.ID = s.nextCustomer
	c.CreatedAt, c.UpdatedAt = now, now
	s.customers[c.ID] = *c
	return nil
}

func (s *Store) UpdateCustomer(ctx context.Context, c *domain.Customer) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := c.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.customers[c.ID]
	if !ok {
		return domain.NewNotFoundError("customer", c.ID)
	}
	c.CreatedAt = existing.CreatedAt
	c.UpdatedAt = time.Now().UTC()
	s.customers[c.ID] = *c
	return nil
}

func (s *Store) DeleteCustomer(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.customers, id)
	return nil
}

// ── ledger ────────────────────────────────────────────────────────────────────

func (s *Store) ListSales(ctx context.Context, afterID int64, limit int) ([]*domain.Sale, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	start := sort.Search(len(s.sales), func(i int) bool { return s.sales[i].ID > afterID })
	out := make([]*domain.Sale, 0)
	for i := start; i < len(s.sales) && len(out) < limit; i++ {
		sale := s.sales[i]
		out = append(out, &sale)
	}
	return out, nil
}

func (s *Store) RevenueByGenre(ctx context.Context) ([]domain.GenreRevenue, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	byGenre := make(map[string]domain.GenreRevenue)
	for _, sale := range s.sales {
		b, ok := s.books[sale.BookID]
		if !ok {
			continue
		}
		gr := byGenre[b.Genre]
		gr.Genre = b.Genre
		gr.Revenue = gr.Revenue.Add(sale.TotalAmount)
		byGenre[b.Genre] = gr
	}

	out := make([]domain.GenreRevenue, 0, len(byGenre))
	for _, gr := range byGenre {
		out = append(out, gr)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Genre < out[j].Genre })
	return out, nil
}

func (s *Store) TotalsForBook(ctx context.Context, bookID int64) (domain.BookTotals, int, error) {
	totals := domain.BookTotals{BookID: bookID}
	if err := ctx.Err(); err != nil {
		return totals, 0, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, sale := range s.sales {
		if sale.BookID != bookID {
			continue
		}
		count++
		totals.Quantity += sale.Quantity
		totals.Revenue = totals.Revenue.Add(sale.TotalAmount)
	}
	return totals, count, nil
}

func (s *Store) TopSellingBooks(ctx context.Context, limit int) ([]domain.BookSales, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	byBook := make(map[int64]*domain.BookSales)
	for _, sale := range s.sales {
		b, ok := s.books[sale.BookID]
		if !ok {
			continue
		}
		bs, ok := byBook[b.ID]
		if !ok {
			bs = &domain.BookSales{BookID: b.ID, Title: b.Title, Author: b.Author}
			byBook[b.ID] = bs
		}
		bs.Quantity += sale.Quantity
	}

	out := make([]domain.BookSales, 0, len(byBook))
	for _, bs := range byBook {
		out = append(out, *bs)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Quantity != out[j].Quantity {
			return out[i].Quantity > out[j].Quantity
		}
		return out[i].BookID < out[j].BookID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// ── inspector ─────────────────────────────────────────────────────────────────

func (s *Store) CountNegativeStock(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, b := range s.books {
		if b.Stock < 0 {
			n++
		}
	}
	return n, nil
}

func (s *Store) CountInvalidSales(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, sale := range s.sales {
		if sale.Quantity <= 0 || sale.TotalAmount.IsNegative() {
			n++
		}
	}
	return n, nil
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return items[:0]
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
