package memory

import (
	"context"
	"time"

	"bookledger/internal/domain"
	"bookledger/internal/store"
)

// tx buffers stock changes and ledger appends until commit. Every book it reads is
// locked for its whole lifetime, so the stock it sees cannot change underneath it.
type tx struct {
	s        *Store
	releases []func()
	held     map[int64]bool
	stock    map[int64]int
	dirty    map[int64]bool
	sales    []*domain.Sale
}

// WithinTx runs fn with a fresh unit of work and applies its changes only if fn succeeds.
func (s *Store) WithinTx(ctx context.Context, fn func(store.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	t := &tx{
		s:     s,
		held:  make(map[int64]bool),
		stock: make(map[int64]int),
		dirty: make(map[int64]bool),
	}
	defer t.release()

	if err := fn(t); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	t.commit()
	return nil
}

func (t *tx) LockBook(ctx context.Context, id int64) (*domain.Book, error) {
	if !t.held[id] {
		release, err := t.s.lockBook(ctx, id)
		if err != nil {
			return nil, err
		}
		t.held[id] = true
		t.releases = append(t.releases, release)
	}

	t.s.mu.RLock()
	b, ok := t.s.books[id]
	t.s.mu.RUnlock()
	if !ok {
		return nil, domain.NewNotFoundError("book", id)
	}
	if st, seen := t.stock[id]; seen {
		b.Stock = st
	} else {
		t.stock[id] = b.Stock
	}
	return &b, nil
}

func (t *tx) AdjustStock(ctx context.Context, id int64, delta int) (int, error) {
	if err := domain.ValidateDelta(delta); err != nil {
		return 0, err
	}
	if _, err := t.LockBook(ctx, id); err != nil {
		return 0, err
	}
	next, err := domain.ApplyDelta(id, t.stock[id], delta)
	if err != nil {
		return next, err
	}
	t.stock[id] = next
	t.dirty[id] = true
	return next, nil
}

func (t *tx) AppendSale(ctx context.Context, sale *domain.Sale) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := sale.Validate(); err != nil {
		return err
	}
	t.sales = append(t.sales, sale)
	return nil
}

func (t *tx) commit() {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()

	now := time.Now().UTC()
	for id := range t.dirty {
		b, ok := t.s.books[id]
		if !ok {
			continue
		}
		b.Stock = t.stock[id]
		b.UpdatedAt = now
		t.s.books[id] = b
	}
	for _, sale := range t.sales {
		t.s.nextSale++
		sale.ID = t.s.nextSale
		sale.CreatedAt = now
		t.s.sales = append(t.s.sales, *sale)
	}
}

func (t *tx) release() {
	for i := len(t.releases) - 1; i >= 0; i-- {
		t.releases[i]()
	}
}
