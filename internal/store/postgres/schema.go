package postgres

import (
	"context"
	"fmt"
)

// schema is idempotent. sales.book_id carries no foreign key: the ledger outlives
// catalog deletions.
const schema = `
CREATE TABLE IF NOT EXISTS books (
	book_id    BIGSERIAL PRIMARY KEY,
	title      TEXT NOT NULL,
	author     TEXT NOT NULL,
	genre      TEXT NOT NULL DEFAULT '',
	price      NUMERIC(12,2) NOT NULL CHECK (price >= 0),
	stock      INT NOT NULL CHECK (stock >= 0),
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS books_genre_idx ON books (genre);

CREATE TABLE IF NOT EXISTS customers (
	customer_id BIGSERIAL PRIMARY KEY,
	name        TEXT NOT NULL,
	email       TEXT NOT NULL,
	phone       TEXT NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS sales (
	sale_id      BIGSERIAL PRIMARY KEY,
	book_id      BIGINT NOT NULL,
	customer_id  BIGINT NOT NULL,
	sale_date    DATE NOT NULL,
	quantity     INT NOT NULL CHECK (quantity > 0),
	total_amount NUMERIC(12,2) NOT NULL CHECK (total_amount >= 0),
	created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS sales_book_id_idx ON sales (book_id);
`

// Migrate creates the tables and indexes if they do not exist yet.
func (s *Store) Migrate(ctx context.Context) error {
	ctx, span := s.tracer.Start(ctx, "store.migrate")
	defer span.End()

	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
