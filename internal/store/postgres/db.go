// Package postgres implements store.Store on PostgreSQL. Sales are serialized per book by
// a row lock taken inside a READ COMMITTED transaction, and the schema's CHECK
// constraints back up the stock and ledger invariants.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"bookledger/internal/store"
)

// Options tunes the connection pool and the startup ping.
type Options struct {
	MaxOpenConns   int
	MaxIdleConns   int
	ConnMaxLife    time.Duration
	ConnectTimeout time.Duration
}

// Store is the PostgreSQL store.Store.
type Store struct {
	db     *sqlx.DB
	tracer trace.Tracer
}

// compile-time assertion that Store implements store.Store
var _ store.Store = (*Store)(nil)

// Open connects to dsn and waits, with exponential backoff, until the server answers.
func Open(ctx context.Context, dsn string, opts Options, logger *zap.Logger) (*Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if opts.MaxOpenConns > 0 {
		db.SetMaxOpenConns(opts.MaxOpenConns)
	}
	if opts.MaxIdleConns > 0 {
		db.SetMaxIdleConns(opts.MaxIdleConns)
	}
	if opts.ConnMaxLife > 0 {
		db.SetConnMaxLifetime(opts.ConnMaxLife)
	}
	if opts.ConnectTimeout <= 0 {
		opts.ConnectTimeout = 30 * time.Second
	}

	attempt := 0
	ping := func() (struct{}, error) {
		attempt++
		if err := db.PingContext(ctx); err != nil {
			logger.Warn("database not ready", zap.Int("attempt", attempt), zap.Error(err))
			return struct{}{}, err
		}
		return struct{}{}, nil
	}
	if _, err := backoff.Retry(ctx, ping,
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxElapsedTime(opts.ConnectTimeout),
	); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return New(db), nil
}

// New wraps an already open *sql.DB.
func New(db *sql.DB) *Store {
	return &Store{
		db:     sqlx.NewDb(db, "postgres"),
		tracer: otel.Tracer("bookledger/store/postgres"),
	}
}

func (s *Store) Close() error {
	return s.db.Close()
}
