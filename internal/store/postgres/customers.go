package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"bookledger/internal/domain"
)

const selectCustomerSQL = `
	SELECT customer_id, name, email, phone, created_at, updated_at
	FROM customers`

func scanCustomer(row rowScanner) (*domain.Customer, error) {
	c := &domain.Customer{}
	if err := row.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Store) GetCustomer(ctx context.Context, id int64) (*domain.Customer, error) {
	ctx, span := s.tracer.Start(ctx, "store.get_customer",
		trace.WithAttributes(attribute.Int64("customer.id", id)))
	defer span.End()

	c, err := scanCustomer(s.db.QueryRowContext(ctx, selectCustomerSQL+` WHERE customer_id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NewNotFoundError("customer", id)
	}
	if err != nil {
		return nil, fmt.Errorf("query customer: %w", err)
	}
	return c, nil
}

func (s *Store) ListCustomers(ctx context.Context, limit, offset int) ([]*domain.Customer, error) {
	ctx, span := s.tracer.Start(ctx, "store.list_customers")
	defer span.End()

	rows, err := s.db.QueryContext(ctx, selectCustomerSQL+` ORDER BY customer_id LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("query customers: %w", err)
	}
	defer rows.Close()

	customers := make([]*domain.Customer, 0)
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan customer: %w", err)
		}
		customers = append(customers, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate customers: %w", err)
	}
	return customers, nil
}

func (s *Store) CreateCustomer(ctx context.Context, c *domain.Customer) error {
	if err := c.Validate(); err != nil {
		return err
	}
	ctx, span := s.tracer.Start(ctx, "store.create_customer")
	defer span.End()

	now := time.Now().UTC()
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO customers (name, email, phone, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $4)
		RETURNING customer_id
	`, c.Name, c.Email, c.Phone, now).Scan(&c.ID)
	if err != nil {
		return fmt.Errorf("insert customer: %w", mapError(err))
	}
	c.CreatedAt, c.UpdatedAt = now, now
	return nil
}

func (s *Store) UpdateCustomer(ctx context.Context, c *domain.Customer) error {
	if err := c.Validate(); err != nil {
		return err
	}
	ctx, span := s.tracer.Start(ctx, "store.update_customer",
		trace.WithAttributes(attribute.Int64("customer.id", c.ID)))
	defer span.End()

	err := s.db.QueryRowContext(ctx, `
		UPDATE customers SET name = $1, email = $2, phone = $3, updated_at = $4
		WHERE customer_id = $5
		RETURNING created_at, updated_at
	`, c.Name, c.Email, c.Phone, time.Now().UTC(), c.ID).Scan(&c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.NewNotFoundError("customer", c.ID)
	}
	if err != nil {
		return fmt.Errorf("update customer: %w", mapError(err))
	}
	return nil
}

func (s *Store) DeleteCustomer(ctx context.Context, id int64) error {
	ctx, span := s.tracer.Start(ctx, "store.delete_customer",
		trace.WithAttributes(attribute.Int64("customer.id", id)))
	defer span.End()

	if _, err := s.db.ExecContext(ctx, `DELETE FROM customers WHERE customer_id = $1`, id); err != nil {
		return fmt.Errorf("delete customer: %w", err)
	}
	return nil
}
