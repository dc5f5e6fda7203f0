// internal/customers/implementation.go
package customers

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"bookledger/internal/domain"
	"bookledger/internal/store"
)

// service implements the Service interface.
type service struct {
	store  store.Customers
	logger *zap.Logger
}

// NewService creates a new customer service instance.
func NewService(customers store.Customers, logger *zap.Logger) Service {
	return &service{store: customers, logger: logger}
}

// RegisterCustomer stores a new customer. Name, email and phone are all required.
func (s *service) RegisterCustomer(ctx context.Context, c *domain.Customer) (*domain.Customer, error) {
	normalize(c)
	if err := s.store.CreateCustomer(ctx, c); err != nil {
		return nil, err
	}
	s.logger.Info("customer registered", zap.Int64("customer_id", c.ID))
	return c, nil
}

func (s *service) GetCustomer(ctx context.Context, id int64) (*domain.Customer, error) {
	return s.store.GetCustomer(ctx, id)
}

func (s *service) ListCustomers(ctx context.Context, limit, offset int) ([]*domain.Customer, error) {
	limit, offset, err := store.NormalizePage(limit, offset)
	if err != nil {
		return nil, err
	}
	return s.store.ListCustomers(ctx, limit, offset)
}

func (s *service) UpdateCustomer(ctx context.Context, c *domain.Customer) (*domain.Customer, error) {
	normalize(c)
	if err := s.store.UpdateCustomer(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// RemoveCustomer deletes a customer. Their past sales remain in the ledger.
func (s *service) RemoveCustomer(ctx context.Context, id int64) error {
	return s.store.DeleteCustomer(ctx, id)
}

func normalize(c *domain.Customer) {
	c.Name = strings.TrimSpace(c.Name)
	c.Email = strings.TrimSpace(c.Email)
	c.Phone = strings.TrimSpace(c.Phone)
}
