// internal/customers/service.go
package customers

import (
	"context"

	"bookledger/internal/domain"
)

// Service defines the interface for the customer service.
type Service interface {
	RegisterCustomer(ctx context.Context, c *domain.Customer) (*domain.Customer, error)
	GetCustomer(ctx context.Context, id int64) (*domain.Customer, error)
	ListCustomers(ctx context.Context, limit, offset int) ([]*domain.Customer, error)
	UpdateCustomer(ctx context.Context, c *domain.Customer) (*domain.Customer, error)
	RemoveCustomer(ctx context.Context, id int64) error
}
