package domain

import (
	"strings"
	"time"
)

// Customer is a buyer known to the store.
type Customer struct {
	ID        int64     `json:"customer_id" db:"customer_id"`
	Name      string    `json:"name" db:"name"`
	Email     string    `json:"email" db:"email"`
	Phone     string    `json:"phone" db:"phone"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Validate requires every contact field to be present.
func (c *Customer) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return NewInvalidInputError("name", "cannot be empty", nil)
	}
	if strings.TrimSpace(c.Email) == "" {
		return NewInvalidInputError("email", "cannot be empty", nil)
	}
	if strings.TrimSpace(c.Phone) == "" {
		return NewInvalidInputError("phone", "cannot be empty", nil)
	}
	return nil
}
