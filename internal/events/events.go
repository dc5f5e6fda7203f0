// Package events publishes ledger changes to downstream consumers.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"

	"bookledger/internal/domain"
)

// SaleRecordedType is the event_type header of SaleRecorded messages.
const SaleRecordedType = "SaleRecorded"

// SaleRecorded is emitted after a sale has been committed.
type SaleRecorded struct {
	EventID    uuid.UUID   `json:"event_id"`
	OccurredAt time.Time   `json:"occurred_at"`
	Sale       domain.Sale `json:"sale"`
	StockAfter int         `json:"stock_after"`
}

// NewSaleRecorded stamps a fresh event for sale.
func NewSaleRecorded(sale domain.Sale, stockAfter int) SaleRecorded {
	return SaleRecorded{
		EventID:    uuid.New(),
		OccurredAt: time.Now().UTC(),
		Sale:       sale,
		StockAfter: stockAfter,
	}
}

// Publisher delivers events. Implementations must be safe for concurrent use.
type Publisher interface {
	PublishSaleRecorded(ctx context.Context, evt SaleRecorded) error
	Close() error
}

// Nop drops every event.
type Nop struct{}

func (Nop) PublishSaleRecorded(context.Context, SaleRecorded) error { return nil }
func (Nop) Close() error                                             { return nil }
