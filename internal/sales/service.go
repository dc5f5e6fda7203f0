// internal/sales/service.go
package sales

import (
	"context"

	"github.com/shopspring/decimal"

	"bookledger/internal/domain"
)

// RecordSaleRequest is the caller's view of a sale. SaleDate is YYYY-MM-DD.
type RecordSaleRequest struct {
	BookID      int64           `json:"book_id"`
	CustomerID  int64           `json:"customer_id"`
	SaleDate    string          `json:"sale_date"`
	Quantity    int             `json:"quantity"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

// Receipt is the committed sale together with the book's stock after it.
type Receipt struct {
	Sale  *domain.Sale `json:"sale"`
	Stock int          `json:"stock"`
}

// Service defines the interface for the transaction core.
type Service interface {
	// RecordSale checks stock, appends the sale to the ledger and decrements stock as one
	// unit. Either all of it happens or none of it does.
	RecordSale(ctx context.Context, req RecordSaleRequest) (*Receipt, error)
}
