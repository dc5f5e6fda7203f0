package clients

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"bookledger/internal/events"
	"bookledger/internal/sales"
	"bookledger/internal/server"
	"bookledger/internal/store/memory"
)

func TestClientAgainstServer(t *testing.T) {
	router, err := server.NewRouter(memory.New(), events.Nop{}, zap.NewNop(), server.Options{})
	require.NoError(t, err)
	srv := httptest.NewServer(router)
	defer srv.Close()

	c := NewBookledgerClient(srv.URL).WithHTTPClient(srv.Client())
	ctx := context.Background()

	book, err := c.AddBook(ctx, "Dune", "Frank Herbert", "sci-fi", decimal.RequireFromString("12.50"), 2)
	require.NoError(t, err)
	assert.NotZero(t, book.ID)

	receipt, err := c.RecordSale(ctx, sales.RecordSaleRequest{
		BookID: book.ID, CustomerID: 1, SaleDate: "2024-01-01",
		Quantity: 2, TotalAmount: decimal.NewFromInt(25),
	})
	require.NoError(t, err)
	assert.Equal(t, 0, receipt.Stock)

	_, err = c.RecordSale(ctx, sales.RecordSaleRequest{
		BookID: book.ID, CustomerID: 1, SaleDate: "2024-01-01",
		Quantity: 1, TotalAmount: decimal.NewFromInt(12),
	})
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnprocessableEntity, apiErr.Status)
	require.NotNil(t, apiErr.Available)
	assert.Equal(t, 0, *apiErr.Available)

	totals, err := c.TotalsForBook(ctx, book.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, totals.Quantity)

	report, err := c.Consistency(ctx)
	require.NoError(t, err)
	assert.True(t, report.Healthy)
}
