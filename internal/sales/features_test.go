package sales

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/cucumber/godog"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"bookledger/internal/domain"
	"bookledger/internal/store/memory"
)

type saleTestContext struct {
	store   *memory.Store
	service Service
	books   map[string]int64
	receipt *Receipt
	err     error
}

func (c *saleTestContext) reset() error {
	c.store = memory.New()
	svc, err := NewService(c.store, nil, zap.NewNop())
	if err != nil {
		return err
	}
	c.service = svc
	c.books = map[string]int64{}
	c.receipt = nil
	c.err = nil
	return nil
}

func (c *saleTestContext) aBookInGenreWithStock(title, genre string, stock int) error {
	b := &domain.Book{Title: title, Author: "Someone", Genre: genre, Price: decimal.NewFromInt(10), Stock: stock}
	if err := c.store.CreateBook(context.Background(), b); err != nil {
		return err
	}
	c.books[title] = b.ID
	return nil
}

func (c *saleTestContext) iSellCopiesOfFor(qty int, title, amount string) error {
	id, ok := c.books[title]
	if !ok {
		id = 9999
	}
	c.receipt, c.err = c.service.RecordSale(context.Background(), RecordSaleRequest{
		BookID:      id,
		CustomerID:  1,
		SaleDate:    "2024-04-01",
		Quantity:    qty,
		TotalAmount: decimal.RequireFromString(amount),
	})
	return nil
}

func (c *saleTestContext) theSaleIsRecorded() error {
	if c.err != nil {
		return fmt.Errorf("expected success, got %v", c.err)
	}
	if c.receipt == nil || c.receipt.Sale.ID == 0 {
		return errors.New("expected a sale with a ledger id")
	}
	return nil
}

func (c *saleTestContext) theStockOfIs(title string, want int) error {
	b, err := c.store.GetBook(context.Background(), c.books[title])
	if err != nil {
		return err
	}
	if b.Stock != want {
		return fmt.Errorf("stock is %d, want %d", b.Stock, want)
	}
	return nil
}

func (c *saleTestContext) theSaleFailsWithInsufficientStockAndAvailable(available int) error {
	var ise *domain.InsufficientStockError
	if !errors.As(c.err, &ise) {
		return fmt.Errorf("expected insufficient stock, got %v", c.err)
	}
	if ise.Available != available {
		return fmt.Errorf("available is %d, want %d", ise.Available, available)
	}
	return nil
}

func (c *saleTestContext) theSaleFailsWith(kind string) error {
	var want domain.Kind
	switch kind {
	case "invalid input":
		want = domain.KindInvalidInput
	case "not found":
		want = domain.KindNotFound
	default:
		return fmt.Errorf("unknown failure kind %q", kind)
	}
	if got := domain.KindOf(c.err); c.err == nil || got != want {
		return fmt.Errorf("expected %s, got %v", kind, c.err)
	}
	return nil
}

func (c *saleTestContext) theLedgerHoldsSales(n int) error {
	sales, err := c.store.ListSales(context.Background(), 0, 100)
	if err != nil {
		return err
	}
	if len(sales) != n {
		return fmt.Errorf("ledger holds %d sales, want %d", len(sales), n)
	}
	return nil
}

func (c *saleTestContext) theTotalsForAreCopiesAndRevenue(title string, qty int, revenue string) error {
	totals, _, err := c.store.TotalsForBook(context.Background(), c.books[title])
	if err != nil {
		return err
	}
	if totals.Quantity != qty {
		return fmt.Errorf("quantity is %d, want %d", totals.Quantity, qty)
	}
	if !totals.Revenue.Equal(decimal.RequireFromString(revenue)) {
		return fmt.Errorf("revenue is %s, want %s", totals.Revenue, revenue)
	}
	return nil
}

func InitializeScenario(ctx *godog.ScenarioContext) {
	tc := &saleTestContext{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		return ctx, tc.reset()
	})

	ctx.Step(`^a book "([^"]*)" in genre "([^"]*)" with stock (\d+)$`, tc.aBookInGenreWithStock)
	ctx.Step(`^I sell (-?\d+) copies of "([^"]*)" for (-?[\d.]+)$`, tc.iSellCopiesOfFor)
	ctx.Step(`^the sale is recorded$`, tc.theSaleIsRecorded)
	ctx.Step(`^the stock of "([^"]*)" is (\d+)$`, tc.theStockOfIs)
	ctx.Step(`^the sale fails with insufficient stock and (\d+) available$`, tc.theSaleFailsWithInsufficientStockAndAvailable)
	ctx.Step(`^the sale fails with (invalid input|not found)$`, tc.theSaleFailsWith)
	ctx.Step(`^the ledger holds (\d+) sales$`, tc.theLedgerHoldsSales)
	ctx.Step(`^the totals for "([^"]*)" are (\d+) copies and ([\d.]+) revenue$`, tc.theTotalsForAreCopiesAndRevenue)
}

func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: InitializeScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"features"},
			TestingT: t,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}
