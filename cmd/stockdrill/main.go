// cmd/stockdrill/main.go
//
// stockdrill races concurrent sales of the last copies of a fresh book against a running
// bookledger and checks that no sale went through without stock.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"bookledger/internal/clients"
	"bookledger/internal/observability"
	"bookledger/internal/sales"
)

type drill struct {
	baseURL     string
	copies      int
	concurrency int
	timeout     time.Duration
}

type outcome struct {
	sold     int
	rejected int
	failed   []error
}

func main() {
	d := &drill{}
	cmd := &cobra.Command{
		Use:           "stockdrill",
		Short:         "Oversell drill against a running bookledger",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := observability.NewLogger("stockdrill", "info")
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			ctx, cancel := context.WithTimeout(cmd.Context(), d.timeout)
			defer cancel()
			return d.run(ctx, clients.NewBookledgerClient(d.baseURL), logger)
		},
	}
	cmd.Flags().StringVar(&d.baseURL, "url", "http://localhost:8080", "bookledger base URL")
	cmd.Flags().IntVar(&d.copies, "copies", 5, "stock of the drill book")
	cmd.Flags().IntVar(&d.concurrency, "concurrency", 50, "number of concurrent single-copy sales")
	cmd.Flags().DurationVar(&d.timeout, "timeout", time.Minute, "overall deadline")

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func (d *drill) run(ctx context.Context, client *clients.BookledgerClient, logger *zap.Logger) error {
	if d.copies < 1 || d.concurrency < 1 {
		return errors.New("copies and concurrency must be positive")
	}
	price := decimal.RequireFromString("12.50")
	title := "stockdrill " + uuid.NewString()
	book, err := client.AddBook(ctx, title, "Drill Author", "drill", price, d.copies)
	if err != nil {
		return fmt.Errorf("add drill book: %w", err)
	}
	logger.Info("drill book created", zap.Int64("book_id", book.ID), zap.Int("stock", d.copies), zap.Int("buyers", d.concurrency))

	start := time.Now()
	res := d.race(ctx, client, book.ID, price)
	logger.Info("sales finished",
		zap.Int("sold", res.sold),
		zap.Int("rejected", res.rejected),
		zap.Int("failed", len(res.failed)),
		zap.Duration("duration", time.Since(start)),
	)

	var problems []error
	problems = append(problems, res.failed...)
	want := min(d.copies, d.concurrency)
	if res.sold != want {
		problems = append(problems, fmt.Errorf("sold %d copies, want %d", res.sold, want))
	}

	after, err := client.GetBook(ctx, book.ID)
	if err != nil {
		problems = append(problems, fmt.Errorf("read drill book: %w", err))
	} else if after.Stock != d.copies-res.sold {
		problems = append(problems, fmt.Errorf("stock is %d, want %d", after.Stock, d.copies-res.sold))
	}

	totals, err := client.TotalsForBook(ctx, book.ID)
	if err != nil {
		problems = append(problems, fmt.Errorf("read totals: %w", err))
	} else if totals.Quantity != res.sold {
		problems = append(problems, fmt.Errorf("ledger holds %d copies, want %d", totals.Quantity, res.sold))
	}

	report, err := client.Consistency(ctx)
	if err != nil {
		problems = append(problems, fmt.Errorf("consistency report: %w", err))
	} else {
		report.Print(os.Stdout)
		if !report.Healthy {
			problems = append(problems, errors.New("ledger inconsistent"))
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("drill failed: %w", errors.Join(problems...))
	}
	fmt.Printf("✅ Drill passed: %d sold, %d rejected\n", res.sold, res.rejected)
	return nil
}

// race fires one single-copy sale per buyer, all released at once.
func (d *drill) race(ctx context.Context, client *clients.BookledgerClient, bookID int64, price decimal.Decimal) outcome {
	var (
		mu    sync.Mutex
		res   outcome
		wg    sync.WaitGroup
		ready = make(chan struct{})
	)
	today := time.Now().UTC().Format(time.DateOnly)

	for i := 0; i < d.concurrency; i++ {
		wg.Add(1)
		go func(buyer int) {
			defer wg.Done()
			<-ready
			_, err := client.RecordSale(ctx, sales.RecordSaleRequest{
				BookID:      bookID,
				CustomerID:  int64(buyer + 1),
				SaleDate:    today,
				Quantity:    1,
				TotalAmount: price,
			})

			mu.Lock()
			defer mu.Unlock()
			var apiErr *clients.APIError
			switch {
			case err == nil:
				res.sold++
			case errors.As(err, &apiErr) && apiErr.Status == 422:
				res.rejected++
			default:
				res.failed = append(res.failed, fmt.Errorf("buyer %d: %w", buyer, err))
			}
		}(i)
	}
	close(ready)
	wg.Wait()
	return res
}
