// internal/clients/bookledger_client.go
package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"bookledger/internal/audit"
	"bookledger/internal/domain"
	"bookledger/internal/sales"
)

// APIError is a non-2xx answer from the server.
type APIError struct {
	Status    int
	Message   string `json:"error"`
	Available *int   `json:"available,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("bookledger: %d %s", e.Status, e.Message)
}

// BookledgerClient talks to the /api/v1 HTTP surface.
type BookledgerClient struct {
	baseURL string
	http    *http.Client
}

func NewBookledgerClient(baseURL string) *BookledgerClient {
	return &BookledgerClient{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

// WithHTTPClient swaps the underlying client, e.g. for an httptest server.
func (c *BookledgerClient) WithHTTPClient(hc *http.Client) *BookledgerClient {
	c.http = hc
	return c
}

func (c *BookledgerClient) AddBook(ctx context.Context, title, author, genre string, price decimal.Decimal, stock int) (*domain.Book, error) {
	body := map[string]interface{}{
		"title": title, "author": author, "genre": genre, "price": price, "stock": stock,
	}
	var book domain.Book
	if err := c.do(ctx, http.MethodPost, "/api/v1/books", body, http.StatusCreated, &book); err != nil {
		return nil, err
	}
	return &book, nil
}

func (c *BookledgerClient) GetBook(ctx context.Context, id int64) (*domain.Book, error) {
	var book domain.Book
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/v1/books/%d", id), nil, http.StatusOK, &book); err != nil {
		return nil, err
	}
	return &book, nil
}

func (c *BookledgerClient) RecordSale(ctx context.Context, req sales.RecordSaleRequest) (*sales.Receipt, error) {
	var receipt sales.Receipt
	if err := c.do(ctx, http.MethodPost, "/api/v1/sales", req, http.StatusCreated, &receipt); err != nil {
		return nil, err
	}
	return &receipt, nil
}

func (c *BookledgerClient) TotalsForBook(ctx context.Context, id int64) (*domain.BookTotals, error) {
	var totals domain.BookTotals
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/v1/sales/books/%d/totals", id), nil, http.StatusOK, &totals); err != nil {
		return nil, err
	}
	return &totals, nil
}

// Consistency fetches the audit report. An unhealthy ledger is a report, not an error.
func (c *BookledgerClient) Consistency(ctx context.Context) (*audit.Report, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/v1/health/consistency", nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusServiceUnavailable {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}
	var report audit.Report
	if err := json.NewDecoder(resp.Body).Decode(&report); err != nil {
		return nil, err
	}
	return &report, nil
}

func (c *BookledgerClient) do(ctx context.Context, method, path string, in interface{}, want int, out interface{}) error {
	var body *bytes.Buffer
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewBuffer(raw)
	} else {
		body = &bytes.Buffer{}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != want {
		apiErr := &APIError{Status: resp.StatusCode}
		_ = json.NewDecoder(resp.Body).Decode(apiErr)
		return apiErr
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
