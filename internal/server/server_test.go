package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"bookledger/internal/events"
	"bookledger/internal/store/memory"
)

type testServer struct {
	*httptest.Server
	t *testing.T
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	router, err := NewRouter(memory.New(), events.Nop{}, zap.NewNop(), Options{})
	require.NoError(t, err)
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return &testServer{Server: srv, t: t}
}

func (ts *testServer) call(method, path string, body interface{}, out interface{}) int {
	ts.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(ts.t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, ts.URL+path, &buf)
	require.NoError(ts.t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := ts.Client().Do(req)
	require.NoError(ts.t, err)
	defer resp.Body.Close()
	if out != nil && resp.StatusCode != http.StatusNoContent {
		require.NoError(ts.t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func (ts *testServer) addBook(title, genre string, stock int) int64 {
	ts.t.Helper()
	var book struct {
		ID int64 `json:"book_id"`
	}
	status := ts.call(http.MethodPost, "/api/v1/books", map[string]interface{}{
		"title": title, "author": "Author of " + title, "genre": genre, "price": 10, "stock": stock,
	}, &book)
	require.Equal(ts.t, http.StatusCreated, status)
	return book.ID
}

func sale(bookID int64, qty int, amount float64) map[string]interface{} {
	return map[string]interface{}{
		"book_id": bookID, "customer_id": 1, "sale_date": "2024-05-01",
		"quantity": qty, "total_amount": amount,
	}
}

func TestSaleFlow(t *testing.T) {
	ts := newTestServer(t)
	id := ts.addBook("Pride and Prejudice", "classic", 5)

	var receipt struct {
		Sale struct {
			ID       int64 `json:"sale_id"`
			Quantity int   `json:"quantity"`
		} `json:"sale"`
		Stock int `json:"stock"`
	}
	require.Equal(t, http.StatusCreated, ts.call(http.MethodPost, "/api/v1/sales", sale(id, 5, 50), &receipt))
	assert.Equal(t, 0, receipt.Stock)
	assert.Equal(t, 5, receipt.Sale.Quantity)

	var failure map[string]interface{}
	require.Equal(t, http.StatusUnprocessableEntity, ts.call(http.MethodPost, "/api/v1/sales", sale(id, 1, 10), &failure))
	assert.EqualValues(t, 0, failure["available"])

	var totals map[string]interface{}
	require.Equal(t, http.StatusOK, ts.call(http.MethodGet, fmt.Sprintf("/api/v1/sales/books/%d/totals", id), nil, &totals))
	assert.EqualValues(t, 5, totals["quantity"])
	assert.EqualValues(t, 50, totals["revenue"])

	var book map[string]interface{}
	require.Equal(t, http.StatusOK, ts.call(http.MethodGet, fmt.Sprintf("/api/v1/books/%d", id), nil, &book))
	assert.EqualValues(t, 0, book["stock"])
}

func TestSaleValidationStatuses(t *testing.T) {
	ts := newTestServer(t)
	id := ts.addBook("Emma", "classic", 2)

	cases := []struct {
		name string
		body interface{}
		want int
	}{
		{"zero quantity", sale(id, 0, 0), http.StatusBadRequest},
		{"negative amount", sale(id, 1, -5), http.StatusBadRequest},
		{"unknown book", sale(9999, 1, 10), http.StatusNotFound},
		{"bad date", map[string]interface{}{"book_id": id, "customer_id": 1, "sale_date": "May 1", "quantity": 1, "total_amount": 1}, http.StatusBadRequest},
		{"unknown field", map[string]interface{}{"book_id": id, "qty": 1}, http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var body map[string]interface{}
			assert.Equal(t, tc.want, ts.call(http.MethodPost, "/api/v1/sales", tc.body, &body))
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestReports(t *testing.T) {
	ts := newTestServer(t)
	dune := ts.addBook("Dune", "sci-fi", 10)
	emma := ts.addBook("Emma", "classic", 10)

	var notFound map[string]interface{}
	assert.Equal(t, http.StatusNotFound, ts.call(http.MethodGet, "/api/v1/sales/top-selling", nil, &notFound))

	require.Equal(t, http.StatusCreated, ts.call(http.MethodPost, "/api/v1/sales", sale(dune, 3, 30), nil))
	require.Equal(t, http.StatusCreated, ts.call(http.MethodPost, "/api/v1/sales", sale(emma, 1, 8.5), nil))

	var revenue []map[string]interface{}
	require.Equal(t, http.StatusOK, ts.call(http.MethodGet, "/api/v1/sales/total-by-genre", nil, &revenue))
	require.Len(t, revenue, 2)
	assert.Equal(t, "classic", revenue[0]["genre"])
	assert.EqualValues(t, 8.5, revenue[0]["revenue"])

	var top []map[string]interface{}
	require.Equal(t, http.StatusOK, ts.call(http.MethodGet, "/api/v1/sales/top-selling?limit=1", nil, &top))
	require.Len(t, top, 1)
	assert.Equal(t, "Dune", top[0]["title"])

	var bad map[string]interface{}
	assert.Equal(t, http.StatusBadRequest, ts.call(http.MethodGet, "/api/v1/sales/top-selling?limit=0", nil, &bad))

	var page []map[string]interface{}
	require.Equal(t, http.StatusOK, ts.call(http.MethodGet, "/api/v1/sales?after=1", nil, &page))
	assert.Len(t, page, 1)
}

func TestBookEndpoints(t *testing.T) {
	ts := newTestServer(t)
	id := ts.addBook("The Hobbit", "fantasy", 1)

	var errBody map[string]interface{}
	assert.Equal(t, http.StatusNotFound, ts.call(http.MethodGet, "/api/v1/books/search?query=", nil, &errBody))
	assert.Equal(t, http.StatusNotFound, ts.call(http.MethodGet, "/api/v1/books/search?query=dickens", nil, &errBody))

	var found []map[string]interface{}
	require.Equal(t, http.StatusOK, ts.call(http.MethodGet, "/api/v1/books/search?query=HOBBIT", nil, &found))
	assert.Len(t, found, 1)

	var byGenre []map[string]interface{}
	require.Equal(t, http.StatusOK, ts.call(http.MethodGet, "/api/v1/books/genre/horror", nil, &byGenre))
	assert.Empty(t, byGenre)

	var stock map[string]interface{}
	require.Equal(t, http.StatusOK, ts.call(http.MethodPatch, fmt.Sprintf("/api/v1/books/%d/stock", id), map[string]int{"delta": 4}, &stock))
	assert.EqualValues(t, 5, stock["stock"])
	assert.Equal(t, http.StatusUnprocessableEntity, ts.call(http.MethodPatch, fmt.Sprintf("/api/v1/books/%d/stock", id), map[string]int{"delta": -6}, &errBody))

	var rec map[string]interface{}
	require.Equal(t, http.StatusOK, ts.call(http.MethodGet, "/api/v1/books/recommend", nil, &rec))
	assert.EqualValues(t, id, rec["book_id"])

	assert.Equal(t, http.StatusBadRequest, ts.call(http.MethodPost, "/api/v1/books", map[string]interface{}{
		"title": "Bad", "author": "Price", "price": -1, "stock": 1,
	}, &errBody))
	assert.Equal(t, http.StatusBadRequest, ts.call(http.MethodGet, "/api/v1/books/abc", nil, &errBody))
	assert.Equal(t, http.StatusBadRequest, ts.call(http.MethodGet, "/api/v1/books?limit=-1", nil, &errBody))

	assert.Equal(t, http.StatusNoContent, ts.call(http.MethodDelete, fmt.Sprintf("/api/v1/books/%d", id), nil, nil))
	assert.Equal(t, http.StatusNoContent, ts.call(http.MethodDelete, fmt.Sprintf("/api/v1/books/%d", id), nil, nil))
	assert.Equal(t, http.StatusNotFound, ts.call(http.MethodGet, fmt.Sprintf("/api/v1/books/%d", id), nil, &errBody))
}

func TestCustomerEndpoints(t *testing.T) {
	ts := newTestServer(t)

	var c map[string]interface{}
	require.Equal(t, http.StatusCreated, ts.call(http.MethodPost, "/api/v1/customers", map[string]string{
		"name": "Ada", "email": "ada@example.com", "phone": "555-0100",
	}, &c))
	id := int64(c["customer_id"].(float64))

	var errBody map[string]interface{}
	assert.Equal(t, http.StatusBadRequest, ts.call(http.MethodPost, "/api/v1/customers", map[string]string{"name": "NoContact"}, &errBody))

	require.Equal(t, http.StatusOK, ts.call(http.MethodPut, fmt.Sprintf("/api/v1/customers/%d", id), map[string]string{
		"name": "Ada King", "email": "ada@example.com", "phone": "555-0100",
	}, &c))
	assert.Equal(t, "Ada King", c["name"])

	var list []map[string]interface{}
	require.Equal(t, http.StatusOK, ts.call(http.MethodGet, "/api/v1/customers", nil, &list))
	assert.Len(t, list, 1)

	assert.Equal(t, http.StatusNoContent, ts.call(http.MethodDelete, fmt.Sprintf("/api/v1/customers/%d", id), nil, nil))
	assert.Equal(t, http.StatusNotFound, ts.call(http.MethodGet, fmt.Sprintf("/api/v1/customers/%d", id), nil, &errBody))
}

func TestConcurrentSalesOverHTTP(t *testing.T) {
	ts := newTestServer(t)
	id := ts.addBook("Gatsby", "classic", 10)

	var wg sync.WaitGroup
	var mu sync.Mutex
	statuses := map[int]int{}
	for i := 0; i < 40; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			raw, _ := json.Marshal(sale(id, 1, 10))
			resp, err := ts.Client().Post(ts.URL+"/api/v1/sales", "application/json", bytes.NewReader(raw))
			if err != nil {
				return
			}
			resp.Body.Close()
			mu.Lock()
			statuses[resp.StatusCode]++
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, 10, statuses[http.StatusCreated])
	assert.Equal(t, 30, statuses[http.StatusUnprocessableEntity])

	var report struct {
		Healthy bool `json:"healthy"`
	}
	require.Equal(t, http.StatusOK, ts.call(http.MethodGet, "/api/v1/health/consistency", nil, &report))
	assert.True(t, report.Healthy)
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t)
	var body map[string]string
	require.Equal(t, http.StatusOK, ts.call(http.MethodGet, "/healthz", nil, &body))
	assert.Equal(t, "ok", body["status"])
}
