package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"bookledger/internal/domain"
)

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{domain.NewInvalidInputError("quantity", "must be positive", 0), http.StatusBadRequest},
		{domain.NewNotFoundError("book", 1), http.StatusNotFound},
		{domain.NewConflictError("deadlock detected", nil), http.StatusConflict},
		{domain.NewInsufficientStockError(1, 0, 1), http.StatusUnprocessableEntity},
		{errors.New("disk on fire"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, StatusFor(tc.err), tc.err.Error())
	}
}

func TestErrorBody(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/api/v1/sales", nil)

	w := httptest.NewRecorder()
	Error(w, r, zap.NewNop(), domain.NewInsufficientStockError(7, 2, 5))
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.EqualValues(t, 2, body["available"])
	assert.EqualValues(t, 5, body["requested"])

	w = httptest.NewRecorder()
	Error(w, r, zap.NewNop(), errors.New("connection reset"))
	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"internal error"}`, w.Body.String())
}

func TestDecodeRejectsUnknownFields(t *testing.T) {
	var dst struct {
		Quantity int `json:"quantity"`
	}
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"quantity":1,"qty":2}`))
	err := Decode(r, &dst)
	assert.True(t, domain.IsInvalidInputError(err))
}

func TestRateLimitOnlyThrottlesWrites(t *testing.T) {
	limiter := rate.NewLimiter(rate.Limit(0), 1)
	h := RateLimit(limiter)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	do := func(method string) int {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(method, "/", nil))
		return w.Code
	}

	assert.Equal(t, http.StatusNoContent, do(http.MethodPost))
	assert.Equal(t, http.StatusTooManyRequests, do(http.MethodPost))
	assert.Equal(t, http.StatusNoContent, do(http.MethodGet))
}
