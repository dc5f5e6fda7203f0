// internal/reporting/handler.go
package reporting

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"bookledger/internal/api"
	"bookledger/internal/domain"
)

const defaultTopSelling = 10

type Handler struct {
	service Service
	logger  *zap.Logger
}

func NewHandler(service Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterRoutes mounts the ledger read endpoints on r.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/sales", h.handleListSales)
	r.Get("/sales/total-by-genre", h.handleRevenueByGenre)
	r.Get("/sales/books/{id}/totals", h.handleTotalsForBook)
	r.Get("/sales/top-selling", h.handleTopSelling)
}

func (h *Handler) handleListSales(w http.ResponseWriter, r *http.Request) {
	var after int64
	if raw := r.URL.Query().Get("after"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			api.Error(w, r, h.logger, domain.NewInvalidInputError("after", "must be an integer", raw))
			return
		}
		after = n
	}
	limit, err := api.IntQuery(r, "limit", 0)
	if err != nil {
		api.Error(w, r, h.logger, err)
		return
	}

	sales, err := h.service.ListSales(r.Context(), after, limit)
	if err != nil {
		api.Error(w, r, h.logger, err)
		return
	}
	api.Respond(w, http.StatusOK, sales)
}

func (h *Handler) handleRevenueByGenre(w http.ResponseWriter, r *http.Request) {
	revenue, err := h.service.RevenueByGenre(r.Context())
	if err != nil {
		api.Error(w, r, h.logger, err)
		return
	}
	api.Respond(w, http.StatusOK, revenue)
}

func (h *Handler) handleTotalsForBook(w http.ResponseWriter, r *http.Request) {
	id, err := api.IDParam(r, "id")
	if err != nil {
		api.Error(w, r, h.logger, err)
		return
	}
	totals, err := h.service.TotalsForBook(r.Context(), id)
	if err != nil {
		api.Error(w, r, h.logger, err)
		return
	}
	api.Respond(w, http.StatusOK, totals)
}

func (h *Handler) handleTopSelling(w http.ResponseWriter, r *http.Request) {
	limit, err := api.IntQuery(r, "limit", defaultTopSelling)
	if err != nil {
		api.Error(w, r, h.logger, err)
		return
	}
	top, err := h.service.TopSellingBooks(r.Context(), limit)
	if err != nil {
		api.Error(w, r, h.logger, err)
		return
	}
	api.Respond(w, http.StatusOK, top)
}
