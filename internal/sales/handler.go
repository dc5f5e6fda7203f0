// internal/sales/handler.go
package sales

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"bookledger/internal/api"
)

type Handler struct {
	service Service
	logger  *zap.Logger
}

func NewHandler(service Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterRoutes mounts POST /sales on r.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/sales", h.handleRecordSale)
}

func (h *Handler) handleRecordSale(w http.ResponseWriter, r *http.Request) {
	var req RecordSaleRequest
	if err := api.Decode(r, &req); err != nil {
		api.Error(w, r, h.logger, err)
		return
	}

	receipt, err := h.service.RecordSale(r.Context(), req)
	if err != nil {
		api.Error(w, r, h.logger, err)
		return
	}

	api.Respond(w, http.StatusCreated, receipt)
}
