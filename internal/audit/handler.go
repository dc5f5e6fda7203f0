package audit

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"bookledger/internal/api"
)

type Handler struct {
	auditor *Auditor
}

func NewHandler(auditor *Auditor) *Handler {
	return &Handler{auditor: auditor}
}

// RegisterRoutes mounts GET /health/consistency, which answers 503 when any check fails.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/health/consistency", h.handleConsistency)
}

func (h *Handler) handleConsistency(w http.ResponseWriter, r *http.Request) {
	report := h.auditor.Run(r.Context())
	status := http.StatusOK
	if !report.Healthy {
		status = http.StatusServiceUnavailable
	}
	api.Respond(w, status, report)
}
