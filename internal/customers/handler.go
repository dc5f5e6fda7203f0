// internal/customers/handler.go
package customers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"bookledger/internal/api"
	"bookledger/internal/domain"
)

type Handler struct {
	service Service
	logger  *zap.Logger
}

func NewHandler(service Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterRoutes mounts the /customers endpoints on r.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/customers", func(r chi.Router) {
		r.Get("/", h.handleListCustomers)
		r.Post("/", h.handleRegisterCustomer)
		r.Get("/{id}", h.handleGetCustomer)
		r.Put("/{id}", h.handleUpdateCustomer)
		r.Delete("/{id}", h.handleRemoveCustomer)
	})
}

type customerRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

func (h *Handler) handleListCustomers(w http.ResponseWriter, r *http.Request) {
	limit, offset, err := api.Page(r)
	if err != nil {
		api.Error(w, r, h.logger, err)
		return
	}
	list, err := h.service.ListCustomers(r.Context(), limit, offset)
	if err != nil {
		api.Error(w, r, h.logger, err)
		return
	}
	api.Respond(w, http.StatusOK, list)
}

func (h *Handler) handleRegisterCustomer(w http.ResponseWriter, r *http.Request) {
	var req customerRequest
	if err := api.Decode(r, &req); err != nil {
		api.Error(w, r, h.logger, err)
		return
	}
	c, err := h.service.RegisterCustomer(r.Context(), &domain.Customer{Name: req.Name, Email: req.Email, Phone: req.Phone})
	if err != nil {
		api.Error(w, r, h.logger, err)
		return
	}
	api.Respond(w, http.StatusCreated, c)
}

func (h *Handler) handleGetCustomer(w http.ResponseWriter, r *http.Request) {
	id, err := api.IDParam(r, "id")
	if err != nil {
		api.Error(w, r, h.logger, err)
		return
	}
	c, err := h.service.GetCustomer(r.Context(), id)
	if err != nil {
		api.Error(w, r, h.logger, err)
		return
	}
	api.Respond(w, http.StatusOK, c)
}

func (h *Handler) handleUpdateCustomer(w http.ResponseWriter, r *http.Request) {
	id, err := api.IDParam(r, "id")
	if err != nil {
		api.Error(w, r, h.logger, err)
		return
	}
	var req customerRequest
	if err := api.Decode(r, &req); err != nil {
		api.Error(w, r, h.logger, err)
		return
	}
	c, err := h.service.UpdateCustomer(r.Context(), &domain.Customer{ID: id, Name: req.Name, Email: req.Email, Phone: req.Phone})
	if err != nil {
		api.Error(w, r, h.logger, err)
		return
	}
	api.Respond(w, http.StatusOK, c)
}

func (h *Handler) handleRemoveCustomer(w http.ResponseWriter, r *http.Request) {
	id, err := api.IDParam(r, "id")
	if err != nil {
		api.Error(w, r, h.logger, err)
		return
	}
	if err := h.service.RemoveCustomer(r.Context(), id); err != nil {
		api.Error(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
