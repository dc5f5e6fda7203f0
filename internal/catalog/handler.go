// internal/catalog/handler.go
package catalog

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
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

// RegisterRoutes mounts the /books endpoints on r.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/books", func(r chi.Router) {
		r.Get("/", h.handleListBooks)
		r.Post("/", h.handleAddBook)
		r.Get("/search", h.handleSearch)
		r.Get("/recommend", h.handleRecommend)
		r.Get("/genre/{genre}", h.handleByGenre)
		r.Get("/{id}", h.handleGetBook)
		r.Put("/{id}", h.handleUpdateBook)
		r.Delete("/{id}", h.handleRemoveBook)
		r.Patch("/{id}/stock", h.handleAdjustStock)
	})
}

type bookRequest struct {
	Title  string          `json:"title"`
	Author string          `json:"author"`
	Genre  string          `json:"genre"`
	Price  decimal.Decimal `json:"price"`
	Stock  int             `json:"stock"`
}

func (req bookRequest) book() *domain.Book {
	return &domain.Book{Title: req.Title, Author: req.Author, Genre: req.Genre, Price: req.Price, Stock: req.Stock}
}

func (h *Handler) handleListBooks(w http.ResponseWriter, r *http.Request) {
	limit, offset, err := api.Page(r)
	if err != nil {
		api.Error(w, r, h.logger, err)
		return
	}
	books, err := h.service.ListBooks(r.Context(), limit, offset)
	if err != nil {
		api.Error(w, r, h.logger, err)
		return
	}
	api.Respond(w, http.StatusOK, books)
}

func (h *Handler) handleAddBook(w http.ResponseWriter, r *http.Request) {
	var req bookRequest
	if err := api.Decode(r, &req); err != nil {
		api.Error(w, r, h.logger, err)
		return
	}
	book, err := h.service.AddBook(r.Context(), req.book())
	if err != nil {
		api.Error(w, r, h.logger, err)
		return
	}
	api.Respond(w, http.StatusCreated, book)
}

func (h *Handler) handleGetBook(w http.ResponseWriter, r *http.Request) {
	id, err := api.IDParam(r, "id")
	if err != nil {
		api.Error(w, r, h.logger, err)
		return
	}
	book, err := h.service.GetBook(r.Context(), id)
	if err != nil {
		api.Error(w, r, h.logger, err)
		return
	}
	api.Respond(w, http.StatusOK, book)
}

func (h *Handler) handleUpdateBook(w http.ResponseWriter, r *http.Request) {
	id, err := api.IDParam(r, "id")
	if err != nil {
		api.Error(w, r, h.logger, err)
		return
	}
	var req bookRequest
	if err := api.Decode(r, &req); err != nil {
		api.Error(w, r, h.logger, err)
		return
	}
	b := req.book()
	b.ID = id
	book, err := h.service.UpdateBook(r.Context(), b)
	if err != nil {
		api.Error(w, r, h.logger, err)
		return
	}
	api.Respond(w, http.StatusOK, book)
}

func (h *Handler) handleRemoveBook(w http.ResponseWriter, r *http.Request) {
	id, err := api.IDParam(r, "id")
	if err != nil {
		api.Error(w, r, h.logger, err)
		return
	}
	if err := h.service.RemoveBook(r.Context(), id); err != nil {
		api.Error(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleAdjustStock(w http.ResponseWriter, r *http.Request) {
	id, err := api.IDParam(r, "id")
	if err != nil {
		api.Error(w, r, h.logger, err)
		return
	}
	var req struct {
		Delta int `json:"delta"`
	}
	if err := api.Decode(r, &req); err != nil {
		api.Error(w, r, h.logger, err)
		return
	}
	stock, err := h.service.AdjustStock(r.Context(), id, req.Delta)
	if err != nil {
		api.Error(w, r, h.logger, err)
		return
	}
	api.Respond(w, http.StatusOK, map[string]interface{}{"book_id": id, "stock": stock})
}

func (h *Handler) handleSearch(w http.ResponseWriter, r *http.Request) {
	books, err := h.service.Search(r.Context(), r.URL.Query().Get("query"))
	if err != nil {
		api.Error(w, r, h.logger, err)
		return
	}
	api.Respond(w, http.StatusOK, books)
}

func (h *Handler) handleByGenre(w http.ResponseWriter, r *http.Request) {
	books, err := h.service.ByGenre(r.Context(), chi.URLParam(r, "genre"))
	if err != nil {
		api.Error(w, r, h.logger, err)
		return
	}
	api.Respond(w, http.StatusOK, books)
}

func (h *Handler) handleRecommend(w http.ResponseWriter, r *http.Request) {
	book, err := h.service.Recommend(r.Context())
	if err != nil {
		api.Error(w, r, h.logger, err)
		return
	}
	api.Respond(w, http.StatusOK, book)
}
