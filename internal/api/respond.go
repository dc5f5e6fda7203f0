// Package api holds the HTTP plumbing shared by every handler: JSON responses, the
// mapping from domain errors to status codes, and request middleware.
package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"bookledger/internal/domain"
	"bookledger/internal/store"
)

// Respond writes body as JSON with the given status.
func Respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		json.NewEncoder(w).Encode(body)
	}
}

// Decode reads a JSON request body into dst. Unknown fields are rejected.
func Decode(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if domain.IsInvalidInputError(err) {
			return err
		}
		return domain.NewInvalidInputError("body", err.Error(), nil)
	}
	return nil
}

// IDParam parses a positive int64 path parameter.
func IDParam(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.NewInvalidInputError(name, "must be a positive integer", raw)
	}
	return id, nil
}

// IntQuery parses an optional integer query parameter, returning def when absent.
func IntQuery(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, domain.NewInvalidInputError(name, "must be an integer", raw)
	}
	return n, nil
}

// Page reads limit and offset query parameters and normalizes them.
func Page(r *http.Request) (limit, offset int, err error) {
	if limit, err = IntQuery(r, "limit", 0); err != nil {
		return 0, 0, err
	}
	if offset, err = IntQuery(r, "offset", 0); err != nil {
		return 0, 0, err
	}
	return store.NormalizePage(limit, offset)
}
