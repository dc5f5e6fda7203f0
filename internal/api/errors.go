package api

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"bookledger/internal/domain"
)

// StatusFor maps an error to the HTTP status its kind stands for.
func StatusFor(err error) int {
	switch domain.KindOf(err) {
	case domain.KindInvalidInput:
		return http.StatusBadRequest
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindConflict:
		return http.StatusConflict
	case domain.KindInsufficientStock:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// Error writes err as {"error": msg}. Insufficient stock also reports what is left,
// and internal errors are logged and hidden from the caller.
func Error(w http.ResponseWriter, r *http.Request, logger *zap.Logger, err error) {
	status := StatusFor(err)
	body := map[string]interface{}{"error": err.Error()}

	var ise *domain.InsufficientStockError
	if errors.As(err, &ise) {
		body["available"] = ise.Available
		body["requested"] = ise.Requested
	}

	if status == http.StatusInternalServerError {
		logger.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		body["error"] = "internal error"
	}
	Respond(w, status, body)
}
