package httpx

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/corregomitas/storefront/internal/auth"
	"github.com/corregomitas/storefront/internal/catalog"
	"github.com/corregomitas/storefront/internal/orders"
)

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"message": msg})
}

// writeError maps the domain error taxonomy onto HTTP status codes.
// Store failures become a generic 500 so internals never leak.
func writeError(w http.ResponseWriter, err error) {
	var (
		ve *orders.ValidationError
		pe *orders.ProductNotFoundError
		se *orders.InsufficientStockError
		ie *orders.InvalidStatusError
	)
	switch {
	case errors.As(err, &ve):
		writeMessage(w, http.StatusBadRequest, ve.Error())
	case errors.As(err, &se):
		writeMessage(w, http.StatusBadRequest, se.Error())
	case errors.As(err, &ie):
		writeMessage(w, http.StatusBadRequest, ie.Error())
	case errors.As(err, &pe):
		writeMessage(w, http.StatusNotFound, pe.Error())
	case errors.Is(err, orders.ErrOrderNotFound):
		writeMessage(w, http.StatusNotFound, "order not found")
	case errors.Is(err, catalog.ErrNotFound):
		writeMessage(w, http.StatusNotFound, "product not found")
	case errors.Is(err, auth.ErrInvalidInput):
		writeMessage(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, auth.ErrEmailTaken):
		writeMessage(w, http.StatusBadRequest, "email already registered")
	case errors.Is(err, auth.ErrBadCredentials):
		writeMessage(w, http.StatusUnauthorized, "invalid email or password")
	default:
		log.Printf("internal error: %v", err)
		writeMessage(w, http.StatusInternalServerError, "internal server error")
	}
}
