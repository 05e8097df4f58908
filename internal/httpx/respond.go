package httpx

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/barbearia-premium/engine/internal/booking"
	"github.com/barbearia-premium/engine/internal/cart"
	"github.com/barbearia-premium/engine/internal/catalog"
	"github.com/barbearia-premium/engine/internal/orders"
)

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps the engine's error taxonomy onto HTTP. Anything outside
// it is a persistence failure: logged with detail, answered generically.
func writeError(w http.ResponseWriter, err error) {
	var stockErr *orders.InsufficientStockError
	switch {
	case errors.Is(err, booking.ErrValidation), errors.Is(err, orders.ErrValidation):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, catalog.ErrNotFound),
		errors.Is(err, booking.ErrBarberNotFound),
		errors.Is(err, booking.ErrNotFound),
		errors.Is(err, orders.ErrNotFound),
		errors.Is(err, cart.ErrLineNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, booking.ErrSlotTaken):
		writeJSON(w, http.StatusConflict, map[string]string{"error": "slot already booked"})
	case errors.As(err, &stockErr):
		writeJSON(w, http.StatusConflict, map[string]any{
			"error":      "insufficient stock",
			"product_id": stockErr.ProductID,
			"requested":  stockErr.Requested,
			"available":  stockErr.Available,
		})
	case errors.Is(err, orders.ErrInvalidState):
		writeJSON(w, http.StatusConflict, map[string]string{"error": "order is in a terminal state"})
	default:
		log.Printf("internal error: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}
