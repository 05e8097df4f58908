package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/barbearia-premium/engine/internal/cart"
	"github.com/barbearia-premium/engine/internal/catalog"
	"github.com/barbearia-premium/engine/internal/orders"
	"github.com/go-chi/chi/v5"
)

type CartHandler struct {
	Store   *cart.Store
	Catalog orders.CatalogReader
}

func (h *CartHandler) Register(r *chi.Mux) {
	r.Get("/cart", h.get)
	r.Post("/cart/items", h.add)
	r.Post("/cart/items/quantity", h.setQuantity)
	r.Post("/cart/items/remove", h.remove)
	r.Post("/cart/clear", h.clear)
	r.Post("/cart/merge", h.merge)
}

type cartLineReq struct {
	ClientID int64        `json:"client_id"`
	Kind     catalog.Kind `json:"kind"`
	ID       int64        `json:"id"`
	Quantity int          `json:"quantity"`
}

type cartMergeReq struct {
	ClientID int64     `json:"client_id"`
	Items    cart.Cart `json:"items"`
}

func cartResponse(w http.ResponseWriter, c cart.Cart) {
	writeJSON(w, http.StatusOK, map[string]any{"count": c.Count(), "items": c})
}

func (h *CartHandler) get(w http.ResponseWriter, r *http.Request) {
	clientID, err := strconv.ParseInt(r.URL.Query().Get("client_id"), 10, 64)
	if err != nil || clientID <= 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bad client id"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	c, err := h.Store.Get(ctx, clientID)
	if err != nil {
		writeError(w, err)
		return
	}
	cartResponse(w, c)
}

func (h *CartHandler) add(w http.ResponseWriter, r *http.Request) {
	var req cartLineReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if req.ClientID <= 0 || !req.Kind.Valid() || req.Quantity < 1 || req.Quantity > cart.MaxQuantity {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bad cart line"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	if err := h.checkItem(ctx, req.Kind, req.ID, req.Quantity); err != nil {
		writeError(w, err)
		return
	}
	c, err := h.Store.Add(ctx, req.ClientID, cart.Item{Kind: req.Kind, ID: req.ID, Quantity: req.Quantity})
	if err != nil {
		writeError(w, err)
		return
	}
	cartResponse(w, c)
}

func (h *CartHandler) setQuantity(w http.ResponseWriter, r *http.Request) {
	var req cartLineReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if req.ClientID <= 0 || req.Quantity < 0 || req.Quantity > cart.MaxQuantity {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bad quantity"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	if req.Quantity > 0 {
		if err := h.checkItem(ctx, req.Kind, req.ID, req.Quantity); err != nil {
			writeError(w, err)
			return
		}
	}
	c, err := h.Store.SetQuantity(ctx, req.ClientID, req.Kind, req.ID, req.Quantity)
	if err != nil {
		writeError(w, err)
		return
	}
	cartResponse(w, c)
}

func (h *CartHandler) remove(w http.ResponseWriter, r *http.Request) {
	var req cartLineReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	c, err := h.Store.Remove(ctx, req.ClientID, req.Kind, req.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	cartResponse(w, c)
}

func (h *CartHandler) clear(w http.ResponseWriter, r *http.Request) {
	var req cartMergeReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	if err := h.Store.Clear(ctx, req.ClientID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *CartHandler) merge(w http.ResponseWriter, r *http.Request) {
	var req cartMergeReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if req.ClientID <= 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bad client id"})
		return
	}
	for _, it := range req.Items {
		if !it.Kind.Valid() || it.Quantity < 1 || it.Quantity > cart.MaxQuantity {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bad cart line"})
			return
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	c, err := h.Store.MergeIn(ctx, req.ClientID, req.Items)
	if err != nil {
		writeError(w, err)
		return
	}
	cartResponse(w, c)
}

// checkItem is the fast stock/active check at cart time; finalize rechecks
// everything inside its transaction.
func (h *CartHandler) checkItem(ctx context.Context, kind catalog.Kind, id int64, qty int) error {
	switch kind {
	case catalog.KindService:
		_, err := h.Catalog.ActiveService(ctx, id)
		return err
	case catalog.KindProduct:
		p, err := h.Catalog.ActiveProduct(ctx, id)
		if err != nil {
			return err
		}
		if p.Stock < qty {
			return &orders.InsufficientStockError{ProductID: id, Requested: qty, Available: p.Stock}
		}
	}
	return nil
}
